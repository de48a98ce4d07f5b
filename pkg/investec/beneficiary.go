package investec

// Beneficiary is a registered third-party payee. Only the ID is
// guaranteed to be present - everything else is optional.
type Beneficiary struct {
	BeneficiaryID               string
	AccountNumber               *string
	Code                        *string
	Bank                        *string
	BeneficiaryName             *string
	LastPaymentAmount           *string
	LastPaymentDate             *string
	CellNo                      *string
	EmailAddress                *string
	Name                        *string
	ReferenceAccountNumber      *string
	ReferenceName               *string
	CategoryID                  *string
	ProfileID                   *string
	FasterPaymentAllowed        bool
	BeneficiaryType             *string
	ApprovedBeneficiaryCategory *string
}

func parseBeneficiary(data map[string]interface{}) Beneficiary {
	return Beneficiary{
		BeneficiaryID:               readString(data, "beneficiaryId"),
		AccountNumber:               readStringPtr(data, "accountNumber"),
		Code:                        readStringPtr(data, "code"),
		Bank:                        readStringPtr(data, "bank"),
		BeneficiaryName:             readStringPtr(data, "beneficiaryName"),
		LastPaymentAmount:           readStringPtr(data, "lastPaymentAmount"),
		LastPaymentDate:             readStringPtr(data, "lastPaymentDate"),
		CellNo:                      readStringPtr(data, "cellNo"),
		EmailAddress:                readStringPtr(data, "emailAddress"),
		Name:                        readStringPtr(data, "name"),
		ReferenceAccountNumber:      readStringPtr(data, "referenceAccountNumber"),
		ReferenceName:               readStringPtr(data, "referenceName"),
		CategoryID:                  readStringPtr(data, "categoryId"),
		ProfileID:                   readStringPtr(data, "profileId"),
		FasterPaymentAllowed:        readBool(data, "fasterPaymentAllowed", false),
		BeneficiaryType:             readStringPtr(data, "beneficiaryType"),
		ApprovedBeneficiaryCategory: readStringPtr(data, "approvedBeneficiaryCategory"),
	}
}

// BeneficiaryCategory groups beneficiaries. The isDefault field arrives
// either as a boolean or as the string "true"/"false" depending on the
// API mood - both normalize to the same boolean.
type BeneficiaryCategory struct {
	ID        string
	IsDefault bool
	Name      string
}

func parseBeneficiaryCategory(data map[string]interface{}) BeneficiaryCategory {
	return BeneficiaryCategory{
		ID:        readString(data, "id"),
		IsDefault: readBool(data, "isDefault", false),
		Name:      readString(data, "name"),
	}
}
