package investec

import "github.com/shopspring/decimal"

// Account is a single Investec bank account.
type Account struct {
	AccountID     string
	AccountNumber string
	AccountName   string
	ReferenceName string
	ProductName   string
	KycCompliant  bool
	ProfileID     string
	ProfileName   string
}

func parseAccount(data map[string]interface{}) Account {
	return Account{
		AccountID:     readString(data, "accountId"),
		AccountNumber: readString(data, "accountNumber"),
		AccountName:   readString(data, "accountName"),
		ReferenceName: readString(data, "referenceName"),
		ProductName:   readString(data, "productName"),
		KycCompliant:  readBool(data, "kycCompliant", false),
		ProfileID:     readString(data, "profileId"),
		ProfileName:   readString(data, "profileName"),
	}
}

// AccountBalance holds the five balance figures the API reports for an
// account. All of them default to zero when absent.
type AccountBalance struct {
	AccountID        string
	CurrentBalance   decimal.Decimal
	AvailableBalance decimal.Decimal
	BudgetBalance    decimal.Decimal
	StraightBalance  decimal.Decimal
	CashBalance      decimal.Decimal
	Currency         string
}

func parseAccountBalance(data map[string]interface{}) AccountBalance {
	currency := readString(data, "currency")
	if currency == "" {
		currency = "ZAR"
	}

	return AccountBalance{
		AccountID:        readString(data, "accountId"),
		CurrentBalance:   readDecimal(data, "currentBalance"),
		AvailableBalance: readDecimal(data, "availableBalance"),
		BudgetBalance:    readDecimal(data, "budgetBalance"),
		StraightBalance:  readDecimal(data, "straightBalance"),
		CashBalance:      readDecimal(data, "cashBalance"),
		Currency:         currency,
	}
}
