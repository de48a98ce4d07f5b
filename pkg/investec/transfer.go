package investec

import "github.com/shopspring/decimal"

// TransferItem is a single inter-account transfer instruction.
type TransferItem struct {
	BeneficiaryAccountID string
	Amount               decimal.Decimal
	MyReference          string
	TheirReference       string
}

// toPayload renders the wire shape the API expects - camelCase keys and
// the amount as a plain decimal string, never a float.
func (t TransferItem) toPayload() map[string]interface{} {
	return map[string]interface{}{
		"beneficiaryAccountId": t.BeneficiaryAccountID,
		"amount":               t.Amount.String(),
		"myReference":          t.MyReference,
		"theirReference":       t.TheirReference,
	}
}

func parseTransferItem(data map[string]interface{}) TransferItem {
	return TransferItem{
		BeneficiaryAccountID: readString(data, "beneficiaryAccountId"),
		Amount:               readDecimal(data, "amount"),
		MyReference:          readString(data, "myReference"),
		TheirReference:       readString(data, "theirReference"),
	}
}

// TransferRequest is the body of the transfermultiple call.
type TransferRequest struct {
	TransferList []TransferItem
	ProfileID    string
}

func (r TransferRequest) toPayload() map[string]interface{} {
	list := make([]map[string]interface{}, len(r.TransferList))
	for i, item := range r.TransferList {
		list[i] = item.toPayload()
	}

	payload := map[string]interface{}{
		"transferList": list,
	}
	if r.ProfileID != "" {
		payload["profileId"] = r.ProfileID
	}

	return payload
}

// TransferResponseItem is the per-transfer part of a transfer response.
type TransferResponseItem struct {
	PaymentReferenceNumber *string
	PaymentDate            *string
	Status                 *string
	BeneficiaryName        *string
	BeneficiaryAccountID   *string
	AuthorisationRequired  bool
}

func parseTransferResponseItem(data map[string]interface{}) TransferResponseItem {
	return TransferResponseItem{
		PaymentReferenceNumber: readStringPtr(data, "PaymentReferenceNumber"),
		PaymentDate:            readStringPtr(data, "PaymentDate"),
		Status:                 readStringPtr(data, "Status"),
		BeneficiaryName:        readStringPtr(data, "BeneficiaryName"),
		BeneficiaryAccountID:   readStringPtr(data, "BeneficiaryAccountId"),
		AuthorisationRequired:  readBool(data, "AuthorisationRequired", false),
	}
}

// TransferResponse is the result of a transfermultiple call.
type TransferResponse struct {
	TransferResponses []TransferResponseItem
	ErrorMessage      *string
}

// parseTransferResponse accepts both envelope variants the API produces:
// the nested v1 shape {transferResponse: {TransferResponses, ErrorMessage}}
// and the bare {TransferResponses, ErrorMessage}. The nested key wins.
func parseTransferResponse(data map[string]interface{}) TransferResponse {
	if nested, ok := data["transferResponse"].(map[string]interface{}); ok {
		data = nested
	}

	var items []TransferResponseItem
	if raw, ok := data["TransferResponses"].([]interface{}); ok {
		for _, entry := range raw {
			if item, ok := entry.(map[string]interface{}); ok {
				items = append(items, parseTransferResponseItem(item))
			}
		}
	}

	return TransferResponse{
		TransferResponses: items,
		ErrorMessage:      readStringPtr(data, "ErrorMessage"),
	}
}
