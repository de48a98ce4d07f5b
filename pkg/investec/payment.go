package investec

import "github.com/shopspring/decimal"

// BeneficiaryPaymentItem is a single payment instruction towards a
// registered beneficiary. The authoriser fields only apply to profiles
// with multi-party sign-off and are omitted from the wire when unset.
type BeneficiaryPaymentItem struct {
	BeneficiaryID  string
	Amount         decimal.Decimal
	MyReference    string
	TheirReference string
	AuthoriserAID  string
	AuthoriserBID  string
	AuthPeriodID   string
	FasterPayment  *bool
}

func (p BeneficiaryPaymentItem) toPayload() map[string]interface{} {
	payload := map[string]interface{}{
		"beneficiaryId":  p.BeneficiaryID,
		"amount":         p.Amount.String(),
		"myReference":    p.MyReference,
		"theirReference": p.TheirReference,
	}
	if p.AuthoriserAID != "" {
		payload["authoriserAId"] = p.AuthoriserAID
	}
	if p.AuthoriserBID != "" {
		payload["authoriserBId"] = p.AuthoriserBID
	}
	if p.AuthPeriodID != "" {
		payload["authPeriodId"] = p.AuthPeriodID
	}
	if p.FasterPayment != nil {
		payload["fasterPayment"] = *p.FasterPayment
	}

	return payload
}

func parseBeneficiaryPaymentItem(data map[string]interface{}) BeneficiaryPaymentItem {
	var faster *bool
	if _, ok := data["fasterPayment"]; ok {
		v := readBool(data, "fasterPayment", false)
		faster = &v
	}

	return BeneficiaryPaymentItem{
		BeneficiaryID:  readString(data, "beneficiaryId"),
		Amount:         readDecimal(data, "amount"),
		MyReference:    readString(data, "myReference"),
		TheirReference: readString(data, "theirReference"),
		AuthoriserAID:  readString(data, "authoriserAId"),
		AuthoriserBID:  readString(data, "authoriserBId"),
		AuthPeriodID:   readString(data, "authPeriodId"),
		FasterPayment:  faster,
	}
}

// BeneficiaryPaymentRequest is the body of the paymultiple call.
type BeneficiaryPaymentRequest struct {
	PaymentList []BeneficiaryPaymentItem
}

func (r BeneficiaryPaymentRequest) toPayload() map[string]interface{} {
	list := make([]map[string]interface{}, len(r.PaymentList))
	for i, item := range r.PaymentList {
		list[i] = item.toPayload()
	}

	return map[string]interface{}{
		"paymentList": list,
	}
}

// PaymentResponse is the result of a paymultiple call. The response items
// share their wire shape with transfer responses.
type PaymentResponse struct {
	TransferResponses []TransferResponseItem
	ErrorMessage      *string
}

func parsePaymentResponse(data map[string]interface{}) PaymentResponse {
	var items []TransferResponseItem
	if raw, ok := data["TransferResponses"].([]interface{}); ok {
		for _, entry := range raw {
			if item, ok := entry.(map[string]interface{}); ok {
				items = append(items, parseTransferResponseItem(item))
			}
		}
	}

	return PaymentResponse{
		TransferResponses: items,
		ErrorMessage:      readStringPtr(data, "ErrorMessage"),
	}
}
