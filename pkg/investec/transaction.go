package investec

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the direction of a transaction.
type TransactionType string

const (
	TransactionTypeCredit TransactionType = "CREDIT"
	TransactionTypeDebit  TransactionType = "DEBIT"
)

// TransactionStatus tells whether a transaction settled.
type TransactionStatus string

const (
	TransactionStatusPosted  TransactionStatus = "POSTED"
	TransactionStatusPending TransactionStatus = "PENDING"
)

// Transaction is a single posted or pending account transaction.
type Transaction struct {
	AccountID       string
	Type            TransactionType
	TransactionType *string
	Status          TransactionStatus
	Description     string
	CardNumber      *string
	PostedOrder     *int
	PostingDate     *time.Time
	ValueDate       *time.Time
	ActionDate      *time.Time
	TransactionDate *time.Time
	Amount          decimal.Decimal
	RunningBalance  *decimal.Decimal
	UUID            *string
}

func parseTransaction(data map[string]interface{}) Transaction {
	// The enums default only when the field is fully absent. An unknown
	// wire value is carried through as-is rather than silently mapped to
	// a different valid member.
	typ := TransactionTypeDebit
	if v, ok := data["type"].(string); ok && v != "" {
		typ = TransactionType(v)
	}

	status := TransactionStatusPosted
	if v, ok := data["status"].(string); ok && v != "" {
		status = TransactionStatus(v)
	}

	return Transaction{
		AccountID:       readString(data, "accountId"),
		Type:            typ,
		TransactionType: readStringPtr(data, "transactionType"),
		Status:          status,
		Description:     readString(data, "description"),
		CardNumber:      readStringPtr(data, "cardNumber"),
		PostedOrder:     readIntPtr(data, "postedOrder"),
		PostingDate:     readTime(data, "postingDate"),
		ValueDate:       readTime(data, "valueDate"),
		ActionDate:      readTime(data, "actionDate"),
		TransactionDate: readTime(data, "transactionDate"),
		Amount:          readDecimal(data, "amount"),
		RunningBalance:  readDecimalPtr(data, "runningBalance"),
		UUID:            readStringPtr(data, "uuid"),
	}
}

// PendingTransaction is a not yet settled transaction. Its status is
// always PENDING no matter what the wire says.
type PendingTransaction struct {
	AccountID       string
	Type            TransactionType
	Status          TransactionStatus
	Description     string
	TransactionDate *time.Time
	Amount          decimal.Decimal
}

func parsePendingTransaction(data map[string]interface{}) PendingTransaction {
	typ := TransactionTypeDebit
	if v, ok := data["type"].(string); ok && v != "" {
		typ = TransactionType(v)
	}

	return PendingTransaction{
		AccountID:       readString(data, "accountId"),
		Type:            typ,
		Status:          TransactionStatusPending,
		Description:     readString(data, "description"),
		TransactionDate: readTime(data, "transactionDate"),
		Amount:          readDecimal(data, "amount"),
	}
}
