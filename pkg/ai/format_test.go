package ai

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/ruanvs/investec-agent/pkg/investec"
)

func TestFormatAccounts(t *testing.T) {
	accounts := []investec.Account{
		{
			AccountID:     "172878438321553632224",
			AccountNumber: "10010206147",
			AccountName:   "Mr J Soap",
			ProductName:   "Private Bank Account",
			ProfileName:   "Soap Family",
			KycCompliant:  true,
		},
	}

	out := formatAccounts(accounts)
	assert.Contains(t, out, "Mr J Soap (10010206147)")
	assert.Contains(t, out, "Private Bank Account")
	assert.Contains(t, out, "KYC compliant: true")

	assert.Equal(t, "No accounts found.", formatAccounts(nil))
}

func TestFormatBalance(t *testing.T) {
	balance := investec.AccountBalance{
		AccountID:        "172878438321553632224",
		CurrentBalance:   decimal.NewFromFloat(28857.3),
		AvailableBalance: decimal.NewFromFloat(98857.3),
		Currency:         "ZAR",
	}

	out := formatBalance(balance)
	assert.Contains(t, out, "Current balance: 28857.30 ZAR")
	assert.Contains(t, out, "Available balance: 98857.30 ZAR")
}

func TestFormatTransactions(t *testing.T) {
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	transactions := []investec.Transaction{
		{
			Type:            investec.TransactionTypeDebit,
			Status:          investec.TransactionStatusPosted,
			Description:     "COFFEE SHOP",
			TransactionDate: &date,
			Amount:          decimal.NewFromFloat(45.5),
		},
		{
			Type:        investec.TransactionTypeCredit,
			Status:      investec.TransactionStatusPosted,
			Description: "SALARY",
			Amount:      decimal.NewFromInt(10000),
		},
	}

	out := formatTransactions(transactions)
	assert.Contains(t, out, "2024-03-01 | COFFEE SHOP | DEBIT 45.50 | POSTED")
	assert.Contains(t, out, "unknown date | SALARY | CREDIT 10000.00 | POSTED")

	assert.Equal(t, "No transactions found for the specified criteria.", formatTransactions(nil))
}

func TestFormatBeneficiaries(t *testing.T) {
	name := "MIKE'S PLUMBING"
	bank := "FNB"
	beneficiaries := []investec.Beneficiary{
		{
			BeneficiaryID:   "12345",
			BeneficiaryName: &name,
			Bank:            &bank,
		},
		{
			BeneficiaryID: "67890",
		},
	}

	out := formatBeneficiaries(beneficiaries)
	assert.Contains(t, out, "Beneficiary: MIKE'S PLUMBING")
	assert.Contains(t, out, "Bank: FNB")
	assert.Contains(t, out, "Beneficiary: unnamed")
	assert.Contains(t, out, "\n---\n")
}

func TestFormatTransferResponseItems(t *testing.T) {
	status := "SUCCESS"
	reference := "PRN123"

	out := formatTransferResponseItems([]investec.TransferResponseItem{
		{
			Status:                 &status,
			PaymentReferenceNumber: &reference,
			AuthorisationRequired:  true,
		},
	}, nil)

	assert.Contains(t, out, "Status: SUCCESS")
	assert.Contains(t, out, "Reference: PRN123")
	assert.Contains(t, out, "authorisation required")
}

func TestFormatTransferResponseItemsError(t *testing.T) {
	message := "insufficient funds"
	out := formatTransferResponseItems(nil, &message)

	assert.Contains(t, out, "Error: insufficient funds")
	assert.Contains(t, out, "No transfer confirmations returned.")
}

func TestFormatDocuments(t *testing.T) {
	documents := []investec.Document{
		{
			DocumentType: "Statement",
			DocumentDate: time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
		},
		{
			DocumentType: "TaxCertificate",
			DocumentDate: time.Now(),
			DateAssumed:  true,
		},
	}

	out := formatDocuments(documents)
	assert.Contains(t, out, "2024-02-29 | Statement")
	assert.Contains(t, out, "(date missing upstream, assumed today)")
}
