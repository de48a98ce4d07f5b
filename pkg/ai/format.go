package ai

import (
	"fmt"
	"strings"

	"github.com/ruanvs/investec-agent/pkg/investec"
	"github.com/ruanvs/investec-agent/pkg/utils"
)

// Renderers for tool output. The model gets compact, human-readable
// text - it does not need raw JSON and raw JSON wastes tokens.

func formatAccount(account investec.Account) string {
	return fmt.Sprintf(
		"Account: %s (%s)\nID: %s\nProduct: %s\nProfile: %s\nKYC compliant: %t",
		account.AccountName,
		account.AccountNumber,
		account.AccountID,
		account.ProductName,
		account.ProfileName,
		account.KycCompliant,
	)
}

func formatAccounts(accounts []investec.Account) string {
	if len(accounts) == 0 {
		return "No accounts found."
	}

	parts := make([]string, len(accounts))
	for i, account := range accounts {
		parts[i] = formatAccount(account)
	}

	return strings.Join(parts, "\n---\n")
}

func formatBalance(balance investec.AccountBalance) string {
	return fmt.Sprintf(
		"Current balance: %s %s\nAvailable balance: %s %s\nBudget balance: %s %s\nStraight balance: %s %s\nCash balance: %s %s",
		balance.CurrentBalance.StringFixed(2), balance.Currency,
		balance.AvailableBalance.StringFixed(2), balance.Currency,
		balance.BudgetBalance.StringFixed(2), balance.Currency,
		balance.StraightBalance.StringFixed(2), balance.Currency,
		balance.CashBalance.StringFixed(2), balance.Currency,
	)
}

func formatTransaction(txn investec.Transaction) string {
	date := "unknown date"
	if txn.TransactionDate != nil {
		date = utils.FormatDay(*txn.TransactionDate)
	} else if txn.PostingDate != nil {
		date = utils.FormatDay(*txn.PostingDate)
	}

	return fmt.Sprintf("%s | %s | %s %s | %s", date, txn.Description, txn.Type, txn.Amount.StringFixed(2), txn.Status)
}

func formatTransactions(transactions []investec.Transaction) string {
	if len(transactions) == 0 {
		return "No transactions found for the specified criteria."
	}

	parts := make([]string, len(transactions))
	for i, txn := range transactions {
		parts[i] = formatTransaction(txn)
	}

	return strings.Join(parts, "\n")
}

func formatPendingTransactions(pending []investec.PendingTransaction) string {
	if len(pending) == 0 {
		return "No pending transactions."
	}

	parts := make([]string, len(pending))
	for i, txn := range pending {
		date := "unknown date"
		if txn.TransactionDate != nil {
			date = utils.FormatDay(*txn.TransactionDate)
		}
		parts[i] = fmt.Sprintf("%s | %s | %s %s | PENDING", date, txn.Description, txn.Type, txn.Amount.StringFixed(2))
	}

	return strings.Join(parts, "\n")
}

func formatBeneficiary(beneficiary investec.Beneficiary) string {
	name := "unnamed"
	if beneficiary.BeneficiaryName != nil {
		name = *beneficiary.BeneficiaryName
	} else if beneficiary.Name != nil {
		name = *beneficiary.Name
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Beneficiary: %s\nID: %s", name, beneficiary.BeneficiaryID)
	if beneficiary.Bank != nil {
		fmt.Fprintf(&b, "\nBank: %s", *beneficiary.Bank)
	}
	if beneficiary.AccountNumber != nil {
		fmt.Fprintf(&b, "\nAccount number: %s", *beneficiary.AccountNumber)
	}
	if beneficiary.LastPaymentDate != nil {
		fmt.Fprintf(&b, "\nLast payment: %s", *beneficiary.LastPaymentDate)
	}
	fmt.Fprintf(&b, "\nFaster payment allowed: %t", beneficiary.FasterPaymentAllowed)

	return b.String()
}

func formatBeneficiaries(beneficiaries []investec.Beneficiary) string {
	if len(beneficiaries) == 0 {
		return "No beneficiaries found."
	}

	parts := make([]string, len(beneficiaries))
	for i, beneficiary := range beneficiaries {
		parts[i] = formatBeneficiary(beneficiary)
	}

	return strings.Join(parts, "\n---\n")
}

func formatProfiles(profiles []investec.Profile) string {
	if len(profiles) == 0 {
		return "No profiles found."
	}

	parts := make([]string, len(profiles))
	for i, profile := range profiles {
		def := ""
		if profile.DefaultProfile {
			def = " (default)"
		}
		parts[i] = fmt.Sprintf("Profile %s: %s%s", profile.ProfileID, profile.ProfileName, def)
	}

	return strings.Join(parts, "\n")
}

func formatTransferResponseItems(items []investec.TransferResponseItem, errorMessage *string) string {
	var b strings.Builder

	if errorMessage != nil && *errorMessage != "" {
		fmt.Fprintf(&b, "Error: %s\n", *errorMessage)
	}

	if len(items) == 0 {
		b.WriteString("No transfer confirmations returned.")
		return b.String()
	}

	for i, item := range items {
		if i > 0 {
			b.WriteString("\n")
		}

		status := "unknown"
		if item.Status != nil {
			status = *item.Status
		}
		fmt.Fprintf(&b, "Status: %s", status)

		if item.BeneficiaryName != nil {
			fmt.Fprintf(&b, " | To: %s", *item.BeneficiaryName)
		}
		if item.PaymentReferenceNumber != nil {
			fmt.Fprintf(&b, " | Reference: %s", *item.PaymentReferenceNumber)
		}
		if item.AuthorisationRequired {
			b.WriteString(" | authorisation required")
		}
	}

	return b.String()
}

func formatAuthorisationSetup(setup investec.AuthorisationSetup) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Authorisations required: %s\n", setup.NumberOfAuthorisationRequired)

	b.WriteString("Periods:")
	if len(setup.Period) == 0 {
		b.WriteString(" none")
	}
	for _, period := range setup.Period {
		fmt.Fprintf(&b, " %s (%s)", period.Description, period.ID)
	}

	b.WriteString("\nAuthorisers A:")
	if len(setup.AuthorisersListA) == 0 {
		b.WriteString(" none")
	}
	for _, authoriser := range setup.AuthorisersListA {
		fmt.Fprintf(&b, " %s (%s)", authoriser.Name, authoriser.AuthoriserID)
	}

	b.WriteString("\nAuthorisers B:")
	if len(setup.AuthorisersListB) == 0 {
		b.WriteString(" none")
	}
	for _, authoriser := range setup.AuthorisersListB {
		fmt.Fprintf(&b, " %s (%s)", authoriser.Name, authoriser.AuthoriserID)
	}

	return b.String()
}

func formatDocuments(documents []investec.Document) string {
	if len(documents) == 0 {
		return "No documents found for the specified period."
	}

	parts := make([]string, len(documents))
	for i, document := range documents {
		date := utils.FormatDay(document.DocumentDate)
		if document.DateAssumed {
			date += " (date missing upstream, assumed today)"
		}
		parts[i] = fmt.Sprintf("%s | %s", date, document.DocumentType)
	}

	return strings.Join(parts, "\n")
}
