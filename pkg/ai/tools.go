package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/ruanvs/investec-agent/pkg/config"
	"github.com/ruanvs/investec-agent/pkg/investec"
	"github.com/ruanvs/investec-agent/pkg/utils"
)

// ToolFactory builds the tools both AI providers expose to the model.
// Every tool wraps exactly one Investec client operation; the factory
// owns the argument parsing and the rendering of the typed result.
type ToolFactory struct {
	client *investec.Client
	config *config.Config
	logger *logrus.Logger
	ctx    context.Context
}

func (f *ToolFactory) GetTools() []Tool {
	tools := []Tool{
		f.currentTimeTool(),
		f.listAccountsTool(),
		f.accountBalanceTool(),
		f.accountTransactionsTool(),
		f.pendingTransactionsTool(),
		f.transferMultipleTool(),
		f.listBeneficiariesTool(),
		f.beneficiaryCategoriesTool(),
		f.payBeneficiariesTool(),
		f.listProfilesTool(),
		f.profileAccountsTool(),
		f.authorisationSetupTool(),
		f.profileBeneficiariesTool(),
		f.listDocumentsTool(),
	}

	if f.config.StaticToolsPath != "" {
		staticTools, err := f.staticTools()
		if err != nil {
			f.logger.Warnf("could not load static tools: %v", err)
		} else {
			tools = append(tools, staticTools...)
		}
	}

	return tools
}

func (f *ToolFactory) currentTimeTool() Tool {
	return Tool{
		Name:        "current_time",
		Description: "Provides current day, date and time in the Africa/Johannesburg timezone.",
		Fn: func(_ string) (string, error) {
			now := time.Now()
			return fmt.Sprintf("%s, %s", utils.FormatWeekday(now), utils.FormatDate(now)), nil
		},
	}
}

func (f *ToolFactory) listAccountsTool() Tool {
	return Tool{
		Name:        "list_accounts",
		Description: "Lists all bank accounts of the client with their IDs, numbers and product names.",
		Fn: func(_ string) (string, error) {
			accounts, err := f.client.GetAccounts(f.ctx)
			if err != nil {
				return "", fmt.Errorf("unable to retrieve accounts: %w", err)
			}

			return formatAccounts(accounts), nil
		},
	}
}

func (f *ToolFactory) accountBalanceTool() Tool {
	return Tool{
		Name:        "account_balance",
		Description: "Returns current, available, budget, straight and cash balance for one account.",
		HasSchema:   true,
		Schema: Property{
			Type: SchemaTypeObject,
			Properties: map[string]Property{
				"account_id": {
					Type:        SchemaTypeString,
					Description: "The ID of the account",
				},
			},
			Required: []string{"account_id"},
		},
		Fn: func(input string) (string, error) {
			var args struct {
				AccountID string `json:"account_id"`
			}
			if err := json.Unmarshal([]byte(input), &args); err != nil {
				return "", fmt.Errorf("could not parse tool input: %w", err)
			}

			balance, err := f.client.GetAccountBalance(f.ctx, args.AccountID)
			if err != nil {
				return "", fmt.Errorf("unable to retrieve balance: %w", err)
			}

			return formatBalance(balance), nil
		},
	}
}

func (f *ToolFactory) accountTransactionsTool() Tool {
	return Tool{
		Name:        "account_transactions",
		Description: "Lists transactions for one account, optionally filtered by date range and transaction type.",
		HasSchema:   true,
		Schema: Property{
			Type: SchemaTypeObject,
			Properties: map[string]Property{
				"account_id": {
					Type:        SchemaTypeString,
					Description: "The ID of the account",
				},
				"from_date": {
					Type:        SchemaTypeString,
					Description: "Start date in YYYY-MM-DD format",
				},
				"to_date": {
					Type:        SchemaTypeString,
					Description: "End date in YYYY-MM-DD format",
				},
				"transaction_type": {
					Type:        SchemaTypeString,
					Description: "Filter by transaction type",
				},
				"include_pending": {
					Type:        SchemaTypeBoolean,
					Description: "Include pending transactions",
				},
			},
			Required: []string{"account_id"},
		},
		Fn: func(input string) (string, error) {
			var args struct {
				AccountID       string `json:"account_id"`
				FromDate        string `json:"from_date"`
				ToDate          string `json:"to_date"`
				TransactionType string `json:"transaction_type"`
				IncludePending  bool   `json:"include_pending"`
			}
			if err := json.Unmarshal([]byte(input), &args); err != nil {
				return "", fmt.Errorf("could not parse tool input: %w", err)
			}

			transactions, err := f.client.GetAccountTransactions(f.ctx, args.AccountID, investec.TransactionOptions{
				FromDate:        investec.DateString(args.FromDate),
				ToDate:          investec.DateString(args.ToDate),
				TransactionType: args.TransactionType,
				IncludePending:  args.IncludePending,
			})
			if err != nil {
				return "", fmt.Errorf("unable to retrieve transactions: %w", err)
			}

			return formatTransactions(transactions), nil
		},
	}
}

func (f *ToolFactory) pendingTransactionsTool() Tool {
	return Tool{
		Name:        "pending_transactions",
		Description: "Lists transactions that have not settled yet for one account.",
		HasSchema:   true,
		Schema: Property{
			Type: SchemaTypeObject,
			Properties: map[string]Property{
				"account_id": {
					Type:        SchemaTypeString,
					Description: "The ID of the account",
				},
			},
			Required: []string{"account_id"},
		},
		Fn: func(input string) (string, error) {
			var args struct {
				AccountID string `json:"account_id"`
			}
			if err := json.Unmarshal([]byte(input), &args); err != nil {
				return "", fmt.Errorf("could not parse tool input: %w", err)
			}

			pending, err := f.client.GetAccountPendingTransactions(f.ctx, args.AccountID)
			if err != nil {
				return "", fmt.Errorf("unable to retrieve pending transactions: %w", err)
			}

			return formatPendingTransactions(pending), nil
		},
	}
}

type transferInput struct {
	BeneficiaryAccountID string `json:"beneficiary_account_id"`
	Amount               string `json:"amount"`
	MyReference          string `json:"my_reference"`
	TheirReference       string `json:"their_reference"`
}

func (f *ToolFactory) transferMultipleTool() Tool {
	return Tool{
		Name:        "transfer_multiple",
		Description: "Transfers funds from one account to one or more of the client's own accounts. The transfers argument is a JSON array of objects with beneficiary_account_id, amount, my_reference and their_reference.",
		HasSchema:   true,
		Schema: Property{
			Type: SchemaTypeObject,
			Properties: map[string]Property{
				"account_id": {
					Type:        SchemaTypeString,
					Description: "The source account ID",
				},
				"transfers": {
					Type:        SchemaTypeString,
					Description: `JSON array, e.g. [{"beneficiary_account_id":"123","amount":"100.00","my_reference":"savings","their_reference":"topup"}]`,
				},
				"profile_id": {
					Type:        SchemaTypeString,
					Description: "Optional profile ID",
				},
			},
			Required: []string{"account_id", "transfers"},
		},
		Fn: func(input string) (string, error) {
			var args struct {
				AccountID string `json:"account_id"`
				Transfers string `json:"transfers"`
				ProfileID string `json:"profile_id"`
			}
			if err := json.Unmarshal([]byte(input), &args); err != nil {
				return "", fmt.Errorf("could not parse tool input: %w", err)
			}

			var items []transferInput
			if err := json.Unmarshal([]byte(args.Transfers), &items); err != nil {
				return "", fmt.Errorf("could not parse transfers: %w", err)
			}

			transfers := make([]investec.TransferItem, len(items))
			for i, item := range items {
				amount, err := decimal.NewFromString(item.Amount)
				if err != nil {
					return "", fmt.Errorf("invalid amount %q: %w", item.Amount, err)
				}
				transfers[i] = investec.TransferItem{
					BeneficiaryAccountID: item.BeneficiaryAccountID,
					Amount:               amount,
					MyReference:          item.MyReference,
					TheirReference:       item.TheirReference,
				}
			}

			response, err := f.client.TransferMultiple(f.ctx, args.AccountID, transfers, args.ProfileID)
			if err != nil {
				return "", fmt.Errorf("unable to transfer funds: %w", err)
			}

			return formatTransferResponseItems(response.TransferResponses, response.ErrorMessage), nil
		},
	}
}

func (f *ToolFactory) listBeneficiariesTool() Tool {
	return Tool{
		Name:        "list_beneficiaries",
		Description: "Lists all registered beneficiaries the client can pay.",
		Fn: func(_ string) (string, error) {
			beneficiaries, err := f.client.GetBeneficiaries(f.ctx)
			if err != nil {
				return "", fmt.Errorf("unable to retrieve beneficiaries: %w", err)
			}

			return formatBeneficiaries(beneficiaries), nil
		},
	}
}

func (f *ToolFactory) beneficiaryCategoriesTool() Tool {
	return Tool{
		Name:        "beneficiary_categories",
		Description: "Returns the beneficiary category of the client.",
		Fn: func(_ string) (string, error) {
			category, err := f.client.GetBeneficiaryCategories(f.ctx)
			if err != nil {
				return "", fmt.Errorf("unable to retrieve beneficiary categories: %w", err)
			}

			return fmt.Sprintf("Category %s: %s (default: %t)", category.ID, category.Name, category.IsDefault), nil
		},
	}
}

type paymentInput struct {
	BeneficiaryID  string `json:"beneficiary_id"`
	Amount         string `json:"amount"`
	MyReference    string `json:"my_reference"`
	TheirReference string `json:"their_reference"`
}

func (f *ToolFactory) payBeneficiariesTool() Tool {
	return Tool{
		Name:        "pay_beneficiaries",
		Description: "Pays one or more registered beneficiaries from an account. The payments argument is a JSON array of objects with beneficiary_id, amount, my_reference and their_reference.",
		HasSchema:   true,
		Schema: Property{
			Type: SchemaTypeObject,
			Properties: map[string]Property{
				"account_id": {
					Type:        SchemaTypeString,
					Description: "The source account ID",
				},
				"payments": {
					Type:        SchemaTypeString,
					Description: `JSON array, e.g. [{"beneficiary_id":"456","amount":"250.00","my_reference":"rent","their_reference":"march"}]`,
				},
			},
			Required: []string{"account_id", "payments"},
		},
		Fn: func(input string) (string, error) {
			var args struct {
				AccountID string `json:"account_id"`
				Payments  string `json:"payments"`
			}
			if err := json.Unmarshal([]byte(input), &args); err != nil {
				return "", fmt.Errorf("could not parse tool input: %w", err)
			}

			var items []paymentInput
			if err := json.Unmarshal([]byte(args.Payments), &items); err != nil {
				return "", fmt.Errorf("could not parse payments: %w", err)
			}

			payments := make([]investec.BeneficiaryPaymentItem, len(items))
			for i, item := range items {
				amount, err := decimal.NewFromString(item.Amount)
				if err != nil {
					return "", fmt.Errorf("invalid amount %q: %w", item.Amount, err)
				}
				payments[i] = investec.BeneficiaryPaymentItem{
					BeneficiaryID:  item.BeneficiaryID,
					Amount:         amount,
					MyReference:    item.MyReference,
					TheirReference: item.TheirReference,
				}
			}

			response, err := f.client.PayBeneficiaries(f.ctx, args.AccountID, payments)
			if err != nil {
				return "", fmt.Errorf("unable to pay beneficiaries: %w", err)
			}

			return formatTransferResponseItems(response.TransferResponses, response.ErrorMessage), nil
		},
	}
}

func (f *ToolFactory) listProfilesTool() Tool {
	return Tool{
		Name:        "list_profiles",
		Description: "Lists all profiles of the client. A profile groups accounts under one authorisation context.",
		Fn: func(_ string) (string, error) {
			profiles, err := f.client.GetProfiles(f.ctx)
			if err != nil {
				return "", fmt.Errorf("unable to retrieve profiles: %w", err)
			}

			return formatProfiles(profiles), nil
		},
	}
}

func (f *ToolFactory) profileAccountsTool() Tool {
	return Tool{
		Name:        "profile_accounts",
		Description: "Lists the accounts that belong to one profile.",
		HasSchema:   true,
		Schema: Property{
			Type: SchemaTypeObject,
			Properties: map[string]Property{
				"profile_id": {
					Type:        SchemaTypeString,
					Description: "The ID of the profile",
				},
			},
			Required: []string{"profile_id"},
		},
		Fn: func(input string) (string, error) {
			var args struct {
				ProfileID string `json:"profile_id"`
			}
			if err := json.Unmarshal([]byte(input), &args); err != nil {
				return "", fmt.Errorf("could not parse tool input: %w", err)
			}

			accounts, err := f.client.GetProfileAccounts(f.ctx, args.ProfileID)
			if err != nil {
				return "", fmt.Errorf("unable to retrieve profile accounts: %w", err)
			}

			return formatAccounts(accounts), nil
		},
	}
}

func (f *ToolFactory) authorisationSetupTool() Tool {
	return Tool{
		Name:        "authorisation_setup",
		Description: "Returns the payment sign-off rules for one account under one profile.",
		HasSchema:   true,
		Schema: Property{
			Type: SchemaTypeObject,
			Properties: map[string]Property{
				"profile_id": {
					Type:        SchemaTypeString,
					Description: "The ID of the profile",
				},
				"account_id": {
					Type:        SchemaTypeString,
					Description: "The ID of the account",
				},
			},
			Required: []string{"profile_id", "account_id"},
		},
		Fn: func(input string) (string, error) {
			var args struct {
				ProfileID string `json:"profile_id"`
				AccountID string `json:"account_id"`
			}
			if err := json.Unmarshal([]byte(input), &args); err != nil {
				return "", fmt.Errorf("could not parse tool input: %w", err)
			}

			setup, err := f.client.GetAuthorisationSetup(f.ctx, args.ProfileID, args.AccountID)
			if err != nil {
				return "", fmt.Errorf("unable to retrieve authorisation setup: %w", err)
			}

			return formatAuthorisationSetup(setup), nil
		},
	}
}

func (f *ToolFactory) profileBeneficiariesTool() Tool {
	return Tool{
		Name:        "profile_beneficiaries",
		Description: "Lists the beneficiaries payable from one account under one profile.",
		HasSchema:   true,
		Schema: Property{
			Type: SchemaTypeObject,
			Properties: map[string]Property{
				"profile_id": {
					Type:        SchemaTypeString,
					Description: "The ID of the profile",
				},
				"account_id": {
					Type:        SchemaTypeString,
					Description: "The ID of the account",
				},
			},
			Required: []string{"profile_id", "account_id"},
		},
		Fn: func(input string) (string, error) {
			var args struct {
				ProfileID string `json:"profile_id"`
				AccountID string `json:"account_id"`
			}
			if err := json.Unmarshal([]byte(input), &args); err != nil {
				return "", fmt.Errorf("could not parse tool input: %w", err)
			}

			beneficiaries, err := f.client.GetProfileBeneficiaries(f.ctx, args.ProfileID, args.AccountID)
			if err != nil {
				return "", fmt.Errorf("unable to retrieve profile beneficiaries: %w", err)
			}

			return formatBeneficiaries(beneficiaries), nil
		},
	}
}

func (f *ToolFactory) listDocumentsTool() Tool {
	return Tool{
		Name:        "list_documents",
		Description: "Lists account documents (statements, tax certificates) in a date range. Both dates are required.",
		HasSchema:   true,
		Schema: Property{
			Type: SchemaTypeObject,
			Properties: map[string]Property{
				"account_id": {
					Type:        SchemaTypeString,
					Description: "The ID of the account",
				},
				"from_date": {
					Type:        SchemaTypeString,
					Description: "Start date in YYYY-MM-DD format",
				},
				"to_date": {
					Type:        SchemaTypeString,
					Description: "End date in YYYY-MM-DD format",
				},
			},
			Required: []string{"account_id", "from_date", "to_date"},
		},
		Fn: func(input string) (string, error) {
			var args struct {
				AccountID string `json:"account_id"`
				FromDate  string `json:"from_date"`
				ToDate    string `json:"to_date"`
			}
			if err := json.Unmarshal([]byte(input), &args); err != nil {
				return "", fmt.Errorf("could not parse tool input: %w", err)
			}

			documents, err := f.client.GetDocuments(f.ctx, args.AccountID,
				investec.DateString(args.FromDate), investec.DateString(args.ToDate))
			if err != nil {
				return "", fmt.Errorf("unable to retrieve documents: %w", err)
			}

			return formatDocuments(documents), nil
		},
	}
}
