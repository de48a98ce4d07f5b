package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruanvs/investec-agent/pkg/config"
	"github.com/ruanvs/investec-agent/pkg/investec"
	"github.com/ruanvs/investec-agent/pkg/prometheus"
)

func newTestFactory(t *testing.T, handler http.HandlerFunc) *ToolFactory {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/identity/v2/oauth2/token", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		assert.NoError(t, json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "test-token",
			"expires_in":   1799,
		}))
	})
	if handler != nil {
		mux.HandleFunc("/za/pb/v1/", handler)
	}

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	conf := &config.Config{
		ClientID:      "test-id",
		ClientSecret:  "test-secret",
		APIKey:        "test-key",
		Timeout:       5,
		ProductionURL: server.URL,
		SandboxURL:    server.URL,
	}

	logger := logrus.New()
	var buf bytes.Buffer
	logger.SetOutput(&buf)

	return &ToolFactory{
		client: investec.NewClient(conf, prometheus.New(), logger),
		config: conf,
		logger: logger,
		ctx:    context.Background(),
	}
}

func findTool(t *testing.T, tools []Tool, name string) Tool {
	t.Helper()

	for _, tool := range tools {
		if tool.Name == name {
			return tool
		}
	}

	t.Fatalf("tool %s not found", name)
	return Tool{}
}

func TestGetToolsCoversAllOperations(t *testing.T) {
	f := newTestFactory(t, nil)
	tools := f.GetTools()

	expected := []string{
		"current_time",
		"list_accounts",
		"account_balance",
		"account_transactions",
		"pending_transactions",
		"transfer_multiple",
		"list_beneficiaries",
		"beneficiary_categories",
		"pay_beneficiaries",
		"list_profiles",
		"profile_accounts",
		"authorisation_setup",
		"profile_beneficiaries",
		"list_documents",
	}

	assert.Len(t, tools, len(expected))
	for _, name := range expected {
		findTool(t, tools, name)
	}
}

func TestAccountBalanceTool(t *testing.T) {
	f := newTestFactory(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/za/pb/v1/accounts/A1/balance", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, err := w.Write([]byte(`{"data": {"accountId": "A1", "currentBalance": 1500.5, "availableBalance": 1400, "currency": "ZAR"}}`))
		assert.NoError(t, err)
	})

	tool := findTool(t, f.GetTools(), "account_balance")
	out, err := tool.Fn(`{"account_id": "A1"}`)

	require.NoError(t, err)
	assert.Contains(t, out, "Current balance: 1500.50 ZAR")
	assert.Contains(t, out, "Available balance: 1400.00 ZAR")
}

func TestAccountBalanceToolBadInput(t *testing.T) {
	f := newTestFactory(t, nil)
	tool := findTool(t, f.GetTools(), "account_balance")

	_, err := tool.Fn("not json")
	assert.Error(t, err)
}

func TestTransferMultipleToolInvalidAmount(t *testing.T) {
	f := newTestFactory(t, nil)
	tool := findTool(t, f.GetTools(), "transfer_multiple")

	_, err := tool.Fn(`{"account_id": "A1", "transfers": "[{\"beneficiary_account_id\":\"B1\",\"amount\":\"lots\"}]"}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid amount")
}

func TestTransferMultipleToolBody(t *testing.T) {
	var body map[string]interface{}
	f := newTestFactory(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/za/pb/v1/accounts/A1/transfermultiple", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, err := w.Write([]byte(`{"data": {"TransferResponses": [{"Status": "SUCCESS", "PaymentReferenceNumber": "PRN1"}]}}`))
		assert.NoError(t, err)
	})

	tool := findTool(t, f.GetTools(), "transfer_multiple")
	out, err := tool.Fn(`{"account_id": "A1", "transfers": "[{\"beneficiary_account_id\":\"B1\",\"amount\":\"100.25\",\"my_reference\":\"savings\",\"their_reference\":\"topup\"}]"}`)

	require.NoError(t, err)
	assert.Contains(t, out, "Status: SUCCESS")
	assert.Contains(t, out, "Reference: PRN1")

	transfers, ok := body["transferList"].([]interface{})
	require.True(t, ok)
	require.Len(t, transfers, 1)
	first, ok := transfers[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "B1", first["beneficiaryAccountId"])
	assert.Equal(t, "100.25", first["amount"])
}

func TestStaticTools(t *testing.T) {
	path := filepath.Join(t.TempDir(), "static.yml")
	content := `tools:
  - name: branch_code
    description: Returns the universal branch code.
    result: The universal branch code is 580105.
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	f := newTestFactory(t, nil)
	f.config.StaticToolsPath = path

	tools := f.GetTools()
	tool := findTool(t, tools, "branch_code")

	out, err := tool.Fn("")
	require.NoError(t, err)
	assert.Equal(t, "The universal branch code is 580105.", out)
}

func TestStaticToolsMissingFile(t *testing.T) {
	f := newTestFactory(t, nil)
	f.config.StaticToolsPath = "/nonexistent/static.yml"

	// a broken static config must not break the built-in tools
	tools := f.GetTools()
	assert.Len(t, tools, 14)
}
