package investec

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ruanvs/investec-agent/pkg/config"
	"github.com/ruanvs/investec-agent/pkg/prometheus"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	client     *Client
	server     *httptest.Server
	tokenCalls int
}

// newFixture spins up a fake Investec API. The token endpoint is handled
// here; everything else is delegated to the test's handler.
func newFixture(t *testing.T, expiresIn interface{}, handler http.HandlerFunc) *fixture {
	t.Helper()

	f := &fixture{}
	mux := http.NewServeMux()
	mux.HandleFunc("/identity/v2/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		f.tokenCalls++

		assert.Equal(t, http.MethodPost, r.Method)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "test-id", user)
		assert.Equal(t, "test-secret", pass)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))

		response := map[string]interface{}{"access_token": "test-token"}
		if expiresIn != nil {
			response["expires_in"] = expiresIn
		}

		w.Header().Set("Content-Type", "application/json")
		assert.NoError(t, json.NewEncoder(w).Encode(response))
	})
	if handler != nil {
		mux.HandleFunc("/za/pb/v1/", handler)
	}

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)

	conf := &config.Config{
		ClientID:      "test-id",
		ClientSecret:  "test-secret",
		APIKey:        "test-key",
		Timeout:       5,
		ProductionURL: f.server.URL,
		SandboxURL:    f.server.URL,
	}

	logger := logrus.New()
	var buf bytes.Buffer
	logger.SetOutput(&buf)

	f.client = NewClient(conf, prometheus.New(), logger)
	return f
}

func jsonHandler(t *testing.T, body string) http.HandlerFunc {
	t.Helper()

	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))

		w.Header().Set("Content-Type", "application/json")
		_, err := w.Write([]byte(body))
		assert.NoError(t, err)
	}
}

func TestClient_AuthenticatesOnceBeforeFirstCall(t *testing.T) {
	f := newFixture(t, 1799, jsonHandler(t, `{"data":{"accounts":[]}}`))

	_, err := f.client.GetAccounts(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, f.tokenCalls)

	// token is still fresh - the second call must not re-authenticate
	_, err = f.client.GetAccounts(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, f.tokenCalls)
}

func TestClient_TokenExpiryMargin(t *testing.T) {
	f := newFixture(t, 120, jsonHandler(t, `{}`))

	issued := time.Now()
	_, err := f.client.GetAccounts(context.Background())
	require.NoError(t, err)

	// expires_in = 120 with the 60 second margin means the token dies
	// 60 seconds after it was issued
	assert.False(t, f.client.tokenExpired(issued.Add(59*time.Second)))
	assert.True(t, f.client.tokenExpired(issued.Add(61*time.Second)))
}

func TestClient_DefaultExpiresIn(t *testing.T) {
	f := newFixture(t, nil, jsonHandler(t, `{}`))

	issued := time.Now()
	_, err := f.client.GetAccounts(context.Background())
	require.NoError(t, err)

	// 1799 - 60 seconds
	assert.False(t, f.client.tokenExpired(issued.Add(1738*time.Second)))
	assert.True(t, f.client.tokenExpired(issued.Add(1740*time.Second)))
}

func TestClient_ExpiredTokenTriggersRefresh(t *testing.T) {
	f := newFixture(t, 1799, jsonHandler(t, `{"data":{"accounts":[]}}`))

	_, err := f.client.GetAccounts(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, f.tokenCalls)

	f.client.mu.Lock()
	f.client.tokenExpiresAt = time.Now().Add(-time.Second)
	f.client.mu.Unlock()

	_, err = f.client.GetAccounts(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 2, f.tokenCalls)
}

func TestClient_AuthFailureStatus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/identity/v2/oauth2/token", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad credentials", http.StatusUnauthorized)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	conf := &config.Config{
		ClientID:      "test-id",
		ClientSecret:  "test-secret",
		APIKey:        "test-key",
		Timeout:       5,
		ProductionURL: server.URL,
	}
	client := NewClient(conf, prometheus.New(), logrus.New())

	_, err := client.GetAccounts(context.Background())
	require.Error(t, err)

	var authErr *AuthError
	assert.True(t, errors.As(err, &authErr))

	// an auth failure is never a request failure
	var reqErr *RequestError
	assert.False(t, errors.As(err, &reqErr))
}

func TestClient_AuthMissingAccessToken(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/identity/v2/oauth2/token", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"expires_in":1799}`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	conf := &config.Config{Timeout: 5, ProductionURL: server.URL}
	client := NewClient(conf, prometheus.New(), logrus.New())

	_, err := client.GetAccounts(context.Background())
	require.Error(t, err)

	var authErr *AuthError
	assert.True(t, errors.As(err, &authErr))
	assert.Contains(t, authErr.Error(), "no access token")
}

func TestClient_RateLimit(t *testing.T) {
	f := newFixture(t, 1799, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"message":"too many requests"}`))
	})

	_, err := f.client.GetAccounts(context.Background())
	require.Error(t, err)

	var rateErr *RateLimitError
	require.True(t, errors.As(err, &rateErr))
	assert.Equal(t, http.StatusTooManyRequests, rateErr.StatusCode)
	assert.Equal(t, "too many requests", rateErr.Body["message"])

	// the hierarchy holds - a rate limit is also a request failure
	// and an API failure
	var reqErr *RequestError
	assert.True(t, errors.As(err, &reqErr))
	var apiErr *APIError
	assert.True(t, errors.As(err, &apiErr))
}

func TestClient_RequestError(t *testing.T) {
	f := newFixture(t, 1799, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})

	_, err := f.client.GetAccountBalance(context.Background(), "A1")
	require.Error(t, err)

	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, http.StatusNotFound, reqErr.StatusCode)

	var rateErr *RateLimitError
	assert.False(t, errors.As(err, &rateErr))
}

func TestClient_MissingEnvelopeMeansEmptyList(t *testing.T) {
	tests := []struct {
		name string
		body string
		call func(c *Client) (int, error)
	}{
		{
			name: "accounts without data",
			body: `{}`,
			call: func(c *Client) (int, error) {
				accounts, err := c.GetAccounts(context.Background())
				return len(accounts), err
			},
		},
		{
			name: "transactions without inner key",
			body: `{"data":{}}`,
			call: func(c *Client) (int, error) {
				txns, err := c.GetAccountTransactions(context.Background(), "A1", TransactionOptions{})
				return len(txns), err
			},
		},
		{
			name: "beneficiaries with object instead of list",
			body: `{"data":{}}`,
			call: func(c *Client) (int, error) {
				bens, err := c.GetBeneficiaries(context.Background())
				return len(bens), err
			},
		},
		{
			name: "profiles without data",
			body: `{}`,
			call: func(c *Client) (int, error) {
				profiles, err := c.GetProfiles(context.Background())
				return len(profiles), err
			},
		},
		{
			name: "pending transactions without irregular key",
			body: `{"data":{"pendingTransactions":[]}}`,
			call: func(c *Client) (int, error) {
				pending, err := c.GetAccountPendingTransactions(context.Background(), "A1")
				return len(pending), err
			},
		},
		{
			name: "documents without data",
			body: `{}`,
			call: func(c *Client) (int, error) {
				docs, err := c.GetDocuments(context.Background(), "A1", DateString("2024-01-01"), DateString("2024-01-31"))
				return len(docs), err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, 1799, jsonHandler(t, tt.body))
			count, err := tt.call(f.client)
			assert.NoError(t, err)
			assert.Equal(t, 0, count)
		})
	}
}

func TestClient_EmptySuccessBody(t *testing.T) {
	f := newFixture(t, 1799, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	accounts, err := f.client.GetAccounts(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, accounts)
}

func TestClient_NonJSONSuccessBody(t *testing.T) {
	f := newFixture(t, 1799, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>maintenance</html>"))
	})

	_, err := f.client.GetAccounts(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	assert.True(t, errors.As(err, &apiErr))
	var reqErr *RequestError
	assert.False(t, errors.As(err, &reqErr))
}

func TestClient_TransactionsEndToEnd(t *testing.T) {
	var gotPath, gotQuery string
	f := newFixture(t, 1799, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"transactions":[{"accountId":"A1","type":"DEBIT","status":"POSTED","description":"Coffee","amount":"45.50"}]}}`))
	})

	transactions, err := f.client.GetAccountTransactions(context.Background(), "A1", TransactionOptions{
		FromDate: DateOf(time.Date(2024, 1, 1, 10, 30, 0, 0, time.UTC)),
		ToDate:   DateString("2024-01-31"),
	})
	require.NoError(t, err)

	assert.Equal(t, "/za/pb/v1/accounts/A1/transactions", gotPath)
	assert.Equal(t, "fromDate=2024-01-01&toDate=2024-01-31", gotQuery)

	require.Len(t, transactions, 1)
	txn := transactions[0]
	assert.Equal(t, "A1", txn.AccountID)
	assert.Equal(t, TransactionTypeDebit, txn.Type)
	assert.Equal(t, TransactionStatusPosted, txn.Status)
	assert.Equal(t, "Coffee", txn.Description)
	assert.True(t, txn.Amount.Equal(decimal.RequireFromString("45.50")))
}

func TestClient_TransferMultipleBody(t *testing.T) {
	var gotBody map[string]interface{}
	f := newFixture(t, 1799, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"TransferResponses":[{"Status":"PENDING","BeneficiaryAccountId":"B1"}]}}`))
	})

	response, err := f.client.TransferMultiple(context.Background(), "A1", []TransferItem{
		{
			BeneficiaryAccountID: "B1",
			Amount:               decimal.RequireFromString("100.25"),
			MyReference:          "rent",
			TheirReference:       "march",
		},
	}, "P1")
	require.NoError(t, err)

	assert.Equal(t, "P1", gotBody["profileId"])
	list, ok := gotBody["transferList"].([]interface{})
	require.True(t, ok)
	require.Len(t, list, 1)
	item := list[0].(map[string]interface{})
	assert.Equal(t, "B1", item["beneficiaryAccountId"])
	assert.Equal(t, "100.25", item["amount"]) // decimal string, never a float

	require.Len(t, response.TransferResponses, 1)
	assert.Equal(t, "PENDING", *response.TransferResponses[0].Status)
	assert.Equal(t, "B1", *response.TransferResponses[0].BeneficiaryAccountID)
}

func TestClient_PayBeneficiariesBody(t *testing.T) {
	var gotBody map[string]interface{}
	f := newFixture(t, 1799, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"TransferResponses":[],"ErrorMessage":"insufficient funds"}}`))
	})

	response, err := f.client.PayBeneficiaries(context.Background(), "A1", []BeneficiaryPaymentItem{
		{
			BeneficiaryID:  "BEN1",
			Amount:         decimal.RequireFromString("10.00"),
			MyReference:    "gift",
			TheirReference: "from me",
		},
	})
	require.NoError(t, err)

	list, ok := gotBody["paymentList"].([]interface{})
	require.True(t, ok)
	require.Len(t, list, 1)
	item := list[0].(map[string]interface{})
	assert.Equal(t, "BEN1", item["beneficiaryId"])
	assert.Equal(t, "10.00", item["amount"])
	// optional authoriser fields must be omitted, not sent as null
	assert.NotContains(t, item, "authoriserAId")
	assert.NotContains(t, item, "fasterPayment")

	require.NotNil(t, response.ErrorMessage)
	assert.Equal(t, "insufficient funds", *response.ErrorMessage)
}

func TestClient_GetDocumentBinary(t *testing.T) {
	content := []byte("%PDF-1.4 not really a pdf")
	var gotPath string
	f := newFixture(t, 1799, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write(content)
	})

	data, err := f.client.GetDocument(context.Background(), "A1", "Statement", DateString("2024-02-29"))
	require.NoError(t, err)

	assert.Equal(t, "/za/pb/v1/accounts/A1/document/Statement/2024-02-29", gotPath)
	assert.Equal(t, content, data)
}

func TestClient_GetDocumentErrorMapping(t *testing.T) {
	f := newFixture(t, 1799, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"no such document"}`))
	})

	_, err := f.client.GetDocument(context.Background(), "A1", "Statement", DateString("2024-02-29"))
	require.Error(t, err)

	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, http.StatusNotFound, reqErr.StatusCode)
	assert.Equal(t, "no such document", reqErr.Body["message"])
}

func TestClient_DocumentsRequireBothDates(t *testing.T) {
	var gotQuery string
	f := newFixture(t, 1799, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"documentType":"Statement","documentDate":"2024-01-31"}]}`))
	})

	documents, err := f.client.GetDocuments(context.Background(), "A1",
		DateOf(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
		DateOf(time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)

	assert.Equal(t, "fromDate=2024-01-01&toDate=2024-01-31", gotQuery)
	require.Len(t, documents, 1)
	assert.Equal(t, "Statement", documents[0].DocumentType)
	assert.False(t, documents[0].DateAssumed)
}

func TestClient_AuthorisationSetup(t *testing.T) {
	body := `{"data":{
		"numberOfAuthorisationRequired":"2",
		"period":[{"id":"1","description":"24 hours"}],
		"authorisersListA":[{"authoriserId":"AA","name":"Alice"}],
		"authorisersListB":[]
	}}`
	f := newFixture(t, 1799, jsonHandler(t, body))

	setup, err := f.client.GetAuthorisationSetup(context.Background(), "P1", "A1")
	require.NoError(t, err)

	assert.Equal(t, "2", setup.NumberOfAuthorisationRequired)
	require.Len(t, setup.Period, 1)
	assert.Equal(t, "24 hours", setup.Period[0].Description)
	require.Len(t, setup.AuthorisersListA, 1)
	assert.Equal(t, "Alice", setup.AuthorisersListA[0].Name)
	assert.NotNil(t, setup.AuthorisersListB)
	assert.Empty(t, setup.AuthorisersListB)
}

func TestClient_NetworkFailure(t *testing.T) {
	conf := &config.Config{
		ClientID:      "test-id",
		ClientSecret:  "test-secret",
		APIKey:        "test-key",
		Timeout:       1,
		ProductionURL: "http://127.0.0.1:1", // nothing listens here
	}
	client := NewClient(conf, prometheus.New(), logrus.New())

	_, err := client.GetAccounts(context.Background())
	require.Error(t, err)

	// the failure happens during token acquisition, so it is an auth
	// failure wrapping the transport error
	var authErr *AuthError
	assert.True(t, errors.As(err, &authErr))
}

func TestClient_ErrorMessages(t *testing.T) {
	err := &RequestError{
		APIError:   APIError{Message: "request to /za/pb/v1/accounts failed"},
		StatusCode: 500,
	}
	assert.Equal(t, "request to /za/pb/v1/accounts failed (status 500)", err.Error())

	wrapped := &APIError{Message: "request failed", Err: fmt.Errorf("connection refused")}
	assert.Equal(t, "request failed: connection refused", wrapped.Error())
}
