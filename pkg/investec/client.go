package investec

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ruanvs/investec-agent/pkg/config"
	"github.com/ruanvs/investec-agent/pkg/prometheus"
	"github.com/sirupsen/logrus"
)

const (
	tokenPath = "/identity/v2/oauth2/token"
	apiBase   = "/za/pb/v1"

	// Tokens are considered expired one minute before the server says so,
	// so no in-flight call can run with a token that dies mid-flight.
	tokenExpiryMargin = 60 * time.Second

	// The sandbox omits expires_in now and then. 1799 seconds is what the
	// production API hands out.
	defaultExpiresIn = 1799
)

// Client talks to the Investec Programmable Banking API. It owns the
// OAuth2 client-credentials token and refreshes it inline whenever a call
// finds it missing or expired. The token and its expiry timestamp are the
// only mutable state; a mutex serialises the check-and-refresh sequence
// because the HTTP shell drives the client from concurrent handlers.
type Client struct {
	clientID     string
	clientSecret string
	apiKey       string
	baseURL      string

	httpClient *http.Client
	monitor    *prometheus.Monitor
	logger     *logrus.Logger

	mu             sync.Mutex
	accessToken    string
	tokenExpiresAt time.Time
}

// NewClient creates a client for the environment selected in the config.
func NewClient(conf *config.Config, monitor *prometheus.Monitor, logger *logrus.Logger) *Client {
	timeout := time.Duration(conf.Timeout) * time.Second
	if conf.Timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		clientID:     conf.ClientID,
		clientSecret: conf.ClientSecret,
		apiKey:       conf.APIKey,
		baseURL:      strings.TrimSuffix(conf.BaseURL(), "/"),

		httpClient: &http.Client{
			Timeout: timeout,
		},
		monitor: monitor,
		logger:  logger,
	}
}

// tokenExpired reports whether a new token is needed at the given time.
// The caller must hold c.mu.
func (c *Client) tokenExpired(now time.Time) bool {
	return c.accessToken == "" || !now.Before(c.tokenExpiresAt)
}

// ensureToken returns a valid access token, re-authenticating first when
// the current one is missing or past its safety margin.
func (c *Client) ensureToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.tokenExpired(time.Now()) {
		if err := c.authenticate(ctx); err != nil {
			return "", err
		}
	}

	return c.accessToken, nil
}

// authenticate performs the client-credentials grant against the token
// endpoint. Any failure here - HTTP, transport or parsing - is an
// AuthError, never a RequestError. The caller must hold c.mu.
func (c *Client) authenticate(ctx context.Context) error {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+tokenPath, strings.NewReader(form.Encode()))
	if err != nil {
		return &AuthError{APIError{Message: "could not create token request", Err: err}}
	}

	basic := base64.StdEncoding.EncodeToString([]byte(c.clientID + ":" + c.clientSecret))
	req.Header.Set("Authorization", "Basic "+basic)
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.monitor.InvestecTokenRefresh.WithLabelValues("error").Inc()
		return &AuthError{APIError{Message: "authentication request failed", Err: err}}
	}

	defer resp.Body.Close() //nolint: errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.monitor.InvestecTokenRefresh.WithLabelValues("error").Inc()
		return &AuthError{APIError{Message: "could not read token response", Err: err}}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.monitor.InvestecTokenRefresh.WithLabelValues("error").Inc()
		return &AuthError{APIError{Message: fmt.Sprintf("authentication failed with status %d", resp.StatusCode)}}
	}

	var data map[string]interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		c.monitor.InvestecTokenRefresh.WithLabelValues("error").Inc()
		return &AuthError{APIError{Message: "invalid JSON in token response", Err: err}}
	}

	token := readString(data, "access_token")
	if token == "" {
		c.monitor.InvestecTokenRefresh.WithLabelValues("error").Inc()
		return &AuthError{APIError{Message: "no access token in response"}}
	}

	expiresIn := float64(defaultExpiresIn)
	switch v := data["expires_in"].(type) {
	case float64:
		expiresIn = v
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			expiresIn = f
		}
	}

	c.accessToken = token
	c.tokenExpiresAt = time.Now().Add(time.Duration(expiresIn)*time.Second - tokenExpiryMargin)
	c.monitor.InvestecTokenRefresh.WithLabelValues("success").Inc()
	c.logger.Debugf("access token refreshed, valid until %s", c.tokenExpiresAt.Format(time.RFC3339))

	return nil
}

// do issues an authenticated request and returns the raw response body.
// Status mapping: 429 -> RateLimitError, other non-2xx -> RequestError,
// transport failure -> APIError.
func (c *Client) do(ctx context.Context, operation, method, path string, params url.Values, payload interface{}) ([]byte, error) {
	token, err := c.ensureToken(ctx)
	if err != nil {
		return nil, err
	}

	var reqBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, &APIError{Message: "could not encode request body", Err: err}
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, &APIError{Message: "could not create request", Err: err}
	}

	if len(params) > 0 {
		req.URL.RawQuery = params.Encode()
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.monitor.InvestecRequests.WithLabelValues(operation, "error").Inc()
		return nil, &APIError{Message: "request failed", Err: err}
	}

	defer resp.Body.Close() //nolint: errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.monitor.InvestecRequests.WithLabelValues(operation, "error").Inc()
		return nil, &APIError{Message: "could not read response body", Err: err}
	}

	c.monitor.InvestecRequests.WithLabelValues(operation, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &RateLimitError{RequestError{
			APIError:   APIError{Message: "rate limit exceeded, retry after a delay"},
			StatusCode: resp.StatusCode,
			Body:       parseErrorBody(body),
		}}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &RequestError{
			APIError:   APIError{Message: fmt.Sprintf("request to %s failed", path)},
			StatusCode: resp.StatusCode,
			Body:       parseErrorBody(body),
		}
	}

	return body, nil
}

// request issues an authenticated call and decodes the JSON response.
// An empty body on success is an empty mapping, not an error.
func (c *Client) request(ctx context.Context, operation, method, path string, params url.Values, payload interface{}) (map[string]interface{}, error) {
	body, err := c.do(ctx, operation, method, path, params, payload)
	if err != nil {
		return nil, err
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return map[string]interface{}{}, nil
	}

	var data map[string]interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, &APIError{Message: "invalid JSON in response", Err: err}
	}

	return data, nil
}

func parseErrorBody(body []byte) map[string]interface{} {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	var data map[string]interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		return nil
	}

	return data
}

// envelope helpers - the API is not consistent about what lives under
// the "data" key, so each shape gets its own unwrapper

func dataObject(response map[string]interface{}) map[string]interface{} {
	if data, ok := response["data"].(map[string]interface{}); ok {
		return data
	}

	return map[string]interface{}{}
}

func dataList(response map[string]interface{}) []map[string]interface{} {
	raw, ok := response["data"].([]interface{})
	if !ok {
		return nil
	}

	return mapItems(raw)
}

func dataKeyList(response map[string]interface{}, key string) []map[string]interface{} {
	data, ok := response["data"].(map[string]interface{})
	if !ok {
		return nil
	}

	raw, ok := data[key].([]interface{})
	if !ok {
		return nil
	}

	return mapItems(raw)
}

func mapItems(raw []interface{}) []map[string]interface{} {
	items := make([]map[string]interface{}, 0, len(raw))
	for _, entry := range raw {
		if item, ok := entry.(map[string]interface{}); ok {
			items = append(items, item)
		}
	}

	return items
}

// GetAccounts lists all accounts for the authenticated user.
func (c *Client) GetAccounts(ctx context.Context) ([]Account, error) {
	response, err := c.request(ctx, "get_accounts", http.MethodGet, apiBase+"/accounts", nil, nil)
	if err != nil {
		return nil, err
	}

	accounts := []Account{}
	for _, item := range dataKeyList(response, "accounts") {
		accounts = append(accounts, parseAccount(item))
	}

	return accounts, nil
}

// GetAccountBalance fetches the balance figures for one account.
func (c *Client) GetAccountBalance(ctx context.Context, accountID string) (AccountBalance, error) {
	path := fmt.Sprintf("%s/accounts/%s/balance", apiBase, accountID)
	response, err := c.request(ctx, "get_account_balance", http.MethodGet, path, nil, nil)
	if err != nil {
		return AccountBalance{}, err
	}

	return parseAccountBalance(dataObject(response)), nil
}

// TransactionOptions narrows down a transaction listing. All fields are
// optional.
type TransactionOptions struct {
	FromDate        Date
	ToDate          Date
	TransactionType string
	IncludePending  bool
}

// GetAccountTransactions lists transactions for one account, optionally
// filtered by date range and type.
func (c *Client) GetAccountTransactions(ctx context.Context, accountID string, opts TransactionOptions) ([]Transaction, error) {
	params := url.Values{}
	if !opts.FromDate.IsZero() {
		params.Set("fromDate", opts.FromDate.String())
	}
	if !opts.ToDate.IsZero() {
		params.Set("toDate", opts.ToDate.String())
	}
	if opts.TransactionType != "" {
		params.Set("transactionType", opts.TransactionType)
	}
	if opts.IncludePending {
		params.Set("includePending", "true")
	}

	path := fmt.Sprintf("%s/accounts/%s/transactions", apiBase, accountID)
	response, err := c.request(ctx, "get_account_transactions", http.MethodGet, path, params, nil)
	if err != nil {
		return nil, err
	}

	transactions := []Transaction{}
	for _, item := range dataKeyList(response, "transactions") {
		transactions = append(transactions, parseTransaction(item))
	}

	return transactions, nil
}

// GetAccountPendingTransactions lists not yet settled transactions.
func (c *Client) GetAccountPendingTransactions(ctx context.Context, accountID string) ([]PendingTransaction, error) {
	path := fmt.Sprintf("%s/accounts/%s/pending-transactions", apiBase, accountID)
	response, err := c.request(ctx, "get_pending_transactions", http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}

	// the envelope key really is PendingTransaction - singular, PascalCase
	pending := []PendingTransaction{}
	for _, item := range dataKeyList(response, "PendingTransaction") {
		pending = append(pending, parsePendingTransaction(item))
	}

	return pending, nil
}

// TransferMultiple moves funds from the given account to one or more own
// accounts in a single call.
func (c *Client) TransferMultiple(ctx context.Context, accountID string, transfers []TransferItem, profileID string) (TransferResponse, error) {
	request := TransferRequest{
		TransferList: transfers,
		ProfileID:    profileID,
	}

	path := fmt.Sprintf("%s/accounts/%s/transfermultiple", apiBase, accountID)
	response, err := c.request(ctx, "transfer_multiple", http.MethodPost, path, nil, request.toPayload())
	if err != nil {
		return TransferResponse{}, err
	}

	if data, ok := response["data"].(map[string]interface{}); ok {
		return parseTransferResponse(data), nil
	}

	return parseTransferResponse(response), nil
}

// GetBeneficiaries lists all registered beneficiaries.
func (c *Client) GetBeneficiaries(ctx context.Context) ([]Beneficiary, error) {
	response, err := c.request(ctx, "get_beneficiaries", http.MethodGet, apiBase+"/accounts/beneficiaries", nil, nil)
	if err != nil {
		return nil, err
	}

	// data is a bare list here, not an object
	beneficiaries := []Beneficiary{}
	for _, item := range dataList(response) {
		beneficiaries = append(beneficiaries, parseBeneficiary(item))
	}

	return beneficiaries, nil
}

// GetBeneficiaryCategories fetches the beneficiary category record.
func (c *Client) GetBeneficiaryCategories(ctx context.Context) (BeneficiaryCategory, error) {
	response, err := c.request(ctx, "get_beneficiary_categories", http.MethodGet, apiBase+"/accounts/beneficiarycategories", nil, nil)
	if err != nil {
		return BeneficiaryCategory{}, err
	}

	return parseBeneficiaryCategory(dataObject(response)), nil
}

// PayBeneficiaries pays one or more beneficiaries from the given account.
func (c *Client) PayBeneficiaries(ctx context.Context, accountID string, payments []BeneficiaryPaymentItem) (PaymentResponse, error) {
	request := BeneficiaryPaymentRequest{
		PaymentList: payments,
	}

	path := fmt.Sprintf("%s/accounts/%s/paymultiple", apiBase, accountID)
	response, err := c.request(ctx, "pay_beneficiaries", http.MethodPost, path, nil, request.toPayload())
	if err != nil {
		return PaymentResponse{}, err
	}

	if data, ok := response["data"].(map[string]interface{}); ok {
		return parsePaymentResponse(data), nil
	}

	return parsePaymentResponse(response), nil
}

// GetProfiles lists all profiles for the authenticated user.
func (c *Client) GetProfiles(ctx context.Context) ([]Profile, error) {
	response, err := c.request(ctx, "get_profiles", http.MethodGet, apiBase+"/profiles", nil, nil)
	if err != nil {
		return nil, err
	}

	profiles := []Profile{}
	for _, item := range dataList(response) {
		profiles = append(profiles, parseProfile(item))
	}

	return profiles, nil
}

// GetProfileAccounts lists the accounts of one profile.
func (c *Client) GetProfileAccounts(ctx context.Context, profileID string) ([]Account, error) {
	path := fmt.Sprintf("%s/profiles/%s/accounts", apiBase, profileID)
	response, err := c.request(ctx, "get_profile_accounts", http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}

	accounts := []Account{}
	for _, item := range dataList(response) {
		accounts = append(accounts, parseAccount(item))
	}

	return accounts, nil
}

// GetAuthorisationSetup fetches the sign-off rules for an account.
func (c *Client) GetAuthorisationSetup(ctx context.Context, profileID, accountID string) (AuthorisationSetup, error) {
	path := fmt.Sprintf("%s/profiles/%s/accounts/%s/authorisationsetupdetails", apiBase, profileID, accountID)
	response, err := c.request(ctx, "get_authorisation_setup", http.MethodGet, path, nil, nil)
	if err != nil {
		return AuthorisationSetup{}, err
	}

	return parseAuthorisationSetup(dataObject(response)), nil
}

// GetProfileBeneficiaries lists the beneficiaries payable from one
// account under one profile.
func (c *Client) GetProfileBeneficiaries(ctx context.Context, profileID, accountID string) ([]Beneficiary, error) {
	path := fmt.Sprintf("%s/profiles/%s/accounts/%s/beneficiaries", apiBase, profileID, accountID)
	response, err := c.request(ctx, "get_profile_beneficiaries", http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}

	beneficiaries := []Beneficiary{}
	for _, item := range dataList(response) {
		beneficiaries = append(beneficiaries, parseBeneficiary(item))
	}

	return beneficiaries, nil
}

// GetDocuments lists account documents in a date range. Unlike the
// transaction listing, both dates are mandatory here.
func (c *Client) GetDocuments(ctx context.Context, accountID string, fromDate, toDate Date) ([]Document, error) {
	params := url.Values{}
	params.Set("fromDate", fromDate.String())
	params.Set("toDate", toDate.String())

	path := fmt.Sprintf("%s/accounts/%s/documents", apiBase, accountID)
	response, err := c.request(ctx, "get_documents", http.MethodGet, path, params, nil)
	if err != nil {
		return nil, err
	}

	documents := []Document{}
	for _, item := range dataList(response) {
		documents = append(documents, parseDocument(item))
	}

	return documents, nil
}

// GetDocument downloads one document. The response is raw binary content
// (usually a PDF), not JSON, but auth headers and error mapping work the
// same as everywhere else.
func (c *Client) GetDocument(ctx context.Context, accountID, documentType string, documentDate Date) ([]byte, error) {
	path := fmt.Sprintf("%s/accounts/%s/document/%s/%s", apiBase, accountID, documentType, documentDate.String())
	return c.do(ctx, "get_document", http.MethodGet, path, nil, nil)
}
