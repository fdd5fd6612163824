// Package quickbooks is a typed client for the QuickBooks Online accounting API.
// It covers the customer and estimate operations used by quote synchronization.
package quickbooks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/straye-as/quote-api/internal/config"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	maxResponseSize = 4 << 20
	// QuickBooks caps MAXRESULTS at 1000 per query
	maxQueryResults     = 1000
	defaultQueryResults = 100
	defaultTimeout      = 30 * time.Second
)

// CredentialResolver supplies the realm and bearer token for each call.
// Implementations must check token freshness on every call.
type CredentialResolver interface {
	GetCredentials(ctx context.Context) (*Credentials, error)
}

// Client talks to the QuickBooks v3 REST API
type Client struct {
	baseURL      string
	minorVersion int
	httpClient   *http.Client
	credentials  CredentialResolver
	limiter      *rate.Limiter
	logger       *zap.Logger
}

// NewClient creates a QuickBooks client. Credentials are resolved per request, so a
// client can be built before QuickBooks is connected.
func NewClient(cfg *config.QuickBooksConfig, credentials CredentialResolver, logger *zap.Logger) *Client {
	timeout := cfg.Timeout()
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), 10)
	}

	return &Client{
		baseURL:      cfg.APIBaseURL(),
		minorVersion: cfg.MinorVersion,
		httpClient:   &http.Client{Timeout: timeout},
		credentials:  credentials,
		limiter:      limiter,
		logger:       logger,
	}
}

type queryResponse struct {
	QueryResponse struct {
		Customer      []Customer `json:"Customer"`
		Estimate      []Estimate `json:"Estimate"`
		StartPosition int        `json:"startPosition"`
		MaxResults    int        `json:"maxResults"`
	} `json:"QueryResponse"`
}

type estimateResponse struct {
	Estimate *Estimate `json:"Estimate"`
}

type customerResponse struct {
	Customer *Customer `json:"Customer"`
}

type estimatePayload struct {
	ID             string   `json:"Id,omitempty"`
	SyncToken      string   `json:"SyncToken,omitempty"`
	Sparse         *bool    `json:"sparse,omitempty"`
	CustomerRef    Ref      `json:"CustomerRef"`
	DocNumber      string   `json:"DocNumber,omitempty"`
	TxnDate        string   `json:"TxnDate,omitempty"`
	ExpirationDate string   `json:"ExpirationDate,omitempty"`
	Line           []Line   `json:"Line"`
	CustomerMemo   *MemoRef `json:"CustomerMemo,omitempty"`
}

// SearchCustomersByDisplayName returns customers whose display name matches exactly
func (c *Client) SearchCustomersByDisplayName(ctx context.Context, displayName string) ([]Customer, error) {
	q := fmt.Sprintf("select * from Customer where DisplayName = '%s'", escapeQueryValue(displayName))

	var resp queryResponse
	if err := c.query(ctx, "customer search", q, &resp); err != nil {
		return nil, err
	}
	return resp.QueryResponse.Customer, nil
}

// CreateCustomer creates a customer from a quote's customer snapshot
func (c *Client) CreateCustomer(ctx context.Context, input CustomerInput) (*Customer, error) {
	payload := Customer{DisplayName: input.DisplayName}
	if input.Email != "" {
		payload.PrimaryEmailAddr = &EmailAddress{Address: input.Email}
	}
	if input.Phone != "" {
		payload.PrimaryPhone = &PhoneNumber{FreeFormNumber: input.Phone}
	}
	if input.Address != "" {
		payload.BillAddr = &PhysicalAddress{Line1: input.Address}
	}

	var resp customerResponse
	if err := c.do(ctx, "customer create", http.MethodPost, "/customer", nil, payload, &resp); err != nil {
		return nil, err
	}
	if resp.Customer == nil || resp.Customer.ID == "" {
		return nil, fmt.Errorf("%w: customer create returned no customer", ErrInvalidResponse)
	}
	return resp.Customer, nil
}

// CreateEstimate creates a new estimate
func (c *Client) CreateEstimate(ctx context.Context, input EstimateInput) (*Estimate, error) {
	return c.saveEstimate(ctx, "estimate create", buildEstimatePayload(input))
}

// GetEstimate reads an estimate, including its current SyncToken
func (c *Client) GetEstimate(ctx context.Context, id string) (*Estimate, error) {
	var resp estimateResponse
	if err := c.do(ctx, "estimate read", http.MethodGet, "/estimate/"+url.PathEscape(id), nil, nil, &resp); err != nil {
		return nil, err
	}
	return narrowEstimate("estimate read", resp.Estimate)
}

// UpdateEstimate replaces an estimate. syncToken must come from a read made
// immediately before; QuickBooks rejects stale tokens.
func (c *Client) UpdateEstimate(ctx context.Context, id, syncToken string, input EstimateInput) (*Estimate, error) {
	payload := buildEstimatePayload(input)
	sparse := false
	payload.ID = id
	payload.SyncToken = syncToken
	payload.Sparse = &sparse
	return c.saveEstimate(ctx, "estimate update", payload)
}

// QueryEstimates returns up to pageSize estimates, most recently updated first.
// Returned estimates are decoded but not validated; callers validate each one.
func (c *Client) QueryEstimates(ctx context.Context, pageSize int) ([]Estimate, error) {
	if pageSize <= 0 {
		pageSize = defaultQueryResults
	}
	if pageSize > maxQueryResults {
		pageSize = maxQueryResults
	}
	q := fmt.Sprintf("select * from Estimate ORDERBY MetaData.LastUpdatedTime DESC STARTPOSITION 1 MAXRESULTS %d", pageSize)

	var resp queryResponse
	if err := c.query(ctx, "estimate query", q, &resp); err != nil {
		return nil, err
	}
	return resp.QueryResponse.Estimate, nil
}

func (c *Client) saveEstimate(ctx context.Context, op string, payload estimatePayload) (*Estimate, error) {
	var resp estimateResponse
	if err := c.do(ctx, op, http.MethodPost, "/estimate", nil, payload, &resp); err != nil {
		return nil, err
	}
	return narrowEstimate(op, resp.Estimate)
}

func (c *Client) query(ctx context.Context, op, q string, out interface{}) error {
	params := url.Values{}
	params.Set("query", q)
	return c.do(ctx, op, http.MethodGet, "/query", params, nil, out)
}

// do resolves credentials, throttles, sends one request and decodes the JSON response into out
func (c *Client) do(ctx context.Context, op, method, path string, params url.Values, body, out interface{}) error {
	creds, err := c.credentials.GetCredentials(ctx)
	if err != nil {
		return err
	}
	if creds == nil || creds.RealmID == "" || creds.AccessToken == "" {
		return ErrNotConfigured
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUpstreamUnavailable, op, err)
	}

	if params == nil {
		params = url.Values{}
	}
	if c.minorVersion > 0 {
		params.Set("minorversion", strconv.Itoa(c.minorVersion))
	}
	endpoint := c.baseURL + "/v3/company/" + url.PathEscape(creds.RealmID) + path
	if encoded := params.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("quickbooks %s: failed to encode request: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("quickbooks %s: failed to create request: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+creds.AccessToken)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUpstreamUnavailable, op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("%w: %s: failed to read response: %v", ErrUpstreamUnavailable, op, err)
	}

	c.logger.Debug("QuickBooks request completed",
		zap.String("op", op),
		zap.String("realm_id", creds.RealmID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		upstream := &UpstreamError{Op: op, StatusCode: resp.StatusCode, Body: string(data)}
		var fault faultResponse
		if json.Unmarshal(data, &fault) == nil {
			upstream.Message = fault.message()
		}
		c.logger.Warn("QuickBooks request failed",
			zap.String("op", op),
			zap.Int("status", resp.StatusCode),
			zap.String("message", upstream.Message),
		)
		return upstream
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidResponse, op, err)
	}
	return nil
}

func narrowEstimate(op string, est *Estimate) (*Estimate, error) {
	if est == nil {
		return nil, fmt.Errorf("%w: %s returned no estimate", ErrInvalidResponse, op)
	}
	if err := est.Validate(); err != nil {
		return nil, err
	}
	return est, nil
}

func buildEstimatePayload(input EstimateInput) estimatePayload {
	payload := estimatePayload{
		CustomerRef: input.CustomerRef,
		DocNumber:   input.DocNumber,
		Line:        input.Lines,
	}
	if !input.TxnDate.IsZero() {
		payload.TxnDate = input.TxnDate.Format(DateLayout)
	}
	if input.ExpirationDate != nil {
		payload.ExpirationDate = input.ExpirationDate.Format(DateLayout)
	}
	if input.Memo != "" {
		payload.CustomerMemo = &MemoRef{Value: input.Memo}
	}
	if payload.Line == nil {
		payload.Line = []Line{}
	}
	return payload
}

// escapeQueryValue escapes a literal for the QuickBooks query language
func escapeQueryValue(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}
