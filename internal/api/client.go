// Package api is the typed HTTP client for the bank's /accounts service.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fastreckless/frb/internal/amount"
)

const (
	accountsPath    = "/accounts"
	requestIDHeader = "X-Request-Id"

	// maxBodyBytes caps how much of a response is read into memory.
	maxBodyBytes = 4 << 20
)

// Client talks to the bank service. Mutating calls are never retried: a
// repeated deposit or transfer without a dedupe key could apply twice.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	timeout     *time.Duration
	readRetries uint64
	log         *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout bounds every request. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = &d }
}

// WithReadRetries retries ListAccounts and AccountDetails up to n times on
// transport failures.
func WithReadRetries(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.readRetries = uint64(n)
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// New creates a client for the service rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: http.DefaultClient,
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout != nil {
		hc := *c.httpClient
		hc.Timeout = *c.timeout
		c.httpClient = &hc
	}
	return c
}

// ListAccounts returns every account in server order.
func (c *Client) ListAccounts(ctx context.Context) ([]Account, error) {
	var out []Account
	err := c.read(ctx, func() error {
		out = nil
		return c.do(ctx, http.MethodGet, accountsPath, nil, nil, &out)
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []Account{}
	}
	return out, nil
}

// CreateAccount provisions a new account.
func (c *Client) CreateAccount(ctx context.Context) (Account, error) {
	var out Account
	if err := c.do(ctx, http.MethodPost, accountsPath, nil, nil, &out); err != nil {
		return Account{}, err
	}
	return out, nil
}

// Deposit adds amt to the account. The new balance is only visible after a
// fresh ListAccounts.
func (c *Client) Deposit(ctx context.Context, accountID string, amt decimal.Decimal) error {
	return c.do(ctx, http.MethodPost, accountPath(accountID, "deposit"), amountQuery(amt), nil, nil)
}

// Withdraw removes amt from the account. Sufficient funds are checked by the
// server only.
func (c *Client) Withdraw(ctx context.Context, accountID string, amt decimal.Decimal) error {
	return c.do(ctx, http.MethodPost, accountPath(accountID, "withdraw"), amountQuery(amt), nil, nil)
}

// Transfer moves amt between two accounts.
func (c *Client) Transfer(ctx context.Context, fromAccountID, toAccountID string, amt decimal.Decimal) error {
	body := transferRequest{
		FromAccountID: fromAccountID,
		ToAccountID:   toAccountID,
		Amount:        json.Number(amount.Format(amt)),
	}
	return c.do(ctx, http.MethodPost, accountsPath+"/transfer", nil, body, nil)
}

// AccountDetails fetches one account with its last outgoing transfers.
func (c *Client) AccountDetails(ctx context.Context, accountID string) (AccountDetails, error) {
	var out AccountDetails
	err := c.read(ctx, func() error {
		out = AccountDetails{}
		return c.do(ctx, http.MethodGet, accountPath(accountID), nil, nil, &out)
	})
	if err != nil {
		return AccountDetails{}, err
	}
	if out.LastOutgoingTransfers == nil {
		out.LastOutgoingTransfers = []OutgoingTransfer{}
	}
	return out, nil
}

func (c *Client) read(ctx context.Context, op func() error) error {
	if c.readRetries == 0 {
		return op()
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.readRetries), ctx)
	return backoff.Retry(func() error {
		err := op()
		if err == nil {
			return nil
		}
		var ue *url.Error
		if !errors.As(err, &ue) || ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		c.log.Warn("retrying read", zap.Error(err))
		return err
	}, policy)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	requestID := uuid.NewString()
	req.Header.Set(requestIDHeader, requestID)

	log := c.log.With(
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", requestID),
	)
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn("request failed", zap.Duration("elapsed", time.Since(start)), zap.Error(err))
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		log.Warn("read response failed", zap.Int("status", resp.StatusCode), zap.Error(err))
		return fmt.Errorf("read response: %w", err)
	}
	log.Debug("request done", zap.Int("status", resp.StatusCode), zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &RemoteError{StatusCode: resp.StatusCode, Body: string(data)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func accountPath(accountID string, action ...string) string {
	p := accountsPath + "/" + url.PathEscape(accountID)
	for _, a := range action {
		p += "/" + a
	}
	return p
}

func amountQuery(amt decimal.Decimal) url.Values {
	return url.Values{"amount": {amount.Format(amt)}}
}
