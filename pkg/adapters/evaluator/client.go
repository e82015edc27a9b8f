package evaluator

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

	"github.com/aretw0/ruleflow/pkg/domain"
)

// maxResponseBytes bounds how much of an evaluator response is read.
const maxResponseBytes = 1 << 20

// DefaultTimeout bounds each evaluation unless WithTimeout says otherwise.
const DefaultTimeout = 10 * time.Second

// ErrEvaluator is returned when the evaluator answers with a non-2xx status.
var ErrEvaluator = errors.New("rule evaluator error")

// Client implements ports.RuleEvaluator over HTTP.
// It POSTs {"data": payload} to <BaseURL>/rules/<id>/test.
type Client struct {
	BaseURL string
	client  *http.Client
	timeout time.Duration
	headers map[string]string
}

type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client. The client is never modified.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.client = c
		}
	}
}

// WithTimeout bounds each evaluation request. Zero or negative disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		cl.timeout = d
	}
}

// WithHeader adds a header to every request (e.g. Authorization).
func WithHeader(key, value string) Option {
	return func(cl *Client) {
		cl.headers[key] = value
	}
}

// New creates an evaluator client for the given base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
		timeout: DefaultTimeout,
		headers: make(map[string]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Evaluate submits data for the rule and decodes the evaluator's verdict.
// The response body is kept verbatim in Verdict.Raw.
func (c *Client) Evaluate(ctx context.Context, rule *domain.Rule, data map[string]any) (*domain.Verdict, error) {
	body, err := json.Marshal(map[string]any{domain.DataKey: data})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	endpoint := c.BaseURL + "/rules/" + url.PathEscape(rule.ID) + "/test"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s: %s", ErrEvaluator, resp.Status, strings.TrimSpace(string(raw)))
	}

	var verdict domain.Verdict
	if err := json.Unmarshal(raw, &verdict); err != nil {
		return nil, fmt.Errorf("failed to decode verdict: %w", err)
	}
	verdict.Raw = json.RawMessage(raw)

	return &verdict, nil
}
