// Package upstream wraps the authoritative garment REST API. Every
// entity orderdesk shows is owned by that system; this package only
// fetches, normalizes, and relays writes. Calls are at most one
// attempt, never retried.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// ObserveFunc records one finished upstream call for metrics.
type ObserveFunc func(op string, status int, elapsed time.Duration)

// Client wraps interactions with the garment API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	observe    ObserveFunc
}

// Option customizes client construction.
type Option func(*Client)

// WithObserver installs a metrics callback invoked after every call.
func WithObserver(fn ObserveFunc) Option {
	return func(c *Client) { c.observe = fn }
}

// WithHTTPClient replaces the underlying HTTP client, mostly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient constructs a new client. The timeout is a hard ceiling per
// call; a hung upstream can no longer wedge a request.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Ping checks if the garment API is reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/health", c.baseURL), nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Op: "ping", Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return &TransportError{Op: "ping", Status: resp.StatusCode}
	}
	return nil
}

// get performs a read. Non-2xx answers become TransportError: reads are
// recovered by leaving the subtree stale, not by relaying a message.
func (c *Client) get(ctx context.Context, op, path string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.record(op, 0, start)
		return nil, &TransportError{Op: op, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	c.record(op, resp.StatusCode, start)

	if resp.StatusCode >= 400 {
		return nil, &TransportError{Op: op, Status: resp.StatusCode}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	return body, nil
}

// send performs a mutation. An explicit upstream error payload becomes
// WriteRejected with the message passed through verbatim.
func (c *Client) send(ctx context.Context, op, method, path string, payload any) (json.RawMessage, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("upstream: %s: encode payload: %w", op, err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.record(op, 0, start)
		return nil, &TransportError{Op: op, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	c.record(op, resp.StatusCode, start)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	if rej := rejection(op, resp.StatusCode, body); rej != nil {
		return nil, rej
	}
	return body, nil
}

// rejection decodes the upstream error envelope. The API signals
// refusals either by status code or by {"status":"error"} in an
// otherwise 200 body, with the human message under remark or message.
func rejection(op string, status int, body []byte) error {
	var envelope struct {
		Status  any    `json:"status"`
		Remark  string `json:"remark"`
		Message string `json:"message"`
	}
	_ = json.Unmarshal(body, &envelope)

	flagged := false
	if s, ok := envelope.Status.(string); ok && s == "error" {
		flagged = true
	}
	if status < 400 && !flagged {
		return nil
	}

	msg := envelope.Remark
	if msg == "" {
		msg = envelope.Message
	}
	if msg == "" {
		msg = fmt.Sprintf("permintaan ditolak server (status %d)", status)
	}
	return &WriteRejected{Op: op, Status: status, Message: msg}
}

func (c *Client) record(op string, status int, start time.Time) {
	elapsed := time.Since(start)
	if c.observe != nil {
		c.observe(op, status, elapsed)
	}
	if c.logger != nil {
		c.logger.Debug("upstream call",
			slog.String("op", op),
			slog.Int("status", status),
			slog.Duration("elapsed", elapsed))
	}
}
