package webhook

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

// Client talks to the external automation engine over JSON webhooks. Every
// call is fire-and-observe: failures are reported to the caller as plain
// errors and never retried here, matching the manual-refresh recovery model
// of the rest of the system.
type Client struct {
	baseURL string
	token   string
	signer  *Signer
	http    *http.Client
	logger  *slog.Logger
}

// NewClient builds a webhook client. token and signer are optional; when
// present every request carries a bearer token and an HMAC signature header.
func NewClient(baseURL, token string, signer *Signer, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		signer:  signer,
		http:    &http.Client{Timeout: 15 * time.Second},
		logger:  logger,
	}
}

// SetHTTPClient swaps the underlying HTTP client, used by tests to point the
// webhook client at an httptest server transport.
func (c *Client) SetHTTPClient(hc *http.Client) {
	if hc != nil {
		c.http = hc
	}
}

// postJSON sends payload to baseURL+path and decodes the response body into
// out when out is non-nil. Responses outside 2xx become errors carrying the
// status code.
func (c *Client) postJSON(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("webhook: encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.signer != nil {
		req.Header.Set(SignatureHeader, c.signer.Sign(body))
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: %s: %w", path, err)
	}
	defer resp.Body.Close()

	c.logger.DebugContext(ctx, "webhook call completed",
		"path", path, "status", resp.StatusCode, "duration", time.Since(started))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("webhook: %s respondeu %d", path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("webhook: decode %s response: %w", path, err)
	}
	return nil
}
