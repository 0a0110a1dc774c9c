// Package webhook posts analysis reports to HTTP endpoints.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/ccollicutt/translog/pkg/output"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 10 * time.Second

// EventAnalysisCompleted is the event name carried by every payload.
const EventAnalysisCompleted = "translog.analysis.completed"

// retryBackoff is the wait before the first retry; it doubles per attempt.
var retryBackoff = 500 * time.Millisecond

// Client sends analysis reports to webhook endpoints.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a new webhook client.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{},
	}
}

// SendOptions configures a webhook request.
type SendOptions struct {
	URL     string
	Token   string        // Bearer token (optional)
	Timeout time.Duration // Per-attempt timeout (uses DefaultTimeout if zero)

	// Retries is the number of extra attempts after a transport error or a
	// 5xx response.
	Retries int
}

// Payload is the JSON body posted to a webhook.
type Payload struct {
	Event     string         `json:"event"`
	RunID     string         `json:"run_id"`
	HasIssues bool           `json:"has_issues"`
	SentAt    time.Time      `json:"sent_at"`
	Report    *output.Report `json:"report"`
}

// Response contains the result of a webhook request.
type Response struct {
	StatusCode int
	Body       string
	Duration   time.Duration
	Attempts   int
	Error      error
}

// Success returns true if the webhook was sent successfully (2xx status).
func (r *Response) Success() bool {
	return r.Error == nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// Send posts an analysis report to a webhook endpoint.
func (c *Client) Send(ctx context.Context, report *output.Report, opts SendOptions) *Response {
	start := time.Now()
	resp := &Response{}

	payload, err := json.Marshal(Payload{
		Event:     EventAnalysisCompleted,
		RunID:     report.RunID,
		HasIssues: report.HasIssues(),
		SentAt:    start.UTC(),
		Report:    report,
	})
	if err != nil {
		resp.Error = fmt.Errorf("failed to marshal report: %w", err)
		resp.Duration = time.Since(start)
		return resp
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(newRetryPolicy(), uint64(max(opts.Retries, 0))),
		ctx,
	)

	err = backoff.Retry(func() error {
		resp.Attempts++
		if !c.post(ctx, payload, report.RunID, opts, resp) {
			if resp.Error != nil {
				return backoff.Permanent(resp.Error)
			}
			return nil
		}
		return resp.Error
	}, policy)

	if err != nil && ctx.Err() != nil {
		resp.Error = fmt.Errorf("giving up after %d attempts: %w", resp.Attempts, ctx.Err())
	}

	resp.Duration = time.Since(start)
	return resp
}

// newRetryPolicy waits retryBackoff before the first retry and doubles the
// wait for each one after it.
func newRetryPolicy() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = retryBackoff
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = 30 * time.Second
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// post makes one attempt and records the outcome in resp. It reports
// whether the failure is worth retrying.
func (c *Client) post(ctx context.Context, payload []byte, runID string, opts SendOptions, resp *Response) bool {
	resp.StatusCode = 0
	resp.Body = ""
	resp.Error = nil

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, opts.URL, bytes.NewReader(payload))
	if err != nil {
		resp.Error = fmt.Errorf("failed to create request: %w", err)
		return false
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "translog-webhook")
	req.Header.Set("X-Translog-Run-ID", runID)
	if opts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+opts.Token)
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		resp.Error = fmt.Errorf("request failed: %w", err)
		return true
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, 1024*1024)) // Limit to 1MB
	if err != nil {
		resp.Error = fmt.Errorf("failed to read response: %w", err)
		return true
	}

	resp.StatusCode = httpResp.StatusCode
	resp.Body = string(body)

	if resp.StatusCode >= 400 {
		resp.Error = fmt.Errorf("webhook returned status %d", resp.StatusCode)
		return resp.StatusCode >= 500
	}
	return false
}
