package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ccollicutt/translog/pkg/output"
)

func newTestReport() *output.Report {
	return &output.Report{
		RunID: "run-42",
		Summary: output.Summary{
			ReportsChecked:    2,
			ReportsWithIssues: 1,
			TotalIssues:       3,
			LinesProcessed:    100,
		},
		Results: []*output.Section{
			{
				Name:   "transitions",
				Type:   "lifecycle",
				Issues: 3,
				Files:  []string{"server.log"},
				Lifecycle: &output.LifecycleSection{
					Starts:   10,
					Ends:     7,
					Dangling: 3,
				},
			},
		},
		Metadata: output.Metadata{
			ConfigFile: "translog.yaml",
			Sources:    []string{"server.log"},
			AnalyzedAt: time.Now(),
			Duration:   time.Second,
		},
	}
}

func init() {
	retryBackoff = time.Millisecond
}

func TestClient_Send_Success(t *testing.T) {
	var receivedBody []byte
	var receivedContentType, receivedAuth, receivedRunID, receivedAgent string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedContentType = r.Header.Get("Content-Type")
		receivedAuth = r.Header.Get("Authorization")
		receivedRunID = r.Header.Get("X-Translog-Run-ID")
		receivedAgent = r.Header.Get("User-Agent")
		receivedBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	resp := NewClient().Send(context.Background(), newTestReport(), SendOptions{URL: server.URL})

	if !resp.Success() {
		t.Errorf("expected success, got error: %v", resp.Error)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", resp.StatusCode)
	}
	if resp.Body != `{"status":"ok"}` {
		t.Errorf("unexpected body: %s", resp.Body)
	}
	if resp.Attempts != 1 {
		t.Errorf("Attempts = %d, want 1", resp.Attempts)
	}
	if receivedContentType != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", receivedContentType)
	}
	if receivedAuth != "" {
		t.Errorf("expected no auth header, got %s", receivedAuth)
	}
	if receivedRunID != "run-42" {
		t.Errorf("X-Translog-Run-ID = %q, want run-42", receivedRunID)
	}
	if receivedAgent != "translog-webhook" {
		t.Errorf("User-Agent = %q", receivedAgent)
	}

	var payload Payload
	if err := json.Unmarshal(receivedBody, &payload); err != nil {
		t.Fatalf("failed to parse received payload: %v", err)
	}
	if payload.Event != EventAnalysisCompleted {
		t.Errorf("Event = %q", payload.Event)
	}
	if !payload.HasIssues {
		t.Error("HasIssues = false, want true")
	}
	if payload.Report == nil || payload.Report.Summary.TotalIssues != 3 {
		t.Errorf("Report = %+v", payload.Report)
	}
}

func TestClient_Send_WithBearerToken(t *testing.T) {
	var receivedAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	resp := NewClient().Send(context.Background(), newTestReport(), SendOptions{
		URL:   server.URL,
		Token: "secret-token-123",
	})

	if !resp.Success() {
		t.Errorf("expected success, got error: %v", resp.Error)
	}
	if receivedAuth != "Bearer secret-token-123" {
		t.Errorf("expected Bearer token, got %s", receivedAuth)
	}
}

func TestClient_Send_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal error"}`))
	}))
	defer server.Close()

	resp := NewClient().Send(context.Background(), newTestReport(), SendOptions{URL: server.URL})

	if resp.Success() {
		t.Error("expected failure, got success")
	}
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", resp.StatusCode)
	}
	if resp.Error == nil {
		t.Error("expected error to be set")
	}
}

func TestClient_Send_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	resp := NewClient().Send(context.Background(), newTestReport(), SendOptions{URL: server.URL, Retries: 3})

	if !resp.Success() {
		t.Fatalf("expected success after retries, got %v", resp.Error)
	}
	if resp.Attempts != 3 {
		t.Errorf("Attempts = %d, want 3", resp.Attempts)
	}
}

func TestClient_Send_GivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	resp := NewClient().Send(context.Background(), newTestReport(), SendOptions{URL: server.URL, Retries: 2})

	if resp.Success() {
		t.Fatal("expected failure")
	}
	if resp.Attempts != 3 || calls.Load() != 3 {
		t.Errorf("Attempts = %d, calls = %d, want 3 and 3", resp.Attempts, calls.Load())
	}
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("StatusCode = %d, want 502", resp.StatusCode)
	}
}

func TestClient_Send_CancelledDuringBackoff(t *testing.T) {
	saved := retryBackoff
	retryBackoff = time.Minute
	defer func() { retryBackoff = saved }()

	ctx, cancel := context.WithCancel(context.Background())
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cancel()
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	resp := NewClient().Send(ctx, newTestReport(), SendOptions{URL: server.URL, Retries: 5})

	if resp.Attempts != 1 {
		t.Errorf("Attempts = %d, want 1", resp.Attempts)
	}
	if !errors.Is(resp.Error, context.Canceled) {
		t.Errorf("Error = %v, want context.Canceled", resp.Error)
	}
}

func TestRetryPolicy_Doubles(t *testing.T) {
	saved := retryBackoff
	retryBackoff = 100 * time.Millisecond
	defer func() { retryBackoff = saved }()

	b := newRetryPolicy()
	for _, want := range []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 400 * time.Millisecond} {
		if got := b.NextBackOff(); got != want {
			t.Errorf("NextBackOff() = %v, want %v", got, want)
		}
	}
}

func TestClient_Send_NoRetryOnClientError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	resp := NewClient().Send(context.Background(), newTestReport(), SendOptions{URL: server.URL, Retries: 3})

	if resp.Success() {
		t.Error("expected failure")
	}
	if calls.Load() != 1 {
		t.Errorf("server called %d times, want 1", calls.Load())
	}
}

func TestClient_Send_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	resp := NewClient().Send(context.Background(), newTestReport(), SendOptions{
		URL:     server.URL,
		Timeout: 50 * time.Millisecond,
	})

	if resp.Success() {
		t.Error("expected failure due to timeout")
	}
	if resp.Error == nil {
		t.Error("expected error to be set")
	}
}

func TestClient_Send_InvalidURL(t *testing.T) {
	resp := NewClient().Send(context.Background(), newTestReport(), SendOptions{
		URL:     "://invalid-url",
		Retries: 2,
	})

	if resp.Success() {
		t.Error("expected failure for invalid URL")
	}
	if resp.Attempts != 1 {
		t.Errorf("Attempts = %d, want 1 (invalid URL is not retried)", resp.Attempts)
	}
}

func TestClient_Send_ConnectionRefused(t *testing.T) {
	resp := NewClient().Send(context.Background(), newTestReport(), SendOptions{
		URL:     "http://127.0.0.1:59999", // Unlikely to be listening
		Timeout: 100 * time.Millisecond,
	})

	if resp.Success() {
		t.Error("expected failure for connection refused")
	}
	if resp.Error == nil {
		t.Error("expected error to be set")
	}
}

func TestResponse_Success(t *testing.T) {
	tests := []struct {
		name        string
		resp        Response
		wantSuccess bool
	}{
		{"200 OK", Response{StatusCode: 200}, true},
		{"201 Created", Response{StatusCode: 201}, true},
		{"204 No Content", Response{StatusCode: 204}, true},
		{"400 Bad Request", Response{StatusCode: 400}, false},
		{"500 Server Error", Response{StatusCode: 500}, false},
		{"With Error", Response{StatusCode: 200, Error: io.EOF}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.resp.Success(); got != tt.wantSuccess {
				t.Errorf("Success() = %v, want %v", got, tt.wantSuccess)
			}
		})
	}
}
