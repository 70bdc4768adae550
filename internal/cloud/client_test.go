// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

const okBody = `{
	"id": "chatcmpl-1",
	"object": "chat.completion",
	"model": "test-model",
	"choices": [{
		"index": 0,
		"message": {"role": "assistant", "content": "test response"},
		"finish_reason": "stop"
	}],
	"usage": {"prompt_tokens": 10, "completion_tokens": 20, "total_tokens": 30}
}`

// testAttempts is the retry budget of newTestClient.
const testAttempts = 3

func newTestClient(url string) *Client {
	c := NewClient("sk-test-key").WithBaseURL(url).WithModel("test-model").WithMaxRetries(testAttempts)
	c.retryBase = time.Millisecond
	return c
}

// =============================================================================
// REQUEST SHAPE TESTS
// =============================================================================

func TestChat_RequestShape(t *testing.T) {
	var gotAuth, gotPath, gotMethod, gotType string
	var gotBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		gotMethod = r.Method
		gotType = r.Header.Get("Content-Type")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(okBody))
	}))
	defer server.Close()

	client := newTestClient(server.URL).WithSampling(0.5, 0.9, 256)
	text, err := client.Complete(context.Background(), []ChatMessage{
		NewSystemMessage("be brief"),
		NewUserMessage("earlier"),
		NewAssistantMessage("reply"),
		NewUserMessage("Hi"),
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if text != "test response" {
		t.Errorf("Complete() = %q, want %q", text, "test response")
	}

	if gotMethod != http.MethodPost {
		t.Errorf("method = %s, want POST", gotMethod)
	}
	if gotPath != "/chat/completions" {
		t.Errorf("path = %s, want /chat/completions", gotPath)
	}
	if gotAuth != "Bearer sk-test-key" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotType != "application/json" {
		t.Errorf("Content-Type = %q", gotType)
	}

	if gotBody["model"] != "test-model" {
		t.Errorf("model = %v", gotBody["model"])
	}
	if gotBody["temperature"] != 0.5 {
		t.Errorf("temperature = %v", gotBody["temperature"])
	}
	if gotBody["top_p"] != 0.9 {
		t.Errorf("top_p = %v", gotBody["top_p"])
	}
	if gotBody["max_tokens"] != float64(256) {
		t.Errorf("max_tokens = %v", gotBody["max_tokens"])
	}
	stream, ok := gotBody["stream"]
	if !ok || stream != false {
		t.Errorf("stream = %v (present=%v), want explicit false", stream, ok)
	}

	msgs, ok := gotBody["messages"].([]any)
	if !ok || len(msgs) != 4 {
		t.Fatalf("messages = %v", gotBody["messages"])
	}
	wantRoles := []string{"system", "user", "assistant", "user"}
	for i, m := range msgs {
		role := m.(map[string]any)["role"]
		if role != wantRoles[i] {
			t.Errorf("messages[%d].role = %v, want %s", i, role, wantRoles[i])
		}
	}
}

// =============================================================================
// FAILURE TESTS
// =============================================================================

func TestChat_NotConfigured(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
	}))
	defer server.Close()

	client := NewClient("   ").WithBaseURL(server.URL)
	if client.IsConfigured() {
		t.Fatal("blank key should not count as configured")
	}

	_, err := client.Complete(context.Background(), []ChatMessage{NewUserMessage("hi")})
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("error = %v, want ErrNotConfigured", err)
	}
	if requests.Load() != 0 {
		t.Errorf("requests = %d, want 0", requests.Load())
	}
}

func TestChat_ErrorStatus(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantKind error
		wantMsg  string
		wantCode string
		attempts int32
	}{
		{
			name:     "bad request with envelope",
			status:   http.StatusBadRequest,
			body:     `{"error": {"message": "bad temperature", "type": "invalid_request_error", "code": "invalid_value"}}`,
			wantKind: ErrRequestFailed,
			wantMsg:  "bad temperature",
			wantCode: "invalid_value",
			attempts: 1,
		},
		{
			name:     "unauthorized",
			status:   http.StatusUnauthorized,
			body:     `{"error": {"message": "invalid key", "type": "auth"}}`,
			wantKind: ErrAuthFailed,
			wantMsg:  "invalid key",
			attempts: 1,
		},
		{
			name:     "not found plain body",
			status:   http.StatusNotFound,
			body:     "no such model",
			wantKind: ErrModelNotFound,
			wantMsg:  "no such model",
			attempts: 1,
		},
		{
			name:     "server error retried",
			status:   http.StatusBadGateway,
			body:     "",
			wantKind: ErrServerError,
			wantMsg:  "Bad Gateway",
			attempts: testAttempts,
		},
		{
			name:     "rate limited retried",
			status:   http.StatusTooManyRequests,
			body:     `{"error": {"message": "slow down"}}`,
			wantKind: ErrRateLimited,
			wantMsg:  "slow down",
			attempts: testAttempts,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var requests atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				requests.Add(1)
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			defer server.Close()

			_, err := newTestClient(server.URL).Complete(context.Background(), []ChatMessage{NewUserMessage("hi")})
			if !errors.Is(err, tc.wantKind) {
				t.Fatalf("error = %v, want %v", err, tc.wantKind)
			}
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("error %v is not an *APIError", err)
			}
			if apiErr.Status != tc.status {
				t.Errorf("Status = %d, want %d", apiErr.Status, tc.status)
			}
			if apiErr.Message != tc.wantMsg {
				t.Errorf("Message = %q, want %q", apiErr.Message, tc.wantMsg)
			}
			if apiErr.Code != tc.wantCode {
				t.Errorf("Code = %q, want %q", apiErr.Code, tc.wantCode)
			}
			if got := requests.Load(); got != tc.attempts {
				t.Errorf("requests = %d, want %d", got, tc.attempts)
			}
		})
	}
}

func TestChat_DefaultIsSingleAttempt(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient("sk-test-key").WithBaseURL(server.URL)
	_, err := client.Complete(context.Background(), []ChatMessage{NewUserMessage("hi")})
	if !errors.Is(err, ErrServerError) {
		t.Fatalf("Complete() error = %v, want ErrServerError", err)
	}
	if strings.Contains(err.Error(), "max retries") {
		t.Errorf("single attempt should not report retries: %v", err)
	}
	if got := requests.Load(); got != 1 {
		t.Errorf("requests = %d, want 1", got)
	}
}

func TestChat_RetryThenSuccess(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(okBody))
	}))
	defer server.Close()

	text, err := newTestClient(server.URL).Complete(context.Background(), []ChatMessage{NewUserMessage("hi")})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if text != "test response" {
		t.Errorf("Complete() = %q", text)
	}
	if requests.Load() != 3 {
		t.Errorf("requests = %d, want 3", requests.Load())
	}
}

func TestChat_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Complete(context.Background(), []ChatMessage{NewUserMessage("hi")})
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("error = %v, want ErrMalformed", err)
	}
}

func TestChat_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": "x", "choices": []}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Complete(context.Background(), []ChatMessage{NewUserMessage("hi")})
	if !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("error = %v, want ErrEmptyResponse", err)
	}
}

func TestChat_ContextCanceled(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := newTestClient(server.URL).Complete(ctx, []ChatMessage{NewUserMessage("hi")})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

// =============================================================================
// HELPER TESTS
// =============================================================================

func TestMaskKey(t *testing.T) {
	if got := MaskKey(""); got != "[not set]" {
		t.Errorf("MaskKey(\"\") = %q", got)
	}
	key := "sk-secret-value-1234567890"
	masked := MaskKey(key)
	if strings.Contains(masked, "secret") || strings.Contains(masked, "7890") {
		t.Errorf("MaskKey leaked key material: %q", masked)
	}
	if masked != MaskKey(key) {
		t.Error("MaskKey should be deterministic")
	}
}

func TestCalculateBackoff(t *testing.T) {
	c := NewClient("k")
	if got := c.calculateBackoff(1); got != time.Second {
		t.Errorf("calculateBackoff(1) = %v, want 1s", got)
	}
	if got := c.calculateBackoff(10); got != retryMaxDelay {
		t.Errorf("calculateBackoff(10) = %v, want %v", got, retryMaxDelay)
	}
}

func TestWithRateLimit(t *testing.T) {
	c := NewClient("k").WithRateLimit(60)
	if c.limiter.Limit() != 1 {
		t.Errorf("limit = %v, want 1/s", c.limiter.Limit())
	}
	c.WithRateLimit(0)
	if !c.limiter.Allow() || !c.limiter.Allow() {
		t.Error("disabled limiter should always allow")
	}
}
