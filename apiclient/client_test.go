package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackccrawford/msona/auth"
	"github.com/jackccrawford/msona/logbuf"
)

// tokenServer issues sequentially numbered bearer tokens so tests can tell
// a refreshed credential from a cached one.
func tokenServer(t *testing.T, exchanges *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := exchanges.Add(1)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"access_token":"token-%d","expires_in":3600}`, n)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, api *httptest.Server, exchanges *atomic.Int32) *Client {
	t.Helper()
	tokens := auth.NewClientCredentials(auth.ClientCredentialsConfig{
		TokenURL:     tokenServer(t, exchanges).URL,
		ClientID:     "id",
		ClientSecret: "secret",
	})
	return New(Config{
		BaseURL:        api.URL,
		Service:        "test",
		Tokens:         tokens,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     4 * time.Millisecond,
	})
}

func TestDoSuccess(t *testing.T) {
	var gotAuth, gotAccept string
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		fmt.Fprint(w, `{"ok":true}`)
	}))
	defer api.Close()

	var exchanges atomic.Int32
	c := newTestClient(t, api, &exchanges)

	data, err := c.Get(context.Background(), "/thing")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(data) != `{"ok":true}` {
		t.Errorf("body = %q", data)
	}
	if gotAuth != "Bearer token-1" {
		t.Errorf("Authorization = %q, want Bearer token-1", gotAuth)
	}
	if gotAccept != "application/json" {
		t.Errorf("Accept = %q", gotAccept)
	}
	if n := exchanges.Load(); n != 1 {
		t.Errorf("exchanges = %d, want 1", n)
	}
}

func TestDoRateLimitRecovers(t *testing.T) {
	var calls atomic.Int32
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{}`)
	}))
	defer api.Close()

	var exchanges atomic.Int32
	c := newTestClient(t, api, &exchanges)

	if _, err := c.Get(context.Background(), "/q"); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if n := calls.Load(); n != 3 {
		t.Errorf("calls = %d, want 3", n)
	}
}

func TestDoRateLimitBudgetExhausted(t *testing.T) {
	var calls atomic.Int32
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Retry-After", "0")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer api.Close()

	var exchanges atomic.Int32
	c := newTestClient(t, api, &exchanges)

	_, err := c.Get(context.Background(), "/q")
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("err = %v, want ErrRateLimited", err)
	}
	// three retries beyond the first attempt
	if n := calls.Load(); n != 4 {
		t.Errorf("calls = %d, want 4", n)
	}
}

func TestDoUnauthorizedRefreshesOnce(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "Bearer token-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, `{}`)
	}))
	defer api.Close()

	var exchanges atomic.Int32
	c := newTestClient(t, api, &exchanges)

	if _, err := c.Get(context.Background(), "/q"); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if n := exchanges.Load(); n != 2 {
		t.Errorf("exchanges = %d, want 2 (initial + one forced refresh)", n)
	}
}

func TestDoUnauthorizedTwiceFails(t *testing.T) {
	var calls atomic.Int32
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"message":"invalid token"}}`)
	}))
	defer api.Close()

	var exchanges atomic.Int32
	c := newTestClient(t, api, &exchanges)

	_, err := c.Get(context.Background(), "/q")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.Status != http.StatusUnauthorized {
		t.Errorf("Status = %d", apiErr.Status)
	}
	if apiErr.Message != "invalid token" {
		t.Errorf("Message = %q", apiErr.Message)
	}
	if n := calls.Load(); n != 2 {
		t.Errorf("calls = %d, want 2 (refresh retried exactly once)", n)
	}
}

func TestDoNetworkFailureRetriesWithNewToken(t *testing.T) {
	var exchanges atomic.Int32
	tokens := auth.NewClientCredentials(auth.ClientCredentialsConfig{
		TokenURL:     tokenServer(t, &exchanges).URL,
		ClientID:     "id",
		ClientSecret: "secret",
	})
	// nothing listens here
	c := New(Config{
		BaseURL: "http://127.0.0.1:1",
		Tokens:  tokens,
	})

	_, err := c.Get(context.Background(), "/q")
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("err = %v, want ErrNetwork", err)
	}
	if n := exchanges.Load(); n != 2 {
		t.Errorf("exchanges = %d, want 2 (one forced-refresh retry)", n)
	}
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"nested", `{"error":{"message":"no token provided","status":401}}`, "no token provided"},
		{"flat error", `{"error":"invalid_request"}`, "invalid_request"},
		{"description", `{"error":"invalid_client","error_description":"bad secret"}`, "bad secret"},
		{"message", `{"message":"not found"}`, "not found"},
		{"garbage", `<html>oops</html>`, "request failed (status 500)"},
		{"empty", ``, "request failed (status 500)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errorMessage([]byte(tt.body), 500); got != tt.want {
				t.Errorf("errorMessage(%q) = %q, want %q", tt.body, got, tt.want)
			}
		})
	}
}

func TestRetryAfterHeader(t *testing.T) {
	mk := func(v string) *http.Response {
		h := http.Header{}
		if v != "" {
			h.Set("Retry-After", v)
		}
		return &http.Response{Header: h}
	}
	if got := retryAfter(mk("2"), time.Second); got != 2*time.Second {
		t.Errorf("seconds header: got %v", got)
	}
	if got := retryAfter(mk(""), 3*time.Second); got != 3*time.Second {
		t.Errorf("missing header: got %v", got)
	}
	if got := retryAfter(mk("soon"), time.Second); got != time.Second {
		t.Errorf("junk header: got %v", got)
	}
}

func TestGetJSON(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"name": "x", "count": 3})
	}))
	defer api.Close()

	var exchanges atomic.Int32
	c := newTestClient(t, api, &exchanges)

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}
	got, err := GetJSON[payload](context.Background(), c, "/p")
	if err != nil {
		t.Fatalf("GetJSON: %v", err)
	}
	if got.Name != "x" || got.Count != 3 {
		t.Errorf("got %+v", got)
	}
}

func TestDoRecordsToSink(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"error":{"message":"boom"}}`)
	}))
	defer api.Close()

	var exchanges atomic.Int32
	sink := logbuf.NewSink(logbuf.Config{})
	tokens := auth.NewClientCredentials(auth.ClientCredentialsConfig{
		TokenURL:     tokenServer(t, &exchanges).URL,
		ClientID:     "id",
		ClientSecret: "secret",
	})
	c := New(Config{BaseURL: api.URL, Service: "svc", Tokens: tokens, Log: sink})

	if _, err := c.Get(context.Background(), "/q"); err == nil {
		t.Fatal("want error")
	}
	entries := sink.ByCategory("svc")
	if len(entries) == 0 {
		t.Fatal("no log entries recorded under service category")
	}
	if entries[0].Level != logbuf.LevelError {
		t.Errorf("level = %v, want error", entries[0].Level)
	}
}
