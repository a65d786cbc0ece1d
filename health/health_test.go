package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jackccrawford/msona/config"
)

func staticChecker(name string, status Status) Checker {
	return NewCheckFunc(name, func(context.Context) Result {
		return Result{Status: status, Message: status.String()}
	})
}

func TestEndpointChecker(t *testing.T) {
	t.Run("reachable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized) // reachable is enough
		}))
		defer srv.Close()

		result := NewEndpointChecker("svc", srv.URL, nil).Check(context.Background())
		if result.Status != StatusHealthy {
			t.Errorf("status = %v, want healthy", result.Status)
		}
	})

	t.Run("unreachable", func(t *testing.T) {
		result := NewEndpointChecker("svc", "http://127.0.0.1:1", nil).Check(context.Background())
		if result.Status != StatusUnhealthy {
			t.Errorf("status = %v, want unhealthy", result.Status)
		}
		if result.Err == nil {
			t.Error("Err not set")
		}
	})
}

func TestAggregatorCheckAll(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{})
	agg.Register(staticChecker("a", StatusHealthy))
	agg.Register(staticChecker("b", StatusDegraded))
	agg.Register(staticChecker("c", StatusUnhealthy))

	results := agg.CheckAll(context.Background())
	if len(results) != 3 {
		t.Fatalf("got %d results", len(results))
	}
	if results["b"].Status != StatusDegraded {
		t.Errorf("b = %v", results["b"].Status)
	}
	if Overall(results) != StatusUnhealthy {
		t.Errorf("overall = %v, want unhealthy", Overall(results))
	}
}

func TestAggregatorReplacesByName(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{})
	agg.Register(staticChecker("svc", StatusUnhealthy))
	agg.Register(staticChecker("svc", StatusHealthy))

	if names := agg.Names(); len(names) != 1 {
		t.Fatalf("names = %v", names)
	}
	results := agg.CheckAll(context.Background())
	if results["svc"].Status != StatusHealthy {
		t.Errorf("replacement not used: %v", results["svc"].Status)
	}
}

func TestAggregatorTimeout(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{Timeout: 10 * time.Millisecond})
	agg.Register(NewCheckFunc("slow", func(ctx context.Context) Result {
		<-ctx.Done()
		time.Sleep(50 * time.Millisecond)
		return Result{Status: StatusHealthy}
	}))

	results := agg.CheckAll(context.Background())
	if results["slow"].Status != StatusUnhealthy {
		t.Errorf("status = %v, want unhealthy on timeout", results["slow"].Status)
	}
}

func TestOverall(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Status
		want     Status
	}{
		{"empty", nil, StatusHealthy},
		{"all healthy", []Status{StatusHealthy, StatusHealthy}, StatusHealthy},
		{"one degraded", []Status{StatusHealthy, StatusDegraded}, StatusDegraded},
		{"one unhealthy", []Status{StatusDegraded, StatusUnhealthy}, StatusUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := make(map[string]Result)
			for i, s := range tt.statuses {
				results[fmt.Sprintf("c%d", i)] = Result{Status: s}
			}
			if got := Overall(results); got != tt.want {
				t.Errorf("Overall = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProbes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := &config.Config{}
	cfg.Quotes.BaseURL = srv.URL
	cfg.Catalog.BaseURL = srv.URL
	cfg.Catalog.TokenURL = srv.URL
	cfg.Catalog.ClientID = "id"
	cfg.Catalog.ClientSecret = "secret"
	cfg.Speech.BaseURL = srv.URL
	cfg.AI.BaseURL = srv.URL
	// speech and ai have no keys: degraded, not probed

	agg := Probes(cfg, nil)
	results := agg.CheckAll(context.Background())

	if results["quotes"].Status != StatusHealthy {
		t.Errorf("quotes = %v", results["quotes"].Status)
	}
	if results["catalog"].Status != StatusHealthy {
		t.Errorf("catalog = %v", results["catalog"].Status)
	}
	if results["speech"].Status != StatusDegraded {
		t.Errorf("speech = %v, want degraded without key", results["speech"].Status)
	}
	if results["ai"].Status != StatusDegraded {
		t.Errorf("ai = %v, want degraded without key", results["ai"].Status)
	}
	if Overall(results) != StatusDegraded {
		t.Errorf("overall = %v", Overall(results))
	}
}

func TestHandler(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{})
	agg.Register(staticChecker("a", StatusHealthy))
	agg.Register(staticChecker("b", StatusDegraded))

	rec := httptest.NewRecorder()
	Handler(agg)(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}
	var report Report
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.Status != "degraded" {
		t.Errorf("status = %q", report.Status)
	}
	if len(report.Checks) != 2 {
		t.Errorf("checks = %v", report.Checks)
	}
}

func TestHandlerUnhealthy(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{})
	agg.Register(staticChecker("down", StatusUnhealthy))

	rec := httptest.NewRecorder()
	Handler(agg)(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("code = %d, want 503", rec.Code)
	}
}

func TestLivenessHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	LivenessHandler()(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "OK" {
		t.Errorf("response = %d %q", rec.Code, rec.Body.String())
	}
}
