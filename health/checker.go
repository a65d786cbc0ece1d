package health

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Status classifies a probe outcome.
type Status int

const (
	// StatusHealthy means the service answered.
	StatusHealthy Status = iota
	// StatusDegraded means the service is usable but impaired, for example
	// configured without credentials.
	StatusDegraded
	// StatusUnhealthy means the service could not be reached.
	StatusUnhealthy
)

func (s Status) String() string {
	switch s {
	case StatusHealthy:
		return "healthy"
	case StatusDegraded:
		return "degraded"
	case StatusUnhealthy:
		return "unhealthy"
	default:
		return "unknown"
	}
}

// ErrCheckTimeout marks results of probes that outran the aggregate budget.
var ErrCheckTimeout = errors.New("health: check timed out")

// Result is one probe outcome.
type Result struct {
	Status    Status
	Message   string
	Duration  time.Duration
	CheckedAt time.Time
	Err       error
}

// Checker probes one service.
type Checker interface {
	Name() string
	Check(ctx context.Context) Result
}

// CheckFunc adapts a function to the Checker interface.
type CheckFunc struct {
	name string
	fn   func(context.Context) Result
}

// NewCheckFunc wraps fn as a named checker.
func NewCheckFunc(name string, fn func(context.Context) Result) *CheckFunc {
	return &CheckFunc{name: name, fn: fn}
}

func (c *CheckFunc) Name() string { return c.name }

func (c *CheckFunc) Check(ctx context.Context) Result { return c.fn(ctx) }

// EndpointChecker probes an HTTP base URL. Any response proves
// reachability; only transport failures are unhealthy.
type EndpointChecker struct {
	name   string
	url    string
	client *http.Client
}

// NewEndpointChecker creates a checker probing url.
func NewEndpointChecker(name, url string, client *http.Client) *EndpointChecker {
	if client == nil {
		client = http.DefaultClient
	}
	return &EndpointChecker{name: name, url: url, client: client}
}

func (e *EndpointChecker) Name() string { return e.name }

func (e *EndpointChecker) Check(ctx context.Context) Result {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.url, nil)
	if err != nil {
		return Result{
			Status:    StatusUnhealthy,
			Message:   "invalid probe url",
			Err:       err,
			Duration:  time.Since(start),
			CheckedAt: start,
		}
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return Result{
			Status:    StatusUnhealthy,
			Message:   "unreachable",
			Err:       err,
			Duration:  time.Since(start),
			CheckedAt: start,
		}
	}
	resp.Body.Close()

	return Result{
		Status:    StatusHealthy,
		Message:   fmt.Sprintf("reachable (status %d)", resp.StatusCode),
		Duration:  time.Since(start),
		CheckedAt: start,
	}
}

var (
	_ Checker = (*CheckFunc)(nil)
	_ Checker = (*EndpointChecker)(nil)
)
