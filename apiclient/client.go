package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/jackccrawford/msona/auth"
	"github.com/jackccrawford/msona/logbuf"
	"github.com/jackccrawford/msona/observe"
	"github.com/jackccrawford/msona/resilience"
)

// Config configures a Client.
type Config struct {
	// BaseURL is prepended to every endpoint path.
	BaseURL string

	// Service names this client in log entries and metric labels.
	// Default: "apiclient".
	Service string

	// Tokens supplies the bearer credential.
	Tokens *auth.ClientCredentials

	// HTTPClient issues the requests. Default: http.DefaultClient.
	HTTPClient *http.Client

	// Log receives diagnostic entries. Optional.
	Log *logbuf.Sink

	// Instruments records telemetry. Optional (nil records nothing).
	Instruments *observe.Instruments

	// Limiter guards calls against the service quota before they leave
	// the process. Optional.
	Limiter *resilience.RateLimiter

	// InitialBackoff is the first rate-limit delay when the server sends
	// no Retry-After. Default: 1s.
	InitialBackoff time.Duration

	// MaxBackoff caps the doubling rate-limit delay. Default: 16s.
	MaxBackoff time.Duration

	// MaxRetries bounds rate-limit retries beyond the initial attempt.
	// Default: 3.
	MaxRetries int
}

// Client issues resilient requests against one external API.
type Client struct {
	config Config
}

// New creates a client, applying defaults to the config.
func New(config Config) *Client {
	if config.Service == "" {
		config.Service = "apiclient"
	}
	if config.HTTPClient == nil {
		config.HTTPClient = http.DefaultClient
	}
	if config.InitialBackoff <= 0 {
		config.InitialBackoff = time.Second
	}
	if config.MaxBackoff <= 0 {
		config.MaxBackoff = 16 * time.Second
	}
	if config.MaxRetries <= 0 {
		config.MaxRetries = 3
	}
	return &Client{config: config}
}

// Get issues a GET request and returns the raw response body.
func (c *Client) Get(ctx context.Context, endpoint string) ([]byte, error) {
	return c.Do(ctx, http.MethodGet, endpoint, nil)
}

// GetJSON issues a GET request and decodes the response body into T.
// No validation happens beyond the decode; a malformed-but-valid-JSON
// payload is the caller's concern.
func GetJSON[T any](ctx context.Context, c *Client, endpoint string) (T, error) {
	var out T
	data, err := c.Get(ctx, endpoint)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("apiclient: decode %s response: %w", endpoint, err)
	}
	return out, nil
}

// Do issues one logical request with the recovery strategies described in
// the package documentation.
func (c *Client) Do(ctx context.Context, method, endpoint string, body []byte) ([]byte, error) {
	if c.config.Limiter != nil {
		if err := c.config.Limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	ctx, end := c.config.Instruments.StartRequest(ctx, c.config.Service, endpoint)
	data, status, err := c.attemptLoop(ctx, method, endpoint, body)
	end(status, err)
	return data, err
}

// attemptLoop is the explicit retry state machine: one bounded counter for
// rate-limit retries, one accumulated delay, one forced-token flag that
// guards the single credential-refresh retry.
func (c *Client) attemptLoop(ctx context.Context, method, endpoint string, body []byte) ([]byte, int, error) {
	var (
		retries    int
		delay      = c.config.InitialBackoff
		forceToken bool
		lastStatus int
	)

	for {
		token, err := c.fetchToken(ctx, forceToken)
		if err != nil {
			return nil, lastStatus, err
		}

		resp, err := c.send(ctx, method, endpoint, body, token)
		if err != nil {
			c.log(logbuf.LevelError, "request failed", map[string]any{
				"endpoint": endpoint,
				"error":    err.Error(),
			})
			if !forceToken {
				c.log(logbuf.LevelInfo, "retrying with new token", map[string]any{"endpoint": endpoint})
				c.config.Instruments.RetryObserved(ctx, c.config.Service, "network")
				forceToken = true
				continue
			}
			return nil, lastStatus, fmt.Errorf("%w: %v", ErrNetwork, err)
		}

		lastStatus = resp.StatusCode

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			drain(resp)
			if retries >= c.config.MaxRetries {
				c.log(logbuf.LevelError, "rate limit retry budget exhausted", map[string]any{
					"endpoint": endpoint,
					"retries":  retries,
				})
				return nil, lastStatus, fmt.Errorf("%w: gave up after %d retries", ErrRateLimited, retries)
			}

			wait := retryAfter(resp, delay)
			c.log(logbuf.LevelWarn, "rate limited, retrying", map[string]any{
				"endpoint": endpoint,
				"attempt":  retries + 1,
				"wait":     wait.String(),
			})
			c.config.Instruments.RetryObserved(ctx, c.config.Service, "rate_limit")

			select {
			case <-ctx.Done():
				return nil, lastStatus, ctx.Err()
			case <-time.After(wait):
			}
			c.config.Instruments.RateLimitWait(ctx, c.config.Service, wait)

			retries++
			delay = min(delay*2, c.config.MaxBackoff)
			continue

		case resp.StatusCode == http.StatusUnauthorized && !forceToken:
			drain(resp)
			c.log(logbuf.LevelInfo, "token rejected, refreshing", map[string]any{"endpoint": endpoint})
			c.config.Instruments.RetryObserved(ctx, c.config.Service, "auth")
			forceToken = true
			continue
		}

		data, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			return nil, lastStatus, fmt.Errorf("%w: read body: %v", ErrNetwork, err)
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			msg := errorMessage(data, resp.StatusCode)
			c.log(logbuf.LevelError, "api request failed", map[string]any{
				"endpoint": endpoint,
				"status":   resp.StatusCode,
				"error":    msg,
			})
			return nil, lastStatus, &APIError{Status: resp.StatusCode, Message: msg}
		}

		return data, lastStatus, nil
	}
}

func (c *Client) fetchToken(ctx context.Context, force bool) (string, error) {
	if force {
		token, err := c.config.Tokens.ForceRefresh(ctx)
		if err == nil {
			c.config.Instruments.TokenRefresh(ctx, c.config.Service)
		}
		return token, err
	}
	return c.config.Tokens.Token(ctx)
}

func (c *Client) send(ctx context.Context, method, endpoint string, body []byte, token string) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+endpoint, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.config.HTTPClient.Do(req)
}

func (c *Client) log(level logbuf.Level, msg string, data any) {
	if c.config.Log == nil {
		return
	}
	c.config.Log.Log(level, c.config.Service, msg, data)
}

// retryAfter reads the server's Retry-After seconds, falling back to the
// accumulated backoff delay.
func retryAfter(resp *http.Response, fallback time.Duration) time.Duration {
	header := resp.Header.Get("Retry-After")
	if header == "" {
		return fallback
	}
	secs, err := strconv.Atoi(header)
	if err != nil || secs < 0 {
		return fallback
	}
	return time.Duration(secs) * time.Second
}

// errorMessage extracts the server-supplied message from an error body.
// Handles both {"error":{"message":...}} and flat {"error":...} shapes.
func errorMessage(data []byte, status int) string {
	var nested struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(data, &nested); err == nil && nested.Error.Message != "" {
		return nested.Error.Message
	}

	var flat struct {
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
		Message          string `json:"message"`
	}
	if err := json.Unmarshal(data, &flat); err == nil {
		switch {
		case flat.ErrorDescription != "":
			return flat.ErrorDescription
		case flat.Error != "":
			return flat.Error
		case flat.Message != "":
			return flat.Message
		}
	}

	return fmt.Sprintf("request failed (status %d)", status)
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
