package auth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/singleflight"

	"github.com/jackccrawford/msona/logbuf"
)

// Credential is a bearer token plus the instant it stops being usable.
// ExpiresAt already includes the safety margin; the credential is valid
// strictly before it. Credentials are replaced wholesale, never mutated.
type Credential struct {
	AccessToken string
	ExpiresAt   time.Time
}

// ClientCredentialsConfig configures a ClientCredentials source.
type ClientCredentialsConfig struct {
	// TokenURL is the token endpoint of the external service.
	TokenURL string

	// ClientID and ClientSecret authenticate the exchange request
	// (HTTP Basic, base64 of "id:secret").
	ClientID     string
	ClientSecret string

	// SafetyMargin is subtracted from the reported TTL so in-flight
	// requests do not race expiry. Default: 60 seconds.
	SafetyMargin time.Duration

	// DefaultTTL is used when the token response reports no TTL and the
	// token itself carries no expiry. Default: 5 minutes.
	DefaultTTL time.Duration

	// HTTPClient issues exchange requests. Default: http.DefaultClient.
	HTTPClient *http.Client

	// Now is the clock. Default: time.Now.
	Now func() time.Time

	// Log receives diagnostic entries. Optional.
	Log *logbuf.Sink
}

// ClientCredentials caches one bearer credential for one external service.
type ClientCredentials struct {
	config ClientCredentialsConfig

	mu    sync.RWMutex
	cred  *Credential
	group singleflight.Group
}

// NewClientCredentials creates a credential source.
func NewClientCredentials(config ClientCredentialsConfig) *ClientCredentials {
	if config.SafetyMargin <= 0 {
		config.SafetyMargin = 60 * time.Second
	}
	if config.DefaultTTL <= 0 {
		config.DefaultTTL = 5 * time.Minute
	}
	if config.HTTPClient == nil {
		config.HTTPClient = http.DefaultClient
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	return &ClientCredentials{config: config}
}

// Token returns the cached token while it is valid, otherwise performs an
// exchange. The valid-cache path makes no network call.
func (c *ClientCredentials) Token(ctx context.Context) (string, error) {
	if token, ok := c.cached(); ok {
		return token, nil
	}
	return c.refresh(ctx)
}

// ForceRefresh discards any cached credential and exchanges unconditionally.
// Used when a downstream call reports the credential rejected even though the
// cache believed it valid (server-side revocation, clock skew).
func (c *ClientCredentials) ForceRefresh(ctx context.Context) (string, error) {
	c.mu.Lock()
	c.cred = nil
	c.mu.Unlock()
	return c.refresh(ctx)
}

// Credential returns a copy of the cached credential, if any.
func (c *ClientCredentials) Credential() (Credential, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.cred == nil {
		return Credential{}, false
	}
	return *c.cred, true
}

func (c *ClientCredentials) cached() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.cred != nil && c.config.Now().Before(c.cred.ExpiresAt) {
		return c.cred.AccessToken, true
	}
	return "", false
}

// refresh coalesces concurrent exchange attempts into one network call.
func (c *ClientCredentials) refresh(ctx context.Context) (string, error) {
	v, err, _ := c.group.Do("exchange", func() (any, error) {
		// Another caller may have refreshed while we waited on the group.
		if token, ok := c.cached(); ok {
			return token, nil
		}
		return c.exchange(ctx)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

type tokenErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (c *ClientCredentials) exchange(ctx context.Context) (string, error) {
	if c.config.ClientID == "" || c.config.ClientSecret == "" {
		return "", ErrMissingCredentials
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuthentication, err)
	}
	basic := base64.StdEncoding.EncodeToString([]byte(c.config.ClientID + ":" + c.config.ClientSecret))
	req.Header.Set("Authorization", "Basic "+basic)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.config.HTTPClient.Do(req)
	if err != nil {
		c.log(logbuf.LevelError, "failed to reach token endpoint", map[string]any{"error": err.Error()})
		return "", fmt.Errorf("%w: %v", ErrAuthentication, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		var body tokenErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&body)
		reason := body.ErrorDescription
		if reason == "" {
			reason = body.Error
		}
		if reason == "" {
			reason = fmt.Sprintf("status %d", resp.StatusCode)
		}
		c.log(logbuf.LevelError, "token request failed", map[string]any{
			"status": resp.StatusCode,
			"error":  reason,
		})
		return "", fmt.Errorf("%w: %s", ErrAuthentication, reason)
	}

	var body tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("%w: decode token response: %v", ErrAuthentication, err)
	}
	if body.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token", ErrAuthentication)
	}

	now := c.config.Now()
	expiresAt := c.expiry(now, body)

	c.mu.Lock()
	c.cred = &Credential{AccessToken: body.AccessToken, ExpiresAt: expiresAt}
	c.mu.Unlock()

	c.log(logbuf.LevelInfo, "new access token obtained", map[string]any{
		"expires_in": body.ExpiresIn,
	})
	return body.AccessToken, nil
}

// expiry derives the credential expiry. Preference order: the reported
// expires_in, the token's own exp claim if it parses as a JWT, DefaultTTL.
// The safety margin is applied in every case.
func (c *ClientCredentials) expiry(now time.Time, body tokenResponse) time.Time {
	if body.ExpiresIn > 0 {
		return now.Add(time.Duration(body.ExpiresIn)*time.Second - c.config.SafetyMargin)
	}
	if exp, ok := jwtExpiry(body.AccessToken); ok && exp.After(now) {
		return exp.Add(-c.config.SafetyMargin)
	}
	return now.Add(c.config.DefaultTTL - c.config.SafetyMargin)
}

// jwtExpiry reads the exp claim of a JWT-shaped token without verifying it.
// Verification is the issuer's concern; we only need the lifetime hint.
func jwtExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

func (c *ClientCredentials) log(level logbuf.Level, msg string, data any) {
	if c.config.Log == nil {
		return
	}
	c.config.Log.Log(level, "auth", msg, data)
}
