package aichat

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/jackccrawford/msona/logbuf"
	"github.com/jackccrawford/msona/resilience"
)

// Response is the outcome of one generation. Exactly one of Text and Err is
// meaningful: a failed generation carries the failure message in Err and an
// empty Text.
type Response struct {
	Text string
	Err  string
}

// Failed reports whether the generation produced no usable text.
func (r Response) Failed() bool { return r.Err != "" }

// Config configures a Client.
type Config struct {
	// APIKey authenticates requests. Required.
	APIKey string

	// BaseURL of the chat-completions API.
	BaseURL string

	// Model to complete with.
	Model string

	// HTTPClient issues the requests. Default: http.DefaultClient.
	HTTPClient *http.Client

	// Log receives diagnostic entries. Optional.
	Log *logbuf.Sink

	// RetryDelay spaces the two generation attempts. Default: 1s.
	RetryDelay time.Duration
}

// Client generates chat completions.
type Client struct {
	config Config
	api    *openai.Client
	retry  *resilience.Retry
}

// New creates a client, applying defaults to the config.
func New(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = "https://api.x.ai/v1"
	}
	if config.Model == "" {
		config.Model = "grok-beta"
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = time.Second
	}

	apiConfig := openai.DefaultConfig(config.APIKey)
	apiConfig.BaseURL = config.BaseURL
	if config.HTTPClient != nil {
		apiConfig.HTTPClient = config.HTTPClient
	}

	return &Client{
		config: config,
		api:    openai.NewClientWithConfig(apiConfig),
		retry: resilience.NewRetry(resilience.RetryConfig{
			MaxAttempts:  2,
			InitialDelay: config.RetryDelay,
			Strategy:     resilience.BackoffLinear,
		}),
	}
}

// Generate completes prompt and returns the result in-band: it never
// returns a Go error, so callers can always render the Response.
func (c *Client) Generate(ctx context.Context, prompt string) Response {
	text, err := c.generate(ctx, prompt)
	if err != nil {
		c.log(logbuf.LevelError, "all generation attempts failed", map[string]any{
			"error": err.Error(),
		})
		return Response{Err: err.Error()}
	}
	return Response{Text: text}
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	if c.config.APIKey == "" {
		return "", fmt.Errorf("%w: api key not configured", ErrTransformation)
	}
	c.log(logbuf.LevelInfo, "generating response", map[string]any{
		"promptLength": len(prompt),
	})

	var text string
	err := c.retry.Execute(ctx, func(ctx context.Context) error {
		var opErr error
		text, opErr = c.complete(ctx, prompt)
		if opErr != nil {
			c.log(logbuf.LevelError, "generation attempt failed", map[string]any{
				"error": opErr.Error(),
			})
		}
		return opErr
	})
	if err != nil {
		return "", err
	}

	c.log(logbuf.LevelInfo, "generated response", map[string]any{"contentLength": len(text)})
	return text, nil
}

func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		// go-openai omits a zero temperature from the request; smallest
		// nonzero keeps the completion deterministic.
		Temperature: math.SmallestNonzeroFloat32,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTransformation, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in response", ErrTransformation)
	}
	message := resp.Choices[0].Message
	if message.Refusal != "" {
		return "", fmt.Errorf("%w: model refused to generate response", ErrTransformation)
	}
	if message.Content == "" {
		return "", fmt.Errorf("%w: no content in response", ErrTransformation)
	}

	return trimQuotes(strings.TrimSpace(message.Content)), nil
}

// trimQuotes strips one layer of surrounding quote marks, which chat models
// habitually add around transformed quotes.
func trimQuotes(s string) string {
	if len(s) > 0 && (s[0] == '"' || s[0] == '\'') {
		s = s[1:]
	}
	if len(s) > 0 {
		if last := s[len(s)-1]; last == '"' || last == '\'' {
			s = s[:len(s)-1]
		}
	}
	return s
}

func (c *Client) log(level logbuf.Level, msg string, data any) {
	if c.config.Log == nil {
		return
	}
	c.config.Log.Log(level, "aichat", msg, data)
}
