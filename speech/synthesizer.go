package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jackccrawford/msona/logbuf"
	"github.com/jackccrawford/msona/resilience"
)

// Audio is a synthesized clip.
type Audio struct {
	Data        []byte
	ContentType string
}

// Config configures a Synthesizer.
type Config struct {
	// APIKey authenticates requests (xi-api-key header). Required.
	APIKey string

	// BaseURL of the text-to-speech API.
	BaseURL string

	// HTTPClient issues the requests. Default: http.DefaultClient.
	HTTPClient *http.Client

	// Log receives diagnostic entries. Optional.
	Log *logbuf.Sink

	// RetryDelay spaces the two synthesis attempts. Default: 1s.
	RetryDelay time.Duration
}

// Synthesizer converts text to spoken audio.
type Synthesizer struct {
	config Config
	retry  *resilience.Retry
}

// New creates a synthesizer, applying defaults to the config.
func New(config Config) *Synthesizer {
	if config.BaseURL == "" {
		config.BaseURL = "https://api.elevenlabs.io/v1"
	}
	if config.HTTPClient == nil {
		config.HTTPClient = http.DefaultClient
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = time.Second
	}
	return &Synthesizer{
		config: config,
		retry: resilience.NewRetry(resilience.RetryConfig{
			MaxAttempts:  2,
			InitialDelay: config.RetryDelay,
			Strategy:     resilience.BackoffLinear,
		}),
	}
}

type synthesisRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

// Synthesize converts text to audio using the given voice, or the default
// voice when voiceID is empty. All failures wrap ErrSpeech.
func (s *Synthesizer) Synthesize(ctx context.Context, text, voiceID string) (*Audio, error) {
	if s.config.APIKey == "" {
		s.log(logbuf.LevelError, "api key not configured", nil)
		return nil, fmt.Errorf("%w: api key not configured", ErrSpeech)
	}
	if voiceID == "" {
		voiceID = DefaultVoiceID
	}
	s.log(logbuf.LevelInfo, "synthesizing speech", map[string]any{
		"textLength": len(text),
		"voiceId":    voiceID,
	})

	var audio *Audio
	err := s.retry.Execute(ctx, func(ctx context.Context) error {
		var opErr error
		audio, opErr = s.synthesize(ctx, text, voiceID)
		if opErr != nil {
			s.log(logbuf.LevelWarn, "synthesis attempt failed", map[string]any{
				"error": opErr.Error(),
			})
		}
		return opErr
	})
	if err != nil {
		s.log(logbuf.LevelError, "all synthesis attempts failed", nil)
		return nil, err
	}

	s.log(logbuf.LevelInfo, "synthesized speech", map[string]any{"bytes": len(audio.Data)})
	return audio, nil
}

func (s *Synthesizer) synthesize(ctx context.Context, text, voiceID string) (*Audio, error) {
	payload, err := json.Marshal(synthesisRequest{
		Text:    text,
		ModelID: "eleven_monolingual_v1",
		VoiceSettings: voiceSettings{
			Stability:       0.5,
			SimilarityBoost: 0.75,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSpeech, err)
	}

	url := fmt.Sprintf("%s/text-to-speech/%s", s.config.BaseURL, voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSpeech, err)
	}
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", s.config.APIKey)

	resp, err := s.config.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSpeech, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrSpeech, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s", ErrSpeech, synthesisFailure(data, resp.StatusCode))
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: received empty audio response", ErrSpeech)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "audio/mpeg"
	}
	return &Audio{Data: data, ContentType: contentType}, nil
}

// synthesisFailure prefers the server's own message when the error body
// parses.
func synthesisFailure(data []byte, status int) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err == nil && body.Error != "" {
		return body.Error
	}
	return fmt.Sprintf("synthesis failed (status %d)", status)
}

func (s *Synthesizer) log(level logbuf.Level, msg string, data any) {
	if s.config.Log == nil {
		return
	}
	s.config.Log.Log(level, "speech", msg, data)
}
