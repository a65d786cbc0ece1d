package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Defaults for the external-service endpoints.
const (
	DefaultQuotesBaseURL   = "https://api.quotable.io"
	DefaultCatalogBaseURL  = "https://api.spotify.com/v1"
	DefaultCatalogTokenURL = "https://accounts.spotify.com/api/token"
	DefaultSpeechBaseURL   = "https://api.elevenlabs.io/v1"
	DefaultSpeechVoiceID   = "pNInz6obpgDQGcFmaJgB"
	DefaultAIBaseURL       = "https://api.x.ai/v1"
	DefaultAIModel         = "grok-beta"
)

// Config is the full access-layer configuration.
type Config struct {
	// Development enables console log mirroring and verbose diagnostics.
	Development bool

	// LogLevel is the minimum console level name ("debug".."error").
	LogLevel string

	Quotes  QuotesConfig
	Catalog CatalogConfig
	Speech  SpeechConfig
	AI      AIConfig
}

// QuotesConfig configures the quote provider. It needs no credentials.
type QuotesConfig struct {
	BaseURL string
}

// CatalogConfig configures the music-catalog provider.
type CatalogConfig struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
	TokenURL     string
}

// SpeechConfig configures the speech-synthesis provider.
type SpeechConfig struct {
	APIKey         string
	BaseURL        string
	DefaultVoiceID string
}

// AIConfig configures the chat-completion provider.
type AIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Load reads the configuration from the environment. A .env file in the
// working directory is merged in first when present; a missing file is not
// an error. Values may reference other variables as ${VAR}.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	var err error

	set := func(dst *string, key, fallback string) {
		if err != nil {
			return
		}
		raw, ok := os.LookupEnv(key)
		if !ok || raw == "" {
			*dst = fallback
			return
		}
		expanded, expandErr := ExpandEnv(raw)
		if expandErr != nil {
			err = fmt.Errorf("%s: %w", key, expandErr)
			return
		}
		*dst = expanded
	}

	set(&cfg.LogLevel, "MSONA_LOG_LEVEL", "info")
	set(&cfg.Quotes.BaseURL, "MSONA_QUOTES_BASE_URL", DefaultQuotesBaseURL)
	set(&cfg.Catalog.ClientID, "SPOTIFY_CLIENT_ID", "")
	set(&cfg.Catalog.ClientSecret, "SPOTIFY_CLIENT_SECRET", "")
	set(&cfg.Catalog.BaseURL, "MSONA_CATALOG_BASE_URL", DefaultCatalogBaseURL)
	set(&cfg.Catalog.TokenURL, "MSONA_CATALOG_TOKEN_URL", DefaultCatalogTokenURL)
	set(&cfg.Speech.APIKey, "ELEVENLABS_API_KEY", "")
	set(&cfg.Speech.BaseURL, "MSONA_SPEECH_BASE_URL", DefaultSpeechBaseURL)
	set(&cfg.Speech.DefaultVoiceID, "MSONA_SPEECH_VOICE_ID", DefaultSpeechVoiceID)
	set(&cfg.AI.APIKey, "GROK_API_KEY", "")
	set(&cfg.AI.BaseURL, "MSONA_AI_BASE_URL", DefaultAIBaseURL)
	set(&cfg.AI.Model, "MSONA_AI_MODEL", DefaultAIModel)
	if err != nil {
		return nil, err
	}

	if raw := os.Getenv("MSONA_DEV"); raw != "" {
		dev, parseErr := strconv.ParseBool(raw)
		if parseErr != nil {
			return nil, fmt.Errorf("MSONA_DEV: %w", parseErr)
		}
		cfg.Development = dev
	}

	return cfg, nil
}

// Validate reports, per service, why it is unusable. A service absent from
// the map is fully configured. The quote service needs no credentials and is
// never reported.
func (c *Config) Validate() map[string]error {
	problems := make(map[string]error)
	if c.Catalog.ClientID == "" || c.Catalog.ClientSecret == "" {
		problems["catalog"] = fmt.Errorf("SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET are required")
	}
	if c.Speech.APIKey == "" {
		problems["speech"] = fmt.Errorf("ELEVENLABS_API_KEY is required")
	}
	if c.AI.APIKey == "" {
		problems["ai"] = fmt.Errorf("GROK_API_KEY is required")
	}
	return problems
}
