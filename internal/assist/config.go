package assist

import (
	"os"
	"strings"
)

// ProviderType identifies the hosted model service.
type ProviderType string

const ProviderOpenAI ProviderType = "openai"

const (
	DefaultTranscribeModel = "whisper-1"
	DefaultVisionModel     = "gpt-4o"
	DefaultExtractModel    = "gpt-4o-mini"
)

// Config selects and configures the provider behind /api.
type Config struct {
	Provider ProviderType
	APIKey   string
	BaseURL  string

	TranscribeModel string
	VisionModel     string
	ExtractModel    string
}

// LoadFromEnv reads provider settings.
//
// Environment variables:
//   - ASSIST_PROVIDER: "openai" (default: "openai")
//   - OPENAI_API_KEY: API key (required)
//   - OPENAI_BASE_URL: API root (default: https://api.openai.com/v1)
//   - ASSIST_TRANSCRIBE_MODEL / ASSIST_VISION_MODEL / ASSIST_EXTRACT_MODEL: model overrides
func LoadFromEnv() Config {
	cfg := Config{
		Provider:        ProviderType(strings.ToLower(strings.TrimSpace(os.Getenv("ASSIST_PROVIDER")))),
		APIKey:          os.Getenv("OPENAI_API_KEY"),
		BaseURL:         strings.TrimSpace(os.Getenv("OPENAI_BASE_URL")),
		TranscribeModel: strings.TrimSpace(os.Getenv("ASSIST_TRANSCRIBE_MODEL")),
		VisionModel:     strings.TrimSpace(os.Getenv("ASSIST_VISION_MODEL")),
		ExtractModel:    strings.TrimSpace(os.Getenv("ASSIST_EXTRACT_MODEL")),
	}
	return cfg.WithDefaults()
}

// WithDefaults fills every empty field with its default.
func (c Config) WithDefaults() Config {
	if c.Provider == "" {
		c.Provider = ProviderOpenAI
	}
	if c.BaseURL == "" {
		c.BaseURL = "https://api.openai.com/v1"
	}
	if c.TranscribeModel == "" {
		c.TranscribeModel = DefaultTranscribeModel
	}
	if c.VisionModel == "" {
		c.VisionModel = DefaultVisionModel
	}
	if c.ExtractModel == "" {
		c.ExtractModel = DefaultExtractModel
	}
	return c
}

func (c Config) Validate() error {
	switch c.Provider {
	case ProviderOpenAI:
		if c.APIKey == "" {
			return ErrMissingAPIKey
		}
	}
	return nil
}
