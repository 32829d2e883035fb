package assist

import (
	"context"
	"errors"
	"fmt"
	"io"
)

var (
	ErrMissingAPIKey   = errors.New("OPENAI_API_KEY environment variable is required for openai provider")
	ErrUnknownProvider = errors.New("unknown assist provider")
)

// Transcriber turns recorded speech into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio io.Reader, filename, prompt string) (string, error)
}

// Completer answers a chat prompt, optionally about an inline image.
type Completer interface {
	Complete(ctx context.Context, req ChatRequest) (string, error)
}

// Provider is a hosted model service the capture routes can use.
type Provider interface {
	Name() string
	Transcriber
	Completer
}

// Model picks which of the provider's models a request needs.
type Model string

const (
	ModelVision  Model = "vision"
	ModelExtract Model = "extract"
)

// Image is sent inline with a chat request.
type Image struct {
	MIMEType string
	Data     []byte
}

type ChatRequest struct {
	Model       Model
	System      string
	User        string
	Image       *Image
	MaxTokens   int
	Temperature float64
}

var providerRegistry = make(map[ProviderType]func(Config) (Provider, error))

// RegisterProvider registers a constructor; provider packages call it from
// init().
func RegisterProvider(providerType ProviderType, constructor func(Config) (Provider, error)) {
	providerRegistry[providerType] = constructor
}

// NewProvider builds the configured provider.
func NewProvider(cfg Config) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	constructor, ok := providerRegistry[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, cfg.Provider)
	}

	return constructor(cfg)
}
