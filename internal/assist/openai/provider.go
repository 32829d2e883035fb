package openai

import (
	"context"
	"io"

	"github.com/EmpoweredVote/Ledger-Backend/internal/assist"
)

func init() {
	assist.RegisterProvider(assist.ProviderOpenAI, func(cfg assist.Config) (assist.Provider, error) {
		return NewProvider(cfg), nil
	})
}

// Provider implements assist.Provider over the hosted API.
type Provider struct {
	client *Client
	cfg    assist.Config
}

func NewProvider(cfg assist.Config) *Provider {
	cfg = cfg.WithDefaults()
	return &Provider{client: NewClient(cfg.APIKey, cfg.BaseURL), cfg: cfg}
}

func (p *Provider) Name() string { return string(assist.ProviderOpenAI) }

func (p *Provider) Transcribe(ctx context.Context, audio io.Reader, filename, prompt string) (string, error) {
	return p.client.Transcribe(ctx, p.cfg.TranscribeModel, audio, filename, prompt)
}

func (p *Provider) Complete(ctx context.Context, req assist.ChatRequest) (string, error) {
	model := p.cfg.ExtractModel
	if req.Model == assist.ModelVision {
		model = p.cfg.VisionModel
	}

	var image []byte
	var mimeType string
	if req.Image != nil {
		image, mimeType = req.Image.Data, req.Image.MIMEType
	}
	return p.client.Chat(ctx, model, req.System, req.User, image, mimeType, req.MaxTokens, req.Temperature)
}
