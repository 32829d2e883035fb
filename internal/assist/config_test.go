package assist

import (
	"errors"
	"testing"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{"ASSIST_PROVIDER", "OPENAI_API_KEY", "OPENAI_BASE_URL", "ASSIST_TRANSCRIBE_MODEL", "ASSIST_VISION_MODEL", "ASSIST_EXTRACT_MODEL"} {
		t.Setenv(k, "")
	}
	t.Setenv("ASSIST_PROVIDER", " OpenAI ")
	t.Setenv("ASSIST_EXTRACT_MODEL", "gpt-test")

	cfg := LoadFromEnv()
	if cfg.Provider != ProviderOpenAI {
		t.Errorf("provider = %q", cfg.Provider)
	}
	if cfg.VisionModel != DefaultVisionModel || cfg.ExtractModel != "gpt-test" {
		t.Errorf("models = %q / %q", cfg.VisionModel, cfg.ExtractModel)
	}
	if !errors.Is(cfg.Validate(), ErrMissingAPIKey) {
		t.Errorf("expected missing key error, got %v", cfg.Validate())
	}
}

func TestNewProvider_Unknown(t *testing.T) {
	_, err := NewProvider(Config{Provider: "carrier-pigeon", APIKey: "k"})
	if !errors.Is(err, ErrUnknownProvider) {
		t.Errorf("expected ErrUnknownProvider, got %v", err)
	}
}
