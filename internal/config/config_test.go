package config

import (
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "ALLOWED_ORIGINS", "APP_TIMEZONE", "ASSIST_RATE_PER_MINUTE"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != DefaultPort {
		t.Errorf("port = %q, want %q", cfg.Port, DefaultPort)
	}
	if cfg.Location == nil || cfg.Location.String() != DefaultTimezone {
		t.Errorf("location = %v, want %s", cfg.Location, DefaultTimezone)
	}
	if len(cfg.AllowedOrigins) != len(defaultOrigins) {
		t.Errorf("origins = %v", cfg.AllowedOrigins)
	}
	if cfg.AssistPerMin != DefaultAssistPerMin {
		t.Errorf("assist rate = %d", cfg.AssistPerMin)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("APP_TIMEZONE", "UTC")
	t.Setenv("ASSIST_RATE_PER_MINUTE", "5")
	t.Setenv("AUTH_JWT_AUDIENCE", " authenticated ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("port = %q", cfg.Port)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("origins = %v", cfg.AllowedOrigins)
	}
	if cfg.Location.String() != "UTC" {
		t.Errorf("location = %v", cfg.Location)
	}
	if cfg.AssistPerMin != 5 {
		t.Errorf("assist rate = %d", cfg.AssistPerMin)
	}
	if cfg.JWTAudience != "authenticated" {
		t.Errorf("audience = %q", cfg.JWTAudience)
	}
}

func TestLoad_BadValues(t *testing.T) {
	t.Setenv("APP_TIMEZONE", "Not/AZone")
	if _, err := Load(); err == nil {
		t.Error("expected error for unknown timezone")
	}

	t.Setenv("APP_TIMEZONE", "UTC")
	t.Setenv("ASSIST_RATE_PER_MINUTE", "-3")
	if _, err := Load(); err == nil {
		t.Error("expected error for negative rate")
	}
}

func TestValidate(t *testing.T) {
	if err := (Config{}).Validate(); err == nil {
		t.Error("expected error without JWT secret")
	}
	if err := (Config{JWTSecret: "s"}).Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
