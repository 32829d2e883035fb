package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the service configuration read from the environment.
//
// Environment variables:
//   - PORT: listen port (default: 5050)
//   - ALLOWED_ORIGINS: comma separated CORS allow-list
//   - AUTH_JWT_SECRET: signing secret of the managed auth provider
//   - AUTH_JWT_AUDIENCE: expected aud claim, unchecked when empty
//   - TAXONOMY_FILE: optional YAML file overriding the built-in categories
//   - APP_TIMEZONE: zone used to decide what "today" is (default: Asia/Kolkata)
//   - ASSIST_RATE_PER_MINUTE: per-user request budget for /api routes (default: 20)
type Config struct {
	Port           string
	AllowedOrigins []string
	JWTSecret      string
	JWTAudience    string
	TaxonomyFile   string
	Location       *time.Location
	AssistPerMin   int
}

const (
	DefaultPort         = "5050"
	DefaultTimezone     = "Asia/Kolkata"
	DefaultAssistPerMin = 20
)

var defaultOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
}

// Load reads the configuration from the process environment.
func Load() (Config, error) {
	cfg := Config{
		Port:         strings.TrimSpace(os.Getenv("PORT")),
		JWTSecret:    os.Getenv("AUTH_JWT_SECRET"),
		JWTAudience:  strings.TrimSpace(os.Getenv("AUTH_JWT_AUDIENCE")),
		TaxonomyFile: strings.TrimSpace(os.Getenv("TAXONOMY_FILE")),
		AssistPerMin: DefaultAssistPerMin,
	}
	if cfg.Port == "" {
		cfg.Port = DefaultPort
	}

	cfg.AllowedOrigins = splitList(os.Getenv("ALLOWED_ORIGINS"))
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = defaultOrigins
	}

	tz := strings.TrimSpace(os.Getenv("APP_TIMEZONE"))
	if tz == "" {
		tz = DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return cfg, fmt.Errorf("invalid APP_TIMEZONE %q: %w", tz, err)
	}
	cfg.Location = loc

	if v := strings.TrimSpace(os.Getenv("ASSIST_RATE_PER_MINUTE")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return cfg, fmt.Errorf("invalid ASSIST_RATE_PER_MINUTE %q", v)
		}
		cfg.AssistPerMin = n
	}

	return cfg, nil
}

// Validate reports settings the server cannot start without.
func (c Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("AUTH_JWT_SECRET is empty")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
