package config_test

import (
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/nikhilbhutani/kidspeak/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "")
	t.Setenv("SCORING_PROVIDER", "")
	t.Setenv("SCORING_TIMEOUT", "")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Scoring.Provider != "gemini" {
		t.Errorf("Scoring.Provider = %q, want gemini", cfg.Scoring.Provider)
	}
	if cfg.Scoring.Timeout != 30*time.Second {
		t.Errorf("Scoring.Timeout = %v, want 30s", cfg.Scoring.Timeout)
	}
	if cfg.Scoring.DefaultTemperature != 0.3 {
		t.Errorf("Scoring.DefaultTemperature = %v, want 0.3", cfg.Scoring.DefaultTemperature)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"SERVER_PORT", "eighty"},
		{"SCORING_TIMEOUT", "soon"},
		{"SCORING_DEFAULT_TEMPERATURE", "warm"},
		{"AUTH_OPTIONAL", "maybe"},
		{"RATE_LIMIT_RPS", "fast"},
		{"SHUTDOWN_TIMEOUT", "later"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := config.Load(); err == nil || !strings.Contains(err.Error(), tt.key) {
				t.Fatalf("Load() error = %v, want error mentioning %s", err, tt.key)
			}
		})
	}
}

func TestLoad_CORSOrigins(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://app.example.com, ,http://localhost:5173 ")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got := strings.Join(cfg.Server.CORSOrigins, "|")
	if got != "https://app.example.com|http://localhost:5173" {
		t.Errorf("CORSOrigins = %q", got)
	}
}

func TestValidate_ReportsMissing(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{Scoring: config.ScoringConfig{Provider: "gemini"}}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	for _, want := range []string{"DATABASE_URL", "SUPABASE_JWT_SECRET", "GEMINI_API_KEY"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q should mention %s", err, want)
		}
	}
}

func TestSlogLevel(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	} {
		cfg := &config.Config{LogLevel: in}
		if got := cfg.SlogLevel(); got != want {
			t.Errorf("SlogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestValidate_UnknownProvider(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{Scoring: config.ScoringConfig{Provider: "mystery"}}
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "mystery") {
		t.Fatalf("Validate() = %v, want unknown provider error", err)
	}
}
