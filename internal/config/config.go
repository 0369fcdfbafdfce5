package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      AuthConfig
	LLM       LLMConfig
	Scoring   ScoringConfig
	STT       STTConfig
	TTS       TTSConfig
	Languages LanguagesConfig
	Worker    WorkerConfig
	LogLevel  string
}

type ServerConfig struct {
	Host            string
	Port            int
	CORSOrigins     []string
	RateLimitRPS    float64
	RateLimitBurst  int
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	URL      string
	MaxConns int
	MinConns int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AuthConfig struct {
	JWTSecret string
	// Optional lets anonymous requests through; their attempts are not recorded.
	Optional bool
}

type LLMConfig struct {
	OpenAIKey       string
	AnthropicKey    string
	GeminiKey       string
	OllamaURL       string
	DefaultProvider string
}

// ScoringConfig controls the structured feedback call used by the
// pronunciation pipeline.
type ScoringConfig struct {
	Provider           string // "gemini", "openai", "anthropic" or "ollama"
	Model              string
	Timeout            time.Duration
	DefaultTemperature float64
}

// STTConfig selects a transcriber used before the feedback call. Leave
// Backend empty to send audio straight to the scoring provider.
type STTConfig struct {
	Backend       string // "", "openai" or "local"
	OpenAIKey     string
	OpenAIBaseURL string
	OpenAIModel   string
	LocalBaseURL  string // default: "http://localhost:8178"
}

type TTSConfig struct {
	Backend       string // "openai" or "local"
	OpenAIKey     string
	OpenAIBaseURL string
	OpenAIModel   string
	LocalBinPath  string // default: "piper"
	LocalModel    string // required when backend=local
	CacheTTL      time.Duration
}

type WorkerConfig struct {
	Concurrency int
	// MetricsAddr serves the worker's /metrics; empty disables it.
	MetricsAddr string
}

type LanguagesConfig struct {
	// File is an optional YAML file overriding the built-in language profiles.
	File string
}

func Load() (*Config, error) {
	port, err := getEnvInt("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	rateRPS, err := getEnvFloat("RATE_LIMIT_RPS", 10)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_RPS: %w", err)
	}

	rateBurst, err := getEnvInt("RATE_LIMIT_BURST", 20)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BURST: %w", err)
	}

	shutdownTimeout, err := getEnvDuration("SHUTDOWN_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
	}

	maxConns, err := getEnvInt("DB_MAX_CONNS", 20)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}

	minConns, err := getEnvInt("DB_MIN_CONNS", 2)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	scoringTimeout, err := getEnvDuration("SCORING_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid SCORING_TIMEOUT: %w", err)
	}

	temperature, err := getEnvFloat("SCORING_DEFAULT_TEMPERATURE", 0.3)
	if err != nil {
		return nil, fmt.Errorf("invalid SCORING_DEFAULT_TEMPERATURE: %w", err)
	}

	ttsCacheTTL, err := getEnvDuration("TTS_CACHE_TTL", 7*24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("invalid TTS_CACHE_TTL: %w", err)
	}

	workerConcurrency, err := getEnvInt("WORKER_CONCURRENCY", 10)
	if err != nil {
		return nil, fmt.Errorf("invalid WORKER_CONCURRENCY: %w", err)
	}

	authOptional, err := getEnvBool("AUTH_OPTIONAL", false)
	if err != nil {
		return nil, fmt.Errorf("invalid AUTH_OPTIONAL: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            port,
			CORSOrigins:     getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
			RateLimitRPS:    rateRPS,
			RateLimitBurst:  rateBurst,
			ShutdownTimeout: shutdownTimeout,
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", ""),
			MaxConns: maxConns,
			MinConns: minConns,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("SUPABASE_JWT_SECRET", ""),
			Optional:  authOptional,
		},
		LLM: LLMConfig{
			OpenAIKey:       getEnv("OPENAI_API_KEY", ""),
			AnthropicKey:    getEnv("ANTHROPIC_API_KEY", ""),
			GeminiKey:       getEnv("GEMINI_API_KEY", ""),
			OllamaURL:       getEnv("OLLAMA_URL", ""),
			DefaultProvider: getEnv("LLM_DEFAULT_PROVIDER", "gemini"),
		},
		Scoring: ScoringConfig{
			Provider:           getEnv("SCORING_PROVIDER", "gemini"),
			Model:              getEnv("SCORING_MODEL", "gemini-2.5-flash"),
			Timeout:            scoringTimeout,
			DefaultTemperature: temperature,
		},
		STT: STTConfig{
			Backend:       getEnv("STT_BACKEND", ""),
			OpenAIKey:     getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL: getEnv("STT_OPENAI_BASE_URL", ""),
			OpenAIModel:   getEnv("STT_OPENAI_MODEL", ""),
			LocalBaseURL:  getEnv("STT_LOCAL_BASE_URL", "http://localhost:8178"),
		},
		TTS: TTSConfig{
			Backend:       getEnv("TTS_BACKEND", "openai"),
			OpenAIKey:     getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL: getEnv("TTS_OPENAI_BASE_URL", ""),
			OpenAIModel:   getEnv("TTS_OPENAI_MODEL", ""),
			LocalBinPath:  getEnv("TTS_LOCAL_PIPER_BIN", "piper"),
			LocalModel:    getEnv("TTS_LOCAL_PIPER_MODEL", ""),
			CacheTTL:      ttsCacheTTL,
		},
		Languages: LanguagesConfig{
			File: getEnv("LANGUAGES_FILE", ""),
		},
		Worker: WorkerConfig{
			Concurrency: workerConcurrency,
			MetricsAddr: getEnv("WORKER_METRICS_ADDR", ":9091"),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	return cfg, nil
}

// SlogLevel parses LogLevel, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Validate reports the environment variables a production deployment is
// missing. The API still starts without them in degraded mode.
func (c *Config) Validate() error {
	var missing []string
	if c.Database.URL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.Auth.JWTSecret == "" && !c.Auth.Optional {
		missing = append(missing, "SUPABASE_JWT_SECRET")
	}
	switch c.Scoring.Provider {
	case "gemini":
		if c.LLM.GeminiKey == "" {
			missing = append(missing, "GEMINI_API_KEY")
		}
	case "openai":
		if c.LLM.OpenAIKey == "" {
			missing = append(missing, "OPENAI_API_KEY")
		}
	case "anthropic":
		if c.LLM.AnthropicKey == "" {
			missing = append(missing, "ANTHROPIC_API_KEY")
		}
	case "ollama":
		if c.LLM.OllamaURL == "" {
			missing = append(missing, "OLLAMA_URL")
		}
	default:
		return fmt.Errorf("unknown SCORING_PROVIDER %q", c.Scoring.Provider)
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvList splits a comma-separated value, dropping empty entries.
func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.ParseFloat(v, 64)
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.ParseBool(v)
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return time.ParseDuration(v)
}
