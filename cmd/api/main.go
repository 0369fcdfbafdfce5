package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/nikhilbhutani/kidspeak/internal/api"
	"github.com/nikhilbhutani/kidspeak/internal/api/handlers"
	"github.com/nikhilbhutani/kidspeak/internal/attempts"
	"github.com/nikhilbhutani/kidspeak/internal/cache"
	"github.com/nikhilbhutani/kidspeak/internal/config"
	"github.com/nikhilbhutani/kidspeak/internal/database"
	"github.com/nikhilbhutani/kidspeak/internal/feedback"
	"github.com/nikhilbhutani/kidspeak/internal/guardrails"
	"github.com/nikhilbhutani/kidspeak/internal/language"
	"github.com/nikhilbhutani/kidspeak/internal/llm"
	"github.com/nikhilbhutani/kidspeak/internal/observe"
	"github.com/nikhilbhutani/kidspeak/internal/pronunciation"
	"github.com/nikhilbhutani/kidspeak/internal/queue"
	"github.com/nikhilbhutani/kidspeak/internal/speech"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		slog.Warn("incomplete configuration, some features are disabled", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func run(ctx context.Context, cfg *config.Config) error {
	languages, err := language.LoadFile(cfg.Languages.File)
	if err != nil {
		return fmt.Errorf("load languages: %w", err)
	}

	shutdownMetrics, err := observe.InitProvider(ctx, "kidspeak-api", version)
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	defer shutdownMetrics(context.Background())
	metrics := observe.DefaultMetrics()

	checks := map[string]handlers.Pinger{"database": nil, "redis": nil}

	// Database (optional; without it attempts are not recorded)
	var pool *pgxpool.Pool
	if cfg.Database.URL != "" {
		pool, err = database.NewPool(ctx, cfg.Database)
		if err != nil {
			slog.Warn("database not available", "error", err)
		} else {
			defer pool.Close()
			if err := database.RunMigrations(ctx, pool, database.Migrations()); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			checks["database"] = pool
		}
	}

	// Redis backs the TTS cache and the attempt queue.
	var ttsCache *cache.Cache
	rdb := cache.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Warn("redis not available", "error", err)
	} else {
		ttsCache = cache.NewCache(rdb, "kidspeak:tts:")
		checks["redis"] = ttsCache
	}

	gateway := llm.NewGateway(cfg.LLM)
	if _, err := gateway.Provider(cfg.Scoring.Provider); err != nil {
		slog.Warn("scoring provider not configured, feedback will use fallbacks", "provider", cfg.Scoring.Provider)
	}

	guard := guardrails.DefaultPipeline()
	genOpts := []feedback.Option{
		feedback.WithModel(cfg.Scoring.Provider, cfg.Scoring.Model),
		feedback.WithTimeout(cfg.Scoring.Timeout),
		feedback.WithGuardrails(guard),
		feedback.WithMetrics(metrics),
	}
	transcriber, err := newTranscriber(cfg.STT)
	if err != nil {
		return err
	}
	if transcriber != nil {
		slog.Info("transcribing audio before scoring", "backend", transcriber.Name())
		genOpts = append(genOpts, feedback.WithTranscriber(transcriber))
	}
	gen := feedback.NewGenerator(gateway, genOpts...)

	svcOpts := []pronunciation.Option{
		pronunciation.WithMetrics(metrics),
		pronunciation.WithDefaultTemperature(cfg.Scoring.DefaultTemperature),
	}
	deps := api.Deps{
		Languages:      languages,
		Gateway:        gateway,
		Metrics:        metrics,
		MetricsHandler: observe.Handler(),
		Checks:         checks,
	}
	if pool != nil {
		deps.Progress = attempts.NewStore(pool)
		if ttsCache != nil {
			recorder := queue.NewClient(cfg.Redis)
			defer recorder.Close()
			svcOpts = append(svcOpts, pronunciation.WithRecorder(recorder))
		}
	}
	deps.Scorer = pronunciation.NewService(gen, languages, svcOpts...)

	if synth := newSynthesizer(cfg.TTS); synth != nil {
		speechOpts := []speech.Option{
			speech.WithGuardrails(guard),
			speech.WithMetrics(metrics),
		}
		if ttsCache != nil {
			speechOpts = append(speechOpts, speech.WithCache(ttsCache, cfg.TTS.CacheTTL))
		}
		svc := speech.NewService(synth, languages, speechOpts...)
		slog.Info("text-to-speech enabled", "backend", svc.Backend(), "cached", ttsCache != nil)
		deps.Speech = svc
	} else {
		slog.Warn("text-to-speech not configured", "backend", cfg.TTS.Backend)
	}

	router := api.NewRouter(cfg, deps)
	defer router.Close()

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router.Setup(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("starting server", "addr", srv.Addr, "version", version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func newTranscriber(cfg config.STTConfig) (*speech.WhisperTranscriber, error) {
	switch cfg.Backend {
	case "":
		return nil, nil
	case "openai":
		return speech.NewWhisperTranscriber(speech.OpenAIConfig{
			APIKey:  cfg.OpenAIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.OpenAIModel,
		}), nil
	case "local":
		return speech.NewLocalWhisperTranscriber(cfg.LocalBaseURL), nil
	default:
		return nil, fmt.Errorf("unknown STT_BACKEND %q", cfg.Backend)
	}
}

func newSynthesizer(cfg config.TTSConfig) speech.Synthesizer {
	switch cfg.Backend {
	case "openai":
		if cfg.OpenAIKey == "" {
			return nil
		}
		return speech.NewOpenAISynthesizer(speech.OpenAIConfig{
			APIKey:  cfg.OpenAIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.OpenAIModel,
		})
	case "local":
		if cfg.LocalModel == "" {
			return nil
		}
		return speech.NewPiperSynthesizer(speech.PiperConfig{
			BinPath:   cfg.LocalBinPath,
			ModelPath: cfg.LocalModel,
		})
	default:
		return nil
	}
}
