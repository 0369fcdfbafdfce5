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

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/nikhilbhutani/kidspeak/internal/attempts"
	"github.com/nikhilbhutani/kidspeak/internal/config"
	"github.com/nikhilbhutani/kidspeak/internal/database"
	"github.com/nikhilbhutani/kidspeak/internal/observe"
	"github.com/nikhilbhutani/kidspeak/internal/queue"
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		slog.Error("worker error", "error", err)
		os.Exit(1)
	}
	slog.Info("worker stopped")
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if cfg.Database.URL == "" {
		return errors.New("DATABASE_URL is required")
	}
	pool, err := database.NewPool(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()
	if err := database.RunMigrations(ctx, pool, database.Migrations()); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	shutdownMetrics, err := observe.InitProvider(ctx, "kidspeak-worker", version)
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	defer shutdownMetrics(context.Background())

	srv := asynq.NewServer(
		queue.RedisOpt(cfg.Redis),
		asynq.Config{
			Concurrency:  cfg.Worker.Concurrency,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				retried, _ := asynq.GetRetryCount(ctx)
				maxRetry, _ := asynq.GetMaxRetry(ctx)
				logger.Error("task failed", "type", task.Type(), "retry", retried, "max_retry", maxRetry, "error", err)
			}),
		},
	)

	registry := queue.NewHandlersRegistry()
	registry.Register(queue.TypeAttemptRecord,
		queue.NewAttemptWorker(attempts.NewStore(pool), observe.DefaultMetrics(), logger))

	slog.Info("starting worker", "concurrency", cfg.Worker.Concurrency, "version", version)
	if err := srv.Start(registry.Mux()); err != nil {
		return fmt.Errorf("start worker: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	if cfg.Worker.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", observe.Handler())
		metricsSrv := &http.Server{
			Addr:              cfg.Worker.MetricsAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return metricsSrv.Shutdown(shutdownCtx)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down worker")
		srv.Shutdown()
		return nil
	})
	return g.Wait()
}
