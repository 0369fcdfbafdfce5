package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/nikhilbhutani/kidspeak/internal/attempts"
	"github.com/nikhilbhutani/kidspeak/internal/observe"
)

type HandlersRegistry struct {
	mux *asynq.ServeMux
}

func NewHandlersRegistry() *HandlersRegistry {
	return &HandlersRegistry{
		mux: asynq.NewServeMux(),
	}
}

func (r *HandlersRegistry) Register(taskType string, handler asynq.Handler) {
	r.mux.Handle(taskType, handler)
}

func (r *HandlersRegistry) Mux() *asynq.ServeMux {
	return r.mux
}

// AttemptStore persists attempts. The bool reports whether the attempt was
// new.
type AttemptStore interface {
	Record(ctx context.Context, a attempts.Attempt) (attempts.Attempt, bool, error)
}

// AttemptWorker handles attempt:record tasks.
type AttemptWorker struct {
	store   AttemptStore
	metrics *observe.Metrics
	logger  *slog.Logger
}

// NewAttemptWorker returns a worker writing to store. metrics may be nil.
func NewAttemptWorker(store AttemptStore, metrics *observe.Metrics, logger *slog.Logger) *AttemptWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &AttemptWorker{store: store, metrics: metrics, logger: logger}
}

func (w *AttemptWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	a, err := ParseAttemptRecord(t)
	if err != nil {
		w.record(ctx, "invalid")
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}
	if err := validateAttempt(a); err != nil {
		w.record(ctx, "invalid")
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}

	saved, inserted, err := w.store.Record(ctx, a)
	if err != nil {
		w.record(ctx, "error")
		return fmt.Errorf("record attempt %s: %w", a.ID, err)
	}
	if !inserted {
		w.record(ctx, "duplicate")
		w.logger.Info("attempt already recorded", "attempt_id", a.ID)
		return nil
	}

	w.record(ctx, "recorded")
	w.logger.Info("attempt recorded",
		"attempt_id", saved.ID,
		"user_id", saved.UserID,
		"language", saved.Language,
		"score", saved.Score,
		"points", saved.Points,
	)
	return nil
}

func (w *AttemptWorker) record(ctx context.Context, status string) {
	if w.metrics != nil {
		w.metrics.RecordAttempt(ctx, status)
	}
}

func validateAttempt(a attempts.Attempt) error {
	var errs []error
	if a.ID == uuid.Nil {
		errs = append(errs, errors.New("missing attempt id"))
	}
	if a.UserID == uuid.Nil {
		errs = append(errs, errors.New("missing user id"))
	}
	if a.Mode != attempts.ModeAudio && a.Mode != attempts.ModeText {
		errs = append(errs, fmt.Errorf("unknown mode %q", a.Mode))
	}
	if a.Score < 0 || a.Score > 100 {
		errs = append(errs, fmt.Errorf("score %d out of range", a.Score))
	}
	return errors.Join(errs...)
}
