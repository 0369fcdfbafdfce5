package queue_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/nikhilbhutani/kidspeak/internal/attempts"
	"github.com/nikhilbhutani/kidspeak/internal/observe"
	"github.com/nikhilbhutani/kidspeak/internal/queue"
)

type fakeStore struct {
	mu       sync.Mutex
	seen     map[uuid.UUID]bool
	recorded []attempts.Attempt
	err      error
}

func (f *fakeStore) Record(_ context.Context, a attempts.Attempt) (attempts.Attempt, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return a, false, f.err
	}
	if f.seen == nil {
		f.seen = map[uuid.UUID]bool{}
	}
	if f.seen[a.ID] {
		return a, false, nil
	}
	f.seen[a.ID] = true
	a.Points = attempts.Points(a.Score, a.IsCorrect, false)
	f.recorded = append(f.recorded, a)
	return a, true, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleAttempt() attempts.Attempt {
	return attempts.Attempt{
		ID:             uuid.New(),
		UserID:         uuid.New(),
		Mode:           attempts.ModeText,
		Language:       "es",
		TargetWord:     "hola",
		Score:          88,
		IsCorrect:      true,
		Difficulty:     "medium",
		FeedbackSource: "model",
	}
}

func TestAttemptRecordTask_RoundTrip(t *testing.T) {
	t.Parallel()

	a := sampleAttempt()
	task, err := queue.NewAttemptRecordTask(a)
	if err != nil {
		t.Fatalf("NewAttemptRecordTask: %v", err)
	}
	if task.Type() != queue.TypeAttemptRecord {
		t.Errorf("type = %q", task.Type())
	}

	got, err := queue.ParseAttemptRecord(task)
	if err != nil {
		t.Fatalf("ParseAttemptRecord: %v", err)
	}
	if got.ID != a.ID || got.UserID != a.UserID || got.TargetWord != "hola" || got.Score != 88 || !got.IsCorrect {
		t.Errorf("decoded = %+v, want %+v", got, a)
	}
}

func TestAttemptWorker_Records(t *testing.T) {
	t.Parallel()

	m, err := observe.NewMetrics(noop.NewMeterProvider())
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	store := &fakeStore{}
	w := queue.NewAttemptWorker(store, m, discardLogger())

	task, _ := queue.NewAttemptRecordTask(sampleAttempt())
	if err := w.ProcessTask(context.Background(), task); err != nil {
		t.Fatalf("ProcessTask: %v", err)
	}
	// A redelivered task is acknowledged without a second insert.
	if err := w.ProcessTask(context.Background(), task); err != nil {
		t.Fatalf("ProcessTask (redelivery): %v", err)
	}
	if len(store.recorded) != 1 {
		t.Errorf("recorded %d attempts, want 1", len(store.recorded))
	}
}

func TestAttemptWorker_InvalidPayloadSkipsRetry(t *testing.T) {
	t.Parallel()

	noUser := sampleAttempt()
	noUser.UserID = uuid.Nil
	badMode := sampleAttempt()
	badMode.Mode = "video"
	badScore := sampleAttempt()
	badScore.Score = 140

	w := queue.NewAttemptWorker(&fakeStore{}, nil, discardLogger())

	tests := []struct {
		name string
		task *asynq.Task
	}{
		{"malformed json", asynq.NewTask(queue.TypeAttemptRecord, []byte("{not json"))},
		{"missing user", mustTask(t, noUser)},
		{"unknown mode", mustTask(t, badMode)},
		{"score out of range", mustTask(t, badScore)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := w.ProcessTask(context.Background(), tt.task)
			if !errors.Is(err, asynq.SkipRetry) {
				t.Errorf("err = %v, want SkipRetry", err)
			}
		})
	}
}

func TestAttemptWorker_StoreErrorRetries(t *testing.T) {
	t.Parallel()

	storeErr := errors.New("connection refused")
	w := queue.NewAttemptWorker(&fakeStore{err: storeErr}, nil, discardLogger())

	err := w.ProcessTask(context.Background(), mustTask(t, sampleAttempt()))
	if !errors.Is(err, storeErr) {
		t.Errorf("err = %v, want wrapped store error", err)
	}
	if errors.Is(err, asynq.SkipRetry) {
		t.Error("store errors must be retried")
	}
}

func TestHandlersRegistry_Routes(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	reg := queue.NewHandlersRegistry()
	reg.Register(queue.TypeAttemptRecord, queue.NewAttemptWorker(store, nil, discardLogger()))

	if err := reg.Mux().ProcessTask(context.Background(), mustTask(t, sampleAttempt())); err != nil {
		t.Fatalf("ProcessTask: %v", err)
	}
	if len(store.recorded) != 1 {
		t.Errorf("recorded %d attempts, want 1", len(store.recorded))
	}
}

func mustTask(t *testing.T, a attempts.Attempt) *asynq.Task {
	t.Helper()
	task, err := queue.NewAttemptRecordTask(a)
	if err != nil {
		t.Fatalf("NewAttemptRecordTask: %v", err)
	}
	return task
}
