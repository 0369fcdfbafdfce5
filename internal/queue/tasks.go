package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/nikhilbhutani/kidspeak/internal/attempts"
)

const (
	TypeAttemptRecord = "attempt:record"
)

const (
	attemptMaxRetry = 5
	attemptTimeout  = 30 * time.Second
	// attemptRetention keeps completed task IDs around so a re-enqueue of
	// the same attempt is rejected as a duplicate.
	attemptRetention = 24 * time.Hour
)

// NewAttemptRecordTask wraps a scored attempt in an attempt:record task.
// The attempt ID doubles as the task ID.
func NewAttemptRecordTask(a attempts.Attempt) (*asynq.Task, error) {
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return asynq.NewTask(TypeAttemptRecord, data,
		asynq.TaskID(a.ID.String()),
		asynq.MaxRetry(attemptMaxRetry),
		asynq.Timeout(attemptTimeout),
		asynq.Retention(attemptRetention),
	), nil
}

// ParseAttemptRecord decodes an attempt:record payload.
func ParseAttemptRecord(t *asynq.Task) (attempts.Attempt, error) {
	var a attempts.Attempt
	if err := json.Unmarshal(t.Payload(), &a); err != nil {
		return a, fmt.Errorf("unmarshal payload: %w", err)
	}
	return a, nil
}
