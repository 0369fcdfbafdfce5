package queue

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/nikhilbhutani/kidspeak/internal/attempts"
	"github.com/nikhilbhutani/kidspeak/internal/config"
)

// Client enqueues background tasks.
type Client struct {
	client *asynq.Client
}

func NewClient(cfg config.RedisConfig) *Client {
	return &Client{
		client: asynq.NewClient(RedisOpt(cfg)),
	}
}

// RedisOpt converts the Redis config for asynq clients and servers.
func RedisOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

func (c *Client) Close() error {
	return c.client.Close()
}

// Record enqueues an attempt for persistence, assigning it an ID first if
// it has none. Enqueueing an attempt whose task already exists is not an
// error.
func (c *Client) Record(ctx context.Context, a attempts.Attempt) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	task, err := NewAttemptRecordTask(a)
	if err != nil {
		return err
	}
	if _, err := c.client.EnqueueContext(ctx, task); err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			return nil
		}
		return fmt.Errorf("enqueue %s: %w", TypeAttemptRecord, err)
	}
	return nil
}
