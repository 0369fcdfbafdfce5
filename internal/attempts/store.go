package attempts

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store persists attempts in Postgres.
type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Record inserts the attempt and credits its points in one transaction.
// Re-recording an attempt ID is a no-op, so queue retries do not double
// count; the returned bool reports whether a row was inserted.
func (s *Store) Record(ctx context.Context, a Attempt) (Attempt, bool, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return a, false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// Serialize concurrent attempts by the same learner so streaks are
	// computed against a stable history.
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, a.UserID.String()); err != nil {
		return a, false, fmt.Errorf("lock user: %w", err)
	}

	previous, err := recentCorrectness(ctx, tx, a.UserID, a.Language, StreakLength-1)
	if err != nil {
		return a, false, err
	}
	a.Points = Points(a.Score, a.IsCorrect, IsStreak(a.IsCorrect, previous))

	err = tx.QueryRow(ctx,
		`INSERT INTO pronunciation_attempts
		   (id, user_id, mode, language, target_word, score, is_correct, difficulty,
		    language_mismatch, feedback_source, points)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 ON CONFLICT (id) DO NOTHING
		 RETURNING created_at`,
		a.ID, a.UserID, a.Mode, a.Language, a.TargetWord, a.Score, a.IsCorrect, a.Difficulty,
		a.LanguageMismatch, a.FeedbackSource, a.Points,
	).Scan(&a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return a, false, nil
	}
	if err != nil {
		return a, false, fmt.Errorf("insert attempt: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO user_points (user_id, total_points) VALUES ($1, $2)
		 ON CONFLICT (user_id) DO UPDATE
		   SET total_points = user_points.total_points + EXCLUDED.total_points, updated_at = now()`,
		a.UserID, a.Points,
	)
	if err != nil {
		return a, false, fmt.Errorf("credit points: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return a, false, fmt.Errorf("commit attempt: %w", err)
	}
	return a, true, nil
}

func recentCorrectness(ctx context.Context, tx pgx.Tx, userID uuid.UUID, language string, n int) ([]bool, error) {
	rows, err := tx.Query(ctx,
		`SELECT is_correct FROM pronunciation_attempts
		 WHERE user_id = $1 AND language = $2
		 ORDER BY created_at DESC LIMIT $3`,
		userID, language, n,
	)
	if err != nil {
		return nil, fmt.Errorf("query recent attempts: %w", err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowTo[bool])
	if err != nil {
		return nil, fmt.Errorf("scan recent attempts: %w", err)
	}
	return out, nil
}

// Progress summarizes a learner's attempts. An empty language covers all
// languages.
func (s *Store) Progress(ctx context.Context, userID uuid.UUID, language string) (Progress, error) {
	var total, correct int
	var points int64
	err := s.db.QueryRow(ctx,
		`SELECT count(*), count(*) FILTER (WHERE is_correct), COALESCE(sum(points), 0)
		 FROM pronunciation_attempts
		 WHERE user_id = $1 AND ($2 = '' OR language = $2)`,
		userID, language,
	).Scan(&total, &correct, &points)
	if err != nil {
		return Progress{}, fmt.Errorf("aggregate attempts: %w", err)
	}

	rows, err := s.db.Query(ctx,
		`SELECT score, difficulty FROM pronunciation_attempts
		 WHERE user_id = $1 AND ($2 = '' OR language = $2)
		 ORDER BY created_at DESC LIMIT $3`,
		userID, language, RecentWindow,
	)
	if err != nil {
		return Progress{}, fmt.Errorf("query recent scores: %w", err)
	}
	recent, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Recent, error) {
		var r Recent
		err := row.Scan(&r.Score, &r.Difficulty)
		return r, err
	})
	if err != nil {
		return Progress{}, fmt.Errorf("scan recent scores: %w", err)
	}

	return Summarize(language, total, correct, points, recent), nil
}

// TotalPoints returns the learner's points across all languages.
func (s *Store) TotalPoints(ctx context.Context, userID uuid.UUID) (int64, error) {
	var total int64
	err := s.db.QueryRow(ctx, `SELECT total_points FROM user_points WHERE user_id = $1`, userID).Scan(&total)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("query points: %w", err)
	}
	return total, nil
}
