// Package attempts persists scored pronunciation attempts, credits points
// for them and summarizes a learner's progress.
package attempts

import (
	"time"

	"github.com/google/uuid"

	"github.com/nikhilbhutani/kidspeak/internal/scoring"
)

const (
	ModeAudio = "audio"
	ModeText  = "text"
)

// Attempt is one scored attempt by a signed-in learner.
type Attempt struct {
	ID               uuid.UUID `json:"id"`
	UserID           uuid.UUID `json:"user_id"`
	Mode             string    `json:"mode"`
	Language         string    `json:"language"`
	TargetWord       string    `json:"target_word"`
	Score            int       `json:"score"`
	IsCorrect        bool      `json:"is_correct"`
	Difficulty       string    `json:"difficulty"`
	LanguageMismatch bool      `json:"language_mismatch"`
	FeedbackSource   string    `json:"feedback_source"`
	Points           int       `json:"points"`
	CreatedAt        time.Time `json:"created_at"`
}

// Progress summarizes a learner's attempts in one language, or in all
// languages when Language is empty.
type Progress struct {
	Language              string             `json:"language,omitempty"`
	TotalAttempts         int                `json:"totalAttempts"`
	CorrectAttempts       int                `json:"correctAttempts"`
	TotalPoints           int64              `json:"totalPoints"`
	RecentAverage         float64            `json:"recentAverage"`
	CurrentDifficulty     scoring.Difficulty `json:"currentDifficulty"`
	RecommendedDifficulty scoring.Difficulty `json:"recommendedDifficulty"`
}

// Recent is the slice of an attempt used for difficulty recommendation.
type Recent struct {
	Score      int
	Difficulty string
}
