package attempts_test

import (
	"testing"

	"github.com/nikhilbhutani/kidspeak/internal/attempts"
	"github.com/nikhilbhutani/kidspeak/internal/scoring"
)

func TestPoints(t *testing.T) {
	t.Parallel()

	tests := []struct {
		score           int
		correct, streak bool
		want            int
	}{
		{0, false, false, 0},
		{45, false, false, 4},
		{45, false, true, 4}, // a streak needs a correct attempt
		{85, true, false, 13},
		{85, true, true, 23},
		{100, true, true, 25},
	}
	for _, tt := range tests {
		if got := attempts.Points(tt.score, tt.correct, tt.streak); got != tt.want {
			t.Errorf("Points(%d, %v, %v) = %d, want %d", tt.score, tt.correct, tt.streak, got, tt.want)
		}
	}
}

func TestIsStreak(t *testing.T) {
	t.Parallel()

	tests := []struct {
		correct  bool
		previous []bool
		want     bool
	}{
		{true, []bool{true, true}, true},
		{true, []bool{true, true, false}, true},
		{true, []bool{true, false}, false},
		{true, []bool{true}, false},
		{true, nil, false},
		{false, []bool{true, true}, false},
	}
	for _, tt := range tests {
		if got := attempts.IsStreak(tt.correct, tt.previous); got != tt.want {
			t.Errorf("IsStreak(%v, %v) = %v, want %v", tt.correct, tt.previous, got, tt.want)
		}
	}
}

func TestRecommendDifficulty(t *testing.T) {
	t.Parallel()

	tests := []struct {
		current scoring.Difficulty
		avg     float64
		count   int
		want    scoring.Difficulty
	}{
		{scoring.Easy, 90, 5, scoring.Medium},
		{scoring.Medium, 85, 10, scoring.Hard},
		{scoring.Hard, 99, 10, scoring.Hard},
		{scoring.Medium, 95, 4, scoring.Medium}, // too few attempts to step up
		{scoring.Hard, 49.9, 1, scoring.Medium},
		{scoring.Medium, 30, 3, scoring.Easy},
		{scoring.Easy, 10, 8, scoring.Easy},
		{scoring.Medium, 50, 8, scoring.Medium},
		{scoring.Medium, 84.9, 8, scoring.Medium},
		{scoring.Hard, 0, 0, scoring.Hard},
	}
	for _, tt := range tests {
		if got := attempts.RecommendDifficulty(tt.current, tt.avg, tt.count); got != tt.want {
			t.Errorf("RecommendDifficulty(%s, %v, %d) = %s, want %s", tt.current, tt.avg, tt.count, got, tt.want)
		}
	}
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	recent := []attempts.Recent{
		{Score: 90, Difficulty: "easy"},
		{Score: 95, Difficulty: "easy"},
		{Score: 88, Difficulty: "easy"},
		{Score: 92, Difficulty: "easy"},
		{Score: 85, Difficulty: "medium"},
	}
	got := attempts.Summarize("es", 12, 9, 140, recent)

	if got.TotalAttempts != 12 || got.CorrectAttempts != 9 || got.TotalPoints != 140 {
		t.Errorf("counts = %+v", got)
	}
	if got.RecentAverage != 90 {
		t.Errorf("RecentAverage = %v, want 90", got.RecentAverage)
	}
	if got.CurrentDifficulty != scoring.Easy || got.RecommendedDifficulty != scoring.Medium {
		t.Errorf("difficulty %s -> %s, want easy -> medium", got.CurrentDifficulty, got.RecommendedDifficulty)
	}
}

func TestSummarize_Empty(t *testing.T) {
	t.Parallel()

	got := attempts.Summarize("", 0, 0, 0, nil)
	if got.CurrentDifficulty != scoring.Medium || got.RecommendedDifficulty != scoring.Medium || got.RecentAverage != 0 {
		t.Errorf("empty summary = %+v", got)
	}
}

func TestSummarize_UsesRecentWindow(t *testing.T) {
	t.Parallel()

	var recent []attempts.Recent
	for range attempts.RecentWindow {
		recent = append(recent, attempts.Recent{Score: 20, Difficulty: "medium"})
	}
	recent = append(recent, attempts.Recent{Score: 100, Difficulty: "medium"})

	if got := attempts.Summarize("fr", 11, 1, 30, recent); got.RecentAverage != 20 {
		t.Errorf("RecentAverage = %v, want 20 (window of %d)", got.RecentAverage, attempts.RecentWindow)
	}
}
