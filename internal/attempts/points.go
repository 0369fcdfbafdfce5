package attempts

import "github.com/nikhilbhutani/kidspeak/internal/scoring"

const (
	correctBonus = 5
	streakBonus  = 10
	// StreakLength is the number of consecutive correct attempts, the
	// current one included, that earns the streak bonus.
	StreakLength = 3

	// RecentWindow is how many of the latest attempts feed the average.
	RecentWindow = 10

	stepUpAverage   = 85
	stepUpMinCount  = 5
	stepDownAverage = 50
)

// Points credits an attempt: a tenth of the score, plus a bonus for a
// correct answer, plus a streak bonus.
func Points(score int, correct, streak bool) int {
	p := score / 10
	if correct {
		p += correctBonus
		if streak {
			p += streakBonus
		}
	}
	return p
}

// IsStreak reports whether a correct attempt completes a streak, given the
// correctness of the preceding attempts newest first.
func IsStreak(correct bool, previous []bool) bool {
	if !correct || len(previous) < StreakLength-1 {
		return false
	}
	for _, ok := range previous[:StreakLength-1] {
		if !ok {
			return false
		}
	}
	return true
}

// RecommendDifficulty steps the difficulty up after consistently high
// scores and down after low ones.
func RecommendDifficulty(current scoring.Difficulty, average float64, count int) scoring.Difficulty {
	if count == 0 {
		return current
	}
	switch {
	case average >= stepUpAverage && count >= stepUpMinCount:
		return stepUp(current)
	case average < stepDownAverage:
		return stepDown(current)
	default:
		return current
	}
}

func stepUp(d scoring.Difficulty) scoring.Difficulty {
	switch d {
	case scoring.Easy:
		return scoring.Medium
	default:
		return scoring.Hard
	}
}

func stepDown(d scoring.Difficulty) scoring.Difficulty {
	switch d {
	case scoring.Hard:
		return scoring.Medium
	default:
		return scoring.Easy
	}
}

// Summarize builds a Progress from aggregate counts and the most recent
// attempts, newest first.
func Summarize(language string, total, correct int, points int64, recent []Recent) Progress {
	p := Progress{
		Language:          language,
		TotalAttempts:     total,
		CorrectAttempts:   correct,
		TotalPoints:       points,
		CurrentDifficulty: scoring.Medium,
	}
	if len(recent) > RecentWindow {
		recent = recent[:RecentWindow]
	}
	if len(recent) > 0 {
		if d, ok := scoring.ParseDifficulty(recent[0].Difficulty); ok {
			p.CurrentDifficulty = d
		}
		sum := 0
		for _, r := range recent {
			sum += r.Score
		}
		p.RecentAverage = float64(sum) / float64(len(recent))
	}
	p.RecommendedDifficulty = RecommendDifficulty(p.CurrentDifficulty, p.RecentAverage, len(recent))
	return p
}
