package scoring

import (
	"math"
	"math/rand/v2"
)

const (
	// CorrectThreshold is the lowest score judged correct.
	CorrectThreshold = 80
	// MismatchCap is the highest score allowed when the attempt was in the
	// wrong language.
	MismatchCap = 20

	humanizeAbove  = 0.8
	humanizeFloor  = 60
	humanizeMaxCut = 20

	unclearMin  = 10
	unclearSpan = 30
)

// Rand is the randomness used by the score perturbation rules.
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// DefaultRand draws from the process-wide generator and is safe for
// concurrent use.
func DefaultRand() Rand { return globalRand{} }

// Reconcile merges a raw score with the generator's feedback.
func Reconcile(raw int, fb Feedback) Result {
	score := clamp(raw, 0, 100)
	if !fb.LanguageMatch {
		score = min(score, MismatchCap)
	}
	return Result{
		Score:            score,
		Feedback:         fb.Feedback,
		SpecificIssues:   nonNil(fb.Issues),
		Tips:             nonNil(fb.Tips),
		IsCorrect:        fb.LanguageMatch && score >= CorrectThreshold,
		LanguageMismatch: !fb.LanguageMatch,
		DetectedLanguage: fb.DetectedLanguage,
	}
}

// ReconcileUnclear is Reconcile for an unclear or empty transcript: the
// attempt is never judged correct.
func ReconcileUnclear(raw int, fb Feedback) Result {
	res := Reconcile(raw, fb)
	res.IsCorrect = false
	return res
}

// TextScore converts a similarity into a preliminary 0-100 score. Very
// high similarities lose a random 1-20 points, never dropping below 60, so
// an exact typed match does not read as a flawless spoken one.
func TextScore(similarity float64, rng Rand) int {
	score := int(math.Round(similarity * 100))
	if similarity > humanizeAbove {
		score = max(humanizeFloor, score-(1+rng.IntN(humanizeMaxCut)))
	}
	return clamp(score, 0, 100)
}

// UnclearScore returns a score in [10,40) for an unclear attempt.
func UnclearScore(rng Rand) int {
	return unclearMin + rng.IntN(unclearSpan)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
