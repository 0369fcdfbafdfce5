// Package scoring turns a learner's attempt at a target phrase into a 0-100
// score with feedback: text normalization, edit-distance similarity, the
// per-difficulty scoring bands, score reconciliation and follow-up
// suggestions. Everything here is pure; the model call lives in package
// feedback and the orchestration in package pronunciation.
package scoring

import "strings"

// Difficulty selects how strictly an attempt is scored.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// ParseDifficulty maps a request value onto a Difficulty. Empty input is
// Medium; unknown input reports false.
func ParseDifficulty(s string) (Difficulty, bool) {
	switch Difficulty(strings.ToLower(strings.TrimSpace(s))) {
	case "", Medium:
		return Medium, true
	case Easy:
		return Easy, true
	case Hard:
		return Hard, true
	default:
		return Medium, false
	}
}

// Feedback is the validated content returned by the feedback generator.
type Feedback struct {
	Feedback         string   `json:"feedback"`
	Issues           []string `json:"issues"`
	Tips             []string `json:"tips"`
	LanguageMatch    bool     `json:"languageMatch"`
	DetectedLanguage string   `json:"detectedLanguage"`
}

// Result is the final scored outcome of one attempt.
type Result struct {
	Score            int      `json:"score"`
	Feedback         string   `json:"feedback"`
	SpecificIssues   []string `json:"specificIssues"`
	Tips             []string `json:"tips"`
	IsCorrect        bool     `json:"isCorrect"`
	PhoneticAnalysis string   `json:"phoneticAnalysis,omitempty"`
	LanguageMismatch bool     `json:"languageMismatch"`
	DetectedLanguage string   `json:"detectedLanguage"`
	Transcript       string   `json:"transcript,omitempty"`
}

// Suggestion is a short piece of follow-up guidance.
type Suggestion struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
}
