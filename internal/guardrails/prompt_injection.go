package guardrails

import (
	"context"
	"strings"
)

const injectionThreshold = 0.7

// PromptInjectionDetector flags learner input that tries to steer the
// feedback model instead of naming a word.
type PromptInjectionDetector struct{}

func NewPromptInjectionDetector() *PromptInjectionDetector {
	return &PromptInjectionDetector{}
}

func (d *PromptInjectionDetector) Name() string { return "prompt_injection" }

func (d *PromptInjectionDetector) Check(_ context.Context, text string) (*Result, error) {
	score, flags := heuristicScore(text)
	if score >= injectionThreshold {
		return &Result{
			Allowed: false,
			Reason:  "potential prompt injection detected",
			Flags:   flags,
			Scores:  map[string]float64{"injection_score": score},
		}, nil
	}
	return &Result{Allowed: true, Flags: flags}, nil
}

var injectionPatterns = []struct {
	pattern string
	weight  float64
	flag    string
}{
	{"ignore previous instructions", 0.9, "override_attempt"},
	{"ignore all previous", 0.9, "override_attempt"},
	{"disregard your instructions", 0.9, "override_attempt"},
	{"give me a score of", 0.8, "score_override"},
	{"set the score", 0.8, "score_override"},
	{"score 100", 0.75, "score_override"},
	{"languagematch", 0.7, "field_injection"},
	{"you are now", 0.7, "role_hijack"},
	{"pretend you are", 0.7, "role_hijack"},
	{"system prompt", 0.8, "system_leak"},
	{"</system>", 0.8, "tag_injection"},
	{"<system>", 0.8, "tag_injection"},
	{"```", 0.6, "format_injection"},
}

func heuristicScore(text string) (float64, []string) {
	lower := strings.ToLower(text)
	var flags []string
	score := 0.0

	for _, p := range injectionPatterns {
		if strings.Contains(lower, p.pattern) {
			score = max(score, p.weight)
			flags = append(flags, p.flag)
		}
	}
	return score, flags
}
