package guardrails

import (
	"context"
	"strings"
	"unicode"
)

// ChildSafetyFilter blocks feedback that contains words or phrases not fit
// for a young learner. Matching is on whole words so "skill" does not trip
// "kill".
type ChildSafetyFilter struct {
	blockedCategories map[string][]string
}

func NewChildSafetyFilter() *ChildSafetyFilter {
	return &ChildSafetyFilter{
		blockedCategories: map[string][]string{
			"insult": {
				"stupid", "idiot", "dumb", "loser", "worthless",
				"pathetic", "useless", "shut up",
			},
			"violence": {
				"kill", "murder", "blood", "weapon", "gun",
			},
			"discouraging": {
				"give up", "you failed", "hopeless", "terrible at",
			},
		},
	}
}

func (f *ChildSafetyFilter) Name() string { return "child_safety" }

func (f *ChildSafetyFilter) Check(_ context.Context, text string) (*Result, error) {
	padded := " " + strings.Join(words(text), " ") + " "

	for category, phrases := range f.blockedCategories {
		for _, p := range phrases {
			if strings.Contains(padded, " "+p+" ") {
				return &Result{
					Allowed: false,
					Reason:  "unsuitable for children: " + category,
					Flags:   []string{"blocked_" + category},
					Scores:  map[string]float64{category: 1.0},
				}, nil
			}
		}
	}

	return &Result{Allowed: true}, nil
}

func words(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '\''
	})
}
