package scoring

import (
	"fmt"
	"strings"
)

// Band is one score range of a policy, highest first.
type Band struct {
	Min   int
	Max   int
	Label string
}

// Policy is the scoring guidance handed to the feedback model for one
// difficulty. It is not enforced locally beyond clamping.
type Policy struct {
	Difficulty  Difficulty
	Instruction string
	Bands       []Band
}

var policies = map[Difficulty]Policy{
	Easy: {
		Difficulty:  Easy,
		Instruction: "Be maximally encouraging. This learner is a beginner: reward any recognizable attempt generously.",
		Bands: []Band{
			{85, 100, "any recognizable attempt at the target"},
			{70, 84, "partially recognizable, main sounds present"},
			{50, 69, "some sounds correct"},
			{30, 49, "attempted but mostly unclear"},
			{15, 29, "very unclear"},
			{0, 14, "wrong word or wrong language"},
		},
	},
	Medium: {
		Difficulty:  Medium,
		Instruction: "Score with standard expectations for a young learner. Be kind but honest.",
		Bands: []Band{
			{90, 100, "perfect or near-perfect pronunciation"},
			{80, 89, "good, minor issues"},
			{70, 79, "understandable with noticeable errors"},
			{50, 69, "several errors, partly understandable"},
			{20, 49, "hard to understand"},
			{0, 19, "wrong word or wrong language"},
		},
	},
	Hard: {
		Difficulty:  Hard,
		Instruction: "Be strict. Only near-native pronunciation earns top scores.",
		Bands: []Band{
			{95, 100, "native-level pronunciation"},
			{85, 94, "very good, slight accent"},
			{70, 84, "clear but clearly accented"},
			{50, 69, "noticeable pronunciation errors"},
			{30, 49, "multiple errors"},
			{0, 29, "poor, or wrong word or language"},
		},
	},
}

// BandsFor returns the policy for d; unknown difficulties get Medium.
func BandsFor(d Difficulty) Policy {
	if p, ok := policies[d]; ok {
		return p
	}
	return policies[Medium]
}

// PromptText renders the policy as instructions for the feedback model.
func (p Policy) PromptText() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Difficulty: %s. %s\nScoring bands:\n", p.Difficulty, p.Instruction)
	for _, b := range p.Bands {
		fmt.Fprintf(&sb, "- %d-%d: %s\n", b.Min, b.Max, b.Label)
	}
	return strings.TrimRight(sb.String(), "\n")
}
