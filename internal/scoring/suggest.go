package scoring

import "github.com/nikhilbhutani/kidspeak/internal/language"

// Suggestions derives follow-up guidance from a result: exactly one
// score-tier suggestion, plus the language's pronunciation tip when the
// profile has one.
func Suggestions(r Result, p language.Profile) []Suggestion {
	var out []Suggestion
	switch {
	case r.Score < 60:
		out = append(out, Suggestion{
			Type:        "practice",
			Title:       "Focus on the basics",
			Description: "Listen to the word again, then say it slowly one sound at a time.",
		})
	case r.Score < CorrectThreshold:
		out = append(out, Suggestion{
			Type:        "refinement",
			Title:       "Almost there",
			Description: "You have the main sounds. Practice the tricky part a few more times.",
		})
	default:
		out = append(out, Suggestion{
			Type:        "mastery",
			Title:       "Ready for more",
			Description: "Great pronunciation! Try using the word in a short sentence.",
		})
	}

	if p.Tip != nil {
		out = append(out, Suggestion{
			Type:        p.Tip.Type,
			Title:       p.Tip.Title,
			Description: p.Tip.Description,
		})
	}
	return out
}
