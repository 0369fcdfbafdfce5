package scoring

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/nikhilbhutani/kidspeak/internal/language"
)

// Combining marks are kept: Devanagari vowel signs and viramas are
// letters in all but name.
var (
	reNonWord = regexp.MustCompile(`[^\p{L}\p{M}\p{N}_\s\p{Z}]+`)
	reSpace   = regexp.MustCompile(`[\s\p{Z}]+`)
)

// Normalize canonicalizes spoken or typed text for comparison: NFC,
// lowercase, the profile's tone/diacritic rules, then punctuation
// stripping and whitespace folding.
func Normalize(text string, p language.Profile) string {
	s := strings.ToLower(strings.TrimSpace(norm.NFC.String(text)))
	if s == "" {
		return ""
	}
	s = p.Rules.Apply(s)
	s = reNonWord.ReplaceAllString(s, "")
	s = reSpace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
