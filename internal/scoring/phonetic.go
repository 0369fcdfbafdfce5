package scoring

import (
	"fmt"
	"strings"

	"github.com/antzucaro/matchr"

	"github.com/nikhilbhutani/kidspeak/internal/language"
)

const soundsAlikeThreshold = 0.85

// PhoneticAnalysis compares what was heard with the target by sound rather
// than spelling, using Double Metaphone codes and Jaro-Winkler similarity.
// It only applies to Latin-script languages and returns "" otherwise or when
// either side is empty.
func PhoneticAnalysis(heard, target string, p language.Profile) string {
	if p.Script != language.ScriptLatin {
		return ""
	}
	h, t := Normalize(heard, p), Normalize(target, p)
	if h == "" || t == "" {
		return ""
	}
	if h == t {
		return fmt.Sprintf("Heard %q, which matches the target exactly.", heard)
	}

	jw := matchr.JaroWinkler(h, t, false)
	if codesOverlap(h, t) {
		if jw >= soundsAlikeThreshold {
			return fmt.Sprintf("Heard %q, which sounds like %q (similarity %.2f).", heard, target, jw)
		}
		return fmt.Sprintf("Heard %q, which sounds close to %q but some sounds differ.", heard, target)
	}
	return fmt.Sprintf("Heard %q, which sounds different from %q.", heard, target)
}

// codesOverlap reports whether the Double Metaphone encodings of the joined
// words share a primary or secondary code.
func codesOverlap(a, b string) bool {
	ap, as := matchr.DoubleMetaphone(strings.ReplaceAll(a, " ", ""))
	bp, bs := matchr.DoubleMetaphone(strings.ReplaceAll(b, " ", ""))
	for _, x := range []string{ap, as} {
		if x == "" {
			continue
		}
		if x == bp || x == bs {
			return true
		}
	}
	return false
}
