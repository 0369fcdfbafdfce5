// Package language holds the per-language profiles used across the service:
// normalization rules for answer comparison, the pronunciation tip shown to
// learners, and the default text-to-speech voice.
package language

import (
	"sort"
	"strings"
)

// Script is the writing system a language is practised in.
type Script string

const (
	ScriptLatin      Script = "latin"
	ScriptCyrillic   Script = "cyrillic"
	ScriptArabic     Script = "arabic"
	ScriptHan        Script = "han"
	ScriptKana       Script = "kana"
	ScriptHangul     Script = "hangul"
	ScriptDevanagari Script = "devanagari"
)

// RuneRange is an inclusive range of code points.
type RuneRange struct {
	Lo rune
	Hi rune
}

func (r RuneRange) Contains(c rune) bool { return c >= r.Lo && c <= r.Hi }

// NormalizeRules are the language-specific steps applied before the generic
// punctuation and whitespace folding.
type NormalizeRules struct {
	Replace     map[rune]rune
	Strip       []rune
	StripRanges []RuneRange
}

// Empty reports whether the rules do nothing.
func (n NormalizeRules) Empty() bool {
	return len(n.Replace) == 0 && len(n.Strip) == 0 && len(n.StripRanges) == 0
}

// Apply runs the replacement table and the strip rules over s.
func (n NormalizeRules) Apply(s string) string {
	if n.Empty() {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s))
	for _, c := range s {
		if r, ok := n.Replace[c]; ok {
			sb.WriteRune(r)
			continue
		}
		if n.strips(c) {
			continue
		}
		sb.WriteRune(c)
	}
	return sb.String()
}

func (n NormalizeRules) strips(c rune) bool {
	for _, s := range n.Strip {
		if s == c {
			return true
		}
	}
	for _, rg := range n.StripRanges {
		if rg.Contains(c) {
			return true
		}
	}
	return false
}

// Tip is a static pronunciation hint offered alongside scored feedback.
type Tip struct {
	Type        string `json:"type" yaml:"type"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
}

// Profile describes one practice language.
type Profile struct {
	Code         string
	Name         string
	Script       Script
	DefaultVoice string
	Tip          *Tip
	Rules        NormalizeRules
}

// Registry maps language codes to profiles. It is read-only after
// construction and safe for concurrent use.
type Registry struct {
	profiles map[string]Profile
}

// NewRegistry builds a registry from the given profiles. Later profiles with
// the same code replace earlier ones.
func NewRegistry(profiles ...Profile) *Registry {
	r := &Registry{profiles: make(map[string]Profile, len(profiles))}
	for _, p := range profiles {
		p.Code = Canonical(p.Code)
		r.profiles[p.Code] = p
	}
	return r
}

// Canonical reduces a language tag to its lowercase primary subtag:
// "zh-CN" and "ZH_cn" both become "zh".
func Canonical(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if i := strings.IndexAny(code, "-_"); i >= 0 {
		code = code[:i]
	}
	return code
}

// Lookup returns the profile for code. Unknown codes get a generic Latin
// profile carrying the canonical code and no language-specific rules.
func (r *Registry) Lookup(code string) Profile {
	c := Canonical(code)
	if p, ok := r.profiles[c]; ok {
		return p
	}
	return Profile{
		Code:         c,
		Name:         c,
		Script:       ScriptLatin,
		DefaultVoice: defaultVoice,
	}
}

// Known reports whether code has a registered profile.
func (r *Registry) Known(code string) bool {
	_, ok := r.profiles[Canonical(code)]
	return ok
}

// Profiles returns all registered profiles ordered by code.
func (r *Registry) Profiles() []Profile {
	out := make([]Profile, 0, len(r.profiles))
	for _, p := range r.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}
