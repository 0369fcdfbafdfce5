package feedback

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/nikhilbhutani/kidspeak/internal/llm"
	"github.com/nikhilbhutani/kidspeak/internal/scoring"
)

var (
	errMalformed = errors.New("malformed JSON")
	errInvalid   = errors.New("payload failed validation")
)

// payload mirrors both response schemas. Pointers distinguish a missing
// field from its zero value.
type payload struct {
	Score            *float64  `json:"score"`
	Transcript       *string   `json:"transcript"`
	Feedback         *string   `json:"feedback"`
	Issues           *[]string `json:"issues"`
	Tips             *[]string `json:"tips"`
	DetectedLanguage *string   `json:"detectedLanguage"`
	LanguageMatch    *bool     `json:"languageMatch"`
}

func decode(content string) (*payload, error) {
	var p payload
	if err := json.Unmarshal([]byte(llm.ExtractJSON(content)), &p); err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformed, err)
	}
	return &p, nil
}

// feedback checks the fields shared by both schemas.
func (p *payload) feedback() (scoring.Feedback, error) {
	var errs []error
	if p.Feedback == nil || strings.TrimSpace(*p.Feedback) == "" {
		errs = append(errs, errors.New("feedback is required"))
	}
	if p.LanguageMatch == nil {
		errs = append(errs, errors.New("languageMatch is required"))
	}
	if p.DetectedLanguage == nil || strings.TrimSpace(*p.DetectedLanguage) == "" {
		errs = append(errs, errors.New("detectedLanguage is required"))
	}
	if p.Issues == nil {
		errs = append(errs, errors.New("issues is required"))
	}
	if p.Tips == nil {
		errs = append(errs, errors.New("tips is required"))
	}
	if len(errs) > 0 {
		return scoring.Feedback{}, fmt.Errorf("%w: %w", errInvalid, errors.Join(errs...))
	}

	return scoring.Feedback{
		Feedback:         strings.TrimSpace(*p.Feedback),
		Issues:           cleanList(*p.Issues),
		Tips:             cleanList(*p.Tips),
		LanguageMatch:    *p.LanguageMatch,
		DetectedLanguage: strings.ToLower(strings.TrimSpace(*p.DetectedLanguage)),
	}, nil
}

// audio additionally checks score and transcript.
func (p *payload) audio() (scoring.Feedback, int, string, error) {
	fb, err := p.feedback()
	if err != nil {
		return fb, 0, "", err
	}
	if p.Score == nil {
		return fb, 0, "", fmt.Errorf("%w: score is required", errInvalid)
	}
	// Out-of-range scores are clamped rather than rejected.
	score := *p.Score
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return fb, 0, "", fmt.Errorf("%w: score %v is not a number", errInvalid, score)
	}
	if p.Transcript == nil {
		return fb, 0, "", fmt.Errorf("%w: transcript is required", errInvalid)
	}
	score = math.Max(0, math.Min(100, score))
	return fb, int(math.Round(score)), strings.TrimSpace(*p.Transcript), nil
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
