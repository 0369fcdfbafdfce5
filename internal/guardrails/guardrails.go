// Package guardrails screens text that crosses the model boundary: learner
// input on its way into a prompt or the speech synthesizer, and model
// feedback on its way back to a child.
package guardrails

import (
	"context"
	"fmt"
	"unicode/utf8"
)

// Result holds the outcome of a safety check.
type Result struct {
	Allowed bool               `json:"allowed"`
	Flags   []string           `json:"flags,omitempty"`
	Scores  map[string]float64 `json:"scores,omitempty"`
	Reason  string             `json:"reason,omitempty"`
}

// Guardrail is a check that can be applied to input or output.
type Guardrail interface {
	Check(ctx context.Context, text string) (*Result, error)
	Name() string
}

// Pipeline chains input and output guardrails.
type Pipeline struct {
	inputGuardrails  []Guardrail
	outputGuardrails []Guardrail
}

func NewPipeline() *Pipeline {
	return &Pipeline{}
}

func (p *Pipeline) AddInputGuardrail(g Guardrail) {
	p.inputGuardrails = append(p.inputGuardrails, g)
}

func (p *Pipeline) AddOutputGuardrail(g Guardrail) {
	p.outputGuardrails = append(p.outputGuardrails, g)
}

// CheckInput runs the input guardrails against learner-supplied text.
func (p *Pipeline) CheckInput(ctx context.Context, text string) (*Result, error) {
	return p.runChecks(ctx, text, p.inputGuardrails)
}

// CheckOutput runs the output guardrails against model-generated text.
func (p *Pipeline) CheckOutput(ctx context.Context, text string) (*Result, error) {
	return p.runChecks(ctx, text, p.outputGuardrails)
}

func (p *Pipeline) runChecks(ctx context.Context, text string, guards []Guardrail) (*Result, error) {
	combined := &Result{
		Allowed: true,
		Scores:  make(map[string]float64),
	}

	for _, g := range guards {
		result, err := g.Check(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("guardrail %s: %w", g.Name(), err)
		}
		if !result.Allowed && combined.Allowed {
			combined.Allowed = false
			combined.Reason = fmt.Sprintf("blocked by %s: %s", g.Name(), result.Reason)
		}
		combined.Flags = append(combined.Flags, result.Flags...)
		for k, v := range result.Scores {
			combined.Scores[k] = v
		}
	}

	return combined, nil
}

// DefaultPipeline screens learner input for prompt injection and length and
// screens model output for language unsuitable for children.
func DefaultPipeline() *Pipeline {
	p := NewPipeline()

	p.AddInputGuardrail(NewPromptInjectionDetector())
	p.AddInputGuardrail(NewInputLengthGuard(500))

	p.AddOutputGuardrail(NewChildSafetyFilter())

	return p
}

// InputLengthGuard rejects inputs longer than a rune limit.
type InputLengthGuard struct {
	maxLength int
}

func NewInputLengthGuard(maxLen int) *InputLengthGuard {
	return &InputLengthGuard{maxLength: maxLen}
}

func (g *InputLengthGuard) Name() string { return "input_length" }

func (g *InputLengthGuard) Check(_ context.Context, text string) (*Result, error) {
	if utf8.RuneCountInString(text) > g.maxLength {
		return &Result{
			Allowed: false,
			Reason:  fmt.Sprintf("input exceeds %d characters", g.maxLength),
			Flags:   []string{"input_too_long"},
		}, nil
	}
	return &Result{Allowed: true}, nil
}
