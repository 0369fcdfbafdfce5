// Package feedback asks a hosted model for child-friendly pronunciation
// feedback in a declared JSON shape, validates the reply, and degrades to a
// fixed fallback on any failure. Generator methods never return errors.
package feedback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/nikhilbhutani/kidspeak/internal/guardrails"
	"github.com/nikhilbhutani/kidspeak/internal/llm"
	"github.com/nikhilbhutani/kidspeak/internal/observe"
	"github.com/nikhilbhutani/kidspeak/internal/prompt"
	"github.com/nikhilbhutani/kidspeak/internal/scoring"
)

// Source tells whether feedback came from the model or the fallback.
type Source int

const (
	SourceModel Source = iota
	SourceFallback
)

func (s Source) String() string {
	if s == SourceModel {
		return "model"
	}
	return "fallback"
}

// Fallback reasons, also used as the metric attribute.
const (
	ReasonProviderError    = "provider_error"
	ReasonTimeout          = "timeout"
	ReasonAudioUnsupported = "audio_unsupported"
	ReasonMalformed        = "malformed_json"
	ReasonInvalid          = "invalid_payload"
	ReasonInputBlocked     = "input_blocked"
	ReasonOutputBlocked    = "output_blocked"
	ReasonPrompt           = "prompt_error"
	ReasonTranscription    = "transcription_error"
)

const (
	// AudioFallbackScore is the score reported when a recording could not
	// be analyzed.
	AudioFallbackScore = 25

	fallbackMessage = "Great effort! Let's try that one more time."
	fallbackTip     = "Speak clearly and close to the microphone"
)

// AudioInput is one recorded attempt.
type AudioInput struct {
	Audio          llm.Blob
	TargetWord     string
	Language       string // canonical code
	LanguageName   string
	PhoneticTarget string
	Difficulty     scoring.Difficulty
	Temperature    float64
}

// TextInput is one transcribed attempt. Similarity is in [0,1].
type TextInput struct {
	Transcript     string
	TargetWord     string
	Language       string
	LanguageName   string
	PhoneticTarget string
	Difficulty     scoring.Difficulty
	Temperature    float64
	Similarity     float64
	Unclear        bool
}

// AudioFeedback is the outcome of scoring a recording.
type AudioFeedback struct {
	scoring.Feedback
	Score      int
	Transcript string
	Source     Source
	Reason     string // set when Source is SourceFallback
}

// TextFeedback is the outcome of explaining a transcript.
type TextFeedback struct {
	scoring.Feedback
	Source Source
	Reason string
}

// Transcriber turns a recording into text for models that cannot listen.
type Transcriber interface {
	Transcribe(ctx context.Context, audio llm.Blob, language string) (string, error)
}

// Generator produces structured feedback through an LLM.
type Generator struct {
	llm      llm.StructuredCompleter
	stt      Transcriber
	provider string
	model    string
	timeout  time.Duration
	guard    *guardrails.Pipeline
	metrics  *observe.Metrics
	logger   *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithModel pins the provider and model; empty values use the gateway
// defaults.
func WithModel(provider, model string) Option {
	return func(g *Generator) { g.provider, g.model = provider, model }
}

// WithTimeout bounds each model call.
func WithTimeout(d time.Duration) Option {
	return func(g *Generator) { g.timeout = d }
}

// WithGuardrails screens learner input and model output.
func WithGuardrails(p *guardrails.Pipeline) Option {
	return func(g *Generator) { g.guard = p }
}

// WithTranscriber transcribes recordings before the model call and sends
// the transcript instead of the audio.
func WithTranscriber(t Transcriber) Option {
	return func(g *Generator) { g.stt = t }
}

// WithMetrics records call latency and fallbacks.
func WithMetrics(m *observe.Metrics) Option {
	return func(g *Generator) { g.metrics = m }
}

// WithLogger replaces slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) { g.logger = l }
}

func NewGenerator(c llm.StructuredCompleter, opts ...Option) *Generator {
	g := &Generator{
		llm:     c,
		timeout: 30 * time.Second,
		logger:  slog.Default(),
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// ScoreAudio sends the recording to the model and returns its validated
// score and feedback, or the fixed audio fallback.
func (g *Generator) ScoreAudio(ctx context.Context, in AudioInput) AudioFeedback {
	fallback := func(reason string, err error) AudioFeedback {
		g.recordFallback(ctx, "audio", reason, err)
		return AudioFeedback{
			Feedback: audioFallback(in.Language),
			Score:    AudioFallbackScore,
			Source:   SourceFallback,
			Reason:   reason,
		}
	}

	if reason, ok := g.screenInput(ctx, in.TargetWord, in.PhoneticTarget); !ok {
		return fallback(reason, nil)
	}

	system, user, err := prompt.AudioScoring.Execute(map[string]string{
		"language_name": in.LanguageName,
		"target_word":   in.TargetWord,
		"phonetic_line": phoneticLine(in.PhoneticTarget),
		"bands":         scoring.BandsFor(in.Difficulty).PromptText(),
	})
	if err != nil {
		return fallback(ReasonPrompt, err)
	}

	audio := in.Audio
	req := llm.StructuredRequest{
		System:      system,
		Prompt:      user,
		SchemaName:  "pronunciation_feedback",
		Schema:      AudioSchema,
		Audio:       &audio,
		Language:    in.Language,
		Temperature: in.Temperature,
	}
	if g.stt != nil {
		heard, err := g.transcribe(ctx, in.Audio, in.Language)
		if err != nil {
			return fallback(callReason(err), err)
		}
		req.Audio = nil
		req.Prompt += fmt.Sprintf(prompt.TranscriptNote, heard)
	}

	content, err := g.complete(ctx, req)
	if err != nil {
		return fallback(callReason(err), err)
	}

	p, err := decode(content)
	if err != nil {
		return fallback(ReasonMalformed, err)
	}
	fb, score, transcript, err := p.audio()
	if err != nil {
		return fallback(ReasonInvalid, err)
	}
	if !g.screenOutput(ctx, fb) {
		return fallback(ReasonOutputBlocked, nil)
	}

	return AudioFeedback{Feedback: fb, Score: score, Transcript: transcript, Source: SourceModel}
}

// ScoreText asks the model to explain a transcript against the target.
// Scoring of the transcript itself happens in package scoring.
func (g *Generator) ScoreText(ctx context.Context, in TextInput) TextFeedback {
	fallback := func(reason string, err error) TextFeedback {
		g.recordFallback(ctx, "text", reason, err)
		return TextFeedback{Feedback: textFallback(in.Language), Source: SourceFallback, Reason: reason}
	}

	if reason, ok := g.screenInput(ctx, in.TargetWord, in.PhoneticTarget, in.Transcript); !ok {
		return fallback(reason, nil)
	}

	clarity := ""
	if in.Unclear {
		clarity = prompt.UnclearNote
	}
	system, user, err := prompt.TextScoring.Execute(map[string]string{
		"language_name": in.LanguageName,
		"target_word":   in.TargetWord,
		"phonetic_line": phoneticLine(in.PhoneticTarget),
		"transcript":    in.Transcript,
		"similarity":    strconv.Itoa(int(in.Similarity*100 + 0.5)),
		"clarity_note":  clarity,
		"bands":         scoring.BandsFor(in.Difficulty).PromptText(),
	})
	if err != nil {
		return fallback(ReasonPrompt, err)
	}

	content, err := g.complete(ctx, llm.StructuredRequest{
		System:      system,
		Prompt:      user,
		SchemaName:  "answer_feedback",
		Schema:      TextSchema,
		Language:    in.Language,
		Temperature: in.Temperature,
	})
	if err != nil {
		return fallback(callReason(err), err)
	}

	p, err := decode(content)
	if err != nil {
		return fallback(ReasonMalformed, err)
	}
	fb, err := p.feedback()
	if err != nil {
		return fallback(ReasonInvalid, err)
	}
	if !g.screenOutput(ctx, fb) {
		return fallback(ReasonOutputBlocked, nil)
	}

	return TextFeedback{Feedback: fb, Source: SourceModel}
}

func (g *Generator) complete(ctx context.Context, req llm.StructuredRequest) (string, error) {
	req.Provider = g.provider
	req.Model = g.model

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := g.llm.Structured(ctx, req)
	if g.metrics != nil {
		provider, status := g.provider, "ok"
		if resp != nil && resp.Provider != "" {
			provider = resp.Provider
		}
		if err != nil {
			status = "error"
		}
		g.metrics.RecordLLM(ctx, provider, status, time.Since(start))
	}
	if err != nil {
		return "", err
	}

	g.logger.Debug("feedback completion",
		"provider", resp.Provider,
		"model", resp.Model,
		"input_tokens", resp.InputTokens,
		"output_tokens", resp.OutputTokens,
		"cost_usd", resp.CostUSD,
		"latency_ms", resp.LatencyMs,
	)
	return resp.Content, nil
}

func (g *Generator) transcribe(ctx context.Context, audio llm.Blob, language string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	heard, err := g.stt.Transcribe(ctx, audio, language)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errTranscription, err)
	}
	return heard, nil
}

func (g *Generator) screenInput(ctx context.Context, texts ...string) (string, bool) {
	if g.guard == nil {
		return "", true
	}
	for _, t := range texts {
		if t == "" {
			continue
		}
		res, err := g.guard.CheckInput(ctx, t)
		if err != nil {
			g.logger.Warn("input guardrail error", "error", err)
			continue
		}
		if !res.Allowed {
			g.logger.Warn("learner input blocked", "reason", res.Reason, "flags", res.Flags)
			return ReasonInputBlocked, false
		}
	}
	return "", true
}

func (g *Generator) screenOutput(ctx context.Context, fb scoring.Feedback) bool {
	if g.guard == nil {
		return true
	}
	text := fb.Feedback + "\n" + strings.Join(fb.Issues, "\n") + "\n" + strings.Join(fb.Tips, "\n")
	res, err := g.guard.CheckOutput(ctx, text)
	if err != nil {
		g.logger.Warn("output guardrail error", "error", err)
		return true
	}
	if !res.Allowed {
		g.logger.Warn("model feedback blocked", "reason", res.Reason, "flags", res.Flags)
		return false
	}
	return true
}

func (g *Generator) recordFallback(ctx context.Context, mode, reason string, err error) {
	g.logger.Warn("using fallback feedback", "mode", mode, "reason", reason, "error", err)
	if g.metrics != nil {
		g.metrics.RecordFallback(ctx, mode, reason)
	}
}

var errTranscription = errors.New("transcription failed")

func callReason(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ReasonTimeout
	case errors.Is(err, errTranscription):
		return ReasonTranscription
	case errors.Is(err, llm.ErrAudioUnsupported):
		return ReasonAudioUnsupported
	default:
		return ReasonProviderError
	}
}

func phoneticLine(target string) string {
	if strings.TrimSpace(target) == "" {
		return ""
	}
	return fmt.Sprintf(" The expected pronunciation is %s.", target)
}

func audioFallback(lang string) scoring.Feedback {
	return scoring.Feedback{
		Feedback:         fallbackMessage,
		Issues:           []string{"Audio processing error"},
		Tips:             []string{fallbackTip},
		LanguageMatch:    true,
		DetectedLanguage: lang,
	}
}

func textFallback(lang string) scoring.Feedback {
	return scoring.Feedback{
		Feedback:         fallbackMessage,
		Issues:           []string{"Could not analyze response"},
		Tips:             []string{fallbackTip},
		LanguageMatch:    true,
		DetectedLanguage: lang,
	}
}
