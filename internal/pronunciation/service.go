// Package pronunciation scores a learner's spoken or typed attempt at a
// target phrase and returns child-friendly feedback with follow-up
// suggestions.
package pronunciation

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/nikhilbhutani/kidspeak/internal/attempts"
	"github.com/nikhilbhutani/kidspeak/internal/feedback"
	"github.com/nikhilbhutani/kidspeak/internal/language"
	"github.com/nikhilbhutani/kidspeak/internal/observe"
	"github.com/nikhilbhutani/kidspeak/internal/scoring"
)

// Input errors. Everything else degrades to fallback feedback.
var (
	ErrMissingTargetWord = errors.New("target_word is required")
	ErrMissingLanguage   = errors.New("language is required")
	ErrMissingInput      = errors.New("audio_data is required")
	ErrInvalidAudio      = errors.New("audio_data is not valid base64 audio")
)

const (
	DefaultTemperature = 0.3
	minTemperature     = 0.1
	maxTemperature     = 1.0
)

// Transcripts the upstream recognizer emits when it heard nothing usable.
var unclearMarkers = map[string]bool{
	"unclear":     true,
	"[unclear]":   true,
	"inaudible":   true,
	"[inaudible]": true,
	"[no speech]": true,
}

// FeedbackGenerator produces model feedback for an attempt.
type FeedbackGenerator interface {
	ScoreAudio(ctx context.Context, in feedback.AudioInput) feedback.AudioFeedback
	ScoreText(ctx context.Context, in feedback.TextInput) feedback.TextFeedback
}

// AttemptRecorder is notified of every scored attempt by a signed-in
// learner.
type AttemptRecorder interface {
	Record(ctx context.Context, a attempts.Attempt) error
}

// AudioRequest is a recorded attempt. UserID is set by the caller from the
// authenticated session.
type AudioRequest struct {
	AudioData       string   `json:"audio_data"`
	TargetWord      string   `json:"target_word"`
	Language        string   `json:"language"`
	PhoneticTarget  string   `json:"phonetic_target,omitempty"`
	DifficultyLevel string   `json:"difficulty_level,omitempty"`
	Temperature     *float64 `json:"temperature,omitempty"`

	UserID uuid.UUID `json:"-"`
}

// TextRequest is an attempt already transcribed, or typed, by the client.
type TextRequest struct {
	Transcript      string   `json:"transcript"`
	TargetWord      string   `json:"target_word"`
	Language        string   `json:"language"`
	PhoneticTarget  string   `json:"phonetic_target,omitempty"`
	DifficultyLevel string   `json:"difficulty_level,omitempty"`
	Temperature     *float64 `json:"temperature,omitempty"`

	UserID uuid.UUID `json:"-"`
}

// Response is returned for both request kinds.
type Response struct {
	Success     bool                 `json:"success"`
	Validation  scoring.Result       `json:"validation"`
	Suggestions []scoring.Suggestion `json:"suggestions"`
}

// Service runs the scoring pipeline. It holds no per-request state and is
// safe for concurrent use.
type Service struct {
	gen           FeedbackGenerator
	languages     *language.Registry
	rng           scoring.Rand
	recorder      AttemptRecorder
	metrics       *observe.Metrics
	logger        *slog.Logger
	temperature   float64
	maxAudioBytes int
}

// Option configures a Service.
type Option func(*Service)

// WithRand replaces the score perturbation randomness.
func WithRand(r scoring.Rand) Option {
	return func(s *Service) { s.rng = r }
}

// WithRecorder enables attempt recording.
func WithRecorder(r AttemptRecorder) Option {
	return func(s *Service) { s.recorder = r }
}

func WithMetrics(m *observe.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithDefaultTemperature sets the temperature used when a request omits
// one. It is clamped like request values.
func WithDefaultTemperature(t float64) Option {
	return func(s *Service) { s.temperature = clampTemperature(t, DefaultTemperature) }
}

// WithMaxAudioBytes bounds decoded recordings; zero disables the limit.
func WithMaxAudioBytes(n int) Option {
	return func(s *Service) { s.maxAudioBytes = n }
}

func NewService(gen FeedbackGenerator, languages *language.Registry, opts ...Option) *Service {
	s := &Service{
		gen:           gen,
		languages:     languages,
		rng:           scoring.DefaultRand(),
		logger:        slog.Default(),
		temperature:   DefaultTemperature,
		maxAudioBytes: DefaultMaxAudioBytes,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// ValidateAudio scores a recording. The model both transcribes and scores
// it; the result is then reconciled against the language-match verdict.
func (s *Service) ValidateAudio(ctx context.Context, req AudioRequest) (Response, error) {
	target, err := requireTarget(req.TargetWord, req.Language)
	if err != nil {
		return Response{}, err
	}
	if strings.TrimSpace(req.AudioData) == "" {
		return Response{}, ErrMissingInput
	}
	audio, err := decodeAudio(req.AudioData, s.maxAudioBytes)
	if err != nil {
		return Response{}, err
	}

	p := s.languages.Lookup(req.Language)
	difficulty := s.difficulty(req.DifficultyLevel)

	fb := s.gen.ScoreAudio(ctx, feedback.AudioInput{
		Audio:          audio,
		TargetWord:     target,
		Language:       p.Code,
		LanguageName:   p.Name,
		PhoneticTarget: strings.TrimSpace(req.PhoneticTarget),
		Difficulty:     difficulty,
		Temperature:    clampTemperature(valueOr(req.Temperature, s.temperature), s.temperature),
	})

	res := scoring.Reconcile(fb.Score, fb.Feedback)
	res.Transcript = fb.Transcript
	if fb.Source == feedback.SourceModel {
		res.PhoneticAnalysis = scoring.PhoneticAnalysis(fb.Transcript, target, p)
	}

	return s.finish(ctx, req.UserID, attempts.ModeAudio, p, target, difficulty, fb.Source, res), nil
}

// ValidateText scores a transcript. An empty or unclear transcript is not
// an error: it gets a low score, model feedback for the message, and is
// never judged correct.
func (s *Service) ValidateText(ctx context.Context, req TextRequest) (Response, error) {
	target, err := requireTarget(req.TargetWord, req.Language)
	if err != nil {
		return Response{}, err
	}

	p := s.languages.Lookup(req.Language)
	difficulty := s.difficulty(req.DifficultyLevel)
	heard := scoring.Normalize(req.Transcript, p)
	unclear := isUnclear(req.Transcript, heard)

	var similarity float64
	if !unclear {
		similarity = scoring.Similarity(heard, scoring.Normalize(target, p))
	}

	fb := s.gen.ScoreText(ctx, feedback.TextInput{
		Transcript:     strings.TrimSpace(req.Transcript),
		TargetWord:     target,
		Language:       p.Code,
		LanguageName:   p.Name,
		PhoneticTarget: strings.TrimSpace(req.PhoneticTarget),
		Difficulty:     difficulty,
		Temperature:    clampTemperature(valueOr(req.Temperature, s.temperature), s.temperature),
		Similarity:     similarity,
		Unclear:        unclear,
	})

	var res scoring.Result
	if unclear {
		res = scoring.ReconcileUnclear(scoring.UnclearScore(s.rng), fb.Feedback)
	} else {
		res = scoring.Reconcile(scoring.TextScore(similarity, s.rng), fb.Feedback)
		res.PhoneticAnalysis = scoring.PhoneticAnalysis(req.Transcript, target, p)
	}

	return s.finish(ctx, req.UserID, attempts.ModeText, p, target, difficulty, fb.Source, res), nil
}

func (s *Service) finish(
	ctx context.Context,
	userID uuid.UUID,
	mode string,
	p language.Profile,
	target string,
	difficulty scoring.Difficulty,
	source feedback.Source,
	res scoring.Result,
) Response {
	s.logger.Info("attempt scored",
		"mode", mode,
		"language", p.Code,
		"difficulty", difficulty,
		"score", res.Score,
		"correct", res.IsCorrect,
		"language_mismatch", res.LanguageMismatch,
		"source", source,
	)
	if s.metrics != nil {
		s.metrics.RecordScore(ctx, mode, p.Code, string(difficulty), res.Score, res.IsCorrect)
	}

	if s.recorder != nil && userID != uuid.Nil {
		err := s.recorder.Record(ctx, attempts.Attempt{
			ID:               uuid.New(),
			UserID:           userID,
			Mode:             mode,
			Language:         p.Code,
			TargetWord:       target,
			Score:            res.Score,
			IsCorrect:        res.IsCorrect,
			Difficulty:       string(difficulty),
			LanguageMismatch: res.LanguageMismatch,
			FeedbackSource:   source.String(),
		})
		if err != nil {
			s.logger.Error("failed to record attempt", "user_id", userID, "mode", mode, "error", err)
		}
	}

	return Response{
		Success:     true,
		Validation:  res,
		Suggestions: scoring.Suggestions(res, p),
	}
}

func (s *Service) difficulty(level string) scoring.Difficulty {
	d, ok := scoring.ParseDifficulty(level)
	if !ok {
		s.logger.Debug("unknown difficulty, using medium", "difficulty_level", level)
	}
	return d
}

func requireTarget(target, lang string) (string, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return "", ErrMissingTargetWord
	}
	if strings.TrimSpace(lang) == "" {
		return "", ErrMissingLanguage
	}
	return target, nil
}

func isUnclear(raw, normalized string) bool {
	if normalized == "" {
		return true
	}
	return unclearMarkers[strings.ToLower(strings.TrimSpace(raw))]
}

func valueOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

func clampTemperature(t, def float64) float64 {
	if math.IsNaN(t) || math.IsInf(t, 0) {
		return def
	}
	return math.Min(maxTemperature, math.Max(minTemperature, t))
}
