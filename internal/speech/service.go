package speech

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/nikhilbhutani/kidspeak/internal/cache"
	"github.com/nikhilbhutani/kidspeak/internal/guardrails"
	"github.com/nikhilbhutani/kidspeak/internal/language"
	"github.com/nikhilbhutani/kidspeak/internal/observe"
)

var (
	ErrEmptyText    = errors.New("text is required")
	ErrTextRejected = errors.New("text was rejected")
)

const (
	DefaultSpeed = 1.0
	minSpeed     = 0.25
	maxSpeed     = 4.0
)

// Cache stores synthesized audio. Get returns cache.ErrMiss for absent
// keys.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Request asks for a phrase to be read aloud.
type Request struct {
	Text     string  `json:"text"`
	Language string  `json:"language"`
	Voice    string  `json:"voice,omitempty"`
	Speed    float64 `json:"speed,omitempty"`
}

// Audio is synthesized speech.
type Audio struct {
	Data        []byte
	ContentType string
	Voice       string
	Cached      bool
}

// Service synthesizes speech through a backend, caching the audio.
type Service struct {
	synth     Synthesizer
	languages *language.Registry
	cache     Cache
	ttl       time.Duration
	guard     *guardrails.Pipeline
	metrics   *observe.Metrics
	logger    *slog.Logger
}

type Option func(*Service)

// WithCache enables caching for ttl.
func WithCache(c Cache, ttl time.Duration) Option {
	return func(s *Service) { s.cache, s.ttl = c, ttl }
}

// WithGuardrails screens the text before it is spoken.
func WithGuardrails(p *guardrails.Pipeline) Option {
	return func(s *Service) { s.guard = p }
}

func WithMetrics(m *observe.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func NewService(synth Synthesizer, languages *language.Registry, opts ...Option) *Service {
	s := &Service{
		synth:     synth,
		languages: languages,
		logger:    slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Backend names the synthesizer in use.
func (s *Service) Backend() string { return s.synth.Name() }

// Speak returns audio for the request. The voice defaults to the
// language's default voice. A failing cache never fails the request.
func (s *Service) Speak(ctx context.Context, req Request) (*Audio, error) {
	text := strings.Join(strings.Fields(req.Text), " ")
	if text == "" {
		return nil, ErrEmptyText
	}
	if err := s.screen(ctx, text); err != nil {
		return nil, err
	}

	voice := strings.TrimSpace(req.Voice)
	if voice == "" {
		voice = s.languages.Lookup(req.Language).DefaultVoice
	}
	speed := clampSpeed(req.Speed)
	key := CacheKey(text, voice, speed, s.synth.Name())
	start := time.Now()

	status := "bypass"
	if s.cache != nil {
		val, err := s.cache.Get(ctx, key)
		switch {
		case err == nil:
			if audio, ok := decodeEntry(val); ok {
				s.recordTTS(ctx, "hit", start)
				audio.Voice = voice
				audio.Cached = true
				return audio, nil
			}
			status = "miss"
		case errors.Is(err, cache.ErrMiss):
			status = "miss"
		default:
			s.logger.Warn("tts cache unavailable", "error", err)
		}
	}

	res, err := s.synth.Synthesize(ctx, SynthesisRequest{Input: text, Voice: voice, Speed: speed})
	if err != nil {
		return nil, fmt.Errorf("synthesize with %s: %w", s.synth.Name(), err)
	}
	s.recordTTS(ctx, status, start)

	if status == "miss" {
		if err := s.cache.Set(ctx, key, encodeEntry(res), s.ttl); err != nil {
			s.logger.Warn("tts cache write failed", "error", err)
		}
	}

	return &Audio{Data: res.Audio, ContentType: res.ContentType, Voice: voice}, nil
}

func (s *Service) screen(ctx context.Context, text string) error {
	if s.guard == nil {
		return nil
	}
	for _, check := range []func(context.Context, string) (*guardrails.Result, error){
		s.guard.CheckInput,
		s.guard.CheckOutput,
	} {
		res, err := check(ctx, text)
		if err != nil {
			s.logger.Warn("tts guardrail error", "error", err)
			continue
		}
		if !res.Allowed {
			return fmt.Errorf("%w: %s", ErrTextRejected, res.Reason)
		}
	}
	return nil
}

func (s *Service) recordTTS(ctx context.Context, status string, start time.Time) {
	if s.metrics != nil {
		s.metrics.RecordTTS(ctx, status, time.Since(start))
	}
}

// CacheKey identifies synthesized audio by everything that changes it.
func CacheKey(text, voice string, speed float64, backend string) string {
	h := sha256.New()
	for _, part := range []string{text, voice, strconv.FormatFloat(speed, 'f', 2, 64), backend} {
		h.Write([]byte(part))
		h.Write([]byte{'|'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Entries are stored as "<content type>\x00<audio>".
func encodeEntry(r *SynthesisResult) []byte {
	out := make([]byte, 0, len(r.ContentType)+1+len(r.Audio))
	out = append(out, r.ContentType...)
	out = append(out, 0)
	return append(out, r.Audio...)
}

func decodeEntry(b []byte) (*Audio, bool) {
	i := bytes.IndexByte(b, 0)
	if i <= 0 || i == len(b)-1 {
		return nil, false
	}
	return &Audio{ContentType: string(b[:i]), Data: b[i+1:]}, true
}

func clampSpeed(v float64) float64 {
	if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return DefaultSpeed
	}
	return math.Min(maxSpeed, math.Max(minSpeed, v))
}
