// Package speech reads target words aloud for learners and transcribes
// recordings for feedback models that cannot listen.
package speech

import "context"

// SynthesisRequest holds the parameters for text-to-speech generation.
type SynthesisRequest struct {
	Input string
	Voice string
	Speed float64
}

// SynthesisResult holds the generated audio and its content type.
type SynthesisResult struct {
	Audio       []byte
	ContentType string // "audio/mpeg" (OpenAI) or "audio/wav" (Piper)
}

// Synthesizer is a text-to-speech backend.
type Synthesizer interface {
	Synthesize(ctx context.Context, req SynthesisRequest) (*SynthesisResult, error)
	Name() string
}
