package llm

import (
	"context"
	"errors"
	"strings"
)

// ErrAudioUnsupported is returned by providers that cannot take audio input.
var ErrAudioUnsupported = errors.New("provider does not accept audio input")

// StructuredCompleter asks a model for a single JSON object matching a
// declared schema.
type StructuredCompleter interface {
	Structured(ctx context.Context, req StructuredRequest) (*StructuredResponse, error)
}

// Provider abstracts an LLM provider (Gemini, OpenAI, Anthropic, Ollama).
type Provider interface {
	StructuredCompleter
	Name() string
	Models() []string
	DefaultModel() string
}

// Gateway routes structured requests to the configured providers.
type Gateway interface {
	StructuredCompleter
	Provider(name string) (Provider, error)
	Providers() []string
	ListModels() []ModelInfo
}

// Blob is binary media sent alongside the prompt.
type Blob struct {
	MIMEType string
	Data     []byte
}

// StructuredRequest is the input for a structured completion. Audio is
// optional; providers without audio support return ErrAudioUnsupported.
type StructuredRequest struct {
	Provider    string
	Model       string
	System      string
	Prompt      string
	SchemaName  string
	Schema      *Schema
	Audio       *Blob
	Language    string // BCP-47 hint for speech recognition
	Temperature float64
	MaxTokens   int
}

// StructuredResponse carries the raw JSON text returned by the model.
type StructuredResponse struct {
	Provider     string  `json:"provider"`
	Model        string  `json:"model"`
	Content      string  `json:"content"`
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	CostUSD      float64 `json:"cost_usd"`
	LatencyMs    int64   `json:"latency_ms"`
}

// ModelInfo describes an available model.
type ModelInfo struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
	Audio    bool   `json:"audio"`
}

// Ext maps the MIME type onto the file extension Whisper uses to detect
// the container format.
func (b Blob) Ext() string {
	mime := b.MIMEType
	switch {
	case strings.Contains(mime, "wav"):
		return "wav"
	case strings.Contains(mime, "mpeg"), strings.Contains(mime, "mp3"):
		return "mp3"
	case strings.Contains(mime, "mp4"), strings.Contains(mime, "m4a"), strings.Contains(mime, "aac"):
		return "m4a"
	case strings.Contains(mime, "ogg"):
		return "ogg"
	case strings.Contains(mime, "flac"):
		return "flac"
	default:
		return "webm"
	}
}
