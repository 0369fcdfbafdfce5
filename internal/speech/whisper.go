package speech

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/nikhilbhutani/kidspeak/internal/llm"
)

// WhisperTranscriber transcribes recordings with the Whisper API or any
// server that speaks it.
type WhisperTranscriber struct {
	client *openai.Client
	model  string
	name   string
}

// NewWhisperTranscriber targets the OpenAI API.
func NewWhisperTranscriber(cfg OpenAIConfig) *WhisperTranscriber {
	model := cfg.Model
	if model == "" {
		model = openai.Whisper1
	}
	return &WhisperTranscriber{client: newOpenAIClient(cfg), model: model, name: "openai-whisper"}
}

// NewLocalWhisperTranscriber targets a local whisper.cpp server, started
// with e.g. ./server -m models/ggml-base.bin --port 8178.
func NewLocalWhisperTranscriber(baseURL string) *WhisperTranscriber {
	if baseURL == "" {
		baseURL = "http://localhost:8178"
	}
	t := NewWhisperTranscriber(OpenAIConfig{BaseURL: strings.TrimRight(baseURL, "/") + "/v1"})
	t.name = "local-whisper"
	return t
}

func (w *WhisperTranscriber) Name() string { return w.name }

// Transcribe returns the text heard in the recording. language is an
// ISO 639-1 hint and may be empty.
func (w *WhisperTranscriber) Transcribe(ctx context.Context, audio llm.Blob, language string) (string, error) {
	resp, err := w.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    w.model,
		Reader:   bytes.NewReader(audio.Data),
		FilePath: "attempt." + audio.Ext(),
		Language: language,
		Format:   openai.AudioResponseFormatJSON,
	})
	if err != nil {
		return "", fmt.Errorf("transcription request: %w", err)
	}
	return strings.TrimSpace(resp.Text), nil
}
