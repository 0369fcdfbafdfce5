package speech

import (
	"context"
	"fmt"
	"io"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIConfig holds configuration for the OpenAI speech endpoints. BaseURL
// may point at any OpenAI-compatible server, such as a local whisper.cpp.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

func newOpenAIClient(cfg OpenAIConfig) *openai.Client {
	c := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		c.BaseURL = cfg.BaseURL
	}
	return openai.NewClientWithConfig(c)
}

// OpenAISynthesizer synthesizes speech with the OpenAI speech API.
type OpenAISynthesizer struct {
	client *openai.Client
	model  openai.SpeechModel
}

func NewOpenAISynthesizer(cfg OpenAIConfig) *OpenAISynthesizer {
	model := openai.SpeechModel(cfg.Model)
	if model == "" {
		model = openai.TTSModel1
	}
	return &OpenAISynthesizer{client: newOpenAIClient(cfg), model: model}
}

func (o *OpenAISynthesizer) Name() string { return "openai-tts" }

// Synthesize returns MP3 audio.
func (o *OpenAISynthesizer) Synthesize(ctx context.Context, req SynthesisRequest) (*SynthesisResult, error) {
	voice := req.Voice
	if voice == "" {
		voice = string(openai.VoiceAlloy)
	}

	resp, err := o.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          o.model,
		Input:          req.Input,
		Voice:          openai.SpeechVoice(voice),
		ResponseFormat: openai.SpeechResponseFormatMp3,
		Speed:          req.Speed,
	})
	if err != nil {
		return nil, fmt.Errorf("tts request: %w", err)
	}
	defer resp.Close()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("read audio: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("tts returned no audio")
	}

	return &SynthesisResult{
		Audio:       audio,
		ContentType: "audio/mpeg",
	}, nil
}
