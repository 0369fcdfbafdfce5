package llm

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

type OpenAIProvider struct {
	client *openai.Client
}

func NewOpenAIProvider(apiKey string) *OpenAIProvider {
	return &OpenAIProvider{
		client: openai.NewClient(apiKey),
	}
}

func (p *OpenAIProvider) Name() string         { return "openai" }
func (p *OpenAIProvider) DefaultModel() string { return "gpt-4o-mini" }

func (p *OpenAIProvider) Models() []string {
	return []string{"gpt-4o", "gpt-4o-mini", "gpt-4.1-mini"}
}

// Structured uses JSON-schema response formatting. Chat models here do not
// take raw audio, so a clip is first transcribed with Whisper and the
// transcript is appended to the prompt.
func (p *OpenAIProvider) Structured(ctx context.Context, req StructuredRequest) (*StructuredResponse, error) {
	start := time.Now()

	prompt := req.Prompt
	if req.Audio != nil {
		transcript, err := p.transcribe(ctx, req.Audio, req.Language)
		if err != nil {
			return nil, err
		}
		prompt += fmt.Sprintf("\n\nThe audio clip was transcribed by a speech recognizer as: %q\n"+
			"Judge the pronunciation from this transcript and report it as the transcript field.", transcript)
	}

	model := req.Model
	if model == "" {
		model = p.DefaultModel()
	}

	var msgs []openai.ChatCompletionMessage
	if req.System != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.System})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: prompt})

	oReq := openai.ChatCompletionRequest{
		Model:    model,
		Messages: msgs,
	}
	if req.Temperature > 0 {
		oReq.Temperature = float32(req.Temperature)
	}
	if req.MaxTokens > 0 {
		oReq.MaxTokens = req.MaxTokens
	}
	if req.Schema != nil {
		def := req.Schema.toOpenAI()
		name := req.SchemaName
		if name == "" {
			name = "response"
		}
		oReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   name,
				Schema: &def,
				Strict: true,
			},
		}
	} else {
		oReq.ResponseFormat = &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	}

	resp, err := p.client.CreateChatCompletion(ctx, oReq)
	if err != nil {
		return nil, fmt.Errorf("openai chat: %w", err)
	}

	content := ""
	if len(resp.Choices) > 0 {
		content = resp.Choices[0].Message.Content
	}

	return &StructuredResponse{
		Provider:     "openai",
		Model:        resp.Model,
		Content:      ExtractJSON(content),
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
		CostUSD:      CalculateCost(model, resp.Usage.PromptTokens, resp.Usage.CompletionTokens),
		LatencyMs:    time.Since(start).Milliseconds(),
	}, nil
}

func (p *OpenAIProvider) transcribe(ctx context.Context, audio *Blob, language string) (string, error) {
	resp, err := p.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		Reader:   bytes.NewReader(audio.Data),
		FilePath: "attempt." + audio.Ext(),
		Language: language,
	})
	if err != nil {
		return "", fmt.Errorf("openai transcription: %w", err)
	}
	return strings.TrimSpace(resp.Text), nil
}
