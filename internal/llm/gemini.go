package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

type GeminiProvider struct {
	apiKey string
}

func NewGeminiProvider(apiKey string) *GeminiProvider {
	return &GeminiProvider{apiKey: strings.TrimSpace(apiKey)}
}

func (p *GeminiProvider) Name() string         { return "gemini" }
func (p *GeminiProvider) DefaultModel() string { return "gemini-2.5-flash" }

func (p *GeminiProvider) Models() []string {
	return []string{"gemini-2.5-flash", "gemini-2.5-pro", "gemini-2.0-flash"}
}

// Structured sends the prompt, and the audio clip when present, with a
// native response schema so the reply is constrained to JSON.
func (p *GeminiProvider) Structured(ctx context.Context, req StructuredRequest) (*StructuredResponse, error) {
	if p.apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY is empty")
	}
	start := time.Now()

	cl, err := genai.NewClient(ctx, option.WithAPIKey(p.apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	defer cl.Close()

	model := req.Model
	if model == "" {
		model = p.DefaultModel()
	}
	m := cl.GenerativeModel(model)
	m.GenerationConfig = genai.GenerationConfig{
		ResponseMIMEType: "application/json",
	}
	if req.Temperature > 0 {
		m.SetTemperature(float32(req.Temperature))
	}
	if req.MaxTokens > 0 {
		m.SetMaxOutputTokens(int32(req.MaxTokens))
	}
	if req.Schema != nil {
		m.ResponseSchema = req.Schema.toGenai()
	}
	if req.System != "" {
		m.SystemInstruction = genai.NewUserContent(genai.Text(req.System))
	}

	parts := []genai.Part{genai.Text(req.Prompt)}
	if req.Audio != nil {
		parts = append(parts, &genai.Blob{MIMEType: req.Audio.MIMEType, Data: req.Audio.Data})
	}

	resp, err := m.GenerateContent(ctx, parts...)
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}
	txt := firstText(resp)
	if txt == "" {
		return nil, errors.New("gemini: empty response")
	}

	var inputTokens, outputTokens int
	if resp.UsageMetadata != nil {
		inputTokens = int(resp.UsageMetadata.PromptTokenCount)
		outputTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}

	return &StructuredResponse{
		Provider:     "gemini",
		Model:        model,
		Content:      ExtractJSON(txt),
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		CostUSD:      CalculateCost(model, inputTokens, outputTokens),
		LatencyMs:    time.Since(start).Milliseconds(),
	}, nil
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, part := range c.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}
