package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

type AnthropicProvider struct {
	client anthropic.Client
}

func NewAnthropicProvider(apiKey string) *AnthropicProvider {
	return &AnthropicProvider{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
	}
}

func (p *AnthropicProvider) Name() string         { return "anthropic" }
func (p *AnthropicProvider) DefaultModel() string { return "claude-3-5-haiku-latest" }

func (p *AnthropicProvider) Models() []string {
	return []string{
		"claude-3-5-haiku-latest",
		"claude-sonnet-4-20250514",
	}
}

// Structured declares the schema in the system prompt. Audio is not
// accepted.
func (p *AnthropicProvider) Structured(ctx context.Context, req StructuredRequest) (*StructuredResponse, error) {
	if req.Audio != nil {
		return nil, ErrAudioUnsupported
	}
	start := time.Now()

	model := req.Model
	if model == "" {
		model = p.DefaultModel()
	}
	maxTokens := int64(req.MaxTokens)
	if maxTokens == 0 {
		maxTokens = 1024
	}

	system := schemaInstruction(req.Schema)
	if req.System != "" {
		system = req.System + "\n\n" + system
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
		System: []anthropic.TextBlockParam{{Text: system}},
	}
	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(req.Temperature)
	}

	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic messages: %w", err)
	}

	content := ""
	for _, block := range resp.Content {
		if block.Type == "text" {
			content += block.Text
		}
	}

	inputTokens := int(resp.Usage.InputTokens)
	outputTokens := int(resp.Usage.OutputTokens)
	return &StructuredResponse{
		Provider:     "anthropic",
		Model:        string(resp.Model),
		Content:      ExtractJSON(content),
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		CostUSD:      CalculateCost(model, inputTokens, outputTokens),
		LatencyMs:    time.Since(start).Milliseconds(),
	}, nil
}
