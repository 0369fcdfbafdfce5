package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type OllamaProvider struct {
	baseURL    string
	httpClient *http.Client
}

func NewOllamaProvider(baseURL string) *OllamaProvider {
	return &OllamaProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 2 * time.Minute,
		},
	}
}

func (p *OllamaProvider) Name() string         { return "ollama" }
func (p *OllamaProvider) DefaultModel() string { return "llama3.1" }

func (p *OllamaProvider) Models() []string {
	return []string{"llama3.1", "qwen2.5", "mistral"}
}

type ollamaChatReq struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Format   any             `json:"format,omitempty"`
	Options  *ollamaOptions  `json:"options,omitempty"`
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaChatResp struct {
	Message         ollamaMessage `json:"message"`
	Done            bool          `json:"done"`
	PromptEvalCount int           `json:"prompt_eval_count"`
	EvalCount       int           `json:"eval_count"`
	Error           string        `json:"error"`
}

// Structured passes the schema as Ollama's format constraint. Audio is not
// accepted.
func (p *OllamaProvider) Structured(ctx context.Context, req StructuredRequest) (*StructuredResponse, error) {
	if req.Audio != nil {
		return nil, ErrAudioUnsupported
	}
	start := time.Now()

	model := req.Model
	if model == "" {
		model = p.DefaultModel()
	}

	var msgs []ollamaMessage
	if req.System != "" {
		msgs = append(msgs, ollamaMessage{Role: "system", Content: req.System})
	}
	msgs = append(msgs, ollamaMessage{Role: "user", Content: req.Prompt})

	oReq := ollamaChatReq{
		Model:    model,
		Messages: msgs,
		Format:   "json",
	}
	if req.Schema != nil {
		oReq.Format = req.Schema
	}
	if req.Temperature > 0 || req.MaxTokens > 0 {
		oReq.Options = &ollamaOptions{
			Temperature: req.Temperature,
			NumPredict:  req.MaxTokens,
		}
	}

	body, err := json.Marshal(oReq)
	if err != nil {
		return nil, fmt.Errorf("ollama encode: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("ollama request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("ollama chat: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("ollama chat: status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var oResp ollamaChatResp
	if err := json.NewDecoder(resp.Body).Decode(&oResp); err != nil {
		return nil, fmt.Errorf("ollama decode: %w", err)
	}
	if oResp.Error != "" {
		return nil, fmt.Errorf("ollama chat: %s", oResp.Error)
	}

	return &StructuredResponse{
		Provider:     "ollama",
		Model:        model,
		Content:      ExtractJSON(oResp.Message.Content),
		InputTokens:  oResp.PromptEvalCount,
		OutputTokens: oResp.EvalCount,
		LatencyMs:    time.Since(start).Milliseconds(),
	}, nil
}
