package llm

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/nikhilbhutani/kidspeak/internal/config"
)

type gateway struct {
	providers       map[string]Provider
	defaultProvider string
}

// NewGateway registers a provider for every configured key or URL.
func NewGateway(cfg config.LLMConfig) Gateway {
	var ps []Provider
	if cfg.GeminiKey != "" {
		ps = append(ps, NewGeminiProvider(cfg.GeminiKey))
	}
	if cfg.OpenAIKey != "" {
		ps = append(ps, NewOpenAIProvider(cfg.OpenAIKey))
	}
	if cfg.AnthropicKey != "" {
		ps = append(ps, NewAnthropicProvider(cfg.AnthropicKey))
	}
	if cfg.OllamaURL != "" {
		ps = append(ps, NewOllamaProvider(cfg.OllamaURL))
	}
	return NewGatewayWith(cfg.DefaultProvider, ps...)
}

// NewGatewayWith builds a gateway over explicit providers.
func NewGatewayWith(defaultProvider string, providers ...Provider) Gateway {
	g := &gateway{
		providers:       make(map[string]Provider, len(providers)),
		defaultProvider: defaultProvider,
	}
	for _, p := range providers {
		g.providers[p.Name()] = p
	}
	return g
}

func (g *gateway) Provider(name string) (Provider, error) {
	p, ok := g.providers[name]
	if !ok {
		return nil, fmt.Errorf("provider %q not configured", name)
	}
	return p, nil
}

func (g *gateway) Providers() []string {
	names := make([]string, 0, len(g.providers))
	for name := range g.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Structured sends the request to a single provider once. Callers that need
// a fallback answer handle the error themselves.
func (g *gateway) Structured(ctx context.Context, req StructuredRequest) (*StructuredResponse, error) {
	providerName := req.Provider
	if providerName == "" {
		providerName = g.defaultProvider
	}

	p, err := g.Provider(providerName)
	if err != nil {
		return nil, err
	}
	if req.Model == "" {
		req.Model = p.DefaultModel()
	}

	resp, err := p.Structured(ctx, req)
	if err != nil {
		slog.Debug("structured completion failed", "provider", providerName, "model", req.Model, "error", err)
		return nil, fmt.Errorf("%s structured: %w", providerName, err)
	}
	return resp, nil
}

func (g *gateway) ListModels() []ModelInfo {
	var models []ModelInfo
	for _, name := range g.Providers() {
		p := g.providers[name]
		for _, m := range p.Models() {
			models = append(models, ModelInfo{
				Provider: name,
				Model:    m,
				Audio:    acceptsAudio(name),
			})
		}
	}
	return models
}

func acceptsAudio(provider string) bool {
	return provider == "gemini" || provider == "openai"
}
