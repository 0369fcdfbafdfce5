package llm_test

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nikhilbhutani/kidspeak/internal/llm"
)

type fakeProvider struct {
	name    string
	lastReq llm.StructuredRequest
	content string
	err     error
}

func (f *fakeProvider) Name() string         { return f.name }
func (f *fakeProvider) DefaultModel() string { return f.name + "-default" }
func (f *fakeProvider) Models() []string     { return []string{f.name + "-default", f.name + "-large"} }

func (f *fakeProvider) Structured(_ context.Context, req llm.StructuredRequest) (*llm.StructuredResponse, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &llm.StructuredResponse{Provider: f.name, Model: req.Model, Content: f.content}, nil
}

func TestGateway_RoutesToDefaultProvider(t *testing.T) {
	t.Parallel()

	gem := &fakeProvider{name: "gemini", content: `{"ok":true}`}
	oai := &fakeProvider{name: "openai"}
	gw := llm.NewGatewayWith("gemini", gem, oai)

	resp, err := gw.Structured(context.Background(), llm.StructuredRequest{Prompt: "hi"})
	if err != nil {
		t.Fatalf("Structured: %v", err)
	}
	if resp.Provider != "gemini" || resp.Model != "gemini-default" {
		t.Errorf("routed to %s/%s, want gemini/gemini-default", resp.Provider, resp.Model)
	}
	if oai.lastReq.Prompt != "" {
		t.Error("openai should not have been called")
	}
}

func TestGateway_ExplicitProviderAndModel(t *testing.T) {
	t.Parallel()

	gem := &fakeProvider{name: "gemini"}
	oai := &fakeProvider{name: "openai", content: "{}"}
	gw := llm.NewGatewayWith("gemini", gem, oai)

	if _, err := gw.Structured(context.Background(), llm.StructuredRequest{Provider: "openai", Model: "gpt-x"}); err != nil {
		t.Fatalf("Structured: %v", err)
	}
	if oai.lastReq.Model != "gpt-x" {
		t.Errorf("model = %q, want gpt-x", oai.lastReq.Model)
	}
}

func TestGateway_Errors(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	gw := llm.NewGatewayWith("gemini", &fakeProvider{name: "gemini", err: boom})

	if _, err := gw.Structured(context.Background(), llm.StructuredRequest{}); !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped boom", err)
	}
	if _, err := gw.Structured(context.Background(), llm.StructuredRequest{Provider: "nope"}); err == nil {
		t.Error("expected error for unconfigured provider")
	}
}

func TestGateway_ListModels(t *testing.T) {
	t.Parallel()

	gw := llm.NewGatewayWith("gemini", &fakeProvider{name: "ollama"}, &fakeProvider{name: "gemini"})

	if got := strings.Join(gw.Providers(), ","); got != "gemini,ollama" {
		t.Errorf("Providers() = %s, want gemini,ollama", got)
	}
	models := gw.ListModels()
	if len(models) != 4 {
		t.Fatalf("ListModels() returned %d models, want 4", len(models))
	}
	if !models[0].Audio || models[0].Provider != "gemini" {
		t.Errorf("first model = %+v, want audio-capable gemini", models[0])
	}
	if models[3].Audio {
		t.Errorf("ollama model reported audio support: %+v", models[3])
	}
}

func TestExtractJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{"Here you go: {\"a\":{\"b\":2}} hope it helps", `{"a":{"b":2}}`},
		{"no json here", "no json here"},
	}
	for _, tt := range tests {
		if got := llm.ExtractJSON(tt.in); got != tt.want {
			t.Errorf("ExtractJSON(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSchemaJSON(t *testing.T) {
	t.Parallel()

	s := &llm.Schema{
		Type: llm.TypeObject,
		Properties: map[string]*llm.Schema{
			"score": {Type: llm.TypeInteger, Description: "0-100"},
			"tips":  {Type: llm.TypeArray, Items: &llm.Schema{Type: llm.TypeString}},
		},
		Required: []string{"score", "tips"},
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(s.JSON()), &decoded); err != nil {
		t.Fatalf("schema JSON is invalid: %v", err)
	}
	if decoded["type"] != "object" {
		t.Errorf("type = %v, want object", decoded["type"])
	}
}

func TestCalculateCost(t *testing.T) {
	t.Parallel()

	if got, want := llm.CalculateCost("gpt-4o-mini", 1000, 1000), 0.00015+0.0006; math.Abs(got-want) > 1e-12 {
		t.Errorf("CalculateCost(gpt-4o-mini) = %v, want %v", got, want)
	}
	if got := llm.CalculateCost("llama3.1", 5000, 5000); got != 0 {
		t.Errorf("CalculateCost(llama3.1) = %v, want 0", got)
	}
}

func TestOllama_Structured(t *testing.T) {
	t.Parallel()

	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":"` + "```json\\n{\\\"score\\\":70}\\n```" + `"},"done":true,"prompt_eval_count":12,"eval_count":5}`))
	}))
	defer srv.Close()

	p := llm.NewOllamaProvider(srv.URL + "/")
	resp, err := p.Structured(context.Background(), llm.StructuredRequest{
		System:      "be kind",
		Prompt:      "score it",
		Schema:      &llm.Schema{Type: llm.TypeObject, Properties: map[string]*llm.Schema{"score": {Type: llm.TypeInteger}}},
		Temperature: 0.3,
	})
	if err != nil {
		t.Fatalf("Structured: %v", err)
	}
	if resp.Content != `{"score":70}` {
		t.Errorf("Content = %q", resp.Content)
	}
	if resp.InputTokens != 12 || resp.OutputTokens != 5 {
		t.Errorf("tokens = %d/%d, want 12/5", resp.InputTokens, resp.OutputTokens)
	}
	if got["model"] != "llama3.1" || got["stream"] != false {
		t.Errorf("request = %v", got)
	}
	if _, ok := got["format"].(map[string]any); !ok {
		t.Errorf("format = %v, want schema object", got["format"])
	}
	msgs, _ := got["messages"].([]any)
	if len(msgs) != 2 {
		t.Errorf("messages = %v, want system and user", msgs)
	}
}

func TestOllama_HTTPError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := llm.NewOllamaProvider(srv.URL).Structured(context.Background(), llm.StructuredRequest{Prompt: "x"})
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Errorf("err = %v, want status 404", err)
	}
}

func TestAudioUnsupported(t *testing.T) {
	t.Parallel()

	audio := &llm.Blob{MIMEType: "audio/webm", Data: []byte{1, 2, 3}}
	providers := []llm.Provider{
		llm.NewOllamaProvider("http://127.0.0.1:1"),
		llm.NewAnthropicProvider("key"),
	}
	for _, p := range providers {
		_, err := p.Structured(context.Background(), llm.StructuredRequest{Audio: audio})
		if !errors.Is(err, llm.ErrAudioUnsupported) {
			t.Errorf("%s: err = %v, want ErrAudioUnsupported", p.Name(), err)
		}
	}
}
