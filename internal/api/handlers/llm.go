package handlers

import (
	"net/http"

	"github.com/nikhilbhutani/kidspeak/internal/llm"
)

type LLMHandler struct {
	gateway llm.Gateway
}

func NewLLMHandler(gw llm.Gateway) *LLMHandler {
	return &LLMHandler{gateway: gw}
}

// Models lists the configured feedback models and whether they take audio.
func (h *LLMHandler) Models(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"providers": h.gateway.Providers(),
		"models":    h.gateway.ListModels(),
	})
}
