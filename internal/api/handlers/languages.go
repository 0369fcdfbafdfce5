package handlers

import (
	"net/http"

	"github.com/nikhilbhutani/kidspeak/internal/language"
)

type LanguageHandler struct {
	registry *language.Registry
}

func NewLanguageHandler(reg *language.Registry) *LanguageHandler {
	return &LanguageHandler{registry: reg}
}

type languageInfo struct {
	Code         string `json:"code"`
	Name         string `json:"name"`
	Script       string `json:"script"`
	DefaultVoice string `json:"defaultVoice"`
	HasTip       bool   `json:"hasTip"`
}

func (h *LanguageHandler) List(w http.ResponseWriter, r *http.Request) {
	profiles := h.registry.Profiles()
	out := make([]languageInfo, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, languageInfo{
			Code:         p.Code,
			Name:         p.Name,
			Script:       string(p.Script),
			DefaultVoice: p.DefaultVoice,
			HasTip:       p.Tip != nil,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"languages": out})
}
