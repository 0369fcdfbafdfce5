package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/nikhilbhutani/kidspeak/internal/auth"
	"github.com/nikhilbhutani/kidspeak/internal/pronunciation"
)

const (
	maxAudioBody = 16 << 20
	maxTextBody  = 64 << 10
)

// Scorer scores pronunciation attempts.
type Scorer interface {
	ValidateAudio(ctx context.Context, req pronunciation.AudioRequest) (pronunciation.Response, error)
	ValidateText(ctx context.Context, req pronunciation.TextRequest) (pronunciation.Response, error)
}

type PronunciationHandler struct {
	svc Scorer
}

func NewPronunciationHandler(svc Scorer) *PronunciationHandler {
	return &PronunciationHandler{svc: svc}
}

func (h *PronunciationHandler) ValidateAudio(w http.ResponseWriter, r *http.Request) {
	var req pronunciation.AudioRequest
	if !decodeBody(w, r, maxAudioBody, &req) {
		return
	}
	req.UserID, _ = auth.UserIDFromContext(r.Context())

	resp, err := h.svc.ValidateAudio(r.Context(), req)
	if err != nil {
		writeScoringError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *PronunciationHandler) ValidateText(w http.ResponseWriter, r *http.Request) {
	var req pronunciation.TextRequest
	if !decodeBody(w, r, maxTextBody, &req) {
		return
	}
	req.UserID, _ = auth.UserIDFromContext(r.Context())

	resp, err := h.svc.ValidateText(r.Context(), req)
	if err != nil {
		writeScoringError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeScoringError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, pronunciation.ErrMissingTargetWord),
		errors.Is(err, pronunciation.ErrMissingLanguage),
		errors.Is(err, pronunciation.ErrMissingInput),
		errors.Is(err, pronunciation.ErrInvalidAudio):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("scoring failed", "error", err)
		writeError(w, http.StatusInternalServerError, "scoring failed")
	}
}

// decodeBody reads a JSON body of at most limit bytes, answering 400 or 413
// itself when it cannot.
func decodeBody(w http.ResponseWriter, r *http.Request, limit int64, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
