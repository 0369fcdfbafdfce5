package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/nikhilbhutani/kidspeak/internal/speech"
)

// Speaker reads text aloud.
type Speaker interface {
	Speak(ctx context.Context, req speech.Request) (*speech.Audio, error)
}

type SpeechHandler struct {
	svc Speaker
}

func NewSpeechHandler(svc Speaker) *SpeechHandler {
	return &SpeechHandler{svc: svc}
}

// Speak answers with the audio bytes. X-Voice names the voice used and
// X-Cache reports HIT or MISS.
func (h *SpeechHandler) Speak(w http.ResponseWriter, r *http.Request) {
	var req speech.Request
	if !decodeBody(w, r, maxTextBody, &req) {
		return
	}

	audio, err := h.svc.Speak(r.Context(), req)
	switch {
	case errors.Is(err, speech.ErrEmptyText), errors.Is(err, speech.ErrTextRejected):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		slog.Error("tts failed", "error", err)
		writeError(w, http.StatusBadGateway, "speech synthesis failed")
		return
	}

	cacheStatus := "MISS"
	if audio.Cached {
		cacheStatus = "HIT"
	}
	w.Header().Set("Content-Type", audio.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(audio.Data)))
	w.Header().Set("X-Voice", audio.Voice)
	w.Header().Set("X-Cache", cacheStatus)
	w.WriteHeader(http.StatusOK)
	w.Write(audio.Data)
}
