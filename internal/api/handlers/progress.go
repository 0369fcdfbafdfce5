package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/nikhilbhutani/kidspeak/internal/attempts"
	"github.com/nikhilbhutani/kidspeak/internal/auth"
	"github.com/nikhilbhutani/kidspeak/internal/language"
)

// ProgressStore reads a learner's recorded attempts.
type ProgressStore interface {
	Progress(ctx context.Context, userID uuid.UUID, language string) (attempts.Progress, error)
	TotalPoints(ctx context.Context, userID uuid.UUID) (int64, error)
}

type ProgressHandler struct {
	store ProgressStore
}

func NewProgressHandler(store ProgressStore) *ProgressHandler {
	return &ProgressHandler{store: store}
}

// Get summarizes the caller's attempts, optionally for one language, with
// the points earned across all languages.
func (h *ProgressHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "sign in required")
		return
	}

	lang := r.URL.Query().Get("language")
	if lang != "" {
		lang = language.Canonical(lang)
	}

	progress, err := h.store.Progress(r.Context(), userID, lang)
	if err != nil {
		slog.Error("progress query failed", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load progress")
		return
	}
	total, err := h.store.TotalPoints(r.Context(), userID)
	if err != nil {
		slog.Error("points query failed", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load progress")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"progress":    progress,
		"totalPoints": total,
	})
}
