package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/TreasureUzoma/lettera/internal/http/httperr"
	"github.com/TreasureUzoma/lettera/internal/http/middleware"
	"github.com/TreasureUzoma/lettera/internal/models"
)

type subscriberPayload struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name,omitempty"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

func subscriberFromModel(s *models.Subscriber) subscriberPayload {
	return subscriberPayload{
		ID:        s.ID.String(),
		Email:     s.Email,
		Name:      s.Name,
		Status:    string(s.Status),
		CreatedAt: s.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// ListSubscribers — подписчики проекта для дашборда (любая роль участника).
func (h *Handlers) ListSubscribers(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		httperr.WriteUnauthorized(w, r)
		return
	}

	subs, err := h.Svc.ListSubscribers(r.Context(), identity.UserID, chi.URLParam(r, "project"))
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	out := make([]subscriberPayload, 0, len(subs))
	for i := range subs {
		out = append(out, subscriberFromModel(&subs[i]))
	}

	writeJSON(w, http.StatusOK, out)
}
