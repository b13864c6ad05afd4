package handlers

import (
	"net/http"

	"github.com/TreasureUzoma/lettera/internal/http/httperr"
	"github.com/TreasureUzoma/lettera/internal/http/middleware"
)

type externalSubscribeRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// ExternalCreateSubscriber создаёт подписчика по внешнему API.
// Достаточно public-тира: это единственная операция, доступная публичному
// ключу (его не страшно светить в клиентском коде формы подписки).
func (h *Handlers) ExternalCreateSubscriber(w http.ResponseWriter, r *http.Request) {
	project, ok := middleware.ProjectFrom(r.Context())
	if !ok {
		httperr.WriteUnauthorized(w, r)
		return
	}

	var in externalSubscribeRequest
	if err := decodeStrict(r, &in); err != nil {
		badRequest(w, r)
		return
	}

	sub, err := h.Svc.CreateExternalSubscriber(r.Context(), project.ID, in.Email, in.Name)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, subscriberFromModel(sub))
}

// ExternalListSubscribers читает подписчиков по внешнему API.
// Требует private-тир (проверен RequireTier-мидлваром).
func (h *Handlers) ExternalListSubscribers(w http.ResponseWriter, r *http.Request) {
	project, ok := middleware.ProjectFrom(r.Context())
	if !ok {
		httperr.WriteUnauthorized(w, r)
		return
	}

	subs, err := h.Svc.ListExternalSubscribers(r.Context(), project.ID)
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
