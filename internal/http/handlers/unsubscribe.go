package handlers

import (
	"net/http"

	"github.com/TreasureUzoma/lettera/internal/http/httperr"
)

type unsubscribeRequest struct {
	Project string `json:"project"`
	Email   string `json:"email"`
}

// RequestUnsubscribe выпускает токен отписки для существующего подписчика.
// Доставка ссылки почтой — вне этого сервиса, поэтому токен возвращается
// вызывающему слою доставки.
func (h *Handlers) RequestUnsubscribe(w http.ResponseWriter, r *http.Request) {
	var in unsubscribeRequest
	if err := decodeStrict(r, &in); err != nil {
		badRequest(w, r)
		return
	}

	token, err := h.Svc.RequestUnsubscribe(r.Context(), in.Project, in.Email)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// ConfirmUnsubscribe — переход по ссылке из письма: ?token=...
func (h *Handlers) ConfirmUnsubscribe(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		badRequest(w, r)
		return
	}

	if err := h.Svc.ConfirmUnsubscribe(r.Context(), token); err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "unsubscribed"})
}
