package handlers

import (
	"net/http"

	"github.com/TreasureUzoma/lettera/internal/http/httperr"
	"github.com/TreasureUzoma/lettera/internal/http/middleware"
)

type updateProfileRequest struct {
	Name      *string `json:"name"`
	AvatarURL *string `json:"avatar_url"`
}

func (h *Handlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		httperr.WriteUnauthorized(w, r)
		return
	}

	user, err := h.Svc.Profile(r.Context(), identity.UserID)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, userFromModel(user))
}

func (h *Handlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		httperr.WriteUnauthorized(w, r)
		return
	}

	var in updateProfileRequest
	if err := decodeStrict(r, &in); err != nil {
		badRequest(w, r)
		return
	}

	user, err := h.Svc.UpdateProfile(r.Context(), identity.UserID, in.Name, in.AvatarURL)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, userFromModel(user))
}
