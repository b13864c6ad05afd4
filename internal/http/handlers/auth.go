package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/TreasureUzoma/lettera/internal/http/httperr"
	"github.com/TreasureUzoma/lettera/internal/http/middleware"
)

type signupRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type oauthCallbackRequest struct {
	Code string `json:"code"`
}

// Signup регистрирует пользователя и сразу открывает сессию:
// обе cookie выставляются в этом же ответе.
func (h *Handlers) Signup(w http.ResponseWriter, r *http.Request) {
	var in signupRequest
	if err := decodeStrict(r, &in); err != nil {
		badRequest(w, r)
		return
	}

	identity, pair, err := h.Svc.SignupUser(r.Context(), in.Email, in.Name, in.Password, r.UserAgent())
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	h.setSessionCookies(w, pair)
	writeJSON(w, http.StatusCreated, identityPayload(identity))
}

// Login выполняет вход по email+пароль.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := decodeStrict(r, &in); err != nil {
		badRequest(w, r)
		return
	}

	identity, pair, err := h.Svc.LoginUser(r.Context(), in.Email, in.Password, r.UserAgent())
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	h.setSessionCookies(w, pair)
	writeJSON(w, http.StatusOK, identityPayload(identity))
}

// OAuthCallback обменивает authorization code провайдера на сессию.
// Провайдер берётся из пути: /auth/{provider}/callback.
func (h *Handlers) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")

	var in oauthCallbackRequest
	if err := decodeStrict(r, &in); err != nil || in.Code == "" {
		badRequest(w, r)
		return
	}

	identity, pair, err := h.Svc.OAuthLogin(r.Context(), provider, in.Code, r.UserAgent())
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	h.setSessionCookies(w, pair)
	writeJSON(w, http.StatusOK, identityPayload(identity))
}

// Logout отзывает все refresh-токены пользователя и чистит cookie.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		httperr.WriteUnauthorized(w, r)
		return
	}

	if err := h.Svc.Logout(r.Context(), identity.UserID); err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	h.clearSessionCookies(w)
	w.WriteHeader(http.StatusNoContent)
}

// Session возвращает текущего пользователя; вся работа (включая тихую
// ротацию) уже сделана session-мидлваром.
func (h *Handlers) Session(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		httperr.WriteUnauthorized(w, r)
		return
	}

	writeJSON(w, http.StatusOK, identityPayload(identity))
}
