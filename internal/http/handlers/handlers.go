package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/TreasureUzoma/lettera/internal/http/cookies"
	"github.com/TreasureUzoma/lettera/internal/http/httperr"
	"github.com/TreasureUzoma/lettera/internal/models"
	"github.com/TreasureUzoma/lettera/internal/service"
)

// Handlers агрегирует зависимости HTTP-слоя.
type Handlers struct {
	Svc *service.Service
	Jar *cookies.Jar
}

func New(svc *service.Service, jar *cookies.Jar) *Handlers {
	return &Handlers{Svc: svc, Jar: jar}
}

// writeJSON — единый ответ JSON с нужным Content-Type.
// Ошибки выводим через httperr.WriteError.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// decodeStrict — строгий JSON-декодер: запрещаем неизвестные поля.
func decodeStrict(r *http.Request, value any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(value)
}

// setSessionCookies переустанавливает обе сессионные cookie из свежей пары.
func (h *Handlers) setSessionCookies(w http.ResponseWriter, pair models.TokenPair) {
	h.Jar.Set(w, cookies.AccessCookie, pair.AccessToken, time.Until(pair.AccessExpiresAt))
	h.Jar.Set(w, cookies.RefreshCookie, pair.RefreshToken, time.Until(pair.RefreshExpiresAt))
}

// clearSessionCookies стирает обе сессионные cookie.
func (h *Handlers) clearSessionCookies(w http.ResponseWriter) {
	h.Jar.Clear(w, cookies.AccessCookie)
	h.Jar.Clear(w, cookies.RefreshCookie)
}

// userPayload — представление пользователя в ответах.
type userPayload struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name,omitempty"`
	Avatar string `json:"avatar_url,omitempty"`
	Plan   string `json:"plan"`
}

func identityPayload(id service.Identity) userPayload {
	return userPayload{
		ID:    id.UserID.String(),
		Email: id.Email,
		Name:  id.Name,
		Plan:  string(id.Plan),
	}
}

func userFromModel(u *models.User) userPayload {
	return userPayload{
		ID:     u.ID.String(),
		Email:  u.Email,
		Name:   u.Name,
		Avatar: u.AvatarURL,
		Plan:   string(u.Plan),
	}
}

// badRequest — локальная ошибка парсинга тела/параметров.
func badRequest(w http.ResponseWriter, r *http.Request) {
	httperr.WriteError(w, r, httperr.ErrBadRequest)
}
