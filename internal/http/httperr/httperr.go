// httperr стандартизирует ответы об ошибках HTTP-слоя.
// На вход он принимает доменную ошибку сервисного слоя, а на выход даёт:
//   - корректный HTTP-статус;
//   - краткое безопасное message без утечки деталей.
//
// Все отказы аутентификации схлопываются в один 401 с одинаковым текстом:
// различие «нет пользователя» / «неверный пароль» / «токен отозван» —
// информация для атакующего, а не для клиента.
package httperr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/TreasureUzoma/lettera/internal/service"
)

// ErrBadRequest — ошибка разбора тела/параметров на HTTP-слое,
// до сервисного вызова. HTTP 400.
var ErrBadRequest = errors.New("bad request")

// APIError — единый формат для фронта.
// Code — короткий стабильный код для машиночитаемой обработки на FE.
// Message — безопасное человекочитаемое описание.
// RequestID — прокидывается из X-Request-Id, если есть (для трассировки).
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorResponse — корневой объект в ответе.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// ToHTTP конвертирует доменную ошибку в HTTP-статус и унифицированный ответ.
//
// err == nil — программная ошибка вызова: возвращаем 500/internal, чтобы
// не послать "200 OK" с телом ошибки и не замаскировать баг.
func ToHTTP(err error) (int, ErrorResponse) {
	status, code, msg := classify(err)

	return status, ErrorResponse{
		Error: APIError{
			Code:    code,
			Message: msg,
		},
	}
}

// WriteError — хелпер для HTTP-хендлеров.
// Пишет корректный статус/тело, добавляет request_id из заголовка, если он есть.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := ToHTTP(err)

	if rid := r.Header.Get("X-Request-Id"); rid != "" {
		resp.Error.RequestID = rid
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// WriteUnauthorized пишет общий 401 — для случаев, когда доменной ошибки
// ещё нет (нет cookie/заголовка вовсе).
func WriteUnauthorized(w http.ResponseWriter, r *http.Request) {
	WriteError(w, r, service.ErrInvalidToken)
}

// WriteRateLimited пишет 429 для сработавшего лимитера.
func WriteRateLimited(w http.ResponseWriter, r *http.Request) {
	resp := ErrorResponse{
		Error: APIError{
			Code:    "rate_limited",
			Message: "too many requests",
		},
	}
	if rid := r.Header.Get("X-Request-Id"); rid != "" {
		resp.Error.RequestID = rid
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(resp)
}

// classify — маппинг доменных sentinel-ошибок на HTTP/FE-код/сообщение.
func classify(err error) (int, string, string) {
	switch {
	case err == nil:
		return http.StatusInternalServerError, "internal", "internal error"

	// 401: единый код и текст для всего семейства отказов аутентификации.
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, service.ErrTokenExpired),
		errors.Is(err, service.ErrTokenRevoked),
		errors.Is(err, service.ErrInvalidAPIKey):
		return http.StatusUnauthorized, "unauthenticated", "unauthenticated"

	case errors.Is(err, service.ErrPermissionDenied):
		return http.StatusForbidden, "permission_denied", "permission denied"

	case errors.Is(err, service.ErrProjectNotFound),
		errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, "not_found", "not found"

	case errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrSlugTaken),
		errors.Is(err, service.ErrAlreadyExists):
		return http.StatusConflict, "already_exists", "already exists"

	case errors.Is(err, service.ErrInvalidEmail):
		return http.StatusBadRequest, "invalid_argument", "invalid email format"
	case errors.Is(err, service.ErrWeakPassword):
		return http.StatusBadRequest, "invalid_argument", "password is too weak"
	case errors.Is(err, service.ErrEmptyPassword):
		return http.StatusBadRequest, "invalid_argument", "password is empty"
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, service.ErrInvalidSlug),
		errors.Is(err, service.ErrInvalidName),
		errors.Is(err, service.ErrInvalidPost),
		errors.Is(err, service.ErrOwnerTransfer):
		return http.StatusBadRequest, "invalid_argument", "invalid argument"

	default:
		// ErrIntegrity и прочие внутренние сбои наружу неразличимы.
		return http.StatusInternalServerError, "internal", "internal error"
	}
}
