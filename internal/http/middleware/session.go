package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/TreasureUzoma/lettera/internal/http/cookies"
	"github.com/TreasureUzoma/lettera/internal/http/httperr"
	"github.com/TreasureUzoma/lettera/internal/service"
)

// Session аутентифицирует запрос по сессионным cookie.
//
// Машина состояний:
//  1. валидная access-cookie — пропускаем без похода в БД;
//  2. иначе — refresh-cookie: тихая ротация (проверка записи в БД,
//     перевыпуск пары) и обе cookie переустанавливаются в этом же ответе;
//  3. иначе — 401, обе cookie стираются.
//
// Хендлеры ниже по цепочке достают пользователя через IdentityFrom.
func Session(svc *service.Service, jar *cookies.Jar) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token, ok := jar.Read(r, cookies.AccessCookie); ok {
				if identity, err := svc.Authenticate(token); err == nil {
					next.ServeHTTP(w, withIdentity(r, identity))
					return
				}
			}

			refresh, ok := jar.Read(r, cookies.RefreshCookie)
			if !ok {
				httperr.WriteUnauthorized(w, r)
				return
			}

			identity, pair, err := svc.RefreshSession(r.Context(), refresh)
			if err != nil {
				// Мёртвая сессия: чистим cookie, чтобы клиент не долбил
				// сервер заведомо невалидной парой. Любой сбой ротации,
				// включая ошибку хранилища, наружу выглядит как 401:
				// middleware аутентификации не отвечает пятисотыми.
				jar.Clear(w, cookies.AccessCookie)
				jar.Clear(w, cookies.RefreshCookie)
				httperr.WriteUnauthorized(w, r)
				return
			}

			jar.Set(w, cookies.AccessCookie, pair.AccessToken, time.Until(pair.AccessExpiresAt))
			jar.Set(w, cookies.RefreshCookie, pair.RefreshToken, time.Until(pair.RefreshExpiresAt))

			next.ServeHTTP(w, withIdentity(r, identity))
		})
	}
}

func withIdentity(r *http.Request, identity service.Identity) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), ctxIdentity, identity))
}
