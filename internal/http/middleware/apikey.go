package middleware

import (
	"context"
	"net/http"

	"github.com/TreasureUzoma/lettera/internal/http/httperr"
	"github.com/TreasureUzoma/lettera/internal/models"
	"github.com/TreasureUzoma/lettera/internal/service"
)

// Заголовки внешнего API.
const (
	HeaderPublicKey  = "x-lettera-public-key"
	HeaderPrivateKey = "x-lettera-private-key"
)

// APIKey аутентифицирует внешний вызов по заголовкам ключей проекта.
// Проект и уровень доверия кладутся в контекст (ProjectFrom/TierFrom);
// какие операции доступны какому уровню, решают хендлеры через RequireTier.
func APIKey(svc *service.Service) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			publicKey := r.Header.Get(HeaderPublicKey)
			privateKey := r.Header.Get(HeaderPrivateKey)

			if publicKey == "" {
				httperr.WriteUnauthorized(w, r)
				return
			}

			project, tier, err := svc.AuthenticateAPIKey(r.Context(), publicKey, privateKey)
			if err != nil {
				httperr.WriteError(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), ctxProject, project)
			ctx = context.WithValue(ctx, ctxKeyTier, tier)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireTier отсекает вызовы с недостаточным уровнем доверия ключа.
// Ключ при этом валиден, поэтому отказ — 403, не 401.
func RequireTier(tier models.KeyTier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, ok := TierFrom(r.Context())
			if !ok || (tier == models.KeyTierPrivate && got != models.KeyTierPrivate) {
				httperr.WriteError(w, r, service.ErrPermissionDenied)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
