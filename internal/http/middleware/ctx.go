package middleware

import (
	"context"

	"github.com/TreasureUzoma/lettera/internal/models"
	"github.com/TreasureUzoma/lettera/internal/service"
)

type ctxKey int

const (
	ctxRequestID ctxKey = iota
	ctxIdentity
	ctxProject
	ctxKeyTier
)

// RequestIDFrom достаёт X-Request-Id из контекста.
func RequestIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxRequestID).(string)
	return id, ok
}

// IdentityFrom достаёт аутентифицированного пользователя (после Session).
func IdentityFrom(ctx context.Context) (service.Identity, bool) {
	id, ok := ctx.Value(ctxIdentity).(service.Identity)
	return id, ok
}

// ProjectFrom достаёт проект внешнего вызова (после APIKey).
func ProjectFrom(ctx context.Context) (*models.Project, bool) {
	p, ok := ctx.Value(ctxProject).(*models.Project)
	return p, ok
}

// TierFrom достаёт уровень доверия API-ключа (после APIKey).
func TierFrom(ctx context.Context) (models.KeyTier, bool) {
	t, ok := ctx.Value(ctxKeyTier).(models.KeyTier)
	return t, ok
}
