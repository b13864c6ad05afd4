package models

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken — персистентная запись refresh-токена (одна на устройство/сессию).
//
// В БД хранится только sha256-хэш токена; сам токен клиент держит в cookie.
// При ротации поля TokenHash/ExpiresAt перезаписываются на месте.
type RefreshToken struct {
	TokenHash string
	UserID    uuid.UUID
	UserAgent string
	ExpiresAt time.Time
	Revoked   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
