package models

import (
	"time"

	"github.com/google/uuid"
)

// KeyTier — уровень доверия внешнего вызова по API-ключу.
type KeyTier string

const (
	// KeyTierPublic — предъявлен только публичный ключ: разрешено только создание подписчиков.
	KeyTierPublic KeyTier = "public"
	// KeyTierPrivate — предъявлен и секретный ключ: полный набор операций, включая чтение списков.
	KeyTierPrivate KeyTier = "private"
)

// ProjectAPIKey — пара ключей внешнего API проекта.
//
// PublicKey хранится открыто и служит идентификатором; секретный ключ
// генерируется один раз, отдаётся клиенту и хранится только как шифртекст.
type ProjectAPIKey struct {
	ID                 uuid.UUID
	ProjectID          uuid.UUID
	PublicKey          string
	EncryptedSecretKey string
	LastUsedAt         *time.Time
	CreatedAt          time.Time
	RevokedAt          *time.Time
}
