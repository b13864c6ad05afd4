package models

import (
	"time"

	"github.com/google/uuid"
)

// PostStatus — статус выпуска рассылки.
type PostStatus string

const (
	PostDraft     PostStatus = "draft"
	PostPublished PostStatus = "published"
)

// Post — выпуск рассылки проекта.
//
// Body — открытый текст на уровне приложения; в БД колонка encrypted_body
// хранит шифртекст (см. internal/vault).
type Post struct {
	ID        uuid.UUID
	ProjectID uuid.UUID
	Subject   string
	Body      string
	Status    PostStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}
