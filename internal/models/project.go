package models

import (
	"time"

	"github.com/google/uuid"
)

// ProjectRole — роль участника внутри проекта (не путать с глобальной ролью аккаунта).
type ProjectRole string

const (
	RoleOwner  ProjectRole = "owner"
	RoleAdmin  ProjectRole = "admin"
	RoleEditor ProjectRole = "editor"
	RoleViewer ProjectRole = "viewer"
)

// Valid сообщает, входит ли роль в известный набор.
func (r ProjectRole) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleEditor, RoleViewer:
		return true
	}

	return false
}

// Project — проект (рассылка) как единица мультиарендности.
type Project struct {
	ID          uuid.UUID
	Name        string
	Slug        string
	Description string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Membership — членство пользователя в проекте; пара (ProjectID, UserID) уникальна.
type Membership struct {
	ProjectID uuid.UUID
	UserID    uuid.UUID
	Role      ProjectRole
	JoinedAt  time.Time
}
