package models

import (
	"time"

	"github.com/google/uuid"
)

// AuthMethod — способ аутентификации пользователя.
type AuthMethod string

const (
	AuthMethodEmail  AuthMethod = "email"
	AuthMethodGoogle AuthMethod = "google"
	AuthMethodGithub AuthMethod = "github"
)

// Plan — тарифный план аккаунта.
type Plan string

const (
	PlanFree       Plan = "free"
	PlanPro        Plan = "pro"
	PlanEnterprise Plan = "enterprise"
)

// User — модель пользователя в системе.
//
// PasswordHash пустой для OAuth-only аккаунтов (AuthMethod != email).
type User struct {
	ID           uuid.UUID
	Email        string
	Name         string
	PasswordHash string
	ProviderID   string
	AvatarURL    string
	AuthMethod   AuthMethod
	Role         string
	Plan         Plan
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
