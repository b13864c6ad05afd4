// storage задаёт контракт работы с реляционным хранилищем.
//
// Ошибки классифицируются структурно (sentinel-значения ниже), а не по
// тексту: реализация обязана маппить коды СУБД (unique violation и т.п.)
// на ErrAlreadyExists/ErrNotFound, чтобы вызывающий код никогда не
// разбирал строки сообщений.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/TreasureUzoma/lettera/internal/models"
	"github.com/google/uuid"
)

var (
	// ErrNotFound — запись не найдена.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists — нарушение уникальности (email/slug/public key/…).
	ErrAlreadyExists = errors.New("already exists")
)

// UserStorage выполняет операции над пользователями.
type UserStorage interface {
	// SaveUser создаёт нового пользователя.
	SaveUser(ctx context.Context, user *models.User) error
	// UserByEmail находит пользователя по email.
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	// UserByID находит пользователя по ID.
	UserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	// UpdateUser обновляет изменяемые поля профиля.
	UpdateUser(ctx context.Context, user *models.User) error
}

// RefreshTokenStorage выполняет операции над refresh-токенами.
// Все методы принимают/возвращают sha256-хэш токена, не сам токен.
type RefreshTokenStorage interface {
	// SaveRefreshToken сохраняет новую запись (логин/регистрация/OAuth).
	SaveRefreshToken(ctx context.Context, token *models.RefreshToken) error
	// RefreshTokenByHash находит запись по хэшу токена.
	RefreshTokenByHash(ctx context.Context, hash string) (*models.RefreshToken, error)
	// RotateRefreshToken перезаписывает токен и срок на месте одной строкой,
	// ключуясь по старому хэшу. ErrNotFound, если старый хэш уже не в строке
	// (параллельная ротация или revoke выиграли гонку).
	RotateRefreshToken(ctx context.Context, oldHash, newHash string, expiresAt time.Time) error
	// RevokeRefreshTokensByUser отзывает все сессии пользователя (logout).
	RevokeRefreshTokensByUser(ctx context.Context, userID uuid.UUID) error
	// DeleteExpiredTokens удаляет просроченные записи.
	DeleteExpiredTokens(ctx context.Context, now time.Time) error
}

// ProjectStorage выполняет операции над проектами и членствами.
type ProjectStorage interface {
	// SaveProject создаёт проект и членство owner для создателя одной транзакцией.
	SaveProject(ctx context.Context, project *models.Project, ownerID uuid.UUID) error
	// ProjectByID находит проект по ID.
	ProjectByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
	// ProjectBySlug находит проект по slug (без учёта регистра).
	ProjectBySlug(ctx context.Context, slug string) (*models.Project, error)
	// ProjectsByUser возвращает проекты, где пользователь состоит участником.
	ProjectsByUser(ctx context.Context, userID uuid.UUID) ([]models.Project, error)
	// UpdateProject обновляет name/description/is_active.
	UpdateProject(ctx context.Context, project *models.Project) error
	// DeleteProject удаляет проект (каскадно — членства, ключи, подписчиков).
	DeleteProject(ctx context.Context, id uuid.UUID) error

	// SaveMembership создаёт членство.
	SaveMembership(ctx context.Context, m *models.Membership) error
	// MembershipByProjectUser находит членство пары (проект, пользователь).
	MembershipByProjectUser(ctx context.Context, projectID, userID uuid.UUID) (*models.Membership, error)
	// UpdateMembershipRole меняет роль участника.
	UpdateMembershipRole(ctx context.Context, projectID, userID uuid.UUID, role models.ProjectRole) error
	// MembersByProject возвращает всех участников проекта.
	MembersByProject(ctx context.Context, projectID uuid.UUID) ([]models.Membership, error)
}

// APIKeyStorage выполняет операции над API-ключами проектов.
type APIKeyStorage interface {
	// SaveAPIKey сохраняет новую пару ключей (секрет уже зашифрован).
	SaveAPIKey(ctx context.Context, key *models.ProjectAPIKey) error
	// APIKeyByPublicKey находит запись по публичному ключу.
	APIKeyByPublicKey(ctx context.Context, publicKey string) (*models.ProjectAPIKey, error)
	// APIKeysByProject возвращает ключи проекта.
	APIKeysByProject(ctx context.Context, projectID uuid.UUID) ([]models.ProjectAPIKey, error)
	// TouchAPIKey обновляет last_used_at (best-effort, вызывается фоном).
	TouchAPIKey(ctx context.Context, id uuid.UUID, usedAt time.Time) error
	// RevokeAPIKey проставляет revoked_at.
	RevokeAPIKey(ctx context.Context, id uuid.UUID, revokedAt time.Time) error
}

// SubscriberStorage выполняет операции над подписчиками.
type SubscriberStorage interface {
	// SaveSubscriber создаёт подписчика.
	SaveSubscriber(ctx context.Context, sub *models.Subscriber) error
	// SubscriberByProjectEmail находит подписчика пары (проект, email).
	SubscriberByProjectEmail(ctx context.Context, projectID uuid.UUID, email string) (*models.Subscriber, error)
	// SubscribersByProject возвращает подписчиков проекта.
	SubscribersByProject(ctx context.Context, projectID uuid.UUID) ([]models.Subscriber, error)
	// UpdateSubscriberStatus меняет статус подписки.
	UpdateSubscriberStatus(ctx context.Context, projectID uuid.UUID, email string, status models.SubscriberStatus) error
}

// PostStorage выполняет операции над выпусками рассылок.
// Body передаётся уже зашифрованным (см. internal/vault).
type PostStorage interface {
	// SavePost создаёт выпуск.
	SavePost(ctx context.Context, post *models.Post) error
	// PostByID находит выпуск по ID.
	PostByID(ctx context.Context, id uuid.UUID) (*models.Post, error)
	// PostsByProject возвращает выпуски проекта.
	PostsByProject(ctx context.Context, projectID uuid.UUID) ([]models.Post, error)
	// UpdatePost обновляет subject/body/status.
	UpdatePost(ctx context.Context, post *models.Post) error
	// DeletePost удаляет выпуск.
	DeletePost(ctx context.Context, id uuid.UUID) error
}

// Storage задаёт контракт работы с БД.
type Storage interface {
	UserStorage
	RefreshTokenStorage
	ProjectStorage
	APIKeyStorage
	SubscriberStorage
	PostStorage
	Close()
}
