package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/TreasureUzoma/lettera/internal/models"
	"github.com/TreasureUzoma/lettera/internal/pkg/log"
	"github.com/TreasureUzoma/lettera/internal/storage"
	"github.com/TreasureUzoma/lettera/internal/vault"
	"github.com/google/uuid"
)

// Формат публичного ключа: движимая часть — hex от 16 случайных байт.
const (
	publicKeyPrefix = "letr_"
	secretKeyPrefix = "lk_"

	publicKeyMinLen = 16
	publicKeyMaxLen = 40

	touchTimeout = 3 * time.Second
)

// AuthenticateAPIKey аутентифицирует внешний вызов по паре заголовков
// x-lettera-public-key / x-lettera-private-key.
//
// Порядок проверок:
//  1. формат публичного ключа — до любого похода в хранилище: мусорный
//     ключ отсекается бесплатно;
//  2. запись по публичному ключу, проверка отзыва;
//  3. при наличии секретного заголовка — расшифровка хранимого секрета и
//     сравнение за постоянное время; совпадение поднимает уровень доверия
//     до private.
//
// Наружу все отказы неразличимы (ErrInvalidAPIKey); конкретная причина
// остаётся в логах. Успешный вызов асинхронно обновляет last_used_at.
func (s *Service) AuthenticateAPIKey(ctx context.Context, publicKey, privateKey string) (*models.Project, models.KeyTier, error) {
	const op = "service.apikey.AuthenticateAPIKey"

	if !validPublicKeyFormat(publicKey) {
		return nil, "", fmt.Errorf("%s: bad public key format: %w", op, ErrInvalidAPIKey)
	}

	key, err := s.storage.APIKeyByPublicKey(ctx, publicKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, "", fmt.Errorf("%s: %w", op, ErrInvalidAPIKey)
		}

		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	if key.RevokedAt != nil {
		return nil, "", fmt.Errorf("%s: key revoked: %w", op, ErrInvalidAPIKey)
	}

	tier := models.KeyTierPublic
	if privateKey != "" {
		secret, err := s.vault.Decrypt(key.EncryptedSecretKey)
		if err != nil {
			// Шифртекст и ключ статичны, повтор не поможет — это порча
			// данных или ротация ключа шифрования без перешифровки.
			if errors.Is(err, vault.ErrAuthentication) {
				return nil, "", fmt.Errorf("%s: %w", op, ErrIntegrity)
			}

			return nil, "", fmt.Errorf("%s: %w", op, err)
		}

		if subtle.ConstantTimeCompare([]byte(secret), []byte(privateKey)) != 1 {
			return nil, "", fmt.Errorf("%s: secret mismatch: %w", op, ErrInvalidAPIKey)
		}

		tier = models.KeyTierPrivate
	}

	project, err := s.storage.ProjectByID(ctx, key.ProjectID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, "", fmt.Errorf("%s: %w", op, ErrInvalidAPIKey)
		}

		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	// Отметка использования — best-effort в фоне: её провал не должен
	// ни задержать, ни завалить сам вызов.
	s.touchAPIKeyAsync(ctx, key.ID)

	return project, tier, nil
}

// touchAPIKeyAsync обновляет last_used_at в отдельной горутине,
// отвязанной от отмены запроса.
func (s *Service) touchAPIKeyAsync(ctx context.Context, keyID uuid.UUID) {
	logger := log.From(ctx)
	bg := context.WithoutCancel(ctx)

	go func() {
		ctx, cancel := context.WithTimeout(bg, touchTimeout)
		defer cancel()

		if err := s.storage.TouchAPIKey(ctx, keyID, time.Now().UTC()); err != nil {
			logger.Warn("failed to touch api key",
				"key_id", keyID.String(),
				"error", err.Error())
		}
	}()
}

// CreateAPIKey создаёт новую пару ключей проекта. Секретный ключ
// возвращается открытым текстом ровно один раз; в БД попадает только
// шифртекст.
//
// Требуемая роль: owner или admin.
func (s *Service) CreateAPIKey(ctx context.Context, userID uuid.UUID, projectRef string) (*models.ProjectAPIKey, string, error) {
	const op = "service.apikey.CreateAPIKey"

	project, _, err := s.ResolveProject(ctx, userID, projectRef, models.RoleOwner, models.RoleAdmin)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	publicKey, secretKey, err := generateAPIKeyPair()
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	encrypted, err := s.vault.Encrypt(secretKey)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	key := &models.ProjectAPIKey{
		ID:                 uuid.New(),
		ProjectID:          project.ID,
		PublicKey:          publicKey,
		EncryptedSecretKey: encrypted,
		CreatedAt:          time.Now().UTC(),
	}

	if err := s.storage.SaveAPIKey(ctx, key); err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	return key, secretKey, nil
}

// ListAPIKeys возвращает ключи проекта (секреты — только шифртекстом).
// Требуемая роль: owner или admin.
func (s *Service) ListAPIKeys(ctx context.Context, userID uuid.UUID, projectRef string) ([]models.ProjectAPIKey, error) {
	const op = "service.apikey.ListAPIKeys"

	project, _, err := s.ResolveProject(ctx, userID, projectRef, models.RoleOwner, models.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	keys, err := s.storage.APIKeysByProject(ctx, project.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return keys, nil
}

// RevokeAPIKey отзывает ключ проекта. Требуемая роль: owner или admin.
func (s *Service) RevokeAPIKey(ctx context.Context, userID uuid.UUID, projectRef string, keyID uuid.UUID) error {
	const op = "service.apikey.RevokeAPIKey"

	project, _, err := s.ResolveProject(ctx, userID, projectRef, models.RoleOwner, models.RoleAdmin)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	// Ключ должен принадлежать именно этому проекту: id ключа из чужого
	// проекта не отзывается через чужой ref.
	key, err := s.apiKeyOfProject(ctx, project.ID, keyID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.storage.RevokeAPIKey(ctx, key.ID, time.Now().UTC()); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Service) apiKeyOfProject(ctx context.Context, projectID, keyID uuid.UUID) (*models.ProjectAPIKey, error) {
	keys, err := s.storage.APIKeysByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	for i := range keys {
		if keys[i].ID == keyID {
			return &keys[i], nil
		}
	}

	return nil, ErrNotFound
}

// validPublicKeyFormat — быстрая структурная проверка публичного ключа.
func validPublicKeyFormat(key string) bool {
	return strings.HasPrefix(key, publicKeyPrefix) &&
		len(key) >= publicKeyMinLen &&
		len(key) <= publicKeyMaxLen
}

// generateAPIKeyPair генерирует пару ключей: публичный идентификатор и
// одноразово показываемый секрет.
func generateAPIKeyPair() (publicKey, secretKey string, err error) {
	const op = "service.apikey.generateAPIKeyPair"

	pub := make([]byte, 16)
	if _, err := rand.Read(pub); err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}

	sec := make([]byte, 32)
	if _, err := rand.Read(sec); err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}

	return publicKeyPrefix + hex.EncodeToString(pub), secretKeyPrefix + hex.EncodeToString(sec), nil
}
