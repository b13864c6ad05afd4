package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/TreasureUzoma/lettera/internal/models"
	"github.com/TreasureUzoma/lettera/internal/storage"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// SaveAPIKey сохраняет новую пару ключей (секрет уже зашифрован vault-ом).
func (s *Storage) SaveAPIKey(ctx context.Context, key *models.ProjectAPIKey) error {
	const op = "storage.postgres.SaveAPIKey"

	query := `
		INSERT INTO project_api_keys(id, project_id, public_key, encrypted_secret_key, last_used_at, created_at, revoked_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := s.db.Exec(ctx, query,
		key.ID,
		key.ProjectID,
		key.PublicKey,
		key.EncryptedSecretKey,
		key.LastUsedAt,
		key.CreatedAt,
		key.RevokedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// APIKeyByPublicKey находит запись по публичному ключу.
func (s *Storage) APIKeyByPublicKey(ctx context.Context, publicKey string) (*models.ProjectAPIKey, error) {
	const op = "storage.postgres.APIKeyByPublicKey"

	query := `
		SELECT id, project_id, public_key, encrypted_secret_key, last_used_at, created_at, revoked_at
		FROM project_api_keys
		WHERE public_key = $1
	`

	var key models.ProjectAPIKey
	err := s.db.QueryRow(ctx, query, publicKey).Scan(
		&key.ID,
		&key.ProjectID,
		&key.PublicKey,
		&key.EncryptedSecretKey,
		&key.LastUsedAt,
		&key.CreatedAt,
		&key.RevokedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &key, nil
}

// APIKeysByProject возвращает ключи проекта (включая отозванные).
func (s *Storage) APIKeysByProject(ctx context.Context, projectID uuid.UUID) ([]models.ProjectAPIKey, error) {
	const op = "storage.postgres.APIKeysByProject"

	query := `
		SELECT id, project_id, public_key, encrypted_secret_key, last_used_at, created_at, revoked_at
		FROM project_api_keys
		WHERE project_id = $1
		ORDER BY created_at DESC
	`

	rows, err := s.db.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []models.ProjectAPIKey
	for rows.Next() {
		var key models.ProjectAPIKey
		err := rows.Scan(
			&key.ID,
			&key.ProjectID,
			&key.PublicKey,
			&key.EncryptedSecretKey,
			&key.LastUsedAt,
			&key.CreatedAt,
			&key.RevokedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, key)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// TouchAPIKey обновляет last_used_at. Вызывается фоном после успешной
// аутентификации; сбой здесь не должен влиять на запрос.
func (s *Storage) TouchAPIKey(ctx context.Context, id uuid.UUID, usedAt time.Time) error {
	const op = "storage.postgres.TouchAPIKey"

	query := `
		UPDATE project_api_keys
		SET last_used_at = $2
		WHERE id = $1
	`

	_, err := s.db.Exec(ctx, query, id, usedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// RevokeAPIKey проставляет revoked_at; повторный revoke — no-op.
func (s *Storage) RevokeAPIKey(ctx context.Context, id uuid.UUID, revokedAt time.Time) error {
	const op = "storage.postgres.RevokeAPIKey"

	query := `
		UPDATE project_api_keys
		SET revoked_at = $2
		WHERE id = $1 AND revoked_at IS NULL
	`

	cmdTag, err := s.db.Exec(ctx, query, id, revokedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if cmdTag.RowsAffected() == 0 {
		// Либо ключа нет, либо он уже отозван — различие вызывающему не важно.
		var exists bool
		if err := s.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM project_api_keys WHERE id = $1)`, id).Scan(&exists); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if !exists {
			return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}
	}

	return nil
}
