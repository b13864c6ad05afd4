package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/TreasureUzoma/lettera/internal/models"
	"github.com/TreasureUzoma/lettera/internal/storage"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// SaveSubscriber создаёт подписчика.
func (s *Storage) SaveSubscriber(ctx context.Context, sub *models.Subscriber) error {
	const op = "storage.postgres.SaveSubscriber"

	query := `
		INSERT INTO subscribers(id, project_id, email, name, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := s.db.Exec(ctx, query,
		sub.ID,
		sub.ProjectID,
		sub.Email,
		sub.Name,
		sub.Status,
		sub.CreatedAt,
		sub.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgerrcode.UniqueViolation:
				return fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
			case pgerrcode.ForeignKeyViolation:
				return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
			}
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// SubscriberByProjectEmail находит подписчика пары (проект, email).
func (s *Storage) SubscriberByProjectEmail(ctx context.Context, projectID uuid.UUID, email string) (*models.Subscriber, error) {
	const op = "storage.postgres.SubscriberByProjectEmail"

	query := `
		SELECT id, project_id, email, name, status, created_at, updated_at
		FROM subscribers
		WHERE project_id = $1 AND email = $2
	`

	var sub models.Subscriber
	err := s.db.QueryRow(ctx, query, projectID, email).Scan(
		&sub.ID,
		&sub.ProjectID,
		&sub.Email,
		&sub.Name,
		&sub.Status,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &sub, nil
}

// SubscribersByProject возвращает подписчиков проекта.
func (s *Storage) SubscribersByProject(ctx context.Context, projectID uuid.UUID) ([]models.Subscriber, error) {
	const op = "storage.postgres.SubscribersByProject"

	query := `
		SELECT id, project_id, email, name, status, created_at, updated_at
		FROM subscribers
		WHERE project_id = $1
		ORDER BY created_at DESC
	`

	rows, err := s.db.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []models.Subscriber
	for rows.Next() {
		var sub models.Subscriber
		err := rows.Scan(
			&sub.ID,
			&sub.ProjectID,
			&sub.Email,
			&sub.Name,
			&sub.Status,
			&sub.CreatedAt,
			&sub.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, sub)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// UpdateSubscriberStatus меняет статус подписки.
func (s *Storage) UpdateSubscriberStatus(ctx context.Context, projectID uuid.UUID, email string, status models.SubscriberStatus) error {
	const op = "storage.postgres.UpdateSubscriberStatus"

	query := `
		UPDATE subscribers
		SET status = $3, updated_at = now()
		WHERE project_id = $1 AND email = $2
	`

	cmdTag, err := s.db.Exec(ctx, query, projectID, email, status)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}
