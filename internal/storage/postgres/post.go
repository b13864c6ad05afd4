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

// SavePost создаёт выпуск. Body уже содержит шифртекст (см. internal/vault),
// хранилище пишет его в encrypted_body как есть.
func (s *Storage) SavePost(ctx context.Context, post *models.Post) error {
	const op = "storage.postgres.SavePost"

	query := `
		INSERT INTO posts(id, project_id, subject, encrypted_body, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := s.db.Exec(ctx, query,
		post.ID,
		post.ProjectID,
		post.Subject,
		post.Body,
		post.Status,
		post.CreatedAt,
		post.UpdatedAt,
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

// PostByID находит выпуск по ID.
func (s *Storage) PostByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	const op = "storage.postgres.PostByID"

	query := `
		SELECT id, project_id, subject, encrypted_body, status, created_at, updated_at
		FROM posts
		WHERE id = $1
	`

	var post models.Post
	err := s.db.QueryRow(ctx, query, id).Scan(
		&post.ID,
		&post.ProjectID,
		&post.Subject,
		&post.Body,
		&post.Status,
		&post.CreatedAt,
		&post.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &post, nil
}

// PostsByProject возвращает выпуски проекта.
func (s *Storage) PostsByProject(ctx context.Context, projectID uuid.UUID) ([]models.Post, error) {
	const op = "storage.postgres.PostsByProject"

	query := `
		SELECT id, project_id, subject, encrypted_body, status, created_at, updated_at
		FROM posts
		WHERE project_id = $1
		ORDER BY created_at DESC
	`

	rows, err := s.db.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []models.Post
	for rows.Next() {
		var post models.Post
		err := rows.Scan(
			&post.ID,
			&post.ProjectID,
			&post.Subject,
			&post.Body,
			&post.Status,
			&post.CreatedAt,
			&post.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, post)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// UpdatePost обновляет subject/body/status.
func (s *Storage) UpdatePost(ctx context.Context, post *models.Post) error {
	const op = "storage.postgres.UpdatePost"

	query := `
		UPDATE posts
		SET subject = $2, encrypted_body = $3, status = $4, updated_at = $5
		WHERE id = $1
	`

	cmdTag, err := s.db.Exec(ctx, query,
		post.ID,
		post.Subject,
		post.Body,
		post.Status,
		post.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}

// DeletePost удаляет выпуск.
func (s *Storage) DeletePost(ctx context.Context, id uuid.UUID) error {
	const op = "storage.postgres.DeletePost"

	cmdTag, err := s.db.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}
