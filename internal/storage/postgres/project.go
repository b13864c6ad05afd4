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

// SaveProject создаёт проект и членство owner для создателя одной транзакцией.
func (s *Storage) SaveProject(ctx context.Context, project *models.Project, ownerID uuid.UUID) error {
	const op = "storage.postgres.SaveProject"

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	insertProject := `
		INSERT INTO projects(id, name, slug, description, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = tx.Exec(ctx, insertProject,
		project.ID,
		project.Name,
		project.Slug,
		project.Description,
		project.IsActive,
		project.CreatedAt,
		project.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	insertOwner := `
		INSERT INTO project_members(project_id, user_id, role, joined_at)
		VALUES ($1, $2, $3, $4)
	`

	if _, err := tx.Exec(ctx, insertOwner, project.ID, ownerID, models.RoleOwner, project.CreatedAt); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

const projectColumns = `
		SELECT id, name, slug, description, is_active, created_at, updated_at
		FROM projects
`

func scanProject(row pgx.Row) (*models.Project, error) {
	var p models.Project
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Slug,
		&p.Description,
		&p.IsActive,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &p, nil
}

// ProjectByID находит проект по ID.
func (s *Storage) ProjectByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	const op = "storage.postgres.ProjectByID"

	p, err := scanProject(s.db.QueryRow(ctx, projectColumns+`WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return p, nil
}

// ProjectBySlug находит проект по slug (CITEXT — без учёта регистра).
func (s *Storage) ProjectBySlug(ctx context.Context, slug string) (*models.Project, error) {
	const op = "storage.postgres.ProjectBySlug"

	p, err := scanProject(s.db.QueryRow(ctx, projectColumns+`WHERE slug = $1`, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return p, nil
}

// ProjectsByUser возвращает проекты, где пользователь состоит участником.
func (s *Storage) ProjectsByUser(ctx context.Context, userID uuid.UUID) ([]models.Project, error) {
	const op = "storage.postgres.ProjectsByUser"

	query := `
		SELECT p.id, p.name, p.slug, p.description, p.is_active, p.created_at, p.updated_at
		FROM projects p
		JOIN project_members m ON m.project_id = p.id
		WHERE m.user_id = $1
		ORDER BY p.created_at DESC
	`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []models.Project
	for rows.Next() {
		var p models.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Slug, &p.Description, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// UpdateProject обновляет name/description/is_active.
func (s *Storage) UpdateProject(ctx context.Context, project *models.Project) error {
	const op = "storage.postgres.UpdateProject"

	query := `
		UPDATE projects
		SET name = $2, description = $3, is_active = $4, updated_at = $5
		WHERE id = $1
	`

	cmdTag, err := s.db.Exec(ctx, query,
		project.ID,
		project.Name,
		project.Description,
		project.IsActive,
		project.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}

// DeleteProject удаляет проект; членства, ключи и подписчики уходят каскадом.
func (s *Storage) DeleteProject(ctx context.Context, id uuid.UUID) error {
	const op = "storage.postgres.DeleteProject"

	cmdTag, err := s.db.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}

// SaveMembership создаёт членство.
func (s *Storage) SaveMembership(ctx context.Context, m *models.Membership) error {
	const op = "storage.postgres.SaveMembership"

	query := `
		INSERT INTO project_members(project_id, user_id, role, joined_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := s.db.Exec(ctx, query, m.ProjectID, m.UserID, m.Role, m.JoinedAt)
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

// MembershipByProjectUser находит членство пары (проект, пользователь).
func (s *Storage) MembershipByProjectUser(ctx context.Context, projectID, userID uuid.UUID) (*models.Membership, error) {
	const op = "storage.postgres.MembershipByProjectUser"

	query := `
		SELECT project_id, user_id, role, joined_at
		FROM project_members
		WHERE project_id = $1 AND user_id = $2
	`

	var m models.Membership
	err := s.db.QueryRow(ctx, query, projectID, userID).Scan(&m.ProjectID, &m.UserID, &m.Role, &m.JoinedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &m, nil
}

// UpdateMembershipRole меняет роль участника.
func (s *Storage) UpdateMembershipRole(ctx context.Context, projectID, userID uuid.UUID, role models.ProjectRole) error {
	const op = "storage.postgres.UpdateMembershipRole"

	query := `
		UPDATE project_members
		SET role = $3
		WHERE project_id = $1 AND user_id = $2
	`

	cmdTag, err := s.db.Exec(ctx, query, projectID, userID, role)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}

// MembersByProject возвращает всех участников проекта.
func (s *Storage) MembersByProject(ctx context.Context, projectID uuid.UUID) ([]models.Membership, error) {
	const op = "storage.postgres.MembersByProject"

	query := `
		SELECT project_id, user_id, role, joined_at
		FROM project_members
		WHERE project_id = $1
		ORDER BY joined_at
	`

	rows, err := s.db.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []models.Membership
	for rows.Next() {
		var m models.Membership
		if err := rows.Scan(&m.ProjectID, &m.UserID, &m.Role, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}
