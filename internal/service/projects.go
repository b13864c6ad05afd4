package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/TreasureUzoma/lettera/internal/models"
	"github.com/TreasureUzoma/lettera/internal/storage"
	"github.com/google/uuid"
)

// slugPattern — допустимый slug: строчные латинские буквы, цифры, дефисы,
// без дефисов по краям.
var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

var (
	// ErrInvalidSlug — slug не проходит по формату. HTTP 400.
	ErrInvalidSlug = errors.New("invalid slug format")
	// ErrInvalidName — имя проекта пустое. HTTP 400.
	ErrInvalidName = errors.New("invalid project name")
)

// CreateProject создаёт проект; создатель становится владельцем (членство
// owner пишется той же транзакцией, что и проект). Пустой slug выводится
// из имени.
func (s *Service) CreateProject(ctx context.Context, ownerID uuid.UUID, name, slug, description string) (*models.Project, error) {
	const op = "service.projects.CreateProject"

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidName)
	}

	if slug == "" {
		slug = slugify(name)
	}
	if !slugPattern.MatchString(slug) {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidSlug)
	}

	now := time.Now().UTC()
	project := &models.Project{
		ID:          uuid.New(),
		Name:        name,
		Slug:        slug,
		Description: strings.TrimSpace(description),
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.storage.SaveProject(ctx, project, ownerID); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, fmt.Errorf("%s: %w", op, ErrSlugTaken)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return project, nil
}

// GetProject возвращает проект, если пользователь — участник (любая роль).
func (s *Service) GetProject(ctx context.Context, userID uuid.UUID, ref string) (*models.Project, models.ProjectRole, error) {
	const op = "service.projects.GetProject"

	project, role, err := s.ResolveProject(ctx, userID, ref)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	return project, role, nil
}

// ListProjects возвращает проекты, где пользователь состоит участником.
func (s *Service) ListProjects(ctx context.Context, userID uuid.UUID) ([]models.Project, error) {
	const op = "service.projects.ListProjects"

	projects, err := s.storage.ProjectsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return projects, nil
}

// UpdateProject обновляет name/description/is_active. Slug неизменяем:
// на него завязаны внешние ссылки подписки. Требуемая роль: owner или admin.
func (s *Service) UpdateProject(ctx context.Context, userID uuid.UUID, ref string, name, description *string, isActive *bool) (*models.Project, error) {
	const op = "service.projects.UpdateProject"

	project, _, err := s.ResolveProject(ctx, userID, ref, models.RoleOwner, models.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidName)
		}
		project.Name = trimmed
	}
	if description != nil {
		project.Description = strings.TrimSpace(*description)
	}
	if isActive != nil {
		project.IsActive = *isActive
	}
	project.UpdatedAt = time.Now().UTC()

	if err := s.storage.UpdateProject(ctx, project); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrProjectNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return project, nil
}

// DeleteProject удаляет проект со всем содержимым. Требуемая роль: owner.
func (s *Service) DeleteProject(ctx context.Context, userID uuid.UUID, ref string) error {
	const op = "service.projects.DeleteProject"

	project, _, err := s.ResolveProject(ctx, userID, ref, models.RoleOwner)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.storage.DeleteProject(ctx, project.ID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrProjectNotFound)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// AddMember приглашает существующего пользователя в проект по email.
// Роль owner через приглашение не выдаётся. Требуемая роль: owner или admin.
func (s *Service) AddMember(ctx context.Context, userID uuid.UUID, ref, email string, role models.ProjectRole) (*models.Membership, error) {
	const op = "service.projects.AddMember"

	if !role.Valid() || role == models.RoleOwner {
		return nil, fmt.Errorf("%s: %w", op, ErrOwnerTransfer)
	}

	project, _, err := s.ResolveProject(ctx, userID, ref, models.RoleOwner, models.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	normEmail, err := validateEmail(email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidEmail)
	}

	invitee, err := s.storage.UserByEmail(ctx, normEmail)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	m := &models.Membership{
		ProjectID: project.ID,
		UserID:    invitee.ID,
		Role:      role,
		JoinedAt:  time.Now().UTC(),
	}

	if err := s.storage.SaveMembership(ctx, m); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, fmt.Errorf("%s: %w", op, ErrAlreadyExists)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return m, nil
}

// UpdateMemberRole меняет роль участника проекта.
//
// Общий путь смены ролей намеренно не умеет трогать владение: нельзя ни
// назначить роль owner, ни снять её с владельца. Требуемая роль: owner
// или admin.
func (s *Service) UpdateMemberRole(ctx context.Context, userID uuid.UUID, ref string, memberID uuid.UUID, role models.ProjectRole) error {
	const op = "service.projects.UpdateMemberRole"

	if !role.Valid() || role == models.RoleOwner {
		return fmt.Errorf("%s: %w", op, ErrOwnerTransfer)
	}

	project, _, err := s.ResolveProject(ctx, userID, ref, models.RoleOwner, models.RoleAdmin)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	current, err := s.storage.MembershipByProjectUser(ctx, project.ID, memberID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	if current.Role == models.RoleOwner {
		return fmt.Errorf("%s: %w", op, ErrOwnerTransfer)
	}

	if err := s.storage.UpdateMembershipRole(ctx, project.ID, memberID, role); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// ListMembers возвращает участников проекта (любая роль участника).
func (s *Service) ListMembers(ctx context.Context, userID uuid.UUID, ref string) ([]models.Membership, error) {
	const op = "service.projects.ListMembers"

	project, _, err := s.ResolveProject(ctx, userID, ref)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	members, err := s.storage.MembersByProject(ctx, project.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return members, nil
}

// slugify выводит slug из имени проекта: латиница/цифры в нижнем регистре,
// остальное схлопывается в дефисы.
func slugify(name string) string {
	var b strings.Builder
	prevDash := true

	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			prevDash = false
		default:
			if !prevDash {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}

	return strings.TrimSuffix(b.String(), "-")
}
