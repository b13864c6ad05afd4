package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/TreasureUzoma/lettera/internal/models"
	"github.com/TreasureUzoma/lettera/internal/storage"
	"github.com/google/uuid"
)

// ResolveProject находит проект по UUID либо slug и авторизует пользователя
// против списка допустимых ролей.
//
// Различие отказов несёт информацию:
//   - проект не существует ИЛИ пользователь не участник — ErrProjectNotFound
//     (404): не-участнику не раскрывается сам факт существования проекта;
//   - участник с недостаточной ролью — ErrPermissionDenied (403).
//
// Пустой allowedRoles означает «любой участник».
func (s *Service) ResolveProject(ctx context.Context, userID uuid.UUID, ref string, allowedRoles ...models.ProjectRole) (*models.Project, models.ProjectRole, error) {
	const op = "service.access.ResolveProject"

	project, err := s.projectByRef(ctx, ref)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	m, err := s.storage.MembershipByProjectUser(ctx, project.ID, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, "", fmt.Errorf("%s: %w", op, ErrProjectNotFound)
		}

		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	if len(allowedRoles) > 0 && !roleAllowed(m.Role, allowedRoles) {
		return nil, "", fmt.Errorf("%s: %w", op, ErrPermissionDenied)
	}

	return project, m.Role, nil
}

// projectByRef разыменовывает ссылку на проект: сначала как UUID,
// иначе как slug.
func (s *Service) projectByRef(ctx context.Context, ref string) (*models.Project, error) {
	var (
		project *models.Project
		err     error
	)

	if id, parseErr := uuid.Parse(ref); parseErr == nil {
		project, err = s.storage.ProjectByID(ctx, id)
	} else {
		project, err = s.storage.ProjectBySlug(ctx, ref)
	}

	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrProjectNotFound
		}

		return nil, err
	}

	return project, nil
}

func roleAllowed(role models.ProjectRole, allowed []models.ProjectRole) bool {
	for _, r := range allowed {
		if role == r {
			return true
		}
	}

	return false
}
