package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/TreasureUzoma/lettera/internal/models"
	"github.com/TreasureUzoma/lettera/internal/storage"
	"github.com/TreasureUzoma/lettera/internal/vault"
	"github.com/google/uuid"
)

// ErrInvalidPost — выпуск без темы либо с неизвестным статусом. HTTP 400.
var ErrInvalidPost = errors.New("invalid post")

// CreatePost создаёт выпуск рассылки. Тело шифруется до записи в БД.
// Требуемая роль: owner, admin или editor.
func (s *Service) CreatePost(ctx context.Context, userID uuid.UUID, projectRef, subject, body string) (*models.Post, error) {
	const op = "service.posts.CreatePost"

	subject = strings.TrimSpace(subject)
	if subject == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidPost)
	}

	project, _, err := s.ResolveProject(ctx, userID, projectRef,
		models.RoleOwner, models.RoleAdmin, models.RoleEditor)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	encrypted, err := s.vault.Encrypt(body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := time.Now().UTC()
	post := &models.Post{
		ID:        uuid.New(),
		ProjectID: project.ID,
		Subject:   subject,
		Body:      encrypted,
		Status:    models.PostDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.storage.SavePost(ctx, post); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	post.Body = body

	return post, nil
}

// GetPost возвращает выпуск с расшифрованным телом (любая роль участника).
func (s *Service) GetPost(ctx context.Context, userID uuid.UUID, projectRef string, postID uuid.UUID) (*models.Post, error) {
	const op = "service.posts.GetPost"

	project, _, err := s.ResolveProject(ctx, userID, projectRef)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	post, err := s.postOfProject(ctx, project.ID, postID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	body, err := s.vault.Decrypt(post.Body)
	if err != nil {
		if errors.Is(err, vault.ErrAuthentication) {
			return nil, fmt.Errorf("%s: %w", op, ErrIntegrity)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}
	post.Body = body

	return post, nil
}

// ListPosts возвращает выпуски проекта без тел: список не платит за
// расшифровку каждого выпуска. Любая роль участника.
func (s *Service) ListPosts(ctx context.Context, userID uuid.UUID, projectRef string) ([]models.Post, error) {
	const op = "service.posts.ListPosts"

	project, _, err := s.ResolveProject(ctx, userID, projectRef)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	posts, err := s.storage.PostsByProject(ctx, project.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for i := range posts {
		posts[i].Body = ""
	}

	return posts, nil
}

// UpdatePost обновляет subject/body/status выпуска.
// Требуемая роль: owner, admin или editor.
func (s *Service) UpdatePost(ctx context.Context, userID uuid.UUID, projectRef string, postID uuid.UUID, subject, body *string, status *models.PostStatus) (*models.Post, error) {
	const op = "service.posts.UpdatePost"

	project, _, err := s.ResolveProject(ctx, userID, projectRef,
		models.RoleOwner, models.RoleAdmin, models.RoleEditor)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	post, err := s.postOfProject(ctx, project.ID, postID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	plain := ""
	if subject != nil {
		trimmed := strings.TrimSpace(*subject)
		if trimmed == "" {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidPost)
		}
		post.Subject = trimmed
	}
	if body != nil {
		encrypted, err := s.vault.Encrypt(*body)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		post.Body = encrypted
		plain = *body
	}
	if status != nil {
		switch *status {
		case models.PostDraft, models.PostPublished:
			post.Status = *status
		default:
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidPost)
		}
	}
	post.UpdatedAt = time.Now().UTC()

	if err := s.storage.UpdatePost(ctx, post); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if body != nil {
		post.Body = plain
	} else {
		post.Body = ""
	}

	return post, nil
}

// DeletePost удаляет выпуск. Требуемая роль: owner, admin или editor.
func (s *Service) DeletePost(ctx context.Context, userID uuid.UUID, projectRef string, postID uuid.UUID) error {
	const op = "service.posts.DeletePost"

	project, _, err := s.ResolveProject(ctx, userID, projectRef,
		models.RoleOwner, models.RoleAdmin, models.RoleEditor)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	post, err := s.postOfProject(ctx, project.ID, postID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.storage.DeletePost(ctx, post.ID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// postOfProject находит выпуск и сверяет принадлежность проекту: id выпуска
// из чужого проекта неотличим от несуществующего.
func (s *Service) postOfProject(ctx context.Context, projectID, postID uuid.UUID) (*models.Post, error) {
	post, err := s.storage.PostByID(ctx, postID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}

		return nil, err
	}

	if post.ProjectID != projectID {
		return nil, ErrNotFound
	}

	return post, nil
}
