package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/TreasureUzoma/lettera/internal/models"
	"github.com/TreasureUzoma/lettera/internal/storage"
	"github.com/google/uuid"
)

// CreateExternalSubscriber создаёт подписчика по внешнему API. Уровень
// доверия ключа проверяется до вызова (достаточно public-тира).
func (s *Service) CreateExternalSubscriber(ctx context.Context, projectID uuid.UUID, email, name string) (*models.Subscriber, error) {
	const op = "service.subscribers.CreateExternalSubscriber"

	normEmail, err := validateEmail(email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidEmail)
	}

	now := time.Now().UTC()
	sub := &models.Subscriber{
		ID:        uuid.New(),
		ProjectID: projectID,
		Email:     normEmail,
		Name:      strings.TrimSpace(name),
		Status:    models.SubscriberSubscribed,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.storage.SaveSubscriber(ctx, sub); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, fmt.Errorf("%s: %w", op, ErrAlreadyExists)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return sub, nil
}

// ListExternalSubscribers возвращает подписчиков по внешнему API.
// Требует private-тир; проверка тира остаётся на вызывающем слое.
func (s *Service) ListExternalSubscribers(ctx context.Context, projectID uuid.UUID) ([]models.Subscriber, error) {
	const op = "service.subscribers.ListExternalSubscribers"

	subs, err := s.storage.SubscribersByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return subs, nil
}

// ListSubscribers возвращает подписчиков проекта для дашборда
// (любая роль участника).
func (s *Service) ListSubscribers(ctx context.Context, userID uuid.UUID, ref string) ([]models.Subscriber, error) {
	const op = "service.subscribers.ListSubscribers"

	project, _, err := s.ResolveProject(ctx, userID, ref)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	subs, err := s.storage.SubscribersByProject(ctx, project.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return subs, nil
}

// RequestUnsubscribe выпускает короткоживущий токен отписки для существующего
// подписчика проекта. Ссылка с токеном уходит подписчику почтой; сама
// отправка — вне этого пакета.
func (s *Service) RequestUnsubscribe(ctx context.Context, projectRef, email string) (string, error) {
	const op = "service.subscribers.RequestUnsubscribe"

	normEmail, err := validateEmail(email)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidEmail)
	}

	project, err := s.projectByRef(ctx, projectRef)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if _, err := s.storage.SubscriberByProjectEmail(ctx, project.ID, normEmail); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return "", fmt.Errorf("%s: %w", op, err)
	}

	token, err := s.IssueUnsubscribeToken(project.ID, normEmail, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return token, nil
}

// ConfirmUnsubscribe переводит подписчика в unsubscribed по токену отписки.
// Операция идемпотентна: повторный переход по той же ссылке в пределах
// срока токена не ошибка.
func (s *Service) ConfirmUnsubscribe(ctx context.Context, token string) error {
	const op = "service.subscribers.ConfirmUnsubscribe"

	projectID, email, err := s.parseUnsubscribeToken(token)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = s.storage.UpdateSubscriberStatus(ctx, projectID, email, models.SubscriberUnsubscribed)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
