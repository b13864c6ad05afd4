package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode"

	"github.com/TreasureUzoma/lettera/internal/models"
	"github.com/TreasureUzoma/lettera/internal/storage"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// SignupUser регистрирует нового пользователя по email+пароль и открывает
// первую сессию (запись refresh-токена привязывается к userAgent устройства).
func (s *Service) SignupUser(ctx context.Context, email, name, password, userAgent string) (Identity, models.TokenPair, error) {
	const op = "service.auth.SignupUser"

	normEmail, err := validateEmail(email)
	if err != nil {
		return Identity{}, models.TokenPair{}, fmt.Errorf("%s: %w", op, ErrInvalidEmail)
	}

	if err := validatePassword(password); err != nil {
		return Identity{}, models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	hashedPassword, err := hashPassword(password)
	if err != nil {
		return Identity{}, models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.New(),
		Email:        normEmail,
		Name:         strings.TrimSpace(name),
		PasswordHash: hashedPassword,
		AuthMethod:   models.AuthMethodEmail,
		Plan:         models.PlanFree,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.storage.SaveUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return Identity{}, models.TokenPair{}, fmt.Errorf("%s: %w", op, ErrEmailTaken)
		}

		return Identity{}, models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	return s.openSession(ctx, user, userAgent, now)
}

// LoginUser выполняет вход по email+пароль.
//
// Все отказы (нет пользователя, OAuth-only аккаунт, неверный пароль)
// неразличимы снаружи: единое ErrInvalidCredentials.
func (s *Service) LoginUser(ctx context.Context, email, password, userAgent string) (Identity, models.TokenPair, error) {
	const op = "service.auth.LoginUser"

	normEmail, err := validateEmail(email)
	if err != nil {
		return Identity{}, models.TokenPair{}, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	if len(password) == 0 {
		return Identity{}, models.TokenPair{}, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	user, err := s.storage.UserByEmail(ctx, normEmail)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Identity{}, models.TokenPair{}, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}

		return Identity{}, models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	// OAuth-only аккаунт: PasswordHash пустой, вход по паролю невозможен.
	if user.PasswordHash == "" || !checkPassword(user.PasswordHash, password) {
		return Identity{}, models.TokenPair{}, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	return s.openSession(ctx, user, userAgent, time.Now().UTC())
}

// Logout отзывает все refresh-токены пользователя. Повторный logout —
// не ошибка: операция идемпотентна.
func (s *Service) Logout(ctx context.Context, userID uuid.UUID) error {
	const op = "service.auth.Logout"

	if err := s.storage.RevokeRefreshTokensByUser(ctx, userID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// openSession выпускает пару токенов и сохраняет запись refresh-токена.
func (s *Service) openSession(ctx context.Context, user *models.User, userAgent string, now time.Time) (Identity, models.TokenPair, error) {
	const op = "service.auth.openSession"

	pair, err := s.issueTokenPair(user, now)
	if err != nil {
		return Identity{}, models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	record := &models.RefreshToken{
		TokenHash: hashToken(pair.RefreshToken),
		UserID:    user.ID,
		UserAgent: userAgent,
		ExpiresAt: pair.RefreshExpiresAt,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.storage.SaveRefreshToken(ctx, record); err != nil {
		return Identity{}, models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	return identityOf(user), pair, nil
}

func identityOf(user *models.User) Identity {
	return Identity{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
		Plan:   user.Plan,
	}
}

// hashPassword хэширует пароль с помощью bcrypt.
func hashPassword(password string) (string, error) {
	const op = "service.auth.hashPassword"

	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return string(bytes), nil
}

// checkPassword сравнивает пароль с хэшем.
func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// validateEmail проверяет базовый формат email и обрезает пробелы снаружи.
func validateEmail(raw string) (string, error) {
	const op = "service.auth.validateEmail"

	email := strings.TrimSpace(raw)
	if email == "" {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidEmail)
	}

	if _, err := mail.ParseAddress(email); err != nil {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidEmail)
	}

	return strings.ToLower(email), nil
}

// validatePassword проверяет минимальные требования к паролю.
// Политика по умолчанию: длина >= 8, хотя бы одна строчная, заглавная, цифра и спецсимвол.
func validatePassword(pw string) error {
	const op = "service.auth.validatePassword"

	if len(pw) == 0 {
		return fmt.Errorf("%s: %w", op, ErrEmptyPassword)
	}

	if len([]rune(pw)) < 8 {
		return fmt.Errorf("%s: %w", op, ErrWeakPassword)
	}

	var hasLower, hasUpper, hasDigit, hasSpecial bool
	for _, r := range pw {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSpecial = true
		}
	}

	if !(hasLower && hasUpper && hasDigit && hasSpecial) {
		return fmt.Errorf("%s: %w", op, ErrWeakPassword)
	}

	return nil
}
