package service

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/TreasureUzoma/lettera/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// accessClaims — полезная нагрузка access-токена. Токен самодостаточен:
// личность восстанавливается из claims без похода в БД.
type accessClaims struct {
	UserID string `json:"uid"`
	Email  string `json:"email"`
	Name   string `json:"name,omitempty"`
	Plan   string `json:"plan,omitempty"`
	jwt.RegisteredClaims
}

// refreshClaims — полезная нагрузка refresh-токена. Несёт только uid;
// остальное перечитывается из БД в момент ротации, чтобы смена профиля
// отражалась в новой паре.
type refreshClaims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

// unsubscribeClaims — одноразовая ссылка отписки: привязана к проекту и
// адресу подписчика, живёт недолго.
type unsubscribeClaims struct {
	ProjectID string `json:"project_id"`
	Email     string `json:"email"`
	jwt.RegisteredClaims
}

// Identity — аутентифицированный пользователь, восстановленный из
// access-токена либо из БД при ротации.
type Identity struct {
	UserID uuid.UUID
	Email  string
	Name   string
	Plan   models.Plan
}

// issueTokenPair выпускает согласованную пару токенов на момент now.
// Access и refresh подписываются разными секретами: заголовок у них
// одинаковый (HS256), и только секрет не даёт предъявить refresh там,
// где ждут access.
func (s *Service) issueTokenPair(user *models.User, now time.Time) (models.TokenPair, error) {
	const op = "service.token.issueTokenPair"

	accessExp := now.Add(s.cfg.AccessTokenTTL)
	refreshExp := now.Add(s.cfg.RefreshTokenTTL)

	access := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims{
		UserID: user.ID.String(),
		Email:  user.Email,
		Name:   user.Name,
		Plan:   string(user.Plan),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(accessExp),
		},
	})

	accessToken, err := access.SignedString([]byte(s.cfg.AccessSecret))
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	// jti делает каждый refresh-токен уникальным: без него две выдачи
	// для одного пользователя в пределах секунды совпали бы байт в байт,
	// и ротация вернула бы тот же токен.
	refresh := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims{
		UserID: user.ID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(refreshExp),
		},
	})

	refreshToken, err := refresh.SignedString([]byte(s.cfg.RefreshSecret))
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	return models.TokenPair{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// validateAccessToken проверяет подпись и срок access-токена и
// восстанавливает Identity из claims.
func (s *Service) validateAccessToken(token string) (Identity, error) {
	const op = "service.token.validateAccessToken"

	claims := &accessClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.AccessSecret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, fmt.Errorf("%s: %w", op, ErrTokenExpired)
		}
		return Identity{}, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	uid, err := uuid.Parse(claims.UserID)
	if err != nil {
		return Identity{}, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	return Identity{
		UserID: uid,
		Email:  claims.Email,
		Name:   claims.Name,
		Plan:   models.Plan(claims.Plan),
	}, nil
}

// validateRefreshToken проверяет подпись и срок refresh-токена и возвращает
// uid владельца. Проверка отзыва делается отдельно по записи в БД.
func (s *Service) validateRefreshToken(token string) (uuid.UUID, error) {
	const op = "service.token.validateRefreshToken"

	claims := &refreshClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.RefreshSecret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, fmt.Errorf("%s: %w", op, ErrTokenExpired)
		}
		return uuid.Nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	uid, err := uuid.Parse(claims.UserID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	return uid, nil
}

// IssueUnsubscribeToken выпускает короткоживущий токен отписки для пары
// (проект, e-mail подписчика).
func (s *Service) IssueUnsubscribeToken(projectID uuid.UUID, email string, now time.Time) (string, error) {
	const op = "service.token.IssueUnsubscribeToken"

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, unsubscribeClaims{
		ProjectID: projectID.String(),
		Email:     email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.UnsubscribeTTL)),
		},
	})

	signed, err := token.SignedString([]byte(s.cfg.UnsubscribeSecret))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return signed, nil
}

// parseUnsubscribeToken проверяет токен отписки и возвращает проект и адрес.
func (s *Service) parseUnsubscribeToken(token string) (uuid.UUID, string, error) {
	const op = "service.token.parseUnsubscribeToken"

	claims := &unsubscribeClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.UnsubscribeSecret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, "", fmt.Errorf("%s: %w", op, ErrTokenExpired)
		}
		return uuid.Nil, "", fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	projectID, err := uuid.Parse(claims.ProjectID)
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	return projectID, claims.Email, nil
}

// hashToken возвращает компактный хэш токена для хранения в БД: сами
// refresh-токены на диск не попадают, утечка таблицы не даёт сессий.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
