package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/TreasureUzoma/lettera/internal/models"
	"github.com/TreasureUzoma/lettera/internal/storage"
	"github.com/google/uuid"
)

// sessionResult — результат ротации, разделяемый между конкурентными
// запросами через singleflight.
type sessionResult struct {
	identity Identity
	pair     models.TokenPair
}

// Authenticate проверяет access-токен и восстанавливает личность из его
// claims. Похода в БД нет: access-токен самодостаточен до истечения срока.
func (s *Service) Authenticate(accessToken string) (Identity, error) {
	const op = "service.session.Authenticate"

	identity, err := s.validateAccessToken(accessToken)
	if err != nil {
		return Identity{}, fmt.Errorf("%s: %w", op, err)
	}

	return identity, nil
}

// RefreshSession выполняет тихую ротацию: проверяет refresh-токен, сверяет
// запись в БД (отзыв, срок, владелец), перечитывает пользователя и выпускает
// новую пару, перезаписывая строку токена на месте.
//
// Конкурентные ротации одного и того же токена схлопываются: выигравший
// запрос выполняет работу, остальные получают его результат. Без этого
// второй запрос с тем же (уже ротированным) токеном получал бы отказ,
// хотя пришёл от того же клиента.
func (s *Service) RefreshSession(ctx context.Context, refreshToken string) (Identity, models.TokenPair, error) {
	const op = "service.session.RefreshSession"

	userID, err := s.validateRefreshToken(refreshToken)
	if err != nil {
		return Identity{}, models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	oldHash := hashToken(refreshToken)

	v, err, _ := s.rotation.Do(oldHash, func() (interface{}, error) {
		return s.rotateSession(ctx, oldHash, userID)
	})
	if err != nil {
		return Identity{}, models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	res := v.(*sessionResult)

	return res.identity, res.pair, nil
}

// PurgeExpiredTokens удаляет просроченные refresh-токены; вызывается
// фоновым janitor'ом из main.
func (s *Service) PurgeExpiredTokens(ctx context.Context) error {
	const op = "service.session.PurgeExpiredTokens"

	if err := s.storage.DeleteExpiredTokens(ctx, time.Now().UTC()); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// rotateSession — тело ротации под singleflight; oldHash уже прошёл
// криптографическую проверку подписи и срока.
func (s *Service) rotateSession(ctx context.Context, oldHash string, userID uuid.UUID) (*sessionResult, error) {
	record, err := s.storage.RefreshTokenByHash(ctx, oldHash)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrInvalidToken
		}

		return nil, err
	}

	if record.Revoked {
		return nil, ErrTokenRevoked
	}

	now := time.Now().UTC()
	if !record.ExpiresAt.After(now) {
		return nil, ErrTokenExpired
	}

	// Претензия на чужой токен: подпись сошлась, но запись принадлежит
	// другому пользователю. На практике означает рассинхрон секретов.
	if record.UserID != userID {
		return nil, ErrInvalidToken
	}

	// Пользователь перечитывается из БД: смена имени/плана с момента выпуска
	// старой пары попадает в новые claims.
	user, err := s.storage.UserByID(ctx, record.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrInvalidToken
		}

		return nil, err
	}

	pair, err := s.issueTokenPair(user, now)
	if err != nil {
		return nil, err
	}

	err = s.storage.RotateRefreshToken(ctx, oldHash, hashToken(pair.RefreshToken), pair.RefreshExpiresAt)
	if err != nil {
		// Строка уже не ключуется старым хэшем: параллельная ротация вне
		// этого процесса или revoke выиграли гонку.
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrInvalidToken
		}

		return nil, err
	}

	return &sessionResult{identity: identityOf(user), pair: pair}, nil
}
