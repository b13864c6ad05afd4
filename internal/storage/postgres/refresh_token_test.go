package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/TreasureUzoma/lettera/internal/models"
	"github.com/TreasureUzoma/lettera/internal/storage"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func seedToken(t *testing.T, st *Storage, userID uuid.UUID, hash string, expiresAt time.Time) *models.RefreshToken {
	t.Helper()

	now := time.Now().UTC()
	rt := &models.RefreshToken{
		TokenHash: hash,
		UserID:    userID,
		UserAgent: "integration-test",
		ExpiresAt: expiresAt,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, st.SaveRefreshToken(context.Background(), rt))

	return rt
}

func TestIntegration_SaveUser_UniqueEmailCaseInsensitive(t *testing.T) {
	st := startPostgres(t)

	seedUser(t, st, "user@example.com")

	now := time.Now().UTC()
	dup := &models.User{
		ID:           uuid.New(),
		Email:        "USER@EXAMPLE.COM",
		Name:         "Dup",
		PasswordHash: "h2",
		AuthMethod:   models.AuthMethodEmail,
		Role:         "user",
		Plan:         models.PlanFree,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// email CITEXT: различие только в регистре — конфликт уникальности.
	err := st.SaveUser(context.Background(), dup)
	require.ErrorIs(t, err, storage.ErrAlreadyExists)
}

func TestIntegration_UserByEmail_NotFound(t *testing.T) {
	st := startPostgres(t)

	_, err := st.UserByEmail(context.Background(), "ghost@example.com")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestIntegration_RefreshToken_SaveAndGet(t *testing.T) {
	st := startPostgres(t)

	u := seedUser(t, st, "owner@example.com")
	rt := seedToken(t, st, u.ID, "hash-1", time.Now().UTC().Add(time.Hour))

	got, err := st.RefreshTokenByHash(context.Background(), rt.TokenHash)
	require.NoError(t, err)
	require.Equal(t, u.ID, got.UserID)
	require.Equal(t, "integration-test", got.UserAgent)
	require.False(t, got.Revoked)
	require.WithinDuration(t, rt.ExpiresAt, got.ExpiresAt, time.Second)
}

func TestIntegration_RotateRefreshToken_InPlace(t *testing.T) {
	st := startPostgres(t)

	u := seedUser(t, st, "owner@example.com")
	rt := seedToken(t, st, u.ID, "old-hash", time.Now().UTC().Add(time.Hour))

	newExpiry := time.Now().UTC().Add(2 * time.Hour)
	require.NoError(t, st.RotateRefreshToken(context.Background(), rt.TokenHash, "new-hash", newExpiry))

	// Старый хэш мёртв, новый жив — запись одна, перезаписана на месте.
	_, err := st.RefreshTokenByHash(context.Background(), "old-hash")
	require.ErrorIs(t, err, storage.ErrNotFound)

	got, err := st.RefreshTokenByHash(context.Background(), "new-hash")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.UserID)
	require.WithinDuration(t, newExpiry, got.ExpiresAt, time.Second)
}

func TestIntegration_RotateRefreshToken_UnknownHash(t *testing.T) {
	st := startPostgres(t)

	err := st.RotateRefreshToken(context.Background(), "missing", "new", time.Now().UTC().Add(time.Hour))
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestIntegration_RevokeRefreshTokensByUser(t *testing.T) {
	st := startPostgres(t)

	u := seedUser(t, st, "owner@example.com")
	other := seedUser(t, st, "other@example.com")

	seedToken(t, st, u.ID, "device-a", time.Now().UTC().Add(time.Hour))
	seedToken(t, st, u.ID, "device-b", time.Now().UTC().Add(time.Hour))
	seedToken(t, st, other.ID, "other-device", time.Now().UTC().Add(time.Hour))

	require.NoError(t, st.RevokeRefreshTokensByUser(context.Background(), u.ID))

	for _, hash := range []string{"device-a", "device-b"} {
		got, err := st.RefreshTokenByHash(context.Background(), hash)
		require.NoError(t, err)
		require.True(t, got.Revoked, "token %s", hash)
	}

	// Чужие сессии не задеты.
	got, err := st.RefreshTokenByHash(context.Background(), "other-device")
	require.NoError(t, err)
	require.False(t, got.Revoked)
}

func TestIntegration_DeleteExpiredTokens(t *testing.T) {
	st := startPostgres(t)

	u := seedUser(t, st, "owner@example.com")
	seedToken(t, st, u.ID, "expired", time.Now().UTC().Add(-time.Hour))
	seedToken(t, st, u.ID, "live", time.Now().UTC().Add(time.Hour))

	require.NoError(t, st.DeleteExpiredTokens(context.Background(), time.Now().UTC()))

	_, err := st.RefreshTokenByHash(context.Background(), "expired")
	require.ErrorIs(t, err, storage.ErrNotFound)

	_, err = st.RefreshTokenByHash(context.Background(), "live")
	require.NoError(t, err)
}
