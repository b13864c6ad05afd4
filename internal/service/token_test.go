package service

import (
	"testing"
	"time"

	"github.com/TreasureUzoma/lettera/internal/config"
	"github.com/TreasureUzoma/lettera/internal/models"
	"github.com/TreasureUzoma/lettera/internal/vault"
	"github.com/TreasureUzoma/lettera/mocks"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func testCfg() config.AuthConfig {
	return config.AuthConfig{
		AccessSecret:      "unit-access-secret",
		RefreshSecret:     "unit-refresh-secret",
		UnsubscribeSecret: "unit-unsubscribe-secret",
		AccessTokenTTL:    15 * time.Minute,
		RefreshTokenTTL:   168 * time.Hour,
		UnsubscribeTTL:    15 * time.Minute,
	}
}

func newSvc(t *testing.T) (*Service, *mocks.MockStorage, *gomock.Controller) {
	t.Helper()

	ctrl := gomock.NewController(t)
	st := mocks.NewMockStorage(ctrl)

	v, err := vault.New("unit-encryption-key")
	require.NoError(t, err)

	return New(st, v, testCfg()), st, ctrl
}

func testUser() *models.User {
	return &models.User{
		ID:    uuid.New(),
		Email: "user@example.com",
		Name:  "User",
		Plan:  models.PlanFree,
	}
}

func TestIssueTokenPair_AccessRoundTrip(t *testing.T) {
	t.Parallel()

	svc, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	user := testUser()
	pair, err := svc.issueTokenPair(user, time.Now().UTC())
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	require.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	identity, err := svc.validateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, user.ID, identity.UserID)
	require.Equal(t, user.Email, identity.Email)
	require.Equal(t, user.Name, identity.Name)
	require.Equal(t, user.Plan, identity.Plan)
}

func TestIssueTokenPair_SameInstantUniqueRefresh(t *testing.T) {
	t.Parallel()

	svc, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	// Две выдачи в один и тот же момент времени (JWT хранит iat/exp с
	// точностью до секунды) обязаны дать разные refresh-токены: иначе
	// ротация сразу после логина "обновит" токен сам в себя, а второй
	// логин того же пользователя упадёт на уникальности token_hash.
	user := testUser()
	now := time.Now().UTC()

	first, err := svc.issueTokenPair(user, now)
	require.NoError(t, err)
	second, err := svc.issueTokenPair(user, now)
	require.NoError(t, err)

	require.NotEqual(t, first.RefreshToken, second.RefreshToken)
	require.NotEqual(t, hashToken(first.RefreshToken), hashToken(second.RefreshToken))

	// Оба валидны и принадлежат одному владельцу.
	uid, err := svc.validateRefreshToken(first.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, user.ID, uid)
	uid, err = svc.validateRefreshToken(second.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, user.ID, uid)
}

func TestValidateAccessToken_ExpiryBoundary(t *testing.T) {
	t.Parallel()

	svc, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	user := testUser()

	// Выпущен почти 15 минут назад — ещё валиден.
	pair, err := svc.issueTokenPair(user, time.Now().UTC().Add(-(15*time.Minute - 5*time.Second)))
	require.NoError(t, err)
	_, err = svc.validateAccessToken(pair.AccessToken)
	require.NoError(t, err)

	// Выпущен чуть более 15 минут назад — истёк.
	pair, err = svc.issueTokenPair(user, time.Now().UTC().Add(-(15*time.Minute + 5*time.Second)))
	require.NoError(t, err)
	_, err = svc.validateAccessToken(pair.AccessToken)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestValidateTokens_SecretsAreNotInterchangeable(t *testing.T) {
	t.Parallel()

	svc, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	pair, err := svc.issueTokenPair(testUser(), time.Now().UTC())
	require.NoError(t, err)

	// refresh-токен не проходит как access и наоборот.
	_, err = svc.validateAccessToken(pair.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.validateRefreshToken(pair.AccessToken)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateAccessToken_Garbage(t *testing.T) {
	t.Parallel()

	svc, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	for _, token := range []string{"", "garbage", "a.b.c"} {
		_, err := svc.validateAccessToken(token)
		require.ErrorIs(t, err, ErrInvalidToken)
	}
}

func TestValidateRefreshToken_ReturnsOwner(t *testing.T) {
	t.Parallel()

	svc, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	user := testUser()
	pair, err := svc.issueTokenPair(user, time.Now().UTC())
	require.NoError(t, err)

	uid, err := svc.validateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, user.ID, uid)
}

func TestUnsubscribeToken_RoundTripAndExpiry(t *testing.T) {
	t.Parallel()

	svc, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	projectID := uuid.New()

	token, err := svc.IssueUnsubscribeToken(projectID, "sub@example.com", time.Now().UTC())
	require.NoError(t, err)

	gotProject, gotEmail, err := svc.parseUnsubscribeToken(token)
	require.NoError(t, err)
	require.Equal(t, projectID, gotProject)
	require.Equal(t, "sub@example.com", gotEmail)

	// Просроченный токен.
	token, err = svc.IssueUnsubscribeToken(projectID, "sub@example.com",
		time.Now().UTC().Add(-(16 * time.Minute)))
	require.NoError(t, err)
	_, _, err = svc.parseUnsubscribeToken(token)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestHashToken_Deterministic(t *testing.T) {
	t.Parallel()

	require.Equal(t, hashToken("token"), hashToken("token"))
	require.NotEqual(t, hashToken("token"), hashToken("token2"))
	// sha256 → base64url без паддинга: 43 символа.
	require.Len(t, hashToken("token"), 43)
}
