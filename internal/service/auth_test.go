package service

import (
	"context"
	"testing"

	"github.com/TreasureUzoma/lettera/internal/models"
	"github.com/TreasureUzoma/lettera/internal/storage"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func mustHashPW(t *testing.T, pw string) string {
	t.Helper()

	h, err := hashPassword(pw)
	require.NoError(t, err)
	return h
}

func TestSignupUser_OK(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	ctx := context.Background()

	var saved *models.User
	st.EXPECT().SaveUser(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, u *models.User) error {
			saved = u
			return nil
		})

	var record *models.RefreshToken
	st.EXPECT().SaveRefreshToken(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, rt *models.RefreshToken) error {
			record = rt
			return nil
		})

	identity, pair, err := svc.SignupUser(ctx, "User@Example.com", "  User  ", "Abcdef1!", "test-agent")
	require.NoError(t, err)

	// email нормализован, имя обрезано.
	require.Equal(t, "user@example.com", saved.Email)
	require.Equal(t, "User", saved.Name)
	require.Equal(t, models.AuthMethodEmail, saved.AuthMethod)
	require.NotEmpty(t, saved.PasswordHash)
	require.NotEqual(t, "Abcdef1!", saved.PasswordHash)

	require.Equal(t, saved.ID, identity.UserID)

	// В БД — хэш токена, не сам токен; привязка к user-agent.
	require.Equal(t, hashToken(pair.RefreshToken), record.TokenHash)
	require.Equal(t, "test-agent", record.UserAgent)
	require.Equal(t, saved.ID, record.UserID)
}

func TestSignupUser_WeakOrEmptyPassword(t *testing.T) {
	t.Parallel()

	svc, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	ctx := context.Background()

	_, _, err := svc.SignupUser(ctx, "user@example.com", "User", "", "ua")
	require.ErrorIs(t, err, ErrEmptyPassword)

	_, _, err = svc.SignupUser(ctx, "user@example.com", "User", "abc", "ua")
	require.ErrorIs(t, err, ErrWeakPassword)

	// Без спецсимвола.
	_, _, err = svc.SignupUser(ctx, "user@example.com", "User", "Abcdefg1", "ua")
	require.ErrorIs(t, err, ErrWeakPassword)
}

func TestSignupUser_InvalidEmail(t *testing.T) {
	t.Parallel()

	svc, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	_, _, err := svc.SignupUser(context.Background(), "not-an-email", "User", "Abcdef1!", "ua")
	require.ErrorIs(t, err, ErrInvalidEmail)
}

func TestSignupUser_EmailTaken(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	st.EXPECT().SaveUser(gomock.Any(), gomock.Any()).Return(storage.ErrAlreadyExists)

	_, _, err := svc.SignupUser(context.Background(), "user@example.com", "User", "Abcdef1!", "ua")
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestLoginUser_OK(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	pw := "Abcdef1!"
	user := &models.User{
		ID:           uuid.New(),
		Email:        "user@example.com",
		PasswordHash: mustHashPW(t, pw),
		AuthMethod:   models.AuthMethodEmail,
		Plan:         models.PlanFree,
	}

	st.EXPECT().UserByEmail(gomock.Any(), "user@example.com").Return(user, nil)
	st.EXPECT().SaveRefreshToken(gomock.Any(), gomock.Any()).Return(nil)

	identity, pair, err := svc.LoginUser(context.Background(), "User@Example.com", pw, "ua")
	require.NoError(t, err)
	require.Equal(t, user.ID, identity.UserID)
	require.NotEmpty(t, pair.AccessToken)
}

func TestLoginUser_UserNotFound_OrWrongPassword(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	ctx := context.Background()

	st.EXPECT().UserByEmail(gomock.Any(), "nobody@example.com").Return(nil, storage.ErrNotFound)
	_, _, err := svc.LoginUser(ctx, "nobody@example.com", "Abcdef1!", "ua")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	user := &models.User{ID: uuid.New(), Email: "user@example.com", PasswordHash: mustHashPW(t, "Abcdef1!")}
	st.EXPECT().UserByEmail(gomock.Any(), "user@example.com").Return(user, nil)
	_, _, err = svc.LoginUser(ctx, "user@example.com", "wrong-password", "ua")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUser_OAuthOnlyAccount(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	// OAuth-аккаунт без пароля: вход по паролю невозможен и неотличим
	// от неверного пароля.
	user := &models.User{ID: uuid.New(), Email: "user@example.com", AuthMethod: models.AuthMethodGoogle}
	st.EXPECT().UserByEmail(gomock.Any(), "user@example.com").Return(user, nil)

	_, _, err := svc.LoginUser(context.Background(), "user@example.com", "Abcdef1!", "ua")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogout_RevokesAllSessions(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	userID := uuid.New()
	st.EXPECT().RevokeRefreshTokensByUser(gomock.Any(), userID).Return(nil)

	require.NoError(t, svc.Logout(context.Background(), userID))
}
