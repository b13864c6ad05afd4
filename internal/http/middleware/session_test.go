package middleware

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/TreasureUzoma/lettera/internal/config"
	"github.com/TreasureUzoma/lettera/internal/http/cookies"
	"github.com/TreasureUzoma/lettera/internal/models"
	"github.com/TreasureUzoma/lettera/internal/service"
	"github.com/TreasureUzoma/lettera/internal/vault"
	"github.com/TreasureUzoma/lettera/mocks"
	"github.com/golang-jwt/jwt/v5"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const (
	testAccessSecret  = "mw-access-secret"
	testRefreshSecret = "mw-refresh-secret"
	testCookieSecret  = "mw-cookie-secret"
)

func newSessionEnv(t *testing.T) (*service.Service, *mocks.MockStorage, *cookies.Jar) {
	t.Helper()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	st := mocks.NewMockStorage(ctrl)

	v, err := vault.New("mw-encryption-key")
	require.NoError(t, err)

	svc := service.New(st, v, config.AuthConfig{
		AccessSecret:      testAccessSecret,
		RefreshSecret:     testRefreshSecret,
		UnsubscribeSecret: "mw-unsubscribe-secret",
		AccessTokenTTL:    15 * time.Minute,
		RefreshTokenTTL:   7 * 24 * time.Hour,
		UnsubscribeTTL:    15 * time.Minute,
	})

	return svc, st, cookies.New(testCookieSecret, false)
}

// signToken собирает HS256-токен с нужным uid и сроком.
func signToken(t *testing.T, secret string, userID uuid.UUID, ttl time.Duration) string {
	t.Helper()

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"uid":   userID.String(),
		"email": "ivan@example.com",
		"iat":   jwt.NewNumericDate(now),
		"exp":   jwt.NewNumericDate(now.Add(ttl)),
	})

	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)

	return signed
}

func sha256b64(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// echoIdentity отвечает 200, только если Session положил пользователя
// в контекст.
func echoIdentity(t *testing.T, wantUserID uuid.UUID) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFrom(r.Context())
		require.True(t, ok)
		require.Equal(t, wantUserID, identity.UserID)
		w.WriteHeader(http.StatusOK)
	})
}

func TestSession_ValidAccessCookie(t *testing.T) {
	t.Parallel()

	// Живой access-токен проходит без единого обращения к хранилищу.
	svc, _, jar := newSessionEnv(t)
	userID := uuid.New()

	rec := httptest.NewRecorder()
	jar.Set(rec, cookies.AccessCookie, signToken(t, testAccessSecret, userID, 15*time.Minute), time.Minute)

	req := httptest.NewRequest(http.MethodGet, "/projects", nil)
	req.AddCookie(rec.Result().Cookies()[0])

	out := httptest.NewRecorder()
	Session(svc, jar)(echoIdentity(t, userID)).ServeHTTP(out, req)

	require.Equal(t, http.StatusOK, out.Code)
	// Ротации не было, cookie не переустанавливались.
	require.Empty(t, out.Result().Cookies())
}

func TestSession_SilentRotation(t *testing.T) {
	t.Parallel()

	svc, st, jar := newSessionEnv(t)
	userID := uuid.New()
	refresh := signToken(t, testRefreshSecret, userID, 24*time.Hour)
	oldHash := sha256b64(refresh)

	st.EXPECT().RefreshTokenByHash(gomock.Any(), oldHash).
		Return(&models.RefreshToken{
			TokenHash: oldHash,
			UserID:    userID,
			ExpiresAt: time.Now().Add(24 * time.Hour),
		}, nil)
	st.EXPECT().UserByID(gomock.Any(), userID).
		Return(&models.User{ID: userID, Email: "ivan@example.com", Plan: models.PlanFree}, nil)
	st.EXPECT().RotateRefreshToken(gomock.Any(), oldHash, gomock.Any(), gomock.Any()).
		Return(nil)

	// Access-токен протух, refresh жив: тихая ротация.
	seal := httptest.NewRecorder()
	jar.Set(seal, cookies.AccessCookie, signToken(t, testAccessSecret, userID, -time.Minute), time.Minute)
	jar.Set(seal, cookies.RefreshCookie, refresh, time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/projects", nil)
	for _, c := range seal.Result().Cookies() {
		req.AddCookie(c)
	}

	out := httptest.NewRecorder()
	Session(svc, jar)(echoIdentity(t, userID)).ServeHTTP(out, req)

	require.Equal(t, http.StatusOK, out.Code)

	// Обе cookie переустановлены свежей парой.
	set := map[string]*http.Cookie{}
	for _, c := range out.Result().Cookies() {
		set[c.Name] = c
	}
	require.Contains(t, set, cookies.AccessCookie)
	require.Contains(t, set, cookies.RefreshCookie)
	require.Positive(t, set[cookies.AccessCookie].MaxAge)
	require.Positive(t, set[cookies.RefreshCookie].MaxAge)

	// Новая refresh-cookie читается обратно и отличается от старой.
	readReq := httptest.NewRequest(http.MethodGet, "/", nil)
	readReq.AddCookie(set[cookies.RefreshCookie])
	rotated, ok := jar.Read(readReq, cookies.RefreshCookie)
	require.True(t, ok)
	require.NotEqual(t, refresh, rotated)
}

func TestSession_NoCookies(t *testing.T) {
	t.Parallel()

	svc, _, jar := newSessionEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/projects", nil)
	out := httptest.NewRecorder()

	Session(svc, jar)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run")
	})).ServeHTTP(out, req)

	require.Equal(t, http.StatusUnauthorized, out.Code)
}

func TestSession_RevokedRefreshClearsCookies(t *testing.T) {
	t.Parallel()

	svc, st, jar := newSessionEnv(t)
	userID := uuid.New()
	refresh := signToken(t, testRefreshSecret, userID, 24*time.Hour)

	st.EXPECT().RefreshTokenByHash(gomock.Any(), sha256b64(refresh)).
		Return(&models.RefreshToken{
			TokenHash: sha256b64(refresh),
			UserID:    userID,
			ExpiresAt: time.Now().Add(24 * time.Hour),
			Revoked:   true,
		}, nil)

	seal := httptest.NewRecorder()
	jar.Set(seal, cookies.RefreshCookie, refresh, time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/projects", nil)
	req.AddCookie(seal.Result().Cookies()[0])

	out := httptest.NewRecorder()
	Session(svc, jar)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run")
	})).ServeHTTP(out, req)

	require.Equal(t, http.StatusUnauthorized, out.Code)

	// Мёртвая сессия: обе cookie стёрты, клиент не будет долбить
	// невалидной парой.
	cleared := map[string]bool{}
	for _, c := range out.Result().Cookies() {
		if c.MaxAge < 0 {
			cleared[c.Name] = true
		}
	}
	require.True(t, cleared[cookies.AccessCookie])
	require.True(t, cleared[cookies.RefreshCookie])
}

func TestSession_StorageFailureIsUnauthorized(t *testing.T) {
	t.Parallel()

	// Сбой хранилища во время ротации не превращается в 500: для клиента
	// любой провал этого пути — обычный 401 со стёртыми cookie.
	svc, st, jar := newSessionEnv(t)
	userID := uuid.New()
	refresh := signToken(t, testRefreshSecret, userID, 24*time.Hour)

	st.EXPECT().RefreshTokenByHash(gomock.Any(), sha256b64(refresh)).
		Return(nil, errors.New("connection reset by peer"))

	seal := httptest.NewRecorder()
	jar.Set(seal, cookies.RefreshCookie, refresh, time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/projects", nil)
	req.AddCookie(seal.Result().Cookies()[0])

	out := httptest.NewRecorder()
	Session(svc, jar)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run")
	})).ServeHTTP(out, req)

	require.Equal(t, http.StatusUnauthorized, out.Code)

	cleared := map[string]bool{}
	for _, c := range out.Result().Cookies() {
		if c.MaxAge < 0 {
			cleared[c.Name] = true
		}
	}
	require.True(t, cleared[cookies.AccessCookie])
	require.True(t, cleared[cookies.RefreshCookie])
}

func TestSession_TamperedAccessFallsToRefresh(t *testing.T) {
	t.Parallel()

	svc, st, jar := newSessionEnv(t)
	userID := uuid.New()
	refresh := signToken(t, testRefreshSecret, userID, 24*time.Hour)
	oldHash := sha256b64(refresh)

	st.EXPECT().RefreshTokenByHash(gomock.Any(), oldHash).
		Return(&models.RefreshToken{TokenHash: oldHash, UserID: userID, ExpiresAt: time.Now().Add(time.Hour)}, nil)
	st.EXPECT().UserByID(gomock.Any(), userID).
		Return(&models.User{ID: userID, Email: "ivan@example.com"}, nil)
	st.EXPECT().RotateRefreshToken(gomock.Any(), oldHash, gomock.Any(), gomock.Any()).Return(nil)

	seal := httptest.NewRecorder()
	jar.Set(seal, cookies.RefreshCookie, refresh, time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/projects", nil)
	// Подделанная access-cookie (без конверта) эквивалентна отсутствующей.
	req.AddCookie(&http.Cookie{Name: cookies.AccessCookie, Value: "garbage"})
	req.AddCookie(seal.Result().Cookies()[0])

	out := httptest.NewRecorder()
	Session(svc, jar)(echoIdentity(t, userID)).ServeHTTP(out, req)

	require.Equal(t, http.StatusOK, out.Code)
}
