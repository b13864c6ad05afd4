package middleware

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/TreasureUzoma/lettera/internal/config"
	"github.com/TreasureUzoma/lettera/internal/models"
	"github.com/TreasureUzoma/lettera/internal/service"
	"github.com/TreasureUzoma/lettera/internal/storage"
	"github.com/TreasureUzoma/lettera/internal/vault"
	"github.com/TreasureUzoma/lettera/mocks"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newExternalEnv(t *testing.T) (*service.Service, *mocks.MockStorage, *vault.Vault) {
	t.Helper()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	st := mocks.NewMockStorage(ctrl)

	v, err := vault.New("mw-encryption-key")
	require.NoError(t, err)

	svc := service.New(st, v, config.AuthConfig{
		AccessSecret:      "a",
		RefreshSecret:     "b",
		UnsubscribeSecret: "c",
		AccessTokenTTL:    time.Minute,
		RefreshTokenTTL:   time.Hour,
		UnsubscribeTTL:    time.Minute,
	})

	return svc, st, v
}

func withTier(ctx context.Context, tier models.KeyTier) context.Context {
	return context.WithValue(ctx, ctxKeyTier, tier)
}

func randomPublicKey(t *testing.T) string {
	t.Helper()

	b := make([]byte, 16)
	_, err := rand.Read(b)
	require.NoError(t, err)

	return "letr_" + hex.EncodeToString(b)
}

func TestAPIKey_PublicProjectInContext(t *testing.T) {
	t.Parallel()

	svc, st, v := newExternalEnv(t)

	projectID := uuid.New()
	publicKey := randomPublicKey(t)

	encrypted, err := v.Encrypt("lk_secret")
	require.NoError(t, err)

	st.EXPECT().APIKeyByPublicKey(gomock.Any(), publicKey).
		Return(&models.ProjectAPIKey{ID: uuid.New(), ProjectID: projectID, PublicKey: publicKey, EncryptedSecretKey: encrypted}, nil)
	st.EXPECT().ProjectByID(gomock.Any(), projectID).
		Return(&models.Project{ID: projectID, Slug: "news"}, nil)
	st.EXPECT().TouchAPIKey(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	req := httptest.NewRequest(http.MethodPost, "/external/subscribers", nil)
	req.Header.Set(HeaderPublicKey, publicKey)

	out := httptest.NewRecorder()
	APIKey(svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		project, ok := ProjectFrom(r.Context())
		require.True(t, ok)
		require.Equal(t, projectID, project.ID)

		tier, ok := TierFrom(r.Context())
		require.True(t, ok)
		require.Equal(t, models.KeyTierPublic, tier)

		w.WriteHeader(http.StatusOK)
	})).ServeHTTP(out, req)

	require.Equal(t, http.StatusOK, out.Code)
}

func TestAPIKey_MissingHeader(t *testing.T) {
	t.Parallel()

	svc, _, _ := newExternalEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/external/subscribers", nil)
	out := httptest.NewRecorder()

	APIKey(svc)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run")
	})).ServeHTTP(out, req)

	require.Equal(t, http.StatusUnauthorized, out.Code)
}

func TestAPIKey_UnknownKey(t *testing.T) {
	t.Parallel()

	svc, st, _ := newExternalEnv(t)
	publicKey := randomPublicKey(t)

	st.EXPECT().APIKeyByPublicKey(gomock.Any(), publicKey).Return(nil, storage.ErrNotFound)

	req := httptest.NewRequest(http.MethodPost, "/external/subscribers", nil)
	req.Header.Set(HeaderPublicKey, publicKey)
	out := httptest.NewRecorder()

	APIKey(svc)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run")
	})).ServeHTTP(out, req)

	require.Equal(t, http.StatusUnauthorized, out.Code)
}

func TestRequireTier_PublicKeyOnPrivateRoute(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/external/subscribers", nil)
	req = req.WithContext(withTier(req.Context(), models.KeyTierPublic))
	out := httptest.NewRecorder()

	RequireTier(models.KeyTierPrivate)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run")
	})).ServeHTTP(out, req)

	// Ключ валиден, но уровень недостаточен: это 403, не 401.
	require.Equal(t, http.StatusForbidden, out.Code)
}

func TestRequireTier_PrivatePasses(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/external/subscribers", nil)
	req = req.WithContext(withTier(req.Context(), models.KeyTierPrivate))
	out := httptest.NewRecorder()

	RequireTier(models.KeyTierPrivate)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})).ServeHTTP(out, req)

	require.Equal(t, http.StatusOK, out.Code)
}
