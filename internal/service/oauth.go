package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/TreasureUzoma/lettera/internal/config"
	"github.com/TreasureUzoma/lettera/internal/models"
	"github.com/TreasureUzoma/lettera/internal/storage"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"
)

// Провайдеры OAuth-входа.
const (
	ProviderGoogle = "google"
	ProviderGithub = "github"
)

// oauthProfile — нормализованный профиль, полученный от провайдера.
type oauthProfile struct {
	ProviderID string
	Email      string
	Name       string
	AvatarURL  string
}

// OAuthExchanger обменивает authorization code на профиль пользователя у
// Google/GitHub. Все сетевые вызовы ограничены таймаутом: зависший
// провайдер не должен держать запрос дольше предела.
type OAuthExchanger struct {
	google  *oauth2.Config
	github  *oauth2.Config
	timeout time.Duration
}

// NewOAuthExchanger собирает конфигурации провайдеров; провайдер без
// client id считается отключённым.
func NewOAuthExchanger(cfg config.OAuthConfig) *OAuthExchanger {
	e := &OAuthExchanger{timeout: cfg.ExchangeTimeout}

	if cfg.GoogleClientID != "" {
		e.google = &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.AppURL + "/auth/google/callback",
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		}
	}

	if cfg.GithubClientID != "" {
		e.github = &oauth2.Config{
			ClientID:     cfg.GithubClientID,
			ClientSecret: cfg.GithubClientSecret,
			RedirectURL:  cfg.AppURL + "/auth/github/callback",
			Scopes:       []string{"read:user", "user:email"},
			Endpoint:     github.Endpoint,
		}
	}

	return e
}

// exchange обменивает код и запрашивает профиль у провайдера.
func (e *OAuthExchanger) exchange(ctx context.Context, provider, code string) (oauthProfile, error) {
	const op = "service.oauth.exchange"

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	switch provider {
	case ProviderGoogle:
		if e.google == nil {
			return oauthProfile{}, fmt.Errorf("%s: provider disabled: %w", op, ErrInvalidCredentials)
		}

		return e.googleProfile(ctx, code)
	case ProviderGithub:
		if e.github == nil {
			return oauthProfile{}, fmt.Errorf("%s: provider disabled: %w", op, ErrInvalidCredentials)
		}

		return e.githubProfile(ctx, code)
	default:
		return oauthProfile{}, fmt.Errorf("%s: unknown provider %q: %w", op, provider, ErrInvalidCredentials)
	}
}

func (e *OAuthExchanger) googleProfile(ctx context.Context, code string) (oauthProfile, error) {
	const op = "service.oauth.googleProfile"

	token, err := e.google.Exchange(ctx, code)
	if err != nil {
		return oauthProfile{}, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	var info struct {
		ID      string `json:"id"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := fetchJSON(ctx, e.google.Client(ctx, token), "https://www.googleapis.com/oauth2/v2/userinfo", &info); err != nil {
		return oauthProfile{}, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	if info.ID == "" || info.Email == "" {
		return oauthProfile{}, fmt.Errorf("%s: incomplete profile: %w", op, ErrInvalidCredentials)
	}

	return oauthProfile{
		ProviderID: info.ID,
		Email:      strings.ToLower(info.Email),
		Name:       info.Name,
		AvatarURL:  info.Picture,
	}, nil
}

func (e *OAuthExchanger) githubProfile(ctx context.Context, code string) (oauthProfile, error) {
	const op = "service.oauth.githubProfile"

	token, err := e.github.Exchange(ctx, code)
	if err != nil {
		return oauthProfile{}, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	client := e.github.Client(ctx, token)

	var user struct {
		ID        int64  `json:"id"`
		Login     string `json:"login"`
		Name      string `json:"name"`
		Email     string `json:"email"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := fetchJSON(ctx, client, "https://api.github.com/user", &user); err != nil {
		return oauthProfile{}, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	email := user.Email
	// GitHub отдаёт email в профиле только если он публичный;
	// иначе нужен отдельный запрос к /user/emails.
	if email == "" {
		var emails []struct {
			Email    string `json:"email"`
			Primary  bool   `json:"primary"`
			Verified bool   `json:"verified"`
		}
		if err := fetchJSON(ctx, client, "https://api.github.com/user/emails", &emails); err != nil {
			return oauthProfile{}, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}

		for _, e := range emails {
			if e.Primary && e.Verified {
				email = e.Email
				break
			}
		}
	}

	if user.ID == 0 || email == "" {
		return oauthProfile{}, fmt.Errorf("%s: incomplete profile: %w", op, ErrInvalidCredentials)
	}

	name := user.Name
	if name == "" {
		name = user.Login
	}

	return oauthProfile{
		ProviderID: fmt.Sprintf("%d", user.ID),
		Email:      strings.ToLower(email),
		Name:       name,
		AvatarURL:  user.AvatarURL,
	}, nil
}

func fetchJSON(ctx context.Context, client *http.Client, url string, dst interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(dst)
}

// OAuthLogin выполняет вход через внешнего провайдера: обменивает код на
// профиль, создаёт либо обновляет пользователя и открывает сессию.
//
// Любой сбой обмена (неверный код, таймаут провайдера, неполный профиль)
// наружу выглядит как обычный отказ аутентификации.
func (s *Service) OAuthLogin(ctx context.Context, provider, code, userAgent string) (Identity, models.TokenPair, error) {
	const op = "service.oauth.OAuthLogin"

	if s.oauth == nil {
		return Identity{}, models.TokenPair{}, fmt.Errorf("%s: oauth disabled: %w", op, ErrInvalidCredentials)
	}

	profile, err := s.oauth.exchange(ctx, provider, code)
	if err != nil {
		return Identity{}, models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	now := time.Now().UTC()

	user, err := s.storage.UserByEmail(ctx, profile.Email)
	switch {
	case err == nil:
		// Существующий аккаунт: обновляем данные провайдера, способ входа
		// не перетираем (email-аккаунт остаётся email-аккаунтом).
		user.ProviderID = profile.ProviderID
		if user.AvatarURL == "" {
			user.AvatarURL = profile.AvatarURL
		}
		user.UpdatedAt = now

		if err := s.storage.UpdateUser(ctx, user); err != nil {
			return Identity{}, models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
		}
	case errors.Is(err, storage.ErrNotFound):
		user = &models.User{
			ID:         uuid.New(),
			Email:      profile.Email,
			Name:       profile.Name,
			ProviderID: profile.ProviderID,
			AvatarURL:  profile.AvatarURL,
			AuthMethod: models.AuthMethod(provider),
			Plan:       models.PlanFree,
			CreatedAt:  now,
			UpdatedAt:  now,
		}

		if err := s.storage.SaveUser(ctx, user); err != nil {
			if errors.Is(err, storage.ErrAlreadyExists) {
				return Identity{}, models.TokenPair{}, fmt.Errorf("%s: %w", op, ErrEmailTaken)
			}

			return Identity{}, models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
		}
	default:
		return Identity{}, models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	return s.openSession(ctx, user, userAgent, now)
}
