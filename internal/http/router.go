package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/TreasureUzoma/lettera/internal/config"
	"github.com/TreasureUzoma/lettera/internal/http/cookies"
	"github.com/TreasureUzoma/lettera/internal/http/handlers"
	"github.com/TreasureUzoma/lettera/internal/http/middleware"
	"github.com/TreasureUzoma/lettera/internal/models"
	"github.com/TreasureUzoma/lettera/internal/ratelimit"
	"github.com/TreasureUzoma/lettera/internal/service"
)

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger  *slog.Logger
	Limiter *ratelimit.Limiter
	Limits  config.RateLimitConfig
	Timeout time.Duration
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
//
// Лимиты считаются по группам маршрутов: у каждой группы свой счётчик на
// отпечаток клиента, значения групп заданы в конфигурации.
func NewRouter(svc *service.Service, jar *cookies.Jar, opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.Recover(),            // безопасно ловим паники
		middleware.RequestID(),          // формируем/прокидываем X-Request-Id (до логирования!)
		middleware.Logging(opts.Logger), // кладём request-scoped логгер в контекст и логируем
		middleware.Metrics(),            // счётчики и латентность
	)
	if opts.Timeout > 0 {
		root.Use(middleware.Timeout(opts.Timeout)) // общий дедлайн запроса
	}

	h := handlers.New(svc, jar)

	rate := func(name string, cfg config.LimitConfig) func(http.Handler) http.Handler {
		return middleware.RateLimit(opts.Limiter, name, cfg)
	}
	session := middleware.Session(svc, jar)

	// Аутентификация: самый жёсткий лимит, cookie ещё нет.
	root.Group(func(r chi.Router) {
		r.Use(rate("auth", opts.Limits.Auth))

		r.Post("/auth/signup", h.Signup)
		r.Post("/auth/login", h.Login)
		r.Post("/auth/{provider}/callback", h.OAuthCallback)
	})

	// Сессионные маршруты: частые фоновые обращения фронта.
	root.Group(func(r chi.Router) {
		r.Use(rate("session", opts.Limits.Session), session)

		r.Get("/session", h.Session)
		r.Post("/auth/logout", h.Logout)
	})

	// Дашборд: проекты, участники, ключи, подписчики, выпуски, профиль.
	root.Group(func(r chi.Router) {
		r.Use(rate("general", opts.Limits.General), session)

		r.Post("/projects", h.CreateProject)
		r.Get("/projects", h.ListProjects)
		r.Get("/projects/{project}", h.GetProject)
		r.Patch("/projects/{project}", h.UpdateProject)
		r.Delete("/projects/{project}", h.DeleteProject)

		r.Post("/projects/{project}/members", h.AddMember)
		r.Get("/projects/{project}/members", h.ListMembers)
		r.Patch("/projects/{project}/members/{member}", h.UpdateMemberRole)

		r.Post("/projects/{project}/keys", h.CreateAPIKey)
		r.Get("/projects/{project}/keys", h.ListAPIKeys)
		r.Delete("/projects/{project}/keys/{key}", h.RevokeAPIKey)

		r.Get("/projects/{project}/subscribers", h.ListSubscribers)

		r.Post("/projects/{project}/posts", h.CreatePost)
		r.Get("/projects/{project}/posts", h.ListPosts)
		r.Get("/projects/{project}/posts/{post}", h.GetPost)
		r.Patch("/projects/{project}/posts/{post}", h.UpdatePost)
		r.Delete("/projects/{project}/posts/{post}", h.DeletePost)

		r.Get("/profile", h.GetProfile)
		r.Patch("/profile", h.UpdateProfile)
	})

	// Внешний API: аутентификация ключами проекта.
	root.Group(func(r chi.Router) {
		r.Use(rate("external", opts.Limits.External), middleware.APIKey(svc))

		r.Post("/external/subscribers", h.ExternalCreateSubscriber)

		r.With(middleware.RequireTier(models.KeyTierPrivate)).
			Get("/external/subscribers", h.ExternalListSubscribers)
	})

	// Отписка: публичные ссылки из писем.
	root.Group(func(r chi.Router) {
		r.Use(rate("unsubscribe", opts.Limits.Unsubscribe))

		r.Post("/unsubscribe", h.RequestUnsubscribe)
		r.Get("/unsubscribe/confirm", h.ConfirmUnsubscribe)
	})

	root.Group(func(r chi.Router) {
		r.Use(rate("health", opts.Limits.Health))

		r.Get("/health", h.Health)
	})

	return root
}
