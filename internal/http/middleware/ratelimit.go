package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/TreasureUzoma/lettera/internal/config"
	"github.com/TreasureUzoma/lettera/internal/http/httperr"
	logctx "github.com/TreasureUzoma/lettera/internal/pkg/log"
	"github.com/TreasureUzoma/lettera/internal/ratelimit"
)

// RateLimit ограничивает частоту запросов группы маршрутов по отпечатку
// клиента (User-Agent + IP). Каждой группе — свой name, чтобы лимиты
// разных групп не складывались в один счётчик.
//
// Отказ Redis — fail-open с логом: деградация лимитера не должна класть
// весь API.
func RateLimit(limiter *ratelimit.Limiter, name string, cfg config.LimitConfig) Middleware {
	limit := ratelimit.Limit{Window: cfg.Window, Max: cfg.Max}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fp := name + ":" + ratelimit.Fingerprint(r.UserAgent(), clientIP(r))

			ok, err := limiter.Allow(r.Context(), fp, limit)
			if err != nil {
				logctx.From(r.Context()).LogAttrs(r.Context(), slog.LevelWarn,
					"rate limiter unavailable, failing open",
					slog.String("group", name),
					slog.String("error", err.Error()),
				)
				next.ServeHTTP(w, r)
				return
			}

			if !ok {
				httperr.WriteRateLimited(w, r)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP восстанавливает IP клиента за прокси.
// Приоритет заголовков повторяет порядок доверия входного фронта:
// X-Forwarded-For (первый адрес) → CF-Connecting-IP → X-Real-Ip →
// RemoteAddr → "unknown".
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if first, _, ok := strings.Cut(xff, ","); ok {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(xff)
	}

	if ip := r.Header.Get("CF-Connecting-IP"); ip != "" {
		return ip
	}

	if ip := r.Header.Get("X-Real-Ip"); ip != "" {
		return ip
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}

	return "unknown"
}
