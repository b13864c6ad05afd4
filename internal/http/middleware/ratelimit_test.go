package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/TreasureUzoma/lettera/internal/config"
	"github.com/TreasureUzoma/lettera/internal/ratelimit"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestRateLimit_FailsOpenOnRedisError(t *testing.T) {
	t.Parallel()

	// Redis на заведомо мёртвом адресе: Allow вернёт ошибку соединения,
	// и запрос обязан пройти, а не получить 429/500.
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	limiter := ratelimit.New(rdb, "test-rate:")

	req := httptest.NewRequest(http.MethodGet, "/projects", nil)
	out := httptest.NewRecorder()

	mw := RateLimit(limiter, "general", config.LimitConfig{Window: time.Minute, Max: 3})
	mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})).ServeHTTP(out, req)

	require.Equal(t, http.StatusOK, out.Code)
}

func TestClientIP(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		remote  string
		headers map[string]string
		want    string
	}{
		{
			name:   "forwarded chain takes first hop",
			remote: "10.0.0.1:9999",
			headers: map[string]string{
				"X-Forwarded-For":  "203.0.113.7, 10.0.0.2, 10.0.0.1",
				"CF-Connecting-IP": "198.51.100.1",
			},
			want: "203.0.113.7",
		},
		{
			name:    "single forwarded address",
			remote:  "10.0.0.1:9999",
			headers: map[string]string{"X-Forwarded-For": "203.0.113.7"},
			want:    "203.0.113.7",
		},
		{
			name:    "cloudflare header",
			remote:  "10.0.0.1:9999",
			headers: map[string]string{"CF-Connecting-IP": "198.51.100.1"},
			want:    "198.51.100.1",
		},
		{
			name:    "real ip header",
			remote:  "10.0.0.1:9999",
			headers: map[string]string{"X-Real-Ip": "192.0.2.4"},
			want:    "192.0.2.4",
		},
		{
			name:   "remote addr fallback",
			remote: "192.0.2.9:4242",
			want:   "192.0.2.9",
		},
		{
			name:   "unparseable remote addr",
			remote: "not-an-addr",
			want:   "unknown",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tc.remote
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}

			require.Equal(t, tc.want, clientIP(req))
		})
	}
}
