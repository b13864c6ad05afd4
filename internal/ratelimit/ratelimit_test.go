package ratelimit

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Файл интеграционных тестов лимитера:
// - поднимает реальный Redis через testcontainers-go (redis:7-alpine);
// - проверяет точность скользящего окна и независимость отпечатков.
//
// Запуск локально:
//   GO_TEST_INTEGRATION=1 go test ./internal/ratelimit -v -race -count=1

func startRedis(t *testing.T) *Limiter {
	t.Helper()
	if os.Getenv("GO_TEST_INTEGRATION") == "" {
		t.Skip("integration tests are disabled (set GO_TEST_INTEGRATION=1)")
	}

	ctx := context.Background()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(60 * time.Second),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, _ := c.Host(ctx)
	port, _ := c.MappedPort(ctx, "6379/tcp")

	rdb, err := NewClient(ctx, fmt.Sprintf("redis://%s:%s/0", host, port.Port()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	return New(rdb, "test:rate:")
}

func TestFingerprint_Deterministic(t *testing.T) {
	t.Parallel()

	a := Fingerprint("Mozilla/5.0", "10.0.0.1")
	b := Fingerprint("Mozilla/5.0", "10.0.0.1")
	c := Fingerprint("Mozilla/5.0", "10.0.0.2")

	require.Equal(t, a, b)
	require.NotEqual(t, a, c)
	// sha256 hex, сырой UA/IP не просвечивает.
	require.Len(t, a, 64)
	require.NotContains(t, a, "Mozilla")
}

// Точность окна: windowMs=60000, max=5 — из шести запросов за секунду
// отклоняется ровно шестой.
func TestAllow_ExactThreshold(t *testing.T) {
	l := startRedis(t)

	ctx := context.Background()
	fp := Fingerprint("ua-threshold", "1.2.3.4")
	limit := Limit{Window: time.Minute, Max: 5}

	for i := 1; i <= 5; i++ {
		ok, err := l.Allow(ctx, fp, limit)
		require.NoError(t, err)
		require.True(t, ok, "request %d must pass", i)
	}

	ok, err := l.Allow(ctx, fp, limit)
	require.NoError(t, err)
	require.False(t, ok, "6th request must be rejected")
}

// После истечения окна без запросов новый запрос проходит.
func TestAllow_WindowSlides(t *testing.T) {
	l := startRedis(t)

	ctx := context.Background()
	fp := Fingerprint("ua-slide", "1.2.3.4")
	limit := Limit{Window: 2 * time.Second, Max: 2}

	for i := 0; i < 2; i++ {
		ok, err := l.Allow(ctx, fp, limit)
		require.NoError(t, err)
		require.True(t, ok)
	}

	ok, err := l.Allow(ctx, fp, limit)
	require.NoError(t, err)
	require.False(t, ok)

	time.Sleep(limit.Window + 200*time.Millisecond)

	ok, err = l.Allow(ctx, fp, limit)
	require.NoError(t, err)
	require.True(t, ok, "request after the window must pass")
}

// Лимиты отпечатков независимы.
func TestAllow_FingerprintIsolation(t *testing.T) {
	l := startRedis(t)

	ctx := context.Background()
	limit := Limit{Window: time.Minute, Max: 1}

	ok, err := l.Allow(ctx, Fingerprint("ua-a", "1.1.1.1"), limit)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = l.Allow(ctx, Fingerprint("ua-a", "1.1.1.1"), limit)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = l.Allow(ctx, Fingerprint("ua-b", "2.2.2.2"), limit)
	require.NoError(t, err)
	require.True(t, ok, "a different fingerprint has its own window")
}
