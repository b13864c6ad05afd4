// ratelimit — скользящее окно (sliding-window log) поверх разделяемого
// Redis.
//
// На каждый запрос выполняется одна атомарная транзакция MULTI/EXEC:
// ZADD текущей метки, ZREMRANGEBYSCORE устаревших, ZCARD. Атомарность
// обязательна — частичное применение под конкуренцией даёт недосчёт и
// обход лимита. Фоновой чистки нет: записи неактивных отпечатков живут
// до следующего обращения за пределами окна.
package ratelimit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limit — конфигурация группы маршрутов: окно и потолок запросов.
type Limit struct {
	Window time.Duration
	Max    int64
}

// Limiter считает запросы по отпечатку клиента в Redis.
// Экземпляр безопасен для конкурентного использования.
type Limiter struct {
	rdb    *redis.Client
	prefix string
}

// New создаёт Limiter поверх готового клиента Redis.
// Если prefix пустой — используется "rate:".
func New(rdb *redis.Client, prefix string) *Limiter {
	if prefix == "" {
		prefix = "rate:"
	}

	return &Limiter{rdb: rdb, prefix: prefix}
}

// NewClient создаёт клиент Redis из URL (redis://:pass@host:6379/0)
// и проверяет соединение ping-ом — fail-fast на старте процесса.
func NewClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	const op = "ratelimit.NewClient"

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rdb := redis.NewClient(opt)

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return rdb, nil
}

// Fingerprint — односторонний хэш (sha256 hex) пары (User-Agent, client IP).
// Сырые идентифицирующие данные в Redis не попадают.
func Fingerprint(userAgent, clientIP string) string {
	sum := sha256.Sum256([]byte(userAgent + clientIP))
	return hex.EncodeToString(sum[:])
}

// Allow регистрирует запрос отпечатка и сообщает, проходит ли он лимит.
//
// Шаги add/prune/count исполняются одной транзакцией против Redis:
//  1. ZADD (score — миллисекунды, member — наносекунды: конкурентные
//     запросы одного отпечатка не схлопываются в один элемент);
//  2. ZREMRANGEBYSCORE всего старше now-window;
//  3. ZCARD.
//
// count > Max — отказ.
func (l *Limiter) Allow(ctx context.Context, fingerprint string, limit Limit) (bool, error) {
	const op = "ratelimit.Allow"

	now := time.Now()
	key := l.prefix + fingerprint
	cutoff := now.Add(-limit.Window).UnixMilli()

	pipe := l.rdb.TxPipeline()
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(now.UnixMilli()),
		Member: strconv.FormatInt(now.UnixNano(), 10),
	})
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(cutoff, 10))
	card := pipe.ZCard(ctx, key)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return card.Val() <= limit.Max, nil
}
