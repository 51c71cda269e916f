package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/phrazzld/voicetask-api/internal/api/shared"
	"github.com/phrazzld/voicetask-api/internal/platform/logger"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// Limiter decides whether one more request for key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// KeyFunc derives the throttling key from a request.
type KeyFunc func(r *http.Request) string

// ClientIPKey keys requests by remote host. chi's RealIP middleware, when
// mounted earlier, has already rewritten RemoteAddr from proxy headers.
func ClientIPKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimit rejects requests over the limit with 429. Limiter errors let the
// request through and are logged.
func RateLimit(name string, limiter Limiter, keyFunc KeyFunc) func(http.Handler) http.Handler {
	if keyFunc == nil {
		keyFunc = ClientIPKey
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := name + ":" + keyFunc(r)

			allowed, err := limiter.Allow(r.Context(), key)
			if err != nil {
				logger.FromContext(r.Context()).Warn("rate limiter unavailable, allowing request",
					slog.String("limiter", name),
					slog.String("error", err.Error()))
				w.Header().Set("X-RateLimit-Error", "true")
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				shared.RespondWithErrorAndLog(w, r, http.StatusTooManyRequests, "Rate limit exceeded", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// MemoryLimiter keeps a token bucket per key in process memory.
type MemoryLimiter struct {
	limit rate.Limit
	burst int

	mu       sync.Mutex
	visitors map[string]*rate.Limiter
}

// NewMemoryLimiter allows rps requests per second per key with the given burst.
func NewMemoryLimiter(rps float64, burst int) *MemoryLimiter {
	return &MemoryLimiter{
		limit:    rate.Limit(rps),
		burst:    burst,
		visitors: make(map[string]*rate.Limiter),
	}
}

// Allow implements Limiter.
func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	limiter, ok := l.visitors[key]
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.visitors[key] = limiter
	}
	l.mu.Unlock()
	return limiter.Allow(), nil
}

// RedisLimiter is a sliding-window limiter shared by every instance that
// points at the same Redis. Each key is a sorted set of request timestamps.
type RedisLimiter struct {
	client redis.Cmdable
	limit  int
	window time.Duration
	now    func() time.Time
}

// NewRedisLimiter allows limit requests per window per key.
func NewRedisLimiter(client redis.Cmdable, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, limit: limit, window: window, now: time.Now}
}

// Allow implements Limiter.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	key = "rate_limit:" + key
	now := l.now().UnixNano()
	windowStart := now - l.window.Nanoseconds()

	pipe := l.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart, 10))
	countCmd := pipe.ZCard(ctx, key)
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now), Member: now})
	pipe.Expire(ctx, key, l.window)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("failed to execute rate limit pipeline: %w", err)
	}
	return countCmd.Val() < int64(l.limit), nil
}
