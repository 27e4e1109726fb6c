package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RateLimiter decides whether one more attempt under key is allowed.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// allowLua trims the window, then records the attempt only while the window
// still has room, so rejected attempts do not extend a lockout.
//
// KEYS[1] window key; ARGV: cutoff score, now score, limit, member, ttl ms.
var allowLua = redis.NewScript(`
redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', ARGV[1])
if redis.call('ZCARD', KEYS[1]) >= tonumber(ARGV[3]) then
  return 0
end
redis.call('ZADD', KEYS[1], ARGV[2], ARGV[4])
redis.call('PEXPIRE', KEYS[1], ARGV[5])
return 1
`)

// RedisLimiter is a sliding-window limiter over a Redis sorted set: one
// member per accepted attempt, scored by its time, trimmed to the window.
type RedisLimiter struct {
	client redis.UniversalClient
	prefix string
	limit  int
	window time.Duration
	now    func() time.Time
}

func NewRedisLimiter(client redis.UniversalClient, prefix string, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, prefix: prefix, limit: limit, window: window, now: time.Now}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	now := l.now().UnixNano()
	key = fmt.Sprintf("ratelimit:%s:%s", l.prefix, key)

	res, err := allowLua.Run(ctx, l.client, []string{key},
		strconv.FormatInt(now-l.window.Nanoseconds(), 10),
		strconv.FormatInt(now, 10),
		l.limit,
		uuid.NewString(),
		l.window.Milliseconds(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("rate limit: %w", err)
	}
	return res == 1, nil
}

// NopLimiter allows everything; it stands in when no Redis is configured.
type NopLimiter struct{}

func (NopLimiter) Allow(context.Context, string) (bool, error) { return true, nil }

// RateLimit rejects clients that exceeded the limiter with 429. Limiter
// failures let the request through.
func RateLimit(l RateLimiter, log logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// ClientIP only honours forwarding headers from trusted proxies.
		key := c.ClientIP()

		allowed, err := l.Allow(c.Request.Context(), key)
		if err != nil {
			log.Warn(c.Request.Context(), "rate limiting unavailable", "ip", key, "error", err)
			c.Next()
			return
		}

		if !allowed {
			log.Warn(c.Request.Context(), "rate limit exceeded", "ip", key, "path", c.FullPath())
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"detail": "Too many requests"})
			return
		}

		c.Next()
	}
}
