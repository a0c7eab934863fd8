package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/go-ddd-rbac/internal/metrics"
	"github.com/oksasatya/go-ddd-rbac/pkg/response"
)

// ipFromCtx extracts the client IP from Gin context, falling back to "unknown"
func ipFromCtx(c *gin.Context) string {
	if ip := c.GetString("real_ip"); ip != "" {
		return ip
	}
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "unknown"
}

func normalizePath(c *gin.Context) string {
	if fp := c.FullPath(); fp != "" {
		return fp
	}
	return c.Request.URL.Path
}

// KeyFunc builds a rate-limit key from the request.
type KeyFunc func(c *gin.Context) string

// KeyByIPAndPath limits by client IP and route template.
func KeyByIPAndPath() KeyFunc {
	return func(c *gin.Context) string {
		return "rl:path:" + normalizePath(c) + ":ip:" + ipFromCtx(c)
	}
}

// KeyByUserID limits authenticated callers by user id and anonymous ones by IP.
func KeyByUserID() KeyFunc {
	return func(c *gin.Context) string {
		uid := c.GetString(CtxUserIDKey)
		if uid == "" {
			return "rl:user:anon:ip:" + ipFromCtx(c)
		}
		return "rl:user:" + uid
	}
}

// AllowFunc returns true to bypass the limit.
type AllowFunc func(*gin.Context) bool

// Counter increments a fixed-window counter and reports the hits so far and the
// time left in the window.
type Counter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int, time.Duration, error)
}

// Atomic INCR, with PEXPIRE on the first hit of a window.
var incrExpireScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {current, redis.call("PTTL", KEYS[1])}
`)

type RedisCounter struct {
	rdb redis.Scripter
}

func NewRedisCounter(rdb redis.Scripter) *RedisCounter { return &RedisCounter{rdb: rdb} }

func (r *RedisCounter) Incr(ctx context.Context, key string, window time.Duration) (int, time.Duration, error) {
	res, err := incrExpireScript.Run(ctx, r.rdb, []string{key}, window.Milliseconds()).Slice()
	if err != nil {
		return 0, 0, err
	}
	var count, pttl int
	if len(res) > 0 {
		count = toInt(res[0])
	}
	if len(res) > 1 {
		pttl = toInt(res[1])
	}
	return count, time.Duration(pttl) * time.Millisecond, nil
}

// MemoryCounter keeps windows in process memory; used when Redis is not configured.
type MemoryCounter struct {
	c *cache.Cache
}

func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{c: cache.New(time.Minute, 5*time.Minute)}
}

func (m *MemoryCounter) Incr(_ context.Context, key string, window time.Duration) (int, time.Duration, error) {
	if err := m.c.Add(key, 1, window); err == nil {
		return 1, window, nil
	}
	n, err := m.c.IncrementInt(key, 1)
	if err != nil {
		// expired between Add and IncrementInt
		m.c.Set(key, 1, window)
		return 1, window, nil
	}
	_, exp, _ := m.c.GetWithExpiration(key)
	return n, time.Until(exp), nil
}

// RateLimit applies a fixed-window limit with the standard X-RateLimit headers.
// Counter failures fail open.
func RateLimit(counter Counter, max int, window time.Duration, keyFn KeyFunc, allow AllowFunc, rec *metrics.Recorder) gin.HandlerFunc {
	if counter == nil || max <= 0 || window <= 0 || keyFn == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		if allow != nil && allow(c) {
			c.Next()
			return
		}
		if strings.EqualFold(c.Request.Method, http.MethodOptions) {
			c.Next()
			return
		}

		count, ttl, err := counter.Incr(c.Request.Context(), keyFn(c), window)
		if err != nil {
			c.Next()
			return
		}
		resetSec := 0
		if ttl > 0 {
			resetSec = int((ttl + time.Second - 1) / time.Second)
		}
		remaining := max - count
		if remaining < 0 {
			remaining = 0
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(max))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.Itoa(resetSec))

		if count > max {
			if resetSec > 0 {
				c.Header("Retry-After", strconv.Itoa(resetSec))
			}
			rec.RateLimitHit(normalizePath(c))
			response.Error[any](c, http.StatusTooManyRequests, "rate limit exceeded", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

func toInt(v any) int {
	switch x := v.(type) {
	case int64:
		return int(x)
	case int:
		return x
	case string:
		i, _ := strconv.Atoi(x)
		return i
	}
	return 0
}
