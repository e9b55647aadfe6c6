package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/prohmpiriya/sportify-web/pkg/logger"
	pkgredis "github.com/prohmpiriya/sportify-web/pkg/redis"
	"github.com/prohmpiriya/sportify-web/pkg/telemetry"
)

// RateLimitConfig holds token bucket settings
type RateLimitConfig struct {
	// RequestsPerSecond refills the bucket
	RequestsPerSecond int
	// BurstSize is the bucket capacity
	BurstSize int
	// KeyPrefix namespaces buckets, e.g. per form
	KeyPrefix string
	// CleanupInterval and EntryTTL bound the local limiter's memory
	CleanupInterval time.Duration
	EntryTTL        time.Duration
}

// Limiter decides whether one more request for key fits the budget
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type bucket struct {
	mu         sync.Mutex
	tokens     float64
	lastUpdate time.Time
}

// LocalRateLimiter is an in-memory token bucket per key
type LocalRateLimiter struct {
	config  RateLimitConfig
	entries sync.Map
	stop    chan struct{}
	once    sync.Once
}

// NewLocalRateLimiter creates a local limiter and starts its cleanup loop
func NewLocalRateLimiter(config RateLimitConfig) *LocalRateLimiter {
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = time.Minute
	}
	if config.EntryTTL <= 0 {
		config.EntryTTL = time.Minute
	}
	rl := &LocalRateLimiter{config: config, stop: make(chan struct{})}
	go rl.cleanup()
	return rl
}

// Allow takes one token from the bucket of key
func (rl *LocalRateLimiter) Allow(_ context.Context, key string) (bool, error) {
	now := time.Now()
	v, _ := rl.entries.LoadOrStore(key, &bucket{
		tokens:     float64(rl.config.BurstSize),
		lastUpdate: now,
	})
	b := v.(*bucket)

	b.mu.Lock()
	defer b.mu.Unlock()

	elapsed := now.Sub(b.lastUpdate).Seconds()
	b.tokens = min(float64(rl.config.BurstSize), b.tokens+elapsed*float64(rl.config.RequestsPerSecond))
	b.lastUpdate = now

	if b.tokens >= 1 {
		b.tokens--
		return true, nil
	}
	return false, nil
}

func (rl *LocalRateLimiter) cleanup() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cutoff := time.Now().Add(-rl.config.EntryTTL)
			rl.entries.Range(func(key, value interface{}) bool {
				b := value.(*bucket)
				b.mu.Lock()
				if b.lastUpdate.Before(cutoff) {
					rl.entries.Delete(key)
				}
				b.mu.Unlock()
				return true
			})
		case <-rl.stop:
			return
		}
	}
}

// Stop ends the cleanup loop
func (rl *LocalRateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stop) })
}

const tokenBucketScript = `
local key = KEYS[1]
local rate = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])
local now = tonumber(ARGV[3])

local data = redis.call("HMGET", key, "tokens", "last_update")
local tokens = tonumber(data[1]) or burst
local last_update = tonumber(data[2]) or now

tokens = math.min(burst, tokens + (now - last_update) * rate)

local allowed = 0
if tokens >= 1 then
    tokens = tokens - 1
    allowed = 1
end

redis.call("HSET", key, "tokens", tokens, "last_update", now)
redis.call("EXPIRE", key, 60)
return allowed
`

// RedisRateLimiter shares buckets across instances through Redis
type RedisRateLimiter struct {
	config RateLimitConfig
	client *pkgredis.Client
}

// NewRedisRateLimiter creates a Redis backed limiter
func NewRedisRateLimiter(client *pkgredis.Client, config RateLimitConfig) *RedisRateLimiter {
	return &RedisRateLimiter{config: config, client: client}
}

// Allow runs the token bucket script atomically for key
func (rl *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	now := float64(time.Now().UnixNano()) / 1e9
	res, err := rl.client.EvalScript(ctx, "token_bucket", tokenBucketScript,
		[]string{"ratelimit:" + key},
		rl.config.RequestsPerSecond,
		rl.config.BurstSize,
		now,
	).Int64()
	if err != nil {
		return false, fmt.Errorf("rate limit script: %w", err)
	}
	return res == 1, nil
}

// RateLimit throttles requests per client IP. Limiter errors fail open.
func RateLimit(limiter Limiter, config RateLimitConfig, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := telemetry.StartSpan(c.Request.Context(), "middleware.rate_limiter")
		defer span.End()

		key := config.KeyPrefix + c.ClientIP()
		span.SetAttributes(attribute.String("rate_limit.key", key))

		allowed, err := limiter.Allow(ctx, key)
		if err != nil {
			log.Warn("rate limiter unavailable, allowing request",
				zap.String("request_id", GetRequestID(c)),
				zap.Error(err),
			)
			allowed = true
		}
		span.SetAttributes(attribute.Bool("allowed", allowed))

		c.Header("X-RateLimit-Limit", strconv.Itoa(config.RequestsPerSecond))
		if !allowed {
			span.SetStatus(codes.Error, "rate limit exceeded")
			c.Header("Retry-After", "1")
			abort(c, http.StatusTooManyRequests, "TOO_MANY_REQUESTS", "Too many attempts. Please wait a moment and try again.")
			return
		}

		c.Next()
	}
}
