package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis_rate/v10"
	"golang.org/x/time/rate"
)

// Config holds rate limiter configuration.
type Config struct {
	AnalyzePerMinute int // per-IP limit on the analyze endpoint
}

// DefaultConfig returns the default rate limiting configuration.
func DefaultConfig() Config {
	return Config{AnalyzePerMinute: 10}
}

// Result of a rate limit check.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Limiter provides distributed rate limiting with Redis and an in-memory
// fallback when Redis is unavailable.
type Limiter struct {
	redisLimiter *redis_rate.Limiter
	config       Config

	fallbackMutex    sync.Mutex
	fallbackLimiters map[string]*rate.Limiter
}

// NewLimiter creates a rate limiter backed by Redis when available.
func NewLimiter(redisClient *RedisClient, config Config) *Limiter {
	l := &Limiter{
		config:           config,
		fallbackLimiters: make(map[string]*rate.Limiter),
	}
	if redisClient.IsEnabled() {
		l.redisLimiter = redis_rate.NewLimiter(redisClient.Client())
	}
	return l
}

// AllowIP checks the per-minute analyze limit for one client IP.
func (l *Limiter) AllowIP(ctx context.Context, ip string) Result {
	limit := l.config.AnalyzePerMinute

	if l.redisLimiter != nil {
		res, err := l.redisLimiter.Allow(ctx, fmt.Sprintf("ratelimit:analyze:%s", ip), redis_rate.PerMinute(limit))
		if err == nil {
			return Result{
				Allowed:    res.Allowed > 0,
				Limit:      limit,
				Remaining:  res.Remaining,
				RetryAfter: res.RetryAfter,
			}
		}
		slog.Error("Redis rate limit check failed, using fallback", "ip", ip, "error", err)
	}

	return l.allowFallback(ip, limit)
}

func (l *Limiter) allowFallback(ip string, limit int) Result {
	l.fallbackMutex.Lock()
	lim, ok := l.fallbackLimiters[ip]
	if !ok {
		lim = rate.NewLimiter(rate.Limit(float64(limit)/60), limit)
		l.fallbackLimiters[ip] = lim
	}
	l.fallbackMutex.Unlock()

	if lim.Allow() {
		return Result{Allowed: true, Limit: limit, Remaining: int(lim.Tokens())}
	}
	return Result{Allowed: false, Limit: limit, RetryAfter: time.Minute}
}

// Middleware enforces the analyze rate limit per client IP. Limiter failures
// never block the request.
func (l *Limiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		result := l.AllowIP(c.Request.Context(), c.ClientIP())

		c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))

		if !result.Allowed {
			c.Header("Retry-After", strconv.Itoa(int(result.RetryAfter.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"message": fmt.Sprintf("You have exceeded the limit of %d analyses per minute.", result.Limit),
			})
			return
		}
		c.Next()
	}
}
