package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/Payphone-Digital/openpayments/internal/constants"
	"github.com/Payphone-Digital/openpayments/pkg/logger"
	"github.com/gin-gonic/gin"
)

// RateLimiter is a per-client sliding window.
type RateLimiter struct {
	tokens      map[string][]time.Time
	maxRequest  int
	duration    time.Duration
	lastCleanup time.Time
	mu          sync.Mutex
	now         func() time.Time
}

func NewRateLimiter(maxRequest int, duration time.Duration) *RateLimiter {
	return &RateLimiter{
		tokens:     make(map[string][]time.Time),
		maxRequest: maxRequest,
		duration:   duration,
		now:        time.Now,
	}
}

// prune drops timestamps older than the window; must hold lock.
func (rl *RateLimiter) prune(key string, now time.Time) []time.Time {
	tokens := rl.tokens[key]
	i := 0
	for i < len(tokens) && now.Sub(tokens[i]) > rl.duration {
		i++
	}
	tokens = tokens[i:]
	if len(tokens) == 0 {
		delete(rl.tokens, key)
		return nil
	}
	rl.tokens[key] = tokens
	return tokens
}

// cleanup sweeps idle clients at most once per window; must hold lock.
func (rl *RateLimiter) cleanup(now time.Time) {
	if now.Sub(rl.lastCleanup) < rl.duration {
		return
	}
	rl.lastCleanup = now
	for key := range rl.tokens {
		rl.prune(key, now)
	}
}

// Take records a request for key and reports whether it is within the limit,
// how many requests remain, and when the oldest counted request expires.
func (rl *RateLimiter) Take(key string) (allowed bool, remaining int, reset time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.cleanup(now)
	tokens := rl.prune(key, now)

	reset = now.Add(rl.duration)
	if len(tokens) > 0 {
		reset = tokens[0].Add(rl.duration)
	}

	if len(tokens) >= rl.maxRequest {
		return false, 0, reset
	}

	rl.tokens[key] = append(tokens, now)
	return true, rl.maxRequest - len(tokens) - 1, reset
}

// RateLimit limits each client IP to maxRequest requests per duration. A
// maxRequest of 0 disables limiting.
func RateLimit(maxRequest int, duration time.Duration) gin.HandlerFunc {
	if maxRequest <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	return rateLimit(NewRateLimiter(maxRequest, duration))
}

func rateLimit(limiter *RateLimiter) gin.HandlerFunc {
	limit := strconv.Itoa(limiter.maxRequest)

	return func(c *gin.Context) {
		ip := c.ClientIP()
		allowed, remaining, reset := limiter.Take(ip)

		c.Header("X-RateLimit-Limit", limit)
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(reset.Unix(), 10))

		if !allowed {
			retryAfter := int(reset.Sub(limiter.now()).Seconds()) + 1
			logger.WarnWithContext(c.Request.Context(), "Rate limit exceeded").
				String("method", c.Request.Method).
				String("path", c.Request.URL.Path).
				Int("max_requests", limiter.maxRequest).
				Duration(limiter.duration).
				Log()

			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				constants.BuildErrorResponse(constants.StatusTooManyRequests, constants.MsgRateLimited))
			return
		}

		c.Next()
	}
}
