// Package middleware provides HTTP middleware for auditlens.
package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// maxBuckets is the maximum number of tracked keys to prevent memory exhaustion.
const maxBuckets = 100_000

// KeyFunc derives the rate-limit bucket key for a request.
type KeyFunc func(c *gin.Context) string

// ClientIPKey buckets requests by client IP. c.ClientIP() is not spoofable
// because the router disables proxy header trust.
func ClientIPKey(c *gin.Context) string {
	return c.ClientIP()
}

// ActorKeyFunc buckets requests by the gateway actor, falling back to client IP
// for anonymous callers.
func ActorKeyFunc(c *gin.Context) string {
	if a := ActorFrom(c); a.ID != "" {
		return "actor:" + a.ID
	}

	return "ip:" + c.ClientIP()
}

// RateLimiter implements a token bucket rate limiter per key.
type RateLimiter struct {
	buckets map[string]*bucket
	mu      sync.Mutex
	rate    float64
	burst   float64
	keyFn   KeyFunc
}

type bucket struct {
	tokens   float64
	lastFill time.Time
}

func (rl *RateLimiter) allow(b *bucket, now time.Time) bool {
	b.tokens += now.Sub(b.lastFill).Seconds() * rl.rate
	if b.tokens > rl.burst {
		b.tokens = rl.burst
	}
	b.lastFill = now

	if b.tokens >= 1 {
		b.tokens--

		return true
	}

	return false
}

// NewRateLimiter creates a per-IP RateLimiter with the given requests per second and burst.
// It starts a background goroutine to evict stale buckets, which stops when ctx is cancelled.
func NewRateLimiter(ctx context.Context, ratePerSec float64, burst int) *RateLimiter {
	return NewKeyedRateLimiter(ctx, ratePerSec, burst, ClientIPKey)
}

// NewKeyedRateLimiter is NewRateLimiter with a custom bucket key.
func NewKeyedRateLimiter(ctx context.Context, ratePerSec float64, burst int, keyFn KeyFunc) *RateLimiter {
	rl := &RateLimiter{
		buckets: make(map[string]*bucket),
		rate:    ratePerSec,
		burst:   float64(burst),
		keyFn:   keyFn,
	}
	go rl.startCleanup(ctx)

	return rl
}

func (rl *RateLimiter) startCleanup(ctx context.Context) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	const maxAge = 10 * time.Minute

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			rl.mu.Lock()
			for key, b := range rl.buckets {
				if now.Sub(b.lastFill) > maxAge {
					delete(rl.buckets, key)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// Handler returns Gin middleware that applies the limiter.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := rl.keyFn(c)
		now := time.Now()

		rl.mu.Lock()
		b, ok := rl.buckets[key]
		if !ok {
			if len(rl.buckets) >= maxBuckets {
				rl.mu.Unlock()
				respondError(c, http.StatusTooManyRequests, "rate_limited", "too many clients")

				return
			}

			b = &bucket{tokens: rl.burst, lastFill: now}
			rl.buckets[key] = b
		}

		allowed := rl.allow(b, now)
		rl.mu.Unlock()

		if !allowed {
			respondError(c, http.StatusTooManyRequests, "rate_limited", "rate limit exceeded")

			return
		}

		c.Next()
	}
}
