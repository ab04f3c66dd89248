package handler

import (
	"fmt"
	"math"
	"net/http"

	"golang.org/x/time/rate"
	"go.uber.org/zap"
)

// RateLimit configures the API token bucket. A non-positive RPS disables it.
type RateLimit struct {
	RPS   float64
	Burst int
}

// NewLimiter builds the limiter for cfg, or nil when limiting is disabled.
func NewLimiter(cfg RateLimit) *rate.Limiter {
	if cfg.RPS <= 0 {
		return nil
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = int(math.Ceil(cfg.RPS))
	}
	return rate.NewLimiter(rate.Limit(cfg.RPS), burst)
}

// RateLimitMiddleware rejects requests with 429 once the shared token bucket
// is empty. A nil limiter lets everything through.
func RateLimitMiddleware(limiter *rate.Limiter, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				logger.Warn("rate limit exceeded",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				w.Header().Set("Retry-After", fmt.Sprintf("%d", retryAfterSeconds(limiter)))
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func retryAfterSeconds(limiter *rate.Limiter) int {
	if l := float64(limiter.Limit()); l > 0 {
		return int(math.Ceil(1 / l))
	}
	return 1
}
