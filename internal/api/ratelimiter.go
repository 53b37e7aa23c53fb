package api

import (
	"net/http"

	"golang.org/x/time/rate"
)

// rateLimiter gates admission of incoming requests.
type rateLimiter interface {
	Allow() bool
}

// tokenBucket adapts x/time/rate to the rateLimiter interface. A nil
// bucket admits everything.
type tokenBucket struct {
	bucket *rate.Limiter
}

func newTokenBucketLimiter(perSecond float64, burst int) rateLimiter {
	if perSecond <= 0 {
		perSecond = 1
	}
	if burst <= 0 {
		burst = 1
	}
	return &tokenBucket{bucket: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

func (t *tokenBucket) Allow() bool {
	if t == nil || t.bucket == nil {
		return true
	}
	return t.bucket.Allow()
}

func rateLimitMiddleware(limiter rateLimiter, next http.Handler) http.Handler {
	if limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			writeError(w, http.StatusTooManyRequests, "Too many requests", "rate limit exceeded, please retry shortly")
			return
		}
		next.ServeHTTP(w, r)
	})
}
