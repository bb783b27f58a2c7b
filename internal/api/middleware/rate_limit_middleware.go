package middleware

import (
	"net/http"

	"github.com/RoyceAzure/lab/storefront/internal/api/response"
	"github.com/RoyceAzure/lab/storefront/internal/pkg/ratelimit"
)

// Limiter 目前只有本地 token bucket 實作
type Limiter interface {
	Allow() bool
}

var _ Limiter = (*ratelimit.TokenBucket)(nil)

func NewRateLimitMiddleware(limiter Limiter) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				w.Header().Set("Retry-After", "1")
				response.WriteJSON(w, http.StatusTooManyRequests, response.Response{
					Code:    http.StatusTooManyRequests,
					Message: "too many requests",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
