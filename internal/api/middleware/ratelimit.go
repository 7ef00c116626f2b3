package middleware

import (
	"net/http"

	"golang.org/x/time/rate"

	"github.com/m04kA/SPA-BookingService/internal/api/handlers"
)

// RateLimit ограничивает общий поток запросов token bucket'ом
func RateLimit(rps float64, burst int) func(http.Handler) http.Handler {
	limiter := rate.NewLimiter(rate.Limit(rps), burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				w.Header().Set("Retry-After", "1")
				handlers.RespondTooManyRequests(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
