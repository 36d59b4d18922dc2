package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/render"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/promo-dashboard/internal/cache"
	"github.com/magabrotheeeer/promo-dashboard/internal/http/response"
)

var limiter = rate.NewLimiter(10, 30)

// RateLimitMiddleware грубый общий лимитер процесса, защищает от залпового
// трафика независимо от пользователя.
func RateLimitMiddleware(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				log.Error("too many requests")
				w.WriteHeader(http.StatusTooManyRequests)
				render.JSON(w, r, response.Error("too many requests"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ActionLimiter определяет интерфейс лимитера с фиксированным окном
// по паре (action, userID).
type ActionLimiter interface {
	Allow(ctx context.Context, action, userID string) cache.Decision
}

// ActionRateLimitMiddleware создает middleware, ограничивающий число
// вызовов действия одним пользователем в пределах окна. Остаток лимита
// возвращается в заголовке X-RateLimit-Remaining.
func ActionRateLimitMiddleware(log *slog.Logger, limiter ActionLimiter, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, _ := r.Context().Value(UserID).(string)

			decision := limiter.Allow(r.Context(), action, userID)
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
			if !decision.Permitted {
				log.Warn("rate limit exceeded",
					slog.String("action", action),
					slog.String("user_id", userID))
				w.WriteHeader(http.StatusTooManyRequests)
				render.JSON(w, r, response.Error("rate limit exceeded"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
