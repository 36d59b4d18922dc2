package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/promo-dashboard/internal/http/response"
	"github.com/magabrotheeeer/promo-dashboard/internal/lib/sl"
)

// AdminGate определяет интерфейс шлюза авторизации администраторов.
// Решение (allow/deny) фиксируется в журнале аудита на стороне сервиса.
type AdminGate interface {
	Authorize(ctx context.Context, userID, action, resource string) (bool, error)
}

// AdminMiddleware создает middleware, пропускающий только администраторов.
// Неадминистратор получает 403 без каких-либо побочных эффектов
// и без раскрытия деталей, кроме самого факта отказа.
func AdminMiddleware(log *slog.Logger, gate AdminGate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := r.Context().Value(UserID).(string)
			if !ok || userID == "" {
				log.Error("user identification missing")
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("unauthorized"))
				return
			}

			allowed, err := gate.Authorize(r.Context(), userID, r.Method+" "+r.URL.Path, "admin")
			if err != nil {
				log.Error("failed to authorize", sl.Err(err))
				w.WriteHeader(http.StatusInternalServerError)
				render.JSON(w, r, response.Error("internal service error"))
				return
			}
			if !allowed {
				w.WriteHeader(http.StatusForbidden)
				render.JSON(w, r, response.Error("forbidden"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
