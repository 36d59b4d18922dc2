// Package health реализует HTTP-обработчик проверки работоспособности.
package health

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/promo-dashboard/internal/http/response"
	"github.com/magabrotheeeer/promo-dashboard/internal/lib/sl"
)

// Handler управляет HTTP-запросами проверки работоспособности.
type Handler struct {
	log     *slog.Logger
	checkDB func() error
}

// New создает новый Handler. checkDB проверяет готовность базы данных.
func New(log *slog.Logger, checkDB func() error) *Handler {
	return &Handler{
		log:     log,
		checkDB: checkDB,
	}
}

// ServeHTTP godoc
// @Summary Проверка работоспособности
// @Description Возвращает ok, если приложение и база данных готовы.
// @Tags Health
// @Produce json
// @Success 200 {object} response.Response "Сервис работает"
// @Failure 503 {object} response.ErrorResponse "База данных недоступна"
// @Router /health [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.health"

	if h.checkDB != nil {
		if err := h.checkDB(); err != nil {
			h.log.Error("database is not ready", slog.String("op", op), sl.Err(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			render.JSON(w, r, response.Error("database is not ready"))
			return
		}
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"status": "ok",
	}))
}
