// Package toggle реализует HTTP-обработчик переключения доступности услуги.
package toggle

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/promo-dashboard/internal/http/response"
	"github.com/magabrotheeeer/promo-dashboard/internal/lib/sl"
	"github.com/magabrotheeeer/promo-dashboard/internal/services/catalog"
)

// Service описывает интерфейс бизнес-логики переключения услуги.
type Service interface {
	Toggle(ctx context.Context, id string) (bool, error)
}

// Handler управляет HTTP-запросами на переключение услуг.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Переключить доступность услуги
// @Description Включает или выключает услугу, возвращает новое значение флага.
// @Tags Admin
// @Produce json
// @Param id path string true "ID услуги"
// @Success 200 {object} response.Response "Новое значение is_active"
// @Failure 404 {object} response.ErrorResponse "Услуга не найдена"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /admin/services/{id}/toggle [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.service.toggle"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")
	if id == "" {
		log.Error("missing service id in url")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("missing service id"))
		return
	}

	isActive, err := h.service.Toggle(r.Context(), id)
	if errors.Is(err, catalog.ErrServiceNotFound) {
		log.Error("service not found", slog.String("id", id))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("service not found"))
		return
	}
	if err != nil {
		log.Error("failed to toggle service", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not toggle service"))
		return
	}

	log.Info("service toggled", slog.String("id", id), slog.Bool("is_active", isActive))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"is_active": isActive,
	}))
}
