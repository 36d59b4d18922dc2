// Package remove реализует HTTP-обработчик мягкого удаления услуги.
//
// Услуга помечается удалённой и выключается; физически строка
// не удаляется, история покупок сохраняется.
package remove

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

// Service описывает интерфейс бизнес-логики удаления услуги.
type Service interface {
	SoftDelete(ctx context.Context, id string) error
}

// Handler управляет HTTP-запросами на удаление услуг.
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
// @Summary Удалить услугу
// @Description Мягко удаляет услугу: она исчезает из всех списков и больше не изменяется.
// @Tags Admin
// @Produce json
// @Param id path string true "ID услуги"
// @Success 200 {object} response.Response "Успешное удаление"
// @Failure 404 {object} response.ErrorResponse "Услуга не найдена"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /admin/services/{id} [delete]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.service.remove"
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

	err := h.service.SoftDelete(r.Context(), id)
	if errors.Is(err, catalog.ErrServiceNotFound) {
		log.Error("service not found", slog.String("id", id))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("service not found"))
		return
	}
	if err != nil {
		log.Error("failed to delete service", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not delete service"))
		return
	}

	log.Info("service soft-deleted", slog.String("id", id))
	render.JSON(w, r, response.OK())
}
