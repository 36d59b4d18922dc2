// Package remove реализует HTTP-обработчик снятия прав администратора.
//
// Последнего администратора снять нельзя, набор никогда не пустеет.
package remove

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/promo-dashboard/internal/http/middlewarectx"
	"github.com/magabrotheeeer/promo-dashboard/internal/http/response"
	"github.com/magabrotheeeer/promo-dashboard/internal/lib/sl"
	"github.com/magabrotheeeer/promo-dashboard/internal/models"
	"github.com/magabrotheeeer/promo-dashboard/internal/services/admin"
)

// Service описывает интерфейс бизнес-логики снятия администратора.
type Service interface {
	RemoveAdmin(ctx context.Context, actorID, userID string) error
}

// Handler управляет HTTP-запросами на снятие администраторов.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Снять администратора
// @Description Удаляет пользователя из набора администраторов. Последний администратор защищён от удаления.
// @Tags Admin
// @Accept json
// @Produce json
// @Param request body models.DummyAdmin true "ID пользователя"
// @Success 200 {object} response.Response "Администратор снят"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 409 {object} response.ErrorResponse "Попытка удалить последнего администратора"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /admin/manage [delete]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.remove"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	actorID, ok := r.Context().Value(middlewarectx.UserID).(string)
	if !ok || actorID == "" {
		log.Error("missing user id in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	var req models.DummyAdmin
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	err := h.service.RemoveAdmin(r.Context(), actorID, req.UserID)
	switch {
	case errors.Is(err, admin.ErrLastAdmin):
		log.Warn("attempt to remove the last admin", slog.String("user_id", req.UserID))
		w.WriteHeader(http.StatusConflict)
		render.JSON(w, r, response.Error("cannot remove the last admin"))
		return
	case err != nil:
		log.Error("failed to remove admin", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not remove admin"))
		return
	}

	log.Info("admin removed", slog.String("user_id", req.UserID))
	render.JSON(w, r, response.OK())
}
