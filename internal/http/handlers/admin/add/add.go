// Package add реализует HTTP-обработчик назначения администратора.
//
// Набор администраторов ограничен двумя пользователями, переполнение
// и повторное назначение отображаются в ошибки 409.
package add

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

// Service описывает интерфейс бизнес-логики назначения администратора.
type Service interface {
	AddAdmin(ctx context.Context, actorID, userID string) error
}

// Handler управляет HTTP-запросами на назначение администраторов.
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
// @Summary Назначить администратора
// @Description Добавляет пользователя в набор администраторов. Не более двух администраторов одновременно.
// @Tags Admin
// @Accept json
// @Produce json
// @Param request body models.DummyAdmin true "ID пользователя"
// @Success 200 {object} response.Response "Администратор назначен"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 409 {object} response.ErrorResponse "Лимит администраторов или повторное назначение"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /admin/manage [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.add"
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

	err := h.service.AddAdmin(r.Context(), actorID, req.UserID)
	switch {
	case errors.Is(err, admin.ErrAlreadyAdmin):
		log.Warn("user is already an admin", slog.String("user_id", req.UserID))
		w.WriteHeader(http.StatusConflict)
		render.JSON(w, r, response.Error("user is already an admin"))
		return
	case errors.Is(err, admin.ErrAdminLimitReached):
		log.Warn("admin limit reached", slog.String("user_id", req.UserID))
		w.WriteHeader(http.StatusConflict)
		render.JSON(w, r, response.Error("maximum number of admins reached"))
		return
	case err != nil:
		log.Error("failed to add admin", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not add admin"))
		return
	}

	log.Info("admin added", slog.String("user_id", req.UserID))
	render.JSON(w, r, response.OK())
}
