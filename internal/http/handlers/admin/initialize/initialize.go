// Package initialize реализует HTTP-обработчик назначения первого
// администратора. Операция доступна любому аутентифицированному
// пользователю, но срабатывает только пока набор администраторов пуст.
package initialize

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/promo-dashboard/internal/http/middlewarectx"
	"github.com/magabrotheeeer/promo-dashboard/internal/http/response"
	"github.com/magabrotheeeer/promo-dashboard/internal/lib/sl"
	"github.com/magabrotheeeer/promo-dashboard/internal/services/admin"
)

// Service описывает интерфейс бизнес-логики инициализации администратора.
type Service interface {
	InitializeFirstAdmin(ctx context.Context, userID string) error
}

// Handler управляет HTTP-запросами инициализации первого администратора.
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
// @Summary Назначить первого администратора
// @Description Делает текущего пользователя администратором, если набор администраторов пуст.
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Response "Первый администратор назначен"
// @Failure 401 {object} response.ErrorResponse "Пользователь не аутентифицирован"
// @Failure 409 {object} response.ErrorResponse "Администраторы уже существуют"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /admin/initialize [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.initialize"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, ok := r.Context().Value(middlewarectx.UserID).(string)
	if !ok || userID == "" {
		log.Error("missing user id in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	err := h.service.InitializeFirstAdmin(r.Context(), userID)
	switch {
	case errors.Is(err, admin.ErrAdminsExist):
		log.Warn("admins already exist", slog.String("user_id", userID))
		w.WriteHeader(http.StatusConflict)
		render.JSON(w, r, response.Error("admins already exist"))
		return
	case err != nil:
		log.Error("failed to initialize first admin", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not initialize first admin"))
		return
	}

	log.Info("first admin initialized", slog.String("user_id", userID))
	render.JSON(w, r, response.OK())
}
