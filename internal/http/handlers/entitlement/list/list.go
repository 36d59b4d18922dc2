// Package list реализует HTTP-обработчик списка подписок текущего
// пользователя.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/promo-dashboard/internal/http/middlewarectx"
	"github.com/magabrotheeeer/promo-dashboard/internal/http/response"
	"github.com/magabrotheeeer/promo-dashboard/internal/lib/sl"
	"github.com/magabrotheeeer/promo-dashboard/internal/models"
)

// Service описывает интерфейс бизнес-логики подписок пользователя.
type Service interface {
	ListEntitlements(ctx context.Context, userID string) ([]*models.Entitlement, error)
}

// Handler управляет HTTP-запросами списка подписок.
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
// @Summary Подписки пользователя
// @Description Возвращает подписки текущего пользователя со статусами оплат.
// @Tags Entitlements
// @Produce json
// @Success 200 {object} response.Response "Список подписок"
// @Failure 401 {object} response.ErrorResponse "Пользователь не аутентифицирован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /entitlements [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.entitlement.list"
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

	res, err := h.service.ListEntitlements(r.Context(), userID)
	if err != nil {
		log.Error("failed to list entitlements", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list entitlements"))
		return
	}

	log.Info("entitlements listed", slog.Int("count", len(res)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"count":        len(res),
		"entitlements": res,
	}))
}
