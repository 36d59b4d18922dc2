// Package paymentcreate реализует HTTP-обработчик инициации покупки услуги.
package paymentcreate

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
	"github.com/magabrotheeeer/promo-dashboard/internal/paymentgateway"
	"github.com/magabrotheeeer/promo-dashboard/internal/services/catalog"
	"github.com/magabrotheeeer/promo-dashboard/internal/services/payment"
)

// Service описывает интерфейс бизнес-логики инициации покупки.
type Service interface {
	CreatePurchase(ctx context.Context, userID, serviceID string) (*payment.PurchaseResult, error)
}

// Handler управляет HTTP-запросами на создание платежей.
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
// @Summary Создать платёж
// @Description Инициирует покупку услуги через криптошлюз и возвращает ссылку на страницу оплаты.
// @Tags Payments
// @Accept json
// @Produce json
// @Param request body models.DummyPurchase true "ID покупаемой услуги"
// @Success 200 {object} response.Response "Ссылка на оплату и ID платежа"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 404 {object} response.ErrorResponse "Услуга не найдена или неактивна"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 502 {object} response.ErrorResponse "Платёжный шлюз недоступен"
// @Router /payments [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.paymentcreate"
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

	var req models.DummyPurchase
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

	res, err := h.service.CreatePurchase(r.Context(), userID, req.ServiceID)
	switch {
	case errors.Is(err, catalog.ErrServiceNotFound):
		log.Warn("service not found or inactive", slog.String("service_id", req.ServiceID))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("service not found"))
		return
	case errors.Is(err, paymentgateway.ErrGateway):
		log.Error("payment gateway failure", sl.Err(err))
		w.WriteHeader(http.StatusBadGateway)
		render.JSON(w, r, response.Error("payment gateway unavailable"))
		return
	case err != nil:
		log.Error("failed to create purchase", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create payment"))
		return
	}

	log.Info("payment created", slog.String("payment_id", res.PaymentID))
	render.JSON(w, r, response.OKWithData(res))
}
