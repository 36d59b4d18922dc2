// Package paymentverify реализует HTTP-обработчик ручной сверки платежа
// администратором. Используется, когда callback шлюза потерян и платёж
// завис в статусе pending.
package paymentverify

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/promo-dashboard/internal/http/response"
	"github.com/magabrotheeeer/promo-dashboard/internal/lib/sl"
	"github.com/magabrotheeeer/promo-dashboard/internal/models"
	"github.com/magabrotheeeer/promo-dashboard/internal/services/reconcile"
)

// Service описывает интерфейс машины сверки платежей.
type Service interface {
	ReconcileManual(ctx context.Context, paymentID, status string) error
}

// Handler управляет HTTP-запросами ручной сверки платежей.
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
// @Summary Ручная сверка платежа
// @Description Переводит зависший платёж в терминальный статус по решению администратора.
// @Tags Admin
// @Accept json
// @Produce json
// @Param request body models.DummyVerifyPayment true "ID платежа и терминальный статус"
// @Success 200 {object} response.Response "Платёж сверен"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 404 {object} response.ErrorResponse "Платёж не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /admin/verify-payment [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.paymentverify"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyVerifyPayment
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

	err := h.service.ReconcileManual(r.Context(), req.PaymentID, req.Status)
	switch {
	case errors.Is(err, reconcile.ErrPaymentNotFound):
		log.Warn("payment not found", slog.String("payment_id", req.PaymentID))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("payment not found"))
		return
	case errors.Is(err, reconcile.ErrUnknownStatus):
		log.Warn("unknown terminal status", slog.String("status", req.Status))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error("unknown payment status"))
		return
	case err != nil:
		log.Error("failed to verify payment", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not verify payment"))
		return
	}

	log.Info("payment verified",
		slog.String("payment_id", req.PaymentID),
		slog.String("status", req.Status))
	render.JSON(w, r, response.OK())
}
