// Package paymentwebhook реализует HTTP-обработчик callback платёжного шлюза.
//
// Callback приходит без аутентификации пользователя, поэтому подлинность
// подтверждается подписью тела запроса ключом мерчанта. Шлюз повторяет
// доставку до получения 200, повторный callback по уже сверенному платежу
// отвечает 200 без изменений состояния.
package paymentwebhook

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/promo-dashboard/internal/http/response"
	"github.com/magabrotheeeer/promo-dashboard/internal/lib/sl"
	"github.com/magabrotheeeer/promo-dashboard/internal/paymentgateway"
	"github.com/magabrotheeeer/promo-dashboard/internal/services/reconcile"
)

// Service описывает интерфейс машины сверки платежей.
type Service interface {
	ReconcileWebhook(ctx context.Context, event reconcile.Event) error
}

// Signer пересчитывает подпись callback ключом мерчанта.
// nil-подписант отключает проверку подписи.
type Signer interface {
	Sign(payload map[string]any) (string, error)
}

// Handler управляет HTTP-запросами callback от платёжного шлюза.
type Handler struct {
	log     *slog.Logger
	service Service
	signer  Signer
}

// New создает новый Handler с переданными логгером, сервисом и подписантом.
func New(log *slog.Logger, service Service, signer Signer) *Handler {
	return &Handler{
		log:     log,
		service: service,
		signer:  signer,
	}
}

// ServeHTTP godoc
// @Summary Callback платёжного шлюза
// @Description Принимает подписанное уведомление шлюза о смене статуса платежа и запускает сверку.
// @Tags Payments
// @Accept json
// @Produce json
// @Success 200 {object} response.Response "Уведомление обработано"
// @Failure 400 {object} response.ErrorResponse "Некорректное или несогласованное уведомление"
// @Failure 403 {object} response.ErrorResponse "Неверная подпись"
// @Failure 404 {object} response.ErrorResponse "Платёж не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /payments/webhook [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.paymentwebhook"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Error("failed to read request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		log.Error("failed to decode callback", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if h.signer != nil {
		received, _ := payload["sign"].(string)
		delete(payload, "sign")
		expected, err := h.signer.Sign(payload)
		if err != nil {
			log.Error("failed to compute callback signature", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not verify signature"))
			return
		}
		if received == "" || subtle.ConstantTimeCompare([]byte(received), []byte(expected)) != 1 {
			log.Warn("callback signature mismatch")
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("invalid signature"))
			return
		}
	}

	externalID, _ := payload["uuid"].(string)
	orderID, _ := payload["order_id"].(string)
	status, _ := payload["status"].(string)
	if externalID == "" || orderID == "" || status == "" {
		log.Error("callback missing required fields")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid callback payload"))
		return
	}

	event := reconcile.Event{
		ExternalID:     externalID,
		ReportedStatus: paymentgateway.NormalizeStatus(status),
		OrderID:        orderID,
	}

	err = h.service.ReconcileWebhook(r.Context(), event)
	switch {
	case errors.Is(err, reconcile.ErrPaymentNotFound):
		log.Warn("payment not found", slog.String("gateway_payment_id", externalID))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("payment not found"))
		return
	case errors.Is(err, reconcile.ErrStatusMismatch),
		errors.Is(err, reconcile.ErrOrderMismatch),
		errors.Is(err, reconcile.ErrUnknownStatus):
		log.Warn("callback rejected", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("callback rejected"))
		return
	case err != nil:
		log.Error("failed to reconcile payment", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not process callback"))
		return
	}

	log.Info("callback processed",
		slog.String("gateway_payment_id", externalID),
		slog.String("status", event.ReportedStatus))
	render.JSON(w, r, response.OK())
}
