// Package reconcile реализует машину состояний сверки платежей.
//
// Сверка потребляет сигнал о статусе платежа (webhook шлюза или ручная
// проверка администратором) и приводит платёж и подписку пользователя
// к согласованному терминальному состоянию. Доставка webhook как минимум
// однократная, поэтому повторная сверка уже терминального платежа —
// определённый идемпотентный no-op, а не ошибка.
package reconcile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/magabrotheeeer/promo-dashboard/internal/lib/sl"
	"github.com/magabrotheeeer/promo-dashboard/internal/models"
	"github.com/magabrotheeeer/promo-dashboard/internal/rabbitmq"
)

// Ошибки сверки. Все они возвращаются до каких-либо мутаций состояния.
var (
	ErrPaymentNotFound = errors.New("payment not found")
	ErrStatusMismatch  = errors.New("reported status does not match gateway status")
	ErrOrderMismatch   = errors.New("order id does not match payment record")
	ErrUnknownStatus   = errors.New("unknown payment status")
)

var reconciledTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "payments_reconciled_total",
	Help: "Number of payments driven to a terminal status, by outcome.",
}, []string{"status"})

// Repository определяет методы хранилища для сверки.
type Repository interface {
	GetPayment(ctx context.Context, id string) (*models.Payment, error)
	GetPaymentByGatewayID(ctx context.Context, gatewayPaymentID string) (*models.Payment, error)
	// ReconcilePayment атомарно применяет терминальный статус платежа и
	// согласует подписку; возвращает количество изменённых строк платежа.
	ReconcilePayment(ctx context.Context, paymentID, terminalStatus, userID, serviceID string) (int, error)
}

// GatewayClient запрашивает актуальный статус платежа у шлюза.
type GatewayClient interface {
	CheckStatus(ctx context.Context, externalID string) (string, error)
}

// EventPublisher публикует события завершённой сверки.
type EventPublisher interface {
	PublishReconciled(event rabbitmq.ReconciledEvent) error
}

// Service реализует машину состояний сверки.
type Service struct {
	repo Repository
	// gateway используется для перепроверки статуса из webhook живым
	// запросом к шлюзу; nil отключает перепроверку.
	gateway   GatewayClient
	publisher EventPublisher
	log       *slog.Logger
}

// New создает новый экземпляр Service. gateway и publisher могут быть nil.
func New(repo Repository, gateway GatewayClient, publisher EventPublisher, log *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		gateway:   gateway,
		publisher: publisher,
		log:       log,
	}
}

// Event описывает сигнал о статусе платежа из webhook.
type Event struct {
	ExternalID     string // ID платежа на стороне шлюза
	ReportedStatus string // Статус, заявленный в callback
	OrderID        string // Эхо внутреннего кода заказа
}

// ParseOrderID разбирает код заказа {userID}_{serviceID}_{millis}.
// Идентификаторы пользователей провайдера аутентификации сами содержат
// подчёркивания, поэтому код разбирается с конца: последняя часть —
// метка времени, предпоследняя — ID услуги, остаток — ID пользователя.
func ParseOrderID(orderID string) (userID, serviceID string, err error) {
	const op = "reconcile.ParseOrderID"
	parts := strings.Split(orderID, "_")
	if len(parts) < 3 {
		return "", "", fmt.Errorf("%s: malformed order id %q", op, orderID)
	}
	if _, err := strconv.ParseInt(parts[len(parts)-1], 10, 64); err != nil {
		return "", "", fmt.Errorf("%s: malformed timestamp in order id %q", op, orderID)
	}
	serviceID = parts[len(parts)-2]
	userID = strings.Join(parts[:len(parts)-2], "_")
	if userID == "" || serviceID == "" {
		return "", "", fmt.Errorf("%s: malformed order id %q", op, orderID)
	}
	return userID, serviceID, nil
}

// ReconcileWebhook применяет событие webhook.
//
// Шаги 1-4 — чистая валидация без побочных эффектов: поиск платежа,
// детект дубликата, опциональная перепроверка статуса у шлюза и сверка
// кода заказа. Затем платёж и подписка обновляются одной транзакцией.
func (s *Service) ReconcileWebhook(ctx context.Context, event Event) error {
	log := s.log.With(slog.String("gateway_payment_id", event.ExternalID))

	payment, err := s.repo.GetPaymentByGatewayID(ctx, event.ExternalID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrPaymentNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to look up payment: %w", err)
	}

	if models.IsTerminalPaymentStatus(payment.Status) {
		log.Info("duplicate delivery for terminal payment, skipping",
			slog.String("status", payment.Status))
		return nil
	}

	if !models.IsTerminalPaymentStatus(event.ReportedStatus) {
		if event.ReportedStatus != models.PaymentPending {
			return fmt.Errorf("%w: %q", ErrUnknownStatus, event.ReportedStatus)
		}
		log.Info("non-terminal status reported, nothing to reconcile")
		return nil
	}

	if s.gateway != nil {
		liveStatus, err := s.gateway.CheckStatus(ctx, event.ExternalID)
		if err != nil {
			return fmt.Errorf("failed to re-verify status with gateway: %w", err)
		}
		if liveStatus != event.ReportedStatus {
			return fmt.Errorf("%w: reported %q, gateway says %q",
				ErrStatusMismatch, event.ReportedStatus, liveStatus)
		}
	}

	userID, serviceID, err := ParseOrderID(event.OrderID)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrOrderMismatch, err)
	}
	if event.OrderID != payment.OrderID || userID != payment.UserID || serviceID != payment.ServiceID {
		return ErrOrderMismatch
	}

	return s.apply(ctx, payment, event.ReportedStatus, "webhook")
}

// ReconcileManual применяет ручную проверку платежа администратором.
// Администратор — источник истины на этом пути, перепроверка у шлюза
// не выполняется.
func (s *Service) ReconcileManual(ctx context.Context, paymentID, status string) error {
	if !models.IsTerminalPaymentStatus(status) {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, status)
	}

	payment, err := s.repo.GetPayment(ctx, paymentID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrPaymentNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to look up payment: %w", err)
	}

	if models.IsTerminalPaymentStatus(payment.Status) {
		s.log.Info("payment already terminal, manual verify is a no-op",
			slog.String("payment_id", paymentID),
			slog.String("status", payment.Status))
		return nil
	}

	return s.apply(ctx, payment, status, "admin")
}

// apply выполняет терминальный переход платежа и согласование подписки.
// Нулевое количество изменённых строк означает, что конкурирующий
// писатель успел первым, тогда эта сверка — no-op.
func (s *Service) apply(ctx context.Context, payment *models.Payment, terminalStatus, source string) error {
	updated, err := s.repo.ReconcilePayment(ctx, payment.ID, terminalStatus, payment.UserID, payment.ServiceID)
	if err != nil {
		return fmt.Errorf("failed to reconcile payment: %w", err)
	}
	if updated == 0 {
		s.log.Info("payment reconciled by concurrent writer, skipping",
			slog.String("payment_id", payment.ID))
		return nil
	}

	reconciledTotal.WithLabelValues(terminalStatus).Inc()
	s.log.Info("payment reconciled",
		slog.String("payment_id", payment.ID),
		slog.String("status", terminalStatus),
		slog.String("source", source))

	if s.publisher != nil {
		event := rabbitmq.ReconciledEvent{
			PaymentID: payment.ID,
			UserID:    payment.UserID,
			ServiceID: payment.ServiceID,
			Status:    terminalStatus,
			Source:    source,
		}
		if err := s.publisher.PublishReconciled(event); err != nil {
			// Событие вторично по отношению к записи в базе,
			// сверка уже применена.
			s.log.Error("failed to publish reconciled event", sl.Err(err))
		}
	}
	return nil
}
