// Package payment содержит бизнес-логику инициации покупки услуги.
package payment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/magabrotheeeer/promo-dashboard/internal/config"
	"github.com/magabrotheeeer/promo-dashboard/internal/models"
	"github.com/magabrotheeeer/promo-dashboard/internal/paymentgateway"
	"github.com/magabrotheeeer/promo-dashboard/internal/services/catalog"
)

// Repository определяет методы хранилища, нужные для инициации покупки.
type Repository interface {
	ReadService(ctx context.Context, id string) (*models.Service, error)
	CreatePayment(ctx context.Context, payment models.Payment) (string, error)
	UpsertEntitlementPending(ctx context.Context, userID, serviceID string) error
	ListEntitlementsByUser(ctx context.Context, userID string) ([]*models.Entitlement, error)
}

// GatewayClient определяет методы клиента платёжного шлюза.
type GatewayClient interface {
	CreatePayment(ctx context.Context, params paymentgateway.CreatePaymentParams) (*paymentgateway.PaymentInfo, error)
}

// Service реализует инициацию покупок.
type Service struct {
	repo    Repository
	gateway GatewayClient
	cfg     config.Gateway
	log     *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, gateway GatewayClient, cfg config.Gateway, log *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		gateway: gateway,
		cfg:     cfg,
		log:     log,
	}
}

// PurchaseResult содержит данные для перенаправления пользователя на оплату.
type PurchaseResult struct {
	PaymentURL string `json:"payment_url"`
	PaymentID  string `json:"payment_id"`
}

// MakeOrderID собирает внутренний код заказа {userID}_{serviceID}_{millis}.
// Код уникален и разбирается обратно без обращения к базе, когда шлюз
// возвращает его в callback.
func MakeOrderID(userID, serviceID string, now time.Time) string {
	return fmt.Sprintf("%s_%s_%d", userID, serviceID, now.UnixMilli())
}

// CreatePurchase инициирует покупку услуги: создаёт платёж на шлюзе,
// сохраняет его в статусе pending и переводит подписку пользователя
// в pending_payment. Возвращает ссылку на hosted-страницу оплаты.
func (s *Service) CreatePurchase(ctx context.Context, userID, serviceID string) (*PurchaseResult, error) {
	service, err := s.repo.ReadService(ctx, serviceID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, catalog.ErrServiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read service: %w", err)
	}
	if !service.IsActive {
		return nil, catalog.ErrServiceNotFound
	}

	orderID := MakeOrderID(userID, serviceID, time.Now())
	info, err := s.gateway.CreatePayment(ctx, paymentgateway.CreatePaymentParams{
		Amount:      strconv.FormatFloat(service.Price, 'f', 2, 64),
		Currency:    "USD",
		OrderID:     orderID,
		URLReturn:   s.cfg.ReturnURL,
		URLCallback: s.cfg.CallbackURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gateway payment: %w", err)
	}

	paymentID, err := s.repo.CreatePayment(ctx, models.Payment{
		UserID:           userID,
		ServiceID:        serviceID,
		Amount:           service.Price,
		Currency:         "USD",
		PaymentMethod:    "crypto",
		GatewayPaymentID: info.ExternalID,
		OrderID:          orderID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create payment record: %w", err)
	}

	if err := s.repo.UpsertEntitlementPending(ctx, userID, serviceID); err != nil {
		return nil, fmt.Errorf("failed to create pending entitlement: %w", err)
	}

	s.log.Info("purchase initiated",
		slog.String("payment_id", paymentID),
		slog.String("order_id", orderID),
		slog.String("gateway_payment_id", info.ExternalID))

	return &PurchaseResult{
		PaymentURL: info.RedirectURL,
		PaymentID:  paymentID,
	}, nil
}

// ListEntitlements возвращает подписки пользователя.
func (s *Service) ListEntitlements(ctx context.Context, userID string) ([]*models.Entitlement, error) {
	return s.repo.ListEntitlementsByUser(ctx, userID)
}
