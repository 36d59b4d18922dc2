package payment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/promo-dashboard/internal/config"
	"github.com/magabrotheeeer/promo-dashboard/internal/models"
	"github.com/magabrotheeeer/promo-dashboard/internal/paymentgateway"
	"github.com/magabrotheeeer/promo-dashboard/internal/services/catalog"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) ReadService(ctx context.Context, id string) (*models.Service, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Service), args.Error(1)
}

func (m *MockRepository) CreatePayment(ctx context.Context, payment models.Payment) (string, error) {
	args := m.Called(ctx, payment)
	return args.String(0), args.Error(1)
}

func (m *MockRepository) UpsertEntitlementPending(ctx context.Context, userID, serviceID string) error {
	args := m.Called(ctx, userID, serviceID)
	return args.Error(0)
}

func (m *MockRepository) ListEntitlementsByUser(ctx context.Context, userID string) ([]*models.Entitlement, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Entitlement), args.Error(1)
}

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreatePayment(ctx context.Context, params paymentgateway.CreatePaymentParams) (*paymentgateway.PaymentInfo, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentgateway.PaymentInfo), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestMakeOrderID(t *testing.T) {
	now := time.UnixMilli(1700000000000)

	orderID := MakeOrderID("user_2abc", "svc-1", now)

	assert.Equal(t, "user_2abc_svc-1_1700000000000", orderID)
}

func TestService_CreatePurchase(t *testing.T) {
	activeService := &models.Service{
		ID:       "svc-1",
		Name:     "Playlist Placement",
		Price:    49.99,
		IsActive: true,
	}
	gatewayCfg := config.Gateway{
		ReturnURL:   "https://dashboard.example.com/return",
		CallbackURL: "https://dashboard.example.com/api/v1/payments/webhook",
	}

	tests := []struct {
		name          string
		serviceID     string
		setupMocks    func(*MockRepository, *MockGateway)
		expectedError error
	}{
		{
			name:      "success",
			serviceID: "svc-1",
			setupMocks: func(r *MockRepository, g *MockGateway) {
				r.On("ReadService", mock.Anything, "svc-1").Return(activeService, nil).Once()
				g.On("CreatePayment", mock.Anything, mock.MatchedBy(func(p paymentgateway.CreatePaymentParams) bool {
					return p.Amount == "49.99" && p.Currency == "USD" &&
						p.URLReturn == gatewayCfg.ReturnURL && p.URLCallback == gatewayCfg.CallbackURL
				})).Return(&paymentgateway.PaymentInfo{
					ExternalID:  "ext-1",
					RedirectURL: "https://pay.example.com/ext-1",
					Status:      models.PaymentPending,
				}, nil).Once()
				r.On("CreatePayment", mock.Anything, mock.MatchedBy(func(p models.Payment) bool {
					return p.UserID == "user_2abc" && p.ServiceID == "svc-1" &&
						p.Amount == 49.99 && p.GatewayPaymentID == "ext-1"
				})).Return("pay-1", nil).Once()
				r.On("UpsertEntitlementPending", mock.Anything, "user_2abc", "svc-1").Return(nil).Once()
			},
		},
		{
			name:      "service does not exist",
			serviceID: "svc-missing",
			setupMocks: func(r *MockRepository, _ *MockGateway) {
				r.On("ReadService", mock.Anything, "svc-missing").Return(nil, sql.ErrNoRows).Once()
			},
			expectedError: catalog.ErrServiceNotFound,
		},
		{
			name:      "inactive service is not purchasable",
			serviceID: "svc-1",
			setupMocks: func(r *MockRepository, _ *MockGateway) {
				inactive := *activeService
				inactive.IsActive = false
				r.On("ReadService", mock.Anything, "svc-1").Return(&inactive, nil).Once()
			},
			expectedError: catalog.ErrServiceNotFound,
		},
		{
			name:      "gateway failure",
			serviceID: "svc-1",
			setupMocks: func(r *MockRepository, g *MockGateway) {
				r.On("ReadService", mock.Anything, "svc-1").Return(activeService, nil).Once()
				g.On("CreatePayment", mock.Anything, mock.AnythingOfType("paymentgateway.CreatePaymentParams")).
					Return(nil, fmt.Errorf("%w: status 500", paymentgateway.ErrGateway)).Once()
			},
			expectedError: paymentgateway.ErrGateway,
		},
		{
			name:      "payment record failure",
			serviceID: "svc-1",
			setupMocks: func(r *MockRepository, g *MockGateway) {
				r.On("ReadService", mock.Anything, "svc-1").Return(activeService, nil).Once()
				g.On("CreatePayment", mock.Anything, mock.AnythingOfType("paymentgateway.CreatePaymentParams")).
					Return(&paymentgateway.PaymentInfo{ExternalID: "ext-1"}, nil).Once()
				r.On("CreatePayment", mock.Anything, mock.AnythingOfType("models.Payment")).
					Return("", errors.New("db error")).Once()
			},
			expectedError: errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			gateway := new(MockGateway)
			tt.setupMocks(repo, gateway)

			service := New(repo, gateway, gatewayCfg, newNoopLogger())

			result, err := service.CreatePurchase(context.Background(), "user_2abc", tt.serviceID)

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError.Error())
			} else {
				assert.NoError(t, err)
				assert.Equal(t, "pay-1", result.PaymentID)
				assert.Equal(t, "https://pay.example.com/ext-1", result.PaymentURL)
			}

			repo.AssertExpectations(t)
			gateway.AssertExpectations(t)
		})
	}
}

func TestService_ListEntitlements(t *testing.T) {
	expected := []*models.Entitlement{
		{ID: "ent-1", UserID: "user_2abc", ServiceID: "svc-1", Status: models.EntitlementActive},
	}

	repo := new(MockRepository)
	repo.On("ListEntitlementsByUser", mock.Anything, "user_2abc").Return(expected, nil).Once()

	service := New(repo, new(MockGateway), config.Gateway{}, newNoopLogger())

	result, err := service.ListEntitlements(context.Background(), "user_2abc")

	assert.NoError(t, err)
	assert.Equal(t, expected, result)
	repo.AssertExpectations(t)
}
