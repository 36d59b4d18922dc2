package paymentwebhook

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/promo-dashboard/internal/config"
	"github.com/magabrotheeeer/promo-dashboard/internal/paymentgateway"
	"github.com/magabrotheeeer/promo-dashboard/internal/services/reconcile"
)

// MockService реализует интерфейс paymentwebhook.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) ReconcileWebhook(ctx context.Context, event reconcile.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// signedBody собирает тело callback и добавляет корректную подпись.
func signedBody(t *testing.T, signer Signer, payload map[string]any) []byte {
	t.Helper()
	sign, err := signer.Sign(payload)
	assert.NoError(t, err)

	full := make(map[string]any, len(payload)+1)
	for k, v := range payload {
		full[k] = v
	}
	full["sign"] = sign

	body, err := json.Marshal(full)
	assert.NoError(t, err)
	return body
}

func TestWebhookHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	signer := paymentgateway.NewClient(config.Gateway{PaymentKey: "test-key"})

	payload := map[string]any{
		"uuid":     "ext-1",
		"order_id": "user_2abc_svc-1_1700000000000",
		"status":   "paid",
	}

	tests := []struct {
		name           string
		body           func(t *testing.T) []byte
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешная обработка callback",
			body: func(t *testing.T) []byte { return signedBody(t, signer, payload) },
			setupMock: func(m *MockService) {
				m.On("ReconcileWebhook", mock.Anything, reconcile.Event{
					ExternalID:     "ext-1",
					ReportedStatus: "paid",
					OrderID:        "user_2abc_svc-1_1700000000000",
				}).Return(nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"OK"}`,
		},
		{
			name: "статус шлюза приводится к внутреннему",
			body: func(t *testing.T) []byte {
				return signedBody(t, signer, map[string]any{
					"uuid":     "ext-1",
					"order_id": "user_2abc_svc-1_1700000000000",
					"status":   "wrong_amount",
				})
			},
			setupMock: func(m *MockService) {
				m.On("ReconcileWebhook", mock.Anything, reconcile.Event{
					ExternalID:     "ext-1",
					ReportedStatus: "failed",
					OrderID:        "user_2abc_svc-1_1700000000000",
				}).Return(nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"OK"}`,
		},
		{
			name: "неверная подпись",
			body: func(t *testing.T) []byte {
				full := map[string]any{
					"uuid":     "ext-1",
					"order_id": "user_2abc_svc-1_1700000000000",
					"status":   "paid",
					"sign":     "forged",
				}
				body, err := json.Marshal(full)
				assert.NoError(t, err)
				return body
			},
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusForbidden,
			expectedBody:   `{"status":"Error","error":"invalid signature"}`,
		},
		{
			name: "подпись отсутствует",
			body: func(t *testing.T) []byte {
				body, err := json.Marshal(payload)
				assert.NoError(t, err)
				return body
			},
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusForbidden,
			expectedBody:   `{"status":"Error","error":"invalid signature"}`,
		},
		{
			name:           "некорректный JSON",
			body:           func(_ *testing.T) []byte { return []byte("not a json") },
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"invalid request body"}`,
		},
		{
			name: "отсутствуют обязательные поля",
			body: func(t *testing.T) []byte {
				return signedBody(t, signer, map[string]any{"uuid": "ext-1"})
			},
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"invalid callback payload"}`,
		},
		{
			name: "платёж не найден",
			body: func(t *testing.T) []byte { return signedBody(t, signer, payload) },
			setupMock: func(m *MockService) {
				m.On("ReconcileWebhook", mock.Anything, mock.AnythingOfType("reconcile.Event")).
					Return(reconcile.ErrPaymentNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"status":"Error","error":"payment not found"}`,
		},
		{
			name: "несовпадение кода заказа",
			body: func(t *testing.T) []byte { return signedBody(t, signer, payload) },
			setupMock: func(m *MockService) {
				m.On("ReconcileWebhook", mock.Anything, mock.AnythingOfType("reconcile.Event")).
					Return(reconcile.ErrOrderMismatch)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"callback rejected"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService, signer)

			req := httptest.NewRequest(http.MethodPost, "/payments/webhook", bytes.NewReader(tt.body(t)))
			req.Header.Set("Content-Type", "application/json")
			req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "req-id"))

			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)

			mockService.AssertExpectations(t)
		})
	}
}

func TestWebhookHandler_VerificationDisabled(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	mockService := new(MockService)
	mockService.On("ReconcileWebhook", mock.Anything, mock.AnythingOfType("reconcile.Event")).Return(nil)

	// nil-подписант: callback принимается без проверки подписи.
	handler := New(logger, mockService, nil)

	body, err := json.Marshal(map[string]any{
		"uuid":     "ext-1",
		"order_id": "user_2abc_svc-1_1700000000000",
		"status":   "paid",
	})
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/payments/webhook", bytes.NewReader(body))
	req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "req-id"))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}
