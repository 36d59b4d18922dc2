package paymentverify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/promo-dashboard/internal/models"
	"github.com/magabrotheeeer/promo-dashboard/internal/services/reconcile"
)

// MockService реализует интерфейс paymentverify.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) ReconcileManual(ctx context.Context, paymentID, status string) error {
	args := m.Called(ctx, paymentID, status)
	return args.Error(0)
}

func TestVerifyHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	const paymentID = "3fa85f64-5717-4562-b3fc-2c963f66afa6"

	tests := []struct {
		name           string
		requestBody    interface{}
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешная ручная сверка",
			requestBody: models.DummyVerifyPayment{
				PaymentID: paymentID,
				Status:    "paid",
			},
			setupMock: func(m *MockService) {
				m.On("ReconcileManual", mock.Anything, paymentID, "paid").Return(nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"OK"}`,
		},
		{
			name:           "некорректный JSON",
			requestBody:    "not a json",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"invalid request body"}`,
		},
		{
			name: "недопустимый статус",
			requestBody: models.DummyVerifyPayment{
				PaymentID: paymentID,
				Status:    "pending",
			},
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field Status must be one of: paid failed expired`,
		},
		{
			name: "платёж не найден",
			requestBody: models.DummyVerifyPayment{
				PaymentID: paymentID,
				Status:    "failed",
			},
			setupMock: func(m *MockService) {
				m.On("ReconcileManual", mock.Anything, paymentID, "failed").
					Return(reconcile.ErrPaymentNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"status":"Error","error":"payment not found"}`,
		},
		{
			name: "ошибка сервиса",
			requestBody: models.DummyVerifyPayment{
				PaymentID: paymentID,
				Status:    "paid",
			},
			setupMock: func(m *MockService) {
				m.On("ReconcileManual", mock.Anything, paymentID, "paid").
					Return(errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"could not verify payment"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			var body []byte
			var err error
			if str, ok := tt.requestBody.(string); ok {
				body = []byte(str)
			} else {
				body, err = json.Marshal(tt.requestBody)
				assert.NoError(t, err)
			}

			req := httptest.NewRequest(http.MethodPost, "/admin/verify-payment", bytes.NewReader(body))
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
