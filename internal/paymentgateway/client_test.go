package paymentgateway

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/promo-dashboard/internal/config"
)

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		gatewayStatus string
		expected      string
	}{
		{"paid", "paid"},
		{"paid_over", "paid"},
		{"fail", "failed"},
		{"cancel", "failed"},
		{"wrong_amount", "failed"},
		{"system_fail", "failed"},
		{"expired", "expired"},
		{"check", "pending"},
		{"process", "pending"},
		{"", "pending"},
		{"something_new", "pending"},
	}

	for _, tt := range tests {
		t.Run(tt.gatewayStatus, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeStatus(tt.gatewayStatus))
		})
	}
}

func TestClient_Sign(t *testing.T) {
	client := NewClient(config.Gateway{PaymentKey: "secret-key"})

	payload := map[string]any{
		"b": "2",
		"a": "1",
	}

	sign, err := client.Sign(payload)
	require.NoError(t, err)

	// encoding/json сортирует ключи map, канонический вид {"a":"1","b":"2"}.
	sum := md5.Sum([]byte(`{"a":"1","b":"2"}` + "secret-key"))
	assert.Equal(t, hex.EncodeToString(sum[:]), sign)

	// Подпись детерминирована независимо от порядка вставки ключей.
	again, err := client.Sign(map[string]any{"a": "1", "b": "2"})
	require.NoError(t, err)
	assert.Equal(t, sign, again)
}

func TestClient_CreatePayment(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/payment", r.URL.Path)
		assert.Equal(t, "merchant-1", r.Header.Get("merchant"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		// Подпись в заголовке соответствует телу запроса и ключу.
		sum := md5.Sum(append(body, []byte("secret-key")...))
		assert.Equal(t, hex.EncodeToString(sum[:]), r.Header.Get("sign"))

		var payload map[string]any
		require.NoError(t, json.Unmarshal(body, &payload))
		assert.Equal(t, "49.99", payload["amount"])
		assert.Equal(t, "USD", payload["currency"])
		assert.Equal(t, "user_1_svc-1_1700000000000", payload["order_id"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"state":0,"result":{"uuid":"ext-1","order_id":"user_1_svc-1_1700000000000","url":"https://pay.example.com/ext-1","status":"check"}}`))
	}))
	defer server.Close()

	client := NewClient(config.Gateway{
		APIURL:     server.URL,
		MerchantID: "merchant-1",
		PaymentKey: "secret-key",
	})

	info, err := client.CreatePayment(context.Background(), CreatePaymentParams{
		Amount:      "49.99",
		Currency:    "USD",
		OrderID:     "user_1_svc-1_1700000000000",
		URLReturn:   "https://dashboard.example.com/return",
		URLCallback: "https://dashboard.example.com/webhook",
	})

	require.NoError(t, err)
	assert.Equal(t, "ext-1", info.ExternalID)
	assert.Equal(t, "https://pay.example.com/ext-1", info.RedirectURL)
	assert.Equal(t, "pending", info.Status)
}

func TestClient_CheckStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/payment/info", r.URL.Path)

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "ext-1", payload["uuid"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"state":0,"result":{"uuid":"ext-1","status":"paid_over"}}`))
	}))
	defer server.Close()

	client := NewClient(config.Gateway{
		APIURL:     server.URL,
		MerchantID: "merchant-1",
		PaymentKey: "secret-key",
	})

	status, err := client.CheckStatus(context.Background(), "ext-1")

	require.NoError(t, err)
	assert.Equal(t, "paid", status)
}

func TestClient_CheckStatus_GatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(config.Gateway{APIURL: server.URL})

	_, err := client.CheckStatus(context.Background(), "ext-1")

	assert.ErrorIs(t, err, ErrGateway)
}
