package models

import "time"

// Статусы платежа. Статус pending единственный нетерминальный:
// из него платёж переходит ровно один раз в paid, failed или expired
// и никогда не возвращается обратно.
const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
	PaymentFailed  = "failed"
	PaymentExpired = "expired"
)

// IsTerminalPaymentStatus сообщает, является ли статус платежа терминальным.
func IsTerminalPaymentStatus(status string) bool {
	switch status {
	case PaymentPaid, PaymentFailed, PaymentExpired:
		return true
	}
	return false
}

// Payment представляет платёж за услугу через криптовалютный шлюз.
type Payment struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	ServiceID        string    `json:"service_id"`
	Amount           float64   `json:"amount"`
	Currency         string    `json:"currency"`
	Status           string    `json:"status"`             // pending, paid, failed или expired
	PaymentMethod    string    `json:"payment_method"`     // Способ оплаты, сейчас всегда "crypto"
	GatewayPaymentID string    `json:"gateway_payment_id"` // Идентификатор платежа на стороне шлюза
	OrderID          string    `json:"order_id"`           // Внутренний код заказа вида {userID}_{serviceID}_{millis}
	CreatedAt        time.Time `json:"created_at"`
}

// DummyPurchase используется для приёма запроса на покупку услуги.
type DummyPurchase struct {
	ServiceID string `json:"service_id" validate:"required,uuid"`
}

// DummyVerifyPayment используется для приёма запроса ручной проверки платежа
// администратором.
type DummyVerifyPayment struct {
	PaymentID string `json:"payment_id" validate:"required,uuid"`
	Status    string `json:"status" validate:"required,oneof=paid failed expired"`
}
