package models

import "time"

// Статусы подписки пользователя на услугу.
const (
	EntitlementPendingPayment = "pending_payment"
	EntitlementActive         = "active"
	EntitlementInactive       = "inactive"
	EntitlementExpired        = "expired"
)

// Entitlement представляет подписку пользователя на услугу.
// На пару (UserID, ServiceID) существует не более одной строки,
// повторная покупка выполняет upsert. Строки никогда не удаляются,
// меняется только статус.
type Entitlement struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`    // Идентификатор пользователя у провайдера аутентификации
	ServiceID string     `json:"service_id"` // Идентификатор услуги
	Status    string     `json:"status"`     // pending_payment, active, inactive или expired
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
