package models

import "time"

// Уровни записей журнала аудита.
const (
	AuditInfo  = "info"
	AuditWarn  = "warn"
	AuditError = "error"
)

// AuditEntry представляет запись append-only журнала аудита.
// Журнал фиксирует каждое решение о доступе и каждую привилегированную
// мутацию: кто, над чем и с каким исходом.
type AuditEntry struct {
	ID        int64     `json:"id"`
	Level     string    `json:"level"`    // info, warn или error
	Action    string    `json:"action"`   // create, read, update, delete, allow, deny
	ActorID   string    `json:"actor_id"` // Кто выполнял действие
	Resource  string    `json:"resource"` // Над чем: services, admin_users, payments...
	Message   string    `json:"message"`
	Metadata  string    `json:"metadata,omitempty"` // Произвольный JSON с деталями
	CreatedAt time.Time `json:"created_at"`
}
