package models

import "time"

// User представляет пользователя, синхронизированного из внешнего
// провайдера аутентификации. Пароли и сессии хранит провайдер,
// локально держим только профильные данные для админских отчётов.
type User struct {
	ID        string    `json:"id"` // Идентификатор пользователя у провайдера
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	CreatedAt time.Time `json:"created_at"`
	IsAdmin   bool      `json:"is_admin"` // Признак членства в наборе администраторов
}

// DummyAdmin используется для приёма запроса на добавление администратора.
type DummyAdmin struct {
	UserID string `json:"user_id" validate:"required"`
}
