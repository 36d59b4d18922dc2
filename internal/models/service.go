// Package models содержит доменные структуры каталога услуг, подписок
// пользователей и платежей, а также вспомогательные типы для приёма
// данных из JSON-запросов.
package models

import "time"

// Service представляет услугу продвижения из каталога.
// Мягко удалённые услуги (DeletedAt != nil) не отображаются ни в одном
// списке и не могут изменяться.
type Service struct {
	ID          string     `json:"id"`                    // Уникальный идентификатор услуги
	Name        string     `json:"name"`                  // Название услуги
	Description string     `json:"description"`           // Описание услуги
	Price       float64    `json:"price"`                 // Цена в USD, всегда > 0
	IsActive    bool       `json:"is_active"`             // Доступна ли услуга для покупки
	ImageURL    string     `json:"image_url,omitempty"`   // Ссылка на обложку
	YoutubeURL  string     `json:"youtube_url,omitempty"` // Ссылка на промо-ролик
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"` // Время мягкого удаления
}

// DummyService используется для приёма данных о новой услуге из JSON-запроса,
// прежде чем конвертировать их в Service.
type DummyService struct {
	Name        string  `json:"name" validate:"required"`         // Название услуги
	Description string  `json:"description" validate:"required"`  // Описание
	Price       float64 `json:"price" validate:"required,gt=0"`   // Цена (>0)
	IsActive    *bool   `json:"is_active"`                        // Флаг доступности, по умолчанию true
	ImageURL    string  `json:"image_url" validate:"omitempty"`   // Обложка
	YoutubeURL  string  `json:"youtube_url" validate:"omitempty"` // Промо-ролик
}

// ServiceUpdate описывает частичное обновление услуги: nil-поле означает
// "не менять".
type ServiceUpdate struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price" validate:"omitempty,gt=0"`
	IsActive    *bool    `json:"is_active"`
	ImageURL    *string  `json:"image_url"`
	YoutubeURL  *string  `json:"youtube_url"`
}
