// Package jwt реализует генерацию и парсинг JWT токенов с пользовательскими claim полями.
//
// Провайдер аутентификации подписывает сессионные токены общим секретом,
// сервис проверяет их локально, без обращения к провайдеру на каждый запрос.
package jwt

import (
	"time"
)

// Maker описывает интерфейс для генерации и парсинга JWT токенов.
type Maker interface {
	// GenerateToken создаёт токен с идентификатором пользователя и email
	GenerateToken(userID, email string) (string, error)
	// ParseToken возвращает *CustomClaims, если токен валиден
	ParseToken(tokenStr string) (*CustomClaims, error)
}

// MakerImpl реализует интерфейс Maker с использованием секретного ключа
// и времени жизни токена (TTL).
type MakerImpl struct {
	secretKey string        // Секретный ключ для подписи токенов.
	tokenTTL  time.Duration // Время жизни токена.
}

// NewJWTMaker создаёт новый экземпляр MakerImpl на основе секретного ключа и TTL.
func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
	}
}
