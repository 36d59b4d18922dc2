package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/promo-dashboard/internal/lib/sl"
)

// Counter описывает атомарный счётчик с фиксированным окном.
type Counter interface {
	IncrWithWindow(ctx context.Context, key string, window time.Duration) (int64, error)
}

// Limiter реализует лимитер с фиксированным окном по ключу (action, userID).
// Счётчики живут во внешнем хранилище, поэтому лимит общий для всех
// экземпляров процесса. При недоступности хранилища лимитер пропускает
// запрос (fail open): доступность административных операций важнее
// строгого троттлинга.
type Limiter struct {
	counter Counter
	limit   int
	window  time.Duration
	log     *slog.Logger
}

// Decision содержит результат проверки лимита.
type Decision struct {
	Permitted bool
	Remaining int
}

// NewLimiter создаёт лимитер с заданным лимитом и окном.
func NewLimiter(counter Counter, limit int, window time.Duration, log *slog.Logger) *Limiter {
	return &Limiter{
		counter: counter,
		limit:   limit,
		window:  window,
		log:     log,
	}
}

// Allow увеличивает счётчик для пары (action, userID) и сообщает,
// разрешён ли запрос и сколько осталось до лимита в текущем окне.
func (l *Limiter) Allow(ctx context.Context, action, userID string) Decision {
	if userID == "" {
		return Decision{Permitted: false, Remaining: 0}
	}

	key := fmt.Sprintf("rate_limit:%s:%s", action, userID)
	count, err := l.counter.IncrWithWindow(ctx, key, l.window)
	if err != nil {
		l.log.Warn("rate limiter store failed, failing open", sl.Err(err))
		return Decision{Permitted: true, Remaining: l.limit}
	}

	remaining := l.limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Permitted: int(count) <= l.limit,
		Remaining: remaining,
	}
}
