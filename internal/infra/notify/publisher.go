// Package notify рассылает сигналы об изменении учетных записей.
// Доставка best-effort: отказ канала не откатывает уже закоммиченную мутацию.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
	"github.com/xela07ax/taskhub/internal/infra"
	"go.uber.org/zap"
)

// RedisPublisher публикует "user_id:event" в канал учеток.
// Publish обернут предохранителем: при лежащем Redis запросы не ждут таймаутов.
type RedisPublisher struct {
	rdb     *redis.Client
	cb      *gobreaker.CircuitBreaker
	channel string
	logger  *zap.Logger
}

func NewRedisPublisher(rdb *redis.Client, logger *zap.Logger) *RedisPublisher {
	logger = logger.Named("notify")
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "redis-identity",
		MaxRequests: 1,
		Interval:    30 * time.Second,
		Timeout:     15 * time.Second, // через сколько пробуем закрыться
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &RedisPublisher{
		rdb:     rdb,
		cb:      cb,
		channel: infra.RedisChanIdentity,
		logger:  logger,
	}
}

// Publish отправляет сигнал. Открытый предохранитель возвращает gobreaker.ErrOpenState сразу.
func (p *RedisPublisher) Publish(ctx context.Context, userID, event string) error {
	_, err := p.cb.Execute(func() (interface{}, error) {
		return nil, p.rdb.Publish(ctx, p.channel, userID+":"+event).Err()
	})
	if err != nil {
		return fmt.Errorf("notify: publish %s: %w", event, err)
	}
	return nil
}

// State — текущее состояние предохранителя (для логов и тестов)
func (p *RedisPublisher) State() gobreaker.State {
	return p.cb.State()
}

// Noop используется, когда Redis не сконфигурирован
type Noop struct{}

func (Noop) Publish(context.Context, string, string) error { return nil }
