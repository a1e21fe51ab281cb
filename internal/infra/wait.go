package infra

import (
	"context"
	"fmt"
	"time"

	"github.com/avast/retry-go/v5"
	"go.uber.org/zap"
)

// WaitFor повторяет probe с экспоненциальным бэкоффом, пока зависимость не ответит.
// Используется только при старте: запросы пользователей не ретраятся.
func WaitFor(ctx context.Context, logger *zap.Logger, name string, attempts uint, probe func(ctx context.Context) error) error {
	r := retry.New(
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.DelayType(func(n uint, err error, config retry.DelayContext) time.Duration {
			logger.Warn("dependency not ready", zap.String("dependency", name), zap.Uint("attempt", n+1), zap.Error(err))
			return retry.BackOffDelay(n, err, config)
		}),
	)

	err := r.Do(func() error {
		pCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return probe(pCtx)
	})
	if err != nil {
		return fmt.Errorf("%s unreachable: %w", name, err)
	}
	return nil
}
