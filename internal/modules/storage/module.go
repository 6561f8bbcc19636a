package storage

import (
	"context"

	"go.uber.org/fx"

	"signal_bot/internal/exchange"
	"signal_bot/internal/modules/config"
	"signal_bot/internal/notify"
	"signal_bot/internal/store"
	"signal_bot/pkg/db"
	"signal_bot/pkg/logger"
)

// Module собирает общие зависимости пайплайна: стор, REST-клиент и нотифайер.
// Драйвер стора выбирается конфигом: file (по умолчанию) или postgres.
func Module() fx.Option {
	return fx.Module("storage",
		fx.Provide(
			NewStore,
			NewNotifier,
			func(cfg *config.Config) *exchange.Client {
				return exchange.NewClient(cfg.RestURL)
			},
		),
	)
}

func NewStore(lc fx.Lifecycle, cfg *config.Config, ctx context.Context) (store.Store, error) {
	if cfg.StoreDriver != "postgres" {
		return store.NewFileStore(cfg.DataDir)
	}

	pool, err := db.NewPool(ctx, db.PoolConfig{DSN: cfg.DB})
	if err != nil {
		return nil, err
	}
	tm := db.NewPgTxManager(pool)
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			tm.Close()
			return nil
		},
	})
	return store.NewPgStore(ctx, tm)
}

func NewNotifier(cfg *config.Config) notify.Notifier {
	if cfg.Telegram.Token == "" {
		logger.Info("[NOTIFY] токен не задан, уведомления в stdout")
		return notify.NewStdout()
	}
	t, err := notify.NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID)
	if err != nil {
		logger.Error("[NOTIFY] telegram недоступен (%v), уведомления в stdout", err)
		return notify.NewStdout()
	}
	return t
}
