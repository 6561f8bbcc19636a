package monitor

import (
	"context"

	"go.uber.org/fx"

	"signal_bot/internal/modules/monitor/service"
)

func Module() fx.Option {
	return fx.Module("monitor",
		fx.Provide(
			service.NewMonitor,
		),
		fx.Invoke(func(lc fx.Lifecycle, m *service.Monitor, ctx context.Context) {
			lc.Append(fx.Hook{
				OnStart: func(_ context.Context) error {
					go m.Run(ctx)
					return nil
				},
			})
		}),
	)
}
