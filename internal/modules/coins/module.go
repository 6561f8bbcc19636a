package coins

import (
	"context"

	"go.uber.org/fx"

	"signal_bot/internal/modules/coins/service"
)

func Module() fx.Option {
	return fx.Module("coins",
		fx.Provide(
			service.NewManager,
		),
		fx.Invoke(func(lc fx.Lifecycle, m *service.Manager, ctx context.Context) {
			lc.Append(fx.Hook{
				OnStart: func(_ context.Context) error {
					go m.RunLoop(ctx)
					return nil
				},
			})
		}),
	)
}
