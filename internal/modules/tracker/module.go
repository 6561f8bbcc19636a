package tracker

import (
	"context"

	"go.uber.org/fx"

	"signal_bot/internal/modules/tracker/service"
)

func Module() fx.Option {
	return fx.Module("tracker",
		fx.Provide(
			service.NewTracker,
		),
		fx.Invoke(func(lc fx.Lifecycle, t *service.Tracker, ctx context.Context) {
			lc.Append(fx.Hook{
				OnStart: func(_ context.Context) error {
					go t.RunLoop(ctx)
					return nil
				},
			})
		}),
	)
}
