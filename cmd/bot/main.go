package main

import (
	"context"
	"log"

	"signal_bot/internal/modules/coins"
	"signal_bot/internal/modules/config"
	"signal_bot/internal/modules/health"
	"signal_bot/internal/modules/monitor"
	"signal_bot/internal/modules/storage"
	"signal_bot/internal/modules/tracker"
	"signal_bot/pkg/logger"
	"signal_bot/pkg/tracing"

	"go.uber.org/fx"
)

// appOptions — весь граф приложения; main только собирает и ждёт сигнала.
func appOptions() []fx.Option {
	return []fx.Option{
		fx.Provide(
			func() context.Context {
				return context.Background()
			},
		),
		config.Module(),
		storage.Module(),
		health.Module(),
		coins.Module(),
		monitor.Module(),
		tracker.Module(),
		fx.Invoke(func(lc fx.Lifecycle, cfg *config.Config) error {
			_, closeTracer, err := tracing.InitTracer(tracing.Config{
				ServiceName: "signal_bot",
				Host:        cfg.JaegerHost,
				Port:        cfg.JaegerPort,
			})
			if err != nil {
				return err
			}
			lc.Append(fx.Hook{
				OnStop: func(_ context.Context) error {
					closeTracer()
					return nil
				},
			})
			return nil
		}),
	}
}

func main() {
	if err := logger.Init(); err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()
	logger.SetServiceName("signal_bot")

	// все OnStart-хуки запускают свои циклы в горутинах и возвращаются,
	// поэтому живём до SIGINT/SIGTERM через блокирующий Run
	fx.New(appOptions()...).Run()
}
