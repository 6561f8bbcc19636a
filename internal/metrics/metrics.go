package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics — счётчики пайплайна, отдаются на /metrics health-сервера.
type Metrics struct {
	CandlesTotal    prometheus.Counter
	WSReconnects    prometheus.Counter
	SignalsEmitted  prometheus.Counter
	SignalsClosed   *prometheus.CounterVec
	PollErrors      prometheus.Counter
	CooldownDropped prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		CandlesTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "gm_candles_total",
			Help: "Closed candles consumed from the feed.",
		}),
		WSReconnects: f.NewCounter(prometheus.CounterOpts{
			Name: "gm_ws_reconnects_total",
			Help: "Websocket reconnect attempts.",
		}),
		SignalsEmitted: f.NewCounter(prometheus.CounterOpts{
			Name: "gm_signals_emitted_total",
			Help: "Signals accepted past the cooldown gate.",
		}),
		SignalsClosed: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gm_signals_closed_total",
			Help: "Signals closed by the tracker.",
		}, []string{"reason"}),
		PollErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "gm_price_poll_errors_total",
			Help: "Per-symbol price poll failures (skipped, not fatal).",
		}),
		CooldownDropped: f.NewCounter(prometheus.CounterOpts{
			Name: "gm_cooldown_dropped_total",
			Help: "Verdicts discarded by the per-symbol cooldown.",
		}),
	}
}
