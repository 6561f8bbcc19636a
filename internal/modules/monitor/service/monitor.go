package service

import (
	"context"

	"signal_bot/internal/metrics"
	coins "signal_bot/internal/modules/coins/service"
	"signal_bot/internal/modules/config"
	healthsvc "signal_bot/internal/modules/health/service"
	"signal_bot/internal/notify"
	"signal_bot/internal/signal"
	"signal_bot/internal/store"
	"signal_bot/pkg/logger"
)

// Monitor раздаёт вселенную символов по чанкам; каждый чанк — своя
// горутина со своим WS-соединением, своими окнами и своим кулдауном.
// Между чанками ничего не шарится, кроме Store (он сам критическая секция).
type Monitor struct {
	cfg     *config.Config
	coins   *coins.Manager
	store   store.Store
	n       notify.Notifier
	state   *healthsvc.State
	metrics *metrics.Metrics
}

func NewMonitor(
	cfg *config.Config,
	coins *coins.Manager,
	st store.Store,
	n notify.Notifier,
	state *healthsvc.State,
	m *metrics.Metrics,
) *Monitor {
	return &Monitor{cfg: cfg, coins: coins, store: st, n: n, state: state, metrics: m}
}

func (m *Monitor) Run(ctx context.Context) {
	symbols := m.coins.Symbols()
	if len(symbols) == 0 {
		logger.Error("[MONITOR] пустой список символов — стример не запущен")
		return
	}

	chunks := chunkSymbols(symbols, m.cfg.ChunkSize)
	logger.Info("[MONITOR] ▶️ старт: %d символов, %d чанков, tf=%v",
		len(symbols), len(chunks), m.cfg.Timeframes)
	m.n.Sendf("🚀 GM Signal Bot запущен\n• Символов: %d\n• Таймфреймы: %v", len(symbols), m.cfg.Timeframes)

	for _, chunk := range chunks {
		go m.runChunk(ctx, chunk)
	}
	m.state.SetReady(true)
}

// runChunk — жизненный цикл одного чанка: приём закрытых свечей
// и прогон каждой через пайплайн. Ошибка обработки одной свечи
// не роняет поток.
func (m *Monitor) runChunk(ctx context.Context, symbols []string) {
	windows := make(map[string]*signal.Window)
	cooldown := signal.NewCooldown(m.cfg.Cooldown, nil)
	detector := signal.NewDetector(m.detectorConfig(), nil)

	ticks := m.streamChunk(ctx, symbols)
	for {
		select {
		case <-ctx.Done():
			return
		case tick, ok := <-ticks:
			if !ok {
				return
			}
			m.metrics.CandlesTotal.Inc()
			m.state.TouchTick(tick.EventTime)

			key := tick.Symbol + "|" + tick.Timeframe
			w := windows[key]
			if w == nil {
				w = signal.NewWindow(m.cfg.HistoryLen)
				windows[key] = w
			}
			w.Append(tick.Candle)

			if err := m.onCandle(ctx, tick, w, cooldown, detector); err != nil {
				logger.Error("[MONITOR] %s %s: %v", tick.Symbol, tick.Timeframe, err)
			}
		}
	}
}

func (m *Monitor) detectorConfig() signal.DetectorConfig {
	return signal.DetectorConfig{
		EMAFast:         m.cfg.EMAFast,
		EMAMed:          m.cfg.EMAMed,
		EMALong:         m.cfg.EMALong,
		EMATrend:        m.cfg.EMATrend,
		RSIPeriod:       m.cfg.RSIPeriod,
		MFIPeriod:       m.cfg.MFIPeriod,
		VolumeMult:      m.cfg.VolumeMult,
		ATRPeriod:       m.cfg.ATRPeriod,
		ATRPctMin:       m.cfg.ATRPctMin,
		ActiveHourStart: m.cfg.ActiveHourStart,
		ActiveHourEnd:   m.cfg.ActiveHourEnd,
	}
}

func chunkSymbols(symbols []string, size int) [][]string {
	if size <= 0 {
		size = 20
	}
	var chunks [][]string
	for i := 0; i < len(symbols); i += size {
		end := i + size
		if end > len(symbols) {
			end = len(symbols)
		}
		chunks = append(chunks, symbols[i:end])
	}
	return chunks
}
