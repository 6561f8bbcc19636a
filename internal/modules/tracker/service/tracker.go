package service

import (
	"context"
	"time"

	"signal_bot/internal/exchange"
	"signal_bot/internal/metrics"
	"signal_bot/internal/models"
	"signal_bot/internal/modules/config"
	healthsvc "signal_bot/internal/modules/health/service"
	"signal_bot/internal/notify"
	"signal_bot/internal/store"
	"signal_bot/pkg/logger"
)

// Tracker опрашивает цены по активным сигналам и закрывает их по
// тейкам/стопу. Один тик — один проход по всему активному набору;
// цена на символ запрашивается не чаще раза за проход.
type Tracker struct {
	cfg     *config.Config
	rest    *exchange.Client
	store   store.Store
	n       notify.Notifier
	state   *healthsvc.State
	metrics *metrics.Metrics

	lastReportDay string
}

func NewTracker(
	cfg *config.Config,
	rest *exchange.Client,
	st store.Store,
	n notify.Notifier,
	state *healthsvc.State,
	m *metrics.Metrics,
) *Tracker {
	return &Tracker{cfg: cfg, rest: rest, store: st, n: n, state: state, metrics: m}
}

func (t *Tracker) RunLoop(ctx context.Context) {
	logger.Info("[TRACKER] ▶️ старт, интервал %s", t.cfg.PollInterval)
	ticker := time.NewTicker(t.cfg.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.tick(ctx)
		}
	}
}

func (t *Tracker) tick(ctx context.Context) {
	active, err := t.store.Active(ctx)
	if err != nil {
		logger.Error("[TRACKER] чтение активных: %v", err)
		return
	}
	t.state.SetOpenSignals(len(active))
	if len(active) == 0 {
		t.maybeDailyReport(ctx)
		return
	}

	prices := make(map[string]float64, len(active))
	failed := make(map[string]struct{})
	for _, rec := range active {
		if _, bad := failed[rec.Symbol]; bad {
			continue // символ уже не ответил в этом проходе
		}
		px, ok := prices[rec.Symbol]
		if !ok {
			px, err = t.rest.Price(ctx, rec.Symbol)
			if err != nil {
				// недоступный символ не блокирует остальные
				t.metrics.PollErrors.Inc()
				logger.Error("[TRACKER] цена %s: %v", rec.Symbol, err)
				failed[rec.Symbol] = struct{}{}
				continue
			}
			prices[rec.Symbol] = px
		}

		reason, hit := Evaluate(rec, px)
		if !hit {
			continue
		}
		t.closeOut(ctx, rec, reason, px)
	}
	t.maybeDailyReport(ctx)
}

// Evaluate сверяет текущую цену с уровнями сигнала. Уровни проверяются
// от дальнего к ближнему: если цена перепрыгнула сразу TP3, засчитывается
// TP3, а не TP1. PnL считается от фактической цены опроса, не от уровня.
func Evaluate(rec models.SignalRecord, price float64) (models.CloseReason, bool) {
	if rec.Side == models.SideBuy {
		switch {
		case price >= rec.TP3:
			return models.CloseTP3, true
		case price >= rec.TP2:
			return models.CloseTP2, true
		case price >= rec.TP1:
			return models.CloseTP1, true
		case price <= rec.SL:
			return models.CloseSL, true
		}
		return "", false
	}
	switch {
	case price <= rec.TP3:
		return models.CloseTP3, true
	case price <= rec.TP2:
		return models.CloseTP2, true
	case price <= rec.TP1:
		return models.CloseTP1, true
	case price >= rec.SL:
		return models.CloseSL, true
	}
	return "", false
}

// ProfitPct — PnL в процентах от входа, по фактической цене выхода.
func ProfitPct(rec models.SignalRecord, exit float64) float64 {
	if rec.Entry == 0 {
		return 0
	}
	pct := (exit - rec.Entry) / rec.Entry * 100
	if rec.Side == models.SideShort {
		pct = -pct
	}
	return pct
}

func (t *Tracker) closeOut(ctx context.Context, rec models.SignalRecord, reason models.CloseReason, price float64) {
	res := store.CloseResult{
		Reason:    reason,
		Price:     price,
		ProfitPct: ProfitPct(rec, price),
		ClosedAt:  time.Now().UTC(),
	}
	closed, err := t.store.CloseSignal(ctx, rec.ID, res)
	if err != nil {
		logger.Error("[TRACKER] закрытие %s: %v", rec.ID, err)
		return
	}
	t.metrics.SignalsClosed.WithLabelValues(string(reason)).Inc()

	emoji := "✅"
	if reason == models.CloseSL {
		emoji = "🛑"
	}
	logger.Info("[TRACKER] %s %s %s @ %.8f pnl=%.2f%%", emoji, closed.Symbol, reason, price, res.ProfitPct)
	t.n.Sendf("%s %s (%s) | %s Hit @ %.8f\nPnL: %.2f%%",
		emoji, closed.Symbol, closed.Timeframe, reason, price, res.ProfitPct)
}

// maybeDailyReport шлёт сводку за вчера при первой смене даты (UTC).
func (t *Tracker) maybeDailyReport(ctx context.Context) {
	today := time.Now().UTC().Format("2006-01-02")
	if t.lastReportDay == "" {
		t.lastReportDay = today
		return
	}
	if t.lastReportDay == today {
		return
	}
	day := t.lastReportDay
	t.lastReportDay = today

	b, err := t.store.DailyStats(ctx, day)
	if err != nil {
		logger.Error("[TRACKER] статистика за %s: %v", day, err)
		return
	}
	t.n.Send(store.DailyReport(day, b))
}
