package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"signal_bot/internal/models"
	"signal_bot/internal/signal"
	"signal_bot/pkg/logger"
)

// onCandle — путь закрытой свечи: детект → кулдаун → цели → персист → алерт.
// Детектор чистый; всё грязное (время, стор, телеграм) живёт здесь.
func (m *Monitor) onCandle(
	ctx context.Context,
	tick models.CandleTick,
	w *signal.Window,
	cooldown *signal.Cooldown,
	detector *signal.Detector,
) error {
	verdict := detector.Detect(w)
	if verdict == nil {
		return nil
	}

	if !cooldown.Allow(tick.Symbol, tick.Timeframe) {
		m.metrics.CooldownDropped.Inc()
		return nil
	}

	span := opentracing.StartSpan("signal_emitted")
	span.SetTag("symbol", tick.Symbol)
	span.SetTag("timeframe", tick.Timeframe)
	span.SetTag("side", string(verdict.Side))
	defer span.Finish()

	now := time.Now().UTC()
	targets := signal.ComputeTargets(verdict.Side, verdict.Price, verdict.ATR)
	lev := signal.RecommendLeverage(verdict.Confidence, verdict.ATRPct)

	rec := models.SignalRecord{
		ID:         fmt.Sprintf("%s_%s_%d", tick.Symbol, tick.Timeframe, now.Unix()),
		Symbol:     tick.Symbol,
		Timeframe:  tick.Timeframe,
		Side:       verdict.Side,
		Entry:      verdict.Price,
		TP1:        targets.TP1,
		TP2:        targets.TP2,
		TP3:        targets.TP3,
		SL:         targets.SL,
		Confidence: verdict.Confidence,
		Reason:     verdict.Reason,
		ATRPct:     verdict.ATRPct,
		Status:     models.StatusOpen,
		CreatedAt:  now,
	}
	if err := m.store.Add(ctx, rec); err != nil {
		return errors.Wrap(err, "persist signal")
	}

	m.metrics.SignalsEmitted.Inc()
	logger.Info("[SIGNAL] %s %s %s @ %.8f conf=%d", rec.Symbol, rec.Timeframe, rec.Side, rec.Entry, rec.Confidence)
	m.n.Send(formatAlert(rec, lev))
	return nil
}

func formatAlert(rec models.SignalRecord, lev models.LeverageRange) string {
	return fmt.Sprintf(
		"🚨 GOLDEN MOMENT — %s\n"+
			"TF: %s\n"+
			"Side: %s\n"+
			"Entry: %.8f\n"+
			"TP1: %.8f TP2: %.8f TP3: %.8f\n"+
			"SL: %.8f\n"+
			"Confidence: %d%% | Lev: %s\n"+
			"Reason: %s\n"+
			"Time: %s",
		rec.Symbol, rec.Timeframe, strings.ToUpper(string(rec.Side)),
		rec.Entry, rec.TP1, rec.TP2, rec.TP3, rec.SL,
		rec.Confidence, lev, rec.Reason,
		rec.CreatedAt.Format(time.RFC3339),
	)
}
