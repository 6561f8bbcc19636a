// Package store — хранилище жизненного цикла сигналов: активный набор,
// история закрытий и дневные/месячные агрегаты.
package store

import (
	"context"
	"fmt"
	"time"

	"signal_bot/internal/models"
)

// CloseResult — чем и по какой цене закрылся сигнал.
type CloseResult struct {
	Reason    models.CloseReason
	Price     float64
	ProfitPct float64
	ClosedAt  time.Time
}

// Store — общий для всех воркеров и трекера ресурс. Каждая реализация
// обязана сериализовать read-modify-write всего набора: файловая — мьютексом,
// постгресовая — транзакцией.
type Store interface {
	// Add кладёт OPEN-сигнал в активный набор.
	Add(ctx context.Context, rec models.SignalRecord) error
	// Active возвращает все OPEN-сигналы.
	Active(ctx context.Context) ([]models.SignalRecord, error)
	// CloseSignal переводит запись OPEN→CLOSED, убирает из активного набора,
	// дописывает историю и обновляет агрегаты. Возвращает закрытую запись.
	CloseSignal(ctx context.Context, id string, res CloseResult) (models.SignalRecord, error)
	// DailyStats — агрегат за день YYYY-MM-DD, nil если пусто.
	DailyStats(ctx context.Context, day string) (*models.StatsBucket, error)
}

// DailyReport — человекочитаемая сводка за день (для Telegram).
func DailyReport(day string, b *models.StatsBucket) string {
	if b == nil || b.Total == 0 {
		return fmt.Sprintf("No data for %s", day)
	}
	winRate := float64(b.Wins) / float64(b.Total) * 100
	avg := b.PnL / float64(b.Total)
	return fmt.Sprintf(
		"📅 Daily Report — %s\nTotal: %d\nWins: %d (%.1f%%)\nLosses: %d\nAvg PnL: %.4f%%",
		day, b.Total, b.Wins, winRate, b.Losses, avg,
	)
}

func applyClose(rec *models.SignalRecord, res CloseResult) models.HistoryEntry {
	rec.Status = models.StatusClosed
	closedAt := res.ClosedAt
	rec.ClosedAt = &closedAt
	rec.ClosedBy = res.Reason
	rec.ClosedPx = res.Price
	return models.HistoryEntry{
		Symbol:    rec.Symbol,
		Timeframe: rec.Timeframe,
		Side:      rec.Side,
		Entry:     rec.Entry,
		Exit:      res.Price,
		Result:    res.Reason,
		ProfitPct: res.ProfitPct,
		Timestamp: res.ClosedAt,
	}
}

func dayKey(t time.Time) string   { return t.UTC().Format("2006-01-02") }
func monthKey(t time.Time) string { return t.UTC().Format("2006-01") }
