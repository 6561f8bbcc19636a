package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"signal_bot/internal/models"
	"signal_bot/pkg/db"
)

const schema = `
CREATE TABLE IF NOT EXISTS signals_active (
	id          TEXT PRIMARY KEY,
	symbol      TEXT NOT NULL,
	timeframe   TEXT NOT NULL,
	side        TEXT NOT NULL,
	entry       DOUBLE PRECISION NOT NULL,
	tp1         DOUBLE PRECISION NOT NULL,
	tp2         DOUBLE PRECISION NOT NULL,
	tp3         DOUBLE PRECISION NOT NULL,
	sl          DOUBLE PRECISION NOT NULL,
	confidence  INT NOT NULL,
	reason      TEXT NOT NULL,
	atr_pct     DOUBLE PRECISION NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS signals_history (
	symbol         TEXT NOT NULL,
	timeframe      TEXT NOT NULL,
	side           TEXT NOT NULL,
	entry          DOUBLE PRECISION NOT NULL,
	exit           DOUBLE PRECISION NOT NULL,
	result         TEXT NOT NULL,
	profit_percent DOUBLE PRECISION NOT NULL,
	closed_at      TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS signal_stats (
	period TEXT NOT NULL,
	bucket TEXT NOT NULL,
	total  INT NOT NULL DEFAULT 0,
	wins   INT NOT NULL DEFAULT 0,
	losses INT NOT NULL DEFAULT 0,
	pnl    DOUBLE PRECISION NOT NULL DEFAULT 0,
	PRIMARY KEY (period, bucket)
);`

// PgStore — постгресовая реализация Store (STORE_DRIVER=postgres).
// Критическая секция load-modify-save обеспечивается транзакцией.
type PgStore struct {
	tm db.TxManager
}

func NewPgStore(ctx context.Context, tm db.TxManager) (*PgStore, error) {
	s := &PgStore{tm: tm}
	err := tm.RunMaster(ctx, func(ctx context.Context, tx db.Transaction) error {
		_, err := tx.Exec(ctx, schema)
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "ensure schema")
	}
	return s, nil
}

func (s *PgStore) Add(ctx context.Context, rec models.SignalRecord) error {
	return s.tm.RunMaster(ctx, func(ctx context.Context, tx db.Transaction) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO signals_active
				(id, symbol, timeframe, side, entry, tp1, tp2, tp3, sl, confidence, reason, atr_pct, created_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
			ON CONFLICT (id) DO NOTHING`,
			rec.ID, rec.Symbol, rec.Timeframe, string(rec.Side), rec.Entry,
			rec.TP1, rec.TP2, rec.TP3, rec.SL, rec.Confidence, rec.Reason,
			rec.ATRPct, rec.CreatedAt,
		)
		return errors.Wrap(err, "insert active signal")
	})
}

func (s *PgStore) Active(ctx context.Context) ([]models.SignalRecord, error) {
	var out []models.SignalRecord
	err := s.tm.RunMaster(ctx, func(ctx context.Context, tx db.Transaction) error {
		rows, err := tx.Query(ctx, `
			SELECT id, symbol, timeframe, side, entry, tp1, tp2, tp3, sl, confidence, reason, atr_pct, created_at
			FROM signals_active ORDER BY created_at`)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var rec models.SignalRecord
			var side string
			if err := rows.Scan(
				&rec.ID, &rec.Symbol, &rec.Timeframe, &side, &rec.Entry,
				&rec.TP1, &rec.TP2, &rec.TP3, &rec.SL, &rec.Confidence,
				&rec.Reason, &rec.ATRPct, &rec.CreatedAt,
			); err != nil {
				return err
			}
			rec.Side = models.Side(side)
			rec.Status = models.StatusOpen
			out = append(out, rec)
		}
		return rows.Err()
	})
	return out, errors.Wrap(err, "select active signals")
}

func (s *PgStore) CloseSignal(ctx context.Context, id string, res CloseResult) (models.SignalRecord, error) {
	var rec models.SignalRecord
	err := s.tm.RunMaster(ctx, func(ctx context.Context, tx db.Transaction) error {
		var side string
		err := tx.QueryRow(ctx, `
			DELETE FROM signals_active WHERE id = $1
			RETURNING id, symbol, timeframe, side, entry, tp1, tp2, tp3, sl, confidence, reason, atr_pct, created_at`,
			id,
		).Scan(
			&rec.ID, &rec.Symbol, &rec.Timeframe, &side, &rec.Entry,
			&rec.TP1, &rec.TP2, &rec.TP3, &rec.SL, &rec.Confidence,
			&rec.Reason, &rec.ATRPct, &rec.CreatedAt,
		)
		if err == pgx.ErrNoRows {
			return errors.Errorf("signal %s is not active", id)
		}
		if err != nil {
			return err
		}
		rec.Side = models.Side(side)
		rec.Status = models.StatusOpen
		entry := applyClose(&rec, res)

		if _, err := tx.Exec(ctx, `
			INSERT INTO signals_history (symbol, timeframe, side, entry, exit, result, profit_percent, closed_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			entry.Symbol, entry.Timeframe, string(entry.Side), entry.Entry,
			entry.Exit, string(entry.Result), entry.ProfitPct, entry.Timestamp,
		); err != nil {
			return err
		}

		for _, bucket := range []struct{ period, key string }{
			{"day", dayKey(res.ClosedAt)},
			{"month", monthKey(res.ClosedAt)},
		} {
			wins, losses := 0, 0
			if res.ProfitPct >= 0 {
				wins = 1
			} else {
				losses = 1
			}
			if _, err := tx.Exec(ctx, `
				INSERT INTO signal_stats (period, bucket, total, wins, losses, pnl)
				VALUES ($1, $2, 1, $3, $4, $5)
				ON CONFLICT (period, bucket) DO UPDATE SET
					total  = signal_stats.total + 1,
					wins   = signal_stats.wins + EXCLUDED.wins,
					losses = signal_stats.losses + EXCLUDED.losses,
					pnl    = signal_stats.pnl + EXCLUDED.pnl`,
				bucket.period, bucket.key, wins, losses, res.ProfitPct,
			); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.SignalRecord{}, errors.Wrap(err, "close signal")
	}
	return rec, nil
}

func (s *PgStore) DailyStats(ctx context.Context, day string) (*models.StatsBucket, error) {
	var b *models.StatsBucket
	err := s.tm.RunMaster(ctx, func(ctx context.Context, tx db.Transaction) error {
		var bucket models.StatsBucket
		err := tx.QueryRow(ctx,
			`SELECT total, wins, losses, pnl FROM signal_stats WHERE period = 'day' AND bucket = $1`,
			day,
		).Scan(&bucket.Total, &bucket.Wins, &bucket.Losses, &bucket.PnL)
		if err == pgx.ErrNoRows {
			return nil
		}
		if err != nil {
			return err
		}
		b = &bucket
		return nil
	})
	return b, errors.Wrap(err, "select daily stats")
}
