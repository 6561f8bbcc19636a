package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signal_bot/internal/exchange"
	"signal_bot/internal/metrics"
	"signal_bot/internal/models"
	"signal_bot/internal/modules/config"
	healthsvc "signal_bot/internal/modules/health/service"
	"signal_bot/internal/notify"
	"signal_bot/internal/store"
	"signal_bot/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func longRec() models.SignalRecord {
	return models.SignalRecord{
		ID: "BTCUSDT_1m_1", Symbol: "BTCUSDT", Side: models.SideBuy,
		Entry: 100, TP1: 101, TP2: 102, TP3: 103, SL: 98.4,
	}
}

func shortRec() models.SignalRecord {
	return models.SignalRecord{
		ID: "BTCUSDT_1m_2", Symbol: "BTCUSDT", Side: models.SideShort,
		Entry: 100, TP1: 99, TP2: 98, TP3: 97, SL: 101.6,
	}
}

func TestEvaluateLong(t *testing.T) {
	tests := []struct {
		name   string
		price  float64
		reason models.CloseReason
		hit    bool
	}{
		{"между уровнями", 100.5, "", false},
		{"ровно TP1", 101, models.CloseTP1, true},
		{"выше TP2", 102.3, models.CloseTP2, true},
		{"перепрыгнул все уровни", 120, models.CloseTP3, true},
		{"пробил стоп", 98.0, models.CloseSL, true},
		{"чуть выше стопа", 98.5, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reason, hit := Evaluate(longRec(), tt.price)
			assert.Equal(t, tt.hit, hit)
			assert.Equal(t, tt.reason, reason)
		})
	}
}

func TestEvaluateShortMirror(t *testing.T) {
	reason, hit := Evaluate(shortRec(), 96)
	assert.True(t, hit)
	assert.Equal(t, models.CloseTP3, reason)

	reason, hit = Evaluate(shortRec(), 102)
	assert.True(t, hit)
	assert.Equal(t, models.CloseSL, reason)

	_, hit = Evaluate(shortRec(), 99.5)
	assert.False(t, hit)
}

func TestEvaluateFarTargetWinsOverNear(t *testing.T) {
	// цена перескочила сразу TP3 — засчитывается дальний уровень
	reason, hit := Evaluate(longRec(), 103)
	assert.True(t, hit)
	assert.Equal(t, models.CloseTP3, reason)
}

func TestProfitPctFromPolledPrice(t *testing.T) {
	// PnL считается от фактической цены опроса, не от уровня:
	// лонг от 100 закрылся на 120 — это +20%, хотя триггер TP3 был на 103
	assert.InDelta(t, 20.0, ProfitPct(longRec(), 120), 1e-12)
	assert.InDelta(t, -1.6, ProfitPct(longRec(), 98.4), 1e-12)

	// у шорта знак зеркальный
	assert.InDelta(t, 10.0, ProfitPct(shortRec(), 90), 1e-12)
	assert.InDelta(t, -1.6, ProfitPct(shortRec(), 101.6), 1e-12)

	// нулевой вход не делит на ноль
	assert.Equal(t, 0.0, ProfitPct(models.SignalRecord{Side: models.SideBuy}, 5))
}

// fakeStore — стор в памяти для прогонов tick.
type fakeStore struct {
	active []models.SignalRecord
	closed []string
}

func (f *fakeStore) Add(context.Context, models.SignalRecord) error { return nil }

func (f *fakeStore) Active(context.Context) ([]models.SignalRecord, error) {
	return f.active, nil
}

func (f *fakeStore) CloseSignal(_ context.Context, id string, _ store.CloseResult) (models.SignalRecord, error) {
	f.closed = append(f.closed, id)
	for _, rec := range f.active {
		if rec.ID == id {
			return rec, nil
		}
	}
	return models.SignalRecord{ID: id}, nil
}

func (f *fakeStore) DailyStats(context.Context, string) (*models.StatsBucket, error) {
	return nil, nil
}

func newTestTracker(st store.Store, restURL string) (*Tracker, *metrics.Metrics) {
	m := metrics.New(prometheus.NewRegistry())
	return NewTracker(
		&config.Config{},
		exchange.NewClient(restURL),
		st,
		notify.NewStdout(),
		healthsvc.NewState(),
		m,
	), m
}

func TestTickFetchesFailedSymbolOnce(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	// два открытых сигнала по одному символу
	st := &fakeStore{active: []models.SignalRecord{longRec(), {
		ID: "BTCUSDT_5m_2", Symbol: "BTCUSDT", Side: models.SideBuy,
		Entry: 100, TP1: 101, TP2: 102, TP3: 103, SL: 98.4,
	}}}
	tr, m := newTestTracker(st, srv.URL)
	tr.tick(context.Background())

	// недоступный символ опрашивается один раз за проход
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PollErrors))
	assert.Empty(t, st.closed)
}

func TestTickClosesOnTargetHit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"symbol":"BTCUSDT","price":"120"}`))
	}))
	defer srv.Close()

	st := &fakeStore{active: []models.SignalRecord{longRec()}}
	tr, m := newTestTracker(st, srv.URL)
	tr.tick(context.Background())

	require.Equal(t, []string{"BTCUSDT_1m_1"}, st.closed)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SignalsClosed.WithLabelValues("TP3")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.PollErrors))
}
