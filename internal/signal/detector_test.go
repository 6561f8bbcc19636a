package signal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signal_bot/internal/models"
)

func tradingHours() func() time.Time {
	return func() time.Time {
		return time.Date(2025, 6, 5, 12, 0, 0, 0, time.UTC)
	}
}

// confluenceSeries — 250 свечей: долгий пологий спуск, короткое ралли
// на объёме, откат и финальный бычий бар с гэпом вниз и объёмом 4x.
// Подобрано так, чтобы сошлись все ворота разом: свежий кросс EMA8/21,
// цена выше EMA200, RSI≈88, MFI≈68, поглощение, объём > 2x среднего.
func confluenceSeries() []models.Candle {
	const (
		n         = 250
		start     = 110.0
		slope     = 0.04
		rallyLen  = 4
		rallyStep = 0.14
		dip       = 0.2
		jump      = 3.3
	)
	out := make([]models.Candle, 0, n)
	close := start
	for i := 0; i < n; i++ {
		open := close
		if i == 0 {
			open = start
		}
		di := n - 1 - i // свечей до конца
		var vol float64
		switch {
		case di == 0:
			close = open + jump
			vol = 400
		case di == 1:
			close = open - dip
			vol = 80
		case di <= 1+rallyLen:
			close = open + rallyStep
			vol = 300
		default:
			close = open - slope
			vol = 100
		}
		hi := maxF(open, close) + 0.05
		lo := minF(open, close) - 0.05
		if di == 1 {
			hi = maxF(open, close) + 0.9 // шип держит типичную цену растущей
		}
		out = append(out, models.Candle{
			OpenTime: int64(i) * 60_000,
			Open:     open, High: hi, Low: lo, Close: close,
			Volume: vol,
		})
	}
	// гэп вниз на последнем баре: открытие чуть ниже прошлого закрытия,
	// иначе поглощению не хватает строгого o < prevClose
	last := &out[n-1]
	last.Open = out[n-2].Close - 0.02
	last.Low = minF(last.Open, last.Close) - 0.05
	return out
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func fillWindow(candles []models.Candle) *Window {
	w := NewWindow(len(candles))
	for _, c := range candles {
		w.Append(c)
	}
	return w
}

func TestDetectConfluenceLong(t *testing.T) {
	d := NewDetector(DefaultDetectorConfig(), tradingHours())
	w := fillWindow(confluenceSeries())

	v := d.Detect(w)
	require.NotNil(t, v)
	assert.Equal(t, models.SideBuy, v.Side)
	assert.Equal(t, w.Last().Close, v.Price)
	assert.Equal(t, 98, v.Confidence) // 80 + поглощение + объём 2x + RSI/MFI > 65
	assert.Greater(t, v.ATR, 0.0)
	assert.GreaterOrEqual(t, v.ATRPct, DefaultDetectorConfig().ATRPctMin)
	assert.Equal(t, "EMA+RSI+MFI+Volume+Candle", v.Reason)
}

func TestDetectIsPure(t *testing.T) {
	d := NewDetector(DefaultDetectorConfig(), tradingHours())
	w := fillWindow(confluenceSeries())

	first := d.Detect(w)
	second := d.Detect(w)
	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Equal(t, first, second)
}

func TestDetectShortWindow(t *testing.T) {
	d := NewDetector(DefaultDetectorConfig(), tradingHours())
	w := fillWindow(confluenceSeries()[:100]) // меньше EMA200

	assert.Nil(t, d.Detect(w))
	assert.Nil(t, d.Detect(nil))
}

func TestDetectOffHours(t *testing.T) {
	series := confluenceSeries()
	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"ночь", time.Date(2025, 6, 5, 3, 0, 0, 0, time.UTC), false},
		{"до открытия", time.Date(2025, 6, 5, 7, 59, 59, 0, time.UTC), false},
		{"ровно старт", time.Date(2025, 6, 5, 8, 0, 0, 0, time.UTC), true},
		{"ровно конец", time.Date(2025, 6, 5, 22, 0, 0, 0, time.UTC), true},
		{"секунда после", time.Date(2025, 6, 5, 22, 0, 1, 0, time.UTC), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			at := tt.at
			d := NewDetector(DefaultDetectorConfig(), func() time.Time { return at })
			got := d.Detect(fillWindow(series))
			if tt.want {
				assert.NotNil(t, got)
			} else {
				assert.Nil(t, got)
			}
		})
	}
}

func TestDetectFlatMarketBelowATRFloor(t *testing.T) {
	// мёртвый рынок: диапазон свечи 0.02 на цене 100 → atr_pct 0.0002
	candles := make([]models.Candle, 250)
	for i := range candles {
		candles[i] = models.Candle{
			OpenTime: int64(i) * 60_000,
			Open:     100, High: 100.01, Low: 99.99, Close: 100,
			Volume: 100,
		}
	}
	d := NewDetector(DefaultDetectorConfig(), tradingHours())
	assert.Nil(t, d.Detect(fillWindow(candles)))
}

func TestDetectNoCrossNoVerdict(t *testing.T) {
	// монотонный рост: быстрая EMA давно выше медленной, кросс не свежий
	candles := make([]models.Candle, 250)
	price := 100.0
	for i := range candles {
		open := price
		price += 0.5
		candles[i] = models.Candle{
			OpenTime: int64(i) * 60_000,
			Open:     open, High: price + 0.05, Low: open - 0.05, Close: price,
			Volume: 300,
		}
	}
	d := NewDetector(DefaultDetectorConfig(), tradingHours())
	assert.Nil(t, d.Detect(fillWindow(candles)))
}
