// Package signal — ядро: скользящее окно истории, конфлюэнс-детектор,
// расчёт целей/стопа и кулдаун-гейт.
package signal

import "signal_bot/internal/models"

// Window — окно закрытых свечей фиксированной ёмкости для одной пары
// (символ, таймфрейм). При переполнении выталкивается самая старая.
// Инвариант: open_time внутри окна не убывает.
type Window struct {
	capacity int
	candles  []models.Candle
}

func NewWindow(capacity int) *Window {
	if capacity <= 0 {
		capacity = 300
	}
	return &Window{capacity: capacity}
}

// Append добавляет свечу. Свеча со временем раньше последней игнорируется,
// с тем же временем — заменяет последнюю: после реконнекта стрим может
// переслать уже учтённый бар.
func (w *Window) Append(c models.Candle) {
	if n := len(w.candles); n > 0 {
		last := w.candles[n-1].OpenTime
		if c.OpenTime < last {
			return
		}
		if c.OpenTime == last {
			w.candles[n-1] = c
			return
		}
	}
	w.candles = append(w.candles, c)
	if len(w.candles) > w.capacity {
		w.candles = w.candles[1:]
	}
}

func (w *Window) Len() int { return len(w.candles) }

// Candles отдаёт срез окна (oldest..newest). Не мутировать.
func (w *Window) Candles() []models.Candle { return w.candles }

func (w *Window) Last() models.Candle { return w.candles[len(w.candles)-1] }

func (w *Window) Closes() []float64 { return w.column(func(c models.Candle) float64 { return c.Close }) }
func (w *Window) Highs() []float64  { return w.column(func(c models.Candle) float64 { return c.High }) }
func (w *Window) Lows() []float64   { return w.column(func(c models.Candle) float64 { return c.Low }) }
func (w *Window) Volumes() []float64 {
	return w.column(func(c models.Candle) float64 { return c.Volume })
}

func (w *Window) column(f func(models.Candle) float64) []float64 {
	out := make([]float64, len(w.candles))
	for i, c := range w.candles {
		out[i] = f(c)
	}
	return out
}
