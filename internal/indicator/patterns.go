package indicator

import (
	"math"

	"signal_bot/internal/models"
)

func bodySize(c models.Candle) float64 { return math.Abs(c.Close - c.Open) }

func isBullish(c models.Candle) bool { return c.Close > c.Open }
func isBearish(c models.Candle) bool { return c.Close < c.Open }

// BullishEngulfing: предыдущая медвежья, текущая бычья, тело текущей
// ≥ 1.5× тела предыдущей, open ниже прошлого close, close выше прошлого open.
func BullishEngulfing(candles []models.Candle) bool {
	if len(candles) < 2 {
		return false
	}
	a, b := candles[len(candles)-2], candles[len(candles)-1]
	if !isBearish(a) || !isBullish(b) {
		return false
	}
	return bodySize(b) >= 1.5*bodySize(a) && b.Open < a.Close && b.Close > a.Open
}

// BearishEngulfing — зеркальное условие.
func BearishEngulfing(candles []models.Candle) bool {
	if len(candles) < 2 {
		return false
	}
	a, b := candles[len(candles)-2], candles[len(candles)-1]
	if !isBullish(a) || !isBearish(b) {
		return false
	}
	return bodySize(b) >= 1.5*bodySize(a) && b.Open > a.Close && b.Close < a.Open
}

// Hammer: нижняя тень ≥ 2× тела, верхняя тень ≤ тела.
func Hammer(candles []models.Candle) bool {
	if len(candles) < 1 {
		return false
	}
	b := candles[len(candles)-1]
	body := bodySize(b)
	lower := math.Min(b.Open, b.Close) - b.Low
	upper := b.High - math.Max(b.Open, b.Close)
	return lower >= 2*body && upper <= body
}

// ShootingStar: верхняя тень ≥ 2× тела, нижняя тень ≤ тела.
func ShootingStar(candles []models.Candle) bool {
	if len(candles) < 1 {
		return false
	}
	b := candles[len(candles)-1]
	body := bodySize(b)
	upper := b.High - math.Max(b.Open, b.Close)
	lower := math.Min(b.Open, b.Close) - b.Low
	return upper >= 2*body && lower <= body
}

// Breakout: тело последней свечи относительно цены ≥ 1.8× скользящего
// среднего модуля процентного изменения close за 20 свечей.
// Единицы сравнения намеренно такие, какие есть: правка меняет частоту
// сигналов, а пороги стратегии откалиброваны под текущее поведение.
func Breakout(closes []float64, last models.Candle) bool {
	const lookback = 20
	n := len(closes)
	if n <= lookback {
		return false
	}
	var sum float64
	for i := n - lookback; i < n; i++ {
		if closes[i-1] == 0 {
			return false
		}
		sum += math.Abs(closes[i]/closes[i-1] - 1)
	}
	avg := sum / lookback
	if avg <= 0 {
		return false
	}
	price := last.Close
	if price <= 0 {
		return false
	}
	return bodySize(last)/price >= 1.8*avg
}
