package indicator

import "math"

// TrueRange: max(h-l, |h-prevClose|, |l-prevClose|); для первой свечи
// предыдущего закрытия нет — остаётся h-l.
func TrueRange(high, low, close []float64) []float64 {
	n := len(close)
	tr := make([]float64, n)
	for i := 0; i < n; i++ {
		r := high[i] - low[i]
		if i > 0 {
			r = math.Max(r, math.Abs(high[i]-close[i-1]))
			r = math.Max(r, math.Abs(low[i]-close[i-1]))
		}
		tr[i] = r
	}
	return tr
}

// ATR — скользящее среднее true range за period. Ведущие period-1 позиций
// заполняются первым определённым значением (back-fill, не нулём).
func ATR(high, low, close []float64, period int) []float64 {
	n := len(close)
	out := make([]float64, n)
	if n == 0 || period <= 0 {
		return out
	}
	tr := TrueRange(high, low, close)
	if n < period {
		// окна целиком нет — детектор такие серии и так отбрасывает
		return out
	}
	var sum float64
	for i := 0; i < period; i++ {
		sum += tr[i]
	}
	out[period-1] = sum / float64(period)
	for i := period; i < n; i++ {
		sum += tr[i] - tr[i-period]
		out[i] = sum / float64(period)
	}
	for i := 0; i < period-1; i++ {
		out[i] = out[period-1]
	}
	return out
}
