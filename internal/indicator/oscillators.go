package indicator

const neutral = 50.0

// RSI — простое скользящее среднее гейнов/лоссов за period (НЕ сглаживание
// Уайлдера — пороги стратегии откалиброваны именно под этот вариант).
// Позиции без полной истории и позиции с нулевым знаменателем дают 50.
func RSI(series []float64, period int) []float64 {
	n := len(series)
	out := make([]float64, n)
	for i := range out {
		out[i] = neutral
	}
	if period <= 0 {
		return out
	}
	// дельты определены с индекса 1, полное окно из period дельт — с индекса period
	for i := period; i < n; i++ {
		var up, down float64
		for j := i - period + 1; j <= i; j++ {
			d := series[j] - series[j-1]
			if d > 0 {
				up += d
			} else {
				down -= d
			}
		}
		up /= float64(period)
		down /= float64(period)
		if down == 0 {
			continue // деление на ноль — оставляем нейтральные 50
		}
		rs := up / down
		out[i] = 100 - 100/(1+rs)
	}
	return out
}

// MFI — объёмно-взвешенный вариант RSI по типичной цене (h+l+c)/3.
// Знак денежного потока определяется направлением типичной цены;
// поток первой свечи не имеет направления и не участвует.
func MFI(high, low, close, volume []float64, period int) []float64 {
	n := len(close)
	out := make([]float64, n)
	for i := range out {
		out[i] = neutral
	}
	if period <= 0 || n == 0 {
		return out
	}
	typical := make([]float64, n)
	for i := 0; i < n; i++ {
		typical[i] = (high[i] + low[i] + close[i]) / 3
	}
	// окно денежных потоков полно с индекса period-1
	for i := period - 1; i < n; i++ {
		var up, down float64
		for j := i - period + 1; j <= i; j++ {
			if j == 0 {
				continue
			}
			flow := typical[j] * volume[j]
			switch {
			case typical[j] > typical[j-1]:
				up += flow
			case typical[j] < typical[j-1]:
				down += flow
			}
		}
		if down == 0 {
			continue
		}
		mfr := up / down
		out[i] = 100 - 100/(1+mfr)
	}
	return out
}
