// Package indicator — чистые функции над упорядоченными сериями цена/объём.
// Вход: серия oldest..newest, выход: серия той же длины (или bool для паттернов).
// Никакого внутреннего состояния: каждый вызов считает с нуля по текущему окну.
package indicator

// EMA — экспоненциальное среднее с α = 2/(span+1), рекуррентная форма.
// Первое значение сеется первым элементом серии.
func EMA(series []float64, span int) []float64 {
	if len(series) == 0 {
		return nil
	}
	alpha := 2.0 / (float64(span) + 1)
	out := make([]float64, len(series))
	out[0] = series[0]
	for i := 1; i < len(series); i++ {
		out[i] = alpha*series[i] + (1-alpha)*out[i-1]
	}
	return out
}
