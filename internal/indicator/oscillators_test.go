package indicator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRSIWarmupIsNeutral(t *testing.T) {
	series := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	out := RSI(series, 14)
	require.Len(t, out, len(series))
	for _, v := range out {
		assert.Equal(t, 50.0, v, "короче периода — везде нейтраль")
	}
}

func TestRSIOnlyGainsStaysNeutral(t *testing.T) {
	// down == 0 → знаменатель нулевой, остаёмся на 50 вместо 100
	series := make([]float64, 30)
	for i := range series {
		series[i] = 100 + float64(i)
	}
	out := RSI(series, 14)
	assert.Equal(t, 50.0, out[len(out)-1])
}

func TestRSIBoundsAndDirection(t *testing.T) {
	up := make([]float64, 40)
	down := make([]float64, 40)
	for i := range up {
		up[i] = 100 + float64(i)*2
		down[i] = 200 - float64(i)*2
		if i%5 == 0 { // небольшие откаты, чтобы обе стороны были ненулевые
			up[i] -= 3
			down[i] += 3
		}
	}
	rsiUp := RSI(up, 14)[39]
	rsiDown := RSI(down, 14)[39]

	assert.Greater(t, rsiUp, 65.0)
	assert.Less(t, rsiDown, 35.0)
	for _, v := range append(RSI(up, 14), RSI(down, 14)...) {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 100.0)
	}
}

func TestMFIWarmupAndBounds(t *testing.T) {
	n := 30
	h, l, c, v := make([]float64, n), make([]float64, n), make([]float64, n), make([]float64, n)
	for i := 0; i < n; i++ {
		base := 100 + float64(i%7) - float64(i%3)
		h[i], l[i], c[i], v[i] = base+1, base-1, base, 1000
	}
	out := MFI(h, l, c, v, 14)
	require.Len(t, out, n)
	for i := 0; i < 13; i++ {
		assert.Equal(t, 50.0, out[i])
	}
	for _, x := range out {
		assert.GreaterOrEqual(t, x, 0.0)
		assert.LessOrEqual(t, x, 100.0)
	}
}

func TestMFIVolumeWeighting(t *testing.T) {
	// одинаковая форма цены, но объём на растущих свечах больше → MFI выше
	n := 30
	h, l, c := make([]float64, n), make([]float64, n), make([]float64, n)
	flat, skewed := make([]float64, n), make([]float64, n)
	price := 100.0
	for i := 0; i < n; i++ {
		if i%2 == 0 {
			price += 1
		} else {
			price -= 0.5
		}
		h[i], l[i], c[i] = price+0.5, price-0.5, price
		flat[i] = 1000
		if i%2 == 0 {
			skewed[i] = 2000
		} else {
			skewed[i] = 500
		}
	}
	base := MFI(h, l, c, flat, 14)[n-1]
	up := MFI(h, l, c, skewed, 14)[n-1]
	assert.Greater(t, up, base)
}

func TestMFIZeroDownIsNeutral(t *testing.T) {
	n := 20
	h, l, c, v := make([]float64, n), make([]float64, n), make([]float64, n), make([]float64, n)
	for i := 0; i < n; i++ {
		base := 100 + float64(i)
		h[i], l[i], c[i], v[i] = base+1, base-1, base, 1000
	}
	out := MFI(h, l, c, v, 14)
	assert.Equal(t, 50.0, out[n-1])
}
