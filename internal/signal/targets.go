package signal

import (
	"math"

	"signal_bot/internal/models"
)

// ComputeTargets — tp1/tp2/tp3 = entry ± 0.5/1.0/1.5×ATR, sl = entry ∓ 0.8×ATR.
// Неположительный ATR подменяется флором max(entry×0.001, 1e-6),
// чтобы не получить цели нулевой ширины.
func ComputeTargets(side models.Side, entry, atr float64) models.Targets {
	if atr <= 0 {
		atr = math.Max(entry*0.001, 1e-6)
	}
	if side == models.SideBuy {
		return models.Targets{
			TP1: entry + 0.5*atr,
			TP2: entry + 1.0*atr,
			TP3: entry + 1.5*atr,
			SL:  entry - 0.8*atr,
		}
	}
	return models.Targets{
		TP1: entry - 0.5*atr,
		TP2: entry - 1.0*atr,
		TP3: entry - 1.5*atr,
		SL:  entry + 0.8*atr,
	}
}

// RecommendLeverage — базовый диапазон по уверенности, затем срез
// при высокой волатильности (atrPct — доля цены: 0.005 = 0.5%).
func RecommendLeverage(confidence int, atrPct float64) models.LeverageRange {
	var lo, hi int
	switch {
	case confidence >= 95:
		lo, hi = 30, 50
	case confidence >= 90:
		lo, hi = 20, 25
	case confidence >= 80:
		lo, hi = 10, 15
	default:
		lo, hi = 5, 10
	}

	switch {
	case atrPct > 0.01:
		lo = maxInt(2, lo/2)
		hi = maxInt(5, hi/2)
	case atrPct > 0.005:
		lo = maxInt(3, int(float64(lo)*0.7))
		hi = maxInt(6, int(float64(hi)*0.7))
	}
	return models.LeverageRange{Min: lo, Max: hi}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
