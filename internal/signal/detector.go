package signal

import (
	"time"

	"signal_bot/internal/indicator"
	"signal_bot/internal/models"
)

const volLookback = 20

// DetectorConfig — параметры конфлюэнс-правил. Zero value непригоден,
// используй DefaultDetectorConfig.
type DetectorConfig struct {
	EMAFast  int
	EMAMed   int
	EMALong  int
	EMATrend int

	RSIPeriod int
	MFIPeriod int

	VolumeMult float64 // текущий объём против 20-среднего
	ATRPeriod  int
	ATRPctMin  float64 // волатильный флор, доля цены (0.002 = 0.2%)

	ActiveHourStart int // UTC, включительно
	ActiveHourEnd   int // UTC, включительно (22 => до 22:00:00)
}

func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		EMAFast:         8,
		EMAMed:          21,
		EMALong:         55,
		EMATrend:        200,
		RSIPeriod:       14,
		MFIPeriod:       14,
		VolumeMult:      1.5,
		ATRPeriod:       14,
		ATRPctMin:       0.002,
		ActiveHourStart: 8,
		ActiveHourEnd:   22,
	}
}

// minLen: самый длинный EMA-спан доминирует (200), 30 — страховка под паттерны.
func (c DetectorConfig) minLen() int {
	m := c.EMATrend
	for _, v := range []int{c.RSIPeriod, c.MFIPeriod, 30} {
		if v > m {
			m = v
		}
	}
	return m
}

// Detector — чистая функция окна: никакого состояния между вызовами,
// часы инжектятся ради тестируемости тайм-гейта.
type Detector struct {
	cfg DetectorConfig
	now func() time.Time
}

func NewDetector(cfg DetectorConfig, now func() time.Time) *Detector {
	if now == nil {
		now = time.Now
	}
	return &Detector{cfg: cfg, now: now}
}

// Detect оценивает окно и возвращает вердикт либо nil.
// nil — это не ошибка: короткое окно, нерабочие часы, плоский рынок
// и несобравшийся конфлюэнс выглядят одинаково снаружи.
func (d *Detector) Detect(w *Window) *models.Verdict {
	cfg := d.cfg
	if w == nil || w.Len() < cfg.minLen() {
		return nil
	}
	if !d.timeOK() {
		return nil
	}

	closes := w.Closes()
	highs := w.Highs()
	lows := w.Lows()
	vols := w.Volumes()
	n := len(closes)
	price := closes[n-1]

	// волатильный флор: мёртвый рынок не торгуем
	atr := indicator.ATR(highs, lows, closes, cfg.ATRPeriod)
	atrNow := atr[n-1]
	atrPct := 0.0
	if price > 0 {
		atrPct = atrNow / price
	}
	if atrPct < cfg.ATRPctMin {
		return nil
	}

	emaFast := indicator.EMA(closes, cfg.EMAFast)
	emaMed := indicator.EMA(closes, cfg.EMAMed)
	emaLong := indicator.EMA(closes, cfg.EMALong)
	emaTrend := indicator.EMA(closes, cfg.EMATrend)

	crossUp := emaFast[n-2] <= emaMed[n-2] && emaFast[n-1] > emaMed[n-1]
	crossDn := emaFast[n-2] >= emaMed[n-2] && emaFast[n-1] < emaMed[n-1]

	longTrend := crossUp && emaFast[n-1] > emaLong[n-1] && price > emaTrend[n-1]
	shortTrend := crossDn && emaFast[n-1] < emaLong[n-1] && price < emaTrend[n-1]
	if !longTrend && !shortTrend {
		return nil
	}

	rsiNow := indicator.RSI(closes, cfg.RSIPeriod)[n-1]
	mfiNow := indicator.MFI(highs, lows, closes, vols, cfg.MFIPeriod)[n-1]

	volMA := volMean(vols)
	volNow := vols[n-1]
	volBase := volMA
	if volBase <= 0 {
		volBase = 1
	}
	volOK := volNow >= cfg.VolumeMult*volBase

	candles := w.Candles()
	bullEng := indicator.BullishEngulfing(candles)
	bearEng := indicator.BearishEngulfing(candles)
	hammer := indicator.Hammer(candles)
	shoot := indicator.ShootingStar(candles)
	breakout := indicator.Breakout(closes, candles[n-1])

	buy := longTrend && rsiNow > 55 && mfiNow > 55 && volOK && (bullEng || hammer || breakout)
	short := shortTrend && rsiNow < 45 && mfiNow < 45 && volOK && (bearEng || shoot || breakout)

	switch {
	case buy:
		conf := 80
		if bullEng {
			conf += 6
		}
		if volNow > 2*volBase {
			conf += 6
		}
		if rsiNow > 65 && mfiNow > 65 {
			conf += 6
		}
		return d.verdict(models.SideBuy, price, atrNow, atrPct, volNow, conf)
	case short:
		conf := 80
		if bearEng {
			conf += 6
		}
		if volNow > 2*volBase {
			conf += 6
		}
		if rsiNow < 35 && mfiNow < 35 {
			conf += 6
		}
		return d.verdict(models.SideShort, price, atrNow, atrPct, volNow, conf)
	}
	return nil
}

func (d *Detector) verdict(side models.Side, price, atr, atrPct, vol float64, conf int) *models.Verdict {
	if conf > 98 {
		conf = 98
	}
	return &models.Verdict{
		Side:       side,
		Price:      price,
		ATR:        atr,
		ATRPct:     atrPct,
		Volume:     vol,
		Confidence: conf,
		Reason:     "EMA+RSI+MFI+Volume+Candle",
	}
}

// timeOK: активные часы по UTC, обе границы включительно
// (22 пропускает ровно 22:00:00 и ничего после).
func (d *Detector) timeOK() bool {
	now := d.now().UTC()
	sinceMidnight := time.Duration(now.Hour())*time.Hour +
		time.Duration(now.Minute())*time.Minute +
		time.Duration(now.Second())*time.Second +
		time.Duration(now.Nanosecond())
	start := time.Duration(d.cfg.ActiveHourStart) * time.Hour
	end := time.Duration(d.cfg.ActiveHourEnd) * time.Hour
	return sinceMidnight >= start && sinceMidnight <= end
}

// volMean: среднее последних 20 объёмов; если окна нет — среднее всех.
func volMean(vols []float64) float64 {
	n := len(vols)
	if n == 0 {
		return 0
	}
	from := 0
	if n >= volLookback {
		from = n - volLookback
	}
	var sum float64
	for _, v := range vols[from:] {
		sum += v
	}
	return sum / float64(n-from)
}
