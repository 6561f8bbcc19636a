package signal

import "time"

// Cooldown подавляет повторные сигналы по одному ключу (символ, таймфрейм)
// внутри окна. Слой над детектором, не часть его контракта: detect остаётся
// чистой функцией окна. Состояние живёт только в процессе.
type Cooldown struct {
	window time.Duration
	now    func() time.Time
	last   map[string]time.Time
}

func NewCooldown(window time.Duration, now func() time.Time) *Cooldown {
	if now == nil {
		now = time.Now
	}
	return &Cooldown{
		window: window,
		now:    now,
		last:   make(map[string]time.Time),
	}
}

// Allow: true — сигнал проходит и время фиксируется; false — ещё рано.
func (c *Cooldown) Allow(symbol, timeframe string) bool {
	key := symbol + "|" + timeframe
	now := c.now()
	if t, ok := c.last[key]; ok && now.Sub(t) < c.window {
		return false
	}
	c.last[key] = now
	return true
}
