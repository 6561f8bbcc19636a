package models

// StatsBucket — агрегат результатов за день (ключ YYYY-MM-DD)
// или за месяц (ключ YYYY-MM).
type StatsBucket struct {
	Total  int     `json:"total"`
	Wins   int     `json:"wins"`
	Losses int     `json:"losses"`
	PnL    float64 `json:"pnl"` // cumulative profit percent
}

func (b *StatsBucket) Record(profitPct float64) {
	b.Total++
	if profitPct >= 0 {
		b.Wins++
	} else {
		b.Losses++
	}
	b.PnL += profitPct
}

// SymbolList — содержимое symbols.json от коин-менеджера.
type SymbolList struct {
	Symbols   []string `json:"symbols"`
	UpdatedAt string   `json:"updated_at"`
}
