package models

import "time"

// Candle — закрытая свеча (kline). Неизменяемая после добавления в окно.
type Candle struct {
	OpenTime int64   `json:"open_time"` // unix ms
	Open     float64 `json:"open"`
	High     float64 `json:"high"`
	Low      float64 `json:"low"`
	Close    float64 `json:"close"`
	Volume   float64 `json:"volume"`
}

// CandleTick — то, что отдаёт WS-стример: свеча + идентификация потока.
type CandleTick struct {
	Symbol    string
	Timeframe string
	Candle    Candle
	Closed    bool
	EventTime time.Time
}
