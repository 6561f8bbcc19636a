package models

import (
	"fmt"
	"time"
)

type Side string

const (
	SideBuy   Side = "buy"
	SideShort Side = "short"
)

type Status string

const (
	StatusOpen   Status = "OPEN"
	StatusClosed Status = "CLOSED"
)

// CloseReason — чем закрылся сигнал.
type CloseReason string

const (
	CloseTP1 CloseReason = "TP1"
	CloseTP2 CloseReason = "TP2"
	CloseTP3 CloseReason = "TP3"
	CloseSL  CloseReason = "SL"
)

// Verdict — ответ детектора. Не персистится: из него раннер собирает SignalRecord.
type Verdict struct {
	Side       Side
	Price      float64 // last close
	ATR        float64
	ATRPct     float64 // ATR / price
	Volume     float64 // triggering volume
	Confidence int     // [0, 98]
	Reason     string
}

// Targets — три тейка и стоп, посчитанные из ATR.
type Targets struct {
	TP1 float64 `json:"tp1"`
	TP2 float64 `json:"tp2"`
	TP3 float64 `json:"tp3"`
	SL  float64 `json:"sl"`
}

// LeverageRange — рекомендация плеча, например 10x–15x.
type LeverageRange struct {
	Min int
	Max int
}

func (l LeverageRange) String() string {
	return fmt.Sprintf("%dx–%dx", l.Min, l.Max)
}

// SignalRecord — персистируемый сигнал. Создаётся мониторингом,
// статус меняет только трекер (OPEN → CLOSED).
type SignalRecord struct {
	ID         string      `json:"id"` // "{symbol}_{tf}_{unixtime}"
	Symbol     string      `json:"symbol"`
	Timeframe  string      `json:"tf"`
	Side       Side        `json:"side"`
	Entry      float64     `json:"entry"`
	TP1        float64     `json:"tp1"`
	TP2        float64     `json:"tp2"`
	TP3        float64     `json:"tp3"`
	SL         float64     `json:"sl"`
	Confidence int         `json:"confidence"`
	Reason     string      `json:"reason"`
	ATRPct     float64     `json:"atr_pct"`
	Status     Status      `json:"status"`
	CreatedAt  time.Time   `json:"time"`
	ClosedAt   *time.Time  `json:"closed_at,omitempty"`
	ClosedBy   CloseReason `json:"closed_by,omitempty"`
	ClosedPx   float64     `json:"closed_price,omitempty"`
}

// HistoryEntry — строка в истории закрытых сигналов.
type HistoryEntry struct {
	Symbol    string      `json:"symbol"`
	Timeframe string      `json:"timeframe"`
	Side      Side        `json:"side"`
	Entry     float64     `json:"entry"`
	Exit      float64     `json:"exit"`
	Result    CloseReason `json:"result"`
	ProfitPct float64     `json:"profit_percent"`
	Timestamp time.Time   `json:"timestamp"`
}
