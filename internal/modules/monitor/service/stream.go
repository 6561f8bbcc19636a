package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"

	"signal_bot/internal/models"
	"signal_bot/pkg/logger"
)

const (
	backoffStart = 5 * time.Second
	backoffCap   = 60 * time.Second
)

// klineFrame — кадр combined-стрима Binance Futures.
// Ключи матчатся без учёта регистра, поэтому "E" (event time) и "T"
// (close time) объявлены явно: иначе "E" падает в строковый e, а "T"
// затирает open time.
type klineFrame struct {
	Data struct {
		EventType string `json:"e"`
		EventTime int64  `json:"E"` // unix ms
		Kline     struct {
			OpenTime  int64  `json:"t"`
			CloseTime int64  `json:"T"`
			Symbol    string `json:"s"`
			Interval  string `json:"i"`
			Open      string `json:"o"`
			High      string `json:"h"`
			Low       string `json:"l"`
			Close     string `json:"c"`
			Volume    string `json:"v"`
			Closed    bool   `json:"x"`
		} `json:"k"`
	} `json:"data"`
}

// streamChunk — один WebSocket на чанк символов, все таймфреймы в одном
// combined-стриме. Реконнект с удваивающимся бэкоффом 5s→60s; история
// живёт у воркера, не у соединения, поэтому реконнект её не трогает.
// Незакрытые свечи отфильтровываются здесь же.
func (m *Monitor) streamChunk(ctx context.Context, symbols []string) <-chan models.CandleTick {
	ch := make(chan models.CandleTick)

	go func() {
		defer close(ch)

		streams := make([]string, 0, len(symbols)*len(m.cfg.Timeframes))
		for _, s := range symbols {
			for _, tf := range m.cfg.Timeframes {
				streams = append(streams, strings.ToLower(s)+"@kline_"+tf)
			}
		}
		url := m.cfg.FeedURL + "/stream?streams=" + strings.Join(streams, "/")

		backoff := backoffStart
		for {
			if ctx.Err() != nil {
				return
			}
			logger.Info("[WS] connect: %d symbols, %d streams", len(symbols), len(streams))
			conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
			if err != nil {
				m.metrics.WSReconnects.Inc()
				m.state.SetWSConnected(false)
				logger.Error("[WS] dial: %v (retry in %s)", err, backoff)
				if !sleepCtx(ctx, backoff) {
					return
				}
				backoff = nextBackoff(backoff)
				continue
			}
			m.state.SetWSConnected(true)
			backoff = backoffStart

			for {
				_, msg, err := conn.ReadMessage()
				if err != nil {
					logger.Error("[WS] read: %v", err)
					_ = conn.Close()
					m.metrics.WSReconnects.Inc()
					m.state.SetWSConnected(false)
					break
				}

				tick, ok := parseTick(msg)
				if !ok {
					continue // битый или незакрытый кадр — поток живёт дальше
				}

				select {
				case ch <- tick:
				case <-ctx.Done():
					_ = conn.Close()
					return
				}
			}

			if !sleepCtx(ctx, backoff) {
				return
			}
			backoff = nextBackoff(backoff)
		}
	}()

	return ch
}

// parseTick превращает кадр combined-стрима в закрытую свечу.
// false — кадр не интересен: не kline, свеча не закрыта, цена битая.
func parseTick(msg []byte) (models.CandleTick, bool) {
	var frame klineFrame
	if err := sonic.Unmarshal(msg, &frame); err != nil {
		return models.CandleTick{}, false
	}
	k := frame.Data.Kline
	if frame.Data.EventType != "kline" || !k.Closed {
		return models.CandleTick{}, false
	}

	open, err1 := strconv.ParseFloat(k.Open, 64)
	high, err2 := strconv.ParseFloat(k.High, 64)
	low, err3 := strconv.ParseFloat(k.Low, 64)
	closePx, err4 := strconv.ParseFloat(k.Close, 64)
	vol, err5 := strconv.ParseFloat(k.Volume, 64)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil {
		return models.CandleTick{}, false
	}
	if closePx <= 0 {
		return models.CandleTick{}, false
	}

	eventTime := time.Now().UTC()
	if frame.Data.EventTime > 0 {
		eventTime = time.UnixMilli(frame.Data.EventTime).UTC()
	}

	return models.CandleTick{
		Symbol:    strings.ToUpper(k.Symbol),
		Timeframe: k.Interval,
		Closed:    true,
		EventTime: eventTime,
		Candle: models.Candle{
			OpenTime: k.OpenTime,
			Open:     open,
			High:     high,
			Low:      low,
			Close:    closePx,
			Volume:   vol,
		},
	}, true
}

func nextBackoff(d time.Duration) time.Duration {
	d *= 2
	if d > backoffCap {
		d = backoffCap
	}
	return d
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
