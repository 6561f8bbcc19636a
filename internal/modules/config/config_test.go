package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "wss://fstream.binance.com", cfg.FeedURL)
	assert.Equal(t, "file", cfg.StoreDriver)
	assert.Equal(t, []string{"1m", "3m", "5m"}, cfg.Timeframes)
	assert.Equal(t, 300, cfg.HistoryLen)
	assert.Equal(t, 20, cfg.ChunkSize)
	assert.Equal(t, 90*time.Second, cfg.Cooldown)
	assert.Equal(t, 8, cfg.EMAFast)
	assert.Equal(t, 200, cfg.EMATrend)
	assert.Equal(t, 0.002, cfg.ATRPctMin)
	assert.Equal(t, 8, cfg.ActiveHourStart)
	assert.Equal(t, 22, cfg.ActiveHourEnd)
	assert.Equal(t, 20*time.Second, cfg.PollInterval)
	assert.Equal(t, time.Hour, cfg.RefreshEvery)
}

func TestNewConfigEnvOverrides(t *testing.T) {
	t.Setenv("TIMEFRAMES", "1m, 15m ,1h")
	t.Setenv("COOLDOWN_SECONDS", "300")
	t.Setenv("EMA_FAST", "12")
	t.Setenv("VOLUME_MULTIPLIER", "2.5")
	t.Setenv("SYMBOL_REFRESH_INTERVAL", "30m")
	t.Setenv("TELEGRAM_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_CHAT_ID", "-100200")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, []string{"1m", "15m", "1h"}, cfg.Timeframes)
	assert.Equal(t, 5*time.Minute, cfg.Cooldown)
	assert.Equal(t, 12, cfg.EMAFast)
	assert.Equal(t, 2.5, cfg.VolumeMult)
	assert.Equal(t, 30*time.Minute, cfg.RefreshEvery)
	assert.Equal(t, "123:abc", cfg.Telegram.Token)
	assert.Equal(t, int64(-100200), cfg.Telegram.ChatID)
}

func TestNewConfigBadEnvFallsBack(t *testing.T) {
	t.Setenv("HISTORY_LEN", "many")
	t.Setenv("SYMBOL_REFRESH_INTERVAL", "soon")
	t.Setenv("TELEGRAM_CHAT_ID", "not-an-id")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, 300, cfg.HistoryLen)
	assert.Equal(t, time.Hour, cfg.RefreshEvery)
	assert.Equal(t, int64(0), cfg.Telegram.ChatID)
}

func TestSplitCSV(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitCSV(" a , b ,"))
	assert.Empty(t, splitCSV(",,"))
}
