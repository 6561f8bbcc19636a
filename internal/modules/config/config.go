package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

const configFilePathENV = "CONFIG_FILE"

// Config ...
type Config struct {
	Telegram struct {
		Token  string `yaml:"token"`
		ChatID int64  `yaml:"chat_id"`
	} `yaml:"telegram"`

	// Источники данных
	FeedURL string `yaml:"feed_url"` // WS, по умолчанию fstream.binance.com
	RestURL string `yaml:"rest_url"` // REST, по умолчанию fapi.binance.com

	// Хранилище
	DataDir     string `yaml:"data_dir"`
	StoreDriver string `yaml:"store_driver"` // file | postgres
	DB          string `yaml:"db_dsn"`

	// Мониторинг
	Timeframes []string      // TIMEFRAMES, через запятую
	HistoryLen int           // длина окна свечей
	ChunkSize  int           // символов на одно WS-соединение
	MaxSymbols int           // жёсткий потолок вселенной
	Cooldown   time.Duration // COOLDOWN_SECONDS

	// Детектор
	EMAFast         int
	EMAMed          int
	EMALong         int
	EMATrend        int
	RSIPeriod       int
	MFIPeriod       int
	ATRPeriod       int
	VolumeMult      float64
	ATRPctMin       float64
	ActiveHourStart int
	ActiveHourEnd   int

	// Коин-менеджер
	TopVolumeLimit int
	NewListingDays int
	RefreshEvery   time.Duration

	// Трекер
	PollInterval time.Duration // CHECK_PRICE_INTERVAL

	// Сервисное
	HealthAddr string `yaml:"health_addr"`
	JaegerHost string `yaml:"jaeger_host"`
	JaegerPort int    `yaml:"jaeger_port"`
}

func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	config := Config{
		FeedURL:     getenvDefault("BINANCE_FAPI_URL", "wss://fstream.binance.com"),
		RestURL:     getenvDefault("BINANCE_REST_URL", "https://fapi.binance.com"),
		DataDir:     getenvDefault("DATA_DIR", "data"),
		StoreDriver: getenvDefault("STORE_DRIVER", "file"),
		DB:          os.Getenv("DATABASE_DSN"),

		Timeframes: splitCSV(getenvDefault("TIMEFRAMES", "1m,3m,5m")),
		HistoryLen: intFromEnv("HISTORY_LEN", 300),
		ChunkSize:  intFromEnv("CHUNK_SIZE", 20),
		MaxSymbols: intFromEnv("MAX_SYMBOLS", 60),
		Cooldown:   time.Duration(intFromEnv("COOLDOWN_SECONDS", 90)) * time.Second,

		EMAFast:         intFromEnv("EMA_FAST", 8),
		EMAMed:          intFromEnv("EMA_MED", 21),
		EMALong:         intFromEnv("EMA_LONG", 55),
		EMATrend:        intFromEnv("EMA_TREND", 200),
		RSIPeriod:       intFromEnv("RSI_PERIOD", 14),
		MFIPeriod:       intFromEnv("MFI_PERIOD", 14),
		ATRPeriod:       intFromEnv("ATR_PERIOD", 14),
		VolumeMult:      floatFromEnv("VOLUME_MULTIPLIER", 1.5),
		ATRPctMin:       floatFromEnv("ATR_PCT_MIN", 0.002),
		ActiveHourStart: intFromEnv("ACTIVE_HOUR_START", 8),
		ActiveHourEnd:   intFromEnv("ACTIVE_HOUR_END", 22),

		TopVolumeLimit: intFromEnv("TOP_VOLUME_LIMIT", 40),
		NewListingDays: intFromEnv("NEW_LISTING_DAYS", 7),
		RefreshEvery:   durationFromEnv("SYMBOL_REFRESH_INTERVAL", "1h"),

		PollInterval: time.Duration(intFromEnv("CHECK_PRICE_INTERVAL", 20)) * time.Second,

		HealthAddr: getenvDefault("HEALTH_ADDR", ":8080"),
		JaegerHost: os.Getenv("JAEGER_HOST"),
		JaegerPort: intFromEnv("JAEGER_PORT", 6831),
	}

	// yaml-файл опционален: без него живём на env-дефолтах
	if fileName := os.Getenv(configFilePathENV); fileName != "" {
		file, err := os.Open(fileName)
		if err != nil {
			return nil, err
		}
		defer func() {
			_ = file.Close()
		}()
		if err := yaml.NewDecoder(file).Decode(&config); err != nil {
			return nil, err
		}
	}

	if token := os.Getenv("TELEGRAM_TOKEN"); token != "" {
		config.Telegram.Token = token
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			config.Telegram.ChatID = id
		}
	}

	return &config, nil
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func intFromEnv(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func floatFromEnv(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func durationFromEnv(key, def string) time.Duration {
	val := getenvDefault(key, def)
	d, err := time.ParseDuration(val)
	if err != nil {
		d, _ = time.ParseDuration(def)
	}
	return d
}
