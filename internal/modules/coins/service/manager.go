package service

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"

	"signal_bot/internal/exchange"
	"signal_bot/internal/models"
	"signal_bot/internal/modules/config"
	"signal_bot/pkg/logger"
)

const (
	knownFile   = "known_symbols.json"
	symbolsFile = "symbols.json"
)

// Whitelist — всегда в мониторинге, независимо от объёмов.
var Whitelist = []string{
	"BTCUSDT", "ETHUSDT", "BNBUSDT", "SOLUSDT", "XRPUSDT",
	"DOGEUSDT", "ADAUSDT", "TONUSDT", "LINKUSDT", "AVAXUSDT",
}

// Manager обновляет вселенную символов: whitelist + новые листинги
// за окно в днях + топ по 24h-объёму, всё с дедупликацией и потолком.
type Manager struct {
	cfg  *config.Config
	rest *exchange.Client
}

func NewManager(cfg *config.Config, rest *exchange.Client) *Manager {
	return &Manager{cfg: cfg, rest: rest}
}

// Symbols — текущий список для мониторинга. Нет файла — whitelist.
func (m *Manager) Symbols() []string {
	var list models.SymbolList
	data, err := os.ReadFile(filepath.Join(m.cfg.DataDir, symbolsFile))
	if err == nil {
		_ = sonic.Unmarshal(data, &list)
	}
	syms := list.Symbols
	if len(syms) == 0 {
		syms = append([]string(nil), Whitelist...)
	}
	if len(syms) > m.cfg.MaxSymbols {
		syms = syms[:m.cfg.MaxSymbols]
	}
	return syms
}

// RunLoop — периодический рефреш; ошибка одного прохода не фатальна,
// предыдущий список остаётся в силе.
func (m *Manager) RunLoop(ctx context.Context) {
	if err := m.Refresh(ctx); err != nil {
		logger.Error("coins: первый рефреш не удался: %v", err)
	}
	ticker := time.NewTicker(m.cfg.RefreshEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := m.Refresh(ctx); err != nil {
				logger.Error("coins: рефреш не удался: %v", err)
			}
		}
	}
}

func (m *Manager) Refresh(ctx context.Context) error {
	now := time.Now().UTC()

	all, err := m.rest.AllUSDTSymbols(ctx)
	if err != nil {
		return errors.Wrap(err, "fetch futures symbols")
	}

	known := m.loadKnown()
	for _, s := range all {
		if _, ok := known[s]; !ok {
			known[s] = now.Format(time.RFC3339)
		}
	}
	if err := m.saveJSON(knownFile, known); err != nil {
		logger.Error("coins: save known: %v", err)
	}

	// новые листинги за окно
	cutoff := now.AddDate(0, 0, -m.cfg.NewListingDays)
	var newListing []string
	for s, iso := range known {
		if t, err := time.Parse(time.RFC3339, iso); err == nil && !t.Before(cutoff) {
			newListing = append(newListing, s)
		}
	}

	top, err := m.rest.TopVolume(ctx, m.cfg.TopVolumeLimit)
	if err != nil {
		return errors.Wrap(err, "fetch top volume")
	}

	combined := dedupe(Whitelist, newListing, top)
	if len(combined) > m.cfg.MaxSymbols {
		combined = combined[:m.cfg.MaxSymbols]
	}
	list := models.SymbolList{Symbols: combined, UpdatedAt: now.Format(time.RFC3339)}
	if err := m.saveJSON(symbolsFile, list); err != nil {
		return errors.Wrap(err, "save symbols")
	}

	logger.Info("✅ coins: обновлено %d символов (top=%d, new=%d, whitelist=%d)",
		len(combined), len(top), len(newListing), len(Whitelist))
	return nil
}

func (m *Manager) loadKnown() map[string]string {
	known := map[string]string{}
	data, err := os.ReadFile(filepath.Join(m.cfg.DataDir, knownFile))
	if err == nil {
		_ = sonic.Unmarshal(data, &known)
	}
	return known
}

func (m *Manager) saveJSON(name string, v any) error {
	if err := os.MkdirAll(m.cfg.DataDir, 0o755); err != nil {
		return err
	}
	data, err := sonic.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(m.cfg.DataDir, name), data, 0o644)
}

// dedupe сохраняет порядок: whitelist впереди, затем новые, затем топ.
func dedupe(lists ...[]string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, list := range lists {
		for _, s := range list {
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}
