package store

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"

	"signal_bot/internal/models"
	"signal_bot/pkg/logger"
)

const (
	activeFile  = "signals_active.json"
	historyFile = "signals_history.json"
	dailyFile   = "daily_stats.json"
	monthlyFile = "monthly_stats.json"
)

// FileStore — дефолтное хранилище: JSON-файлы в DataDir.
// Один мьютекс на все операции: набор персистится целиком, поэтому
// load-modify-save обязан быть критической секцией.
type FileStore struct {
	mu  sync.Mutex
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create data dir %s", dir)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) Add(_ context.Context, rec models.SignalRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := map[string]models.SignalRecord{}
	s.load(activeFile, &active)
	active[rec.ID] = rec
	return s.save(activeFile, active)
}

func (s *FileStore) Active(_ context.Context) ([]models.SignalRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := map[string]models.SignalRecord{}
	s.load(activeFile, &active)
	out := make([]models.SignalRecord, 0, len(active))
	for _, rec := range active {
		if rec.Status == models.StatusOpen {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *FileStore) CloseSignal(_ context.Context, id string, res CloseResult) (models.SignalRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := map[string]models.SignalRecord{}
	s.load(activeFile, &active)
	rec, ok := active[id]
	if !ok {
		return models.SignalRecord{}, errors.Errorf("signal %s is not active", id)
	}

	entry := applyClose(&rec, res)
	delete(active, id)
	if err := s.save(activeFile, active); err != nil {
		return models.SignalRecord{}, err
	}

	var history []models.HistoryEntry
	s.load(historyFile, &history)
	history = append(history, entry)
	if err := s.save(historyFile, history); err != nil {
		return models.SignalRecord{}, err
	}

	s.bumpStats(dailyFile, dayKey(res.ClosedAt), res.ProfitPct)
	s.bumpStats(monthlyFile, monthKey(res.ClosedAt), res.ProfitPct)
	return rec, nil
}

func (s *FileStore) DailyStats(_ context.Context, day string) (*models.StatsBucket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := map[string]*models.StatsBucket{}
	s.load(dailyFile, &stats)
	return stats[day], nil
}

func (s *FileStore) bumpStats(file, key string, profitPct float64) {
	stats := map[string]*models.StatsBucket{}
	s.load(file, &stats)
	b := stats[key]
	if b == nil {
		b = &models.StatsBucket{}
		stats[key] = b
	}
	b.Record(profitPct)
	if err := s.save(file, stats); err != nil {
		logger.Error("store: save %s: %v", file, err)
	}
}

// load: нечитаемый/битый файл — не фатально, стартуем с пустого состояния.
func (s *FileStore) load(name string, v any) {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Error("store: read %s: %v", name, err)
		}
		return
	}
	if err := sonic.Unmarshal(data, v); err != nil {
		logger.Error("store: corrupt %s, starting empty: %v", name, err)
	}
}

func (s *FileStore) save(name string, v any) error {
	data, err := sonic.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "marshal %s", name)
	}
	path := filepath.Join(s.dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrapf(err, "write %s", name)
	}
	return errors.Wrapf(os.Rename(tmp, path), "rename %s", name)
}
