package usecase

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"BotBourse/internal/domain/models"
	domrepo "BotBourse/internal/domain/repository"
	"BotBourse/internal/services/analytics"
	pkgcache "BotBourse/pkg/cache"
	applogger "BotBourse/pkg/logger"
)

const refreshLockKey = "snapshot:refresh"

// Snapshot is one immutable materialization of the instrument universe:
// the canonical records plus the daily histories the regime detector
// needs. Readers share it; it is never mutated after the swap.
type Snapshot struct {
	Records   []models.InstrumentRecord
	ByTicker  map[string]int
	Histories map[string]*models.History
	LoadedAt  time.Time
}

// Record returns the record for a ticker, if present.
func (s *Snapshot) Record(ticker string) (*models.InstrumentRecord, bool) {
	if s == nil {
		return nil, false
	}
	i, ok := s.ByTicker[ticker]
	if !ok {
		return nil, false
	}
	return &s.Records[i], true
}

// SnapshotService owns the current snapshot pointer. Refresh loads from
// the market store, runs the normalizer, and swaps the whole snapshot
// atomically so concurrent readers never observe partial state.
type SnapshotService struct {
	store       domrepo.MarketStore
	norm        *analytics.Normalizer
	historyDays int
	l           *applogger.Logger
	lock        pkgcache.Service

	cur atomic.Pointer[Snapshot]
}

func NewSnapshotService(store domrepo.MarketStore, norm *analytics.Normalizer, historyDays int, l *applogger.Logger) *SnapshotService {
	if historyDays <= 0 {
		historyDays = 400
	}
	return &SnapshotService{store: store, norm: norm, historyDays: historyDays, l: l}
}

// SetLock injects a distributed lock so only one replica runs a refresh
// at a time. Without it, refreshes are local-only.
func (s *SnapshotService) SetLock(c pkgcache.Service) { s.lock = c }

// Current returns the latest snapshot, or an empty one before the first
// successful refresh so callers degrade to neutral results.
func (s *SnapshotService) Current() *Snapshot {
	if snap := s.cur.Load(); snap != nil {
		return snap
	}
	return &Snapshot{ByTicker: map[string]int{}}
}

// Refresh re-materializes the snapshot from storage. A normalization
// failure aborts the whole refresh and keeps the previous snapshot in
// place.
func (s *SnapshotService) Refresh(ctx context.Context) error {
	start := time.Now()

	if s.lock != nil {
		ok, err := s.lock.TryLock(ctx, refreshLockKey, 2*time.Minute)
		if err == nil && !ok {
			if s.l != nil {
				s.l.Info("snapshot refresh already in progress elsewhere")
			}
			return nil
		}
		if err == nil {
			defer func() { _ = s.lock.Unlock(ctx, refreshLockKey) }()
		}
		// on lock errors fall through and refresh locally
	}

	rows, err := s.store.GetInstrumentRows(ctx)
	if err != nil {
		return fmt.Errorf("load instrument rows: %w", err)
	}
	records, err := s.norm.Normalize(rows)
	if err != nil {
		return fmt.Errorf("normalize snapshot: %w", err)
	}
	histories, err := s.store.GetHistories(ctx, s.historyDays)
	if err != nil {
		return fmt.Errorf("load histories: %w", err)
	}

	byTicker := make(map[string]int, len(records))
	for i := range records {
		byTicker[records[i].Ticker] = i
	}
	s.cur.Store(&Snapshot{
		Records:   records,
		ByTicker:  byTicker,
		Histories: histories,
		LoadedAt:  time.Now(),
	})

	if s.l != nil {
		s.l.Info("snapshot refreshed",
			applogger.Int("instruments", len(records)),
			applogger.Int("histories", len(histories)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return nil
}
