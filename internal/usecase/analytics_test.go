package usecase

import (
	"context"
	"testing"
	"time"

	"BotBourse/internal/domain/models"
	"BotBourse/internal/services/analytics"
)

type countingDetector struct {
	calls   int
	entries []models.WatchlistEntry
}

func (d *countingDetector) DetectAll(records []models.InstrumentRecord, histories map[string]*models.History) []models.WatchlistEntry {
	d.calls++
	return d.entries
}

type countingSectors struct {
	calls int
}

func (s *countingSectors) Summarize(records []models.InstrumentRecord) []models.SectorSummary {
	s.calls++
	return analytics.NewSectorAggregator().Summarize(records)
}

func seededSnapshot(t *testing.T, rows ...models.RawRow) *SnapshotService {
	t.Helper()
	store := &fakeMarketStore{rows: rows}
	svc := NewSnapshotService(store, analytics.NewNormalizer(), 400, nil)
	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("seed refresh: %v", err)
	}
	return svc
}

func newUseCase(t *testing.T, snap *SnapshotService, det *countingDetector, sec *countingSectors) *AnalyticsUseCase {
	t.Helper()
	if det == nil {
		det = &countingDetector{}
	}
	if sec == nil {
		sec = &countingSectors{}
	}
	return NewAnalyticsUseCase(
		snap,
		analytics.NewScreener(),
		sec,
		det,
		analytics.NewPortfolioAggregator(),
		CacheTTLs{},
	)
}

func TestScreenAppliesLimit(t *testing.T) {
	snap := seededSnapshot(t,
		rawRow("AAPL", "Technology"), rawRow("MSFT", "Technology"), rawRow("XOM", "Energy"))
	uc := newUseCase(t, snap, nil, nil)

	out, err := uc.Screen(context.Background(), models.ScreenerRequest{Horizon: "medium", Limit: 2})
	if err != nil {
		t.Fatalf("screen: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 results, got %d", len(out))
	}
}

func TestScreenRejectsUnknownSector(t *testing.T) {
	snap := seededSnapshot(t, rawRow("AAPL", "Technology"))
	uc := newUseCase(t, snap, nil, nil)

	if _, err := uc.Screen(context.Background(), models.ScreenerRequest{Sector: "Crypto", Horizon: "medium"}); err == nil {
		t.Fatalf("expected unknown sector error")
	}
}

func TestWatchlistRejectsUnknownSignal(t *testing.T) {
	snap := seededSnapshot(t, rawRow("AAPL", "Technology"))
	uc := newUseCase(t, snap, nil, nil)

	if _, err := uc.Watchlist(context.Background(), models.WatchlistRequest{Signal: "nope"}); err == nil {
		t.Fatalf("expected unknown signal error")
	}
}

func TestWatchlistDetectionCachedPerSnapshot(t *testing.T) {
	snap := seededSnapshot(t, rawRow("AAPL", "Technology"), rawRow("XOM", "Energy"))
	det := &countingDetector{entries: []models.WatchlistEntry{
		{Ticker: "AAPL", Signal: models.SignalVolumeAnomaly, DetectedAt: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)},
		{Ticker: "XOM", Signal: models.SignalStrongTrend, DetectedAt: time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)},
	}}
	uc := newUseCase(t, snap, det, nil)

	first, err := uc.Watchlist(context.Background(), models.WatchlistRequest{})
	if err != nil {
		t.Fatalf("watchlist: %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(first))
	}
	if first[0].Ticker != "XOM" {
		t.Errorf("expected newest entry first, got %s", first[0].Ticker)
	}

	if _, err := uc.Watchlist(context.Background(), models.WatchlistRequest{}); err != nil {
		t.Fatalf("watchlist second call: %v", err)
	}
	if det.calls != 1 {
		t.Errorf("expected 1 detection run, got %d", det.calls)
	}

	filtered, err := uc.Watchlist(context.Background(), models.WatchlistRequest{Signal: "volume_anomaly"})
	if err != nil {
		t.Fatalf("watchlist filtered: %v", err)
	}
	if len(filtered) != 1 || filtered[0].Ticker != "AAPL" {
		t.Errorf("filter by slug failed: %+v", filtered)
	}
}

func TestSectorsCachedPerSnapshot(t *testing.T) {
	snap := seededSnapshot(t, rawRow("AAPL", "Technology"), rawRow("XOM", "Energy"))
	sec := &countingSectors{}
	uc := newUseCase(t, snap, nil, sec)

	first, err := uc.Sectors(context.Background())
	if err != nil {
		t.Fatalf("sectors: %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("expected 2 sector summaries, got %d", len(first))
	}
	if _, err := uc.Sectors(context.Background()); err != nil {
		t.Fatalf("sectors second call: %v", err)
	}
	if sec.calls != 1 {
		t.Errorf("expected 1 aggregation, got %d", sec.calls)
	}
}

func TestPortfolioMetricsThroughSnapshot(t *testing.T) {
	snap := seededSnapshot(t, rawRow("AAPL", "Technology"))
	uc := newUseCase(t, snap, nil, nil)

	res, err := uc.PortfolioMetrics(context.Background(), models.PortfolioMetricsRequest{
		Capital:  1000,
		Holdings: []models.Holding{{Ticker: "AAPL", Shares: 5}},
	})
	if err != nil {
		t.Fatalf("portfolio metrics: %v", err)
	}
	if res.TotalValue != 500 {
		t.Errorf("total value = %v, want 500", res.TotalValue)
	}
}
