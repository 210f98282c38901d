package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"BotBourse/internal/domain/models"
	domsvc "BotBourse/internal/domain/service"
	svccache "BotBourse/internal/service/cache"
)

// CacheTTLs controls how long derived views are served from cache
// before being recomputed from the snapshot. The snapshot remains the
// single source of truth; these caches are transparent response caches.
type CacheTTLs struct {
	Sectors   time.Duration
	Watchlist time.Duration
}

// AnalyticsUseCase validates request parameters and invokes the engine
// against the current snapshot.
type AnalyticsUseCase struct {
	snap      *SnapshotService
	screener  domsvc.Screener
	sectors   domsvc.SectorAggregator
	detector  domsvc.RegimeDetector
	portfolio domsvc.PortfolioAggregator

	cache *svccache.TTLCache
	ttl   CacheTTLs
}

func NewAnalyticsUseCase(
	snap *SnapshotService,
	screener domsvc.Screener,
	sectors domsvc.SectorAggregator,
	detector domsvc.RegimeDetector,
	portfolio domsvc.PortfolioAggregator,
	ttl CacheTTLs,
) *AnalyticsUseCase {
	if ttl.Sectors <= 0 {
		ttl.Sectors = 5 * time.Minute
	}
	if ttl.Watchlist <= 0 {
		ttl.Watchlist = 5 * time.Minute
	}
	return &AnalyticsUseCase{
		snap:      snap,
		screener:  screener,
		sectors:   sectors,
		detector:  detector,
		portfolio: portfolio,
		cache:     svccache.NewTTLCache(),
		ttl:       ttl,
	}
}

// Screen translates the request into a filter spec and runs the
// screener. Results are not cached: the filter space is too wide, and a
// single pass over hundreds of records is cheap.
func (uc *AnalyticsUseCase) Screen(_ context.Context, req models.ScreenerRequest) ([]models.InstrumentRecord, error) {
	filter, sortSpec, err := buildFilter(req)
	if err != nil {
		return nil, err
	}
	out := uc.screener.Screen(uc.snap.Current().Records, filter, sortSpec)
	if req.Limit > 0 && len(out) > req.Limit {
		out = out[:req.Limit]
	}
	return out, nil
}

// Sectors returns the per-sector summaries, cached for the configured TTL.
func (uc *AnalyticsUseCase) Sectors(_ context.Context) ([]models.SectorSummary, error) {
	snap := uc.snap.Current()
	key := fmt.Sprintf("sectors:%d", snap.LoadedAt.UnixNano())
	if v, ok := uc.cache.Get(key); ok {
		return v.([]models.SectorSummary), nil
	}
	out := uc.sectors.Summarize(snap.Records)
	uc.cache.Set(key, out, uc.ttl.Sectors)
	return out, nil
}

// Watchlist runs (or serves from cache) the regime detection pass and
// applies the request's signal filter and limit. Entries are ordered
// newest first, ties by ticker.
func (uc *AnalyticsUseCase) Watchlist(_ context.Context, req models.WatchlistRequest) ([]models.WatchlistEntry, error) {
	var filter models.SignalType
	if req.Signal != "" {
		sig, ok := models.ParseSignalType(req.Signal)
		if !ok {
			return nil, fmt.Errorf("unknown signal %q", req.Signal)
		}
		filter = sig
	}

	snap := uc.snap.Current()
	key := fmt.Sprintf("watchlist:%d", snap.LoadedAt.UnixNano())
	entries, ok := uc.cachedEntries(key)
	if !ok {
		entries = uc.detector.DetectAll(snap.Records, snap.Histories)
		sort.SliceStable(entries, func(i, j int) bool {
			if !entries[i].DetectedAt.Equal(entries[j].DetectedAt) {
				return entries[i].DetectedAt.After(entries[j].DetectedAt)
			}
			return entries[i].Ticker < entries[j].Ticker
		})
		uc.cache.Set(key, entries, uc.ttl.Watchlist)
	}

	out := make([]models.WatchlistEntry, 0, len(entries))
	for _, e := range entries {
		if filter != "" && e.Signal != filter {
			continue
		}
		out = append(out, e)
		if req.Limit > 0 && len(out) >= req.Limit {
			break
		}
	}
	return out, nil
}

func (uc *AnalyticsUseCase) cachedEntries(key string) ([]models.WatchlistEntry, bool) {
	if v, ok := uc.cache.Get(key); ok {
		return v.([]models.WatchlistEntry), true
	}
	return nil, false
}

// PortfolioMetrics computes the aggregate report for a user portfolio.
func (uc *AnalyticsUseCase) PortfolioMetrics(_ context.Context, req models.PortfolioMetricsRequest) (models.PortfolioMetrics, error) {
	p := models.Portfolio{Capital: req.Capital, Holdings: req.Holdings}
	return uc.portfolio.Metrics(p, uc.snap.Current().Records)
}

// PortfolioResolve turns target weights into whole-share purchases.
func (uc *AnalyticsUseCase) PortfolioResolve(_ context.Context, req models.PortfolioResolveRequest) (models.ResolutionResult, error) {
	return uc.portfolio.Resolve(req.Capital, req.Allocations, uc.snap.Current().Records)
}

func buildFilter(req models.ScreenerRequest) (models.FilterSpec, models.SortSpec, error) {
	var filter models.FilterSpec

	if req.Sector != "" {
		sec := models.Sector(req.Sector)
		if !models.IsValidSector(sec) {
			return filter, models.SortSpec{}, fmt.Errorf("unknown sector %q", req.Sector)
		}
		filter.Sector = &sec
	}
	if req.Region != "" {
		region := models.Region(req.Region)
		filter.Region = &region
	}
	if req.AssetType != "" {
		at := models.AssetType(req.AssetType)
		filter.AssetType = &at
	}
	filter.Horizon = models.Horizon(req.Horizon)
	if req.Trend != "" {
		trend := models.Trend(req.Trend)
		filter.Trend = &trend
	}
	filter.MinConfidence = req.MinConfidence
	if req.RSIMin != nil || req.RSIMax != nil {
		filter.RSI = &models.Range{Min: req.RSIMin, Max: req.RSIMax}
	}
	if req.VolMax != nil {
		filter.Volatility = &models.Range{Max: req.VolMax}
	}
	filter.RiskMax = req.RiskMax
	filter.Query = req.Query

	key, ok := models.ParseSortKey(req.Sort)
	if !ok {
		key = models.SortConfidence
	}
	return filter, models.SortSpec{Key: key, Desc: req.Order != "asc"}, nil
}
