package service

import (
	"BotBourse/internal/domain/models"
)

// Screener filters and sorts the instrument snapshot. Pure: no side
// effects, deterministic ordering (ties keep input order).
type Screener interface {
	Screen(records []models.InstrumentRecord, filter models.FilterSpec, sort models.SortSpec) []models.InstrumentRecord
}

// SectorAggregator rolls the snapshot up into per-sector summaries.
// Summaries are views over the snapshot and are recomputed wholesale on
// every call.
type SectorAggregator interface {
	Summarize(records []models.InstrumentRecord) []models.SectorSummary
}

// RegimeDetector evaluates the watchlist rule set over the snapshot and
// each ticker's daily history. Each rule emits at most one entry per
// instrument per run.
type RegimeDetector interface {
	DetectAll(records []models.InstrumentRecord, histories map[string]*models.History) []models.WatchlistEntry
}

// PortfolioAggregator computes portfolio metrics and resolves target
// weights into whole-share purchase plans against the snapshot.
type PortfolioAggregator interface {
	Metrics(p models.Portfolio, records []models.InstrumentRecord) (models.PortfolioMetrics, error)
	Resolve(capital float64, targets []models.TargetAllocation, records []models.InstrumentRecord) (models.ResolutionResult, error)
}
