package models

// Momentum classifies how a sector's recent performance compares to its
// longer-run pace: average 20-day return vs a third of the average
// 60-day return, with a flat band of ±0.005 treated as stable.
type Momentum string

const (
	MomentumAccelerating Momentum = "accelerating"
	MomentumStable       Momentum = "stable"
	MomentumDecelerating Momentum = "decelerating"
)

// PerformerRef points at a member instrument from a sector summary.
type PerformerRef struct {
	Ticker    string  `json:"ticker"`
	Name      string  `json:"name"`
	Return20d float64 `json:"return20d"`
}

// SectorSummary is the per-sector rollup for the dashboard, recomputed
// on every query. Averages skip null technicals; a metric with no
// eligible members reports 0, so Count must be checked before dividing
// anything by membership.
type SectorSummary struct {
	Sector Sector `json:"sector"`
	Count  int    `json:"count"`

	AvgChange     float64 `json:"avgChange"`
	AvgReturn20d  float64 `json:"avgReturn20d"`
	AvgReturn60d  float64 `json:"avgReturn60d"`
	AvgRSI        float64 `json:"avgRsi"`
	AvgVolatility float64 `json:"avgVolatility"`
	AvgRisk       float64 `json:"avgRisk"`

	// Fraction of members whose short-horizon trend is bullish/bearish.
	BullishPct float64 `json:"bullishPct"`
	BearishPct float64 `json:"bearishPct"`

	Momentum Momentum `json:"momentum"`

	TopPerformers   []PerformerRef `json:"topPerformers"`
	WorstPerformers []PerformerRef `json:"worstPerformers"`
}
