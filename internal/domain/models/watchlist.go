package models

import "time"

// SignalType identifies which detection rule produced a watchlist entry.
// Values are the display labels shown on the dashboard.
type SignalType string

const (
	SignalVolatilityRegime SignalType = "Volatility regime shift"
	SignalTrendReversal    SignalType = "Trend reversal candidate"
	SignalSectorRotation   SignalType = "Sector rotation"
	SignalVolumeAnomaly    SignalType = "Volume anomaly"
	SignalDivergence       SignalType = "Momentum divergence"
	SignalStrongTrend      SignalType = "Strong trend"
)

// ParseSignalType maps a URL-safe slug to its signal type.
func ParseSignalType(slug string) (SignalType, bool) {
	switch slug {
	case "volatility_regime_shift":
		return SignalVolatilityRegime, true
	case "trend_reversal_candidate":
		return SignalTrendReversal, true
	case "sector_rotation":
		return SignalSectorRotation, true
	case "volume_anomaly":
		return SignalVolumeAnomaly, true
	case "momentum_divergence":
		return SignalDivergence, true
	case "strong_trend":
		return SignalStrongTrend, true
	}
	return "", false
}

// Direction is the suggested bias of a watchlist signal. Regime signals
// flag unusual statistical conditions, not predictions; direction is
// informational only.
type Direction string

const (
	DirectionBullish Direction = "bullish"
	DirectionBearish Direction = "bearish"
	DirectionNeutral Direction = "neutral"
)

// WatchlistEntry is one detected regime signal. At most one entry exists
// per (rule, ticker) per detection run, dated to the most recent
// qualifying day.
type WatchlistEntry struct {
	Ticker     string     `json:"ticker"`
	Name       string     `json:"name"`
	Sector     Sector     `json:"sector"`
	Signal     SignalType `json:"signal"`
	Detail     string     `json:"detail"`
	Direction  Direction  `json:"direction"`
	Horizon    Horizon    `json:"horizon"`
	Strength   float64    `json:"strength"` // rule-specific magnitude, >= 0
	DetectedAt time.Time  `json:"detectedAt"`
}
