package models

import "time"

// RawRow is one per-ticker feature/prediction row as loaded from
// storage, before validation. Numeric fields use NaN for "not computed".
type RawRow struct {
	Ticker    string
	Name      string
	Sector    string
	Region    string
	AssetType string

	Price         float64
	ChangePercent float64

	RSI           float64
	ADX           float64
	MACDHistogram float64
	Volatility20d float64
	Volatility60d float64
	Drawdown      float64
	Return5d      float64
	Return20d     float64
	Return60d     float64
	VolumeRatio   float64

	Predictions []RawPrediction
	RiskScore   int // 0 means "derive from technicals"

	AsOf time.Time
}

// RawPrediction is one per-horizon model output before validation.
type RawPrediction struct {
	Horizon        string
	Trend          string
	ExpectedReturn float64
	Confidence     float64
}
