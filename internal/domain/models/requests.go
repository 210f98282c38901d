package models

// Requests for the analytics HTTP endpoints. Defined in domain for
// consistency and reuse.

type ScreenerRequest struct {
	Sector    string `query:"sector" json:"sector" validate:"omitempty"`
	Region    string `query:"region" json:"region" validate:"omitempty,oneof=US Europe World Asia"`
	AssetType string `query:"assetType" json:"assetType" validate:"omitempty,oneof=stock etf"`
	Horizon   string `query:"horizon" json:"horizon" default:"medium" validate:"oneof=short medium long"`
	Trend     string `query:"trend" json:"trend" validate:"omitempty,oneof=bullish neutral bearish"`
	Query     string `query:"q" json:"q" validate:"omitempty,max=64"`

	MinConfidence float64  `query:"minConfidence" json:"minConfidence" validate:"gte=0,lte=1"`
	RSIMin        *float64 `query:"rsiMin" json:"rsiMin" validate:"omitempty,gte=0,lte=100"`
	RSIMax        *float64 `query:"rsiMax" json:"rsiMax" validate:"omitempty,gte=0,lte=100"`
	VolMax        *float64 `query:"volMax" json:"volMax" validate:"omitempty,gte=0"`
	RiskMax       int      `query:"riskMax" json:"riskMax" default:"5" validate:"gte=1,lte=5"`

	Sort  string `query:"sort" json:"sort" default:"confidence" validate:"oneof=ticker name price change confidence expectedReturn risk rsi volatility"`
	Order string `query:"order" json:"order" default:"desc" validate:"oneof=asc desc"`
	Limit int    `query:"limit" json:"limit" default:"100" validate:"gte=1,lte=1000"`
}

type WatchlistRequest struct {
	Signal string `query:"signal" json:"signal" validate:"omitempty,oneof=volatility_regime_shift trend_reversal_candidate sector_rotation volume_anomaly momentum_divergence strong_trend"`
	Limit  int    `query:"limit" json:"limit" default:"50" validate:"gte=1,lte=500"`
}

type PortfolioMetricsRequest struct {
	Capital  float64   `json:"capital" validate:"gt=0"`
	Holdings []Holding `json:"holdings" validate:"required,min=1,max=200,dive"`
}

type PortfolioResolveRequest struct {
	Capital     float64            `json:"capital" validate:"gt=0"`
	Allocations []TargetAllocation `json:"allocations" validate:"required,min=1,max=200,dive"`
}

type CandlesRequest struct {
	Ticker string `query:"ticker" json:"ticker" validate:"required"`
	Days   int    `query:"days" json:"days" default:"180" validate:"gte=1,lte=2000"`
}
