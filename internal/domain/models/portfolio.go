package models

// Holding is one position in a user portfolio: a ticker and a share
// count. Shares may be zero or fractional on input; resolution to whole
// shares is a separate operation.
type Holding struct {
	Ticker string  `json:"ticker" validate:"required"`
	Shares float64 `json:"shares" validate:"gte=0"`
}

// Portfolio is the user input to the portfolio aggregator.
type Portfolio struct {
	Capital  float64   `json:"capital" validate:"gt=0"`
	Holdings []Holding `json:"holdings" validate:"required,min=1,dive"`
}

// HoldingMetrics is the per-position breakdown in a portfolio report.
type HoldingMetrics struct {
	Ticker        string  `json:"ticker"`
	Name          string  `json:"name"`
	Sector        Sector  `json:"sector"`
	Shares        float64 `json:"shares"`
	Price         float64 `json:"price"`
	Value         float64 `json:"value"`
	Weight        float64 `json:"weight"` // fraction of total capital
	RiskScore     int     `json:"riskScore"`
	ChangePercent float64 `json:"changePercent"`
}

// PortfolioMetrics is the aggregate report. WeightedRisk and the
// per-horizon expected returns re-normalize weights over the invested
// portion only, so cash does not dilute them.
type PortfolioMetrics struct {
	TotalValue    float64 `json:"totalValue"` // invested value
	Cash          float64 `json:"cash"`
	InvestedRatio float64 `json:"investedRatio"`

	WeightedRisk    float64             `json:"weightedRisk"` // 1..5 scale
	ExpectedReturns map[Horizon]float64 `json:"expectedReturns"`

	SectorWeights   map[Sector]float64 `json:"sectorWeights"`   // of invested value
	Diversification int                `json:"diversification"` // 1..10

	Holdings []HoldingMetrics `json:"holdings"`
}

// TargetAllocation is one desired weight in a resolution request.
type TargetAllocation struct {
	Ticker string  `json:"ticker" validate:"required"`
	Weight float64 `json:"weight" validate:"gt=0,lte=1"`
}

// ResolvedAllocation is the whole-share purchase plan for one target.
type ResolvedAllocation struct {
	Ticker       string  `json:"ticker"`
	TargetWeight float64 `json:"targetWeight"`
	Shares       int64   `json:"shares"`
	Price        float64 `json:"price"`
	Cost         float64 `json:"cost"`
	ActualWeight float64 `json:"actualWeight"`
}

// ResolutionResult is a whole resolved plan plus the cash left over.
type ResolutionResult struct {
	Allocations []ResolvedAllocation `json:"allocations"`
	Invested    float64              `json:"invested"`
	Leftover    float64              `json:"leftover"`
}
