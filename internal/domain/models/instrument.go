package models

import "time"

// Sector is the closed set of sector labels used across the dashboard.
// Unknown or missing sectors fold into SectorDiversified.
type Sector string

const (
	SectorTechnology    Sector = "Technology"
	SectorConsumer      Sector = "Consumer"
	SectorCommunication Sector = "Communication"
	SectorFinance       Sector = "Finance"
	SectorHealthcare    Sector = "Healthcare"
	SectorEnergy        Sector = "Energy"
	SectorMaterials     Sector = "Materials"
	SectorIndustrials   Sector = "Industrials"
	SectorUtilities     Sector = "Utilities"
	SectorDiversified   Sector = "Diversified"
)

// Sectors lists all valid sectors in display order.
var Sectors = []Sector{
	SectorTechnology, SectorConsumer, SectorCommunication, SectorFinance,
	SectorHealthcare, SectorEnergy, SectorMaterials, SectorIndustrials,
	SectorUtilities, SectorDiversified,
}

// IsValidSector returns true if s is one of the closed sector set.
func IsValidSector(s Sector) bool {
	for _, v := range Sectors {
		if s == v {
			return true
		}
	}
	return false
}

// NormalizeSector folds unknown/empty sectors into the Diversified bucket.
func NormalizeSector(s string) Sector {
	if s == "" {
		return SectorDiversified
	}
	sec := Sector(s)
	if IsValidSector(sec) {
		return sec
	}
	return SectorDiversified
}

// Region is the coarse geographic bucket of an instrument.
type Region string

const (
	RegionUS     Region = "US"
	RegionEurope Region = "Europe"
	RegionWorld  Region = "World"
	RegionAsia   Region = "Asia"
)

// AssetType distinguishes single stocks from ETFs.
type AssetType string

const (
	AssetStock AssetType = "stock"
	AssetETF   AssetType = "etf"
)

// Horizon is a prediction timeframe.
type Horizon string

const (
	HorizonShort  Horizon = "short"  // ~30 days
	HorizonMedium Horizon = "medium" // ~12 months
	HorizonLong   Horizon = "long"   // ~3 years
)

// Horizons lists all prediction horizons.
var Horizons = []Horizon{HorizonShort, HorizonMedium, HorizonLong}

// IsValidHorizon returns true if h is a supported horizon.
func IsValidHorizon(h Horizon) bool {
	return h == HorizonShort || h == HorizonMedium || h == HorizonLong
}

// Trend is the model-assigned direction label for a horizon.
type Trend string

const (
	TrendBullish Trend = "bullish"
	TrendNeutral Trend = "neutral"
	TrendBearish Trend = "bearish"
)

// ConfidenceLevel buckets a raw model confidence in [0,1].
type ConfidenceLevel string

const (
	ConfidenceLow    ConfidenceLevel = "low"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceHigh   ConfidenceLevel = "high"
)

// BucketConfidence maps a raw confidence to its level:
// low < 0.45 <= medium <= 0.65 < high.
func BucketConfidence(c float64) ConfidenceLevel {
	switch {
	case c > 0.65:
		return ConfidenceHigh
	case c >= 0.45:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// Prediction is a model output for one instrument at one horizon.
type Prediction struct {
	Horizon        Horizon         `json:"horizon"`
	Trend          Trend           `json:"trend"`
	ExpectedReturn float64         `json:"expectedReturn"` // fractional
	Confidence     float64         `json:"confidence"`     // [0,1]
	Level          ConfidenceLevel `json:"confidenceLevel"`
}

// Technicals are the nullable indicator values for one instrument.
// A nil pointer means "not computable yet" (insufficient history),
// which is distinct from a real zero.
type Technicals struct {
	RSI           *float64 `json:"rsi"`           // [0,100]
	ADX           *float64 `json:"adx"`           // >= 0
	MACDHistogram *float64 `json:"macdHistogram"` // any real
	Volatility20d *float64 `json:"volatility20d"` // annualized fraction, >= 0
	Volatility60d *float64 `json:"volatility60d"` // annualized fraction, >= 0
	Drawdown      *float64 `json:"drawdown"`      // <= 0
	Return5d      *float64 `json:"return5d"`      // fractional
	Return20d     *float64 `json:"return20d"`     // fractional
	Return60d     *float64 `json:"return60d"`     // fractional
	VolumeRatio   *float64 `json:"volumeRatio"`   // 5d avg vol / 60d avg vol, >= 0
}

// InstrumentRecord is the canonical per-ticker screening row: identity,
// market state, technicals, and per-horizon model outputs. One record per
// ticker per as-of date; the whole set is replaced wholesale when the
// upstream pipeline reruns.
type InstrumentRecord struct {
	Ticker    string    `json:"ticker"`
	Name      string    `json:"name"`
	Sector    Sector    `json:"sector"`
	Region    Region    `json:"region"`
	AssetType AssetType `json:"assetType"`

	Price         float64 `json:"price"`         // > 0, or 0 if unknown
	ChangePercent float64 `json:"changePercent"` // daily change, any real

	Technicals Technicals `json:"technicals"`

	// Predictions keyed by horizon. RiskScore is asset-level: identical
	// across horizons for a given as-of date.
	Predictions map[Horizon]Prediction `json:"predictions"`
	RiskScore   int                    `json:"riskScore"` // 1..5

	AsOf time.Time `json:"asOf"`
}

// Prediction returns the prediction for a horizon, or a neutral
// zero-value prediction if the horizon is missing.
func (r *InstrumentRecord) Prediction(h Horizon) Prediction {
	if p, ok := r.Predictions[h]; ok {
		return p
	}
	return Prediction{Horizon: h, Trend: TrendNeutral, Level: ConfidenceLow}
}

// HasPrice reports whether the market price is known.
func (r *InstrumentRecord) HasPrice() bool { return r.Price > 0 }
