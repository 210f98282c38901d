package analytics

import (
	"sort"
	"strings"

	"BotBourse/internal/domain/models"
	domsvc "BotBourse/internal/domain/service"
)

// Screener applies a filter spec and a sort spec to the snapshot in a
// single filter pass plus one stable sort.
type Screener struct{}

func NewScreener() *Screener { return &Screener{} }

var _ domsvc.Screener = (*Screener)(nil)

// Screen returns the records satisfying every set constraint, ordered
// by the sort spec. Ties keep input order so repeated calls over the
// same snapshot yield identical output.
func (s *Screener) Screen(records []models.InstrumentRecord, filter models.FilterSpec, sortSpec models.SortSpec) []models.InstrumentRecord {
	horizon := filter.Horizon
	if !models.IsValidHorizon(horizon) {
		horizon = models.HorizonMedium
	}

	out := make([]models.InstrumentRecord, 0, len(records))
	for _, r := range records {
		if matches(&r, filter, horizon) {
			out = append(out, r)
		}
	}

	cmp := comparators[sortSpec.Key]
	if cmp == nil {
		cmp = comparators[models.SortConfidence]
	}
	sort.SliceStable(out, func(i, j int) bool {
		if sortSpec.Desc {
			// strict comparison both ways keeps ties in input order
			return cmp(&out[j], &out[i], horizon)
		}
		return cmp(&out[i], &out[j], horizon)
	})
	return out
}

func matches(r *models.InstrumentRecord, f models.FilterSpec, horizon models.Horizon) bool {
	if f.Sector != nil && r.Sector != *f.Sector {
		return false
	}
	if f.Region != nil && r.Region != *f.Region {
		return false
	}
	if f.AssetType != nil && r.AssetType != *f.AssetType {
		return false
	}

	p := r.Prediction(horizon)
	if f.Trend != nil && p.Trend != *f.Trend {
		return false
	}
	if f.MinConfidence > 0 && p.Confidence < f.MinConfidence {
		return false
	}

	if f.RSI != nil && !f.RSI.Contains(r.Technicals.RSI) {
		return false
	}
	if f.Volatility != nil && !f.Volatility.Contains(r.Technicals.Volatility20d) {
		return false
	}
	if f.RiskMax > 0 && r.RiskScore > f.RiskMax {
		return false
	}

	if f.Query != "" {
		q := strings.ToLower(f.Query)
		if !strings.Contains(strings.ToLower(r.Ticker), q) &&
			!strings.Contains(strings.ToLower(r.Name), q) {
			return false
		}
	}
	return true
}

// comparator reports a strict less-than on one sort field. Null
// technicals order as 0; this applies to ordering only, filtering
// handles nulls separately.
type comparator func(a, b *models.InstrumentRecord, h models.Horizon) bool

var comparators = map[models.SortKey]comparator{
	models.SortTicker: func(a, b *models.InstrumentRecord, _ models.Horizon) bool {
		return a.Ticker < b.Ticker
	},
	models.SortName: func(a, b *models.InstrumentRecord, _ models.Horizon) bool {
		return a.Name < b.Name
	},
	models.SortPrice: func(a, b *models.InstrumentRecord, _ models.Horizon) bool {
		return a.Price < b.Price
	},
	models.SortChange: func(a, b *models.InstrumentRecord, _ models.Horizon) bool {
		return a.ChangePercent < b.ChangePercent
	},
	models.SortConfidence: func(a, b *models.InstrumentRecord, h models.Horizon) bool {
		return a.Prediction(h).Confidence < b.Prediction(h).Confidence
	},
	models.SortExpectedReturn: func(a, b *models.InstrumentRecord, h models.Horizon) bool {
		return a.Prediction(h).ExpectedReturn < b.Prediction(h).ExpectedReturn
	},
	models.SortRisk: func(a, b *models.InstrumentRecord, _ models.Horizon) bool {
		return a.RiskScore < b.RiskScore
	},
	models.SortRSI: func(a, b *models.InstrumentRecord, _ models.Horizon) bool {
		return orZero(a.Technicals.RSI) < orZero(b.Technicals.RSI)
	},
	models.SortVolatility: func(a, b *models.InstrumentRecord, _ models.Horizon) bool {
		return orZero(a.Technicals.Volatility20d) < orZero(b.Technicals.Volatility20d)
	},
}

func orZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
