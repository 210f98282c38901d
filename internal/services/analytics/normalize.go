package analytics

import (
	"fmt"
	"math"
	"strings"

	"BotBourse/internal/domain/models"
)

// Normalizer is the validation layer between storage rows and the
// canonical snapshot. It nulls out-of-range or non-finite technicals
// instead of zeroing them, and fails the whole batch on a row with a
// missing identity so upstream corruption cannot surface as a
// partially-wrong snapshot.
type Normalizer struct{}

func NewNormalizer() *Normalizer { return &Normalizer{} }

// Normalize converts raw rows into canonical records. Row order is
// preserved.
func (n *Normalizer) Normalize(rows []models.RawRow) ([]models.InstrumentRecord, error) {
	out := make([]models.InstrumentRecord, 0, len(rows))
	for i, row := range rows {
		rec, err := n.normalizeRow(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func (n *Normalizer) normalizeRow(row models.RawRow) (models.InstrumentRecord, error) {
	ticker := strings.ToUpper(strings.TrimSpace(row.Ticker))
	if ticker == "" {
		return models.InstrumentRecord{}, fmt.Errorf("missing ticker")
	}

	rec := models.InstrumentRecord{
		Ticker:    ticker,
		Name:      strings.TrimSpace(row.Name),
		Sector:    models.NormalizeSector(row.Sector),
		Region:    normalizeRegion(row.Region),
		AssetType: normalizeAssetType(row.AssetType),
		AsOf:      row.AsOf,
	}
	if rec.Name == "" {
		rec.Name = ticker
	}

	if isFinite(row.Price) && row.Price > 0 {
		rec.Price = row.Price
	}
	if isFinite(row.ChangePercent) {
		rec.ChangePercent = row.ChangePercent
	}

	rec.Technicals = models.Technicals{
		RSI:           within(row.RSI, 0, 100),
		ADX:           atLeast(row.ADX, 0),
		MACDHistogram: finiteOnly(row.MACDHistogram),
		Volatility20d: atLeast(row.Volatility20d, 0),
		Volatility60d: atLeast(row.Volatility60d, 0),
		Drawdown:      atMost(row.Drawdown, 0),
		Return5d:      finiteOnly(row.Return5d),
		Return20d:     finiteOnly(row.Return20d),
		Return60d:     finiteOnly(row.Return60d),
		VolumeRatio:   atLeast(row.VolumeRatio, 0),
	}

	rec.Predictions = make(map[models.Horizon]models.Prediction, len(row.Predictions))
	for _, rp := range row.Predictions {
		h := models.Horizon(rp.Horizon)
		if !models.IsValidHorizon(h) {
			continue
		}
		conf := clamp01(rp.Confidence)
		er := 0.0
		if isFinite(rp.ExpectedReturn) {
			er = rp.ExpectedReturn
		}
		rec.Predictions[h] = models.Prediction{
			Horizon:        h,
			Trend:          normalizeTrend(rp.Trend),
			ExpectedReturn: er,
			Confidence:     conf,
			Level:          models.BucketConfidence(conf),
		}
	}

	if row.RiskScore >= 1 && row.RiskScore <= 5 {
		rec.RiskScore = row.RiskScore
	} else {
		rec.RiskScore = RiskScoreFromTechnicals(rec.Technicals)
	}
	return rec, nil
}

// RiskScoreFromTechnicals derives the 1..5 asset-level risk score from
// realized volatility and drawdown. The score is horizon-invariant.
func RiskScoreFromTechnicals(t models.Technicals) int {
	score := 1
	if v := avgVol(t); v != nil {
		switch {
		case *v < 0.15:
		case *v < 0.25:
			score++
		case *v < 0.35:
			score += 2
		default:
			score += 3
		}
	}
	if t.Drawdown != nil {
		switch {
		case *t.Drawdown > -0.10:
		case *t.Drawdown > -0.25:
			score++
		default:
			score += 2
		}
	}
	if score > 5 {
		score = 5
	}
	return score
}

func avgVol(t models.Technicals) *float64 {
	switch {
	case t.Volatility20d != nil && t.Volatility60d != nil:
		v := (*t.Volatility20d + *t.Volatility60d) / 2
		return &v
	case t.Volatility20d != nil:
		return t.Volatility20d
	case t.Volatility60d != nil:
		return t.Volatility60d
	}
	return nil
}

func normalizeRegion(s string) models.Region {
	switch models.Region(strings.TrimSpace(s)) {
	case models.RegionUS:
		return models.RegionUS
	case models.RegionEurope:
		return models.RegionEurope
	case models.RegionAsia:
		return models.RegionAsia
	default:
		return models.RegionWorld
	}
}

func normalizeAssetType(s string) models.AssetType {
	if models.AssetType(strings.ToLower(strings.TrimSpace(s))) == models.AssetETF {
		return models.AssetETF
	}
	return models.AssetStock
}

func normalizeTrend(s string) models.Trend {
	switch models.Trend(strings.ToLower(strings.TrimSpace(s))) {
	case models.TrendBullish:
		return models.TrendBullish
	case models.TrendBearish:
		return models.TrendBearish
	default:
		return models.TrendNeutral
	}
}

func isFinite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func finiteOnly(v float64) *float64 {
	if !isFinite(v) {
		return nil
	}
	return &v
}

func within(v, lo, hi float64) *float64 {
	if !isFinite(v) || v < lo || v > hi {
		return nil
	}
	return &v
}

func atLeast(v, lo float64) *float64 {
	if !isFinite(v) || v < lo {
		return nil
	}
	return &v
}

func atMost(v, hi float64) *float64 {
	if !isFinite(v) || v > hi {
		return nil
	}
	return &v
}

func clamp01(v float64) float64 {
	if !isFinite(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
