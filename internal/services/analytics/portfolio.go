package analytics

import (
	"fmt"
	"math"

	"BotBourse/internal/domain/models"
	domsvc "BotBourse/internal/domain/service"
)

// PortfolioAggregator computes weights, risk, expected return, and the
// diversification heuristic for a user portfolio. Pure function of the
// portfolio and the snapshot; recomputed on every holdings change.
type PortfolioAggregator struct{}

func NewPortfolioAggregator() *PortfolioAggregator { return &PortfolioAggregator{} }

var _ domsvc.PortfolioAggregator = (*PortfolioAggregator)(nil)

// Metrics validates the portfolio and computes the aggregate report.
// Per-holding weight is relative to total capital so cash stays a
// visible allocation; risk and expected return re-normalize over the
// invested portion only.
func (a *PortfolioAggregator) Metrics(p models.Portfolio, records []models.InstrumentRecord) (models.PortfolioMetrics, error) {
	index, err := validateHoldings(p, records)
	if err != nil {
		return models.PortfolioMetrics{}, err
	}

	var invested float64
	holdings := make([]models.HoldingMetrics, 0, len(p.Holdings))
	for _, h := range p.Holdings {
		rec := index[h.Ticker]
		value := h.Shares * rec.Price
		invested += value
		holdings = append(holdings, models.HoldingMetrics{
			Ticker:        rec.Ticker,
			Name:          rec.Name,
			Sector:        rec.Sector,
			Shares:        h.Shares,
			Price:         rec.Price,
			Value:         value,
			Weight:        value / p.Capital,
			RiskScore:     rec.RiskScore,
			ChangePercent: rec.ChangePercent,
		})
	}

	m := models.PortfolioMetrics{
		TotalValue:    invested,
		Cash:          math.Max(0, p.Capital-invested),
		InvestedRatio: invested / p.Capital,
		Holdings:      holdings,
	}
	if invested <= 0 {
		// nothing invested: risk and diversification stay undefined
		m.ExpectedReturns = map[models.Horizon]float64{}
		m.SectorWeights = map[models.Sector]float64{}
		return m, nil
	}

	m.ExpectedReturns = make(map[models.Horizon]float64, len(models.Horizons))
	m.SectorWeights = make(map[models.Sector]float64)
	sectors := make(map[models.Sector]bool)
	regions := make(map[models.Region]bool)
	etfWeight := 0.0

	for i, h := range p.Holdings {
		rec := index[h.Ticker]
		rel := holdings[i].Value / invested

		m.WeightedRisk += float64(rec.RiskScore) * rel
		for _, horizon := range models.Horizons {
			m.ExpectedReturns[horizon] += rec.Prediction(horizon).ExpectedReturn * rel
		}
		m.SectorWeights[rec.Sector] += rel
		sectors[rec.Sector] = true
		regions[rec.Region] = true
		if rec.AssetType == models.AssetETF {
			etfWeight += rel
		}
	}

	m.Diversification = diversificationScore(m.SectorWeights, len(sectors), len(regions), etfWeight)
	return m, nil
}

// Resolve turns target weights into whole-share purchase counts via
// floor division. Fractional and negative share counts never occur.
func (a *PortfolioAggregator) Resolve(capital float64, targets []models.TargetAllocation, records []models.InstrumentRecord) (models.ResolutionResult, error) {
	if capital <= 0 {
		return models.ResolutionResult{}, fmt.Errorf("capital must be positive")
	}
	index := indexByTicker(records)

	seen := make(map[string]bool, len(targets))
	totalWeight := 0.0
	for _, t := range targets {
		if seen[t.Ticker] {
			return models.ResolutionResult{}, fmt.Errorf("duplicate ticker %q", t.Ticker)
		}
		seen[t.Ticker] = true
		if t.Weight <= 0 {
			return models.ResolutionResult{}, fmt.Errorf("ticker %q: target weight must be positive", t.Ticker)
		}
		totalWeight += t.Weight
	}
	if totalWeight > 1+1e-9 {
		return models.ResolutionResult{}, fmt.Errorf("target weights sum to %.4f, exceeding capital", totalWeight)
	}

	res := models.ResolutionResult{Allocations: make([]models.ResolvedAllocation, 0, len(targets))}
	for _, t := range targets {
		rec, ok := index[t.Ticker]
		if !ok {
			return models.ResolutionResult{}, fmt.Errorf("unknown ticker %q", t.Ticker)
		}
		if !rec.HasPrice() {
			return models.ResolutionResult{}, fmt.Errorf("ticker %q: price unavailable", t.Ticker)
		}
		shares := int64(math.Floor(capital * t.Weight / rec.Price))
		cost := float64(shares) * rec.Price
		res.Invested += cost
		res.Allocations = append(res.Allocations, models.ResolvedAllocation{
			Ticker:       rec.Ticker,
			TargetWeight: t.Weight,
			Shares:       shares,
			Price:        rec.Price,
			Cost:         cost,
			ActualWeight: cost / capital,
		})
	}
	res.Leftover = capital - res.Invested
	return res, nil
}

// diversificationScore is the 1..10 concentration heuristic: start at
// 5, reward sector breadth, multiple regions and an ETF sleeve,
// penalize single-sector concentration.
func diversificationScore(sectorWeights map[models.Sector]float64, sectorCount, regionCount int, etfWeight float64) int {
	score := 5
	if sectorCount >= 5 {
		score += 2
	}
	if sectorCount == 1 {
		score -= 2
	}

	maxSector := 0.0
	for _, w := range sectorWeights {
		if w > maxSector {
			maxSector = w
		}
	}
	if maxSector > 0.5 {
		score--
	}
	if maxSector < 0.25 {
		score++
	}
	if etfWeight > 0.10 {
		score++
	}
	if regionCount > 1 {
		score++
	}

	if score < 1 {
		score = 1
	}
	if score > 10 {
		score = 10
	}
	return score
}

func validateHoldings(p models.Portfolio, records []models.InstrumentRecord) (map[string]*models.InstrumentRecord, error) {
	if p.Capital <= 0 {
		return nil, fmt.Errorf("capital must be positive")
	}
	index := indexByTicker(records)
	seen := make(map[string]bool, len(p.Holdings))
	for _, h := range p.Holdings {
		if h.Shares < 0 {
			return nil, fmt.Errorf("ticker %q: negative shares", h.Ticker)
		}
		if seen[h.Ticker] {
			return nil, fmt.Errorf("duplicate ticker %q", h.Ticker)
		}
		seen[h.Ticker] = true
		if _, ok := index[h.Ticker]; !ok {
			return nil, fmt.Errorf("unknown ticker %q", h.Ticker)
		}
	}
	return index, nil
}

func indexByTicker(records []models.InstrumentRecord) map[string]*models.InstrumentRecord {
	index := make(map[string]*models.InstrumentRecord, len(records))
	for i := range records {
		index[records[i].Ticker] = &records[i]
	}
	return index
}
