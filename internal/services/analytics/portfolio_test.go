package analytics

import (
	"math"
	"testing"

	"BotBourse/internal/domain/models"
)

func withPrice(p float64) func(*models.InstrumentRecord) {
	return func(r *models.InstrumentRecord) { r.Price = p }
}

func withRisk(score int) func(*models.InstrumentRecord) {
	return func(r *models.InstrumentRecord) { r.RiskScore = score }
}

func withRegion(region models.Region) func(*models.InstrumentRecord) {
	return func(r *models.InstrumentRecord) { r.Region = region }
}

func asETF() func(*models.InstrumentRecord) {
	return func(r *models.InstrumentRecord) { r.AssetType = models.AssetETF }
}

func TestMetricsWeightConservation(t *testing.T) {
	records := []models.InstrumentRecord{
		rec("A", models.SectorTechnology, withPrice(100)),
		rec("B", models.SectorFinance, withPrice(40)),
	}
	p := models.Portfolio{
		Capital: 10000,
		Holdings: []models.Holding{
			{Ticker: "A", Shares: 30}, // 3000
			{Ticker: "B", Shares: 50}, // 2000
		},
	}
	a := NewPortfolioAggregator()
	m, err := a.Metrics(p, records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if math.Abs(m.Cash+m.TotalValue-p.Capital) > 1e-9 {
		t.Errorf("cash (%v) + invested (%v) must equal capital", m.Cash, m.TotalValue)
	}
	weightSum := 0.0
	for _, h := range m.Holdings {
		weightSum += h.Weight
	}
	if math.Abs(weightSum+m.Cash/p.Capital-1) > 1e-9 {
		t.Errorf("weights (%v) + cash fraction must equal 1", weightSum)
	}
}

func TestMetricsRenormalizedRisk(t *testing.T) {
	records := []models.InstrumentRecord{
		rec("SAFE", models.SectorUtilities, withPrice(100), withRisk(1)),
		rec("WILD", models.SectorEnergy, withPrice(100), withRisk(5)),
	}
	p := models.Portfolio{
		Capital: 100000, // mostly cash
		Holdings: []models.Holding{
			{Ticker: "SAFE", Shares: 30},
			{Ticker: "WILD", Shares: 10},
		},
	}
	a := NewPortfolioAggregator()
	m, err := a.Metrics(p, records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// invested 4000: SAFE 3/4 at risk 1, WILD 1/4 at risk 5; cash must
	// not dilute the weighting
	if want := 0.75*1 + 0.25*5; math.Abs(m.WeightedRisk-want) > 1e-9 {
		t.Errorf("weighted risk = %v, want %v", m.WeightedRisk, want)
	}
}

func TestMetricsValidation(t *testing.T) {
	records := []models.InstrumentRecord{rec("A", models.SectorTechnology, withPrice(100))}
	a := NewPortfolioAggregator()

	cases := []struct {
		name string
		p    models.Portfolio
	}{
		{"zero capital", models.Portfolio{Capital: 0, Holdings: []models.Holding{{Ticker: "A", Shares: 1}}}},
		{"negative shares", models.Portfolio{Capital: 1000, Holdings: []models.Holding{{Ticker: "A", Shares: -1}}}},
		{"duplicate ticker", models.Portfolio{Capital: 1000, Holdings: []models.Holding{{Ticker: "A", Shares: 1}, {Ticker: "A", Shares: 2}}}},
		{"unknown ticker", models.Portfolio{Capital: 1000, Holdings: []models.Holding{{Ticker: "ZZZ", Shares: 1}}}},
	}
	for _, c := range cases {
		if _, err := a.Metrics(c.p, records); err == nil {
			t.Errorf("%s: expected validation error", c.name)
		}
	}
}

func TestMetricsNothingInvested(t *testing.T) {
	records := []models.InstrumentRecord{rec("A", models.SectorTechnology, withPrice(100))}
	p := models.Portfolio{Capital: 5000, Holdings: []models.Holding{{Ticker: "A", Shares: 0}}}
	a := NewPortfolioAggregator()
	m, err := a.Metrics(p, records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.WeightedRisk != 0 || m.Diversification != 0 {
		t.Errorf("uninvested portfolio should report neutral risk/diversification, got %v/%v", m.WeightedRisk, m.Diversification)
	}
	if m.Cash != 5000 {
		t.Errorf("cash = %v, want full capital", m.Cash)
	}
}

func TestDiversificationSingleSector(t *testing.T) {
	records := []models.InstrumentRecord{rec("ONLY", models.SectorTechnology, withPrice(100))}
	p := models.Portfolio{Capital: 10000, Holdings: []models.Holding{{Ticker: "ONLY", Shares: 50}}}
	a := NewPortfolioAggregator()
	m, err := a.Metrics(p, records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 5 - 2 (single sector) - 1 (concentration) = 2
	if m.Diversification > 4 {
		t.Errorf("single-sector portfolio scored %d, want <= 4", m.Diversification)
	}
	if m.Diversification < 1 {
		t.Errorf("score %d below the 1..10 floor", m.Diversification)
	}
}

func TestDiversificationBroadPortfolio(t *testing.T) {
	records := []models.InstrumentRecord{
		rec("T", models.SectorTechnology, withPrice(10)),
		rec("F", models.SectorFinance, withPrice(10)),
		rec("H", models.SectorHealthcare, withPrice(10)),
		rec("E", models.SectorEnergy, withPrice(10)),
		rec("U", models.SectorUtilities, withPrice(10), withRegion(models.RegionEurope)),
		rec("W", models.SectorDiversified, withPrice(10), asETF()),
	}
	holdings := make([]models.Holding, 0, len(records))
	for _, r := range records {
		holdings = append(holdings, models.Holding{Ticker: r.Ticker, Shares: 100})
	}
	p := models.Portfolio{Capital: 6000, Holdings: holdings}

	a := NewPortfolioAggregator()
	m, err := a.Metrics(p, records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 5 + 2 (6 sectors) + 1 (max weight < 0.25) + 1 (ETF sleeve) + 1 (2 regions) = 10
	if m.Diversification < 9 {
		t.Errorf("broad portfolio scored %d, want >= 9", m.Diversification)
	}
	if m.Diversification > 10 {
		t.Errorf("score %d above the 1..10 cap", m.Diversification)
	}
}

func TestResolveFloorsShares(t *testing.T) {
	records := []models.InstrumentRecord{rec("A", models.SectorTechnology, withPrice(333))}
	a := NewPortfolioAggregator()
	res, err := a.Resolve(10000, []models.TargetAllocation{{Ticker: "A", Weight: 0.5}}, records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	alloc := res.Allocations[0]
	// 5000 / 333 = 15.01 -> 15 whole shares
	if alloc.Shares != 15 {
		t.Errorf("shares = %d, want 15", alloc.Shares)
	}
	if math.Abs(res.Leftover-(10000-15*333)) > 1e-9 {
		t.Errorf("leftover = %v, want %v", res.Leftover, 10000-15*333.0)
	}
	if alloc.ActualWeight > alloc.TargetWeight {
		t.Errorf("floored allocation cannot exceed the target weight")
	}
}

func TestResolveRejectsBadInput(t *testing.T) {
	records := []models.InstrumentRecord{
		rec("A", models.SectorTechnology, withPrice(100)),
		rec("NOPRICE", models.SectorTechnology, withPrice(0)),
	}
	a := NewPortfolioAggregator()

	if _, err := a.Resolve(0, []models.TargetAllocation{{Ticker: "A", Weight: 0.5}}, records); err == nil {
		t.Error("zero capital should be rejected")
	}
	if _, err := a.Resolve(1000, []models.TargetAllocation{{Ticker: "A", Weight: 0.6}, {Ticker: "A", Weight: 0.2}}, records); err == nil {
		t.Error("duplicate tickers should be rejected")
	}
	if _, err := a.Resolve(1000, []models.TargetAllocation{{Ticker: "A", Weight: 0.6}, {Ticker: "ZZZ", Weight: 0.2}}, records); err == nil {
		t.Error("unknown ticker should be rejected")
	}
	if _, err := a.Resolve(1000, []models.TargetAllocation{{Ticker: "NOPRICE", Weight: 0.5}}, records); err == nil {
		t.Error("unknown price should be rejected")
	}
	if _, err := a.Resolve(1000, []models.TargetAllocation{{Ticker: "A", Weight: 1.2}}, records); err == nil {
		t.Error("weights above 1 should be rejected")
	}
}
