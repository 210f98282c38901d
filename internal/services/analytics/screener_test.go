package analytics

import (
	"reflect"
	"testing"

	"BotBourse/internal/domain/models"
)

func fp(v float64) *float64 { return &v }

func rec(ticker string, sector models.Sector, opts ...func(*models.InstrumentRecord)) models.InstrumentRecord {
	r := models.InstrumentRecord{
		Ticker:    ticker,
		Name:      ticker + " Inc",
		Sector:    sector,
		Region:    models.RegionUS,
		AssetType: models.AssetStock,
		Price:     100,
		RiskScore: 3,
		Predictions: map[models.Horizon]models.Prediction{
			models.HorizonMedium: {Horizon: models.HorizonMedium, Trend: models.TrendNeutral, Confidence: 0.5, Level: models.ConfidenceMedium},
		},
	}
	for _, o := range opts {
		o(&r)
	}
	return r
}

func withRSI(v float64) func(*models.InstrumentRecord) {
	return func(r *models.InstrumentRecord) { r.Technicals.RSI = fp(v) }
}

func withTrend(h models.Horizon, trend models.Trend, conf float64) func(*models.InstrumentRecord) {
	return func(r *models.InstrumentRecord) {
		if r.Predictions == nil {
			r.Predictions = map[models.Horizon]models.Prediction{}
		}
		r.Predictions[h] = models.Prediction{Horizon: h, Trend: trend, Confidence: conf, Level: models.BucketConfidence(conf)}
	}
}

func TestScreenFilterCorrectness(t *testing.T) {
	tech := models.SectorTechnology
	records := []models.InstrumentRecord{
		rec("AAA", models.SectorTechnology, withRSI(55)),
		rec("BBB", models.SectorFinance, withRSI(60)),
		rec("CCC", models.SectorTechnology, withRSI(80)),
	}
	s := NewScreener()
	out := s.Screen(records, models.FilterSpec{
		Sector: &tech,
		RSI:    &models.Range{Min: fp(50), Max: fp(70)},
	}, models.SortSpec{Key: models.SortTicker})

	if len(out) != 1 || out[0].Ticker != "AAA" {
		t.Fatalf("expected only AAA, got %v", tickers(out))
	}
}

func TestScreenNullFailsRangeFilter(t *testing.T) {
	records := []models.InstrumentRecord{
		rec("HAS", models.SectorTechnology, withRSI(50)),
		rec("NIL", models.SectorTechnology), // rsi unknown
	}
	s := NewScreener()
	// a range that would admit any real value must still exclude nulls
	out := s.Screen(records, models.FilterSpec{
		RSI: &models.Range{Min: fp(0), Max: fp(100)},
	}, models.SortSpec{Key: models.SortTicker})

	if len(out) != 1 || out[0].Ticker != "HAS" {
		t.Fatalf("null RSI must fail the range filter, got %v", tickers(out))
	}
}

func TestScreenTrendAndConfidence(t *testing.T) {
	bullish := models.TrendBullish
	records := []models.InstrumentRecord{
		rec("STR", models.SectorTechnology, withTrend(models.HorizonMedium, models.TrendBullish, 0.8)),
		rec("WEAK", models.SectorTechnology, withTrend(models.HorizonMedium, models.TrendBullish, 0.4)),
		rec("BEAR", models.SectorTechnology, withTrend(models.HorizonMedium, models.TrendBearish, 0.9)),
	}
	s := NewScreener()
	out := s.Screen(records, models.FilterSpec{
		Horizon:       models.HorizonMedium,
		Trend:         &bullish,
		MinConfidence: 0.6,
	}, models.SortSpec{Key: models.SortConfidence, Desc: true})

	if len(out) != 1 || out[0].Ticker != "STR" {
		t.Fatalf("expected only STR, got %v", tickers(out))
	}
}

func TestScreenSubstringMatch(t *testing.T) {
	records := []models.InstrumentRecord{
		rec("AAPL", models.SectorTechnology),
		rec("MSFT", models.SectorTechnology),
	}
	s := NewScreener()
	out := s.Screen(records, models.FilterSpec{Query: "aap"}, models.SortSpec{Key: models.SortTicker})
	if len(out) != 1 || out[0].Ticker != "AAPL" {
		t.Fatalf("case-insensitive substring should match AAPL, got %v", tickers(out))
	}
}

func TestScreenSortStabilityAndTies(t *testing.T) {
	// identical prices: ties must keep input order in both directions
	records := []models.InstrumentRecord{
		rec("X1", models.SectorTechnology),
		rec("X2", models.SectorTechnology),
		rec("X3", models.SectorTechnology),
	}
	s := NewScreener()
	spec := models.SortSpec{Key: models.SortPrice, Desc: true}

	first := s.Screen(records, models.FilterSpec{}, spec)
	second := s.Screen(records, models.FilterSpec{}, spec)
	if !reflect.DeepEqual(tickers(first), tickers(second)) {
		t.Fatalf("same input must sort identically: %v vs %v", tickers(first), tickers(second))
	}
	if got := tickers(first); !reflect.DeepEqual(got, []string{"X1", "X2", "X3"}) {
		t.Fatalf("ties should keep input order, got %v", got)
	}
}

func TestScreenNullSortsAsZero(t *testing.T) {
	records := []models.InstrumentRecord{
		rec("HIGH", models.SectorTechnology, withRSI(80)),
		rec("NONE", models.SectorTechnology),
		rec("LOW", models.SectorTechnology, withRSI(20)),
	}
	s := NewScreener()
	out := s.Screen(records, models.FilterSpec{}, models.SortSpec{Key: models.SortRSI})
	if got := tickers(out); !reflect.DeepEqual(got, []string{"NONE", "LOW", "HIGH"}) {
		t.Fatalf("null RSI should order as 0, got %v", got)
	}
}

func TestScreenEmptyInput(t *testing.T) {
	s := NewScreener()
	out := s.Screen(nil, models.FilterSpec{}, models.SortSpec{})
	if len(out) != 0 {
		t.Fatalf("empty input should yield empty output, got %d", len(out))
	}
}

func tickers(rs []models.InstrumentRecord) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Ticker
	}
	return out
}
