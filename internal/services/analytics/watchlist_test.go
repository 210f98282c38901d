package analytics

import (
	"math"
	"testing"
	"time"

	"BotBourse/internal/domain/models"
	"BotBourse/internal/services/features"
)

func newDetector() *RegimeDetector {
	return NewRegimeDetector(DefaultThresholds(), features.DefaultGarchParams())
}

func withVolumeRatio(v float64) func(*models.InstrumentRecord) {
	return func(r *models.InstrumentRecord) { r.Technicals.VolumeRatio = fp(v) }
}

func findSignal(entries []models.WatchlistEntry, ticker string, sig models.SignalType) *models.WatchlistEntry {
	for i := range entries {
		if entries[i].Ticker == ticker && entries[i].Signal == sig {
			return &entries[i]
		}
	}
	return nil
}

func TestVolumeAnomalyThreshold(t *testing.T) {
	d := newDetector()
	records := []models.InstrumentRecord{
		rec("SPIKE", models.SectorTechnology, withVolumeRatio(3.5)),
		rec("CALM", models.SectorTechnology, withVolumeRatio(2.9)),
	}
	entries := d.DetectAll(records, nil)

	if findSignal(entries, "SPIKE", models.SignalVolumeAnomaly) == nil {
		t.Error("5d volume at 3.5x the 60d average must fire the volume anomaly")
	}
	if findSignal(entries, "CALM", models.SignalVolumeAnomaly) != nil {
		t.Error("a 2.9x ratio must not fire the volume anomaly")
	}
}

func TestVolumeAnomalyOncePerRun(t *testing.T) {
	d := newDetector()
	records := []models.InstrumentRecord{rec("SPIKE", models.SectorTechnology, withVolumeRatio(4.0))}
	entries := d.DetectAll(records, nil)
	count := 0
	for _, e := range entries {
		if e.Signal == models.SignalVolumeAnomaly {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("volume anomaly fired %d times, want exactly 1", count)
	}
}

func TestVolatilityRegimeShift(t *testing.T) {
	// calm daily noise followed by two large shocks at the end
	closes := make([]float64, 0, 90)
	price := 100.0
	closes = append(closes, price)
	for i := 0; i < 86; i++ {
		step := 0.001
		if i%2 == 0 {
			step = -0.001
		}
		price *= math.Exp(step)
		closes = append(closes, price)
	}
	price *= math.Exp(0.08)
	closes = append(closes, price)
	price *= math.Exp(-0.08)
	closes = append(closes, price)

	hist := &models.History{Ticker: "SHOCK", Candles: candles("SHOCK", closes)}
	records := []models.InstrumentRecord{rec("SHOCK", models.SectorEnergy)}

	d := newDetector()
	entries := d.DetectAll(records, map[string]*models.History{"SHOCK": hist})
	e := findSignal(entries, "SHOCK", models.SignalVolatilityRegime)
	if e == nil {
		t.Fatal("conditional variance spike should fire the volatility regime rule")
	}
	if e.Strength <= DefaultVarianceRatio {
		t.Errorf("strength %v should exceed the %v threshold", e.Strength, DefaultVarianceRatio)
	}
}

func TestVolatilityRegimeQuietSeries(t *testing.T) {
	closes := make([]float64, 0, 90)
	price := 100.0
	for i := 0; i < 90; i++ {
		step := 0.001
		if i%2 == 0 {
			step = -0.001
		}
		price *= math.Exp(step)
		closes = append(closes, price)
	}
	hist := &models.History{Ticker: "QUIET", Candles: candles("QUIET", closes)}
	records := []models.InstrumentRecord{rec("QUIET", models.SectorEnergy)}

	d := newDetector()
	entries := d.DetectAll(records, map[string]*models.History{"QUIET": hist})
	if findSignal(entries, "QUIET", models.SignalVolatilityRegime) != nil {
		t.Error("steady variance must not fire the volatility regime rule")
	}
}

func TestTrendReversalCross(t *testing.T) {
	// flat at 100 long enough to anchor the 200d average, then a jump
	// through it on the final day
	closes := make([]float64, 260)
	for i := range closes {
		closes[i] = 100
	}
	closes[len(closes)-1] = 105

	hist := &models.History{Ticker: "CROSS", Candles: candles("CROSS", closes)}
	records := []models.InstrumentRecord{rec("CROSS", models.SectorFinance)}

	d := newDetector()
	entries := d.DetectAll(records, map[string]*models.History{"CROSS": hist})
	e := findSignal(entries, "CROSS", models.SignalTrendReversal)
	if e == nil {
		t.Fatal("cross above the 200d average with extreme RSI should fire")
	}
	if e.Direction != models.DirectionBullish {
		t.Errorf("upward cross should be bullish, got %v", e.Direction)
	}
	if want := hist.Candles[len(hist.Candles)-1].Date; !e.DetectedAt.Equal(want) {
		t.Errorf("entry should carry the crossing day, got %v want %v", e.DetectedAt, want)
	}
}

func TestSectorRotationDivergence(t *testing.T) {
	// seven sectors near zero, one far out: the outlier exceeds 2 sigma
	records := []models.InstrumentRecord{
		rec("T1", models.SectorTechnology, withReturns(0.001, 0)),
		rec("F1", models.SectorFinance, withReturns(-0.001, 0)),
		rec("H1", models.SectorHealthcare, withReturns(0.002, 0)),
		rec("U1", models.SectorUtilities, withReturns(-0.002, 0)),
		rec("M1", models.SectorMaterials, withReturns(0.0, 0)),
		rec("C1", models.SectorConsumer, withReturns(0.001, 0)),
		rec("I1", models.SectorIndustrials, withReturns(-0.001, 0)),
		rec("E1", models.SectorEnergy, withReturns(0.25, 0)),
	}
	d := newDetector()
	entries := d.DetectAll(records, nil)

	e := findSignal(entries, "E1", models.SignalSectorRotation)
	if e == nil {
		t.Fatal("outlier sector should fire the rotation rule")
	}
	if e.Direction != models.DirectionBullish {
		t.Errorf("positive divergence should be bullish, got %v", e.Direction)
	}
	if findSignal(entries, "T1", models.SignalSectorRotation) != nil {
		t.Error("near-market sector must not fire the rotation rule")
	}
}

func TestStrongTrendRule(t *testing.T) {
	strong := rec("ADX", models.SectorIndustrials, withReturns(-0.08, 0))
	strong.Technicals.ADX = fp(45)
	weak := rec("FLAT", models.SectorIndustrials, withReturns(0.08, 0))
	weak.Technicals.ADX = fp(20)

	d := newDetector()
	entries := d.DetectAll([]models.InstrumentRecord{strong, weak}, nil)

	e := findSignal(entries, "ADX", models.SignalStrongTrend)
	if e == nil {
		t.Fatal("ADX above 40 with a directional move should fire")
	}
	if e.Direction != models.DirectionBearish {
		t.Errorf("negative 20d move should be bearish, got %v", e.Direction)
	}
	if e.Horizon != models.HorizonMedium {
		t.Errorf("strong trend reports on the medium horizon, got %v", e.Horizon)
	}
	if findSignal(entries, "FLAT", models.SignalStrongTrend) != nil {
		t.Error("low ADX must not fire")
	}
}

func TestMomentumDivergenceRule(t *testing.T) {
	bull := rec("DIV", models.SectorConsumer, withReturns(-0.08, 0))
	bull.Technicals.RSI = fp(55)
	bull.Technicals.MACDHistogram = fp(0.4)

	d := newDetector()
	entries := d.DetectAll([]models.InstrumentRecord{bull}, nil)
	e := findSignal(entries, "DIV", models.SignalDivergence)
	if e == nil {
		t.Fatal("price down with momentum turning up should fire the divergence rule")
	}
	if e.Direction != models.DirectionBullish {
		t.Errorf("expected bullish divergence, got %v", e.Direction)
	}
}

func TestDetectAllEmptySnapshot(t *testing.T) {
	d := newDetector()
	if entries := d.DetectAll(nil, nil); len(entries) != 0 {
		t.Fatalf("empty snapshot should yield no entries, got %d", len(entries))
	}
}

func candles(ticker string, closes []float64) []models.Candle {
	out := make([]models.Candle, len(closes))
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		out[i] = models.Candle{Ticker: ticker, Date: base.AddDate(0, 0, i), Close: c, Volume: 1000}
	}
	return out
}
