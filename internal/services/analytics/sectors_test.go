package analytics

import (
	"reflect"
	"testing"

	"BotBourse/internal/domain/models"
)

func withReturns(r20, r60 float64) func(*models.InstrumentRecord) {
	return func(r *models.InstrumentRecord) {
		r.Technicals.Return20d = fp(r20)
		r.Technicals.Return60d = fp(r60)
	}
}

func TestClassifyMomentumBoundaries(t *testing.T) {
	// quarterly 0.03 normalizes to a monthly pace of 0.01
	cases := []struct {
		r20  float64
		want models.Momentum
	}{
		{0.010, models.MomentumStable},
		{0.016, models.MomentumAccelerating},
		{0.004, models.MomentumDecelerating},
		{0.0149, models.MomentumStable}, // inside the band
		{0.0051, models.MomentumStable},
	}
	for _, c := range cases {
		if got := ClassifyMomentum(c.r20, 0.03); got != c.want {
			t.Errorf("ClassifyMomentum(%v, 0.03) = %v, want %v", c.r20, got, c.want)
		}
	}
}

func TestSummarizeMomentumEndToEnd(t *testing.T) {
	a := NewSectorAggregator()
	records := []models.InstrumentRecord{
		rec("ACC", models.SectorEnergy, withReturns(0.016, 0.03)),
	}
	out := a.Summarize(records)
	if len(out) != 1 {
		t.Fatalf("expected 1 summary, got %d", len(out))
	}
	if out[0].Momentum != models.MomentumAccelerating {
		t.Errorf("momentum = %v, want accelerating", out[0].Momentum)
	}
}

func TestSummarizeNullExcludedFromAverages(t *testing.T) {
	a := NewSectorAggregator()
	records := []models.InstrumentRecord{
		rec("A", models.SectorTechnology, withRSI(60)),
		rec("B", models.SectorTechnology), // rsi unknown
	}
	out := a.Summarize(records)
	if len(out) != 1 {
		t.Fatalf("expected 1 summary, got %d", len(out))
	}
	s := out[0]
	if s.Count != 2 {
		t.Errorf("count = %d, want 2", s.Count)
	}
	// one eligible value: the average is that value, not value/2
	if s.AvgRSI != 60 {
		t.Errorf("avgRsi = %v, want 60 (null member excluded)", s.AvgRSI)
	}
}

func TestSummarizeEmptyMetricReportsZero(t *testing.T) {
	a := NewSectorAggregator()
	out := a.Summarize([]models.InstrumentRecord{rec("A", models.SectorUtilities)})
	if out[0].AvgRSI != 0 {
		t.Errorf("sector with no RSI values should report 0, got %v", out[0].AvgRSI)
	}
}

func TestSummarizeSentimentUsesShortHorizon(t *testing.T) {
	a := NewSectorAggregator()
	records := []models.InstrumentRecord{
		rec("A", models.SectorFinance,
			withTrend(models.HorizonShort, models.TrendBullish, 0.6),
			withTrend(models.HorizonMedium, models.TrendBearish, 0.6)),
		rec("B", models.SectorFinance,
			withTrend(models.HorizonShort, models.TrendBearish, 0.6)),
	}
	out := a.Summarize(records)
	s := out[0]
	if s.BullishPct != 0.5 || s.BearishPct != 0.5 {
		t.Errorf("sentiment = %v/%v, want 0.5/0.5 from short horizon only", s.BullishPct, s.BearishPct)
	}
}

func TestSummarizePerformerRanking(t *testing.T) {
	a := NewSectorAggregator()
	records := []models.InstrumentRecord{
		rec("P1", models.SectorTechnology, withReturns(0.05, 0)),
		rec("P2", models.SectorTechnology, withReturns(-0.02, 0)),
		rec("P3", models.SectorTechnology, withReturns(0.10, 0)),
		rec("P4", models.SectorTechnology, withReturns(0.01, 0)),
	}
	s := a.Summarize(records)[0]

	top := refTickers(s.TopPerformers)
	if !reflect.DeepEqual(top, []string{"P3", "P1", "P4"}) {
		t.Errorf("topPerformers = %v, want [P3 P1 P4]", top)
	}
	worst := refTickers(s.WorstPerformers)
	if !reflect.DeepEqual(worst, []string{"P2", "P4", "P1"}) {
		t.Errorf("worstPerformers = %v, want [P2 P4 P1]", worst)
	}
}

func TestSummarizeIdempotent(t *testing.T) {
	a := NewSectorAggregator()
	records := []models.InstrumentRecord{
		rec("A", models.SectorTechnology, withRSI(55), withReturns(0.02, 0.03)),
		rec("B", models.SectorFinance, withReturns(-0.01, 0.01)),
		rec("C", models.SectorTechnology, withReturns(0.04, 0.02)),
	}
	first := a.Summarize(records)
	second := a.Summarize(records)
	if !reflect.DeepEqual(first, second) {
		t.Fatal("summaries must be identical across runs on the same snapshot")
	}
}

func TestSummarizeEmptyInput(t *testing.T) {
	a := NewSectorAggregator()
	if out := a.Summarize(nil); len(out) != 0 {
		t.Fatalf("empty snapshot should yield no summaries, got %d", len(out))
	}
}

func refTickers(refs []models.PerformerRef) []string {
	out := make([]string, len(refs))
	for i, r := range refs {
		out[i] = r.Ticker
	}
	return out
}
