package analytics

import (
	"math"
	"testing"

	"BotBourse/internal/domain/models"
)

func TestNormalizeMissingTickerFailsBatch(t *testing.T) {
	n := NewNormalizer()
	rows := []models.RawRow{
		{Ticker: "AAPL", Price: 100},
		{Ticker: "   "},
	}
	if _, err := n.Normalize(rows); err == nil {
		t.Fatal("expected error for row with missing ticker")
	}
}

func TestNormalizeNullsBadTechnicals(t *testing.T) {
	n := NewNormalizer()
	recs, err := n.Normalize([]models.RawRow{{
		Ticker:        "msft",
		Price:         300,
		RSI:           math.NaN(),
		ADX:           -5,
		Volatility20d: 0.2,
		Drawdown:      0.3, // positive drawdown is invalid
		Return20d:     math.Inf(1),
		VolumeRatio:   1.2,
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r := recs[0]
	if r.Ticker != "MSFT" {
		t.Errorf("ticker should be uppercased, got %q", r.Ticker)
	}
	tech := r.Technicals
	if tech.RSI != nil {
		t.Error("NaN RSI should be null, not zero")
	}
	if tech.ADX != nil {
		t.Error("negative ADX should be null")
	}
	if tech.Drawdown != nil {
		t.Error("positive drawdown should be null")
	}
	if tech.Return20d != nil {
		t.Error("infinite return should be null")
	}
	if tech.Volatility20d == nil || *tech.Volatility20d != 0.2 {
		t.Error("valid volatility should survive")
	}
}

func TestNormalizeDerivesRiskScore(t *testing.T) {
	n := NewNormalizer()
	recs, err := n.Normalize([]models.RawRow{{
		Ticker:        "VOL",
		Price:         50,
		Volatility20d: 0.40,
		Volatility60d: 0.40,
		Drawdown:      -0.30,
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// vol 0.40 -> +3, drawdown -0.30 -> +2, base 1, clamped to 5
	if got := recs[0].RiskScore; got != 5 {
		t.Errorf("risk score = %d, want 5", got)
	}

	recs, err = n.Normalize([]models.RawRow{{
		Ticker:        "CALM",
		Price:         50,
		Volatility20d: 0.10,
		Volatility60d: 0.10,
		Drawdown:      -0.05,
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := recs[0].RiskScore; got != 1 {
		t.Errorf("risk score = %d, want 1", got)
	}
}

func TestNormalizeKeepsProvidedRiskScore(t *testing.T) {
	n := NewNormalizer()
	recs, err := n.Normalize([]models.RawRow{{Ticker: "ABC", RiskScore: 3}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if recs[0].RiskScore != 3 {
		t.Errorf("risk score = %d, want 3", recs[0].RiskScore)
	}
}

func TestNormalizePredictions(t *testing.T) {
	n := NewNormalizer()
	recs, err := n.Normalize([]models.RawRow{{
		Ticker: "PRED",
		Predictions: []models.RawPrediction{
			{Horizon: "short", Trend: "Bullish", ExpectedReturn: 0.02, Confidence: 0.7},
			{Horizon: "weekly", Trend: "bullish"}, // unknown horizon dropped
		},
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r := recs[0]
	if len(r.Predictions) != 1 {
		t.Fatalf("expected 1 prediction, got %d", len(r.Predictions))
	}
	p := r.Predictions[models.HorizonShort]
	if p.Trend != models.TrendBullish {
		t.Errorf("trend = %v, want bullish", p.Trend)
	}
	if p.Level != models.ConfidenceHigh {
		t.Errorf("confidence 0.7 should bucket high, got %v", p.Level)
	}
	// missing horizon degrades to neutral
	if r.Prediction(models.HorizonLong).Trend != models.TrendNeutral {
		t.Error("missing horizon should report neutral")
	}
}
