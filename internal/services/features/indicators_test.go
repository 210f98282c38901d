package features

import (
	"math"
	"testing"
	"time"

	"BotBourse/internal/domain/models"
)

func candlesFromCloses(closes []float64) []models.Candle {
	out := make([]models.Candle, len(closes))
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		out[i] = models.Candle{Ticker: "TST", Date: base.AddDate(0, 0, i), Close: c}
	}
	return out
}

func TestComputeLogReturns(t *testing.T) {
	candles := candlesFromCloses([]float64{100, 110, 99})
	rets := ComputeLogReturns(candles)
	if len(rets) != 2 {
		t.Fatalf("expected 2 returns, got %d", len(rets))
	}
	if want := math.Log(1.1); math.Abs(rets[0]-want) > 1e-12 {
		t.Errorf("first return = %v, want %v", rets[0], want)
	}
	if ComputeLogReturns(candles[:1]) != nil {
		t.Errorf("expected nil for single candle")
	}
}

func TestSimpleReturn(t *testing.T) {
	closes := []float64{100, 101, 102, 110}
	if got := SimpleReturn(closes, 3); math.Abs(got-0.10) > 1e-12 {
		t.Errorf("SimpleReturn = %v, want 0.10", got)
	}
	if got := SimpleReturn(closes, 10); got != 0 {
		t.Errorf("short series should return 0, got %v", got)
	}
}

func TestRSIAllGains(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	rsi, ok := RSI(closes, 14)
	if !ok {
		t.Fatal("expected RSI to be computable")
	}
	if rsi != 100 {
		t.Errorf("monotonic gains should give RSI 100, got %v", rsi)
	}
	if _, ok := RSI(closes[:10], 14); ok {
		t.Error("expected RSI to be unavailable for short series")
	}
}

func TestMaxDrawdown(t *testing.T) {
	closes := []float64{100, 120, 90, 95, 130}
	if got, want := MaxDrawdown(closes), 90.0/120.0-1; math.Abs(got-want) > 1e-12 {
		t.Errorf("MaxDrawdown = %v, want %v", got, want)
	}
	if MaxDrawdown(nil) != 0 {
		t.Error("empty series should give 0 drawdown")
	}
}

func TestGarchVarianceSeriesReactsToShocks(t *testing.T) {
	rets := make([]float64, 80)
	for i := range rets {
		rets[i] = 0.001
		if i%2 == 0 {
			rets[i] = -0.001
		}
	}
	rets[78] = 0.08
	rets[79] = -0.08

	h := GarchVarianceSeries(rets, DefaultGarchParams())
	if len(h) != len(rets) {
		t.Fatalf("series length = %d, want %d", len(h), len(rets))
	}
	// variance at the day after the first shock must dwarf the calm level
	if h[79] < 10*h[70] {
		t.Errorf("variance after shock (%v) should far exceed calm level (%v)", h[79], h[70])
	}
}

func TestRollingMean(t *testing.T) {
	xs := []float64{1, 2, 3, 4}
	got := RollingMean(xs, 2)
	want := []float64{1, 1.5, 2.5, 3.5}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("RollingMean[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestMeanStd(t *testing.T) {
	mean, std := MeanStd([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	if mean != 5 {
		t.Errorf("mean = %v, want 5", mean)
	}
	if math.Abs(std-2.13808993) > 1e-6 {
		t.Errorf("std = %v, want ~2.138", std)
	}
	if _, std := MeanStd([]float64{1}); std != 0 {
		t.Error("single value should have std 0")
	}
}
