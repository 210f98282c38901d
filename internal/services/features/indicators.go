package features

import (
	"math"

	"BotBourse/internal/domain/models"
)

// TradingDaysPerYear is the annualization base for daily bars.
const TradingDaysPerYear = 252.0

// ComputeLogReturns computes log returns r_t = ln(C_t / C_{t-1}).
// It returns a slice of length len(candles)-1, or nil if insufficient data.
func ComputeLogReturns(candles []models.Candle) []float64 {
	if len(candles) < 2 {
		return nil
	}
	out := make([]float64, 0, len(candles)-1)
	for i := 1; i < len(candles); i++ {
		prev := candles[i-1].Close
		cur := candles[i].Close
		if prev <= 0 || cur <= 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, math.Log(cur/prev))
	}
	return out
}

// SimpleReturn computes the fractional price change over the trailing
// window: C_last / C_{last-window} - 1. Returns 0 if the series is too
// short or the base is non-positive.
func SimpleReturn(closes []float64, window int) float64 {
	if window < 1 || len(closes) <= window {
		return 0
	}
	base := closes[len(closes)-1-window]
	if base <= 0 {
		return 0
	}
	return closes[len(closes)-1]/base - 1
}

// RealizedVolatility computes annualized realized volatility over a rolling window
// using the provided number of bars per year. Returns the latest window sigma.
func RealizedVolatility(logReturns []float64, window int, barsPerYear float64) float64 {
	if window <= 1 || len(logReturns) < window {
		return 0
	}
	sum := 0.0
	sum2 := 0.0
	for i := len(logReturns) - window; i < len(logReturns); i++ {
		r := logReturns[i]
		sum += r
		sum2 += r * r
	}
	n := float64(window)
	mean := sum / n
	variance := (sum2 - n*mean*mean) / (n - 1)
	if variance < 0 {
		variance = 0
	}
	// annualize
	return math.Sqrt(variance * barsPerYear)
}

// MeanStd returns the arithmetic mean and sample standard deviation of
// xs. Std is 0 for fewer than two values.
func MeanStd(xs []float64) (mean, std float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	mean = sum / float64(len(xs))
	if len(xs) < 2 {
		return mean, 0
	}
	var sq float64
	for _, x := range xs {
		d := x - mean
		sq += d * d
	}
	return mean, math.Sqrt(sq / float64(len(xs)-1))
}

// SMA returns the simple moving average of the trailing window, or 0 if
// the series is shorter than the window.
func SMA(xs []float64, window int) float64 {
	if window < 1 || len(xs) < window {
		return 0
	}
	sum := 0.0
	for i := len(xs) - window; i < len(xs); i++ {
		sum += xs[i]
	}
	return sum / float64(window)
}

// RSI computes the Relative Strength Index over the close series using
// Wilder's smoothing with the given period (14 is conventional).
// Returns (0, false) when the series is shorter than period+1 bars.
func RSI(closes []float64, period int) (float64, bool) {
	if period < 1 || len(closes) < period+1 {
		return 0, false
	}
	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			avgGain += d
		} else {
			avgLoss -= d
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	for i := period + 1; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if d > 0 {
			gain = d
		} else {
			loss = -d
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}
	if avgLoss == 0 {
		return 100, true
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs), true
}

// MaxDrawdown returns the worst peak-to-trough decline of the close
// series as a non-positive fraction (e.g. -0.32 for a 32% drop).
func MaxDrawdown(closes []float64) float64 {
	if len(closes) == 0 {
		return 0
	}
	peak := closes[0]
	worst := 0.0
	for _, c := range closes {
		if c > peak {
			peak = c
		}
		if peak > 0 {
			dd := c/peak - 1
			if dd < worst {
				worst = dd
			}
		}
	}
	return worst
}

// GarchParams are the fixed GARCH(1,1) recursion coefficients. Parameter
// fitting happens upstream in the model pipeline; the service only runs
// the recursion with configured values.
type GarchParams struct {
	Omega float64
	Alpha float64
	Beta  float64
}

// DefaultGarchParams matches the upstream pipeline's fitted daily
// parameters closely enough for regime detection.
func DefaultGarchParams() GarchParams {
	return GarchParams{Omega: 0.000002, Alpha: 0.10, Beta: 0.85}
}

// GarchVarianceSeries runs the GARCH(1,1) conditional variance recursion
// h_t = omega + alpha*r_{t-1}^2 + beta*h_{t-1} over the log-return
// series, seeding h_0 with the sample variance. The result has the same
// length as logReturns.
func GarchVarianceSeries(logReturns []float64, p GarchParams) []float64 {
	if len(logReturns) == 0 {
		return nil
	}
	_, std := MeanStd(logReturns)
	h := std * std
	if h <= 0 {
		h = p.Omega / math.Max(1e-12, 1-p.Alpha-p.Beta)
	}
	out := make([]float64, len(logReturns))
	out[0] = h
	for i := 1; i < len(logReturns); i++ {
		r := logReturns[i-1]
		h = p.Omega + p.Alpha*r*r + p.Beta*h
		out[i] = h
	}
	return out
}

// RollingMean returns the trailing-window mean ending at each index.
// Indexes with fewer than window prior values use the values available
// so far. The result has the same length as xs.
func RollingMean(xs []float64, window int) []float64 {
	if len(xs) == 0 || window < 1 {
		return nil
	}
	out := make([]float64, len(xs))
	sum := 0.0
	for i, x := range xs {
		sum += x
		n := window
		if i+1 < window {
			n = i + 1
		} else if i >= window {
			sum -= xs[i-window]
		}
		out[i] = sum / float64(n)
	}
	return out
}
