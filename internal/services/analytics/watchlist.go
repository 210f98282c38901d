package analytics

import (
	"fmt"
	"math"
	"time"

	"BotBourse/internal/domain/models"
	domsvc "BotBourse/internal/domain/service"
	"BotBourse/internal/services/features"
)

// Detection thresholds. Taken from the planning docs rather than a
// backtest, so they stay named constants and configurable overrides,
// not logic baked into the rules.
const (
	// DefaultVarianceRatio fires the volatility-regime rule when the
	// conditional variance exceeds this multiple of its own 60d mean.
	DefaultVarianceRatio = 2.0
	// DefaultDivergenceSigma fires sector rotation when a sector's 20d
	// return sits this many cross-sector stdevs from the market.
	DefaultDivergenceSigma = 2.0
	// DefaultVolumeRatio fires the volume-anomaly rule when 5d average
	// volume exceeds this multiple of the 60d average.
	DefaultVolumeRatio = 3.0

	RSIOverbought = 70.0
	RSIOversold   = 30.0

	// ADXStrongTrend marks a strongly trending market.
	ADXStrongTrend = 40.0
	// DivergenceGap is the minimum 20d move for the divergence rule.
	DivergenceGap = 0.05
)

const (
	detectionWindow = 30  // look-back days per run
	longMAWindow    = 200 // trend-reversal moving average
	varianceWindow  = 60  // rolling mean window for the variance ratio
	rsiPeriod       = 14
)

// Thresholds are the tunable rule parameters.
type Thresholds struct {
	VarianceRatio   float64
	DivergenceSigma float64
	VolumeRatio     float64
}

// DefaultThresholds returns the documented rule parameters.
func DefaultThresholds() Thresholds {
	return Thresholds{
		VarianceRatio:   DefaultVarianceRatio,
		DivergenceSigma: DefaultDivergenceSigma,
		VolumeRatio:     DefaultVolumeRatio,
	}
}

// RegimeDetector runs the watchlist rule set over the snapshot. Rules
// are independent; an instrument may appear once per fired rule, dated
// to the most recent qualifying day inside the look-back window.
type RegimeDetector struct {
	th    Thresholds
	garch features.GarchParams
}

func NewRegimeDetector(th Thresholds, garch features.GarchParams) *RegimeDetector {
	if th.VarianceRatio <= 0 {
		th.VarianceRatio = DefaultVarianceRatio
	}
	if th.DivergenceSigma <= 0 {
		th.DivergenceSigma = DefaultDivergenceSigma
	}
	if th.VolumeRatio <= 0 {
		th.VolumeRatio = DefaultVolumeRatio
	}
	return &RegimeDetector{th: th, garch: garch}
}

var _ domsvc.RegimeDetector = (*RegimeDetector)(nil)

// DetectAll evaluates every rule against every instrument. Cross-sector
// statistics are computed once per run. Output order is deterministic:
// snapshot order, rules in fixed order per instrument.
func (d *RegimeDetector) DetectAll(records []models.InstrumentRecord, histories map[string]*models.History) []models.WatchlistEntry {
	market := crossSectorStats(records)

	var out []models.WatchlistEntry
	for i := range records {
		r := &records[i]
		hist := histories[r.Ticker]

		if e, ok := d.volatilityRegime(r, hist); ok {
			out = append(out, e)
		}
		if e, ok := d.trendReversal(r, hist); ok {
			out = append(out, e)
		}
		if e, ok := d.sectorRotation(r, market); ok {
			out = append(out, e)
		}
		if e, ok := d.volumeAnomaly(r); ok {
			out = append(out, e)
		}
		if e, ok := d.momentumDivergence(r); ok {
			out = append(out, e)
		}
		if e, ok := d.strongTrend(r); ok {
			out = append(out, e)
		}
	}
	return out
}

// volatilityRegime compares the GARCH(1,1) conditional variance against
// its own rolling mean and reports the most recent day the ratio
// exceeded the threshold.
func (d *RegimeDetector) volatilityRegime(r *models.InstrumentRecord, hist *models.History) (models.WatchlistEntry, bool) {
	if hist == nil || len(hist.Candles) < varianceWindow+2 {
		return models.WatchlistEntry{}, false
	}
	returns := features.ComputeLogReturns(hist.Candles)
	variance := features.GarchVarianceSeries(returns, d.garch)
	baseline := features.RollingMean(variance, varianceWindow)

	start := len(variance) - detectionWindow
	if start < varianceWindow {
		start = varianceWindow
	}
	for i := len(variance) - 1; i >= start; i-- {
		if baseline[i] <= 0 {
			continue
		}
		ratio := variance[i] / baseline[i]
		if ratio > d.th.VarianceRatio {
			// returns index i corresponds to candle i+1
			return entry(r, models.SignalVolatilityRegime, models.DirectionNeutral, models.HorizonShort,
				ratio, fmt.Sprintf("conditional variance %.1fx its 60d average", ratio),
				hist.Candles[i+1].Date), true
		}
	}
	return models.WatchlistEntry{}, false
}

// trendReversal looks for a 200d moving-average cross inside the
// look-back window with RSI in an extreme zone at the crossing point.
func (d *RegimeDetector) trendReversal(r *models.InstrumentRecord, hist *models.History) (models.WatchlistEntry, bool) {
	if hist == nil || len(hist.Candles) < longMAWindow+2 {
		return models.WatchlistEntry{}, false
	}
	closes := hist.Closes()

	start := len(closes) - detectionWindow
	if start < longMAWindow {
		start = longMAWindow
	}
	for i := len(closes) - 1; i >= start; i-- {
		ma := features.SMA(closes[:i+1], longMAWindow)
		prevMA := features.SMA(closes[:i], longMAWindow)
		if ma <= 0 || prevMA <= 0 {
			continue
		}
		crossedUp := closes[i-1] <= prevMA && closes[i] > ma
		crossedDown := closes[i-1] >= prevMA && closes[i] < ma
		if !crossedUp && !crossedDown {
			continue
		}
		rsi, ok := features.RSI(closes[:i+1], rsiPeriod)
		if !ok || (rsi <= RSIOverbought && rsi >= RSIOversold) {
			continue
		}
		dir := models.DirectionBullish
		label := "above"
		if crossedDown {
			dir = models.DirectionBearish
			label = "below"
		}
		return entry(r, models.SignalTrendReversal, dir, models.HorizonMedium,
			math.Abs(closes[i]/ma-1), fmt.Sprintf("price crossed %s the 200d average with RSI %.0f", label, rsi),
			hist.Candles[i].Date), true
	}
	return models.WatchlistEntry{}, false
}

// sectorRotation flags members of a sector whose average 20d return
// diverges from the market by more than the configured number of
// cross-sector standard deviations.
func (d *RegimeDetector) sectorRotation(r *models.InstrumentRecord, m marketStats) (models.WatchlistEntry, bool) {
	if m.std <= 0 {
		return models.WatchlistEntry{}, false
	}
	avg, ok := m.sectorAvg[r.Sector]
	if !ok {
		return models.WatchlistEntry{}, false
	}
	z := (avg - m.mean) / m.std
	if math.Abs(z) <= d.th.DivergenceSigma {
		return models.WatchlistEntry{}, false
	}
	dir := models.DirectionBullish
	if z < 0 {
		dir = models.DirectionBearish
	}
	return entry(r, models.SignalSectorRotation, dir, models.HorizonMedium,
		math.Abs(z), fmt.Sprintf("%s 20d return %.1f sigma from market", r.Sector, z),
		r.AsOf), true
}

// volumeAnomaly fires when the 5d/60d average volume ratio exceeds the
// threshold.
func (d *RegimeDetector) volumeAnomaly(r *models.InstrumentRecord) (models.WatchlistEntry, bool) {
	vr := r.Technicals.VolumeRatio
	if vr == nil || *vr <= d.th.VolumeRatio {
		return models.WatchlistEntry{}, false
	}
	return entry(r, models.SignalVolumeAnomaly, models.DirectionNeutral, models.HorizonShort,
		*vr, fmt.Sprintf("5d volume %.1fx the 60d average", *vr),
		r.AsOf), true
}

// momentumDivergence flags price and oscillators disagreeing: a 20d
// move past the gap with RSI and the MACD histogram leaning the other
// way.
func (d *RegimeDetector) momentumDivergence(r *models.InstrumentRecord) (models.WatchlistEntry, bool) {
	t := r.Technicals
	if t.Return20d == nil || t.RSI == nil || t.MACDHistogram == nil {
		return models.WatchlistEntry{}, false
	}
	switch {
	case *t.Return20d <= -DivergenceGap && *t.MACDHistogram > 0 && *t.RSI > 50:
		return entry(r, models.SignalDivergence, models.DirectionBullish, models.HorizonShort,
			math.Abs(*t.Return20d), "price down with momentum turning up",
			r.AsOf), true
	case *t.Return20d >= DivergenceGap && *t.MACDHistogram < 0 && *t.RSI < 50:
		return entry(r, models.SignalDivergence, models.DirectionBearish, models.HorizonShort,
			*t.Return20d, "price up with momentum rolling over",
			r.AsOf), true
	}
	return models.WatchlistEntry{}, false
}

// strongTrend flags ADX above the strong-trend bar with a directional
// 20d move, reported on the medium horizon.
func (d *RegimeDetector) strongTrend(r *models.InstrumentRecord) (models.WatchlistEntry, bool) {
	t := r.Technicals
	if t.ADX == nil || *t.ADX <= ADXStrongTrend || t.Return20d == nil || *t.Return20d == 0 {
		return models.WatchlistEntry{}, false
	}
	dir := models.DirectionBullish
	if *t.Return20d < 0 {
		dir = models.DirectionBearish
	}
	return entry(r, models.SignalStrongTrend, dir, models.HorizonMedium,
		*t.ADX, fmt.Sprintf("ADX %.0f with a %.1f%% 20d move", *t.ADX, *t.Return20d*100),
		r.AsOf), true
}

type marketStats struct {
	sectorAvg map[models.Sector]float64
	mean      float64
	std       float64
}

// crossSectorStats computes the per-sector average 20d returns and the
// mean/stdev of that distribution, once per detection run.
func crossSectorStats(records []models.InstrumentRecord) marketStats {
	sums := make(map[models.Sector]*nullableMean)
	for i := range records {
		r := &records[i]
		m := sums[r.Sector]
		if m == nil {
			m = &nullableMean{}
			sums[r.Sector] = m
		}
		m.add(r.Technicals.Return20d)
	}

	avgs := make(map[models.Sector]float64, len(sums))
	dist := make([]float64, 0, len(sums))
	for sec, m := range sums {
		if m.n == 0 {
			continue
		}
		avgs[sec] = m.mean()
		dist = append(dist, m.mean())
	}
	mean, std := features.MeanStd(dist)
	return marketStats{sectorAvg: avgs, mean: mean, std: std}
}

func entry(r *models.InstrumentRecord, sig models.SignalType, dir models.Direction, h models.Horizon, strength float64, detail string, at time.Time) models.WatchlistEntry {
	return models.WatchlistEntry{
		Ticker:     r.Ticker,
		Name:       r.Name,
		Sector:     r.Sector,
		Signal:     sig,
		Detail:     detail,
		Direction:  dir,
		Horizon:    h,
		Strength:   strength,
		DetectedAt: at,
	}
}
