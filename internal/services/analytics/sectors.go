package analytics

import (
	"sort"

	"BotBourse/internal/domain/models"
	domsvc "BotBourse/internal/domain/service"
)

// MomentumBand is the flat zone around the monthly-normalized quarterly
// pace inside which a sector counts as stable. Half a percentage point
// guards against classifying on noise.
const MomentumBand = 0.005

const performerCount = 3

// SectorAggregator groups the snapshot by sector and computes one
// summary per sector. Single grouping pass, then one sort per sector
// for the performer lists.
type SectorAggregator struct{}

func NewSectorAggregator() *SectorAggregator { return &SectorAggregator{} }

var _ domsvc.SectorAggregator = (*SectorAggregator)(nil)

// Summarize recomputes every sector summary from scratch. Output order
// follows the fixed sector display order; sectors with no members are
// omitted. The sentiment mix always uses the short horizon.
func (a *SectorAggregator) Summarize(records []models.InstrumentRecord) []models.SectorSummary {
	groups := make(map[models.Sector][]*models.InstrumentRecord, len(models.Sectors))
	for i := range records {
		r := &records[i]
		groups[r.Sector] = append(groups[r.Sector], r)
	}

	out := make([]models.SectorSummary, 0, len(groups))
	for _, sec := range models.Sectors {
		members := groups[sec]
		if len(members) == 0 {
			continue
		}
		out = append(out, summarizeSector(sec, members))
	}
	return out
}

func summarizeSector(sec models.Sector, members []*models.InstrumentRecord) models.SectorSummary {
	s := models.SectorSummary{Sector: sec, Count: len(members)}

	var change, risk nullableMean
	var ret20, ret60, rsi, vol nullableMean
	bullish, bearish := 0, 0

	for _, m := range members {
		change.add(&m.ChangePercent)
		f := float64(m.RiskScore)
		risk.add(&f)
		ret20.add(m.Technicals.Return20d)
		ret60.add(m.Technicals.Return60d)
		rsi.add(m.Technicals.RSI)
		vol.add(m.Technicals.Volatility20d)

		switch m.Prediction(models.HorizonShort).Trend {
		case models.TrendBullish:
			bullish++
		case models.TrendBearish:
			bearish++
		}
	}

	s.AvgChange = change.mean()
	s.AvgRisk = risk.mean()
	s.AvgReturn20d = ret20.mean()
	s.AvgReturn60d = ret60.mean()
	s.AvgRSI = rsi.mean()
	s.AvgVolatility = vol.mean()
	s.BullishPct = float64(bullish) / float64(len(members))
	s.BearishPct = float64(bearish) / float64(len(members))
	s.Momentum = ClassifyMomentum(s.AvgReturn20d, s.AvgReturn60d)

	ranked := make([]*models.InstrumentRecord, len(members))
	copy(ranked, members)
	sort.SliceStable(ranked, func(i, j int) bool {
		return orZero(ranked[j].Technicals.Return20d) < orZero(ranked[i].Technicals.Return20d)
	})
	s.TopPerformers = performerRefs(ranked[:min(performerCount, len(ranked))])

	worst := make([]*models.InstrumentRecord, 0, performerCount)
	for i := len(ranked) - 1; i >= 0 && len(worst) < performerCount; i-- {
		worst = append(worst, ranked[i])
	}
	s.WorstPerformers = performerRefs(worst)
	return s
}

// ClassifyMomentum compares the sector's monthly pace against a third
// of its quarterly pace. Differences inside ±MomentumBand are stable.
func ClassifyMomentum(avgReturn20d, avgReturn60d float64) models.Momentum {
	monthly := avgReturn60d / 3
	switch {
	case avgReturn20d > monthly+MomentumBand:
		return models.MomentumAccelerating
	case avgReturn20d < monthly-MomentumBand:
		return models.MomentumDecelerating
	default:
		return models.MomentumStable
	}
}

func performerRefs(rs []*models.InstrumentRecord) []models.PerformerRef {
	out := make([]models.PerformerRef, len(rs))
	for i, r := range rs {
		out[i] = models.PerformerRef{
			Ticker:    r.Ticker,
			Name:      r.Name,
			Return20d: orZero(r.Technicals.Return20d),
		}
	}
	return out
}

// nullableMean accumulates non-null values only and reports 0 for an
// empty set.
type nullableMean struct {
	sum float64
	n   int
}

func (m *nullableMean) add(v *float64) {
	if v == nil {
		return
	}
	m.sum += *v
	m.n++
}

func (m *nullableMean) mean() float64 {
	if m.n == 0 {
		return 0
	}
	return m.sum / float64(m.n)
}
