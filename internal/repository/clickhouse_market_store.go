package repository

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"BotBourse/internal/domain/models"
	domrepo "BotBourse/internal/domain/repository"
	pkgch "BotBourse/pkg/clickhouse"
	applogger "BotBourse/pkg/logger"
)

// CHMarketStore implements MarketStore backed by ClickHouse. The model
// pipeline writes feature and prediction rows upstream; this side only
// reads the latest materialized state.
type CHMarketStore struct {
	db *sql.DB
	l  *applogger.Logger
}

func NewCHMarketStore(ch *pkgch.Client) *CHMarketStore {
	return &CHMarketStore{db: ch.DB()}
}

// SetLogger injects a structured logger.
func (s *CHMarketStore) SetLogger(l *applogger.Logger) { s.l = l }

var _ domrepo.MarketStore = (*CHMarketStore)(nil)

func (s *CHMarketStore) GetInstrumentRows(ctx context.Context) ([]models.RawRow, error) {
	start := time.Now()
	const q = `
        SELECT ticker, name, sector, region, asset_type,
               price, change_pct,
               rsi, adx, macd_hist, vol_20d, vol_60d, drawdown,
               ret_5d, ret_20d, ret_60d, volume_ratio,
               risk_score, as_of
        FROM botbourse.instrument_features FINAL
        ORDER BY ticker ASC
    `
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse instrument_rows query error", applogger.Error(err))
		}
		return nil, fmt.Errorf("get instrument rows: %w", err)
	}
	defer rows.Close()

	byTicker := make(map[string]int)
	out := make([]models.RawRow, 0, 512)
	for rows.Next() {
		var r models.RawRow
		var rsi, adx, macd, vol20, vol60, dd, r5, r20, r60, vr sql.NullFloat64
		if err := rows.Scan(&r.Ticker, &r.Name, &r.Sector, &r.Region, &r.AssetType,
			&r.Price, &r.ChangePercent,
			&rsi, &adx, &macd, &vol20, &vol60, &dd,
			&r5, &r20, &r60, &vr,
			&r.RiskScore, &r.AsOf); err != nil {
			if s.l != nil {
				s.l.Error("clickhouse instrument_rows scan error", applogger.Error(err))
			}
			return nil, fmt.Errorf("scan instrument row: %w", err)
		}
		r.RSI = nanIfNull(rsi)
		r.ADX = nanIfNull(adx)
		r.MACDHistogram = nanIfNull(macd)
		r.Volatility20d = nanIfNull(vol20)
		r.Volatility60d = nanIfNull(vol60)
		r.Drawdown = nanIfNull(dd)
		r.Return5d = nanIfNull(r5)
		r.Return20d = nanIfNull(r20)
		r.Return60d = nanIfNull(r60)
		r.VolumeRatio = nanIfNull(vr)

		byTicker[r.Ticker] = len(out)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	if err := s.attachPredictions(ctx, byTicker, out); err != nil {
		return nil, err
	}
	if s.l != nil {
		s.l.Info("clickhouse instrument_rows ok",
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

func (s *CHMarketStore) attachPredictions(ctx context.Context, byTicker map[string]int, out []models.RawRow) error {
	const q = `
        SELECT ticker, horizon, trend, expected_return, confidence
        FROM botbourse.predictions FINAL
        ORDER BY ticker ASC
    `
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse predictions query error", applogger.Error(err))
		}
		return fmt.Errorf("get predictions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ticker string
		var p models.RawPrediction
		if err := rows.Scan(&ticker, &p.Horizon, &p.Trend, &p.ExpectedReturn, &p.Confidence); err != nil {
			return fmt.Errorf("scan prediction: %w", err)
		}
		if i, ok := byTicker[ticker]; ok {
			out[i].Predictions = append(out[i].Predictions, p)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("rows: %w", err)
	}
	return nil
}

func (s *CHMarketStore) GetDailyCandles(ctx context.Context, ticker string, days int) ([]models.Candle, error) {
	start := time.Now()
	const q = `
        SELECT ticker, day, open, high, low, close, volume
        FROM botbourse.daily_candles
        WHERE ticker = ?
        ORDER BY day DESC
        LIMIT ?
    `
	rows, err := s.db.QueryContext(ctx, q, ticker, days)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse daily_candles query error",
				applogger.String("ticker", ticker),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("get daily candles: %w", err)
	}
	defer rows.Close()

	tmp := make([]models.Candle, 0, days)
	for rows.Next() {
		var c models.Candle
		if err := rows.Scan(&c.Ticker, &c.Date, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			return nil, fmt.Errorf("scan candle: %w", err)
		}
		tmp = append(tmp, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	// reverse to ASC
	for i, j := 0, len(tmp)-1; i < j; i, j = i+1, j-1 {
		tmp[i], tmp[j] = tmp[j], tmp[i]
	}
	if s.l != nil {
		s.l.Info("clickhouse daily_candles ok",
			applogger.String("ticker", ticker),
			applogger.Int("rows", len(tmp)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return tmp, nil
}

func (s *CHMarketStore) GetHistories(ctx context.Context, days int) (map[string]*models.History, error) {
	start := time.Now()
	const q = `
        SELECT ticker, day, open, high, low, close, volume
        FROM botbourse.daily_candles
        WHERE day >= today() - ?
        ORDER BY ticker ASC, day ASC
    `
	rows, err := s.db.QueryContext(ctx, q, days)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse histories query error", applogger.Error(err))
		}
		return nil, fmt.Errorf("get histories: %w", err)
	}
	defer rows.Close()

	out := make(map[string]*models.History)
	total := 0
	for rows.Next() {
		var c models.Candle
		if err := rows.Scan(&c.Ticker, &c.Date, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			return nil, fmt.Errorf("scan candle: %w", err)
		}
		h := out[c.Ticker]
		if h == nil {
			h = &models.History{Ticker: c.Ticker}
			out[c.Ticker] = h
		}
		h.Candles = append(h.Candles, c)
		total++
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	if s.l != nil {
		s.l.Info("clickhouse histories ok",
			applogger.Int("tickers", len(out)),
			applogger.Int("rows", total),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

func nanIfNull(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
