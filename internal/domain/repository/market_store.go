package repository

import (
	"context"

	"BotBourse/internal/domain/models"
)

// MarketStore provides read-only access to the materialized feature and
// prediction rows plus daily candle history. The analytics engine never
// touches it directly; the snapshot layer loads from it and normalizes.
type MarketStore interface {
	// GetInstrumentRows returns the latest feature/prediction row per
	// ticker, one row per instrument.
	GetInstrumentRows(ctx context.Context) ([]models.RawRow, error)

	// GetDailyCandles returns the most recent daily bars for one
	// ticker, oldest first.
	GetDailyCandles(ctx context.Context, ticker string, days int) ([]models.Candle, error)

	// GetHistories returns the trailing daily history for every ticker
	// in the snapshot, keyed by ticker.
	GetHistories(ctx context.Context, days int) (map[string]*models.History, error)
}
