package usecase

import (
	"context"
	"math"
	"testing"
	"time"

	"BotBourse/internal/domain/models"
	"BotBourse/internal/services/analytics"
)

type fakeMarketStore struct {
	rows      []models.RawRow
	histories map[string]*models.History
	rowsErr   error
	loads     int
}

func (f *fakeMarketStore) GetInstrumentRows(ctx context.Context) ([]models.RawRow, error) {
	f.loads++
	if f.rowsErr != nil {
		return nil, f.rowsErr
	}
	return f.rows, nil
}

func (f *fakeMarketStore) GetDailyCandles(ctx context.Context, ticker string, days int) ([]models.Candle, error) {
	h, ok := f.histories[ticker]
	if !ok {
		return nil, nil
	}
	return h.Candles, nil
}

func (f *fakeMarketStore) GetHistories(ctx context.Context, days int) (map[string]*models.History, error) {
	if f.histories == nil {
		return map[string]*models.History{}, nil
	}
	return f.histories, nil
}

func rawRow(ticker, sector string) models.RawRow {
	nan := math.NaN()
	return models.RawRow{
		Ticker:        ticker,
		Name:          ticker + " Inc",
		Sector:        sector,
		Region:        "US",
		AssetType:     "stock",
		Price:         100,
		ChangePercent: 0.5,
		RSI:           55,
		ADX:           nan,
		MACDHistogram: nan,
		Volatility20d: 0.2,
		Volatility60d: 0.25,
		Drawdown:      -0.1,
		Return5d:      nan,
		Return20d:     0.02,
		Return60d:     0.05,
		VolumeRatio:   1.1,
		RiskScore:     3,
		AsOf:          time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
	}
}

func TestSnapshotRefreshSwapsState(t *testing.T) {
	store := &fakeMarketStore{
		rows: []models.RawRow{rawRow("AAPL", "Technology"), rawRow("XOM", "Energy")},
		histories: map[string]*models.History{
			"AAPL": {Ticker: "AAPL", Candles: []models.Candle{{Ticker: "AAPL", Close: 100}}},
		},
	}
	svc := NewSnapshotService(store, analytics.NewNormalizer(), 400, nil)

	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	snap := svc.Current()
	if len(snap.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(snap.Records))
	}
	if snap.LoadedAt.IsZero() {
		t.Errorf("LoadedAt not set")
	}
	rec, ok := snap.Record("XOM")
	if !ok {
		t.Fatalf("expected XOM in snapshot")
	}
	if rec.Sector != models.SectorEnergy {
		t.Errorf("sector = %q", rec.Sector)
	}
	if len(snap.Histories) != 1 {
		t.Errorf("expected 1 history, got %d", len(snap.Histories))
	}
}

func TestSnapshotRefreshFailureKeepsPrevious(t *testing.T) {
	store := &fakeMarketStore{rows: []models.RawRow{rawRow("AAPL", "Technology")}}
	svc := NewSnapshotService(store, analytics.NewNormalizer(), 400, nil)
	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("first refresh: %v", err)
	}

	store.rows = []models.RawRow{{Ticker: ""}} // malformed identity fails the batch
	if err := svc.Refresh(context.Background()); err == nil {
		t.Fatalf("expected refresh error")
	}
	snap := svc.Current()
	if len(snap.Records) != 1 || snap.Records[0].Ticker != "AAPL" {
		t.Errorf("previous snapshot not preserved: %+v", snap.Records)
	}
}

func TestSnapshotCurrentBeforeRefresh(t *testing.T) {
	svc := NewSnapshotService(&fakeMarketStore{}, analytics.NewNormalizer(), 0, nil)
	snap := svc.Current()
	if snap == nil {
		t.Fatalf("expected empty snapshot")
	}
	if len(snap.Records) != 0 {
		t.Errorf("expected no records")
	}
	if _, ok := snap.Record("AAPL"); ok {
		t.Errorf("unexpected record")
	}
}
