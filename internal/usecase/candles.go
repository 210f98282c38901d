package usecase

import (
	"context"
	"fmt"

	"BotBourse/internal/domain/models"
	domrepo "BotBourse/internal/domain/repository"
)

// CandlesUseCase provides business logic for retrieving daily candles.
type CandlesUseCase struct {
	store domrepo.MarketStore
}

func NewCandlesUseCase(store domrepo.MarketStore) *CandlesUseCase {
	return &CandlesUseCase{store: store}
}

type GetCandlesParams struct {
	Ticker string
	Days   int
}

type GetCandlesResult struct {
	Ticker  string
	Count   int
	Candles []models.Candle
}

func (uc *CandlesUseCase) GetCandles(ctx context.Context, p GetCandlesParams) (*GetCandlesResult, error) {
	if p.Ticker == "" {
		return nil, fmt.Errorf("ticker required")
	}
	if p.Days <= 0 {
		p.Days = 180
	}
	if p.Days > 2000 {
		p.Days = 2000
	}

	candles, err := uc.store.GetDailyCandles(ctx, p.Ticker, p.Days)
	if err != nil {
		return nil, fmt.Errorf("get daily candles: %w", err)
	}

	return &GetCandlesResult{
		Ticker:  p.Ticker,
		Count:   len(candles),
		Candles: candles,
	}, nil
}
