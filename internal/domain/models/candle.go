package models

import "time"

// Candle is one daily OHLCV bar.
type Candle struct {
	Ticker string    `json:"ticker"`
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// History is the per-ticker daily series the regime detector consumes,
// ordered oldest first.
type History struct {
	Ticker  string
	Candles []Candle
}

// Closes returns the close series, oldest first.
func (h *History) Closes() []float64 {
	out := make([]float64, len(h.Candles))
	for i, c := range h.Candles {
		out[i] = c.Close
	}
	return out
}

// Volumes returns the volume series, oldest first.
func (h *History) Volumes() []float64 {
	out := make([]float64, len(h.Candles))
	for i, c := range h.Candles {
		out[i] = c.Volume
	}
	return out
}
