// Package types holds the plain data values shared between the analysis
// packages and the execution layer.
package types

import "time"

type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

// PositionSide distinguishes the direction of an open trade.
type PositionSide string

const (
	Long  PositionSide = "LONG"
	Short PositionSide = "SHORT"
)

// Bar is one OHLCV candle for a fixed time interval. Values are immutable
// once produced by the market-data provider.
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Series is a chronologically ordered slice of bars for a single symbol.
// Unique, ascending timestamps are assumed but not enforced.
type Series []Bar

// Closes extracts the close column.
func (s Series) Closes() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Close
	}
	return out
}

// Volumes extracts the volume column.
func (s Series) Volumes() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Volume
	}
	return out
}

// After returns the sub-series strictly after t. The result aliases the
// original backing array.
func (s Series) After(t time.Time) Series {
	for i, b := range s {
		if b.Time.After(t) {
			return s[i:]
		}
	}
	return nil
}

type Order struct {
	Symbol string
	Side   Side
	Qty    float64
	Price  float64 // limit price; 0 = market
	// meta
	Comment string
}

// Position is an open trade owned by the execution layer. The analysis
// packages read it and return updated stop values; they never mutate it.
type Position struct {
	Symbol    string
	Side      PositionSide
	EntryTime time.Time
	Entry     float64
	Qty       float64

	// Stop-management state, threaded through stop.Engine by value.
	Stop       float64
	TakeProfit float64
	HighWater  float64 // highest high since entry (long)
	LowWater   float64 // lowest low since entry (short)
}
