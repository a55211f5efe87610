// Package storage persists candle history so charts can be rebuilt
// without refetching from a feed.
package storage

import "github.com/raykavin/lightchart/pkg/core"

// CandleFilter selects candles when reading from storage
type CandleFilter func(core.Candle) bool

// CandleStorage persists and retrieves candle history per pair
type CandleStorage interface {
	// SaveCandle inserts or replaces the candle keyed by pair and open time
	SaveCandle(candle core.Candle) error

	// Candles returns the stored candles for a pair in ascending time
	// order, filtered by the given predicates
	Candles(pair string, filters ...CandleFilter) ([]core.Candle, error)

	// Close releases the underlying database
	Close() error
}

// WithCompleteOnly keeps only closed candles
func WithCompleteOnly() CandleFilter {
	return func(c core.Candle) bool {
		return c.Complete
	}
}

// WithTimeRange keeps candles with open time in [from, to]
func WithTimeRange(from, to int64) CandleFilter {
	return func(c core.Candle) bool {
		t := c.Time.Unix()
		return t >= from && t <= to
	}
}
