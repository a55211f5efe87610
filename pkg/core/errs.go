package core

import "errors"

var (
	// ErrInvalidOrder is returned when a full data replace is not
	// strictly ascending by time. The previous data is kept.
	ErrInvalidOrder = errors.New("data must be ordered by time in ascending order")

	// ErrOutOfOrderUpdate is returned when an incremental update
	// precedes the last stored point. Updates may only replace the
	// current bar or append after it.
	ErrOutOfOrderUpdate = errors.New("update time is older than the last stored point")

	// ErrNotFound is returned when a time or index lookup misses.
	ErrNotFound = errors.New("not found")

	// ErrEmptySeries is returned when an operation needs at least one
	// data point.
	ErrEmptySeries = errors.New("series has no data")
)
