package core

import "math"

// LogicalIndex is a dense position in the merged, gap-free timeline.
// Indices are contiguous integers even when the underlying time points
// have irregular spacing.
type LogicalIndex int

// IndexNotFound marks a failed index lookup.
const IndexNotFound LogicalIndex = -1

// DataPoint is one series value anchored to a time point and its
// current logical index. The index is reassigned whenever the global
// timeline is rebuilt.
type DataPoint struct {
	Time  TimePoint
	Index LogicalIndex
	Value Value
}

// PriceRange is a closed price interval with Min <= Max.
type PriceRange struct {
	Min float64
	Max float64
}

// NewPriceRange normalizes the bounds so Min <= Max always holds.
func NewPriceRange(a, b float64) PriceRange {
	if a > b {
		a, b = b, a
	}
	return PriceRange{Min: a, Max: b}
}

// Span returns the height of the range.
func (r PriceRange) Span() float64 { return r.Max - r.Min }

// IsDegenerate reports whether the range has (near) zero height and
// needs the minimum-span fallback before it can drive a scale.
func (r PriceRange) IsDegenerate() bool {
	return r.Span() < minimumPriceSpan(r.Min)
}

// Union returns the smallest range covering both r and o.
func (r PriceRange) Union(o PriceRange) PriceRange {
	return PriceRange{
		Min: math.Min(r.Min, o.Min),
		Max: math.Max(r.Max, o.Max),
	}
}

// Contains reports whether price falls inside the range.
func (r PriceRange) Contains(price float64) bool {
	return price >= r.Min && price <= r.Max
}

// Expanded returns the range grown by the minimum-span fallback when
// degenerate: each bound moves out by max(5% of |value|, 0.5). A flat
// series still produces a drawable, non-zero-height scale.
func (r PriceRange) Expanded() PriceRange {
	if !r.IsDegenerate() {
		return r
	}
	mid := (r.Min + r.Max) / 2
	pad := math.Max(math.Abs(mid)*0.05, 0.5)
	return PriceRange{Min: mid - pad, Max: mid + pad}
}

func minimumPriceSpan(at float64) float64 {
	return math.Max(math.Abs(at)*1e-12, 1e-12)
}

// VisibleRange is the logical-index window currently displayed. The
// edges may be fractional so a bar can be half clipped mid-scroll.
type VisibleRange struct {
	From float64
	To   float64
}

// Span returns the number of indices the window covers.
func (r VisibleRange) Span() float64 { return r.To - r.From }

// Contains reports whether index falls inside the window.
func (r VisibleRange) Contains(index float64) bool {
	return index >= r.From && index <= r.To
}

// Equal compares two windows within floating-point tolerance.
func (r VisibleRange) Equal(o VisibleRange) bool {
	const eps = 1e-9
	return math.Abs(r.From-o.From) < eps && math.Abs(r.To-o.To) < eps
}
