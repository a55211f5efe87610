// Package timeindex maintains the global mapping between time points
// and dense logical indices shared by every series on a chart.
package timeindex

import (
	"sort"

	"github.com/raykavin/lightchart/pkg/core"
)

// Index is the merged, gap-free timeline of a chart. Every distinct
// time point across all series occupies exactly one logical index;
// indices are contiguous and strictly increasing with time.
//
// The index is owned by the chart instance and passed by handle into
// each series store. It is not safe for concurrent use; the chart's
// single-threaded mutation model serializes access.
type Index struct {
	points     []core.TimePoint
	generation uint64
}

// New creates an empty timeline index.
func New() *Index {
	return &Index{}
}

// Len returns the number of distinct time points.
func (ix *Index) Len() int { return len(ix.points) }

// Generation increments every time the timeline structure changes.
// Series stores compare it to decide whether cached logical indices
// must be remapped.
func (ix *Index) Generation() uint64 { return ix.generation }

// FirstIndex returns the lowest logical index, or IndexNotFound when
// the timeline is empty.
func (ix *Index) FirstIndex() core.LogicalIndex {
	if len(ix.points) == 0 {
		return core.IndexNotFound
	}
	return 0
}

// LastIndex returns the highest logical index, or IndexNotFound when
// the timeline is empty.
func (ix *Index) LastIndex() core.LogicalIndex {
	if len(ix.points) == 0 {
		return core.IndexNotFound
	}
	return core.LogicalIndex(len(ix.points) - 1)
}

// Merge incorporates a series' time points into the timeline. The
// input must be strictly ascending; core.ErrInvalidOrder is returned
// otherwise and the timeline is left untouched. Points equal to
// existing ones collapse onto the existing index.
//
// The result is a sorted union of the current timeline and the input.
// When the union differs from the current timeline the generation is
// bumped, signalling every store to remap its cached indices.
func (ix *Index) Merge(points []core.TimePoint) (changed bool, err error) {
	for i := 1; i < len(points); i++ {
		if !points[i-1].Before(points[i]) {
			return false, core.ErrInvalidOrder
		}
	}

	if len(points) == 0 {
		return false, nil
	}

	merged, changed := mergeSorted(ix.points, points)
	if changed {
		ix.points = merged
		ix.generation++
	}

	return changed, nil
}

// IndexOf resolves a time point to its logical index via binary
// search. The second return is false when the point is not part of
// the timeline.
func (ix *Index) IndexOf(t core.TimePoint) (core.LogicalIndex, bool) {
	i := sort.Search(len(ix.points), func(i int) bool {
		return !ix.points[i].Before(t)
	})
	if i < len(ix.points) && ix.points[i].Equal(t) {
		return core.LogicalIndex(i), true
	}
	return core.IndexNotFound, false
}

// FloorIndex resolves a time point to the index of the nearest timeline
// entry at or before it. Returns false when every entry is later.
func (ix *Index) FloorIndex(t core.TimePoint) (core.LogicalIndex, bool) {
	i := sort.Search(len(ix.points), func(i int) bool {
		return ix.points[i].After(t)
	})
	if i == 0 {
		return core.IndexNotFound, false
	}
	return core.LogicalIndex(i - 1), true
}

// TimeAt returns the time point stored at a logical index. The second
// return is false when the index is out of range.
func (ix *Index) TimeAt(i core.LogicalIndex) (core.TimePoint, bool) {
	if i < 0 || int(i) >= len(ix.points) {
		return core.TimePoint{}, false
	}
	return ix.points[i], true
}

// TimePoints returns the timeline as a read-only slice. Callers must
// not mutate it.
func (ix *Index) TimePoints() []core.TimePoint {
	return ix.points
}

// mergeSorted unions two strictly ascending sequences. The boolean
// reports whether the result differs from a.
func mergeSorted(a, b []core.TimePoint) ([]core.TimePoint, bool) {
	if len(a) == 0 {
		out := make([]core.TimePoint, len(b))
		copy(out, b)
		return out, len(b) > 0
	}

	out := make([]core.TimePoint, 0, len(a)+len(b))
	changed := false
	i, j := 0, 0

	for i < len(a) && j < len(b) {
		switch a[i].Compare(b[j]) {
		case -1:
			out = append(out, a[i])
			i++
		case 1:
			out = append(out, b[j])
			j++
			changed = true
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}

	out = append(out, a[i:]...)
	if j < len(b) {
		out = append(out, b[j:]...)
		changed = true
	}

	return out, changed
}
