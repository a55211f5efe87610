// Package series stores the time-ordered data of one chart series and
// answers index lookups for scales and the crosshair.
package series

import (
	"fmt"
	"sort"

	"github.com/raykavin/lightchart/pkg/core"
	"github.com/raykavin/lightchart/pkg/timeindex"
	"gonum.org/v1/gonum/floats"
)

// Store owns the data points of a single series, ordered ascending by
// time. Logical indices are assigned from the shared timeline index
// and remapped whenever that timeline is rebuilt.
type Store struct {
	points    []core.DataPoint
	extractor core.ValueExtractor

	// timeline identity and generation the cached indices were mapped
	// against; the identity matters because a rebuilt timeline starts
	// counting generations from scratch
	mappedIx  *timeindex.Index
	mappedGen uint64
}

// NewStore creates an empty store for a series whose values are read
// through the given extractor.
func NewStore(extractor core.ValueExtractor) *Store {
	return &Store{extractor: extractor}
}

// Extractor returns the capability used to read prices from values.
func (s *Store) Extractor() core.ValueExtractor { return s.extractor }

// Len returns the number of stored points.
func (s *Store) Len() int { return len(s.points) }

// Empty reports whether the store has no data.
func (s *Store) Empty() bool { return len(s.points) == 0 }

// Points returns the stored points as a read-only slice.
func (s *Store) Points() []core.DataPoint { return s.points }

// First returns the earliest point.
func (s *Store) First() (core.DataPoint, bool) {
	if len(s.points) == 0 {
		return core.DataPoint{}, false
	}
	return s.points[0], true
}

// Last returns the latest point.
func (s *Store) Last() (core.DataPoint, bool) {
	if len(s.points) == 0 {
		return core.DataPoint{}, false
	}
	return s.points[len(s.points)-1], true
}

// SetData replaces the full series content. Input must be strictly
// ascending by time; core.ErrInvalidOrder is returned otherwise and
// the previous data is retained untouched.
func (s *Store) SetData(points []core.DataPoint) error {
	for i := 1; i < len(points); i++ {
		if !points[i-1].Time.Before(points[i].Time) {
			return fmt.Errorf("point %d: %w", i, core.ErrInvalidOrder)
		}
	}

	s.points = make([]core.DataPoint, len(points))
	copy(s.points, points)
	s.mappedIx = nil
	return nil
}

// Update upserts a single point. A time equal to the last point's time
// replaces it (the streaming "current bar" case); a strictly later
// time appends. Anything earlier fails with core.ErrOutOfOrderUpdate
// and leaves the store unchanged.
func (s *Store) Update(p core.DataPoint) error {
	if len(s.points) == 0 {
		s.points = append(s.points, p)
		s.mappedIx = nil
		return nil
	}

	last := s.points[len(s.points)-1]
	switch {
	case p.Time.Equal(last.Time):
		p.Index = last.Index
		s.points[len(s.points)-1] = p
	case p.Time.After(last.Time):
		// The new point's index is unknown until the next remap, even
		// when the timeline itself already contains its time.
		s.points = append(s.points, p)
		s.mappedIx = nil
	default:
		return fmt.Errorf("update at ordinal %d before last ordinal %d: %w",
			p.Time.Ordinal, last.Time.Ordinal, core.ErrOutOfOrderUpdate)
	}

	return nil
}

// TimePoints returns the series' time set for merging into the shared
// timeline.
func (s *Store) TimePoints() []core.TimePoint {
	times := make([]core.TimePoint, len(s.points))
	for i, p := range s.points {
		times[i] = p.Time
	}
	return times
}

// Remap reassigns every point's logical index from the shared
// timeline. It is a no-op only when the same timeline instance is
// unchanged since the last remap; a different (rebuilt) timeline
// always remaps, whatever its generation counter says.
func (s *Store) Remap(ix *timeindex.Index) {
	if s.mappedIx == ix && s.mappedGen == ix.Generation() {
		return
	}

	for i := range s.points {
		idx, ok := ix.IndexOf(s.points[i].Time)
		if !ok {
			idx = core.IndexNotFound
		}
		s.points[i].Index = idx
	}
	s.mappedIx = ix
	s.mappedGen = ix.Generation()
}

// At returns the point stored exactly at a logical index.
func (s *Store) At(index core.LogicalIndex) (core.DataPoint, bool) {
	i := s.searchIndex(index)
	if i < len(s.points) && s.points[i].Index == index {
		return s.points[i], true
	}
	return core.DataPoint{}, false
}

// NearestLeft returns the closest point at or before the given index,
// used for crosshair snapping across data gaps.
func (s *Store) NearestLeft(index core.LogicalIndex) (core.DataPoint, bool) {
	i := s.searchIndex(index)
	if i < len(s.points) && s.points[i].Index == index {
		return s.points[i], true
	}
	if i == 0 {
		return core.DataPoint{}, false
	}
	return s.points[i-1], true
}

// NearestRight returns the closest point at or after the given index.
func (s *Store) NearestRight(index core.LogicalIndex) (core.DataPoint, bool) {
	i := s.searchIndex(index)
	if i >= len(s.points) {
		return core.DataPoint{}, false
	}
	return s.points[i], true
}

// ValueRange computes the price bounds of the points whose logical
// indices fall inside [from, to]. Only the sub-range located by binary
// search is scanned, so incremental auto-scaling stays sublinear in
// the full dataset size. The boolean is false when the window holds no
// data.
func (s *Store) ValueRange(from, to core.LogicalIndex) (core.PriceRange, bool) {
	if len(s.points) == 0 || from > to {
		return core.PriceRange{}, false
	}

	lo := s.searchIndex(from)
	hi := s.searchIndex(to + 1)
	if lo >= hi {
		return core.PriceRange{}, false
	}

	lows := make([]float64, 0, hi-lo)
	highs := make([]float64, 0, hi-lo)
	for _, p := range s.points[lo:hi] {
		l, h := s.extractor.Bounds(p.Value)
		lows = append(lows, l)
		highs = append(highs, h)
	}

	return core.PriceRange{Min: floats.Min(lows), Max: floats.Max(highs)}, true
}

// searchIndex returns the position of the first point whose logical
// index is >= index.
func (s *Store) searchIndex(index core.LogicalIndex) int {
	return sort.Search(len(s.points), func(i int) bool {
		return s.points[i].Index >= index
	})
}
