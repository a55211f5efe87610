package series

import (
	"testing"

	"github.com/raykavin/lightchart/pkg/core"
	"github.com/raykavin/lightchart/pkg/timeindex"
	"github.com/stretchr/testify/require"
)

func linePoint(ordinal int64, price float64) core.DataPoint {
	return core.DataPoint{
		Time:  core.TimePoint{Ordinal: ordinal},
		Value: core.LineValue{Price: price},
	}
}

func barPoint(ordinal int64, open, high, low, closePrice float64) core.DataPoint {
	return core.DataPoint{
		Time:  core.TimePoint{Ordinal: ordinal},
		Value: core.BarValue{Open: open, High: high, Low: low, Close: closePrice},
	}
}

func mappedStore(t *testing.T, points ...core.DataPoint) (*Store, *timeindex.Index) {
	t.Helper()

	s := NewStore(core.ExtractorFor(points[0].Value.Kind()))
	require.NoError(t, s.SetData(points))

	ix := timeindex.New()
	_, err := ix.Merge(s.TimePoints())
	require.NoError(t, err)
	s.Remap(ix)

	return s, ix
}

func TestStore_SetDataRejectsUnsorted(t *testing.T) {
	s := NewStore(core.SingleValueExtractor{})
	require.NoError(t, s.SetData([]core.DataPoint{linePoint(1, 10), linePoint(2, 11)}))

	err := s.SetData([]core.DataPoint{linePoint(2, 11), linePoint(1, 10)})
	require.ErrorIs(t, err, core.ErrInvalidOrder)

	// Previous data survives the failed replace.
	require.Equal(t, 2, s.Len())
	last, ok := s.Last()
	require.True(t, ok)
	require.Equal(t, int64(2), last.Time.Ordinal)

	err = s.SetData([]core.DataPoint{linePoint(3, 1), linePoint(3, 2)})
	require.ErrorIs(t, err, core.ErrInvalidOrder)
}

func TestStore_UpdateSemantics(t *testing.T) {
	s := NewStore(core.SingleValueExtractor{})
	require.NoError(t, s.SetData([]core.DataPoint{linePoint(1, 10), linePoint(2, 20)}))

	// Equal time replaces the current bar, length unchanged.
	require.NoError(t, s.Update(linePoint(2, 25)))
	require.Equal(t, 2, s.Len())
	last, _ := s.Last()
	require.Equal(t, 25.0, core.SingleValueExtractor{}.Price(last.Value))

	// Later time appends.
	require.NoError(t, s.Update(linePoint(3, 30)))
	require.Equal(t, 3, s.Len())

	// Earlier time fails and leaves the store unchanged.
	err := s.Update(linePoint(1, 99))
	require.ErrorIs(t, err, core.ErrOutOfOrderUpdate)
	require.Equal(t, 3, s.Len())
	last, _ = s.Last()
	require.Equal(t, int64(3), last.Time.Ordinal)
}

func TestStore_UpdateIntoEmptyStore(t *testing.T) {
	s := NewStore(core.SingleValueExtractor{})
	require.NoError(t, s.Update(linePoint(5, 50)))
	require.Equal(t, 1, s.Len())
}

func TestStore_RemapAfterInterleavedMerge(t *testing.T) {
	a, ix := mappedStore(t, linePoint(1, 1), linePoint(3, 3), linePoint(5, 5))

	b := NewStore(core.SingleValueExtractor{})
	require.NoError(t, b.SetData([]core.DataPoint{linePoint(2, 2), linePoint(4, 4)}))
	_, err := ix.Merge(b.TimePoints())
	require.NoError(t, err)

	a.Remap(ix)
	b.Remap(ix)

	wantA := []core.LogicalIndex{0, 2, 4}
	for i, p := range a.Points() {
		require.Equal(t, wantA[i], p.Index)
	}

	wantB := []core.LogicalIndex{1, 3}
	for i, p := range b.Points() {
		require.Equal(t, wantB[i], p.Index)
	}
}

func TestStore_RemapAgainstRebuiltTimeline(t *testing.T) {
	b, _ := mappedStore(t, linePoint(10, 1), linePoint(20, 2))
	require.Equal(t, core.LogicalIndex(0), b.Points()[0].Index)

	// A rebuilt timeline already containing b's times as a subset:
	// merging b reports no change and the generation matches the one b
	// was mapped against, but the indices shifted.
	rebuilt := timeindex.New()
	_, err := rebuilt.Merge([]core.TimePoint{{Ordinal: 5}, {Ordinal: 10}, {Ordinal: 20}, {Ordinal: 30}})
	require.NoError(t, err)
	changed, err := rebuilt.Merge(b.TimePoints())
	require.NoError(t, err)
	require.False(t, changed)

	b.Remap(rebuilt)

	wantB := []core.LogicalIndex{1, 2}
	for i, p := range b.Points() {
		require.Equal(t, wantB[i], p.Index)
	}
}

func TestStore_UpdateAppendAtKnownTimeRemaps(t *testing.T) {
	ix := timeindex.New()
	_, err := ix.Merge([]core.TimePoint{{Ordinal: 10}, {Ordinal: 20}, {Ordinal: 30}})
	require.NoError(t, err)

	b := NewStore(core.SingleValueExtractor{})
	require.NoError(t, b.SetData([]core.DataPoint{linePoint(10, 1)}))
	b.Remap(ix)

	// Appending at a time the timeline already holds leaves the
	// timeline (and its generation) untouched, but the fresh point
	// still needs its index assigned.
	require.NoError(t, b.Update(linePoint(30, 3)))
	b.Remap(ix)

	p, ok := b.At(2)
	require.True(t, ok)
	require.Equal(t, int64(30), p.Time.Ordinal)

	wantB := []core.LogicalIndex{0, 2}
	for i, p := range b.Points() {
		require.Equal(t, wantB[i], p.Index)
	}
}

func TestStore_NearestLookups(t *testing.T) {
	s, _ := mappedStore(t, linePoint(1, 1), linePoint(3, 3), linePoint(5, 5))

	ix := timeindex.New()
	_, err := ix.Merge([]core.TimePoint{{Ordinal: 1}, {Ordinal: 2}, {Ordinal: 3}, {Ordinal: 4}, {Ordinal: 5}})
	require.NoError(t, err)
	s.Remap(ix)

	// Store occupies global indices 0, 2, 4; index 1 and 3 are gaps.
	p, ok := s.At(2)
	require.True(t, ok)
	require.Equal(t, int64(3), p.Time.Ordinal)

	_, ok = s.At(1)
	require.False(t, ok)

	p, ok = s.NearestLeft(1)
	require.True(t, ok)
	require.Equal(t, int64(1), p.Time.Ordinal)

	p, ok = s.NearestRight(1)
	require.True(t, ok)
	require.Equal(t, int64(3), p.Time.Ordinal)

	p, ok = s.NearestLeft(4)
	require.True(t, ok)
	require.Equal(t, int64(5), p.Time.Ordinal)

	_, ok = s.NearestRight(5)
	require.False(t, ok)

	_, ok = s.NearestLeft(-1)
	require.False(t, ok)
}

func TestStore_ValueRangeSubWindow(t *testing.T) {
	s, _ := mappedStore(t,
		barPoint(1, 10, 15, 9, 12),
		barPoint(2, 12, 20, 11, 18),
		barPoint(3, 18, 25, 17, 24),
		barPoint(4, 24, 30, 5, 8),
	)

	r, ok := s.ValueRange(1, 2)
	require.True(t, ok)
	require.Equal(t, 11.0, r.Min)
	require.Equal(t, 25.0, r.Max)

	r, ok = s.ValueRange(0, 3)
	require.True(t, ok)
	require.Equal(t, 5.0, r.Min)
	require.Equal(t, 30.0, r.Max)

	_, ok = s.ValueRange(10, 20)
	require.False(t, ok)

	_, ok = s.ValueRange(2, 1)
	require.False(t, ok)
}

func TestStore_ValueRangeLineSeries(t *testing.T) {
	s, _ := mappedStore(t, linePoint(1, 45))

	r, ok := s.ValueRange(0, 0)
	require.True(t, ok)
	require.Equal(t, 45.0, r.Min)
	require.Equal(t, 45.0, r.Max)
	require.True(t, r.IsDegenerate())
}
