package timeindex

import (
	"testing"

	"github.com/raykavin/lightchart/pkg/core"
	"github.com/stretchr/testify/require"
)

func tp(ordinal int64) core.TimePoint {
	return core.TimePoint{Ordinal: ordinal}
}

func TestIndex_MergeDisjointSeries(t *testing.T) {
	ix := New()

	changed, err := ix.Merge([]core.TimePoint{tp(1), tp(3), tp(5)})
	require.NoError(t, err)
	require.True(t, changed)

	changed, err = ix.Merge([]core.TimePoint{tp(2), tp(4)})
	require.NoError(t, err)
	require.True(t, changed)

	require.Equal(t, 5, ix.Len())
	for i, want := range []int64{1, 2, 3, 4, 5} {
		got, ok := ix.TimeAt(core.LogicalIndex(i))
		require.True(t, ok)
		require.Equal(t, want, got.Ordinal)
	}

	// Indices of the first series were remapped by the interleave.
	idx, ok := ix.IndexOf(tp(3))
	require.True(t, ok)
	require.Equal(t, core.LogicalIndex(2), idx)

	idx, ok = ix.IndexOf(tp(5))
	require.True(t, ok)
	require.Equal(t, core.LogicalIndex(4), idx)
}

func TestIndex_MergeEqualPointsCollapse(t *testing.T) {
	ix := New()

	_, err := ix.Merge([]core.TimePoint{tp(10), tp(20), tp(30)})
	require.NoError(t, err)

	changed, err := ix.Merge([]core.TimePoint{tp(10), tp(20), tp(30)})
	require.NoError(t, err)
	require.False(t, changed, "identical time set must not change the timeline")
	require.Equal(t, 3, ix.Len())
}

func TestIndex_MergeEarlierPointsShiftIndices(t *testing.T) {
	ix := New()

	_, err := ix.Merge([]core.TimePoint{tp(100), tp(200)})
	require.NoError(t, err)

	before, _ := ix.IndexOf(tp(100))
	require.Equal(t, core.LogicalIndex(0), before)
	gen := ix.Generation()

	_, err = ix.Merge([]core.TimePoint{tp(50)})
	require.NoError(t, err)
	require.Greater(t, ix.Generation(), gen)

	after, ok := ix.IndexOf(tp(100))
	require.True(t, ok)
	require.Equal(t, core.LogicalIndex(1), after)
}

func TestIndex_MergeRejectsUnsortedInput(t *testing.T) {
	ix := New()

	_, err := ix.Merge([]core.TimePoint{tp(2), tp(1)})
	require.ErrorIs(t, err, core.ErrInvalidOrder)
	require.Zero(t, ix.Len())

	// Duplicates are not strictly ascending either.
	_, err = ix.Merge([]core.TimePoint{tp(1), tp(1)})
	require.ErrorIs(t, err, core.ErrInvalidOrder)
}

func TestIndex_LookupMisses(t *testing.T) {
	ix := New()

	_, ok := ix.IndexOf(tp(1))
	require.False(t, ok)

	_, ok = ix.TimeAt(0)
	require.False(t, ok)

	_, err := ix.Merge([]core.TimePoint{tp(1), tp(3)})
	require.NoError(t, err)

	_, ok = ix.IndexOf(tp(2))
	require.False(t, ok)

	_, ok = ix.TimeAt(core.LogicalIndex(2))
	require.False(t, ok)

	_, ok = ix.TimeAt(core.IndexNotFound)
	require.False(t, ok)
}

func TestIndex_FloorIndex(t *testing.T) {
	ix := New()
	_, err := ix.Merge([]core.TimePoint{tp(10), tp(20), tp(30)})
	require.NoError(t, err)

	idx, ok := ix.FloorIndex(tp(25))
	require.True(t, ok)
	require.Equal(t, core.LogicalIndex(1), idx)

	idx, ok = ix.FloorIndex(tp(30))
	require.True(t, ok)
	require.Equal(t, core.LogicalIndex(2), idx)

	_, ok = ix.FloorIndex(tp(5))
	require.False(t, ok)
}
