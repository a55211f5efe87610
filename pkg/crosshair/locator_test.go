package crosshair

import (
	"testing"

	"github.com/raykavin/lightchart/pkg/core"
	"github.com/raykavin/lightchart/pkg/scale"
	"github.com/raykavin/lightchart/pkg/series"
	"github.com/raykavin/lightchart/pkg/timeindex"
	"github.com/stretchr/testify/require"
)

func TestRoundIndex_TieBreaking(t *testing.T) {
	// Ties round half away from zero.
	cases := []struct {
		in   float64
		want core.LogicalIndex
	}{
		{0.4, 0},
		{0.5, 1},
		{0.6, 1},
		{1.5, 2},
		{2.49, 2},
		{-0.5, -1},
		{-0.4, 0},
		{-1.5, -2},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, RoundIndex(tc.in), "input %v", tc.in)
	}
}

func buildSources(t *testing.T) (*scale.TimeScale, map[string]Source) {
	t.Helper()

	ix := timeindex.New()

	bars := series.NewStore(core.BarExtractor{})
	var barPoints []core.DataPoint
	for i := int64(0); i < 10; i++ {
		barPoints = append(barPoints, core.DataPoint{
			Time:  core.TimePoint{Ordinal: i * 60},
			Value: core.BarValue{Open: 10, High: 12, Low: 8, Close: 11},
		})
	}
	require.NoError(t, bars.SetData(barPoints))

	// The line series only has every second time point.
	line := series.NewStore(core.SingleValueExtractor{})
	var linePoints []core.DataPoint
	for i := int64(0); i < 10; i += 2 {
		linePoints = append(linePoints, core.DataPoint{
			Time:  core.TimePoint{Ordinal: i * 60},
			Value: core.LineValue{Price: float64(100 + i)},
		})
	}
	require.NoError(t, line.SetData(linePoints))

	_, err := ix.Merge(bars.TimePoints())
	require.NoError(t, err)
	_, err = ix.Merge(line.TimePoints())
	require.NoError(t, err)
	bars.Remap(ix)
	line.Remap(ix)

	ts := scale.NewTimeScale()
	ts.SetWidth(500)
	ts.SetIndexBounds(ix.FirstIndex(), ix.LastIndex())
	ts.SetVisibleRange(0, 9)

	ps := scale.NewPriceScale()
	ps.SetHeight(200)
	ps.SetAutoRange(core.PriceRange{Min: 8, Max: 110})

	return ts, map[string]Source{
		"bars": {Store: bars, Scale: ps},
		"line": {Store: line, Scale: ps},
	}
}

func TestLocator_ExactHit(t *testing.T) {
	ts, sources := buildSources(t)
	locator := NewLocator(ts, SnapNearestLeft)

	x := ts.IndexToCoordinate(4)
	res := locator.Locate(x, sources)

	require.Equal(t, core.LogicalIndex(4), res.Index)
	require.InDelta(t, x, res.X, 1e-9)

	hit, ok := res.Series["bars"]
	require.True(t, ok)
	require.Equal(t, 11.0, hit.Price, "bar series reports the close")
	require.Equal(t, core.LogicalIndex(4), hit.Point.Index)

	hit, ok = res.Series["line"]
	require.True(t, ok)
	require.Equal(t, 104.0, hit.Price)
}

func TestLocator_GapSnapsLeft(t *testing.T) {
	ts, sources := buildSources(t)
	locator := NewLocator(ts, SnapNearestLeft)

	// Index 5 is a gap in the line series; nearest left is index 4.
	res := locator.Locate(ts.IndexToCoordinate(5), sources)

	hit, ok := res.Series["line"]
	require.True(t, ok)
	require.Equal(t, core.LogicalIndex(4), hit.Point.Index)
	require.Equal(t, 104.0, hit.Price)
}

func TestLocator_SnapExactSkipsGaps(t *testing.T) {
	ts, sources := buildSources(t)
	locator := NewLocator(ts, SnapExact)

	res := locator.Locate(ts.IndexToCoordinate(5), sources)

	_, ok := res.Series["line"]
	require.False(t, ok)
	_, ok = res.Series["bars"]
	require.True(t, ok)
}

func TestLocator_ProjectsThroughPriceScale(t *testing.T) {
	ts, sources := buildSources(t)
	locator := NewLocator(ts, SnapNearestLeft)

	res := locator.Locate(ts.IndexToCoordinate(0), sources)

	hit := res.Series["bars"]
	require.InDelta(t, sources["bars"].Scale.PriceToCoordinate(11), hit.Y, 1e-9)
}

func TestLocator_EmptySourceSkipped(t *testing.T) {
	ts, sources := buildSources(t)
	sources["empty"] = Source{Store: series.NewStore(core.SingleValueExtractor{})}
	locator := NewLocator(ts, SnapNearestLeft)

	res := locator.Locate(250, sources)
	_, ok := res.Series["empty"]
	require.False(t, ok)
}
