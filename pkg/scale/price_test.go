package scale

import (
	"testing"

	"github.com/raykavin/lightchart/pkg/core"
	"github.com/stretchr/testify/require"
)

func TestPriceScale_RoundTripLinear(t *testing.T) {
	s := NewPriceScale()
	s.SetHeight(300)
	s.SetAutoRange(core.PriceRange{Min: 10, Max: 110})

	for y := 0.0; y <= 300; y += 7.5 {
		price := s.CoordinateToPrice(y)
		require.InDelta(t, y, s.PriceToCoordinate(price), 1e-9, "pixel %v", y)
	}
}

func TestPriceScale_RoundTripLog(t *testing.T) {
	s := NewPriceScale(WithLogScale())
	s.SetHeight(300)
	s.SetAutoRange(core.PriceRange{Min: 0.5, Max: 5000})

	for y := 0.0; y <= 300; y += 12.5 {
		price := s.CoordinateToPrice(y)
		require.InDelta(t, y, s.PriceToCoordinate(price), 1e-6, "pixel %v", y)
	}
}

func TestPriceScale_LogHandlesNonPositivePrices(t *testing.T) {
	s := NewPriceScale(WithLogScale())
	s.SetHeight(200)
	s.SetAutoRange(core.PriceRange{Min: -50, Max: 50})

	y := s.PriceToCoordinate(0)
	require.Greater(t, y, 0.0)
	require.Less(t, y, 200.0)
	require.InDelta(t, 0.0, s.CoordinateToPrice(y), 1e-9)
}

func TestPriceScale_MonotonicTopDown(t *testing.T) {
	s := NewPriceScale()
	s.SetHeight(100)
	s.SetAutoRange(core.PriceRange{Min: 0, Max: 10})

	// Higher prices map to smaller y (top of pane).
	prev := s.PriceToCoordinate(0)
	for p := 1.0; p <= 10; p++ {
		y := s.PriceToCoordinate(p)
		require.Less(t, y, prev)
		prev = y
	}
}

func TestPriceScale_DegenerateSinglePoint(t *testing.T) {
	s := NewPriceScale()
	s.SetHeight(150)
	s.SetAutoRange(core.PriceRange{Min: 45, Max: 45})

	require.Greater(t, s.Range().Span(), 0.0, "flat data must still get a drawable range")

	y := s.PriceToCoordinate(45)
	require.GreaterOrEqual(t, y, 0.0)
	require.LessOrEqual(t, y, 150.0)
}

func TestPriceScale_DegenerateZeroValue(t *testing.T) {
	s := NewPriceScale()
	s.SetHeight(100)
	s.SetAutoRange(core.PriceRange{Min: 0, Max: 0})

	require.Greater(t, s.Range().Span(), 0.0)
}

func TestPriceScale_MarginsExpandRange(t *testing.T) {
	s := NewPriceScale(WithMargins(Margins{Top: 0.2, Bottom: 0.1}))
	s.SetHeight(100)
	s.SetAutoRange(core.PriceRange{Min: 100, Max: 200})

	r := s.Range()
	require.InDelta(t, 90.0, r.Min, 1e-9)
	require.InDelta(t, 220.0, r.Max, 1e-9)

	// Data bounds stay strictly inside the pane.
	require.Greater(t, s.PriceToCoordinate(100), 0.0)
	require.Less(t, s.PriceToCoordinate(200), 100.0)
}

func TestPriceScale_SetRangeDisablesAutoScale(t *testing.T) {
	s := NewPriceScale()
	s.SetHeight(100)
	require.True(t, s.AutoScale())

	s.SetRange(core.PriceRange{Min: 5, Max: 15})
	require.False(t, s.AutoScale())
	require.Equal(t, core.PriceRange{Min: 5, Max: 15}, s.Range())
}

func TestPriceScale_UnionOfSeriesRanges(t *testing.T) {
	a := core.PriceRange{Min: 10, Max: 20}
	b := core.PriceRange{Min: 5, Max: 15}

	u := a.Union(b)
	require.Equal(t, core.PriceRange{Min: 5, Max: 20}, u)
}
