package lightchart

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/raykavin/lightchart/pkg/core"
	"github.com/raykavin/lightchart/pkg/indicator"
)

func streamCandle(t time.Time, close float64, complete bool) core.Candle {
	return core.Candle{
		Pair:      "BTCUSDT",
		Time:      t,
		UpdatedAt: t,
		Open:      close - 1,
		Close:     close,
		Low:       close - 2,
		High:      close + 2,
		Volume:    10,
		Complete:  complete,
	}
}

func TestChartOnCandleRegistersSeries(t *testing.T) {
	chart := New()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		chart.OnCandle(streamCandle(start.Add(time.Duration(i)*time.Hour), 100+float64(i), true))
	}
	// Current bar still forming.
	chart.OnCandle(streamCandle(start.Add(3*time.Hour), 104, false))

	df, ok := chart.Dataframe("BTCUSDT")
	require.True(t, ok)
	require.Equal(t, 3, df.Close.Length())

	// The incomplete bar still occupies a logical index.
	visible := chart.VisibleLogicalRange()
	require.InDelta(t, 3.0, visible.To, 1e-9)

	// Replacing the forming bar must not grow the timeline.
	chart.OnCandle(streamCandle(start.Add(3*time.Hour), 105, false))
	require.InDelta(t, 3.0, chart.VisibleLogicalRange().To, 1e-9)
}

func TestChartOnCandleDropsOutOfOrder(t *testing.T) {
	chart := New()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	chart.OnCandle(streamCandle(start.Add(time.Hour), 100, true))
	chart.OnCandle(streamCandle(start, 99, true))

	df, ok := chart.Dataframe("BTCUSDT")
	require.True(t, ok)
	require.Equal(t, 1, df.Close.Length())
	require.InDelta(t, 100.0, df.Close.Last(0), 1e-9)
}

func TestChartSetCandlesAndIndicator(t *testing.T) {
	chart := New()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	candles := make([]core.Candle, 30)
	for i := range candles {
		candles[i] = streamCandle(start.Add(time.Duration(i)*time.Hour), 100+float64(i), true)
	}

	require.NoError(t, chart.AddCandleSeries("BTCUSDT", ""))
	require.NoError(t, chart.SetCandles("BTCUSDT", candles))
	require.InDelta(t, 29.0, chart.VisibleLogicalRange().To, 1e-9)

	require.NoError(t, chart.ApplyIndicator("BTCUSDT", indicator.SMA(9, "#ff9800")))

	// Overlay metrics land on the default price scale and project
	// within the pane.
	y, err := chart.PriceToCoordinate("right", 120)
	require.NoError(t, err)
	require.Greater(t, y, 0.0)
	require.Less(t, y, 400.0)

	// Unknown pair fails.
	require.ErrorIs(t, chart.ApplyIndicator("ETHUSDT", indicator.SMA(9, "#ff9800")), core.ErrNotFound)
}

func TestChartPriceScaleLookupErrors(t *testing.T) {
	chart := New()

	_, err := chart.PriceToCoordinate("missing", 10)
	require.ErrorIs(t, err, core.ErrNotFound)

	_, err = chart.CoordinateToPrice("missing", 10)
	require.ErrorIs(t, err, core.ErrNotFound)
}

func TestChartCoordinateRoundTrip(t *testing.T) {
	chart := New(WithSize(620, 300))
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	candles := make([]core.Candle, 31)
	for i := range candles {
		candles[i] = streamCandle(start.AddDate(0, 0, i), 100+float64(i), true)
	}

	require.NoError(t, chart.AddCandleSeries("BTCUSDT", ""))
	require.NoError(t, chart.SetCandles("BTCUSDT", candles))

	chart.SetVisibleRange(0, 30)
	require.InDelta(t, 0.0, chart.CoordinateToLogical(chart.LogicalToCoordinate(0)), 1e-9)

	hit := chart.Crosshair(chart.LogicalToCoordinate(10))
	require.Equal(t, core.LogicalIndex(10), hit.Index)
	bar, ok := hit.Series["BTCUSDT"]
	require.True(t, ok)
	require.InDelta(t, 110.0, bar.Price, 1e-9)
}

func TestChartVisibleRangeSubscription(t *testing.T) {
	chart := New()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	var got []core.VisibleRange
	unsubscribe := chart.SubscribeVisibleRangeChange(func(r core.VisibleRange) {
		got = append(got, r)
	})

	chart.OnCandle(streamCandle(start, 100, true))
	require.NotEmpty(t, got)

	seen := len(got)
	unsubscribe()
	chart.OnCandle(streamCandle(start.Add(time.Hour), 101, true))
	require.Len(t, got, seen)
}
