package feed

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/raykavin/lightchart/pkg/core"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "candles.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCSVFeedHeaderless(t *testing.T) {
	file := writeCSV(t, "1514764800,100,105,99,106,1000\n1514768400,105,103,102,107,900\n")

	feed, err := NewCSVFeed("1h", PairFeed{Pair: "BTCUSDT", File: file, Timeframe: "1h"})
	require.NoError(t, err)

	candles, err := feed.Candles("BTCUSDT")
	require.NoError(t, err)
	require.Len(t, candles, 2)
	require.Equal(t, int64(1514764800), candles[0].Time.Unix())
	require.InDelta(t, 100.0, candles[0].Open, 1e-9)
	require.InDelta(t, 105.0, candles[0].Close, 1e-9)
	require.InDelta(t, 99.0, candles[0].Low, 1e-9)
	require.InDelta(t, 106.0, candles[0].High, 1e-9)
	require.True(t, candles[0].Complete)
}

func TestCSVFeedCustomHeaders(t *testing.T) {
	file := writeCSV(t,
		"time,open,close,low,high,volume,trades\n"+
			"1514764800,100,105,99,106,1000,42\n")

	feed, err := NewCSVFeed("1h", PairFeed{Pair: "BTCUSDT", File: file, Timeframe: "1h"})
	require.NoError(t, err)

	candles, err := feed.Candles("BTCUSDT")
	require.NoError(t, err)
	require.Len(t, candles, 1)
	require.InDelta(t, 42.0, candles[0].Metadata["trades"], 1e-9)
}

func TestCSVFeedResample(t *testing.T) {
	// Four 30m candles spanning two hours.
	file := writeCSV(t,
		"1514764800,100,101,99,102,10\n"+ // 00:00
			"1514766600,101,103,100,104,20\n"+ // 00:30
			"1514768400,103,102,101,105,30\n"+ // 01:00
			"1514770200,102,106,100,107,40\n") // 01:30

	feed, err := NewCSVFeed("1h", PairFeed{Pair: "BTCUSDT", File: file, Timeframe: "30m"})
	require.NoError(t, err)

	candles, err := feed.Candles("BTCUSDT")
	require.NoError(t, err)
	require.Len(t, candles, 2)

	first := candles[0]
	require.Equal(t, int64(1514764800), first.Time.Unix())
	require.InDelta(t, 100.0, first.Open, 1e-9)
	require.InDelta(t, 103.0, first.Close, 1e-9)
	require.InDelta(t, 99.0, first.Low, 1e-9)
	require.InDelta(t, 104.0, first.High, 1e-9)
	require.InDelta(t, 30.0, first.Volume, 1e-9)

	second := candles[1]
	require.Equal(t, int64(1514768400), second.Time.Unix())
	require.InDelta(t, 103.0, second.Open, 1e-9)
	require.InDelta(t, 106.0, second.Close, 1e-9)
	require.InDelta(t, 70.0, second.Volume, 1e-9)
}

func TestCSVFeedResampleRejectsFinerTarget(t *testing.T) {
	file := writeCSV(t, "1514764800,100,105,99,106,1000\n")

	_, err := NewCSVFeed("30m", PairFeed{Pair: "BTCUSDT", File: file, Timeframe: "1h"})
	require.Error(t, err)
}

func TestCSVFeedCandlesByLimit(t *testing.T) {
	file := writeCSV(t,
		"1514764800,100,101,99,102,10\n"+
			"1514768400,101,102,100,103,10\n"+
			"1514772000,102,103,101,104,10\n")

	feed, err := NewCSVFeed("1h", PairFeed{Pair: "BTCUSDT", File: file, Timeframe: "1h"})
	require.NoError(t, err)

	last, err := feed.CandlesByLimit("BTCUSDT", 2)
	require.NoError(t, err)
	require.Len(t, last, 2)
	require.Equal(t, int64(1514768400), last[0].Time.Unix())

	_, err = feed.CandlesByLimit("BTCUSDT", 10)
	require.ErrorIs(t, err, ErrInsufficientData)

	_, err = feed.Candles("ETHUSDT")
	require.ErrorIs(t, err, ErrInsufficientData)
}

type collectSubscriber struct {
	candles []core.Candle
}

func (c *collectSubscriber) OnCandle(candle core.Candle) {
	c.candles = append(c.candles, candle)
}

func TestCSVFeedStream(t *testing.T) {
	file := writeCSV(t,
		"1514764800,100,101,99,102,10\n"+
			"1514768400,101,102,100,103,10\n")

	feed, err := NewCSVFeed("1h", PairFeed{Pair: "BTCUSDT", File: file, Timeframe: "1h"})
	require.NoError(t, err)

	sub := &collectSubscriber{}
	require.NoError(t, feed.Stream(context.Background(), "BTCUSDT", 0, sub))
	require.Len(t, sub.candles, 2)
	require.Equal(t, int64(1514764800), sub.candles[0].Time.Unix())
}

func TestReturnsAndSummary(t *testing.T) {
	start := time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC)
	candles := []core.Candle{
		{Pair: "BTCUSDT", Time: start, Close: 100, Volume: 1},
		{Pair: "BTCUSDT", Time: start.Add(time.Hour), Close: 110, Volume: 2},
		{Pair: "BTCUSDT", Time: start.Add(2 * time.Hour), Close: 99, Volume: 3},
	}

	returns := Returns(candles)
	require.Len(t, returns, 2)
	require.InDelta(t, 10.0, returns[0], 1e-9)
	require.InDelta(t, -10.0, returns[1], 1e-9)

	out := Summary("BTCUSDT", candles)
	require.Contains(t, out, "BTCUSDT")
	require.Contains(t, out, "2018-01-01 00:00")
}
