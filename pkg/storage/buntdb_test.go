package storage

import (
	"testing"
	"time"

	"github.com/raykavin/lightchart/pkg/core"
	"github.com/stretchr/testify/require"
)

func candleAt(pair string, t time.Time, close float64, complete bool) core.Candle {
	return core.Candle{
		Pair:      pair,
		Time:      t,
		UpdatedAt: t,
		Open:      close - 1,
		Close:     close,
		Low:       close - 2,
		High:      close + 2,
		Volume:    100,
		Complete:  complete,
	}
}

func TestBuntStorageRoundTrip(t *testing.T) {
	store, err := FromMemory()
	require.NoError(t, err)
	defer store.Close()

	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		candle := candleAt("BTCUSDT", start.Add(time.Duration(i)*time.Hour), 100+float64(i), i < 4)
		require.NoError(t, store.SaveCandle(candle))
	}

	// Different pair must not leak into the result.
	require.NoError(t, store.SaveCandle(candleAt("ETHUSDT", start, 50, true)))

	candles, err := store.Candles("BTCUSDT")
	require.NoError(t, err)
	require.Len(t, candles, 5)
	for i := 1; i < len(candles); i++ {
		require.True(t, candles[i-1].Time.Before(candles[i].Time))
	}
	require.InDelta(t, 100.0, candles[0].Close, 1e-9)
}

func TestBuntStorageSaveReplacesSameTime(t *testing.T) {
	store, err := FromMemory()
	require.NoError(t, err)
	defer store.Close()

	ts := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.SaveCandle(candleAt("BTCUSDT", ts, 100, false)))
	require.NoError(t, store.SaveCandle(candleAt("BTCUSDT", ts, 105, true)))

	candles, err := store.Candles("BTCUSDT")
	require.NoError(t, err)
	require.Len(t, candles, 1)
	require.InDelta(t, 105.0, candles[0].Close, 1e-9)
	require.True(t, candles[0].Complete)
}

func TestBuntStorageFilters(t *testing.T) {
	store, err := FromMemory()
	require.NoError(t, err)
	defer store.Close()

	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		candle := candleAt("BTCUSDT", start.Add(time.Duration(i)*time.Hour), 100+float64(i), i != 3)
		require.NoError(t, store.SaveCandle(candle))
	}

	complete, err := store.Candles("BTCUSDT", WithCompleteOnly())
	require.NoError(t, err)
	require.Len(t, complete, 3)

	windowed, err := store.Candles("BTCUSDT", WithTimeRange(
		start.Add(time.Hour).Unix(),
		start.Add(2*time.Hour).Unix(),
	))
	require.NoError(t, err)
	require.Len(t, windowed, 2)
}
