// Package feed supplies candles to a chart from files and exchanges.
package feed

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/raykavin/lightchart/pkg/core"
	"github.com/samber/lo"
	"github.com/schollz/progressbar/v3"
	str2duration "github.com/xhit/go-str2duration/v2"
)

var (
	// ErrInsufficientData is returned when there is not enough data to fulfill a request
	ErrInsufficientData = errors.New("insufficient data")

	// defaultHeaderMap defines the standard CSV column mapping
	defaultHeaderMap = map[string]int{
		"time": 0, "open": 1, "close": 2, "low": 3, "high": 4, "volume": 5,
	}
)

// PairFeed represents data for a specific trading pair
type PairFeed struct {
	Pair      string
	File      string
	Timeframe string
}

// CSVFeed loads candle history for one or more pairs from CSV files.
type CSVFeed struct {
	Timeframe       string
	CandlePairKline map[string][]core.Candle
}

// NewCSVFeed reads every pair file and, when a pair's source timeframe
// is finer than the target, resamples it. A progress bar tracks the
// parse because daily tick exports get large.
func NewCSVFeed(targetTimeframe string, feeds ...PairFeed) (*CSVFeed, error) {
	csvFeed := &CSVFeed{
		Timeframe:       targetTimeframe,
		CandlePairKline: make(map[string][]core.Candle),
	}

	for _, feed := range feeds {
		candles, err := parseFile(feed)
		if err != nil {
			return nil, fmt.Errorf("feed %s: %w", feed.Pair, err)
		}

		sourceTimeframe := feed.Timeframe
		if sourceTimeframe == "" {
			sourceTimeframe = targetTimeframe
		}

		if sourceTimeframe != targetTimeframe {
			candles, err = resampleCandles(candles, sourceTimeframe, targetTimeframe)
			if err != nil {
				return nil, fmt.Errorf("feed %s: %w", feed.Pair, err)
			}
		}

		csvFeed.CandlePairKline[feed.Pair] = candles
	}

	return csvFeed, nil
}

// Pairs returns the loaded pair names.
func (f *CSVFeed) Pairs() []string {
	return lo.Keys(f.CandlePairKline)
}

// Candles returns the full loaded history of a pair.
func (f *CSVFeed) Candles(pair string) ([]core.Candle, error) {
	candles, ok := f.CandlePairKline[pair]
	if !ok || len(candles) == 0 {
		return nil, fmt.Errorf("pair %s: %w", pair, ErrInsufficientData)
	}
	return candles, nil
}

// CandlesByLimit returns the last limit candles of a pair.
func (f *CSVFeed) CandlesByLimit(pair string, limit int) ([]core.Candle, error) {
	candles, err := f.Candles(pair)
	if err != nil {
		return nil, err
	}
	if len(candles) < limit {
		return nil, fmt.Errorf("pair %s: %w", pair, ErrInsufficientData)
	}
	return candles[len(candles)-limit:], nil
}

// Stream replays a pair's candles to a subscriber, simulating a live
// feed. Used by the demo server; a zero interval delivers everything
// in one synchronous burst.
func (f *CSVFeed) Stream(ctx context.Context, pair string, interval time.Duration, subscriber core.CandleSubscriber) error {
	candles, err := f.Candles(pair)
	if err != nil {
		return err
	}

	for _, candle := range candles {
		if interval > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(interval):
			}
		}
		subscriber.OnCandle(candle)
	}

	return nil
}

func parseFile(feed PairFeed) ([]core.Candle, error) {
	csvFile, err := os.Open(feed.File)
	if err != nil {
		return nil, err
	}
	defer csvFile.Close()

	csvLines, err := csv.NewReader(csvFile).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(csvLines) == 0 {
		return nil, ErrInsufficientData
	}

	headerMap, additionalHeaders, hasCustomHeaders := parseHeaders(csvLines[0])
	if hasCustomHeaders {
		csvLines = csvLines[1:]
	}

	bar := progressbar.Default(int64(len(csvLines)), feed.Pair)
	candles := make([]core.Candle, 0, len(csvLines))
	for _, line := range csvLines {
		candle, err := parseCandleFromLine(line, headerMap, additionalHeaders, hasCustomHeaders, feed.Pair)
		if err != nil {
			return nil, err
		}
		candles = append(candles, candle)
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	return candles, nil
}

// parseHeaders analyzes CSV headers and returns an index map
func parseHeaders(headers []string) (headerMap map[string]int, additional []string, hasCustomHeaders bool) {
	// A numeric first field means the file has no header row.
	if _, err := strconv.Atoi(headers[0]); err == nil {
		return defaultHeaderMap, nil, false
	}

	headerMap = make(map[string]int)
	for index, header := range headers {
		headerMap[header] = index
		if _, exists := defaultHeaderMap[header]; !exists {
			additional = append(additional, header)
		}
	}

	return headerMap, additional, true
}

// parseCandleFromLine parses a CSV line and creates a candle
func parseCandleFromLine(line []string, headerMap map[string]int, additionalHeaders []string, hasCustomHeaders bool, pair string) (core.Candle, error) {
	timestamp, err := strconv.Atoi(line[headerMap["time"]])
	if err != nil {
		return core.Candle{}, err
	}

	candle := core.Candle{
		Time:      time.Unix(int64(timestamp), 0).UTC(),
		UpdatedAt: time.Unix(int64(timestamp), 0).UTC(),
		Pair:      pair,
		Complete:  true,
	}

	if candle.Open, err = strconv.ParseFloat(line[headerMap["open"]], 64); err != nil {
		return core.Candle{}, err
	}

	if candle.Close, err = strconv.ParseFloat(line[headerMap["close"]], 64); err != nil {
		return core.Candle{}, err
	}

	if candle.Low, err = strconv.ParseFloat(line[headerMap["low"]], 64); err != nil {
		return core.Candle{}, err
	}

	if candle.High, err = strconv.ParseFloat(line[headerMap["high"]], 64); err != nil {
		return core.Candle{}, err
	}

	if candle.Volume, err = strconv.ParseFloat(line[headerMap["volume"]], 64); err != nil {
		return core.Candle{}, err
	}

	if hasCustomHeaders {
		candle.Metadata = make(map[string]float64, len(additionalHeaders))
		for _, header := range additionalHeaders {
			value, err := strconv.ParseFloat(line[headerMap[header]], 64)
			if err != nil {
				return core.Candle{}, err
			}
			candle.Metadata[header] = value
		}
	}

	return candle, nil
}

// resampleCandles aggregates candles from a finer timeframe into the
// target one. Candle times snap to the start of their target bucket.
func resampleCandles(candles []core.Candle, sourceTimeframe, targetTimeframe string) ([]core.Candle, error) {
	source, err := str2duration.ParseDuration(sourceTimeframe)
	if err != nil {
		return nil, err
	}
	target, err := str2duration.ParseDuration(targetTimeframe)
	if err != nil {
		return nil, err
	}
	if source > target {
		return nil, fmt.Errorf("cannot resample %s into finer %s", sourceTimeframe, targetTimeframe)
	}

	out := make([]core.Candle, 0, len(candles)*int(source/target+1))
	var current *core.Candle

	for _, c := range candles {
		bucket := c.Time.Truncate(target)

		if current == nil || !current.Time.Equal(bucket) {
			if current != nil {
				out = append(out, *current)
			}
			started := c
			started.Time = bucket
			started.UpdatedAt = c.Time
			current = &started
			continue
		}

		current.Close = c.Close
		current.Volume += c.Volume
		current.UpdatedAt = c.Time
		if c.High > current.High {
			current.High = c.High
		}
		if c.Low < current.Low {
			current.Low = c.Low
		}
	}

	if current != nil {
		out = append(out, *current)
	}

	return out, nil
}
