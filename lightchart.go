// Package lightchart is a financial charting engine: it maintains the
// mapping between calendar time, dense logical indices and pixel
// coordinates for any number of series, and answers the pan/zoom,
// auto-scale and crosshair queries an embedding application needs to
// render an interactive chart. Pixel drawing, DOM events and theming
// stay outside; this package produces coordinates, not pictures.
package lightchart

import (
	"fmt"
	"sync"

	"github.com/raykavin/lightchart/pkg/chart"
	"github.com/raykavin/lightchart/pkg/core"
	"github.com/raykavin/lightchart/pkg/crosshair"
	"github.com/raykavin/lightchart/pkg/indicator"
	"github.com/raykavin/lightchart/pkg/logger"
	"github.com/raykavin/lightchart/pkg/scale"
	"github.com/raykavin/lightchart/pkg/timeindex"
)

// Chart is the embeddable chart engine. All methods are safe for
// concurrent use: the internal engine is single-threaded and the chart
// serializes access, so streaming feeds can deliver candles from their
// own goroutines.
type Chart struct {
	mu sync.Mutex

	log      logger.Logger
	behavior core.TimeBehavior

	width  float64
	height float64

	timeScaleOptions  []scale.TimeScaleOption
	priceScaleOptions []scale.PriceScaleOption

	coordinator *chart.Coordinator

	// dataframes collect completed candles per pair for indicators
	dataframes map[string]*core.Dataframe
}

// New creates a chart engine with the provided options.
func New(options ...Option) *Chart {
	c := &Chart{
		log:        logger.Nop(),
		behavior:   core.NewUnixBehavior(""),
		width:      800,
		height:     400,
		dataframes: make(map[string]*core.Dataframe),
	}

	for _, option := range options {
		option(c)
	}

	c.coordinator = chart.NewCoordinator(c.log, c.behavior, scale.NewTimeScale(c.timeScaleOptions...))
	c.coordinator.EnsurePriceScale(chart.DefaultPriceScaleID, c.priceScaleOptions...)
	c.coordinator.Resize(c.width, c.height)

	return c
}

// Coordinator exposes the scale engine for rendering collaborators.
func (c *Chart) Coordinator() *chart.Coordinator { return c.coordinator }

// Behavior returns the time behavior raw times are converted with.
func (c *Chart) Behavior() core.TimeBehavior { return c.behavior }

// Index returns the shared timeline index.
func (c *Chart) Index() *timeindex.Index { return c.coordinator.Index() }

// AddCandleSeries registers an OHLC series. An empty scaleID attaches
// it to the default price scale.
func (c *Chart) AddCandleSeries(id, scaleID string) error {
	return c.addSeries(id, core.KindBar, scaleID)
}

// AddLineSeries registers a single-value line series.
func (c *Chart) AddLineSeries(id, scaleID string) error {
	return c.addSeries(id, core.KindLine, scaleID)
}

// AddHistogramSeries registers a histogram series.
func (c *Chart) AddHistogramSeries(id, scaleID string) error {
	return c.addSeries(id, core.KindHistogram, scaleID)
}

// AddBaselineSeries registers a baseline series.
func (c *Chart) AddBaselineSeries(id, scaleID string) error {
	return c.addSeries(id, core.KindBaseline, scaleID)
}

func (c *Chart) addSeries(id string, kind core.ValueKind, scaleID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := c.coordinator.AddSeries(id, kind, scaleID)
	return err
}

// RemoveSeries drops a series and its time points from the timeline.
func (c *Chart) RemoveSeries(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.coordinator.RemoveSeries(id)
	delete(c.dataframes, id)
}

// SetData replaces a series' full content.
func (c *Chart) SetData(id string, points []core.DataPoint) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.coordinator.SetSeriesData(id, points)
}

// Update applies one streaming point: replace the current bar or
// append a new one.
func (c *Chart) Update(id string, point core.DataPoint) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.coordinator.UpdateSeries(id, point)
}

// SetCandles replaces a candle series' content from OHLCV candles,
// converting times through the chart's time behavior.
func (c *Chart) SetCandles(id string, candles []core.Candle) error {
	points := make([]core.DataPoint, len(candles))
	for i, candle := range candles {
		points[i] = core.DataPoint{
			Time:  c.behavior.ToTimePoint(candle.Time),
			Value: candle.Bar(),
		}
	}

	if err := c.SetData(id, points); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	df := core.NewDataframe(id)
	for _, candle := range candles {
		df.AppendCandle(candle)
	}
	c.dataframes[id] = df
	return nil
}

// OnCandle routes a streaming candle to the series named after its
// pair, registering the series on first sight. Incomplete candles
// update the current bar in place; completed candles are appended to
// the pair's dataframe as well. Implements core.CandleSubscriber.
func (c *Chart) OnCandle(candle core.Candle) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.coordinator.SeriesStore(candle.Pair); !ok {
		if _, err := c.coordinator.AddSeries(candle.Pair, core.KindBar, ""); err != nil {
			c.log.WithError(err).WithField("pair", candle.Pair).Error("failed to register series")
			return
		}
	}

	point := core.DataPoint{
		Time:  c.behavior.ToTimePoint(candle.Time),
		Value: candle.Bar(),
	}
	if err := c.coordinator.UpdateSeries(candle.Pair, point); err != nil {
		c.log.WithError(err).WithField("pair", candle.Pair).Warn("dropped out-of-order candle")
		return
	}

	if candle.Complete {
		df, ok := c.dataframes[candle.Pair]
		if !ok {
			df = core.NewDataframe(candle.Pair)
			c.dataframes[candle.Pair] = df
		}
		df.AppendCandle(candle)
	}
}

// Dataframe returns the collected candle history of a pair.
func (c *Chart) Dataframe(pair string) (*core.Dataframe, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	df, ok := c.dataframes[pair]
	return df, ok
}

// ApplyIndicator computes an indicator over a pair's candle history
// and attaches each metric as a line series. Overlay indicators share
// the pair's price scale; the rest get their own pane scale.
func (c *Chart) ApplyIndicator(pair string, ind indicator.Indicator) error {
	df, ok := c.Dataframe(pair)
	if !ok {
		return fmt.Errorf("pair %q: %w", pair, core.ErrNotFound)
	}

	ind.Load(df)

	scaleID := chart.DefaultPriceScaleID
	if !ind.Overlay() {
		scaleID = ind.Name()
	}

	for _, metric := range ind.Metrics() {
		seriesID := fmt.Sprintf("%s:%s", pair, metric.ID(ind.Name()))
		if err := c.AddLineSeries(seriesID, scaleID); err != nil {
			return err
		}

		points := make([]core.DataPoint, len(metric.Values))
		for i, v := range metric.Values {
			points[i] = core.DataPoint{
				Time:  c.behavior.ToTimePoint(metric.Time[i]),
				Value: core.LineValue{Price: v},
			}
		}
		if err := c.SetData(seriesID, points); err != nil {
			return err
		}
	}

	return nil
}

// Resize applies new pane dimensions.
func (c *Chart) Resize(width, height float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.coordinator.Resize(width, height)
}

// VisibleLogicalRange returns the displayed logical-index window.
func (c *Chart) VisibleLogicalRange() core.VisibleRange {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.coordinator.VisibleRange()
}

// SetVisibleRange displays the inclusive index window [from, to],
// clamped to valid bounds.
func (c *Chart) SetVisibleRange(from, to float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.coordinator.SetVisibleRange(from, to)
}

// Scroll pans by a delta in index units.
func (c *Chart) Scroll(indexDelta float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.coordinator.Scroll(indexDelta)
}

// ScrollPixels pans by a pixel delta at the current zoom level.
func (c *Chart) ScrollPixels(dx float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.coordinator.ScrollPixels(dx)
}

// Zoom rescales around an anchor pixel, keeping the index under the
// anchor fixed.
func (c *Chart) Zoom(anchorX, factor float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.coordinator.Zoom(anchorX, factor)
}

// LogicalToCoordinate converts a fractional logical index to a pixel.
func (c *Chart) LogicalToCoordinate(index float64) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.coordinator.TimeScale().FractionalIndexToCoordinate(index)
}

// CoordinateToLogical converts a pixel to a fractional logical index.
func (c *Chart) CoordinateToLogical(x float64) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.coordinator.TimeScale().CoordinateToIndex(x)
}

// PriceToCoordinate projects a price through a pane scale.
func (c *Chart) PriceToCoordinate(scaleID string, price float64) (float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ps := c.coordinator.PriceScale(scaleID)
	if ps == nil {
		return 0, fmt.Errorf("price scale %q: %w", scaleID, core.ErrNotFound)
	}
	return ps.PriceToCoordinate(price), nil
}

// CoordinateToPrice converts a pane pixel back to a price.
func (c *Chart) CoordinateToPrice(scaleID string, y float64) (float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ps := c.coordinator.PriceScale(scaleID)
	if ps == nil {
		return 0, fmt.Errorf("price scale %q: %w", scaleID, core.ErrNotFound)
	}
	return ps.CoordinateToPrice(y), nil
}

// SubscribeVisibleRangeChange registers a synchronous range observer.
func (c *Chart) SubscribeVisibleRangeChange(consumer chart.RangeConsumer) (unsubscribe func()) {
	return c.coordinator.SubscribeVisibleRangeChange(consumer)
}

// Crosshair resolves a pointer pixel position to the hovered index and
// per-series nearest values.
func (c *Chart) Crosshair(x float64) crosshair.Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.coordinator.Crosshair(x)
}

// Invalidations returns the dirty mask a renderer drains per frame.
func (c *Chart) Invalidations() *chart.Invalidation {
	return c.coordinator.Invalidations()
}
