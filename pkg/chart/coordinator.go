// Package chart orchestrates the scale engine: it owns the shared
// timeline index, the series registry and the coordinate scales, and
// keeps them consistent across data mutations, viewport resizes and
// pan/zoom gestures.
package chart

import (
	"fmt"
	"math"

	"github.com/raykavin/lightchart/pkg/core"
	"github.com/raykavin/lightchart/pkg/crosshair"
	"github.com/raykavin/lightchart/pkg/logger"
	"github.com/raykavin/lightchart/pkg/scale"
	"github.com/raykavin/lightchart/pkg/series"
	"github.com/raykavin/lightchart/pkg/timeindex"
)

// DefaultPriceScaleID is the pane scale series attach to unless told
// otherwise.
const DefaultPriceScaleID = "right"

type seriesEntry struct {
	store   *series.Store
	scaleID string
}

// Coordinator is the single synchronization point of one chart
// instance. All recomputation runs synchronously inside the mutating
// call: once SetSeriesData or UpdateSeries returns, every coordinate
// query observes the fully updated index and scales. It is not safe
// for concurrent use; the chart's event loop owns it.
type Coordinator struct {
	log      logger.Logger
	behavior core.TimeBehavior

	index     *timeindex.Index
	timeScale *scale.TimeScale

	priceScales map[string]*scale.PriceScale
	paneIDs     map[string]int64
	nextPaneID  int64

	entries map[string]*seriesEntry
	order   []string

	locator      *crosshair.Locator
	rangeFeed    *RangeFeed
	invalidation *Invalidation

	lastPublished core.VisibleRange
}

// NewCoordinator wires an empty chart engine. The time scale is
// injected so the facade can configure zoom bounds and right offset.
func NewCoordinator(log logger.Logger, behavior core.TimeBehavior, timeScale *scale.TimeScale) *Coordinator {
	if log == nil {
		log = logger.Nop()
	}
	if behavior == nil {
		behavior = core.NewUnixBehavior("")
	}

	c := &Coordinator{
		log:          log,
		behavior:     behavior,
		index:        timeindex.New(),
		timeScale:    timeScale,
		priceScales:  make(map[string]*scale.PriceScale),
		paneIDs:      make(map[string]int64),
		entries:      make(map[string]*seriesEntry),
		rangeFeed:    NewRangeFeed(),
		invalidation: NewInvalidation(),
	}
	c.locator = crosshair.NewLocator(timeScale, crosshair.SnapNearestLeft)
	return c
}

// Behavior returns the time behavior the chart converts raw times with.
func (c *Coordinator) Behavior() core.TimeBehavior { return c.behavior }

// TimeScale returns the horizontal scale.
func (c *Coordinator) TimeScale() *scale.TimeScale { return c.timeScale }

// Index returns the shared timeline index.
func (c *Coordinator) Index() *timeindex.Index { return c.index }

// Invalidations returns the dirty mask the renderer drains per frame.
func (c *Coordinator) Invalidations() *Invalidation { return c.invalidation }

// EnsurePriceScale returns the pane scale with the given id, creating
// it on first use.
func (c *Coordinator) EnsurePriceScale(id string, options ...scale.PriceScaleOption) *scale.PriceScale {
	if ps, ok := c.priceScales[id]; ok {
		return ps
	}
	ps := scale.NewPriceScale(options...)
	c.priceScales[id] = ps
	c.paneIDs[id] = c.nextPaneID
	c.nextPaneID++
	return ps
}

// PriceScale returns the pane scale with the given id, or nil.
func (c *Coordinator) PriceScale(id string) *scale.PriceScale {
	return c.priceScales[id]
}

// AddSeries registers a series of the given value kind on a pane
// scale. The extractor capability is fixed here, at creation time.
func (c *Coordinator) AddSeries(id string, kind core.ValueKind, scaleID string) (*series.Store, error) {
	if _, exists := c.entries[id]; exists {
		return nil, fmt.Errorf("series %q already registered", id)
	}
	if scaleID == "" {
		scaleID = DefaultPriceScaleID
	}

	c.EnsurePriceScale(scaleID)
	store := series.NewStore(core.ExtractorFor(kind))
	c.entries[id] = &seriesEntry{store: store, scaleID: scaleID}
	c.order = append(c.order, id)

	c.log.WithField("series", id).Debug("series registered")
	return store, nil
}

// RemoveSeries drops a series and rebuilds the timeline without its
// time points.
func (c *Coordinator) RemoveSeries(id string) {
	if _, ok := c.entries[id]; !ok {
		return
	}
	delete(c.entries, id)
	for i, sid := range c.order {
		if sid == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}

	c.rebuildIndex()
	c.afterStructureChange()
}

// SeriesStore exposes a registered series' data store.
func (c *Coordinator) SeriesStore(id string) (*series.Store, bool) {
	e, ok := c.entries[id]
	if !ok {
		return nil, false
	}
	return e.store, true
}

// SetSeriesData replaces a series' full content. The input must be
// strictly ascending by time; on error nothing changes, previous data
// and scales stay live.
func (c *Coordinator) SetSeriesData(id string, points []core.DataPoint) error {
	e, ok := c.entries[id]
	if !ok {
		return fmt.Errorf("series %q: %w", id, core.ErrNotFound)
	}

	if err := e.store.SetData(points); err != nil {
		return fmt.Errorf("series %q: %w", id, err)
	}

	// A full replace can remove time points only this series used.
	c.rebuildIndex()
	c.afterStructureChange()
	return nil
}

// UpdateSeries applies a single streaming update: replace the current
// bar or append a new one. Failed updates leave all state untouched.
func (c *Coordinator) UpdateSeries(id string, point core.DataPoint) error {
	e, ok := c.entries[id]
	if !ok {
		return fmt.Errorf("series %q: %w", id, core.ErrNotFound)
	}

	if err := e.store.Update(point); err != nil {
		return fmt.Errorf("series %q: %w", id, err)
	}

	changed, err := c.index.Merge(e.store.TimePoints())
	if err != nil {
		// The store accepted the point, so its time set is ordered;
		// a merge failure here means corrupted state.
		return fmt.Errorf("series %q: merge: %w", id, err)
	}

	if changed {
		c.remapAll()
		c.timeScale.SetIndexBounds(c.index.FirstIndex(), c.index.LastIndex())
		c.invalidation.InvalidateTimeScale()
	} else {
		e.store.Remap(c.index)
	}

	c.recomputeScale(e.scaleID)
	c.invalidation.InvalidatePane(c.paneIDs[e.scaleID])
	c.publishRangeIfChanged()
	return nil
}

// Resize applies new pane dimensions and recomputes every range.
func (c *Coordinator) Resize(width, height float64) {
	c.timeScale.SetWidth(width)
	for _, ps := range c.priceScales {
		ps.SetHeight(height)
	}

	c.recomputeAllScales()
	c.invalidation.InvalidateFull()
	c.publishRangeIfChanged()
}

// SetVisibleRange displays the inclusive logical window [from, to],
// clamped to valid bounds, and refits auto-scaled panes.
func (c *Coordinator) SetVisibleRange(from, to float64) {
	c.timeScale.SetVisibleRange(from, to)
	c.afterViewportChange()
}

// Scroll pans the window by a delta in index units.
func (c *Coordinator) Scroll(indexDelta float64) {
	c.timeScale.Scroll(indexDelta)
	c.afterViewportChange()
}

// ScrollPixels pans the window by a pixel delta at the current zoom.
func (c *Coordinator) ScrollPixels(dx float64) {
	c.timeScale.ScrollPixels(dx)
	c.afterViewportChange()
}

// Zoom rescales around the given anchor pixel.
func (c *Coordinator) Zoom(anchorX, factor float64) {
	c.timeScale.Zoom(anchorX, factor)
	c.afterViewportChange()
}

// VisibleRange returns the currently displayed logical window.
func (c *Coordinator) VisibleRange() core.VisibleRange {
	return c.timeScale.VisibleRange()
}

// SubscribeVisibleRangeChange registers a synchronous observer.
func (c *Coordinator) SubscribeVisibleRangeChange(consumer RangeConsumer) (unsubscribe func()) {
	return c.rangeFeed.Subscribe(consumer)
}

// Crosshair resolves a pointer pixel position to the hovered index and
// each series' nearest value and pixel projection.
func (c *Coordinator) Crosshair(x float64) crosshair.Result {
	sources := make(map[string]crosshair.Source, len(c.entries))
	for id, e := range c.entries {
		sources[id] = crosshair.Source{
			Store: e.store,
			Scale: c.priceScales[e.scaleID],
		}
	}
	return c.locator.Locate(x, sources)
}

// rebuildIndex reconstructs the timeline from every registered series,
// used when time points may have disappeared.
func (c *Coordinator) rebuildIndex() {
	fresh := timeindex.New()
	for _, id := range c.order {
		if _, err := fresh.Merge(c.entries[id].store.TimePoints()); err != nil {
			// Stores only hold validated data.
			c.log.WithError(err).WithField("series", id).Error("timeline rebuild skipped series")
		}
	}
	c.index = fresh
	c.remapAll()
}

func (c *Coordinator) remapAll() {
	for _, e := range c.entries {
		e.store.Remap(c.index)
	}
}

func (c *Coordinator) afterStructureChange() {
	c.timeScale.SetIndexBounds(c.index.FirstIndex(), c.index.LastIndex())
	c.recomputeAllScales()
	c.invalidation.InvalidateFull()
	c.publishRangeIfChanged()
}

func (c *Coordinator) afterViewportChange() {
	c.recomputeAllScales()
	c.invalidation.InvalidateTimeScale()
	c.publishRangeIfChanged()
}

func (c *Coordinator) recomputeAllScales() {
	for scaleID := range c.priceScales {
		c.recomputeScale(scaleID)
		c.invalidation.InvalidatePane(c.paneIDs[scaleID])
	}
}

// recomputeScale refits a pane scale to the union of its series'
// visible value ranges. Panes whose series have no visible data fall
// back to their full data range so the scale never goes blank.
func (c *Coordinator) recomputeScale(scaleID string) {
	ps := c.priceScales[scaleID]
	if ps == nil || !ps.AutoScale() {
		return
	}

	vr := c.timeScale.VisibleRange()
	from := core.LogicalIndex(math.Floor(vr.From))
	to := core.LogicalIndex(math.Ceil(vr.To))

	merged, ok := c.unionRange(scaleID, from, to)
	if !ok {
		first := c.index.FirstIndex()
		last := c.index.LastIndex()
		merged, ok = c.unionRange(scaleID, first, last)
	}
	if ok {
		ps.SetAutoRange(merged)
	}
}

func (c *Coordinator) unionRange(scaleID string, from, to core.LogicalIndex) (core.PriceRange, bool) {
	var merged core.PriceRange
	found := false

	for _, id := range c.order {
		e := c.entries[id]
		if e.scaleID != scaleID {
			continue
		}
		r, ok := e.store.ValueRange(from, to)
		if !ok {
			continue
		}
		if !found {
			merged = r
			found = true
		} else {
			merged = merged.Union(r)
		}
	}

	return merged, found
}

func (c *Coordinator) publishRangeIfChanged() {
	vr := c.timeScale.VisibleRange()
	if vr.Equal(c.lastPublished) {
		return
	}
	c.lastPublished = vr
	c.rangeFeed.Publish(vr)
}
