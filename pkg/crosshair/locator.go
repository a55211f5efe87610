// Package crosshair resolves pointer positions to the nearest data
// across all subscribed series.
package crosshair

import (
	"math"

	"github.com/raykavin/lightchart/pkg/core"
	"github.com/raykavin/lightchart/pkg/scale"
	"github.com/raykavin/lightchart/pkg/series"
)

// SnapMode selects how a series resolves an index the series has no
// data at (a gap in its own time grid).
type SnapMode int

const (
	// SnapNearestLeft falls back to the closest point at or before the
	// hovered index, then to the right when nothing is on the left.
	SnapNearestLeft SnapMode = iota
	// SnapExact reports no hit for gap indices.
	SnapExact
)

// Source is one series the locator can hit: its data plus the price
// scale its values project through.
type Source struct {
	Store *series.Store
	Scale *scale.PriceScale
}

// Hit is the per-series result of a pointer query.
type Hit struct {
	Point core.DataPoint
	Price float64
	// Y is the pixel projection of Price on the series' price scale.
	Y float64
}

// Result is a consolidated pointer query answer.
type Result struct {
	// Index is the hovered logical index, rounded from the fractional
	// pointer position.
	Index core.LogicalIndex
	// X is the pixel the snapped index projects back to.
	X float64
	// Series maps series ids to their nearest data.
	Series map[string]Hit
}

// Locator answers pointer queries against the chart's time scale.
// Hit-testing of drawn primitives stays in the rendering layer; the
// locator only resolves the nearest-data step.
type Locator struct {
	timeScale *scale.TimeScale
	mode      SnapMode
}

// NewLocator creates a locator bound to a time scale.
func NewLocator(timeScale *scale.TimeScale, mode SnapMode) *Locator {
	return &Locator{timeScale: timeScale, mode: mode}
}

// RoundIndex converts a fractional pointer index to the hovered
// integer index. Ties at .5 round half away from zero; the rule is
// arbitrary but it must stay consistent, crosshair snapping is
// observable behavior.
func RoundIndex(fractional float64) core.LogicalIndex {
	return core.LogicalIndex(math.Round(fractional))
}

// Locate resolves the pointer pixel position against every source.
// Series with no data near the index are absent from the result map.
func (l *Locator) Locate(x float64, sources map[string]Source) Result {
	index := RoundIndex(l.timeScale.CoordinateToIndex(x))

	res := Result{
		Index:  index,
		X:      l.timeScale.IndexToCoordinate(index),
		Series: make(map[string]Hit, len(sources)),
	}

	for id, src := range sources {
		if src.Store == nil || src.Store.Empty() {
			continue
		}

		point, ok := l.resolve(src.Store, index)
		if !ok {
			continue
		}

		price := src.Store.Extractor().Price(point.Value)
		hit := Hit{Point: point, Price: price}
		if src.Scale != nil {
			hit.Y = src.Scale.PriceToCoordinate(price)
		}
		res.Series[id] = hit
	}

	return res
}

func (l *Locator) resolve(store *series.Store, index core.LogicalIndex) (core.DataPoint, bool) {
	if p, ok := store.At(index); ok {
		return p, true
	}
	if l.mode == SnapExact {
		return core.DataPoint{}, false
	}
	if p, ok := store.NearestLeft(index); ok {
		return p, true
	}
	return store.NearestRight(index)
}
