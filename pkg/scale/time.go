package scale

import (
	"math"

	"github.com/raykavin/lightchart/pkg/core"
)

// Default bar spacing bounds in pixels per logical index.
const (
	DefaultBarSpacing = 6.0
	MinBarSpacing     = 0.5
	MaxBarSpacing     = 100.0
)

// TimeScale converts between logical indices and pane-local pixel
// x-coordinates and carries the pan/zoom state of the chart.
//
// The whole state machine is two numbers: barSpacing (pixels per
// index, the zoom level) and rightEdge (the fractional logical index
// sitting at the right border of the pane). Every conversion is a pure
// function of those plus the pane width, so index->pixel and
// pixel->index are exact inverses up to floating point.
type TimeScale struct {
	width      float64
	barSpacing float64
	rightEdge  float64

	minSpacing  float64
	maxSpacing  float64
	rightOffset float64

	// trackRight keeps the newest bar glued to the right border when
	// new data arrives. Cleared by explicit pan actions that move away
	// from the right edge, restored when the user pans back.
	trackRight bool

	firstIndex core.LogicalIndex
	lastIndex  core.LogicalIndex
	hasData    bool
}

// TimeScaleOption configures a time scale.
type TimeScaleOption func(*TimeScale)

// WithBarSpacingLimits overrides the zoom bounds.
func WithBarSpacingLimits(min, max float64) TimeScaleOption {
	return func(s *TimeScale) {
		if min > 0 {
			s.minSpacing = min
		}
		if max >= min {
			s.maxSpacing = max
		}
	}
}

// WithRightOffset keeps the given number of blank bar cells between
// the newest bar and the right border.
func WithRightOffset(bars float64) TimeScaleOption {
	return func(s *TimeScale) {
		s.rightOffset = bars
	}
}

// NewTimeScale creates a time scale with default zoom bounds and
// right-edge tracking enabled.
func NewTimeScale(options ...TimeScaleOption) *TimeScale {
	s := &TimeScale{
		barSpacing: DefaultBarSpacing,
		minSpacing: MinBarSpacing,
		maxSpacing: MaxBarSpacing,
		trackRight: true,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// SetWidth sets the pane width in pixels.
func (s *TimeScale) SetWidth(w float64) {
	if w > 0 {
		s.width = w
	}
}

// Width returns the pane width in pixels.
func (s *TimeScale) Width() float64 { return s.width }

// BarSpacing returns the current zoom level in pixels per index.
func (s *TimeScale) BarSpacing() float64 { return s.barSpacing }

// RightOffset returns the configured blank space right of the newest
// bar, in bar cells.
func (s *TimeScale) RightOffset() float64 { return s.rightOffset }

// TracksRight reports whether the visible range shifts automatically
// when a new bar extends the timeline.
func (s *TimeScale) TracksRight() bool { return s.trackRight }

// SetIndexBounds informs the scale of the dataset's first and last
// logical indices. When right-edge tracking is active the window
// shifts so the newest bar stays visible; when the user has scrolled
// away the window is left alone.
func (s *TimeScale) SetIndexBounds(first, last core.LogicalIndex) {
	hadData := s.hasData
	s.firstIndex = first
	s.lastIndex = last
	s.hasData = first != core.IndexNotFound && last != core.IndexNotFound && first <= last

	if !s.hasData {
		return
	}

	if s.trackRight || !hadData {
		s.rightEdge = s.maxRightEdge()
	} else {
		s.rightEdge = s.clampRightEdge(s.rightEdge)
	}
}

// VisibleRange returns the logical window currently displayed. From is
// the (possibly fractional, possibly before the first bar) index at
// the left border; To is the index owning the rightmost full bar cell.
func (s *TimeScale) VisibleRange() core.VisibleRange {
	if s.width <= 0 || s.barSpacing <= 0 {
		return core.VisibleRange{}
	}
	return core.VisibleRange{
		From: s.rightEdge - s.width/s.barSpacing,
		To:   s.rightEdge - 1,
	}
}

// SetVisibleRange displays the inclusive index window [from, to]. The
// bar spacing is derived from pane width over the window span, then
// both spacing and position are clamped to their allowed bounds.
// Out-of-range requests are never rejected, only clamped.
func (s *TimeScale) SetVisibleRange(from, to float64) {
	if s.width <= 0 {
		return
	}
	if to < from {
		from, to = to, from
	}

	bars := to - from + 1
	s.barSpacing = s.clampSpacing(s.width / bars)
	s.rightEdge = s.clampRightEdge(to + 1)
	s.syncTracking()
}

// Scroll shifts the visible range by a delta in index units. Positive
// deltas move toward newer data. Used for drag-panning; the caller
// converts pixels with PixelsToIndexDelta.
func (s *TimeScale) Scroll(indexDelta float64) {
	s.rightEdge = s.clampRightEdge(s.rightEdge + indexDelta)
	s.syncTracking()
}

// ScrollTo places the given fractional index at the right border,
// clamped like any other pan.
func (s *TimeScale) ScrollTo(rightIndex float64) {
	s.rightEdge = s.clampRightEdge(rightIndex + 1)
	s.syncTracking()
}

// ScrollPixels shifts the visible range by a pixel delta at the
// current zoom level.
func (s *TimeScale) ScrollPixels(dx float64) {
	s.Scroll(s.PixelsToIndexDelta(dx))
}

// PixelsToIndexDelta converts a pixel distance to index units at the
// current bar spacing.
func (s *TimeScale) PixelsToIndexDelta(dx float64) float64 {
	if s.barSpacing <= 0 {
		return 0
	}
	return dx / s.barSpacing
}

// Zoom changes the bar spacing multiplicatively while keeping the
// logical index under anchorX at the same pixel, so the content under
// the cursor does not slide during a wheel zoom.
func (s *TimeScale) Zoom(anchorX, scaleFactor float64) {
	if scaleFactor <= 0 || s.width <= 0 {
		return
	}

	anchorIndex := s.CoordinateToIndex(anchorX)
	s.barSpacing = s.clampSpacing(s.barSpacing * scaleFactor)
	s.rightEdge = s.clampRightEdge(anchorIndex + (s.width-anchorX)/s.barSpacing)
	s.syncTracking()
}

// IndexToCoordinate converts a logical index to the pixel x-coordinate
// of its bar cell.
func (s *TimeScale) IndexToCoordinate(index core.LogicalIndex) float64 {
	return s.FractionalIndexToCoordinate(float64(index))
}

// FractionalIndexToCoordinate converts a fractional index to a pixel.
func (s *TimeScale) FractionalIndexToCoordinate(index float64) float64 {
	return s.width - (s.rightEdge-index)*s.barSpacing
}

// CoordinateToIndex converts a pixel x-coordinate to a fractional
// logical index. Exact inverse of FractionalIndexToCoordinate.
func (s *TimeScale) CoordinateToIndex(x float64) float64 {
	if s.barSpacing <= 0 {
		return 0
	}
	return s.rightEdge - (s.width-x)/s.barSpacing
}

func (s *TimeScale) clampSpacing(spacing float64) float64 {
	return math.Min(math.Max(spacing, s.minSpacing), s.maxSpacing)
}

// clampRightEdge bounds the window position: the newest bar may sit at
// most rightOffset cells away from the right border, and at least one
// bar cell must remain visible on the left.
func (s *TimeScale) clampRightEdge(edge float64) float64 {
	if !s.hasData {
		return edge
	}
	return math.Min(math.Max(edge, s.minRightEdge()), s.maxRightEdge())
}

func (s *TimeScale) minRightEdge() float64 {
	return float64(s.firstIndex) + 1
}

func (s *TimeScale) maxRightEdge() float64 {
	return float64(s.lastIndex) + 1 + s.rightOffset
}

// syncTracking re-evaluates the auto-scroll flag after an explicit
// pan/zoom: scrolled to the right edge means resume tracking new bars,
// anywhere else means the user took over.
func (s *TimeScale) syncTracking() {
	if !s.hasData {
		return
	}
	const eps = 1e-9
	s.trackRight = s.rightEdge >= s.maxRightEdge()-eps
}
