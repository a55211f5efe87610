// Package scale implements the price and time coordinate scales of a
// chart pane.
package scale

import (
	"math"

	"github.com/raykavin/lightchart/pkg/core"
)

// logCoef shifts prices into the sign-preserving log mapping so zero
// and negative prices stay representable. Chosen so typical price
// magnitudes keep visible resolution.
const logCoef = 1e-4

// Margins are the fractions of pane height left blank above and below
// the auto-scaled data.
type Margins struct {
	Top    float64
	Bottom float64
}

// DefaultMargins mirrors the usual 10%/8% chart padding.
func DefaultMargins() Margins {
	return Margins{Top: 0.1, Bottom: 0.08}
}

// PriceScale converts between prices and pane-local pixel
// y-coordinates. Pixel 0 is the top of the pane.
type PriceScale struct {
	height    float64
	margins   Margins
	logScale  bool
	autoScale bool

	// rng is the drawable range after the minimum-span fallback and
	// margins have been applied, in raw price space.
	rng core.PriceRange
	ok  bool
}

// PriceScaleOption configures a price scale.
type PriceScaleOption func(*PriceScale)

// WithMargins overrides the auto-scale padding fractions.
func WithMargins(m Margins) PriceScaleOption {
	return func(s *PriceScale) {
		s.margins = m
	}
}

// WithLogScale switches the scale to logarithmic mode.
func WithLogScale() PriceScaleOption {
	return func(s *PriceScale) {
		s.logScale = true
	}
}

// NewPriceScale creates an auto-scaling price scale.
func NewPriceScale(options ...PriceScaleOption) *PriceScale {
	s := &PriceScale{
		margins:   DefaultMargins(),
		autoScale: true,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// SetHeight sets the pane height in pixels.
func (s *PriceScale) SetHeight(h float64) {
	if h > 0 {
		s.height = h
	}
}

// Height returns the pane height in pixels.
func (s *PriceScale) Height() float64 { return s.height }

// IsLog reports whether the scale is in logarithmic mode.
func (s *PriceScale) IsLog() bool { return s.logScale }

// AutoScale reports whether the scale follows visible data.
func (s *PriceScale) AutoScale() bool { return s.autoScale }

// SetAutoScale toggles following of visible data; turning it off
// freezes the current range until SetRange is called.
func (s *PriceScale) SetAutoScale(enabled bool) { s.autoScale = enabled }

// HasRange reports whether the scale has been fed a data range yet.
func (s *PriceScale) HasRange() bool { return s.ok }

// Range returns the effective drawable range, margins included.
func (s *PriceScale) Range() core.PriceRange { return s.rng }

// SetAutoRange fits the scale to the supplied data bounds. Degenerate
// (zero-height) input is silently widened by the minimum-span fallback
// rather than rejected, then the margin fractions are applied. An
// empty / flat chart must still render.
func (s *PriceScale) SetAutoRange(r core.PriceRange) {
	r = core.NewPriceRange(r.Min, r.Max).Expanded()

	span := r.Span()
	s.rng = core.PriceRange{
		Min: r.Min - span*s.margins.Bottom,
		Max: r.Max + span*s.margins.Top,
	}
	s.ok = true
}

// SetRange pins an explicit range, disabling auto-scale. Degenerate
// input is widened the same way SetAutoRange does.
func (s *PriceScale) SetRange(r core.PriceRange) {
	s.autoScale = false
	s.rng = core.NewPriceRange(r.Min, r.Max).Expanded()
	s.ok = true
}

// PriceToCoordinate converts a price to a pixel y-coordinate. The
// transform is linear over transformed price space (identity in
// linear mode, sign-preserving log in log mode), so it is exactly
// invertible by CoordinateToPrice.
func (s *PriceScale) PriceToCoordinate(price float64) float64 {
	if !s.ok || s.height <= 0 {
		return 0
	}

	lo := s.transform(s.rng.Min)
	hi := s.transform(s.rng.Max)
	if hi == lo {
		return s.height / 2
	}

	return s.height * (hi - s.transform(price)) / (hi - lo)
}

// CoordinateToPrice converts a pixel y-coordinate back to a price.
func (s *PriceScale) CoordinateToPrice(y float64) float64 {
	if !s.ok || s.height <= 0 {
		return 0
	}

	lo := s.transform(s.rng.Min)
	hi := s.transform(s.rng.Max)

	return s.invert(hi - y/s.height*(hi-lo))
}

// transform maps a raw price into the space the linear pixel
// interpolation runs over.
func (s *PriceScale) transform(price float64) float64 {
	if !s.logScale {
		return price
	}
	if price < 0 {
		return -math.Log10(1 - price/logCoef)
	}
	return math.Log10(1 + price/logCoef)
}

func (s *PriceScale) invert(v float64) float64 {
	if !s.logScale {
		return v
	}
	if v < 0 {
		return -logCoef * (math.Pow(10, -v) - 1)
	}
	return logCoef * (math.Pow(10, v) - 1)
}
