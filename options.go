package lightchart

import (
	"github.com/raykavin/lightchart/pkg/core"
	"github.com/raykavin/lightchart/pkg/logger"
	"github.com/raykavin/lightchart/pkg/scale"
)

// Option defines a function type for configuring a Chart instance
type Option func(*Chart)

// WithLogger sets the logger used by the engine. Defaults to a no-op
// logger so the library stays quiet when embedded.
func WithLogger(log logger.Logger) Option {
	return func(c *Chart) {
		c.log = log
	}
}

// WithTimeBehavior selects how raw times map onto the chart timeline.
// Defaults to Unix seconds.
func WithTimeBehavior(behavior core.TimeBehavior) Option {
	return func(c *Chart) {
		c.behavior = behavior
	}
}

// WithSize sets the initial pane dimensions in pixels.
func WithSize(width, height float64) Option {
	return func(c *Chart) {
		c.width = width
		c.height = height
	}
}

// WithBarSpacingLimits bounds the zoom level in pixels per bar.
func WithBarSpacingLimits(min, max float64) Option {
	return func(c *Chart) {
		c.timeScaleOptions = append(c.timeScaleOptions, scale.WithBarSpacingLimits(min, max))
	}
}

// WithRightOffset keeps blank bar cells between the newest bar and the
// right border.
func WithRightOffset(bars float64) Option {
	return func(c *Chart) {
		c.timeScaleOptions = append(c.timeScaleOptions, scale.WithRightOffset(bars))
	}
}

// WithPriceMargins overrides the auto-scale padding of the default
// price scale.
func WithPriceMargins(top, bottom float64) Option {
	return func(c *Chart) {
		c.priceScaleOptions = append(c.priceScaleOptions, scale.WithMargins(scale.Margins{Top: top, Bottom: bottom}))
	}
}

// WithLogPriceScale switches the default price scale to logarithmic
// mode.
func WithLogPriceScale() Option {
	return func(c *Chart) {
		c.priceScaleOptions = append(c.priceScaleOptions, scale.WithLogScale())
	}
}
