package core

// ValueKind discriminates the series value variants.
type ValueKind int

const (
	KindBar ValueKind = iota
	KindLine
	KindHistogram
	KindBaseline
)

// Value is a series-type-specific payload stored at one logical index.
type Value interface {
	Kind() ValueKind
}

// BarValue holds OHLC data for candlestick and bar series.
type BarValue struct {
	Open  float64
	High  float64
	Low   float64
	Close float64
}

func (BarValue) Kind() ValueKind { return KindBar }

// LineValue holds a single value for line and area series.
type LineValue struct {
	Price float64
}

func (LineValue) Kind() ValueKind { return KindLine }

// HistogramValue holds a single column value for histogram series.
type HistogramValue struct {
	Price float64
}

func (HistogramValue) Kind() ValueKind { return KindHistogram }

// BaselineValue holds a single value rendered relative to a base level.
type BaselineValue struct {
	Price float64
}

func (BaselineValue) Kind() ValueKind { return KindBaseline }

// ValueExtractor is the capability a series kind provides so scales can
// read prices out of its values without runtime type inspection. It is
// chosen at series-creation time.
type ValueExtractor interface {
	// Price returns the scalar the crosshair and last-value tracking use.
	Price(v Value) float64
	// Bounds returns the low/high span the value contributes to
	// auto-scaling. For single-value kinds both bounds are the price.
	Bounds(v Value) (low, high float64)
}

// BarExtractor reads OHLC bars. The crosshair price is the close; the
// auto-scale span is low..high.
type BarExtractor struct{}

func (BarExtractor) Price(v Value) float64 {
	return v.(BarValue).Close
}

func (BarExtractor) Bounds(v Value) (float64, float64) {
	bar := v.(BarValue)
	return bar.Low, bar.High
}

// SingleValueExtractor reads line, histogram and baseline values.
type SingleValueExtractor struct{}

func (SingleValueExtractor) Price(v Value) float64 {
	switch val := v.(type) {
	case LineValue:
		return val.Price
	case HistogramValue:
		return val.Price
	case BaselineValue:
		return val.Price
	default:
		return 0
	}
}

func (e SingleValueExtractor) Bounds(v Value) (float64, float64) {
	p := e.Price(v)
	return p, p
}

// ExtractorFor returns the extractor matching a value kind.
func ExtractorFor(kind ValueKind) ValueExtractor {
	if kind == KindBar {
		return BarExtractor{}
	}
	return SingleValueExtractor{}
}
