// Package indicator computes overlay series (moving averages and the
// like) from a pair's candle history.
package indicator

import (
	"fmt"
	"time"

	"github.com/raykavin/lightchart/pkg/core"
)

// Metric is one drawable output line of an indicator.
type Metric struct {
	Name   string
	Color  string
	Style  string
	Values core.Series[float64]
	Time   []time.Time
}

// ID derives the series identifier of a metric within an indicator.
func (m Metric) ID(indicatorName string) string {
	if m.Name == "" {
		return indicatorName
	}
	return fmt.Sprintf("%s:%s", indicatorName, m.Name)
}

// Indicator interface defines the methods required to implement a chart indicator
type Indicator interface {
	Name() string
	Overlay() bool
	Warmup() int
	Metrics() []Metric
	Load(dataframe *core.Dataframe)
}

// BaseIndicator provides common functionality for all indicators
type BaseIndicator struct {
	Period int
	Color  string
	Time   []time.Time
}

// CreateMetric creates a standard indicator metric
func CreateMetric(style, color string, values core.Series[float64], time []time.Time, name ...string) Metric {
	metric := Metric{
		Style:  style,
		Color:  color,
		Values: values,
		Time:   time,
	}

	if len(name) > 0 {
		metric.Name = name[0]
	}

	return metric
}

// ValidateDataframe checks if the dataframe has enough data points for the indicator period
func ValidateDataframe(dataframe *core.Dataframe, period int) bool {
	return len(dataframe.Time) >= period
}

// TrimData trims the data to match the period
func TrimData(data core.Series[float64], time []time.Time, period int) (core.Series[float64], []time.Time) {
	if period <= 0 || len(data) <= period {
		return data, time
	}
	return data[period:], time[period:]
}
