package feed

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/raykavin/lightchart/pkg/core"
)

// Returns computes close-to-close percentage returns
func Returns(candles []core.Candle) []float64 {
	if len(candles) < 2 {
		return nil
	}

	returns := make([]float64, 0, len(candles)-1)
	for i := 1; i < len(candles); i++ {
		prev := candles[i-1].Close
		if prev == 0 {
			continue
		}
		returns = append(returns, (candles[i].Close-prev)/prev*100)
	}

	return returns
}

// Summary formats a candle history as a text table
func Summary(pair string, candles []core.Candle) string {
	if len(candles) == 0 {
		return fmt.Sprintf("no candles for %s\n", pair)
	}

	closes := make([]float64, len(candles))
	volumes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
		volumes[i] = c.Volume
	}

	mean := stat.Mean(closes, nil)
	stdDev := stat.StdDev(closes, nil)

	tableString := &strings.Builder{}
	table := tablewriter.NewWriter(tableString)

	data := [][]string{
		{"Pair", pair},
		{"Candles", strconv.Itoa(len(candles))},
		{"First", candles[0].Time.Format("2006-01-02 15:04")},
		{"Last", candles[len(candles)-1].Time.Format("2006-01-02 15:04")},
		{"Low", fmt.Sprintf("%.4f", floats.Min(closes))},
		{"High", fmt.Sprintf("%.4f", floats.Max(closes))},
		{"Mean", fmt.Sprintf("%.4f", mean)},
		{"StdDev", fmt.Sprintf("%.4f", stdDev)},
		{"Volume", fmt.Sprintf("%.4f", floats.Sum(volumes))},
	}

	table.AppendBulk(data)
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})
	table.Render()

	return tableString.String()
}
