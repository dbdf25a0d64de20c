package plot

import (
	"encoding/json"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/echoview/server/internal/data/mvbs"
)

// SummaryRow is the descriptive-statistics row for one channel, in dB.
type SummaryRow struct {
	Channel  string
	Count    int
	Mean     float64
	StdDev   float64
	Min      float64
	Q25      float64
	Median   float64
	Q75      float64
	Max      float64
	Skew     float64
	Kurtosis float64
}

// MarshalJSON emits NaN statistics as null; an empty subset still has
// to serialize.
func (r SummaryRow) MarshalJSON() ([]byte, error) {
	num := func(v float64) interface{} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil
		}
		return v
	}
	return json.Marshal(map[string]interface{}{
		"channel":  r.Channel,
		"count":    r.Count,
		"mean":     num(r.Mean),
		"std":      num(r.StdDev),
		"min":      num(r.Min),
		"25%":      num(r.Q25),
		"50%":      num(r.Median),
		"75%":      num(r.Q75),
		"max":      num(r.Max),
		"skew":     num(r.Skew),
		"kurtosis": num(r.Kurtosis),
	})
}

// Table computes per-channel summary statistics over the subset's
// finite Sv values, plus a pooled "all" row across every channel.
func Table(ds *mvbs.Dataset) ([]SummaryRow, error) {
	rows := make([]SummaryRow, 0, len(ds.Channels())+1)
	var pooled []float64
	for _, ch := range ds.Channels() {
		vals, err := ds.SvValues(ch)
		if err != nil {
			return nil, err
		}
		rows = append(rows, summarize(ch, vals))
		pooled = append(pooled, vals...)
	}
	rows = append(rows, summarize("all", pooled))
	return rows, nil
}

func summarize(name string, vals []float64) SummaryRow {
	row := SummaryRow{Channel: name, Count: len(vals)}
	if len(vals) == 0 {
		row.Mean = math.NaN()
		row.StdDev = math.NaN()
		row.Min = math.NaN()
		row.Q25 = math.NaN()
		row.Median = math.NaN()
		row.Q75 = math.NaN()
		row.Max = math.NaN()
		row.Skew = math.NaN()
		row.Kurtosis = math.NaN()
		return row
	}

	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)

	row.Mean = stat.Mean(sorted, nil)
	row.StdDev = stat.StdDev(sorted, nil)
	row.Min = sorted[0]
	row.Max = sorted[len(sorted)-1]
	row.Q25 = stat.Quantile(0.25, stat.Empirical, sorted, nil)
	row.Median = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	row.Q75 = stat.Quantile(0.75, stat.Empirical, sorted, nil)
	row.Skew = stat.Skew(sorted, nil)
	row.Kurtosis = stat.ExKurtosis(sorted, nil)
	return row
}
