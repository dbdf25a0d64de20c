package plot

import (
	"fmt"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/echoview/server/internal/data/mvbs"
	"github.com/echoview/server/pkg/colormap"
)

// Histogram counts per bin for one channel.
type Histogram struct {
	Channel string    `json:"channel"`
	Edges   []float64 `json:"edges"`
	Counts  []int     `json:"counts"`
}

// BinValues builds a histogram over [lo, hi) with the given bin count.
// The top edge is inclusive so the maximum value is not dropped.
func BinValues(values []float64, lo, hi float64, bins int) ([]float64, []int) {
	if bins < 1 {
		bins = 1
	}
	if hi < lo {
		lo, hi = hi, lo
	}
	width := (hi - lo) / float64(bins)
	edges := make([]float64, bins+1)
	for i := range edges {
		edges[i] = lo + float64(i)*width
	}
	counts := make([]int, bins)
	if width == 0 {
		return edges, counts
	}
	for _, v := range values {
		if math.IsNaN(v) || v < lo || v > hi {
			continue
		}
		i := int((v - lo) / width)
		if i == bins {
			i = bins - 1
		}
		counts[i]++
	}
	return edges, counts
}

// HistData computes per-channel Sv histograms over the dataset's
// display range.
func HistData(ds *mvbs.Dataset, bins int) ([]Histogram, error) {
	lo, hi := ds.SvRange()
	out := make([]Histogram, 0, len(ds.Channels()))
	for _, ch := range ds.Channels() {
		vals, err := ds.SvValues(ch)
		if err != nil {
			return nil, err
		}
		edges, counts := BinValues(vals, lo, hi, bins)
		out = append(out, Histogram{Channel: ch, Edges: edges, Counts: counts})
	}
	return out, nil
}

// Hist builds the Sv distribution view: one bar series per channel,
// overlaid or stacked.
func Hist(ds *mvbs.Dataset, bins int, overlay bool, st Style) (*charts.Bar, error) {
	hists, err := HistData(ds, bins)
	if err != nil {
		return nil, err
	}

	w, h := st.Size()
	title := st.Title()
	if title == "" {
		title = "Sv Distribution"
	}

	chart := charts.NewBar()
	chart.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: title,
			Theme:     st.Theme(),
			Width:     pixelSize(w),
			Height:    pixelSize(h),
		}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Name: "Sv (dB)"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "count"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)

	if len(hists) == 0 {
		return chart, nil
	}

	labels := make([]string, len(hists[0].Counts))
	for i := range labels {
		labels[i] = fmt.Sprintf("%.1f", (hists[0].Edges[i]+hists[0].Edges[i+1])/2)
	}
	chart.SetXAxis(labels)

	for i, hist := range hists {
		data := make([]opts.BarData, len(hist.Counts))
		for j, n := range hist.Counts {
			data[j] = opts.BarData{Value: n}
		}
		series := []charts.SeriesOpts{
			charts.WithItemStyleOpts(opts.ItemStyle{
				Color:   colormap.Hex(colormap.Channels.AtIndex(i)),
				Opacity: opts.Float(0.6),
			}),
		}
		if !overlay {
			series = append(series, charts.WithBarChartOpts(opts.BarChart{Stack: "total"}))
		}
		chart.AddSeries(hist.Channel, data, series...)
	}
	return chart, nil
}
