package plot

import (
	"fmt"
	"math"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/echoview/server/internal/data/mvbs"
	"github.com/echoview/server/pkg/colormap"
)

// Echogram builds a heatmap of Sv over ping_time (x) and echo_range (y,
// deepest at the bottom) for one channel.
func Echogram(ds *mvbs.Dataset, channel string, st Style) (*charts.HeatMap, error) {
	plane, err := ds.Sv(channel)
	if err != nil {
		return nil, err
	}

	times := ds.PingTime()
	depths := ds.EchoRange()

	xs := make([]string, len(times))
	for i, t := range times {
		xs[i] = t.UTC().Format(time.RFC3339)
	}
	ys := make([]string, len(depths))
	for i, d := range depths {
		// Reverse so depth grows downward on screen.
		ys[len(depths)-1-i] = fmt.Sprintf("%.1f", d)
	}

	data := make([]opts.HeatMapData, 0, len(times)*len(depths))
	for p := range plane {
		for r, v := range plane[p] {
			if math.IsNaN(v) {
				continue
			}
			data = append(data, opts.HeatMapData{
				Value: [3]interface{}{p, len(depths) - 1 - r, v},
			})
		}
	}

	cm, ok := colormap.ByName(st.Colormap())
	if !ok {
		cm = colormap.Jet
	}
	lo, hi := st.SvRange()
	w, h := st.Size()

	title := st.Title()
	if title == "" {
		title = channel
	}

	chart := charts.NewHeatMap()
	chart.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: title,
			Theme:     st.Theme(),
			Width:     pixelSize(w),
			Height:    pixelSize(h),
		}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Name: "ping_time", Data: xs}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Name: "echo_range (m)", Data: ys}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        float32(lo),
			Max:        float32(hi),
			InRange:    &opts.VisualMapInRange{Color: colormap.Stops(cm, 16)},
		}),
	)
	chart.SetXAxis(xs).AddSeries("Sv", data)
	return chart, nil
}
