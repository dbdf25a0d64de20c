package plot

import (
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/echoview/server/internal/data/mvbs"
)

// Moored reports whether the track collapses to a single position fix,
// i.e. the platform was stationary.
func Moored(lon, lat []float64) bool {
	var haveLon, haveLat bool
	var lon0, lat0 float64
	for i := range lon {
		if !math.IsNaN(lon[i]) {
			if haveLon && lon[i] != lon0 {
				return false
			}
			lon0, haveLon = lon[i], true
		}
		if !math.IsNaN(lat[i]) {
			if haveLat && lat[i] != lat0 {
				return false
			}
			lat0, haveLat = lat[i], true
		}
	}
	return haveLon && haveLat
}

// Track builds the ship-track view: the path as a line in (lon, lat)
// space with the starting point marked, or a single point for a moored
// dataset.
func Track(ds *mvbs.Dataset, st Style) *charts.Scatter {
	lon, lat, _ := ds.TrackPoints()

	w, h := st.Size()
	title := st.Title()
	if title == "" {
		title = "Ship Track"
	}

	chart := charts.NewScatter()
	chart.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: title,
			Theme:     st.Theme(),
			Width:     pixelSize(w),
			Height:    pixelSize(h),
		}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "longitude", Scale: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "latitude", Scale: opts.Bool(true)}),
	)

	if Moored(lon, lat) && len(lon) > 0 {
		chart.AddSeries("mooring", []opts.ScatterData{
			{Value: []interface{}{lon[0], lat[0]}, Symbol: "pin", SymbolSize: 18},
		})
		return chart
	}

	path := make([]opts.ScatterData, 0, len(lon))
	for i := range lon {
		path = append(path, opts.ScatterData{
			Value:      []interface{}{lon[i], lat[i]},
			SymbolSize: 4,
		})
	}
	chart.AddSeries("track", path)
	if len(lon) > 0 {
		chart.AddSeries("start", []opts.ScatterData{
			{Value: []interface{}{lon[0], lat[0]}, Symbol: "circle", SymbolSize: 12},
		})
	}
	return chart
}
