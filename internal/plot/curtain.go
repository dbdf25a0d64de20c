package plot

import (
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/echoview/server/internal/data/mvbs"
	"github.com/echoview/server/pkg/colormap"
)

// CurtainGrid is a structured grid draping one channel's echogram along
// the ship track: the track path repeated once per depth sample, with z
// descending by the height ratio, and the Sv values raveled with the
// sample axis fastest.
type CurtainGrid struct {
	// Points holds (lon, lat, z) triples, sample index varying fastest.
	Points [][3]float64
	// Dims is (nsamples, ntraces, 1).
	Dims [3]int
	// Values aligns with Points.
	Values []float64
}

// Curtain builds the structured grid for one channel. Pings without a
// position fix are dropped from the path. The ratio scales one depth
// sample step to vertical display units.
func Curtain(ds *mvbs.Dataset, channel string, ratio float64) (*CurtainGrid, error) {
	plane, err := ds.Sv(channel)
	if err != nil {
		return nil, err
	}

	lonAll := ds.Longitude()
	latAll := ds.Latitude()
	nsamples := ds.NumSamples()

	var traceIdx []int
	for i := range lonAll {
		if !math.IsNaN(lonAll[i]) && !math.IsNaN(latAll[i]) {
			traceIdx = append(traceIdx, i)
		}
	}
	ntraces := len(traceIdx)

	grid := &CurtainGrid{
		Points: make([][3]float64, 0, nsamples*ntraces),
		Dims:   [3]int{nsamples, ntraces, 1},
		Values: make([]float64, 0, nsamples*ntraces),
	}
	for _, j := range traceIdx {
		for i := 0; i < nsamples; i++ {
			grid.Points = append(grid.Points, [3]float64{
				lonAll[j],
				latAll[j],
				0 - ratio*float64(i),
			})
			grid.Values = append(grid.Values, plane[j][i])
		}
	}
	return grid, nil
}

// CurtainChart renders the grid as a 3D surface.
func CurtainChart(grid *CurtainGrid, st Style) *charts.Surface3D {
	w, h := st.Size()
	title := st.Title()
	if title == "" {
		title = "Curtain"
	}

	cm, ok := colormap.ByName(st.Colormap())
	if !ok {
		cm = colormap.Jet
	}
	lo, hi := st.SvRange()

	chart := charts.NewSurface3D()
	chart.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: title,
			Theme:     st.Theme(),
			Width:     pixelSize(w),
			Height:    pixelSize(h),
		}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        float32(lo),
			Max:        float32(hi),
			Dimension:  "3",
			InRange:    &opts.VisualMapInRange{Color: colormap.Stops(cm, 16)},
		}),
	)

	data := make([]opts.Chart3DData, 0, len(grid.Points))
	for i, p := range grid.Points {
		v := grid.Values[i]
		if math.IsNaN(v) {
			continue
		}
		data = append(data, opts.Chart3DData{
			Value: []interface{}{p[0], p[1], p[2], v},
		})
	}
	chart.AddSeries("Sv", data)
	return chart
}
