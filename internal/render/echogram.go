package render

import (
	"fmt"
	"image/color"
	"math"

	"github.com/fogleman/gg"

	"github.com/echoview/server/internal/data/mvbs"
	"github.com/echoview/server/internal/plot"
)

// RenderEchogram rasterizes one channel's Sv plane: ping_time left to
// right, depth top to bottom, colors from the style's colormap over its
// display range. Masked samples stay transparent.
func (r *Renderer) RenderEchogram(ds *mvbs.Dataset, channel string, st plot.Style) ([]byte, error) {
	plane, err := ds.Sv(channel)
	if err != nil {
		return nil, err
	}

	npings := ds.NumPings()
	nsamples := ds.NumSamples()
	if npings == 0 || nsamples == 0 {
		return nil, fmt.Errorf("empty subset for channel %s", channel)
	}

	w, h := st.Size()
	cm := r.colormap(st.Colormap())
	lo, hi := st.SvRange()
	span := hi - lo
	if span == 0 {
		span = 1
	}

	dc := gg.NewContext(w, h)
	cellW := float64(w) / float64(npings)
	cellH := float64(h) / float64(nsamples)

	for p := 0; p < npings; p++ {
		x0, x1 := cellEdge(p, cellW), cellEdge(p+1, cellW)
		for s := 0; s < nsamples; s++ {
			v := plane[p][s]
			if math.IsNaN(v) {
				continue
			}
			t := (v - lo) / span
			y0, y1 := cellEdge(s, cellH), cellEdge(s+1, cellH)
			dc.SetColor(cm.At(t))
			dc.DrawRectangle(x0, y0, x1-x0, y1-y0)
			dc.Fill()
		}
	}

	return r.encode(dc.Image())
}

// RenderTricolor rasterizes an RGB composite grid. Masked cells stay
// transparent, so the bottom-threshold mask reads as background.
func (r *Renderer) RenderTricolor(grid *plot.TricolorGrid, width, height int) ([]byte, error) {
	if grid.NumPings == 0 || grid.NumSamples == 0 {
		return nil, fmt.Errorf("empty tricolor grid")
	}

	dc := gg.NewContext(width, height)
	cellW := float64(width) / float64(grid.NumPings)
	cellH := float64(height) / float64(grid.NumSamples)

	for p := 0; p < grid.NumPings; p++ {
		x0, x1 := cellEdge(p, cellW), cellEdge(p+1, cellW)
		for s := 0; s < grid.NumSamples; s++ {
			red := grid.R[p][s]
			green := grid.G[p][s]
			blue := grid.B[p][s]
			if math.IsNaN(red) && math.IsNaN(green) && math.IsNaN(blue) {
				continue
			}
			dc.SetColor(color.RGBA{
				R: channelByte(red),
				G: channelByte(green),
				B: channelByte(blue),
				A: 255,
			})
			y0, y1 := cellEdge(s, cellH), cellEdge(s+1, cellH)
			dc.DrawRectangle(x0, y0, x1-x0, y1-y0)
			dc.Fill()
		}
	}

	return r.encode(dc.Image())
}

// cellEdge snaps a grid boundary to whole pixels so adjacent cells tile
// the canvas exactly. Masked cells must stay transparent, so a lit
// neighbor may not paint over them.
func cellEdge(i int, cell float64) float64 {
	return math.Floor(float64(i) * cell)
}

func channelByte(v float64) uint8 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		v = 1
	}
	return uint8(math.Round(v * 255))
}
