package render

import (
	"image/color"
	"math"

	"github.com/fogleman/gg"

	"github.com/echoview/server/internal/data/mvbs"
	"github.com/echoview/server/internal/geo"
)

var (
	trackColor = color.RGBA{R: 214, G: 39, B: 40, A: 255}
	startColor = color.RGBA{R: 44, G: 160, B: 44, A: 255}
)

// RenderTrackTile draws the ship track overlay for one slippy-map tile
// (z/x/y). The background stays transparent so the tile stacks on a
// base-map layer. Pings without a fix are skipped; a moored dataset
// renders as a single marker.
func (r *Renderer) RenderTrackTile(ds *mvbs.Dataset, z, x, y int) ([]byte, error) {
	lon, lat, _ := ds.TrackPoints()
	if len(lon) == 0 {
		return r.EmptyTile()
	}

	dc := r.contextPool.Get().(*gg.Context)
	defer r.contextPool.Put(dc)
	dc.SetColor(color.Transparent)
	dc.Clear()

	size := float64(r.config.TileSize)
	offX := float64(x) * size
	offY := float64(y) * size

	// Local pixel coordinates, padded so segments crossing the tile
	// border still draw their inside portion.
	xs := make([]float64, len(lon))
	ys := make([]float64, len(lon))
	for i := range lon {
		px, py := geo.TilePixel(lon[i], lat[i], z)
		xs[i] = px - offX
		ys[i] = py - offY
	}

	dc.SetColor(trackColor)
	dc.SetLineWidth(2)
	for i := 1; i < len(xs); i++ {
		if offTile(xs[i-1], ys[i-1], size) && offTile(xs[i], ys[i], size) {
			continue
		}
		dc.DrawLine(xs[i-1], ys[i-1], xs[i], ys[i])
		dc.Stroke()
	}

	// Starting point marker.
	if !offTile(xs[0], ys[0], size) {
		dc.SetColor(startColor)
		dc.DrawCircle(xs[0], ys[0], 4)
		dc.Fill()
	}

	return r.encode(dc.Image())
}

// offTile reports whether a point lies outside the tile plus a margin.
func offTile(x, y, size float64) bool {
	const margin = 32
	return math.IsNaN(x) || math.IsNaN(y) ||
		x < -margin || x > size+margin || y < -margin || y > size+margin
}
