// Package geo provides coordinate conversion and region utilities for
// ship-track views.
package geo

import (
	"math"
)

const (
	earthRadius = 6378137.0
	originShift = math.Pi * earthRadius
)

// ToMercator converts EPSG:4326 (lon, lat degrees) to EPSG:3857 web
// mercator meters.
func ToMercator(lon, lat float64) (x, y float64) {
	x = lon * originShift / 180.0
	y = math.Log(math.Tan((90.0+lat)*math.Pi/360.0)) / (math.Pi / 180.0)
	y = y * originShift / 180.0
	return x, y
}

// FromMercator converts EPSG:3857 web mercator meters back to EPSG:4326
// (lon, lat degrees).
func FromMercator(x, y float64) (lon, lat float64) {
	lon = x / originShift * 180.0
	lat = y / originShift * 180.0
	lat = 180.0 / math.Pi * (2.0*math.Atan(math.Exp(lat*math.Pi/180.0)) - math.Pi/2.0)
	return lon, lat
}

// TilePixel converts (lon, lat) to pixel coordinates at a slippy-map zoom
// level with 256px tiles. Pixel origin is the top-left of tile 0/0.
func TilePixel(lon, lat float64, zoom int) (px, py float64) {
	x, y := ToMercator(lon, lat)
	scale := math.Exp2(float64(zoom))
	px = (x + originShift) / (2.0 * originShift) * 256.0 * scale
	py = (originShift - y) / (2.0 * originShift) * 256.0 * scale
	return px, py
}

// Corners is a geographic bounding box (left, bottom, right, top).
type Corners struct {
	Left   float64
	Bottom float64
	Right  float64
	Top    float64
}

// TrackCorners computes the NaN-ignoring bounding box of a track. The
// second return value is false when no finite coordinate pair exists.
func TrackCorners(lon, lat []float64) (Corners, bool) {
	c := Corners{
		Left:   math.Inf(1),
		Bottom: math.Inf(1),
		Right:  math.Inf(-1),
		Top:    math.Inf(-1),
	}
	found := false
	n := len(lon)
	if len(lat) < n {
		n = len(lat)
	}
	for i := 0; i < n; i++ {
		if math.IsNaN(lon[i]) || math.IsNaN(lat[i]) {
			continue
		}
		found = true
		if lon[i] < c.Left {
			c.Left = lon[i]
		}
		if lon[i] > c.Right {
			c.Right = lon[i]
		}
		if lat[i] < c.Bottom {
			c.Bottom = lat[i]
		}
		if lat[i] > c.Top {
			c.Top = lat[i]
		}
	}
	if !found {
		return Corners{}, false
	}
	return c, true
}

// Center returns the midpoint of the box.
func (c Corners) Center() (lon, lat float64) {
	return (c.Left + c.Right) / 2.0, (c.Bottom + c.Top) / 2.0
}

// Degenerate reports whether the box has zero width or height.
func (c Corners) Degenerate() bool {
	return c.Left == c.Right || c.Bottom == c.Top
}
