package plot

import (
	"errors"
	"math"

	"github.com/echoview/server/internal/data/mvbs"
)

// ErrTricolorChannels rejects tricolor requests on datasets without
// exactly three channels.
var ErrTricolorChannels = errors.New("Must have exactly 3 frequency channels for tricolor echogram.")

// RGBMap assigns channel names to the red, green and blue components.
type RGBMap struct {
	R, G, B string
}

// DefaultRGBMap maps the dataset's channels to R, G, B in channel-array
// order.
func DefaultRGBMap(ds *mvbs.Dataset) (RGBMap, error) {
	chs := ds.Channels()
	if len(chs) != 3 {
		return RGBMap{}, ErrTricolorChannels
	}
	return RGBMap{R: chs[0], G: chs[1], B: chs[2]}, nil
}

// TricolorGrid is the numeric RGB composite: per-cell components in
// [0, 1], NaN where the source value was masked.
type TricolorGrid struct {
	R, G, B              [][]float64
	NumPings, NumSamples int
}

// Tricolor builds the RGB composite grid from three channels. Per
// component the display convention is asymmetric: values above the top
// threshold clamp to the top, values below the bottom threshold are
// masked to NaN, and survivors rescale linearly to [0, 1].
func Tricolor(ds *mvbs.Dataset, rgb RGBMap, thBottom, thTop float64) (*TricolorGrid, error) {
	if len(ds.Channels()) != 3 {
		return nil, ErrTricolorChannels
	}
	if thTop <= thBottom {
		thBottom, thTop = thTop, thBottom
	}

	grid := &TricolorGrid{
		NumPings:   ds.NumPings(),
		NumSamples: ds.NumSamples(),
	}
	var err error
	if grid.R, err = component(ds, rgb.R, thBottom, thTop); err != nil {
		return nil, err
	}
	if grid.G, err = component(ds, rgb.G, thBottom, thTop); err != nil {
		return nil, err
	}
	if grid.B, err = component(ds, rgb.B, thBottom, thTop); err != nil {
		return nil, err
	}
	return grid, nil
}

func component(ds *mvbs.Dataset, channel string, thBottom, thTop float64) ([][]float64, error) {
	plane, err := ds.Sv(channel)
	if err != nil {
		return nil, err
	}
	span := thTop - thBottom
	out := make([][]float64, len(plane))
	for p, row := range plane {
		scaled := make([]float64, len(row))
		for r, v := range row {
			switch {
			case math.IsNaN(v) || v < thBottom:
				scaled[r] = math.NaN()
			case v > thTop:
				scaled[r] = 1
			default:
				scaled[r] = (v - thBottom) / span
			}
		}
		out[p] = scaled
	}
	return out, nil
}
