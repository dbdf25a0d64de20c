// Package plot holds the declarative plot factories: each takes a data
// subset plus an immutable Style and returns a chart object or a pixel
// grid, without mutating its inputs or keeping state between calls.
package plot

import "fmt"

// Style carries the display parameters shared by the plot factories.
// It is a value object: the With methods return modified copies, so a
// style handed to one view can never leak mutations into another.
type Style struct {
	cmap         string
	svMin, svMax float64
	width        int
	height       int
	title        string
	theme        string
}

// DefaultStyle returns the baseline style: jet colormap, (-80, -30) dB
// display range.
func DefaultStyle() Style {
	return Style{
		cmap:   "jet",
		svMin:  -80,
		svMax:  -30,
		width:  900,
		height: 400,
		theme:  "white",
	}
}

func (s Style) Colormap() string            { return s.cmap }
func (s Style) SvRange() (float64, float64) { return s.svMin, s.svMax }
func (s Style) Size() (w, h int)            { return s.width, s.height }
func (s Style) Title() string               { return s.title }
func (s Style) Theme() string               { return s.theme }

func (s Style) WithColormap(name string) Style {
	s.cmap = name
	return s
}

// WithSvRange sets the display range; order is normalized.
func (s Style) WithSvRange(lo, hi float64) Style {
	if hi < lo {
		lo, hi = hi, lo
	}
	s.svMin, s.svMax = lo, hi
	return s
}

func (s Style) WithSize(w, h int) Style {
	s.width, s.height = w, h
	return s
}

func (s Style) WithTitle(title string) Style {
	s.title = title
	return s
}

func (s Style) WithTheme(theme string) Style {
	s.theme = theme
	return s
}

// pixelSize formats a dimension for chart initialization options.
func pixelSize(n int) string { return fmt.Sprintf("%dpx", n) }
