// Package selection implements the cross-view linking core: selection
// streams bound to source views and the controller that turns their
// bounds into filtered dataset subsets for dependent views.
package selection

// Bounds is a rectangular selection region (x_min, y_min, x_max, y_max)
// in the coordinate space of the plot it was drawn on. Echogram-sourced
// bounds carry (epoch milliseconds, depth); map-sourced bounds carry
// (longitude, latitude). The rendering layer gives no ordering
// guarantee, so consumers normalize before use.
type Bounds struct {
	XMin float64 `json:"x_min"`
	YMin float64 `json:"y_min"`
	XMax float64 `json:"x_max"`
	YMax float64 `json:"y_max"`
}

// Normalize returns the bounds with min/max swapped into order on both
// axes.
func (b Bounds) Normalize() Bounds {
	if b.XMax < b.XMin {
		b.XMin, b.XMax = b.XMax, b.XMin
	}
	if b.YMax < b.YMin {
		b.YMin, b.YMax = b.YMax, b.YMin
	}
	return b
}

// Degenerate reports whether the region spans zero width or height.
// A degenerate region means "no region selected" and consumers fall
// back to the full dataset.
func (b Bounds) Degenerate() bool {
	return b.XMin == b.XMax || b.YMin == b.YMax
}

// Stream holds the current selection region of one source view and
// notifies subscribers synchronously on change. Region-changed and
// region-reset are distinct channels: a pan/zoom reset refreshes
// bookkeeping only, it does not carry bounds.
type Stream struct {
	bounds Bounds
	full   Bounds

	subscribers []func(Bounds)
	resets      []func()
}

// NewStream creates a stream whose initial bounds are the full data
// extent of its source view.
func NewStream(full Bounds) *Stream {
	return &Stream{bounds: full, full: full}
}

// Bounds returns the current region.
func (s *Stream) Bounds() Bounds { return s.bounds }

// FullExtent returns the extent the stream resets to.
func (s *Stream) FullExtent() Bounds { return s.full }

// Update replaces the current bounds and synchronously notifies every
// subscriber. Degenerate bounds are legal.
func (s *Stream) Update(b Bounds) {
	s.bounds = b
	for _, fn := range s.subscribers {
		fn(b)
	}
}

// Subscribe registers a change callback and invokes it once eagerly
// with the current bounds, so the subscriber has a filtered subset
// before any user interaction.
func (s *Stream) Subscribe(fn func(Bounds)) {
	s.subscribers = append(s.subscribers, fn)
	fn(s.bounds)
}

// OnReset registers a callback on the reset channel.
func (s *Stream) OnReset(fn func()) {
	s.resets = append(s.resets, fn)
}

// NotifyReset fires the reset channel without touching bounds.
func (s *Stream) NotifyReset() {
	for _, fn := range s.resets {
		fn()
	}
}

// Reset restores the bounds to the full extent, firing the reset
// channel first and then a single change notification. Equivalent to a
// manual selection of the full extent.
func (s *Stream) Reset() {
	s.NotifyReset()
	s.Update(s.full)
}
