package selection

import (
	"sync"
	"time"

	"github.com/echoview/server/internal/data/mvbs"
	"github.com/echoview/server/internal/geo"
)

// ControlMode states which linked view currently drives the shared
// selection.
type ControlMode int

const (
	// EchogramControl: the echogram box filters the track, histogram
	// and table views.
	EchogramControl ControlMode = iota
	// TrackControl: the map box filters the echogram, histogram and
	// table views.
	TrackControl
)

func (m ControlMode) String() string {
	if m == TrackControl {
		return "Tracks Control"
	}
	return "Echograms Control"
}

// ParseControlMode resolves the widget label of a control mode.
func ParseControlMode(s string) (ControlMode, bool) {
	switch s {
	case "Echograms Control":
		return EchogramControl, true
	case "Tracks Control":
		return TrackControl, true
	}
	return EchogramControl, false
}

// Source identifies which view a selection event was drawn on.
type Source int

const (
	SourceEchogram Source = iota
	SourceTrack
)

// ViewFunc receives the new filtered subset when a recomputation pass
// runs. Dependent views (plot factories, renderers) register one each.
type ViewFunc func(*mvbs.Dataset)

// Controller owns the two selection streams and the control-mode flag,
// and routes every mutation through single-entry event handlers so one
// user interaction produces exactly one recomputation pass over the
// dependent views.
//
// The mutex serializes mutations; the widget layer here is an HTTP API
// rather than a single-threaded UI loop, so concurrent events must not
// interleave inside a pass.
type Controller struct {
	mu sync.Mutex

	dataset *mvbs.Dataset
	mode    ControlMode

	gram  *Stream
	track *Stream

	views  map[string]ViewFunc
	subset *mvbs.Dataset

	// recomputes counts completed recomputation passes, exposed for
	// the API status endpoint.
	recomputes uint64
}

// NewController builds a controller over a dataset, creating both
// streams at the dataset's full extents.
func NewController(ds *mvbs.Dataset) *Controller {
	c := &Controller{
		dataset: ds,
		mode:    EchogramControl,
		gram:    NewStream(gramExtent(ds)),
		track:   NewStream(trackExtent(ds)),
		views:   make(map[string]ViewFunc),
		subset:  ds,
	}
	c.subset = c.filter()
	return c
}

// gramExtent is the full (time, depth) extent as echogram bounds, with
// time in epoch milliseconds.
func gramExtent(ds *mvbs.Dataset) Bounds {
	first, last, ok := ds.TimeExtent()
	if !ok {
		return Bounds{}
	}
	dMin, dMax, ok := ds.DepthExtent()
	if !ok {
		return Bounds{}
	}
	return Bounds{
		XMin: epochMillis(first),
		YMin: dMin,
		XMax: epochMillis(last),
		YMax: dMax,
	}
}

// trackExtent is the NaN-ignoring bounding box of the ship track.
func trackExtent(ds *mvbs.Dataset) Bounds {
	c, ok := geo.TrackCorners(ds.Longitude(), ds.Latitude())
	if !ok {
		return Bounds{}
	}
	return Bounds{XMin: c.Left, YMin: c.Bottom, XMax: c.Right, YMax: c.Top}
}

func epochMillis(t time.Time) float64 {
	return float64(t.UnixMilli())
}

func fromEpochMillis(ms float64) time.Time {
	return time.UnixMilli(int64(ms)).UTC()
}

// Dataset returns the full, unfiltered dataset.
func (c *Controller) Dataset() *mvbs.Dataset { return c.dataset }

// ControlMode returns the current mode.
func (c *Controller) ControlMode() ControlMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// GramBounds returns the echogram stream's current region.
func (c *Controller) GramBounds() Bounds {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gram.Bounds()
}

// TrackBounds returns the map stream's current region.
func (c *Controller) TrackBounds() Bounds {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.track.Bounds()
}

// Recomputes returns the number of completed recomputation passes.
func (c *Controller) Recomputes() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.recomputes
}

// RegisterView wires a named dependent view. Registering an existing
// name replaces the previous callback cleanly, so repeated view
// construction never leaks double-updates. The callback is invoked once
// eagerly with the current subset.
func (c *Controller) RegisterView(name string, fn ViewFunc) {
	c.mu.Lock()
	c.views[name] = fn
	subset := c.subset
	c.mu.Unlock()
	fn(subset)
}

// UnregisterView detaches a dependent view.
func (c *Controller) UnregisterView(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.views, name)
}

// HandleSelectionEvent is the single mutation path for box-drag events.
// The matching stream is updated; if the source view is the
// authoritative one under the current control mode, exactly one
// recomputation pass runs. Non-authoritative bounds are stored for a
// later mode toggle but trigger nothing.
func (c *Controller) HandleSelectionEvent(src Source, b Bounds) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch src {
	case SourceEchogram:
		c.gram.Update(b)
		if c.mode == EchogramControl {
			c.recompute()
		}
	case SourceTrack:
		c.track.Update(b)
		if c.mode == TrackControl {
			c.recompute()
		}
	}
}

// HandleResetEvent handles a pan/zoom reset on a view: its stream
// returns to the full data extent. An authoritative reset runs one
// recomputation pass, same as selecting the full extent by hand.
func (c *Controller) HandleResetEvent(src Source) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch src {
	case SourceEchogram:
		c.gram.Reset()
		if c.mode == EchogramControl {
			c.recompute()
		}
	case SourceTrack:
		c.track.Reset()
		if c.mode == TrackControl {
			c.recompute()
		}
	}
}

// SetControlMode switches the authoritative view. The subset is
// recomputed from the newly authoritative stream's existing bounds, so
// toggling A to B and back restores the pre-toggle subset.
func (c *Controller) SetControlMode(mode ControlMode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if mode == c.mode {
		return
	}
	c.mode = mode
	c.recompute()
}

// Subset returns the current filtered subset.
func (c *Controller) Subset() *mvbs.Dataset {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.subset
}

// ModeAndSubset returns the control mode together with the subset it
// produced, from a single lock acquisition. Callers pairing the two
// must use this instead of separate ControlMode and Subset calls, or a
// concurrent mode flip can hand them a mismatched pair.
func (c *Controller) ModeAndSubset() (ControlMode, *mvbs.Dataset) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode, c.subset
}

// DataFromBox returns the subset selected by the authoritative box
// under the current control mode.
func (c *Controller) DataFromBox() *mvbs.Dataset {
	return c.Subset()
}

// recompute derives the filtered subset from the authoritative stream
// and notifies every dependent view once. Callers hold c.mu.
func (c *Controller) recompute() {
	c.subset = c.filter()
	c.recomputes++
	for _, fn := range c.views {
		fn(c.subset)
	}
}

// filter applies the authoritative bounds. Degenerate or empty bounds
// fall back to the entire dataset so an invalid selection never
// collapses the dependent views.
func (c *Controller) filter() *mvbs.Dataset {
	switch c.mode {
	case TrackControl:
		b := c.track.Bounds()
		if b.Degenerate() {
			return c.dataset
		}
		b = b.Normalize()
		return c.dataset.WhereGeo(b.XMin, b.YMin, b.XMax, b.YMax)
	default:
		b := c.gram.Bounds()
		if b.Degenerate() {
			return c.dataset
		}
		b = b.Normalize()
		return c.dataset.Slice(fromEpochMillis(b.XMin), fromEpochMillis(b.XMax), b.YMin, b.YMax)
	}
}
