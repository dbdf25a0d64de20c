// Package accessor provides the user-facing facade over an MVBS
// dataset: one entry point per view type, shared widgets, and the
// linked-selection controller that keeps the views consistent.
package accessor

import (
	"sync"

	"github.com/go-echarts/go-echarts/v2/charts"

	"github.com/echoview/server/internal/data/mvbs"
	"github.com/echoview/server/internal/geo"
	"github.com/echoview/server/internal/plot"
	"github.com/echoview/server/internal/selection"
	"github.com/echoview/server/internal/widget"
	"github.com/echoview/server/pkg/colormap"
)

// Widget names exposed through the registry.
const (
	WidgetColormap    = "colormap"
	WidgetSvRange     = "sv_range"
	WidgetTile        = "tile"
	WidgetChannel     = "channel"
	WidgetRatio       = "curtain_ratio"
	WidgetBinSize     = "bin_size"
	WidgetOverlay     = "overlay"
	WidgetControlMode = "control_mode"
)

// Accessor is the facade users obtain for a dataset.
type Accessor struct {
	mu sync.Mutex

	ds       *mvbs.Dataset
	ctrl     *selection.Controller
	registry *widget.Registry

	// refresh is invoked with the view name on every recomputation
	// pass touching that view. The HTTP layer hangs cache invalidation
	// off it.
	refresh func(view string)

	// Widgets are built lazily, one instance each, reused across view
	// constructions.
	cmap    *widget.Select
	svRange *widget.RangeSlider
	tile    *widget.Select
	channel *widget.Select
	ratio   *widget.FloatInput
	bins    *widget.IntInput
	overlay *widget.Toggle
	mode    *widget.Select
}

// New attaches an accessor to a dataset.
func New(ds *mvbs.Dataset) *Accessor {
	return &Accessor{
		ds:       ds,
		ctrl:     selection.NewController(ds),
		registry: widget.NewRegistry(),
	}
}

// OnViewRefresh installs the callback invoked, per view, whenever a
// recomputation pass refreshes that view. The most recent callback
// wins.
func (a *Accessor) OnViewRefresh(fn func(view string)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.refresh = fn
}

// viewHook is the controller callback registered for a view: it
// forwards each recomputation pass to the refresh callback.
func (a *Accessor) viewHook(name string) selection.ViewFunc {
	return func(*mvbs.Dataset) {
		a.mu.Lock()
		fn := a.refresh
		a.mu.Unlock()
		if fn != nil {
			fn(name)
		}
	}
}

// BindView registers a view's refresh hook without building the view,
// for endpoints that render outside the chart entry points.
func (a *Accessor) BindView(name string) {
	a.ctrl.RegisterView(name, a.viewHook(name))
}

// Controller exposes the linked-selection controller.
func (a *Accessor) Controller() *selection.Controller { return a.ctrl }

// Dataset returns the full dataset.
func (a *Accessor) Dataset() *mvbs.Dataset { return a.ds }

// Widgets returns the name-keyed registry of constructed widgets.
func (a *Accessor) Widgets() *widget.Registry { return a.registry }

func (a *Accessor) colormapWidget() *widget.Select {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cmap == nil {
		a.cmap = widget.NewSelect(WidgetColormap, colormap.Names(), "jet")
		a.registry.Add(a.cmap)
	}
	return a.cmap
}

func (a *Accessor) svRangeWidget() *widget.RangeSlider {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.svRange == nil {
		lo, hi := a.ds.SvRange()
		a.svRange = widget.NewRangeSlider(WidgetSvRange, lo, hi)
		a.registry.Add(a.svRange)
	}
	return a.svRange
}

func (a *Accessor) tileWidget() *widget.Select {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.tile == nil {
		a.tile = widget.NewSelect(WidgetTile, geo.ProviderNames(), "OSM")
		a.registry.Add(a.tile)
	}
	return a.tile
}

func (a *Accessor) channelWidget() *widget.Select {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.channel == nil {
		chs := a.ds.Channels()
		a.channel = widget.NewSelect(WidgetChannel, chs, chs[0])
		a.registry.Add(a.channel)
	}
	return a.channel
}

func (a *Accessor) ratioWidget() *widget.FloatInput {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ratio == nil {
		a.ratio = widget.NewFloatInput(WidgetRatio, 0.001)
		a.registry.Add(a.ratio)
	}
	return a.ratio
}

func (a *Accessor) binsWidget() *widget.IntInput {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.bins == nil {
		a.bins = widget.NewIntInput(WidgetBinSize, 24)
		a.registry.Add(a.bins)
	}
	return a.bins
}

func (a *Accessor) overlayWidget() *widget.Toggle {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.overlay == nil {
		a.overlay = widget.NewToggle(WidgetOverlay, true)
		a.registry.Add(a.overlay)
	}
	return a.overlay
}

func (a *Accessor) modeWidget() *widget.Select {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.mode == nil {
		a.mode = widget.NewSelect(WidgetControlMode,
			[]string{selection.EchogramControl.String(), selection.TrackControl.String()},
			selection.EchogramControl.String())
		a.mode.OnChange(func(v string) {
			if m, ok := selection.ParseControlMode(v); ok {
				a.ctrl.SetControlMode(m)
			}
		})
		a.registry.Add(a.mode)
	}
	return a.mode
}

// Style assembles the current display style from the widgets.
func (a *Accessor) Style() plot.Style {
	lo, hi := a.svRangeWidget().Range()
	return plot.DefaultStyle().
		WithColormap(a.colormapWidget().Selected()).
		WithSvRange(lo, hi)
}

// GramData is the subset shown in the echogram family of views: the
// full dataset when the echogram is authoritative, the track-box
// filtered subset otherwise.
func (a *Accessor) GramData() *mvbs.Dataset {
	mode, subset := a.ctrl.ModeAndSubset()
	if mode == selection.TrackControl {
		return subset
	}
	return a.ds
}

// TrackData is the subset shown in the map view, the converse of
// GramData.
func (a *Accessor) TrackData() *mvbs.Dataset {
	mode, subset := a.ctrl.ModeAndSubset()
	if mode == selection.EchogramControl {
		return subset
	}
	return a.ds
}

// Echogram builds the heatmap view for the currently selected channel.
// Repeated calls reuse the existing widgets and replace the prior view
// subscription instead of stacking a new one.
func (a *Accessor) Echogram() (*charts.HeatMap, error) {
	ch := a.channelWidget().Selected()
	st := a.Style()
	a.ctrl.RegisterView("echogram", a.viewHook("echogram"))
	return plot.Echogram(a.GramData(), ch, st)
}

// Tricolor builds the RGB composite grid with the default channel to
// component assignment and the Sv range slider as thresholds.
func (a *Accessor) Tricolor() (*plot.TricolorGrid, error) {
	rgb, err := plot.DefaultRGBMap(a.ds)
	if err != nil {
		return nil, err
	}
	lo, hi := a.svRangeWidget().Range()
	a.ctrl.RegisterView("tricolor", a.viewHook("tricolor"))
	return plot.Tricolor(a.GramData(), rgb, lo, hi)
}

// Track builds the ship-track view.
func (a *Accessor) Track() *charts.Scatter {
	st := a.Style()
	a.ctrl.RegisterView("track", a.viewHook("track"))
	a.tileWidget()
	return plot.Track(a.TrackData(), st)
}

// TileProvider resolves the currently selected base-map provider.
func (a *Accessor) TileProvider() (geo.TileProvider, error) {
	return geo.ProviderByName(a.tileWidget().Selected())
}

// Curtain builds the 3D curtain grid for the selected channel at the
// configured height ratio. Like hist and table it drapes the
// authoritative filtered subset, so a box drawn on the echogram narrows
// the curtain to the boxed pings.
func (a *Accessor) Curtain() (*plot.CurtainGrid, error) {
	ch := a.channelWidget().Selected()
	ratio := a.ratioWidget().Float()
	a.ctrl.RegisterView("curtain", a.viewHook("curtain"))
	return plot.Curtain(a.ctrl.Subset(), ch, ratio)
}

// CurtainChart renders the curtain grid as a 3D surface chart.
func (a *Accessor) CurtainChart() (*charts.Surface3D, error) {
	grid, err := a.Curtain()
	if err != nil {
		return nil, err
	}
	return plot.CurtainChart(grid, a.Style()), nil
}

// Hist builds the Sv distribution view over the authoritative subset.
func (a *Accessor) Hist() (*charts.Bar, error) {
	bins := a.binsWidget().Int()
	overlay := a.overlayWidget().Bool()
	a.ctrl.RegisterView("hist", a.viewHook("hist"))
	return plot.Hist(a.ctrl.Subset(), bins, overlay, a.Style())
}

// HistData returns the per-channel histogram bins behind the Hist view.
func (a *Accessor) HistData() ([]plot.Histogram, error) {
	bins := a.binsWidget().Int()
	a.ctrl.RegisterView("hist", a.viewHook("hist"))
	return plot.HistData(a.ctrl.Subset(), bins)
}

// Table computes summary statistics over the authoritative subset.
func (a *Accessor) Table() ([]plot.SummaryRow, error) {
	a.ctrl.RegisterView("table", a.viewHook("table"))
	return plot.Table(a.ctrl.Subset())
}

// DataFromBox returns the subset selected by the authoritative box.
func (a *Accessor) DataFromBox() *mvbs.Dataset {
	return a.ctrl.DataFromBox()
}

// HandleSelection forwards a box-drag event to the controller.
func (a *Accessor) HandleSelection(src selection.Source, b selection.Bounds) {
	a.ctrl.HandleSelectionEvent(src, b)
}

// HandleReset forwards a pan/zoom reset event to the controller.
func (a *Accessor) HandleReset(src selection.Source) {
	a.ctrl.HandleResetEvent(src)
}

// SetControlMode switches the authoritative view and keeps the mode
// widget in sync.
func (a *Accessor) SetControlMode(m selection.ControlMode) error {
	return a.modeWidget().SetSelected(m.String())
}

// ControlMode returns the current mode, constructing the mode widget on
// first use.
func (a *Accessor) ControlMode() selection.ControlMode {
	a.modeWidget()
	return a.ctrl.ControlMode()
}
