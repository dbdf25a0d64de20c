package accessor

import (
	"math"
	"testing"
	"time"

	"github.com/echoview/server/internal/data/mvbs"
	"github.com/echoview/server/internal/selection"
)

func testDataset(t *testing.T) *mvbs.Dataset {
	t.Helper()

	base := time.Date(2017, 6, 25, 0, 0, 0, 0, time.UTC)
	pings := make([]time.Time, 100)
	lon := make([]float64, 100)
	lat := make([]float64, 100)
	for i := range pings {
		pings[i] = base.Add(time.Duration(i) * time.Minute)
		lon[i] = -125.0 + 0.01*float64(i)
		lat[i] = 44.0 + 0.005*float64(i)
	}
	ranges := []float64{0, 10, 20, 30}
	channels := []string{"18kHz", "38kHz", "120kHz"}

	sv := make([][][]float64, len(channels))
	for c := range sv {
		sv[c] = make([][]float64, len(pings))
		for p := range sv[c] {
			row := make([]float64, len(ranges))
			for r := range row {
				row[r] = -80 + math.Mod(float64(c+p+r), 50)
			}
			sv[c][p] = row
		}
	}

	ds, err := mvbs.New(pings, ranges, channels, sv, lon, lat, -80, -30)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return ds
}

func TestViewEntryPoints(t *testing.T) {
	a := New(testDataset(t))

	if _, err := a.Echogram(); err != nil {
		t.Fatalf("Echogram: %v", err)
	}
	if _, err := a.Tricolor(); err != nil {
		t.Fatalf("Tricolor: %v", err)
	}
	if a.Track() == nil {
		t.Fatal("Track returned nil")
	}
	if _, err := a.Curtain(); err != nil {
		t.Fatalf("Curtain: %v", err)
	}
	if _, err := a.Hist(); err != nil {
		t.Fatalf("Hist: %v", err)
	}
	rows, err := a.Table()
	if err != nil {
		t.Fatalf("Table: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("Table rows = %d", len(rows))
	}
}

func TestWidgetsAreSharedAcrossViews(t *testing.T) {
	a := New(testDataset(t))

	if _, err := a.Echogram(); err != nil {
		t.Fatalf("Echogram: %v", err)
	}
	if _, err := a.Hist(); err != nil {
		t.Fatalf("Hist: %v", err)
	}
	names := a.Widgets().Names()
	want := map[string]bool{
		WidgetColormap: true, WidgetSvRange: true,
		WidgetChannel: true, WidgetBinSize: true, WidgetOverlay: true,
	}
	for _, n := range names {
		delete(want, n)
	}
	if len(want) != 0 {
		t.Fatalf("missing widgets %v, have %v", want, names)
	}

	// A second Echogram call reuses the same slider instance.
	s1 := a.svRangeWidget()
	if _, err := a.Echogram(); err != nil {
		t.Fatalf("Echogram: %v", err)
	}
	if a.svRangeWidget() != s1 {
		t.Fatal("widget rebuilt on second view construction")
	}
}

func TestRepeatedViewConstructionKeepsOnePassPerEvent(t *testing.T) {
	a := New(testDataset(t))

	for i := 0; i < 3; i++ {
		if _, err := a.Echogram(); err != nil {
			t.Fatalf("Echogram: %v", err)
		}
		if _, err := a.Hist(); err != nil {
			t.Fatalf("Hist: %v", err)
		}
	}

	before := a.Controller().Recomputes()
	full := a.Controller().GramBounds()
	a.HandleSelection(selection.SourceEchogram, selection.Bounds{
		XMin: full.XMin, YMin: 10, XMax: full.XMax, YMax: 20,
	})
	if got := a.Controller().Recomputes() - before; got != 1 {
		t.Fatalf("one drag ran %d passes, want 1", got)
	}
}

func TestControlModeThroughWidget(t *testing.T) {
	a := New(testDataset(t))
	a.ControlMode() // construct the widget

	if err := a.Widgets().Apply(WidgetControlMode, "Tracks Control"); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if a.ControlMode() != selection.TrackControl {
		t.Fatal("widget change did not reach the controller")
	}

	if err := a.Widgets().Apply(WidgetControlMode, "Echograms Control"); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if a.ControlMode() != selection.EchogramControl {
		t.Fatal("mode did not toggle back")
	}
}

func TestDataFromBoxFollowsControlMode(t *testing.T) {
	ds := testDataset(t)
	a := New(ds)
	full := a.Controller().GramBounds()

	a.HandleSelection(selection.SourceEchogram, selection.Bounds{
		XMin: full.XMin + 600_000, YMin: 0,
		XMax: full.XMax - 600_000, YMax: 30,
	})
	if a.DataFromBox().NumPings() >= ds.NumPings() {
		t.Fatal("echogram box did not narrow DataFromBox")
	}

	if err := a.SetControlMode(selection.TrackControl); err != nil {
		t.Fatalf("SetControlMode: %v", err)
	}
	// No track box drawn: full extent selection covers everything but
	// the boundary pings under the strict inequality.
	sub := a.DataFromBox()
	if sub.NumPings() != ds.NumPings() {
		t.Fatal("track mask must preserve axis length")
	}
}

func TestCurtainFollowsEchogramBox(t *testing.T) {
	ds := testDataset(t)
	a := New(ds)

	base := ds.PingTime()[0]
	a.HandleSelection(selection.SourceEchogram, selection.Bounds{
		XMin: float64(base.UnixMilli()),
		YMin: 0,
		XMax: float64(base.Add(59 * time.Minute).UnixMilli()),
		YMax: 30,
	})

	grid, err := a.Curtain()
	if err != nil {
		t.Fatalf("Curtain: %v", err)
	}
	if grid.Dims[1] != 60 {
		t.Fatalf("curtain traces = %d, want the 60 boxed pings", grid.Dims[1])
	}
	if grid.Dims[0] != ds.NumSamples() {
		t.Fatalf("curtain samples = %d, want %d", grid.Dims[0], ds.NumSamples())
	}
}

func TestViewRefreshCallbacksFirePerEvent(t *testing.T) {
	ds := testDataset(t)
	a := New(ds)

	var calls []string
	a.OnViewRefresh(func(view string) { calls = append(calls, view) })

	if _, err := a.Echogram(); err != nil {
		t.Fatalf("Echogram: %v", err)
	}
	if _, err := a.Hist(); err != nil {
		t.Fatalf("Hist: %v", err)
	}
	calls = nil

	base := ds.PingTime()[0]
	a.HandleSelection(selection.SourceEchogram, selection.Bounds{
		XMin: float64(base.UnixMilli()),
		YMin: 0,
		XMax: float64(base.Add(30 * time.Minute).UnixMilli()),
		YMax: 30,
	})

	counts := make(map[string]int)
	for _, v := range calls {
		counts[v]++
	}
	if counts["echogram"] != 1 || counts["hist"] != 1 {
		t.Fatalf("refresh calls = %v, want exactly one per registered view", calls)
	}
}

func TestTricolorRequiresThreeChannels(t *testing.T) {
	ds := testDataset(t)
	two, err := ds.SelChannels("18kHz", "38kHz")
	if err != nil {
		t.Fatalf("SelChannels: %v", err)
	}
	a := New(two)
	if _, err := a.Tricolor(); err == nil {
		t.Fatal("expected validation error for 2 channels")
	}
}
