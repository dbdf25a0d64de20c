package selection

import (
	"math"
	"testing"
	"time"

	"github.com/echoview/server/internal/data/mvbs"
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
	ranges := []float64{0, 10, 20, 30, 40}
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

func subsetsEqual(a, b *mvbs.Dataset) bool {
	if a.NumPings() != b.NumPings() || a.NumSamples() != b.NumSamples() {
		return false
	}
	for _, ch := range a.Channels() {
		pa, err := a.Sv(ch)
		if err != nil {
			return false
		}
		pb, err := b.Sv(ch)
		if err != nil {
			return false
		}
		for p := range pa {
			for r := range pa[p] {
				va, vb := pa[p][r], pb[p][r]
				if math.IsNaN(va) != math.IsNaN(vb) {
					return false
				}
				if !math.IsNaN(va) && va != vb {
					return false
				}
			}
		}
	}
	return true
}

func TestIdempotentReset(t *testing.T) {
	ds := testDataset(t)
	c := NewController(ds)
	full := c.GramBounds()

	c.HandleSelectionEvent(SourceEchogram, Bounds{
		XMin: full.XMin + 600_000, YMin: 10,
		XMax: full.XMax - 600_000, YMax: 30,
	})
	if c.Subset().NumPings() == ds.NumPings() {
		t.Fatal("selection did not narrow the subset")
	}

	c.HandleSelectionEvent(SourceEchogram, full)
	if !subsetsEqual(c.Subset(), ds) {
		t.Fatal("re-selecting the full extent must restore the unfiltered dataset")
	}
}

func TestDepthNormalizationSymmetry(t *testing.T) {
	ds := testDataset(t)
	full := gramExtent(ds)

	c1 := NewController(ds)
	c1.HandleSelectionEvent(SourceEchogram, Bounds{full.XMin, 10, full.XMax, 30})

	c2 := NewController(ds)
	c2.HandleSelectionEvent(SourceEchogram, Bounds{full.XMin, 30, full.XMax, 10})

	if !subsetsEqual(c1.Subset(), c2.Subset()) {
		t.Fatal("swapped depth bounds must yield the identical subset")
	}
}

func TestDegenerateBoundsFallBackToFullDataset(t *testing.T) {
	ds := testDataset(t)

	t.Run("geographic", func(t *testing.T) {
		c := NewController(ds)
		c.SetControlMode(TrackControl)
		c.HandleSelectionEvent(SourceTrack, Bounds{-124.5, 44.0, -124.5, 44.5})
		if !subsetsEqual(c.Subset(), ds) {
			t.Fatal("degenerate lon range must select the full dataset")
		}
	})

	t.Run("echogram", func(t *testing.T) {
		c := NewController(ds)
		full := c.GramBounds()
		c.HandleSelectionEvent(SourceEchogram, Bounds{full.XMin, 20, full.XMax, 20})
		if !subsetsEqual(c.Subset(), ds) {
			t.Fatal("degenerate depth range must select the full dataset")
		}
	})
}

func TestControlModeRoundTrip(t *testing.T) {
	ds := testDataset(t)
	c := NewController(ds)
	full := c.GramBounds()

	c.HandleSelectionEvent(SourceEchogram, Bounds{full.XMin, 10, full.XMax, 30})
	before := c.Subset()

	c.SetControlMode(TrackControl)
	c.SetControlMode(EchogramControl)

	if !subsetsEqual(before, c.Subset()) {
		t.Fatal("mode toggle round trip must restore the pre-toggle subset")
	}
}

func TestOneEventOneRecomputePass(t *testing.T) {
	ds := testDataset(t)
	c := NewController(ds)

	counts := map[string]int{}
	for _, name := range []string{"track", "hist", "table"} {
		name := name
		c.RegisterView(name, func(*mvbs.Dataset) { counts[name]++ })
	}
	for name, n := range counts {
		if n != 1 {
			t.Fatalf("view %s: eager call count = %d, want 1", name, n)
		}
	}

	full := c.GramBounds()
	c.HandleSelectionEvent(SourceEchogram, Bounds{full.XMin, 10, full.XMax, 30})
	for name, n := range counts {
		if n != 2 {
			t.Fatalf("view %s: after one drag count = %d, want 2", name, n)
		}
	}
}

func TestNonAuthoritativeEventTriggersNothing(t *testing.T) {
	ds := testDataset(t)
	c := NewController(ds)

	calls := 0
	c.RegisterView("hist", func(*mvbs.Dataset) { calls++ })

	// Echogram control: a map-drawn box is stored but drives no views.
	c.HandleSelectionEvent(SourceTrack, Bounds{-124.9, 44.05, -124.5, 44.3})
	if calls != 1 {
		t.Fatalf("non-authoritative event ran a pass, calls = %d", calls)
	}

	// The stored box becomes live when the mode flips.
	c.SetControlMode(TrackControl)
	if calls != 2 {
		t.Fatalf("mode toggle passes = %d, want 2", calls)
	}
	if subsetsEqual(c.Subset(), ds) {
		t.Fatal("stored track box should narrow the subset after toggle")
	}
}

func TestResetEvent(t *testing.T) {
	ds := testDataset(t)
	c := NewController(ds)
	full := c.GramBounds()

	resets := 0
	passes := 0
	c.RegisterView("table", func(*mvbs.Dataset) { passes++ })

	c.mu.Lock()
	c.gram.OnReset(func() { resets++ })
	c.mu.Unlock()

	c.HandleSelectionEvent(SourceEchogram, Bounds{full.XMin, 10, full.XMax, 30})
	c.HandleResetEvent(SourceEchogram)

	if resets != 1 {
		t.Fatalf("reset channel fired %d times, want 1", resets)
	}
	if c.GramBounds() != full {
		t.Fatalf("reset bounds = %+v, want full extent %+v", c.GramBounds(), full)
	}
	// Eager call, drag pass, reset pass.
	if passes != 3 {
		t.Fatalf("passes = %d, want 3", passes)
	}
	if !subsetsEqual(c.Subset(), ds) {
		t.Fatal("reset must restore the unfiltered dataset")
	}
}

func TestRegisterViewReplacesCleanly(t *testing.T) {
	ds := testDataset(t)
	c := NewController(ds)

	old, cur := 0, 0
	c.RegisterView("hist", func(*mvbs.Dataset) { old++ })
	c.RegisterView("hist", func(*mvbs.Dataset) { cur++ })

	full := c.GramBounds()
	c.HandleSelectionEvent(SourceEchogram, Bounds{full.XMin, 10, full.XMax, 30})

	if old != 1 {
		t.Fatalf("replaced callback still receiving updates, calls = %d", old)
	}
	if cur != 2 {
		t.Fatalf("current callback calls = %d, want 2 (eager + drag)", cur)
	}
}

func TestOutOfRangeBoundsYieldEmptySubset(t *testing.T) {
	ds := testDataset(t)
	c := NewController(ds)
	full := c.GramBounds()

	c.HandleSelectionEvent(SourceEchogram, Bounds{
		XMin: full.XMax + 3_600_000, YMin: 10,
		XMax: full.XMax + 7_200_000, YMax: 30,
	})
	sub := c.Subset()
	if sub == nil {
		t.Fatal("out-of-range bounds must yield a valid subset")
	}
	if sub.NumPings() != 0 {
		t.Fatalf("out-of-range bounds kept %d pings, want 0", sub.NumPings())
	}
}

func TestModeAndSubsetReadAsPair(t *testing.T) {
	ds := testDataset(t)
	c := NewController(ds)

	mode, subset := c.ModeAndSubset()
	if mode != EchogramControl {
		t.Fatalf("mode = %v, want EchogramControl", mode)
	}
	if !subsetsEqual(subset, c.Subset()) {
		t.Fatal("pair must carry the subset the mode produced")
	}

	c.SetControlMode(TrackControl)
	mode, subset = c.ModeAndSubset()
	if mode != TrackControl {
		t.Fatalf("mode = %v, want TrackControl", mode)
	}
	if !subsetsEqual(subset, c.Subset()) {
		t.Fatal("pair must follow the mode flip")
	}
}

func TestParseControlMode(t *testing.T) {
	if m, ok := ParseControlMode("Tracks Control"); !ok || m != TrackControl {
		t.Fatalf("ParseControlMode = %v, %v", m, ok)
	}
	if _, ok := ParseControlMode("Sideways Control"); ok {
		t.Fatal("unknown label must not parse")
	}
}
