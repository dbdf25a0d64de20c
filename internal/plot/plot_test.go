package plot

import (
	"math"
	"testing"
)

func TestBinValues(t *testing.T) {
	vals := []float64{-80, -79, -55, -31, -30, math.NaN(), -90}
	edges, counts := BinValues(vals, -80, -30, 5)

	if len(edges) != 6 || len(counts) != 5 {
		t.Fatalf("edges/counts length = %d/%d", len(edges), len(counts))
	}
	if edges[0] != -80 || edges[5] != -30 {
		t.Fatalf("edges = %v", edges)
	}
	// NaN and -90 skipped; -30 lands in the last bin (top edge inclusive).
	if counts[0] != 2 {
		t.Fatalf("first bin = %d, want 2", counts[0])
	}
	if counts[4] != 2 {
		t.Fatalf("last bin = %d, want 2 (top edge inclusive)", counts[4])
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	if total != 5 {
		t.Fatalf("total = %d, want 5", total)
	}
}

func TestHistPerChannel(t *testing.T) {
	ds := threeChannelDataset(t, func(c, p, r int) float64 { return -50 })

	hists, err := HistData(ds, 10)
	if err != nil {
		t.Fatalf("HistData: %v", err)
	}
	if len(hists) != 3 {
		t.Fatalf("got %d histograms, want 3", len(hists))
	}
	for _, hist := range hists {
		total := 0
		for _, n := range hist.Counts {
			total += n
		}
		if total != ds.NumPings()*ds.NumSamples() {
			t.Fatalf("channel %s counted %d values", hist.Channel, total)
		}
	}

	if _, err := Hist(ds, 10, true, DefaultStyle()); err != nil {
		t.Fatalf("Hist: %v", err)
	}
}

func TestTableStats(t *testing.T) {
	ds := threeChannelDataset(t, func(c, p, r int) float64 {
		return -80 + float64(c)
	})

	rows, err := Table(ds)
	if err != nil {
		t.Fatalf("Table: %v", err)
	}
	// One row per channel plus the pooled row.
	if len(rows) != 4 {
		t.Fatalf("got %d rows, want 4", len(rows))
	}
	if rows[0].Channel != "18kHz" || rows[3].Channel != "all" {
		t.Fatalf("row order: %s ... %s", rows[0].Channel, rows[3].Channel)
	}
	if rows[0].Mean != -80 || rows[0].StdDev != 0 {
		t.Fatalf("constant channel: mean %v std %v", rows[0].Mean, rows[0].StdDev)
	}
	if rows[0].Count != ds.NumPings()*ds.NumSamples() {
		t.Fatalf("count = %d", rows[0].Count)
	}
	if rows[3].Min != -80 || rows[3].Max != -78 {
		t.Fatalf("pooled min/max = %v/%v", rows[3].Min, rows[3].Max)
	}
}

func TestCurtainGrid(t *testing.T) {
	ds := threeChannelDataset(t, func(c, p, r int) float64 {
		return float64(p*10 + r)
	})

	grid, err := Curtain(ds, "38kHz", 0.001)
	if err != nil {
		t.Fatalf("Curtain: %v", err)
	}
	if grid.Dims != [3]int{3, 100, 1} {
		t.Fatalf("Dims = %v", grid.Dims)
	}
	if len(grid.Points) != 300 || len(grid.Values) != 300 {
		t.Fatalf("lengths = %d/%d", len(grid.Points), len(grid.Values))
	}
	// Sample axis varies fastest; z descends by the ratio.
	if grid.Points[1][2] != -0.001 {
		t.Fatalf("z step = %v", grid.Points[1][2])
	}
	if grid.Values[0] != 0 || grid.Values[1] != 1 || grid.Values[3] != 10 {
		t.Fatalf("ravel order wrong: %v %v %v", grid.Values[0], grid.Values[1], grid.Values[3])
	}

	if _, err := Curtain(ds, "200kHz", 0.001); err == nil {
		t.Fatal("expected error for unknown channel")
	}
}

func TestMoored(t *testing.T) {
	if !Moored([]float64{-124.5, -124.5}, []float64{44.0, 44.0}) {
		t.Fatal("constant track should be moored")
	}
	if Moored([]float64{-124.5, -124.6}, []float64{44.0, 44.0}) {
		t.Fatal("moving track should not be moored")
	}
	if Moored([]float64{math.NaN()}, []float64{math.NaN()}) {
		t.Fatal("no fixes should not be moored")
	}
}

func TestEchogramFactory(t *testing.T) {
	ds := threeChannelDataset(t, func(c, p, r int) float64 { return -50 })

	chart, err := Echogram(ds, "18kHz", DefaultStyle().WithColormap("ek500"))
	if err != nil {
		t.Fatalf("Echogram: %v", err)
	}
	if chart == nil {
		t.Fatal("nil chart")
	}

	if _, err := Echogram(ds, "200kHz", DefaultStyle()); err == nil {
		t.Fatal("expected error for unknown channel")
	}
}

func TestStyleIsImmutable(t *testing.T) {
	base := DefaultStyle()
	mod := base.WithColormap("viridis").WithSvRange(-40, -90)

	if base.Colormap() != "jet" {
		t.Fatalf("base colormap mutated to %s", base.Colormap())
	}
	lo, hi := mod.SvRange()
	if lo != -90 || hi != -40 {
		t.Fatalf("WithSvRange did not normalize: (%v, %v)", lo, hi)
	}
}
