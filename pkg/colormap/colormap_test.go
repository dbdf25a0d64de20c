package colormap

import (
	"image/color"
	"testing"
)

func TestJetEndpoints(t *testing.T) {
	t.Parallel()

	c0, ok := Jet.At(0).(color.RGBA)
	if !ok {
		t.Fatalf("expected color.RGBA at t=0")
	}
	if c0 != (color.RGBA{R: 0, G: 0, B: 128, A: 255}) {
		t.Fatalf("unexpected Jet.At(0): %#v", c0)
	}

	c1, ok := Jet.At(1).(color.RGBA)
	if !ok {
		t.Fatalf("expected color.RGBA at t=1")
	}
	if c1 != (color.RGBA{R: 128, G: 0, B: 0, A: 255}) {
		t.Fatalf("unexpected Jet.At(1): %#v", c1)
	}
}

func TestLinearColormapClampsOutOfRange(t *testing.T) {
	t.Parallel()

	if EK500.At(-0.5) != EK500.At(0) {
		t.Error("t<0 should clamp to first color")
	}
	if EK500.At(1.5) != EK500.At(1) {
		t.Error("t>1 should clamp to last color")
	}
}

func TestByName(t *testing.T) {
	for _, name := range Names() {
		if _, ok := ByName(name); !ok {
			t.Errorf("colormap %q not resolvable", name)
		}
	}
	if _, ok := ByName("nonexistent"); ok {
		t.Error("expected lookup miss for unknown name")
	}
}

func TestChannelsWrap(t *testing.T) {
	t.Parallel()

	if Channels.AtIndex(0) != Channels.AtIndex(10) {
		t.Error("channel palette should wrap around")
	}
}
