package selection

import "testing"

func TestStreamEagerSubscribe(t *testing.T) {
	full := Bounds{0, 0, 10, 10}
	s := NewStream(full)

	var got []Bounds
	s.Subscribe(func(b Bounds) { got = append(got, b) })

	if len(got) != 1 || got[0] != full {
		t.Fatalf("eager call got %v, want [%v]", got, full)
	}

	next := Bounds{1, 2, 3, 4}
	s.Update(next)
	if len(got) != 2 || got[1] != next {
		t.Fatalf("after update got %v", got)
	}
}

func TestStreamResetChannelsAreSeparate(t *testing.T) {
	s := NewStream(Bounds{0, 0, 10, 10})

	changes, resets := 0, 0
	s.Subscribe(func(Bounds) { changes++ })
	s.OnReset(func() { resets++ })

	s.NotifyReset()
	if changes != 1 || resets != 1 {
		t.Fatalf("NotifyReset: changes = %d resets = %d", changes, resets)
	}

	s.Update(Bounds{1, 1, 2, 2})
	s.Reset()
	if s.Bounds() != s.FullExtent() {
		t.Fatalf("Reset left bounds at %+v", s.Bounds())
	}
	if resets != 2 {
		t.Fatalf("Reset fired reset channel %d times", resets)
	}
}

func TestBoundsNormalize(t *testing.T) {
	b := Bounds{5, 9, 1, 3}.Normalize()
	if b != (Bounds{1, 3, 5, 9}) {
		t.Fatalf("Normalize = %+v", b)
	}
}

func TestBoundsDegenerate(t *testing.T) {
	cases := []struct {
		b    Bounds
		want bool
	}{
		{Bounds{0, 0, 1, 1}, false},
		{Bounds{2, 0, 2, 1}, true},
		{Bounds{0, 3, 1, 3}, true},
		{Bounds{}, true},
	}
	for _, tc := range cases {
		if got := tc.b.Degenerate(); got != tc.want {
			t.Fatalf("Degenerate(%+v) = %v, want %v", tc.b, got, tc.want)
		}
	}
}
