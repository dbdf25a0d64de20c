package cache

import (
	"testing"
	"time"
)

func testManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(Config{
		ImageCacheSizeMB: 16,
		ImageTTL:         time.Minute,
		ChartCacheSize:   8,
	})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return m
}

func TestImageRoundTrip(t *testing.T) {
	m := testManager(t)
	key := ImageKey("echogram", 3, nil)

	if _, ok := m.GetImage(key); ok {
		t.Fatal("unexpected hit on empty cache")
	}
	if err := m.SetImage(key, []byte("png")); err != nil {
		t.Fatalf("SetImage: %v", err)
	}
	data, ok := m.GetImage(key)
	if !ok || string(data) != "png" {
		t.Fatalf("GetImage = %q, %v", data, ok)
	}
}

func TestChartRoundTrip(t *testing.T) {
	m := testManager(t)
	key := ChartKey("hist", 1)

	m.SetChart(key, []byte("<html>"))
	data, ok := m.GetChart(key)
	if !ok || string(data) != "<html>" {
		t.Fatalf("GetChart = %q, %v", data, ok)
	}
}

func TestImageKey(t *testing.T) {
	t.Run("revisionSeparatesEntries", func(t *testing.T) {
		if ImageKey("echogram", 1, nil) == ImageKey("echogram", 2, nil) {
			t.Fatal("revisions must map to distinct keys")
		}
	})

	t.Run("stableAcrossCalls", func(t *testing.T) {
		params := map[string]interface{}{"cmap": "jet", "lo": -80.0, "hi": -30.0}
		k1 := ImageKey("echogram", 1, params)
		k2 := ImageKey("echogram", 1, params)
		if k1 != k2 {
			t.Fatalf("expected stable key, got %q vs %q", k1, k2)
		}
	})

	t.Run("paramsHashIntoKey", func(t *testing.T) {
		base := ImageKey("echogram", 1, nil)
		withParams := ImageKey("echogram", 1, map[string]interface{}{"cmap": "jet"})
		if base == withParams {
			t.Fatal("styled key must differ from base")
		}
	})
}

func TestTileKey(t *testing.T) {
	want := "track:8/39/92:rev5"
	if got := TileKey(8, 39, 92, 5); got != want {
		t.Fatalf("TileKey = %q, want %q", got, want)
	}
}
