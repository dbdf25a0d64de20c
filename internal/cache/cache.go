// Package cache provides caching for rendered images and chart pages.
// Keys carry the controller's recompute revision, so stale entries from
// a previous selection are never served and need no explicit purge.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"time"

	"github.com/allegro/bigcache/v3"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Config contains cache configuration.
type Config struct {
	ImageCacheSizeMB int
	ImageTTL         time.Duration
	ChartCacheSize   int
}

// Manager holds the rendered-image cache (PNG bytes, byte-bounded) and
// the chart-page cache (HTML, entry-bounded).
type Manager struct {
	imageCache *bigcache.BigCache
	chartCache *lru.Cache[string, []byte]
}

// NewManager creates a cache manager.
func NewManager(cfg Config) (*Manager, error) {
	imageConfig := bigcache.Config{
		Shards:             1024,
		LifeWindow:         cfg.ImageTTL,
		CleanWindow:        cfg.ImageTTL / 2,
		MaxEntriesInWindow: 100000,
		MaxEntrySize:       512 * 1024, // full-view echogram PNGs run larger than map tiles
		HardMaxCacheSize:   cfg.ImageCacheSizeMB,
		Verbose:            false,
	}

	imageCache, err := bigcache.New(context.Background(), imageConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create image cache: %w", err)
	}

	chartCache, err := lru.New[string, []byte](cfg.ChartCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create chart cache: %w", err)
	}

	return &Manager{
		imageCache: imageCache,
		chartCache: chartCache,
	}, nil
}

// GetImage retrieves a rendered PNG.
func (m *Manager) GetImage(key string) ([]byte, bool) {
	data, err := m.imageCache.Get(key)
	if err != nil {
		return nil, false
	}
	return data, true
}

// SetImage stores a rendered PNG.
func (m *Manager) SetImage(key string, data []byte) error {
	return m.imageCache.Set(key, data)
}

// DeleteImage drops a stored PNG. Missing keys are not an error.
func (m *Manager) DeleteImage(key string) {
	_ = m.imageCache.Delete(key)
}

// GetChart retrieves a rendered chart page.
func (m *Manager) GetChart(key string) ([]byte, bool) {
	return m.chartCache.Get(key)
}

// SetChart stores a rendered chart page.
func (m *Manager) SetChart(key string, data []byte) {
	m.chartCache.Add(key, data)
}

// DeleteChart drops a stored chart page.
func (m *Manager) DeleteChart(key string) {
	m.chartCache.Remove(key)
}

// ImageKey builds a cache key for a view image at a given selection
// revision. Style parameters are hashed so every display change maps to
// its own entry.
func ImageKey(view string, revision uint64, params map[string]interface{}) string {
	base := fmt.Sprintf("img:%s:rev%d", view, revision)
	if len(params) == 0 {
		return base
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := sha256.New()
	h.Write([]byte(base))
	for _, k := range keys {
		h.Write([]byte(fmt.Sprintf("%s=%v", k, params[k])))
	}
	return base + ":" + hex.EncodeToString(h.Sum(nil))[:16]
}

// TileKey builds a cache key for a track tile at a given selection
// revision.
func TileKey(z, x, y int, revision uint64) string {
	return fmt.Sprintf("track:%d/%d/%d:rev%d", z, x, y, revision)
}

// ChartKey builds a cache key for a chart page at a given selection
// revision.
func ChartKey(view string, revision uint64) string {
	return fmt.Sprintf("chart:%s:rev%d", view, revision)
}

// Stats returns cache statistics.
func (m *Manager) Stats() map[string]interface{} {
	return map[string]interface{}{
		"image_cache_len": m.imageCache.Len(),
		"image_cache_cap": m.imageCache.Capacity(),
		"chart_cache_len": m.chartCache.Len(),
	}
}

// Close closes the cache manager.
func (m *Manager) Close() error {
	return m.imageCache.Close()
}
