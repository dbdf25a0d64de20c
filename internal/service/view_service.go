// Package service glues the accessor to the renderer and cache: it
// serves rendered images and chart pages for the HTTP API, keyed by the
// controller's selection revision so every cache entry matches the
// current subset.
package service

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/echoview/server/internal/accessor"
	"github.com/echoview/server/internal/cache"
	"github.com/echoview/server/internal/render"
)

// ViewService serves the view endpoints of one accessor instance.
type ViewService struct {
	acc      *accessor.Accessor
	renderer *render.Renderer
	cache    *cache.Manager

	imageW, imageH int

	// mu guards the per-view key ledgers below. When a recomputation
	// pass refreshes a view, its outstanding entries are evicted so the
	// cache never holds a superseded render.
	mu        sync.Mutex
	imageKeys map[string][]string
	pageKeys  map[string][]string
}

// NewViewService creates a view service.
func NewViewService(acc *accessor.Accessor, renderer *render.Renderer, cm *cache.Manager, imageW, imageH int) *ViewService {
	if imageW <= 0 {
		imageW = 900
	}
	if imageH <= 0 {
		imageH = 400
	}
	s := &ViewService{
		acc:       acc,
		renderer:  renderer,
		cache:     cm,
		imageW:    imageW,
		imageH:    imageH,
		imageKeys: make(map[string][]string),
		pageKeys:  make(map[string][]string),
	}
	acc.OnViewRefresh(s.evictStale)
	for _, view := range []string{"echogram", "tricolor", "track"} {
		acc.BindView(view)
	}
	return s
}

// evictStale drops a view's cached renders after a recomputation pass
// made them stale.
func (s *ViewService) evictStale(view string) {
	s.mu.Lock()
	images := s.imageKeys[view]
	pages := s.pageKeys[view]
	delete(s.imageKeys, view)
	delete(s.pageKeys, view)
	s.mu.Unlock()

	for _, key := range images {
		s.cache.DeleteImage(key)
	}
	for _, key := range pages {
		s.cache.DeleteChart(key)
	}
}

func (s *ViewService) rememberImage(view, key string) {
	s.mu.Lock()
	s.imageKeys[view] = append(s.imageKeys[view], key)
	s.mu.Unlock()
}

func (s *ViewService) rememberPage(view, key string) {
	s.mu.Lock()
	s.pageKeys[view] = append(s.pageKeys[view], key)
	s.mu.Unlock()
}

// Accessor returns the underlying accessor.
func (s *ViewService) Accessor() *accessor.Accessor { return s.acc }

// revisionKey builds a cache key covering the selection revision and
// every widget value, so both a new box and a style change miss.
func (s *ViewService) revisionKey(view string) string {
	rev := s.acc.Controller().Recomputes()
	return cache.ImageKey(view, rev, s.acc.Widgets().Values())
}

// EchogramPNG renders the echogram raster for the selected channel.
func (s *ViewService) EchogramPNG() ([]byte, error) {
	key := s.revisionKey("echogram")
	if data, ok := s.cache.GetImage(key); ok {
		return data, nil
	}

	st := s.acc.Style().WithSize(s.imageW, s.imageH)
	ch, ok := s.acc.Widgets().Get(accessor.WidgetChannel)
	channel := s.acc.Dataset().Channels()[0]
	if ok {
		channel = ch.Value().(string)
	}

	data, err := s.renderer.RenderEchogram(s.acc.GramData(), channel, st)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetImage(key, data); err != nil {
		return nil, fmt.Errorf("cache echogram: %w", err)
	}
	s.rememberImage("echogram", key)
	return data, nil
}

// TricolorPNG renders the RGB composite raster.
func (s *ViewService) TricolorPNG() ([]byte, error) {
	key := s.revisionKey("tricolor")
	if data, ok := s.cache.GetImage(key); ok {
		return data, nil
	}

	grid, err := s.acc.Tricolor()
	if err != nil {
		return nil, err
	}
	data, err := s.renderer.RenderTricolor(grid, s.imageW, s.imageH)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetImage(key, data); err != nil {
		return nil, fmt.Errorf("cache tricolor: %w", err)
	}
	s.rememberImage("tricolor", key)
	return data, nil
}

// TrackTilePNG renders the track overlay for one slippy-map tile.
func (s *ViewService) TrackTilePNG(z, x, y int) ([]byte, error) {
	rev := s.acc.Controller().Recomputes()
	key := cache.TileKey(z, x, y, rev)
	if data, ok := s.cache.GetImage(key); ok {
		return data, nil
	}

	data, err := s.renderer.RenderTrackTile(s.acc.TrackData(), z, x, y)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetImage(key, data); err != nil {
		return nil, fmt.Errorf("cache track tile: %w", err)
	}
	s.rememberImage("track", key)
	return data, nil
}

// renderable is the slice of the chart API the pages need.
type renderable interface {
	Render(w io.Writer) error
}

// chartPage caches one chart's HTML under the view's revision key.
func (s *ViewService) chartPage(view string, build func() (renderable, error)) ([]byte, error) {
	key := s.revisionKey("page:" + view)
	if data, ok := s.cache.GetChart(key); ok {
		return data, nil
	}

	chart, err := build()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := chart.Render(&buf); err != nil {
		return nil, fmt.Errorf("render %s page: %w", view, err)
	}
	data := buf.Bytes()
	s.cache.SetChart(key, data)
	s.rememberPage(view, key)
	return data, nil
}

// EchogramPage renders the interactive echogram chart.
func (s *ViewService) EchogramPage() ([]byte, error) {
	return s.chartPage("echogram", func() (renderable, error) {
		return s.acc.Echogram()
	})
}

// TrackPage renders the interactive ship-track chart.
func (s *ViewService) TrackPage() ([]byte, error) {
	return s.chartPage("track", func() (renderable, error) {
		return s.acc.Track(), nil
	})
}

// HistPage renders the Sv distribution chart.
func (s *ViewService) HistPage() ([]byte, error) {
	return s.chartPage("hist", func() (renderable, error) {
		return s.acc.Hist()
	})
}

// CurtainPage renders the 3D curtain chart.
func (s *ViewService) CurtainPage() ([]byte, error) {
	return s.chartPage("curtain", func() (renderable, error) {
		return s.acc.CurtainChart()
	})
}
