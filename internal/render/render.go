// Package render rasterizes views to PNG using fogleman/gg: echogram
// and tricolor images, and slippy-map track tiles.
package render

import (
	"bytes"
	"image"
	"image/png"
	"sync"

	"github.com/fogleman/gg"

	"github.com/echoview/server/pkg/colormap"
)

// Config contains renderer configuration.
type Config struct {
	TileSize        int
	DefaultColormap string
}

// Renderer rasterizes datasets. Tile-sized drawing contexts and encode
// buffers are pooled.
type Renderer struct {
	config      Config
	contextPool sync.Pool
	bufferPool  sync.Pool
}

// NewRenderer creates a renderer.
func NewRenderer(cfg Config) *Renderer {
	if cfg.TileSize <= 0 {
		cfg.TileSize = 256
	}
	if cfg.DefaultColormap == "" {
		cfg.DefaultColormap = "jet"
	}
	return &Renderer{
		config: cfg,
		contextPool: sync.Pool{
			New: func() interface{} {
				return gg.NewContext(cfg.TileSize, cfg.TileSize)
			},
		},
		bufferPool: sync.Pool{
			New: func() interface{} {
				return bytes.NewBuffer(make([]byte, 0, 32*1024))
			},
		},
	}
}

func (r *Renderer) colormap(name string) colormap.Colormap {
	if cm, ok := colormap.ByName(name); ok {
		return cm
	}
	cm, _ := colormap.ByName(r.config.DefaultColormap)
	if cm == nil {
		cm = colormap.Jet
	}
	return cm
}

// encode runs the fast PNG encoder through the buffer pool and returns
// a copy of the bytes.
func (r *Renderer) encode(img image.Image) ([]byte, error) {
	buf := r.bufferPool.Get().(*bytes.Buffer)
	defer func() {
		buf.Reset()
		r.bufferPool.Put(buf)
	}()

	encoder := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := encoder.Encode(buf, img); err != nil {
		return nil, err
	}

	result := make([]byte, buf.Len())
	copy(result, buf.Bytes())
	return result, nil
}

// EmptyTile returns a fully transparent tile.
func (r *Renderer) EmptyTile() ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, r.config.TileSize, r.config.TileSize))
	return r.encode(img)
}
