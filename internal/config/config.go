// Package config handles configuration loading for the echoview server.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the server configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Data   DataConfig   `yaml:"data"`
	Cache  CacheConfig  `yaml:"cache"`
	Render RenderConfig `yaml:"render"`
	View   ViewConfig   `yaml:"view"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port        int      `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// DataConfig contains data source settings.
type DataConfig struct {
	// MVBSPath points to a NetCDF MVBS file; a .zst suffix enables
	// transparent decompression.
	MVBSPath string `yaml:"mvbs_path"`
}

// CacheConfig contains caching settings.
type CacheConfig struct {
	ImageSizeMB     int `yaml:"image_size_mb"`
	ImageTTLMinutes int `yaml:"image_ttl_minutes"`
	ChartEntries    int `yaml:"chart_entries"`
}

// RenderConfig contains rendering settings.
type RenderConfig struct {
	TileSize        int    `yaml:"tile_size"`
	DefaultColormap string `yaml:"default_colormap"`
	ImageWidth      int    `yaml:"image_width"`
	ImageHeight     int    `yaml:"image_height"`
}

// ViewConfig contains view defaults.
type ViewConfig struct {
	TileProvider string  `yaml:"tile_provider"`
	CurtainRatio float64 `yaml:"curtain_ratio"`
	HistBins     int     `yaml:"hist_bins"`
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		// Return default config if file doesn't exist
		return DefaultConfig(), nil
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Apply defaults for missing values
	applyDefaults(&cfg)

	return &cfg, nil
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        8080,
			CORSOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		},
		Data: DataConfig{
			MVBSPath: "./data/concatenated_MVBS.nc",
		},
		Cache: CacheConfig{
			ImageSizeMB:     256,
			ImageTTLMinutes: 10,
			ChartEntries:    64,
		},
		Render: RenderConfig{
			TileSize:        256,
			DefaultColormap: "jet",
			ImageWidth:      900,
			ImageHeight:     400,
		},
		View: ViewConfig{
			TileProvider: "OSM",
			CurtainRatio: 0.001,
			HistBins:     24,
		},
	}
}

func applyDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.Server.Port == 0 {
		cfg.Server.Port = defaults.Server.Port
	}
	if len(cfg.Server.CORSOrigins) == 0 {
		cfg.Server.CORSOrigins = defaults.Server.CORSOrigins
	}
	if cfg.Data.MVBSPath == "" {
		cfg.Data.MVBSPath = defaults.Data.MVBSPath
	}
	if cfg.Cache.ImageSizeMB == 0 {
		cfg.Cache.ImageSizeMB = defaults.Cache.ImageSizeMB
	}
	if cfg.Cache.ImageTTLMinutes == 0 {
		cfg.Cache.ImageTTLMinutes = defaults.Cache.ImageTTLMinutes
	}
	if cfg.Cache.ChartEntries == 0 {
		cfg.Cache.ChartEntries = defaults.Cache.ChartEntries
	}
	if cfg.Render.TileSize == 0 {
		cfg.Render.TileSize = defaults.Render.TileSize
	}
	if cfg.Render.DefaultColormap == "" {
		cfg.Render.DefaultColormap = defaults.Render.DefaultColormap
	}
	if cfg.Render.ImageWidth == 0 {
		cfg.Render.ImageWidth = defaults.Render.ImageWidth
	}
	if cfg.Render.ImageHeight == 0 {
		cfg.Render.ImageHeight = defaults.Render.ImageHeight
	}
	if cfg.View.TileProvider == "" {
		cfg.View.TileProvider = defaults.View.TileProvider
	}
	if cfg.View.CurtainRatio == 0 {
		cfg.View.CurtainRatio = defaults.View.CurtainRatio
	}
	if cfg.View.HistBins == 0 {
		cfg.View.HistBins = defaults.View.HistBins
	}
}
