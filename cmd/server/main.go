// Package main is the entry point for the echoview server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/echoview/server/internal/accessor"
	"github.com/echoview/server/internal/api"
	"github.com/echoview/server/internal/cache"
	"github.com/echoview/server/internal/config"
	"github.com/echoview/server/internal/data/mvbs"
	"github.com/echoview/server/internal/render"
	"github.com/echoview/server/internal/service"
)

func main() {
	configPath := flag.String("config", "config/server.yaml", "Path to configuration file")
	mvbsPath := flag.String("mvbs", "", "Path to MVBS NetCDF file (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *mvbsPath != "" {
		cfg.Data.MVBSPath = *mvbsPath
	}

	log.Printf("Starting echoview server on port %d", cfg.Server.Port)

	ds, err := mvbs.Open(cfg.Data.MVBSPath)
	if err != nil {
		log.Fatalf("Failed to load MVBS dataset: %v", err)
	}

	cacheManager, err := cache.NewManager(cache.Config{
		ImageCacheSizeMB: cfg.Cache.ImageSizeMB,
		ImageTTL:         time.Duration(cfg.Cache.ImageTTLMinutes) * time.Minute,
		ChartCacheSize:   cfg.Cache.ChartEntries,
	})
	if err != nil {
		log.Fatalf("Failed to initialize cache: %v", err)
	}
	defer cacheManager.Close()

	renderer := render.NewRenderer(render.Config{
		TileSize:        cfg.Render.TileSize,
		DefaultColormap: cfg.Render.DefaultColormap,
	})

	acc := accessor.New(ds)
	if err := applyViewDefaults(acc, cfg); err != nil {
		log.Fatalf("Invalid view defaults: %v", err)
	}

	views := service.NewViewService(acc, renderer, cacheManager,
		cfg.Render.ImageWidth, cfg.Render.ImageHeight)

	router := api.NewRouter(api.RouterConfig{
		Views:       views,
		CORSOrigins: cfg.Server.CORSOrigins,
	})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// applyViewDefaults pushes the configured view defaults into the
// accessor's widgets.
func applyViewDefaults(acc *accessor.Accessor, cfg *config.Config) error {
	widgets := acc.Widgets()

	// Touch the views once so the widgets exist.
	if _, err := acc.Echogram(); err != nil {
		return err
	}
	acc.Track()
	if _, err := acc.Hist(); err != nil {
		return err
	}
	if _, err := acc.Curtain(); err != nil {
		return err
	}
	acc.ControlMode()

	if err := widgets.Apply(accessor.WidgetColormap, cfg.Render.DefaultColormap); err != nil {
		return err
	}
	if err := widgets.Apply(accessor.WidgetTile, cfg.View.TileProvider); err != nil {
		return err
	}
	if err := widgets.Apply(accessor.WidgetRatio, cfg.View.CurtainRatio); err != nil {
		return err
	}
	return widgets.Apply(accessor.WidgetBinSize, float64(cfg.View.HistBins))
}
