// Package api provides HTTP handlers for the echoview server.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/echoview/server/internal/service"
)

// RouterConfig contains router configuration.
type RouterConfig struct {
	Views       *service.ViewService
	CORSOrigins []string
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	h := &handlers{views: cfg.Views}

	r.Route("/api", func(r chi.Router) {
		// Interactive chart pages
		r.Get("/views/echogram", h.echogramPage)
		r.Get("/views/track", h.trackPage)
		r.Get("/views/hist", h.histPage)
		r.Get("/views/curtain", h.curtainPage)

		// Raster images
		r.Get("/views/echogram.png", h.echogramPNG)
		r.Get("/views/tricolor.png", h.tricolorPNG)
		r.Get("/tiles/track/{z}/{x}/{y}.png", h.trackTile)

		// Selection events
		r.Post("/views/{view}/selection", h.postSelection)
		r.Post("/views/{view}/reset", h.postReset)

		// Control mode
		r.Get("/mode", h.getMode)
		r.Put("/mode", h.putMode)

		// Widgets
		r.Get("/widgets", h.getWidgets)
		r.Put("/widgets/{name}", h.putWidget)

		// Data
		r.Get("/data/box", h.getDataFromBox)
		r.Get("/data/hist", h.getHistData)
		r.Get("/data/curtain", h.getCurtainData)
		r.Get("/table", h.getTable)
		r.Get("/tile-providers", h.getTileProviders)
		r.Get("/status", h.getStatus)
	})

	return r
}
