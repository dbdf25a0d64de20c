package geo

import (
	"fmt"
	"sort"
	"strings"
)

// TileProvider describes one base map tile source. URL templates use the
// slippy-map {z}/{x}/{y} placeholders and are resolved by the frontend;
// the server only validates names and echoes templates into plot specs.
type TileProvider struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Attribution string `json:"attribution"`
}

// Fixed set of supported base layers.
var tileProviders = map[string]TileProvider{
	"OSM": {
		Name:        "OSM",
		URL:         "https://tile.openstreetmap.org/{z}/{x}/{y}.png",
		Attribution: "© OpenStreetMap contributors",
	},
	"CartoLight": {
		Name:        "CartoLight",
		URL:         "https://basemaps.cartocdn.com/light_all/{z}/{x}/{y}.png",
		Attribution: "© CARTO",
	},
	"CartoDark": {
		Name:        "CartoDark",
		URL:         "https://basemaps.cartocdn.com/dark_all/{z}/{x}/{y}.png",
		Attribution: "© CARTO",
	},
	"EsriImagery": {
		Name:        "EsriImagery",
		URL:         "https://server.arcgisonline.com/ArcGIS/rest/services/World_Imagery/MapServer/tile/{z}/{y}/{x}",
		Attribution: "© Esri",
	},
	"EsriOceanBase": {
		Name:        "EsriOceanBase",
		URL:         "https://server.arcgisonline.com/ArcGIS/rest/services/Ocean/World_Ocean_Base/MapServer/tile/{z}/{y}/{x}",
		Attribution: "© Esri",
	},
	"EsriOceanReference": {
		Name:        "EsriOceanReference",
		URL:         "https://server.arcgisonline.com/ArcGIS/rest/services/Ocean/World_Ocean_Reference/MapServer/tile/{z}/{y}/{x}",
		Attribution: "© Esri",
	},
	"EsriTerrain": {
		Name:        "EsriTerrain",
		URL:         "https://server.arcgisonline.com/ArcGIS/rest/services/World_Terrain_Base/MapServer/tile/{z}/{y}/{x}",
		Attribution: "© Esri",
	},
	"OpenTopoMap": {
		Name:        "OpenTopoMap",
		URL:         "https://tile.opentopomap.org/{z}/{x}/{y}.png",
		Attribution: "© OpenTopoMap (CC-BY-SA)",
	},
}

// ProviderByName resolves a tile provider. Unknown names return an error
// listing the valid set; this is a user-input validation error.
func ProviderByName(name string) (TileProvider, error) {
	if p, ok := tileProviders[name]; ok {
		return p, nil
	}
	return TileProvider{}, fmt.Errorf("unknown tile provider %q (supported: %s)",
		name, strings.Join(ProviderNames(), ", "))
}

// ProviderNames returns the supported provider names in sorted order.
func ProviderNames() []string {
	names := make([]string, 0, len(tileProviders))
	for name := range tileProviders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
