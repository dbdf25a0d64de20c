package api

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/echoview/server/internal/accessor"
	"github.com/echoview/server/internal/data/mvbs"
	"github.com/echoview/server/internal/geo"
	"github.com/echoview/server/internal/plot"
	"github.com/echoview/server/internal/selection"
	"github.com/echoview/server/internal/service"
)

type handlers struct {
	views *service.ViewService
}

func (h *handlers) acc() *accessor.Accessor { return h.views.Accessor() }

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writePNG(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func writeHTML(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// Chart pages

func (h *handlers) echogramPage(w http.ResponseWriter, r *http.Request) {
	data, err := h.views.EchogramPage()
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeHTML(w, data)
}

func (h *handlers) trackPage(w http.ResponseWriter, r *http.Request) {
	data, err := h.views.TrackPage()
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeHTML(w, data)
}

func (h *handlers) histPage(w http.ResponseWriter, r *http.Request) {
	data, err := h.views.HistPage()
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeHTML(w, data)
}

func (h *handlers) curtainPage(w http.ResponseWriter, r *http.Request) {
	data, err := h.views.CurtainPage()
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeHTML(w, data)
}

// Raster images

func (h *handlers) echogramPNG(w http.ResponseWriter, r *http.Request) {
	data, err := h.views.EchogramPNG()
	if err != nil {
		writeJSONError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writePNG(w, data)
}

func (h *handlers) tricolorPNG(w http.ResponseWriter, r *http.Request) {
	data, err := h.views.TricolorPNG()
	if err != nil {
		if errors.Is(err, plot.ErrTricolorChannels) {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writePNG(w, data)
}

func (h *handlers) trackTile(w http.ResponseWriter, r *http.Request) {
	z, errZ := strconv.Atoi(chi.URLParam(r, "z"))
	x, errX := strconv.Atoi(chi.URLParam(r, "x"))
	y, errY := strconv.Atoi(chi.URLParam(r, "y"))
	if errZ != nil || errX != nil || errY != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid tile coordinates")
		return
	}
	data, err := h.views.TrackTilePNG(z, x, y)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writePNG(w, data)
}

// Selection events

func viewSource(view string) (selection.Source, bool) {
	switch view {
	case "echogram":
		return selection.SourceEchogram, true
	case "track":
		return selection.SourceTrack, true
	}
	return 0, false
}

func (h *handlers) postSelection(w http.ResponseWriter, r *http.Request) {
	src, ok := viewSource(chi.URLParam(r, "view"))
	if !ok {
		writeJSONError(w, http.StatusNotFound, "unknown view")
		return
	}

	var b selection.Bounds
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid bounds payload")
		return
	}
	if anyNaN(b.XMin, b.YMin, b.XMax, b.YMax) {
		writeJSONError(w, http.StatusBadRequest, "bounds must be 4 numeric values")
		return
	}

	h.acc().HandleSelection(src, b)
	writeJSON(w, http.StatusOK, h.selectionState())
}

func (h *handlers) postReset(w http.ResponseWriter, r *http.Request) {
	src, ok := viewSource(chi.URLParam(r, "view"))
	if !ok {
		writeJSONError(w, http.StatusNotFound, "unknown view")
		return
	}
	h.acc().HandleReset(src)
	writeJSON(w, http.StatusOK, h.selectionState())
}

func anyNaN(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}

func (h *handlers) selectionState() map[string]interface{} {
	ctrl := h.acc().Controller()
	return map[string]interface{}{
		"mode":         ctrl.ControlMode().String(),
		"gram_bounds":  ctrl.GramBounds(),
		"track_bounds": ctrl.TrackBounds(),
		"revision":     ctrl.Recomputes(),
	}
}

// Control mode

func (h *handlers) getMode(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"mode": h.acc().ControlMode().String(),
	})
}

func (h *handlers) putMode(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Mode string `json:"mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	mode, ok := selection.ParseControlMode(body.Mode)
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "unknown control mode: "+body.Mode)
		return
	}
	if err := h.acc().SetControlMode(mode); err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.selectionState())
}

// Widgets

func (h *handlers) getWidgets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.acc().Widgets().Values())
}

func (h *handlers) putWidget(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var body struct {
		Value interface{} `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := h.acc().Widgets().Apply(name, body.Value); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":  name,
		"value": body.Value,
	})
}

// Data

type datasetSummary struct {
	Pings     int      `json:"pings"`
	Samples   int      `json:"samples"`
	Channels  []string `json:"channels"`
	TimeStart string   `json:"time_start,omitempty"`
	TimeEnd   string   `json:"time_end,omitempty"`
	DepthMin  float64  `json:"depth_min"`
	DepthMax  float64  `json:"depth_max"`
}

func summarize(ds *mvbs.Dataset) datasetSummary {
	sum := datasetSummary{
		Pings:    ds.NumPings(),
		Samples:  ds.NumSamples(),
		Channels: ds.Channels(),
	}
	if first, last, ok := ds.TimeExtent(); ok {
		sum.TimeStart = first.UTC().Format(time.RFC3339)
		sum.TimeEnd = last.UTC().Format(time.RFC3339)
	}
	if lo, hi, ok := ds.DepthExtent(); ok {
		sum.DepthMin, sum.DepthMax = lo, hi
	}
	return sum
}

func (h *handlers) getDataFromBox(w http.ResponseWriter, r *http.Request) {
	sub := h.acc().DataFromBox()
	rows, err := plot.Table(sub)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"dataset": summarize(sub),
		"summary": rows,
	})
}

func (h *handlers) getHistData(w http.ResponseWriter, r *http.Request) {
	hists, err := h.acc().HistData()
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, hists)
}

// curtainResponse replaces NaN values with nulls so the grid survives
// JSON encoding.
type curtainResponse struct {
	Points [][3]float64 `json:"points"`
	Dims   [3]int       `json:"dims"`
	Values []*float64   `json:"values"`
}

func (h *handlers) getCurtainData(w http.ResponseWriter, r *http.Request) {
	grid, err := h.acc().Curtain()
	if err != nil {
		writeJSONError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	resp := curtainResponse{Points: grid.Points, Dims: grid.Dims}
	resp.Values = make([]*float64, len(grid.Values))
	for i := range grid.Values {
		if !math.IsNaN(grid.Values[i]) {
			resp.Values[i] = &grid.Values[i]
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handlers) getTable(w http.ResponseWriter, r *http.Request) {
	rows, err := h.acc().Table()
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *handlers) getTileProviders(w http.ResponseWriter, r *http.Request) {
	names := geo.ProviderNames()
	providers := make([]geo.TileProvider, 0, len(names))
	for _, name := range names {
		p, err := geo.ProviderByName(name)
		if err != nil {
			continue
		}
		providers = append(providers, p)
	}
	writeJSON(w, http.StatusOK, providers)
}

func (h *handlers) getStatus(w http.ResponseWriter, r *http.Request) {
	ctrl := h.acc().Controller()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"dataset":  summarize(h.acc().Dataset()),
		"mode":     ctrl.ControlMode().String(),
		"revision": ctrl.Recomputes(),
		"widgets":  h.acc().Widgets().Values(),
	})
}
