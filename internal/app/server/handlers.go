package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gtsearch/parcel-risk/internal/analyzer"
	"github.com/gtsearch/parcel-risk/internal/model"
	"github.com/gtsearch/parcel-risk/internal/observability"
)

type handlers struct {
	logger *slog.Logger
	src    Sources
}

func (h *handlers) propertyAnalysis(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}

	req, err := parseAnalysisRequest(r)
	if err != nil {
		http.Error(sw, err.Error(), http.StatusBadRequest)
		observability.ObserveHTTP(r.Method, "/api/property-analysis", sw.code, time.Since(start).Seconds())
		return
	}

	report, err := h.src.Analyzer.Analyze(r.Context(), req)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, analyzer.ErrInvalidInput) {
			status = http.StatusBadRequest
		}
		http.Error(sw, err.Error(), status)
		observability.ObserveHTTP(r.Method, "/api/property-analysis", sw.code, time.Since(start).Seconds())
		return
	}

	writeJSON(sw, report)
	observability.ObserveHTTP(r.Method, "/api/property-analysis", sw.code, time.Since(start).Seconds())
}

func (h *handlers) floodZone(w http.ResponseWriter, r *http.Request) {
	c, err := parseCoordinate(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, h.src.Flood.FloodZone(r.Context(), c))
}

func (h *handlers) wetlands(w http.ResponseWriter, r *http.Request) {
	c, err := parseCoordinate(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, h.src.Wetlands.SearchProgressive(r.Context(), c))
}

func (h *handlers) landUse(w http.ResponseWriter, r *http.Request) {
	c, err := parseCoordinate(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, h.src.LandUse.LandUse(r.Context(), c, strings.TrimSpace(r.URL.Query().Get("parcel_id"))))
}

func (h *handlers) zoning(w http.ResponseWriter, r *http.Request) {
	c, err := parseCoordinate(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	county := strings.TrimSpace(r.URL.Query().Get("county"))
	if county == "" {
		http.Error(w, "missing required parameter: county", http.StatusBadRequest)
		return
	}
	writeJSON(w, h.src.Zoning.Zoning(r.Context(), county, c))
}

func parseAnalysisRequest(r *http.Request) (analyzer.Request, error) {
	c, err := parseCoordinate(r)
	if err != nil {
		return analyzer.Request{}, err
	}
	return analyzer.Request{
		Lat:      c.Lat,
		Lng:      c.Lng,
		County:   strings.TrimSpace(r.URL.Query().Get("county")),
		ParcelID: strings.TrimSpace(r.URL.Query().Get("parcel_id")),
	}, nil
}

func parseCoordinate(r *http.Request) (model.Coordinate, error) {
	rawLat := strings.TrimSpace(r.URL.Query().Get("lat"))
	rawLng := strings.TrimSpace(r.URL.Query().Get("lng"))
	if rawLat == "" || rawLng == "" {
		return model.Coordinate{}, errors.New("missing required parameters: lat, lng")
	}
	lat, err := strconv.ParseFloat(rawLat, 64)
	if err != nil {
		return model.Coordinate{}, fmt.Errorf("invalid lat: %w", err)
	}
	lng, err := strconv.ParseFloat(rawLng, 64)
	if err != nil {
		return model.Coordinate{}, fmt.Errorf("invalid lng: %w", err)
	}
	if lat < -90 || lat > 90 {
		return model.Coordinate{}, errors.New("lat must be in [-90,90]")
	}
	if lng < -180 || lng > 180 {
		return model.Coordinate{}, errors.New("lng must be in [-180,180]")
	}
	return model.Coordinate{Lat: lat, Lng: lng}, nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}
