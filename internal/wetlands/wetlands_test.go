package wetlands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gtsearch/parcel-risk/internal/arcgis"
	"github.com/gtsearch/parcel-risk/internal/cache/ttlstore"
	"github.com/gtsearch/parcel-risk/internal/model"
)

func testLog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var testRadii = []float64{50, 200, 500}

func serviceFor(t *testing.T, handler http.HandlerFunc) *Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := arcgis.New(testLog(), srv.Client())
	return New(testLog(), client, srv.URL, 5*time.Second, 0, testRadii, ttlstore.New(time.Minute, 100))
}

func wetlandFeature(code string, areaM2 float64) string {
	return fmt.Sprintf(`{
		"attributes": {"ATTRIBUTE": %q, "WETLAND_TYPE": "Freshwater Forested/Shrub Wetland", "Shape__Area": %v,
			"SYSTEM_NAME": "Palustrine", "SYSTEM": "P", "CLASS_NAME": "Forested"},
		"geometry": {"rings": [[[-82.3249,29.6515],[-82.3247,29.6515],[-82.3247,29.6517],[-82.3249,29.6517],[-82.3249,29.6515]]]}
	}`, code, areaM2)
}

func TestSearchProgressiveFirstRadiusHit(t *testing.T) {
	svc := serviceFor(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("units"); got != "esriSRUnit_Meter" {
			t.Errorf("units = %q", got)
		}
		fmt.Fprintf(w, `{"features":[%s]}`, wetlandFeature("PFO1Fd", 20234.3))
	})

	rep := svc.SearchProgressive(context.Background(), model.Coordinate{Lat: 29.6516, Lng: -82.3248})
	if !rep.Found || rep.Proximity != model.ProximityOnProperty {
		t.Fatalf("Found/Proximity = %v/%s", rep.Found, rep.Proximity)
	}
	if rep.BufferMetersUsed != 50 {
		t.Fatalf("BufferMetersUsed = %v, want 50", rep.BufferMetersUsed)
	}
	if rep.HighestRisk == nil || rep.HighestRisk.Risk != model.RiskHigh {
		t.Fatalf("HighestRisk = %+v", rep.HighestRisk)
	}
	if rep.HighestRisk.Code != "PFO1Fd" {
		t.Fatalf("code = %q", rep.HighestRisk.Code)
	}
	if rep.HighestRisk.Acres != 5 {
		t.Fatalf("Acres = %v, want 5", rep.HighestRisk.Acres)
	}
	if rep.Count != 1 || rep.TotalAcres != 5 {
		t.Fatalf("Count/TotalAcres = %d/%v", rep.Count, rep.TotalAcres)
	}
}

func TestSearchProgressiveExpandsRadii(t *testing.T) {
	var distances []string
	svc := serviceFor(t, func(w http.ResponseWriter, r *http.Request) {
		d := r.URL.Query().Get("distance")
		distances = append(distances, d)
		if d != "500" {
			_, _ = w.Write([]byte(`{"features":[]}`))
			return
		}
		fmt.Fprintf(w, `{"features":[%s]}`, wetlandFeature("PEM1A", 4046.86))
	})

	rep := svc.SearchProgressive(context.Background(), model.Coordinate{Lat: 29.6516, Lng: -82.3248})
	if len(distances) != 3 || distances[0] != "50" || distances[1] != "200" || distances[2] != "500" {
		t.Fatalf("distances = %v, want [50 200 500]", distances)
	}
	if rep.Proximity != model.ProximityInArea || rep.BufferMetersUsed != 500 {
		t.Fatalf("Proximity/Buffer = %s/%v", rep.Proximity, rep.BufferMetersUsed)
	}
}

func TestSearchProgressiveSecondRadiusIsNearby(t *testing.T) {
	svc := serviceFor(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("distance") == "50" {
			_, _ = w.Write([]byte(`{"features":[]}`))
			return
		}
		fmt.Fprintf(w, `{"features":[%s]}`, wetlandFeature("PSS1C", 8093.72))
	})

	rep := svc.SearchProgressive(context.Background(), model.Coordinate{Lat: 29.6516, Lng: -82.3248})
	if rep.Proximity != model.ProximityNearby || rep.BufferMetersUsed != 200 {
		t.Fatalf("Proximity/Buffer = %s/%v", rep.Proximity, rep.BufferMetersUsed)
	}
}

func TestSearchProgressiveNoneFound(t *testing.T) {
	svc := serviceFor(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"features":[]}`))
	})

	rep := svc.SearchProgressive(context.Background(), model.Coordinate{Lat: 29.6516, Lng: -82.3248})
	if rep.Found || rep.Status != model.StatusNoData {
		t.Fatalf("Found/Status = %v/%s", rep.Found, rep.Status)
	}
	if rep.Proximity != model.ProximityNone || rep.BufferMetersUsed != 500 {
		t.Fatalf("Proximity/Buffer = %s/%v", rep.Proximity, rep.BufferMetersUsed)
	}
	if rep.Wetlands == nil || len(rep.Wetlands) != 0 {
		t.Fatalf("Wetlands = %v, want empty non-nil slice", rep.Wetlands)
	}
}

func TestSearchProgressiveErrorIsNeverSilent(t *testing.T) {
	svc := serviceFor(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	})

	rep := svc.SearchProgressive(context.Background(), model.Coordinate{Lat: 29.6516, Lng: -82.3248})
	if rep.Found {
		t.Fatal("provider failure reported as a clean miss")
	}
	if rep.Status != model.StatusError || rep.Error == "" {
		t.Fatalf("Status/Error = %s/%q", rep.Status, rep.Error)
	}
	if rep.Proximity != model.ProximityUnknown {
		t.Fatalf("Proximity = %s, want UNKNOWN", rep.Proximity)
	}
}

func TestSearchProgressiveErrorsNotCached(t *testing.T) {
	var calls atomic.Int32
	svc := serviceFor(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "down", http.StatusServiceUnavailable)
			return
		}
		fmt.Fprintf(w, `{"features":[%s]}`, wetlandFeature("PFO1Fd", 20234.3))
	})

	c := model.Coordinate{Lat: 29.6516, Lng: -82.3248}
	if rep := svc.SearchProgressive(context.Background(), c); rep.Error == "" {
		t.Fatal("first call should have failed")
	}
	if rep := svc.SearchProgressive(context.Background(), c); !rep.Found {
		t.Fatalf("recovery masked by cached error: %+v", rep.Outcome)
	}
}

func TestSearchProgressiveCachesResults(t *testing.T) {
	var calls atomic.Int32
	svc := serviceFor(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprintf(w, `{"features":[%s]}`, wetlandFeature("PFO1Fd", 20234.3))
	})

	c := model.Coordinate{Lat: 29.6516, Lng: -82.3248}
	svc.SearchProgressive(context.Background(), c)
	svc.SearchProgressive(context.Background(), c)
	if calls.Load() != 1 {
		t.Fatalf("upstream calls = %d, want 1", calls.Load())
	}
}
