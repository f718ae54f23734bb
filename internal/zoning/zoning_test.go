package zoning

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gtsearch/parcel-risk/internal/arcgis"
	"github.com/gtsearch/parcel-risk/internal/cache/ttlstore"
	"github.com/gtsearch/parcel-risk/internal/model"
)

func serviceFor(t *testing.T, reg *Registry, handler http.HandlerFunc) (*Service, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := arcgis.New(testLog(), srv.Client())
	return New(testLog(), client, reg, 5*time.Second, 0, ttlstore.New(time.Minute, 100)), srv
}

func feature(attrs string) string {
	return `{"features":[{"attributes":{` + attrs + `}}]}`
}

func addPutnam(reg *Registry, base string) {
	reg.Counties["Putnam"] = County{
		HasZoning:  true,
		ManualLink: "https://example.org/putnam",
		Layers: []Layer{
			{Name: "municipal-zoning", URL: base + "/municipal-zoning", Role: RoleMunicipalZoning,
				Fields: FieldMapping{ZoningCode: []string{"ZONECLASS"}, ZoningDesc: []string{"ZONEDESC"}}},
			{Name: "county-zoning", URL: base + "/county-zoning", Role: RoleCountyZoning,
				Fields: FieldMapping{ZoningCode: []string{"ZONECLASS"}, ZoningDesc: []string{"ZONEDESC"}}},
			{Name: "municipal-flu", URL: base + "/municipal-flu", Role: RoleMunicipalFLU,
				Fields: FieldMapping{FLUCode: []string{"LANDUSECODE"}, FLUDesc: []string{"LANDUSEDESC"}}},
			{Name: "county-flu", URL: base + "/county-flu", Role: RoleCountyFLU,
				Fields: FieldMapping{FLUCode: []string{"LANDUSECODE"}, FLUDesc: []string{"LANDUSEDESC"}}},
		},
	}
}

func TestZoningMunicipalPrecedence(t *testing.T) {
	reg := &Registry{Counties: map[string]County{}}
	svc, srv := serviceFor(t, reg, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/municipal-zoning"):
			_, _ = w.Write([]byte(feature(`"ZONECLASS": "R-2", "ZONEDESC": "Residential, Two-Family"`)))
		case strings.HasPrefix(r.URL.Path, "/county-zoning"):
			_, _ = w.Write([]byte(feature(`"ZONECLASS": "AG", "ZONEDESC": "Agriculture"`)))
		case strings.HasPrefix(r.URL.Path, "/municipal-flu"):
			_, _ = w.Write([]byte(feature(`"LANDUSECODE": "RES", "LANDUSEDESC": "Urban Residential"`)))
		default:
			_, _ = w.Write([]byte(feature(`"LANDUSECODE": "AGR", "LANDUSEDESC": "Agricultural"`)))
		}
	})
	addPutnam(reg, srv.URL)

	res := svc.Zoning(context.Background(), "putnam county", model.Coordinate{Lat: 29.64, Lng: -81.63})
	if !res.Found || res.Status != model.StatusAvailable {
		t.Fatalf("Found/Status = %v/%s", res.Found, res.Status)
	}
	if res.Code != "R-2" || res.Description != "Residential, Two-Family" {
		t.Fatalf("Code/Description = %q/%q", res.Code, res.Description)
	}
	if !res.IsMunicipal {
		t.Fatal("municipal result not flagged IsMunicipal")
	}
	if res.FutureLandUse != "RES" {
		t.Fatalf("FutureLandUse = %q, want municipal RES", res.FutureLandUse)
	}
	if res.FLUOnly {
		t.Fatal("full zoning result flagged FLUOnly")
	}
}

func TestZoningFallsBackToCountyLayer(t *testing.T) {
	reg := &Registry{Counties: map[string]County{}}
	svc, srv := serviceFor(t, reg, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/municipal-zoning"), strings.HasPrefix(r.URL.Path, "/municipal-flu"):
			// outside any municipality
			_, _ = w.Write([]byte(`{"features":[]}`))
		case strings.HasPrefix(r.URL.Path, "/county-zoning"):
			_, _ = w.Write([]byte(feature(`"ZONECLASS": "AG", "ZONEDESC": "Agriculture"`)))
		default:
			_, _ = w.Write([]byte(feature(`"LANDUSECODE": "AGR", "LANDUSEDESC": "Agricultural"`)))
		}
	})
	addPutnam(reg, srv.URL)

	res := svc.Zoning(context.Background(), "Putnam", model.Coordinate{Lat: 29.7, Lng: -81.8})
	if res.Code != "AG" || res.IsMunicipal {
		t.Fatalf("Code/IsMunicipal = %q/%v", res.Code, res.IsMunicipal)
	}
	if !strings.Contains(res.Jurisdiction, "Unincorporated") {
		t.Fatalf("Jurisdiction = %q", res.Jurisdiction)
	}
}

func TestZoningFailingLayerDoesNotSinkOthers(t *testing.T) {
	reg := &Registry{Counties: map[string]County{}}
	svc, srv := serviceFor(t, reg, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/municipal-zoning") {
			http.Error(w, "down", http.StatusServiceUnavailable)
			return
		}
		if strings.HasPrefix(r.URL.Path, "/county-zoning") {
			_, _ = w.Write([]byte(feature(`"ZONECLASS": "AG"`)))
			return
		}
		_, _ = w.Write([]byte(`{"features":[]}`))
	})
	addPutnam(reg, srv.URL)

	res := svc.Zoning(context.Background(), "Putnam", model.Coordinate{Lat: 29.7, Lng: -81.8})
	if !res.Found || res.Code != "AG" {
		t.Fatalf("result = %+v", res)
	}
}

func TestZoningCodeTableDescribes(t *testing.T) {
	reg := &Registry{Counties: map[string]County{}}
	svc, srv := serviceFor(t, reg, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/zon") {
			_, _ = w.Write([]byte(feature(`"ZON": "R3"`)))
			return
		}
		_, _ = w.Write([]byte(feature(`"FLUM": "Medium Density Residential"`)))
	})
	reg.Counties["Highlands"] = County{
		HasZoning: true,
		Layers: []Layer{
			{Name: "zon", URL: srv.URL + "/zon", Role: RoleCountyZoning, Fields: FieldMapping{ZoningCode: []string{"ZON"}}},
			{Name: "flum", URL: srv.URL + "/flum", Role: RoleCountyFLU, Fields: FieldMapping{FLUCode: []string{"FLUM"}}},
		},
		ZoningCodes: map[string]string{"R3": "Multiple Dwelling District"},
	}

	res := svc.Zoning(context.Background(), "Highlands", model.Coordinate{Lat: 27.3, Lng: -81.34})
	if res.Code != "R3" || res.Description != "Multiple Dwelling District" {
		t.Fatalf("Code/Description = %q/%q", res.Code, res.Description)
	}
	if res.FutureLandUse != "Medium Density Residential" {
		t.Fatalf("FutureLandUse = %q", res.FutureLandUse)
	}
}

func TestZoningFLUOnlyCounty(t *testing.T) {
	reg := &Registry{Counties: map[string]County{}}
	svc, srv := serviceFor(t, reg, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(feature(`"FLU": "AGR", "FLU_DESC": "Agriculture"`)))
	})
	reg.Counties["Flagler"] = County{
		FLUOnly:    true,
		ManualLink: "https://example.org/flagler",
		Layers: []Layer{
			{Name: "flu", URL: srv.URL, Role: RoleCountyFLU, Fields: FieldMapping{FLUCode: []string{"FLU"}, FLUDesc: []string{"FLU_DESC"}}},
		},
	}

	res := svc.Zoning(context.Background(), "Flagler", model.Coordinate{Lat: 29.47, Lng: -81.3})
	if !res.Found || !res.FLUOnly {
		t.Fatalf("Found/FLUOnly = %v/%v", res.Found, res.FLUOnly)
	}
	if res.Code != "" || res.FutureLandUse != "AGR" {
		t.Fatalf("Code/FutureLandUse = %q/%q", res.Code, res.FutureLandUse)
	}
	if res.ManualLink != "https://example.org/flagler" {
		t.Fatalf("ManualLink = %q", res.ManualLink)
	}
}

func TestZoningStatewideFallbackForUnknownCounty(t *testing.T) {
	reg := &Registry{Counties: map[string]County{}}
	svc, srv := serviceFor(t, reg, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(feature(`"FLUCSDESC": "Agriculture"`)))
	})
	reg.Statewide = Statewide{FLU: &Layer{Name: "statewide-flu", URL: srv.URL, Fields: FieldMapping{FLUCode: []string{"FLUCSDESC"}}}}

	res := svc.Zoning(context.Background(), "Marion", model.Coordinate{Lat: 29.2, Lng: -82.1})
	if !res.Found || !res.Statewide || !res.FLUOnly {
		t.Fatalf("Found/Statewide/FLUOnly = %v/%v/%v", res.Found, res.Statewide, res.FLUOnly)
	}
	if res.FutureLandUse != "Agriculture" {
		t.Fatalf("FutureLandUse = %q", res.FutureLandUse)
	}
	if !strings.Contains(res.Note, "not authoritative") {
		t.Fatalf("Note = %q", res.Note)
	}
}

func TestZoningUnsupportedCounty(t *testing.T) {
	reg := &Registry{Counties: map[string]County{}}
	client := arcgis.New(testLog(), http.DefaultClient)
	svc := New(testLog(), client, reg, time.Second, 0, nil)

	res := svc.Zoning(context.Background(), "Marion", model.Coordinate{Lat: 29.2, Lng: -82.1})
	if res.Found || res.Status != model.StatusUnsupported {
		t.Fatalf("Found/Status = %v/%s", res.Found, res.Status)
	}
}

func TestZoningUseStatewideFLUSkipsLayers(t *testing.T) {
	var layerCalled bool
	reg := &Registry{Counties: map[string]County{}}
	svc, srv := serviceFor(t, reg, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/layer") {
			layerCalled = true
		}
		_, _ = w.Write([]byte(feature(`"FLUCSDESC": "Agriculture"`)))
	})
	reg.Counties["Dixie"] = County{
		UseStatewideFLU: true,
		Layers:          []Layer{{Name: "stale", URL: srv.URL + "/layer", Role: RoleCountyZoning}},
	}
	reg.Statewide = Statewide{FLU: &Layer{URL: srv.URL + "/statewide", Fields: FieldMapping{FLUCode: []string{"FLUCSDESC"}}}}

	res := svc.Zoning(context.Background(), "Dixie", model.Coordinate{Lat: 29.6, Lng: -83.1})
	if layerCalled {
		t.Fatal("use_statewide_flu county still queried its layers")
	}
	if !res.Statewide {
		t.Fatalf("result = %+v", res)
	}
}

func TestZoningManualLinkWhenEverythingMisses(t *testing.T) {
	reg := &Registry{Counties: map[string]County{}}
	svc, srv := serviceFor(t, reg, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"features":[]}`))
	})
	reg.Counties["Putnam"] = County{
		ManualLink: "https://example.org/putnam",
		Layers:     []Layer{{Name: "zoning", URL: srv.URL, Role: RoleCountyZoning}},
	}

	res := svc.Zoning(context.Background(), "Putnam", model.Coordinate{Lat: 29.64, Lng: -81.63})
	if res.Found || res.Status != model.StatusNoData {
		t.Fatalf("Found/Status = %v/%s", res.Found, res.Status)
	}
	if res.ManualLink != "https://example.org/putnam" {
		t.Fatalf("ManualLink = %q", res.ManualLink)
	}
}

func TestZoningCachesOnlyCleanResults(t *testing.T) {
	var calls atomic.Int32
	reg := &Registry{Counties: map[string]County{}}
	svc, srv := serviceFor(t, reg, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(feature(`"ZONECLASS": "R-2"`)))
	})
	reg.Counties["Putnam"] = County{
		Layers: []Layer{{Name: "zoning", URL: srv.URL, Role: RoleCountyZoning, Fields: FieldMapping{ZoningCode: []string{"ZONECLASS"}}}},
	}

	c := model.Coordinate{Lat: 29.64, Lng: -81.63}
	svc.Zoning(context.Background(), "Putnam", c)
	svc.Zoning(context.Background(), "Putnam", c)
	if calls.Load() != 1 {
		t.Fatalf("upstream calls = %d, want 1", calls.Load())
	}
}
