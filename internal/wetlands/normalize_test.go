package wetlands

import (
	"testing"

	"github.com/gtsearch/parcel-risk/internal/arcgis"
	"github.com/gtsearch/parcel-risk/internal/model"
)

func TestNormalizeFeaturesSortsBySeverityThenAcreage(t *testing.T) {
	fc := &arcgis.FeatureCollection{Features: []arcgis.Feature{
		{Attributes: arcgis.AttributeBag{"ATTRIBUTE": "PEM1A", "Shape__Area": 40468.6}},
		{Attributes: arcgis.AttributeBag{"ATTRIBUTE": "PFO1Fd", "Shape__Area": 4046.86}},
		{Attributes: arcgis.AttributeBag{"ATTRIBUTE": "PFO2B", "Shape__Area": 8093.72}},
	}}

	out := normalizeFeatures(fc, model.Coordinate{Lat: 29.65, Lng: -82.32})
	if len(out) != 3 {
		t.Fatalf("len = %d", len(out))
	}
	// both PFO codes are high risk; larger acreage breaks the tie
	if out[0].Code != "PFO2B" || out[1].Code != "PFO1Fd" || out[2].Code != "PEM1A" {
		t.Fatalf("order = %s, %s, %s", out[0].Code, out[1].Code, out[2].Code)
	}
}

func TestAcresOfFallsBackToRingArea(t *testing.T) {
	// ~111m x ~111m square near the equator, a bit over 3 acres
	f := arcgis.Feature{
		Attributes: arcgis.AttributeBag{},
		Geometry: &arcgis.Geometry{Rings: [][][]float64{{
			{0, 0}, {0.001, 0}, {0.001, 0.001}, {0, 0.001}, {0, 0},
		}}},
	}
	a := acresOf(f)
	if a < 2.5 || a > 3.5 {
		t.Fatalf("acres = %v, want ~3", a)
	}
}

func TestAcresOfPrefersReportedArea(t *testing.T) {
	f := arcgis.Feature{Attributes: arcgis.AttributeBag{"Shape__Area": 4046.86}}
	if a := acresOf(f); a != 1 {
		t.Fatalf("acres = %v, want 1", a)
	}
}

func TestCentroidDistance(t *testing.T) {
	f := arcgis.Feature{
		Geometry: &arcgis.Geometry{Rings: [][][]float64{{
			{-82.3249, 29.6515}, {-82.3247, 29.6515}, {-82.3247, 29.6517}, {-82.3249, 29.6517}, {-82.3249, 29.6515},
		}}},
	}
	d, ok := centroidDistanceMeters(f, model.Coordinate{Lat: 29.6516, Lng: -82.3248})
	if !ok {
		t.Fatal("no distance computed")
	}
	// origin is the square's center
	if d > 5 {
		t.Fatalf("distance = %vm, want ~0", d)
	}
}

func TestDecodeClassification(t *testing.T) {
	attrs := arcgis.AttributeBag{
		"SYSTEM_NAME":       "Palustrine",
		"SYSTEM":            "P",
		"CLASS_NAME":        "Forested",
		"WATER_REGIME_NAME": "Semipermanently Flooded",
		"MODIFIER1_NAME":    "Partially Drained/Ditched",
	}
	got := decodeClassification(attrs)
	want := "Palustrine (P) | Forested | Semipermanently Flooded | Partially Drained/Ditched"
	if got != want {
		t.Fatalf("decoded = %q, want %q", got, want)
	}
}

func TestDecodeClassificationEmpty(t *testing.T) {
	if got := decodeClassification(arcgis.AttributeBag{}); got != "" {
		t.Fatalf("decoded = %q, want empty", got)
	}
}
