package keys

import (
	"strings"
	"testing"

	"github.com/gtsearch/parcel-risk/internal/model"
)

func TestCoordinateFixedPrecision(t *testing.T) {
	got := Coordinate(model.Coordinate{Lat: 29.6516344999999, Lng: -82.3248262000001})
	want := "29.651634,-82.324826"
	if got != want {
		t.Fatalf("Coordinate = %q, want %q", got, want)
	}
}

func TestKeyCollapsesFloatNoise(t *testing.T) {
	a := Key("fema", model.Coordinate{Lat: 29.6516341, Lng: -82.3248261})
	b := Key("fema", model.Coordinate{Lat: 29.65163412, Lng: -82.32482608})
	if a != b {
		t.Fatalf("keys differ for sub-precision noise: %q vs %q", a, b)
	}
}

func TestKeySeparatesDistinctPoints(t *testing.T) {
	a := Key("fema", model.Coordinate{Lat: 29.651634, Lng: -82.324826})
	b := Key("fema", model.Coordinate{Lat: 29.651635, Lng: -82.324826})
	if a == b {
		t.Fatalf("distinct coordinates share key %q", a)
	}
}

func TestKeyExtrasChangeKey(t *testing.T) {
	c := model.Coordinate{Lat: 27.5, Lng: -81.4}
	a := Key("zoning", c, "Putnam")
	b := Key("zoning", c, "Highlands")
	if a == b {
		t.Fatalf("extras did not affect key: %q", a)
	}
	if !strings.Contains(a, "Putnam") {
		t.Fatalf("key %q lost debuggable extra text", a)
	}
}

func TestKeyLongExtrasKeepDigest(t *testing.T) {
	c := model.Coordinate{Lat: 27.5, Lng: -81.4}
	long1 := strings.Repeat("a", 200) + "x"
	long2 := strings.Repeat("a", 200) + "y"
	a := Key("zoning", c, long1)
	b := Key("zoning", c, long2)
	if a == b {
		t.Fatalf("truncated extras collided: %q", a)
	}
}

func TestSanitize(t *testing.T) {
	got := sanitize("St. Johns  County/FL")
	if strings.ContainsAny(got, " /") {
		t.Fatalf("sanitize left raw separators: %q", got)
	}
}
