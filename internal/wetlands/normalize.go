package wetlands

import (
	"math"
	"sort"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/planar"
	"github.com/umahmood/haversine"

	"github.com/gtsearch/parcel-risk/internal/arcgis"
	"github.com/gtsearch/parcel-risk/internal/model"
	"github.com/gtsearch/parcel-risk/internal/risk"
)

const sqMetersPerAcre = 4046.86

// normalizeFeatures maps raw NWI features into WetlandFeature summaries,
// sorted by risk severity descending then acreage descending so the first
// element is the report's highestRisk.
func normalizeFeatures(fc *arcgis.FeatureCollection, origin model.Coordinate) []model.WetlandFeature {
	out := make([]model.WetlandFeature, 0, len(fc.Features))

	for _, f := range fc.Features {
		attrs := f.Attributes
		code := attrs.Str("ATTRIBUTE", "WETLAND_CODE", "NWI_CODE")
		cls := risk.ClassifyWetland(code)

		w := model.WetlandFeature{
			Code:         code,
			Type:         attrs.Str("WETLAND_TYPE"),
			Acres:        acresOf(f),
			Decoded:      decodeClassification(attrs),
			Risk:         cls.Risk,
			RiskLabel:    cls.Label,
			Buildability: cls.Explanation,
			System:       attrs.Str("SYSTEM_NAME"),
			Class:        attrs.Str("CLASS_NAME"),
			Subclass:     attrs.Str("SUBCLASS_NAME"),
			WaterRegime:  attrs.Str("WATER_REGIME_NAME"),
			Modifier1:    attrs.Str("MODIFIER1_NAME"),
			Modifier2:    attrs.Str("MODIFIER2_NAME"),
		}
		if d, ok := centroidDistanceMeters(f, origin); ok {
			w.DistanceM = &d
		}
		out = append(out, w)
	}

	sort.SliceStable(out, func(i, j int) bool {
		si, sj := risk.Severity(out[i].Risk), risk.Severity(out[j].Risk)
		if si != sj {
			return si < sj
		}
		return out[i].Acres > out[j].Acres
	})
	return out
}

// acresOf prefers the provider-reported shape area and falls back to a
// shoelace estimate over the returned rings.
func acresOf(f arcgis.Feature) float64 {
	if m2, ok := f.Attributes.PositiveFloat("Shape__Area", "SHAPE_Area", "Shape_Area"); ok {
		return round2(m2 / sqMetersPerAcre)
	}
	if a, ok := f.Attributes.PositiveFloat("ACRES", "Acres"); ok {
		// some deployments publish acreage directly
		return round2(a)
	}
	if ring, ok := firstRing(f); ok {
		return round2(math.Abs(geo.Area(ring)) / sqMetersPerAcre)
	}
	return 0
}

func centroidDistanceMeters(f arcgis.Feature, origin model.Coordinate) (float64, bool) {
	ring, ok := firstRing(f)
	if !ok {
		return 0, false
	}
	centroid, _ := planar.CentroidArea(ring)
	_, km := haversine.Distance(
		haversine.Coord{Lat: origin.Lat, Lon: origin.Lng},
		haversine.Coord{Lat: centroid.Lat(), Lon: centroid.Lon()},
	)
	return round2(km * 1000), true
}

func firstRing(f arcgis.Feature) (orb.Ring, bool) {
	if f.Geometry == nil || len(f.Geometry.Rings) == 0 {
		return nil, false
	}
	raw := f.Geometry.Rings[0]
	if len(raw) < 3 {
		return nil, false
	}
	ring := make(orb.Ring, 0, len(raw))
	for _, pt := range raw {
		if len(pt) < 2 {
			return nil, false
		}
		ring = append(ring, orb.Point{pt[0], pt[1]})
	}
	return ring, true
}

// decodeClassification assembles the human-readable NWI breakdown from the
// name attributes, joined with " | ".
func decodeClassification(attrs arcgis.AttributeBag) string {
	var parts []string
	if s := attrs.Str("SYSTEM_NAME"); s != "" {
		if sys := attrs.Str("SYSTEM"); sys != "" {
			parts = append(parts, s+" ("+sys+")")
		} else {
			parts = append(parts, s)
		}
	}
	for _, k := range []string{"CLASS_NAME", "SUBCLASS_NAME", "WATER_REGIME_NAME", "MODIFIER1_NAME", "MODIFIER2_NAME"} {
		if s := attrs.Str(k); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " | ")
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
