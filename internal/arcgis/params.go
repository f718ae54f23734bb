package arcgis

import (
	"fmt"
	"net/url"

	"github.com/gtsearch/parcel-risk/internal/model"
)

// PointParams builds the query-string for a point-intersection query in the
// esri dialect. Geometry is "lng,lat" (x before y).
func PointParams(c model.Coordinate, outFields string) url.Values {
	if outFields == "" {
		outFields = "*"
	}
	v := url.Values{}
	v.Set("geometry", fmt.Sprintf("%v,%v", c.Lng, c.Lat))
	v.Set("geometryType", "esriGeometryPoint")
	v.Set("inSR", "4326")
	v.Set("spatialRel", "esriSpatialRelIntersects")
	v.Set("outFields", outFields)
	v.Set("returnGeometry", "false")
	v.Set("f", "json")
	return v
}

// BufferedPointParams adds a metric search distance around the point and asks
// for geometry back so feature area and centroid distance can be derived.
func BufferedPointParams(c model.Coordinate, distanceMeters float64, outFields string) url.Values {
	v := PointParams(c, outFields)
	v.Set("where", "1=1")
	v.Set("distance", fmt.Sprintf("%v", distanceMeters))
	v.Set("units", "esriSRUnit_Meter")
	v.Set("returnGeometry", "true")
	v.Set("outSR", "4326")
	return v
}
