package arcgis

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FeatureCollection is the response shape shared by the esri feature-query
// dialect: a list of features, each carrying an attribute bag, or an embedded
// error object inside an otherwise-200 response.
type FeatureCollection struct {
	Features []Feature     `json:"features"`
	Error    *ServiceError `json:"error,omitempty"`
}

type ServiceError struct {
	Code    int      `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

func (e *ServiceError) String() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("code %d", e.Code)
}

type Feature struct {
	Attributes AttributeBag `json:"attributes"`
	Geometry   *Geometry    `json:"geometry,omitempty"`
}

// Geometry covers the two shapes this service consumes: polygon rings and
// point coordinates.
type Geometry struct {
	Rings [][][]float64 `json:"rings,omitempty"`
	X     float64       `json:"x,omitempty"`
	Y     float64       `json:"y,omitempty"`
}

// AttributeBag is a loosely-typed attribute map. Field names vary per
// deployment (case, abbreviation, units), so lookups take an ordered list of
// candidate keys and return the first usable value.
type AttributeBag map[string]any

// Str returns the first non-empty string value among the candidate keys.
func (a AttributeBag) Str(keys ...string) string {
	for _, k := range keys {
		v, ok := a[k]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case string:
			if s := strings.TrimSpace(t); s != "" {
				return s
			}
		case json.Number:
			return t.String()
		case float64:
			return strconv.FormatFloat(t, 'f', -1, 64)
		}
	}
	return ""
}

// Float returns the first numeric value among the candidate keys.
func (a AttributeBag) Float(keys ...string) (float64, bool) {
	for _, k := range keys {
		v, ok := a[k]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case float64:
			return t, true
		case json.Number:
			if f, err := t.Float64(); err == nil {
				return f, true
			}
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

// Int returns the first integral value among the candidate keys.
func (a AttributeBag) Int(keys ...string) (int, bool) {
	if f, ok := a.Float(keys...); ok {
		return int(f), true
	}
	return 0, false
}

// PositiveFloat treats zero and negative values as sentinels for "unset"
// (month = 0, price = 0 meaning no recorded sale) and reports them as absent.
func (a AttributeBag) PositiveFloat(keys ...string) (float64, bool) {
	f, ok := a.Float(keys...)
	if !ok || f <= 0 {
		return 0, false
	}
	return f, true
}
