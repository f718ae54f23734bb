// Package zoning routes zoning and future-land-use lookups per county using
// a registry file, with statewide FLU fallback.
package zoning

import (
	"encoding/json"
	"log/slog"
	"os"
	"strings"

	"github.com/dhconnelly/rtreego"

	"github.com/gtsearch/parcel-risk/internal/landuse"
	"github.com/gtsearch/parcel-risk/internal/model"
)

// FieldMapping lists candidate attribute keys per concern, in preference
// order, replacing scattered `attrs.ZON || attrs.ZONE_CODE` fallback chains.
type FieldMapping struct {
	ZoningCode []string `json:"zoning_code,omitempty"`
	ZoningDesc []string `json:"zoning_desc,omitempty"`
	FLUCode    []string `json:"flu_code,omitempty"`
	FLUDesc    []string `json:"flu_desc,omitempty"`
}

// Layer is one queryable endpoint of a county's GIS stack. Role drives the
// precedence rules: municipal results outrank county (unincorporated) ones.
type Layer struct {
	Name      string       `json:"name"`
	URL       string       `json:"url"`
	Role      string       `json:"role"`
	Fields    FieldMapping `json:"fields"`
	TimeoutMs int          `json:"timeout_ms,omitempty"`
	Retries   int          `json:"retries,omitempty"`
}

// Layer roles.
const (
	RoleCountyZoning    = "county_zoning"
	RoleMunicipalZoning = "municipal_zoning"
	RoleCountyFLU       = "county_flu"
	RoleMunicipalFLU    = "municipal_flu"
)

// BBox is a county's rough bounding box, used only for coordinate-to-county
// resolution when the caller omits the county.
type BBox struct {
	MinLng float64 `json:"min_lng"`
	MinLat float64 `json:"min_lat"`
	MaxLng float64 `json:"max_lng"`
	MaxLat float64 `json:"max_lat"`
}

type County struct {
	Layers          []Layer           `json:"layers,omitempty"`
	ManualLink      string            `json:"manual_link,omitempty"`
	HasZoning       bool              `json:"has_zoning"`
	FLUOnly         bool              `json:"flu_only,omitempty"`
	UseStatewideFLU bool              `json:"use_statewide_flu,omitempty"`
	ZoningCodes     map[string]string `json:"zoning_codes,omitempty"`
	BBox            *BBox             `json:"bbox,omitempty"`
}

type Statewide struct {
	FLU        *Layer `json:"flu,omitempty"`
	LandUseURL string `json:"land_use_url,omitempty"`
}

type Registry struct {
	Counties    map[string]County         `json:"counties"`
	Statewide   Statewide                 `json:"statewide"`
	DORUseCodes map[string]landuse.DORUse `json:"dor_use_codes,omitempty"`

	tree *rtreego.Rtree
}

// Load reads the registry file. A missing or malformed file degrades to an
// empty registry (statewide fallback only) rather than failing startup.
func Load(path string, logger *slog.Logger) *Registry {
	reg := &Registry{Counties: map[string]County{}}

	b, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("zoning registry unavailable; statewide fallback only", "path", path, "err", err)
		return reg
	}
	if err := json.Unmarshal(b, reg); err != nil {
		logger.Error("zoning registry malformed; statewide fallback only", "path", path, "err", err)
		return &Registry{Counties: map[string]County{}}
	}
	if reg.Counties == nil {
		reg.Counties = map[string]County{}
	}
	reg.buildIndex()
	logger.Info("zoning registry loaded", "path", path, "counties", len(reg.Counties))
	return reg
}

// Lookup finds a county entry by name, tolerating case differences and the
// ST/SAINT prefix variation ("St Johns" vs "Saint Johns").
func (r *Registry) Lookup(county string) (County, string, bool) {
	norm := normalizeCounty(county)
	if norm == "" {
		return County{}, "", false
	}
	for name, entry := range r.Counties {
		if normalizeCounty(name) == norm {
			return entry, name, true
		}
	}
	for _, alt := range saintVariants(norm) {
		for name, entry := range r.Counties {
			if normalizeCounty(name) == alt {
				return entry, name, true
			}
		}
	}
	return County{}, "", false
}

func normalizeCounty(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.TrimSuffix(s, " COUNTY")
	return strings.Join(strings.Fields(s), " ")
}

func saintVariants(norm string) []string {
	switch {
	case strings.HasPrefix(norm, "ST "):
		return []string{"SAINT " + norm[3:], "ST. " + norm[3:]}
	case strings.HasPrefix(norm, "ST. "):
		return []string{"SAINT " + norm[4:], "ST " + norm[4:]}
	case strings.HasPrefix(norm, "SAINT "):
		return []string{"ST " + norm[6:], "ST. " + norm[6:]}
	}
	return nil
}

type countyEntry struct {
	name string
	rect rtreego.Rect
}

func (e *countyEntry) Bounds() rtreego.Rect { return e.rect }

func (r *Registry) buildIndex() {
	var entries []rtreego.Spatial
	for name, c := range r.Counties {
		if c.BBox == nil {
			continue
		}
		rect, err := rtreego.NewRect(
			rtreego.Point{c.BBox.MinLng, c.BBox.MinLat},
			[]float64{c.BBox.MaxLng - c.BBox.MinLng, c.BBox.MaxLat - c.BBox.MinLat},
		)
		if err != nil {
			continue
		}
		entries = append(entries, &countyEntry{name: name, rect: rect})
	}
	if len(entries) == 0 {
		return
	}
	r.tree = rtreego.NewTree(2, 4, 16, entries...)
}

// Locate resolves a coordinate to a county name via registry bounding boxes.
// Boxes overlap near county lines, so this is a best-effort hint for callers
// that omitted the county, not an authoritative boundary test.
func (r *Registry) Locate(c model.Coordinate) (string, bool) {
	if r.tree == nil {
		return "", false
	}
	p := rtreego.Point{c.Lng, c.Lat}
	rect, err := rtreego.NewRect(p, []float64{1e-9, 1e-9})
	if err != nil {
		return "", false
	}
	hits := r.tree.SearchIntersect(rect)
	if len(hits) == 0 {
		return "", false
	}
	best := ""
	bestArea := 0.0
	for _, h := range hits {
		e, ok := h.(*countyEntry)
		if !ok {
			continue
		}
		area := e.rect.Size()
		// prefer the tightest box containing the point
		if best == "" || area < bestArea {
			best, bestArea = e.name, area
		}
	}
	return best, best != ""
}
