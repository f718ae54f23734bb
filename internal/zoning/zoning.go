package zoning

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gtsearch/parcel-risk/internal/arcgis"
	"github.com/gtsearch/parcel-risk/internal/cache"
	"github.com/gtsearch/parcel-risk/internal/cache/keys"
	"github.com/gtsearch/parcel-risk/internal/model"
)

type Service struct {
	logger   *slog.Logger
	client   *arcgis.Client
	registry *Registry
	timeout  time.Duration
	retries  int
	cache    cache.Interface
}

func New(logger *slog.Logger, client *arcgis.Client, registry *Registry, timeout time.Duration, retries int, c cache.Interface) *Service {
	if c == nil {
		c = cache.Noop{}
	}
	return &Service{logger: logger, client: client, registry: registry, timeout: timeout, retries: retries, cache: c}
}

// Zoning resolves zoning for a county through the fallback chain: registry
// layers, then the statewide future-land-use approximation, then a manual
// link. Each failing tier degrades to the next; only total exhaustion yields
// found:false.
func (s *Service) Zoning(ctx context.Context, county string, c model.Coordinate) model.ZoningResult {
	key := keys.Key("zoning", c, county)
	if b, ok := s.cache.Get(key); ok {
		var cached model.ZoningResult
		if err := json.Unmarshal(b, &cached); err == nil {
			return cached
		}
	}

	res := s.route(ctx, county, c)
	if res.Error == "" {
		if b, err := json.Marshal(res); err == nil {
			s.cache.Set(key, b)
		}
	}
	return res
}

func (s *Service) route(ctx context.Context, county string, c model.Coordinate) model.ZoningResult {
	entry, canonical, known := s.registry.Lookup(county)
	if !known {
		if sw := s.statewideFallback(ctx, county, c, ""); sw != nil {
			return *sw
		}
		return model.ZoningResult{
			Outcome: model.Outcome{
				Status: model.StatusUnsupported,
				Source: fmt.Sprintf("%s County (not configured)", county),
				Note:   "Zoning is not available for this county; consult the local Planning Department",
			},
		}
	}

	if !entry.UseStatewideFLU && len(entry.Layers) > 0 {
		if res := s.queryLayers(ctx, entry, canonical, c); res != nil {
			return *res
		}
	}

	if sw := s.statewideFallback(ctx, canonical, c, entry.ManualLink); sw != nil {
		return *sw
	}

	return model.ZoningResult{
		Outcome: model.Outcome{
			Status: model.StatusNoData,
			Source: fmt.Sprintf("%s County Planning & Zoning", canonical),
			Note:   "No zoning data found; consult the Planning Department",
		},
		Jurisdiction: fmt.Sprintf("Unincorporated %s County", canonical),
		ManualLink:   entry.ManualLink,
	}
}

type layerResult struct {
	layer Layer
	attrs arcgis.AttributeBag
	err   error
}

// queryLayers fans out to every configured layer concurrently and waits for
// all of them to settle; a failing layer never blocks consumption of the
// layers that succeeded. Returns nil when no layer yielded usable data.
func (s *Service) queryLayers(ctx context.Context, entry County, county string, c model.Coordinate) *model.ZoningResult {
	results := make([]layerResult, len(entry.Layers))
	var wg sync.WaitGroup
	for i, layer := range entry.Layers {
		wg.Add(1)
		go func(i int, layer Layer) {
			defer wg.Done()
			timeout := s.timeout
			if layer.TimeoutMs > 0 {
				timeout = time.Duration(layer.TimeoutMs) * time.Millisecond
			}
			retries := s.retries
			if layer.Retries > 0 {
				retries = layer.Retries
			}
			fc, err := s.client.Query(ctx, layer.URL, arcgis.PointParams(c, "*"), arcgis.Options{
				Timeout: timeout,
				Retries: retries,
				Label:   "zoning:" + labelFor(layer, county),
			})
			if err != nil {
				s.logger.Warn("zoning layer query failed", "county", county, "layer", layer.Name, "err", err)
				results[i] = layerResult{layer: layer, err: err}
				return
			}
			if len(fc.Features) == 0 {
				results[i] = layerResult{layer: layer}
				return
			}
			results[i] = layerResult{layer: layer, attrs: fc.Features[0].Attributes}
		}(i, layer)
	}
	wg.Wait()

	// municipal zoning outranks county (unincorporated) zoning: the
	// municipal layer is the more specific jurisdiction
	zoningAttrs, zoningLayer, isMunicipal := pickByRole(results, RoleMunicipalZoning, RoleCountyZoning, func(lr layerResult) bool {
		return extractCode(lr.attrs, lr.layer.Fields.ZoningCode, "ZONECLASS", "ZON", "ZONE_CODE", "ZONING") != ""
	})
	fluAttrs, fluLayer, _ := pickByRole(results, RoleMunicipalFLU, RoleCountyFLU, func(lr layerResult) bool {
		return extractCode(lr.attrs, lr.layer.Fields.FLUCode, "LANDUSECODE", "FLUM", "FLU", "FUTURE_LAND_USE") != ""
	})

	if zoningAttrs == nil && fluAttrs == nil {
		return nil
	}

	res := model.ZoningResult{
		Outcome: model.Outcome{
			Found:  true,
			Status: model.StatusAvailable,
			Source: fmt.Sprintf("%s County Planning & Zoning", county),
			Note:   "Consult the Planning Department for final determinations",
		},
		IsMunicipal: isMunicipal,
		ManualLink:  entry.ManualLink,
	}
	if isMunicipal {
		res.Jurisdiction = fmt.Sprintf("Municipal (%s County)", county)
	} else {
		res.Jurisdiction = fmt.Sprintf("Unincorporated %s County", county)
	}

	if zoningAttrs != nil {
		code := extractCode(zoningAttrs, zoningLayer.Fields.ZoningCode, "ZONECLASS", "ZON", "ZONE_CODE", "ZONING")
		res.Code = code
		res.Description = describe(zoningAttrs, zoningLayer.Fields.ZoningDesc, entry.ZoningCodes, code, "ZONEDESC", "ZONE_DESC")
	}
	if fluAttrs != nil {
		flu := extractCode(fluAttrs, fluLayer.Fields.FLUCode, "LANDUSECODE", "FLUM", "FLU", "FUTURE_LAND_USE")
		res.FutureLandUse = flu
		res.FutureLandUseDesc = describe(fluAttrs, fluLayer.Fields.FLUDesc, nil, flu, "LANDUSEDESC", "FLU_DESC")
	}

	// a county flagged FLU-only never yields legal zoning; label the
	// partial result explicitly so callers know to verify manually
	if entry.FLUOnly || (zoningAttrs == nil && fluAttrs != nil) {
		res.FLUOnly = true
		res.Note = "Future Land Use only; legal zoning requires manual verification"
	}

	return &res
}

// statewideFallback queries the statewide FLU dataset when configured. The
// result is an approximation, clearly labeled as not authoritative.
func (s *Service) statewideFallback(ctx context.Context, county string, c model.Coordinate, manualLink string) *model.ZoningResult {
	sw := s.registry.Statewide.FLU
	if sw == nil || sw.URL == "" {
		return nil
	}

	timeout := s.timeout
	if sw.TimeoutMs > 0 {
		timeout = time.Duration(sw.TimeoutMs) * time.Millisecond
	}
	fc, err := s.client.Query(ctx, sw.URL, arcgis.PointParams(c, "*"), arcgis.Options{
		Timeout: timeout,
		Retries: s.retries,
		Label:   "zoning:statewide-flu",
	})
	if err != nil {
		s.logger.Warn("statewide flu query failed", "county", county, "err", err)
		return nil
	}
	if len(fc.Features) == 0 {
		return nil
	}

	attrs := fc.Features[0].Attributes
	flu := extractCode(attrs, sw.Fields.FLUCode, "FLUCSDESC", "FLUCS", "FLU", "LANDUSECODE")
	if flu == "" {
		return nil
	}

	return &model.ZoningResult{
		Outcome: model.Outcome{
			Found:  true,
			Status: model.StatusAvailable,
			Source: "Statewide Future Land Use (approximation)",
			Note:   "Statewide planning approximation, not authoritative local zoning; verify with the county",
		},
		FutureLandUse:     flu,
		FutureLandUseDesc: describe(attrs, sw.Fields.FLUDesc, nil, flu, "FLUCSDESC", "DESCRIPT"),
		Jurisdiction:      fmt.Sprintf("%s County (statewide dataset)", county),
		FLUOnly:           true,
		Statewide:         true,
		ManualLink:        manualLink,
	}
}

// pickByRole selects the preferred layer result: any usable preferred-role
// result wins over fallback-role results; within a role, layer order decides.
func pickByRole(results []layerResult, preferred, fallback string, usable func(layerResult) bool) (arcgis.AttributeBag, Layer, bool) {
	for _, lr := range results {
		if lr.layer.Role == preferred && lr.attrs != nil && usable(lr) {
			return lr.attrs, lr.layer, true
		}
	}
	for _, lr := range results {
		if lr.layer.Role == fallback && lr.attrs != nil && usable(lr) {
			return lr.attrs, lr.layer, false
		}
	}
	return nil, Layer{}, false
}

// extractCode resolves a code through the layer's field mapping, falling back
// to the dialect's common field names.
func extractCode(attrs arcgis.AttributeBag, mapped []string, defaults ...string) string {
	if attrs == nil {
		return ""
	}
	if len(mapped) > 0 {
		if v := attrs.Str(mapped...); v != "" {
			return v
		}
		return ""
	}
	return attrs.Str(defaults...)
}

func describe(attrs arcgis.AttributeBag, mapped []string, codeTable map[string]string, code string, defaults ...string) string {
	if len(mapped) > 0 {
		if v := attrs.Str(mapped...); v != "" {
			return v
		}
	} else if v := attrs.Str(defaults...); v != "" {
		return v
	}
	if desc, ok := codeTable[code]; ok {
		return desc
	}
	if code != "" {
		return code
	}
	return "N/A"
}

func labelFor(layer Layer, county string) string {
	if layer.Name != "" {
		return layer.Name
	}
	return county
}
