// Package flood queries the FEMA NFHL flood hazard layer.
package flood

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gtsearch/parcel-risk/internal/arcgis"
	"github.com/gtsearch/parcel-risk/internal/cache"
	"github.com/gtsearch/parcel-risk/internal/cache/keys"
	"github.com/gtsearch/parcel-risk/internal/model"
	"github.com/gtsearch/parcel-risk/internal/risk"
)

const sourceLabel = "FEMA NFHL (official)"

type Service struct {
	logger  *slog.Logger
	client  *arcgis.Client
	url     string
	timeout time.Duration
	retries int
	cache   cache.Interface
}

func New(logger *slog.Logger, client *arcgis.Client, url string, timeout time.Duration, retries int, c cache.Interface) *Service {
	if c == nil {
		c = cache.Noop{}
	}
	return &Service{logger: logger, client: client, url: url, timeout: timeout, retries: retries, cache: c}
}

// FloodZone returns the flood designation intersecting the coordinate. The
// result always carries a value: provider failures come back as found:false
// with Error populated, never as a raised error.
func (s *Service) FloodZone(ctx context.Context, c model.Coordinate) model.FloodResult {
	key := keys.Key("fema", c)
	if b, ok := s.cache.Get(key); ok {
		var cached model.FloodResult
		if err := json.Unmarshal(b, &cached); err == nil {
			return cached
		}
	}

	fc, err := s.client.Query(ctx, s.url, arcgis.PointParams(c, "FLD_ZONE,ZONE_SUBTY,STATIC_BFE"), arcgis.Options{
		Timeout: s.timeout,
		Retries: s.retries,
		Label:   "fema",
	})
	if err != nil {
		s.logger.Error("fema query failed", "coord", c.String(), "err", err)
		return model.FloodResult{Outcome: model.ErrorOutcome(sourceLabel, err), Risk: model.RiskUnknown}
	}

	if len(fc.Features) == 0 {
		return model.FloodResult{
			Outcome: model.Outcome{Status: model.StatusNoData, Source: sourceLabel, Note: "No flood zone mapped at this location"},
			Risk:    model.RiskUnknown,
		}
	}

	// point-in-polygon queries intersect at most one zone; take the first
	attrs := fc.Features[0].Attributes
	zone := attrs.Str("FLD_ZONE")
	if zone == "" {
		zone = "Unknown"
	}
	cls := risk.ClassifyFloodZone(zone)

	res := model.FloodResult{
		Outcome: model.Outcome{Found: true, Status: model.StatusAvailable, Source: sourceLabel, Note: cls.Explanation},
		Zone:    zone,
		Subtype: attrs.Str("ZONE_SUBTY"),
		Risk:    cls.Risk,
	}
	if bfe, ok := attrs.PositiveFloat("STATIC_BFE"); ok {
		res.BFE = &bfe
	}

	if b, err := json.Marshal(res); err == nil {
		s.cache.Set(key, b)
	}
	return res
}
