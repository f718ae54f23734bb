// Package wetlands runs the progressive-radius NWI search and builds the
// wetlands report.
package wetlands

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/gtsearch/parcel-risk/internal/arcgis"
	"github.com/gtsearch/parcel-risk/internal/cache"
	"github.com/gtsearch/parcel-risk/internal/cache/keys"
	"github.com/gtsearch/parcel-risk/internal/model"
)

const sourceLabel = "NWI / U.S. Fish & Wildlife Service (ArcGIS Online)"

var disclaimers = []string{
	"NWI is a biological screening layer and does not define legal regulatory boundaries",
	"For compliance determinations, consult the US Army Corps of Engineers (USACE)",
	"Data may not reflect recent site alterations",
}

type Service struct {
	logger      *slog.Logger
	client      *arcgis.Client
	url         string
	timeout     time.Duration
	retries     int
	radiiMeters []float64
	cache       cache.Interface
}

func New(logger *slog.Logger, client *arcgis.Client, url string, timeout time.Duration, retries int, radiiMeters []float64, c cache.Interface) *Service {
	if len(radiiMeters) == 0 {
		radiiMeters = []float64{50, 200, 500}
	}
	if c == nil {
		c = cache.Noop{}
	}
	return &Service{
		logger:      logger,
		client:      client,
		url:         url,
		timeout:     timeout,
		retries:     retries,
		radiiMeters: radiiMeters,
		cache:       c,
	}
}

// SearchProgressive queries the wetlands layer at increasing radii and stops
// at the first radius with a hit. A provider error at any radius aborts the
// whole search and comes back as found:false with Error populated; it is
// never collapsed into a clean "no wetlands" answer, because that would be a
// false-negative safety signal.
func (s *Service) SearchProgressive(ctx context.Context, c model.Coordinate) model.WetlandsReport {
	key := keys.Key("wetlands", c, fmt.Sprintf("radii=%v", s.radiiMeters))
	if b, ok := s.cache.Get(key); ok {
		var cached model.WetlandsReport
		if err := json.Unmarshal(b, &cached); err == nil {
			return cached
		}
	}

	for i, radius := range s.radiiMeters {
		fc, err := s.client.Query(ctx, s.url, arcgis.BufferedPointParams(c, radius, "*"), arcgis.Options{
			Timeout: s.timeout,
			Retries: s.retries,
			Label:   "nwi",
		})
		if err != nil {
			s.logger.Error("wetlands query failed", "coord", c.String(), "radius_m", radius, "err", err)
			return model.WetlandsReport{
				Outcome:          model.ErrorOutcome(sourceLabel, err),
				Proximity:        model.ProximityUnknown,
				BufferMetersUsed: radius,
				Wetlands:         []model.WetlandFeature{},
				Disclaimers:      disclaimers[:2],
			}
		}

		if len(fc.Features) == 0 {
			continue
		}

		features := normalizeFeatures(fc, c)
		report := model.WetlandsReport{
			Outcome: model.Outcome{
				Found:  true,
				Status: model.StatusAvailable,
				Source: sourceLabel,
				Note:   fmt.Sprintf("%d wetland(s) within %vm", len(features), radius),
			},
			Proximity:        proximityFor(i),
			BufferMetersUsed: radius,
			Wetlands:         features,
			TotalAcres:       totalAcres(features),
			HighestRisk:      &features[0],
			Count:            len(features),
			Disclaimers:      disclaimers,
		}
		s.store(key, report)
		return report
	}

	maxRadius := s.radiiMeters[len(s.radiiMeters)-1]
	report := model.WetlandsReport{
		Outcome: model.Outcome{
			Status: model.StatusNoData,
			Source: sourceLabel,
			Note:   fmt.Sprintf("No wetlands found within %vm", maxRadius),
		},
		Proximity:        model.ProximityNone,
		BufferMetersUsed: maxRadius,
		Wetlands:         []model.WetlandFeature{},
		Disclaimers:      disclaimers[:2],
	}
	s.store(key, report)
	return report
}

func (s *Service) store(key string, report model.WetlandsReport) {
	if b, err := json.Marshal(report); err == nil {
		s.cache.Set(key, b)
	}
}

func proximityFor(radiusIndex int) model.Proximity {
	switch radiusIndex {
	case 0:
		return model.ProximityOnProperty
	case 1:
		return model.ProximityNearby
	default:
		return model.ProximityInArea
	}
}

func totalAcres(ws []model.WetlandFeature) float64 {
	var sum float64
	for _, w := range ws {
		sum += w.Acres
	}
	return round2(sum)
}
