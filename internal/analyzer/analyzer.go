// Package analyzer fans out the four source queries concurrently and derives
// the overall verdict.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gtsearch/parcel-risk/internal/model"
	"github.com/gtsearch/parcel-risk/internal/observability"
	"github.com/gtsearch/parcel-risk/internal/zoning"
)

// ErrInvalidInput marks requests rejected before any network call.
var ErrInvalidInput = errors.New("invalid input")

type FloodSource interface {
	FloodZone(ctx context.Context, c model.Coordinate) model.FloodResult
}

type WetlandsSource interface {
	SearchProgressive(ctx context.Context, c model.Coordinate) model.WetlandsReport
}

type LandUseSource interface {
	LandUse(ctx context.Context, c model.Coordinate, parcelID string) model.LandUseResult
}

type ZoningSource interface {
	Zoning(ctx context.Context, county string, c model.Coordinate) model.ZoningResult
}

type Request struct {
	Lat      float64
	Lng      float64
	County   string
	ParcelID string
}

type Analyzer struct {
	logger   *slog.Logger
	flood    FloodSource
	wetlands WetlandsSource
	landUse  LandUseSource
	zoning   ZoningSource
	registry *zoning.Registry

	now func() time.Time
}

func New(logger *slog.Logger, flood FloodSource, wetlands WetlandsSource, landUse LandUseSource, zoningSrc ZoningSource, registry *zoning.Registry) *Analyzer {
	return &Analyzer{
		logger:   logger,
		flood:    flood,
		wetlands: wetlands,
		landUse:  landUse,
		zoning:   zoningSrc,
		registry: registry,
		now:      time.Now,
	}
}

// Analyze runs all four source queries concurrently and waits for all of
// them to settle. Each source upholds its own never-throw contract, so one
// source's hard failure cannot cancel or corrupt the others; user-visible
// failure is always partial. Only invalid input fails fast.
func (a *Analyzer) Analyze(ctx context.Context, req Request) (model.PropertyReport, error) {
	if err := validate(req); err != nil {
		return model.PropertyReport{}, err
	}

	coord := model.Coordinate{Lat: req.Lat, Lng: req.Lng}

	county := req.County
	if county == "" && a.registry != nil {
		if name, ok := a.registry.Locate(coord); ok {
			county = name
			a.logger.Debug("county resolved from coordinate", "county", county)
		}
	}
	if county == "" {
		return model.PropertyReport{}, fmt.Errorf("%w: county is required and could not be resolved from the coordinate", ErrInvalidInput)
	}

	a.logger.Info("analysis started",
		"county", county, "coord", coord.String(), "parcel_id", req.ParcelID)

	var (
		wg       sync.WaitGroup
		fema     model.FloodResult
		wetlands model.WetlandsReport
		landUse  model.LandUseResult
		zon      model.ZoningResult
	)

	wg.Add(4)
	go func() {
		defer wg.Done()
		fema = a.flood.FloodZone(ctx, coord)
	}()
	go func() {
		defer wg.Done()
		wetlands = a.wetlands.SearchProgressive(ctx, coord)
	}()
	go func() {
		defer wg.Done()
		landUse = a.landUse.LandUse(ctx, coord, req.ParcelID)
	}()
	go func() {
		defer wg.Done()
		zon = a.zoning.Zoning(ctx, county, coord)
	}()
	wg.Wait()

	overall := deriveOverall(fema, wetlands)
	observability.IncAnalysisOutcome(string(overall))

	a.logger.Info("analysis complete",
		"county", county,
		"overall", string(overall),
		"flood_risk", string(fema.Risk),
		"wetlands_proximity", string(wetlands.Proximity))

	return model.PropertyReport{
		County:        county,
		Coordinates:   coord,
		ParcelID:      req.ParcelID,
		Fema:          fema,
		Wetlands:      wetlands,
		LandUse:       landUse,
		Zoning:        zon,
		OverallStatus: overall,
		Timestamp:     a.now().UTC().Format(time.RFC3339),
	}, nil
}

// deriveOverall is a priority cascade, first match wins. A confirmed
// on-property high-risk wetland outranks a merely-nearby one, and a wetlands
// data failure is distinguished from a clean "nothing found" -- but a
// high-risk flood zone outranks everything.
func deriveOverall(fema model.FloodResult, wet model.WetlandsReport) model.OverallStatus {
	switch {
	case fema.Risk == model.RiskHigh:
		return model.StatusReject
	case wet.Error != "":
		return model.StatusIncomplete
	case wet.Found && wet.Proximity == model.ProximityOnProperty && highRisk(wet):
		return model.StatusHighRisk
	case wet.Found && highRisk(wet):
		return model.StatusEvaluate
	case wet.Found:
		return model.StatusEvaluate
	default:
		return model.StatusApproved
	}
}

func highRisk(wet model.WetlandsReport) bool {
	return wet.HighestRisk != nil && wet.HighestRisk.Risk == model.RiskHigh
}

func validate(req Request) error {
	if req.Lat == 0 && req.Lng == 0 {
		return fmt.Errorf("%w: lat and lng are required", ErrInvalidInput)
	}
	if req.Lat < -90 || req.Lat > 90 {
		return fmt.Errorf("%w: lat must be in [-90,90]", ErrInvalidInput)
	}
	if req.Lng < -180 || req.Lng > 180 {
		return fmt.Errorf("%w: lng must be in [-180,180]", ErrInvalidInput)
	}
	return nil
}
