// Package landuse queries the Florida statewide cadastral layer (FDOR) for
// fiscal land-use classification and parcel facts.
package landuse

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gtsearch/parcel-risk/internal/arcgis"
	"github.com/gtsearch/parcel-risk/internal/cache"
	"github.com/gtsearch/parcel-risk/internal/cache/keys"
	"github.com/gtsearch/parcel-risk/internal/model"
)

const (
	sourceLabel = "FL Dept of Revenue (Statewide Cadastral)"
	outFields   = "PARCEL_ID,DOR_UC,OWN_NAME,LND_VAL,JV,SALE_PRC1,SALE_YR1,SALE_MO1,S_LEGAL,CO_NO,LND_SQFOOT,NO_BULDNG,PHY_ADDR1,PHY_CITY"
)

type Service struct {
	logger   *slog.Logger
	client   *arcgis.Client
	url      string
	timeout  time.Duration
	retries  int
	cache    cache.Interface
	dorCodes map[string]DORUse
}

// New builds the service. extraCodes (typically loaded from the registry
// file) override the built-in DOR table per code.
func New(logger *slog.Logger, client *arcgis.Client, url string, timeout time.Duration, retries int, c cache.Interface, extraCodes map[string]DORUse) *Service {
	if c == nil {
		c = cache.Noop{}
	}
	codes := make(map[string]DORUse, len(builtinDORCodes)+len(extraCodes))
	for k, v := range builtinDORCodes {
		codes[k] = v
	}
	for k, v := range extraCodes {
		codes[k] = v
	}
	return &Service{logger: logger, client: client, url: url, timeout: timeout, retries: retries, cache: c, dorCodes: codes}
}

// LandUse returns the cadastral record intersecting the coordinate. Keyed by
// parcel id when known so repeat lookups of the same parcel share an entry.
func (s *Service) LandUse(ctx context.Context, c model.Coordinate, parcelID string) model.LandUseResult {
	key := keys.Key("landuse", c, parcelID)
	if b, ok := s.cache.Get(key); ok {
		var cached model.LandUseResult
		if err := json.Unmarshal(b, &cached); err == nil {
			return cached
		}
	}

	fc, err := s.client.Query(ctx, s.url, arcgis.PointParams(c, outFields), arcgis.Options{
		Timeout: s.timeout,
		Retries: s.retries,
		Label:   "fdor",
	})
	if err != nil {
		s.logger.Error("land use query failed", "coord", c.String(), "err", err)
		return model.LandUseResult{Outcome: model.ErrorOutcome(sourceLabel, err)}
	}

	if len(fc.Features) == 0 {
		return model.LandUseResult{
			Outcome: model.Outcome{
				Status: model.StatusNoData,
				Source: sourceLabel,
				Note:   "Parcel not found in the statewide cadastral base",
			},
		}
	}

	res := s.normalize(fc.Features[0].Attributes)
	if b, err := json.Marshal(res); err == nil {
		s.cache.Set(key, b)
	}
	return res
}

func (s *Service) normalize(attrs arcgis.AttributeBag) model.LandUseResult {
	dorCode := padCode(attrs.Str("DOR_UC"))
	info, known := s.dorCodes[dorCode]

	res := model.LandUseResult{
		Outcome: model.Outcome{
			Found:  true,
			Status: model.StatusAvailable,
			Source: sourceLabel,
			Note:   "Fiscal classification (DOR Use Code), not legal zoning",
		},
		ParcelID:   attrs.Str("PARCEL_ID"),
		Code:       dorCode,
		Owner:      attrs.Str("OWN_NAME"),
		LegalDesc:  attrs.Str("S_LEGAL"),
		CountyCode: attrs.Str("CO_NO"),
		Address:    attrs.Str("PHY_ADDR1"),
		City:       attrs.Str("PHY_CITY"),
	}

	if known {
		res.Description = info.Description
		res.Category = info.Category
		res.Buildable = info.Buildable
	} else if dorCode != "" {
		res.Description = fmt.Sprintf("DOR Code %s", dorCode)
		res.Category = "unknown"
	} else {
		res.Description = "Unclassified"
		res.Category = "unknown"
	}

	if v, ok := attrs.PositiveFloat("LND_VAL"); ok {
		res.LandValue = &v
	}
	if v, ok := attrs.PositiveFloat("JV"); ok {
		res.JustValue = &v
	}
	if v, ok := attrs.PositiveFloat("LND_SQFOOT"); ok {
		res.LandSqFoot = &v
	}
	if n, ok := attrs.Int("NO_BULDNG"); ok && n >= 0 {
		res.Buildings = &n
	}

	// sale price and month of zero are "no recorded sale" sentinels, never
	// a literal $0 sale or a "0/2020" date
	if p, ok := attrs.PositiveFloat("SALE_PRC1"); ok {
		res.LastSalePrice = &p
	}
	if yr, ok := attrs.Int("SALE_YR1"); ok && yr > 0 {
		if mo, ok := attrs.Int("SALE_MO1"); ok && mo >= 1 && mo <= 12 {
			d := fmt.Sprintf("%d/%d", mo, yr)
			res.LastSaleDate = &d
		}
	}

	return res
}

// padCode zero-pads DOR use codes to three digits ("0" -> "000"). An absent
// code stays empty rather than masquerading as "000" (Vacant Residential).
func padCode(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	for len(code) < 3 {
		code = "0" + code
	}
	return code
}
