// Package model defines the domain types shared across the service.
package model

import "fmt"

// Coordinate is a WGS84 point. Inputs are never mutated; cache keys round to
// a fixed precision so float noise cannot split logically identical queries.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Lat, c.Lng)
}

// Status is the human-facing availability label carried by every source result.
type Status string

const (
	StatusAvailable   Status = "AVAILABLE"
	StatusNoData      Status = "NO_DATA"
	StatusError       Status = "QUERY_ERROR"
	StatusUnsupported Status = "UNSUPPORTED_COUNTY"
)

// Risk tiers, ordered by severity in the risk package.
type Risk string

const (
	RiskHigh       Risk = "high"
	RiskMediumHigh Risk = "medium-high"
	RiskMedium     Risk = "medium"
	RiskLowMedium  Risk = "low-medium"
	RiskLow        Risk = "low"
	RiskMinimal    Risk = "minimal"
	RiskUnknown    Risk = "unknown"
)

// Outcome is the common envelope embedded in every source result. Callers
// always receive a value; provider failures are carried in Error, never
// raised past the source boundary.
type Outcome struct {
	Found  bool   `json:"found"`
	Status Status `json:"status"`
	Source string `json:"source"`
	Note   string `json:"note,omitempty"`
	Error  string `json:"error,omitempty"`
}

func ErrorOutcome(source string, err error) Outcome {
	return Outcome{Found: false, Status: StatusError, Source: source, Error: err.Error()}
}

type FloodResult struct {
	Outcome
	Zone    string   `json:"zone,omitempty"`
	Subtype string   `json:"subtype,omitempty"`
	BFE     *float64 `json:"bfe,omitempty"`
	Risk    Risk     `json:"risk"`
}

type LandUseResult struct {
	Outcome
	ParcelID      string   `json:"parcelId,omitempty"`
	Code          string   `json:"code,omitempty"`
	Description   string   `json:"description,omitempty"`
	Category      string   `json:"category,omitempty"`
	Buildable     *bool    `json:"buildable,omitempty"`
	Owner         string   `json:"owner,omitempty"`
	LandValue     *float64 `json:"landValue,omitempty"`
	JustValue     *float64 `json:"justValue,omitempty"`
	LastSalePrice *float64 `json:"lastSalePrice,omitempty"`
	LastSaleDate  *string  `json:"lastSaleDate,omitempty"`
	LegalDesc     string   `json:"legalDesc,omitempty"`
	CountyCode    string   `json:"countyCode,omitempty"`
	LandSqFoot    *float64 `json:"sqfoot,omitempty"`
	Buildings     *int     `json:"buildings,omitempty"`
	Address       string   `json:"address,omitempty"`
	City          string   `json:"city,omitempty"`
}

type ZoningResult struct {
	Outcome
	Code              string `json:"code,omitempty"`
	Description       string `json:"description,omitempty"`
	FutureLandUse     string `json:"futureLandUse,omitempty"`
	FutureLandUseDesc string `json:"futureLandUseDesc,omitempty"`
	Jurisdiction      string `json:"jurisdiction,omitempty"`
	IsMunicipal       bool   `json:"isMunicipal"`
	FLUOnly           bool   `json:"fluOnly,omitempty"`
	Statewide         bool   `json:"statewide,omitempty"`
	ManualLink        string `json:"manualLink,omitempty"`
}

// Proximity labels which progressive search radius produced the wetlands hit.
type Proximity string

const (
	ProximityOnProperty Proximity = "ON_PROPERTY"
	ProximityNearby     Proximity = "NEARBY"
	ProximityInArea     Proximity = "IN_AREA"
	ProximityNone       Proximity = "NONE"
	ProximityUnknown    Proximity = "UNKNOWN"
)

// WetlandFeature summarizes one parcel-intersecting NWI polygon.
type WetlandFeature struct {
	Code         string   `json:"code"`
	Type         string   `json:"type,omitempty"`
	Acres        float64  `json:"acres"`
	Decoded      string   `json:"decoded,omitempty"`
	Risk         Risk     `json:"risk"`
	RiskLabel    string   `json:"riskLabel"`
	Buildability string   `json:"buildability"`
	System       string   `json:"system,omitempty"`
	Class        string   `json:"class,omitempty"`
	Subclass     string   `json:"subclass,omitempty"`
	WaterRegime  string   `json:"waterRegime,omitempty"`
	Modifier1    string   `json:"modifier1,omitempty"`
	Modifier2    string   `json:"modifier2,omitempty"`
	DistanceM    *float64 `json:"distanceMeters,omitempty"`
}

type WetlandsReport struct {
	Outcome
	Proximity        Proximity        `json:"proximity"`
	BufferMetersUsed float64          `json:"bufferMeters"`
	Wetlands         []WetlandFeature `json:"wetlands"`
	TotalAcres       float64          `json:"totalAcres"`
	HighestRisk      *WetlandFeature  `json:"highestRisk,omitempty"`
	Count            int              `json:"count"`
	Disclaimers      []string         `json:"disclaimers,omitempty"`
}

// OverallStatus is the single verdict derived from all four sources.
type OverallStatus string

const (
	StatusReject     OverallStatus = "REJECT"
	StatusIncomplete OverallStatus = "INCOMPLETE_WETLANDS_UNVERIFIED"
	StatusHighRisk   OverallStatus = "HIGH_RISK"
	StatusEvaluate   OverallStatus = "EVALUATE"
	StatusApproved   OverallStatus = "APPROVED"
)

// PropertyReport is the aggregate returned to callers. Built fresh per
// request and never mutated after construction.
type PropertyReport struct {
	County        string         `json:"county"`
	Coordinates   Coordinate     `json:"coordinates"`
	ParcelID      string         `json:"parcelId,omitempty"`
	Fema          FloodResult    `json:"fema"`
	Wetlands      WetlandsReport `json:"wetlands"`
	LandUse       LandUseResult  `json:"landUse"`
	Zoning        ZoningResult   `json:"zoning"`
	OverallStatus OverallStatus  `json:"overallStatus"`
	Timestamp     string         `json:"timestamp"`
}
