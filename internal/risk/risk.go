// Package risk maps domain codes (FEMA flood zones, NWI wetland codes) to
// risk tiers with display narratives. Pure lookup tables, no I/O.
package risk

import "github.com/gtsearch/parcel-risk/internal/model"

type Classification struct {
	Risk        model.Risk
	Label       string
	Explanation string
}

// severityRank orders tiers most-severe-first for tie-breaking.
var severityRank = map[model.Risk]int{
	model.RiskHigh:       0,
	model.RiskMediumHigh: 1,
	model.RiskMedium:     2,
	model.RiskLowMedium:  3,
	model.RiskLow:        4,
	model.RiskMinimal:    5,
	model.RiskUnknown:    6,
}

// Severity returns the tier's rank; lower is more severe. Unknown tiers rank
// least severe so they never displace a classified one.
func Severity(r model.Risk) int {
	if n, ok := severityRank[r]; ok {
		return n
	}
	return len(severityRank)
}

// MoreSevere reports whether a outranks b.
func MoreSevere(a, b model.Risk) bool {
	return Severity(a) < Severity(b)
}
