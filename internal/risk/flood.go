package risk

import (
	"strings"

	"github.com/gtsearch/parcel-risk/internal/model"
)

// ClassifyFloodZone maps a FEMA flood zone designation to a risk tier.
// Unrecognized zones classify as unknown, never as safe.
func ClassifyFloodZone(zone string) Classification {
	z := strings.ToUpper(strings.TrimSpace(zone))

	switch z {
	case "X", "C":
		return Classification{
			Risk:        model.RiskMinimal,
			Label:       "MINIMAL RISK",
			Explanation: "Outside the Special Flood Hazard Area; flood insurance optional.",
		}
	case "V", "VE":
		return Classification{
			Risk:        model.RiskHigh,
			Label:       "HIGH RISK (COASTAL)",
			Explanation: "Coastal wave-action zone (SFHA); construction requires elevated foundations and carries severe insurance cost.",
		}
	case "AO", "AH":
		return Classification{
			Risk:        model.RiskMedium,
			Label:       "MODERATE RISK",
			Explanation: "Shallow flooding zone (SFHA); buildable with drainage and elevation requirements.",
		}
	}

	if strings.HasPrefix(z, "A") && z != "" {
		return Classification{
			Risk:        model.RiskHigh,
			Label:       "HIGH RISK",
			Explanation: "High-risk A zone (SFHA); base flood elevation requirements and mandatory insurance apply.",
		}
	}

	return Classification{
		Risk:        model.RiskUnknown,
		Label:       "UNKNOWN",
		Explanation: "Zone designation not recognized; verify with the FEMA flood map service center.",
	}
}
