package risk

import (
	"strings"

	"github.com/gtsearch/parcel-risk/internal/model"
)

// ClassifyWetland maps an NWI classification code to a risk tier by prefix,
// most specific first. Unrecognized codes classify as medium: the table fails
// toward caution, never toward "safe".
func ClassifyWetland(code string) Classification {
	c := strings.ToUpper(strings.TrimSpace(code))

	switch {
	case strings.HasPrefix(c, "PFO"):
		return Classification{
			Risk:        model.RiskHigh,
			Label:       "HIGH RISK",
			Explanation: "Forested wetland; severely restricted - USACE permit plus mitigation, typically $20k-$100k+.",
		}
	case strings.HasPrefix(c, "PSS"):
		return Classification{
			Risk:        model.RiskMediumHigh,
			Label:       "MEDIUM-HIGH RISK",
			Explanation: "Scrub-shrub wetland; restricted - USACE permit and mitigation likely required.",
		}
	case strings.HasPrefix(c, "PEM"):
		return Classification{
			Risk:        model.RiskMedium,
			Label:       "MEDIUM RISK",
			Explanation: "Emergent wetland; moderate - permit may be required depending on extent.",
		}
	case strings.HasPrefix(c, "PAB"):
		return Classification{
			Risk:        model.RiskMedium,
			Label:       "MEDIUM RISK",
			Explanation: "Aquatic bed; moderate - open-water vegetation, site evaluation required.",
		}
	case strings.HasPrefix(c, "PUB"):
		return Classification{
			Risk:        model.RiskLowMedium,
			Label:       "LOW-MEDIUM RISK",
			Explanation: "Unconsolidated bottom (pond); footprint unbuildable but setback development possible.",
		}
	case strings.HasPrefix(c, "L"):
		return Classification{
			Risk:        model.RiskHigh,
			Label:       "HIGH RISK",
			Explanation: "Lacustrine system; lake body - not buildable.",
		}
	case strings.HasPrefix(c, "R"):
		return Classification{
			Risk:        model.RiskHigh,
			Label:       "HIGH RISK",
			Explanation: "Riverine system; stream channel - not buildable.",
		}
	case strings.HasPrefix(c, "E"):
		return Classification{
			Risk:        model.RiskHigh,
			Label:       "HIGH RISK",
			Explanation: "Estuarine system; highly restricted.",
		}
	case strings.HasPrefix(c, "M"):
		return Classification{
			Risk:        model.RiskHigh,
			Label:       "HIGH RISK",
			Explanation: "Marine system; not buildable.",
		}
	}

	return Classification{
		Risk:        model.RiskMedium,
		Label:       "MEDIUM RISK",
		Explanation: "Unrecognized wetland classification; requires site-specific evaluation.",
	}
}
