package landuse

// DORUse describes a Florida Department of Revenue land-use classification.
// These are fiscal classifications, not legal zoning.
type DORUse struct {
	Description string `json:"description"`
	Category    string `json:"category"`
	Buildable   *bool  `json:"buildable,omitempty"`
}

var (
	yes = true
	no  = false
)

// builtinDORCodes covers the classifications commonly seen on rural Florida
// vacant-land deals. A registry file may extend or override it.
var builtinDORCodes = map[string]DORUse{
	"000": {Description: "Vacant Residential", Category: "residential", Buildable: &yes},
	"001": {Description: "Single Family", Category: "residential", Buildable: &yes},
	"002": {Description: "Mobile Homes", Category: "residential", Buildable: &yes},
	"003": {Description: "Multi-family (10+ units)", Category: "residential", Buildable: &yes},
	"004": {Description: "Condominiums", Category: "residential", Buildable: &yes},
	"005": {Description: "Cooperatives", Category: "residential"},
	"006": {Description: "Retirement Homes", Category: "residential"},
	"008": {Description: "Multi-family (less than 10 units)", Category: "residential", Buildable: &yes},
	"010": {Description: "Vacant Commercial", Category: "commercial", Buildable: &yes},
	"011": {Description: "Stores, One Story", Category: "commercial"},
	"017": {Description: "Office Buildings", Category: "commercial"},
	"028": {Description: "Parking Lots, Mobile Home Parks", Category: "commercial"},
	"040": {Description: "Vacant Industrial", Category: "industrial", Buildable: &yes},
	"041": {Description: "Light Manufacturing", Category: "industrial"},
	"050": {Description: "Improved Agricultural", Category: "agricultural"},
	"051": {Description: "Cropland Soil Class I", Category: "agricultural"},
	"052": {Description: "Cropland Soil Class II", Category: "agricultural"},
	"054": {Description: "Timberland Site Index 90+", Category: "agricultural"},
	"060": {Description: "Grazing Land Soil Class I", Category: "agricultural"},
	"066": {Description: "Orchard Groves, Citrus", Category: "agricultural"},
	"069": {Description: "Ornamentals, Misc. Agricultural", Category: "agricultural"},
	"070": {Description: "Vacant Institutional", Category: "institutional"},
	"080": {Description: "Vacant Governmental", Category: "governmental", Buildable: &no},
	"086": {Description: "Counties (Other than Public Schools)", Category: "governmental", Buildable: &no},
	"089": {Description: "Municipal (Other than Parks)", Category: "governmental", Buildable: &no},
	"095": {Description: "Rivers and Lakes, Submerged Lands", Category: "water", Buildable: &no},
	"096": {Description: "Sewage Disposal, Waste Lands, Marsh", Category: "wasteland", Buildable: &no},
	"099": {Description: "Acreage Not Zoned Agricultural", Category: "acreage", Buildable: &yes},
}
