package license

import (
	"fmt"
	"strconv"
)

// Unlimited marks a quota without an upper bound.
const Unlimited Quota = -1

// Quota is a countable allowance.
type Quota int

func (q Quota) String() string {
	if q == Unlimited {
		return "unlimited"
	}
	return strconv.Itoa(int(q))
}

func (q Quota) available() bool {
	return q == Unlimited || q > 0
}

// MarshalJSON writes finite quotas as numbers and Unlimited by name.
func (q Quota) MarshalJSON() ([]byte, error) {
	if q == Unlimited {
		return []byte(`"unlimited"`), nil
	}
	return []byte(q.String()), nil
}

func (q Quota) MarshalYAML() (any, error) {
	if q == Unlimited {
		return q.String(), nil
	}
	return int(q), nil
}

// Features is the capability table of one tier.
type Features struct {
	Dashboards     Quota  `json:"dashboards"     yaml:"dashboards"`
	Components     Quota  `json:"components"     yaml:"components"`
	Users          Quota  `json:"users"          yaml:"users"`
	Support        bool   `json:"support"        yaml:"support"`
	Analytics      string `json:"analytics"      yaml:"analytics"`
	CustomBranding bool   `json:"customBranding" yaml:"customBranding"`
	APIAccess      bool   `json:"apiAccess"      yaml:"apiAccess"`
	ExportData     bool   `json:"exportData"     yaml:"exportData"`
	MultiTenant    bool   `json:"multiTenant"    yaml:"multiTenant"`
	SourceCode     bool   `json:"sourceCode"     yaml:"sourceCode"`
}

var tierFeatures = map[Tier]Features{
	Free: {
		Dashboards: 5,
		Components: 20,
		Users:      1,
		Analytics:  "basic",
	},
	Pro: {
		Dashboards:     25,
		Components:     100,
		Users:          25,
		Support:        true,
		Analytics:      "advanced",
		CustomBranding: true,
		APIAccess:      true,
		ExportData:     true,
	},
	Enterprise: {
		Dashboards:     Unlimited,
		Components:     Unlimited,
		Users:          Unlimited,
		Support:        true,
		Analytics:      "enterprise",
		CustomBranding: true,
		APIAccess:      true,
		ExportData:     true,
		MultiTenant:    true,
		SourceCode:     true,
	},
}

// FeaturesFor returns the capability table of tier.
func FeaturesFor(tier Tier) Features {
	return tierFeatures[tier]
}

// FeatureNames lists the keys accepted by Check.
var FeatureNames = []string{
	"dashboards", "components", "users", "support", "analytics",
	"customBranding", "apiAccess", "exportData", "multiTenant", "sourceCode",
}

func (f Features) Check(name string) (bool, error) {
	switch name {
	case "dashboards":
		return f.Dashboards.available(), nil
	case "components":
		return f.Components.available(), nil
	case "users":
		return f.Users.available(), nil
	case "support":
		return f.Support, nil
	case "analytics":
		return f.Analytics == Unlimited.String(), nil
	case "customBranding":
		return f.CustomBranding, nil
	case "apiAccess":
		return f.APIAccess, nil
	case "exportData":
		return f.ExportData, nil
	case "multiTenant":
		return f.MultiTenant, nil
	case "sourceCode":
		return f.SourceCode, nil
	default:
		return false, fmt.Errorf("%w %q, must be one of %v", ErrUnknownFeature, name, FeatureNames)
	}
}
