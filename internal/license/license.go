package license

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/kong/dashctl/internal/cmd/common"
)

// Tier is a license level.
type Tier string

const (
	Free       Tier = "free"
	Pro        Tier = "pro"
	Enterprise Tier = "enterprise"
)

// Tiers lists every tier from lowest to highest.
var Tiers = []Tier{Free, Pro, Enterprise}

// Validity of a paid activation.
const Validity = 365 * 24 * time.Hour

var (
	ErrInvalidKey     = errors.New("invalid license key")
	ErrFeatureLocked  = errors.New("feature not available for this license")
	ErrUnknownTier    = errors.New("unknown license tier")
	ErrUnknownFeature = errors.New("unknown license feature")
	ErrExpired        = errors.New("license expired")
)

// keys are the accepted activation keys for paid tiers. Free needs none.
var keys = map[Tier]string{
	Pro:        "PRO-2024-DASHBOARD-KEY",
	Enterprise: "ENT-2024-DASHBOARD-KEY",
}

// access maps gated capabilities to the tiers that unlock them. Capabilities
// not listed are open to every tier.
var access = map[string][]Tier{
	"advanced-analytics": {Pro, Enterprise},
	"custom-branding":    {Pro, Enterprise},
	"api-access":         {Pro, Enterprise},
	"export-data":        {Pro, Enterprise},
	"priority-support":   {Pro, Enterprise},
	"multi-tenant":       {Enterprise},
	"source-code":        {Enterprise},
	"white-label":        {Enterprise},
	"custom-development": {Enterprise},
}

// ExportFeature gates the export command.
const ExportFeature = "export-data"

func ParseTier(s string) (Tier, error) {
	t := Tier(strings.ToLower(strings.TrimSpace(s)))
	if t == "" {
		return Free, nil
	}
	if !slices.Contains(Tiers, t) {
		return Free, fmt.Errorf("%w %q, must be one of %v", ErrUnknownTier, s, Tiers)
	}
	return t, nil
}

// Validate reports whether key activates tier. The free tier is valid only
// without a key.
func Validate(tier Tier, key string) bool {
	if key == "" {
		return tier == Free
	}
	want, ok := keys[tier]
	return ok && want == key
}

// License is the effective license of this installation.
type License struct {
	Tier     Tier      `json:"type"              yaml:"type"`
	Key      string    `json:"key,omitempty"     yaml:"key,omitempty"`
	Expires  time.Time `json:"expires,omitzero"  yaml:"expires,omitempty"`
	Valid    bool      `json:"valid"             yaml:"valid"`
	Features Features  `json:"features"          yaml:"features"`
}

func newLicense(tier Tier, key string, expires time.Time) License {
	return License{
		Tier:     tier,
		Key:      key,
		Expires:  expires,
		Valid:    Validate(tier, key),
		Features: FeaturesFor(tier),
	}
}

// Default is the license of an installation that never activated one.
func Default() License {
	return newLicense(Free, "", time.Time{})
}

func (l License) IsPro() bool        { return l.Tier == Pro || l.Tier == Enterprise }
func (l License) IsEnterprise() bool { return l.Tier == Enterprise }

// HasAccess reports whether the tier unlocks a named capability such as
// "export-data". Unknown capabilities are open to all tiers.
func (l License) HasAccess(capability string) bool {
	allowed, ok := access[capability]
	if !ok {
		return true
	}
	return slices.Contains(allowed, l.Tier)
}

// Require returns ErrFeatureLocked when capability is not unlocked.
func (l License) Require(capability string) error {
	if l.HasAccess(capability) {
		return nil
	}
	return fmt.Errorf("%w: %q requires one of %v, current license is %q",
		ErrFeatureLocked, capability, access[capability], l.Tier)
}

// CheckFeature evaluates an entry of the tier's feature table. Boolean
// entries report themselves; quotas are available when unlimited or above
// zero; the analytics level is not a boolean or quota and reports false.
func (l License) CheckFeature(name string) (bool, error) {
	return l.Features.Check(name)
}

// Store is the persistence the license needs from the configuration.
type Store interface {
	GetString(key string) string
	SetString(key string, value string)
	Save() error
}

// Load reads the persisted license. Stored values that fail validation fall
// back to the free tier; an expired paid license falls back too and is
// reported with ErrExpired.
func Load(store Store, now time.Time) (License, error) {
	tier, err := ParseTier(store.GetString(common.LicenseTypeConfigPath))
	if err != nil {
		return Default(), err
	}
	key := strings.TrimSpace(store.GetString(common.LicenseKeyConfigPath))

	var expires time.Time
	if raw := strings.TrimSpace(store.GetString(common.LicenseExpiryConfigKey)); raw != "" {
		expires, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			return Default(), fmt.Errorf("invalid license expiry %q: %w", raw, err)
		}
	}

	l := newLicense(tier, key, expires)
	if !l.Valid {
		return Default(), nil
	}
	if !l.Expires.IsZero() && now.After(l.Expires) {
		return Default(), fmt.Errorf("%w on %s", ErrExpired, l.Expires.Format(time.DateOnly))
	}
	return l, nil
}

// Activate validates key for tier and persists the result. Paid tiers are
// valid for one year from now.
func Activate(store Store, tier Tier, key string, now time.Time) (License, error) {
	key = strings.TrimSpace(key)
	if !Validate(tier, key) {
		return License{}, fmt.Errorf("%w for %s tier", ErrInvalidKey, tier)
	}

	var expires time.Time
	if tier != Free {
		expires = now.Add(Validity).UTC()
	}
	l := newLicense(tier, key, expires)

	store.SetString(common.LicenseTypeConfigPath, string(tier))
	store.SetString(common.LicenseKeyConfigPath, key)
	if expires.IsZero() {
		store.SetString(common.LicenseExpiryConfigKey, "")
	} else {
		store.SetString(common.LicenseExpiryConfigKey, expires.Format(time.RFC3339))
	}
	if err := store.Save(); err != nil {
		return License{}, fmt.Errorf("saving license: %w", err)
	}
	return l, nil
}
