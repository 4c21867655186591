package enums

import "fmt"

// VendorTier classifies a seller by performance/volume for commission caps.
type VendorTier string

const (
	VendorTierStandard VendorTier = "standard"
	VendorTierSilver   VendorTier = "silver"
	VendorTierGold     VendorTier = "gold"
	VendorTierPlatinum VendorTier = "platinum"
)

var validVendorTiers = []VendorTier{
	VendorTierStandard,
	VendorTierSilver,
	VendorTierGold,
	VendorTierPlatinum,
}

// String implements fmt.Stringer.
func (v VendorTier) String() string {
	return string(v)
}

// IsValid reports whether the value is a known VendorTier.
func (v VendorTier) IsValid() bool {
	for _, candidate := range validVendorTiers {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseVendorTier converts raw input into a VendorTier.
func ParseVendorTier(value string) (VendorTier, error) {
	for _, candidate := range validVendorTiers {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid vendor tier %q", value)
}
