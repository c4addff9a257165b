package enums

import "fmt"

// ChannelType identifies the external platform a channel connects to.
type ChannelType string

const (
	ChannelTypeShopify     ChannelType = "shopify"
	ChannelTypeSiigo       ChannelType = "siigo"
	ChannelTypeERP         ChannelType = "erp"
	ChannelTypeWoocommerce ChannelType = "woocommerce"
	ChannelTypePrestashop  ChannelType = "prestashop"
)

var validChannelTypes = []ChannelType{
	ChannelTypeShopify,
	ChannelTypeSiigo,
	ChannelTypeERP,
	ChannelTypeWoocommerce,
	ChannelTypePrestashop,
}

// String implements fmt.Stringer.
func (c ChannelType) String() string {
	return string(c)
}

// IsValid reports whether the value is a known ChannelType.
func (c ChannelType) IsValid() bool {
	for _, candidate := range validChannelTypes {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseChannelType converts raw input into a ChannelType.
func ParseChannelType(value string) (ChannelType, error) {
	for _, candidate := range validChannelTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid channel type %q", value)
}
