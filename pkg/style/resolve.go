package style

import "github.com/aretw0/pagecraft/pkg/domain"

// Resolve computes the effective style map of b at bp.
//
// Base styles are the desktop layer. Tablet and mobile breakpoints merge the
// matching device override over the base; named custom breakpoints merge
// responsiveStyles.custom[name] instead. The result is a fresh map, b is never
// modified.
func Resolve(b *domain.Block, bp Breakpoint) domain.StyleMap {
	if b == nil {
		return domain.StyleMap{}
	}
	return Merge(b.Styles, Override(b.ResponsiveStyles, bp))
}

// Override returns the override layer that applies at bp, or nil.
func Override(rs *domain.ResponsiveStyles, bp Breakpoint) domain.StyleMap {
	if rs == nil {
		return nil
	}
	if bp == Custom || !IsKnown(bp) {
		if m, ok := rs.Custom[string(bp)]; ok {
			return m
		}
	}
	switch d := DeviceOf(bp); d {
	case domain.DeviceTablet, domain.DeviceMobile:
		return rs.ForDevice(d)
	}
	return nil
}

// Merge shallow-merges override over base, last write wins per key.
func Merge(base, override domain.StyleMap) domain.StyleMap {
	out := make(domain.StyleMap, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		out[k] = v
	}
	return out
}

// UpdateDevice shallow-merges patch into the override map for device and
// returns the updated set. A nil rs is allocated.
func UpdateDevice(rs *domain.ResponsiveStyles, device domain.Device, patch domain.StyleMap) *domain.ResponsiveStyles {
	if rs == nil {
		rs = &domain.ResponsiveStyles{}
	}
	rs.SetDevice(device, Merge(rs.ForDevice(device), patch))
	return rs
}

// UpdateCustom shallow-merges patch into the named custom breakpoint overrides.
func UpdateCustom(rs *domain.ResponsiveStyles, name string, patch domain.StyleMap) *domain.ResponsiveStyles {
	if rs == nil {
		rs = &domain.ResponsiveStyles{}
	}
	if rs.Custom == nil {
		rs.Custom = make(map[string]domain.StyleMap)
	}
	rs.Custom[name] = Merge(rs.Custom[name], patch)
	return rs
}
