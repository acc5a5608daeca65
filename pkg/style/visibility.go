package style

import "github.com/aretw0/pagecraft/pkg/domain"

const (
	displayNone  = "none"
	displayBlock = "block"
)

// VisibilityKey is the synthetic style key that hides a block on a device.
func VisibilityKey(d domain.Device) string {
	return "display_" + string(d)
}

// IsHidden reports whether styles hide the element on device d.
func IsHidden(styles domain.StyleMap, d domain.Device) bool {
	v, ok := styles[VisibilityKey(d)].(string)
	return ok && v == displayNone
}

// IsHiddenAt resolves b at bp and checks the visibility key of bp's device.
func IsHiddenAt(b *domain.Block, bp Breakpoint) bool {
	return IsHidden(Resolve(b, bp), DeviceOf(bp))
}

// SetVisibility returns a copy of styles with the device visibility key set.
func SetVisibility(styles domain.StyleMap, d domain.Device, hidden bool) domain.StyleMap {
	v := displayBlock
	if hidden {
		v = displayNone
	}
	return Merge(styles, domain.StyleMap{VisibilityKey(d): v})
}
