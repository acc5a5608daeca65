package style

import (
	"strings"

	"github.com/aretw0/pagecraft/pkg/domain"
)

// Breakpoint identifies a preview viewport, e.g. "tablet-768".
type Breakpoint string

const (
	Desktop1920 Breakpoint = "desktop-1920"
	Desktop1440 Breakpoint = "desktop-1440"
	Desktop1280 Breakpoint = "desktop-1280"
	Tablet1024  Breakpoint = "tablet-1024"
	Tablet768   Breakpoint = "tablet-768"
	Mobile480   Breakpoint = "mobile-480"
	Mobile375   Breakpoint = "mobile-375"
	Custom      Breakpoint = "custom"
)

// Config describes one entry of the breakpoint table.
type Config struct {
	Name   Breakpoint    `json:"name"`
	Label  string        `json:"label"`
	Width  int           `json:"width"`
	Device domain.Device `json:"device"`
}

// table is ordered by strictly descending width. Custom sits last.
var table = []Config{
	{Name: Desktop1920, Label: "Desktop HD", Width: 1920, Device: domain.DeviceDesktop},
	{Name: Desktop1440, Label: "Desktop", Width: 1440, Device: domain.DeviceDesktop},
	{Name: Desktop1280, Label: "Laptop", Width: 1280, Device: domain.DeviceDesktop},
	{Name: Tablet1024, Label: "Tablet Landscape", Width: 1024, Device: domain.DeviceTablet},
	{Name: Tablet768, Label: "Tablet", Width: 768, Device: domain.DeviceTablet},
	{Name: Mobile480, Label: "Mobile Large", Width: 480, Device: domain.DeviceMobile},
	{Name: Mobile375, Label: "Mobile", Width: 375, Device: domain.DeviceMobile},
	{Name: Custom, Label: "Custom", Width: 0, Device: domain.DeviceDesktop},
}

// Breakpoints returns a copy of the breakpoint table.
func Breakpoints() []Config {
	return append([]Config(nil), table...)
}

// Lookup returns the table entry for bp.
func Lookup(bp Breakpoint) (Config, bool) {
	for _, c := range table {
		if c.Name == bp {
			return c, true
		}
	}
	return Config{}, false
}

// Width returns the nominal viewport width of bp, or 0 when unknown.
func Width(bp Breakpoint) int {
	c, _ := Lookup(bp)
	return c.Width
}

// DeviceOf classifies a breakpoint identifier. Unrecognized identifiers,
// including named custom breakpoints, are desktop.
func DeviceOf(bp Breakpoint) domain.Device {
	s := string(bp)
	switch {
	case strings.HasPrefix(s, "tablet"):
		return domain.DeviceTablet
	case strings.HasPrefix(s, "mobile"):
		return domain.DeviceMobile
	default:
		return domain.DeviceDesktop
	}
}

// Detect maps a viewport width to the widest breakpoint it satisfies.
func Detect(width int) Breakpoint {
	for _, c := range table {
		if c.Name == Custom {
			continue
		}
		if width >= c.Width {
			return c.Name
		}
	}
	return Mobile375
}

// IsKnown reports whether bp is part of the static table.
func IsKnown(bp Breakpoint) bool {
	_, ok := Lookup(bp)
	return ok
}
