package style_test

import (
	"strings"
	"testing"

	"github.com/aretw0/pagecraft/pkg/domain"
	"github.com/aretw0/pagecraft/pkg/style"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func block() *domain.Block {
	b := domain.NewBlock(domain.BlockText)
	b.Styles = domain.StyleMap{"color": "red", "fontSize": "16px"}
	b.ResponsiveStyles = &domain.ResponsiveStyles{
		Tablet: domain.StyleMap{"fontSize": "14px"},
		Mobile: domain.StyleMap{"fontSize": "12px", "padding": "4px"},
		Custom: map[string]domain.StyleMap{"kiosk": {"color": "blue"}},
	}
	return &b
}

func TestDeviceOf(t *testing.T) {
	tests := map[style.Breakpoint]domain.Device{
		style.Desktop1920: domain.DeviceDesktop,
		style.Tablet1024:  domain.DeviceTablet,
		style.Tablet768:   domain.DeviceTablet,
		style.Mobile480:   domain.DeviceMobile,
		style.Mobile375:   domain.DeviceMobile,
		style.Custom:      domain.DeviceDesktop,
		"watch-200":       domain.DeviceDesktop,
		"":                domain.DeviceDesktop,
	}
	for bp, want := range tests {
		assert.Equal(t, want, style.DeviceOf(bp), "breakpoint %q", bp)
	}
}

func TestBreakpointTable_Descending(t *testing.T) {
	table := style.Breakpoints()
	require.NotEmpty(t, table)
	for i := 1; i < len(table)-1; i++ {
		assert.Greater(t, table[i-1].Width, table[i].Width)
	}
	assert.Equal(t, style.Custom, table[len(table)-1].Name)
}

func TestDetect(t *testing.T) {
	assert.Equal(t, style.Desktop1920, style.Detect(2560))
	assert.Equal(t, style.Desktop1440, style.Detect(1440))
	assert.Equal(t, style.Desktop1280, style.Detect(1300))
	assert.Equal(t, style.Tablet1024, style.Detect(1024))
	assert.Equal(t, style.Tablet768, style.Detect(800))
	assert.Equal(t, style.Mobile480, style.Detect(480))
	assert.Equal(t, style.Mobile375, style.Detect(320))
}

func TestResolve(t *testing.T) {
	b := block()

	t.Run("desktop uses base", func(t *testing.T) {
		assert.Equal(t, domain.StyleMap{"color": "red", "fontSize": "16px"}, style.Resolve(b, style.Desktop1440))
	})

	t.Run("tablet override wins", func(t *testing.T) {
		got := style.Resolve(b, style.Tablet768)
		assert.Equal(t, "14px", got["fontSize"])
		assert.Equal(t, "red", got["color"])
	})

	t.Run("mobile adds keys", func(t *testing.T) {
		got := style.Resolve(b, style.Mobile375)
		assert.Equal(t, domain.StyleMap{"color": "red", "fontSize": "12px", "padding": "4px"}, got)
	})

	t.Run("named custom breakpoint", func(t *testing.T) {
		assert.Equal(t, "blue", style.Resolve(b, "kiosk")["color"])
	})

	t.Run("unknown breakpoint is desktop", func(t *testing.T) {
		assert.Equal(t, b.Styles, style.Resolve(b, "nope"))
	})

	t.Run("idempotent and pure", func(t *testing.T) {
		first := style.Resolve(b, style.Tablet1024)
		second := style.Resolve(b, style.Tablet1024)
		assert.Equal(t, first, second)

		first["color"] = "green"
		assert.Equal(t, "red", b.Styles["color"], "result must not alias the block")
	})

	t.Run("nil overrides", func(t *testing.T) {
		plain := domain.NewBlock(domain.BlockImage)
		assert.Empty(t, style.Resolve(&plain, style.Mobile375))
	})
}

func TestVisibility(t *testing.T) {
	b := block()
	b.Styles = style.SetVisibility(b.Styles, domain.DeviceMobile, true)

	assert.True(t, style.IsHidden(b.Styles, domain.DeviceMobile))
	assert.False(t, style.IsHidden(b.Styles, domain.DeviceTablet))
	assert.True(t, style.IsHiddenAt(b, style.Mobile480))
	assert.False(t, style.IsHiddenAt(b, style.Desktop1280))

	b.Styles = style.SetVisibility(b.Styles, domain.DeviceMobile, false)
	assert.Equal(t, "block", b.Styles["display_mobile"])
	assert.False(t, style.IsHiddenAt(b, style.Mobile480))
}

func TestClean(t *testing.T) {
	assert.Nil(t, style.Clean(&domain.ResponsiveStyles{Tablet: domain.StyleMap{}}))

	got := style.Clean(&domain.ResponsiveStyles{
		Mobile: domain.StyleMap{"a": 1},
		Custom: map[string]domain.StyleMap{"x": {}},
	})
	require.NotNil(t, got)
	assert.Nil(t, got.Custom)
	assert.Equal(t, domain.StyleMap{"a": 1}, got.Mobile)
}

func TestPrune(t *testing.T) {
	b := domain.NewBlock(domain.BlockText)
	b.Styles = domain.StyleMap{"color": "red"}
	b.ResponsiveStyles = &domain.ResponsiveStyles{
		Tablet: domain.StyleMap{"color": "red"},
		Mobile: domain.StyleMap{"color": "blue"},
	}

	assert.True(t, style.Prune(&b))
	require.NotNil(t, b.ResponsiveStyles)
	assert.Nil(t, b.ResponsiveStyles.Tablet)
	assert.Equal(t, "blue", b.ResponsiveStyles.Mobile["color"])

	assert.False(t, style.Prune(&b), "second pass is a no-op")
}

func TestCSS(t *testing.T) {
	assert.Equal(t, "background-color: #fff; font-size: 16px;",
		style.ToCSS(domain.StyleMap{"fontSize": "16px", "backgroundColor": "#fff", "display_mobile": "none"}))

	assert.Equal(t, domain.StyleMap{"fontSize": "12px", "color": "red"},
		style.FromCSS("font-size: 12px; color: red;; broken"))

	b := block()
	b.Styles = style.SetVisibility(b.Styles, domain.DeviceTablet, true)
	css := style.Stylesheet("#block-1", b)
	assert.Contains(t, css, "#block-1 { color: red; font-size: 16px; }")
	assert.Contains(t, css, "@media (max-width: 1024px) { #block-1 { display: none; font-size: 14px; } }")
	assert.Contains(t, css, "@media (max-width: 768px)")
	assert.False(t, strings.Contains(css, "display_"))
}

func TestValidateValue(t *testing.T) {
	valid := []any{"10px", "1.5em", "-2rem", "auto", "flex", "#fff", "rgb(", "red", 12, 3.5}
	for _, v := range valid {
		assert.True(t, style.ValidateValue("x", v), "%v", v)
	}
	invalid := []any{"10 px", "#zz", true, nil}
	for _, v := range invalid {
		assert.False(t, style.ValidateValue("x", v), "%v", v)
	}
}
