package domain

// BlockID identifies a block within a project.
type BlockID int

// BlockType is a tag from the block catalog. Immutable after creation.
type BlockType string

const (
	BlockHero          BlockType = "hero"
	BlockText          BlockType = "text"
	BlockHeading       BlockType = "heading-h1"
	BlockParagraph     BlockType = "paragraph"
	BlockImage         BlockType = "image"
	BlockGallery       BlockType = "gallery"
	BlockVideo         BlockType = "video"
	BlockButton        BlockType = "button"
	BlockForm          BlockType = "form"
	BlockHeader        BlockType = "header"
	BlockFooter        BlockType = "footer"
	BlockSection       BlockType = "section"
	BlockContainer     BlockType = "container"
	BlockRow           BlockType = "row"
	BlockColumn        BlockType = "column"
	BlockGridContainer BlockType = "grid-container"
	BlockCard          BlockType = "card"
	BlockPricing       BlockType = "pricing"
	BlockCustom        BlockType = "custom"
)

// StyleMap is a CSS-like property map (camelCase keys).
type StyleMap map[string]any

// Clone returns a deep copy of the map. Nested slices and maps from imported
// JSON are copied too.
func (m StyleMap) Clone() StyleMap {
	if m == nil {
		return nil
	}
	out := make(StyleMap, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

// Device is the coarse class a breakpoint belongs to.
type Device string

const (
	DeviceDesktop Device = "desktop"
	DeviceTablet  Device = "tablet"
	DeviceMobile  Device = "mobile"
)

// ResponsiveStyles holds per-device overrides plus named custom breakpoints.
type ResponsiveStyles struct {
	Desktop StyleMap            `json:"desktop,omitempty"`
	Tablet  StyleMap            `json:"tablet,omitempty"`
	Mobile  StyleMap            `json:"mobile,omitempty"`
	Custom  map[string]StyleMap `json:"custom,omitempty"`
}

// ForDevice returns the override map for a device class.
func (r *ResponsiveStyles) ForDevice(d Device) StyleMap {
	if r == nil {
		return nil
	}
	switch d {
	case DeviceTablet:
		return r.Tablet
	case DeviceMobile:
		return r.Mobile
	default:
		return r.Desktop
	}
}

// SetDevice replaces the override map for a device class.
func (r *ResponsiveStyles) SetDevice(d Device, m StyleMap) {
	switch d {
	case DeviceTablet:
		r.Tablet = m
	case DeviceMobile:
		r.Mobile = m
	default:
		r.Desktop = m
	}
}

// IsEmpty reports whether no override is present.
func (r *ResponsiveStyles) IsEmpty() bool {
	return r == nil || (len(r.Desktop) == 0 && len(r.Tablet) == 0 && len(r.Mobile) == 0 && len(r.Custom) == 0)
}

// Clone deep-copies the override maps.
func (r *ResponsiveStyles) Clone() *ResponsiveStyles {
	if r == nil {
		return nil
	}
	out := &ResponsiveStyles{
		Desktop: r.Desktop.Clone(),
		Tablet:  r.Tablet.Clone(),
		Mobile:  r.Mobile.Clone(),
	}
	if r.Custom != nil {
		out.Custom = make(map[string]StyleMap, len(r.Custom))
		for name, m := range r.Custom {
			out.Custom[name] = m.Clone()
		}
	}
	return out
}

// Block is a node of the page tree. Blocks are stored flat; ParentID links
// a block to its owner and Position orders it among its siblings.
type Block struct {
	ID               BlockID           `json:"id"`
	Type             BlockType         `json:"type"`
	Name             string            `json:"name,omitempty"`
	Content          map[string]any    `json:"content"`
	Styles           StyleMap          `json:"styles"`
	ResponsiveStyles *ResponsiveStyles `json:"responsiveStyles,omitempty"`
	Animation        map[string]any    `json:"animation,omitempty"`
	HoverEffects     map[string]any    `json:"hoverEffects,omitempty"`
	ParentID         *BlockID          `json:"parentId,omitempty"`
	Position         int               `json:"position"`
	Visible          bool              `json:"visible"`
	Locked           bool              `json:"locked"`
	ZIndex           *int              `json:"zIndex,omitempty"`
}

// NewBlock returns a visible, unlocked block with empty maps.
func NewBlock(t BlockType) Block {
	return Block{
		Type:    t,
		Content: map[string]any{},
		Styles:  StyleMap{},
		Visible: true,
	}
}

// IsTopLevel reports whether the block has no parent.
func (b *Block) IsTopLevel() bool {
	return b.ParentID == nil
}

// HasParent reports whether the block's parent is id.
func (b *Block) HasParent(id *BlockID) bool {
	if b.ParentID == nil || id == nil {
		return b.ParentID == nil && id == nil
	}
	return *b.ParentID == *id
}

// Clone returns a deep copy that shares no mutable state with b.
func (b Block) Clone() Block {
	out := b
	out.Content = cloneValueMap(b.Content)
	out.Styles = b.Styles.Clone()
	out.ResponsiveStyles = b.ResponsiveStyles.Clone()
	out.Animation = cloneValueMap(b.Animation)
	out.HoverEffects = cloneValueMap(b.HoverEffects)
	if b.ParentID != nil {
		p := *b.ParentID
		out.ParentID = &p
	}
	if b.ZIndex != nil {
		z := *b.ZIndex
		out.ZIndex = &z
	}
	return out
}

// CloneBlocks deep-copies a block slice.
func CloneBlocks(blocks []Block) []Block {
	if blocks == nil {
		return nil
	}
	out := make([]Block, len(blocks))
	for i, b := range blocks {
		out[i] = b.Clone()
	}
	return out
}

// Ptr returns a pointer to id.
func (id BlockID) Ptr() *BlockID {
	return &id
}

func cloneValueMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return cloneValueMap(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		return append([]string(nil), val...)
	default:
		return v
	}
}
