package dsl

import "github.com/aretw0/pagecraft/pkg/domain"

// BlockBuilder provides a fluent API for configuring a block and its children.
type BlockBuilder struct {
	block    domain.Block
	children []*BlockBuilder
}

// Block starts a block of any catalog type.
func Block(t domain.BlockType) *BlockBuilder {
	return &BlockBuilder{block: domain.NewBlock(t)}
}

// Text is a text block with the given copy.
func Text(text string) *BlockBuilder {
	return Block(domain.BlockText).Content("text", text)
}

// Heading is a top-level heading.
func Heading(text string) *BlockBuilder {
	return Block(domain.BlockHeading).Content("text", text)
}

// Button is a button with a label.
func Button(label string) *BlockBuilder {
	return Block(domain.BlockButton).Content("label", label)
}

// Image is an image block pointing at src.
func Image(src string) *BlockBuilder {
	return Block(domain.BlockImage).Content("src", src)
}

// Container is an empty layout container.
func Container() *BlockBuilder {
	return Block(domain.BlockContainer)
}

// Section is a full-width layout section.
func Section() *BlockBuilder {
	return Block(domain.BlockSection)
}

// Name sets the display name.
func (b *BlockBuilder) Name(name string) *BlockBuilder {
	b.block.Name = name
	return b
}

// Content sets one content key.
func (b *BlockBuilder) Content(key string, value any) *BlockBuilder {
	b.block.Content[key] = value
	return b
}

// Style sets one base style key.
func (b *BlockBuilder) Style(key string, value any) *BlockBuilder {
	b.block.Styles[key] = value
	return b
}

// Responsive sets one override for a device.
func (b *BlockBuilder) Responsive(device domain.Device, key string, value any) *BlockBuilder {
	if b.block.ResponsiveStyles == nil {
		b.block.ResponsiveStyles = &domain.ResponsiveStyles{}
	}
	rs := b.block.ResponsiveStyles
	var m *domain.StyleMap
	switch device {
	case domain.DeviceTablet:
		m = &rs.Tablet
	case domain.DeviceMobile:
		m = &rs.Mobile
	default:
		m = &rs.Desktop
	}
	if *m == nil {
		*m = domain.StyleMap{}
	}
	(*m)[key] = value
	return b
}

// Hidden marks the block as not rendered.
func (b *BlockBuilder) Hidden() *BlockBuilder {
	b.block.Visible = false
	return b
}

// Locked marks the block as locked against edits.
func (b *BlockBuilder) Locked() *BlockBuilder {
	b.block.Locked = true
	return b
}

// ZIndex sets the stacking order.
func (b *BlockBuilder) ZIndex(z int) *BlockBuilder {
	b.block.ZIndex = &z
	return b
}

// Add appends children in order.
func (b *BlockBuilder) Add(children ...*BlockBuilder) *BlockBuilder {
	b.children = append(b.children, children...)
	return b
}
