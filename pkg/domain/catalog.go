package domain

// CatalogItem is a palette entry the canvas can drop onto a page.
type CatalogItem struct {
	ID             string         `json:"id" yaml:"id" mapstructure:"id"`
	Name           string         `json:"name" yaml:"name" mapstructure:"name"`
	Type           BlockType      `json:"type" yaml:"type" mapstructure:"type"`
	Icon           string         `json:"icon,omitempty" yaml:"icon" mapstructure:"icon"`
	Category       string         `json:"category,omitempty" yaml:"category" mapstructure:"category"`
	DefaultContent map[string]any `json:"defaultContent,omitempty" yaml:"defaultContent" mapstructure:"defaultContent"`
	DefaultStyles  map[string]any `json:"defaultStyles,omitempty" yaml:"defaultStyles" mapstructure:"defaultStyles"`
	// Fields declares the editable content fields and their type names
	// ("string", "int", "[string]", ...).
	Fields map[string]string `json:"fields,omitempty" yaml:"fields" mapstructure:"fields"`
}

// NewBlock instantiates the item's template as a fresh block.
// The caller assigns the id.
func (c CatalogItem) NewBlock() Block {
	t := c.Type
	if t == "" {
		t = BlockType(c.ID)
	}
	b := NewBlock(t)
	b.Name = c.Name
	b.Content = cloneValueMap(c.DefaultContent)
	if b.Content == nil {
		b.Content = map[string]any{}
	}
	b.Styles = StyleMap(cloneValueMap(c.DefaultStyles))
	if b.Styles == nil {
		b.Styles = StyleMap{}
	}
	return b
}

// Clone deep-copies the template maps.
func (c CatalogItem) Clone() CatalogItem {
	out := c
	out.DefaultContent = cloneValueMap(c.DefaultContent)
	out.DefaultStyles = cloneValueMap(c.DefaultStyles)
	if c.Fields != nil {
		out.Fields = make(map[string]string, len(c.Fields))
		for k, v := range c.Fields {
			out.Fields[k] = v
		}
	}
	return out
}
