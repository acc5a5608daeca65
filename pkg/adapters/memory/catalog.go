package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/aretw0/pagecraft/pkg/domain"
)

// Catalog implements ports.Catalog over a fixed list of items.
type Catalog struct {
	mu    sync.RWMutex
	items []domain.CatalogItem
}

// NewCatalog creates a catalog. Without items it serves DefaultItems.
func NewCatalog(items ...domain.CatalogItem) *Catalog {
	if len(items) == 0 {
		items = DefaultItems()
	}
	return &Catalog{items: cloneItems(items)}
}

// Items returns the palette in declaration order.
func (c *Catalog) Items(ctx context.Context) ([]domain.CatalogItem, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneItems(c.items), nil
}

// Item looks up one palette entry by id.
func (c *Catalog) Item(ctx context.Context, id string) (domain.CatalogItem, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, it := range c.items {
		if it.ID == id {
			return it.Clone(), nil
		}
	}
	return domain.CatalogItem{}, fmt.Errorf("catalog item %q: %w", id, domain.ErrNotFound)
}

// Replace swaps the palette, e.g. after a catalog file changed.
func (c *Catalog) Replace(items []domain.CatalogItem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = cloneItems(items)
}

func cloneItems(items []domain.CatalogItem) []domain.CatalogItem {
	out := make([]domain.CatalogItem, len(items))
	for i, it := range items {
		out[i] = it.Clone()
	}
	return out
}

// DefaultItems is the built-in palette.
func DefaultItems() []domain.CatalogItem {
	return []domain.CatalogItem{
		{ID: "hero", Name: "Hero", Type: domain.BlockHero, Category: "sections", Icon: "Sparkles",
			DefaultContent: map[string]any{"title": "Welcome", "subtitle": "Build something great", "buttonText": "Get started"},
			DefaultStyles:  map[string]any{"padding": "80px 20px", "textAlign": "center"}},
		{ID: "heading-h1", Name: "Heading", Type: domain.BlockHeading, Category: "text", Icon: "Heading1",
			DefaultContent: map[string]any{"text": "Heading"},
			DefaultStyles:  map[string]any{"fontSize": "32px", "fontWeight": "bold"}},
		{ID: "text", Name: "Text", Type: domain.BlockText, Category: "text", Icon: "Type",
			DefaultContent: map[string]any{"text": "Text"}},
		{ID: "image", Name: "Image", Type: domain.BlockImage, Category: "media", Icon: "Image",
			DefaultContent: map[string]any{"src": "", "alt": ""},
			DefaultStyles:  map[string]any{"width": "100%"}},
		{ID: "button", Name: "Button", Type: domain.BlockButton, Category: "interactive", Icon: "MousePointer",
			DefaultContent: map[string]any{"text": "Click me", "link": "#"},
			DefaultStyles:  map[string]any{"padding": "12px 24px", "borderRadius": "6px"}},
		{ID: "container", Name: "Container", Type: domain.BlockContainer, Category: "layout", Icon: "Square",
			DefaultStyles: map[string]any{"padding": "20px"}},
		{ID: "section", Name: "Section", Type: domain.BlockSection, Category: "layout", Icon: "LayoutTemplate",
			DefaultStyles: map[string]any{"padding": "40px 0"}},
		{ID: "form", Name: "Form", Type: domain.BlockForm, Category: "interactive", Icon: "FileText",
			DefaultContent: map[string]any{"fields": []any{}, "submitText": "Send"}},
	}
}
