package dsl

import (
	"github.com/gosimple/slug"

	"github.com/aretw0/pagecraft/pkg/domain"
)

// Builder manages the project construction.
type Builder struct {
	name  string
	pages []*PageBuilder
}

// PageBuilder collects the top-level blocks of one page.
type PageBuilder struct {
	page  domain.Page
	roots []*BlockBuilder
}

// NewProject creates a builder with an empty home page.
func NewProject(name string) *Builder {
	home := domain.NewProjectData(name).Pages[0]
	return &Builder{
		name:  name,
		pages: []*PageBuilder{{page: home}},
	}
}

// Home returns the builder of the home page.
func (b *Builder) Home() *PageBuilder {
	return b.pages[0]
}

// Page adds a page whose path is the slug of its name.
// If the page already exists, it returns the existing builder.
func (b *Builder) Page(id, name string) *PageBuilder {
	for _, p := range b.pages {
		if p.page.ID == id {
			return p
		}
	}
	pb := &PageBuilder{page: domain.Page{
		ID:     id,
		Name:   name,
		Path:   "/" + slug.Make(name),
		Blocks: []domain.Block{},
	}}
	b.pages = append(b.pages, pb)
	return pb
}

// Title sets the SEO title of the page.
func (p *PageBuilder) Title(title string) *PageBuilder {
	p.page.Meta.Title = title
	return p
}

// Add appends top-level blocks in order.
func (p *PageBuilder) Add(blocks ...*BlockBuilder) *PageBuilder {
	p.roots = append(p.roots, blocks...)
	return p
}

// Build assigns ids and positions and returns the project. Every call yields
// an independent copy.
func (b *Builder) Build() *domain.ProjectData {
	data := domain.NewProjectData(b.name)
	data.Pages = data.Pages[:0]

	next := domain.BlockID(1)
	var emit func(out []domain.Block, group []*BlockBuilder, parent *domain.BlockID) []domain.Block
	emit = func(out []domain.Block, group []*BlockBuilder, parent *domain.BlockID) []domain.Block {
		for i, bb := range group {
			blk := bb.block.Clone()
			blk.ID = next
			next++
			blk.Position = i
			if parent != nil {
				pid := *parent
				blk.ParentID = &pid
			}
			out = append(out, blk)
			out = emit(out, bb.children, &blk.ID)
		}
		return out
	}

	for _, pb := range b.pages {
		page := pb.page.Clone()
		page.Blocks = emit([]domain.Block{}, pb.roots, nil)
		data.Pages = append(data.Pages, page)
	}
	return data
}
