/*
Package dsl provides a Go DSL for programmatically constructing projects.

It builds block trees with a fluent builder instead of hand-written block
slices with parent ids and positions. This is useful for seeding projects,
unit testing and generating starter templates.

Example usage:

	p := dsl.NewProject("Landing")

	p.Home().Add(
		dsl.Text("Welcome").Name("Intro").Style("color", "red"),
		dsl.Container().Name("Box").Add(
			dsl.Button("Sign up"),
		),
	)

	p.Page("about", "About").Add(dsl.Heading("About us"))

	data := p.Build() // *domain.ProjectData ready for a ProjectStore

Ids are assigned in tree pre-order across all pages, starting at 1, and
positions follow the order in which children were added.
*/
package dsl
