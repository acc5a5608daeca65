package catalog_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/pagecraft/internal/testutils"
	"github.com/aretw0/pagecraft/pkg/adapters/catalog"
	"github.com/aretw0/pagecraft/pkg/domain"
	"github.com/aretw0/pagecraft/pkg/ports"
	contract "github.com/aretw0/pagecraft/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ ports.Catalog   = (*catalog.File)(nil)
	_ ports.Watchable = (*catalog.File)(nil)
)

const basicYAML = `
items:
  - id: hero
    name: Hero
    category: sections
    icon: star
    defaultContent:
      title: Welcome
      ctaCount: 1
    defaultStyles:
      padding: 40px
    fields:
      title: string
      ctaCount: int
  - id: text
    name: Text
    type: text
    defaultContent:
      text: Lorem
`

func write(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestFileCatalog_Contract(t *testing.T) {
	path := filepath.Join(testutils.TempDir(t), "catalog.yaml")
	write(t, path, basicYAML)

	c, err := catalog.Open(path)
	require.NoError(t, err)

	contract.CatalogContractTest(t, c, []domain.CatalogItem{
		{ID: "hero", Name: "Hero", Type: "hero"},
		{ID: "text", Name: "Text", Type: domain.BlockText},
	})
}

func TestFileCatalog_Decode(t *testing.T) {
	path := filepath.Join(testutils.TempDir(t), "catalog.yaml")
	write(t, path, basicYAML)

	c, err := catalog.Open(path)
	require.NoError(t, err)

	hero, err := c.Item(context.Background(), "hero")
	require.NoError(t, err)
	assert.Equal(t, domain.BlockType("hero"), hero.Type, "type defaults to id")
	assert.Equal(t, "sections", hero.Category)
	assert.Equal(t, "Welcome", hero.DefaultContent["title"])
	assert.Equal(t, "40px", hero.DefaultStyles["padding"])
	assert.Equal(t, "int", hero.Fields["ctaCount"])
}

func TestLoad_Directory(t *testing.T) {
	dir := testutils.TempDir(t)
	write(t, filepath.Join(dir, "a.yaml"), "- id: a\n  name: A\n")
	write(t, filepath.Join(dir, "nested", "b.json"), `[{"id": "b", "name": "B"}]`)
	write(t, filepath.Join(dir, "README.md"), "not a catalog")

	items, err := catalog.Load(dir)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "a", items[0].ID)
	assert.Equal(t, "b", items[1].ID)
}

func TestLoad_ReportsEveryProblem(t *testing.T) {
	dir := testutils.TempDir(t)
	write(t, filepath.Join(dir, "one.yaml"), `
- id: ok
  name: OK
- name: no id
- id: bad-default
  name: Bad
  fields:
    count: int
  defaultContent:
    count: many
- id: ok
  name: Dup
`)

	_, err := catalog.Load(dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrImportValidation))

	msg := err.Error()
	assert.Contains(t, msg, "one.yaml:items[1].id: missing")
	assert.Contains(t, msg, "one.yaml:items[2].defaultContent.count")
	assert.Contains(t, msg, `duplicate item id "ok"`)
}

func TestLoad_Errors(t *testing.T) {
	_, err := catalog.Load(filepath.Join(testutils.TempDir(t), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(testutils.TempDir(t), "scalar.yaml")
	write(t, path, "just a string")
	_, err = catalog.Load(path)
	assert.ErrorContains(t, err, "expected a list")

	path = filepath.Join(testutils.TempDir(t), "types.yaml")
	write(t, path, "- id: x\n  name: X\n  fields:\n    a: decimal\n")
	_, err = catalog.Load(path)
	assert.ErrorContains(t, err, "unsupported type")
}

func TestFileCatalog_ReloadKeepsPreviousOnError(t *testing.T) {
	path := filepath.Join(testutils.TempDir(t), "catalog.yaml")
	write(t, path, basicYAML)
	c, err := catalog.Open(path)
	require.NoError(t, err)

	write(t, path, "- name: broken\n")
	assert.Error(t, c.Reload())

	items, err := c.Items(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestFileCatalog_Watch(t *testing.T) {
	path := filepath.Join(testutils.TempDir(t), "catalog.yaml")
	write(t, path, basicYAML)
	c, err := catalog.Open(path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changes, err := c.Watch(ctx)
	require.NoError(t, err)

	write(t, path, basicYAML+"  - id: button\n    name: Button\n")

	select {
	case <-changes:
	case <-time.After(5 * time.Second):
		t.Fatal("no reload signal")
	}
	_, err = c.Item(ctx, "button")
	assert.NoError(t, err)

	cancel()
	for range changes {
	}
}
