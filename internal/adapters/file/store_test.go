package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/pagecraft/internal/adapters/file"
	"github.com/aretw0/pagecraft/internal/testutils"
	"github.com/aretw0/pagecraft/pkg/domain"
	"github.com/aretw0/pagecraft/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ ports.ProjectStore = (*file.Store)(nil)
	_ ports.VersionStore = (*file.Store)(nil)
)

func TestFileStore_Contract(t *testing.T) {
	ports.RunProjectStoreContract(t, file.New(testutils.TempDir(t)))
}

func TestFileStore_VersionContract(t *testing.T) {
	ports.RunVersionStoreContract(t, file.New(testutils.TempDir(t)))
}

func TestFileStore_Layout(t *testing.T) {
	dir := testutils.TempDir(t)
	store := file.New(dir)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "site", testutils.SampleProject("Site")))
	_, err := os.Stat(filepath.Join(dir, "projects", "site.json"))
	require.NoError(t, err)

	entries, err := os.ReadDir(filepath.Join(dir, "projects"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")

	loaded, err := store.Load(ctx, "site")
	require.NoError(t, err)
	assert.Equal(t, 4, loaded.BlockCount())
}

func TestFileStore_RejectsUnsafeIDs(t *testing.T) {
	store := file.New(testutils.TempDir(t))
	ctx := context.Background()

	for _, id := range []string{"", "..", "a/b", `a\b`} {
		assert.Error(t, store.Save(ctx, id, domain.NewProjectData("x")), "id %q", id)
	}
	_, err := store.LoadVersion(ctx, "p", "../p")
	assert.Error(t, err)
}

func TestFileStore_ListEmpty(t *testing.T) {
	store := file.New(filepath.Join(t.TempDir(), "missing"))
	ids, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
}
