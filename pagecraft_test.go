package pagecraft_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aretw0/pagecraft"
	"github.com/aretw0/pagecraft/internal/testutils"
	"github.com/aretw0/pagecraft/pkg/adapters/memory"
	"github.com/aretw0/pagecraft/pkg/domain"
	"github.com/aretw0/pagecraft/pkg/editor"
	"github.com/aretw0/pagecraft/pkg/schema"
	"github.com/aretw0/pagecraft/pkg/versions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newWorkspace(t *testing.T, opts ...pagecraft.Option) *pagecraft.Workspace {
	t.Helper()
	base := []pagecraft.Option{
		pagecraft.WithIDs(sequentialIDs()),
		pagecraft.WithClock(func() time.Time { return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC) }),
		pagecraft.WithEditorOptions(editor.WithoutAutosave()),
	}
	ws := pagecraft.New(append(base, opts...)...)
	t.Cleanup(func() { _ = ws.Close(context.Background()) })
	return ws
}

func TestWorkspace_CreateOpenEdit(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	ws := newWorkspace(t, pagecraft.WithProjectStore(store))

	id, err := ws.CreateProject(ctx, "Landing")
	require.NoError(t, err)
	assert.Equal(t, "id-1", id)

	sess, err := ws.Open(ctx, id)
	require.NoError(t, err)

	again, err := ws.Open(ctx, id)
	require.NoError(t, err)
	assert.Same(t, sess, again)

	b := domain.NewBlock(domain.BlockHeading)
	b.Content["text"] = "Welcome"
	_, err = sess.Insert(b, nil, 0)
	require.NoError(t, err)

	stored, err := store.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.BlockCount(), "nothing saved yet")

	current, err := ws.Project(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, current.BlockCount(), "open session state is visible")

	require.NoError(t, ws.Close(ctx))
	stored, err = store.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.BlockCount(), "close flushes")
}

func TestWorkspace_ListProjects_NaturalOrder(t *testing.T) {
	ctx := context.Background()
	ws := newWorkspace(t)

	for _, name := range []string{"Page 10", "Page 2", "About"} {
		_, err := ws.CreateProject(ctx, name)
		require.NoError(t, err)
	}

	list, err := ws.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "About", list[0].Name)
	assert.Equal(t, "Page 2", list[1].Name)
	assert.Equal(t, "Page 10", list[2].Name)
	assert.Equal(t, 1, list[0].Pages)
}

func TestWorkspace_ExportImport(t *testing.T) {
	ctx := context.Background()
	ws := newWorkspace(t)

	raw, err := schema.Export(testutils.SampleProject("Shop"), time.Now())
	require.NoError(t, err)

	id, err := ws.Import(ctx, "", raw)
	require.NoError(t, err)

	data, err := ws.Project(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Shop", data.Name)
	assert.Len(t, data.Pages, 2)

	out, err := ws.Export(ctx, id)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"projectName": "Shop"`)
	assert.Contains(t, string(out), `"exportedAt": "2024-05-01T00:00:00Z"`)

	t.Run("invalid import leaves project untouched", func(t *testing.T) {
		_, err := ws.Import(ctx, id, []byte(`{"pages":[{"name":"x"}]}`))
		assert.ErrorIs(t, err, domain.ErrImportValidation)

		data, err := ws.Project(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "Shop", data.Name)
	})

	t.Run("open session adopts import", func(t *testing.T) {
		sess, err := ws.Open(ctx, id)
		require.NoError(t, err)

		raw, err := schema.Export(domain.NewProjectData("Blank"), time.Now())
		require.NoError(t, err)
		_, err = ws.Import(ctx, id, raw)
		require.NoError(t, err)
		assert.Equal(t, "Blank", sess.Project().Name)
	})
}

func TestWorkspace_VersionsFlushAndRollback(t *testing.T) {
	ctx := context.Background()
	ws := newWorkspace(t)

	id, err := ws.CreateProject(ctx, "Site")
	require.NoError(t, err)
	sess, err := ws.Open(ctx, id)
	require.NoError(t, err)

	_, err = sess.Insert(domain.NewBlock(domain.BlockText), nil, 0)
	require.NoError(t, err)

	v1, err := ws.CreateVersion(ctx, id, versions.CreateRequest{Description: "first"})
	require.NoError(t, err)
	assert.Equal(t, "v1.0.0", v1.Version)
	assert.Equal(t, 1, v1.Data.BlockCount(), "unsaved edits are flushed before snapshot")

	_, err = sess.Insert(domain.NewBlock(domain.BlockImage), nil, 1)
	require.NoError(t, err)
	require.Len(t, sess.Blocks(), 2)

	data, err := ws.Rollback(ctx, id, v1.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, data.BlockCount())
	assert.Len(t, sess.Blocks(), 1, "open session adopts the rollback")
	assert.False(t, sess.CanUndo())

	list, err := ws.Versions().List(ctx, id)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestWorkspace_DeleteKeepsVersions(t *testing.T) {
	ctx := context.Background()
	ws := newWorkspace(t)

	id, err := ws.CreateProject(ctx, "Temp")
	require.NoError(t, err)
	_, err = ws.CreateVersion(ctx, id, versions.CreateRequest{})
	require.NoError(t, err)

	require.NoError(t, ws.DeleteProject(ctx, id))

	_, err = ws.Project(ctx, id)
	assert.ErrorIs(t, err, domain.ErrProjectNotFound)

	list, err := ws.Versions().List(ctx, id)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestWorkspace_Defaults(t *testing.T) {
	ws := pagecraft.New()
	items, err := ws.Catalog().Items(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, items)
	assert.NotNil(t, ws.Assets())
	assert.NotNil(t, ws.Logger())
}

func TestWorkspace_Hooks(t *testing.T) {
	ctx := context.Background()
	var ops []string
	ws := newWorkspace(t, pagecraft.WithHooks(domain.Hooks{
		OnCommit: func(_ context.Context, e *domain.CommitEvent) { ops = append(ops, e.Op) },
	}))

	id, err := ws.CreateProject(ctx, "Hooks")
	require.NoError(t, err)
	sess, err := ws.Open(ctx, id)
	require.NoError(t, err)

	_, err = sess.Insert(domain.NewBlock(domain.BlockText), nil, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"insert"}, ops)
}
