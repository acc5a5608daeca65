package ports

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/aretw0/pagecraft/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contractProject(name string) *domain.ProjectData {
	p := domain.NewProjectData(name)
	parent := domain.BlockID(1)
	z := 3
	p.Pages[0].Meta.Title = "Welcome"
	p.Pages[0].Blocks = []domain.Block{
		{ID: 1, Type: domain.BlockContainer, Content: map[string]any{}, Styles: domain.StyleMap{"padding": "8px"}, Visible: true},
		{
			ID:      2,
			Type:    domain.BlockText,
			Name:    "Greeting",
			Content: map[string]any{"text": "hi"},
			Styles:  domain.StyleMap{"color": "red"},
			ResponsiveStyles: &domain.ResponsiveStyles{
				Mobile: domain.StyleMap{"color": "blue"},
			},
			ParentID: &parent,
			Visible:  true,
			Locked:   true,
			ZIndex:   &z,
		},
	}
	p.Settings["theme"] = "dark"
	return p
}

// RunProjectStoreContract runs a suite of tests to verify that a ProjectStore
// implementation adheres to the defined interface contract.
func RunProjectStoreContract(t *testing.T, store ProjectStore) {
	ctx := context.Background()
	projectID := "contract-project-" + time.Now().Format("20060102150405.000000000")

	t.Run("Save and Load", func(t *testing.T) {
		data := contractProject("Contract")
		require.NoError(t, store.Save(ctx, projectID, data), "Save should not return error")

		loaded, err := store.Load(ctx, projectID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, "Contract", loaded.Name)
		require.Len(t, loaded.Pages, 1)
		assert.Equal(t, "Welcome", loaded.Pages[0].Meta.Title)
		require.Len(t, loaded.Pages[0].Blocks, 2)

		child := loaded.Pages[0].Blocks[1]
		assert.Equal(t, domain.BlockID(2), child.ID)
		require.NotNil(t, child.ParentID)
		assert.Equal(t, domain.BlockID(1), *child.ParentID)
		assert.True(t, child.Locked)
		require.NotNil(t, child.ZIndex)
		assert.Equal(t, 3, *child.ZIndex)
		require.NotNil(t, child.ResponsiveStyles)
		assert.Equal(t, "blue", child.ResponsiveStyles.Mobile["color"])
		assert.Equal(t, "dark", loaded.Settings["theme"])
	})

	t.Run("Save is idempotent", func(t *testing.T) {
		data := contractProject("Twice")
		require.NoError(t, store.Save(ctx, projectID, data))
		require.NoError(t, store.Save(ctx, projectID, data))
		loaded, err := store.Load(ctx, projectID)
		require.NoError(t, err)
		assert.Equal(t, "Twice", loaded.Name)
	})

	t.Run("Loaded data is detached", func(t *testing.T) {
		loaded, err := store.Load(ctx, projectID)
		require.NoError(t, err)
		loaded.Name = "mutated"
		again, err := store.Load(ctx, projectID)
		require.NoError(t, err)
		assert.NotEqual(t, "mutated", again.Name)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+projectID)
		assert.ErrorIs(t, err, domain.ErrProjectNotFound)
	})

	t.Run("List", func(t *testing.T) {
		id1, id2 := projectID+"-1", projectID+"-2"
		require.NoError(t, store.Save(ctx, id1, domain.NewProjectData("one")))
		require.NoError(t, store.Save(ctx, id2, domain.NewProjectData("two")))
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, projectID), "Delete should not return error")
		_, err := store.Load(ctx, projectID)
		assert.ErrorIs(t, err, domain.ErrProjectNotFound, "Load after Delete should return ErrProjectNotFound")
		assert.NoError(t, store.Delete(ctx, projectID), "deleting twice is not an error")
	})
}

// RunVersionStoreContract verifies a VersionStore implementation.
func RunVersionStoreContract(t *testing.T, store VersionStore) {
	ctx := context.Background()
	projectID := "contract-versions-" + time.Now().Format("20060102150405.000000000")
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	versions := []domain.Version{
		{ID: "v-a", ProjectID: projectID, Version: "v1.0.0", CreatedAt: base, Data: contractProject("a")},
		{ID: "v-b", ProjectID: projectID, Version: "v1.0.1", Tag: "beta", Description: "second", CreatedAt: base.Add(time.Hour), Data: contractProject("b")},
	}

	t.Run("Create and List", func(t *testing.T) {
		for _, v := range versions {
			require.NoError(t, store.CreateVersion(ctx, v))
		}
		list, err := store.ListVersions(ctx, projectID)
		require.NoError(t, err)
		require.Len(t, list, 2)
		ids := []string{list[0].ID, list[1].ID}
		sort.Strings(ids)
		assert.Equal(t, []string{"v-a", "v-b"}, ids)

		other, err := store.ListVersions(ctx, projectID+"-other")
		require.NoError(t, err)
		assert.Empty(t, other)
	})

	t.Run("Load", func(t *testing.T) {
		v, err := store.LoadVersion(ctx, projectID, "v-b")
		require.NoError(t, err)
		assert.Equal(t, "v1.0.1", v.Version)
		assert.Equal(t, "beta", v.Tag)
		assert.True(t, base.Add(time.Hour).Equal(v.CreatedAt))
		require.NotNil(t, v.Data)
		assert.Equal(t, "b", v.Data.Name)
		assert.False(t, v.IsPublished)

		_, err = store.LoadVersion(ctx, projectID, "missing")
		assert.ErrorIs(t, err, domain.ErrVersionNotFound)
	})

	t.Run("Publish", func(t *testing.T) {
		require.NoError(t, store.Publish(ctx, projectID, "v-a"))
		v, err := store.LoadVersion(ctx, projectID, "v-a")
		require.NoError(t, err)
		assert.True(t, v.IsPublished)

		assert.ErrorIs(t, store.Publish(ctx, projectID, "missing"), domain.ErrVersionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.DeleteVersion(ctx, projectID, "v-a"))
		_, err := store.LoadVersion(ctx, projectID, "v-a")
		assert.ErrorIs(t, err, domain.ErrVersionNotFound)

		list, err := store.ListVersions(ctx, projectID)
		require.NoError(t, err)
		assert.Len(t, list, 1)
		_ = store.DeleteVersion(ctx, projectID, "v-b")
	})
}
