package versions_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/pagecraft/internal/testutils"
	"github.com/aretw0/pagecraft/pkg/adapters/memory"
	"github.com/aretw0/pagecraft/pkg/domain"
	"github.com/aretw0/pagecraft/pkg/versions"
)

func vs(tags ...string) []domain.Version {
	out := make([]domain.Version, len(tags))
	for i, tag := range tags {
		out[i] = domain.Version{ID: fmt.Sprint(i), Version: tag}
	}
	return out
}

func TestNextTag(t *testing.T) {
	assert.Equal(t, "v1.2.1", versions.NextTag(vs("v1.0.0", "v1.2.0", "v1.1.5")))
	assert.Equal(t, "v1.10.1", versions.NextTag(vs("v1.9.0", "v1.10.0")), "numeric, not lexical")
	assert.Equal(t, "v2.0.1", versions.NextTag(vs("2.0.0", "garbage")))
	assert.Equal(t, versions.FirstTag, versions.NextTag(vs("draft", "")))
	assert.Equal(t, versions.FirstTag, versions.NextTag(nil))
}

func TestParseAndCompare(t *testing.T) {
	tag, ok := versions.ParseTag("v3.4.5")
	require.True(t, ok)
	assert.Equal(t, versions.Tag{Major: 3, Minor: 4, Patch: 5}, tag)
	assert.Equal(t, "v3.4.5", tag.String())

	_, ok = versions.ParseTag("v1.2")
	assert.False(t, ok)

	assert.Equal(t, 1, versions.Compare("v1.10.0", "v1.9.9"))
	assert.Equal(t, -1, versions.Compare("1.0.0", "v1.0.1"))
	assert.Equal(t, 0, versions.Compare("v1.0.0", "1.0.0"))
}

func TestOrderingAndLookup(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	list := []domain.Version{
		{ID: "a", Version: "v1.0.0", CreatedAt: base},
		{ID: "b", Version: "v1.10.0", CreatedAt: base.Add(2 * time.Hour), Tag: "stable"},
		{ID: "c", Version: "v1.2.0", CreatedAt: base.Add(time.Hour), IsPublished: true},
	}

	byDate := versions.SortByDate(list)
	assert.Equal(t, []string{"b", "c", "a"}, []string{byDate[0].ID, byDate[1].ID, byDate[2].ID})
	byNum := versions.SortByNumber(list)
	assert.Equal(t, []string{"b", "c", "a"}, []string{byNum[0].ID, byNum[1].ID, byNum[2].ID})
	assert.Equal(t, "a", list[0].ID, "input is not reordered")

	cur, ok := versions.Current(list)
	require.True(t, ok)
	assert.Equal(t, "c", cur.ID, "latest published")

	list[2].IsPublished = false
	cur, _ = versions.Current(list)
	assert.Equal(t, "a", cur.ID, "first when none is published")
	_, ok = versions.Current(nil)
	assert.False(t, ok)

	v, ok := versions.Find(list, "stable")
	require.True(t, ok)
	assert.Equal(t, "b", v.ID)
	v, ok = versions.Find(list, "v1.2.0")
	require.True(t, ok)
	assert.Equal(t, "c", v.ID)
	_, ok = versions.Find(list, "")
	assert.False(t, ok)
}

func TestValidateAndClone(t *testing.T) {
	assert.NoError(t, versions.Validate(domain.Version{Version: "v1.0.0", Data: domain.NewProjectData("x")}))
	assert.ErrorContains(t, versions.Validate(domain.Version{Version: "1.0", Data: domain.NewProjectData("x")}), "invalid version format")

	err := versions.Validate(domain.Version{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "version is required")
	assert.Contains(t, err.Error(), "version data is required")

	now := time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC)
	src := domain.Version{ID: "a", Version: "v1.4.0", IsPublished: true, Data: testutils.SampleProject("x")}
	c := versions.Clone(src, "b", now)
	assert.Equal(t, "v1.4.1", c.Version)
	assert.False(t, c.IsPublished)
	assert.Equal(t, now, c.CreatedAt)
	c.Data.Name = "changed"
	assert.Equal(t, "x", src.Data.Name, "clone owns its data")
}

func TestDiff(t *testing.T) {
	older := domain.Version{Data: testutils.SampleProject("x")}
	newer := domain.Version{Data: testutils.SampleProject("x")}
	newer.Data.Pages[0].Blocks[0].Content["text"] = "bye"
	newer.Data.Pages = newer.Data.Pages[:1]

	d := versions.Diff(older, newer)
	assert.Empty(t, d.Added)
	assert.Equal(t, []string{"page/about", "page/about/block/4"}, d.Removed)
	assert.Equal(t, []string{"page/home/block/1"}, d.Changed)
}

func newService(t *testing.T) (*versions.Service, *memory.Store) {
	t.Helper()
	projects := memory.NewStore()
	require.NoError(t, projects.Save(context.Background(), "p", testutils.SampleProject("Demo")))

	n := 0
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	svc := versions.NewService(projects, memory.NewVersionStore(),
		versions.WithIDs(func() string { n++; return fmt.Sprintf("ver-%d", n) }),
		versions.WithClock(func() time.Time { clock = clock.Add(time.Minute); return clock }),
	)
	return svc, projects
}

func TestService(t *testing.T) {
	ctx := context.Background()
	svc, projects := newService(t)

	first, err := svc.Create(ctx, "p", versions.CreateRequest{Description: "initial"})
	require.NoError(t, err)
	assert.Equal(t, "v1.0.0", first.Version)
	assert.Equal(t, "ver-1", first.ID)

	data, _ := projects.Load(ctx, "p")
	data.Name = "Renamed"
	require.NoError(t, projects.Save(ctx, "p", data))

	second, err := svc.Create(ctx, "p", versions.CreateRequest{Tag: "beta"})
	require.NoError(t, err)
	assert.Equal(t, "v1.0.1", second.Version)

	_, err = svc.Create(ctx, "p", versions.CreateRequest{Version: "bad"})
	assert.ErrorContains(t, err, "invalid version format")

	list, err := svc.List(ctx, "p")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "ver-2", list[0].ID, "newest first")

	require.NoError(t, svc.Publish(ctx, "p", first.ID))
	cur, err := svc.Current(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, first.ID, cur.ID)

	restored, err := svc.Rollback(ctx, "p", first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Demo", restored.Name)
	stored, _ := projects.Load(ctx, "p")
	assert.Equal(t, "Demo", stored.Name)

	_, err = svc.Rollback(ctx, "p", "missing")
	assert.ErrorIs(t, err, domain.ErrVersionNotFound)
	_, err = svc.Create(ctx, "ghost", versions.CreateRequest{})
	assert.ErrorIs(t, err, domain.ErrProjectNotFound)
	_, err = svc.Current(ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrVersionNotFound)
}

func TestScheduler_RunOnce(t *testing.T) {
	ctx := context.Background()
	svc, projects := newService(t)
	sched := versions.NewScheduler(svc, nil, nil)
	require.Error(t, sched.Schedule("not a cron"))
	require.NoError(t, sched.Schedule("@hourly"))

	created, err := sched.RunOnce(ctx)
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, "scheduled snapshot", created[0].Description)

	created, err = sched.RunOnce(ctx)
	require.NoError(t, err)
	assert.Empty(t, created, "unchanged projects are skipped")

	data, _ := projects.Load(ctx, "p")
	data.Pages[0].Blocks[0].Content["text"] = "edited"
	require.NoError(t, projects.Save(ctx, "p", data))

	created, err = sched.RunOnce(ctx)
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, "v1.0.1", created[0].Version)

	sched.Start(ctx)
	sched.Stop()
}
