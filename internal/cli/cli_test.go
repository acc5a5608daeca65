package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/pagecraft/internal/config"
	"github.com/aretw0/pagecraft/internal/logging"
	"github.com/aretw0/pagecraft/internal/testutils"
	"github.com/aretw0/pagecraft/pkg/domain"
	"github.com/aretw0/pagecraft/pkg/schema"
)

func TestNewLogger(t *testing.T) {
	cfg := config.DefaultConfig()

	logger, err := NewLogger(cfg, "", false)
	require.NoError(t, err)
	assert.False(t, logger.Enabled(context.Background(), slog.LevelDebug))

	logger, err = NewLogger(cfg, "debug", false)
	require.NoError(t, err)
	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))

	cfg.LogLevel = "error"
	logger, err = NewLogger(cfg, "", true)
	require.NoError(t, err)
	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))

	_, err = NewLogger(cfg, "loud", false)
	assert.Error(t, err)
}

func TestPrintSystemMessage(t *testing.T) {
	var buf bytes.Buffer
	PrintSystemMessage(&buf, "saved %d projects", 2)
	assert.Equal(t, ">>> saved 2 projects\n", buf.String())
}

func TestPrintProjects(t *testing.T) {
	var buf bytes.Buffer
	PrintProjects(&buf, nil)
	assert.Equal(t, "No projects.\n", buf.String())

	buf.Reset()
	PrintProjects(&buf, []domain.ProjectSummary{{ID: "p1", Name: "Landing", Pages: 2}})
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "NAME")
	assert.Contains(t, lines[1], "Landing")
	assert.Contains(t, lines[1], "-")
}

func TestPrintVersions(t *testing.T) {
	var buf bytes.Buffer
	PrintVersions(&buf, []domain.Version{{ID: "v1", Version: "1.0.0", IsPublished: true, Description: "launch"}})
	out := buf.String()
	assert.Contains(t, out, "1.0.0")
	assert.Contains(t, out, "yes")
	assert.Contains(t, out, "launch")
}

func TestPrintCatalog_NaturalOrder(t *testing.T) {
	var buf bytes.Buffer
	PrintCatalog(&buf, []domain.CatalogItem{
		{ID: "heading-h10", Category: "text"},
		{ID: "hero", Category: "sections"},
		{ID: "heading-h2", Category: "text"},
	})
	out := buf.String()
	assert.Less(t, strings.Index(out, "hero"), strings.Index(out, "heading-h2"))
	assert.Less(t, strings.Index(out, "heading-h2"), strings.Index(out, "heading-h10"))
}

func TestConfirm_Assume(t *testing.T) {
	ok, err := Confirm("Delete?", true)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestValidateFiles(t *testing.T) {
	dir := testutils.TempDir(t)
	good, err := schema.Export(testutils.SampleProject("Good"), time.Now())
	require.NoError(t, err)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "site2.json"), good, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nested", "site10.json"), good, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte(`{"pages":[{"blocks":[{}]}]}`), 0644))

	results, err := ValidateFiles([]string{filepath.Join(dir, "**", "*.json")})
	require.NoError(t, err)
	require.Len(t, results, 3)

	byName := map[string]FileResult{}
	for _, r := range results {
		byName[filepath.Base(r.Path)] = r
	}
	assert.True(t, byName["site2.json"].OK())
	assert.Equal(t, "Good", byName["site2.json"].Name)
	assert.Equal(t, 4, byName["site10.json"].Blocks)
	assert.False(t, byName["broken.json"].OK())
	assert.NotEmpty(t, byName["broken.json"].Problems)

	var buf bytes.Buffer
	assert.Equal(t, 1, PrintValidation(&buf, results))
	assert.Contains(t, buf.String(), "❌")

	_, err = ValidateFiles([]string{filepath.Join(dir, "*.yaml")})
	assert.Error(t, err)
}

func TestServer_ServeAndShutdown(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Store.Driver = config.DriverMemory
	cfg.Versions.Schedule = "@every 1h"
	cfg.Assets.Dir = t.TempDir()

	srv, err := NewServer(context.Background(), cfg, logging.NewNop(), prometheus.NewRegistry())
	require.NoError(t, err)
	require.NotNil(t, srv.Scheduler)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	base := "http://" + ln.Addr().String()
	resp, err := http.Post(base+"/projects", "application/json", strings.NewReader(`{"name":"Served"}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	resp.Body.Close()

	resp, err = http.Post(base+"/projects/"+created["id"]+"/blocks", "application/json", strings.NewReader(`{"catalogItem":"hero"}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err = http.Get(base + "/metrics")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(body), `pagecraft_commits_total{op="insert"} 1`)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop")
	}

	// Autosave may not have fired; Close flushes the session.
	data, err := srv.Backend.Projects.Load(context.Background(), created["id"])
	require.NoError(t, err)
	assert.Equal(t, 1, data.BlockCount())
}

func TestNewServer_BadSchedule(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Store.Driver = config.DriverMemory
	cfg.Versions.Schedule = "every tuesday"
	cfg.Assets.Dir = ""

	_, err := NewServer(context.Background(), cfg, logging.NewNop(), prometheus.NewRegistry())
	assert.Error(t, err)
}
