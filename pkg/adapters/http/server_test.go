package http_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/pagecraft"
	pchttp "github.com/aretw0/pagecraft/pkg/adapters/http"
	"github.com/aretw0/pagecraft/pkg/domain"
	"github.com/aretw0/pagecraft/pkg/editor"
	"github.com/aretw0/pagecraft/pkg/versions"
)

type fixture struct {
	ws      *pagecraft.Workspace
	streams *pchttp.StreamManager
	handler http.Handler
}

func setup(t *testing.T, opts ...pchttp.Option) *fixture {
	t.Helper()
	streams := pchttp.NewStreamManager(nil)
	n := 0
	ws := pagecraft.New(
		pagecraft.WithIDs(func() string { n++; return fmt.Sprintf("p%d", n) }),
		pagecraft.WithEditorOptions(editor.WithoutAutosave()),
		pagecraft.WithHooks(streams.Hooks()),
	)
	t.Cleanup(func() { _ = ws.Close(context.Background()) })
	opts = append([]pchttp.Option{pchttp.WithStreams(streams)}, opts...)
	return &fixture{ws: ws, streams: streams, handler: pchttp.NewHandler(ws, opts...)}
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (f *fixture) project(t *testing.T, name string) string {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/projects", map[string]string{"name": name})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody[map[string]string](t, rec)["id"]
}

func TestHealthAndInfo(t *testing.T) {
	f := setup(t)

	rec := f.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/info", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, pagecraft.Version, decodeBody[map[string]string](t, rec)["version"])
}

func TestMetricsMount(t *testing.T) {
	f := setup(t)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/metrics", nil).Code)

	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { _, _ = io.WriteString(w, "ok") })
	f = setup(t, pchttp.WithMetrics(metrics))
	rec := f.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestProjectLifecycle(t *testing.T) {
	f := setup(t)
	id := f.project(t, "Landing")
	base := "/projects/" + id

	rec := f.do(t, http.MethodGet, "/projects", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeBody[[]domain.ProjectSummary](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, "Landing", list[0].Name)

	rec = f.do(t, http.MethodPost, base+"/blocks", map[string]any{"catalogItem": "hero"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	blockID := decodeBody[map[string]any](t, rec)["id"]
	path := fmt.Sprintf("%s/blocks/%v", base, blockID)

	rec = f.do(t, http.MethodPatch, path, map[string]any{"content": map[string]any{"title": "Hello"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated struct {
		Changed bool         `json:"changed"`
		Block   domain.Block `json:"block"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.True(t, updated.Changed)
	assert.Equal(t, "Hello", updated.Block.Content["title"])

	rec = f.do(t, http.MethodPost, base+"/undo", nil)
	assert.JSONEq(t, `{"changed":true}`, rec.Body.String())
	rec = f.do(t, http.MethodGet, path, nil)
	assert.Equal(t, "Welcome", decodeBody[domain.Block](t, rec).Content["title"])
	f.do(t, http.MethodPost, base+"/redo", nil)

	rec = f.do(t, http.MethodGet, base+"/state", nil)
	state := decodeBody[editor.State](t, rec)
	require.Len(t, state.Blocks, 1)
	assert.Equal(t, "Hello", state.Blocks[0].Content["title"])
	assert.True(t, state.CanUndo)

	rec = f.do(t, http.MethodPost, base+"/save", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decodeBody[map[string]any](t, rec)["hasUnsavedChanges"].(bool))

	rec = f.do(t, http.MethodGet, base+"/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), id+".json")
	assert.Contains(t, rec.Body.String(), `"Hello"`)

	assert.Equal(t, http.StatusNoContent, f.do(t, http.MethodDelete, base, nil).Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, base, nil).Code)
}

func TestCreateProject_RequiresName(t *testing.T) {
	f := setup(t)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/projects", map[string]string{}).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/projects", "{").Code)
}

func TestBlockErrors(t *testing.T) {
	f := setup(t)
	base := "/projects/" + f.project(t, "Locks")

	rec := f.do(t, http.MethodPost, base+"/blocks", map[string]any{"block": domain.NewBlock(domain.BlockText)})
	require.Equal(t, http.StatusCreated, rec.Code)
	path := fmt.Sprintf("%s/blocks/%v", base, decodeBody[map[string]any](t, rec)["id"])

	rec = f.do(t, http.MethodPatch, path, map[string]any{"locked": true})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPatch, path, map[string]any{"styles": map[string]any{"color": "red"}})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(t, http.MethodPost, path+"/move", map[string]any{"direction": "down"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(t, http.MethodPatch, path, map[string]any{"locked": false, "styles": map[string]any{"color": "red"}})
	assert.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, base+"/blocks/99", nil).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, base+"/blocks/abc", nil).Code)
	assert.JSONEq(t, `{"changed":false}`, f.do(t, http.MethodDelete, base+"/blocks/99", nil).Body.String())

	rec = f.do(t, http.MethodPost, base+"/blocks", map[string]any{"block": domain.NewBlock(domain.BlockText), "parentId": 42})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodPost, base+"/blocks", map[string]any{"catalogItem": "nope"}).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, base+"/blocks", map[string]any{}).Code)
}

func TestImport(t *testing.T) {
	f := setup(t)
	id := f.project(t, "Source")
	export := f.do(t, http.MethodGet, "/projects/"+id+"/export", nil).Body.String()

	rec := f.do(t, http.MethodPost, "/projects/import", export)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotEqual(t, id, decodeBody[map[string]string](t, rec)["id"])

	rec = f.do(t, http.MethodPut, "/projects/"+id+"/import", `{"pages":[{"id":"home","blocks":"nope"}]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decodeBody[map[string]any](t, rec)
	assert.NotEmpty(t, body["error"])
	assert.NotEmpty(t, body["problems"])
}

func TestPages(t *testing.T) {
	f := setup(t)
	base := "/projects/" + f.project(t, "Site")

	rec := f.do(t, http.MethodDelete, base+"/pages/home", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(t, http.MethodPost, base+"/pages", map[string]string{"name": "About Us"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	page := decodeBody[domain.Page](t, rec)
	assert.Equal(t, "/about-us", page.Path)

	assert.Equal(t, http.StatusUnprocessableEntity, f.do(t, http.MethodPost, base+"/pages", map[string]string{"name": " "}).Code)

	rec = f.do(t, http.MethodPost, base+"/pages/"+page.ID+"/select", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, page.ID, decodeBody[map[string]any](t, rec)["current"])

	rec = f.do(t, http.MethodPatch, base+"/pages/"+page.ID, map[string]any{"meta": map[string]string{"title": "About"}})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, base+"/pages/"+page.ID+"/home", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodPost, base+"/pages/missing/select", nil).Code)
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodDelete, base+"/pages/home", nil).Code)
}

func TestVersions(t *testing.T) {
	f := setup(t)
	id := f.project(t, "Versioned")
	base := "/projects/" + id

	rec := f.do(t, http.MethodPost, base+"/versions", versions.CreateRequest{Description: "first"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	v := decodeBody[domain.Version](t, rec)
	assert.Equal(t, versions.FirstTag, v.Version)
	assert.Nil(t, v.Data)

	f.do(t, http.MethodPost, base+"/blocks", map[string]any{"catalogItem": "hero"})

	rec = f.do(t, http.MethodGet, base+"/versions", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]domain.Version](t, rec), 1)

	rec = f.do(t, http.MethodGet, base+"/versions/"+v.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotNil(t, decodeBody[domain.Version](t, rec).Data)

	assert.Equal(t, http.StatusNoContent, f.do(t, http.MethodPost, base+"/versions/"+v.ID+"/publish", nil).Code)

	rec = f.do(t, http.MethodPost, base+"/versions/"+v.ID+"/rollback", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	state := decodeBody[editor.State](t, f.do(t, http.MethodGet, base+"/state", nil))
	assert.Empty(t, state.Blocks)

	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodPost, base+"/versions/nope/rollback", nil).Code)
}

func TestCatalogAndAssets(t *testing.T) {
	f := setup(t)

	rec := f.do(t, http.MethodGet, "/catalog", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decodeBody[[]domain.CatalogItem](t, rec))
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/catalog/nope", nil).Code)

	rec = f.do(t, http.MethodPost, "/assets?name=Logo.svg", "<svg/>")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	key := decodeBody[map[string]string](t, rec)["key"]
	assert.True(t, strings.HasSuffix(key, "-logo.svg"))

	rec = f.do(t, http.MethodGet, "/assets/"+key, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<svg/>", rec.Body.String())
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))

	assert.Equal(t, http.StatusNoContent, f.do(t, http.MethodDelete, "/assets/"+key, nil).Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/assets/"+key, nil).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/assets", "x").Code)
}

func TestSubscribeEvents(t *testing.T) {
	f := setup(t)
	id := f.project(t, "Live")

	srv := httptest.NewServer(f.handler)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/projects/"+id+"/events?types=commit", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: ping\n", line)

	require.Eventually(t, func() bool { return f.streams.Subscribers(id) == 1 }, time.Second, 10*time.Millisecond)

	rec := f.do(t, http.MethodPost, "/projects/"+id+"/blocks", map[string]any{"catalogItem": "hero"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var data string
	for {
		line, err = reader.ReadString('\n')
		require.NoError(t, err)
		if strings.HasPrefix(line, "data: {") {
			data = strings.TrimPrefix(strings.TrimSpace(line), "data: ")
			break
		}
	}
	var ev pchttp.Event
	require.NoError(t, json.Unmarshal([]byte(data), &ev))
	assert.Equal(t, domain.EventCommit, ev.Type)
	assert.Equal(t, id, ev.ProjectID)
	assert.Equal(t, "insert", ev.Op)
}

func TestSocket(t *testing.T) {
	f := setup(t)
	id := f.project(t, "Socket")

	srv := httptest.NewServer(f.handler)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/projects/" + id + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	require.NoError(t, conn.WriteJSON(map[string]string{"op": "state"}))
	var rep struct {
		Type   string       `json:"type"`
		Op     string       `json:"op"`
		Result editor.State `json:"result"`
		Error  string       `json:"error"`
	}
	require.NoError(t, conn.ReadJSON(&rep))
	assert.Equal(t, "reply", rep.Type)
	assert.Equal(t, id, rep.Result.ProjectID)
	assert.Empty(t, rep.Error)

	require.Eventually(t, func() bool { return f.streams.Subscribers(id) == 1 }, time.Second, 10*time.Millisecond)
	f.do(t, http.MethodPost, "/projects/"+id+"/blocks", map[string]any{"catalogItem": "hero"})

	var ev pchttp.Event
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, "insert", ev.Op)

	require.NoError(t, conn.WriteJSON(map[string]any{"op": "undo"}))
	undo := readReply(t, conn)
	assert.Equal(t, "undo", undo["op"])
	assert.Equal(t, map[string]any{"changed": true}, undo["result"])

	require.NoError(t, conn.WriteJSON(map[string]any{"op": "select_page", "args": map[string]any{"pageId": "nope"}}))
	assert.NotEmpty(t, readReply(t, conn)["error"])

	require.NoError(t, conn.WriteJSON(map[string]string{"op": "bogus"}))
	assert.Equal(t, "unknown op", readReply(t, conn)["error"])
}

// readReply skips pushed events until the next command reply.
func readReply(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	for {
		var msg map[string]any
		require.NoError(t, conn.ReadJSON(&msg))
		if msg["type"] == "reply" {
			return msg
		}
	}
}

func TestSocket_RejectsOrigin(t *testing.T) {
	f := setup(t, pchttp.WithAllowedOrigins("https://editor.example"))
	id := f.project(t, "Origins")

	srv := httptest.NewServer(f.handler)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/projects/" + id + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"https://evil.example"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestStreamManager(t *testing.T) {
	sm := pchttp.NewStreamManager(nil)
	ch, cancel := sm.Subscribe("p")
	other, cancelOther := sm.Subscribe("q")
	defer cancelOther()

	sm.Broadcast("p", []byte("hi"))
	assert.Equal(t, []byte("hi"), <-ch)
	assert.Empty(t, other)

	cancel()
	cancel()
	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, sm.Subscribers("p"))

	for i := 0; i < 40; i++ {
		sm.Broadcast("q", []byte("x"))
	}
	assert.Equal(t, 16, len(other))
}
