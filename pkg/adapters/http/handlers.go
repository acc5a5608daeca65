package http

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/aretw0/pagecraft/pkg/canvas"
	"github.com/aretw0/pagecraft/pkg/document"
	"github.com/aretw0/pagecraft/pkg/domain"
	"github.com/aretw0/pagecraft/pkg/editor"
	"github.com/aretw0/pagecraft/pkg/layout"
	"github.com/aretw0/pagecraft/pkg/style"
	"github.com/aretw0/pagecraft/pkg/versions"
)

// maxUpload bounds asset and import bodies.
const maxUpload = 32 << 20

type mutation struct {
	Changed bool             `json:"changed"`
	ID      *domain.BlockID  `json:"id,omitempty"`
	IDs     []domain.BlockID `json:"ids,omitempty"`
}

// --- projects ---

func (s *Server) ListProjects(w http.ResponseWriter, r *http.Request) {
	list, err := s.ws.ListProjects(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if list == nil {
		list = []domain.ProjectSummary{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		badRequest(w, "name is required")
		return
	}
	id, err := s.ws.CreateProject(r.Context(), req.Name)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) GetProject(w http.ResponseWriter, r *http.Request) {
	data, err := s.ws.Project(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

func (s *Server) DeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := s.ws.DeleteProject(r.Context(), chi.URLParam(r, "projectID")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) ExportProject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "projectID")
	raw, err := s.ws.Export(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", id+".json"))
	_, _ = w.Write(raw)
}

// ImportProject stores an exported project. Without a project id in the path
// a new project is created.
func (s *Server) ImportProject(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUpload))
	if err != nil {
		badRequest(w, "read body: "+err.Error())
		return
	}
	id, err := s.ws.Import(r.Context(), chi.URLParam(r, "projectID"), raw)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

// --- session ---

func (s *Server) GetState(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.State())
}

func (s *Server) SaveProject(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := sess.Save(r.Context()); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.SaveStatus())
}

func (s *Server) Undo(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, mutation{Changed: sess.Undo()})
}

func (s *Server) Redo(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, mutation{Changed: sess.Redo()})
}

func (s *Server) SetBreakpoint(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req struct {
		Breakpoint style.Breakpoint `json:"breakpoint"`
		Width      *int             `json:"width,omitempty"`
	}
	if !decode(w, r, &req) {
		return
	}
	bp := req.Breakpoint
	if req.Width != nil {
		bp = style.Detect(*req.Width)
	}
	if bp == "" {
		badRequest(w, "breakpoint or width is required")
		return
	}
	sess.SetBreakpoint(bp)
	writeJSON(w, http.StatusOK, map[string]style.Breakpoint{"breakpoint": sess.Breakpoint()})
}

func (s *Server) SetSelection(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req struct {
		IDs []domain.BlockID `json:"ids"`
		All bool             `json:"all,omitempty"`
	}
	if !decode(w, r, &req) {
		return
	}
	sess.ClearSelection()
	if req.All {
		sess.SelectAll()
	}
	for _, id := range req.IDs {
		sess.Select(id, true)
	}
	primary, ids := sess.Selection()
	writeJSON(w, http.StatusOK, map[string]any{"selectedBlockId": primary, "selectedBlockIds": ids})
}

func (s *Server) Copy(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"copied": sess.Copy()})
}

func (s *Server) Paste(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	ids, err := sess.Paste()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mutation{Changed: len(ids) > 0, IDs: ids})
}

type layoutRequest struct {
	Rects []layout.Rect `json:"rects"`
	Edge  layout.Edge   `json:"edge,omitempty"`
	Axis  layout.Axis   `json:"axis,omitempty"`
}

func (s *Server) Align(w http.ResponseWriter, r *http.Request) {
	s.arrange(w, r, func(sess *editor.Session, req layoutRequest) (bool, error) {
		return sess.Align(req.Rects, req.Edge)
	})
}

func (s *Server) Distribute(w http.ResponseWriter, r *http.Request) {
	s.arrange(w, r, func(sess *editor.Session, req layoutRequest) (bool, error) {
		return sess.Distribute(req.Rects, req.Axis)
	})
}

func (s *Server) arrange(w http.ResponseWriter, r *http.Request, fn func(*editor.Session, layoutRequest) (bool, error)) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req layoutRequest
	if !decode(w, r, &req) {
		return
	}
	changed, err := fn(sess, req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mutation{Changed: changed})
}

// --- blocks ---

func blockID(w http.ResponseWriter, r *http.Request) (domain.BlockID, bool) {
	n, err := strconv.Atoi(chi.URLParam(r, "blockID"))
	if err != nil || n <= 0 {
		badRequest(w, "invalid block id")
		return 0, false
	}
	return domain.BlockID(n), true
}

func (s *Server) GetBlock(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	id, ok := blockID(w, r)
	if !ok {
		return
	}
	b, err := sess.Block(id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

type insertRequest struct {
	// CatalogItem instantiates a palette entry instead of Block.
	CatalogItem string          `json:"catalogItem,omitempty"`
	Block       *domain.Block   `json:"block,omitempty"`
	ParentID    *domain.BlockID `json:"parentId,omitempty"`
	Before      *domain.BlockID `json:"before,omitempty"`
	Index       *int            `json:"index,omitempty"`
}

func (s *Server) InsertBlock(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req insertRequest
	if !decode(w, r, &req) {
		return
	}

	var id domain.BlockID
	var err error
	switch {
	case req.CatalogItem != "":
		target := canvas.DropTarget{Parent: req.ParentID, Before: req.Before}
		id, err = sess.AddFromCatalog(r.Context(), s.ws.Catalog(), req.CatalogItem, target)
	case req.Block != nil:
		index := len(sess.Blocks())
		if req.Index != nil {
			index = *req.Index
		}
		id, err = sess.Insert(*req.Block, req.ParentID, index)
	default:
		badRequest(w, "block or catalogItem is required")
		return
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, mutation{Changed: true, ID: &id})
}

type updateRequest struct {
	Name             *string         `json:"name,omitempty"`
	Visible          *bool           `json:"visible,omitempty"`
	Locked           *bool           `json:"locked,omitempty"`
	Content          map[string]any  `json:"content,omitempty"`
	Styles           domain.StyleMap `json:"styles,omitempty"`
	ResponsiveStyles domain.StyleMap `json:"responsiveStyles,omitempty"`
}

// UpdateBlock applies a partial update. Locking is applied last so a request
// can edit and lock a block at once, and unlocking first so it can unlock and edit.
func (s *Server) UpdateBlock(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	id, ok := blockID(w, r)
	if !ok {
		return
	}
	var req updateRequest
	if !decode(w, r, &req) {
		return
	}
	if _, err := sess.Block(id); err != nil {
		s.fail(w, r, err)
		return
	}

	changed := false
	if req.Locked != nil && !*req.Locked {
		changed = sess.SetLocked(id, false) || changed
	}
	if req.Name != nil {
		changed = sess.Rename(id, *req.Name) || changed
	}
	if req.Visible != nil {
		changed = sess.SetVisible(id, *req.Visible) || changed
	}
	steps := []func() (bool, error){
		func() (bool, error) { return sess.UpdateContent(id, req.Content) },
		func() (bool, error) { return sess.UpdateStyles(id, req.Styles) },
		func() (bool, error) { return sess.UpdateResponsiveStyles(id, req.ResponsiveStyles) },
	}
	patches := []bool{req.Content != nil, req.Styles != nil, req.ResponsiveStyles != nil}
	for i, step := range steps {
		if !patches[i] {
			continue
		}
		ok, err := step()
		if err != nil {
			s.fail(w, r, err)
			return
		}
		changed = ok || changed
	}
	if req.Locked != nil && *req.Locked {
		changed = sess.SetLocked(id, true) || changed
	}

	b, err := sess.Block(id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"changed": changed, "block": b})
}

func (s *Server) DeleteBlock(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	id, ok := blockID(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, mutation{Changed: sess.Delete(id)})
}

type moveRequest struct {
	Direction document.Direction `json:"direction,omitempty"`
	Index     *int               `json:"index,omitempty"`
	ParentID  *domain.BlockID    `json:"parentId,omitempty"`
	Reparent  bool               `json:"reparent,omitempty"`
	// Layer is one of front, back, forward, backward.
	Layer string `json:"layer,omitempty"`
}

func (s *Server) MoveBlock(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	id, ok := blockID(w, r)
	if !ok {
		return
	}
	var req moveRequest
	if !decode(w, r, &req) {
		return
	}

	var changed bool
	var err error
	switch {
	case req.Reparent:
		index := 0
		if req.Index != nil {
			index = *req.Index
		}
		changed, err = sess.Reparent(id, req.ParentID, index)
	case req.Layer != "":
		changed, err = layer(sess, id, req.Layer)
	case req.Direction == document.Up || req.Direction == document.Down:
		changed, err = sess.Move(id, req.Direction)
	case req.Index != nil:
		changed, err = sess.MoveTo(id, *req.Index)
	default:
		badRequest(w, "direction, index, layer or reparent is required")
		return
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mutation{Changed: changed})
}

func layer(sess *editor.Session, id domain.BlockID, op string) (bool, error) {
	switch op {
	case "front":
		return sess.BringToFront(id)
	case "back":
		return sess.SendToBack(id)
	case "forward":
		return sess.BringForward(id)
	case "backward":
		return sess.SendBackward(id)
	}
	return false, fmt.Errorf("layer %q: %w", op, domain.ErrNotFound)
}

func (s *Server) DuplicateBlock(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	id, ok := blockID(w, r)
	if !ok {
		return
	}
	nid, err := sess.Duplicate(id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if nid == 0 {
		writeJSON(w, http.StatusOK, mutation{})
		return
	}
	writeJSON(w, http.StatusCreated, mutation{Changed: true, ID: &nid})
}

func (s *Server) EffectiveStyles(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	id, ok := blockID(w, r)
	if !ok {
		return
	}
	styles, err := sess.EffectiveStyles(id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"breakpoint": sess.Breakpoint(),
		"styles":     styles,
	})
}

// --- pages ---

func (s *Server) ListPages(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"current": sess.CurrentPage(),
		"pages":   sess.Pages(),
	})
}

func (s *Server) AddPage(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req struct {
		Name string `json:"name"`
		Path string `json:"path,omitempty"`
	}
	if !decode(w, r, &req) {
		return
	}
	p, err := sess.AddPage(req.Name, req.Path)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) UpdatePage(w http.ResponseWriter, r *http.Request) {
	s.page(w, r, func(sess *editor.Session, id string) error {
		var u editor.PageUpdate
		if !decode(w, r, &u) {
			return errHandled
		}
		return sess.UpdatePage(id, u)
	})
}

func (s *Server) DeletePage(w http.ResponseWriter, r *http.Request) {
	s.page(w, r, func(sess *editor.Session, id string) error { return sess.DeletePage(id) })
}

func (s *Server) SelectPage(w http.ResponseWriter, r *http.Request) {
	s.page(w, r, func(sess *editor.Session, id string) error { return sess.SelectPage(id) })
}

func (s *Server) SetHomePage(w http.ResponseWriter, r *http.Request) {
	s.page(w, r, func(sess *editor.Session, id string) error { return sess.SetHomePage(id) })
}

// errHandled signals that a response has already been written.
var errHandled = fmt.Errorf("handled")

func (s *Server) page(w http.ResponseWriter, r *http.Request, fn func(*editor.Session, string) error) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	switch err := fn(sess, chi.URLParam(r, "pageID")); err {
	case nil:
		writeJSON(w, http.StatusOK, map[string]any{
			"current": sess.CurrentPage(),
			"pages":   sess.Pages(),
		})
	case errHandled:
	default:
		s.fail(w, r, err)
	}
}

// --- versions ---

func (s *Server) ListVersions(w http.ResponseWriter, r *http.Request) {
	list, err := s.ws.Versions().List(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	// Listings omit snapshot payloads.
	out := make([]domain.Version, len(list))
	for i, v := range list {
		v.Data = nil
		out[i] = v
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) CreateVersion(w http.ResponseWriter, r *http.Request) {
	var req versions.CreateRequest
	if !decode(w, r, &req) {
		return
	}
	v, err := s.ws.CreateVersion(r.Context(), chi.URLParam(r, "projectID"), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	v.Data = nil
	writeJSON(w, http.StatusCreated, v)
}

func (s *Server) GetVersion(w http.ResponseWriter, r *http.Request) {
	v, err := s.ws.Versions().Load(r.Context(), chi.URLParam(r, "projectID"), chi.URLParam(r, "versionID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) Rollback(w http.ResponseWriter, r *http.Request) {
	data, err := s.ws.Rollback(r.Context(), chi.URLParam(r, "projectID"), chi.URLParam(r, "versionID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

func (s *Server) Publish(w http.ResponseWriter, r *http.Request) {
	if err := s.ws.Versions().Publish(r.Context(), chi.URLParam(r, "projectID"), chi.URLParam(r, "versionID")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- catalog ---

func (s *Server) ListCatalog(w http.ResponseWriter, r *http.Request) {
	items, err := s.ws.Catalog().Items(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) GetCatalogItem(w http.ResponseWriter, r *http.Request) {
	item, err := s.ws.Catalog().Item(r.Context(), chi.URLParam(r, "itemID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// --- assets ---

// UploadAsset accepts a multipart "file" field, or a raw body named by the
// name query parameter.
func (s *Server) UploadAsset(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)

	var name string
	var body io.Reader
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		f, hdr, err := r.FormFile("file")
		if err != nil {
			badRequest(w, "file: "+err.Error())
			return
		}
		defer f.Close()
		name, body = hdr.Filename, f
	} else {
		name, body = r.URL.Query().Get("name"), r.Body
	}
	if name == "" {
		badRequest(w, "asset name is required")
		return
	}

	key, err := s.ws.Assets().Put(r.Context(), name, body)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"key": key, "url": "/assets/" + key})
}

func (s *Server) GetAsset(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	rc, err := s.ws.Assets().Get(r.Context(), key)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	defer rc.Close()
	if ct := mime.TypeByExtension(path.Ext(key)); ct != "" {
		w.Header().Set("Content-Type", ct)
	} else {
		w.Header().Set("Content-Type", "application/octet-stream")
	}
	_, _ = io.Copy(w, rc)
}

func (s *Server) DeleteAsset(w http.ResponseWriter, r *http.Request) {
	if err := s.ws.Assets().Delete(r.Context(), chi.URLParam(r, "key")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
