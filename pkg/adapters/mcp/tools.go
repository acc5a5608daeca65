package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/aretw0/pagecraft/pkg/canvas"
	"github.com/aretw0/pagecraft/pkg/document"
	"github.com/aretw0/pagecraft/pkg/domain"
	"github.com/aretw0/pagecraft/pkg/editor"
	"github.com/aretw0/pagecraft/pkg/versions"
)

// Mutation is the result of an editing tool.
type Mutation struct {
	Changed bool             `json:"changed"`
	ID      domain.BlockID   `json:"id,omitempty"`
	State   *editor.State    `json:"state,omitempty"`
	Blocks  []domain.BlockID `json:"blocks,omitempty"`
}

func projectArg() mcp.ToolOption {
	return mcp.WithString("project_id", mcp.Required(), mcp.Description("Project id"))
}

func blockArg() mcp.ToolOption {
	return mcp.WithNumber("block_id", mcp.Required(), mcp.Description("Block id within the current page"))
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_projects",
		mcp.WithDescription("List stored projects sorted by name."),
	), s.handleListProjects)

	s.mcpServer.AddTool(mcp.NewTool("create_project",
		mcp.WithDescription("Create an empty project with a home page and return its id."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Project name")),
	), s.handleCreateProject)

	s.mcpServer.AddTool(mcp.NewTool("get_state",
		mcp.WithDescription("Open a project and return the editor state of its current page."),
		projectArg(),
	), s.handleGetState)

	s.mcpServer.AddTool(mcp.NewTool("list_catalog",
		mcp.WithDescription("List the block palette."),
	), s.handleListCatalog)

	s.mcpServer.AddTool(mcp.NewTool("insert_block",
		mcp.WithDescription("Insert a block from the catalog, or a raw block, into the current page."),
		projectArg(),
		mcp.WithString("catalog_item", mcp.Description("Catalog item id to instantiate")),
		mcp.WithString("type", mcp.Description("Block type when no catalog item is given")),
		mcp.WithObject("content", mcp.Description("Initial content for a raw block")),
		mcp.WithObject("styles", mcp.Description("Initial styles for a raw block")),
		mcp.WithNumber("parent_id", mcp.Description("Container block id; omit for top level")),
		mcp.WithNumber("before", mcp.Description("Insert before this sibling; omit to append")),
	), s.handleInsertBlock)

	s.mcpServer.AddTool(mcp.NewTool("update_block",
		mcp.WithDescription("Merge content or styles into a block. Null values remove keys."),
		projectArg(),
		blockArg(),
		mcp.WithObject("content", mcp.Description("Content patch")),
		mcp.WithObject("styles", mcp.Description("Base style patch")),
		mcp.WithObject("responsive_styles", mcp.Description("Style patch for the current breakpoint")),
		mcp.WithString("name", mcp.Description("New display name")),
	), s.handleUpdateBlock)

	s.mcpServer.AddTool(mcp.NewTool("move_block",
		mcp.WithDescription("Move a block one step, to an index, or under another parent."),
		projectArg(),
		blockArg(),
		mcp.WithString("direction", mcp.Description("up or down"), mcp.Enum("up", "down")),
		mcp.WithNumber("index", mcp.Description("Target index among siblings")),
		mcp.WithNumber("parent_id", mcp.Description("New parent when reparenting")),
		mcp.WithBoolean("reparent", mcp.Description("Move under parent_id (top level when omitted)")),
	), s.handleMoveBlock)

	s.mcpServer.AddTool(mcp.NewTool("delete_block",
		mcp.WithDescription("Delete a block and its descendants."),
		projectArg(),
		blockArg(),
	), s.handleDeleteBlock)

	s.mcpServer.AddTool(mcp.NewTool("duplicate_block",
		mcp.WithDescription("Clone a block and its subtree right after it."),
		projectArg(),
		blockArg(),
	), s.handleDuplicateBlock)

	s.mcpServer.AddTool(mcp.NewTool("undo",
		mcp.WithDescription("Undo the last edit of the current page."),
		projectArg(),
	), s.history(func(sess *editor.Session) bool { return sess.Undo() }))

	s.mcpServer.AddTool(mcp.NewTool("redo",
		mcp.WithDescription("Redo the last undone edit of the current page."),
		projectArg(),
	), s.history(func(sess *editor.Session) bool { return sess.Redo() }))

	s.mcpServer.AddTool(mcp.NewTool("add_page",
		mcp.WithDescription("Append a page. The path defaults to a slug of the name."),
		projectArg(),
		mcp.WithString("name", mcp.Required(), mcp.Description("Page name")),
		mcp.WithString("path", mcp.Description("URL path")),
	), s.handleAddPage)

	s.mcpServer.AddTool(mcp.NewTool("select_page",
		mcp.WithDescription("Switch editing to another page."),
		projectArg(),
		mcp.WithString("page_id", mcp.Required(), mcp.Description("Page id")),
	), s.handleSelectPage)

	s.mcpServer.AddTool(mcp.NewTool("save_project",
		mcp.WithDescription("Persist the project now."),
		projectArg(),
	), s.handleSave)

	s.mcpServer.AddTool(mcp.NewTool("export_project",
		mcp.WithDescription("Export the project as a JSON document."),
		projectArg(),
	), s.handleExport)

	s.mcpServer.AddTool(mcp.NewTool("list_versions",
		mcp.WithDescription("List project versions, newest first."),
		projectArg(),
	), s.handleListVersions)

	s.mcpServer.AddTool(mcp.NewTool("create_version",
		mcp.WithDescription("Snapshot the project. The version number defaults to the next patch."),
		projectArg(),
		mcp.WithString("version", mcp.Description("Version number such as 1.2.0")),
		mcp.WithString("tag", mcp.Description("Optional label")),
		mcp.WithString("description", mcp.Description("What changed")),
	), s.handleCreateVersion)

	s.mcpServer.AddTool(mcp.NewTool("rollback_version",
		mcp.WithDescription("Restore the project to a version."),
		projectArg(),
		mcp.WithString("version_id", mcp.Required(), mcp.Description("Version id")),
	), s.handleRollback)

	s.mcpServer.AddTool(mcp.NewTool("publish_version",
		mcp.WithDescription("Mark a version as published."),
		projectArg(),
		mcp.WithString("version_id", mcp.Required(), mcp.Description("Version id")),
	), s.handlePublish)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(raw)), nil
}

func failed(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}

func (s *Server) open(ctx context.Context, req mcp.CallToolRequest) (*editor.Session, error) {
	id, err := req.RequireString("project_id")
	if err != nil {
		return nil, err
	}
	return s.ws.Open(ctx, id)
}

func (s *Server) result(sess *editor.Session, changed bool) (*mcp.CallToolResult, error) {
	st := sess.State()
	return jsonResult(Mutation{Changed: changed, State: &st})
}

func (s *Server) handleListProjects(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, err := s.ws.ListProjects(ctx)
	if err != nil {
		return failed(err)
	}
	return jsonResult(list)
}

func (s *Server) handleCreateProject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return failed(err)
	}
	id, err := s.ws.CreateProject(ctx, name)
	if err != nil {
		return failed(err)
	}
	return jsonResult(map[string]string{"id": id})
}

func (s *Server) handleGetState(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := s.open(ctx, req)
	if err != nil {
		return failed(err)
	}
	return jsonResult(sess.State())
}

func (s *Server) handleListCatalog(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, err := s.ws.Catalog().Items(ctx)
	if err != nil {
		return failed(err)
	}
	return jsonResult(items)
}

func (s *Server) handleInsertBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := s.open(ctx, req)
	if err != nil {
		return failed(err)
	}
	var args struct {
		CatalogItem string          `json:"catalog_item"`
		Type        string          `json:"type"`
		Content     map[string]any  `json:"content"`
		Styles      domain.StyleMap `json:"styles"`
		ParentID    *domain.BlockID `json:"parent_id"`
		Before      *domain.BlockID `json:"before"`
	}
	if err := req.BindArguments(&args); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
	}

	target := canvas.DropTarget{Parent: args.ParentID, Before: args.Before}
	var id domain.BlockID
	switch {
	case args.CatalogItem != "":
		id, err = sess.AddFromCatalog(ctx, s.ws.Catalog(), args.CatalogItem, target)
	case args.Type != "":
		item := domain.CatalogItem{ID: args.Type, Type: domain.BlockType(args.Type), DefaultContent: args.Content, DefaultStyles: args.Styles}
		id, err = sess.AddBlock(item, target)
	default:
		return mcp.NewToolResultError("catalog_item or type is required"), nil
	}
	if err != nil {
		return failed(err)
	}
	st := sess.State()
	return jsonResult(Mutation{Changed: true, ID: id, State: &st})
}

func (s *Server) handleUpdateBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := s.open(ctx, req)
	if err != nil {
		return failed(err)
	}
	var args struct {
		BlockID          domain.BlockID  `json:"block_id"`
		Content          map[string]any  `json:"content"`
		Styles           domain.StyleMap `json:"styles"`
		ResponsiveStyles domain.StyleMap `json:"responsive_styles"`
		Name             *string         `json:"name"`
	}
	if err := req.BindArguments(&args); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
	}
	if _, err := sess.Block(args.BlockID); err != nil {
		return failed(err)
	}

	changed := false
	if args.Name != nil {
		changed = sess.Rename(args.BlockID, *args.Name)
	}
	if args.Content != nil {
		ok, err := sess.UpdateContent(args.BlockID, args.Content)
		if err != nil {
			return failed(err)
		}
		changed = changed || ok
	}
	if args.Styles != nil {
		ok, err := sess.UpdateStyles(args.BlockID, args.Styles)
		if err != nil {
			return failed(err)
		}
		changed = changed || ok
	}
	if args.ResponsiveStyles != nil {
		ok, err := sess.UpdateResponsiveStyles(args.BlockID, args.ResponsiveStyles)
		if err != nil {
			return failed(err)
		}
		changed = changed || ok
	}
	return s.result(sess, changed)
}

func (s *Server) handleMoveBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := s.open(ctx, req)
	if err != nil {
		return failed(err)
	}
	var args struct {
		BlockID   domain.BlockID     `json:"block_id"`
		Direction document.Direction `json:"direction"`
		Index     *int               `json:"index"`
		ParentID  *domain.BlockID    `json:"parent_id"`
		Reparent  bool               `json:"reparent"`
	}
	if err := req.BindArguments(&args); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
	}

	var changed bool
	switch {
	case args.Reparent:
		index := 0
		if args.Index != nil {
			index = *args.Index
		}
		changed, err = sess.Reparent(args.BlockID, args.ParentID, index)
	case args.Direction != "":
		changed, err = sess.Move(args.BlockID, args.Direction)
	case args.Index != nil:
		changed, err = sess.MoveTo(args.BlockID, *args.Index)
	default:
		return mcp.NewToolResultError("direction, index or reparent is required"), nil
	}
	if err != nil {
		return failed(err)
	}
	return s.result(sess, changed)
}

func (s *Server) handleDeleteBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := s.open(ctx, req)
	if err != nil {
		return failed(err)
	}
	id := domain.BlockID(req.GetInt("block_id", 0))
	return s.result(sess, sess.Delete(id))
}

func (s *Server) handleDuplicateBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := s.open(ctx, req)
	if err != nil {
		return failed(err)
	}
	nid, err := sess.Duplicate(domain.BlockID(req.GetInt("block_id", 0)))
	if err != nil {
		return failed(err)
	}
	st := sess.State()
	return jsonResult(Mutation{Changed: nid != 0, ID: nid, State: &st})
}

func (s *Server) history(step func(*editor.Session) bool) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sess, err := s.open(ctx, req)
		if err != nil {
			return failed(err)
		}
		return s.result(sess, step(sess))
	}
}

func (s *Server) handleAddPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := s.open(ctx, req)
	if err != nil {
		return failed(err)
	}
	page, err := sess.AddPage(req.GetString("name", ""), req.GetString("path", ""))
	if err != nil {
		return failed(err)
	}
	return jsonResult(page)
}

func (s *Server) handleSelectPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := s.open(ctx, req)
	if err != nil {
		return failed(err)
	}
	pageID, err := req.RequireString("page_id")
	if err != nil {
		return failed(err)
	}
	if err := sess.SelectPage(pageID); err != nil {
		return failed(err)
	}
	return s.result(sess, true)
}

func (s *Server) handleSave(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := s.open(ctx, req)
	if err != nil {
		return failed(err)
	}
	if err := sess.Save(ctx); err != nil {
		return failed(err)
	}
	return jsonResult(sess.SaveStatus())
}

func (s *Server) handleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("project_id")
	if err != nil {
		return failed(err)
	}
	raw, err := s.ws.Export(ctx, id)
	if err != nil {
		return failed(err)
	}
	return mcp.NewToolResultText(string(raw)), nil
}

func (s *Server) handleListVersions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("project_id")
	if err != nil {
		return failed(err)
	}
	list, err := s.ws.Versions().List(ctx, id)
	if err != nil {
		return failed(err)
	}
	for i := range list {
		list[i].Data = nil
	}
	return jsonResult(list)
}

func (s *Server) handleCreateVersion(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("project_id")
	if err != nil {
		return failed(err)
	}
	v, err := s.ws.CreateVersion(ctx, id, versions.CreateRequest{
		Version:     req.GetString("version", ""),
		Tag:         req.GetString("tag", ""),
		Description: req.GetString("description", ""),
		Author:      "mcp",
	})
	if err != nil {
		return failed(err)
	}
	v.Data = nil
	return jsonResult(v)
}

func (s *Server) handleRollback(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("project_id")
	if err != nil {
		return failed(err)
	}
	vid, err := req.RequireString("version_id")
	if err != nil {
		return failed(err)
	}
	if _, err := s.ws.Rollback(ctx, id, vid); err != nil {
		return failed(err)
	}
	return jsonResult(map[string]string{"restored": vid})
}

func (s *Server) handlePublish(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("project_id")
	if err != nil {
		return failed(err)
	}
	vid, err := req.RequireString("version_id")
	if err != nil {
		return failed(err)
	}
	if err := s.ws.Versions().Publish(ctx, id, vid); err != nil {
		return failed(err)
	}
	return jsonResult(map[string]string{"published": vid})
}
