package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

const (
	catalogURI  = "pagecraft://catalog"
	projectsURI = "pagecraft://projects"
)

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(catalogURI, "Block Catalog",
		mcp.WithResourceDescription("Blocks that can be inserted into a page"),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		items, err := s.ws.Catalog().Items(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list catalog: %w", err)
		}
		return jsonResource(catalogURI, items)
	})

	s.mcpServer.AddResource(mcp.NewResource(projectsURI, "Projects",
		mcp.WithResourceDescription("Stored projects"),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		list, err := s.ws.ListProjects(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list projects: %w", err)
		}
		return jsonResource(projectsURI, list)
	})

	s.mcpServer.AddResourceTemplate(mcp.NewResourceTemplate(projectsURI+"/{id}", "Project Export",
		mcp.WithTemplateDescription("Exported JSON document of one project"),
		mcp.WithTemplateMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		id := strings.TrimPrefix(request.Params.URI, projectsURI+"/")
		raw, err := s.ws.Export(ctx, id)
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{URI: request.Params.URI, MIMEType: "application/json", Text: string(raw)},
		}, nil
	})
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{URI: uri, MIMEType: "application/json", Text: string(raw)},
	}, nil
}
