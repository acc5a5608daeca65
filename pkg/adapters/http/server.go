package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/aretw0/pagecraft"
	"github.com/aretw0/pagecraft/internal/logging"
	"github.com/aretw0/pagecraft/pkg/domain"
	"github.com/aretw0/pagecraft/pkg/editor"
	"github.com/aretw0/pagecraft/pkg/ports"
	"github.com/aretw0/pagecraft/pkg/registry"
	"github.com/aretw0/pagecraft/pkg/versions"
)

// Workspace is the editing backend served over HTTP.
type Workspace interface {
	CreateProject(ctx context.Context, name string) (string, error)
	ListProjects(ctx context.Context) ([]domain.ProjectSummary, error)
	Project(ctx context.Context, projectID string) (*domain.ProjectData, error)
	Open(ctx context.Context, projectID string) (*editor.Session, error)
	DeleteProject(ctx context.Context, projectID string) error
	Export(ctx context.Context, projectID string) ([]byte, error)
	Import(ctx context.Context, projectID string, raw []byte) (string, error)
	CreateVersion(ctx context.Context, projectID string, req versions.CreateRequest) (domain.Version, error)
	Rollback(ctx context.Context, projectID, versionID string) (*domain.ProjectData, error)
	Versions() *versions.Service
	Catalog() ports.Catalog
	Assets() ports.AssetStore
}

var _ Workspace = (*pagecraft.Workspace)(nil)

// Server holds the handlers of the editing API.
type Server struct {
	ws       Workspace
	streams  *StreamManager
	commands *registry.Registry
	logger   *slog.Logger
	metrics  http.Handler
	origins  []string
	timeout  time.Duration
}

// Option configures the handler.
type Option func(*Server)

// WithLogger sets the logger used for handler errors.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithStreams shares an event stream whose Hooks are registered on the workspace.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) { s.streams = sm }
}

// WithMetrics mounts h at /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// WithAllowedOrigins restricts CORS and websocket origins. "*" allows any.
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) { s.origins = origins }
}

// WithCommands replaces the websocket command registry.
func WithCommands(r *registry.Registry) Option {
	return func(s *Server) { s.commands = r }
}

// WithRequestTimeout bounds non-streaming requests.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Server) { s.timeout = d }
}

// NewHandler creates the HTTP handler for ws.
func NewHandler(ws Workspace, opts ...Option) http.Handler {
	s := &Server{
		ws:      ws,
		logger:  logging.NewNop(),
		origins: []string{"*"},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.streams == nil {
		s.streams = NewStreamManager(s.logger)
	}
	if s.commands == nil {
		s.commands = registry.Default()
	}
	return s.routes()
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: slog.NewLogLogger(s.logger.Handler(), slog.LevelDebug), NoColor: true}))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	// Streams are long-lived and must not inherit the request timeout.
	r.Get("/projects/{projectID}/events", s.SubscribeEvents)
	r.Get("/projects/{projectID}/ws", s.Socket)

	r.Group(func(r chi.Router) {
		if s.timeout > 0 {
			r.Use(middleware.Timeout(s.timeout))
		}

		r.Get("/catalog", s.ListCatalog)
		r.Get("/catalog/{itemID}", s.GetCatalogItem)

		r.Post("/assets", s.UploadAsset)
		r.Get("/assets/{key}", s.GetAsset)
		r.Delete("/assets/{key}", s.DeleteAsset)

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", s.ListProjects)
			r.Post("/", s.CreateProject)
			r.Post("/import", s.ImportProject)

			r.Route("/{projectID}", func(r chi.Router) {
				r.Get("/", s.GetProject)
				r.Delete("/", s.DeleteProject)
				r.Get("/export", s.ExportProject)
				r.Put("/import", s.ImportProject)

				r.Get("/state", s.GetState)
				r.Post("/save", s.SaveProject)
				r.Post("/undo", s.Undo)
				r.Post("/redo", s.Redo)
				r.Put("/breakpoint", s.SetBreakpoint)
				r.Put("/selection", s.SetSelection)
				r.Post("/copy", s.Copy)
				r.Post("/paste", s.Paste)
				r.Post("/align", s.Align)
				r.Post("/distribute", s.Distribute)

				r.Post("/blocks", s.InsertBlock)
				r.Get("/blocks/{blockID}", s.GetBlock)
				r.Patch("/blocks/{blockID}", s.UpdateBlock)
				r.Delete("/blocks/{blockID}", s.DeleteBlock)
				r.Post("/blocks/{blockID}/move", s.MoveBlock)
				r.Post("/blocks/{blockID}/duplicate", s.DuplicateBlock)
				r.Get("/blocks/{blockID}/styles", s.EffectiveStyles)

				r.Get("/pages", s.ListPages)
				r.Post("/pages", s.AddPage)
				r.Patch("/pages/{pageID}", s.UpdatePage)
				r.Delete("/pages/{pageID}", s.DeletePage)
				r.Post("/pages/{pageID}/select", s.SelectPage)
				r.Post("/pages/{pageID}/home", s.SetHomePage)

				r.Get("/versions", s.ListVersions)
				r.Post("/versions", s.CreateVersion)
				r.Get("/versions/{versionID}", s.GetVersion)
				r.Post("/versions/{versionID}/rollback", s.Rollback)
				r.Post("/versions/{versionID}/publish", s.Publish)
			})
		})
	})
	return r
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":     "pagecraft-http",
		"version": strings.TrimSpace(pagecraft.Version),
	})
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*editor.Session, bool) {
	sess, err := s.ws.Open(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		s.fail(w, r, err)
		return nil, false
	}
	return sess, true
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body: " + err.Error()})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
