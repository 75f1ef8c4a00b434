package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/flowedit"
	"github.com/aretw0/flowedit/internal/logging"
	"github.com/aretw0/flowedit/internal/presentation/graph"
	"github.com/aretw0/flowedit/pkg/document"
	"github.com/aretw0/flowedit/pkg/domain"
	"github.com/aretw0/flowedit/pkg/form"
	"github.com/aretw0/flowedit/pkg/workspace"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"golang.org/x/time/rate"
)

// Server exposes a workspace manager as a JSON API.
type Server struct {
	Workspaces *workspace.Manager

	metrics http.Handler
	limiter *rate.Limiter
	logger  *slog.Logger
	// maxBranches bounds tree, analysis and graph requests. Zero disables it.
	maxBranches int
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger used for request errors.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetricsHandler serves h at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithWriteLimit throttles write endpoints to perSecond requests with the given burst.
// A rate of zero or less disables throttling.
func WithWriteLimit(perSecond float64, burst int) Option {
	return func(s *Server) {
		if perSecond <= 0 {
			s.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithExpansionLimit caps the number of tree branches a tree, analysis or
// graph request may expand. Larger documents get 422. Zero or less disables the cap.
func WithExpansionLimit(branches int) Option {
	return func(s *Server) {
		s.maxBranches = branches
	}
}

// NewHandler creates the HTTP handler for the workspaces.
func NewHandler(workspaces *workspace.Manager, opts ...Option) http.Handler {
	s := &Server{
		Workspaces:  workspaces,
		logger:      logging.NewNop(),
		maxBranches: flowedit.DefaultExpansionLimit,
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/documents", func(r chi.Router) {
		r.Get("/", s.ListDocuments)
		r.Route("/{name}", func(r chi.Router) {
			r.Get("/", s.ExportDocument)
			r.Get("/tree", s.GetTree)
			r.Get("/analysis", s.GetAnalysis)
			r.Get("/graph", s.GetGraph)
			r.Get("/form", s.GetNewNodeForm)
			r.Get("/nodes/{id}/form", s.GetNodeForm)
			r.Get("/environments", s.GetEnvironments)

			r.Group(func(r chi.Router) {
				r.Use(s.throttle)
				r.Put("/", s.ImportDocument)
				r.Delete("/", s.DeleteDocument)
				r.Post("/nodes", s.CreateNode)
				r.Put("/nodes/{id}", s.UpdateNode)
				r.Put("/environments", s.SaveEnvironments)
			})
		})
	})

	return handleCORS(r)
}

func handleCORS(h http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: []string{`*`},
		AllowedMethods: []string{`GET`, `POST`, `PUT`, `DELETE`},
		AllowedHeaders: []string{`*`},
		MaxAge:         600,
	}).Handler(h)
}

func (s *Server) throttle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil && !s.limiter.Allow() {
			w.Header().Set("Retry-After", "1")
			http.Error(w, "Too many write requests", http.StatusTooManyRequests)
			s.logger.Warn("Write throttled", "method", r.Method, "path", r.URL.Path)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "flowedit-http",
		"version": strings.TrimSpace(flowedit.Version),
	})
}

// ListDocuments handles the GET /documents request.
func (s *Server) ListDocuments(w http.ResponseWriter, r *http.Request) {
	names, err := s.Workspaces.List(r.Context())
	if err != nil {
		s.fail(w, "List", err)
		return
	}
	if names == nil {
		names = []string{}
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"documents": names})
}

// ImportDocument handles the PUT /documents/{name} request.
// The body is a flow document; ?format=yaml (or a YAML content type) selects YAML.
func (s *Server) ImportDocument(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	format, err := requestFormat(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ed, err := s.Workspaces.Import(r.Context(), name, r.Body, format)
	if err != nil {
		s.fail(w, "Import", err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"name":  name,
		"nodes": len(ed.Inspect()),
		"start": ed.StartNodeID(),
		"clean": ed.Clean(),
	})
}

func requestFormat(r *http.Request) (document.Format, error) {
	if v := r.URL.Query().Get("format"); v != "" {
		return document.ParseFormat(v)
	}
	if strings.Contains(r.Header.Get("Content-Type"), "yaml") {
		return document.FormatYAML, nil
	}
	return document.FormatJSON, nil
}

// ExportDocument handles the GET /documents/{name} request.
// ?filename= names the download (default flow.json). The format follows
// ?format= when given, otherwise the filename extension.
func (s *Server) ExportDocument(w http.ResponseWriter, r *http.Request) {
	filename := r.URL.Query().Get("filename")
	if filename == "" {
		filename = document.DefaultFilename
	}
	format := document.FormatFor(filename)
	if v := r.URL.Query().Get("format"); v != "" {
		f, err := document.ParseFormat(v)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		format = f
	}

	var data []byte
	err := s.Workspaces.View(r.Context(), chi.URLParam(r, "name"), func(ctx context.Context, ed *flowedit.Editor) error {
		var err error
		data, err = document.Marshal(ed.Snapshot(), format)
		return err
	})
	if err != nil {
		s.fail(w, "Export", err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// DeleteDocument handles the DELETE /documents/{name} request.
func (s *Server) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := s.Workspaces.Delete(r.Context(), chi.URLParam(r, "name")); err != nil {
		s.fail(w, "Delete", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetTree handles the GET /documents/{name}/tree request.
func (s *Server) GetTree(w http.ResponseWriter, r *http.Request) {
	s.view(w, r, "Tree", func(ctx context.Context, ed *flowedit.Editor) (any, error) {
		if err := ed.CheckExpansion(s.maxBranches); err != nil {
			return nil, err
		}
		return ed.Tree(ctx), nil
	})
}

// GetAnalysis handles the GET /documents/{name}/analysis request.
func (s *Server) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	s.view(w, r, "Analyze", func(ctx context.Context, ed *flowedit.Editor) (any, error) {
		if err := ed.CheckExpansion(s.maxBranches); err != nil {
			return nil, err
		}
		report := ed.Analyze()
		return map[string]any{"report": report, "clean": report.Clean()}, nil
	})
}

// GetGraph handles the GET /documents/{name}/graph request.
// ?format= is mermaid (default), dot or svg.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "mermaid"
	}

	var body []byte
	var contentType string
	err := s.Workspaces.View(r.Context(), chi.URLParam(r, "name"), func(ctx context.Context, ed *flowedit.Editor) error {
		if err := ed.CheckExpansion(s.maxBranches); err != nil {
			return err
		}
		overlay := graph.OverlayFrom(ed.Analyze())
		nodes := ed.Inspect()
		switch format {
		case "mermaid":
			body = []byte(graph.GenerateMermaid(nodes, ed.StartNodeID(), overlay))
			contentType = "text/plain; charset=utf-8"
		case "dot":
			body = []byte(graph.ToDOT(nodes, ed.StartNodeID(), overlay))
			contentType = "text/vnd.graphviz; charset=utf-8"
		case "svg":
			svg, err := graph.RenderSVG(ctx, graph.ToDOT(nodes, ed.StartNodeID(), overlay))
			if err != nil {
				return err
			}
			body = svg
			contentType = "image/svg+xml"
		default:
			return errUnsupportedGraphFormat
		}
		return nil
	})
	if err != nil {
		s.fail(w, "Graph", err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

var errUnsupportedGraphFormat = errors.New("unsupported graph format (use mermaid, dot or svg)")

// GetNewNodeForm handles the GET /documents/{name}/form request.
func (s *Server) GetNewNodeForm(w http.ResponseWriter, r *http.Request) {
	kind := domain.Kind(r.URL.Query().Get("kind"))
	s.view(w, r, "NewNode", func(ctx context.Context, ed *flowedit.Editor) (any, error) {
		return ed.NewNode(kind), nil
	})
}

// GetNodeForm handles the GET /documents/{name}/nodes/{id}/form request.
// ?kind= previews the form for a different kind.
func (s *Server) GetNodeForm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	kind := domain.Kind(r.URL.Query().Get("kind"))
	s.view(w, r, "OpenNode", func(ctx context.Context, ed *flowedit.Editor) (any, error) {
		return ed.OpenNode(id, kind)
	})
}

// CreateNode handles the POST /documents/{name}/nodes request.
func (s *Server) CreateNode(w http.ResponseWriter, r *http.Request) {
	var draft form.Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("CreateNode: Invalid request body", "err", err)
		return
	}
	draft.Mode = form.ModeCreate
	draft.OriginalID = ""
	s.saveNode(w, r, draft, http.StatusCreated)
}

// UpdateNode handles the PUT /documents/{name}/nodes/{id} request.
func (s *Server) UpdateNode(w http.ResponseWriter, r *http.Request) {
	var draft form.Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("UpdateNode: Invalid request body", "err", err)
		return
	}
	draft.Mode = form.ModeEdit
	draft.OriginalID = chi.URLParam(r, "id")
	if draft.ID == "" {
		draft.ID = draft.OriginalID
	}
	s.saveNode(w, r, draft, http.StatusOK)
}

func (s *Server) saveNode(w http.ResponseWriter, r *http.Request, draft form.Draft, status int) {
	var res form.Result
	err := s.Workspaces.Edit(r.Context(), chi.URLParam(r, "name"), func(ctx context.Context, ed *flowedit.Editor) error {
		var err error
		res, err = ed.SaveNode(ctx, draft)
		return err
	})
	if err != nil {
		s.fail(w, "SaveNode", err)
		return
	}
	s.writeJSON(w, status, res)
}

type environmentsBody struct {
	Environments map[string]any `json:"environments"`
	Rows         []form.VarRow  `json:"rows,omitempty"`
}

// GetEnvironments handles the GET /documents/{name}/environments request.
func (s *Server) GetEnvironments(w http.ResponseWriter, r *http.Request) {
	s.view(w, r, "Environments", func(ctx context.Context, ed *flowedit.Editor) (any, error) {
		return environmentsBody{Environments: ed.Environments(), Rows: ed.EnvironmentRows()}, nil
	})
}

// SaveEnvironments handles the PUT /documents/{name}/environments request.
// The body carries either rows (blank keys are dropped, later rows win) or the
// environments object GET returns. A body with neither is rejected.
func (s *Server) SaveEnvironments(w http.ResponseWriter, r *http.Request) {
	var body environmentsBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("SaveEnvironments: Invalid request body", "err", err)
		return
	}
	if body.Rows == nil {
		if body.Environments == nil {
			http.Error(w, `Request body needs "rows" or "environments"`, http.StatusBadRequest)
			return
		}
		body.Rows = form.EnvironmentRows(body.Environments)
	}

	var saved map[string]any
	err := s.Workspaces.Edit(r.Context(), chi.URLParam(r, "name"), func(ctx context.Context, ed *flowedit.Editor) error {
		saved = ed.SaveEnvironments(ctx, body.Rows)
		return nil
	})
	if err != nil {
		s.fail(w, "SaveEnvironments", err)
		return
	}
	s.writeJSON(w, http.StatusOK, environmentsBody{Environments: saved})
}

// -- Helpers --

func (s *Server) view(w http.ResponseWriter, r *http.Request, op string, fn func(context.Context, *flowedit.Editor) (any, error)) {
	var resp any
	err := s.Workspaces.View(r.Context(), chi.URLParam(r, "name"), func(ctx context.Context, ed *flowedit.Editor) error {
		var err error
		resp, err = fn(ctx, ed)
		return err
	})
	if err != nil {
		s.fail(w, op, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		s.logger.Error("Response encode failed", "err", err)
	}
}

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields,omitempty"`
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(op+" failed", "err", err)
	} else {
		s.logger.Debug(op+" rejected", "status", status, "err", err)
	}

	body := errorBody{Error: err.Error()}
	for _, fe := range form.FieldErrors(err) {
		body.Fields = append(body.Fields, fe.Error())
	}
	s.writeJSON(w, status, body)
}

// StatusFor maps editor errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrDocumentNotFound), errors.Is(err, domain.ErrNodeNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateID):
		return http.StatusConflict
	case errors.Is(err, domain.ErrExpansionLimit):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrMalformedDocument),
		errors.Is(err, domain.ErrParseFailure),
		errors.Is(err, domain.ErrMissingRequiredField),
		errors.Is(err, domain.ErrImmutableID),
		errors.Is(err, errUnsupportedGraphFormat):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
