// Package server wires the backend components behind the HTTP surface.
//
// This is the composition root: it owns no business logic, only the
// registry, session store, planner invocation, and the translation of
// planner errors into status codes.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/Rachit-Gandhi/ProjectNavigator/api"
	"github.com/Rachit-Gandhi/ProjectNavigator/internal/ingest"
	"github.com/Rachit-Gandhi/ProjectNavigator/internal/rag"
	"github.com/Rachit-Gandhi/ProjectNavigator/internal/registry"
	"github.com/Rachit-Gandhi/ProjectNavigator/internal/router"
	"github.com/Rachit-Gandhi/ProjectNavigator/internal/session"
)

// DefaultRulesPath is where the ingestion rule config lives unless
// overridden.
const DefaultRulesPath = "config/ingestion_rules.yaml"

// Config carries the server's collaborators. Zero-value fields get
// working defaults, except Pipeline: with no pipeline, chat answers
// return 501.
type Config struct {
	RulesPath       string
	DefaultDataPath string
	Registry        *registry.Registry
	Sessions        *session.Store
	Pipeline        *rag.Pipeline
	Router          router.Router
	Logger          *slog.Logger
}

// Server is the HTTP surface of the backend.
type Server struct {
	cfg      Config
	registry *registry.Registry
	sessions *session.Store
	router   router.Router
	log      *slog.Logger
	mux      *http.ServeMux
}

func New(cfg Config) *Server {
	if cfg.RulesPath == "" {
		cfg.RulesPath = DefaultRulesPath
	}
	if cfg.DefaultDataPath == "" {
		cfg.DefaultDataPath = "data"
	}
	if cfg.Registry == nil {
		cfg.Registry = registry.New()
	}
	if cfg.Sessions == nil {
		cfg.Sessions = session.NewStore()
	}
	if cfg.Router == nil {
		cfg.Router = router.Unrouted{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	s := &Server{
		cfg:      cfg,
		registry: cfg.Registry,
		sessions: cfg.Sessions,
		router:   cfg.Router,
		log:      cfg.Logger,
		mux:      http.NewServeMux(),
	}
	s.mux.HandleFunc("POST /v1/ingest", s.handleIngest)
	s.mux.HandleFunc("POST /v1/session/lock", s.handleLock)
	s.mux.HandleFunc("POST /v1/chat", s.handleChat)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	s.mux.ServeHTTP(w, r)
	s.log.Info("request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
}

// Registry exposes the plan registry to sibling surfaces (the MCP agent
// shares it when both run in one process).
func (s *Server) Registry() *registry.Registry { return s.registry }

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req api.IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	dataPath := req.DataPath
	if dataPath == "" {
		dataPath = s.cfg.DefaultDataPath
	}
	dataRoot, err := filepath.Abs(dataPath)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid data path: %v", err))
		return
	}

	rules, err := ingest.LoadRules(s.cfg.RulesPath)
	if err != nil {
		s.planError(w, err)
		return
	}

	var provider ingest.DescriptionProvider
	if req.EnsureDescriptions {
		provider = mapProvider(req.Descriptions)
	}

	plans, err := ingest.PlanAllProjects(dataRoot, rules, provider, req.Projects)
	if err != nil {
		s.planError(w, err)
		return
	}
	if len(plans) == 0 {
		writeError(w, http.StatusNotFound, "No projects discovered")
		return
	}
	s.registry.Update(plans)
	s.log.Info("ingested projects", "count", len(plans), "data_root", dataRoot)

	resp := api.IngestResponse{Projects: make([]api.ProjectPreview, 0, len(plans))}
	for _, plan := range plans {
		resp.Projects = append(resp.Projects, previewPlan(plan))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLock(w http.ResponseWriter, r *http.Request) {
	var req api.LockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.SessionID == "" || req.ProjectID == "" {
		writeError(w, http.StatusBadRequest, "session_id and project_id are required")
		return
	}
	s.sessions.SetProject(req.SessionID, req.ProjectID)
	writeJSON(w, http.StatusOK, api.ChatResponse{
		SessionID: req.SessionID,
		ProjectID: req.ProjectID,
		Filters:   []string{},
		Response:  fmt.Sprintf("Session locked to %s", req.ProjectID),
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req api.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	raw := strings.TrimSpace(req.Message)
	if raw == "" {
		writeError(w, http.StatusBadRequest, "Message cannot be empty")
		return
	}

	if command := session.IdentifyCommand(raw); command != "" {
		reply, err := session.ApplyCommand(s.sessions, req.SessionID, command)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, api.ChatResponse{
			SessionID: req.SessionID,
			Filters:   []string{},
			Response:  reply,
		})
		return
	}

	cleaned, filters := session.ExtractFilters(raw)
	if cleaned == "" {
		writeError(w, http.StatusBadRequest, "Message cannot be empty after removing filters")
		return
	}
	if filters == nil {
		filters = []string{}
	}

	projectID := req.ProjectID
	if projectID == "" {
		projectID = s.sessions.ProjectLock(req.SessionID)
	}
	switch {
	case projectID == "" && req.AutoLock:
		selected, err := s.autoLock(cleaned)
		if err != nil {
			s.routeError(w, err)
			return
		}
		projectID = selected
		s.sessions.SetProject(req.SessionID, projectID)
	case projectID == "":
		writeError(w, http.StatusConflict, "Session is not locked to a project")
		return
	case req.ProjectID != "":
		s.sessions.SetProject(req.SessionID, req.ProjectID)
	}

	s.sessions.Append(req.SessionID, "user", cleaned, filters)

	if s.cfg.Pipeline == nil {
		writeError(w, http.StatusNotImplemented, "retrieval pipeline is not configured")
		return
	}
	answer, err := s.cfg.Pipeline.Answer(r.Context(), projectID, cleaned, filters)
	if err != nil {
		s.log.Error("answer failed", "project", projectID, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.sessions.Append(req.SessionID, "assistant", answer, filters)

	writeJSON(w, http.StatusOK, api.ChatResponse{
		SessionID: req.SessionID,
		ProjectID: projectID,
		Filters:   filters,
		Response:  answer,
	})
}

func (s *Server) autoLock(query string) (string, error) {
	plans := s.registry.List()
	if len(plans) == 0 {
		return "", errNoProjects
	}
	return s.router.SelectProject(query, plans)
}

var errNoProjects = errors.New("no projects available for routing")

func (s *Server) routeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errNoProjects):
		writeError(w, http.StatusNotFound, "No projects available for routing")
	case errors.Is(err, router.ErrNotImplemented):
		writeError(w, http.StatusNotImplemented, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// planError maps planner failures: client-correctable conditions are 400,
// anything unexpected is 500.
func (s *Server) planError(w http.ResponseWriter, err error) {
	if errors.Is(err, ingest.ErrNotFound) || errors.Is(err, ingest.ErrEmptyDescription) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.log.Error("ingestion failed", "error", err)
	writeError(w, http.StatusInternalServerError, err.Error())
}

// mapProvider builds a description provider from request-supplied text.
// Projects absent from the mapping fail the batch.
func mapProvider(descriptions map[string]string) ingest.DescriptionProvider {
	return func(projectDir string) (string, error) {
		name := filepath.Base(projectDir)
		if text := descriptions[name]; text != "" {
			return text, nil
		}
		return "", fmt.Errorf("%w: no description supplied for project %q; provide text via the API", ingest.ErrNotFound, name)
	}
}

func previewPlan(plan *ingest.ProjectPlan) api.ProjectPreview {
	preview := api.ProjectPreview{
		ProjectID:   plan.ProjectID,
		Description: plan.Description,
		FileCount:   plan.FileCount(),
		Files:       make([]api.FilePreview, 0, len(plan.Files)),
	}
	for _, rec := range plan.Files {
		preview.Files = append(preview.Files, api.FilePreview{
			Path: rec.RelativePath,
			Tags: rec.Tags.Sorted(),
		})
	}
	return preview
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, api.ErrorResponse{Detail: detail})
}
