// Package preview serves the results of a generation run over HTTP so
// developers can inspect the plan before writing anything: the
// manifest, the per-entity analysis, and the merged route table. It is
// a dev tool only; the generation core itself never touches the
// network.
package preview

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nick227/ssot-codegen/internal/analyzer"
	"github.com/nick227/ssot-codegen/internal/engine"
)

// Server exposes one completed run read-only.
type Server struct {
	result *engine.Result
	logger *zap.Logger
}

// NewServer creates a preview server over a run result.
func NewServer(result *engine.Result, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{result: result, logger: logger}
}

// Router builds the HTTP routes.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(s.requestID)

	r.Get("/manifest", s.handleManifest)
	r.Get("/routes", s.handleRoutes)
	r.Get("/analysis", s.handleAnalysis)
	r.Get("/analysis/{entity}", s.handleEntityAnalysis)
	r.Get("/diagnostics", s.handleDiagnostics)

	return r
}

// requestID tags every request for log correlation.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-ID", id)
		s.logger.Debug("preview request",
			zap.String("request_id", id),
			zap.String("path", r.URL.Path))
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleManifest(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.result.Manifest)
}

func (s *Server) handleRoutes(w http.ResponseWriter, r *http.Request) {
	if s.result.Manifest == nil {
		http.Error(w, "no manifest available", http.StatusNotFound)
		return
	}
	writeJSON(w, s.result.Manifest.Routes)
}

// analysisView is the JSON shape for one entity's analysis.
type analysisView struct {
	Entity          string            `json:"entity"`
	IsJunctionTable bool              `json:"is_junction_table"`
	AutoInclude     []string          `json:"auto_include"`
	SpecialFields   map[string]string `json:"special_fields"`
}

func viewOf(an *analyzer.EntityAnalysis) analysisView {
	v := analysisView{
		Entity:          an.Entity.Name,
		IsJunctionTable: an.IsJunctionTable,
		AutoInclude:     []string{},
		SpecialFields:   map[string]string{},
	}
	for _, rel := range an.AutoInclude {
		v.AutoInclude = append(v.AutoInclude, rel.Name+" -> "+rel.Target)
	}
	for _, sf := range an.SpecialFields {
		v.SpecialFields[string(sf.Tag)] = sf.Field
	}
	return v
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	views := make(map[string]analysisView, len(s.result.Analyses))
	for name, an := range s.result.Analyses {
		views[name] = viewOf(an)
	}
	writeJSON(w, views)
}

func (s *Server) handleEntityAnalysis(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "entity")
	an, ok := s.result.Analyses[name]
	if !ok {
		http.Error(w, "unknown entity: "+name, http.StatusNotFound)
		return
	}
	writeJSON(w, viewOf(an))
}

type diagnosticView struct {
	Plugin   string `json:"plugin"`
	Severity string `json:"severity"`
	Subject  string `json:"subject,omitempty"`
	Message  string `json:"message"`
	Fallback string `json:"fallback,omitempty"`
}

func (s *Server) handleDiagnostics(w http.ResponseWriter, r *http.Request) {
	views := make([]diagnosticView, 0, len(s.result.Diagnostics))
	for _, d := range s.result.Diagnostics {
		views = append(views, diagnosticView{
			Plugin:   d.Plugin,
			Severity: d.Severity.String(),
			Subject:  d.Subject,
			Message:  d.Message,
			Fallback: d.Fallback,
		})
	}
	writeJSON(w, views)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
