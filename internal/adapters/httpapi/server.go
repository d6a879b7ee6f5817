// Package httpapi serves the JSON API and the operator dashboard.
package httpapi

import (
	"embed"
	"encoding/json"
	"html/template"
	"net/http"
	"time"

	"github.com/felixge/httpsnoop"

	"github.com/eziosoft/MavlinkStats/internal/ports"
)

//go:embed templates/*.html
var templateFS embed.FS

type Server struct {
	state ports.StateService
	obs   ports.Observability
	tmpl  *template.Template
	mux   *http.ServeMux
}

func New(state ports.StateService, obs ports.Observability) (*Server, error) {
	tmpl, err := template.New("dashboard.html").Funcs(funcs).ParseFS(templateFS, "templates/dashboard.html")
	if err != nil {
		return nil, err
	}

	s := &Server{
		state: state,
		obs:   obs,
		tmpl:  tmpl,
		mux:   http.NewServeMux(),
	}
	s.mux.HandleFunc("GET /api/snapshot", s.handleSnapshot)
	s.mux.HandleFunc("POST /api/reset", s.handleAPIReset)
	s.mux.HandleFunc("GET /{$}", s.handleDashboard)
	s.mux.HandleFunc("GET /drone_stats", s.handleDashboard)
	s.mux.HandleFunc("POST /reset", s.handleFormReset)
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return s, nil
}

// Handler returns the routes wrapped in latency metrics and request logging.
// Successful GETs are not logged.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := httpsnoop.CaptureMetrics(s.mux, w, r)
		s.obs.ObserveLatency("mavstats_http_request_seconds", m.Duration.Seconds())
		if r.Method == http.MethodGet && m.Code < http.StatusBadRequest {
			return
		}
		s.obs.LogInfo("http_request",
			ports.Field{Key: "method", Value: r.Method},
			ports.Field{Key: "path", Value: r.URL.Path},
			ports.Field{Key: "status", Value: m.Code},
			ports.Field{Key: "bytes", Value: m.Written},
			ports.Field{Key: "duration", Value: m.Duration.String()})
	})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.state.Snapshot())
}

func (s *Server) handleAPIReset(w http.ResponseWriter, r *http.Request) {
	if err := s.reset(); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"status": "error", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleFormReset(w http.ResponseWriter, r *http.Request) {
	if err := s.reset(); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/drone_stats", http.StatusSeeOther)
}

func (s *Server) reset() error {
	if err := s.state.Reset(); err != nil {
		s.obs.LogError("reset_failed", err)
		return err
	}
	s.obs.IncCounter("mavstats_resets_total", 1)
	s.obs.LogInfo("state_reset")
	return nil
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.Execute(w, newDashboard(s.state.Snapshot())); err != nil {
		s.obs.LogError("dashboard_render_failed", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

var funcs = template.FuncMap{
	"clock": func(t time.Time) string { return t.Format("15:04:05.000") },
	"hz":    formatHz,
}
