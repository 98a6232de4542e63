package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-kit/log/level"

	"github.com/emiliopalmerini/kpiboard/internal/dashboard"
	"github.com/emiliopalmerini/kpiboard/internal/domain"
	"github.com/emiliopalmerini/kpiboard/internal/web/templates"
)

const renderIDHeader = "X-Render-ID"

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p := s.renderer.Render(ctx)

	w.Header().Set(renderIDHeader, p.RenderID.String())
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if p.Halted() {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	if err := templates.Page(p).Render(ctx, w); err != nil {
		level.Error(s.logger).Log("msg", "failed to write page", "err", err)
	}
}

func (s *Server) handleSection(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	section, err := s.renderer.RenderSection(ctx, id)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, dashboard.ErrUnknownSection):
			status = http.StatusNotFound
		case isConnectionError(err):
			status = http.StatusServiceUnavailable
		}
		w.WriteHeader(status)
		_ = templates.ErrorBanner(err.Error()).Render(ctx, w)
		return
	}

	if !IsHTMX(r) {
		w.Header().Set("Cache-Control", "no-store")
	}
	if err := templates.Section(section).Render(ctx, w); err != nil {
		level.Error(s.logger).Log("msg", "failed to write section", "section", id, "err", err)
	}
}

func (s *Server) handleAPIPage(w http.ResponseWriter, r *http.Request) {
	p := s.renderer.Render(r.Context())

	w.Header().Set(renderIDHeader, p.RenderID.String())
	status := http.StatusOK
	if p.Halted() {
		status = http.StatusServiceUnavailable
	}
	s.writeJSON(w, status, p)
}

type queryInfo struct {
	Name  string `json:"name"`
	Title string `json:"title"`
	Shape string `json:"shape"`
	SQL   string `json:"sql"`
}

func (s *Server) handleAPIQueries(w http.ResponseWriter, r *http.Request) {
	defs := s.catalog.All()
	out := make([]queryInfo, 0, len(defs))
	for _, d := range defs {
		out = append(out, queryInfo{Name: d.Name, Title: d.Title, Shape: d.Shape.String(), SQL: d.SQL})
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		level.Error(s.logger).Log("msg", "failed to encode response", "err", err)
	}
}

// isConnectionError reports whether err halted a render.
func isConnectionError(err error) bool {
	var connErr *domain.ConnectionError
	return errors.As(err, &connErr)
}
