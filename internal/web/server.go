// Package web serves the dashboard page, its sections and a JSON API.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/emiliopalmerini/kpiboard/internal/catalog"
	"github.com/emiliopalmerini/kpiboard/internal/infrastructure/logging"
	"github.com/emiliopalmerini/kpiboard/internal/page"
)

//go:embed static/*
var staticFiles embed.FS

// Renderer builds pages and sections.
type Renderer interface {
	Render(ctx context.Context) page.Page
	RenderSection(ctx context.Context, id string) (page.Section, error)
}

// Options configures a Server.
type Options struct {
	Addr            string
	ShutdownTimeout time.Duration
	// Metrics serves GET /metrics when set.
	Metrics http.Handler
	Logger  log.Logger
}

type Server struct {
	addr            string
	shutdownTimeout time.Duration
	router          *http.ServeMux
	renderer        Renderer
	catalog         *catalog.Catalog
	metrics         http.Handler
	logger          log.Logger
}

func NewServer(renderer Renderer, cat *catalog.Catalog, opts Options) *Server {
	if opts.Addr == "" {
		opts.Addr = ":8080"
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}
	s := &Server{
		addr:            opts.Addr,
		shutdownTimeout: opts.ShutdownTimeout,
		router:          http.NewServeMux(),
		renderer:        renderer,
		catalog:         cat,
		metrics:         opts.Metrics,
		logger:          logging.OrNop(opts.Logger),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// Static files
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(fmt.Sprintf("failed to create static filesystem: %v", err))
	}
	s.router.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	// Health check
	s.router.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if s.metrics != nil {
		s.router.Handle("GET /metrics", s.metrics)
	}

	// Pages
	s.router.HandleFunc("GET /{$}", s.handlePage)
	s.router.HandleFunc("GET /sections/{id}", s.handleSection)

	// API
	s.router.HandleFunc("GET /api/page", s.handleAPIPage)
	s.router.HandleFunc("GET /api/queries", s.handleAPIQueries)
}

// Handler returns the router wrapped in the server's middleware.
func (s *Server) Handler() http.Handler {
	return Recoverer(s.logger)(RequestLogger(s.logger)(HTMX(s.router)))
}

func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	level.Info(s.logger).Log("msg", "starting server", "addr", s.addr)

	// Handle graceful shutdown
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			level.Error(s.logger).Log("msg", "server shutdown error", "err", err)
		}
	}()

	err := server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil // Graceful shutdown
	}
	return err
}
