package ui

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"zymeboard/domain/results"
	"zymeboard/internal/errors"
	"zymeboard/internal/metrics"
	"zymeboard/internal/pages"
	"zymeboard/internal/session"
	"zymeboard/ui/templates/fragments"

	"github.com/gin-gonic/gin"
)

// Default footer links of the hosting institute
const (
	ImpressumURL   = "https://www.ipb-halle.de/kontakt/impressum"
	DatenschutzURL = "https://www.ipb-halle.de/kontakt/datenschutz"
)

// Options configures the shell around the pages
type Options struct {
	SourceName string
	BackLink   string
}

// Server is the dashboard web server. Everything it serves is read-only
// except the per-session slots.
type Server struct {
	router        *gin.Engine
	httpServer    *http.Server
	templates     *template.Template
	embeddedFiles embed.FS

	registry *pages.Registry
	results  *results.Results
	store    *session.Store
	metrics  *metrics.Metrics
	opts     Options
}

// NewServer creates the server, freezes the registry and sets up routes
func NewServer(registry *pages.Registry, res *results.Results, store *session.Store, m *metrics.Metrics, opts Options) (*Server, error) {
	if opts.SourceName == "" {
		opts.SourceName = res.Name
	}
	router := gin.New()
	s := &Server{
		router:        router,
		httpServer:    &http.Server{Handler: router, ReadHeaderTimeout: 10 * time.Second},
		embeddedFiles: embeddedFiles,
		registry:      registry,
		results:       res,
		store:         store,
		metrics:       m,
		opts:          opts,
	}

	if err := s.parseTemplates(); err != nil {
		return nil, err
	}

	registry.Freeze()
	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

func (s *Server) parseTemplates() error {
	funcMap := template.FuncMap{
		"add": func(a, b int) int { return a + b },
		"pct": func(f float64) string { return fmt.Sprintf("%.1f%%", 100*f) },
		"num": func(f float64) string { return fmt.Sprintf("%.3g", f) },
		"cell": func(row results.Row, column string) string {
			return row[column]
		},
		"upper": strings.ToUpper,
	}

	templatesFS, err := fs.Sub(s.embeddedFiles, "templates")
	if err != nil {
		return fmt.Errorf("failed to create templates filesystem: %w", err)
	}

	s.templates, err = template.New("").Funcs(funcMap).ParseFS(templatesFS, "*.html")
	if err != nil {
		return fmt.Errorf("failed to parse templates: %w", err)
	}
	for _, name := range fragments.All() {
		if s.templates.Lookup(name) == nil {
			return fmt.Errorf("template %s is missing", name)
		}
	}
	log.Printf("[TemplateInit] Parsed %d templates", len(s.templates.Templates()))
	return nil
}

// setupRoutes registers one handler per page plus the JSON and ops endpoints
func (s *Server) setupRoutes() {
	prefix := s.registry.Prefix()
	for _, page := range s.registry.All() {
		s.router.GET(page.Path, s.handlePage(page))
	}

	api := s.router.Group(pages.PathFor(prefix, "api"))
	api.GET("/figures/:route", s.handleFigures)
	api.GET("/shared", s.handleGetShared)
	api.PUT("/shared", s.handlePutShared)
	api.GET("/selection", s.handleGetSelection)
	api.POST("/selection", s.handlePostSelection)

	s.router.GET(pages.PathFor(prefix, "healthz"), s.handleHealth)
	s.router.GET(pages.PathFor(prefix, "metrics"), gin.WrapH(s.metrics.Handler()))
	s.router.NoRoute(s.handleNotFound)
}

// Handler exposes the router for tests and custom listeners
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves on addr until Shutdown is called
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrap(err, "failed to listen on "+addr)
	}
	log.Printf("[Server] Serving %d pages on http://%s%s", len(s.registry.All()), ln.Addr(), s.registry.Prefix())
	if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
		return errors.Wrap(err, "http server failed")
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	log.Printf("[Server] Shutting down")
	return s.httpServer.Shutdown(ctx)
}
