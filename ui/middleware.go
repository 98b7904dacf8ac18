package ui

import (
	"io/fs"
	"log"
	"net/http"

	"zymeboard/internal/pages"
	"zymeboard/ui/middleware"

	"github.com/gin-gonic/gin"
)

// setupMiddleware configures Gin middleware
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	if gin.Mode() == gin.DebugMode {
		s.router.Use(gin.Logger())
	}
	s.router.Use(middleware.EnsureSession(s.registry.Prefix(), s.store.TTL()))

	staticFS, err := fs.Sub(s.embeddedFiles, "static")
	if err != nil {
		log.Printf("[setupMiddleware] Error creating static filesystem: %v", err)
		return
	}
	s.router.StaticFS(pages.PathFor(s.registry.Prefix(), "static"), http.FS(staticFS))
}
