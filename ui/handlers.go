package ui

import (
	"io"
	"net/http"

	"zymeboard/domain/figure"
	"zymeboard/domain/results"
	"zymeboard/internal/errors"
	"zymeboard/internal/pages"
	"zymeboard/ui/middleware"
	"zymeboard/ui/templates/fragments"

	"github.com/gin-gonic/gin"
)

// maxSharedBytes bounds a shared slot write
const maxSharedBytes = 1 << 20

// homeRouteParam names the root page in /api/figures/:route
const homeRouteParam = "index"

// selectedRow is one row of the selection table
type selectedRow struct {
	Index int         `json:"index"`
	Row   results.Row `json:"row"`
}

type selectionRequest struct {
	Indices []int `json:"indices"`
}

// FiguresPath returns the JSON endpoint serving a page's figures
func FiguresPath(prefix, route string) string {
	if route == "" {
		route = homeRouteParam
	}
	return pages.PathFor(prefix, "api/figures/"+route)
}

func (s *Server) selectedRows(c *gin.Context) []selectedRow {
	indices := s.store.Selection(middleware.SessionID(c))
	rows := make([]selectedRow, 0, len(indices))
	for _, i := range indices {
		rows = append(rows, selectedRow{Index: i, Row: s.results.Dataset.Rows[i]})
	}
	return rows
}

// handlePage renders one registered page inside the shell
func (s *Server) handlePage(page *pages.Page) gin.HandlerFunc {
	return func(c *gin.Context) {
		s.metrics.PageView(page.Route)
		s.renderShell(c, http.StatusOK, page, page.Layout.Template, contentView{
			Page:       page,
			Prefix:     s.registry.Prefix(),
			FiguresURL: FiguresPath(s.registry.Prefix(), page.Route),
			Data:       page.Layout.Data,
			Selection:  s.selectedRows(c),
			Columns:    s.results.Dataset.Headers,
		})
	}
}

// handleNotFound renders unknown paths inside the shell instead of a blank page
func (s *Server) handleNotFound(c *gin.Context) {
	s.renderShell(c, http.StatusNotFound, nil, fragments.NotFound, contentView{
		Prefix:  s.registry.Prefix(),
		Message: c.Request.URL.Path,
	})
}

// handleFigures returns the figures of a page keyed by name
func (s *Server) handleFigures(c *gin.Context) {
	route := c.Param("route")
	if route == homeRouteParam {
		route = ""
	}
	page, ok := s.registry.Get(route)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": errors.NotFound("page " + c.Param("route")).Error()})
		return
	}
	c.Header("Cache-Control", "no-store")
	figures := page.Layout.Figures
	if figures == nil {
		c.JSON(http.StatusOK, gin.H{})
		return
	}

	selection := s.store.Selection(middleware.SessionID(c))
	if len(selection) == 0 {
		c.JSON(http.StatusOK, figures)
		return
	}

	// The registered figures are shared by every session
	highlighted := make(map[string]*figure.Figure, len(figures))
	for name, fig := range figures {
		clone, err := fig.Clone()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": errors.Wrap(err, "failed to copy figure "+name).Error()})
			return
		}
		clone.Highlight(selection)
		highlighted[name] = clone
	}
	c.JSON(http.StatusOK, highlighted)
}

func (s *Server) handleGetShared(c *gin.Context) {
	c.Data(http.StatusOK, "application/json", s.store.Shared(middleware.SessionID(c)))
}

func (s *Server) handlePutShared(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxSharedBytes))
	if err != nil {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "shared data is too large"})
		return
	}
	if err := s.store.SetShared(middleware.SessionID(c), body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.metrics.SharedStateWrite("shared")
	c.Status(http.StatusNoContent)
}

func (s *Server) handleGetSelection(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"rows": s.selectedRows(c)})
}

func (s *Server) handlePostSelection(c *gin.Context) {
	var req selectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "expected {\"indices\": [...]}"})
		return
	}
	if _, err := s.store.SetSelection(middleware.SessionID(c), req.Indices, s.results.Dataset.Len()); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.metrics.SharedStateWrite("selection")
	c.JSON(http.StatusOK, gin.H{"rows": s.selectedRows(c)})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"source": s.opts.SourceName,
		"rows":   s.results.Dataset.Len(),
		"pages":  len(s.registry.All()),
	})
}
