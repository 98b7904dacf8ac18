package ui

import (
	"bytes"
	"html/template"
	"log"
	"net/http"

	"zymeboard/internal/pages"
	"zymeboard/ui/templates/fragments"

	"github.com/gin-gonic/gin"
)

type navItem struct {
	Name   string
	Path   string
	Active bool
}

// shellView is the outer layout: header, nav pills, content, footer
type shellView struct {
	PageTitle      string
	Heading        string
	BackLink       string
	Prefix         string
	Nav            []navItem
	Content        template.HTML
	ImpressumURL   string
	DatenschutzURL string
}

// contentView is what every content template receives
type contentView struct {
	Page       *pages.Page
	Prefix     string
	FiguresURL string
	Data       interface{}
	Selection  []selectedRow
	Columns    []string
	Message    string
}

func (s *Server) nav(active *pages.Page) []navItem {
	all := s.registry.All()
	items := make([]navItem, 0, len(all))
	for _, p := range all {
		items = append(items, navItem{Name: p.Name, Path: p.Path, Active: active != nil && p.Route == active.Route})
	}
	return items
}

// renderShell executes a content template, then wraps it in the shell. Both
// are rendered to buffers so a failure never leaves a half-written page.
func (s *Server) renderShell(c *gin.Context, status int, active *pages.Page, contentTemplate string, view contentView) {
	var content bytes.Buffer
	if err := s.templates.ExecuteTemplate(&content, contentTemplate, view); err != nil {
		log.Printf("[Render] Template error for %s: %v", contentTemplate, err)
		if contentTemplate != fragments.ServerError {
			s.renderShell(c, http.StatusInternalServerError, nil, fragments.ServerError, contentView{Prefix: view.Prefix, Message: "The page could not be rendered."})
			return
		}
		c.String(http.StatusInternalServerError, "internal server error")
		return
	}

	title := s.opts.SourceName
	if active != nil {
		title = active.Title + " | " + s.opts.SourceName
	}
	shell := shellView{
		PageTitle:      title,
		Heading:        "Analysis results for " + s.opts.SourceName,
		BackLink:       s.opts.BackLink,
		Prefix:         s.registry.Prefix(),
		Nav:            s.nav(active),
		Content:        template.HTML(content.String()),
		ImpressumURL:   ImpressumURL,
		DatenschutzURL: DatenschutzURL,
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, fragments.Shell, shell); err != nil {
		log.Printf("[Render] Shell template error: %v", err)
		c.String(http.StatusInternalServerError, "internal server error")
		return
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(status)
	if _, err := buf.WriteTo(c.Writer); err != nil {
		log.Printf("[Render] Error writing response: %v", err)
	}
}
