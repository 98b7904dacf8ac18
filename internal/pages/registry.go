package pages

import (
	"log"
	"path"
	"strings"
	"sync"

	"zymeboard/domain/figure"
	"zymeboard/internal/errors"
)

// Layout is what a page renders: a content template, the figures it embeds
// and any page specific data
type Layout struct {
	Template string
	Figures  map[string]*figure.Figure
	Data     interface{}
}

// Page is one navigable dashboard view
type Page struct {
	Route  string
	Name   string
	Path   string
	Title  string
	Layout Layout
}

// Registry keeps pages in registration order and resolves request paths
type Registry struct {
	mu      sync.RWMutex
	prefix  string
	pages   []*Page
	byRoute map[string]*Page
	byPath  map[string]*Page
	frozen  bool
}

// NewRegistry creates a registry whose page paths live under prefix
func NewRegistry(prefix string) *Registry {
	return &Registry{
		prefix:  NormalizePrefix(prefix),
		byRoute: make(map[string]*Page),
		byPath:  make(map[string]*Page),
	}
}

// NormalizePrefix returns prefix with exactly one leading and one trailing slash
func NormalizePrefix(prefix string) string {
	p := strings.Trim(prefix, "/")
	if p == "" {
		return "/"
	}
	return "/" + p + "/"
}

func normalizeRoute(route string) string {
	return strings.Trim(route, "/")
}

// PathFor joins the URL prefix and a route. The empty route is the prefix root.
func PathFor(prefix, route string) string {
	prefix = NormalizePrefix(prefix)
	route = normalizeRoute(route)
	if route == "" {
		return prefix
	}
	return path.Join(prefix, route)
}

// Prefix returns the normalized URL prefix
func (r *Registry) Prefix() string {
	return r.prefix
}

// Register adds a page. Routes are unique and the registry must not be frozen.
func (r *Registry) Register(route, name string, layout Layout) (*Page, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return nil, errors.InternalError("page registry is frozen; cannot register " + name)
	}
	route = normalizeRoute(route)
	if _, exists := r.byRoute[route]; exists {
		return nil, errors.DuplicateRoute(route)
	}

	page := &Page{
		Route:  route,
		Name:   name,
		Path:   PathFor(r.prefix, route),
		Title:  name,
		Layout: layout,
	}
	r.pages = append(r.pages, page)
	r.byRoute[route] = page
	r.byPath[page.Path] = page
	log.Printf("[Pages] Registered %q at %s", name, page.Path)
	return page, nil
}

// All returns the pages in registration order
func (r *Registry) All() []*Page {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Page, len(r.pages))
	copy(out, r.pages)
	return out
}

// Get returns the page registered under route
func (r *Registry) Get(route string) (*Page, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byRoute[normalizeRoute(route)]
	return p, ok
}

// Lookup resolves a request path, ignoring a trailing slash
func (r *Registry) Lookup(requestPath string) (*Page, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.byPath[requestPath]; ok {
		return p, true
	}
	if requestPath+"/" == r.prefix {
		return r.byPath[r.prefix], r.byPath[r.prefix] != nil
	}
	p, ok := r.byPath[strings.TrimSuffix(requestPath, "/")]
	return p, ok
}

// Freeze stops further registration
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}
