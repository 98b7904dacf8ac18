// Package fragments names the page content templates so page builders and
// the shell agree on them
package fragments

// Content templates rendered inside the shell
const (
	Shell        = "shell.html"
	EDA          = "eda.html"
	Landscape    = "landscape.html"
	Connectivity = "connectivity.html"
	Phylogeny    = "phylogeny.html"
	NotFound     = "not_found.html"
	ServerError  = "error.html"
)

// All lists every template the server must be able to execute
func All() []string {
	return []string{Shell, EDA, Landscape, Connectivity, Phylogeny, NotFound, ServerError}
}
