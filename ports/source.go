package ports

import "context"

// Bundle lists the local files that hold one result set
type Bundle struct {
	Name       string
	TablePath  string
	ArrayPaths []string
	CardPath   string // optional markdown dataset card
}

// ArtifactSource makes a result set available on the local filesystem,
// downloading it first when it lives remotely.
type ArtifactSource interface {
	Fetch(ctx context.Context) (*Bundle, error)
	Kind() string
}
