package api

import "strings"

// Resolver computes the final request URL for a backend path. With a
// configured base URL the path is appended to it; without one the path is
// returned unchanged and resolves against the serving origin. Resolution
// never fails: an unset base is a valid state, not an error.
type Resolver struct {
	base string
}

func NewResolver(baseURL string) *Resolver {
	return &Resolver{base: strings.TrimSpace(baseURL)}
}

// Resolve is a pure function of the configured base and the given path.
func (r *Resolver) Resolve(path string) string {
	if r.base == "" {
		return path
	}
	return r.base + path
}
