package timezones

import (
	"fmt"
	"net/http"
)

// Mux is the subset of http.ServeMux routing this component needs; any
// router exposing Handle satisfies it.
type Mux interface {
	Handle(pattern string, handler http.Handler)
}

// RegisterRoutes mounts the default handler on mux under the default base
// path and returns the mounted path.
func RegisterRoutes(mux Mux) (string, error) {
	return registerRoutes(mux, DefaultOptions())
}

func registerRoutes(mux Mux, opts Options) (string, error) {
	if mux == nil {
		return "", fmt.Errorf("timezones: nil mux")
	}
	path := normalizeBasePath(opts.BasePath)
	mux.Handle(path, HandlerWithOptions(opts))
	return path, nil
}
