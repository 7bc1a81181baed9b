package timezones

import (
	"net/http"
	"strings"

	"github.com/goliatone/go-formruntime/pkg/dataview"
)

// Component bundles the timezone handler, its configuration, and the
// dataview source that points selects at it.
type Component struct {
	opts Options
}

// New constructs a component with default options plus any overrides.
func New(fns ...OptionFn) *Component {
	return &Component{opts: NewOptions(fns...)}
}

// Options returns a copy of the component configuration.
func (c *Component) Options() Options {
	if c == nil {
		return DefaultOptions()
	}
	return c.opts
}

// Handler returns the component's HTTP handler.
func (c *Component) Handler() http.Handler {
	if c == nil {
		return Handler()
	}
	return HandlerWithOptions(c.opts)
}

// RegisterRoutes mounts the handler on mux under the configured base path
// and returns the mounted path.
func (c *Component) RegisterRoutes(mux Mux) (string, error) {
	opts := c.Options()
	return registerRoutes(mux, opts)
}

// Source builds the dataview source a select component stores in its
// options prop. baseURL is the server origin, e.g. "https://api.example.com".
func (c *Component) Source(baseURL string) dataview.Source {
	opts := c.Options()
	return dataview.Source{
		Name: "timezones",
		URL:  strings.TrimRight(baseURL, "/") + opts.BasePath,
	}
}
