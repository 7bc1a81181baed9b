package timezones

import (
	"strings"

	"github.com/rs/zerolog"
)

// DefaultLimit bounds unqualified handler responses.
const DefaultLimit = 50

// Options configure the component.
type Options struct {
	// Zones overrides the embedded zone list.
	Zones []string
	// Limit caps the number of matches a handler response carries. Zero
	// applies DefaultLimit; negative disables the cap.
	Limit int
	// BasePath is where RegisterRoutes mounts the handler.
	BasePath string
	// Logger receives handler warnings.
	Logger zerolog.Logger
}

// OptionFn mutates Options during construction.
type OptionFn func(*Options)

// DefaultOptions returns the baseline configuration.
func DefaultOptions() Options {
	return Options{
		Limit:    DefaultLimit,
		BasePath: "/timezones",
		Logger:   zerolog.Nop(),
	}
}

// NewOptions applies overrides to the defaults.
func NewOptions(fns ...OptionFn) Options {
	opts := DefaultOptions()
	for _, fn := range fns {
		if fn != nil {
			fn(&opts)
		}
	}
	if opts.Limit == 0 {
		opts.Limit = DefaultLimit
	}
	opts.BasePath = normalizeBasePath(opts.BasePath)
	return opts
}

// WithZones overrides the embedded zone list.
func WithZones(zones []string) OptionFn {
	return func(o *Options) { o.Zones = zones }
}

// WithLimit caps handler responses.
func WithLimit(limit int) OptionFn {
	return func(o *Options) { o.Limit = limit }
}

// WithBasePath sets the mount path for RegisterRoutes.
func WithBasePath(path string) OptionFn {
	return func(o *Options) { o.BasePath = path }
}

// WithLogger injects the handler logger.
func WithLogger(logger zerolog.Logger) OptionFn {
	return func(o *Options) { o.Logger = logger }
}

func normalizeBasePath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return "/timezones"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return strings.TrimRight(path, "/")
}
