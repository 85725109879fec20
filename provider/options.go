package provider

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"
)

// FetchMode controls when remote templates are fetched.
type FetchMode int

const (
	// FetchUpdate fetches templates which are not cached, and updates those
	// which are.
	FetchUpdate FetchMode = iota

	// FetchIfAbsent fetches templates which are not cached, and uses cached
	// templates as they are.
	FetchIfAbsent

	// FetchNever uses cached templates as they are, and fails with
	// ErrNotCached otherwise.
	FetchNever
)

func (m FetchMode) String() string {
	switch m {
	case FetchUpdate:
		return "update"
	case FetchIfAbsent:
		return "if-absent"
	case FetchNever:
		return "never"
	default:
		return "unknown"
	}
}

// ParseFetchMode returns the fetch mode named s, as returned by
// FetchMode.String.
func ParseFetchMode(s string) (FetchMode, error) {
	for _, m := range []FetchMode{FetchUpdate, FetchIfAbsent, FetchNever} {
		if m.String() == s {
			return m, nil
		}
	}

	return 0, fmt.Errorf("unknown fetch mode %q", s)
}

// Option configures a Registry.
type Option interface {
	apply(*Registry)
}

type optionFunc func(*Registry)

func (o optionFunc) apply(r *Registry) {
	o(r)
}

// WithLogger sets the logger for debug messages about resolution. The
// default is the logrus standard logger.
func WithLogger(logger logrus.FieldLogger) Option {
	return optionFunc(func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	})
}

// WithTracerProvider specifies a tracer provider to use for creating a tracer.
// If none is specified, the global provider is used.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return optionFunc(func(r *Registry) {
		if tp != nil {
			r.tp = tp
		}
	})
}

// WithFetchModeDefault sets the fetch mode for resolutions which don't set
// one with WithFetchMode. The default is FetchUpdate.
func WithFetchModeDefault(mode FetchMode) Option {
	return optionFunc(func(r *Registry) {
		r.fetchMode = mode
	})
}

type resolveConfig struct {
	fetchMode *FetchMode
	revision  string
	directory string
	providers []string
}

// ResolveOption configures a single resolution.
type ResolveOption func(*resolveConfig)

// WithRevision selects a branch, tag or commit of a versioned template.
func WithRevision(revision string) ResolveOption {
	return func(c *resolveConfig) {
		c.revision = revision
	}
}

// WithDirectory selects a template in a subdirectory of the location.
func WithDirectory(dir string) ResolveOption {
	return func(c *resolveConfig) {
		c.directory = dir
	}
}

// WithProviders restricts resolution to the named providers.
func WithProviders(names ...string) ResolveOption {
	return func(c *resolveConfig) {
		c.providers = append(c.providers, names...)
	}
}

// WithFetchMode overrides the registry's fetch mode.
func WithFetchMode(mode FetchMode) ResolveOption {
	return func(c *resolveConfig) {
		c.fetchMode = &mode
	}
}
