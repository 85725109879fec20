package provider

import (
	"errors"
	"fmt"
)

// ErrNotCached is returned when fetching is disabled and the template is not
// in the cache.
var ErrNotCached = errors.New("template is not in the cache")

// UnknownLocationError is returned when no provider handles a location.
type UnknownLocationError struct {
	Location string

	// Local is set when the location looked like a local path, but nothing
	// exists there.
	Local bool
}

func (e *UnknownLocationError) Error() string {
	if e.Local {
		return "no such file or directory: " + e.Location
	}

	return "unknown location " + e.Location
}

// UnknownProviderError is returned when a provider name given to
// WithProviders is not registered.
type UnknownProviderError struct {
	Name string
}

func (e *UnknownProviderError) Error() string {
	return fmt.Sprintf("unknown provider %q", e.Name)
}
