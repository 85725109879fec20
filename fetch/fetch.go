package fetch

import (
	"context"
	"fmt"
	"net/url"
	"sort"
)

// Fetcher downloads the content at a URL into dest, or updates it if dest
// already holds an earlier download. The revision is a hint for fetchers of
// version-controlled content; others ignore it.
type Fetcher interface {
	Fetch(ctx context.Context, u *url.URL, dest, revision string) error
}

// FetcherFunc adapts a function to a Fetcher.
type FetcherFunc func(ctx context.Context, u *url.URL, dest, revision string) error

func (f FetcherFunc) Fetch(ctx context.Context, u *url.URL, dest, revision string) error {
	return f(ctx, u, dest, revision)
}

// SchemeFetcher is a Fetcher for a defined set of URL schemes.
type SchemeFetcher interface {
	Fetcher

	// Schemes returns the URL schemes this Fetcher supports.
	Schemes() []string
}

// WithSchemes returns a SchemeFetcher for the given schemes.
func WithSchemes(f Fetcher, schemes ...string) SchemeFetcher {
	return schemeFetcher{f, schemes}
}

type schemeFetcher struct {
	Fetcher
	schemes []string
}

func (f schemeFetcher) Schemes() []string {
	return f.schemes
}

// Mux dispatches fetches to the Fetcher registered for the URL's scheme.
// Mux is itself a SchemeFetcher, for the superset of all registered schemes.
type Mux map[string]Fetcher

var _ SchemeFetcher = (Mux)(nil)

// NewMux returns a Mux ready for use.
func NewMux() Mux {
	return Mux{}
}

// Add registers the given fetcher for its supported URL schemes. If any of
// its schemes are already registered, they will be overridden.
func (m Mux) Add(f SchemeFetcher) {
	for _, scheme := range f.Schemes() {
		m[scheme] = f
	}
}

// Schemes - implements SchemeFetcher
func (m Mux) Schemes() []string {
	schemes := make([]string, 0, len(m))
	for scheme := range m {
		schemes = append(schemes, scheme)
	}

	sort.Strings(schemes)

	return schemes
}

// Fetch - implements Fetcher
func (m Mux) Fetch(ctx context.Context, u *url.URL, dest, revision string) error {
	f, ok := m[u.Scheme]
	if !ok {
		return fmt.Errorf("no fetcher registered for scheme %q", u.Scheme)
	}

	return f.Fetch(ctx, u, dest, revision)
}

// Default returns a Mux with the file, http, https and ftp fetchers.
func Default() Mux {
	m := NewMux()
	m.Add(NewFileFetcher())
	m.Add(NewHTTPFetcher())
	m.Add(NewFTPFetcher())

	return m
}
