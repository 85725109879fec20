package provider

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/cjolowicz/cutty-sub001"
	"github.com/cjolowicz/cutty-sub001/cache"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/cjolowicz/cutty-sub001/provider"

// Registry resolves locations using an ordered list of providers, caching
// remote templates below a cache directory.
type Registry struct {
	cache     *cache.Cache
	logger    logrus.FieldLogger
	tp        trace.TracerProvider
	tracer    trace.Tracer
	providers []*Provider
	fetchMode FetchMode
}

// NewRegistry returns an empty registry caching templates below cacheRoot.
func NewRegistry(cacheRoot string, opts ...Option) *Registry {
	r := &Registry{
		cache:  cache.New(cacheRoot),
		logger: logrus.StandardLogger(),
	}

	for _, opt := range opts {
		opt.apply(r)
	}

	if r.tp == nil {
		r.tp = otel.GetTracerProvider()
	}

	r.tracer = r.tp.Tracer(tracerName)

	return r
}

// Add appends providers. Providers are tried in the order they were added.
// A provider replaces any earlier provider with the same name, taking its
// place in the order.
func (r *Registry) Add(providers ...*Provider) {
	for _, p := range providers {
		if i := r.index(p.Name); i >= 0 {
			r.providers[i] = p

			continue
		}

		r.providers = append(r.providers, p)
	}
}

func (r *Registry) index(name string) int {
	for i, p := range r.providers {
		if p.Name == name {
			return i
		}
	}

	return -1
}

// Providers returns the registered providers in order.
func (r *Registry) Providers() []*Provider {
	return append([]*Provider(nil), r.providers...)
}

// Lookup returns the provider with the given name.
func (r *Registry) Lookup(name string) (*Provider, bool) {
	if i := r.index(name); i >= 0 {
		return r.providers[i], true
	}

	return nil, false
}

// Cache returns the registry's cache.
func (r *Registry) Cache() *cache.Cache {
	return r.cache
}

// candidates returns the providers to try, in order, keeping only the named
// ones if names are given.
func (r *Registry) candidates(names []string) ([]*Provider, error) {
	if len(names) == 0 {
		return r.providers, nil
	}

	for _, name := range names {
		if r.index(name) < 0 {
			return nil, &UnknownProviderError{Name: name}
		}
	}

	providers := make([]*Provider, 0, len(names))

	for _, p := range r.providers {
		for _, name := range names {
			if p.Name == name {
				providers = append(providers, p)

				break
			}
		}
	}

	return providers, nil
}

// Resolve returns the template at location. The first provider matching the
// location fetches it, if it is remote, and mounts it.
//
// The returned package must be closed when no longer needed.
func (r *Registry) Resolve(ctx context.Context, location string, opts ...ResolveOption) (*Package, error) {
	cfg := resolveConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	mode := r.fetchMode
	if cfg.fetchMode != nil {
		mode = *cfg.fetchMode
	}

	ctx, span := r.tracer.Start(ctx, "cutty.Resolve", trace.WithAttributes(
		attribute.String("cutty.location", location),
		attribute.String("cutty.revision", cfg.revision),
		attribute.String("cutty.directory", cfg.directory),
		attribute.String("cutty.fetch_mode", mode.String()),
	))
	defer span.End()

	pkg, err := r.resolve(ctx, location, cfg, mode)
	if err != nil {
		return nil, recordError(span, err)
	}

	span.SetAttributes(attribute.String("cutty.package", pkg.Name))

	if pkg.Commit != nil {
		span.SetAttributes(attribute.String("cutty.commit", pkg.Commit.ID))
	}

	return pkg, nil
}

func (r *Registry) resolve(ctx context.Context, location string, cfg resolveConfig, mode FetchMode) (*Package, error) {
	loc, err := ParseLocation(location)
	if err != nil {
		return nil, err
	}

	providers, err := r.candidates(cfg.providers)
	if err != nil {
		return nil, err
	}

	var provider *Provider

	for _, p := range providers {
		if p.Match(loc) {
			provider = p

			break
		}
	}

	if provider == nil {
		return nil, &UnknownLocationError{Location: location, Local: loc.IsLocal() && loc.Path == ""}
	}

	trace.SpanFromContext(ctx).SetAttributes(attribute.String("cutty.provider", provider.Name))

	var tree cutty.Path

	if provider.IsRemote() {
		tree, err = r.fetchAndMount(ctx, provider, providers, loc, cfg.revision, mode)
	} else {
		r.logger.WithFields(logrus.Fields{
			"provider": provider.Name,
			"path":     loc.Path,
		}).Debug("mounting local template")

		tree, err = r.mount(ctx, provider, loc.Path, cfg.revision)
	}

	if err != nil {
		return nil, err
	}

	pkg := NewPackage(loc.Name(), tree)

	if cfg.directory == "" {
		return pkg, nil
	}

	sub, err := pkg.Descend(cfg.directory)
	if err != nil {
		_ = pkg.Close()

		return nil, err
	}

	return sub, nil
}

// fetchAndMount fetches loc into the cache as needed, and mounts it. If the
// cache entry was written by another of the candidate providers, that
// provider is used instead, so that a location keeps resolving the same way.
func (r *Registry) fetchAndMount(ctx context.Context, p *Provider, candidates []*Provider, loc Location, revision string, mode FetchMode) (cutty.Path, error) {
	entry, err := r.cache.Lookup(loc.URL)

	switch {
	case err == nil && entry.Provider != p.Name:
		for _, c := range candidates {
			if c.Name == entry.Provider && c.IsRemote() {
				r.logger.WithFields(logrus.Fields{
					"provider": c.Name,
					"matched":  p.Name,
					"url":      loc.URL.Redacted(),
				}).Debug("using provider recorded in cache")

				p = c

				break
			}
		}
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return cutty.Path{}, err
	}

	rel := p.Store(loc.URL)
	dest := r.cache.Path(rel)
	cached := r.cache.Exists(rel)

	log := r.logger.WithFields(logrus.Fields{
		"provider": p.Name,
		"url":      loc.URL.Redacted(),
		"dest":     dest,
		"revision": revision,
	})

	switch {
	case mode == FetchNever && !cached:
		return cutty.Path{}, fmt.Errorf("%s: %w", loc.URL.Redacted(), ErrNotCached)
	case mode == FetchNever, mode == FetchIfAbsent && cached:
		log.Debug("using cached template")
	default:
		log.WithField("cached", cached).Debug("fetching template")

		if err := r.fetch(ctx, p, loc, dest, revision); err != nil {
			return cutty.Path{}, err
		}

		if err := r.cache.Record(loc.URL, p.Name); err != nil {
			return cutty.Path{}, err
		}
	}

	log.Debug("mounting cached template")

	return r.mount(ctx, p, dest, revision)
}

func (r *Registry) fetch(ctx context.Context, p *Provider, loc Location, dest, revision string) error {
	ctx, span := r.tracer.Start(ctx, "cutty.Fetch", trace.WithAttributes(
		attribute.String("cutty.provider", p.Name),
		attribute.String("cutty.url", loc.URL.Redacted()),
		attribute.String("cutty.dest", dest),
	))
	defer span.End()

	return recordError(span, p.Fetcher.Fetch(ctx, loc.URL, dest, revision))
}

func (r *Registry) mount(ctx context.Context, p *Provider, path, revision string) (cutty.Path, error) {
	_, span := r.tracer.Start(ctx, "cutty.Mount", trace.WithAttributes(
		attribute.String("cutty.provider", p.Name),
		attribute.String("cutty.path", path),
		attribute.String("cutty.revision", revision),
	))
	defer span.End()

	tree, err := p.Mount(path, revision)
	if err != nil {
		return cutty.Path{}, recordError(span, err)
	}

	if c, ok := tree.Filesystem().(cutty.Committer); ok {
		span.SetAttributes(attribute.String("cutty.commit", c.Commit().ID))
	}

	return tree, nil
}

// recordError records err on the span and marks the span as failed.
func recordError(span trace.Span, err error) error {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	return err
}
