package provider

import (
	"github.com/cjolowicz/cutty-sub001/cache"
	"github.com/cjolowicz/cutty-sub001/fetch"
)

// Provider resolves one kind of location. Local providers mount the location
// where it is; remote providers fetch it into the cache first.
type Provider struct {
	// Match decides whether the provider handles a location.
	Match Matcher

	// Fetcher fetches remote locations. It is nil for local providers.
	Fetcher fetch.Fetcher

	// Store locates fetched content in the cache.
	Store cache.Store

	// Mount returns the tree at a local path.
	Mount Mounter

	// Name identifies the provider, for filtering and in the cache.
	Name string
}

// Local returns a provider mounting local paths directly.
func Local(name string, match Matcher, mount Mounter) *Provider {
	return &Provider{Name: name, Match: match, Mount: mount}
}

// Remote returns a provider which fetches locations into the cache before
// mounting them. A nil store means cache.DefaultStore.
func Remote(name string, match Matcher, fetcher fetch.Fetcher, store cache.Store, mount Mounter) *Provider {
	if store == nil {
		store = cache.DefaultStore
	}

	return &Provider{Name: name, Match: match, Fetcher: fetcher, Store: store, Mount: mount}
}

// IsRemote reports whether the provider fetches its locations.
func (p *Provider) IsRemote() bool {
	return p.Fetcher != nil
}
