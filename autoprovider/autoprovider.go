// Package autoprovider provides a registry with every provider supported by
// this module. Using this package will compile every backend and fetcher into
// the resulting binary; to support only some locations, build a
// provider.Registry instead.
package autoprovider

import (
	"context"

	"github.com/cjolowicz/cutty-sub001/cache"
	"github.com/cjolowicz/cutty-sub001/diskfs"
	"github.com/cjolowicz/cutty-sub001/fetch"
	"github.com/cjolowicz/cutty-sub001/gitfs"
	"github.com/cjolowicz/cutty-sub001/hgfs"
	"github.com/cjolowicz/cutty-sub001/provider"
	"github.com/cjolowicz/cutty-sub001/zipfs"
)

var (
	mountDir = provider.UnversionedMounter(func(path string) (*diskfs.FS, error) {
		return diskfs.New(path), nil
	})

	mountZip = provider.UnversionedMounter(zipfs.Open)
)

// Providers returns the providers in order of precedence:
//
//   - localzip: local zip archives
//   - localgit: local directories inside a git repository
//   - local: other local directories
//   - zip: zip archives at file, http, https and ftp URLs
//   - git: git repositories at file, git, http, https and ssh URLs, also
//     with a "git+" prefix
//   - hg: Mercurial repositories at file, http, https and ssh URLs, also
//     with an "hg+" prefix, if the hg executable is on the PATH
func Providers() []*provider.Provider {
	return providers(hgfs.Available())
}

func providers(hg bool) []*provider.Provider {
	ps := []*provider.Provider{
		provider.Local("localzip", provider.LocalZip, mountZip),
		provider.Local("localgit", provider.LocalGit, gitfs.Mount),
		provider.Local("local", provider.LocalDir, mountDir),
		provider.Remote("zip",
			provider.All(
				provider.Scheme("file", "http", "https", "ftp"),
				provider.PathSuffix(".zip"),
			),
			fetch.Default(), cache.DefaultStore, mountZip),
		provider.Remote("git",
			provider.Scheme(
				"file", "git", "http", "https", "ssh",
				"git+file", "git+http", "git+https", "git+ssh",
			),
			gitfs.NewFetcher(), cache.GitStore, gitfs.Mount),
	}

	if hg {
		ps = append(ps, provider.Remote("hg",
			provider.Scheme(
				"file", "http", "https", "ssh",
				"hg+file", "hg+http", "hg+https", "hg+ssh",
			),
			hgfs.NewClient(), cache.DefaultStore, hgfs.Mount))
	}

	return ps
}

// New returns a registry with every provider, caching below cacheRoot.
func New(cacheRoot string, opts ...provider.Option) *provider.Registry {
	r := provider.NewRegistry(cacheRoot, opts...)
	r.Add(Providers()...)

	return r
}

// Resolve resolves location with every provider, caching in the user's
// cache directory.
func Resolve(ctx context.Context, location string, opts ...provider.ResolveOption) (*provider.Package, error) {
	root, err := cache.DefaultRoot()
	if err != nil {
		return nil, err
	}

	return New(root).Resolve(ctx, location, opts...)
}
