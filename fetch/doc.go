// Package fetch downloads remote content into a local cache.
//
// A Fetcher writes the content at a URL to a destination path, replacing or
// updating whatever an earlier fetch left there. Fetchers for local files,
// HTTP and FTP are provided here; fetchers for version-controlled content
// live with the corresponding filesystems (see the gitfs and hgfs packages).
//
// Fetchers are registered with a Mux by URL scheme:
//
//	mux := fetch.NewMux()
//	mux.Add(fetch.NewHTTPFetcher().WithHeader(http.Header{"Authorization": {"Bearer t0ken"}}))
//	mux.Add(fetch.WithSchemes(gitfs.NewFetcher(), "git", "ssh"))
//
//	err := mux.Fetch(ctx, u, "/path/to/cache/entry", "")
//
// Downloads are written atomically where the platform allows: a failed
// download leaves the previous file in place.
package fetch
