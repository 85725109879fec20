/*
Package provider resolves template locations into file trees.

A location is a local path or a URL. A [Registry] holds an ordered list of
[Provider]s; the first provider whose [Matcher] accepts the location handles
it. Local providers mount the location where it is. Remote providers fetch it
into the cache first, then mount the cached copy:

	reg := provider.NewRegistry(cacheRoot)
	reg.Add(
		provider.Local("local", provider.LocalDir, provider.UnversionedMounter(openDir)),
		provider.Remote("git", provider.Scheme("https"), gitfs.NewFetcher(), cache.GitStore, gitfs.Mount),
	)

	pkg, err := reg.Resolve(ctx, "https://example.com/template.git",
		provider.WithRevision("v1.0.0"))
	if err != nil {
		return err
	}
	defer pkg.Close()

Each cached location remembers the provider that fetched it. When several
providers match the same location, resolution sticks with the recorded one.

Fetching is synchronous. Resolutions of different locations may run
concurrently; resolutions of the same location into the same cache may not.
*/
package provider
