/*
Package cache lays out the on-disk cache of fetched templates.

Every fetched URL owns one entry directory below the cache root, named by a
short hash of the URL. The entry holds the fetched content, under the URL's
final path segment, and a small metadata file recording which provider last
wrote it:

	<root>/
	  3f2a9c0e5b7d1a64/
	    entry.yaml
	    cookiecutter-pypackage.git/

Hashing the full URL keeps two repositories whose final segments collide,
such as https://example.com/a/template and https://example.com/b/template,
in separate entries.

Two processes fetching the same URL into the same cache concurrently are not
coordinated; the last writer wins.
*/
package cache
