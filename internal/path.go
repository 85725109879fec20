package internal

import (
	"io/fs"
	"net/url"
	"path/filepath"
	"strings"
)

// ValidPath reports whether name is valid for fs.FS operations and contains
// no backslashes, which would be taken for separators on Windows.
func ValidPath(name string) bool {
	if strings.Contains(name, "\\") {
		return false
	}

	return fs.ValidPath(name)
}

// FileURLPath returns the local filesystem path for a file: URL path and
// host. Supports Windows drive letters and UNC hosts.
func FileURLPath(host, urlPath string) string {
	if urlPath == "" {
		return ""
	}

	rootPath := urlPath
	if len(rootPath) >= 3 {
		if rootPath[0] == '/' && rootPath[2] == ':' {
			rootPath = rootPath[1:]
		}
	}

	// a file:// URL with a host part should be interpreted as a UNC
	switch host {
	case ".":
		rootPath = "//./" + rootPath
	case "", "localhost":
		// nothin'
	default:
		rootPath = "//" + host + rootPath
	}

	return rootPath
}

// FileURL returns the file: URL for an absolute local path.
func FileURL(path string) *url.URL {
	p := filepath.ToSlash(path)
	if !strings.HasPrefix(p, "/") {
		// Windows drive letter
		p = "/" + p
	}

	return &url.URL{Scheme: "file", Path: p}
}
