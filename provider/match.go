package provider

import (
	"os"
	"slices"
	"strings"

	"github.com/cjolowicz/cutty-sub001/gitfs"
)

// A Matcher decides whether a provider can handle a location.
type Matcher func(loc Location) bool

// LocalDir matches existing local directories.
func LocalDir(loc Location) bool {
	if loc.Path == "" {
		return false
	}

	fi, err := os.Stat(loc.Path)

	return err == nil && fi.IsDir()
}

// LocalZip matches existing local files with a ".zip" suffix.
func LocalZip(loc Location) bool {
	if loc.Path == "" || !strings.EqualFold(suffix(loc.Path), ".zip") {
		return false
	}

	fi, err := os.Stat(loc.Path)

	return err == nil && fi.Mode().IsRegular()
}

func suffix(p string) string {
	if i := strings.LastIndexByte(p, '.'); i >= 0 {
		return p[i:]
	}

	return ""
}

// LocalGit matches local directories inside a git repository.
func LocalGit(loc Location) bool {
	if !LocalDir(loc) {
		return false
	}

	_, err := gitfs.Discover(loc.Path)

	return err == nil
}

// Scheme matches URLs with one of the given schemes. Locations without a
// scheme are file URLs. File URLs only match if the file exists. Locations
// given as filesystem paths never match.
func Scheme(names ...string) Matcher {
	return func(loc Location) bool {
		if loc.FromPath {
			return false
		}

		scheme := loc.URL.Scheme
		if scheme == "" {
			scheme = "file"
		}

		if !slices.Contains(names, scheme) {
			return false
		}

		return scheme != "file" || loc.Path != ""
	}
}

// PathSuffix matches locations whose URL path ends in s.
func PathSuffix(s string) Matcher {
	return func(loc Location) bool {
		return strings.HasSuffix(loc.URL.Path, s)
	}
}

// All matches locations matched by every one of ms.
func All(ms ...Matcher) Matcher {
	return func(loc Location) bool {
		for _, m := range ms {
			if !m(loc) {
				return false
			}
		}

		return true
	}
}

// Any matches locations matched by at least one of ms.
func Any(ms ...Matcher) Matcher {
	return func(loc Location) bool {
		for _, m := range ms {
			if m(loc) {
				return true
			}
		}

		return false
	}
}
