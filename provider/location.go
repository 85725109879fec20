package provider

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/cjolowicz/cutty-sub001/internal"
	homedir "github.com/mitchellh/go-homedir"
)

// Location is a parsed template location.
type Location struct {
	// URL is the location as a URL. Local paths are given as file URLs.
	URL *url.URL

	// Raw is the location as the user gave it.
	Raw string

	// Path is set if the location names an existing local file or
	// directory. It is an absolute path.
	Path string

	// FromPath is set when the location was given as a filesystem path
	// rather than as a URL. Such locations are left to local matchers.
	FromPath bool
}

// ParseLocation parses s, a local path or a URL. A leading "~" is expanded to
// the user's home directory. Strings which name an existing file or
// directory are always taken as local paths, even if they look like URLs.
func ParseLocation(s string) (Location, error) {
	if s == "" {
		return Location{}, errors.New("empty location")
	}

	expanded, err := homedir.Expand(s)
	if err != nil {
		return Location{}, fmt.Errorf("invalid location %q: %w", s, err)
	}

	if _, err := os.Stat(expanded); err == nil || !hasScheme(expanded) {
		abs, err := filepath.Abs(expanded)
		if err != nil {
			return Location{}, fmt.Errorf("invalid location %q: %w", s, err)
		}

		loc := Location{Raw: s, URL: internal.FileURL(abs), FromPath: true}
		if exists(abs) {
			loc.Path = abs
		}

		return loc, nil
	}

	u, err := url.Parse(s)
	if err != nil {
		return Location{}, fmt.Errorf("invalid location %q: %w", s, err)
	}

	loc := Location{Raw: s, URL: u}

	if u.Scheme == "file" {
		p := filepath.FromSlash(internal.FileURLPath(u.Host, u.Path))
		if exists(p) {
			loc.Path = p
		}
	}

	return loc, nil
}

// hasScheme reports whether s starts with something that looks like a URL
// scheme. Windows drive letters don't count.
func hasScheme(s string) bool {
	if filepath.VolumeName(s) != "" {
		return false
	}

	scheme, _, ok := strings.Cut(s, ":")
	if !ok || scheme == "" {
		return false
	}

	for i, c := range scheme {
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		case i > 0 && ('0' <= c && c <= '9' || c == '+' || c == '-' || c == '.'):
		default:
			return false
		}
	}

	return true
}

func exists(p string) bool {
	_, err := os.Stat(p)

	return err == nil
}

// IsLocal reports whether the location refers to the local filesystem,
// whether or not anything exists there.
func (l Location) IsLocal() bool {
	return l.Path != "" || l.URL.Scheme == "" || l.URL.Scheme == "file"
}

// Name returns the name of the template at the location: the final path
// segment without a ".git" or ".zip" suffix.
func (l Location) Name() string {
	var name string

	if l.Path != "" {
		name = filepath.Base(l.Path)
	} else {
		name = path.Base(strings.TrimRight(l.URL.Path, "/"))
	}

	for _, suffix := range []string{".git", ".zip"} {
		name = strings.TrimSuffix(name, suffix)
	}

	if name == "" || name == "." || name == "/" || name == string(filepath.Separator) {
		return l.URL.Hostname()
	}

	return name
}

func (l Location) String() string {
	return l.Raw
}
