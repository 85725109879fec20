package cache

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/cjolowicz/cutty-sub001/internal/atomicfile"
	"gopkg.in/yaml.v3"
)

const entryFile = "entry.yaml"

// A Store maps a URL to the slash-separated location of its fetched content,
// relative to the cache root. It must return the same location for the same
// URL on every call.
type Store func(u *url.URL) string

// Key returns the name of the entry directory for u. Credentials and the
// fragment don't contribute to the key.
func Key(u *url.URL) string {
	v := *u
	v.Fragment = ""
	v.RawFragment = ""

	if v.User != nil {
		v.User = url.User(v.User.Username())
	}

	sum := sha256.Sum256([]byte(v.String()))

	return hex.EncodeToString(sum[:])[:16]
}

// segment returns the final non-empty segment of u's path, falling back to
// the host name, or to "template" for URLs with neither.
func segment(u *url.URL) string {
	p := strings.TrimRight(u.Path, "/")
	if p == "" {
		p = u.Opaque
	}

	if name := path.Base(p); name != "." && name != "/" && name != "" {
		return name
	}

	if u.Hostname() != "" {
		return u.Hostname()
	}

	return "template"
}

// DefaultStore stores content under the URL's final path segment.
func DefaultStore(u *url.URL) string {
	return path.Join(Key(u), segment(u))
}

// GitStore is DefaultStore with a ".git" suffix, so that mirrors are easy to
// tell apart from other entries.
func GitStore(u *url.URL) string {
	name := segment(u)
	if !strings.HasSuffix(name, ".git") {
		name += ".git"
	}

	return path.Join(Key(u), name)
}

// Entry is the metadata recorded for a fetched URL.
type Entry struct {
	Updated  time.Time `yaml:"updated"`
	URL      string    `yaml:"url"`
	Provider string    `yaml:"provider"`
}

// Cache is a cache directory. The zero value is not usable; Root must be set.
type Cache struct {
	Root string
}

// New returns a cache rooted at root.
func New(root string) *Cache {
	return &Cache{Root: root}
}

// Path returns the filesystem path of rel, a location returned by a Store.
func (c *Cache) Path(rel string) string {
	return filepath.Join(c.Root, filepath.FromSlash(rel))
}

func (c *Cache) entryPath(u *url.URL) string {
	return filepath.Join(c.Root, Key(u), entryFile)
}

// Lookup returns the metadata recorded for u. If nothing was recorded, the
// error satisfies errors.Is(err, fs.ErrNotExist).
func (c *Cache) Lookup(u *url.URL) (*Entry, error) {
	b, err := os.ReadFile(c.entryPath(u))
	if err != nil {
		return nil, err
	}

	entry := &Entry{}
	if err := yaml.Unmarshal(b, entry); err != nil {
		return nil, fmt.Errorf("parsing cache entry for %s: %w", u.Redacted(), err)
	}

	return entry, nil
}

// Record notes that provider fetched u just now.
func (c *Cache) Record(u *url.URL, provider string) error {
	entry := Entry{
		URL:      u.Redacted(),
		Provider: provider,
		Updated:  time.Now().UTC().Truncate(time.Second),
	}

	b, err := yaml.Marshal(&entry)
	if err != nil {
		return err
	}

	if err := atomicfile.Write(c.entryPath(u), bytes.NewReader(b), 0o644); err != nil {
		return fmt.Errorf("recording cache entry for %s: %w", u.Redacted(), err)
	}

	return nil
}

// Exists reports whether anything is stored at rel.
func (c *Cache) Exists(rel string) bool {
	_, err := os.Lstat(c.Path(rel))

	return !errors.Is(err, fs.ErrNotExist)
}
