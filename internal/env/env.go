// Package env reads credentials from the environment.
package env

import (
	"io/fs"
	"os"
	"strings"
)

// Prefix marks variables which apply to this module only.
const Prefix = "CUTTY_"

// Secret returns the credential named by key. The prefixed variable
// (CUTTY_<key>) takes precedence over key itself. When a variable is unset
// but <name>_FILE is set, the secret is read from that file on fsys, with
// surrounding whitespace removed.
func Secret(fsys fs.FS, key string) string {
	for _, name := range []string{Prefix + key, key} {
		if val := lookup(fsys, name); val != "" {
			return val
		}
	}

	return ""
}

func lookup(fsys fs.FS, name string) string {
	if val := os.Getenv(name); val != "" {
		return val
	}

	p := os.Getenv(name + "_FILE")
	if p == "" {
		return ""
	}

	b, err := fs.ReadFile(fsys, strings.TrimPrefix(p, "/"))
	if err != nil {
		return ""
	}

	return strings.TrimSpace(string(b))
}
