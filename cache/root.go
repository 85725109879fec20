package cache

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	homedir "github.com/mitchellh/go-homedir"
)

// DefaultRoot returns the user's cache directory for templates:
// $CUTTY_CACHE_DIR if set, otherwise "cutty" in the XDG cache directory.
func DefaultRoot() (string, error) {
	if dir := os.Getenv("CUTTY_CACHE_DIR"); dir != "" {
		return homedir.Expand(dir)
	}

	return filepath.Join(xdg.CacheHome, "cutty"), nil
}
