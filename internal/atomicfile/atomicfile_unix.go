//go:build !windows

package atomicfile

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
)

// Write streams r into path, replacing any existing file atomically, so that
// an interrupted write never leaves a truncated file behind. Missing parent
// directories are created.
func Write(path string, r io.Reader, perm fs.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := renameio.NewPendingFile(path, renameio.WithTempDir(filepath.Dir(path)), renameio.WithPermissions(perm))
	if err != nil {
		return err
	}

	defer f.Cleanup()

	if _, err := io.Copy(f, r); err != nil {
		return err
	}

	return f.CloseAtomicallyReplace()
}
