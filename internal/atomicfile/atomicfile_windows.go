package atomicfile

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Write streams r into a temporary file next to path, and renames it into
// place once complete.
func Write(path string, r io.Reader, perm fs.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*")
	if err != nil {
		return err
	}

	defer os.Remove(f.Name())

	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()

		return err
	}

	if err := f.Close(); err != nil {
		return err
	}

	if err := os.Chmod(f.Name(), perm); err != nil {
		return err
	}

	return os.Rename(f.Name(), path)
}
