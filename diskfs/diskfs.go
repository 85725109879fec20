// Package diskfs provides a cutty.Filesystem for a directory on the local
// disk.
package diskfs

import (
	"errors"
	"io"
	"io/fs"
	"iter"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/cjolowicz/cutty-sub001"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
)

// FS is a pass-through to the OS filesystem below a base directory. Symbolic
// links are followed by the OS, and may point outside the base directory.
type FS struct {
	bfs  billy.Filesystem
	root string
	fold bool
}

var (
	_ cutty.Filesystem   = (*FS)(nil)
	_ cutty.PathComparer = (*FS)(nil)
)

// New returns a filesystem rooted at the given directory. On Windows and
// macOS, paths are compared case-insensitively.
func New(root string) *FS {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}

	return &FS{
		bfs:  osfs.New(root),
		root: root,
		fold: runtime.GOOS == "windows" || runtime.GOOS == "darwin",
	}
}

// Root returns the base directory.
func (f *FS) Root() string {
	return f.root
}

// Path returns the OS path for p.
func (f *FS) Path(p cutty.PurePath) string {
	return filepath.Join(append([]string{f.root}, p.Parts()...)...)
}

func name(p cutty.PurePath) string {
	return filepath.Join(p.Parts()...)
}

// wrap rewrites OS path errors to refer to p.
func wrap(op string, p cutty.PurePath, err error) error {
	var pe *fs.PathError
	if errors.As(err, &pe) {
		return cutty.PathError(op, p, pe.Err)
	}

	return cutty.PathError(op, p, err)
}

func (f *FS) Stat(p cutty.PurePath) (fs.FileInfo, error) {
	fi, err := f.bfs.Stat(name(p))
	if err != nil {
		return nil, wrap("stat", p, err)
	}

	return fi, nil
}

func (f *FS) Lstat(p cutty.PurePath) (fs.FileInfo, error) {
	fi, err := f.bfs.Lstat(name(p))
	if err != nil {
		return nil, wrap("lstat", p, err)
	}

	return fi, nil
}

// Iterdir lists the directory each time the sequence is ranged over.
func (f *FS) Iterdir(p cutty.PurePath) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		fi, err := f.Stat(p)
		if err != nil {
			yield("", err)

			return
		}

		if !fi.IsDir() {
			yield("", cutty.PathError("readdir", p, cutty.ErrNotADirectory))

			return
		}

		infos, err := f.bfs.ReadDir(name(p))
		if err != nil {
			yield("", wrap("readdir", p, err))

			return
		}

		for _, info := range infos {
			if !yield(info.Name(), nil) {
				return
			}
		}
	}
}

func (f *FS) ReadBytes(p cutty.PurePath) ([]byte, error) {
	fi, err := f.Stat(p)
	if err != nil {
		return nil, err
	}

	if fi.IsDir() {
		return nil, cutty.PathError("read", p, cutty.ErrNotAFile)
	}

	file, err := f.bfs.Open(name(p))
	if err != nil {
		return nil, wrap("read", p, err)
	}

	defer file.Close()

	b, err := io.ReadAll(file)
	if err != nil {
		return nil, wrap("read", p, err)
	}

	return b, nil
}

func (f *FS) Readlink(p cutty.PurePath) (string, error) {
	fi, err := f.Lstat(p)
	if err != nil {
		return "", err
	}

	if fi.Mode()&fs.ModeSymlink == 0 {
		return "", cutty.PathError("readlink", p, cutty.ErrNotASymlink)
	}

	target, err := f.bfs.Readlink(name(p))
	if err != nil {
		return "", wrap("readlink", p, err)
	}

	return filepath.ToSlash(target), nil
}

// Access reports whether the current user has the given permissions for p.
func (f *FS) Access(p cutty.PurePath, mode cutty.AccessMode) bool {
	return access(f.Path(p), mode)
}

// ComparePaths orders paths component by component, ignoring case where the
// OS does.
func (f *FS) ComparePaths(a, b cutty.PurePath) int {
	if !f.fold {
		return a.Compare(b)
	}

	fold := func(p cutty.PurePath) cutty.PurePath {
		parts := p.Parts()
		for i := range parts {
			parts[i] = strings.ToLower(parts[i])
		}

		q, _ := cutty.NewPurePath(parts...)

		return q
	}

	return fold(a).Compare(fold(b))
}
