// Package dictfs provides an in-memory cutty.Filesystem built from nested
// maps, for composing synthetic trees without any I/O.
package dictfs

import (
	"fmt"
	"io/fs"
	"iter"
	"slices"
	"time"

	"github.com/cjolowicz/cutty-sub001"
	"github.com/cjolowicz/cutty-sub001/internal"
)

// Executable is the content of a file with execute permission.
type Executable string

// Symlink is a symbolic link to the given slash-separated target, relative to
// the directory containing the link.
type Symlink string

// FS is a tree of nested map[string]any values. Leaves are files (string,
// []byte or Executable) or symbolic links (Symlink).
//
// The tree is not copied, and must not be modified while the FS is in use.
type FS struct {
	root map[string]any
}

var _ cutty.Filesystem = (*FS)(nil)

// New returns a filesystem for the given tree. A nil tree is an empty
// directory.
func New(tree map[string]any) *FS {
	if tree == nil {
		tree = map[string]any{}
	}

	return &FS{root: tree}
}

// raw looks up nodes without following symbolic links, for use with
// cutty.ResolveLinks.
type raw struct{ f *FS }

func (r raw) Lstat(p cutty.PurePath) (fs.FileInfo, error) {
	n, err := r.f.node("lstat", p)
	if err != nil {
		return nil, err
	}

	return info(p.Name(), n)
}

func (r raw) Readlink(p cutty.PurePath) (string, error) {
	n, err := r.f.node("readlink", p)
	if err != nil {
		return "", err
	}

	target, ok := n.(Symlink)
	if !ok {
		return "", cutty.PathError("readlink", p, cutty.ErrNotASymlink)
	}

	return string(target), nil
}

// node walks p component by component.
func (f *FS) node(op string, p cutty.PurePath) (any, error) {
	var n any = f.root

	for _, name := range p.Parts() {
		dir, ok := n.(map[string]any)
		if !ok {
			return nil, cutty.PathError(op, p, fs.ErrNotExist)
		}

		n, ok = dir[name]
		if !ok {
			return nil, cutty.PathError(op, p, fs.ErrNotExist)
		}
	}

	return n, nil
}

// resolved returns the node at p, following symbolic links.
func (f *FS) resolved(op string, p cutty.PurePath) (any, cutty.PurePath, error) {
	rp, err := cutty.ResolveLinks(raw{f}, p)
	if err != nil {
		return nil, rp, err
	}

	n, err := f.node(op, rp)

	return n, rp, err
}

func info(name string, n any) (fs.FileInfo, error) {
	if name == "" {
		name = "."
	}

	switch v := n.(type) {
	case map[string]any:
		return internal.DirInfo(name, time.Time{}), nil
	case string:
		return internal.FileInfo(name, int64(len(v)), 0o444, time.Time{}), nil
	case []byte:
		return internal.FileInfo(name, int64(len(v)), 0o444, time.Time{}), nil
	case Executable:
		return internal.FileInfo(name, int64(len(v)), 0o555, time.Time{}), nil
	case Symlink:
		return internal.FileInfo(name, int64(len(v)), fs.ModeSymlink|0o777, time.Time{}), nil
	default:
		return nil, &fs.PathError{Op: "stat", Path: name, Err: fmt.Errorf("%w: unsupported node type %T", fs.ErrInvalid, n)}
	}
}

func (f *FS) Stat(p cutty.PurePath) (fs.FileInfo, error) {
	n, _, err := f.resolved("stat", p)
	if err != nil {
		return nil, err
	}

	return info(p.Name(), n)
}

func (f *FS) Lstat(p cutty.PurePath) (fs.FileInfo, error) {
	if p.IsRoot() {
		return info("", f.root)
	}

	parent, err := cutty.ResolveLinks(raw{f}, p.Parent())
	if err != nil {
		return nil, err
	}

	child, err := parent.Join(p.Name())
	if err != nil {
		return nil, err
	}

	n, err := f.node("lstat", child)
	if err != nil {
		return nil, cutty.PathError("lstat", p, fs.ErrNotExist)
	}

	return info(p.Name(), n)
}

func (f *FS) Iterdir(p cutty.PurePath) iter.Seq2[string, error] {
	n, _, err := f.resolved("readdir", p)
	if err != nil {
		return cutty.ErrorSeq(err)
	}

	dir, ok := n.(map[string]any)
	if !ok {
		return cutty.ErrorSeq(cutty.PathError("readdir", p, cutty.ErrNotADirectory))
	}

	names := make([]string, 0, len(dir))
	for name := range dir {
		names = append(names, name)
	}

	slices.Sort(names)

	return cutty.NameSeq(names)
}

func (f *FS) ReadBytes(p cutty.PurePath) ([]byte, error) {
	n, _, err := f.resolved("read", p)
	if err != nil {
		return nil, err
	}

	switch v := n.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return slices.Clone(v), nil
	case Executable:
		return []byte(v), nil
	default:
		return nil, cutty.PathError("read", p, cutty.ErrNotAFile)
	}
}

func (f *FS) Readlink(p cutty.PurePath) (string, error) {
	if p.IsRoot() {
		return "", cutty.PathError("readlink", p, cutty.ErrNotASymlink)
	}

	parent, err := cutty.ResolveLinks(raw{f}, p.Parent())
	if err != nil {
		return "", err
	}

	child, err := parent.Join(p.Name())
	if err != nil {
		return "", err
	}

	return raw{f}.Readlink(child)
}

// Access reports read and execute permission. Executable files and
// directories are executable; nothing is writable.
func (f *FS) Access(p cutty.PurePath, mode cutty.AccessMode) bool {
	fi, err := f.Stat(p)
	if err != nil {
		return false
	}

	if mode&cutty.AccessWrite != 0 {
		return false
	}

	if mode&cutty.AccessExecute != 0 && fi.Mode().Perm()&0o111 == 0 {
		return false
	}

	return true
}
