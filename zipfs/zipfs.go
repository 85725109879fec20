// Package zipfs provides a cutty.Filesystem for the entries of a ZIP archive.
//
// The archive's central directory is read when the filesystem is opened, so
// that corrupt archives are reported early. Entries are indexed into a tree on
// first use, and decompressed when read.
package zipfs

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/cjolowicz/cutty-sub001"
	"github.com/cjolowicz/cutty-sub001/internal"
	"github.com/klauspost/compress/zip"
)

// FS is a read-only view of a ZIP archive. Close releases the archive file
// when the FS was created with Open.
type FS struct {
	closer io.Closer
	root   *node
	files  []*zip.File
	once   sync.Once
}

var (
	_ cutty.Filesystem = (*FS)(nil)
	_ io.Closer        = (*FS)(nil)
)

type node struct {
	file     *zip.File
	children map[string]*node
	name     string
}

func (n *node) isDir() bool {
	return n.children != nil
}

// OpenError is returned when an archive can't be opened.
type OpenError struct {
	Err  error
	Path string
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("cannot open zip archive %s: %s", e.Path, e.Err)
}

func (e *OpenError) Unwrap() error {
	return e.Err
}

// Open opens the archive at the given path. The caller must Close the FS when
// done.
func Open(name string) (*FS, error) {
	rc, err := zip.OpenReader(name)
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return nil, &OpenError{Path: name, Err: err}
	}

	return &FS{closer: rc, files: rc.File}, nil
}

// New returns a filesystem for the archive read from r.
func New(r io.ReaderAt, size int64) (*FS, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return nil, &OpenError{Err: err}
	}

	return &FS{files: zr.File}, nil
}

// Close releases the archive. It is safe to call more than once.
func (f *FS) Close() error {
	if f.closer == nil {
		return nil
	}

	err := f.closer.Close()
	f.closer = nil

	return err
}

// index builds the tree of entries. Entries with names that aren't local
// (absolute, or containing "..") are skipped. Parent directories without
// entries of their own are created implicitly.
func (f *FS) index() *node {
	f.once.Do(func() {
		f.root = &node{children: map[string]*node{}}

		for _, file := range f.files {
			name := strings.TrimSuffix(file.Name, "/")

			// archivers run as "zip -r x.zip ." write names like "./a.txt"
			for strings.HasPrefix(name, "./") {
				name = name[2:]
			}

			if name == "" || name == "." || !internal.ValidPath(name) {
				continue
			}

			parent := f.root
			parts := strings.Split(name, "/")

			for _, part := range parts[:len(parts)-1] {
				child, ok := parent.children[part]
				if !ok {
					child = &node{name: part, children: map[string]*node{}}
					parent.children[part] = child
				} else if !child.isDir() {
					// a file shadowed by a directory of the same name
					child.file = nil
					child.children = map[string]*node{}
				}

				parent = child
			}

			base := parts[len(parts)-1]

			n, ok := parent.children[base]
			if !ok {
				n = &node{name: base}
				parent.children[base] = n
			}

			n.file = file

			if strings.HasSuffix(file.Name, "/") || file.Mode().IsDir() {
				if n.children == nil {
					n.children = map[string]*node{}
				}
			}
		}
	})

	return f.root
}

// raw looks up nodes without following symbolic links, for use with
// cutty.ResolveLinks.
type raw struct{ f *FS }

func (r raw) Lstat(p cutty.PurePath) (fs.FileInfo, error) {
	n, err := r.f.node("lstat", p)
	if err != nil {
		return nil, err
	}

	return info(p.Name(), n), nil
}

func (r raw) Readlink(p cutty.PurePath) (string, error) {
	n, err := r.f.node("readlink", p)
	if err != nil {
		return "", err
	}

	if n.isDir() || n.file == nil || n.file.Mode()&fs.ModeSymlink == 0 {
		return "", cutty.PathError("readlink", p, cutty.ErrNotASymlink)
	}

	b, err := read(n.file)
	if err != nil {
		return "", cutty.PathError("readlink", p, err)
	}

	return string(b), nil
}

func (f *FS) node(op string, p cutty.PurePath) (*node, error) {
	n := f.index()

	for _, name := range p.Parts() {
		if !n.isDir() {
			return nil, cutty.PathError(op, p, fs.ErrNotExist)
		}

		child, ok := n.children[name]
		if !ok {
			return nil, cutty.PathError(op, p, fs.ErrNotExist)
		}

		n = child
	}

	return n, nil
}

func (f *FS) resolved(op string, p cutty.PurePath) (*node, error) {
	rp, err := cutty.ResolveLinks(raw{f}, p)
	if err != nil {
		return nil, err
	}

	return f.node(op, rp)
}

func info(name string, n *node) fs.FileInfo {
	if name == "" {
		name = "."
	}

	if n.isDir() {
		var modTime time.Time
		if n.file != nil {
			modTime = n.file.Modified
		}

		return internal.DirInfo(name, modTime)
	}

	mode := n.file.Mode()
	if mode.Type() == 0 {
		// mounted archives are read-only
		mode &^= 0o222
	}

	return internal.FileInfo(name, int64(n.file.UncompressedSize64), mode, n.file.Modified)
}

func read(file *zip.File) ([]byte, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, err
	}

	defer rc.Close()

	return io.ReadAll(rc)
}

func (f *FS) Stat(p cutty.PurePath) (fs.FileInfo, error) {
	n, err := f.resolved("stat", p)
	if err != nil {
		return nil, err
	}

	return info(p.Name(), n), nil
}

func (f *FS) Lstat(p cutty.PurePath) (fs.FileInfo, error) {
	n, err := f.linkNode("lstat", p)
	if err != nil {
		return nil, err
	}

	return info(p.Name(), n), nil
}

// linkNode returns the node at p, following symbolic links in all components
// except the last.
func (f *FS) linkNode(op string, p cutty.PurePath) (*node, error) {
	if p.IsRoot() {
		return f.index(), nil
	}

	parent, err := cutty.ResolveLinks(raw{f}, p.Parent())
	if err != nil {
		return nil, err
	}

	child, err := parent.Join(p.Name())
	if err != nil {
		return nil, err
	}

	n, err := f.node(op, child)
	if err != nil {
		return nil, cutty.PathError(op, p, fs.ErrNotExist)
	}

	return n, nil
}

func (f *FS) Iterdir(p cutty.PurePath) iter.Seq2[string, error] {
	n, err := f.resolved("readdir", p)
	if err != nil {
		return cutty.ErrorSeq(err)
	}

	if !n.isDir() {
		return cutty.ErrorSeq(cutty.PathError("readdir", p, cutty.ErrNotADirectory))
	}

	names := make([]string, 0, len(n.children))
	for name := range n.children {
		names = append(names, name)
	}

	slices.Sort(names)

	return cutty.NameSeq(names)
}

func (f *FS) ReadBytes(p cutty.PurePath) ([]byte, error) {
	n, err := f.resolved("read", p)
	if err != nil {
		return nil, err
	}

	if n.isDir() {
		return nil, cutty.PathError("read", p, cutty.ErrNotAFile)
	}

	b, err := read(n.file)
	if err != nil {
		return nil, cutty.PathError("read", p, err)
	}

	return b, nil
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

// Access reports read permission for every entry, and execute permission for
// directories and entries with an execute bit. Nothing is writable.
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

