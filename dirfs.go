package cutty

import (
	"bytes"
	"io"
	"io/fs"
	"slices"
	"strings"

	"github.com/cjolowicz/cutty-sub001/internal"
)

type dirFS struct {
	root Path
}

// DirFS returns an fs.FS for the tree rooted at p, for use with the io/fs
// helpers (fs.WalkDir, fs.ReadFile, fstest.TestFS, ...). Symbolic links are
// followed by Open, ReadFile and Stat.
func DirFS(p Path) fs.FS {
	return &dirFS{root: p}
}

var (
	_ fs.FS         = (*dirFS)(nil)
	_ fs.ReadDirFS  = (*dirFS)(nil)
	_ fs.ReadFileFS = (*dirFS)(nil)
	_ fs.StatFS     = (*dirFS)(nil)
	_ fs.SubFS      = (*dirFS)(nil)
)

func (f *dirFS) lookup(op, name string) (PurePath, error) {
	if !internal.ValidPath(name) {
		return PurePath{}, &fs.PathError{Op: op, Path: name, Err: fs.ErrInvalid}
	}

	rel, err := ParsePurePath(name)
	if err != nil {
		return PurePath{}, &fs.PathError{Op: op, Path: name, Err: fs.ErrInvalid}
	}

	return f.root.pure.JoinPath(rel), nil
}

// rename wraps err so it refers to name rather than the full path.
func rename(err error, name string) error {
	if pe, ok := err.(*fs.PathError); ok {
		return &fs.PathError{Op: pe.Op, Path: name, Err: pe.Err}
	}

	return err
}

func (f *dirFS) Open(name string) (fs.File, error) {
	p, err := f.lookup("open", name)
	if err != nil {
		return nil, err
	}

	fi, err := f.root.fsys.Stat(p)
	if err != nil {
		return nil, rename(err, name)
	}

	fi = internal.RenamedFileInfo(fi, base(name))

	if fi.IsDir() {
		return &dirFile{fsys: f.root.fsys, path: p, fi: fi}, nil
	}

	b, err := f.root.fsys.ReadBytes(p)
	if err != nil {
		return nil, rename(err, name)
	}

	return &file{Reader: bytes.NewReader(b), fi: fi}, nil
}

func (f *dirFS) Stat(name string) (fs.FileInfo, error) {
	p, err := f.lookup("stat", name)
	if err != nil {
		return nil, err
	}

	fi, err := f.root.fsys.Stat(p)
	if err != nil {
		return nil, rename(err, name)
	}

	return internal.RenamedFileInfo(fi, base(name)), nil
}

func (f *dirFS) ReadFile(name string) ([]byte, error) {
	p, err := f.lookup("read", name)
	if err != nil {
		return nil, err
	}

	b, err := f.root.fsys.ReadBytes(p)
	if err != nil {
		return nil, rename(err, name)
	}

	return b, nil
}

func (f *dirFS) ReadDir(name string) ([]fs.DirEntry, error) {
	p, err := f.lookup("readdir", name)
	if err != nil {
		return nil, err
	}

	entries, err := readDir(f.root.fsys, p)
	if err != nil {
		return nil, rename(err, name)
	}

	return entries, nil
}

func (f *dirFS) Sub(dir string) (fs.FS, error) {
	p, err := f.lookup("sub", dir)
	if err != nil {
		return nil, err
	}

	return &dirFS{root: Path{fsys: f.root.fsys, pure: p}}, nil
}

func base(name string) string {
	if i := strings.LastIndex(name, "/"); i >= 0 {
		return name[i+1:]
	}

	return name
}

// readDir lists the directory p, sorted by name.
func readDir(fsys Filesystem, p PurePath) ([]fs.DirEntry, error) {
	var entries []fs.DirEntry

	for name, err := range fsys.Iterdir(p) {
		if err != nil {
			return nil, err
		}

		child, err := p.Join(name)
		if err != nil {
			return nil, err
		}

		fi, err := fsys.Lstat(child)
		if err != nil {
			return nil, err
		}

		entries = append(entries, internal.FileInfoDirEntry(internal.RenamedFileInfo(fi, name)))
	}

	slices.SortFunc(entries, func(a, b fs.DirEntry) int {
		return strings.Compare(a.Name(), b.Name())
	})

	return entries, nil
}

type file struct {
	*bytes.Reader
	fi fs.FileInfo
}

var (
	_ fs.File     = (*file)(nil)
	_ io.ReaderAt = (*file)(nil)
	_ io.Seeker   = (*file)(nil)
)

func (f *file) Stat() (fs.FileInfo, error) { return f.fi, nil }
func (f *file) Close() error               { return nil }

type dirFile struct {
	fsys    Filesystem
	fi      fs.FileInfo
	path    PurePath
	entries []fs.DirEntry
	diroff  int
	read    bool
}

var _ fs.ReadDirFile = (*dirFile)(nil)

func (d *dirFile) Stat() (fs.FileInfo, error) { return d.fi, nil }
func (d *dirFile) Close() error               { return nil }

func (d *dirFile) Read(_ []byte) (int, error) {
	return 0, &fs.PathError{Op: "read", Path: d.fi.Name(), Err: ErrNotAFile}
}

// ReadDir follows the fs.ReadDirFile contract: with n > 0 at most n entries
// are returned and io.EOF marks the end of the directory; with n <= 0 all
// remaining entries are returned.
func (d *dirFile) ReadDir(n int) ([]fs.DirEntry, error) {
	if !d.read {
		entries, err := readDir(d.fsys, d.path)
		if err != nil {
			return nil, err
		}

		d.entries = entries
		d.read = true
	}

	if n > 0 && d.diroff >= len(d.entries) {
		return nil, io.EOF
	}

	low := d.diroff
	high := d.diroff + n

	// clamp high at the max, and ensure it's higher than low
	if high >= len(d.entries) || high <= low {
		high = len(d.entries)
	}

	d.diroff = high

	return slices.Clone(d.entries[low:high]), nil
}
