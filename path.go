package cutty

import (
	"io/fs"
	"iter"
)

// Path is a PurePath bound to a Filesystem. Paths are cheap values: navigation
// returns new Paths referring to the same Filesystem, which they don't own.
type Path struct {
	fsys Filesystem
	pure PurePath
}

// NewPath returns the path made of the given components in fsys.
func NewPath(fsys Filesystem, parts ...string) (Path, error) {
	pure, err := NewPurePath(parts...)
	if err != nil {
		return Path{}, err
	}

	return Path{fsys: fsys, pure: pure}, nil
}

// Root returns the root path of fsys.
func Root(fsys Filesystem) Path {
	return Path{fsys: fsys}
}

// Filesystem returns the filesystem p is bound to.
func (p Path) Filesystem() Filesystem { return p.fsys }

// PurePath returns p without its filesystem.
func (p Path) PurePath() PurePath { return p.pure }

func (p Path) Parts() []string { return p.pure.Parts() }
func (p Path) Name() string    { return p.pure.Name() }
func (p Path) Stem() string    { return p.pure.Stem() }
func (p Path) Suffix() string  { return p.pure.Suffix() }
func (p Path) IsRoot() bool    { return p.pure.IsRoot() }
func (p Path) String() string  { return p.pure.String() }

// Join returns the path with the given components appended.
func (p Path) Join(parts ...string) (Path, error) {
	pure, err := p.pure.Join(parts...)
	if err != nil {
		return Path{}, err
	}

	return Path{fsys: p.fsys, pure: pure}, nil
}

// JoinPath returns the path with the components of q appended.
func (p Path) JoinPath(q PurePath) Path {
	return Path{fsys: p.fsys, pure: p.pure.JoinPath(q)}
}

// Parent returns the parent directory. The root is its own parent.
func (p Path) Parent() Path {
	return Path{fsys: p.fsys, pure: p.pure.Parent()}
}

func (p Path) IsDir() bool     { return IsDir(p.fsys, p.pure) }
func (p Path) IsFile() bool    { return IsFile(p.fsys, p.pure) }
func (p Path) IsSymlink() bool { return IsSymlink(p.fsys, p.pure) }

// Exists reports whether p exists, following symbolic links.
func (p Path) Exists() bool {
	_, err := p.fsys.Stat(p.pure)

	return err == nil
}

func (p Path) Stat() (fs.FileInfo, error)  { return p.fsys.Stat(p.pure) }
func (p Path) Lstat() (fs.FileInfo, error) { return p.fsys.Lstat(p.pure) }

// Iterdir yields the entries of the directory p.
func (p Path) Iterdir() iter.Seq2[Path, error] {
	return func(yield func(Path, error) bool) {
		for name, err := range p.fsys.Iterdir(p.pure) {
			if err != nil {
				yield(Path{}, err)

				return
			}

			child, err := p.Join(name)
			if !yield(child, err) || err != nil {
				return
			}
		}
	}
}

func (p Path) ReadBytes() ([]byte, error) { return p.fsys.ReadBytes(p.pure) }

// ReadText returns the contents of the file p as a string.
func (p Path) ReadText() (string, error) {
	b, err := p.fsys.ReadBytes(p.pure)
	if err != nil {
		return "", err
	}

	return string(b), nil
}

func (p Path) Readlink() (string, error)        { return p.fsys.Readlink(p.pure) }
func (p Path) Access(mode AccessMode) bool      { return p.fsys.Access(p.pure, mode) }
func (p Path) Relative(base Path) (string, bool) { return relative(p.pure, base.pure) }

// relative returns p as a slash-separated path relative to base, "." if they
// are equal.
func relative(p, base PurePath) (string, bool) {
	if !p.HasPrefix(base) {
		return "", false
	}

	return PurePath{parts: p.parts[len(base.parts):]}.String(), true
}

// Equal reports whether p and q are the same path on the same filesystem.
func (p Path) Equal(q Path) bool {
	return p.fsys == q.fsys && ComparePaths(p.fsys, p.pure, q.pure) == 0
}

// Compare orders p and q by their components. Paths on different filesystems
// are ordered by components only.
func (p Path) Compare(q Path) int {
	if p.fsys == q.fsys && p.fsys != nil {
		return ComparePaths(p.fsys, p.pure, q.pure)
	}

	return p.pure.Compare(q.pure)
}

// FS returns an fs.FS view of the tree rooted at p.
func (p Path) FS() fs.FS {
	return DirFS(p)
}
