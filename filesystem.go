package cutty

import (
	"errors"
	"io/fs"
	"iter"
	"path"
	"strings"
)

// Filesystem is a read-only view of a tree of files, such as a directory on
// disk, an archive, or a git tree at a given revision.
//
// Paths are interpreted relative to the root of the filesystem. Querying a
// path which doesn't exist is not a programming error: Stat and Lstat return
// an error wrapping fs.ErrNotExist, and the IsDir, IsFile and IsSymlink
// helpers report false.
type Filesystem interface {
	// Stat returns information about the file at p, following symbolic
	// links.
	Stat(p PurePath) (fs.FileInfo, error)

	// Lstat returns information about the file at p. If it is a symbolic
	// link, the link itself is described.
	Lstat(p PurePath) (fs.FileInfo, error)

	// Iterdir yields the names of the entries in the directory at p. The
	// sequence is lazy and may be ranged over more than once. If p is not a
	// directory, a single error is yielded.
	Iterdir(p PurePath) iter.Seq2[string, error]

	// ReadBytes returns the contents of the file at p, following symbolic
	// links. Reading a directory fails with ErrNotAFile.
	ReadBytes(p PurePath) ([]byte, error)

	// Readlink returns the target of the symbolic link at p.
	Readlink(p PurePath) (string, error)

	// Access reports whether all of the given access modes are available
	// for p. Mounted filesystems are read-only, so only the disk backend can
	// report AccessWrite.
	Access(p PurePath, mode AccessMode) bool
}

// PathComparer can be implemented by a Filesystem whose notion of path
// equality differs from comparing components byte by byte (for example, a
// case-insensitive disk).
type PathComparer interface {
	ComparePaths(a, b PurePath) int
}

// Committer is implemented by version-controlled filesystems that know which
// commit they were mounted at.
type Committer interface {
	Commit() *Commit
}

// AccessMode is a set of access permissions, as in access(2).
type AccessMode uint32

const (
	AccessExecute AccessMode = 1 << iota
	AccessWrite
	AccessRead
)

var (
	// ErrNotAFile is returned when reading something other than a regular
	// file, such as a directory.
	ErrNotAFile = errors.New("not a file")
	// ErrNotADirectory is returned when listing something other than a
	// directory.
	ErrNotADirectory = errors.New("not a directory")
	// ErrNotASymlink is returned by Readlink for other kinds of files.
	ErrNotASymlink = errors.New("not a symbolic link")
	// ErrLinkEscapesRoot is returned when a symbolic link points outside
	// of the filesystem.
	ErrLinkEscapesRoot = errors.New("symbolic link points outside the filesystem")
	// ErrTooManyLinks is returned when resolving a path encounters too many
	// symbolic links, usually because of a cycle.
	ErrTooManyLinks = errors.New("too many levels of symbolic links")
)

// maxLinkHops matches the usual SYMLOOP_MAX on Linux.
const maxLinkHops = 40

// IsDir reports whether p is a directory in fsys, following symbolic links.
func IsDir(fsys Filesystem, p PurePath) bool {
	fi, err := fsys.Stat(p)

	return err == nil && fi.IsDir()
}

// IsFile reports whether p is a regular file in fsys, following symbolic
// links.
func IsFile(fsys Filesystem, p PurePath) bool {
	fi, err := fsys.Stat(p)

	return err == nil && fi.Mode().IsRegular()
}

// IsSymlink reports whether p is a symbolic link in fsys.
func IsSymlink(fsys Filesystem, p PurePath) bool {
	fi, err := fsys.Lstat(p)

	return err == nil && fi.Mode()&fs.ModeSymlink != 0
}

// ComparePaths orders two paths of fsys, using the filesystem's own ordering
// if it implements PathComparer.
func ComparePaths(fsys Filesystem, a, b PurePath) int {
	if c, ok := fsys.(PathComparer); ok {
		return c.ComparePaths(a, b)
	}

	return a.Compare(b)
}

// PathError returns a *fs.PathError for p.
func PathError(op string, p PurePath, err error) error {
	return &fs.PathError{Op: op, Path: p.String(), Err: err}
}

// linker is the subset of Filesystem needed to resolve symbolic links.
type linker interface {
	Lstat(p PurePath) (fs.FileInfo, error)
	Readlink(p PurePath) (string, error)
}

// ResolveLinks returns p with every symbolic link among its components
// replaced by the link's target, for backends where links can only be
// resolved within the tree (archives, git trees, in-memory trees). Absolute
// targets and targets leaving the root fail with ErrLinkEscapesRoot.
// A missing component fails with the error returned by Lstat.
func ResolveLinks(fsys linker, p PurePath) (PurePath, error) {
	resolved := make([]string, 0, p.Len())
	pending := p.Parts()
	hops := 0

	for len(pending) > 0 {
		name := pending[0]
		pending = pending[1:]

		switch name {
		case "", ".":
			continue
		case "..":
			if len(resolved) == 0 {
				return PurePath{}, PathError("resolve", p, ErrLinkEscapesRoot)
			}

			resolved = resolved[:len(resolved)-1]

			continue
		}

		candidate := PurePath{parts: append(resolved[:len(resolved):len(resolved)], name)}

		fi, err := fsys.Lstat(candidate)
		if err != nil {
			return PurePath{}, err
		}

		if fi.Mode()&fs.ModeSymlink == 0 {
			resolved = candidate.parts

			continue
		}

		hops++
		if hops > maxLinkHops {
			return PurePath{}, PathError("resolve", p, ErrTooManyLinks)
		}

		target, err := fsys.Readlink(candidate)
		if err != nil {
			return PurePath{}, err
		}

		if path.IsAbs(target) {
			return PurePath{}, PathError("resolve", p, ErrLinkEscapesRoot)
		}

		pending = append(strings.Split(target, "/"), pending...)
	}

	return PurePath{parts: resolved}, nil
}

// ErrorSeq is an Iterdir result which yields only err.
func ErrorSeq(err error) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		yield("", err)
	}
}

// NameSeq is an Iterdir result which yields the given names.
func NameSeq(names []string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for _, name := range names {
			if !yield(name, nil) {
				return
			}
		}
	}
}
