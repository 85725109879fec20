package gitfs

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"path/filepath"
	"slices"
	"sync"

	"github.com/cjolowicz/cutty-sub001"
	"github.com/cjolowicz/cutty-sub001/internal"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/filesystem"
)

// OpenError is returned when a repository can't be opened.
type OpenError struct {
	Err  error
	Path string
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("cannot open git repository at %s: %s", e.Path, e.Err)
}

func (e *OpenError) Unwrap() error {
	return e.Err
}

// RevisionError is returned when a revision can't be resolved to a commit.
type RevisionError struct {
	Err      error
	Revision string
}

func (e *RevisionError) Error() string {
	return fmt.Sprintf("cannot resolve revision %q: %s", e.Revision, e.Err)
}

func (e *RevisionError) Unwrap() error {
	return e.Err
}

// FS is the tree of a commit in a git repository. All reads go through the
// object database; no work tree is checked out, and uncommitted changes are
// not visible.
type FS struct {
	repo   *git.Repository
	tree   *object.Tree
	commit *cutty.Commit

	// guards the subtree cache in tree
	mu sync.Mutex
}

var (
	_ cutty.Filesystem = (*FS)(nil)
	_ cutty.Committer  = (*FS)(nil)
	_ io.Closer        = (*FS)(nil)
)

// Open opens the repository at path, which may be a bare repository or a work
// tree, and returns the tree at revision. An empty revision means HEAD.
func Open(path, revision string) (*FS, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return nil, &OpenError{Path: path, Err: err}
	}

	return New(repo, revision)
}

// Discover finds the repository containing path, searching parent directories,
// and returns the directory at its root: the work tree, or the repository
// itself if it is bare.
func Discover(path string) (string, error) {
	// Detection only looks for .git directories, so bare repositories are
	// tried as they are first.
	repo, err := git.PlainOpen(path)
	if err != nil {
		repo, err = git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	}

	if err != nil {
		return "", &OpenError{Path: path, Err: err}
	}

	if wt, err := repo.Worktree(); err == nil {
		return wt.Filesystem.Root(), nil
	}

	if s, ok := repo.Storer.(*filesystem.Storage); ok {
		return s.Filesystem().Root(), nil
	}

	return "", &OpenError{Path: path, Err: errors.New("repository has no directory")}
}

// Mount discovers the repository containing path and returns the directory
// corresponding to path in the tree at revision. The Path's Filesystem is an
// *FS.
func Mount(path, revision string) (cutty.Path, error) {
	root, err := Discover(path)
	if err != nil {
		return cutty.Path{}, err
	}

	fsys, err := Open(root, revision)
	if err != nil {
		return cutty.Path{}, err
	}

	rel, err := relative(root, path)
	if err != nil {
		_ = fsys.Close()

		return cutty.Path{}, err
	}

	p := cutty.Root(fsys).JoinPath(rel)
	if !p.IsDir() {
		_ = fsys.Close()

		return cutty.Path{}, cutty.PathError("mount", rel, cutty.ErrNotADirectory)
	}

	return p, nil
}

// relative returns the location of path below root. Symbolic links are
// evaluated first, since discovery may have returned a resolved root.
func relative(root, path string) (cutty.PurePath, error) {
	if r, err := filepath.EvalSymlinks(root); err == nil {
		root = r
	}

	if p, err := filepath.EvalSymlinks(path); err == nil {
		path = p
	}

	rel, err := filepath.Rel(root, path)
	if err != nil {
		return cutty.PurePath{}, err
	}

	return cutty.ParsePurePath(filepath.ToSlash(rel))
}

// New returns the tree at revision in repo. An empty revision means HEAD.
func New(repo *git.Repository, revision string) (*FS, error) {
	hash, label, err := resolve(repo, revision)
	if err != nil {
		return nil, err
	}

	c, err := repo.CommitObject(hash)
	if err != nil {
		return nil, &RevisionError{Revision: revision, Err: err}
	}

	tree, err := c.Tree()
	if err != nil {
		return nil, &RevisionError{Revision: revision, Err: err}
	}

	return &FS{repo: repo, tree: tree, commit: commitInfo(c, label)}, nil
}

// resolve returns the commit for revision, and the revision to report: the
// revision itself, or for HEAD the short name of the current branch.
func resolve(repo *git.Repository, revision string) (plumbing.Hash, string, error) {
	if revision != "" {
		hash, err := repo.ResolveRevision(plumbing.Revision(revision))
		if err != nil {
			return plumbing.ZeroHash, "", &RevisionError{Revision: revision, Err: err}
		}

		return *hash, revision, nil
	}

	head, err := repo.Head()
	if err != nil {
		return plumbing.ZeroHash, "", &RevisionError{Revision: "HEAD", Err: err}
	}

	if head.Name().IsBranch() {
		return head.Hash(), head.Name().Short(), nil
	}

	return head.Hash(), head.Hash().String(), nil
}

func commitInfo(c *object.Commit, revision string) *cutty.Commit {
	return &cutty.Commit{
		ID:       c.Hash.String(),
		Revision: revision,
		Message:  c.Message,
		Author:   cutty.Signature{Name: c.Author.Name, Email: c.Author.Email},
		Date:     c.Author.When,
	}
}

// Commit returns the commit the tree belongs to.
func (f *FS) Commit() *cutty.Commit {
	c := *f.commit

	return &c
}

// Close releases the repository's open pack files.
func (f *FS) Close() error {
	if c, ok := f.repo.Storer.(io.Closer); ok {
		return c.Close()
	}

	return nil
}

// raw looks up entries without following symbolic links, for use with
// cutty.ResolveLinks.
type raw struct{ f *FS }

func (r raw) Lstat(p cutty.PurePath) (fs.FileInfo, error) {
	e, err := r.f.entry("lstat", p)
	if err != nil {
		return nil, err
	}

	return r.f.info(p.Name(), e)
}

func (r raw) Readlink(p cutty.PurePath) (string, error) {
	e, err := r.f.entry("readlink", p)
	if err != nil {
		return "", err
	}

	if e.Mode != filemode.Symlink {
		return "", cutty.PathError("readlink", p, cutty.ErrNotASymlink)
	}

	b, err := r.f.blob(e.Hash)
	if err != nil {
		return "", cutty.PathError("readlink", p, err)
	}

	return string(b), nil
}

// entry returns the tree entry at p. The root has no entry of its own, so a
// synthetic directory entry is returned for it.
func (f *FS) entry(op string, p cutty.PurePath) (*object.TreeEntry, error) {
	if p.IsRoot() {
		return &object.TreeEntry{Name: ".", Mode: filemode.Dir, Hash: f.tree.Hash}, nil
	}

	f.mu.Lock()
	e, err := f.tree.FindEntry(p.String())
	f.mu.Unlock()

	if err != nil {
		if errors.Is(err, object.ErrEntryNotFound) || errors.Is(err, object.ErrDirectoryNotFound) ||
			errors.Is(err, plumbing.ErrObjectNotFound) {
			return nil, cutty.PathError(op, p, fs.ErrNotExist)
		}

		return nil, cutty.PathError(op, p, err)
	}

	return e, nil
}

func (f *FS) resolved(op string, p cutty.PurePath) (*object.TreeEntry, error) {
	rp, err := cutty.ResolveLinks(raw{f}, p)
	if err != nil {
		return nil, err
	}

	return f.entry(op, rp)
}

func (f *FS) blob(h plumbing.Hash) ([]byte, error) {
	b, err := f.repo.BlobObject(h)
	if err != nil {
		return nil, err
	}

	rc, err := b.Reader()
	if err != nil {
		return nil, err
	}

	defer rc.Close()

	return io.ReadAll(rc)
}

// info describes an entry. Submodules appear as empty directories, as in a
// fresh checkout. The modification time of every entry is the commit date.
func (f *FS) info(name string, e *object.TreeEntry) (fs.FileInfo, error) {
	if name == "" {
		name = "."
	}

	modTime := f.commit.Date

	var mode fs.FileMode

	switch e.Mode {
	case filemode.Dir, filemode.Submodule:
		return internal.DirInfo(name, modTime), nil
	case filemode.Executable:
		mode = 0o555
	case filemode.Symlink:
		mode = fs.ModeSymlink | 0o777
	default:
		mode = 0o444
	}

	b, err := f.repo.BlobObject(e.Hash)
	if err != nil {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: err}
	}

	return internal.FileInfo(name, b.Size, mode, modTime), nil
}

func (f *FS) Stat(p cutty.PurePath) (fs.FileInfo, error) {
	e, err := f.resolved("stat", p)
	if err != nil {
		return nil, err
	}

	return f.info(p.Name(), e)
}

func (f *FS) Lstat(p cutty.PurePath) (fs.FileInfo, error) {
	e, err := f.linkEntry("lstat", p)
	if err != nil {
		return nil, err
	}

	return f.info(p.Name(), e)
}

// linkEntry returns the entry at p, following symbolic links in all
// components except the last.
func (f *FS) linkEntry(op string, p cutty.PurePath) (*object.TreeEntry, error) {
	if p.IsRoot() {
		return f.entry(op, p)
	}

	parent, err := cutty.ResolveLinks(raw{f}, p.Parent())
	if err != nil {
		return nil, err
	}

	child, err := parent.Join(p.Name())
	if err != nil {
		return nil, err
	}

	e, err := f.entry(op, child)
	if err != nil {
		return nil, cutty.PathError(op, p, fs.ErrNotExist)
	}

	return e, nil
}

func (f *FS) Iterdir(p cutty.PurePath) iter.Seq2[string, error] {
	e, err := f.resolved("readdir", p)
	if err != nil {
		return cutty.ErrorSeq(err)
	}

	switch e.Mode {
	case filemode.Submodule:
		return cutty.NameSeq(nil)
	case filemode.Dir:
	default:
		return cutty.ErrorSeq(cutty.PathError("readdir", p, cutty.ErrNotADirectory))
	}

	tree, err := f.repo.TreeObject(e.Hash)
	if err != nil {
		return cutty.ErrorSeq(cutty.PathError("readdir", p, err))
	}

	names := make([]string, 0, len(tree.Entries))
	for _, entry := range tree.Entries {
		names = append(names, entry.Name)
	}

	slices.Sort(names)

	return cutty.NameSeq(names)
}

func (f *FS) ReadBytes(p cutty.PurePath) ([]byte, error) {
	e, err := f.resolved("read", p)
	if err != nil {
		return nil, err
	}

	if e.Mode == filemode.Dir || e.Mode == filemode.Submodule {
		return nil, cutty.PathError("read", p, cutty.ErrNotAFile)
	}

	b, err := f.blob(e.Hash)
	if err != nil {
		return nil, cutty.PathError("read", p, err)
	}

	return b, nil
}

func (f *FS) Readlink(p cutty.PurePath) (string, error) {
	e, err := f.linkEntry("readlink", p)
	if err != nil {
		return "", err
	}

	if e.Mode != filemode.Symlink {
		return "", cutty.PathError("readlink", p, cutty.ErrNotASymlink)
	}

	b, err := f.blob(e.Hash)
	if err != nil {
		return "", cutty.PathError("readlink", p, err)
	}

	return string(b), nil
}

// Access reports read permission for every entry, and execute permission for
// directories and executable files. Nothing is writable.
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
