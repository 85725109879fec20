package provider

import (
	"io"
	"path"
	"sync"

	"github.com/cjolowicz/cutty-sub001"
)

// Package is a resolved template: a named tree, and the commit it was taken
// from if the template is under version control.
type Package struct {
	// Tree is the root of the template.
	Tree cutty.Path

	// Commit is nil for templates without revisions.
	Commit *cutty.Commit

	release *release

	Name string
}

var _ io.Closer = (*Package)(nil)

// release closes a mounted filesystem once, for a package and every package
// descended from it.
type release struct {
	closer io.Closer
	err    error
	once   sync.Once
}

func (r *release) close() error {
	r.once.Do(func() {
		if r.closer != nil {
			r.err = r.closer.Close()
		}
	})

	return r.err
}

// NewPackage returns a package for the tree. Commit metadata is taken from
// the tree's filesystem if it has any.
func NewPackage(name string, tree cutty.Path) *Package {
	pkg := &Package{Name: name, Tree: tree, release: &release{}}

	fsys := tree.Filesystem()

	if c, ok := fsys.(cutty.Committer); ok {
		pkg.Commit = c.Commit()
	}

	if c, ok := fsys.(io.Closer); ok {
		pkg.release.closer = c
	}

	return pkg
}

// Descend returns the package rooted at dir, a slash-separated path relative
// to the package's tree. The new package is named after dir's final
// component, and shares the commit and the mounted filesystem with p.
func (p *Package) Descend(dir string) (*Package, error) {
	rel, err := cutty.ParsePurePath(path.Clean(dir))
	if err != nil {
		return nil, err
	}

	tree := p.Tree.JoinPath(rel)
	if !tree.IsDir() {
		return nil, cutty.PathError("descend", tree.PurePath(), cutty.ErrNotADirectory)
	}

	name := p.Name
	if !rel.IsRoot() {
		name = rel.Name()
	}

	return &Package{Name: name, Tree: tree, Commit: p.Commit, release: p.release}, nil
}

// Close releases the mounted filesystem, such as an open archive. Closing
// any of the packages sharing a filesystem releases it; further calls return
// the same result.
func (p *Package) Close() error {
	if p.release == nil {
		return nil
	}

	return p.release.close()
}
