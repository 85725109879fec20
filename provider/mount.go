package provider

import (
	"fmt"

	"github.com/cjolowicz/cutty-sub001"
)

// A Mounter returns the tree of the template fetched to path, at revision.
// An empty revision means the natural current state. If the Filesystem of the
// returned Path is an io.Closer, the caller closes it when done.
type Mounter func(path, revision string) (cutty.Path, error)

// UnsupportedRevisionError is returned when a revision is requested for a
// template which has none.
type UnsupportedRevisionError struct {
	Revision string
}

func (e *UnsupportedRevisionError) Error() string {
	return fmt.Sprintf("template does not support revisions, got %s", e.Revision)
}

// UnversionedMounter returns a Mounter for filesystems without revisions.
// Requesting a revision fails with an *UnsupportedRevisionError before open
// is called.
func UnversionedMounter[F cutty.Filesystem](open func(path string) (F, error)) Mounter {
	return func(path, revision string) (cutty.Path, error) {
		if revision != "" {
			return cutty.Path{}, &UnsupportedRevisionError{Revision: revision}
		}

		fsys, err := open(path)
		if err != nil {
			return cutty.Path{}, err
		}

		return cutty.Root(fsys), nil
	}
}
