package fetch

import (
	"context"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"

	"github.com/cjolowicz/cutty-sub001/internal"
	"github.com/otiai10/copy"
)

// FileFetcherError is returned when a local file or directory can't be
// copied.
type FileFetcherError struct {
	Err error
	URL string
}

func (e *FileFetcherError) Error() string {
	return fmt.Sprintf("cannot copy %s: %s", e.URL, e.Err)
}

func (e *FileFetcherError) Unwrap() error {
	return e.Err
}

// FileFetcher copies local files and directory trees. Every fetch replaces
// the destination entirely.
type FileFetcher struct{}

var _ SchemeFetcher = (*FileFetcher)(nil)

func NewFileFetcher() *FileFetcher {
	return &FileFetcher{}
}

func (*FileFetcher) Schemes() []string {
	return []string{"file"}
}

// Fetch copies the file or directory named by the URL to dest. Symbolic
// links within a copied tree are copied as links; a link given as the URL
// itself is followed.
func (*FileFetcher) Fetch(ctx context.Context, u *url.URL, dest, _ string) error {
	src := filepath.FromSlash(internal.FileURLPath(u.Host, u.Path))

	if err := copyPath(ctx, src, dest); err != nil {
		return &FileFetcherError{URL: u.Redacted(), Err: err}
	}

	return nil
}

func copyPath(ctx context.Context, src, dest string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := os.Stat(src); err != nil {
		return err
	}

	// a link given as the source itself is followed
	src, err := filepath.EvalSymlinks(src)
	if err != nil {
		return err
	}

	if err := os.RemoveAll(dest); err != nil {
		return err
	}

	return copy.Copy(src, dest, copy.Options{
		OnSymlink: func(string) copy.SymlinkAction {
			return copy.Shallow
		},
		PermissionControl: copy.PerservePermission,
		Skip: func(info os.FileInfo, _, _ string) (bool, error) {
			if err := ctx.Err(); err != nil {
				return false, err
			}

			// sockets, devices and pipes have no content to copy
			mode := info.Mode()

			return !mode.IsRegular() && !mode.IsDir() && mode&fs.ModeSymlink == 0, nil
		},
	})
}
