package gitfs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/cjolowicz/cutty-sub001/internal"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
)

// mirrorRefSpec fetches every ref, as configured by git clone --mirror.
const mirrorRefSpec = config.RefSpec("+refs/*:refs/*")

// FetchError is returned when a remote repository can't be cloned or
// fetched.
type FetchError struct {
	Err error
	URL string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("cannot access remote git repository at %s: %s", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Fetcher maintains bare mirrors of remote repositories. A mirror holds every
// branch and tag of the remote, so any revision can be mounted from it.
type Fetcher struct {
	auth     Authenticator
	progress io.Writer
}

// NewFetcher returns a Fetcher which authenticates with AutoAuthenticator.
func NewFetcher() *Fetcher {
	return &Fetcher{auth: AutoAuthenticator()}
}

// WithAuthenticator returns a copy of the Fetcher using auth.
func (f *Fetcher) WithAuthenticator(auth Authenticator) *Fetcher {
	if auth == nil {
		return f
	}

	fetcher := *f
	fetcher.auth = auth

	return &fetcher
}

// WithProgress returns a copy of the Fetcher reporting transfer progress to w.
func (f *Fetcher) WithProgress(w io.Writer) *Fetcher {
	fetcher := *f
	fetcher.progress = w

	return &fetcher
}

// Fetch mirrors the repository at u into dest. If dest already holds a
// repository, all refs are fetched, pruning refs deleted on the remote;
// otherwise the repository is cloned as a bare mirror. Valid schemes are
// "git", "file", "http", "https", "ssh", and the same prefixed with "git+".
//
// The revision is ignored: a mirror can resolve any revision.
func (f *Fetcher) Fetch(ctx context.Context, u *url.URL, dest, _ string) error {
	remote := remoteURL(u)

	if f.auth == nil {
		return &FetchError{URL: u.Redacted(), Err: errors.New("no auth method provided")}
	}

	authMethod, err := f.auth.Authenticate(remote)
	if err != nil {
		return &FetchError{URL: u.Redacted(), Err: err}
	}

	if _, err := os.Stat(dest); err == nil {
		return f.update(ctx, u, remote, dest, authMethod)
	}

	repo, err := git.PlainCloneContext(ctx, dest, true, &git.CloneOptions{
		URL:      remote.String(),
		Auth:     authMethod,
		Mirror:   true,
		Tags:     git.AllTags,
		Progress: f.progress,
	})
	if err != nil {
		return &FetchError{URL: u.Redacted(), Err: err}
	}

	if c, ok := repo.Storer.(io.Closer); ok {
		_ = c.Close()
	}

	return nil
}

func (f *Fetcher) update(ctx context.Context, u, remote *url.URL, dest string, authMethod AuthMethod) error {
	repo, err := git.PlainOpen(dest)
	if err != nil {
		return &OpenError{Path: dest, Err: err}
	}

	if c, ok := repo.Storer.(io.Closer); ok {
		defer c.Close()
	}

	err = repo.FetchContext(ctx, &git.FetchOptions{
		RemoteName: git.DefaultRemoteName,
		RemoteURL:  remote.String(),
		RefSpecs:   []config.RefSpec{mirrorRefSpec},
		Auth:       authMethod,
		Tags:       git.AllTags,
		Prune:      true,
		Force:      true,
		Progress:   f.progress,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return &FetchError{URL: u.Redacted(), Err: err}
	}

	return nil
}

// remoteURL returns the URL to hand to the transport: the "git+" prefix is
// removed from the scheme, and file URLs naming a work tree are pointed at its
// .git directory.
func remoteURL(u *url.URL) *url.URL {
	remote := *u
	remote.Scheme = strings.TrimPrefix(remote.Scheme, "git+")
	remote.Fragment = ""

	if remote.Scheme == "file" {
		dir := internal.FileURLPath(remote.Host, remote.Path)
		if fi, err := os.Stat(filepath.Join(dir, ".git")); err == nil && fi.IsDir() {
			remote.Path = path.Join(remote.Path, ".git")
		}
	}

	return &remote
}
