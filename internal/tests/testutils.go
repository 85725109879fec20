package tests

import (
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport/client"
	"github.com/go-git/go-git/v5/plumbing/transport/server"
	"github.com/stretchr/testify/require"
)

func MustURL(s string) *url.URL {
	u, err := url.Parse(s)
	if err != nil {
		panic(err)
	}

	return u
}

var installOnce sync.Once

// InstallFileTransport serves file:// URLs with go-git's in-process server,
// so tests don't depend on a git binary being installed.
func InstallFileTransport(t testing.TB) {
	t.Helper()

	installOnce.Do(func() {
		client.InstallProtocol("file", server.DefaultServer)
	})
}

// Signature is the author of every fixture commit.
func Signature(when time.Time) *object.Signature {
	return &object.Signature{Name: "Jane Doe", Email: "jane@example.com", When: when}
}

// FixtureDate is the date of the first fixture commit. Later commits are one
// hour apart.
var FixtureDate = time.Date(2024, 3, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))

// GitRepo holds a work tree repository created by NewGitRepo.
type GitRepo struct {
	Repo *git.Repository
	Dir  string

	// Hashes maps each tag (and "HEAD") to its commit hash.
	Hashes map[string]string

	commits int
}

// NewGitRepo initialises a repository in a new temporary directory with two
// tagged commits:
//
//	v1.0.0: README.md, run.sh (executable), sub/hello.txt, link -> README.md
//	v1.1.0: README.md changed, new.txt added
func NewGitRepo(t testing.TB) *GitRepo {
	t.Helper()

	dir := filepath.Join(t.TempDir(), "repo")

	r, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	g := &GitRepo{Repo: r, Dir: dir, Hashes: map[string]string{}}

	g.Commit(t, "initial commit", map[string]string{
		"README.md":     "version 1\n",
		"sub/hello.txt": "hello\n",
	})

	require.NoError(t, os.WriteFile(filepath.Join(dir, "run.sh"), []byte("#!/bin/sh\n"), 0o755))
	require.NoError(t, os.Symlink("README.md", filepath.Join(dir, "link")))
	g.Commit(t, "add script and link", nil, "run.sh", "link")
	g.Tag(t, "v1.0.0")

	g.Commit(t, "release 1.1.0", map[string]string{
		"README.md": "version 2\n",
		"new.txt":   "new\n",
	})
	g.Tag(t, "v1.1.0")

	return g
}

// Commit writes files into the work tree, stages them along with any extra
// paths, and commits.
func (g *GitRepo) Commit(t testing.TB, msg string, files map[string]string, extra ...string) plumbing.Hash {
	t.Helper()

	w, err := g.Repo.Worktree()
	require.NoError(t, err)

	for name, content := range files {
		p := filepath.Join(g.Dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))

		_, err = w.Add(name)
		require.NoError(t, err)
	}

	for _, name := range extra {
		_, err = w.Add(name)
		require.NoError(t, err)
	}

	when := FixtureDate.Add(time.Duration(g.commits) * time.Hour)
	g.commits++

	hash, err := w.Commit(msg, &git.CommitOptions{Author: Signature(when)})
	require.NoError(t, err)

	g.Hashes["HEAD"] = hash.String()

	return hash
}

// Tag creates a lightweight tag at HEAD.
func (g *GitRepo) Tag(t testing.TB, name string) {
	t.Helper()

	head, err := g.Repo.Head()
	require.NoError(t, err)

	_, err = g.Repo.CreateTag(name, head.Hash(), nil)
	require.NoError(t, err)

	g.Hashes[name] = head.Hash().String()
}

// URL returns the file:// URL of the repository.
func (g *GitRepo) URL() *url.URL {
	return &url.URL{Scheme: "file", Path: filepath.ToSlash(g.Dir)}
}
