package hgfs

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cjolowicz/cutty-sub001"
	"github.com/cjolowicz/cutty-sub001/diskfs"
	"github.com/cjolowicz/cutty-sub001/internal"
)

// ErrExecutableNotFound is returned when no hg executable can be found.
var ErrExecutableNotFound = errors.New("cannot locate hg executable on PATH")

// CommandError is returned when an hg command exits with a non-zero status.
type CommandError struct {
	Output string
	Args   []string
	Status int
}

func (e *CommandError) Error() string {
	line, _, _ := strings.Cut(strings.TrimSpace(e.Output), "\n")

	return fmt.Sprintf("command %s exited with %d: %s", strings.Join(e.Args, " "), e.Status, line)
}

// logTemplate prints the fields read by parseCommit, one per line. The
// description comes last since it may span lines.
const logTemplate = "{node}\\n{branch}\\n{author|person}\\n{author|email}\\n{date|hgdate}\\n{desc}"

// Client runs the hg executable to maintain clones of remote repositories,
// and to mount their working copies.
type Client struct {
	executable string
}

// NewClient returns a Client running the first hg found on PATH.
func NewClient() *Client {
	return &Client{executable: "hg"}
}

// WithExecutable returns a copy of the Client running the given executable,
// which is looked up on PATH unless it contains a separator.
func (c *Client) WithExecutable(executable string) *Client {
	client := *c
	client.executable = executable

	return &client
}

// Available reports whether the executable can be found.
func (c *Client) Available() bool {
	_, err := exec.LookPath(c.executable)

	return err == nil
}

// Available reports whether hg is on PATH.
func Available() bool {
	return NewClient().Available()
}

// run runs hg with args, returning its combined output. The URL, if any, is
// replaced with shown in errors so that credentials don't leak.
func (c *Client) run(ctx context.Context, src, shown string, args ...string) (string, error) {
	path, err := exec.LookPath(c.executable)
	if err != nil {
		return "", ErrExecutableNotFound
	}

	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Env = append(os.Environ(), "HGPLAIN=1")

	out, err := cmd.CombinedOutput()
	if err == nil {
		return string(out), nil
	}

	display := make([]string, 0, len(args)+1)
	display = append(display, "hg")

	for _, arg := range args {
		if src != "" && arg == src {
			arg = shown
		}

		display = append(display, arg)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return "", &CommandError{Args: display, Status: exitErr.ExitCode(), Output: string(out)}
	}

	return "", fmt.Errorf("running %s: %w", strings.Join(display, " "), err)
}

// Fetch clones the repository at u into dest, or pulls into dest if it
// exists, then updates the working copy to revision. An empty revision means
// tip. Valid schemes are "file", "http", "https", "ssh", and the same
// prefixed with "hg+".
func (c *Client) Fetch(ctx context.Context, u *url.URL, dest, revision string) error {
	src, shown := source(u)

	if _, err := os.Stat(dest); err == nil {
		if _, err := c.run(ctx, src, shown, "pull", "--repository", dest, src); err != nil {
			return err
		}
	} else {
		if _, err := c.run(ctx, src, shown, "clone", "--noupdate", src, dest); err != nil {
			return err
		}
	}

	return c.update(ctx, dest, revision)
}

func (c *Client) update(ctx context.Context, dir, revision string) error {
	if revision == "" {
		revision = "tip"
	}

	_, err := c.run(ctx, "", "", "update", "--repository", dir, "--rev", revision)

	return err
}

// source returns the location to hand to hg, and the same with any password
// redacted: a local path for file URLs, otherwise the URL without the "hg+"
// prefix and the fragment.
func source(u *url.URL) (string, string) {
	remote := *u
	remote.Scheme = strings.TrimPrefix(remote.Scheme, "hg+")
	remote.Fragment = ""

	if remote.Scheme == "file" {
		p := filepath.FromSlash(internal.FileURLPath(remote.Host, remote.Path))

		return p, p
	}

	return remote.String(), remote.Redacted()
}

// FS is the working copy of a Mercurial repository on disk.
type FS struct {
	*diskfs.FS
	commit *cutty.Commit
}

var _ cutty.Committer = (*FS)(nil)

// Commit returns the working copy's parent changeset.
func (f *FS) Commit() *cutty.Commit {
	c := *f.commit

	return &c
}

// Mount returns the working copy of the repository at path. If revision is
// given, the working copy is updated to it first.
func (c *Client) Mount(path, revision string) (cutty.Path, error) {
	ctx := context.Background()

	if revision != "" {
		if err := c.update(ctx, path, revision); err != nil {
			return cutty.Path{}, err
		}
	}

	out, err := c.run(ctx, "", "", "log", "--repository", path, "--rev", ".", "--template", logTemplate)
	if err != nil {
		return cutty.Path{}, err
	}

	commit, err := parseCommit(out)
	if err != nil {
		return cutty.Path{}, fmt.Errorf("reading changeset of %s: %w", path, err)
	}

	commit.Revision = revision
	if commit.Revision == "" {
		commit.Revision = commit.branch
	}

	return cutty.Root(&FS{FS: diskfs.New(path), commit: &commit.Commit}), nil
}

type changeset struct {
	cutty.Commit
	branch string
}

func parseCommit(out string) (*changeset, error) {
	fields := strings.SplitN(out, "\n", 6)
	if len(fields) < 5 {
		return nil, fmt.Errorf("unexpected log output %q", out)
	}

	date, err := parseDate(fields[4])
	if err != nil {
		return nil, err
	}

	cs := &changeset{
		Commit: cutty.Commit{
			ID:     fields[0],
			Author: cutty.Signature{Name: fields[2], Email: fields[3]},
			Date:   date,
		},
		branch: fields[1],
	}

	if len(fields) == 6 {
		cs.Message = fields[5]
	}

	return cs, nil
}

// parseDate parses the hgdate format: seconds since the epoch, and the
// timezone offset in seconds west of UTC.
func parseDate(s string) (time.Time, error) {
	secs, offset, ok := strings.Cut(strings.TrimSpace(s), " ")
	if !ok {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}

	sec, err := strconv.ParseInt(secs, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}

	off, err := strconv.Atoi(offset)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}

	return time.Unix(sec, 0).In(time.FixedZone("", -off)), nil
}

// Fetch fetches with the hg found on PATH.
func Fetch(ctx context.Context, u *url.URL, dest, revision string) error {
	return NewClient().Fetch(ctx, u, dest, revision)
}

// Mount mounts with the hg found on PATH.
func Mount(path, revision string) (cutty.Path, error) {
	return NewClient().Mount(path, revision)
}
