package zipfs

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/cjolowicz/cutty-sub001"
	"github.com/cjolowicz/cutty-sub001/internal/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeArchive(t *testing.T) string {
	t.Helper()

	name := filepath.Join(t.TempDir(), "template.zip")

	tests.WriteZip(t, name,
		tests.ZipEntry{Name: "template/"},
		tests.ZipEntry{Name: "template/cookiecutter.json", Body: `{"project": "x"}`},
		tests.ZipEntry{Name: "template/hooks/post_gen_project.sh", Body: "#!/bin/sh\n", Mode: 0o755},
		tests.ZipEntry{Name: "template/{{ cookiecutter.project }}/README.md", Body: "# readme\n"},
		tests.ZipEntry{Name: "template/link", Body: "cookiecutter.json", Mode: fs.ModeSymlink | 0o777},
		tests.ZipEntry{Name: "template/hooklink", Body: "hooks", Mode: fs.ModeSymlink | 0o777},
		tests.ZipEntry{Name: "template/escape", Body: "../../etc/passwd", Mode: fs.ModeSymlink | 0o777},
		tests.ZipEntry{Name: "../evil.txt", Body: "skipped"},
		tests.ZipEntry{Name: "/abs.txt", Body: "skipped"},
	)

	return name
}

func mustPath(t *testing.T, s string) cutty.PurePath {
	t.Helper()

	p, err := cutty.ParsePurePath(s)
	require.NoError(t, err)

	return p
}

func TestFS(t *testing.T) {
	name := filepath.Join(t.TempDir(), "plain.zip")
	tests.WriteZip(t, name,
		tests.ZipEntry{Name: "a.txt", Body: "a"},
		tests.ZipEntry{Name: "dir/b.txt", Body: "bb"},
		tests.ZipEntry{Name: "dir/sub/"},
		tests.ZipEntry{Name: "dir/sub/c.txt", Body: "ccc"},
	)

	fsys, err := Open(name)
	require.NoError(t, err)

	t.Cleanup(func() { _ = fsys.Close() })

	require.NoError(t, fstest.TestFS(cutty.DirFS(cutty.Root(fsys)), "a.txt", "dir/b.txt", "dir/sub/c.txt"))
}

func TestOpen_Errors(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.zip"))
	require.ErrorIs(t, err, fs.ErrNotExist)

	var oe *OpenError
	require.ErrorAs(t, err, &oe)

	garbage := filepath.Join(t.TempDir(), "garbage.zip")
	require.NoError(t, os.WriteFile(garbage, []byte("not a zip"), 0o644))

	_, err = Open(garbage)
	require.ErrorAs(t, err, &oe)
	assert.Equal(t, garbage, oe.Path)
}

func TestIndex(t *testing.T) {
	fsys, err := Open(writeArchive(t))
	require.NoError(t, err)

	defer fsys.Close()

	var names []string

	for name, err := range fsys.Iterdir(cutty.PurePath{}) {
		require.NoError(t, err)

		names = append(names, name)
	}

	assert.Equal(t, []string{"template"}, names, "non-local names are skipped")

	names = nil

	for name, err := range fsys.Iterdir(mustPath(t, "template")) {
		require.NoError(t, err)

		names = append(names, name)
	}

	assert.Equal(t, []string{
		"cookiecutter.json", "escape", "hooklink", "hooks", "link", "{{ cookiecutter.project }}",
	}, names)

	// implicit directory
	assert.True(t, cutty.IsDir(fsys, mustPath(t, "template/hooks")))
	assert.True(t, cutty.IsDir(fsys, mustPath(t, "template/{{ cookiecutter.project }}")))
}

func TestIndex_DotSlash(t *testing.T) {
	name := filepath.Join(t.TempDir(), "dot.zip")
	tests.WriteZip(t, name,
		tests.ZipEntry{Name: "./"},
		tests.ZipEntry{Name: "./a.txt", Body: "a"},
		tests.ZipEntry{Name: "./dir/"},
		tests.ZipEntry{Name: "././dir/b.txt", Body: "bb"},
	)

	fsys, err := Open(name)
	require.NoError(t, err)

	defer fsys.Close()

	var names []string

	for name, err := range fsys.Iterdir(cutty.PurePath{}) {
		require.NoError(t, err)

		names = append(names, name)
	}

	assert.Equal(t, []string{"a.txt", "dir"}, names)

	b, err := fsys.ReadBytes(mustPath(t, "dir/b.txt"))
	require.NoError(t, err)
	assert.Equal(t, "bb", string(b))
}

func TestReadBytes(t *testing.T) {
	fsys, err := Open(writeArchive(t))
	require.NoError(t, err)

	defer fsys.Close()

	b, err := fsys.ReadBytes(mustPath(t, "template/{{ cookiecutter.project }}/README.md"))
	require.NoError(t, err)
	assert.Equal(t, "# readme\n", string(b))

	_, err = fsys.ReadBytes(mustPath(t, "template/hooks"))
	require.ErrorIs(t, err, cutty.ErrNotAFile)

	_, err = fsys.ReadBytes(mustPath(t, "template/missing"))
	require.ErrorIs(t, err, fs.ErrNotExist)
}

func TestSymlinks(t *testing.T) {
	fsys, err := Open(writeArchive(t))
	require.NoError(t, err)

	defer fsys.Close()

	link := mustPath(t, "template/link")
	assert.True(t, cutty.IsSymlink(fsys, link))
	assert.True(t, cutty.IsFile(fsys, link))

	target, err := fsys.Readlink(link)
	require.NoError(t, err)
	assert.Equal(t, "cookiecutter.json", target)

	b, err := fsys.ReadBytes(link)
	require.NoError(t, err)
	assert.Equal(t, `{"project": "x"}`, string(b))

	assert.True(t, cutty.IsDir(fsys, mustPath(t, "template/hooklink")))
	assert.True(t, cutty.IsFile(fsys, mustPath(t, "template/hooklink/post_gen_project.sh")))

	_, err = fsys.Stat(mustPath(t, "template/escape"))
	require.ErrorIs(t, err, cutty.ErrLinkEscapesRoot)

	_, err = fsys.Readlink(mustPath(t, "template/cookiecutter.json"))
	require.ErrorIs(t, err, cutty.ErrNotASymlink)
}

func TestAccess(t *testing.T) {
	fsys, err := Open(writeArchive(t))
	require.NoError(t, err)

	defer fsys.Close()

	hook := mustPath(t, "template/hooks/post_gen_project.sh")
	assert.True(t, fsys.Access(hook, cutty.AccessRead|cutty.AccessExecute))
	assert.False(t, fsys.Access(hook, cutty.AccessWrite))

	cfg := mustPath(t, "template/cookiecutter.json")
	assert.True(t, fsys.Access(cfg, cutty.AccessRead))
	assert.False(t, fsys.Access(cfg, cutty.AccessExecute))

	fi, err := fsys.Stat(cfg)
	require.NoError(t, err)
	assert.Equal(t, fs.FileMode(0o444), fi.Mode())
	assert.True(t, fi.ModTime().Equal(tests.FixtureDate))
}

func TestNew(t *testing.T) {
	b, err := os.ReadFile(writeArchive(t))
	require.NoError(t, err)

	fsys, err := New(bytes.NewReader(b), int64(len(b)))
	require.NoError(t, err)
	require.NoError(t, fsys.Close())

	assert.True(t, cutty.IsFile(fsys, mustPath(t, "template/cookiecutter.json")))
}

func TestClose_Idempotent(t *testing.T) {
	fsys, err := Open(writeArchive(t))
	require.NoError(t, err)

	require.NoError(t, fsys.Close())
	require.NoError(t, fsys.Close())
}
