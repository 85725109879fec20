package cutty_test

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/cjolowicz/cutty-sub001"
	"github.com/cjolowicz/cutty-sub001/dictfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func templateTree() *dictfs.FS {
	return dictfs.New(map[string]any{
		"cookiecutter.json": `{"project": "example"}`,
		"hooks": map[string]any{
			"pre_gen_project.py": dictfs.Executable("print('hi')\n"),
		},
		"{{ cookiecutter.project }}": map[string]any{
			"README.md": "# {{ cookiecutter.project }}\n",
			"src": map[string]any{
				"main.go": "package main\n",
			},
		},
		"latest": dictfs.Symlink("{{ cookiecutter.project }}/src"),
	})
}

func TestPath_Navigation(t *testing.T) {
	fsys := templateTree()
	root := cutty.Root(fsys)

	assert.True(t, root.IsRoot())
	assert.True(t, root.IsDir())
	assert.Equal(t, fsys, root.Filesystem())

	readme, err := root.Join("{{ cookiecutter.project }}", "README.md")
	require.NoError(t, err)
	assert.Equal(t, "README.md", readme.Name())
	assert.Equal(t, "README", readme.Stem())
	assert.Equal(t, ".md", readme.Suffix())
	assert.Equal(t, "{{ cookiecutter.project }}/README.md", readme.String())
	assert.True(t, readme.IsFile())
	assert.True(t, readme.Exists())

	text, err := readme.ReadText()
	require.NoError(t, err)
	assert.Equal(t, "# {{ cookiecutter.project }}\n", text)

	assert.True(t, readme.Parent().Parent().Equal(root))
	assert.True(t, root.Parent().Equal(root))

	_, err = root.Join("..")
	require.ErrorIs(t, err, cutty.ErrReservedComponent)

	missing, err := root.Join("missing")
	require.NoError(t, err)
	assert.False(t, missing.Exists())
	assert.False(t, missing.IsDir())
	assert.False(t, missing.IsFile())
	assert.False(t, missing.IsSymlink())

	_, err = missing.ReadBytes()
	require.ErrorIs(t, err, fs.ErrNotExist)
}

func TestPath_Iterdir(t *testing.T) {
	root := cutty.Root(templateTree())

	var names []string

	for child, err := range root.Iterdir() {
		require.NoError(t, err)
		assert.True(t, child.Parent().Equal(root))

		names = append(names, child.Name())
	}

	assert.Equal(t, []string{"cookiecutter.json", "hooks", "latest", "{{ cookiecutter.project }}"}, names)

	file, err := root.Join("cookiecutter.json")
	require.NoError(t, err)

	for _, err := range file.Iterdir() {
		require.ErrorIs(t, err, cutty.ErrNotADirectory)
	}
}

func TestPath_Symlinks(t *testing.T) {
	root := cutty.Root(templateTree())

	latest, err := root.Join("latest")
	require.NoError(t, err)
	assert.True(t, latest.IsSymlink())
	assert.True(t, latest.IsDir())

	target, err := latest.Readlink()
	require.NoError(t, err)
	assert.Equal(t, "{{ cookiecutter.project }}/src", target)

	main, err := latest.Join("main.go")
	require.NoError(t, err)

	b, err := main.ReadBytes()
	require.NoError(t, err)
	assert.Equal(t, "package main\n", string(b))
}

func TestPath_Access(t *testing.T) {
	root := cutty.Root(templateTree())

	hook, err := root.Join("hooks", "pre_gen_project.py")
	require.NoError(t, err)
	assert.True(t, hook.Access(cutty.AccessRead|cutty.AccessExecute))
	assert.False(t, hook.Access(cutty.AccessWrite))

	cfg, err := root.Join("cookiecutter.json")
	require.NoError(t, err)
	assert.False(t, cfg.Access(cutty.AccessExecute))
}

func TestPath_Relative(t *testing.T) {
	root := cutty.Root(templateTree())

	src, err := root.Join("{{ cookiecutter.project }}", "src")
	require.NoError(t, err)

	rel, ok := src.Relative(root)
	assert.True(t, ok)
	assert.Equal(t, "{{ cookiecutter.project }}/src", rel)

	rel, ok = src.Relative(src)
	assert.True(t, ok)
	assert.Equal(t, ".", rel)

	hooks, err := root.Join("hooks")
	require.NoError(t, err)

	_, ok = src.Relative(hooks)
	assert.False(t, ok)
}

func TestPath_EqualCompare(t *testing.T) {
	a := cutty.Root(templateTree())
	b := cutty.Root(templateTree())

	assert.True(t, a.Equal(a))
	assert.False(t, a.Equal(b), "paths on different filesystems differ")
	assert.Equal(t, 0, a.Compare(b))

	x, err := a.Join("a")
	require.NoError(t, err)
	y, err := a.Join("b")
	require.NoError(t, err)
	assert.Equal(t, -1, x.Compare(y))
	assert.Equal(t, 1, y.Compare(x))
}

// foldingFS compares paths case-insensitively, like a disk on macOS.
type foldingFS struct {
	*dictfs.FS
}

func (foldingFS) ComparePaths(a, b cutty.PurePath) int {
	return strings.Compare(strings.ToLower(a.String()), strings.ToLower(b.String()))
}

func TestPath_PathComparer(t *testing.T) {
	fsys := foldingFS{dictfs.New(nil)}

	upper, err := cutty.NewPath(fsys, "README.md")
	require.NoError(t, err)
	lower, err := cutty.NewPath(fsys, "readme.md")
	require.NoError(t, err)

	assert.True(t, upper.Equal(lower))
	assert.Equal(t, 0, upper.Compare(lower))
	assert.False(t, upper.PurePath().Equal(lower.PurePath()))
}

func TestNewPath_Invalid(t *testing.T) {
	_, err := cutty.NewPath(templateTree(), "a", "")
	require.ErrorIs(t, err, cutty.ErrEmptyComponent)
}
