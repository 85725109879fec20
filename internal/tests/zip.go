package tests

import (
	"io/fs"
	"os"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/require"
)

// ZipEntry is an entry written by WriteZip. Names ending in "/" are
// directories. A zero Mode means 0o644 for files.
type ZipEntry struct {
	Name string
	Body string
	Mode fs.FileMode
}

// WriteZip writes an archive with the given entries to path.
func WriteZip(t testing.TB, path string, entries ...ZipEntry) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)

	defer f.Close()

	zw := zip.NewWriter(f)

	for _, e := range entries {
		fh := &zip.FileHeader{Name: e.Name, Method: zip.Deflate, Modified: FixtureDate}

		mode := e.Mode
		if mode == 0 {
			mode = 0o644
		}

		if e.Name[len(e.Name)-1] == '/' {
			mode = fs.ModeDir | 0o755
			fh.Method = zip.Store
		}

		fh.SetMode(mode)

		w, err := zw.CreateHeader(fh)
		require.NoError(t, err)

		_, err = w.Write([]byte(e.Body))
		require.NoError(t, err)
	}

	require.NoError(t, zw.Close())
}
