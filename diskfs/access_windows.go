package diskfs

import (
	"os"

	"github.com/cjolowicz/cutty-sub001"
)

// access approximates access(2) with the permission bits Go reports on
// Windows: everything is readable and executable, and read-only files lack
// the write bits.
func access(path string, mode cutty.AccessMode) bool {
	fi, err := os.Stat(path)
	if err != nil {
		return false
	}

	if mode&cutty.AccessWrite != 0 && fi.Mode().Perm()&0o200 == 0 {
		return false
	}

	return true
}
