//go:build !windows

package diskfs

import (
	"github.com/cjolowicz/cutty-sub001"
	"golang.org/x/sys/unix"
)

func access(path string, mode cutty.AccessMode) bool {
	var how uint32

	if mode&cutty.AccessRead != 0 {
		how |= unix.R_OK
	}

	if mode&cutty.AccessWrite != 0 {
		how |= unix.W_OK
	}

	if mode&cutty.AccessExecute != 0 {
		how |= unix.X_OK
	}

	if how == 0 {
		how = unix.F_OK
	}

	return unix.Access(path, how) == nil
}
