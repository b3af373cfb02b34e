// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package watch

import (
	"errors"
	"syscall"
)

// exhausted lists the errnos of an inotify instance that ran out of watches
// or descriptors.
var exhausted = []syscall.Errno{syscall.ENOSPC, syscall.EMFILE, syscall.ENFILE}

func isFatalFsnotifyError(err error) bool {
	for _, errno := range exhausted {
		if errors.Is(err, errno) {
			return true
		}
	}
	return false
}
