// SPDX-License-Identifier: MPL-2.0

//go:build windows

package watch

import (
	"errors"
	"syscall"
)

// ERROR_TOO_MANY_OPEN_FILES, ERROR_INVALID_HANDLE and ERROR_NOT_ENOUGH_MEMORY
// end a ReadDirectoryChangesW watch.
var exhausted = []syscall.Errno{4, 6, 8}

func isFatalFsnotifyError(err error) bool {
	for _, errno := range exhausted {
		if errors.Is(err, errno) {
			return true
		}
	}
	return false
}
