// Copyright © 2015-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package i2c

import (
	"errors"
	"syscall"
)

// Errno maps a Transfer result to the kernel convention of 0 or a negative
// error code. Unclassified errors are -EIO.
func Errno(err error) int {
	if err == nil {
		return 0
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.EINVAL, syscall.ETIMEDOUT, syscall.EIO,
			syscall.EAGAIN:
			return -int(errno)
		}
	}
	return -int(syscall.EIO)
}

// Retryable reports whether the transfer may succeed if simply repeated,
// e.g. after losing arbitration. Adapters never retry on their own.
func Retryable(err error) bool {
	return errors.Is(err, syscall.EAGAIN)
}
