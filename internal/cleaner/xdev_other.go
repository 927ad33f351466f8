//go:build !windows

package cleaner

import "syscall"

var errCrossDevice error = syscall.EXDEV
