//go:build unix

package main

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// osName returns "<sysname> <release>", e.g. "Darwin 22.1.0".
func osName() string {
	var u unix.Utsname
	if err := unix.Uname(&u); err != nil {
		return runtime.GOOS
	}
	sys := unix.ByteSliceToString(u.Sysname[:])
	rel := unix.ByteSliceToString(u.Release[:])
	if rel == "" {
		return sys
	}
	return sys + " " + rel
}
