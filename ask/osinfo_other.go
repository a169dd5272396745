//go:build !unix

package main

import "runtime"

// osName returns the platform name; release detection is unix-only.
func osName() string {
	return runtime.GOOS
}
