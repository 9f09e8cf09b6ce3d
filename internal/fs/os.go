//go:build !windows
// +build !windows

package fs

import "os"

// Open opens path for sector I/O. When readOnly is false the file is opened
// O_RDWR so the caller can write partition tables back to it.
func Open(path string, readOnly bool) (File, error) {
	if readOnly {
		return os.Open(path)
	}
	return os.OpenFile(path, os.O_RDWR, 0)
}
