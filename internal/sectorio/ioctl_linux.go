//go:build linux
// +build linux

package sectorio

import (
	"os"

	"golang.org/x/sys/unix"
)

type deviceGeometry struct {
	logicalSectorSize  uint64
	physicalSectorSize uint64
	minIOSize          uint64
	optimalIOSize      uint64
	alignmentOffset    uint64
	totalSectors       uint64
}

// probeGeometry queries a Linux block device's geometry the way blockdev(8)
// does: BLKSSZGET for the logical sector size, BLKPBSZGET for the physical
// one, BLKIOMIN/BLKIOOPT for the minimum/optimal I/O size, BLKALIGNOFF for
// the alignment offset, and BLKGETSIZE64 for the total size in bytes.
func probeGeometry(path string) (deviceGeometry, error) {
	var g deviceGeometry

	f, err := os.Open(path)
	if err != nil {
		return g, err
	}
	defer f.Close()

	fd := int(f.Fd())

	if v, err := unix.IoctlGetInt(fd, unix.BLKSSZGET); err == nil {
		g.logicalSectorSize = uint64(v)
	} else {
		g.logicalSectorSize = 512
	}

	if v, err := unix.IoctlGetInt(fd, unix.BLKPBSZGET); err == nil {
		g.physicalSectorSize = uint64(v)
	} else {
		g.physicalSectorSize = g.logicalSectorSize
	}

	if v, err := unix.IoctlGetInt(fd, unix.BLKIOMIN); err == nil {
		g.minIOSize = uint64(v)
	} else {
		g.minIOSize = g.logicalSectorSize
	}

	if v, err := unix.IoctlGetInt(fd, unix.BLKIOOPT); err == nil && v > 0 {
		g.optimalIOSize = uint64(v)
	} else {
		g.optimalIOSize = g.minIOSize
	}

	if v, err := unix.IoctlGetInt(fd, unix.BLKALIGNOFF); err == nil && v > 0 {
		g.alignmentOffset = uint64(v)
	}

	if v, err := unix.IoctlGetUint64(fd, unix.BLKGETSIZE64); err == nil {
		g.totalSectors = v / g.logicalSectorSize
	}

	return g, nil
}
