//go:build !linux
// +build !linux

package sectorio

type deviceGeometry struct {
	logicalSectorSize  uint64
	physicalSectorSize uint64
	minIOSize          uint64
	optimalIOSize      uint64
	alignmentOffset    uint64
	totalSectors       uint64
}

// probeGeometry has no portable ioctl equivalent outside Linux; callers fall
// back to the 512-byte sector default Device.Open already assumes.
func probeGeometry(path string) (deviceGeometry, error) {
	return deviceGeometry{
		logicalSectorSize:  512,
		physicalSectorSize: 512,
		minIOSize:          512,
		optimalIOSize:      512,
	}, nil
}
