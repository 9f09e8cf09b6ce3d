// Package sectorio wraps a raw block device or disk image behind a small
// handle that knows its own geometry: logical/physical sector size, minimum
// and optimal I/O size, alignment offset, and total size. Every label driver
// reads and writes sectors exclusively through a *Device.
package sectorio

import (
	"fmt"

	"github.com/ostafen/partedit/internal/fs"
	"github.com/ostafen/partedit/internal/perr"
)

// Device is a ref-counted handle to an opened disk. Callers obtain one via
// Open and share it by value copy; Close only tears down the handle once
// every copy has released it.
type Device struct {
	path     string
	file     fs.File
	readOnly bool

	LogicalSectorSize  uint64
	PhysicalSectorSize uint64
	MinIOSize          uint64
	OptimalIOSize      uint64
	AlignmentOffset    uint64
	TotalSectors       uint64

	refs *int
}

// Open opens path for sector-granular I/O and probes its geometry. When
// probing fails (e.g. a plain regular file used as a disk image) sane
// defaults of a 512-byte sector and zero alignment offset are assumed.
func Open(path string, readOnly bool) (*Device, error) {
	path = NormalizeVolumePath(path)
	f, err := fs.Open(path, readOnly)
	if err != nil {
		return nil, perr.Wrap(perr.IOError, err, "open %s", path)
	}

	d := &Device{
		path:               path,
		file:               f,
		readOnly:           readOnly,
		LogicalSectorSize:  512,
		PhysicalSectorSize: 512,
		MinIOSize:          512,
		OptimalIOSize:      512,
		refs:               new(int),
	}
	*d.refs = 1

	geom, gerr := probeGeometry(path)
	if gerr == nil {
		d.LogicalSectorSize = geom.logicalSectorSize
		d.PhysicalSectorSize = geom.physicalSectorSize
		d.MinIOSize = geom.minIOSize
		d.OptimalIOSize = geom.optimalIOSize
		d.AlignmentOffset = geom.alignmentOffset
	}

	size, err := d.statSize()
	if err != nil {
		_ = f.Close()
		return nil, perr.Wrap(perr.IOError, err, "stat %s", path)
	}
	if size > 0 {
		d.TotalSectors = uint64(size) / d.LogicalSectorSize
	} else if gerr == nil && geom.totalSectors > 0 {
		d.TotalSectors = geom.totalSectors
	}

	return d, nil
}

func (d *Device) statSize() (int64, error) {
	fi, err := d.file.Stat()
	if err != nil {
		return 0, err
	}
	return fi.Size(), nil
}

// Path returns the device's backing path.
func (d *Device) Path() string { return d.path }

// ReadOnly reports whether the device was opened without write access.
func (d *Device) ReadOnly() bool { return d.readOnly }

// Retain increments the handle's reference count and returns the same
// Device, so callers can pass it around by value without losing track of
// who must eventually Close it.
func (d *Device) Retain() *Device {
	*d.refs++
	return d
}

// Close releases one reference; the underlying file is only closed when the
// last reference is released.
func (d *Device) Close() error {
	*d.refs--
	if *d.refs > 0 {
		return nil
	}
	return d.file.Close()
}

// ReadSectors reads n sectors starting at lba.
func (d *Device) ReadSectors(lba, n uint64) ([]byte, error) {
	buf := make([]byte, n*d.LogicalSectorSize)
	if _, err := d.file.ReadAt(buf, int64(lba*d.LogicalSectorSize)); err != nil {
		return nil, perr.Wrap(perr.IOError, err, "read %d sectors at LBA %d", n, lba)
	}
	return buf, nil
}

// WriteSectors writes buf, which must be a whole multiple of the logical
// sector size, starting at lba.
func (d *Device) WriteSectors(lba uint64, buf []byte) error {
	if d.readOnly {
		return perr.New(perr.BusyInUse, "device %s opened read-only", d.path)
	}
	if uint64(len(buf))%d.LogicalSectorSize != 0 {
		return perr.New(perr.InvalidArgument, "write buffer length %d is not a sector multiple", len(buf))
	}
	if _, err := d.file.WriteAt(buf, int64(lba*d.LogicalSectorSize)); err != nil {
		return perr.Wrap(perr.IOError, err, "write %d bytes at LBA %d", len(buf), lba)
	}
	return nil
}

// SizeBytes returns the device's total size in bytes.
func (d *Device) SizeBytes() uint64 {
	return d.TotalSectors * d.LogicalSectorSize
}

func (d *Device) String() string {
	return fmt.Sprintf("%s (%d sectors of %d bytes)", d.path, d.TotalSectors, d.LogicalSectorSize)
}
