// Package align implements the sector alignment engine (C2): it rounds a
// sector number up, down, or to the nearest multiple of the device's
// alignment grain, honoring a non-zero alignment offset the way a real disk
// with an unaligned RAID stripe or 4Kn-on-512e translation layer would
// require.
package align

// Direction is the rounding direction requested of Align.
type Direction int

const (
	Down Direction = iota
	Up
	Nearest
)

// Params bundles the per-context geometry Align needs. Granularity is
// derived from it as max(PhysicalSectorSize, MinIOSize, GrainBytes).
type Params struct {
	SectorSize      uint64 // logical sector size, bytes
	PhysicalSector  uint64 // physical sector size, bytes
	MinIOSize       uint64 // minimum I/O size, bytes
	GrainBytes      uint64 // allocation grain, bytes (typically 1 MiB)
	AlignmentOffset uint64 // bytes; the device's reported alignment offset
	FirstUsableLBA  uint64
}

// granularity returns max(physical_sector_size, minimum_io_size, grain) in
// bytes, per spec.
func (p Params) granularity() uint64 {
	g := p.PhysicalSector
	if p.MinIOSize > g {
		g = p.MinIOSize
	}
	if p.GrainBytes > g {
		g = p.GrainBytes
	}
	if g == 0 {
		g = p.SectorSize
	}
	return g
}

// IsAligned reports whether sector N is aligned under p.
func (p Params) IsAligned(n uint64) bool {
	g := p.granularity()
	byteOff := n * p.SectorSize
	rem := (g + p.AlignmentOffset - (byteOff % g)) % g
	return rem == 0
}

// grainSectors is the grain expressed in whole sectors, at least 1.
func (p Params) grainSectors() uint64 {
	g := p.GrainBytes / p.SectorSize
	if g == 0 {
		g = 1
	}
	return g
}

// Align rounds sector n up, down, or to the nearest multiple of the grain,
// honoring the alignment offset, per spec.md §4.1.
func (p Params) Align(n uint64, dir Direction) uint64 {
	if n < p.FirstUsableLBA {
		return p.FirstUsableLBA
	}
	if p.IsAligned(n) {
		return n
	}

	grain := p.grainSectors()

	var candidate uint64
	switch dir {
	case Up:
		candidate = ((n / grain) + 1) * grain
	case Down:
		candidate = (n / grain) * grain
	default: // Nearest, round-half-up
		lower := (n / grain) * grain
		upper := lower + grain
		if n-lower < upper-n {
			candidate = lower
		} else {
			candidate = upper
		}
	}

	if p.AlignmentOffset != 0 && !p.IsAligned(candidate) {
		g := p.granularity()
		backoff := (g - p.AlignmentOffset) / p.SectorSize
		if backoff > candidate {
			candidate = 0
		} else {
			candidate -= backoff
		}
		if dir == Up && candidate < n {
			candidate += grain
		}
	}

	if candidate < p.FirstUsableLBA {
		candidate = p.FirstUsableLBA
	}
	return candidate
}

// AlignRange aligns lo up, hi down, and n to the nearest grain multiple,
// clamping the result to [loAligned, hiAligned].
func (p Params) AlignRange(n, lo, hi uint64) (loAligned, hiAligned, nAligned uint64) {
	loAligned = p.Align(lo, Up)
	hiAligned = p.Align(hi, Down)

	nAligned = p.Align(n, Nearest)
	if nAligned < loAligned {
		nAligned = loAligned
	}
	if nAligned > hiAligned {
		nAligned = hiAligned
	}
	return loAligned, hiAligned, nAligned
}
