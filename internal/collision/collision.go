// Package collision implements the "does this device already carry a
// recognized filesystem or RAID signature" probe (C9): a cheap, read-only
// check run before a destructive create() so the host can warn the user
// they are about to overwrite a live filesystem rather than blank space.
package collision

import (
	"encoding/binary"

	"github.com/ostafen/partedit/internal/sectorio"
)

// ext superblock lives 1024 bytes into the filesystem, regardless of block
// size; its magic is a fixed two-byte field 56 bytes into the superblock.
const (
	extSuperblockOffset = 1024
	extMagicOffset      = extSuperblockOffset + 56
	extMagic            = 0xEF53
)

// gptProtectiveMBRTypeOffset is the partition-type byte of the first
// 16-byte MBR entry (offset 446 + 4), the field a GPT protective MBR sets
// to 0xEE.
const (
	gptProtectiveMBRTypeOffset = 446 + 4
	gptProtectiveMBRType       = 0xEE
)

// SignatureSectors returns the number of sectors, starting at a probed
// offset, that Probe inspects for sectorSize — the same span a caller
// should mark for zeroing (via label.Context.MarkWipe) after the user
// confirms overwriting a detected signature, so the stale magic bytes
// Probe found don't survive alongside a freshly written label.
func SignatureSectors(sectorSize uint64) uint64 {
	n := (extMagicOffset+8)/sectorSize + 1
	if n < 1 {
		return 1
	}
	return n
}

// Probe inspects the region of dev starting at startLBA for a recognized
// on-disk signature and returns its name ("FAT32", "ext2/3/4", "GPT", ...) and
// true, or ("", false) if nothing recognized is present. It never mutates
// dev and only reads as many sectors as the farthest-out signature check
// needs.
func Probe(dev *sectorio.Device, startLBA uint64) (string, bool, error) {
	sectorSize := dev.LogicalSectorSize
	sectorsNeeded := SignatureSectors(sectorSize)
	if startLBA+sectorsNeeded > dev.TotalSectors {
		sectorsNeeded = dev.TotalSectors - startLBA
	}
	if sectorsNeeded == 0 {
		return "", false, nil
	}

	buf, err := dev.ReadSectors(startLBA, sectorsNeeded)
	if err != nil {
		return "", false, err
	}

	if name, ok := probeFAT(buf); ok {
		return name, true, nil
	}
	if name, ok := probeExt(buf); ok {
		return name, true, nil
	}
	if name, ok := probeGPTProtectiveMBR(buf); ok {
		return name, true, nil
	}
	return "", false, nil
}

func probeFAT(buf []byte) (string, bool) {
	bs, ok := readFatBootSector(buf)
	if !ok {
		return "", false
	}
	name := fatVariant(bs)
	if name == "" {
		return "", false
	}
	return name, true
}

func probeExt(buf []byte) (string, bool) {
	if len(buf) < extMagicOffset+2 {
		return "", false
	}
	magic := binary.LittleEndian.Uint16(buf[extMagicOffset : extMagicOffset+2])
	if magic != extMagic {
		return "", false
	}
	return "ext2/3/4", true
}

func probeGPTProtectiveMBR(buf []byte) (string, bool) {
	if len(buf) < gptProtectiveMBRTypeOffset+1 {
		return "", false
	}
	if buf[gptProtectiveMBRTypeOffset] != gptProtectiveMBRType {
		return "", false
	}
	return "GPT", true
}
