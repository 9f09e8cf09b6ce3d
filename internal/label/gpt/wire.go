// Package gpt implements the GPT label driver (C6b): protective MBR,
// primary + backup header, CRC32-checksummed entry array.
package gpt

import (
	"encoding/binary"
	"hash/crc32"

	"github.com/google/uuid"
	"golang.org/x/text/encoding/unicode"
)

const (
	HeaderSize      = 92
	EntrySize       = 128
	NumEntries      = 128
	signature       = "EFI PART"
	revision        = 0x00010000
	nameFieldBytes  = 72 // 36 UTF-16LE code units
	pmbrSignatureOf = 510
)

// header mirrors the 92-byte GPT header fields actually used; the rest of
// its sector is reserved and always zero.
type header struct {
	MyLBA                    uint64
	AlternateLBA             uint64
	FirstUsableLBA           uint64
	LastUsableLBA            uint64
	DiskGUID                 uuid.UUID
	PartitionEntryLBA        uint64
	NumPartitionEntries      uint32
	SizeOfPartitionEntry     uint32
	PartitionEntryArrayCRC32 uint32
}

func decodeHeader(b []byte) (header, bool) {
	var h header
	if len(b) < HeaderSize || string(b[0:8]) != signature {
		return h, false
	}
	h.MyLBA = binary.LittleEndian.Uint64(b[24:32])
	h.AlternateLBA = binary.LittleEndian.Uint64(b[32:40])
	h.FirstUsableLBA = binary.LittleEndian.Uint64(b[40:48])
	h.LastUsableLBA = binary.LittleEndian.Uint64(b[48:56])
	h.DiskGUID = gptBytesToUUID(b[56:72])
	h.PartitionEntryLBA = binary.LittleEndian.Uint64(b[72:80])
	h.NumPartitionEntries = binary.LittleEndian.Uint32(b[80:84])
	h.SizeOfPartitionEntry = binary.LittleEndian.Uint32(b[84:88])
	h.PartitionEntryArrayCRC32 = binary.LittleEndian.Uint32(b[88:92])
	return h, true
}

// encode serializes h into a full sectorSize-byte sector and stamps the
// header CRC32 last, over bytes [0:HeaderSize) with the checksum field
// itself zeroed during the calculation.
func (h header) encode(sectorSize uint64) []byte {
	b := make([]byte, sectorSize)
	copy(b[0:8], signature)
	binary.LittleEndian.PutUint32(b[8:12], revision)
	binary.LittleEndian.PutUint32(b[12:16], HeaderSize)
	// b[16:20] HeaderCRC32, filled in below
	// b[20:24] reserved, zero
	binary.LittleEndian.PutUint64(b[24:32], h.MyLBA)
	binary.LittleEndian.PutUint64(b[32:40], h.AlternateLBA)
	binary.LittleEndian.PutUint64(b[40:48], h.FirstUsableLBA)
	binary.LittleEndian.PutUint64(b[48:56], h.LastUsableLBA)
	copy(b[56:72], uuidToGPTBytes(h.DiskGUID))
	binary.LittleEndian.PutUint64(b[72:80], h.PartitionEntryLBA)
	binary.LittleEndian.PutUint32(b[80:84], h.NumPartitionEntries)
	binary.LittleEndian.PutUint32(b[84:88], h.SizeOfPartitionEntry)
	binary.LittleEndian.PutUint32(b[88:92], h.PartitionEntryArrayCRC32)

	binary.LittleEndian.PutUint32(b[16:20], 0)
	crc := crc32.ChecksumIEEE(b[0:HeaderSize])
	binary.LittleEndian.PutUint32(b[16:20], crc)
	return b
}

// verifyChecksum recomputes the header CRC32 (zeroing the stored field
// first) and reports whether it matches what's on disk.
func verifyChecksum(b []byte) bool {
	if len(b) < HeaderSize {
		return false
	}
	want := binary.LittleEndian.Uint32(b[16:20])
	tmp := make([]byte, HeaderSize)
	copy(tmp, b[0:HeaderSize])
	binary.LittleEndian.PutUint32(tmp[16:20], 0)
	return crc32.ChecksumIEEE(tmp) == want
}

// entry mirrors one 128-byte GPT partition entry.
type entry struct {
	TypeGUID   uuid.UUID
	PartGUID   uuid.UUID
	StartLBA   uint64
	EndLBA     uint64
	Attributes uint64
	Name       string
}

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

func decodeEntry(b []byte) entry {
	var e entry
	e.TypeGUID = gptBytesToUUID(b[0:16])
	e.PartGUID = gptBytesToUUID(b[16:32])
	e.StartLBA = binary.LittleEndian.Uint64(b[32:40])
	e.EndLBA = binary.LittleEndian.Uint64(b[40:48])
	e.Attributes = binary.LittleEndian.Uint64(b[48:56])

	raw := b[56 : 56+nameFieldBytes]
	end := len(raw)
	for end >= 2 && raw[end-2] == 0 && raw[end-1] == 0 {
		end -= 2
	}
	name, err := utf16le.NewDecoder().Bytes(raw[:end])
	if err == nil {
		e.Name = string(name)
	}
	return e
}

func (e entry) encode(b []byte) error {
	copy(b[0:16], uuidToGPTBytes(e.TypeGUID))
	copy(b[16:32], uuidToGPTBytes(e.PartGUID))
	binary.LittleEndian.PutUint64(b[32:40], e.StartLBA)
	binary.LittleEndian.PutUint64(b[40:48], e.EndLBA)
	binary.LittleEndian.PutUint64(b[48:56], e.Attributes)

	nameBytes, err := utf16le.NewEncoder().Bytes([]byte(e.Name))
	if err != nil {
		return err
	}
	if len(nameBytes) > nameFieldBytes {
		nameBytes = nameBytes[:nameFieldBytes]
	}
	copy(b[56:56+nameFieldBytes], nameBytes)
	return nil
}

func (e entry) empty() bool {
	return e.TypeGUID == uuid.Nil
}

// uuidToGPTBytes converts a standard (big-endian, RFC 4122) uuid.UUID into
// GPT's on-disk mixed-endian GUID encoding: the first three fields
// (time-low, time-mid, time-hi-and-version) are byte-swapped to
// little-endian; the clock-sequence and node bytes are left as-is. The
// transform is its own inverse, so the same function decodes too.
func uuidToGPTBytes(u uuid.UUID) []byte {
	b := make([]byte, 16)
	b[0], b[1], b[2], b[3] = u[3], u[2], u[1], u[0]
	b[4], b[5] = u[5], u[4]
	b[6], b[7] = u[7], u[6]
	copy(b[8:16], u[8:16])
	return b
}

func gptBytesToUUID(b []byte) uuid.UUID {
	var u uuid.UUID
	u[0], u[1], u[2], u[3] = b[3], b[2], b[1], b[0]
	u[4], u[5] = b[5], b[4]
	u[6], u[7] = b[7], b[6]
	copy(u[8:16], b[8:16])
	return u
}

func entryArraySectors(sectorSize uint64) uint64 {
	total := uint64(NumEntries) * uint64(EntrySize)
	return (total + sectorSize - 1) / sectorSize
}

// crc32Checksum is the CRC-32/ISO-HDLC checksum GPT uses for both the
// header and the entry array.
func crc32Checksum(b []byte) uint32 {
	return crc32.ChecksumIEEE(b)
}
