package gpt

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestGUIDMixedEndianRoundTrip(t *testing.T) {
	u := uuid.New()
	wire := uuidToGPTBytes(u)
	back := gptBytesToUUID(wire)
	require.Equal(t, u, back)
}

func TestKnownGUIDEncoding(t *testing.T) {
	// EFI System Partition GUID, canonical form, per the well-known constant
	// in gpttype.EFISystem.
	u := uuid.MustParse("C12A7328-F81F-11D2-BA4B-00A0C93EC93B")
	wire := uuidToGPTBytes(u)
	// time_low "C12A7328" byte-swapped little-endian.
	require.Equal(t, []byte{0x28, 0x73, 0x2a, 0xc1}, wire[0:4])
	// clock_seq + node bytes pass through unchanged.
	require.Equal(t, []byte{0xba, 0x4b, 0x00, 0xa0, 0xc9, 0x3e, 0xc9, 0x3b}, wire[8:16])
}

func TestHeaderEncodeDecodeChecksum(t *testing.T) {
	h := header{
		MyLBA:                    1,
		AlternateLBA:             2047,
		FirstUsableLBA:           34,
		LastUsableLBA:            2014,
		DiskGUID:                 uuid.New(),
		PartitionEntryLBA:        2,
		NumPartitionEntries:      NumEntries,
		SizeOfPartitionEntry:     EntrySize,
		PartitionEntryArrayCRC32: 0xdeadbeef,
	}
	buf := h.encode(512)
	require.True(t, verifyChecksum(buf))

	decoded, ok := decodeHeader(buf)
	require.True(t, ok)
	require.Equal(t, h.DiskGUID, decoded.DiskGUID)
	require.Equal(t, h.FirstUsableLBA, decoded.FirstUsableLBA)
	require.Equal(t, h.PartitionEntryArrayCRC32, decoded.PartitionEntryArrayCRC32)

	buf[100] ^= 0xff
	require.True(t, verifyChecksum(buf)) // byte 100 is outside the checksummed header region

	buf[20] ^= 0xff // reserved field is inside the checksum
	require.False(t, verifyChecksum(buf))
}

func TestEntryNameRoundTrip(t *testing.T) {
	e := entry{TypeGUID: uuid.New(), PartGUID: uuid.New(), StartLBA: 100, EndLBA: 200, Name: "boot"}
	buf := make([]byte, EntrySize)
	require.NoError(t, e.encode(buf))

	decoded := decodeEntry(buf)
	require.Equal(t, "boot", decoded.Name)
	require.Equal(t, e.StartLBA, decoded.StartLBA)
	require.Equal(t, e.EndLBA, decoded.EndLBA)
	require.False(t, decoded.empty())
}
