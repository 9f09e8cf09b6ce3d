package collision_test

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/ostafen/partedit/internal/collision"
	"github.com/ostafen/partedit/internal/sectorio"
	"github.com/stretchr/testify/require"
)

func newDevice(t *testing.T, buf []byte) *sectorio.Device {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "disk.img")
	require.NoError(t, os.WriteFile(path, buf, 0644))
	dev, err := sectorio.Open(path, false)
	require.NoError(t, err)
	t.Cleanup(func() { dev.Close() })
	return dev
}

func TestProbeEmptyDevice(t *testing.T) {
	dev := newDevice(t, make([]byte, 8192))
	name, found, err := collision.Probe(dev, 0)
	require.NoError(t, err)
	require.False(t, found)
	require.Empty(t, name)
}

func TestProbeFAT32(t *testing.T) {
	buf := make([]byte, 8192)
	buf[0x0B] = 0x00
	buf[0x0C] = 0x02 // SectorSize = 512
	buf[0x10] = 2    // Fats = 2
	binary.LittleEndian.PutUint32(buf[0x24:0x28], 100) // Fat32Length
	buf[0x1FE] = 0x55
	buf[0x1FF] = 0xAA

	dev := newDevice(t, buf)
	name, found, err := collision.Probe(dev, 0)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "FAT32", name)
}

func TestProbeExt4Superblock(t *testing.T) {
	buf := make([]byte, 8192)
	binary.LittleEndian.PutUint16(buf[1024+56:1024+58], 0xEF53)

	dev := newDevice(t, buf)
	name, found, err := collision.Probe(dev, 0)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "ext2/3/4", name)
}

func TestProbeGPTProtectiveMBR(t *testing.T) {
	buf := make([]byte, 8192)
	buf[450] = 0xEE
	buf[510] = 0x55
	buf[511] = 0xAA

	dev := newDevice(t, buf)
	name, found, err := collision.Probe(dev, 0)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "GPT", name)
}
