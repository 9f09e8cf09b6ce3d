package sectorio_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ostafen/partedit/internal/sectorio"
	"github.com/stretchr/testify/require"
)

func makeImage(t *testing.T, sectors int) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "disk.img")
	require.NoError(t, os.WriteFile(path, make([]byte, sectors*512), 0644))
	return path
}

func TestDeviceOpenDefaultsOnRegularFile(t *testing.T) {
	path := makeImage(t, 100)

	d, err := sectorio.Open(path, false)
	require.NoError(t, err)
	defer d.Close()

	require.Equal(t, uint64(512), d.LogicalSectorSize)
	require.Equal(t, uint64(100), d.TotalSectors)
	require.False(t, d.ReadOnly())
}

func TestDeviceReadWriteSectorsRoundTrip(t *testing.T) {
	path := makeImage(t, 16)

	d, err := sectorio.Open(path, false)
	require.NoError(t, err)
	defer d.Close()

	buf := make([]byte, 512)
	for i := range buf {
		buf[i] = byte(i)
	}
	require.NoError(t, d.WriteSectors(1, buf))

	got, err := d.ReadSectors(1, 1)
	require.NoError(t, err)
	require.Equal(t, buf, got)
}

func TestDeviceReadOnlyRejectsWrite(t *testing.T) {
	path := makeImage(t, 4)

	d, err := sectorio.Open(path, true)
	require.NoError(t, err)
	defer d.Close()

	err = d.WriteSectors(0, make([]byte, 512))
	require.Error(t, err)
}

func TestDeviceRetainAndClose(t *testing.T) {
	path := makeImage(t, 4)

	d, err := sectorio.Open(path, false)
	require.NoError(t, err)

	d2 := d.Retain()
	require.NoError(t, d2.Close())

	// first reference still open; closing again releases it.
	_, err = d.ReadSectors(0, 1)
	require.NoError(t, err)
	require.NoError(t, d.Close())
}
