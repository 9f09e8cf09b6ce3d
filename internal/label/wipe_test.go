package label_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ostafen/partedit/internal/label"
	"github.com/ostafen/partedit/internal/sectorio"
	"github.com/stretchr/testify/require"
)

func makeDevice(t *testing.T, sectors int) *sectorio.Device {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "disk.img")
	data := make([]byte, sectors*512)
	for i := range data {
		data[i] = 0xAB
	}
	require.NoError(t, os.WriteFile(path, data, 0644))

	d, err := sectorio.Open(path, false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func TestFlushWipesZeroesMarkedRanges(t *testing.T) {
	dev := makeDevice(t, 16)
	ctx := label.NewContext(dev, false, label.NewRegistry())

	ctx.MarkWipe(2, 4)

	var written, total int64
	require.NoError(t, label.FlushWipes(ctx, func(w, tot int64) {
		written, total = w, tot
	}))

	require.Equal(t, int64(3*512), total)
	require.Equal(t, total, written)

	got, err := dev.ReadSectors(2, 3)
	require.NoError(t, err)
	require.Equal(t, make([]byte, 3*512), got)

	// sectors outside the marked range are untouched
	untouched, err := dev.ReadSectors(5, 1)
	require.NoError(t, err)
	for _, b := range untouched {
		require.Equal(t, byte(0xAB), b)
	}

	require.Empty(t, ctx.Wipes.Ranges())
}

func TestFlushWipesNoopWhenNothingMarked(t *testing.T) {
	dev := makeDevice(t, 4)
	ctx := label.NewContext(dev, false, label.NewRegistry())

	called := false
	require.NoError(t, label.FlushWipes(ctx, func(int64, int64) { called = true }))
	require.False(t, called)
}
