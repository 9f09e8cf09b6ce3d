package script_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ostafen/partedit/internal/label"
	"github.com/ostafen/partedit/internal/label/mbr"
	"github.com/ostafen/partedit/internal/ptype/mbrtype"
	"github.com/ostafen/partedit/internal/sectorio"
	"github.com/ostafen/partedit/internal/script"
	"github.com/stretchr/testify/require"
)

func newTestContext(t *testing.T, sectors int) *label.Context {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "disk.img")
	require.NoError(t, os.WriteFile(path, make([]byte, sectors*512), 0644))

	dev, err := sectorio.Open(path, false)
	require.NoError(t, err)
	t.Cleanup(func() { dev.Close() })

	reg := label.NewRegistry()
	reg.Register("dos", mbr.New)

	ctx := label.NewContext(dev, false, reg)
	ctx.FirstUsableLBA = 2048
	return ctx
}

func TestApplyToContext(t *testing.T) {
	ctx := newTestContext(t, 204800)
	ctx.Driver = mbr.New()

	reg := mbrtype.NewRegistry()
	s, err := script.Parse(strings.NewReader(sampleDump), reg, 512)
	require.NoError(t, err)

	require.NoError(t, script.ApplyToContext(ctx, s))
	require.Equal(t, 2, ctx.Table.Len())

	_, p, ok := ctx.Table.ByOrdinal(0)
	require.True(t, ok)
	require.Equal(t, uint64(2048), p.Start)
}

func TestApplyToContextRollsBackOnFailure(t *testing.T) {
	ctx := newTestContext(t, 4096) // too small to host the second partition
	ctx.Driver = mbr.New()

	const dump = "label: dos\nunit: sectors\n\n1 : start=2048, size=1024, type=0x83\n2 : start=2048, size=1000000, type=0x83\n"
	reg := mbrtype.NewRegistry()
	s, err := script.Parse(strings.NewReader(dump), reg, 512)
	require.NoError(t, err)

	err = script.ApplyToContext(ctx, s)
	require.Error(t, err)
	require.Equal(t, 0, ctx.Table.Len())
}
