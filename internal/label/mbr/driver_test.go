package mbr_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ostafen/partedit/internal/label"
	"github.com/ostafen/partedit/internal/label/mbr"
	"github.com/ostafen/partedit/internal/ptable"
	"github.com/ostafen/partedit/internal/ptype/mbrtype"
	"github.com/ostafen/partedit/internal/sectorio"
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

func TestCreateThenAddPrimaryThenWriteThenRead(t *testing.T) {
	ctx := newTestContext(t, 204800) // 100 MiB

	drv := mbr.New()
	ctx.Driver = drv
	require.NoError(t, drv.Create(ctx))

	template := ptable.NewTemplate()
	template.Type.Code = mbrtype.Linux
	template.SetSize(100000)

	num, err := drv.AddPartition(ctx, template)
	require.NoError(t, err)
	require.Equal(t, 0, num)

	require.NoError(t, drv.Write(ctx))

	drv2 := mbr.New()
	ok, err := drv2.Probe(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, drv2.Read(ctx))
	p, err := drv2.GetPartition(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, uint64(2048), p.Start)
	require.Equal(t, mbrtype.Linux, p.Type.Code)
}

func TestAddExtendedAndLogicalsRoundTrip(t *testing.T) {
	ctx := newTestContext(t, 204800)

	drv := mbr.New()
	ctx.Driver = drv
	require.NoError(t, drv.Create(ctx))

	ext := ptable.NewTemplate()
	ext.Type.Code = mbrtype.ExtendedLBA
	ext.SetSize(190000)
	extNum, err := drv.AddPartition(ctx, ext)
	require.NoError(t, err)
	require.Equal(t, 0, extNum)

	log1 := ptable.NewTemplate()
	log1.Type.Code = mbrtype.Linux
	log1.SetSize(50000)
	n1, err := drv.AddPartition(ctx, log1)
	require.NoError(t, err)
	require.Equal(t, 4, n1)

	log2 := ptable.NewTemplate()
	log2.Type.Code = mbrtype.LinuxSwap
	log2.SetSize(20000)
	n2, err := drv.AddPartition(ctx, log2)
	require.NoError(t, err)
	require.Equal(t, 5, n2)

	require.NoError(t, drv.Write(ctx))

	drv2 := mbr.New()
	require.NoError(t, drv2.Read(ctx))

	p1, err := drv2.GetPartition(ctx, 4)
	require.NoError(t, err)
	require.Equal(t, mbrtype.Linux, p1.Type.Code)
	require.True(t, p1.IsNested)

	p2, err := drv2.GetPartition(ctx, 5)
	require.NoError(t, err)
	require.Equal(t, mbrtype.LinuxSwap, p2.Type.Code)
}

func TestAddPartitionOutOfSpace(t *testing.T) {
	ctx := newTestContext(t, 4096)

	drv := mbr.New()
	ctx.Driver = drv
	require.NoError(t, drv.Create(ctx))

	huge := ptable.NewTemplate()
	huge.Type.Code = mbrtype.Linux
	huge.SetSize(1 << 30)

	_, err := drv.AddPartition(ctx, huge)
	require.Error(t, err)
}

func TestDeletePartition(t *testing.T) {
	ctx := newTestContext(t, 204800)

	drv := mbr.New()
	ctx.Driver = drv
	require.NoError(t, drv.Create(ctx))

	p := ptable.NewTemplate()
	p.Type.Code = mbrtype.Linux
	p.SetSize(100000)
	num, err := drv.AddPartition(ctx, p)
	require.NoError(t, err)

	require.NoError(t, drv.DeletePartition(ctx, num))
	_, err = drv.GetPartition(ctx, num)
	require.Error(t, err)
}

// TestReorderNumbersLogicalsIndependently exercises a layout where a
// primary partition precedes the extended container on disk: the global
// ByStart index at the first logical is 2, not 0, so a Reorder that shared
// one counter across primaries and logicals would number them 6 and 7
// instead of the correct 4 and 5.
func TestReorderNumbersLogicalsIndependently(t *testing.T) {
	ctx := newTestContext(t, 204800)

	drv := mbr.New()
	ctx.Driver = drv
	require.NoError(t, drv.Create(ctx))

	primary := ptable.NewTemplate()
	primary.Type.Code = mbrtype.Linux
	primary.SetSize(10000)
	_, err := drv.AddPartition(ctx, primary)
	require.NoError(t, err)

	ext := ptable.NewTemplate()
	ext.Type.Code = mbrtype.ExtendedLBA
	ext.SetSize(150000)
	_, err = drv.AddPartition(ctx, ext)
	require.NoError(t, err)

	log1 := ptable.NewTemplate()
	log1.Type.Code = mbrtype.Linux
	log1.SetSize(50000)
	_, err = drv.AddPartition(ctx, log1)
	require.NoError(t, err)

	log2 := ptable.NewTemplate()
	log2.Type.Code = mbrtype.LinuxSwap
	log2.SetSize(20000)
	_, err = drv.AddPartition(ctx, log2)
	require.NoError(t, err)

	require.NoError(t, drv.Reorder(ctx))

	p0, err := drv.GetPartition(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, mbrtype.Linux, p0.Type.Code)
	require.False(t, p0.IsNested)

	container, err := drv.GetPartition(ctx, 1)
	require.NoError(t, err)
	require.True(t, container.IsContainer)

	l1, err := drv.GetPartition(ctx, 4)
	require.NoError(t, err)
	require.Equal(t, mbrtype.Linux, l1.Type.Code)
	require.True(t, l1.IsNested)

	l2, err := drv.GetPartition(ctx, 5)
	require.NoError(t, err)
	require.Equal(t, mbrtype.LinuxSwap, l2.Type.Code)
	require.True(t, l2.IsNested)

	// the EBR chain must re-thread against the new ordinals: a write/read
	// round trip should still recover both logicals at their new numbers.
	require.NoError(t, drv.Write(ctx))

	drv2 := mbr.New()
	require.NoError(t, drv2.Read(ctx))

	rl1, err := drv2.GetPartition(ctx, 4)
	require.NoError(t, err)
	require.Equal(t, mbrtype.Linux, rl1.Type.Code)

	rl2, err := drv2.GetPartition(ctx, 5)
	require.NoError(t, err)
	require.Equal(t, mbrtype.LinuxSwap, rl2.Type.Code)
}

func TestListFreespace(t *testing.T) {
	ctx := newTestContext(t, 204800)

	drv := mbr.New()
	ctx.Driver = drv
	require.NoError(t, drv.Create(ctx))

	p := ptable.NewTemplate()
	p.Type.Code = mbrtype.Linux
	p.SetSize(100000)
	_, err := drv.AddPartition(ctx, p)
	require.NoError(t, err)

	free, err := drv.ListFreespace(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, free)
}
