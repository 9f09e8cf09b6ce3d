package bsd_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ostafen/partedit/internal/label"
	"github.com/ostafen/partedit/internal/label/bsd"
	"github.com/ostafen/partedit/internal/label/mbr"
	"github.com/ostafen/partedit/internal/ptable"
	"github.com/ostafen/partedit/internal/ptype/bsdtype"
	"github.com/ostafen/partedit/internal/ptype/mbrtype"
	"github.com/ostafen/partedit/internal/sectorio"
	"github.com/stretchr/testify/require"
)

func newDevice(t *testing.T, sectors int) *sectorio.Device {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "disk.img")
	require.NoError(t, os.WriteFile(path, make([]byte, sectors*512), 0644))

	dev, err := sectorio.Open(path, false)
	require.NoError(t, err)
	t.Cleanup(func() { dev.Close() })
	return dev
}

func TestWholeDiskCreateAddWriteRead(t *testing.T) {
	dev := newDevice(t, 204800)
	reg := label.NewRegistry()
	reg.Register("bsd", bsd.New)
	ctx := label.NewContext(dev, false, reg)

	drv := bsd.New()
	ctx.Driver = drv
	require.NoError(t, drv.Create(ctx))

	tmpl := ptable.NewTemplate()
	tmpl.Type.Code = bsdtype.FFSV1
	tmpl.SetSize(100000)
	num, err := drv.AddPartition(ctx, tmpl)
	require.NoError(t, err)

	require.NoError(t, drv.Write(ctx))

	drv2 := bsd.New()
	ok, err := drv2.Probe(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, drv2.Read(ctx))

	p, err := drv2.GetPartition(ctx, num)
	require.NoError(t, err)
	require.Equal(t, uint64(100000), p.Size)
	require.Equal(t, bsdtype.FFSV1, p.Type.Code)
}

func TestNestedInsideMBRSlice(t *testing.T) {
	dev := newDevice(t, 204800)

	mbrReg := label.NewRegistry()
	mbrReg.Register("dos", mbr.New)
	parent := label.NewContext(dev, false, mbrReg)
	parent.FirstUsableLBA = 2048

	mbrDrv := mbr.New()
	parent.Driver = mbrDrv
	require.NoError(t, mbrDrv.Create(parent))

	slice := ptable.NewTemplate()
	slice.Type.Code = mbrtype.FreeBSD
	slice.SetSize(100000)
	sliceNum, err := mbrDrv.AddPartition(parent, slice)
	require.NoError(t, err)
	require.NoError(t, mbrDrv.Write(parent))

	bsdReg := label.NewRegistry()
	bsdReg.Register("bsd", bsd.New)
	child := label.NewContext(dev, false, bsdReg)
	child.Parent = parent
	child.ParentPartition = sliceNum

	bsdDrv := bsd.New()
	child.Driver = bsdDrv
	require.NoError(t, bsdDrv.Create(child))

	sliceRef, sliceP, ok := parent.Table.ByOrdinal(sliceNum)
	require.True(t, ok)
	_ = sliceRef
	require.Equal(t, sliceP.Start+1, child.FirstUsableLBA)

	tmpl := ptable.NewTemplate()
	tmpl.Type.Code = bsdtype.FFSV1
	tmpl.SetSize(40000)
	num, err := bsdDrv.AddPartition(child, tmpl)
	require.NoError(t, err)

	require.NoError(t, bsdDrv.Write(child))

	drv2 := bsd.New()
	child2 := label.NewContext(dev, false, bsdReg)
	child2.Parent = parent
	child2.ParentPartition = sliceNum
	ok, err = drv2.Probe(child2)
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, drv2.Read(child2))

	p, err := drv2.GetPartition(child2, num)
	require.NoError(t, err)
	require.GreaterOrEqual(t, p.Start, child.FirstUsableLBA)
	require.LessOrEqual(t, p.End, sliceP.End)
}
