package gpt_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ostafen/partedit/internal/label"
	"github.com/ostafen/partedit/internal/label/gpt"
	"github.com/ostafen/partedit/internal/ptable"
	"github.com/ostafen/partedit/internal/ptype/gpttype"
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
	reg.Register("gpt", gpt.New)

	return label.NewContext(dev, false, reg)
}

func TestCreateAddWriteRead(t *testing.T) {
	ctx := newTestContext(t, 204800) // 100 MiB

	drv := gpt.New()
	ctx.Driver = drv
	require.NoError(t, drv.Create(ctx))
	require.Greater(t, ctx.FirstUsableLBA, uint64(2))
	require.Less(t, ctx.LastUsableLBA, uint64(204800))

	template := ptable.NewTemplate()
	template.Type.TypeStr = gpttype.LinuxFS
	template.Name = "root"
	template.SetSize(100000)

	num, err := drv.AddPartition(ctx, template)
	require.NoError(t, err)
	require.Equal(t, 0, num)

	require.NoError(t, drv.Write(ctx))

	drv2 := gpt.New()
	ok, err := drv2.Probe(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, drv2.Read(ctx))
	p, err := drv2.GetPartition(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, gpttype.LinuxFS, p.Type.TypeStr)
	require.Equal(t, "root", p.Name)
	require.Equal(t, uint64(100000), p.Size)
}

func TestProbeRejectsPlainMBR(t *testing.T) {
	ctx := newTestContext(t, 204800)
	sector := make([]byte, 512)
	sector[510], sector[511] = 0x55, 0xaa
	require.NoError(t, ctx.Dev.WriteSectors(1, sector))

	drv := gpt.New()
	ok, err := drv.Probe(ctx)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestDeleteAndFreespace(t *testing.T) {
	ctx := newTestContext(t, 204800)
	drv := gpt.New()
	ctx.Driver = drv
	require.NoError(t, drv.Create(ctx))

	t1 := ptable.NewTemplate()
	t1.Type.TypeStr = gpttype.LinuxFS
	t1.SetSize(50000)
	n1, err := drv.AddPartition(ctx, t1)
	require.NoError(t, err)

	free, err := drv.ListFreespace(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, free)

	require.NoError(t, drv.DeletePartition(ctx, n1))
	_, err = drv.GetPartition(ctx, n1)
	require.Error(t, err)
}

func TestOutOfSpace(t *testing.T) {
	ctx := newTestContext(t, 20480) // 10 MiB
	drv := gpt.New()
	ctx.Driver = drv
	require.NoError(t, drv.Create(ctx))

	tmpl := ptable.NewTemplate()
	tmpl.Type.TypeStr = gpttype.LinuxFS
	tmpl.SetSize(2_000_000)
	_, err := drv.AddPartition(ctx, tmpl)
	require.Error(t, err)
}
