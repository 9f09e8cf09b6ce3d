package script_test

import (
	"strings"
	"testing"

	"github.com/ostafen/partedit/internal/label/mbr"
	"github.com/ostafen/partedit/internal/ptable"
	"github.com/ostafen/partedit/internal/ptype/mbrtype"
	"github.com/ostafen/partedit/internal/script"
	"github.com/stretchr/testify/require"
)

func TestFromContextThenEmitThenApplyReproducesTable(t *testing.T) {
	ctx := newTestContext(t, 204800)
	drv := mbr.New()
	ctx.Driver = drv
	require.NoError(t, drv.Create(ctx))

	tmpl := ptable.NewTemplate()
	tmpl.Type.Code = mbrtype.Linux
	tmpl.SetSize(40960)
	_, err := drv.AddPartition(ctx, tmpl)
	require.NoError(t, err)

	s := script.FromContext(ctx)
	require.Equal(t, "dos", s.Label)
	require.Len(t, s.Partitions, 1)

	emitted := script.Emit(s, 512)

	ctx2 := newTestContext(t, 204800)
	ctx2.Driver = mbr.New()
	reparsed, err := script.Parse(strings.NewReader(emitted), mbrtype.NewRegistry(), 512)
	require.NoError(t, err)
	require.NoError(t, script.ApplyToContext(ctx2, reparsed))

	require.Equal(t, ctx.Table.Len(), ctx2.Table.Len())
	_, p1, ok1 := ctx.Table.ByOrdinal(0)
	_, p2, ok2 := ctx2.Table.ByOrdinal(0)
	require.True(t, ok1)
	require.True(t, ok2)
	require.Equal(t, p1.Start, p2.Start)
	require.Equal(t, p1.Size, p2.Size)
	require.Equal(t, p1.Type.Code, p2.Type.Code)
}
