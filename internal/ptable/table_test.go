package ptable_test

import (
	"testing"

	"github.com/ostafen/partedit/internal/ptable"
	"github.com/stretchr/testify/require"
)

func TestTableAddGetRemove(t *testing.T) {
	tbl := ptable.NewTable()

	p := ptable.NewTemplate()
	p.Num = 0
	p.Start = 2048
	p.SetSize(1024)

	ref := tbl.Add(p)
	got, ok := tbl.Get(ref)
	require.True(t, ok)
	require.Equal(t, uint64(2048), got.Start)
	require.Equal(t, uint64(3071), got.End)

	require.Equal(t, 1, tbl.Len())
	require.True(t, tbl.Remove(ref))
	require.Equal(t, 0, tbl.Len())

	_, ok = tbl.Get(ref)
	require.False(t, ok)
}

func TestTableByOrdinalAndByStart(t *testing.T) {
	tbl := ptable.NewTable()

	mk := func(num int, start uint64) ptable.Partition {
		p := ptable.NewTemplate()
		p.Num = num
		p.Start = start
		p.SetSize(100)
		return p
	}

	tbl.Add(mk(1, 5000))
	tbl.Add(mk(0, 2048))

	refs := tbl.Refs()
	require.Len(t, refs, 2)
	p0, _ := tbl.Get(refs[0])
	require.Equal(t, 0, p0.Num)

	byStart := tbl.ByStart()
	s0, _ := tbl.Get(byStart[0])
	require.Equal(t, uint64(2048), s0.Start)
}

func TestTableDiffAgainst(t *testing.T) {
	a := ptable.NewTable()
	b := ptable.NewTable()

	mk := func(num int, start, size uint64) ptable.Partition {
		p := ptable.NewTemplate()
		p.Num = num
		p.Start = start
		p.SetSize(size)
		return p
	}

	a.Add(mk(0, 2048, 1000))
	a.Add(mk(1, 4096, 1000))

	b.Add(mk(0, 2048, 2000)) // changed size/end
	b.Add(mk(2, 8192, 1000)) // added

	d := a.DiffAgainst(b)
	require.ElementsMatch(t, []int{2}, d.Added)
	require.ElementsMatch(t, []int{1}, d.Removed)
	require.ElementsMatch(t, []int{0}, d.Changed)
}

func TestPartitionSetSizeAndSetEndClearEachOther(t *testing.T) {
	p := ptable.NewTemplate()
	p.Start = 100

	p.SetSize(50)
	require.Equal(t, ptable.SizeAuthoritative, p.Which)
	require.Equal(t, uint64(149), p.End)

	p.SetEnd(200)
	require.Equal(t, ptable.EndAuthoritative, p.Which)
	require.Equal(t, uint64(101), p.Size)
}
