package label_test

import (
	"testing"

	"github.com/ostafen/partedit/internal/label"
	"github.com/stretchr/testify/require"
)

func TestFreespaceEmitsGapsBetweenUsedRanges(t *testing.T) {
	used := []label.UsedRange{
		{Start: 2048, End: 206847},
		{Start: 500000, End: 600000},
	}

	free := label.Freespace(2048, 1000000, used, 2048)
	require.Len(t, free, 2)
	require.Equal(t, uint64(206848), free[0].Start)
	require.Equal(t, uint64(499999), free[0].End)
	require.Equal(t, uint64(600001), free[1].Start)
	require.Equal(t, uint64(1000000), free[1].End)
}

func TestFreespaceFlagsScarceHead(t *testing.T) {
	used := []label.UsedRange{{Start: 2048, End: 1000000}}
	free := label.Freespace(2048, 1000100, used, 2048)
	require.Len(t, free, 1)
	require.True(t, free[0].ScarceHead)
}

func TestFreespaceNoGapsWhenFullyUsed(t *testing.T) {
	used := []label.UsedRange{{Start: 2048, End: 1000000}}
	free := label.Freespace(2048, 1000000, used, 2048)
	require.Empty(t, free)
}

func TestFreespaceEntireRangeFreeWhenNothingUsed(t *testing.T) {
	free := label.Freespace(2048, 4095, nil, 2048)
	require.Len(t, free, 1)
	require.Equal(t, uint64(2048), free[0].Start)
	require.Equal(t, uint64(4095), free[0].End)
}
