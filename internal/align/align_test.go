package align_test

import (
	"testing"

	"github.com/ostafen/partedit/internal/align"
	"github.com/stretchr/testify/require"
)

func mib(n uint64) uint64 { return n * 1024 * 1024 }

func TestAlignUpDownNearest(t *testing.T) {
	p := align.Params{
		SectorSize:     512,
		PhysicalSector: 512,
		MinIOSize:      512,
		GrainBytes:     mib(1),
		FirstUsableLBA: 2048,
	}

	grainSectors := mib(1) / 512 // 2048

	require.Equal(t, uint64(2048), p.Align(0, align.Up))
	require.Equal(t, uint64(2048), p.Align(100, align.Up))
	require.Equal(t, uint64(2*grainSectors), p.Align(grainSectors+1, align.Up))
	require.Equal(t, uint64(grainSectors), p.Align(grainSectors+1, align.Down))
	require.Equal(t, uint64(2048), p.Align(1, align.Nearest))
}

func TestAlignAlreadyAligned(t *testing.T) {
	p := align.Params{
		SectorSize:     512,
		PhysicalSector: 512,
		MinIOSize:      512,
		GrainBytes:     mib(1),
		FirstUsableLBA: 2048,
	}
	require.True(t, p.IsAligned(2048))
	require.Equal(t, uint64(2048), p.Align(2048, align.Up))
	require.Equal(t, uint64(2048), p.Align(2048, align.Down))
}

func TestAlignRangeClampsToBounds(t *testing.T) {
	p := align.Params{
		SectorSize:     512,
		PhysicalSector: 512,
		MinIOSize:      512,
		GrainBytes:     mib(1),
		FirstUsableLBA: 2048,
	}
	grain := mib(1) / 512

	lo, hi, n := p.AlignRange(grain+10, 2048, grain*5)
	require.Equal(t, uint64(2048), lo)
	require.Equal(t, uint64(grain*5), hi)
	require.True(t, n >= lo && n <= hi)
}

func TestAlignRespectsFirstUsableLBA(t *testing.T) {
	p := align.Params{
		SectorSize:     512,
		PhysicalSector: 512,
		MinIOSize:      512,
		GrainBytes:     mib(1),
		FirstUsableLBA: 34, // typical GPT first usable LBA
	}
	require.Equal(t, uint64(34), p.Align(1, align.Up))
	require.Equal(t, uint64(34), p.Align(0, align.Nearest))
}
