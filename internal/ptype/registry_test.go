package ptype_test

import (
	"testing"

	"github.com/ostafen/partedit/internal/ptype"
	"github.com/ostafen/partedit/internal/ptype/mbrtype"
	"github.com/stretchr/testify/require"
)

func TestMBRRegistryLookupByCodeAndShortcut(t *testing.T) {
	r := mbrtype.NewRegistry()

	e, ok := r.LookupCode(mbrtype.Linux)
	require.True(t, ok)
	require.Equal(t, "Linux", e.Name)

	e, ok = r.LookupShortcut("l")
	require.True(t, ok)
	require.Equal(t, mbrtype.Linux, e.Code)

	e, ok = r.LookupShortcut("S")
	require.True(t, ok)
	require.Equal(t, mbrtype.LinuxSwap, e.Code)
}

func TestUnknownEntryFallback(t *testing.T) {
	e := ptype.Unknown(0x77, "")
	require.Equal(t, uint8(0x77), e.Code)
	require.Contains(t, e.Name, "unknown")
}

func TestIsExtendedRecognizesBothForms(t *testing.T) {
	require.True(t, mbrtype.IsExtended(mbrtype.ExtendedCHS))
	require.True(t, mbrtype.IsExtended(mbrtype.ExtendedLBA))
	require.False(t, mbrtype.IsExtended(mbrtype.Linux))
}
