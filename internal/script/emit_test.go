package script_test

import (
	"strings"
	"testing"

	"github.com/ostafen/partedit/internal/ptype/mbrtype"
	"github.com/ostafen/partedit/internal/script"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	reg := mbrtype.NewRegistry()
	s, err := script.Parse(strings.NewReader(sampleDump), reg, 512)
	require.NoError(t, err)

	emitted := script.Emit(s, 512)

	reparsed, err := script.Parse(strings.NewReader(emitted), reg, 512)
	require.NoError(t, err)
	require.Equal(t, s.Partitions, reparsed.Partitions)

	reemitted := script.Emit(reparsed, 512)
	require.Equal(t, emitted, reemitted)
}

func TestEmitIncludesHeadersAndBlankLine(t *testing.T) {
	s := &script.Script{Label: "gpt", Device: "/dev/sdb", Unit: "sectors"}
	out := script.Emit(s, 512)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Equal(t, "label: gpt", lines[0])
	require.Equal(t, "device: /dev/sdb", lines[1])
	require.Equal(t, "unit: sectors", lines[2])
	require.Equal(t, "", lines[3])
}
