package fields_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ostafen/partedit/internal/fields"
	"github.com/ostafen/partedit/internal/label"
	"github.com/ostafen/partedit/internal/ptable"
	"github.com/ostafen/partedit/internal/ptype/mbrtype"
	"github.com/ostafen/partedit/internal/sectorio"
	"github.com/stretchr/testify/require"
)

func newTestDevice(t *testing.T) *sectorio.Device {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "disk.img")
	require.NoError(t, os.WriteFile(path, make([]byte, 204800*512), 0644))
	dev, err := sectorio.Open(path, false)
	require.NoError(t, err)
	t.Cleanup(func() { dev.Close() })
	return dev
}

func TestWriteRendersHeaderAndRows(t *testing.T) {
	dev := newTestDevice(t)
	ctx := label.NewContext(dev, false, label.NewRegistry())

	p := ptable.NewTemplate()
	p.Num = 0
	p.Start = 2048
	p.SetSize(204800)
	p.Type = ptable.Type{Code: mbrtype.Linux, Name: "Linux"}

	var buf bytes.Buffer
	require.NoError(t, fields.Write(&buf, ctx, []ptable.Partition{p}, fields.DefaultColumns(512)))

	out := buf.String()
	require.True(t, strings.Contains(out, "Device"))
	require.True(t, strings.Contains(out, "Linux"))
	require.True(t, strings.Contains(out, "2048"))
}
