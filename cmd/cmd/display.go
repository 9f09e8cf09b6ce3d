package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ostafen/partedit/internal/fields"
	"github.com/ostafen/partedit/internal/label"
	"github.com/ostafen/partedit/internal/ptable"
)

// tablePartitions flattens ctx.Table into display order.
func tablePartitions(ctx *label.Context) []ptable.Partition {
	var out []ptable.Partition
	for _, ref := range ctx.Table.ByStart() {
		p, ok := ctx.Table.Get(ref)
		if !ok {
			continue
		}
		out = append(out, *p)
	}
	return out
}

// renderTable writes partitions as a column table to w, bolding the header
// row when colorMode resolves to enabled.
func renderTable(w io.Writer, ctx *label.Context, partitions []ptable.Partition, sectorSize uint64, colorMode string) error {
	var buf bytes.Buffer
	if err := fields.Write(&buf, ctx, partitions, fields.DefaultColumns(sectorSize)); err != nil {
		return err
	}
	if !colorEnabled(colorMode) {
		_, err := io.Copy(w, &buf)
		return err
	}
	header, rest, _ := strings.Cut(buf.String(), "\n")
	fmt.Fprintf(w, "\x1b[1m%s\x1b[0m\n%s", header, rest)
	return nil
}

func colorEnabled(mode string) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default:
		fi, err := os.Stdout.Stat()
		return err == nil && fi.Mode()&os.ModeCharDevice != 0
	}
}
