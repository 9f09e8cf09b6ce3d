// Package fields implements the per-label column descriptor tables used to
// render a partition table for display (C11): which columns apply, in
// what order, and how each cell is computed from a partition and its
// owning context. Shape grounded on the teacher's tabwriter-based
// NAME/DESC/SIGNATURES column printer, generalized from one fixed column
// set to a label-selectable one.
package fields

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/ostafen/partedit/internal/label"
	"github.com/ostafen/partedit/internal/ptable"
	"github.com/ostafen/partedit/pkg/util/format"
)

// Column is one displayable field: a header label and a function that
// renders it for a given partition.
type Column struct {
	Header string
	Value  func(ctx *label.Context, p ptable.Partition, ordinal int) string
}

func deviceColumn() Column {
	return Column{
		Header: "Device",
		Value: func(ctx *label.Context, p ptable.Partition, ordinal int) string {
			if p.IsFreespace {
				return "-"
			}
			path := "-"
			if ctx.Dev != nil {
				path = ctx.Dev.Path()
			}
			return path + strconv.Itoa(ordinal+1)
		},
	}
}

var startColumn = Column{
	Header: "Start",
	Value:  func(_ *label.Context, p ptable.Partition, _ int) string { return strconv.FormatUint(p.Start, 10) },
}

var endColumn = Column{
	Header: "End",
	Value:  func(_ *label.Context, p ptable.Partition, _ int) string { return strconv.FormatUint(p.End, 10) },
}

func sizeColumn(sectorSize uint64) Column {
	return Column{
		Header: "Size",
		Value: func(_ *label.Context, p ptable.Partition, _ int) string {
			return format.FormatBytes(int64(p.Size * sectorSize))
		},
	}
}

var typeColumn = Column{
	Header: "Type",
	Value: func(_ *label.Context, p ptable.Partition, _ int) string {
		if p.IsFreespace {
			return "Free space"
		}
		if p.Type.Name != "" {
			return p.Type.Name
		}
		if p.Type.TypeStr != "" {
			return p.Type.TypeStr
		}
		return fmt.Sprintf("0x%02x", p.Type.Code)
	},
}

var flagsColumn = Column{
	Header: "Flags",
	Value: func(_ *label.Context, p ptable.Partition, _ int) string {
		switch {
		case p.IsFreespace:
			return ""
		case p.Bootable:
			return "boot"
		case p.ScarceHead:
			return "scarce"
		default:
			return ""
		}
	},
}

// DefaultColumns returns the standard Device/Start/End/Size/Type/Flags
// column set every label driver displays, sizing the Size column's byte
// conversion to sectorSize.
func DefaultColumns(sectorSize uint64) []Column {
	return []Column{deviceColumn(), startColumn, endColumn, sizeColumn(sectorSize), typeColumn, flagsColumn}
}

// Write renders partitions as a tab-aligned table to w, ordinal-numbering
// rows by their position in the slice (the list command passes the table's
// partitions in ByStart order followed by the synthetic freespace entries).
func Write(w io.Writer, ctx *label.Context, partitions []ptable.Partition, columns []Column) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	for i, col := range columns {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, col.Header)
	}
	fmt.Fprintln(tw)

	for ordinal, p := range partitions {
		for i, col := range columns {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, col.Value(ctx, p, ordinal))
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}
