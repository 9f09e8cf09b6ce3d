package script

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ostafen/partedit/internal/ptable"
)

// Emit renders s back into the textual dump format: headers, a blank line,
// then one line per partition. It is Parse's inverse — parse(emit(s))
// reproduces s's partitions exactly, and emit is idempotent: emitting a
// script parsed from its own output yields the same text again.
func Emit(s *Script, sectorSize uint64) string {
	var b strings.Builder

	if s.Label != "" {
		fmt.Fprintf(&b, "label: %s\n", s.Label)
	}
	if s.LabelID != "" {
		fmt.Fprintf(&b, "label-id: %s\n", s.LabelID)
	}
	if s.Device != "" {
		fmt.Fprintf(&b, "device: %s\n", s.Device)
	}
	unit := s.Unit
	if unit == "" {
		unit = "sectors"
	}
	fmt.Fprintf(&b, "unit: %s\n", unit)
	b.WriteByte('\n')

	for i, p := range s.Partitions {
		b.WriteString(partitionPrefix(s.Device, i))
		b.WriteString(" : ")
		b.WriteString(strings.Join(partitionFields(p, sectorSize), ", "))
		b.WriteByte('\n')
	}
	return b.String()
}

func partitionPrefix(device string, ordinal int) string {
	if device == "" {
		return strconv.Itoa(ordinal + 1)
	}
	return device + strconv.Itoa(ordinal+1)
}

func partitionFields(p ptable.Partition, sectorSize uint64) []string {
	fields := []string{
		fmt.Sprintf("start=%d", p.Start),
		fmt.Sprintf("size=%s", FormatSize(p.Size, p.SizeUnit, sectorSize)),
	}
	if t := typeField(p); t != "" {
		fields = append(fields, "type="+t)
	}
	if p.UUID != "" {
		fields = append(fields, "uuid="+p.UUID)
	}
	if p.Name != "" {
		fields = append(fields, fmt.Sprintf("name=%q", p.Name))
	}
	if p.Attrs != "" {
		fields = append(fields, fmt.Sprintf("attrs=%q", p.Attrs))
	}
	if p.Bootable {
		fields = append(fields, "bootable")
	}
	return fields
}

func typeField(p ptable.Partition) string {
	if p.Type.TypeStr != "" {
		return p.Type.TypeStr
	}
	if p.Type.Code != 0 {
		return fmt.Sprintf("0x%02x", p.Type.Code)
	}
	return ""
}
