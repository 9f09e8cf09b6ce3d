package script

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/ostafen/partedit/internal/perr"
	"github.com/ostafen/partedit/internal/ptable"
	"github.com/ostafen/partedit/internal/ptype"
)

// Parse reads a dump file from r. reg resolves `type=`/`Id=` values
// (shortcuts, numeric codes, or label-specific type strings) against the
// target label's type catalog; sectorSize converts unit-suffixed size
// fields to sectors.
func Parse(r io.Reader, reg *ptype.Registry, sectorSize uint64) (*Script, error) {
	s := &Script{Unit: "sectors"}

	sc := bufio.NewScanner(r)
	inHeader := true
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		if inHeader {
			if key, value, ok := splitHeader(line); ok {
				switch key {
				case "label":
					s.Label = value
				case "label-id":
					s.LabelID = value
				case "device":
					s.Device = value
				case "unit":
					s.Unit = value
				}
				continue
			}
			inHeader = false
		}

		p, err := parsePartitionLine(line, reg, sectorSize)
		if err != nil {
			return nil, perr.Wrap(perr.InvalidArgument, err, "line %d", lineNo)
		}
		s.Partitions = append(s.Partitions, p)
	}
	if err := sc.Err(); err != nil {
		return nil, perr.Wrap(perr.IOError, err, "reading script")
	}
	return s, nil
}

// splitHeader reports whether line is one of the fixed header lines
// ("label: gpt", "label-id: ...", ...); anything else is a partition line.
func splitHeader(line string) (key, value string, ok bool) {
	i := strings.IndexByte(line, ':')
	if i < 0 {
		return "", "", false
	}
	key = strings.ToLower(strings.TrimSpace(line[:i]))
	if !isHeaderKey(key) {
		return "", "", false
	}
	return key, strings.TrimSpace(line[i+1:]), true
}

func parsePartitionLine(line string, reg *ptype.Registry, sectorSize uint64) (ptable.Partition, error) {
	left, right, ok := strings.Cut(line, ":")
	if !ok {
		return ptable.Partition{}, perr.New(perr.InvalidArgument, "partition line has no ':' separator: %q", line)
	}
	left = strings.TrimSpace(left)
	right = strings.TrimSpace(right)

	p := ptable.NewTemplate()
	p.Num = ordinalFromPrefix(left)
	if p.Num >= 0 {
		p.FollowDefaultNum = false
	}

	if strings.ContainsRune(right, '=') {
		if err := parseKeyValueFields(right, reg, sectorSize, &p); err != nil {
			return ptable.Partition{}, err
		}
	} else {
		if err := parsePositionalFields(right, reg, sectorSize, &p); err != nil {
			return ptable.Partition{}, err
		}
	}
	return p, nil
}

// ordinalFromPrefix extracts a zero-based ordinal from the text before a
// partition line's ':': either an explicit 1-based number, or a device
// path's trailing digits (e.g. "/dev/sda2" -> ordinal 1). Returns -1 when
// neither form applies, meaning "next free slot".
func ordinalFromPrefix(left string) int {
	if left == "" {
		return -1
	}
	i := len(left)
	for i > 0 && left[i-1] >= '0' && left[i-1] <= '9' {
		i--
	}
	digits := left[i:]
	if digits == "" {
		return -1
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n <= 0 {
		return -1
	}
	return n - 1
}

// parseKeyValueFields parses "start=2048, size=40960, type=L, bootable"
// style fields, splitting on commas that are not inside a quoted string.
func parseKeyValueFields(s string, reg *ptype.Registry, sectorSize uint64, p *ptable.Partition) error {
	for _, field := range splitFields(s) {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		key, value, hasValue := strings.Cut(field, "=")
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.Trim(strings.TrimSpace(value), `"`)

		switch {
		case !hasValue && key == "bootable":
			p.Bootable = true
		case key == "start":
			n, err := strconv.ParseUint(value, 10, 64)
			if err != nil {
				return perr.Wrap(perr.InvalidArgument, err, "invalid start %q", value)
			}
			p.Start = n
			p.FollowDefaultStart = false
		case key == "size":
			n, unit, err := ParseSize(value, sectorSize)
			if err != nil {
				return err
			}
			p.SetSize(n)
			p.SizeUnit = unit
		case key == "type" || key == "id":
			if err := resolveType(value, reg, p); err != nil {
				return err
			}
		case key == "uuid":
			p.UUID = value
		case key == "name":
			p.Name = value
		case key == "attrs":
			p.Attrs = value
		default:
			// unknown field: ignore, forward-compatible with future keys
		}
	}
	return nil
}

// parsePositionalFields parses the simpler "<start>, <size>, <type>,
// <boot>" comma form, where an empty field means "use default".
func parsePositionalFields(s string, reg *ptype.Registry, sectorSize uint64, p *ptable.Partition) error {
	fields := splitFields(s)
	get := func(i int) string {
		if i < len(fields) {
			return strings.TrimSpace(fields[i])
		}
		return ""
	}

	if v := get(0); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return perr.Wrap(perr.InvalidArgument, err, "invalid start %q", v)
		}
		p.Start = n
		p.FollowDefaultStart = false
	}
	if v := get(1); v != "" {
		n, unit, err := ParseSize(v, sectorSize)
		if err != nil {
			return err
		}
		p.SetSize(n)
		p.SizeUnit = unit
	}
	if v := get(2); v != "" {
		if err := resolveType(v, reg, p); err != nil {
			return err
		}
	}
	if v := get(3); v != "" && v != "-" && v != "0" {
		p.Bootable = true
	}
	return nil
}

// resolveType resolves a script `type=`/`Id=` value against reg: a
// shortcut letter, a numeric MBR-style code (decimal or 0x-prefixed hex),
// or a label-specific type string (GPT GUID, BSD fstype name).
func resolveType(value string, reg *ptype.Registry, p *ptable.Partition) error {
	if reg == nil {
		p.Type = ptable.Type{TypeStr: value}
		return nil
	}
	if e, ok := reg.LookupShortcut(value); ok {
		p.Type = ptable.Type{Code: e.Code, TypeStr: e.TypeStr, Name: e.Name}
		return nil
	}
	if n, err := strconv.ParseUint(value, 0, 8); err == nil {
		if e, ok := reg.LookupCode(uint8(n)); ok {
			p.Type = ptable.Type{Code: e.Code, TypeStr: e.TypeStr, Name: e.Name}
			return nil
		}
		p.Type = ptable.Type{Code: uint8(n)}
		return nil
	}
	if e, ok := reg.LookupTypeStr(value); ok {
		p.Type = ptable.Type{Code: e.Code, TypeStr: e.TypeStr, Name: e.Name}
		return nil
	}
	p.Type = ptable.Type{TypeStr: value}
	return nil
}

// splitFields splits s on commas that are not inside a double-quoted
// substring, so `name="a, b"` stays one field.
func splitFields(s string) []string {
	var out []string
	inQuote := false
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			inQuote = !inQuote
		case ',':
			if !inQuote {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	out = append(out, s[start:])
	return out
}
