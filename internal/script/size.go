package script

import (
	"strconv"
	"strings"

	"github.com/ostafen/partedit/internal/perr"
)

// decimalMultipliers and binaryMultipliers give the byte multiplier for
// each unit suffix letter, per spec.md §4.7 ("K,M,G,T,P, KiB/MiB/...").
var decimalMultipliers = map[byte]uint64{
	'K': 1_000,
	'M': 1_000_000,
	'G': 1_000_000_000,
	'T': 1_000_000_000_000,
	'P': 1_000_000_000_000_000,
}

var binaryMultipliers = map[byte]uint64{
	'K': 1 << 10,
	'M': 1 << 20,
	'G': 1 << 30,
	'T': 1 << 40,
	'P': 1 << 50,
}

// ParseSize converts a script size field into a sector count. A bare
// integer is already a sector count (the "unit: sectors" header applies).
// A value carrying a K/M/G/T/P (or KiB/MiB/...) suffix is converted to
// bytes and then to sectors using sectorSize. The exact suffix text is
// returned so FormatSize can reproduce it on emission.
func ParseSize(s string, sectorSize uint64) (sectors uint64, unit string, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, "", perr.New(perr.InvalidArgument, "empty size field")
	}

	i := 0
	for i < len(s) && (s[i] >= '0' && s[i] <= '9') {
		i++
	}
	if i == 0 {
		return 0, "", perr.New(perr.InvalidArgument, "size %q has no leading digits", s)
	}
	value, err := strconv.ParseUint(s[:i], 10, 64)
	if err != nil {
		return 0, "", perr.Wrap(perr.InvalidArgument, err, "invalid size %q", s)
	}

	suffix := strings.TrimSpace(s[i:])
	if suffix == "" {
		return value, "", nil
	}

	letter := suffix[0] - 'a' + 'A'
	if suffix[0] >= 'A' && suffix[0] <= 'Z' {
		letter = suffix[0]
	}
	binary := len(suffix) >= 2 && (suffix[1] == 'i' || suffix[1] == 'I')

	table := decimalMultipliers
	if binary {
		table = binaryMultipliers
	}
	mult, ok := table[letter]
	if !ok {
		return 0, "", perr.New(perr.InvalidArgument, "unrecognized size suffix %q", suffix)
	}

	bytes := value * mult
	sectors = bytes / sectorSize
	if bytes%sectorSize != 0 {
		sectors++
	}
	return sectors, suffix, nil
}

// FormatSize is ParseSize's inverse: given a sector count and the unit
// suffix remembered on the partition (empty meaning "plain sector count"),
// it reproduces the original textual size field.
func FormatSize(sectors uint64, unit string, sectorSize uint64) string {
	if unit == "" {
		return strconv.FormatUint(sectors, 10)
	}

	letter := unit[0]
	binary := len(unit) >= 2 && (unit[1] == 'i' || unit[1] == 'I')
	table := decimalMultipliers
	if binary {
		table = binaryMultipliers
	}
	mult := table[letter]
	if mult == 0 {
		return strconv.FormatUint(sectors, 10)
	}

	bytes := sectors * sectorSize
	value := bytes / mult
	return strconv.FormatUint(value, 10) + unit
}
