package bsd

import (
	"fmt"
	"strconv"
	"strings"
)

// bsdAttrString packages the FFS fragment size and cylinders-per-group
// fields (not modeled as first-class Partition fields, since they only
// mean something for this one driver) into the generic Attrs string so the
// script engine can round-trip them.
func bsdAttrString(frag uint8, cpg uint16) string {
	if frag == 0 && cpg == 0 {
		return ""
	}
	return fmt.Sprintf("frag=%d,cpg=%d", frag, cpg)
}

func parseBSDAttrs(s string) (frag uint8, cpg uint16) {
	for _, part := range strings.Split(s, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		v, err := strconv.Atoi(kv[1])
		if err != nil {
			continue
		}
		switch kv[0] {
		case "frag":
			frag = uint8(v)
		case "cpg":
			cpg = uint16(v)
		}
	}
	return frag, cpg
}
