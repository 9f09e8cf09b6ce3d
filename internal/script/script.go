// Package script implements the textual dump format (C8): a line-based
// representation of a partition table that can be emitted from a live
// context and re-applied to a blank device later, per spec.md §4.7.
package script

import "github.com/ostafen/partedit/internal/ptable"

// Script is the parsed form of a dump file: the header block plus one
// partition template per partition line, in the order they appeared.
type Script struct {
	Label   string // label driver name, from the "label:" header
	LabelID string // from "label-id:"
	Device  string // from "device:", used only to reconstruct line prefixes
	Unit    string // from "unit:"; "sectors" is the only value this engine emits

	Partitions []ptable.Partition
}

// LabelIDHeader satisfies label.Context's ScriptLabelID accessor, letting
// a driver's Create reproduce this script's requested label identifier
// instead of generating a fresh random one.
func (s *Script) LabelIDHeader() string { return s.LabelID }

// headerKeys lists the fixed set of recognized header lines, in the order
// spec.md §4.7 shows them. Anything else is a partition line.
var headerKeys = []string{"label", "label-id", "device", "unit"}

func isHeaderKey(key string) bool {
	for _, k := range headerKeys {
		if k == key {
			return true
		}
	}
	return false
}
