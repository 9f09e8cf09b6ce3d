// Package bsdtype populates the BSD disklabel fstype catalog. There is no
// pack file that implements BSD disklabels; the code points and names below
// transcribe spec.md's GLOSSARY/§2 description of the classic 4.4BSD
// fstype byte directly.
package bsdtype

import "github.com/ostafen/partedit/internal/ptype"

const (
	Unused  uint8 = 0
	Swap    uint8 = 1
	FFSV1   uint8 = 7
	FFSV2   uint8 = 8
	LFS     uint8 = 4
	ISOFS   uint8 = 15
	Ext2FS  uint8 = 17
	CCDDev  uint8 = 20
)

// NewRegistry builds the BSD disklabel fstype catalog.
func NewRegistry() *ptype.Registry {
	r := ptype.NewRegistry()
	r.Register(ptype.Entry{Code: Unused, Name: "unused"})
	r.Register(ptype.Entry{Code: Swap, Name: "swap", Shortcuts: []string{"S"}})
	r.Register(ptype.Entry{Code: FFSV1, Name: "4.2BSD"})
	r.Register(ptype.Entry{Code: FFSV2, Name: "4.4LFS"})
	r.Register(ptype.Entry{Code: LFS, Name: "log-structured"})
	r.Register(ptype.Entry{Code: ISOFS, Name: "ISO9660"})
	r.Register(ptype.Entry{Code: Ext2FS, Name: "ext2fs"})
	r.Register(ptype.Entry{Code: CCDDev, Name: "ccd"})
	return r
}
