// Package mbrtype populates the MBR/DOS partition type catalog: the
// well-known single-byte codes and the shortcut letters the script engine
// accepts in a `type=L` style field.
package mbrtype

import "github.com/ostafen/partedit/internal/ptype"

const (
	Empty            uint8 = 0x00
	FAT12            uint8 = 0x01
	FAT16Small       uint8 = 0x04
	ExtendedCHS      uint8 = 0x05
	FAT16            uint8 = 0x06
	NTFSExFAT        uint8 = 0x07
	FAT32CHS         uint8 = 0x0b
	FAT32LBA         uint8 = 0x0c
	FAT16LBA         uint8 = 0x0e
	ExtendedLBA      uint8 = 0x0f
	LinuxSwap        uint8 = 0x82
	Linux            uint8 = 0x83
	LinuxExtended    uint8 = 0x85
	LinuxLVM         uint8 = 0x8e
	FreeBSD          uint8 = 0xa5
	OpenBSD          uint8 = 0xa6
	NetBSD           uint8 = 0xa9
	GPTProtective    uint8 = 0xee
	EFISystem        uint8 = 0xef
)

// NewRegistry builds the MBR type catalog, grounded on the code points the
// teacher's getPartitionTypeName switch recognized, corrected to their real
// byte values and extended with the shortcut letters spec.md's script
// grammar names (L, S, E, X, U, V, R for Linux, Linux swap, Extended (LBA),
// Extended, NTFS/exFAT/HPFS, Linux LVM and EFI System).
func NewRegistry() *ptype.Registry {
	r := ptype.NewRegistry()
	r.Register(ptype.Entry{Code: Empty, Name: "Empty"})
	r.Register(ptype.Entry{Code: FAT12, Name: "FAT12"})
	r.Register(ptype.Entry{Code: FAT16Small, Name: "FAT16 <32M"})
	r.Register(ptype.Entry{Code: ExtendedCHS, Name: "Extended", Shortcuts: []string{"X"}})
	r.Register(ptype.Entry{Code: FAT16, Name: "FAT16"})
	r.Register(ptype.Entry{Code: NTFSExFAT, Name: "NTFS/exFAT/HPFS", Shortcuts: []string{"U"}})
	r.Register(ptype.Entry{Code: FAT32CHS, Name: "FAT32 (CHS)"})
	r.Register(ptype.Entry{Code: FAT32LBA, Name: "FAT32 (LBA)"})
	r.Register(ptype.Entry{Code: FAT16LBA, Name: "FAT16 (LBA)"})
	r.Register(ptype.Entry{Code: ExtendedLBA, Name: "Extended (LBA)", Shortcuts: []string{"E"}})
	r.Register(ptype.Entry{Code: LinuxSwap, Name: "Linux swap", Shortcuts: []string{"S"}})
	r.Register(ptype.Entry{Code: Linux, Name: "Linux", Shortcuts: []string{"L"}})
	r.Register(ptype.Entry{Code: LinuxExtended, Name: "Linux extended"})
	r.Register(ptype.Entry{Code: LinuxLVM, Name: "Linux LVM", Shortcuts: []string{"V"}})
	r.Register(ptype.Entry{Code: FreeBSD, Name: "FreeBSD"})
	r.Register(ptype.Entry{Code: OpenBSD, Name: "OpenBSD"})
	r.Register(ptype.Entry{Code: NetBSD, Name: "NetBSD"})
	r.Register(ptype.Entry{Code: GPTProtective, Name: "GPT protective MBR"})
	r.Register(ptype.Entry{Code: EFISystem, Name: "EFI System", Shortcuts: []string{"R"}})
	return r
}

// IsExtended reports whether code marks an MBR extended container.
func IsExtended(code uint8) bool {
	return code == ExtendedCHS || code == ExtendedLBA
}
