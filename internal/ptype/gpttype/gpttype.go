// Package gpttype populates the GPT partition type GUID catalog.
package gpttype

import "github.com/ostafen/partedit/internal/ptype"

// Well-known GPT partition type GUIDs, canonical (mixed-endian) string form.
const (
	Unused        = "00000000-0000-0000-0000-000000000000"
	EFISystem     = "C12A7328-F81F-11D2-BA4B-00A0C93EC93B"
	BIOSBoot      = "21686148-6449-6E6F-744E-656564454649"
	LinuxFS       = "0FC63DAF-8483-4772-8E79-3D69D8477DE4"
	LinuxSwap     = "0657FD6D-A4AB-43C4-84E5-0933C84B4F4F"
	LinuxLVM      = "E6D6D379-F507-44C2-A23C-238F2A3DF928"
	LinuxRAID     = "A19D880F-05FC-4D3B-A006-743F0F84911E"
	LinuxReserved = "8DA63339-0007-60C0-C436-083AC8230908"
	MicrosoftData = "EBD0A0A2-B9E5-4433-87C0-68B6B72699C7"
	MicrosoftRes  = "E3C9E316-0B5C-4DB8-817D-F92DF00215AE"
	AppleHFS      = "48465300-0000-11AA-AA11-00306543ECAC"
	AppleAPFS     = "7C3457EF-0000-11AA-AA11-00306543ECAC"
	FreeBSDUFS    = "516E7CB6-6ECF-11D6-8FF8-00022D09712B"
	FreeBSDSwap   = "516E7CB5-6ECF-11D6-8FF8-00022D09712B"
)

// NewRegistry builds the GPT type catalog, grounded on the canonical GUID
// constants in
// other_examples/a1e63540_rancher-elemental-toolkit__vendor-github.com-canonical-go-efilib-gpt.go.go,
// extended with the script-grammar shortcut letters from spec.md §4.7
// (L for Linux filesystem, S for Linux swap, U for the ESP, as MBR-style
// mnemonics carried over to GPT for script convenience).
func NewRegistry() *ptype.Registry {
	r := ptype.NewRegistry()
	r.Register(ptype.Entry{TypeStr: Unused, Name: "Unused"})
	r.Register(ptype.Entry{TypeStr: EFISystem, Name: "EFI System", Shortcuts: []string{"U"}})
	r.Register(ptype.Entry{TypeStr: BIOSBoot, Name: "BIOS boot"})
	r.Register(ptype.Entry{TypeStr: LinuxFS, Name: "Linux filesystem", Shortcuts: []string{"L"}})
	r.Register(ptype.Entry{TypeStr: LinuxSwap, Name: "Linux swap", Shortcuts: []string{"S"}})
	r.Register(ptype.Entry{TypeStr: LinuxLVM, Name: "Linux LVM", Shortcuts: []string{"V"}})
	r.Register(ptype.Entry{TypeStr: LinuxRAID, Name: "Linux RAID"})
	r.Register(ptype.Entry{TypeStr: LinuxReserved, Name: "Linux reserved"})
	r.Register(ptype.Entry{TypeStr: MicrosoftData, Name: "Microsoft basic data"})
	r.Register(ptype.Entry{TypeStr: MicrosoftRes, Name: "Microsoft reserved"})
	r.Register(ptype.Entry{TypeStr: AppleHFS, Name: "Apple HFS+"})
	r.Register(ptype.Entry{TypeStr: AppleAPFS, Name: "Apple APFS"})
	r.Register(ptype.Entry{TypeStr: FreeBSDUFS, Name: "FreeBSD UFS"})
	r.Register(ptype.Entry{TypeStr: FreeBSDSwap, Name: "FreeBSD swap"})
	return r
}
