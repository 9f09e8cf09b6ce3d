// Package ptype defines the partition-type catalog abstraction shared by
// every label driver: a small registry mapping a numeric code or type
// string to a human-readable name, plus the shortcut aliases the script
// engine accepts in a `type=` field.
package ptype

// Entry is one partition-type catalog entry. Either Code (MBR) or TypeStr
// (GPT GUID, BSD fstype name, ...) identifies it; Name is always present.
type Entry struct {
	Code    uint8
	TypeStr string
	Name    string
	// Shortcuts are single-letter or short aliases accepted in script
	// `type=` fields (e.g. "L" for Linux, "S" for swap).
	Shortcuts []string
}

// Unknown marks an Entry synthesized for a code/string that is not in the
// registry, so callers can still display something instead of erroring.
func Unknown(code uint8, typeStr string) Entry {
	if typeStr != "" {
		return Entry{TypeStr: typeStr, Name: "unknown (" + typeStr + ")"}
	}
	return Entry{Code: code, Name: "unknown"}
}

// Registry is an ordered, lookup-indexed partition type catalog. It is a
// plain map rather than the teacher's single hardcoded switch statement,
// generalized so each label driver can own an independently populated
// table.
type Registry struct {
	byCode     map[uint8]Entry
	byTypeStr  map[string]Entry
	byShortcut map[string]Entry
	ordered    []Entry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byCode:     make(map[uint8]Entry),
		byTypeStr:  make(map[string]Entry),
		byShortcut: make(map[string]Entry),
	}
}

// Register adds e to the registry, indexing it by code (if non-zero name
// applies), type string, and any shortcuts.
func (r *Registry) Register(e Entry) {
	r.ordered = append(r.ordered, e)
	if e.TypeStr != "" {
		r.byTypeStr[normalize(e.TypeStr)] = e
	} else {
		r.byCode[e.Code] = e
	}
	for _, s := range e.Shortcuts {
		r.byShortcut[normalize(s)] = e
	}
}

// LookupCode finds the entry for an MBR-style numeric code.
func (r *Registry) LookupCode(code uint8) (Entry, bool) {
	e, ok := r.byCode[code]
	return e, ok
}

// LookupTypeStr finds the entry for a GUID or label-specific type string.
func (r *Registry) LookupTypeStr(s string) (Entry, bool) {
	e, ok := r.byTypeStr[normalize(s)]
	return e, ok
}

// LookupShortcut resolves a script `type=` shortcut letter/token.
func (r *Registry) LookupShortcut(s string) (Entry, bool) {
	e, ok := r.byShortcut[normalize(s)]
	return e, ok
}

// All returns every registered entry in registration order.
func (r *Registry) All() []Entry {
	return r.ordered
}

func normalize(s string) string {
	out := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		out[i] = c
	}
	return string(out)
}
