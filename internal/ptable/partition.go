// Package ptable holds the partition entity and table, stored in flat arenas
// addressed by integer index rather than the linked, cyclically-referencing
// structures a straight C port would produce. A Ref is a stable handle into
// a Table's arena; it survives reordering and remains valid until the
// partition it names is removed.
package ptable

import "github.com/ostafen/partedit/internal/perr"

// Ref is an opaque handle to a partition stored in a Table's arena. The zero
// Ref is never valid.
type Ref int

const invalidRef Ref = -1

// SizeField tracks which of End/Size is currently authoritative, per the
// "exactly one of (end, size)" invariant.
type SizeField int

const (
	// SizeAuthoritative means Size is authoritative and End is derived.
	SizeAuthoritative SizeField = iota
	// EndAuthoritative means End is authoritative and Size is derived.
	EndAuthoritative
)

// Type identifies a partition's type, either by a small numeric code (MBR)
// or by a label-specific string (GPT GUID, BSD fstype name, ...).
type Type struct {
	Code    uint8
	TypeStr string
	Name    string
}

// Partition is the engine's entity for a real or synthetic (freespace)
// partition. It carries no pointers to siblings, parents, or tables: all
// relationships are expressed as Refs resolved through the owning Table.
type Partition struct {
	Num int // ordinal within its table; -1 means "next free"

	Start uint64
	End   uint64
	Size  uint64
	Which SizeField

	Type Type

	Name       string
	UUID       string
	Attrs      string
	CHSStart   string
	CHSEnd     string
	Bootable   bool
	SizeUnit   string // remembered size suffix from a script ("M", "MiB", ...), empty if none

	IsFreespace bool
	// ScarceHead marks a freespace entry narrower than the alignment grain,
	// meaning no aligned partition can actually start inside it.
	ScarceHead  bool
	IsContainer bool // e.g. MBR extended container
	IsNested    bool // e.g. MBR logical
	Parent      Ref  // valid when IsNested; invalidRef otherwise

	// FollowDefaultStart/End/Num mark fields left unset on an add-template,
	// telling the allocator to pick a value instead of honoring the zero
	// value literally.
	FollowDefaultStart bool
	FollowDefaultEnd   bool
	FollowDefaultNum   bool

	refs int
}

// NewTemplate returns a Partition with every "use default" flag set, the
// starting point for add_partition(ctx, template) calls that only override a
// few fields.
func NewTemplate() Partition {
	return Partition{
		Num:                -1,
		Parent:             invalidRef,
		FollowDefaultStart: true,
		FollowDefaultEnd:   true,
		FollowDefaultNum:   true,
	}
}

// SetSize sets Size and clears End's authority, per the "setting one clears
// the other" invariant.
func (p *Partition) SetSize(size uint64) {
	p.Size = size
	p.Which = SizeAuthoritative
	if p.Start > 0 || p.Size > 0 {
		p.End = p.Start + size - 1
	}
}

// SetEnd sets End and clears Size's authority.
func (p *Partition) SetEnd(end uint64) {
	p.End = end
	p.Which = EndAuthoritative
	if end >= p.Start {
		p.Size = end - p.Start + 1
	}
}

// Retain bumps the partition's reference count for callers holding it as a
// stand-alone template outside any table.
func (p *Partition) Retain() { p.refs++ }

// Release drops a reference; it is a no-op below zero.
func (p *Partition) Release() {
	if p.refs > 0 {
		p.refs--
	}
}

// Validate checks the invariants that apply regardless of label, returning a
// typed InvalidArgument error describing the first violation found.
func (p *Partition) Validate(firstUsable, lastUsable uint64) error {
	if p.End < p.Start {
		return perr.New(perr.InvalidArgument, "partition end %d precedes start %d", p.End, p.Start)
	}
	if p.Start < firstUsable || p.Start > lastUsable {
		return perr.New(perr.InvalidArgument, "start %d out of usable range [%d,%d]", p.Start, firstUsable, lastUsable)
	}
	return nil
}
