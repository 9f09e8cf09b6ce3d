package label

import "github.com/ostafen/partedit/internal/ptable"

// Driver is the interface every label implementation (MBR, GPT, BSD
// disklabel, ...) satisfies. The engine core holds drivers behind this
// interface — a trait-object table indexed by name — rather than embedding
// a common "base label" struct that concrete drivers extend; each driver
// owns its on-disk structures outright and the engine never reaches into
// driver-private state.
type Driver interface {
	// Name returns the label's canonical identifier ("dos", "gpt", "bsd",
	// ...), used for registry lookup and script `label:` headers.
	Name() string

	// Probe inspects ctx's first sector (and, for a nested label, the
	// parent's assigned partition) and decides whether this label is
	// present. It must not mutate ctx.
	Probe(ctx *Context) (bool, error)

	// Create wipes ctx's in-memory state and seeds a fresh header/entry
	// array, including a fresh random label identifier unless ctx's script
	// reference supplies one.
	Create(ctx *Context) error

	// Read populates ctx.Table from on-disk bytes.
	Read(ctx *Context) error

	// Write serializes every dirty sector owned by this label back to
	// ctx.Dev.
	Write(ctx *Context) error

	// Verify runs this driver's invariants and reports problems through
	// ctx.Ask, returning the number of problems found.
	Verify(ctx *Context) (int, error)

	// AddPartition allocates space for template (which may leave fields at
	// their "follow default" zero value) and returns the new ordinal.
	AddPartition(ctx *Context, template ptable.Partition) (int, error)

	// DeletePartition removes the partition at ordinal.
	DeletePartition(ctx *Context, ordinal int) error

	// GetPartition materializes the partition at ordinal.
	GetPartition(ctx *Context, ordinal int) (ptable.Partition, error)

	// SetPartition atomically mutates the partition at ordinal.
	SetPartition(ctx *Context, ordinal int, template ptable.Partition) error

	// Reorder permutes ctx.Table's partitions by start sector.
	Reorder(ctx *Context) error

	// ListFreespace emits synthetic "freespace" partitions for every unused
	// range this driver's container(s) expose.
	ListFreespace(ctx *Context) ([]ptable.Partition, error)
}

// LabelIdentified is an optional capability a Driver may implement when its
// format carries a single label-wide identifier (MBR's 32-bit disk
// signature, GPT's disk GUID). The script engine uses it to populate a
// dump's `label-id:` header; drivers without a label-wide identifier (BSD
// disklabel) simply don't implement it.
type LabelIdentified interface {
	LabelID() string
}
