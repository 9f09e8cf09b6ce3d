// Package label implements the label-agnostic partition-table engine (the
// context object and the operations every driver exposes) plus the driver
// registry. Label drivers themselves (MBR, GPT, BSD disklabel) live in
// sibling packages and register with this package's Registry; the engine
// core never knows about a concrete driver type, only the Driver interface.
package label

import (
	"log/slog"

	"github.com/ostafen/partedit/internal/ask"
	"github.com/ostafen/partedit/internal/ptable"
	"github.com/ostafen/partedit/internal/sectorio"
	"github.com/ostafen/partedit/internal/wipe"
	"golang.org/x/text/language"
)

// Context is the engine's device handle: the device, its geometry, the
// active label driver, the in-memory partition table, and the callbacks
// needed to talk to a host UI. A Context may nest inside a parent Context
// when probing a label embedded inside one of the parent's partitions (a
// BSD disklabel inside an MBR slice, for instance) — the nesting is an
// explicit pointer field, not a cyclic parent/child pair of raw pointers.
type Context struct {
	Dev      *sectorio.Device
	ReadOnly bool

	FirstUsableLBA uint64
	LastUsableLBA  uint64
	GrainBytes     uint64

	// Parent is set when this Context represents a label nested inside one
	// of Parent's partitions (e.g. a BSD disklabel inside an MBR slice).
	Parent *Context
	// ParentPartition is the ordinal, within Parent's table, of the
	// partition this Context's label lives inside. Only meaningful when
	// Parent != nil.
	ParentPartition int

	// FirstSectorBuf caches the first sector read from the device (the
	// MBR/primary bootsector). It may be shared with Parent when this
	// Context's label starts at sector 0 of the parent's slice.
	FirstSectorBuf []byte

	Driver     Driver
	registry   *Registry
	Table      *ptable.Table

	Ask         ask.Callback
	AskUserData any

	// Locale is stamped onto every Request this engine builds before
	// dispatch, letting a host pick the language of the text it renders
	// around a Request's Message/Query. It defaults to language.English.
	Locale language.Tag

	// ScriptRef carries an opaque reference to the script (internal/script
	// Script) whose headers influenced label creation, when this context
	// was populated via apply_script. Declared as `any` to avoid a import
	// cycle between label and script (script.ApplyToContext is the only
	// thing that sets it).
	ScriptRef any

	// Logger receives structured diagnostic records for soft-failure
	// conditions a driver tolerates and continues past (bad EBR magic,
	// a checksum mismatch falling back to a backup copy, an excess GPT
	// entry). It is distinct from Ask: Ask is the user-facing dialog
	// protocol, Logger is for a caller that wants a durable, greppable
	// record of what the engine worked around. Nil disables logging.
	Logger *slog.Logger

	Wipes wipe.Set

	// WipeProgress, if set, is invoked by FlushWipes as each marked range is
	// zeroed, letting a host render a progress bar for large wipe areas
	// (e.g. an entire filesystem's worth of stale superblocks) without the
	// engine knowing anything about how progress is displayed.
	WipeProgress Progress

	usedProbed    bool
	used          bool
	collisionName string
}

// NewContext builds a Context bound to dev, with usable-range and grain
// defaults derived from the device's own geometry.
func NewContext(dev *sectorio.Device, readOnly bool, registry *Registry) *Context {
	const defaultGrainBytes = 1 << 20 // 1 MiB

	return &Context{
		Dev:             dev,
		ReadOnly:        readOnly,
		FirstUsableLBA:  1,
		LastUsableLBA:   dev.TotalSectors - 1,
		GrainBytes:      defaultGrainBytes,
		ParentPartition: -1,
		registry:        registry,
		Table:           ptable.NewTable(),
		Locale:          language.English,
	}
}

// Dispatch stamps this context's Locale onto req and sends it through
// ctx.Ask, the same cancellation normalization as ask.Dispatch. Every
// Request the engine builds should go through this method rather than
// calling ask.Dispatch directly, so the host callback always sees the
// locale the request should be rendered in.
func (ctx *Context) Dispatch(req *ask.Request) error {
	req.Locale = ctx.Locale
	return ask.Dispatch(ctx.Ask, req)
}

// Registry returns the set of label drivers registered for this context.
func (ctx *Context) Registry() *Registry { return ctx.registry }

// LogWarn records a soft-failure diagnostic through ctx.Logger, if set,
// tagged with this context's driver name. It never touches ctx.Ask —
// callers raise the user-facing warning separately — and is a no-op when
// no Logger is attached.
func (ctx *Context) LogWarn(msg string, args ...any) {
	if ctx.Logger == nil {
		return
	}
	if ctx.Driver != nil {
		args = append(args, "label", ctx.Driver.Name())
	}
	ctx.Logger.Warn(msg, args...)
}

// FirstUsableLBAForAlign returns the first-usable LBA the drivers feed into
// their align.Params: 1 when this context's parent context has a GPT
// driver, otherwise ctx.FirstUsableLBA.
func (ctx *Context) FirstUsableLBAForAlign() uint64 {
	if ctx.Parent != nil && ctx.Parent.Driver != nil && ctx.Parent.Driver.Name() == "gpt" {
		return 1
	}
	return ctx.FirstUsableLBA
}

// SetUsed caches whether the device already carries a recognized
// filesystem/RAID signature and, if so, what the collision probe named it.
func (ctx *Context) SetUsed(used bool, name string) {
	ctx.usedProbed = true
	ctx.used = used
	ctx.collisionName = name
}

// Used reports the cached "device already used" flag, and whether it has
// been probed at all.
func (ctx *Context) Used() (used bool, probed bool, name string) {
	return ctx.used, ctx.usedProbed, ctx.collisionName
}

// scriptLabelID is satisfied by *script.Script without internal/label
// needing to import internal/script (which itself imports this package).
type scriptLabelID interface {
	LabelIDHeader() string
}

// ScriptLabelID returns the label identifier an applied script's header
// requested, if ctx.ScriptRef carries one. Drivers call this from Create
// so that apply_script reproduces the exact on-disk identifier instead of
// generating a fresh random one, satisfying the script round-trip property.
func (ctx *Context) ScriptLabelID() (string, bool) {
	s, ok := ctx.ScriptRef.(scriptLabelID)
	if !ok {
		return "", false
	}
	id := s.LabelIDHeader()
	return id, id != ""
}
