package bsd

import (
	"github.com/ostafen/partedit/internal/align"
	"github.com/ostafen/partedit/internal/ask"
	"github.com/ostafen/partedit/internal/label"
	"github.com/ostafen/partedit/internal/perr"
	"github.com/ostafen/partedit/internal/ptable"
	"github.com/ostafen/partedit/internal/ptype/bsdtype"
)

// Driver implements label.Driver for a BSD disklabel nested inside one of a
// parent label's slices (or, on platforms with no enclosing MBR, occupying
// the whole device directly).
type Driver struct {
	geom geometry
}

type geometry struct {
	sectorSize   uint32
	numSectors   uint32
	numTracks    uint32
	numCylinders uint32
}

// New returns a fresh, empty BSD disklabel driver instance. Register it
// with a label.Registry under the name "bsd".
func New() label.Driver { return &Driver{} }

func (d *Driver) Name() string { return "bsd" }

// sliceStart returns the absolute LBA this disklabel's own sector window
// begins at: the start of the parent partition it is nested inside, or 0
// if this context has no parent (the disklabel occupies the whole device).
func (d *Driver) sliceStart(ctx *label.Context) (uint64, error) {
	if ctx.Parent == nil {
		return 0, nil
	}
	_, p, ok := ctx.Parent.Table.ByOrdinal(ctx.ParentPartition)
	if !ok {
		return 0, perr.New(perr.InvalidArgument, "parent partition #%d does not exist", ctx.ParentPartition)
	}
	return p.Start, nil
}

func (d *Driver) labelLBA(ctx *label.Context) (uint64, error) {
	start, err := d.sliceStart(ctx)
	if err != nil {
		return 0, err
	}
	return start + LabelSector, nil
}

func (d *Driver) Probe(ctx *label.Context) (bool, error) {
	lba, err := d.labelLBA(ctx)
	if err != nil {
		return false, err
	}
	buf, err := ctx.Dev.ReadSectors(lba, 1)
	if err != nil {
		return false, err
	}
	if LabelOffset+labelStructSize > len(buf) {
		return false, nil
	}
	_, ok := decodeLabel(buf[LabelOffset:])
	return ok, nil
}

func (d *Driver) Create(ctx *label.Context) error {
	start, err := d.sliceStart(ctx)
	if err != nil {
		return err
	}
	d.geom = geometry{
		sectorSize:   uint32(ctx.Dev.LogicalSectorSize),
		numSectors:   63,
		numTracks:    255,
		numCylinders: uint32(ctx.Dev.TotalSectors / (63 * 255)),
	}
	ctx.FirstUsableLBA = start + 1 // reserve the label sector itself
	ctx.LastUsableLBA = d.sliceEnd(ctx, start)
	ctx.Table = ptable.NewTable()
	return nil
}

// sliceEnd resolves the containing slice's last usable LBA: the parent
// partition's End, or the device's last sector when there is no parent.
func (d *Driver) sliceEnd(ctx *label.Context, start uint64) uint64 {
	if ctx.Parent == nil {
		return ctx.Dev.TotalSectors - 1
	}
	_, p, ok := ctx.Parent.Table.ByOrdinal(ctx.ParentPartition)
	if !ok {
		return ctx.Dev.TotalSectors - 1
	}
	return p.End
}

func (d *Driver) Read(ctx *label.Context) error {
	lba, err := d.labelLBA(ctx)
	if err != nil {
		return err
	}
	buf, err := ctx.Dev.ReadSectors(lba, 1)
	if err != nil {
		return err
	}
	if LabelOffset+labelStructSize > len(buf) {
		return perr.New(perr.InvalidOnDisk, "disklabel sector too small")
	}
	region := buf[LabelOffset:]

	dl, ok := decodeLabel(region)
	if !ok {
		return perr.New(perr.NotFound, "no disklabel magic at %s LBA %d", ctx.Dev.Path(), lba)
	}
	if !verifyChecksum(region) {
		ctx.Dispatch(ask.NewWarn("disklabel checksum mismatch, continuing")) //nolint:errcheck
		ctx.LogWarn("disklabel checksum mismatch, continuing", "lba", lba)
	}

	d.geom = geometry{sectorSize: dl.SectorSize, numSectors: dl.NumSectors, numTracks: dl.NumTracks, numCylinders: dl.NumCylinders}

	start, err := d.sliceStart(ctx)
	if err != nil {
		return err
	}
	ctx.FirstUsableLBA = start + 1
	ctx.LastUsableLBA = d.sliceEnd(ctx, start)

	ctx.Table = ptable.NewTable()
	n := int(dl.NumPartitions)
	if n > MaxPartitions || n == 0 {
		n = MaxPartitions
	}
	for i := 0; i < n; i++ {
		e := dl.Partitions[i]
		if e.empty() {
			continue
		}
		p := ptable.NewTemplate()
		p.Num = i
		p.Start = start + uint64(e.Offset)
		p.SetSize(uint64(e.Size))
		p.Type = ptable.Type{Code: e.FSType}
		p.Attrs = bsdAttrString(e.Frag, e.CPG)
		p.FollowDefaultStart, p.FollowDefaultEnd, p.FollowDefaultNum = false, false, false
		ctx.Table.Add(p)
	}
	return nil
}

func (d *Driver) Write(ctx *label.Context) error {
	if ctx.ReadOnly {
		return perr.New(perr.BusyInUse, "context opened read-only")
	}
	if err := label.FlushWipes(ctx, ctx.WipeProgress); err != nil {
		return err
	}
	lba, err := d.labelLBA(ctx)
	if err != nil {
		return err
	}
	start, err := d.sliceStart(ctx)
	if err != nil {
		return err
	}

	dl := diskLabel{
		SectorSize:    d.geom.sectorSize,
		NumSectors:    d.geom.numSectors,
		NumTracks:     d.geom.numTracks,
		NumCylinders:  d.geom.numCylinders,
		NumPartitions: MaxPartitions,
	}
	for _, ref := range ctx.Table.Refs() {
		p, _ := ctx.Table.Get(ref)
		if p.Num < 0 || p.Num >= MaxPartitions {
			continue
		}
		frag, cpg := parseBSDAttrs(p.Attrs)
		dl.Partitions[p.Num] = partitionEntry{
			Offset: uint32(p.Start - start),
			Size:   uint32(p.Size),
			FSType: p.Type.Code,
			Frag:   frag,
			CPG:    cpg,
		}
	}

	buf, err := ctx.Dev.ReadSectors(lba, 1)
	if err != nil || len(buf) < LabelOffset+labelStructSize {
		buf = make([]byte, ctx.Dev.LogicalSectorSize)
	}
	copy(buf[LabelOffset:LabelOffset+labelStructSize], dl.encode())
	return ctx.Dev.WriteSectors(lba, buf)
}

func (d *Driver) Verify(ctx *label.Context) (int, error) {
	warnings := 0
	refs := ctx.Table.ByStart()
	for i := 0; i+1 < len(refs); i++ {
		a, _ := ctx.Table.Get(refs[i])
		b, _ := ctx.Table.Get(refs[i+1])
		if a.End >= b.Start {
			warnings++
			ctx.Dispatch(ask.NewWarn("overlapping disklabel partitions detected")) //nolint:errcheck
			ctx.LogWarn("overlapping disklabel partitions detected")
		}
	}
	return warnings, nil
}

func (d *Driver) alignParams(ctx *label.Context) align.Params {
	return align.Params{
		SectorSize:      ctx.Dev.LogicalSectorSize,
		PhysicalSector:  ctx.Dev.PhysicalSectorSize,
		MinIOSize:       ctx.Dev.MinIOSize,
		GrainBytes:      ctx.GrainBytes,
		AlignmentOffset: ctx.Dev.AlignmentOffset,
		FirstUsableLBA:  ctx.FirstUsableLBAForAlign(),
	}
}

func (d *Driver) usedRanges(ctx *label.Context) []label.UsedRange {
	var ranges []label.UsedRange
	for _, ref := range ctx.Table.Refs() {
		p, _ := ctx.Table.Get(ref)
		ranges = append(ranges, label.UsedRange{Start: p.Start, End: p.End})
	}
	return ranges
}

func (d *Driver) freeOrdinal(ctx *label.Context) int {
	for i := 0; i < MaxPartitions; i++ {
		if _, _, ok := ctx.Table.ByOrdinal(i); !ok {
			return i
		}
	}
	return -1
}

func (d *Driver) AddPartition(ctx *label.Context, template ptable.Partition) (int, error) {
	ap := d.alignParams(ctx)
	entries := label.Freespace(ctx.FirstUsableLBA, ctx.LastUsableLBA, d.usedRanges(ctx), 0)

	ordinal := template.Num
	if template.FollowDefaultNum {
		ordinal = d.freeOrdinal(ctx)
	}
	if ordinal < 0 || ordinal >= MaxPartitions {
		return 0, perr.New(perr.OutOfSpace, "no free disklabel partition slot")
	}
	if _, _, occupied := ctx.Table.ByOrdinal(ordinal); occupied {
		return 0, perr.New(perr.InvalidArgument, "partition %d already in use", ordinal)
	}

	start, end, err := allocate(entries, template, ap)
	if err != nil {
		return 0, err
	}

	p := template
	p.Num = ordinal
	p.Start = start
	p.SetEnd(end)
	if p.Type.Code == 0 {
		p.Type = ptable.Type{Code: bsdtype.FFSV1}
	}
	p.FollowDefaultStart, p.FollowDefaultEnd, p.FollowDefaultNum = false, false, false

	ctx.Table.Add(p)
	return ordinal, nil
}

func (d *Driver) DeletePartition(ctx *label.Context, ordinal int) error {
	ref, _, ok := ctx.Table.ByOrdinal(ordinal)
	if !ok {
		return perr.New(perr.NotFound, "no partition #%d", ordinal)
	}
	ctx.Table.Remove(ref)
	return nil
}

func (d *Driver) GetPartition(ctx *label.Context, ordinal int) (ptable.Partition, error) {
	_, p, ok := ctx.Table.ByOrdinal(ordinal)
	if !ok {
		return ptable.Partition{}, perr.New(perr.NotFound, "no partition #%d", ordinal)
	}
	return *p, nil
}

func (d *Driver) SetPartition(ctx *label.Context, ordinal int, template ptable.Partition) error {
	ref, p, ok := ctx.Table.ByOrdinal(ordinal)
	if !ok {
		return perr.New(perr.NotFound, "no partition #%d", ordinal)
	}
	updated := *p
	if !template.FollowDefaultStart {
		updated.Start = template.Start
	}
	if !template.FollowDefaultEnd {
		updated.SetEnd(template.End)
	}
	if template.Type.Code != 0 {
		updated.Type = template.Type
	}
	if template.Attrs != "" {
		updated.Attrs = template.Attrs
	}
	ctx.Table.Replace(ref, updated)
	return nil
}

func (d *Driver) Reorder(ctx *label.Context) error {
	refs := ctx.Table.ByStart()
	for i, ref := range refs {
		p, _ := ctx.Table.Get(ref)
		p.Num = i
		ctx.Table.Replace(ref, *p)
	}
	return nil
}

func (d *Driver) ListFreespace(ctx *label.Context) ([]ptable.Partition, error) {
	grainSectors := ctx.GrainBytes / ctx.Dev.LogicalSectorSize
	return label.Freespace(ctx.FirstUsableLBA, ctx.LastUsableLBA, d.usedRanges(ctx), grainSectors), nil
}
