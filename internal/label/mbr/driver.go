package mbr

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	"sort"
	"strconv"
	"strings"

	"github.com/ostafen/partedit/internal/align"
	"github.com/ostafen/partedit/internal/ask"
	"github.com/ostafen/partedit/internal/label"
	"github.com/ostafen/partedit/internal/perr"
	"github.com/ostafen/partedit/internal/ptable"
	"github.com/ostafen/partedit/internal/ptype/mbrtype"
)

// Driver implements label.Driver for the classic MBR/DOS partition table
// plus its extended/logical EBR chain.
type Driver struct {
	diskSignature  uint32
	bootCode       [BootCodeSize]byte
	extendedRef    ptable.Ref
	haveExtended   bool
	ebrLBA         map[int]uint64 // ordinal -> the sector its EBR lives at
	chainViolation bool           // a logical's EBR LBA did not increase monotonically
}

// New returns a fresh, empty MBR driver instance. Register it with a
// label.Registry under the name "dos".
func New() label.Driver {
	return &Driver{ebrLBA: make(map[int]uint64), extendedRef: -1}
}

func (d *Driver) Name() string { return "dos" }

// LabelID satisfies label.LabelIdentified, reporting the disk signature as
// the hex string a script's `label-id:` header carries.
func (d *Driver) LabelID() string {
	return "0x" + strconv.FormatUint(uint64(d.diskSignature), 16)
}

// readSector0 returns ctx's cached first-sector buffer, reading and
// populating it on first use. Probe and Read both need sector 0 and a
// nested context reading a BSD disklabel at the start of this same slice
// may share the same cache, so the sector is fetched from the device at
// most once per context.
func readSector0(ctx *label.Context) ([]byte, error) {
	if ctx.FirstSectorBuf != nil {
		return ctx.FirstSectorBuf, nil
	}
	buf, err := ctx.Dev.ReadSectors(0, 1)
	if err != nil {
		return nil, err
	}
	ctx.FirstSectorBuf = buf
	return buf, nil
}

func (d *Driver) Probe(ctx *label.Context) (bool, error) {
	buf, err := readSector0(ctx)
	if err != nil {
		return false, err
	}
	return binary.LittleEndian.Uint16(buf[SignatureOffset:SignatureOffset+2]) == Signature, nil
}

func (d *Driver) Create(ctx *label.Context) error {
	d.diskSignature = 0
	if id, ok := ctx.ScriptLabelID(); ok {
		n, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(id), "0x"), 16, 32)
		if err != nil {
			return perr.Wrap(perr.InvalidArgument, err, "invalid label-id %q", id)
		}
		d.diskSignature = uint32(n)
	} else {
		var sig [4]byte
		if _, err := cryptorand.Read(sig[:]); err != nil {
			return perr.Wrap(perr.IOError, err, "generate MBR disk signature")
		}
		d.diskSignature = binary.LittleEndian.Uint32(sig[:])
	}
	d.bootCode = [BootCodeSize]byte{}
	d.extendedRef = -1
	d.haveExtended = false
	d.ebrLBA = make(map[int]uint64)
	ctx.Table = ptable.NewTable()
	ctx.FirstSectorBuf = nil
	return nil
}

func (d *Driver) Read(ctx *label.Context) error {
	buf, err := readSector0(ctx)
	if err != nil {
		return err
	}
	if binary.LittleEndian.Uint16(buf[SignatureOffset:SignatureOffset+2]) != Signature {
		return perr.New(perr.NotFound, "no MBR signature on %s", ctx.Dev.Path())
	}

	copy(d.bootCode[:], buf[:BootCodeSize])
	d.diskSignature = binary.LittleEndian.Uint32(buf[BootCodeSize : BootCodeSize+4])

	ctx.Table = ptable.NewTable()
	d.extendedRef = -1
	d.haveExtended = false
	d.ebrLBA = make(map[int]uint64)
	d.chainViolation = false

	for i := 0; i < 4; i++ {
		e := decodeEntry(buf[EntriesOffset+i*EntrySize:])
		if e.empty() {
			continue
		}
		p := ptable.NewTemplate()
		p.Num = i
		p.Start = uint64(e.StartLBA)
		p.SetSize(uint64(e.SizeSectors))
		p.Type = ptable.Type{Code: e.Type}
		p.Bootable = e.BootIndicator == 0x80
		p.FollowDefaultStart, p.FollowDefaultEnd, p.FollowDefaultNum = false, false, false

		if mbrtype.IsExtended(e.Type) {
			p.IsContainer = true
			ref := ctx.Table.Add(p)
			d.extendedRef = ref
			d.haveExtended = true
			if err := d.readLogicalChain(ctx, ref, p.Start); err != nil {
				return err
			}
			continue
		}
		ctx.Table.Add(p)
	}
	return nil
}

// readLogicalChain walks the EBR chain starting at containerStart, adding
// one nested partition per EBR. A soft failure (bad EBR magic) only
// produces a warning; a backwards or repeated link stops the walk and is
// recorded so Verify can flag it, per the product decision to leave that
// case's on-disk handling unspecified rather than reject it outright.
func (d *Driver) readLogicalChain(ctx *label.Context, containerRef ptable.Ref, containerStart uint64) error {
	visited := make(map[uint64]bool)
	ebrLBA := containerStart
	ordinal := firstNestedOrdinal

	const maxChainLength = 4096
	for i := 0; i < maxChainLength; i++ {
		if visited[ebrLBA] {
			d.chainViolation = true
			break
		}
		visited[ebrLBA] = true

		buf, err := ctx.Dev.ReadSectors(ebrLBA, 1)
		if err != nil {
			return err
		}
		if binary.LittleEndian.Uint16(buf[SignatureOffset:SignatureOffset+2]) != Signature {
			ctx.Dispatch(ask.NewWarn("invalid EBR signature, continuing")) //nolint:errcheck
			ctx.LogWarn("invalid EBR signature, continuing", "lba", ebrLBA)
		}

		data := decodeEntry(buf[EntriesOffset:])
		link := decodeEntry(buf[EntriesOffset+EntrySize:])

		if !data.empty() {
			p := ptable.NewTemplate()
			p.Num = ordinal
			p.IsNested = true
			p.Parent = containerRef
			p.Start = ebrLBA + uint64(data.StartLBA)
			p.SetSize(uint64(data.SizeSectors))
			p.Type = ptable.Type{Code: data.Type}
			p.Bootable = data.BootIndicator == 0x80
			p.FollowDefaultStart, p.FollowDefaultEnd, p.FollowDefaultNum = false, false, false
			ref := ctx.Table.Add(p)
			d.ebrLBA[ordinal] = ebrLBA
			_ = ref
		}

		if link.empty() {
			break
		}
		next := containerStart + uint64(link.StartLBA)
		if next <= ebrLBA {
			d.chainViolation = true
		}
		ebrLBA = next
		ordinal++
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

	sector := make([]byte, SectorSize)
	copy(sector[:BootCodeSize], d.bootCode[:])
	binary.LittleEndian.PutUint32(sector[BootCodeSize:BootCodeSize+4], d.diskSignature)
	binary.LittleEndian.PutUint16(sector[SignatureOffset:SignatureOffset+2], Signature)

	for i := 0; i < 4; i++ {
		_, p, ok := ctx.Table.ByOrdinal(i)
		slot := sector[EntriesOffset+i*EntrySize : EntriesOffset+(i+1)*EntrySize]
		if !ok {
			continue
		}
		e := entry{
			Type:        p.Type.Code,
			StartLBA:    uint32(p.Start),
			SizeSectors: uint32(p.Size),
			StartCHS:    lbaToCHS(p.Start, defaultGeometry),
			EndCHS:      lbaToCHS(p.End, defaultGeometry),
		}
		if p.Bootable {
			e.BootIndicator = 0x80
		}
		e.encode(slot)
	}

	if err := ctx.Dev.WriteSectors(0, sector); err != nil {
		return err
	}
	ctx.FirstSectorBuf = sector

	if !d.haveExtended {
		return nil
	}
	return d.writeLogicalChain(ctx)
}

// chainEBRLocations assigns each logical partition's EBR sector: the first
// logical's EBR sits at the extended container's own start sector (the
// universal on-disk convention every MBR tool relies on to find the chain
// at all), and each subsequent EBR sits directly after the previous
// logical's data, leaving no gap a foreign tool would misread as unused
// space inside the extended container.
func (d *Driver) chainEBRLocations(ctx *label.Context, container *ptable.Partition, logicals []ptable.Ref) map[ptable.Ref]uint64 {
	locs := make(map[ptable.Ref]uint64, len(logicals))
	prevEnd := container.Start - 1
	for i, ref := range logicals {
		p, _ := ctx.Table.Get(ref)
		if i == 0 {
			locs[ref] = container.Start
		} else {
			locs[ref] = prevEnd + 1
		}
		prevEnd = p.End
	}
	return locs
}

func (d *Driver) writeLogicalChain(ctx *label.Context) error {
	container, ok := ctx.Table.Get(d.extendedRef)
	if !ok {
		return nil
	}

	logicals := d.sortedLogicals(ctx)
	locs := d.chainEBRLocations(ctx, container, logicals)

	for i, ref := range logicals {
		p, _ := ctx.Table.Get(ref)
		ebrLBA := locs[ref]
		d.ebrLBA[p.Num] = ebrLBA

		sector := make([]byte, SectorSize)
		binary.LittleEndian.PutUint16(sector[SignatureOffset:SignatureOffset+2], Signature)

		data := entry{
			Type:        p.Type.Code,
			StartLBA:    uint32(p.Start - ebrLBA),
			SizeSectors: uint32(p.Size),
			StartCHS:    lbaToCHS(p.Start, defaultGeometry),
			EndCHS:      lbaToCHS(p.End, defaultGeometry),
		}
		if p.Bootable {
			data.BootIndicator = 0x80
		}
		data.encode(sector[EntriesOffset:])

		if i+1 < len(logicals) {
			nextEBR := locs[logicals[i+1]]
			next, _ := ctx.Table.Get(logicals[i+1])
			link := entry{
				Type:        mbrtype.ExtendedLBA,
				StartLBA:    uint32(nextEBR - container.Start),
				SizeSectors: uint32(next.End - nextEBR + 1),
			}
			link.encode(sector[EntriesOffset+EntrySize:])
		}

		if err := ctx.Dev.WriteSectors(ebrLBA, sector); err != nil {
			return err
		}
	}
	return nil
}

func (d *Driver) sortedLogicals(ctx *label.Context) []ptable.Ref {
	var refs []ptable.Ref
	for _, ref := range ctx.Table.Refs() {
		p, _ := ctx.Table.Get(ref)
		if p.IsNested {
			refs = append(refs, ref)
		}
	}
	sort.Slice(refs, func(i, j int) bool {
		pi, _ := ctx.Table.Get(refs[i])
		pj, _ := ctx.Table.Get(refs[j])
		return pi.Start < pj.Start
	})
	return refs
}

func (d *Driver) Verify(ctx *label.Context) (int, error) {
	warnings := 0
	warn := func(msg string) {
		warnings++
		ctx.Dispatch(ask.NewWarn(msg)) //nolint:errcheck
		ctx.LogWarn(msg)
	}

	if d.chainViolation {
		warn("chainOrderViolation: extended partition EBR chain is not monotonically increasing")
	}

	refs := ctx.Table.ByStart()
	for i := 0; i+1 < len(refs); i++ {
		a, _ := ctx.Table.Get(refs[i])
		b, _ := ctx.Table.Get(refs[i+1])
		if a.IsNested != b.IsNested {
			continue
		}
		if a.End >= b.Start {
			warn("overlapping partitions detected")
		}
	}

	if d.haveExtended {
		container, _ := ctx.Table.Get(d.extendedRef)
		for _, ref := range ctx.Table.Refs() {
			p, _ := ctx.Table.Get(ref)
			if p.IsNested && (p.Start <= container.Start || p.End > container.End) {
				warn("logical partition not contained within its extended container")
			}
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
	if template.Type.Code != 0 || template.Type.TypeStr != "" {
		updated.Type = template.Type
	}
	updated.Name = template.Name
	updated.Attrs = template.Attrs
	updated.Bootable = template.Bootable

	ctx.Table.Replace(ref, updated)
	return nil
}

func (d *Driver) DeletePartition(ctx *label.Context, ordinal int) error {
	ref, p, ok := ctx.Table.ByOrdinal(ordinal)
	if !ok {
		return perr.New(perr.NotFound, "no partition #%d", ordinal)
	}

	if p.IsContainer {
		for _, ref := range ctx.Table.Refs() {
			lp, _ := ctx.Table.Get(ref)
			if lp.IsNested && lp.Parent == d.extendedRef {
				ctx.Table.Remove(ref)
				delete(d.ebrLBA, lp.Num)
			}
		}
		d.haveExtended = false
		d.extendedRef = -1
	}

	delete(d.ebrLBA, ordinal)
	ctx.Table.Remove(ref)
	return nil
}

// Reorder renumbers every partition by on-disk position, primaries and the
// extended container from 0 by their own sequence and logicals from
// firstNestedOrdinal by theirs; the two classes never share a counter, so
// a disk with two logicals always gets 4 and 5 regardless of how many
// primary slots precede them. The EBR chain is rebuilt from the new
// ordinals afterward, since d.ebrLBA is keyed by ordinal and would
// otherwise still point at the pre-reorder numbering.
func (d *Driver) Reorder(ctx *label.Context) error {
	refs := ctx.Table.ByStart()

	primaryNum, logicalNum := 0, firstNestedOrdinal
	for _, ref := range refs {
		p, _ := ctx.Table.Get(ref)
		if p.IsNested {
			p.Num = logicalNum
			logicalNum++
		} else {
			p.Num = primaryNum
			primaryNum++
		}
		ctx.Table.Replace(ref, *p)
	}

	d.ebrLBA = make(map[int]uint64)
	if d.haveExtended {
		container, _ := ctx.Table.Get(d.extendedRef)
		logicals := d.sortedLogicals(ctx)
		locs := d.chainEBRLocations(ctx, container, logicals)
		for _, ref := range logicals {
			p, _ := ctx.Table.Get(ref)
			d.ebrLBA[p.Num] = locs[ref]
		}
	}
	return nil
}

func (d *Driver) usedRanges(ctx *label.Context, withinContainer ptable.Ref) []label.UsedRange {
	var ranges []label.UsedRange
	for _, ref := range ctx.Table.Refs() {
		p, _ := ctx.Table.Get(ref)
		if withinContainer >= 0 {
			if p.IsNested && p.Parent == withinContainer {
				ranges = append(ranges, label.UsedRange{Start: p.Start - 1, End: p.End})
			}
			continue
		}
		if !p.IsNested {
			ranges = append(ranges, label.UsedRange{Start: p.Start, End: p.End})
		}
	}
	return ranges
}

func (d *Driver) ListFreespace(ctx *label.Context) ([]ptable.Partition, error) {
	grainSectors := ctx.GrainBytes / ctx.Dev.LogicalSectorSize

	out := label.Freespace(ctx.FirstUsableLBA, ctx.LastUsableLBA, d.usedRanges(ctx, -1), grainSectors)

	if d.haveExtended {
		container, _ := ctx.Table.Get(d.extendedRef)
		inner := label.Freespace(container.Start+1, container.End, d.usedRanges(ctx, d.extendedRef), grainSectors)
		out = append(out, inner...)
	}
	return out, nil
}
