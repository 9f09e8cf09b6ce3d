package gpt

import (
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"

	"github.com/ostafen/partedit/internal/align"
	"github.com/ostafen/partedit/internal/ask"
	"github.com/ostafen/partedit/internal/label"
	"github.com/ostafen/partedit/internal/perr"
	"github.com/ostafen/partedit/internal/ptable"
	"github.com/ostafen/partedit/internal/ptype/gpttype"
)

// Driver implements label.Driver for the GUID Partition Table format: a
// protective MBR in sector 0, a primary header + entry array near the
// front of the device, and a mirrored backup header + entry array at the
// end.
type Driver struct {
	diskGUID uuid.UUID

	primaryHeaderLBA, backupHeaderLBA   uint64
	primaryEntriesLBA, backupEntriesLBA uint64

	// usedBackupForRead records that the primary header/array failed
	// validation and the backup copy was used to populate ctx.Table, so
	// Verify can surface that as a warning even though read() itself
	// succeeded.
	usedBackupForRead bool
}

// New returns a fresh, empty GPT driver instance. Register it with a
// label.Registry under the name "gpt".
func New() label.Driver { return &Driver{} }

func (d *Driver) Name() string { return "gpt" }

// LabelID satisfies label.LabelIdentified, reporting the disk GUID a
// script's `label-id:` header carries.
func (d *Driver) LabelID() string { return d.diskGUID.String() }

func (d *Driver) layout(ctx *label.Context) {
	sectorSize := ctx.Dev.LogicalSectorSize
	lastLBA := ctx.Dev.TotalSectors - 1
	entriesSectors := entryArraySectors(sectorSize)

	d.primaryHeaderLBA = 1
	d.primaryEntriesLBA = 2
	d.backupEntriesLBA = lastLBA - entriesSectors
	d.backupHeaderLBA = lastLBA
}

func (d *Driver) Probe(ctx *label.Context) (bool, error) {
	if ctx.Dev.TotalSectors < 2+entryArraySectors(ctx.Dev.LogicalSectorSize)+1 {
		return false, nil
	}
	buf, err := ctx.Dev.ReadSectors(1, 1)
	if err != nil {
		return false, err
	}
	_, ok := decodeHeader(buf)
	return ok, nil
}

func (d *Driver) Create(ctx *label.Context) error {
	d.layout(ctx)
	d.diskGUID = uuid.New()
	if id, ok := ctx.ScriptLabelID(); ok {
		parsed, err := uuid.Parse(id)
		if err != nil {
			return perr.Wrap(perr.InvalidArgument, err, "invalid label-id %q", id)
		}
		d.diskGUID = parsed
	}
	d.usedBackupForRead = false

	ctx.FirstUsableLBA = d.primaryEntriesLBA + entryArraySectors(ctx.Dev.LogicalSectorSize)
	ctx.LastUsableLBA = d.backupEntriesLBA - 1
	ctx.Table = ptable.NewTable()
	return nil
}

func (d *Driver) Read(ctx *label.Context) error {
	d.layout(ctx)

	hdr, entries, usedBackup, err := d.readHeaderAndEntries(ctx)
	if err != nil {
		return err
	}
	d.usedBackupForRead = usedBackup
	d.diskGUID = hdr.DiskGUID
	ctx.FirstUsableLBA = hdr.FirstUsableLBA
	ctx.LastUsableLBA = hdr.LastUsableLBA

	ctx.Table = ptable.NewTable()
	ordinal := 0
	for _, e := range entries {
		if e.empty() {
			ordinal++
			continue
		}
		p := ptable.NewTemplate()
		p.Num = ordinal
		p.Start = e.StartLBA
		p.SetEnd(e.EndLBA)
		p.Type = ptable.Type{TypeStr: e.TypeGUID.String()}
		p.UUID = e.PartGUID.String()
		p.Name = e.Name
		p.Attrs = formatAttrs(e.Attributes)
		p.FollowDefaultStart, p.FollowDefaultEnd, p.FollowDefaultNum = false, false, false
		ctx.Table.Add(p)
		ordinal++
	}
	return nil
}

func (d *Driver) readHeaderAndEntries(ctx *label.Context) (header, []entry, bool, error) {
	hdr, ok := d.tryReadHeader(ctx, d.primaryHeaderLBA)
	usedBackup := false
	if !ok {
		ctx.Dispatch(ask.NewWarn("primary GPT header invalid or checksum mismatch, falling back to backup")) //nolint:errcheck
		ctx.LogWarn("primary GPT header invalid, falling back to backup", "lba", d.primaryHeaderLBA)
		hdr, ok = d.tryReadHeader(ctx, d.backupHeaderLBA)
		usedBackup = true
	}
	if !ok {
		return header{}, nil, false, perr.New(perr.NotFound, "no valid GPT header on %s", ctx.Dev.Path())
	}

	entriesLBA := hdr.PartitionEntryLBA
	if usedBackup {
		entriesLBA = d.backupEntriesLBA
	}
	n := hdr.NumPartitionEntries
	if n == 0 {
		n = NumEntries
	}
	entrySize := hdr.SizeOfPartitionEntry
	if entrySize == 0 {
		entrySize = EntrySize
	}

	sectors := (uint64(n)*uint64(entrySize) + ctx.Dev.LogicalSectorSize - 1) / ctx.Dev.LogicalSectorSize
	buf, err := ctx.Dev.ReadSectors(entriesLBA, sectors)
	if err != nil {
		return header{}, nil, false, err
	}
	if crc32Checksum(buf) != hdr.PartitionEntryArrayCRC32 {
		ctx.Dispatch(ask.NewWarn("GPT partition entry array checksum mismatch")) //nolint:errcheck
		ctx.LogWarn("GPT partition entry array checksum mismatch", "lba", entriesLBA)
	}

	entries := make([]entry, n)
	for i := uint32(0); i < n; i++ {
		off := uint64(i) * uint64(entrySize)
		entries[i] = decodeEntry(buf[off : off+uint64(entrySize)])
	}
	return hdr, entries, usedBackup, nil
}

func (d *Driver) tryReadHeader(ctx *label.Context, lba uint64) (header, bool) {
	buf, err := ctx.Dev.ReadSectors(lba, 1)
	if err != nil {
		return header{}, false
	}
	if !verifyChecksum(buf) {
		return header{}, false
	}
	hdr, ok := decodeHeader(buf)
	return hdr, ok
}

func (d *Driver) Write(ctx *label.Context) error {
	if ctx.ReadOnly {
		return perr.New(perr.BusyInUse, "context opened read-only")
	}
	if err := label.FlushWipes(ctx, ctx.WipeProgress); err != nil {
		return err
	}

	entriesBuf := make([]byte, uint64(NumEntries)*uint64(EntrySize))
	for _, ref := range ctx.Table.Refs() {
		p, _ := ctx.Table.Get(ref)
		if p.Num < 0 || p.Num >= NumEntries {
			continue
		}
		e := entry{
			PartGUID:   parseUUIDOrNil(p.UUID),
			StartLBA:   p.Start,
			EndLBA:     p.End,
			Attributes: parseAttrs(p.Attrs),
			Name:       p.Name,
		}
		e.TypeGUID = parseUUIDOrNil(p.Type.TypeStr)
		if e.TypeGUID == uuid.Nil {
			e.TypeGUID = uuid.MustParse(gpttype.LinuxFS)
		}
		if e.PartGUID == uuid.Nil {
			e.PartGUID = uuid.New()
		}
		slot := entriesBuf[uint64(p.Num)*uint64(EntrySize) : (uint64(p.Num)+1)*uint64(EntrySize)]
		if err := e.encode(slot); err != nil {
			return perr.Wrap(perr.InvalidArgument, err, "encode partition name %q", p.Name)
		}
	}
	entriesCRC := crc32Checksum(entriesBuf)

	if err := d.writePMBR(ctx); err != nil {
		return err
	}

	if err := ctx.Dev.WriteSectors(d.primaryEntriesLBA, entriesBuf); err != nil {
		return err
	}
	if err := ctx.Dev.WriteSectors(d.backupEntriesLBA, entriesBuf); err != nil {
		return err
	}

	backup := header{
		MyLBA:                    d.backupHeaderLBA,
		AlternateLBA:             d.primaryHeaderLBA,
		FirstUsableLBA:           ctx.FirstUsableLBA,
		LastUsableLBA:            ctx.LastUsableLBA,
		DiskGUID:                 d.diskGUID,
		PartitionEntryLBA:        d.backupEntriesLBA,
		NumPartitionEntries:      NumEntries,
		SizeOfPartitionEntry:     EntrySize,
		PartitionEntryArrayCRC32: entriesCRC,
	}
	if err := ctx.Dev.WriteSectors(d.backupHeaderLBA, backup.encode(ctx.Dev.LogicalSectorSize)); err != nil {
		return err
	}

	primary := header{
		MyLBA:                    d.primaryHeaderLBA,
		AlternateLBA:             d.backupHeaderLBA,
		FirstUsableLBA:           ctx.FirstUsableLBA,
		LastUsableLBA:            ctx.LastUsableLBA,
		DiskGUID:                 d.diskGUID,
		PartitionEntryLBA:        d.primaryEntriesLBA,
		NumPartitionEntries:      NumEntries,
		SizeOfPartitionEntry:     EntrySize,
		PartitionEntryArrayCRC32: entriesCRC,
	}
	// Primary header is written last: on-disk state stays re-probeable
	// (backup already valid) even if this final write is interrupted.
	return ctx.Dev.WriteSectors(d.primaryHeaderLBA, primary.encode(ctx.Dev.LogicalSectorSize))
}

// writePMBR (re)writes the single protective-MBR entry covering the whole
// disk (clamped to 32 bits), preserving whatever boot code already occupies
// bytes 0..445.
func (d *Driver) writePMBR(ctx *label.Context) error {
	sector, err := ctx.Dev.ReadSectors(0, 1)
	if err != nil || len(sector) < 512 {
		sector = make([]byte, 512)
	}

	sector[510], sector[511] = 0x55, 0xAA
	b := sector[446:462]
	for i := range b {
		b[i] = 0
	}
	b[4] = 0xee // GPT protective
	copy(b[1:4], []byte{0x00, 0x02, 0x00})
	copy(b[5:8], []byte{0xff, 0xff, 0xff})
	binary.LittleEndian.PutUint32(b[8:12], 1)

	sizeSectors := ctx.Dev.TotalSectors - 1
	if sizeSectors > 0xFFFFFFFF {
		sizeSectors = 0xFFFFFFFF
	}
	binary.LittleEndian.PutUint32(b[12:16], uint32(sizeSectors))

	return ctx.Dev.WriteSectors(0, sector)
}

func (d *Driver) Verify(ctx *label.Context) (int, error) {
	warnings := 0
	warn := func(msg string) {
		warnings++
		ctx.Dispatch(ask.NewWarn(msg)) //nolint:errcheck
		ctx.LogWarn(msg)
	}

	if d.usedBackupForRead {
		warn("primary GPT header was invalid; using backup copy")
	}

	refs := ctx.Table.ByStart()
	for i := 0; i+1 < len(refs); i++ {
		a, _ := ctx.Table.Get(refs[i])
		b, _ := ctx.Table.Get(refs[i+1])
		if a.End >= b.Start {
			warn("overlapping partitions detected")
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
	for i := 0; i < NumEntries; i++ {
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
	if ordinal < 0 || ordinal >= NumEntries {
		return 0, perr.New(perr.OutOfSpace, "no free GPT entry slot")
	}
	if _, _, occupied := ctx.Table.ByOrdinal(ordinal); occupied {
		return 0, perr.New(perr.InvalidArgument, "entry %d already in use", ordinal)
	}

	start, end, err := allocate(entries, template, ap)
	if err != nil {
		return 0, err
	}

	p := template
	p.Num = ordinal
	p.Start = start
	p.SetEnd(end)
	if p.UUID == "" {
		p.UUID = uuid.New().String()
	}
	if p.Type.TypeStr == "" {
		p.Type = ptable.Type{TypeStr: gpttype.LinuxFS}
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
	if template.Type.TypeStr != "" {
		updated.Type = template.Type
	}
	if template.Name != "" {
		updated.Name = template.Name
	}
	if template.UUID != "" {
		updated.UUID = template.UUID
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

func parseUUIDOrNil(s string) uuid.UUID {
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil
	}
	return u
}

func formatAttrs(a uint64) string {
	if a == 0 {
		return ""
	}
	return fmt.Sprintf("0x%x", a)
}

func parseAttrs(s string) uint64 {
	if s == "" {
		return 0
	}
	var v uint64
	start := 0
	if len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		start = 2
	}
	for i := start; i < len(s); i++ {
		c := s[i]
		var d uint64
		switch {
		case c >= '0' && c <= '9':
			d = uint64(c - '0')
		case c >= 'a' && c <= 'f':
			d = uint64(c-'a') + 10
		case c >= 'A' && c <= 'F':
			d = uint64(c-'A') + 10
		default:
			continue
		}
		v = v*16 + d
	}
	return v
}
