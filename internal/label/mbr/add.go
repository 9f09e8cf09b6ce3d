package mbr

import (
	"github.com/ostafen/partedit/internal/align"
	"github.com/ostafen/partedit/internal/label"
	"github.com/ostafen/partedit/internal/perr"
	"github.com/ostafen/partedit/internal/ptable"
	"github.com/ostafen/partedit/internal/ptype/mbrtype"
)

// freeRange is a candidate range the allocator can place a new partition
// into, already masked against whatever is occupied.
type freeRange struct {
	Start, End uint64
}

// AddPartition implements the MBR-flavored allocation algorithm: classify
// the request as primary, logical, or a new extended container, find the
// lowest free range that fits, align it, and record the entry.
func (d *Driver) AddPartition(ctx *label.Context, template ptable.Partition) (int, error) {
	const maxMBR32 = uint64(1)<<32 - 1

	wantsContainer := mbrtype.IsExtended(template.Type.Code) && !d.haveExtended
	wantsLogical := !wantsContainer && (template.Num >= firstNestedOrdinal ||
		(template.FollowDefaultNum && d.haveExtended))

	ap := d.alignParams(ctx)

	if wantsContainer {
		return d.addContainer(ctx, template, ap)
	}
	if wantsLogical {
		return d.addLogical(ctx, template, ap)
	}
	return d.addPrimary(ctx, template, ap, maxMBR32)
}

func (d *Driver) freePrimarySlot(ctx *label.Context) int {
	for i := 0; i < 4; i++ {
		if _, _, ok := ctx.Table.ByOrdinal(i); !ok {
			return i
		}
	}
	return -1
}

func (d *Driver) addPrimary(ctx *label.Context, template ptable.Partition, ap align.Params, maxMBR32 uint64) (int, error) {
	slot := template.Num
	if template.FollowDefaultNum {
		slot = d.freePrimarySlot(ctx)
	}
	if slot < 0 || slot > 3 {
		return 0, perr.New(perr.OutOfSpace, "no free primary slot")
	}
	if _, _, occupied := ctx.Table.ByOrdinal(slot); occupied {
		return 0, perr.New(perr.InvalidArgument, "primary slot %d already in use", slot)
	}

	ranges := d.freeRanges(ctx.FirstUsableLBA, ctx.LastUsableLBA, d.usedRanges(ctx, -1))
	start, end, err := allocate(ranges, template, ap)
	if err != nil {
		return 0, err
	}
	if end > maxMBR32 {
		return 0, perr.New(perr.InvalidArgument, "partition end %d exceeds 32-bit MBR field width", end)
	}

	p := template
	p.Num = slot
	p.Start = start
	p.SetEnd(end)
	p.FollowDefaultStart, p.FollowDefaultEnd, p.FollowDefaultNum = false, false, false

	ref := ctx.Table.Add(p)
	if mbrtype.IsExtended(p.Type.Code) {
		updated, _ := ctx.Table.Get(ref)
		updated.IsContainer = true
		ctx.Table.Replace(ref, *updated)
		d.extendedRef = ref
		d.haveExtended = true
	}
	return slot, nil
}

func (d *Driver) addContainer(ctx *label.Context, template ptable.Partition, ap align.Params) (int, error) {
	if d.haveExtended {
		return 0, perr.New(perr.InvalidArgument, "an extended partition already exists")
	}
	if template.Type.Code == 0 {
		template.Type.Code = mbrtype.ExtendedLBA
	}
	return d.addPrimary(ctx, template, ap, uint64(1)<<32-1)
}

func (d *Driver) addLogical(ctx *label.Context, template ptable.Partition, ap align.Params) (int, error) {
	if !d.haveExtended {
		return 0, perr.New(perr.InvalidArgument, "no extended partition to host a logical")
	}
	container, _ := ctx.Table.Get(d.extendedRef)

	// Each EBR reserves the first sector of its own sub-range.
	ranges := d.freeRanges(container.Start+1, container.End, d.usedRanges(ctx, d.extendedRef))
	for i := range ranges {
		ranges[i].Start++ // reserve EBR sector
	}

	start, end, err := allocate(ranges, template, ap)
	if err != nil {
		return 0, err
	}

	ordinal := template.Num
	if template.FollowDefaultNum {
		ordinal = d.nextLogicalOrdinal(ctx)
	}

	p := template
	p.Num = ordinal
	p.IsNested = true
	p.Parent = d.extendedRef
	p.Start = start
	p.SetEnd(end)
	p.FollowDefaultStart, p.FollowDefaultEnd, p.FollowDefaultNum = false, false, false

	ctx.Table.Add(p)
	d.ebrLBA[ordinal] = start - 1
	return ordinal, nil
}

func (d *Driver) nextLogicalOrdinal(ctx *label.Context) int {
	max := firstNestedOrdinal - 1
	for _, ref := range ctx.Table.Refs() {
		p, _ := ctx.Table.Get(ref)
		if p.IsNested && p.Num > max {
			max = p.Num
		}
	}
	return max + 1
}

// freeRanges computes the gaps in [lo, hi] not covered by used, sorted by
// start — the candidate ranges §4.3 step 2 describes.
func (d *Driver) freeRanges(lo, hi uint64, used []label.UsedRange) []freeRange {
	entries := label.Freespace(lo, hi, used, 0)
	ranges := make([]freeRange, len(entries))
	for i, e := range entries {
		ranges[i] = freeRange{Start: e.Start, End: e.End}
	}
	return ranges
}

// allocate finds the lowest free range that can host template, aligns the
// start up to the grain, ends a sized request at start+size-1 (clamped to
// the range's end), and returns the resulting [start, end]. Ties are broken by always preferring the lowest-address
// free range that fits.
func allocate(ranges []freeRange, template ptable.Partition, ap align.Params) (uint64, uint64, error) {
	wantStart := template.Start
	wantSize := template.Size

	for _, r := range ranges {
		start := r.Start
		if !template.FollowDefaultStart && wantStart > r.Start {
			start = wantStart
		}
		if start < r.Start || start > r.End {
			continue
		}

		aligned := ap.Align(start, align.Up)
		if aligned > r.End {
			continue
		}
		start = aligned

		var end uint64
		switch {
		case !template.FollowDefaultEnd:
			end = template.End
		case wantSize > 0:
			end = start + wantSize - 1
			if end > r.End {
				end = r.End
			}
		default:
			end = r.End
		}

		if end > r.End {
			continue
		}
		if end < start {
			continue
		}
		return start, end, nil
	}
	return 0, 0, perr.New(perr.OutOfSpace, "no free range can host the requested partition")
}
