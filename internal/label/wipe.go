package label

import "github.com/ostafen/partedit/internal/wipe"

// MarkWipe records [start, end] (inclusive, absolute LBA) to be zeroed the
// next time this context's driver writes, per spec.md §4.8 step 2. Callers
// typically mark the sector range a collision probe flagged as a stale
// filesystem or RAID signature before confirming a destructive create.
func (ctx *Context) MarkWipe(start, end uint64) {
	ctx.Wipes.Mark(wipe.Range{Start: start, End: end})
}

// Progress is called by FlushWipes as each range is zeroed, reporting bytes
// written so far and the total bytes the flush will write. Callers that
// don't care about progress reporting pass nil.
type Progress func(written, total int64)

// FlushWipes zeroes every range ctx.Wipes holds, in ascending order, then
// clears the set. It is the "instruct the collision probe to zero/
// invalidate signatures there" step of spec.md §4.8, run by every driver's
// Write before it serializes its own label-specific sectors, so a stale
// signature never survives alongside a freshly written label.
func FlushWipes(ctx *Context, onProgress Progress) error {
	ranges := ctx.Wipes.Ranges()
	if len(ranges) == 0 {
		return nil
	}

	sectorSize := ctx.Dev.LogicalSectorSize
	var total, written int64
	for _, r := range ranges {
		total += int64(r.Len() * sectorSize)
	}

	const maxChunkSectors = 2048 // 1 MiB at 512-byte sectors
	for _, r := range ranges {
		n := r.Len()
		for off := uint64(0); off < n; off += maxChunkSectors {
			chunk := maxChunkSectors
			if remaining := n - off; uint64(chunk) > remaining {
				chunk = int(remaining)
			}
			buf := make([]byte, uint64(chunk)*sectorSize)
			if err := ctx.Dev.WriteSectors(r.Start+off, buf); err != nil {
				return err
			}
			written += int64(len(buf))
			if onProgress != nil {
				onProgress(written, total)
			}
		}
	}

	ctx.Wipes.Clear()
	return nil
}
