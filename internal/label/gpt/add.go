package gpt

import (
	"github.com/ostafen/partedit/internal/align"
	"github.com/ostafen/partedit/internal/perr"
	"github.com/ostafen/partedit/internal/ptable"
)

// freeRange is a candidate range the allocator can place a new partition
// into. GPT has no primary/extended/logical distinction (§4.3: "GPT is the
// same minus the primary/extended/logical distinction"), so this is a
// straight lowest-fit search over the synthetic freespace entries.
type freeRange struct {
	Start, End uint64
}

// allocate finds the lowest free range that can host template, aligning the
// start up to the grain and ending a sized request at start+size-1 (clamped
// to the range's end), exactly like the MBR allocator's
// primary-partition path but without any 32-bit field width ceiling (GPT
// LBA fields are 64-bit).
func allocate(entries []ptable.Partition, template ptable.Partition, ap align.Params) (uint64, uint64, error) {
	ranges := make([]freeRange, len(entries))
	for i, e := range entries {
		ranges[i] = freeRange{Start: e.Start, End: e.End}
	}

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

		if end > r.End || end < start {
			continue
		}
		return start, end, nil
	}
	return 0, 0, perr.New(perr.OutOfSpace, "no free range can host the requested partition")
}
