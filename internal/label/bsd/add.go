package bsd

import (
	"github.com/ostafen/partedit/internal/align"
	"github.com/ostafen/partedit/internal/perr"
	"github.com/ostafen/partedit/internal/ptable"
)

type freeRange struct {
	Start, End uint64
}

// allocate finds the lowest free range that can host template, aligning
// start up to the grain and ending a sized request at start+size-1 (clamped
// to the range's end). Disklabels have no primary/extended
// distinction, so this mirrors the GPT allocator exactly.
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
