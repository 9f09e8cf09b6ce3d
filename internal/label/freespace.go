package label

import (
	"sort"

	"github.com/ostafen/partedit/internal/ptable"
)

// UsedRange is one occupied sector range a driver reports to Freespace.
type UsedRange struct {
	Start, End uint64
}

// Freespace emits synthetic "freespace" partitions for every gap of at
// least one sector inside [lo, hi] not covered by used. Gaps are returned
// sorted by start. A gap narrower than grainSectors at the head of a region
// is still emitted, with ScarceHead set, so the caller can choose to
// display it distinctly (it likely cannot host an aligned partition).
func Freespace(lo, hi uint64, used []UsedRange, grainSectors uint64) []ptable.Partition {
	if hi < lo {
		return nil
	}

	sorted := make([]UsedRange, len(used))
	copy(sorted, used)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	var out []ptable.Partition
	cursor := lo
	for _, u := range sorted {
		if u.End < cursor {
			continue
		}
		if u.Start > hi {
			break
		}
		if u.Start > cursor {
			out = append(out, freeEntry(cursor, u.Start-1, grainSectors))
		}
		if u.End+1 > cursor {
			cursor = u.End + 1
		}
	}
	if cursor <= hi {
		out = append(out, freeEntry(cursor, hi, grainSectors))
	}
	return out
}

func freeEntry(start, end, grainSectors uint64) ptable.Partition {
	p := ptable.NewTemplate()
	p.Num = -1
	p.IsFreespace = true
	p.Start = start
	p.SetEnd(end)
	if grainSectors > 0 && p.Size < grainSectors {
		p.ScarceHead = true
	}
	return p
}
