package ptable

import "sort"

// Table is an ordered set of partitions plus freespace entries, stored in a
// flat arena and addressed by Ref. Removal leaves a tombstone slot so
// previously issued Refs never alias a different partition.
type Table struct {
	arena     []Partition
	live      []bool
	byOrdinal map[int]Ref
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{byOrdinal: make(map[int]Ref)}
}

// Add inserts p and returns its Ref. If p.Num is already occupied the
// previous occupant is overwritten in the ordinal index (the allocator is
// responsible for choosing a free ordinal beforehand).
func (t *Table) Add(p Partition) Ref {
	ref := Ref(len(t.arena))
	t.arena = append(t.arena, p)
	t.live = append(t.live, true)
	if p.Num >= 0 {
		t.byOrdinal[p.Num] = ref
	}
	return ref
}

// Get returns the partition at ref, or false if ref has been removed or was
// never valid.
func (t *Table) Get(ref Ref) (*Partition, bool) {
	if ref < 0 || int(ref) >= len(t.arena) || !t.live[ref] {
		return nil, false
	}
	return &t.arena[ref], true
}

// ByOrdinal looks a partition up by its table ordinal.
func (t *Table) ByOrdinal(num int) (Ref, *Partition, bool) {
	ref, ok := t.byOrdinal[num]
	if !ok {
		return invalidRef, nil, false
	}
	p, ok := t.Get(ref)
	return ref, p, ok
}

// Remove tombstones ref so it reads as absent. Arena storage is never
// compacted: indices already handed out (e.g. as a Partition's Parent)
// remain meaningful as "was here" markers even after removal.
func (t *Table) Remove(ref Ref) bool {
	if ref < 0 || int(ref) >= len(t.arena) || !t.live[ref] {
		return false
	}
	t.live[ref] = false
	if t.arena[ref].Num >= 0 {
		delete(t.byOrdinal, t.arena[ref].Num)
	}
	return true
}

// RemoveOrdinal removes the partition with the given ordinal, if any.
func (t *Table) RemoveOrdinal(num int) bool {
	ref, ok := t.byOrdinal[num]
	if !ok {
		return false
	}
	return t.Remove(ref)
}

// Replace overwrites the partition at ref in place, preserving its Ref.
func (t *Table) Replace(ref Ref, p Partition) bool {
	if ref < 0 || int(ref) >= len(t.arena) || !t.live[ref] {
		return false
	}
	old := t.arena[ref]
	if old.Num >= 0 && old.Num != p.Num {
		delete(t.byOrdinal, old.Num)
	}
	t.arena[ref] = p
	if p.Num >= 0 {
		t.byOrdinal[p.Num] = ref
	}
	return true
}

// Clone returns a deep copy of t, independent of further mutation to the
// original. Used by callers (the script engine's apply-then-rollback path)
// that need to snapshot a table before a multi-step operation that might
// fail partway through.
func (t *Table) Clone() *Table {
	clone := &Table{
		arena:     append([]Partition(nil), t.arena...),
		live:      append([]bool(nil), t.live...),
		byOrdinal: make(map[int]Ref, len(t.byOrdinal)),
	}
	for k, v := range t.byOrdinal {
		clone.byOrdinal[k] = v
	}
	return clone
}

// Clear empties the table entirely.
func (t *Table) Clear() {
	t.arena = nil
	t.live = nil
	t.byOrdinal = make(map[int]Ref)
}

// Len returns the number of live partitions.
func (t *Table) Len() int {
	n := 0
	for _, alive := range t.live {
		if alive {
			n++
		}
	}
	return n
}

// Refs returns the live Refs in ordinal order; entries with Num < 0 (e.g.
// pending allocation) sort after numbered ones in arena order.
func (t *Table) Refs() []Ref {
	var refs []Ref
	for i, alive := range t.live {
		if alive {
			refs = append(refs, Ref(i))
		}
	}
	sort.SliceStable(refs, func(i, j int) bool {
		a, b := t.arena[refs[i]].Num, t.arena[refs[j]].Num
		if a < 0 {
			return false
		}
		if b < 0 {
			return true
		}
		return a < b
	})
	return refs
}

// ByStart returns the live Refs ordered by Start LBA, for display.
func (t *Table) ByStart() []Ref {
	refs := t.Refs()
	sort.SliceStable(refs, func(i, j int) bool {
		return t.arena[refs[i]].Start < t.arena[refs[j]].Start
	})
	return refs
}

// Diff reports the ordinals present in t but absent (or changed) in other,
// and vice versa, for the reread-changes path.
type Diff struct {
	Added   []int
	Removed []int
	Changed []int
}

// DiffAgainst compares t to other by ordinal and (Start, End, Type.Code,
// Type.TypeStr).
func (t *Table) DiffAgainst(other *Table) Diff {
	var d Diff
	seen := make(map[int]bool)

	for _, ref := range t.Refs() {
		p := t.arena[ref]
		if p.Num < 0 {
			continue
		}
		seen[p.Num] = true
		_, op, ok := other.ByOrdinal(p.Num)
		if !ok {
			d.Removed = append(d.Removed, p.Num)
			continue
		}
		if op.Start != p.Start || op.End != p.End || op.Type.Code != p.Type.Code || op.Type.TypeStr != p.Type.TypeStr {
			d.Changed = append(d.Changed, p.Num)
		}
	}

	for _, ref := range other.Refs() {
		p := other.arena[ref]
		if p.Num >= 0 && !seen[p.Num] {
			d.Added = append(d.Added, p.Num)
		}
	}
	return d
}
