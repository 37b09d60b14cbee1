package ecs

import "github.com/TheBitDrifter/mask"

// wireEdges cross-wires newly created archetype against every existing
// archetype in w, populating both directions of the add/remove edge cache
// in one pass (spec §4.6). For any existing archetype whose mask differs
// from newArch's mask by exactly one bit, the edge between them is filled
// in immediately rather than left to be discovered lazily on the first
// structural mutation that needs it.
func wireEdges(w *World, newArch *Archetype) {
	for _, other := range w.archetypes {
		if other == newArch {
			continue
		}
		wireIfAdjacent(other, newArch)
		wireIfAdjacent(newArch, other)
	}
}

// wireIfAdjacent sets from.addEdge[bit] = to.index (and the matching
// to.removeEdge[bit] = from.index) if to's mask equals from's mask plus
// exactly one bit.
func wireIfAdjacent(from, to *Archetype) {
	for idx := uint32(0); idx < MaxComponents; idx++ {
		if maskHasBit(from.mask, idx) {
			continue
		}
		if !maskHasBit(to.mask, idx) {
			continue
		}
		if maskMinusBit(to.mask, idx) != from.mask {
			continue
		}
		from.addEdge[idx] = to.index
		to.removeEdge[idx] = from.index
		return
	}
}

// maskMinusBit returns m with bit idx cleared, leaving m untouched: mask.Mask
// is a plain value type, so Unmark on the local copy taken by-value here
// never affects the caller's mask.
func maskMinusBit(m mask.Mask, idx uint32) mask.Mask {
	m.Unmark(idx)
	return m
}

// destArchetypeForAdd resolves (and caches) the archetype reached from arch
// by adding bit.
func destArchetypeForAdd(w *World, arch *Archetype, bit Bit) (*Archetype, error) {
	idx := BitIndex(bit)
	if e := arch.addEdge[idx]; e != unresolvedEdge {
		return w.archetypes[e], nil
	}
	destMask := arch.mask
	destMask.Mark(idx)
	dest, err := w.archetypeForMask(destMask)
	if err != nil {
		return nil, err
	}
	arch.addEdge[idx] = dest.index
	dest.removeEdge[idx] = arch.index
	return dest, nil
}

// destArchetypeForRemove resolves (and caches) the archetype reached from
// arch by removing bit.
func destArchetypeForRemove(w *World, arch *Archetype, bit Bit) (*Archetype, error) {
	idx := BitIndex(bit)
	if e := arch.removeEdge[idx]; e != unresolvedEdge {
		return w.archetypes[e], nil
	}
	destMask := arch.mask
	destMask.Unmark(idx)
	dest, err := w.archetypeForMask(destMask)
	if err != nil {
		return nil, err
	}
	arch.removeEdge[idx] = dest.index
	dest.addEdge[idx] = arch.index
	return dest, nil
}
