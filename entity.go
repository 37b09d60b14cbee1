package ecs

import "fmt"

// Handle is a generational reference to an entity: stable across archetype
// moves, invalidated once the entity is despawned and its slot reused for a
// different entity. Zero value is NilHandle.
type Handle struct {
	ID         uint32
	Generation uint32
}

// NilHandle is returned by operations that could not produce a live
// handle (spec §4.14: Spawn with a zero component mask).
var NilHandle = Handle{}

// IsNil reports whether h is the zero Handle.
func (h Handle) IsNil() bool { return h == NilHandle }

func (h Handle) String() string {
	return fmt.Sprintf("Handle(%d:%d)", h.ID, h.Generation)
}

// slot is the liveness bit a World keeps per entity ID, authoritative over
// whatever the underlying table.EntryIndex reports: it is the only signal
// that distinguishes "never spawned" and "despawned" from "currently
// alive", both of which table.Entry.Recycled() alone cannot disambiguate.
type slot struct {
	alive bool
}
