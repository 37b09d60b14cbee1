package ecs

import (
	"github.com/TheBitDrifter/mask"
	"github.com/TheBitDrifter/table"
)

// unresolvedEdge marks an archetype graph edge slot that has not yet been
// resolved to a destination archetype (spec §3: "-1 means unresolved").
const unresolvedEdge = -1

// Archetype is the set of entities sharing one exact component bitmask,
// stored column-major. Column storage and row add/swap-remove/transfer are
// delegated to github.com/TheBitDrifter/table's Table, exactly as the
// teacher's archetype.go does; this type adds the bitmask signature and the
// add/remove edge cache spec §4.5/§4.6 require, which the teacher does not
// have (its cursor re-scans every archetype on every query instead).
type Archetype struct {
	index archetypeIndex
	mask  mask.Mask
	table table.Table

	// addEdge[b] / removeEdge[b] cache the destination archetype index for
	// a single-bit structural move, keyed by bit index. unresolvedEdge
	// until the first mutation that needs it populates the slot.
	addEdge    [MaxComponents]archetypeIndex
	removeEdge [MaxComponents]archetypeIndex
}

// archetypeIndex is a stable, never-reused index into World.archetypes.
// Archetypes are never destroyed (spec §3 Lifecycle), so indices are
// permanently valid for the world's lifetime.
type archetypeIndex int32

// ID returns the archetype's stable index.
func (a *Archetype) ID() int { return int(a.index) }

// Mask returns the archetype's component bitmask.
func (a *Archetype) Mask() mask.Mask { return a.mask }

// Table returns the underlying column table.
func (a *Archetype) Table() table.Table { return a.table }

// Len returns the number of entities currently stored in the archetype.
func (a *Archetype) Len() int { return a.table.Length() }

func newArchetype(
	schema table.Schema, entryIndex table.EntryIndex, idx archetypeIndex,
	m mask.Mask, components []Component,
) (*Archetype, error) {
	elementTypes := make([]table.ElementType, len(components))
	for i, comp := range components {
		elementTypes[i] = comp
	}
	tbl, err := table.NewTableBuilder().
		WithSchema(schema).
		WithEntryIndex(entryIndex).
		WithElementTypes(elementTypes...).
		WithEvents(Config.tableEvents).
		Build()
	if err != nil {
		return nil, err
	}
	a := &Archetype{index: idx, mask: m, table: tbl}
	for i := range a.addEdge {
		a.addEdge[i] = unresolvedEdge
		a.removeEdge[i] = unresolvedEdge
	}
	return a, nil
}
