package ecs

import "github.com/TheBitDrifter/table"

// TableIterator is a pull-based cursor over every entity matching a
// (required, excluded) query, for callers that need to interleave their
// own control flow with iteration (spec §4.10's "iterate by hand" escape
// hatch) rather than using the push-based ForEach/ForEachTable. Mirrors
// the teacher's Cursor: it locks the world on first use and unlocks on
// exhaustion or Reset, deferring any despawns issued mid-walk.
type TableIterator struct {
	world    *World
	required Bit
	excluded Bit

	matched     []archetypeIndex
	archIdx     int
	currentArch *Archetype
	entityIndex int
	remaining   int
	initialized bool
}

// NewTableIterator constructs a TableIterator over w for the given query.
func NewTableIterator(w *World, required, excluded Bit) *TableIterator {
	return &TableIterator{world: w, required: required, excluded: excluded}
}

func (it *TableIterator) init() {
	if it.initialized {
		return
	}
	it.world.Lock()
	it.matched = it.world.Match(it.required, it.excluded)
	it.initialized = true
	if len(it.matched) > 0 {
		it.currentArch = it.world.archetypes[it.matched[0]]
		it.remaining = it.currentArch.Len()
	}
}

// Next advances the cursor to the next matching entity, returning false
// once exhausted. Calling Next again after it returns false re-starts the
// walk from the first matching archetype.
func (it *TableIterator) Next() bool {
	it.init()
	for {
		if it.entityIndex < it.remaining {
			it.entityIndex++
			return true
		}
		it.archIdx++
		if it.archIdx >= len(it.matched) {
			it.Reset()
			return false
		}
		it.currentArch = it.world.archetypes[it.matched[it.archIdx]]
		it.remaining = it.currentArch.Len()
		it.entityIndex = 0
	}
}

// Entity returns the handle at the cursor's current position. Valid only
// immediately after Next returns true.
func (it *TableIterator) Entity() Handle {
	en, err := it.currentArch.table.Entry(it.entityIndex - 1)
	if err != nil {
		return NilHandle
	}
	return it.world.handleFor(en)
}

// Archetype returns the archetype backing the cursor's current position.
func (it *TableIterator) Archetype() *Archetype { return it.currentArch }

// Row returns the row index within the current archetype's table, for use
// with table.Accessor[T] directly.
func (it *TableIterator) Row() int { return it.entityIndex - 1 }

// Table returns the underlying table.Table for the cursor's current
// archetype.
func (it *TableIterator) Table() table.Table { return it.currentArch.table }

// TotalMatched returns the total number of entities the query matches,
// without disturbing an in-progress walk's position.
func (it *TableIterator) TotalMatched() int {
	it.init()
	total := 0
	for _, idx := range it.matched {
		total += it.world.archetypes[idx].Len()
	}
	return total
}

// Reset ends the walk early, releasing the world lock taken by init. Safe
// to call even if the walk already ran to exhaustion.
func (it *TableIterator) Reset() {
	if !it.initialized {
		return
	}
	it.archIdx = 0
	it.entityIndex = 0
	it.remaining = 0
	it.matched = nil
	it.initialized = false
	it.world.Unlock()
}
