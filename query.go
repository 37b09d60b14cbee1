package ecs

import "github.com/TheBitDrifter/mask"

// queryKey identifies a (required, excluded) bitmask query for memoization.
// The reference implementation packs both into one 64-bit integer
// (required | excluded<<32); with MaxComponents raised to 64 here that
// packing would truncate and collide, so the cache key is widened to a
// plain two-field struct instead.
type queryKey struct {
	required Bit
	excluded Bit
}

// Match returns every archetype index whose mask contains all of required
// and none of excluded, computing the match set once per distinct
// (required, excluded) pair and reusing it afterward. The cache is never
// evicted and never needs invalidation for existing archetypes: entities
// only move BETWEEN existing archetypes, never change an archetype's own
// mask, so a match computed once stays correct for that archetype forever
// (spec §4.7). It is extended, not recomputed, whenever a new archetype is
// created (see invalidateQueryCacheFor).
func (w *World) Match(required, excluded Bit) []archetypeIndex {
	key := queryKey{required: required, excluded: excluded}
	if cached, ok := w.queryCache[key]; ok {
		return cached
	}
	reqMask, exclMask := w.maskFromBits(required), w.maskFromBits(excluded)
	matched := make([]archetypeIndex, 0, len(w.archetypes))
	for _, arch := range w.archetypes {
		if archetypeMatches(arch, reqMask, exclMask) {
			matched = append(matched, arch.index)
		}
	}
	w.queryCache[key] = matched
	return matched
}

// archetypeMatches follows the teacher's leafNode.Evaluate idiom: build the
// required/excluded signatures into mask.Mask once and test containment
// directly, rather than probing the archetype mask bit by bit.
func archetypeMatches(arch *Archetype, required, excluded mask.Mask) bool {
	return arch.mask.ContainsAll(required) && arch.mask.ContainsNone(excluded)
}

// invalidateQueryCacheFor folds a freshly created archetype into every
// cached query it now satisfies, without recomputing any existing entry
// from scratch (spec §4.7: "the cache is appended to, never rebuilt").
func (w *World) invalidateQueryCacheFor(arch *Archetype) {
	for key, matched := range w.queryCache {
		reqMask, exclMask := w.maskFromBits(key.required), w.maskFromBits(key.excluded)
		if archetypeMatches(arch, reqMask, exclMask) {
			w.queryCache[key] = append(matched, arch.index)
		}
	}
}

// QueryCount returns the number of live entities across every archetype
// matching (required, excluded).
func (w *World) QueryCount(required, excluded Bit) int {
	total := 0
	for _, idx := range w.Match(required, excluded) {
		total += w.archetypes[idx].Len()
	}
	return total
}

// QueryFirst returns the first live entity matching (required, excluded),
// or NilHandle with ok=false if none exists.
func (w *World) QueryFirst(required, excluded Bit) (h Handle, ok bool) {
	for _, idx := range w.Match(required, excluded) {
		arch := w.archetypes[idx]
		if arch.Len() == 0 {
			continue
		}
		en, err := arch.table.Entry(0)
		if err != nil {
			continue
		}
		return w.handleFor(en), true
	}
	return NilHandle, false
}

// QueryEntities collects every live handle matching (required, excluded)
// into a single slice. Prefer ForEach for hot paths: this allocates the
// result slice and grows it as handles are appended.
func (w *World) QueryEntities(required, excluded Bit) []Handle {
	var out []Handle
	w.ForEachTable(required, excluded, func(arch *Archetype) {
		n := arch.Len()
		for row := 0; row < n; row++ {
			en, err := arch.table.Entry(row)
			if err != nil {
				continue
			}
			out = append(out, w.handleFor(en))
		}
	})
	return out
}

// ForEach visits every live entity matching (required, excluded). The
// world is locked for the duration of the call, so despawns issued from
// inside fn are deferred (spec §4.9) rather than disrupting iteration by
// swap-removing the row out from under the walk in progress.
func (w *World) ForEach(required, excluded Bit, fn func(Handle)) {
	w.Lock()
	defer w.Unlock()
	for _, idx := range w.Match(required, excluded) {
		arch := w.archetypes[idx]
		n := arch.Len()
		for row := 0; row < n; row++ {
			en, err := arch.table.Entry(row)
			if err != nil {
				continue
			}
			fn(w.handleFor(en))
		}
	}
}

// ForEachTable visits every archetype matching (required, excluded) once,
// passing the whole archetype so callers can work directly against its
// columns (e.g. via table.Accessor[T]) instead of per-entity handle
// lookups. Also locks the world for the duration of the call.
func (w *World) ForEachTable(required, excluded Bit, fn func(*Archetype)) {
	w.Lock()
	defer w.Unlock()
	for _, idx := range w.Match(required, excluded) {
		fn(w.archetypes[idx])
	}
}
