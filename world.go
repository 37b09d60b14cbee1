package ecs

import (
	"fmt"
	"reflect"
	"unsafe"

	"github.com/TheBitDrifter/bark"
	"github.com/TheBitDrifter/mask"
	"github.com/TheBitDrifter/table"
)

// Payload supplies initial component values to Spawn, keyed by component
// bit. A bit present in the spawn mask but absent (or nil) here is
// zero-initialized, per spec §4.8.
type Payload map[Bit]any

// World owns every archetype, the entity slot table, and the query memo
// cache for one simulation. It is single-threaded: World holds no internal
// synchronization, performs no atomic operations, and every public
// operation runs to completion before returning (spec §5). The only
// concession to "mutation during iteration" is the re-entrant Lock/Unlock
// pair ForEach/ForEachTable/TableIterator hold for their duration, which
// structural mutations consult via Locked() the same way the teacher's
// storage.go gates NewEntities/DestroyEntities on its lock.
type World struct {
	schema     table.Schema
	entryIndex table.EntryIndex

	archetypes []*Archetype
	byMask     map[mask.Mask]archetypeIndex
	tableOwner map[table.Table]*Archetype

	components     [MaxComponents]Component
	componentTypes [MaxComponents]reflect.Type
	componentCount int
	typeToBit      map[reflect.Type]Bit

	slots []slot

	queryCache map[queryKey][]archetypeIndex

	despawnQueue []Handle

	tags *tagStore

	lockDepth int
}

// newWorld constructs an empty World. Exported as Factory.NewWorld,
// mirroring the teacher's convention of routing construction through a
// single Factory value instead of a bare exported constructor.
func newWorld() *World {
	return &World{
		schema:     table.Factory.NewSchema(),
		entryIndex: table.Factory.NewEntryIndex(),
		byMask:     make(map[mask.Mask]archetypeIndex),
		tableOwner: make(map[table.Table]*Archetype),
		typeToBit:  make(map[reflect.Type]Bit),
		queryCache: make(map[queryKey][]archetypeIndex),
		tags:       newTagStore(),
	}
}

// ComponentCount returns the number of distinct component types registered
// so far on this world.
func (w *World) ComponentCount() int { return w.componentCount }

// Locked reports whether the world is currently mid-iteration.
func (w *World) Locked() bool { return w.lockDepth > 0 }

// Lock marks the start of an iteration pass that must not be invalidated by
// structural mutation. Re-entrant: nested Lock/Unlock pairs are allowed so a
// query can be run from inside another query's ForEach. The outermost
// Unlock flushes any despawns deferred while locked.
func (w *World) Lock() { w.lockDepth++ }

// Unlock ends one iteration pass started by Lock.
func (w *World) Unlock() {
	if w.lockDepth == 0 {
		return
	}
	w.lockDepth--
	if w.lockDepth == 0 {
		w.FlushDespawns()
	}
}

// registerElement binds an already-constructed table.ElementType to a bit
// in this world's schema, or returns the existing bit if t was already
// registered. Called by RegisterComponent.
func (w *World) registerElement(elem table.ElementType, t reflect.Type) Bit {
	if bit, ok := w.typeToBit[t]; ok {
		return bit
	}
	if w.componentCount >= MaxComponents {
		panic(bark.AddTrace(ComponentCapacityError{Max: MaxComponents}))
	}
	w.schema.Register(elem)
	idx := w.schema.RowIndexFor(elem)
	bit := Bit(1) << uint(idx)
	w.components[idx] = elem
	w.componentTypes[idx] = t
	w.typeToBit[t] = bit
	if int(idx)+1 > w.componentCount {
		w.componentCount = int(idx) + 1
	}
	return bit
}

// maskFromBits expands a Bit signature into the mask.Mask representation
// archetypes and the underlying table schema key off.
func (w *World) maskFromBits(sig Bit) mask.Mask {
	var m mask.Mask
	for idx := uint32(0); idx < MaxComponents; idx++ {
		if sig&(Bit(1)<<idx) != 0 {
			m.Mark(idx)
		}
	}
	return m
}

// maskHasBit reports whether archetype mask m carries the component at bit
// index idx. mask.Mask exposes no raw extraction, so membership is tested
// by probing with a throwaway single-bit mask via ContainsAll, the same way
// the teacher's query evaluation narrows archetypes by mask containment.
func maskHasBit(m mask.Mask, idx uint32) bool {
	var probe mask.Mask
	probe.Mark(idx)
	return m.ContainsAll(probe)
}

// componentsForMask returns the Component slice (in ascending bit order)
// backing archetype column creation for m.
func (w *World) componentsForMask(m mask.Mask) []Component {
	comps := make([]Component, 0, w.componentCount)
	for idx := uint32(0); idx < uint32(w.componentCount); idx++ {
		if maskHasBit(m, idx) {
			comps = append(comps, w.components[idx])
		}
	}
	return comps
}

// archetypeForMask returns the archetype exactly matching m, creating it
// (and cross-wiring its graph edges against every existing archetype, spec
// §4.6) if it does not yet exist.
func (w *World) archetypeForMask(m mask.Mask) (*Archetype, error) {
	if idx, ok := w.byMask[m]; ok {
		return w.archetypes[idx], nil
	}
	idx := archetypeIndex(len(w.archetypes))
	arch, err := newArchetype(w.schema, w.entryIndex, idx, m, w.componentsForMask(m))
	if err != nil {
		return nil, err
	}
	w.archetypes = append(w.archetypes, arch)
	w.byMask[m] = idx
	w.tableOwner[arch.table] = arch
	wireEdges(w, arch)
	w.invalidateQueryCacheFor(arch)
	return arch, nil
}

// handleFor snapshots a table.Entry as a Handle. The entry's generation
// comes from Recycled(), the same counter the teacher's entity.go relies on
// for stale-handle detection after slot reuse.
func (w *World) handleFor(en table.Entry) Handle {
	return Handle{ID: uint32(en.ID()), Generation: uint32(en.Recycled())}
}

func (w *World) entry(id uint32) (table.Entry, error) {
	return w.entryIndex.Entry(int(id) - 1)
}

func (w *World) ensureSlotCap(id uint32) {
	if int(id) > len(w.slots) {
		grown := make([]slot, id)
		copy(grown, w.slots)
		w.slots = grown
	}
}

func (w *World) markAlive(h Handle) {
	w.ensureSlotCap(h.ID)
	w.slots[h.ID-1].alive = true
}

func (w *World) markDead(h Handle) {
	if int(h.ID) <= len(w.slots) {
		w.slots[h.ID-1].alive = false
	}
}

// IsAlive reports whether handle still refers to a live entity: the slot
// must be marked alive and the entity's current generation must match.
func (w *World) IsAlive(h Handle) bool {
	if h.ID == 0 || int(h.ID) > len(w.slots) {
		return false
	}
	if !w.slots[h.ID-1].alive {
		return false
	}
	en, err := w.entry(h.ID)
	if err != nil {
		return false
	}
	return uint32(en.Recycled()) == h.Generation
}

// locate resolves a live handle to its current archetype and row. Row is
// re-read from the underlying table.Entry on every call (never cached),
// exactly as the teacher's entity.go does, because swap-remove and
// transfer can move a row at any structural mutation.
func (w *World) locate(h Handle) (*Archetype, int, bool) {
	if !w.IsAlive(h) {
		return nil, 0, false
	}
	en, err := w.entry(h.ID)
	if err != nil {
		panic(bark.AddTrace(err))
	}
	arch, ok := w.tableOwner[en.Table()]
	if !ok {
		panic(bark.AddTrace(fmt.Errorf("entity %v has no owning archetype", h)))
	}
	return arch, en.Index(), true
}

// Spawn creates one entity with the given component mask. sig must be an
// OR of bits returned by RegisterComponent on this world. A zero mask
// returns NilHandle and mutates nothing (spec §4.8/§4.14).
func (w *World) Spawn(sig Bit, payload Payload) (Handle, error) {
	if sig == 0 {
		return NilHandle, nil
	}
	if w.Locked() {
		return NilHandle, LockedWorldError{}
	}
	arch, err := w.archetypeForMask(w.maskFromBits(sig))
	if err != nil {
		return NilHandle, err
	}
	entries, err := arch.table.NewEntries(1)
	if err != nil {
		return NilHandle, err
	}
	h := w.handleFor(entries[0])
	w.markAlive(h)
	if err := w.applyPayload(arch, entries[0].Index(), sig, payload); err != nil {
		return NilHandle, err
	}
	return h, nil
}

// SpawnBatch creates n entities sharing sig, all zero-initialized. Reserves
// capacity once in the destination archetype's columns rather than growing
// row by row (spec §4.8 "amortized O(1) per entity").
func (w *World) SpawnBatch(sig Bit, n int) ([]Handle, error) {
	if sig == 0 || n <= 0 {
		return nil, nil
	}
	if w.Locked() {
		return nil, LockedWorldError{}
	}
	arch, err := w.archetypeForMask(w.maskFromBits(sig))
	if err != nil {
		return nil, err
	}
	entries, err := arch.table.NewEntries(n)
	if err != nil {
		return nil, err
	}
	handles := make([]Handle, n)
	for i, en := range entries {
		h := w.handleFor(en)
		w.markAlive(h)
		handles[i] = h
	}
	return handles, nil
}

// SpawnWithInit is SpawnBatch followed by one init callback per handle,
// useful for e.g. assigning distinct spawn positions without a second pass
// over the archetype.
func (w *World) SpawnWithInit(sig Bit, n int, init func(Handle)) ([]Handle, error) {
	handles, err := w.SpawnBatch(sig, n)
	if err != nil {
		return nil, err
	}
	if init != nil {
		for _, h := range handles {
			init(h)
		}
	}
	return handles, nil
}

// Despawn removes an entity immediately. If the world is currently locked
// for iteration, the despawn is deferred to the despawn queue instead (spec
// §4.9) and applied once the outermost Lock unwinds. Returns false if
// handle is already dead.
func (w *World) Despawn(h Handle) bool {
	if !w.IsAlive(h) {
		return false
	}
	if w.Locked() {
		w.despawnQueue = append(w.despawnQueue, h)
		return true
	}
	arch, _, _ := w.locate(h)
	if _, err := arch.table.DeleteEntries(int(h.ID)); err != nil {
		panic(bark.AddTrace(err))
	}
	w.markDead(h)
	w.tags.clearEntity(h)
	return true
}

// DespawnBatch despawns every handle, grouping by archetype table so each
// table's swap-removes happen in one call, and returns the count actually
// despawned (already-dead handles are skipped, not errors). Like Despawn,
// defers to the despawn queue while the world is locked.
func (w *World) DespawnBatch(handles []Handle) int {
	if w.Locked() {
		n := 0
		for _, h := range handles {
			if w.IsAlive(h) {
				w.despawnQueue = append(w.despawnQueue, h)
				n++
			}
		}
		return n
	}
	byTable := make(map[table.Table][]int)
	toMark := make([]Handle, 0, len(handles))
	for _, h := range handles {
		if !w.IsAlive(h) {
			continue
		}
		arch, _, _ := w.locate(h)
		byTable[arch.table] = append(byTable[arch.table], int(h.ID))
		toMark = append(toMark, h)
	}
	for tbl, ids := range byTable {
		if _, err := tbl.DeleteEntries(ids...); err != nil {
			panic(bark.AddTrace(err))
		}
	}
	for _, h := range toMark {
		w.markDead(h)
		w.tags.clearEntity(h)
	}
	return len(toMark)
}

// FlushDespawns applies every despawn deferred while the world was locked.
// Safe to call any time; a no-op if nothing is queued.
func (w *World) FlushDespawns() int {
	if len(w.despawnQueue) == 0 {
		return 0
	}
	pending := w.despawnQueue
	w.despawnQueue = nil
	return w.DespawnBatch(pending)
}

// EntityCount returns the total number of live entities across every
// archetype.
func (w *World) EntityCount() int {
	total := 0
	for _, a := range w.archetypes {
		total += a.Len()
	}
	return total
}

// Has reports whether handle currently carries the component identified by
// bit.
func (w *World) Has(h Handle, bit Bit) bool {
	arch, _, ok := w.locate(h)
	if !ok {
		return false
	}
	return maskHasBit(arch.mask, BitIndex(bit))
}

// HasComponents reports whether handle carries every component bit set in
// sig.
func (w *World) HasComponents(h Handle, sig Bit) bool {
	arch, _, ok := w.locate(h)
	if !ok {
		return false
	}
	for idx := uint32(0); idx < MaxComponents; idx++ {
		if sig&(Bit(1)<<idx) != 0 && !maskHasBit(arch.mask, idx) {
			return false
		}
	}
	return true
}

// ComponentMask returns handle's full component signature, or ok=false if
// handle is dead.
func (w *World) ComponentMask(h Handle) (sig Bit, ok bool) {
	arch, _, alive := w.locate(h)
	if !alive {
		return 0, false
	}
	for idx := uint32(0); idx < uint32(w.componentCount); idx++ {
		if maskHasBit(arch.mask, idx) {
			sig |= Bit(1) << idx
		}
	}
	return sig, true
}

// AddComponent adds bit to handle's signature, moving it to the
// destination archetype via the cached add-edge (spec §4.6) and copying
// every existing column value across via the underlying table's
// TransferEntries. If value is non-nil it seeds the new component's value
// afterward; otherwise the column keeps its zero value.
func (w *World) AddComponent(h Handle, bit Bit, value any) error {
	if w.Locked() {
		return LockedWorldError{}
	}
	arch, row, ok := w.locate(h)
	if !ok {
		return nil
	}
	if maskHasBit(arch.mask, BitIndex(bit)) {
		if value != nil {
			return w.setComponentValue(arch, row, value)
		}
		return nil
	}
	dest, err := destArchetypeForAdd(w, arch, bit)
	if err != nil {
		return err
	}
	if err := arch.table.TransferEntries(dest.table, row); err != nil {
		return err
	}
	if value != nil {
		newArch, newRow, _ := w.locate(h)
		return w.setComponentValue(newArch, newRow, value)
	}
	return nil
}

// RemoveComponent removes bit from handle's signature, moving it to the
// destination archetype via the cached remove-edge. A no-op if handle
// already lacks the component. Removing the last remaining component
// despawns the entity outright (spec §8: an entity with an empty mask
// does not exist) rather than moving it into a zero-component archetype.
func (w *World) RemoveComponent(h Handle, bit Bit) error {
	if w.Locked() {
		return LockedWorldError{}
	}
	arch, row, ok := w.locate(h)
	if !ok {
		return nil
	}
	if !maskHasBit(arch.mask, BitIndex(bit)) {
		return nil
	}
	if maskMinusBit(arch.mask, BitIndex(bit)).IsEmpty() {
		w.Despawn(h)
		return nil
	}
	dest, err := destArchetypeForRemove(w, arch, bit)
	if err != nil {
		return err
	}
	return arch.table.TransferEntries(dest.table, row)
}

// setComponentValue writes value into whichever of arch's columns matches
// value's reflect.Type, at row. Matching by type rather than by bit index
// mirrors the teacher's entity.go AddComponentWithValue, which cannot
// assume column order matches global bit order either.
func (w *World) setComponentValue(arch *Archetype, row int, value any) error {
	valueType := reflect.TypeOf(value)
	for _, r := range arch.table.Rows() {
		col := reflect.Value(r)
		if col.Type().Elem() == valueType {
			col.Index(row).Set(reflect.ValueOf(value))
			return nil
		}
	}
	return ComponentTypeMismatchError{Want: "<archetype column>", Got: fmt.Sprint(valueType)}
}

// Column returns a raw pointer to arch's backing array for bit and the
// number of live rows in it, for callers that want to bypass per-entity
// handle lookups entirely (spec §4's `column(archetype, bit) -> (ptr,
// count)`). ok is false if arch does not carry bit. The pointer is only
// valid until the next structural mutation that could reallocate arch's
// columns.
func (w *World) Column(arch *Archetype, bit Bit) (ptr unsafe.Pointer, count int, ok bool) {
	idx := BitIndex(bit)
	if !maskHasBit(arch.mask, idx) {
		return nil, 0, false
	}
	want := w.componentTypes[idx]
	for _, r := range arch.table.Rows() {
		col := reflect.Value(r)
		if col.Type().Elem() == want {
			return col.UnsafePointer(), col.Len(), true
		}
	}
	return nil, 0, false
}

// ColumnUnchecked is Column without the found/not-found bool, for hot paths
// that already know arch carries bit (spec §4's `column_unchecked`).
// Returns nil if arch does not actually carry bit.
func (w *World) ColumnUnchecked(arch *Archetype, bit Bit) unsafe.Pointer {
	ptr, _, _ := w.Column(arch, bit)
	return ptr
}

// applyPayload writes every entry of payload whose bit is set in sig into
// row of arch. Bits in sig absent from payload keep the column's zero
// value (spec §4.8).
func (w *World) applyPayload(arch *Archetype, row int, sig Bit, payload Payload) error {
	if payload == nil {
		return nil
	}
	for idx := uint32(0); idx < uint32(w.componentCount); idx++ {
		bit := Bit(1) << idx
		if sig&bit == 0 {
			continue
		}
		value, ok := payload[bit]
		if !ok || value == nil {
			continue
		}
		if err := w.setComponentValue(arch, row, value); err != nil {
			return err
		}
	}
	return nil
}
