package ecs

import (
	"math/bits"
	"reflect"

	"github.com/TheBitDrifter/table"
)

// Component identifies a registered component type within a world's schema.
// It is the same identity table.ElementType uses internally for column
// creation, kept so the underlying github.com/TheBitDrifter/table library
// continues to own column layout (spec §4.2/§4.3) while this package layers
// the explicit bit-based registry spec §4 requires on top of it.
type Component interface {
	table.ElementType
}

// Bit is a single-bit component identifier: exactly one bit of a 64-bit
// archetype mask. bit_index(bit) = trailing_zero_count(bit) per spec §3.
type Bit uint64

// BitIndex returns the 0..63 index of the single set bit in b.
func BitIndex(b Bit) uint32 {
	return uint32(bits.TrailingZeros64(uint64(b)))
}

// ComponentType is a registered component: its bit within a specific
// world's archetype masks, plus the typed column accessor
// github.com/TheBitDrifter/table provides for direct, allocation-free
// reads and writes (the same table.Accessor[T] the teacher's
// AccessibleComponent wraps). Obtained from RegisterComponent.
type ComponentType[T any] struct {
	world    *World
	elem     table.ElementType
	accessor table.Accessor[T]
	bit      Bit
}

// Bit returns this component's single-bit mask value.
func (c ComponentType[T]) Bit() Bit { return c.bit }

// Get returns a pointer to the component value for handle, or nil if handle
// is dead or does not carry this component. The pointer aliases the
// archetype's backing column directly; it is invalidated by any structural
// mutation of handle (AddComponent, RemoveComponent, Despawn) or by a
// despawn of a different entity that triggers a swap-remove into the same
// row, so callers must re-fetch it after any such mutation rather than
// holding it across one.
func (c ComponentType[T]) Get(h Handle) *T {
	arch, row, ok := c.world.locate(h)
	if !ok || !c.accessor.Check(arch.table) {
		return nil
	}
	return c.accessor.Get(row, arch.table)
}

// Has reports whether handle currently carries this component.
func (c ComponentType[T]) Has(h Handle) bool {
	return c.world.Has(h, c.bit)
}

// Set overwrites the component value for handle in place, returning false
// if handle is dead or does not carry this component (spec §6's
// `set(handle, bit, bytes, size) -> bool`). Unlike AddComponent, Set never
// moves the entity to a different archetype — the component must already
// be present.
func (c ComponentType[T]) Set(h Handle, value T) bool {
	arch, row, ok := c.world.locate(h)
	if !ok || !c.accessor.Check(arch.table) {
		return false
	}
	*c.accessor.Get(row, arch.table) = value
	return true
}

// RegisterComponent registers T as a new component type on w and returns a
// typed accessor for it. Registering the same type twice on the same world
// returns the same bit (idempotent, mirroring table.Schema.Register).
// Panics if w already carries MaxComponents distinct component types: the
// cap is small and fixed (§6), so overflow here is a programmer error, not
// routine input, matching spec §7's "invalid bit masks ... undefined
// behavior" stance. Use w.ComponentCount() to check headroom first if that
// matters for the caller.
func RegisterComponent[T any](w *World) ComponentType[T] {
	var zero T
	elem := table.FactoryNewElementType[T]()
	bit := w.registerElement(elem, reflect.TypeOf(zero))
	return ComponentType[T]{
		world:    w,
		elem:     elem,
		accessor: table.FactoryNewAccessor[T](elem),
		bit:      bit,
	}
}
