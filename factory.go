package ecs

// factory routes construction of this package's core types through one
// value, following the teacher's convention (a bare exported New* function
// per type would work just as well, but the teacher consistently prefers
// Factory.NewX; generic constructors still need top-level FactoryNewX
// functions below since Go disallows type parameters on methods).
type factory struct{}

// Factory is the package's single construction entry point for
// non-generic types.
var Factory factory

// NewWorld constructs an empty World.
func (f factory) NewWorld() *World {
	return newWorld()
}

// NewCommandBuffer constructs an empty CommandBuffer.
func (f factory) NewCommandBuffer() *CommandBuffer {
	return FactoryNewCommandBuffer()
}

// NewTableIterator constructs a TableIterator over w for the given query.
func (f factory) NewTableIterator(w *World, required, excluded Bit) *TableIterator {
	return NewTableIterator(w, required, excluded)
}

// NewWorld is a package-level convenience wrapper around Factory.NewWorld,
// matching the signature doc.go's example already assumes.
func NewWorld() *World {
	return Factory.NewWorld()
}
