package ecs

// Command is one deferred structural mutation. Unlike the despawn queue
// (which defers only Despawn so it can't disrupt a ForEach in progress),
// a CommandBuffer records arbitrary spawn/despawn/add/remove operations —
// with their payload bytes captured at record time — for replay once the
// caller decides it's safe, generalizing the teacher's EntityOperation
// pattern from a single concrete operation type per mutation kind to one
// interface with record-then-replay semantics for every kind.
type Command interface {
	apply(w *World) error
}

// CommandBuffer accumulates commands for later replay via Flush. Typical
// use is recording spawns and despawns from inside a ForEach callback,
// where the world is locked, then flushing once iteration has returned.
type CommandBuffer struct {
	commands []Command
}

// FactoryNewCommandBuffer constructs an empty CommandBuffer.
func FactoryNewCommandBuffer() *CommandBuffer {
	return &CommandBuffer{}
}

// Flush applies every recorded command against w, in record order, and
// clears the buffer. Returns the first error encountered; commands after
// the failing one are left unapplied and the buffer is NOT cleared, so a
// caller can inspect state and retry.
func (b *CommandBuffer) Flush(w *World) error {
	for i, cmd := range b.commands {
		if err := cmd.apply(w); err != nil {
			b.commands = b.commands[i:]
			return err
		}
	}
	b.commands = b.commands[:0]
	return nil
}

// Len returns the number of commands currently recorded.
func (b *CommandBuffer) Len() int { return len(b.commands) }

type spawnCommand struct {
	sig     Bit
	payload Payload
	result  *Handle
}

// Spawn records a spawn for replay. If result is non-nil, the handle
// produced by the eventual Flush is written into *result, letting a caller
// queue a spawn and a dependent AddComponent on the same buffer before
// either actually runs.
func (b *CommandBuffer) Spawn(sig Bit, payload Payload, result *Handle) {
	b.commands = append(b.commands, spawnCommand{sig: sig, payload: payload, result: result})
}

func (c spawnCommand) apply(w *World) error {
	h, err := w.Spawn(c.sig, c.payload)
	if err != nil {
		return err
	}
	if c.result != nil {
		*c.result = h
	}
	return nil
}

type despawnCommand struct {
	entity Handle
}

// Despawn records a despawn for replay.
func (b *CommandBuffer) Despawn(h Handle) {
	b.commands = append(b.commands, despawnCommand{entity: h})
}

func (c despawnCommand) apply(w *World) error {
	w.Despawn(c.entity)
	return nil
}

// addComponentCommand captures the payload value at record time (per the
// resolved Open Question in spec §9), rather than only the component
// shape: Go's generics make typed payload capture free, so there's no
// reason to defer that decision to replay time the way the reference
// implementation's shape-only command does.
type addComponentCommand struct {
	entity Handle
	bit    Bit
	value  any
}

// AddComponent records a component addition for replay. value may be nil
// to zero-initialize.
func (b *CommandBuffer) AddComponent(h Handle, bit Bit, value any) {
	b.commands = append(b.commands, addComponentCommand{entity: h, bit: bit, value: value})
}

func (c addComponentCommand) apply(w *World) error {
	return w.AddComponent(c.entity, c.bit, c.value)
}

type removeComponentCommand struct {
	entity Handle
	bit    Bit
}

// RemoveComponent records a component removal for replay.
func (b *CommandBuffer) RemoveComponent(h Handle, bit Bit) {
	b.commands = append(b.commands, removeComponentCommand{entity: h, bit: bit})
}

func (c removeComponentCommand) apply(w *World) error {
	return w.RemoveComponent(c.entity, c.bit)
}
