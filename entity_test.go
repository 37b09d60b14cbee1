package ecs

import "testing"

type testPosition struct {
	X, Y float64
}

type testVelocity struct {
	X, Y float64
}

type testHealth struct {
	Current, Max int
}

func TestHandleIsNil(t *testing.T) {
	if !NilHandle.IsNil() {
		t.Fatal("NilHandle.IsNil() = false, want true")
	}
	h := Handle{ID: 1, Generation: 0}
	if h.IsNil() {
		t.Fatal("non-zero Handle reported as nil")
	}
}

func TestSpawnProducesLiveHandle(t *testing.T) {
	w := NewWorld()
	position := RegisterComponent[testPosition](w)

	h, err := w.Spawn(position.Bit(), nil)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	if h.IsNil() {
		t.Fatal("Spawn returned NilHandle for a non-zero mask")
	}
	if !w.IsAlive(h) {
		t.Fatal("freshly spawned handle reports not alive")
	}
}

func TestSpawnZeroMaskReturnsNilHandle(t *testing.T) {
	w := NewWorld()
	h, err := w.Spawn(0, nil)
	if err != nil {
		t.Fatalf("Spawn(0, nil): unexpected error %v", err)
	}
	if !h.IsNil() {
		t.Fatalf("Spawn(0, nil) = %v, want NilHandle", h)
	}
	if w.EntityCount() != 0 {
		t.Fatalf("Spawn(0, nil) created an entity: count = %d", w.EntityCount())
	}
}

func TestDespawnInvalidatesHandle(t *testing.T) {
	w := NewWorld()
	position := RegisterComponent[testPosition](w)

	h, _ := w.Spawn(position.Bit(), nil)
	if ok := w.Despawn(h); !ok {
		t.Fatal("Despawn returned false for a live handle")
	}
	if w.IsAlive(h) {
		t.Fatal("handle still reports alive after Despawn")
	}
	if ok := w.Despawn(h); ok {
		t.Fatal("Despawn returned true for an already-dead handle")
	}
}

func TestGenerationalReuseRejectsStaleHandle(t *testing.T) {
	w := NewWorld()
	position := RegisterComponent[testPosition](w)

	first, _ := w.Spawn(position.Bit(), nil)
	w.Despawn(first)

	var second Handle
	for i := 0; i < 4; i++ {
		second, _ = w.Spawn(position.Bit(), nil)
		if second.ID == first.ID {
			break
		}
		w.Despawn(second)
	}

	if second.ID != first.ID {
		t.Skip("underlying entry index did not recycle the freed slot within the attempt budget")
	}
	if second.Generation == first.Generation {
		t.Fatalf("recycled slot kept the same generation: %d", second.Generation)
	}
	if w.IsAlive(first) {
		t.Fatal("stale handle from before despawn reports alive after slot reuse")
	}
	if !w.IsAlive(second) {
		t.Fatal("freshly reissued handle reports not alive")
	}
}

func TestComponentGetAndHas(t *testing.T) {
	w := NewWorld()
	position := RegisterComponent[testPosition](w)
	velocity := RegisterComponent[testVelocity](w)

	h, err := w.Spawn(position.Bit(), ecsPayloadFor(position.Bit(), testPosition{X: 1, Y: 2}))
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	if !position.Has(h) {
		t.Fatal("spawned entity missing the component in its own spawn mask")
	}
	if velocity.Has(h) {
		t.Fatal("spawned entity reports a component it was never given")
	}
	pos := position.Get(h)
	if pos == nil {
		t.Fatal("Get returned nil for a component the entity carries")
	}
	if pos.X != 1 || pos.Y != 2 {
		t.Fatalf("Get = %+v, want {1 2}", *pos)
	}
	if velocity.Get(h) != nil {
		t.Fatal("Get returned non-nil for a component the entity does not carry")
	}
}

func ecsPayloadFor(bit Bit, value any) Payload {
	return Payload{bit: value}
}
