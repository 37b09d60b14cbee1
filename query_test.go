package ecs

import "testing"

func TestQueryRequiredExcluded(t *testing.T) {
	w := NewWorld()
	position := RegisterComponent[testPosition](w)
	velocity := RegisterComponent[testVelocity](w)
	health := RegisterComponent[testHealth](w)

	w.SpawnBatch(position.Bit(), 3)
	w.SpawnBatch(position.Bit()|velocity.Bit(), 4)
	w.SpawnBatch(position.Bit()|health.Bit(), 2)
	w.SpawnBatch(position.Bit()|velocity.Bit()|health.Bit(), 5)

	cases := []struct {
		name     string
		required Bit
		excluded Bit
		want     int
	}{
		{"all with position", position.Bit(), 0, 14},
		{"position and velocity", position.Bit() | velocity.Bit(), 0, 9},
		{"position without velocity", position.Bit(), velocity.Bit(), 5},
		{"velocity without health", velocity.Bit(), health.Bit(), 4},
		{"velocity and health together", velocity.Bit() | health.Bit(), 0, 5},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := w.QueryCount(c.required, c.excluded)
			if got != c.want {
				t.Fatalf("QueryCount(%b, %b) = %d, want %d", c.required, c.excluded, got, c.want)
			}
		})
	}
}

func TestQueryCacheReusesSliceAcrossCalls(t *testing.T) {
	w := NewWorld()
	position := RegisterComponent[testPosition](w)

	w.Spawn(position.Bit(), nil)

	first := w.Match(position.Bit(), 0)
	second := w.Match(position.Bit(), 0)
	if &first[0] != &second[0] {
		t.Fatal("Match recomputed the match set instead of returning the cached slice")
	}
}

func TestQueryCacheExtendsOnNewArchetype(t *testing.T) {
	w := NewWorld()
	position := RegisterComponent[testPosition](w)
	velocity := RegisterComponent[testVelocity](w)

	w.Spawn(position.Bit(), nil)
	if got := w.QueryCount(position.Bit(), 0); got != 1 {
		t.Fatalf("QueryCount before new archetype = %d, want 1", got)
	}

	// Force a brand-new archetype after the query above has already been cached.
	w.Spawn(position.Bit()|velocity.Bit(), nil)
	if got := w.QueryCount(position.Bit(), 0); got != 2 {
		t.Fatalf("QueryCount after new archetype = %d, want 2 (cache must extend, not go stale)", got)
	}
}

func TestForEachVisitsEveryMatch(t *testing.T) {
	w := NewWorld()
	position := RegisterComponent[testPosition](w)
	velocity := RegisterComponent[testVelocity](w)

	w.SpawnBatch(position.Bit(), 3)
	w.SpawnBatch(position.Bit()|velocity.Bit(), 4)

	visited := make(map[Handle]bool)
	w.ForEach(position.Bit(), 0, func(h Handle) {
		visited[h] = true
	})
	if len(visited) != 7 {
		t.Fatalf("ForEach visited %d entities, want 7", len(visited))
	}
}

func TestQueryFirst(t *testing.T) {
	w := NewWorld()
	position := RegisterComponent[testPosition](w)

	if _, ok := w.QueryFirst(position.Bit(), 0); ok {
		t.Fatal("QueryFirst found a match with no entities spawned")
	}
	h, _ := w.Spawn(position.Bit(), nil)
	got, ok := w.QueryFirst(position.Bit(), 0)
	if !ok {
		t.Fatal("QueryFirst found no match after a spawn")
	}
	if got != h {
		t.Fatalf("QueryFirst = %v, want %v", got, h)
	}
}

func TestTableIteratorWalksEveryMatch(t *testing.T) {
	w := NewWorld()
	position := RegisterComponent[testPosition](w)

	want, _ := w.SpawnBatch(position.Bit(), 6)

	it := NewTableIterator(w, position.Bit(), 0)
	seen := make(map[Handle]bool)
	for it.Next() {
		seen[it.Entity()] = true
	}
	if len(seen) != len(want) {
		t.Fatalf("TableIterator visited %d entities, want %d", len(seen), len(want))
	}
	for _, h := range want {
		if !seen[h] {
			t.Fatalf("TableIterator never visited %v", h)
		}
	}
}
