package ecs

import "testing"

func TestTagRegistrationIsIdempotent(t *testing.T) {
	w := NewWorld()
	a := w.RegisterTag("enemy")
	b := w.RegisterTag("enemy")
	if a != b {
		t.Fatalf("RegisterTag(\"enemy\") returned different ids: %v, %v", a, b)
	}
}

func TestAddHasRemoveTag(t *testing.T) {
	w := NewWorld()
	position := RegisterComponent[testPosition](w)
	enemy := w.RegisterTag("enemy")

	h, _ := w.Spawn(position.Bit(), nil)
	if w.HasTag(h, enemy) {
		t.Fatal("freshly spawned entity already carries a tag")
	}
	w.AddTag(h, enemy)
	if !w.HasTag(h, enemy) {
		t.Fatal("entity missing tag just added")
	}
	w.RemoveTag(h, enemy)
	if w.HasTag(h, enemy) {
		t.Fatal("entity still carries a removed tag")
	}
}

func TestTaggingNeverMovesArchetype(t *testing.T) {
	w := NewWorld()
	position := RegisterComponent[testPosition](w)
	enemy := w.RegisterTag("enemy")

	h, _ := w.Spawn(position.Bit(), nil)
	before := len(w.archetypes)
	w.AddTag(h, enemy)
	if len(w.archetypes) != before {
		t.Fatalf("tagging created a new archetype: had %d, now %d", before, len(w.archetypes))
	}
	arch, _, _ := w.locate(h)
	if arch.index != 0 {
		t.Fatal("tagging moved the entity to a different archetype")
	}
}

func TestQueryTagAndTagCount(t *testing.T) {
	w := NewWorld()
	position := RegisterComponent[testPosition](w)
	enemy := w.RegisterTag("enemy")

	handles, _ := w.SpawnBatch(position.Bit(), 5)
	for _, h := range handles[:3] {
		w.AddTag(h, enemy)
	}

	if got := w.TagCount(enemy); got != 3 {
		t.Fatalf("TagCount = %d, want 3", got)
	}
	members := w.QueryTag(enemy)
	if len(members) != 3 {
		t.Fatalf("QueryTag returned %d members, want 3", len(members))
	}
	for _, h := range handles[3:] {
		for _, m := range members {
			if m == h {
				t.Fatalf("QueryTag returned an untagged entity %v", h)
			}
		}
	}
}

func TestDespawnClearsTags(t *testing.T) {
	w := NewWorld()
	position := RegisterComponent[testPosition](w)
	enemy := w.RegisterTag("enemy")

	h, _ := w.Spawn(position.Bit(), nil)
	w.AddTag(h, enemy)
	w.Despawn(h)

	if w.TagCount(enemy) != 0 {
		t.Fatalf("TagCount after despawn = %d, want 0", w.TagCount(enemy))
	}
}

func TestRegisterTagCapacity(t *testing.T) {
	w := NewWorld()
	defer func() {
		if recover() == nil {
			t.Fatal("RegisterTag beyond MaxTags did not panic")
		}
	}()
	for i := 0; i <= MaxTags; i++ {
		w.RegisterTag(string(rune('a' + i)))
	}
}

func TestOutOfRangeTagIDIsNoOp(t *testing.T) {
	w := NewWorld()
	position := RegisterComponent[testPosition](w)
	h, _ := w.Spawn(position.Bit(), nil)

	bogus := Tag(999)
	w.AddTag(h, bogus) // must not panic
	if w.HasTag(h, bogus) {
		t.Fatal("HasTag reported true for an unregistered tag id")
	}
	w.RemoveTag(h, bogus) // must not panic
	if got := w.TagCount(bogus); got != 0 {
		t.Fatalf("TagCount(out-of-range) = %d, want 0", got)
	}
	if got := w.QueryTag(bogus); got != nil {
		t.Fatalf("QueryTag(out-of-range) = %v, want nil", got)
	}
}
