/*
Package ecs provides an archetype-based Entity-Component-System (ECS) data
store for interactive simulations: agent-based sims, games, particle
systems, where tens of thousands of entities must be iterated every frame.

Entities are grouped by the exact set of component types they carry. Each
such group, an archetype, stores its components as tightly packed columns
and is addressed by a bitmask. Structural changes (adding or removing a
component) route through an archetype graph of cached add/remove edges so
the common case costs one slice lookup, not a linear scan.

Core Concepts:

  - Handle: a generational (id, generation) reference to an entity. Stable
    across archetype moves, invalidated by despawn.
  - World: owns every archetype, the entity slot table, and the query memo
    cache. Single-threaded; holds no locks beyond a re-entrant iteration
    guard: while it is held, despawns are deferred until iteration
    completes and other structural mutations return LockedWorldError.
  - Archetype: the set of entities sharing one component bitmask, stored
    column-major via github.com/TheBitDrifter/table.
  - Query: a (required, excluded) bitmask pair matched against every
    archetype's mask, memoized and kept sound incrementally as new
    archetypes are created.

Basic usage:

	w := ecs.NewWorld()
	position := ecs.RegisterComponent[Position](w)
	velocity := ecs.RegisterComponent[Velocity](w)

	h, _ := w.Spawn(position.Bit()|velocity.Bit(), ecs.Payload{
		position.Bit(): Position{X: 1, Y: 2},
	})

	w.ForEach(position.Bit()|velocity.Bit(), 0, func(h ecs.Handle) {
		pos := position.Get(h)
		vel := velocity.Get(h)
		pos.X += vel.X
		pos.Y += vel.Y
	})

This package is single-threaded by design (see World's doc comment) and is
not a persistence format: component payloads must be trivially relocatable
bytes, and no destructors run on despawn.
*/
package ecs
