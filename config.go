package ecs

import "github.com/TheBitDrifter/table"

// Limits fixed by the spec: MaxComponents sizes the archetype mask and the
// per-archetype edge arrays, MaxTags caps RegisterTag. MinEntityCapacity and
// initialColumnCap are not read anywhere in the package; slot and column
// growth are left to the slot slice and the underlying table.
const (
	MaxComponents     = 64
	MaxTags           = 64
	MinEntityCapacity = 64
	initialColumnCap  = 16
)

// Config holds process-wide configuration for the underlying table system.
// It is a package-level var, following the teacher's convention, rather
// than a parsed config file: the engine has no CLI or config surface in
// scope (spec.md §1, Deliberately out of scope).
var Config config = config{}

type config struct {
	tableEvents table.TableEvents
}

// SetTableEvents configures the column-table event callbacks (fired on
// table creation/row moves by the underlying github.com/TheBitDrifter/table
// library). Used for diagnostics; never required for correctness.
func (c *config) SetTableEvents(te table.TableEvents) {
	c.tableEvents = te
}
