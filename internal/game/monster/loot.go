package monster

import (
	"github.com/lorencia/mmoserver/internal/game/geo"
	"github.com/lorencia/mmoserver/internal/game/rng"
)

// LootEntry is a single item in a monster's loot table with an independent
// drop chance.
type LootEntry struct {
	ItemID int
	Name   string
	Chance float64
}

// Drop is one item produced by a death loot roll, placed where the monster
// fell.
type Drop struct {
	ItemID   int
	Name     string
	Position geo.Vec3
}

// lootTableFor returns the level-banded loot table: low-level monsters drop
// basic consumables and weapons, higher bands shift toward better gear.
func lootTableFor(level int) []LootEntry {
	switch {
	case level <= 3:
		return []LootEntry{
			{ItemID: 4, Name: "Health Potion", Chance: 0.3},
			{ItemID: 1, Name: "Rusty Sword", Chance: 0.1},
		}
	case level <= 7:
		return []LootEntry{
			{ItemID: 4, Name: "Health Potion", Chance: 0.4},
			{ItemID: 5, Name: "Mana Potion", Chance: 0.3},
			{ItemID: 2, Name: "Iron Sword", Chance: 0.15},
		}
	default:
		return []LootEntry{
			{ItemID: 4, Name: "Health Potion", Chance: 0.5},
			{ItemID: 5, Name: "Mana Potion", Chance: 0.4},
			{ItemID: 3, Name: "Leather Armor", Chance: 0.2},
		}
	}
}

// rollLoot performs an independent Bernoulli trial per table entry and
// returns the drops, positioned at the death location.
//
// Precondition: src must be non-nil.
func rollLoot(table []LootEntry, at geo.Vec3, src rng.Source) []Drop {
	var drops []Drop
	for _, entry := range table {
		if src.Float64() <= entry.Chance {
			drops = append(drops, Drop{
				ItemID:   entry.ItemID,
				Name:     entry.Name,
				Position: at,
			})
		}
	}
	return drops
}
