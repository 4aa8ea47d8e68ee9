package zone

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lorencia/mmoserver/internal/game/geo"
	"github.com/lorencia/mmoserver/internal/game/monster"
	"github.com/lorencia/mmoserver/internal/game/player"
	"github.com/lorencia/mmoserver/internal/game/rng"
	"github.com/lorencia/mmoserver/internal/protocol"
)

// AttackEvent reports one monster attack resolved during Update, for the
// orchestrator to broadcast.
type AttackEvent struct {
	AttackerID string
	TargetID   string
	Damage     int
	TargetDied bool
}

// Zone owns the authoritative entity collections for one named map area.
//
// A Zone is not safe for concurrent use: all mutation happens on the
// orchestrator loop, either inside a message handler or inside the periodic
// tick. Monsters are populated once at construction and never removed; death
// is a monster state, so instance ids stay stable across respawn cycles.
type Zone struct {
	Name string
	Size int

	players  map[string]*player.Player
	monsters map[string]*monster.Monster
	// monsterOrder preserves spawn order for deterministic update fan-out
	// and snapshots.
	monsterOrder []string
}

// New builds a zone from its config, spawning the full monster population
// from the spawn table. Spawn positions are jittered uniformly within
// ±radius of the anchor on the x and z axes.
//
// Precondition: cfg must be valid; templates is keyed by template name; src
// must be non-nil.
// Postcondition: Returns a populated zone, or an error when a spawn entry
// references an unknown template.
func New(cfg *Config, templates map[string]*monster.Template, src rng.Source) (*Zone, error) {
	z := &Zone{
		Name:     cfg.Name,
		Size:     cfg.Size,
		players:  make(map[string]*player.Player),
		monsters: make(map[string]*monster.Monster),
	}

	for _, spawn := range cfg.Spawns {
		tmpl, ok := templates[spawn.Template]
		if !ok {
			return nil, fmt.Errorf("zone %q: spawn references unknown monster template %q", cfg.Name, spawn.Template)
		}
		for i := 0; i < spawn.Count; i++ {
			anchor := spawn.Anchor.Vec3()
			pos := geo.Vec3{
				X: anchor.X + (src.Float64()-0.5)*2*spawn.Radius,
				Y: anchor.Y,
				Z: anchor.Z + (src.Float64()-0.5)*2*spawn.Radius,
			}
			m := monster.New(uuid.New().String(), tmpl, pos, src)
			z.monsters[m.ID] = m
			z.monsterOrder = append(z.monsterOrder, m.ID)
		}
	}
	return z, nil
}

// AddPlayer registers a player in the zone.
//
// Precondition: p must be non-nil with a unique id.
func (z *Zone) AddPlayer(p *player.Player) {
	z.players[p.ID] = p
}

// RemovePlayer removes the player with the given id, if present.
func (z *Zone) RemovePlayer(id string) {
	delete(z.players, id)
}

// Player returns the player with the given id.
func (z *Zone) Player(id string) (*player.Player, bool) {
	p, ok := z.players[id]
	return p, ok
}

// Monster returns the monster with the given id.
func (z *Zone) Monster(id string) (*monster.Monster, bool) {
	m, ok := z.monsters[id]
	return m, ok
}

// PlayerCount returns the number of players currently in the zone.
func (z *Zone) PlayerCount() int {
	return len(z.players)
}

// FirstPlayerInRange returns a live player within radius of pos, or false
// when none is in range. Part of the monster.PlayerIndex contract.
func (z *Zone) FirstPlayerInRange(pos geo.Vec3, radius float64) (*player.Player, bool) {
	for _, p := range z.players {
		if p.Dead {
			continue
		}
		if pos.Distance(p.Position) <= radius {
			return p, true
		}
	}
	return nil, false
}

// PlayersInRange returns all live players within radius of pos.
func (z *Zone) PlayersInRange(pos geo.Vec3, radius float64) []*player.Player {
	var out []*player.Player
	for _, p := range z.players {
		if p.Dead {
			continue
		}
		if pos.Distance(p.Position) <= radius {
			out = append(out, p)
		}
	}
	return out
}

// MonstersInRange returns all live monsters within radius of pos.
func (z *Zone) MonstersInRange(pos geo.Vec3, radius float64) []*monster.Monster {
	var out []*monster.Monster
	for _, id := range z.monsterOrder {
		m := z.monsters[id]
		if m.Dead {
			continue
		}
		if pos.Distance(m.Position) <= radius {
			out = append(out, m)
		}
	}
	return out
}

// Update advances every monster's AI and every player's movement by dt
// seconds. Monster attacks apply damage to their resolved target inline;
// each resolved hit is returned for broadcast.
//
// Precondition: dt must be >= 0.
func (z *Zone) Update(now time.Time, dt float64) []AttackEvent {
	var events []AttackEvent

	for _, id := range z.monsterOrder {
		m := z.monsters[id]
		if hit := m.Update(now, dt, z); hit != nil {
			events = append(events, AttackEvent{
				AttackerID: m.ID,
				TargetID:   hit.TargetID,
				Damage:     hit.Damage,
				TargetDied: hit.TargetDied,
			})
		}
	}

	for _, p := range z.players {
		p.Update(dt)
	}
	return events
}

// PublicState returns the per-tick game_state view: every player, and only
// the live monsters.
func (z *Zone) PublicState() protocol.GameState {
	state := protocol.GameState{
		Players:  make([]protocol.PlayerSnapshot, 0, len(z.players)),
		Monsters: make([]protocol.MonsterSnapshot, 0, len(z.monsterOrder)),
	}
	for _, p := range z.players {
		state.Players = append(state.Players, p.Snapshot())
	}
	for _, id := range z.monsterOrder {
		m := z.monsters[id]
		if m.Dead {
			continue
		}
		state.Monsters = append(state.Monsters, m.Snapshot())
	}
	return state
}

// Snapshot returns the full zone view sent with join_success, including dead
// monsters so the joining client learns every stable instance id.
func (z *Zone) Snapshot() protocol.MapSnapshot {
	snap := protocol.MapSnapshot{
		Name:     z.Name,
		Size:     z.Size,
		Players:  make([]protocol.PlayerSnapshot, 0, len(z.players)),
		Monsters: make([]protocol.MonsterSnapshot, 0, len(z.monsterOrder)),
	}
	for _, p := range z.players {
		snap.Players = append(snap.Players, p.Snapshot())
	}
	for _, id := range z.monsterOrder {
		snap.Monsters = append(snap.Monsters, z.monsters[id].Snapshot())
	}
	return snap
}
