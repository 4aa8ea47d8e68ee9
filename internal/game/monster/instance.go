package monster

import (
	"time"

	"github.com/lorencia/mmoserver/internal/game/combat"
	"github.com/lorencia/mmoserver/internal/game/geo"
	"github.com/lorencia/mmoserver/internal/game/player"
	"github.com/lorencia/mmoserver/internal/game/rng"
	"github.com/lorencia/mmoserver/internal/protocol"
)

// State is the AI state tag of a live monster.
type State string

// The four AI states. Death is tracked orthogonally by the Dead flag so the
// state tag can be reset to idle for the eventual respawn.
const (
	StateIdle   State = "idle"
	StateChase  State = "chase"
	StateAttack State = "attack"
	StateReturn State = "return"
)

// Default AI tuning, copied onto each instance at spawn so tests and future
// per-template overrides can adjust them per monster.
const (
	DefaultAggroRange  = 15.0
	DefaultAttackRange = 2.0
	DefaultLeashRange  = 30.0
	DefaultRespawnTime = 30 * time.Second
)

// monsterSpeedScale converts template move_speed into world units per second.
const monsterSpeedScale = 5.0

// PlayerIndex resolves weak player references against the owning zone.
// Monsters hold target ids, never pointers; every use goes through a lookup
// so a disconnect or death elsewhere cannot leave a dangling reference.
type PlayerIndex interface {
	// Player returns the player with the given id, dead or alive.
	Player(id string) (*player.Player, bool)
	// FirstPlayerInRange returns a live player within radius of pos, in
	// iteration order, or false when none is in range.
	FirstPlayerInRange(pos geo.Vec3, radius float64) (*player.Player, bool)
}

// Hit reports one monster attack resolved during an update.
type Hit struct {
	TargetID   string
	Damage     int
	TargetDied bool
}

// Monster is a live monster instance. It is created once at zone
// construction and never deallocated: death is a state, and Respawn resets
// the instance in place so its id stays stable.
type Monster struct {
	ID         string
	TemplateID int64
	Name       string
	Level      int

	HP       int
	MaxHP    int
	Attack   int
	Defense  int
	XPReward int

	MoveSpeed   float64
	AttackSpeed float64

	SpawnPosition geo.Vec3
	Position      geo.Vec3

	State State
	// TargetID is the weak reference to the current target; empty when none.
	TargetID string

	AggroRange  float64
	AttackRange float64
	LeashRange  float64

	LastAttackTime time.Time
	AttackCooldown time.Duration

	Dead        bool
	DeathTime   time.Time
	RespawnTime time.Duration

	Loot []LootEntry

	src rng.Source
}

// New creates a live monster from a template at the given spawn position.
//
// Precondition: id must be non-empty; tmpl must be non-nil and valid; src
// must be non-nil.
// Postcondition: The monster is alive, idle, at full HP, positioned at spawn.
func New(id string, tmpl *Template, spawn geo.Vec3, src rng.Source) *Monster {
	return &Monster{
		ID:             id,
		TemplateID:     tmpl.ID,
		Name:           tmpl.Name,
		Level:          tmpl.Level,
		HP:             tmpl.HP,
		MaxHP:          tmpl.HP,
		Attack:         tmpl.Attack,
		Defense:        tmpl.Defense,
		XPReward:       tmpl.XPReward,
		MoveSpeed:      tmpl.MoveSpeed,
		AttackSpeed:    tmpl.AttackSpeed,
		SpawnPosition:  spawn,
		Position:       spawn,
		State:          StateIdle,
		AggroRange:     DefaultAggroRange,
		AttackRange:    DefaultAttackRange,
		LeashRange:     DefaultLeashRange,
		AttackCooldown: time.Duration(float64(time.Second) / tmpl.AttackSpeed),
		RespawnTime:    DefaultRespawnTime,
		Loot:           lootTableFor(tmpl.Level),
		src:            src,
	}
}

// Update advances the AI by dt seconds. A dead monster only checks its
// respawn timer. Returns a Hit when the monster attacked this update; the
// damage has already been applied to the target.
//
// Precondition: players must be non-nil; dt must be >= 0.
func (m *Monster) Update(now time.Time, dt float64, players PlayerIndex) *Hit {
	if m.Dead {
		if now.Sub(m.DeathTime) >= m.RespawnTime {
			m.Respawn()
		}
		return nil
	}

	switch m.State {
	case StateIdle:
		m.updateIdle(players)
	case StateChase:
		m.updateChase(dt, players)
	case StateAttack:
		return m.updateAttack(now, players)
	case StateReturn:
		m.updateReturn(dt)
	}
	return nil
}

// updateIdle scans for a live player inside aggro range. Target acquisition
// happens only in this state.
func (m *Monster) updateIdle(players PlayerIndex) {
	if target, ok := players.FirstPlayerInRange(m.Position, m.AggroRange); ok {
		m.TargetID = target.ID
		m.State = StateChase
	}
}

// target resolves the weak target reference; a missing or dead target is
// cleared in the same step.
func (m *Monster) target(players PlayerIndex) (*player.Player, bool) {
	if m.TargetID == "" {
		return nil, false
	}
	p, ok := players.Player(m.TargetID)
	if !ok || p.Dead {
		m.TargetID = ""
		return nil, false
	}
	return p, true
}

func (m *Monster) updateChase(dt float64, players PlayerIndex) {
	target, ok := m.target(players)
	if !ok {
		m.State = StateReturn
		return
	}

	// Leashing: give up, heal to full, and walk home rather than being kited
	// arbitrarily far from spawn.
	if m.Position.Distance(m.SpawnPosition) > m.LeashRange {
		m.TargetID = ""
		m.HP = m.MaxHP
		m.State = StateReturn
		return
	}

	if m.Position.Distance(target.Position) <= m.AttackRange {
		m.State = StateAttack
		return
	}
	m.Position = m.Position.StepToward(target.Position, m.MoveSpeed*monsterSpeedScale*dt)
}

func (m *Monster) updateAttack(now time.Time, players PlayerIndex) *Hit {
	target, ok := m.target(players)
	if !ok {
		m.State = StateReturn
		return nil
	}

	if m.Position.Distance(target.Position) > m.AttackRange {
		m.State = StateChase
		return nil
	}

	if now.Sub(m.LastAttackTime) < m.AttackCooldown {
		return nil
	}
	m.LastAttackTime = now

	dmg := combat.Damage(m.Attack, target.Defense, m.src)
	died := target.TakeDamage(dmg)
	return &Hit{TargetID: target.ID, Damage: dmg, TargetDied: died}
}

func (m *Monster) updateReturn(dt float64) {
	if m.Position.Distance(m.SpawnPosition) < 1 {
		m.Position = m.SpawnPosition
		m.HP = m.MaxHP
		m.State = StateIdle
		return
	}
	m.Position = m.Position.StepToward(m.SpawnPosition, m.MoveSpeed*monsterSpeedScale*dt)
}

// TakeDamage reduces HP by dmg, clamped at zero, and reports whether the
// monster died as a result. An idle monster that takes damage acquires the
// attacker as its target. Damage to a dead monster is a no-op.
//
// Postcondition: 0 <= HP <= MaxHP; a true return means HP reached 0 on this
// call and the caller must invoke Die exactly once.
func (m *Monster) TakeDamage(dmg int, attackerID string) (died bool) {
	if m.Dead {
		return false
	}

	m.HP -= dmg
	if m.HP < 0 {
		m.HP = 0
	}

	if m.TargetID == "" && m.State == StateIdle {
		m.TargetID = attackerID
		m.State = StateChase
	}

	if m.HP == 0 {
		m.Dead = true
		return true
	}
	return false
}

// Die finalizes a death reported by TakeDamage: stamps the respawn timer,
// resets the AI for the eventual respawn, and rolls the loot table once.
// Calling Die again before the monster respawns yields no further loot or XP.
//
// Postcondition: Returns the XP award and loot drops for the killer.
func (m *Monster) Die(now time.Time) (xp int, drops []Drop) {
	if !m.DeathTime.IsZero() {
		return 0, nil
	}
	m.Dead = true
	m.HP = 0
	m.DeathTime = now
	m.State = StateIdle
	m.TargetID = ""
	return m.XPReward, rollLoot(m.Loot, m.Position, m.src)
}

// Respawn resets the monster in place: full HP, back at spawn, idle, alive.
// On an already-alive monster only position and HP are reset; there are no
// loot or XP side effects in either case.
func (m *Monster) Respawn() {
	m.Dead = false
	m.HP = m.MaxHP
	m.Position = m.SpawnPosition
	m.State = StateIdle
	m.TargetID = ""
	m.DeathTime = time.Time{}
}

// Snapshot returns the public broadcast view of the monster.
func (m *Monster) Snapshot() protocol.MonsterSnapshot {
	return protocol.MonsterSnapshot{
		ID:       m.ID,
		Name:     m.Name,
		Level:    m.Level,
		HP:       m.HP,
		MaxHP:    m.MaxHP,
		Position: m.Position,
		State:    string(m.State),
		IsDead:   m.Dead,
	}
}
