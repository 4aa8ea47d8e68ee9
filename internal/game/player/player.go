// Package player provides the server-side player entity: movement
// integration, combat gating, skills, and leveling.
package player

import (
	"time"

	"github.com/lorencia/mmoserver/internal/game/character"
	"github.com/lorencia/mmoserver/internal/game/geo"
)

// DefaultMoveSpeed is the base player movement speed in world units per second.
const DefaultMoveSpeed = 5.0

// AttackCooldown is the minimum interval between basic attacks.
const AttackCooldown = time.Second

// arriveThreshold is the distance at which a click-to-move target is
// considered reached and cleared.
const arriveThreshold = 0.5

// Player is the authoritative server-side state for one connected character.
// A Player is owned by exactly one connection for its lifetime and is mutated
// only from the orchestrator loop.
type Player struct {
	// ID is the session-scoped entity id carried on the wire.
	ID string
	// CharacterID is the database id of the backing character record.
	CharacterID int64

	Name       string
	Class      string
	Level      int
	Experience int

	HP      int
	MaxHP   int
	MP      int
	MaxMP   int
	Attack  int
	Defense int

	Position geo.Vec3
	Velocity geo.Vec3
	// TargetPosition is the click-to-move destination; nil when not moving
	// toward a point.
	TargetPosition *geo.Vec3
	MoveSpeed      float64
	Moving         bool

	Dead           bool
	LastAttackTime time.Time

	Skills []*Skill
	// Buffs holds timed buff records produced by self-buff skills. Buffs are
	// advisory state echoed to clients; they do not modify combat stats.
	Buffs []Buff

	Map string
}

// Buff is a timed effect record attached by a self-buff skill.
type Buff struct {
	SkillID      int
	DefenseBoost int
	ExpiresAt    time.Time
}

// NewFromCharacter builds a live Player from a persisted character record.
//
// Precondition: id must be non-empty; c must be non-nil.
// Postcondition: The player carries the character's stats and position and
// the three fixed skill slots, all off cooldown.
func NewFromCharacter(id string, c *character.Character) *Player {
	return &Player{
		ID:          id,
		CharacterID: c.ID,
		Name:        c.Name,
		Class:       c.Class,
		Level:       c.Level,
		Experience:  c.Experience,
		HP:          c.HP,
		MaxHP:       c.MaxHP,
		MP:          c.MP,
		MaxMP:       c.MaxMP,
		Attack:      c.Attack,
		Defense:     c.Defense,
		Position:    c.Position,
		MoveSpeed:   DefaultMoveSpeed,
		Skills:      defaultSkills(),
		Map:         c.Map,
	}
}

// SetVelocity stores the client's movement input vector. The vector is
// server-trusted for integration; a zero vector stops velocity movement.
func (p *Player) SetVelocity(x, y, z float64) {
	p.Velocity = geo.Vec3{X: x, Y: y, Z: z}
	p.Moving = !p.Velocity.IsZero() || p.TargetPosition != nil
}

// SetTargetPosition stores a click-to-move destination point.
func (p *Player) SetTargetPosition(x, y, z float64) {
	p.TargetPosition = &geo.Vec3{X: x, Y: y, Z: z}
	p.Moving = true
}

// Update advances movement by dt seconds. Velocity steering and click-to-move
// are applied additively when both are active; this double-application
// mirrors the observed client contract and is pinned by tests.
//
// Precondition: dt must be >= 0.
func (p *Player) Update(dt float64) {
	if p.Dead {
		return
	}

	if p.Moving && !p.Velocity.IsZero() {
		p.Position = p.Position.Add(p.Velocity.Scale(p.MoveSpeed * dt))
	}

	if p.TargetPosition != nil {
		target := *p.TargetPosition
		if p.Position.Distance(target) < arriveThreshold {
			p.TargetPosition = nil
			p.Moving = !p.Velocity.IsZero()
		} else {
			p.Position = p.Position.StepToward(target, p.MoveSpeed*dt)
		}
	}
}

// CanAttack reports whether the basic-attack cooldown has elapsed.
func (p *Player) CanAttack(now time.Time) bool {
	return !p.Dead && now.Sub(p.LastAttackTime) >= AttackCooldown
}

// MarkAttack stamps the attack cooldown.
//
// Precondition: CanAttack(now) should have been checked by the caller.
func (p *Player) MarkAttack(now time.Time) {
	p.LastAttackTime = now
}

// TakeDamage reduces HP by dmg, clamped at zero, and reports whether the
// player died as a result. Damage to a dead player is a no-op.
//
// Postcondition: 0 <= HP <= MaxHP; HP == 0 iff Dead.
func (p *Player) TakeDamage(dmg int) (died bool) {
	if p.Dead {
		return false
	}
	p.HP -= dmg
	if p.HP <= 0 {
		p.HP = 0
		p.die()
		return true
	}
	return false
}

// Heal restores HP by amount, clamped at MaxHP. Healing a dead player is a
// no-op.
//
// Postcondition: 0 <= HP <= MaxHP.
func (p *Player) Heal(amount int) {
	if p.Dead {
		return
	}
	p.HP += amount
	if p.HP > p.MaxHP {
		p.HP = p.MaxHP
	}
}

func (p *Player) die() {
	p.Dead = true
	p.HP = 0
	p.Velocity = geo.Vec3{}
	p.TargetPosition = nil
	p.Moving = false
}

// GainExperience accumulates xp and applies at most one level-up per award.
// A single grant large enough for several levels still advances one level;
// the remainder is discarded on level-up, matching the reference behavior.
//
// Postcondition: Returns true iff a level-up occurred.
func (p *Player) GainExperience(xp int) (leveledUp bool) {
	p.Experience += xp
	if p.Experience >= p.Level*100 {
		p.levelUp()
		return true
	}
	return false
}

// levelUp applies the fixed per-level stat deltas and restores HP/MP to the
// new maximums.
func (p *Player) levelUp() {
	p.Level++
	p.Experience = 0
	p.MaxHP += 20
	p.MaxMP += 10
	p.Attack += 5
	p.Defense += 2
	p.HP = p.MaxHP
	p.MP = p.MaxMP
}

// StatsPatch returns the stat columns to persist after combat progress.
func (p *Player) StatsPatch() character.StatsPatch {
	return character.StatsPatch{
		Level:      p.Level,
		Experience: p.Experience,
		HP:         p.HP,
		MaxHP:      p.MaxHP,
		Attack:     p.Attack,
		Defense:    p.Defense,
	}
}
