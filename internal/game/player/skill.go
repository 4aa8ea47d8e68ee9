package player

import (
	"time"

	"github.com/lorencia/mmoserver/internal/game/combat"
)

// Skill ids for the three fixed skill slots.
const (
	SkillPowerStrike  = 1
	SkillDefenseBoost = 2
	SkillHealthRegen  = 3
)

// Skill is one of the player's fixed skill slots with an independent cooldown.
type Skill struct {
	ID       int
	Name     string
	Damage   int
	Heal     int
	Boost    int
	Duration time.Duration
	Cooldown time.Duration
	LastUsed time.Time
}

// SkillResult describes the applied effect of a skill use, for broadcast and
// for the orchestrator to apply any outgoing damage.
type SkillResult struct {
	SkillID int
	// Damage is the outgoing direct damage; zero for self-only skills. The
	// caller resolves the target and applies it.
	Damage int
	// Heal is the HP restored to the caster (already applied).
	Heal int
	// DefenseBoost and Duration describe an attached buff record.
	DefenseBoost int
	Duration     time.Duration
}

func defaultSkills() []*Skill {
	return []*Skill{
		{ID: SkillPowerStrike, Name: "Power Strike", Damage: 20, Cooldown: 3 * time.Second},
		{ID: SkillDefenseBoost, Name: "Defense Boost", Boost: 10, Duration: 5 * time.Second, Cooldown: 10 * time.Second},
		{ID: SkillHealthRegen, Name: "Health Regen", Heal: 30, Cooldown: 15 * time.Second},
	}
}

// SkillByID returns the skill slot with the given id.
func (p *Player) SkillByID(id int) (*Skill, bool) {
	for _, s := range p.Skills {
		if s.ID == id {
			return s, true
		}
	}
	return nil, false
}

// UseSkill attempts to use the skill with the given id. Unknown ids and
// skills still cooling down return ok == false with no state change.
// Self effects (heal, buff record) are applied immediately; direct damage is
// returned for the caller to resolve against a target.
//
// Postcondition: On success the skill's cooldown is stamped at now.
func (p *Player) UseSkill(id int, now time.Time) (SkillResult, bool) {
	if p.Dead {
		return SkillResult{}, false
	}
	skill, ok := p.SkillByID(id)
	if !ok {
		return SkillResult{}, false
	}
	if now.Sub(skill.LastUsed) < skill.Cooldown {
		return SkillResult{}, false
	}
	skill.LastUsed = now

	result := SkillResult{SkillID: id}
	switch id {
	case SkillPowerStrike:
		result.Damage = combat.SkillDamage(skill.Damage, p.Attack)
	case SkillDefenseBoost:
		result.DefenseBoost = skill.Boost
		result.Duration = skill.Duration
		p.Buffs = append(p.Buffs, Buff{
			SkillID:      id,
			DefenseBoost: skill.Boost,
			ExpiresAt:    now.Add(skill.Duration),
		})
	case SkillHealthRegen:
		p.Heal(skill.Heal)
		result.Heal = skill.Heal
	}
	return result, true
}

// ExpireBuffs drops buff records whose duration has elapsed.
func (p *Player) ExpireBuffs(now time.Time) {
	kept := p.Buffs[:0]
	for _, b := range p.Buffs {
		if b.ExpiresAt.After(now) {
			kept = append(kept, b)
		}
	}
	p.Buffs = kept
}
