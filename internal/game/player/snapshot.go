package player

import "github.com/lorencia/mmoserver/internal/protocol"

// Snapshot returns the public broadcast view of the player.
func (p *Player) Snapshot() protocol.PlayerSnapshot {
	return protocol.PlayerSnapshot{
		ID:       p.ID,
		Name:     p.Name,
		Class:    p.Class,
		Level:    p.Level,
		HP:       p.HP,
		MaxHP:    p.MaxHP,
		Position: p.Position,
		IsMoving: p.Moving,
		IsDead:   p.Dead,
	}
}

// FullSnapshot returns the private view sent to the owning connection at
// join: the public snapshot plus stats and skill slots.
func (p *Player) FullSnapshot() protocol.PlayerFullSnapshot {
	skills := make([]protocol.SkillInfo, 0, len(p.Skills))
	for _, s := range p.Skills {
		skills = append(skills, protocol.SkillInfo{
			ID:         s.ID,
			Name:       s.Name,
			CooldownMs: s.Cooldown.Milliseconds(),
		})
	}
	return protocol.PlayerFullSnapshot{
		PlayerSnapshot: p.Snapshot(),
		Experience:     p.Experience,
		MP:             p.MP,
		MaxMP:          p.MaxMP,
		Attack:         p.Attack,
		Defense:        p.Defense,
		Skills:         skills,
	}
}
