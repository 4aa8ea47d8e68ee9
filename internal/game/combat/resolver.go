// Package combat provides the pure damage resolution shared by player and
// monster attacks.
package combat

import "github.com/lorencia/mmoserver/internal/game/rng"

// Damage computes the damage dealt by an attacker with the given attack stat
// against a defender with the given defense stat. The roll adds a uniform
// random term in [0, 5] and never drops below 1.
//
// Precondition: src must be non-nil.
// Postcondition: Returns a value in [1, attack-defense+5].
func Damage(attack, defense int, src rng.Source) int {
	dmg := attack - defense + src.Intn(6)
	if dmg < 1 {
		return 1
	}
	return dmg
}

// SkillDamage computes the damage for a direct-damage skill: the skill's base
// damage plus the attacker's attack stat. Skill damage bypasses defense and
// carries no random term.
func SkillDamage(base, attack int) int {
	return base + attack
}
