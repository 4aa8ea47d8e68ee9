// Package monster provides monster templates and live monster instances:
// the per-instance AI state machine, combat timers, loot, and respawn cycle.
package monster

import "fmt"

// Template defines a reusable monster archetype loaded from the
// monster_templates table. Templates are immutable after load; instances
// copy their stats at spawn time.
type Template struct {
	ID          int64
	Name        string
	Level       int
	HP          int
	Attack      int
	Defense     int
	XPReward    int
	MoveSpeed   float64
	AttackSpeed float64
}

// Validate checks that the template satisfies basic invariants.
//
// Postcondition: Returns nil iff Name is non-empty, Level >= 1, HP >= 1,
// MoveSpeed > 0, and AttackSpeed > 0.
func (t *Template) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("monster template %d: name must not be empty", t.ID)
	}
	if t.Level < 1 {
		return fmt.Errorf("monster template %q: level must be >= 1", t.Name)
	}
	if t.HP < 1 {
		return fmt.Errorf("monster template %q: hp must be >= 1", t.Name)
	}
	if t.MoveSpeed <= 0 {
		return fmt.Errorf("monster template %q: move_speed must be > 0", t.Name)
	}
	if t.AttackSpeed <= 0 {
		return fmt.Errorf("monster template %q: attack_speed must be > 0", t.Name)
	}
	return nil
}
