package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lorencia/mmoserver/internal/game/monster"
)

// TemplateRepository loads monster templates from the monster_templates table.
type TemplateRepository struct {
	db *pgxpool.Pool
}

// NewTemplateRepository creates a TemplateRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewTemplateRepository(db *pgxpool.Pool) *TemplateRepository {
	return &TemplateRepository{db: db}
}

// All returns every monster template keyed by lowercased name, the form the
// zone spawn tables reference.
//
// Postcondition: Every returned template passes Validate.
func (r *TemplateRepository) All(ctx context.Context) (map[string]*monster.Template, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, level, hp, attack, defense, xp_reward, move_speed, attack_speed
		FROM monster_templates ORDER BY id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing monster templates: %w", err)
	}
	defer rows.Close()

	templates := make(map[string]*monster.Template)
	for rows.Next() {
		var t monster.Template
		if err := rows.Scan(
			&t.ID, &t.Name, &t.Level, &t.HP, &t.Attack, &t.Defense,
			&t.XPReward, &t.MoveSpeed, &t.AttackSpeed,
		); err != nil {
			return nil, fmt.Errorf("scanning monster template row: %w", err)
		}
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("invalid monster template: %w", err)
		}
		templates[strings.ToLower(t.Name)] = &t
	}
	return templates, rows.Err()
}
