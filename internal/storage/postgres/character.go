package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lorencia/mmoserver/internal/game/character"
	"github.com/lorencia/mmoserver/internal/game/geo"
)

// ErrCharacterNotFound is returned when a character lookup yields no results.
var ErrCharacterNotFound = errors.New("character not found")

// ErrCharacterNameTaken is returned when creating a character with a name that
// already exists.
var ErrCharacterNameTaken = errors.New("character name already taken")

// CharacterRepository provides character persistence operations.
type CharacterRepository struct {
	db *pgxpool.Pool
}

// NewCharacterRepository creates a CharacterRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewCharacterRepository(db *pgxpool.Pool) *CharacterRepository {
	return &CharacterRepository{db: db}
}

const characterColumns = `id, account_id, name, class, level, experience,
	hp, max_hp, mp, max_mp, attack, defense,
	pos_x, pos_y, pos_z, map, created_at`

func scanCharacter(row pgx.Row) (*character.Character, error) {
	var c character.Character
	err := row.Scan(
		&c.ID, &c.AccountID, &c.Name, &c.Class, &c.Level, &c.Experience,
		&c.HP, &c.MaxHP, &c.MP, &c.MaxMP, &c.Attack, &c.Defense,
		&c.Position.X, &c.Position.Y, &c.Position.Z, &c.Map, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a new character and returns it with ID and timestamps set.
//
// Precondition: c.AccountID must reference an existing account; c.Name must be non-empty.
// Postcondition: Returns the created character with ID set, or
// ErrCharacterNameTaken on duplicate.
func (r *CharacterRepository) Create(ctx context.Context, c *character.Character) (*character.Character, error) {
	out, err := scanCharacter(r.db.QueryRow(ctx, `
		INSERT INTO characters
			(account_id, name, class, level, experience,
			 hp, max_hp, mp, max_mp, attack, defense,
			 pos_x, pos_y, pos_z, map)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		RETURNING `+characterColumns,
		c.AccountID, c.Name, c.Class, c.Level, c.Experience,
		c.HP, c.MaxHP, c.MP, c.MaxMP, c.Attack, c.Defense,
		c.Position.X, c.Position.Y, c.Position.Z, c.Map,
	))
	if err != nil {
		if isDuplicateKeyError(err) {
			return nil, ErrCharacterNameTaken
		}
		return nil, fmt.Errorf("inserting character: %w", err)
	}
	return out, nil
}

// GetByName retrieves a character by its unique name.
//
// Precondition: name must be non-empty.
// Postcondition: Returns the Character or ErrCharacterNotFound.
func (r *CharacterRepository) GetByName(ctx context.Context, name string) (*character.Character, error) {
	c, err := scanCharacter(r.db.QueryRow(ctx,
		`SELECT `+characterColumns+` FROM characters WHERE name = $1`,
		name,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCharacterNotFound
		}
		return nil, fmt.Errorf("querying character: %w", err)
	}
	return c, nil
}

// ListByAccount returns all characters for the given account ID, ordered by
// created_at.
//
// Precondition: accountID must be > 0.
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (r *CharacterRepository) ListByAccount(ctx context.Context, accountID int64) ([]*character.Character, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+characterColumns+` FROM characters
		 WHERE account_id = $1 ORDER BY created_at ASC`,
		accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing characters: %w", err)
	}
	defer rows.Close()

	chars := make([]*character.Character, 0)
	for rows.Next() {
		c, err := scanCharacter(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning character row: %w", err)
		}
		chars = append(chars, c)
	}
	return chars, rows.Err()
}

// UpdatePosition persists a character's world position.
//
// Precondition: id must be > 0.
// Postcondition: Returns nil on success, ErrCharacterNotFound if no row updated.
func (r *CharacterRepository) UpdatePosition(ctx context.Context, id int64, pos geo.Vec3) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE characters SET pos_x = $2, pos_y = $3, pos_z = $4
		WHERE id = $1`,
		id, pos.X, pos.Y, pos.Z,
	)
	if err != nil {
		return fmt.Errorf("updating character position: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCharacterNotFound
	}
	return nil
}

// UpdateStats persists combat progression after a kill or level-up.
//
// Precondition: id must be > 0.
// Postcondition: Returns nil on success, ErrCharacterNotFound if no row updated.
func (r *CharacterRepository) UpdateStats(ctx context.Context, id int64, patch character.StatsPatch) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE characters SET
			level = $2, experience = $3, hp = $4, max_hp = $5,
			attack = $6, defense = $7
		WHERE id = $1`,
		id, patch.Level, patch.Experience, patch.HP, patch.MaxHP,
		patch.Attack, patch.Defense,
	)
	if err != nil {
		return fmt.Errorf("updating character stats: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCharacterNotFound
	}
	return nil
}
