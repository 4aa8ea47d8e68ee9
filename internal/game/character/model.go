// Package character defines the persistent character record and the defaults
// applied when a new character is created.
package character

import (
	"time"

	"github.com/lorencia/mmoserver/internal/game/geo"
)

// Default stats for a freshly created character.
const (
	DefaultClass   = "Warrior"
	DefaultMap     = "lorencia"
	DefaultMaxHP   = 100
	DefaultMaxMP   = 50
	DefaultAttack  = 10
	DefaultDefense = 5
)

// Character is a player character's persistent state as stored in the
// characters table.
//
// ID is set by the persistence layer; a zero value indicates an unsaved record.
type Character struct {
	ID        int64
	AccountID int64

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
	Map      string

	CreatedAt time.Time
}

// StatsPatch carries the stat columns written back after combat progress
// (kills, level-ups). Position is persisted separately.
type StatsPatch struct {
	Level      int
	Experience int
	HP         int
	MaxHP      int
	Attack     int
	Defense    int
}

// New returns an unsaved character with starting stats for the given account
// and name.
//
// Postcondition: The returned character is level 1 at full HP/MP, positioned
// at the origin of the default map.
func New(accountID int64, name string) *Character {
	return &Character{
		AccountID: accountID,
		Name:      name,
		Class:     DefaultClass,
		Level:     1,
		HP:        DefaultMaxHP,
		MaxHP:     DefaultMaxHP,
		MP:        DefaultMaxMP,
		MaxMP:     DefaultMaxMP,
		Attack:    DefaultAttack,
		Defense:   DefaultDefense,
		Map:       DefaultMap,
	}
}
