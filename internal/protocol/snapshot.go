package protocol

import "github.com/lorencia/mmoserver/internal/game/geo"

// PlayerSnapshot is the public per-tick view of a player.
type PlayerSnapshot struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Class    string   `json:"class"`
	Level    int      `json:"level"`
	HP       int      `json:"hp"`
	MaxHP    int      `json:"maxHp"`
	Position geo.Vec3 `json:"position"`
	IsMoving bool     `json:"isMoving"`
	IsDead   bool     `json:"isDead"`
}

// PlayerFullSnapshot extends the public snapshot with the private fields sent
// only to the owning connection at join.
type PlayerFullSnapshot struct {
	PlayerSnapshot
	Experience int         `json:"experience"`
	MP         int         `json:"mp"`
	MaxMP      int         `json:"maxMp"`
	Attack     int         `json:"attack"`
	Defense    int         `json:"defense"`
	Skills     []SkillInfo `json:"skills"`
}

// SkillInfo describes one skill slot for the owning client.
type SkillInfo struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	CooldownMs int64  `json:"cooldown"`
}

// MonsterSnapshot is the public per-tick view of a monster.
type MonsterSnapshot struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Level    int      `json:"level"`
	HP       int      `json:"hp"`
	MaxHP    int      `json:"maxHp"`
	Position geo.Vec3 `json:"position"`
	State    string   `json:"state"`
	IsDead   bool     `json:"isDead"`
}

// MapSnapshot is the zone view sent with join_success.
type MapSnapshot struct {
	Name     string            `json:"name"`
	Size     int               `json:"size"`
	Players  []PlayerSnapshot  `json:"players"`
	Monsters []MonsterSnapshot `json:"monsters"`
}

// Drop is one loot item reported with a monster death.
type Drop struct {
	ItemID   int      `json:"itemId"`
	Name     string   `json:"name"`
	Position geo.Vec3 `json:"position"`
}
