// Package protocol defines the JSON wire protocol spoken between the server
// and rendering clients: a symmetric {type, data} envelope wrapping typed
// payloads, and the public/private entity snapshot shapes clients reconcile
// against.
package protocol

import "encoding/json"

// Client → server message kinds.
const (
	TypeJoin   = "join"
	TypeMove   = "move"
	TypeAttack = "attack"
	TypeSkill  = "skill"
	TypeChat   = "chat"
)

// Server → client message kinds.
const (
	TypeJoinSuccess  = "join_success"
	TypeGameState    = "game_state"
	TypePlayerJoined = "player_joined"
	TypePlayerLeft   = "player_left"
	TypeAttackEvent  = "attack"
	TypeMonsterDeath = "monster_death"
	TypePlayerDeath  = "player_death"
	TypeChatEvent    = "chat"
	TypeSkillUsed    = "skill_used"
	TypeError        = "error"
)

// Move request kinds.
const (
	MoveVelocity = "velocity"
	MoveTarget   = "target"
)

// Target kinds for attack requests and events.
const (
	TargetPlayer  = "player"
	TargetMonster = "monster"
)

// Envelope is the inbound frame shape; Data stays raw until the type is
// dispatched.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Message is an outbound frame.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// JoinRequest asks to enter the world as the named character, creating it
// when it does not exist yet.
type JoinRequest struct {
	CharacterName string `json:"characterName"`
}

// MoveRequest carries either a steering velocity or a click-to-move target.
type MoveRequest struct {
	Type string  `json:"type"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Z    float64 `json:"z"`
}

// AttackRequest asks to basic-attack the identified target.
type AttackRequest struct {
	TargetID   string `json:"targetId"`
	TargetType string `json:"targetType"`
}

// SkillRequest asks to use a skill slot, optionally against a target.
type SkillRequest struct {
	SkillID  int    `json:"skillId"`
	TargetID string `json:"targetId,omitempty"`
}

// ChatRequest carries a chat line.
type ChatRequest struct {
	Message string `json:"message"`
}

// JoinSuccess is the private reply to a successful join: the caller's full
// state plus the zone's public snapshot.
type JoinSuccess struct {
	Player PlayerFullSnapshot `json:"player"`
	Map    MapSnapshot        `json:"map"`
}

// GameState is the per-tick public snapshot of one zone. Dead monsters are
// omitted; dead players are included so clients can render corpses.
type GameState struct {
	Players  []PlayerSnapshot  `json:"players"`
	Monsters []MonsterSnapshot `json:"monsters"`
}

// PlayerLeft announces a disconnect.
type PlayerLeft struct {
	PlayerID string `json:"playerId"`
}

// AttackEvent announces one resolved hit.
type AttackEvent struct {
	AttackerID string `json:"attackerId"`
	TargetID   string `json:"targetId"`
	TargetType string `json:"targetType"`
	Damage     int    `json:"damage"`
}

// MonsterDeath announces a monster kill with its XP award and loot drops.
type MonsterDeath struct {
	MonsterID string `json:"monsterId"`
	KillerID  string `json:"killerId"`
	XP        int    `json:"xp"`
	Drops     []Drop `json:"drops"`
}

// PlayerDeath announces a player death.
type PlayerDeath struct {
	PlayerID string `json:"playerId"`
	KillerID string `json:"killerId"`
}

// ChatEvent is a broadcast chat line.
type ChatEvent struct {
	PlayerName string `json:"playerName"`
	Message    string `json:"message"`
}

// ErrorEvent reports a rejected request to the offending connection.
type ErrorEvent struct {
	Message string `json:"message"`
}

// SkillUsed announces a skill activation and its applied effect.
type SkillUsed struct {
	PlayerID     string `json:"playerId"`
	SkillID      int    `json:"skillId"`
	TargetID     string `json:"targetId,omitempty"`
	Damage       int    `json:"damage,omitempty"`
	Heal         int    `json:"heal,omitempty"`
	DefenseBoost int    `json:"defenseBoost,omitempty"`
	DurationMs   int64  `json:"duration,omitempty"`
}
