package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorencia/mmoserver/internal/game/geo"
)

func TestEnvelope_DispatchShape(t *testing.T) {
	raw := []byte(`{"type":"move","data":{"type":"velocity","x":1,"y":0,"z":-1}}`)

	var env Envelope
	require.NoError(t, json.Unmarshal(raw, &env))
	assert.Equal(t, TypeMove, env.Type)

	var req MoveRequest
	require.NoError(t, json.Unmarshal(env.Data, &req))
	assert.Equal(t, MoveVelocity, req.Type)
	assert.Equal(t, 1.0, req.X)
	assert.Equal(t, -1.0, req.Z)
}

func TestJoinRequest_FieldNames(t *testing.T) {
	var req JoinRequest
	require.NoError(t, json.Unmarshal([]byte(`{"characterName":"Arthas"}`), &req))
	assert.Equal(t, "Arthas", req.CharacterName)
}

func TestAttackRequest_FieldNames(t *testing.T) {
	var req AttackRequest
	require.NoError(t, json.Unmarshal([]byte(`{"targetId":"m-1","targetType":"monster"}`), &req))
	assert.Equal(t, "m-1", req.TargetID)
	assert.Equal(t, TargetMonster, req.TargetType)
}

func TestMessage_OutboundWireShape(t *testing.T) {
	msg := Message{
		Type: TypeAttackEvent,
		Data: AttackEvent{AttackerID: "p-1", TargetID: "m-1", TargetType: TargetMonster, Damage: 12},
	}

	raw, err := json.Marshal(msg)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"type": "attack",
		"data": {"attackerId":"p-1","targetId":"m-1","targetType":"monster","damage":12}
	}`, string(raw))
}

func TestMonsterDeath_WireShape(t *testing.T) {
	ev := MonsterDeath{
		MonsterID: "m-1",
		KillerID:  "p-1",
		XP:        10,
		Drops:     []Drop{{ItemID: 4, Name: "Health Potion", Position: geo.Vec3{X: 1, Y: 0, Z: 2}}},
	}

	raw, err := json.Marshal(ev)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"monsterId": "m-1",
		"killerId": "p-1",
		"xp": 10,
		"drops": [{"itemId":4,"name":"Health Potion","position":{"x":1,"y":0,"z":2}}]
	}`, string(raw))
}

func TestSkillUsed_OmitsEmptyEffects(t *testing.T) {
	raw, err := json.Marshal(SkillUsed{PlayerID: "p-1", SkillID: 3, Heal: 30})
	require.NoError(t, err)

	assert.JSONEq(t, `{"playerId":"p-1","skillId":3,"heal":30}`, string(raw))
}

func TestPlayerSnapshot_WireShape(t *testing.T) {
	snap := PlayerSnapshot{
		ID: "p-1", Name: "Arthas", Class: "Warrior", Level: 2,
		HP: 90, MaxHP: 120, Position: geo.Vec3{X: 1.5, Y: 0, Z: -2},
		IsMoving: true,
	}

	raw, err := json.Marshal(snap)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"id": "p-1", "name": "Arthas", "class": "Warrior", "level": 2,
		"hp": 90, "maxHp": 120,
		"position": {"x": 1.5, "y": 0, "z": -2},
		"isMoving": true, "isDead": false
	}`, string(raw))
}

func TestPlayerFullSnapshot_EmbedsPublicFields(t *testing.T) {
	full := PlayerFullSnapshot{
		PlayerSnapshot: PlayerSnapshot{ID: "p-1", Name: "Arthas"},
		Experience:     50,
		MP:             40,
		MaxMP:          50,
		Attack:         10,
		Defense:        5,
		Skills:         []SkillInfo{{ID: 1, Name: "Power Strike", CooldownMs: 3000}},
	}

	raw, err := json.Marshal(full)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	// Embedded public fields flatten into the same object.
	assert.Equal(t, "p-1", decoded["id"])
	assert.Equal(t, float64(50), decoded["experience"])
	assert.Equal(t, float64(40), decoded["mp"])
	skills, ok := decoded["skills"].([]any)
	require.True(t, ok)
	require.Len(t, skills, 1)
	assert.Equal(t, "Power Strike", skills[0].(map[string]any)["name"])
	assert.Equal(t, float64(3000), skills[0].(map[string]any)["cooldown"])
}

func TestGameState_RoundTrip(t *testing.T) {
	state := GameState{
		Players: []PlayerSnapshot{{ID: "p-1", Name: "Arthas", HP: 100, MaxHP: 100}},
		Monsters: []MonsterSnapshot{
			{ID: "m-1", Name: "Slime", Level: 1, HP: 50, MaxHP: 50, State: "idle"},
		},
	}

	raw, err := json.Marshal(state)
	require.NoError(t, err)

	var decoded GameState
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, state, decoded)
}
