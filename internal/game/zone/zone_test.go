package zone

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorencia/mmoserver/internal/game/character"
	"github.com/lorencia/mmoserver/internal/game/geo"
	"github.com/lorencia/mmoserver/internal/game/monster"
	"github.com/lorencia/mmoserver/internal/game/player"
	"github.com/lorencia/mmoserver/internal/game/rng"
)

func testTemplates() map[string]*monster.Template {
	return map[string]*monster.Template{
		"slime": {ID: 1, Name: "Slime", Level: 1, HP: 50, Attack: 5, Defense: 2, XPReward: 10, MoveSpeed: 0.8, AttackSpeed: 1.5},
		"wolf":  {ID: 2, Name: "Wolf", Level: 5, HP: 120, Attack: 15, Defense: 5, XPReward: 50, MoveSpeed: 1.2, AttackSpeed: 1.0},
	}
}

func testConfig() *Config {
	return &Config{
		Name: "lorencia",
		Size: 200,
		Spawns: []SpawnConfig{
			{Template: "slime", Anchor: SpawnPoint{X: 20, Z: 20}, Radius: 5, Count: 3},
			{Template: "wolf", Anchor: SpawnPoint{X: -40, Z: -40}, Radius: 5, Count: 2},
		},
	}
}

func testPlayer(id string, pos geo.Vec3) *player.Player {
	p := player.NewFromCharacter(id, character.New(1, "Hero-"+id))
	p.Position = pos
	return p
}

func newTestZone(t *testing.T) *Zone {
	t.Helper()
	z, err := New(testConfig(), testTemplates(), rng.NewSeededSource(11))
	require.NoError(t, err)
	return z
}

func TestNew_PopulatesSpawnTable(t *testing.T) {
	z := newTestZone(t)

	assert.Equal(t, "lorencia", z.Name)
	assert.Equal(t, 200, z.Size)
	require.Len(t, z.monsters, 5)
	require.Len(t, z.monsterOrder, 5)

	slimes, wolves := 0, 0
	for _, m := range z.monsters {
		switch m.Name {
		case "Slime":
			slimes++
			assert.LessOrEqual(t, geo.Vec3{X: 20, Z: 20}.Distance(m.Position), 5*1.5)
		case "Wolf":
			wolves++
			assert.LessOrEqual(t, geo.Vec3{X: -40, Z: -40}.Distance(m.Position), 5*1.5)
		}
		assert.Equal(t, m.Position, m.SpawnPosition)
	}
	assert.Equal(t, 3, slimes)
	assert.Equal(t, 2, wolves)
}

func TestNew_UnknownTemplate(t *testing.T) {
	cfg := testConfig()
	cfg.Spawns = append(cfg.Spawns, SpawnConfig{Template: "dragon", Count: 1})

	_, err := New(cfg, testTemplates(), rng.NewSeededSource(11))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "dragon")
}

func TestAddRemovePlayer(t *testing.T) {
	z := newTestZone(t)
	p := testPlayer("p-1", geo.Vec3{})

	z.AddPlayer(p)
	assert.Equal(t, 1, z.PlayerCount())

	got, ok := z.Player("p-1")
	require.True(t, ok)
	assert.Same(t, p, got)

	z.RemovePlayer("p-1")
	assert.Equal(t, 0, z.PlayerCount())
	_, ok = z.Player("p-1")
	assert.False(t, ok)
}

func TestFirstPlayerInRange(t *testing.T) {
	z := newTestZone(t)
	z.AddPlayer(testPlayer("near", geo.Vec3{X: 3}))
	z.AddPlayer(testPlayer("far", geo.Vec3{X: 100}))

	got, ok := z.FirstPlayerInRange(geo.Vec3{}, 10)
	require.True(t, ok)
	assert.Equal(t, "near", got.ID)

	_, ok = z.FirstPlayerInRange(geo.Vec3{X: 500}, 10)
	assert.False(t, ok)
}

func TestFirstPlayerInRange_SkipsDead(t *testing.T) {
	z := newTestZone(t)
	p := testPlayer("p-1", geo.Vec3{X: 3})
	p.TakeDamage(9999)
	z.AddPlayer(p)

	_, ok := z.FirstPlayerInRange(geo.Vec3{}, 10)
	assert.False(t, ok)
}

func TestMonstersInRange_SkipsDead(t *testing.T) {
	z := newTestZone(t)
	all := z.MonstersInRange(geo.Vec3{X: 20, Z: 20}, 10)
	require.NotEmpty(t, all)

	dead := all[0]
	dead.TakeDamage(dead.HP, "p-1")
	dead.Die(time.Now())

	after := z.MonstersInRange(geo.Vec3{X: 20, Z: 20}, 10)
	assert.Len(t, after, len(all)-1)
}

func TestUpdate_AdvancesPlayersAndMonsters(t *testing.T) {
	z := newTestZone(t)
	p := testPlayer("p-1", geo.Vec3{X: 150, Z: 150})
	p.SetVelocity(1, 0, 0)
	z.AddPlayer(p)

	events := z.Update(time.Now(), 0.1)

	assert.Empty(t, events)
	assert.InDelta(t, 150.5, p.Position.X, 1e-9)
}

func TestUpdate_MonsterAttackProducesEvent(t *testing.T) {
	z := newTestZone(t)
	slimes := z.MonstersInRange(geo.Vec3{X: 20, Z: 20}, 10)
	require.NotEmpty(t, slimes)
	m := slimes[0]

	// Park the player on top of one slime and step the zone until the AI
	// walks through idle -> chase -> attack and swings.
	p := testPlayer("p-1", m.Position)
	z.AddPlayer(p)

	now := time.Now()
	var events []AttackEvent
	for i := 0; i < 5 && len(events) == 0; i++ {
		now = now.Add(time.Second)
		events = z.Update(now, 0.016)
	}

	require.NotEmpty(t, events)
	ev := events[0]
	assert.Equal(t, "p-1", ev.TargetID)
	assert.Greater(t, ev.Damage, 0)
	assert.Equal(t, 100-sumDamage(events, "p-1"), p.HP)
}

func sumDamage(events []AttackEvent, targetID string) int {
	total := 0
	for _, ev := range events {
		if ev.TargetID == targetID {
			total += ev.Damage
		}
	}
	return total
}

func TestPublicState_FiltersDeadMonsters(t *testing.T) {
	z := newTestZone(t)
	m := z.monsters[z.monsterOrder[0]]
	m.TakeDamage(m.HP, "p-1")
	m.Die(time.Now())

	state := z.PublicState()
	assert.Len(t, state.Monsters, 4)

	snap := z.Snapshot()
	assert.Len(t, snap.Monsters, 5)
}

func TestSnapshot_IncludesPlayers(t *testing.T) {
	z := newTestZone(t)
	z.AddPlayer(testPlayer("p-1", geo.Vec3{X: 1}))

	snap := z.Snapshot()

	assert.Equal(t, "lorencia", snap.Name)
	assert.Equal(t, 200, snap.Size)
	require.Len(t, snap.Players, 1)
	assert.Equal(t, "p-1", snap.Players[0].ID)
}
