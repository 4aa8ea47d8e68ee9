package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lorencia/mmoserver/internal/game/character"
	"github.com/lorencia/mmoserver/internal/game/combat"
	"github.com/lorencia/mmoserver/internal/game/geo"
	"github.com/lorencia/mmoserver/internal/game/player"
	"github.com/lorencia/mmoserver/internal/game/rng"
	"github.com/lorencia/mmoserver/internal/game/zone"
	"github.com/lorencia/mmoserver/internal/observability"
	"github.com/lorencia/mmoserver/internal/protocol"
	"github.com/lorencia/mmoserver/internal/storage/postgres"
)

// persistTimeout bounds each background database write spawned by the loop.
const persistTimeout = 5 * time.Second

// defaultAccountID owns characters created at join; seeded by the initial
// migration.
const defaultAccountID = 1

// Conn is the transport seen by the orchestrator: an ordered, non-blocking
// outbound message sink. Send must never block the caller; a connection that
// cannot keep up drops itself.
type Conn interface {
	Send(msg protocol.Message)
	Close()
}

// CharacterStore is the persistence surface the orchestrator needs.
// Implemented by postgres.CharacterRepository.
type CharacterStore interface {
	GetByName(ctx context.Context, name string) (*character.Character, error)
	Create(ctx context.Context, c *character.Character) (*character.Character, error)
	UpdatePosition(ctx context.Context, id int64, pos geo.Vec3) error
	UpdateStats(ctx context.Context, id int64, patch character.StatsPatch) error
}

// session binds one connection to its live player and zone.
type session struct {
	conn   Conn
	player *player.Player
	zone   *zone.Zone
}

// Orchestrator is the single logical mutator of world state. All entity
// mutation happens on its Run loop: inbound messages are funneled through the
// commands channel and interleaved with the fixed tick, so handlers and ticks
// never run concurrently and the game packages need no locks.
type Orchestrator struct {
	logger *zap.Logger
	store  CharacterStore
	src    rng.Source

	zones      map[string]*zone.Zone
	defaultMap string

	tickInterval      time.Duration
	maxPlayersPerZone int

	commands chan func(now time.Time)
	done     chan struct{}
	stopped  chan struct{}

	sessions map[Conn]*session
	lastTick time.Time

	playerCount atomic.Int64
	persistWG   sync.WaitGroup
}

// Options configures an Orchestrator.
type Options struct {
	Logger            *zap.Logger
	Store             CharacterStore
	Zones             map[string]*zone.Zone
	DefaultMap        string
	TickInterval      time.Duration
	MaxPlayersPerZone int
	// Source is the randomness source for combat rolls; nil selects the
	// default locked source.
	Source rng.Source
}

// NewOrchestrator builds the world orchestrator.
//
// Precondition: opts.Logger, opts.Store, and opts.Zones must be non-nil;
// opts.Zones must contain opts.DefaultMap; opts.TickInterval must be > 0.
func NewOrchestrator(opts Options) (*Orchestrator, error) {
	if opts.TickInterval <= 0 {
		return nil, fmt.Errorf("orchestrator: tick interval must be > 0")
	}
	if _, ok := opts.Zones[opts.DefaultMap]; !ok {
		return nil, fmt.Errorf("orchestrator: default map %q not loaded", opts.DefaultMap)
	}
	src := opts.Source
	if src == nil {
		src = rng.NewSource()
	}
	return &Orchestrator{
		logger:            opts.Logger,
		store:             opts.Store,
		src:               src,
		zones:             opts.Zones,
		defaultMap:        opts.DefaultMap,
		tickInterval:      opts.TickInterval,
		maxPlayersPerZone: opts.MaxPlayersPerZone,
		commands:          make(chan func(now time.Time), 256),
		done:              make(chan struct{}),
		stopped:           make(chan struct{}),
		sessions:          make(map[Conn]*session),
	}, nil
}

// Run drives the world until Stop is called. Commands and ticks are processed
// on this goroutine only. Ticks advance by actual elapsed time: when the loop
// falls behind, intermediate ticker fires are dropped and the next tick covers
// the full gap, so the simulation skips rather than bursts.
func (o *Orchestrator) Run() error {
	defer close(o.stopped)

	ticker := time.NewTicker(o.tickInterval)
	defer ticker.Stop()
	o.lastTick = time.Now()

	for {
		select {
		case <-o.done:
			o.disconnectAll()
			return nil
		case cmd := <-o.commands:
			cmd(time.Now())
		case now := <-ticker.C:
			o.tick(now)
		}
	}
}

// Stop shuts the loop down, waits for it to drain, and waits for in-flight
// persistence writes so the pool can be closed safely afterwards.
func (o *Orchestrator) Stop() {
	close(o.done)
	<-o.stopped
	o.persistWG.Wait()
}

// PlayerCount returns the number of connected players, safe to call from any
// goroutine.
func (o *Orchestrator) PlayerCount() int64 {
	return o.playerCount.Load()
}

// ZoneCount returns the number of loaded zones. The zone map is immutable
// after construction.
func (o *Orchestrator) ZoneCount() int {
	return len(o.zones)
}

// Dispatch queues an inbound frame for processing on the loop. Safe to call
// from connection read goroutines; frames arriving after Stop are dropped.
func (o *Orchestrator) Dispatch(conn Conn, env protocol.Envelope) {
	o.enqueue(func(now time.Time) {
		o.handle(now, conn, env)
	})
}

// Disconnect queues the removal of a connection's player from the world.
func (o *Orchestrator) Disconnect(conn Conn) {
	o.enqueue(func(now time.Time) {
		o.handleDisconnect(conn)
	})
}

func (o *Orchestrator) enqueue(cmd func(now time.Time)) {
	select {
	case o.commands <- cmd:
	case <-o.done:
	}
}

func (o *Orchestrator) handle(now time.Time, conn Conn, env protocol.Envelope) {
	switch env.Type {
	case protocol.TypeJoin:
		var req protocol.JoinRequest
		if err := json.Unmarshal(env.Data, &req); err != nil {
			o.sendError(conn, "malformed join request")
			return
		}
		o.handleJoin(now, conn, req)
	case protocol.TypeMove:
		var req protocol.MoveRequest
		if err := json.Unmarshal(env.Data, &req); err != nil {
			return
		}
		o.handleMove(conn, req)
	case protocol.TypeAttack:
		var req protocol.AttackRequest
		if err := json.Unmarshal(env.Data, &req); err != nil {
			return
		}
		o.handleAttack(now, conn, req)
	case protocol.TypeSkill:
		var req protocol.SkillRequest
		if err := json.Unmarshal(env.Data, &req); err != nil {
			return
		}
		o.handleSkill(now, conn, req)
	case protocol.TypeChat:
		var req protocol.ChatRequest
		if err := json.Unmarshal(env.Data, &req); err != nil {
			return
		}
		o.handleChat(conn, req)
	default:
		o.logger.Debug("ignoring unknown message type", zap.String("type", env.Type))
	}
}

// handleJoin loads or creates the named character and drops the player into
// its zone. The database round trip happens inline on the loop; joins are rare
// relative to ticks and ordering against later messages from the same
// connection matters more than the stall.
func (o *Orchestrator) handleJoin(now time.Time, conn Conn, req protocol.JoinRequest) {
	if _, ok := o.sessions[conn]; ok {
		o.sendError(conn, "already joined")
		return
	}
	if req.CharacterName == "" {
		o.sendError(conn, "character name required")
		return
	}

	// A storage failure gets logged, not answered; the connection may retry.
	c, err := o.loadOrCreateCharacter(req.CharacterName)
	if err != nil {
		o.logger.Error("join failed", zap.String("character", req.CharacterName), zap.Error(err))
		return
	}

	z, ok := o.zones[c.Map]
	if !ok {
		z = o.zones[o.defaultMap]
	}
	if z.PlayerCount() >= o.maxPlayersPerZone {
		o.sendError(conn, "zone is full")
		return
	}

	p := player.NewFromCharacter(uuid.New().String(), c)
	z.AddPlayer(p)
	o.sessions[conn] = &session{conn: conn, player: p, zone: z}
	o.playerCount.Add(1)

	conn.Send(protocol.Message{
		Type: protocol.TypeJoinSuccess,
		Data: protocol.JoinSuccess{Player: p.FullSnapshot(), Map: z.Snapshot()},
	})
	o.broadcastZone(z, protocol.Message{
		Type: protocol.TypePlayerJoined,
		Data: p.Snapshot(),
	}, conn)

	o.logger.Info("player joined",
		observability.PlayerField(p.ID),
		observability.ZoneField(z.Name),
		zap.String("character", p.Name),
	)
}

func (o *Orchestrator) loadOrCreateCharacter(name string) (*character.Character, error) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	c, err := o.store.GetByName(ctx, name)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, postgres.ErrCharacterNotFound) {
		return nil, err
	}

	created, err := o.store.Create(ctx, character.New(defaultAccountID, name))
	if err != nil {
		// Lost a creation race with another connection; the row exists now.
		if errors.Is(err, postgres.ErrCharacterNameTaken) {
			return o.store.GetByName(ctx, name)
		}
		return nil, err
	}
	return created, nil
}

func (o *Orchestrator) handleMove(conn Conn, req protocol.MoveRequest) {
	s, ok := o.sessions[conn]
	if !ok || s.player.Dead {
		return
	}
	switch req.Type {
	case protocol.MoveVelocity:
		s.player.SetVelocity(req.X, req.Y, req.Z)
	case protocol.MoveTarget:
		s.player.SetTargetPosition(req.X, req.Y, req.Z)
	}
}

// handleAttack resolves a basic attack against a monster or another player.
// Targets are trusted positionally; the client decides what is in reach, the
// server only gates on the cooldown and on the target being alive.
func (o *Orchestrator) handleAttack(now time.Time, conn Conn, req protocol.AttackRequest) {
	s, ok := o.sessions[conn]
	if !ok {
		return
	}
	if !s.player.CanAttack(now) {
		return
	}

	switch req.TargetType {
	case protocol.TargetMonster:
		m, ok := s.zone.Monster(req.TargetID)
		if !ok || m.Dead {
			return
		}
		s.player.MarkAttack(now)
		dmg := combat.Damage(s.player.Attack, m.Defense, o.src)
		died := m.TakeDamage(dmg, s.player.ID)
		o.broadcastAttack(s.zone, s.player.ID, m.ID, protocol.TargetMonster, dmg)
		if died {
			o.resolveMonsterDeath(now, s, m.ID)
		}
	case protocol.TargetPlayer:
		target, ok := s.zone.Player(req.TargetID)
		if !ok || target.Dead {
			return
		}
		s.player.MarkAttack(now)
		dmg := combat.Damage(s.player.Attack, target.Defense, o.src)
		died := target.TakeDamage(dmg)
		o.broadcastAttack(s.zone, s.player.ID, target.ID, protocol.TargetPlayer, dmg)
		if died {
			o.announcePlayerDeath(s.zone, target.ID, s.player.ID)
		}
	}
}

func (o *Orchestrator) broadcastAttack(z *zone.Zone, attackerID, targetID, targetType string, dmg int) {
	o.broadcastZone(z, protocol.Message{
		Type: protocol.TypeAttackEvent,
		Data: protocol.AttackEvent{
			AttackerID: attackerID,
			TargetID:   targetID,
			TargetType: targetType,
			Damage:     dmg,
		},
	}, nil)
}

func (o *Orchestrator) announcePlayerDeath(z *zone.Zone, playerID, killerID string) {
	o.broadcastZone(z, protocol.Message{
		Type: protocol.TypePlayerDeath,
		Data: protocol.PlayerDeath{PlayerID: playerID, KillerID: killerID},
	}, nil)
}

func (o *Orchestrator) handleSkill(now time.Time, conn Conn, req protocol.SkillRequest) {
	s, ok := o.sessions[conn]
	if !ok {
		return
	}

	result, ok := s.player.UseSkill(req.SkillID, now)
	if !ok {
		return
	}

	used := protocol.SkillUsed{
		PlayerID:     s.player.ID,
		SkillID:      result.SkillID,
		Heal:         result.Heal,
		DefenseBoost: result.DefenseBoost,
		DurationMs:   result.Duration.Milliseconds(),
	}

	// Outgoing skill damage resolves against whichever live entity carries
	// the target id, monster or player.
	var killedMonsterID, killedPlayerID string
	if result.Damage > 0 {
		if m, ok := s.zone.Monster(req.TargetID); ok && !m.Dead {
			if m.TakeDamage(result.Damage, s.player.ID) {
				killedMonsterID = m.ID
			}
			used.TargetID = m.ID
			used.Damage = result.Damage
		} else if target, ok := s.zone.Player(req.TargetID); ok && !target.Dead {
			if target.TakeDamage(result.Damage) {
				killedPlayerID = target.ID
			}
			used.TargetID = target.ID
			used.Damage = result.Damage
		}
	}

	o.broadcastZone(s.zone, protocol.Message{Type: protocol.TypeSkillUsed, Data: used}, nil)

	if killedMonsterID != "" {
		o.resolveMonsterDeath(now, s, killedMonsterID)
	}
	if killedPlayerID != "" {
		o.announcePlayerDeath(s.zone, killedPlayerID, s.player.ID)
	}
}

// resolveMonsterDeath finalizes a kill: awards XP and loot to the killer,
// announces the death, and persists the killer's progression.
func (o *Orchestrator) resolveMonsterDeath(now time.Time, killer *session, monsterID string) {
	m, ok := killer.zone.Monster(monsterID)
	if !ok {
		return
	}
	xp, drops := m.Die(now)
	if xp == 0 && drops == nil {
		return
	}

	wireDrops := make([]protocol.Drop, 0, len(drops))
	for _, d := range drops {
		wireDrops = append(wireDrops, protocol.Drop{ItemID: d.ItemID, Name: d.Name, Position: d.Position})
	}
	o.broadcastZone(killer.zone, protocol.Message{
		Type: protocol.TypeMonsterDeath,
		Data: protocol.MonsterDeath{
			MonsterID: m.ID,
			KillerID:  killer.player.ID,
			XP:        xp,
			Drops:     wireDrops,
		},
	}, nil)

	if killer.player.GainExperience(xp) {
		o.logger.Info("player leveled up",
			observability.PlayerField(killer.player.ID),
			zap.Int("level", killer.player.Level),
		)
	}
	o.persistStats(killer.player)
}

func (o *Orchestrator) handleChat(conn Conn, req protocol.ChatRequest) {
	s, ok := o.sessions[conn]
	if !ok || req.Message == "" {
		return
	}
	// Chat is global across zones.
	msg := protocol.Message{
		Type: protocol.TypeChatEvent,
		Data: protocol.ChatEvent{PlayerName: s.player.Name, Message: req.Message},
	}
	for _, other := range o.sessions {
		other.conn.Send(msg)
	}
}

func (o *Orchestrator) handleDisconnect(conn Conn) {
	s, ok := o.sessions[conn]
	if !ok {
		return
	}
	delete(o.sessions, conn)
	s.zone.RemovePlayer(s.player.ID)
	o.playerCount.Add(-1)

	o.broadcastZone(s.zone, protocol.Message{
		Type: protocol.TypePlayerLeft,
		Data: protocol.PlayerLeft{PlayerID: s.player.ID},
	}, nil)

	o.persistPosition(s.player)
	o.persistStats(s.player)

	o.logger.Info("player left",
		observability.PlayerField(s.player.ID),
		observability.ZoneField(s.zone.Name),
	)
}

func (o *Orchestrator) disconnectAll() {
	for conn := range o.sessions {
		o.handleDisconnect(conn)
		conn.Close()
	}
}

// tick advances every zone by the actual elapsed time since the previous tick
// and broadcasts the per-zone public state.
func (o *Orchestrator) tick(now time.Time) {
	dt := now.Sub(o.lastTick).Seconds()
	o.lastTick = now
	if dt <= 0 {
		return
	}

	for _, s := range o.sessions {
		s.player.ExpireBuffs(now)
	}

	for _, z := range o.zones {
		events := z.Update(now, dt)
		for _, ev := range events {
			o.broadcastZone(z, protocol.Message{
				Type: protocol.TypeAttackEvent,
				Data: protocol.AttackEvent{
					AttackerID: ev.AttackerID,
					TargetID:   ev.TargetID,
					TargetType: protocol.TargetPlayer,
					Damage:     ev.Damage,
				},
			}, nil)
			if ev.TargetDied {
				o.announcePlayerDeath(z, ev.TargetID, ev.AttackerID)
			}
		}

		if z.PlayerCount() == 0 {
			continue
		}
		o.broadcastZone(z, protocol.Message{
			Type: protocol.TypeGameState,
			Data: z.PublicState(),
		}, nil)
	}
}

func (o *Orchestrator) broadcastZone(z *zone.Zone, msg protocol.Message, except Conn) {
	for conn, s := range o.sessions {
		if s.zone != z || conn == except {
			continue
		}
		conn.Send(msg)
	}
}

func (o *Orchestrator) sendError(conn Conn, message string) {
	conn.Send(protocol.Message{
		Type: protocol.TypeError,
		Data: protocol.ErrorEvent{Message: message},
	})
}

// persistStats writes combat progression in the background so a slow database
// never stalls the loop.
func (o *Orchestrator) persistStats(p *player.Player) {
	id := p.CharacterID
	patch := p.StatsPatch()
	o.persistWG.Add(1)
	go func() {
		defer o.persistWG.Done()
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := o.store.UpdateStats(ctx, id, patch); err != nil {
			o.logger.Error("persisting stats", zap.Int64("character_id", id), zap.Error(err))
		}
	}()
}

func (o *Orchestrator) persistPosition(p *player.Player) {
	id := p.CharacterID
	pos := p.Position
	o.persistWG.Add(1)
	go func() {
		defer o.persistWG.Done()
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := o.store.UpdatePosition(ctx, id, pos); err != nil {
			o.logger.Error("persisting position", zap.Int64("character_id", id), zap.Error(err))
		}
	}()
}
