package model

import (
	"sync"
	"sync/atomic"
	"time"
)

// Player is a connected game character as the world core sees it: identity,
// position, and the flags the zone/map layer consults during transitions and
// broadcasts. Game-rule subsystems (combat, inventory, shops) hang their own
// state off their side of the fence and talk to the world through the zone
// back-reference.
type Player struct {
	id   uint32
	name string

	mu  sync.RWMutex
	pos Position

	online  atomic.Bool
	mounted atomic.Bool

	// clone marks bot-driven copies of a real character. Clones take part in
	// zone population and combat but are skipped by world-wide broadcasts.
	clone bool

	// battleReady gates entry to battle-flagged maps.
	battleReady atomic.Bool

	// zoneRef holds the owning *world.Zone (stored as any to avoid the
	// model <-> world import cycle). Written only by Zone.AddPlayer and
	// Zone.RemovePlayer.
	zoneRef atomic.Value

	// transitionMu serializes map changes for this player. Held across the
	// whole leave-then-join sequence so duplicate move commands cannot
	// interleave.
	transitionMu sync.Mutex

	// onTick is the per-tick hook invoked by the owning zone while the
	// player is online and resident. Set once at wiring time.
	onTick func(delta time.Duration)
}

// NewPlayer creates a player entity. Players start offline and zoneless.
func NewPlayer(id uint32, name string, pos Position) *Player {
	return &Player{id: id, name: name, pos: pos}
}

// NewClone creates a bot-driven clone of a character. Clones behave like
// players inside a zone but are excluded from world broadcasts.
func NewClone(id uint32, name string, pos Position) *Player {
	return &Player{id: id, name: name, pos: pos, clone: true}
}

// ID returns the character id.
func (p *Player) ID() uint32 { return p.id }

// Name returns the character name.
func (p *Player) Name() string { return p.name }

// IsClone reports whether this entity is a bot-driven clone.
func (p *Player) IsClone() bool { return p.clone }

// Pos returns the current position.
func (p *Player) Pos() Position {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.pos
}

// SetPos updates the current position (map id included) in one write.
func (p *Player) SetPos(pos Position) {
	p.mu.Lock()
	p.pos = pos
	p.mu.Unlock()
}

// Online reports whether the player's connection is live.
func (p *Player) Online() bool { return p.online.Load() }

// SetOnline marks the player connected/disconnected.
func (p *Player) SetOnline(v bool) { p.online.Store(v) }

// Mounted reports the mount state rebroadcast on map entry.
func (p *Player) Mounted() bool { return p.mounted.Load() }

// SetMounted updates the mount state.
func (p *Player) SetMounted(v bool) { p.mounted.Store(v) }

// BattleReady reports whether the player may stay on battle-flagged maps.
func (p *Player) BattleReady() bool { return p.battleReady.Load() }

// SetBattleReady updates battle-map permission.
func (p *Player) SetBattleReady(v bool) { p.battleReady.Store(v) }

// ZoneRef returns the opaque zone back-reference set by the world layer.
// A cleared reference is a typed nil pointer, not a nil interface: callers
// must type-assert and nil-check the unwrapped pointer to detect a zoneless
// player.
func (p *Player) ZoneRef() any {
	return p.zoneRef.Load()
}

// SetZoneRef stores the zone back-reference. Called only by the world layer;
// pass a typed nil pointer to clear.
func (p *Player) SetZoneRef(ref any) {
	p.zoneRef.Store(ref)
}

// BeginTransition acquires the per-player map-transition lock.
func (p *Player) BeginTransition() { p.transitionMu.Lock() }

// EndTransition releases the per-player map-transition lock.
func (p *Player) EndTransition() { p.transitionMu.Unlock() }

// SetTickFunc installs the per-tick hook. Wire-up time only, not
// concurrency-safe against a running game loop.
func (p *Player) SetTickFunc(fn func(delta time.Duration)) {
	p.onTick = fn
}

// Tick runs the per-tick hook, if any.
func (p *Player) Tick(delta time.Duration) {
	if p.onTick != nil {
		p.onTick(delta)
	}
}
