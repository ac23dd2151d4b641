package model

import (
	"sync"
	"sync/atomic"
	"time"
)

// Monster is a spawned monster instance bound to one zone for its lifetime.
// Instances are stamped out of a static template when a zone is created;
// the objectID is globally unique, the template id is not.
type Monster struct {
	id         uint32 // globally unique objectID
	templateID int32
	name       string

	mu  sync.RWMutex
	pos Position

	// targetID is the objectID of the player this monster is fighting,
	// 0 when idle. Scrubbed by the zone when the target leaves.
	targetID atomic.Uint32

	zoneRef atomic.Value // *world.Zone, same convention as Player.zoneRef

	onTick func(delta time.Duration)
}

// NewMonster creates a monster instance at the given spawn position.
func NewMonster(id uint32, templateID int32, name string, pos Position) *Monster {
	return &Monster{id: id, templateID: templateID, name: name, pos: pos}
}

// ID returns the globally unique objectID.
func (m *Monster) ID() uint32 { return m.id }

// TemplateID returns the monster template this instance was stamped from.
func (m *Monster) TemplateID() int32 { return m.templateID }

// Name returns the template name.
func (m *Monster) Name() string { return m.name }

// Pos returns the current position.
func (m *Monster) Pos() Position {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pos
}

// SetPos updates the current position.
func (m *Monster) SetPos(pos Position) {
	m.mu.Lock()
	m.pos = pos
	m.mu.Unlock()
}

// TargetID returns the objectID of the current combat target, 0 when idle.
func (m *Monster) TargetID() uint32 { return m.targetID.Load() }

// SetTarget sets the combat target.
func (m *Monster) SetTarget(playerID uint32) { m.targetID.Store(playerID) }

// ClearTarget drops the combat target.
func (m *Monster) ClearTarget() { m.targetID.Store(0) }

// ZoneRef returns the opaque zone back-reference. As with Player.ZoneRef, a
// cleared reference is a typed nil pointer, not a nil interface.
func (m *Monster) ZoneRef() any { return m.zoneRef.Load() }

// SetZoneRef stores the zone back-reference (world layer only).
func (m *Monster) SetZoneRef(ref any) { m.zoneRef.Store(ref) }

// SetTickFunc installs the per-tick AI hook. Wire-up time only.
func (m *Monster) SetTickFunc(fn func(delta time.Duration)) {
	m.onTick = fn
}

// Tick runs the per-tick hook, if any.
func (m *Monster) Tick(delta time.Duration) {
	if m.onTick != nil {
		m.onTick(delta)
	}
}
