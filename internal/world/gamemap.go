package world

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/openmyr/myrgo/internal/data"
	"github.com/openmyr/myrgo/internal/model"
)

// GameMap shards one logical map's population across zones. Zone 0 always
// exists and is populated from the spawn table at construction; further zones
// are stamped out on demand when every existing zone is full.
type GameMap struct {
	id int32

	// tmpl is swapped atomically on data reload; zones read the template
	// through their map so they observe the swap without re-creation.
	tmpl atomic.Pointer[data.MapTemplate]

	mu         sync.Mutex   // zone creation / compaction / teardown
	zones      []*Zone      // ascending id order, under mu
	zoneList   atomic.Value // []*Zone snapshot for the lock-free read path
	nextZoneID int32        // under mu; ids are never reused

	monsters *data.MonsterRegistry
	ids      *monsterIDAllocator
	notifier Notifier
}

// NewGameMap creates a map with its pre-populated zone 0.
func NewGameMap(tmpl *data.MapTemplate, monsters *data.MonsterRegistry, ids *monsterIDAllocator, notifier Notifier) *GameMap {
	gm := &GameMap{
		id:       tmpl.ID,
		monsters: monsters,
		ids:      ids,
		notifier: notifier,
	}
	gm.tmpl.Store(tmpl)

	gm.mu.Lock()
	gm.newZoneLocked()
	gm.mu.Unlock()
	return gm
}

// ID returns the logical map id.
func (gm *GameMap) ID() int32 { return gm.id }

// Template returns the current immutable template snapshot.
func (gm *GameMap) Template() *data.MapTemplate {
	return gm.tmpl.Load()
}

// SetTemplate swaps in a fresh template snapshot (data reload).
func (gm *GameMap) SetTemplate(tmpl *data.MapTemplate) {
	gm.tmpl.Store(tmpl)
}

// Zones returns the current zone list snapshot, ascending by id.
// The returned slice is immutable.
func (gm *GameMap) Zones() []*Zone {
	if v := gm.zoneList.Load(); v != nil {
		return v.([]*Zone)
	}
	return nil
}

// Zone returns a zone by id.
func (gm *GameMap) Zone(id int32) (*Zone, bool) {
	for _, z := range gm.Zones() {
		if z.ID() == id {
			return z, true
		}
	}
	return nil, false
}

// ZoneCount returns the number of live zones.
func (gm *GameMap) ZoneCount() int {
	return len(gm.Zones())
}

// AssignZone admits a player into the first zone with room, creating a new
// zone when every existing one is full. The common path is an optimistic
// lock-free scan; only the shortfall path takes the map lock, re-scans (a
// concurrent caller may have made room or created a zone), and creates at
// most one zone.
func (gm *GameMap) AssignZone(p *model.Player) (*Zone, bool) {
	for _, z := range gm.Zones() {
		if z.AddPlayer(p) {
			return z, true
		}
	}

	gm.mu.Lock()
	defer gm.mu.Unlock()

	for _, z := range gm.zones {
		if z.AddPlayer(p) {
			return z, true
		}
	}

	z := gm.newZoneLocked()
	if !z.AddPlayer(p) {
		// Only possible with a zero-capacity template.
		slog.Error("fresh zone rejected player", "map", gm.id, "zone", z.ID(), "player", p.ID())
		return nil, false
	}
	return z, true
}

// newZoneLocked creates the next zone and populates it from the spawn table:
// one monster per spawn point, each with a globally unique objectID.
// Caller holds gm.mu.
func (gm *GameMap) newZoneLocked() *Zone {
	z := newZone(gm, gm.nextZoneID, gm.notifier)
	gm.nextZoneID++

	tmpl := gm.Template()
	for _, sp := range tmpl.Spawns {
		mt, ok := gm.monsters.Template(sp.TemplateID)
		if !ok {
			slog.Warn("spawn references unknown monster template",
				"map", gm.id, "zone", z.ID(), "template", sp.TemplateID)
			continue
		}
		m := model.NewMonster(gm.ids.next(), mt.ID, mt.Name, model.NewPosition(gm.id, sp.X, sp.Y))
		z.AddMonster(m)
	}

	gm.zones = append(gm.zones, z)
	gm.zoneList.Store(append([]*Zone(nil), gm.zones...))

	slog.Info("zone created", "map", gm.id, "zone", z.ID(), "monsters", z.MonsterCount())
	return z
}

// GetWarpAt returns the first configured warp whose trigger region covers
// (x, y). First match in declaration order wins - overlapping warps resolve
// by list order, never by geometric proximity.
func (gm *GameMap) GetWarpAt(x, y int32) (*data.Warp, bool) {
	tmpl := gm.Template()
	for i := range tmpl.Warps {
		if tmpl.Warps[i].Covers(x, y) {
			return &tmpl.Warps[i], true
		}
	}
	return nil, false
}

// IsWarp reports whether (x, y) is inside any warp trigger region.
func (gm *GameMap) IsWarp(x, y int32) bool {
	_, ok := gm.GetWarpAt(x, y)
	return ok
}

// Update fans the tick out to every zone.
func (gm *GameMap) Update(delta time.Duration) {
	for _, z := range gm.Zones() {
		z.Update(delta)
	}
}

// Validate runs the counter-vs-registry diagnostic on every zone.
func (gm *GameMap) Validate() {
	for _, z := range gm.Zones() {
		z.Validate()
	}
}

// CompactIdleZones tears down zones that have been empty of players for at
// least idleFor. Zone 0 is never reclaimed. Returns the number removed.
// A zero idleFor disables compaction.
func (gm *GameMap) CompactIdleZones(idleFor time.Duration) int {
	if idleFor <= 0 {
		return 0
	}
	now := time.Now()

	gm.mu.Lock()
	defer gm.mu.Unlock()

	kept := gm.zones[:0]
	removed := 0
	for _, z := range gm.zones {
		// retire settles the race with admissions through a stale zone list
		// snapshot: after it succeeds no AddPlayer can land in this zone.
		if z.ID() != 0 && z.retire(now, idleFor) {
			z.teardown()
			removed++
			slog.Info("idle zone compacted", "map", gm.id, "zone", z.ID())
			continue
		}
		kept = append(kept, z)
	}
	if removed > 0 {
		gm.zones = kept
		gm.zoneList.Store(append([]*Zone(nil), gm.zones...))
	}
	return removed
}

// Cleanup tears down every zone and clears the registry. Shutdown only.
func (gm *GameMap) Cleanup() {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	for _, z := range gm.zones {
		z.teardown()
	}
	gm.zones = nil
	gm.zoneList.Store([]*Zone{})
}
