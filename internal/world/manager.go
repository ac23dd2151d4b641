package world

import (
	"log/slog"
	"sync"
	"time"

	"github.com/openmyr/myrgo/internal/data"
	"github.com/openmyr/myrgo/internal/model"
)

// Config tunes world-wide behavior.
type Config struct {
	// IdleZoneTTL is how long a non-zero zone may sit empty before the map
	// tick reclaims it. Zero disables compaction.
	IdleZoneTTL time.Duration

	// CompactionInterval is how often the update loop runs compaction and
	// the zone integrity check.
	CompactionInterval time.Duration
}

// DefaultConfig returns the standing world tuning.
func DefaultConfig() Config {
	return Config{
		IdleZoneTTL:        10 * time.Minute,
		CompactionInterval: time.Minute,
	}
}

// Manager is the top-level registry of all GameMaps: the single source of
// truth for which map/zone a player is in, and the sole orchestrator of the
// leave-then-join sequence that prevents dual membership.
//
// Constructed and injected, never a package singleton: tests run several
// independent worlds side by side.
type Manager struct {
	notifier Notifier
	monsters *data.MonsterRegistry
	cfg      Config
	ids      *monsterIDAllocator

	// maps registries are read-mostly: populated at startup, extended on
	// reload, torn down at shutdown.
	mu       sync.RWMutex
	maps     map[int32]*GameMap
	mapNames map[int32]string

	sinceMaintenance time.Duration // accumulated by Update, under the tick
}

// NewManager creates an empty world.
func NewManager(notifier Notifier, monsters *data.MonsterRegistry, cfg Config) *Manager {
	return &Manager{
		notifier: notifier,
		monsters: monsters,
		cfg:      cfg,
		ids:      newMonsterIDAllocator(),
		maps:     make(map[int32]*GameMap),
		mapNames: make(map[int32]string),
	}
}

// LoadMaps creates a GameMap (with its pre-populated zone 0) per template.
func (w *Manager) LoadMaps(templates []*data.MapTemplate) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, tmpl := range templates {
		if _, exists := w.maps[tmpl.ID]; exists {
			slog.Warn("duplicate map template skipped", "map", tmpl.ID)
			continue
		}
		w.maps[tmpl.ID] = NewGameMap(tmpl, w.monsters, w.ids, w.notifier)
		w.mapNames[tmpl.ID] = tmpl.Name
	}
	slog.Info("world maps loaded", "count", len(w.maps))
}

// GameMap returns a live map by id.
func (w *Manager) GameMap(id int32) (*GameMap, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	gm, ok := w.maps[id]
	return gm, ok
}

// MapName returns the display name for a map id.
func (w *Manager) MapName(id int32) (string, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	name, ok := w.mapNames[id]
	return name, ok
}

// MapCount returns the number of live maps.
func (w *Manager) MapCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.maps)
}

func (w *Manager) gameMaps() []*GameMap {
	w.mu.RLock()
	defer w.mu.RUnlock()
	maps := make([]*GameMap, 0, len(w.maps))
	for _, gm := range w.maps {
		maps = append(maps, gm)
	}
	return maps
}

// ChangeMap moves a player: leave the current zone, then join the target
// map. The per-player transition lock is held across both steps, so the
// brief zoneless window can never interleave with a duplicate move command
// for the same player.
func (w *Manager) ChangeMap(p *model.Player, pos model.Position) bool {
	p.BeginTransition()
	defer p.EndTransition()

	w.leaveMap(p)
	return w.transitionToMap(p, pos)
}

// TransitionToMap admits a currently zoneless player into the map at pos.
func (w *Manager) TransitionToMap(p *model.Player, pos model.Position) bool {
	p.BeginTransition()
	defer p.EndTransition()

	return w.transitionToMap(p, pos)
}

// LeaveMap removes the player from its current zone, notifying that zone
// only. No-op when already zoneless.
func (w *Manager) LeaveMap(p *model.Player) {
	p.BeginTransition()
	defer p.EndTransition()

	w.leaveMap(p)
}

// transitionToMap resolves the target map, admits the player, and sequences
// the visibility notifications. The player's combined (position, map, zone)
// update lands before any outbound notification: a failure mid-notification
// can never leave a half-assigned entity.
// Caller holds the player's transition lock.
func (w *Manager) transitionToMap(p *model.Player, pos model.Position) bool {
	gm, ok := w.GameMap(pos.MapID)
	if !ok {
		// Recoverable: the player simply does not move.
		slog.Warn("transition to unknown map", "map", pos.MapID, "player", p.ID())
		return false
	}

	zone, ok := gm.AssignZone(p)
	if !ok {
		slog.Warn("map admission failed", "map", pos.MapID, "player", p.ID())
		return false
	}
	p.SetPos(pos)

	if err := w.notifier.SendMapChange(p, pos); err != nil {
		slog.Warn("map change notification failed", "player", p.ID(), "err", err)
	}

	tmpl := gm.Template()
	if tmpl.Battle && !p.BattleReady() {
		// Not cleared for battle maps: route to the map's return point. The
		// transition lock is already held, so this runs as part of the same
		// sequenced move. A return point on another battle map would recurse
		// forever; in that case the player stays where admission put them.
		ret, ok := w.GameMap(tmpl.ReturnMapID)
		if !ok || ret.Template().Battle {
			slog.Error("battle map has no usable return point",
				"map", gm.ID(), "return_map", tmpl.ReturnMapID, "player", p.ID())
		} else {
			slog.Info("relocating player off battle map", "map", gm.ID(), "player", p.ID())
			w.leaveMap(p)
			return w.transitionToMap(p, model.NewPosition(tmpl.ReturnMapID, tmpl.ReturnX, tmpl.ReturnY))
		}
	}

	w.notifyEnter(zone, p)
	return true
}

// leaveMap removes the player from its current zone and tells that zone.
// Caller holds the player's transition lock.
func (w *Manager) leaveMap(p *model.Player) {
	zone := zoneOf(p)
	if zone == nil {
		return
	}
	if !zone.RemovePlayer(p.ID()) {
		return
	}
	w.notifyExit(zone, p)
}

// notifyEnter runs the two-way visibility diff in one pass: every other
// occupant learns the newcomer's position and equipment, the newcomer learns
// theirs, plus one position notice per already-present monster, plus the
// mount-state rebroadcast.
func (w *Manager) notifyEnter(zone *Zone, p *model.Player) {
	zone.BroadcastExcept(p.ID(), func(other *model.Player) error {
		if err := w.notifier.SendPlayerEnter(other, p); err != nil {
			return err
		}
		if err := w.notifier.SendPlayerEnter(p, other); err != nil {
			return err
		}
		if err := w.notifier.SendEquipment(other, p); err != nil {
			return err
		}
		if err := w.notifier.SendEquipment(p, other); err != nil {
			return err
		}
		return w.notifier.SendMountState(other, p)
	})

	zone.monsters.Range(func(_, v any) bool {
		if err := w.notifier.SendMonsterInfo(p, v.(*model.Monster)); err != nil {
			slog.Warn("monster info delivery failed", "player", p.ID(), "err", err)
		}
		return true
	})
}

// notifyExit broadcasts the departure to the zone the player just left.
func (w *Manager) notifyExit(zone *Zone, p *model.Player) {
	zone.Broadcast(func(other *model.Player) error {
		return w.notifier.SendPlayerExit(other, p.ID())
	})
}

// FindPlayerByID scans every map's every zone. Linear, off the tick path.
func (w *Manager) FindPlayerByID(id uint32) (*model.Player, bool) {
	for _, gm := range w.gameMaps() {
		for _, z := range gm.Zones() {
			if p, ok := z.Player(id); ok {
				return p, true
			}
		}
	}
	return nil, false
}

// FindPlayerByName scans every map's every zone for a name match.
func (w *Manager) FindPlayerByName(name string) (*model.Player, bool) {
	var found *model.Player
	for _, gm := range w.gameMaps() {
		for _, z := range gm.Zones() {
			z.players.Range(func(_, v any) bool {
				p := v.(*model.Player)
				if p.Name() == name {
					found = p
					return false
				}
				return true
			})
			if found != nil {
				return found, true
			}
		}
	}
	return nil, false
}

// WorldBroadcast invokes action for every resident player in the world,
// skipping bot-driven clones. Per-recipient failure isolation is handled by
// the zone broadcast underneath.
func (w *Manager) WorldBroadcast(action func(*model.Player) error) {
	for _, gm := range w.gameMaps() {
		for _, z := range gm.Zones() {
			z.Broadcast(func(p *model.Player) error {
				if p.IsClone() {
					return nil
				}
				return action(p)
			})
		}
	}
}

// ReloadMapData swaps fresh template snapshots into live maps and creates
// maps for templates not seen before. Zones observe the new template through
// their map on the next read; no zone is re-created.
func (w *Manager) ReloadMapData(templates []*data.MapTemplate) {
	w.mu.Lock()
	defer w.mu.Unlock()

	updated, added := 0, 0
	for _, tmpl := range templates {
		if gm, ok := w.maps[tmpl.ID]; ok {
			gm.SetTemplate(tmpl)
			updated++
		} else {
			w.maps[tmpl.ID] = NewGameMap(tmpl, w.monsters, w.ids, w.notifier)
			added++
		}
		w.mapNames[tmpl.ID] = tmpl.Name
	}
	slog.Info("map data reloaded", "updated", updated, "added", added)
}

// Update drives one world tick: fan out, then periodic maintenance
// (idle-zone compaction and the zone integrity check).
func (w *Manager) Update(delta time.Duration) {
	maps := w.gameMaps()
	for _, gm := range maps {
		gm.Update(delta)
	}

	w.sinceMaintenance += delta
	if w.cfg.CompactionInterval > 0 && w.sinceMaintenance >= w.cfg.CompactionInterval {
		w.sinceMaintenance = 0
		for _, gm := range maps {
			gm.CompactIdleZones(w.cfg.IdleZoneTTL)
			gm.Validate()
		}
	}
}

// Shutdown tears down every map.
func (w *Manager) Shutdown() {
	w.mu.Lock()
	defer w.mu.Unlock()

	for id, gm := range w.maps {
		gm.Cleanup()
		delete(w.maps, id)
		delete(w.mapNames, id)
	}
	slog.Info("world torn down")
}
