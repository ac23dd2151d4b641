package world

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/openmyr/myrgo/internal/model"
)

// dropBroadcastRadius bounds who is told about ground-item changes, in pixels.
const dropBroadcastRadius = 30 * model.TileSize

// Zone is one capacity-bounded instance of a map: a concurrent container of
// players, monsters, and ground drops, and the leaf of the world's tick tree.
//
// Registries are sync.Maps so simple lookups and iteration need no external
// locking; the compound check-then-act sections (capacity admission, drop
// backpressure) each take an exclusive lock. playerCount/dropCount shadow the
// registry sizes for O(1) reads and are kept consistent under those locks.
type Zone struct {
	id      int32
	gameMap *GameMap

	memberMu    sync.Mutex // admission/removal critical section
	retired     bool       // under memberMu; set once, never cleared
	players     sync.Map   // map[uint32]*model.Player
	playerCount atomic.Int32

	monsters sync.Map // map[uint32]*model.Monster

	dropMu     sync.Mutex // drop admission critical section
	drops      sync.Map   // map[uint32]*model.DropItem
	dropCount  atomic.Int32
	nextDropID atomic.Uint32

	// emptySince is the unix-milli instant the zone last became empty of
	// players, 0 while occupied. Drives idle-zone compaction.
	emptySince atomic.Int64

	notifier Notifier
}

func newZone(gm *GameMap, id int32, notifier Notifier) *Zone {
	z := &Zone{id: id, gameMap: gm, notifier: notifier}
	z.emptySince.Store(time.Now().UnixMilli())
	return z
}

// ID returns the zone id, unique within the owning map.
func (z *Zone) ID() int32 { return z.id }

// GameMap returns the map this zone shards. A zone belongs to exactly one
// map and is never reassigned.
func (z *Zone) GameMap() *GameMap { return z.gameMap }

// MaxPlayers returns the admission capacity, read from the live template.
func (z *Zone) MaxPlayers() int32 { return z.gameMap.Template().MaxPlayers }

// PlayerCount returns the cached resident player count.
func (z *Zone) PlayerCount() int32 { return z.playerCount.Load() }

// DropCount returns the cached ground-item count.
func (z *Zone) DropCount() int32 { return z.dropCount.Load() }

// AddPlayer admits a player. Returns false if the zone has been retired, the
// player is already present, or the zone is at capacity. The capacity check
// and the insert run under one lock so concurrent callers cannot jointly
// overshoot. The retired check covers callers still holding a zone list
// snapshot taken before compaction removed this zone from its map.
func (z *Zone) AddPlayer(p *model.Player) bool {
	z.memberMu.Lock()
	defer z.memberMu.Unlock()

	if z.retired {
		slog.Debug("admission into retired zone rejected",
			"map", z.gameMap.ID(), "zone", z.id, "player", p.ID())
		return false
	}
	if _, present := z.players.Load(p.ID()); present {
		return false
	}
	if z.playerCount.Load() >= z.MaxPlayers() {
		slog.Debug("zone full, player rejected",
			"map", z.gameMap.ID(), "zone", z.id, "player", p.ID())
		return false
	}

	z.players.Store(p.ID(), p)
	z.playerCount.Add(1)
	z.emptySince.Store(0)
	p.SetZoneRef(z)
	return true
}

// RemovePlayer evicts a player. Returns false if the id is not resident.
// Any monster still targeting the departed player has its target scrubbed:
// no entity may hold a live combat reference into a departed player.
func (z *Zone) RemovePlayer(id uint32) bool {
	z.memberMu.Lock()
	defer z.memberMu.Unlock()

	v, ok := z.players.LoadAndDelete(id)
	if !ok {
		return false
	}
	if z.playerCount.Add(-1) == 0 {
		z.emptySince.Store(time.Now().UnixMilli())
	}

	z.monsters.Range(func(_, mv any) bool {
		m := mv.(*model.Monster)
		if m.TargetID() == id {
			m.ClearTarget()
		}
		return true
	})

	v.(*model.Player).SetZoneRef((*Zone)(nil))
	return true
}

// HasPlayer reports whether id is resident.
func (z *Zone) HasPlayer(id uint32) bool {
	_, ok := z.players.Load(id)
	return ok
}

// Player returns a resident player by id.
func (z *Zone) Player(id uint32) (*model.Player, bool) {
	v, ok := z.players.Load(id)
	if !ok {
		return nil, false
	}
	return v.(*model.Player), true
}

// AddMonster binds a monster to this zone. Monsters are template-driven and
// not admission-controlled, so there is no capacity check.
func (z *Zone) AddMonster(m *model.Monster) {
	z.monsters.Store(m.ID(), m)
	m.SetZoneRef(z)
}

// RemoveMonster unbinds a monster.
func (z *Zone) RemoveMonster(id uint32) bool {
	v, ok := z.monsters.LoadAndDelete(id)
	if !ok {
		return false
	}
	v.(*model.Monster).SetZoneRef((*Zone)(nil))
	return true
}

// Monster returns a bound monster by objectID.
func (z *Zone) Monster(id uint32) (*model.Monster, bool) {
	v, ok := z.monsters.Load(id)
	if !ok {
		return nil, false
	}
	return v.(*model.Monster), true
}

// MonsterCount returns the number of bound monsters (O(n), off the hot path).
func (z *Zone) MonsterCount() int {
	n := 0
	z.monsters.Range(func(_, _ any) bool { n++; return true })
	return n
}

// DropItem places an item on the ground, locked to ownerID for lock and
// expiring after lifetime. When the drop table is full an expiry sweep runs
// first; if it is still full the new drop is discarded - backpressure
// sacrifices the newest drop rather than evicting or queueing.
// Returns nil when discarded. All notifier callbacks run after dropMu is
// released, so a notifier may safely re-enter the zone.
func (z *Zone) DropItem(item *model.Item, count int32, mobID uint32, pos model.Position, ownerID uint32, lock, lifetime time.Duration) *model.DropItem {
	z.dropMu.Lock()
	maxDrops := z.gameMap.Template().MaxDrops
	var swept []*model.DropItem
	if z.dropCount.Load() >= maxDrops {
		swept = z.sweepExpired()
	}
	var d *model.DropItem
	if z.dropCount.Load() < maxDrops {
		d = model.NewDropItem(z.nextDropID.Add(1), mobID, item, count, pos, ownerID, lock, lifetime)
		z.drops.Store(d.DropID(), d)
		z.dropCount.Add(1)
	}
	z.dropMu.Unlock()

	for _, old := range swept {
		z.broadcastDropRemoved(old)
	}
	if d == nil {
		slog.Warn("drop table full, discarding drop",
			"map", z.gameMap.ID(), "zone", z.id, "item", item.ID, "max", maxDrops)
		return nil
	}
	z.BroadcastInRadius(pos, dropBroadcastRadius, func(p *model.Player) error {
		return z.notifier.SendDropItem(p, d)
	})
	return d
}

// PickupItem removes a drop and returns its item. Every failure branch -
// unknown id, expired, still locked against this player - is a silent nil;
// the caller decides user-facing messaging.
func (z *Zone) PickupItem(dropID, playerID uint32) *model.Item {
	v, ok := z.drops.Load(dropID)
	if !ok {
		slog.Debug("pickup of unknown drop",
			"map", z.gameMap.ID(), "zone", z.id, "drop", dropID, "player", playerID)
		return nil
	}
	d := v.(*model.DropItem)

	if d.IsExpired() {
		z.removeDrop(dropID)
		return nil
	}
	if !d.CanPickup(playerID) {
		slog.Debug("pickup blocked by ownership lock",
			"zone", z.id, "drop", dropID, "player", playerID, "owner", d.OwnerID(),
			"lock_left_s", d.RemainingLockSeconds())
		return nil
	}

	// Re-check under delete: a concurrent pickup or sweep may have won.
	if _, ok := z.drops.LoadAndDelete(dropID); !ok {
		return nil
	}
	z.dropCount.Add(-1)
	z.broadcastDropRemoved(d)
	return d.Item()
}

// Drop returns a ground item by id without touching it.
func (z *Zone) Drop(dropID uint32) (*model.DropItem, bool) {
	v, ok := z.drops.Load(dropID)
	if !ok {
		return nil, false
	}
	return v.(*model.DropItem), true
}

// CleanExpiredDrops sweeps out every drop past its lifetime and announces each
// removal. Runs every tick and opportunistically when the drop table hits its
// cap. Returns the number removed.
func (z *Zone) CleanExpiredDrops() int {
	removed := z.sweepExpired()
	for _, d := range removed {
		z.broadcastDropRemoved(d)
	}
	return len(removed)
}

// sweepExpired removes expired drops without broadcasting, so it is safe to
// call with dropMu held. The caller announces the removals.
func (z *Zone) sweepExpired() []*model.DropItem {
	var removed []*model.DropItem
	z.drops.Range(func(k, v any) bool {
		d := v.(*model.DropItem)
		if !d.IsExpired() {
			return true
		}
		if _, ok := z.drops.LoadAndDelete(k); ok {
			z.dropCount.Add(-1)
			removed = append(removed, d)
		}
		return true
	})
	return removed
}

func (z *Zone) removeDrop(dropID uint32) {
	v, ok := z.drops.LoadAndDelete(dropID)
	if !ok {
		return
	}
	z.dropCount.Add(-1)
	z.broadcastDropRemoved(v.(*model.DropItem))
}

func (z *Zone) broadcastDropRemoved(d *model.DropItem) {
	z.BroadcastInRadius(d.Pos(), dropBroadcastRadius, func(p *model.Player) error {
		return z.notifier.SendDropRemoved(p, d.DropID())
	})
}

// Broadcast invokes action for every resident player. The player set is
// snapshotted before iterating so the action may itself mutate membership
// (a send can trigger a disconnect). Each recipient is re-validated right
// before its callback - still online, still logically resident here - and
// runs inside its own failure boundary: one failed delivery is logged and
// does not stop the rest.
func (z *Zone) Broadcast(action func(*model.Player) error) {
	z.broadcast(0, action)
}

// BroadcastExcept is Broadcast skipping one player id.
func (z *Zone) BroadcastExcept(exceptID uint32, action func(*model.Player) error) {
	z.broadcast(exceptID, action)
}

// BroadcastInRadius is Broadcast restricted to players within radius pixels
// of center on the same map.
func (z *Zone) BroadcastInRadius(center model.Position, radius int32, action func(*model.Player) error) {
	rr := int64(radius) * int64(radius)
	z.broadcast(0, func(p *model.Player) error {
		pos := p.Pos()
		if pos.MapID != center.MapID || pos.DistanceSquared(center) > rr {
			return nil
		}
		return action(p)
	})
}

func (z *Zone) broadcast(exceptID uint32, action func(*model.Player) error) {
	for _, p := range z.playerSnapshot() {
		if p.ID() == exceptID {
			continue
		}
		// Membership may have changed since the snapshot.
		if !p.Online() || zoneOf(p) != z {
			continue
		}
		if err := action(p); err != nil {
			slog.Warn("broadcast delivery failed",
				"map", z.gameMap.ID(), "zone", z.id, "player", p.ID(), "err", err)
		}
	}
}

func (z *Zone) playerSnapshot() []*model.Player {
	snapshot := make([]*model.Player, 0, z.playerCount.Load()+4)
	z.players.Range(func(_, v any) bool {
		snapshot = append(snapshot, v.(*model.Player))
		return true
	})
	return snapshot
}

// Update is the leaf of the world tick tree: per-tick hooks for every
// still-online resident player and every still-bound monster, then the drop
// expiry sweep.
func (z *Zone) Update(delta time.Duration) {
	for _, p := range z.playerSnapshot() {
		if p.Online() && zoneOf(p) == z {
			p.Tick(delta)
		}
	}
	z.monsters.Range(func(_, v any) bool {
		m := v.(*model.Monster)
		if monsterZoneOf(m) == z {
			m.Tick(delta)
		}
		return true
	})
	z.CleanExpiredDrops()
}

// Validate compares the cached player counter against the registry size and
// self-heals on drift: the mismatch is logged as an integrity error and the
// counter reset to the true value. Diagnostic, never a crash.
func (z *Zone) Validate() {
	z.memberMu.Lock()
	defer z.memberMu.Unlock()

	actual := int32(0)
	z.players.Range(func(_, _ any) bool { actual++; return true })
	if cached := z.playerCount.Load(); cached != actual {
		slog.Error("zone player count drift, self-healing",
			"map", z.gameMap.ID(), "zone", z.id, "cached", cached, "actual", actual)
		z.playerCount.Store(actual)
	}
}

// emptyFor returns how long the zone has been empty of players, 0 when
// occupied.
func (z *Zone) emptyFor(now time.Time) time.Duration {
	since := z.emptySince.Load()
	if since == 0 {
		return 0
	}
	return now.Sub(time.UnixMilli(since))
}

// retire marks the zone dead if it has been empty of players for at least
// idleFor. The idle check and the flag share memberMu with AddPlayer, so an
// admission racing compaction either lands before the check (the zone is no
// longer idle and survives) or after the flag (the add is rejected). Once
// retired a zone never accepts players again.
func (z *Zone) retire(now time.Time, idleFor time.Duration) bool {
	z.memberMu.Lock()
	defer z.memberMu.Unlock()

	if z.playerCount.Load() != 0 || z.emptyFor(now) < idleFor {
		return false
	}
	z.retired = true
	return true
}

// teardown marks the zone retired and evicts everything. Map/server shutdown
// and compaction only.
func (z *Zone) teardown() {
	z.memberMu.Lock()
	z.retired = true
	z.memberMu.Unlock()

	z.players.Range(func(k, v any) bool {
		z.RemovePlayer(k.(uint32))
		return true
	})
	z.monsters.Range(func(k, _ any) bool {
		z.RemoveMonster(k.(uint32))
		return true
	})
	z.drops.Range(func(k, _ any) bool {
		if _, ok := z.drops.LoadAndDelete(k); ok {
			z.dropCount.Add(-1)
		}
		return true
	})
}

// zoneOf resolves a player's zone back-reference.
func zoneOf(p *model.Player) *Zone {
	if ref := p.ZoneRef(); ref != nil {
		if z, ok := ref.(*Zone); ok {
			return z
		}
	}
	return nil
}

func monsterZoneOf(m *model.Monster) *Zone {
	if ref := m.ZoneRef(); ref != nil {
		if z, ok := ref.(*Zone); ok {
			return z
		}
	}
	return nil
}
