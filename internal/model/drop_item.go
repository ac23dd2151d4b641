package model

import "time"

// DropItem represents an item lying on the ground in a zone.
// Dropped by a monster on death (or discarded by a player), it is locked to
// its owner for a protection window and disappears entirely after its
// lifetime. All fields are set at construction and never mutated, so reads
// need no locking.
//
// Invariant: droppedAt <= lockUntil <= expireAt.
type DropItem struct {
	dropID  uint32 // unique within the owning zone
	mobID   uint32 // objectID of the monster that dropped it (0 = player discard)
	item    *Item
	count   int32
	pos     Position
	ownerID uint32 // player with pickup priority while locked

	droppedAt time.Time
	lockUntil time.Time
	expireAt  time.Time
}

// NewDropItem creates a drop at the given position, locked to ownerID for
// lock and removed from the world after lifetime.
func NewDropItem(dropID, mobID uint32, item *Item, count int32, pos Position, ownerID uint32, lock, lifetime time.Duration) *DropItem {
	return NewDropItemAt(dropID, mobID, item, count, pos, ownerID, lock, lifetime, time.Now())
}

// NewDropItemAt is NewDropItem with an explicit drop timestamp.
func NewDropItemAt(dropID, mobID uint32, item *Item, count int32, pos Position, ownerID uint32, lock, lifetime time.Duration, droppedAt time.Time) *DropItem {
	if item == nil {
		panic("NewDropItem: item cannot be nil")
	}
	if lock < 0 {
		lock = 0
	}
	if lifetime < lock {
		lifetime = lock
	}
	return &DropItem{
		dropID:    dropID,
		mobID:     mobID,
		item:      item,
		count:     count,
		pos:       pos,
		ownerID:   ownerID,
		droppedAt: droppedAt,
		lockUntil: droppedAt.Add(lock),
		expireAt:  droppedAt.Add(lifetime),
	}
}

// DropID returns the zone-unique drop id.
func (d *DropItem) DropID() uint32 { return d.dropID }

// MobID returns the objectID of the source monster (0 for player discards).
func (d *DropItem) MobID() uint32 { return d.mobID }

// Item returns the item reference.
func (d *DropItem) Item() *Item { return d.item }

// Count returns the quantity.
func (d *DropItem) Count() int32 { return d.count }

// Pos returns the drop position.
func (d *DropItem) Pos() Position { return d.pos }

// OwnerID returns the player with pickup priority while the lock holds.
func (d *DropItem) OwnerID() uint32 { return d.ownerID }

// DroppedAt returns when the item hit the ground.
func (d *DropItem) DroppedAt() time.Time { return d.droppedAt }

// CanPickup reports whether playerID may pick this item up right now:
// the owner always may, everyone else only once the lock window has passed.
func (d *DropItem) CanPickup(playerID uint32) bool {
	if playerID == d.ownerID {
		return true
	}
	return !time.Now().Before(d.lockUntil)
}

// IsExpired reports whether the drop's lifetime has run out.
func (d *DropItem) IsExpired() bool {
	return !time.Now().Before(d.expireAt)
}

// RemainingLockSeconds returns the whole seconds (rounded up) until the
// ownership lock releases. Zero once unlocked.
func (d *DropItem) RemainingLockSeconds() int64 {
	return ceilSeconds(time.Until(d.lockUntil))
}

// RemainingLifetimeSeconds returns the whole seconds (rounded up) until the
// drop expires. Zero once expired.
func (d *DropItem) RemainingLifetimeSeconds() int64 {
	return ceilSeconds(time.Until(d.expireAt))
}

func ceilSeconds(dur time.Duration) int64 {
	if dur <= 0 {
		return 0
	}
	return int64((dur + time.Second - 1) / time.Second)
}
