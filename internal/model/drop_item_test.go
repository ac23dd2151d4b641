package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDrop(t *testing.T, age, lock, lifetime time.Duration) *DropItem {
	t.Helper()
	pos := NewPosition(1, 100, 200)
	item := NewItem(57, "Gold", true)
	return NewDropItemAt(1, 5000, item, 10, pos, 42, lock, lifetime, time.Now().Add(-age))
}

func TestDropItem_OwnershipLock(t *testing.T) {
	// lock=1000ms, 500ms elapsed: owner may pick up, others may not
	d := testDrop(t, 500*time.Millisecond, time.Second, 2*time.Minute)

	assert.True(t, d.CanPickup(42), "owner should bypass the lock")
	assert.False(t, d.CanPickup(7), "non-owner should be locked out at t=500ms")

	// 1100ms elapsed: lock released for everyone
	d = testDrop(t, 1100*time.Millisecond, time.Second, 2*time.Minute)
	assert.True(t, d.CanPickup(7), "lock should release after 1000ms")
}

func TestDropItem_Expiry(t *testing.T) {
	d := testDrop(t, time.Second, 0, 2*time.Second)
	assert.False(t, d.IsExpired(), "not expired at t=1000ms of 2000ms")

	d = testDrop(t, 2100*time.Millisecond, 0, 2*time.Second)
	assert.True(t, d.IsExpired(), "expired at t=2100ms of 2000ms")
}

func TestDropItem_RemainingSeconds_CeilingDivided(t *testing.T) {
	d := testDrop(t, 0, 2500*time.Millisecond, 10*time.Second)

	assert.Equal(t, int64(3), d.RemainingLockSeconds(), "2.5s remaining rounds up to 3")
	assert.Equal(t, int64(10), d.RemainingLifetimeSeconds())

	expired := testDrop(t, time.Hour, time.Second, 2*time.Second)
	assert.Zero(t, expired.RemainingLockSeconds())
	assert.Zero(t, expired.RemainingLifetimeSeconds())
}

func TestDropItem_LifetimeNeverShorterThanLock(t *testing.T) {
	// droppedAt <= lockUntil <= expireAt must hold even for bad inputs
	d := testDrop(t, 0, 10*time.Second, time.Second)
	require.GreaterOrEqual(t, d.RemainingLifetimeSeconds(), d.RemainingLockSeconds())
}

func TestDropItem_NilItemPanics(t *testing.T) {
	assert.Panics(t, func() {
		NewDropItem(1, 0, nil, 1, Position{}, 0, 0, time.Minute)
	})
}
