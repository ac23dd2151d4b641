package world

import "sync/atomic"

// Monster objectIDs live above the template id range so an instance id can
// never collide with a template id coming out of the spawn tables.
const monsterIDBase = 0x20000000

// monsterIDAllocator hands out globally unique monster objectIDs across all
// maps of one world.
type monsterIDAllocator struct {
	counter atomic.Uint32
}

func newMonsterIDAllocator() *monsterIDAllocator {
	a := &monsterIDAllocator{}
	a.counter.Store(monsterIDBase)
	return a
}

// next returns the next unused objectID.
func (a *monsterIDAllocator) next() uint32 {
	return a.counter.Add(1)
}
