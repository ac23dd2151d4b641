package world

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmyr/myrgo/internal/data"
	"github.com/openmyr/myrgo/internal/model"
)

func newTestWorld(t *testing.T, notifier Notifier, templates ...*data.MapTemplate) *Manager {
	t.Helper()
	if len(templates) == 0 {
		templates = []*data.MapTemplate{
			testMapTemplate(0, 10, 10),
			testMapTemplate(1, 10, 10),
		}
	}
	wm := NewManager(notifier, testMonsterRegistry(t), DefaultConfig())
	wm.LoadMaps(templates)
	return wm
}

// countResidency scans every map's every zone for the player id.
func countResidency(wm *Manager, id uint32) int {
	n := 0
	for _, gm := range wm.gameMaps() {
		for _, z := range gm.Zones() {
			if z.HasPlayer(id) {
				n++
			}
		}
	}
	return n
}

func TestManager_TransitionToMap(t *testing.T) {
	notifier := &recordingNotifier{}
	wm := newTestWorld(t, notifier)

	p := newTestPlayer(1, "Aerin")
	ok := wm.TransitionToMap(p, model.NewPosition(0, 500, 500))
	require.True(t, ok)

	assert.Equal(t, 1, countResidency(wm, 1), "player resident in exactly one zone")
	assert.Equal(t, model.NewPosition(0, 500, 500), p.Pos(), "position set as one combined update")
	assert.True(t, notifier.has("map_change", 1, 0))
}

func TestManager_TransitionToUnknownMap_NoOp(t *testing.T) {
	wm := newTestWorld(t, NopNotifier{})

	p := newTestPlayer(1, "Aerin")
	require.True(t, wm.TransitionToMap(p, model.NewPosition(0, 500, 500)))

	ok := wm.TransitionToMap(p, model.NewPosition(42, 0, 0))
	assert.False(t, ok, "unknown map id is a recoverable no-op")
	assert.Equal(t, int32(0), p.Pos().MapID, "the player simply does not move")
}

func TestManager_ChangeMap_SingleResidency(t *testing.T) {
	wm := newTestWorld(t, NopNotifier{})

	p := newTestPlayer(1, "Aerin")
	require.True(t, wm.TransitionToMap(p, model.NewPosition(0, 100, 100)))
	require.True(t, wm.ChangeMap(p, model.NewPosition(1, 200, 200)))

	assert.Equal(t, 1, countResidency(wm, 1), "no dual membership after a map change")
	gm, _ := wm.GameMap(0)
	z0, _ := gm.Zone(0)
	assert.False(t, z0.HasPlayer(1), "player left the source zone")
}

func TestManager_ChangeMap_DuplicateConcurrentCommands(t *testing.T) {
	wm := newTestWorld(t, NopNotifier{})

	p := newTestPlayer(1, "Aerin")
	require.True(t, wm.TransitionToMap(p, model.NewPosition(0, 100, 100)))

	// duplicate in-flight move commands for one player: the per-player
	// transition lock serializes them
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		target := model.NewPosition(int32(i%2), 100, 100)
		go func() {
			defer wg.Done()
			wm.ChangeMap(p, target)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, countResidency(wm, 1), "exactly one residency after racing moves")
}

func TestManager_LeaveMap_Idempotent(t *testing.T) {
	notifier := &recordingNotifier{}
	wm := newTestWorld(t, notifier)

	p := newTestPlayer(1, "Aerin")
	observer := newTestPlayer(2, "Boren")
	require.True(t, wm.TransitionToMap(observer, model.NewPosition(0, 0, 0)))
	require.True(t, wm.TransitionToMap(p, model.NewPosition(0, 100, 100)))

	wm.LeaveMap(p)
	assert.Equal(t, 0, countResidency(wm, 1))
	assert.True(t, notifier.has("exit", 2, 1), "departure broadcast to the left zone only")

	exits := notifier.count("exit")
	wm.LeaveMap(p) // already zoneless
	assert.Equal(t, exits, notifier.count("exit"), "second leave is a no-op")
}

func TestManager_NotifyEnter_TwoWayDiff(t *testing.T) {
	notifier := &recordingNotifier{}
	tmpl := testMapTemplate(0, 10, 10)
	tmpl.Spawns = []data.SpawnPoint{{TemplateID: 101, X: 50, Y: 50}}
	wm := newTestWorld(t, notifier, tmpl)

	resident := newTestPlayer(1, "Old")
	require.True(t, wm.TransitionToMap(resident, model.NewPosition(0, 10, 10)))

	monsterNotices := notifier.count("monster")
	newcomer := newTestPlayer(2, "New")
	require.True(t, wm.TransitionToMap(newcomer, model.NewPosition(0, 20, 20)))

	assert.True(t, notifier.has("enter", 1, 2), "occupant told about newcomer")
	assert.True(t, notifier.has("enter", 2, 1), "newcomer told about occupant")
	assert.True(t, notifier.has("equipment", 1, 2), "equipment broadcast symmetrically")
	assert.True(t, notifier.has("equipment", 2, 1))
	assert.True(t, notifier.has("mount", 1, 2), "mount state rebroadcast on entry")
	assert.Equal(t, monsterNotices+1, notifier.count("monster"), "one position notice per present monster")
}

func TestManager_BattleMapRelocation(t *testing.T) {
	arena := testMapTemplate(2, 10, 10)
	arena.Battle = true
	arena.ReturnMapID = 0
	arena.ReturnX = 700
	arena.ReturnY = 800
	wm := newTestWorld(t, NopNotifier{}, testMapTemplate(0, 10, 10), arena)

	civilian := newTestPlayer(1, "Civ")
	require.True(t, wm.TransitionToMap(civilian, model.NewPosition(2, 100, 100)))
	assert.Equal(t, int32(0), civilian.Pos().MapID, "relocated off the battle map")
	assert.Equal(t, model.NewPosition(0, 700, 800), civilian.Pos())
	assert.Equal(t, 1, countResidency(wm, 1))

	fighter := newTestPlayer(2, "Fig")
	fighter.SetBattleReady(true)
	require.True(t, wm.TransitionToMap(fighter, model.NewPosition(2, 100, 100)))
	assert.Equal(t, int32(2), fighter.Pos().MapID, "battle-ready player stays")
}

func TestManager_FindPlayer(t *testing.T) {
	wm := newTestWorld(t, NopNotifier{})

	p := newTestPlayer(9, "Mira")
	require.True(t, wm.TransitionToMap(p, model.NewPosition(1, 10, 10)))

	got, ok := wm.FindPlayerByID(9)
	require.True(t, ok)
	assert.Same(t, p, got)

	got, ok = wm.FindPlayerByName("Mira")
	require.True(t, ok)
	assert.Same(t, p, got)

	_, ok = wm.FindPlayerByID(1000)
	assert.False(t, ok)
	_, ok = wm.FindPlayerByName("Nobody")
	assert.False(t, ok)
}

func TestManager_WorldBroadcast_SkipsClones(t *testing.T) {
	wm := newTestWorld(t, NopNotifier{})

	real1 := newTestPlayer(1, "Real")
	clone := model.NewClone(2, "Real*", model.NewPosition(0, 0, 0))
	clone.SetOnline(true)
	real2 := newTestPlayer(3, "Other")

	require.True(t, wm.TransitionToMap(real1, model.NewPosition(0, 0, 0)))
	require.True(t, wm.TransitionToMap(clone, model.NewPosition(0, 0, 0)))
	require.True(t, wm.TransitionToMap(real2, model.NewPosition(1, 0, 0)))

	var got []uint32
	var mu sync.Mutex
	wm.WorldBroadcast(func(p *model.Player) error {
		mu.Lock()
		got = append(got, p.ID())
		mu.Unlock()
		return nil
	})

	assert.ElementsMatch(t, []uint32{1, 3}, got)
}

func TestManager_ReloadMapData(t *testing.T) {
	wm := newTestWorld(t, NopNotifier{}, testMapTemplate(0, 2, 10))

	gm, _ := wm.GameMap(0)
	z0, _ := gm.Zone(0)

	fresh := testMapTemplate(0, 9, 10)
	newMap := testMapTemplate(5, 4, 10)
	wm.ReloadMapData([]*data.MapTemplate{fresh, newMap})

	assert.Equal(t, int32(9), z0.MaxPlayers(), "live zone observes the swapped template")
	_, ok := wm.GameMap(5)
	assert.True(t, ok, "unseen template inserted fresh")
	assert.Equal(t, 2, wm.MapCount())
}

func TestManager_UpdateRunsMaintenance(t *testing.T) {
	cfg := Config{IdleZoneTTL: time.Minute, CompactionInterval: time.Second}
	wm := NewManager(NopNotifier{}, testMonsterRegistry(t), cfg)
	wm.LoadMaps([]*data.MapTemplate{testMapTemplate(0, 1, 10)})

	gm, _ := wm.GameMap(0)
	wm.TransitionToMap(newTestPlayer(1, "a"), model.NewPosition(0, 0, 0))
	p2 := newTestPlayer(2, "b")
	wm.TransitionToMap(p2, model.NewPosition(0, 0, 0))
	require.Equal(t, 2, gm.ZoneCount())

	wm.LeaveMap(p2)
	z1, _ := gm.Zone(1)
	z1.emptySince.Store(time.Now().Add(-time.Hour).UnixMilli())

	// accumulate past the maintenance interval
	wm.Update(2 * time.Second)

	assert.Equal(t, 1, gm.ZoneCount(), "maintenance pass compacts the idle zone")
}

func TestManager_Shutdown(t *testing.T) {
	wm := newTestWorld(t, NopNotifier{})
	p := newTestPlayer(1, "Aerin")
	require.True(t, wm.TransitionToMap(p, model.NewPosition(0, 0, 0)))

	wm.Shutdown()

	assert.Equal(t, 0, wm.MapCount())
	assert.Nil(t, zoneOf(p))
}
