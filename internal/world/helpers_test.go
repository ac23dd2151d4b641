package world

import (
	"sync"
	"testing"

	"github.com/openmyr/myrgo/internal/data"
	"github.com/openmyr/myrgo/internal/model"
)

func testMonsterRegistry(t *testing.T) *data.MonsterRegistry {
	t.Helper()
	reg, err := data.NewMonsterRegistry([]*data.MonsterTemplate{
		{ID: 101, Name: "Harbor Rat", Level: 2, MaxHP: 40},
		{ID: 102, Name: "Grey Wolf", Level: 7, MaxHP: 160, Aggressive: true},
	})
	if err != nil {
		t.Fatalf("NewMonsterRegistry() error = %v", err)
	}
	return reg
}

func testMapTemplate(id, maxPlayers, maxDrops int32) *data.MapTemplate {
	return &data.MapTemplate{
		ID:         id,
		Name:       "test map",
		Width:      8192,
		Height:     8192,
		MaxPlayers: maxPlayers,
		MaxDrops:   maxDrops,
	}
}

func newTestMap(t *testing.T, tmpl *data.MapTemplate) *GameMap {
	t.Helper()
	return NewGameMap(tmpl, testMonsterRegistry(t), newMonsterIDAllocator(), NopNotifier{})
}

func newTestPlayer(id uint32, name string) *model.Player {
	p := model.NewPlayer(id, name, model.NewPosition(0, 0, 0))
	p.SetOnline(true)
	return p
}

// recordingNotifier captures notifications for assertions.
type recordingNotifier struct {
	NopNotifier

	mu     sync.Mutex
	events []notifyEvent
}

type notifyEvent struct {
	kind    string
	to      uint32
	subject uint32
}

func (n *recordingNotifier) record(kind string, to, subject uint32) {
	n.mu.Lock()
	n.events = append(n.events, notifyEvent{kind: kind, to: to, subject: subject})
	n.mu.Unlock()
}

func (n *recordingNotifier) SendMapChange(to *model.Player, pos model.Position) error {
	n.record("map_change", to.ID(), uint32(pos.MapID))
	return nil
}

func (n *recordingNotifier) SendPlayerEnter(to, subject *model.Player) error {
	n.record("enter", to.ID(), subject.ID())
	return nil
}

func (n *recordingNotifier) SendPlayerExit(to *model.Player, subjectID uint32) error {
	n.record("exit", to.ID(), subjectID)
	return nil
}

func (n *recordingNotifier) SendMonsterInfo(to *model.Player, m *model.Monster) error {
	n.record("monster", to.ID(), m.ID())
	return nil
}

func (n *recordingNotifier) SendEquipment(to, subject *model.Player) error {
	n.record("equipment", to.ID(), subject.ID())
	return nil
}

func (n *recordingNotifier) SendMountState(to, subject *model.Player) error {
	n.record("mount", to.ID(), subject.ID())
	return nil
}

func (n *recordingNotifier) count(kind string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, e := range n.events {
		if e.kind == kind {
			c++
		}
	}
	return c
}

func (n *recordingNotifier) has(kind string, to, subject uint32) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, e := range n.events {
		if e.kind == kind && e.to == to && e.subject == subject {
			return true
		}
	}
	return false
}
