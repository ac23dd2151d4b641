package world

import "github.com/openmyr/myrgo/internal/model"

// Notifier is the outbound notification collaborator. The world core decides
// who must be told what and when; the implementation owns encoding and
// transport. Calls must not block: implementations are expected to enqueue
// and return.
//
// An error from any method is a per-recipient delivery failure. The core logs
// it and carries on with the remaining recipients.
type Notifier interface {
	// SendMapChange tells the player their own map/position changed.
	SendMapChange(to *model.Player, pos model.Position) error

	// SendPlayerEnter tells `to` that `subject` is present at its position.
	SendPlayerEnter(to, subject *model.Player) error

	// SendPlayerExit tells `to` that the player left its zone.
	SendPlayerExit(to *model.Player, subjectID uint32) error

	// SendMonsterInfo tells `to` a monster's position and identity.
	SendMonsterInfo(to *model.Player, m *model.Monster) error

	// SendEquipment tells `to` the subject's visible equipment state.
	SendEquipment(to, subject *model.Player) error

	// SendMountState tells `to` the subject's mount state.
	SendMountState(to, subject *model.Player) error

	// SendDropItem tells `to` an item appeared on the ground.
	SendDropItem(to *model.Player, d *model.DropItem) error

	// SendDropRemoved tells `to` a ground item vanished (pickup or expiry).
	SendDropRemoved(to *model.Player, dropID uint32) error
}

// NopNotifier discards every notification. Useful in tests and tools that
// drive the world without clients attached.
type NopNotifier struct{}

func (NopNotifier) SendMapChange(*model.Player, model.Position) error   { return nil }
func (NopNotifier) SendPlayerEnter(*model.Player, *model.Player) error  { return nil }
func (NopNotifier) SendPlayerExit(*model.Player, uint32) error          { return nil }
func (NopNotifier) SendMonsterInfo(*model.Player, *model.Monster) error { return nil }
func (NopNotifier) SendEquipment(*model.Player, *model.Player) error    { return nil }
func (NopNotifier) SendMountState(*model.Player, *model.Player) error   { return nil }
func (NopNotifier) SendDropItem(*model.Player, *model.DropItem) error   { return nil }
func (NopNotifier) SendDropRemoved(*model.Player, uint32) error         { return nil }
