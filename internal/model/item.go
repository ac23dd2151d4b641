package model

// Item is a reference to an item definition. The world core never interprets
// item semantics; it only moves references between the ground and players.
type Item struct {
	ID        int32
	Name      string
	Stackable bool
}

// NewItem creates an item reference.
func NewItem(id int32, name string, stackable bool) *Item {
	return &Item{ID: id, Name: name, Stackable: stackable}
}
