package model

// Tile grid constants. Maps are addressed in pixels; the collision/warp grid
// divides them into fixed-size square tiles.
const (
	// TileShift - shift by N bits for 2^N pixels per tile (2^5 = 32)
	TileShift = 5

	// TileSize in pixels
	TileSize = 1 << TileShift
)

// Position is a point in the game world: map id plus pixel coordinates.
// Value type, passed by value (immutable).
type Position struct {
	MapID int32
	X     int32
	Y     int32
}

// NewPosition creates a Position with the given coordinates.
func NewPosition(mapID, x, y int32) Position {
	return Position{MapID: mapID, X: x, Y: y}
}

// Tile returns the tile indexes for this position.
// Formula: pixelCoord >> TileShift
func (p Position) Tile() (tx, ty int32) {
	return p.X >> TileShift, p.Y >> TileShift
}

// WithCoordinates returns a new Position with updated pixel coordinates.
func (p Position) WithCoordinates(x, y int32) Position {
	p.X = x
	p.Y = y
	return p
}

// DistanceSquared returns the squared pixel distance to another point
// (no sqrt for performance). Map ids are not compared.
func (p Position) DistanceSquared(other Position) int64 {
	dx := int64(p.X - other.X)
	dy := int64(p.Y - other.Y)
	return dx*dx + dy*dy
}
