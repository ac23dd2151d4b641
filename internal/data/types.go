package data

// MapTemplate is the static description of one logical map: dimensions,
// per-zone capacity, classification flags, and the spawn/warp tables used
// when new zones are stamped out.
//
// Templates are immutable once loaded. A data reload produces fresh template
// values that are swapped in atomically (see world.Manager.ReloadMapData);
// nothing mutates a template in place.
type MapTemplate struct {
	ID     int32
	Name   string
	Width  int32 // pixels
	Height int32 // pixels

	// MaxPlayers caps each zone sharding this map. Zero disables the map.
	MaxPlayers int32

	// MaxDrops caps the ground-item table per zone.
	MaxDrops int32

	// Battle marks arena-style maps players need clearance to stay on.
	Battle bool

	// Return is where players are relocated when they may not stay here.
	ReturnMapID int32
	ReturnX     int32
	ReturnY     int32

	// Spawns lists one entry per monster instantiated in every new zone.
	Spawns []SpawnPoint

	// Warps lists trigger regions in declaration order. Order is load-bearing:
	// overlapping warps resolve to the first match, not the nearest.
	Warps []Warp
}

// SpawnPoint places one monster template inside every zone of a map.
type SpawnPoint struct {
	TemplateID int32
	X          int32
	Y          int32
}

// Warp is a trigger region that moves a player to another map. A position
// triggers the warp when within WarpRange of (X, Y) on both axes
// independently.
type Warp struct {
	X       int32
	Y       int32
	ToMapID int32
	ToX     int32
	ToY     int32
}

// WarpRange is the per-axis trigger distance in pixels.
const WarpRange = 2 * 32 // two tiles

// Covers reports whether (x, y) lies inside this warp's trigger region.
func (w *Warp) Covers(x, y int32) bool {
	return abs32(x-w.X) <= WarpRange && abs32(y-w.Y) <= WarpRange
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

// MonsterTemplate is the static definition a spawned monster instance is
// stamped from. Consulted only at zone-creation time.
type MonsterTemplate struct {
	ID         int32
	Name       string
	Level      int32
	MaxHP      int32
	Aggressive bool
}
