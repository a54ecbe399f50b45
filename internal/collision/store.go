package collision

// Movable is the per-index hot view of a moving actor. The engine does not
// own this data; it reads it from the external actor store each tick and
// writes resolved positions back through the same store.
type Movable struct {
	ID    uint64 // generational entity id; index reuse changes it
	Kind  BodyType
	Pos   Vec2
	Vel   Vec2
	HalfW float64
	HalfH float64
	Layer uint32
	Mask  uint32

	Enabled         bool // participates in collision at all
	DetectsTriggers bool // set for player-controlled actors, opt-in for NPCs
}

func (m *Movable) AABB() AABB {
	return AABB{Center: m.Pos, Half: Vec2{m.HalfW, m.HalfH}}
}

// MovableStore is the engine's window onto the external actor data store.
// ActiveIndices is the tiering system's pick of which actors matter this
// tick; the engine must not assume an index keeps naming the same actor
// across ticks.
type MovableStore interface {
	// ActiveIndices returns the indices to process this tick. The slice is
	// owned by the store and valid until the next tick.
	ActiveIndices() []int

	// Movable returns the hot fields for an index. ok is false for indices
	// that are out of range or hold no live actor.
	Movable(index int) (Movable, bool)

	// SetMovable writes a resolved position and velocity back to the store.
	SetMovable(index int, pos, vel Vec2)
}
