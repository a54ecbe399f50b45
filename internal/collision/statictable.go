package collision

// StaticBody is one immovable entry in the static table. Trigger volumes are
// static bodies with the trigger fields set.
type StaticBody struct {
	ID     uint64
	Center Vec2
	Half   Vec2
	Layer  uint32
	Mask   uint32

	Trigger     bool
	Tag         TriggerTag
	TriggerType TriggerType

	// ExternalIndex links the body back to whatever owns it outside the
	// engine (tile coordinates, building id). NoIndex when unused.
	ExternalIndex int
}

func (b *StaticBody) AABB() AABB {
	return AABB{Center: b.Center, Half: b.Half}
}

// staticTable is a flat array-of-structs for immovable geometry. Removal is
// swap-with-last so the slice never leaves holes; the id map tracks the move.
// Every structural change bumps the generation, which is what invalidates
// broadphase caches built against the previous layout.
//
// Mutated only from the tick-owning goroutine; workers read a stable
// snapshot for the duration of a tick.
type staticTable struct {
	bodies []StaticBody
	index  map[uint64]int
	gen    uint64
}

func newStaticTable() staticTable {
	return staticTable{
		bodies: make([]StaticBody, 0, 256),
		index:  make(map[uint64]int, 256),
	}
}

func (t *staticTable) generation() uint64 { return t.gen }

func (t *staticTable) len() int { return len(t.bodies) }

func (t *staticTable) at(i int) *StaticBody { return &t.bodies[i] }

func (t *staticTable) lookup(id uint64) (int, bool) {
	i, ok := t.index[id]
	return i, ok
}

func (t *staticTable) add(b StaticBody) int {
	if i, ok := t.index[b.ID]; ok {
		t.bodies[i] = b
		t.gen++
		return i
	}
	i := len(t.bodies)
	t.bodies = append(t.bodies, b)
	t.index[b.ID] = i
	t.gen++
	return i
}

// remove drops id from the table. Unknown ids are a no-op; the removed body
// is returned so the caller can unhook spatial registrations.
func (t *staticTable) remove(id uint64) (StaticBody, bool) {
	i, ok := t.index[id]
	if !ok {
		return StaticBody{}, false
	}
	removed := t.bodies[i]
	last := len(t.bodies) - 1
	if i != last {
		t.bodies[i] = t.bodies[last]
		t.index[t.bodies[i].ID] = i
	}
	t.bodies = t.bodies[:last]
	delete(t.index, id)
	t.gen++
	return removed, true
}

func (t *staticTable) resize(id uint64, half Vec2) (*StaticBody, bool) {
	i, ok := t.index[id]
	if !ok {
		return nil, false
	}
	if half.X < 0 {
		half.X = 0
	}
	if half.Y < 0 {
		half.Y = 0
	}
	t.bodies[i].Half = half
	t.gen++
	return &t.bodies[i], true
}

// reposition is the rare moving-platform path.
func (t *staticTable) reposition(id uint64, center Vec2) (*StaticBody, bool) {
	i, ok := t.index[id]
	if !ok {
		return nil, false
	}
	t.bodies[i].Center = center
	t.gen++
	return &t.bodies[i], true
}
