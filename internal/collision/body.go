package collision

// BodyType distinguishes how a body is tracked.
// STATIC bodies never move after creation (resize/removal still allowed).
// KINEMATIC and DYNAMIC both live in the movable tier for broadphase purposes;
// they carry separate counters for diagnostics only.
type BodyType uint8

const (
	BodyStatic BodyType = iota
	BodyKinematic
	BodyDynamic
)

// Collision layers. A body carries one layer bit (what it is) and a mask
// (what it reacts to). Two bodies interact only with symmetric consent:
// (A.mask & B.layer) != 0 && (B.mask & A.layer) != 0.
const (
	LayerDefault     uint32 = 1 << 0
	LayerPlayer      uint32 = 1 << 1
	LayerEnemy       uint32 = 1 << 2
	LayerEnvironment uint32 = 1 << 3
	LayerProjectile  uint32 = 1 << 4
	LayerTrigger     uint32 = 1 << 5

	MaskAll uint32 = 0xFFFFFFFF
)

// TriggerTag tells the consumer what kind of volume fired.
type TriggerTag uint8

const (
	TagNone TriggerTag = iota
	TagWater
	TagLava
	TagPortal
	TagCheckpoint
)

func (t TriggerTag) String() string {
	switch t {
	case TagWater:
		return "water"
	case TagLava:
		return "lava"
	case TagPortal:
		return "portal"
	case TagCheckpoint:
		return "checkpoint"
	default:
		return "none"
	}
}

// TriggerType controls whether a trigger also blocks movement.
type TriggerType uint8

const (
	// TriggerPhysical resolves like a solid static body and fires events.
	TriggerPhysical TriggerType = iota
	// TriggerEventOnly detects overlap but never blocks or gets resolved.
	TriggerEventOnly
)

// TriggerPhase is the edge reported for a (trigger, detector) pair.
type TriggerPhase uint8

const (
	PhaseEnter TriggerPhase = iota
	PhaseExit
)

func (p TriggerPhase) String() string {
	if p == PhaseExit {
		return "exit"
	}
	return "enter"
}

// NoIndex marks an index slot in CollisionInfo that does not apply.
const NoIndex = -1

// CollisionInfo describes one resolved or detected overlap, delivered to
// registered callbacks. For movable pairs A is the lower-id body and both
// indices refer to the movable store. For static contacts A is the movable
// (store index) and B is the static body (table index).
type CollisionInfo struct {
	A                uint64
	B                uint64
	IndexA           int  // storage index of A, NoIndex when not applicable
	IndexB           int  // storage index of B, NoIndex when not applicable
	Normal           Vec2 // unit vector on the least-penetration axis, A toward B
	Penetration      float64
	Trigger          bool
	MovableVsMovable bool
}
