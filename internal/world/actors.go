package world

import (
	"sort"

	"go.uber.org/zap"

	"github.com/riftgate/server/internal/collision"
	"github.com/riftgate/server/internal/core/ecs"
	"github.com/riftgate/server/internal/core/event"
)

// Actor holds the in-memory state of one movable body in the world.
// Accessed only from the game loop goroutine — no locks needed.
type Actor struct {
	ID   ecs.EntityID
	Name string
	Kind collision.BodyType

	Pos   collision.Vec2
	Vel   collision.Vec2
	HalfW float64
	HalfH float64

	Layer uint32
	Mask  uint32

	Enabled         bool
	DetectsTriggers bool
	Player          bool
}

// SpawnParams describes a new actor. Zero half extents are legal; the body
// stays queryable as a point.
type SpawnParams struct {
	Name  string
	Kind  collision.BodyType
	Pos   collision.Vec2
	HalfW float64
	HalfH float64
	Layer uint32
	Mask  uint32

	Player bool
	// DetectsTriggers opts a non-player actor into trigger detection.
	// Players always detect.
	DetectsTriggers bool
}

// ActorStore is the slot-indexed movable body store the collision engine
// reads from and writes resolved positions back into. Slots are reused after
// despawn; the generational EntityID is what tells a new occupant apart from
// the old one.
type ActorStore struct {
	pool   *ecs.EntityPool
	actors []Actor
	alive  []bool
	active []int // sorted slot indices of live actors
	bus    *event.Bus
	log    *zap.Logger
}

func NewActorStore(bus *event.Bus, log *zap.Logger) *ActorStore {
	return &ActorStore{
		pool: ecs.NewEntityPool(),
		bus:  bus,
		log:  log,
	}
}

func (s *ActorStore) Spawn(p SpawnParams) ecs.EntityID {
	id := s.pool.Create()
	idx := int(id.Index())
	for idx >= len(s.actors) {
		s.actors = append(s.actors, Actor{})
		s.alive = append(s.alive, false)
	}
	s.actors[idx] = Actor{
		ID:              id,
		Name:            p.Name,
		Kind:            p.Kind,
		Pos:             p.Pos,
		HalfW:           p.HalfW,
		HalfH:           p.HalfH,
		Layer:           p.Layer,
		Mask:            p.Mask,
		Enabled:         true,
		DetectsTriggers: p.Player || p.DetectsTriggers,
		Player:          p.Player,
	}
	s.alive[idx] = true

	pos := sort.SearchInts(s.active, idx)
	s.active = append(s.active, 0)
	copy(s.active[pos+1:], s.active[pos:])
	s.active[pos] = idx

	event.Emit(s.bus, event.ActorSpawned{EntityID: id, Index: idx})
	s.log.Debug("actor spawned",
		zap.Uint64("id", uint64(id)),
		zap.String("name", p.Name))
	return id
}

// Despawn retires an actor. Stale or unknown ids are a no-op. The slot index
// becomes reusable immediately; holders of the old id see it as dead.
func (s *ActorStore) Despawn(id ecs.EntityID) {
	if !s.pool.Alive(id) {
		return
	}
	idx := int(id.Index())
	s.pool.Destroy(id)
	s.alive[idx] = false

	pos := sort.SearchInts(s.active, idx)
	if pos < len(s.active) && s.active[pos] == idx {
		s.active = append(s.active[:pos], s.active[pos+1:]...)
	}

	event.Emit(s.bus, event.ActorDespawned{EntityID: id, Index: idx})
	s.log.Debug("actor despawned", zap.Uint64("id", uint64(id)))
}

// Get returns the live actor for id, or nil for stale and unknown ids.
func (s *ActorStore) Get(id ecs.EntityID) *Actor {
	if !s.pool.Alive(id) {
		return nil
	}
	return &s.actors[id.Index()]
}

func (s *ActorStore) Count() int { return s.pool.Live() }

// ActiveIndices returns the live slot indices in ascending order. The slice
// is owned by the store and valid until the next spawn or despawn.
func (s *ActorStore) ActiveIndices() []int { return s.active }

func (s *ActorStore) Movable(index int) (collision.Movable, bool) {
	if index < 0 || index >= len(s.actors) || !s.alive[index] {
		return collision.Movable{}, false
	}
	a := &s.actors[index]
	return collision.Movable{
		ID:              uint64(a.ID),
		Kind:            a.Kind,
		Pos:             a.Pos,
		Vel:             a.Vel,
		HalfW:           a.HalfW,
		HalfH:           a.HalfH,
		Layer:           a.Layer,
		Mask:            a.Mask,
		Enabled:         a.Enabled,
		DetectsTriggers: a.DetectsTriggers,
	}, true
}

func (s *ActorStore) SetMovable(index int, pos, vel collision.Vec2) {
	if index < 0 || index >= len(s.actors) || !s.alive[index] {
		return
	}
	s.actors[index].Pos = pos
	s.actors[index].Vel = vel
}
