package event

import "github.com/riftgate/server/internal/core/ecs"

// Actor lifecycle events produced by the world store.

type ActorSpawned struct {
	EntityID ecs.EntityID
	Index    int
}

type ActorDespawned struct {
	EntityID ecs.EntityID
	Index    int
}
