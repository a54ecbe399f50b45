package collision

// Event payloads published on the core event bus. Closed struct types; the
// bus keys delivery by concrete type so consumers subscribe to exactly what
// they handle.

// ObstacleChange says what happened to a static obstacle.
type ObstacleChange uint8

const (
	ObstacleAdded ObstacleChange = iota
	ObstacleRemoved
)

// ObstacleChanged is fired once per STATIC body add or remove so systems
// keyed on world geometry (pathfinding grids, nav caches) can invalidate
// selectively. Radius always exceeds the body's half extent and grows with
// the obstacle, giving consumers a safety margin around the change.
// Movable bodies never produce this event.
type ObstacleChanged struct {
	Change   ObstacleChange
	Position Vec2
	Radius   float64
}

// TriggerFired reports one enter or exit edge of a (trigger, detector) pair.
type TriggerFired struct {
	TriggerID  uint64
	DetectorID uint64
	Tag        TriggerTag
	Phase      TriggerPhase
	Position   Vec2
}
