package data

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/riftgate/server/internal/collision"
)

// StaticEntry defines one immovable body in a level file.
type StaticEntry struct {
	ID    uint64   `yaml:"id"`
	X     float64  `yaml:"x"`
	Y     float64  `yaml:"y"`
	HalfW float64  `yaml:"half_w"`
	HalfH float64  `yaml:"half_h"`
	Layer string   `yaml:"layer"`
	Mask  []string `yaml:"mask"`
	Note  string   `yaml:"note"`
}

// TriggerEntry defines one trigger volume.
type TriggerEntry struct {
	X     float64  `yaml:"x"`
	Y     float64  `yaml:"y"`
	HalfW float64  `yaml:"half_w"`
	HalfH float64  `yaml:"half_h"`
	Tag   string   `yaml:"tag"`
	Type  string   `yaml:"type"` // "physical" or "event_only"
	Layer string   `yaml:"layer"`
	Mask  []string `yaml:"mask"`

	// Cooldown overrides the engine default for this trigger, in seconds.
	// Zero means inherit.
	Cooldown float64 `yaml:"cooldown"`
}

// SpawnEntry defines one actor placed at level load.
type SpawnEntry struct {
	Name            string   `yaml:"name"`
	Kind            string   `yaml:"kind"` // "kinematic" or "dynamic"
	X               float64  `yaml:"x"`
	Y               float64  `yaml:"y"`
	HalfW           float64  `yaml:"half_w"`
	HalfH           float64  `yaml:"half_h"`
	Layer           string   `yaml:"layer"`
	Mask            []string `yaml:"mask"`
	Player          bool     `yaml:"player"`
	DetectsTriggers bool     `yaml:"detects_triggers"`
}

// Level is one parsed level file.
type Level struct {
	Statics  []StaticEntry  `yaml:"statics"`
	Triggers []TriggerEntry `yaml:"triggers"`
	Spawns   []SpawnEntry   `yaml:"spawns"`
}

// LoadLevel loads and validates a level yaml. Unknown layer, tag, type or
// kind names are errors; a level with a typo should fail at boot, not
// silently collide with nothing.
func LoadLevel(path string) (*Level, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read level: %w", err)
	}
	var lvl Level
	if err := yaml.Unmarshal(raw, &lvl); err != nil {
		return nil, fmt.Errorf("parse level: %w", err)
	}

	for i := range lvl.Statics {
		e := &lvl.Statics[i]
		if _, err := ResolveLayer(e.Layer); err != nil {
			return nil, fmt.Errorf("static %d: %w", e.ID, err)
		}
		if _, err := ResolveMask(e.Mask); err != nil {
			return nil, fmt.Errorf("static %d: %w", e.ID, err)
		}
	}
	for i := range lvl.Triggers {
		e := &lvl.Triggers[i]
		if _, err := ResolveTag(e.Tag); err != nil {
			return nil, fmt.Errorf("trigger %d: %w", i, err)
		}
		if _, err := ResolveTriggerType(e.Type); err != nil {
			return nil, fmt.Errorf("trigger %d: %w", i, err)
		}
		if _, err := ResolveLayer(e.Layer); err != nil {
			return nil, fmt.Errorf("trigger %d: %w", i, err)
		}
		if _, err := ResolveMask(e.Mask); err != nil {
			return nil, fmt.Errorf("trigger %d: %w", i, err)
		}
	}
	for i := range lvl.Spawns {
		e := &lvl.Spawns[i]
		if _, err := ResolveBodyKind(e.Kind); err != nil {
			return nil, fmt.Errorf("spawn %q: %w", e.Name, err)
		}
		if _, err := ResolveLayer(e.Layer); err != nil {
			return nil, fmt.Errorf("spawn %q: %w", e.Name, err)
		}
		if _, err := ResolveMask(e.Mask); err != nil {
			return nil, fmt.Errorf("spawn %q: %w", e.Name, err)
		}
	}
	return &lvl, nil
}

var layerNames = map[string]uint32{
	"default":     collision.LayerDefault,
	"player":      collision.LayerPlayer,
	"enemy":       collision.LayerEnemy,
	"environment": collision.LayerEnvironment,
	"projectile":  collision.LayerProjectile,
	"trigger":     collision.LayerTrigger,
}

// ResolveLayer maps a layer name to its bit. Empty means default.
func ResolveLayer(name string) (uint32, error) {
	if name == "" {
		return collision.LayerDefault, nil
	}
	if bit, ok := layerNames[strings.ToLower(name)]; ok {
		return bit, nil
	}
	return 0, fmt.Errorf("unknown layer %q", name)
}

// ResolveMask folds a list of layer names into a bitmask. An empty list
// means collide with everything.
func ResolveMask(names []string) (uint32, error) {
	if len(names) == 0 {
		return collision.MaskAll, nil
	}
	var mask uint32
	for _, n := range names {
		if strings.ToLower(n) == "all" {
			return collision.MaskAll, nil
		}
		bit, err := ResolveLayer(n)
		if err != nil {
			return 0, err
		}
		mask |= bit
	}
	return mask, nil
}

var tagNames = map[string]collision.TriggerTag{
	"":           collision.TagNone,
	"none":       collision.TagNone,
	"water":      collision.TagWater,
	"lava":       collision.TagLava,
	"portal":     collision.TagPortal,
	"checkpoint": collision.TagCheckpoint,
}

func ResolveTag(name string) (collision.TriggerTag, error) {
	if tag, ok := tagNames[strings.ToLower(name)]; ok {
		return tag, nil
	}
	return collision.TagNone, fmt.Errorf("unknown trigger tag %q", name)
}

func ResolveTriggerType(name string) (collision.TriggerType, error) {
	switch strings.ToLower(name) {
	case "", "event_only":
		return collision.TriggerEventOnly, nil
	case "physical":
		return collision.TriggerPhysical, nil
	}
	return collision.TriggerEventOnly, fmt.Errorf("unknown trigger type %q", name)
}

func ResolveBodyKind(name string) (collision.BodyType, error) {
	switch strings.ToLower(name) {
	case "", "dynamic":
		return collision.BodyDynamic, nil
	case "kinematic":
		return collision.BodyKinematic, nil
	}
	return collision.BodyDynamic, fmt.Errorf("unknown body kind %q", name)
}
