package collision

import "sort"

// DefaultSAPThreshold is the detector population at which trigger evaluation
// switches from per-detector hash queries to a sweep-and-prune pass.
const DefaultSAPThreshold = 50

type triggerPairKey struct {
	trigger  uint64
	detector uint64
}

type detectorView struct {
	id    uint64
	box   AABB
	layer uint32
	mask  uint32
}

type triggerView struct {
	id    uint64
	box   AABB
	layer uint32
	mask  uint32
	tag   TriggerTag
}

// triggerSystem tracks the Outside/Entering/Inside/Exiting machine for every
// (trigger, detector) pair. Enter fires on the first overlapping tick, gated
// by the trigger's cooldown; while overlap persists nothing repeats; Exit
// fires once on the tick overlap ceases. Cooldowns run on simulated time so
// a paused loop never leaks real seconds into the gate.
type triggerSystem struct {
	hash *SpatialHash // trigger volumes by id

	defaultCooldown float64
	cooldown        map[uint64]float64 // per-trigger override
	lastEnter       map[uint64]float64 // trigger id -> sim time of last fired Enter
	inside          map[triggerPairKey]struct{}

	sapThreshold int

	queryBuf []uint64
}

func newTriggerSystem(cellSize, defaultCooldown float64, sapThreshold int) *triggerSystem {
	if defaultCooldown < 0 {
		defaultCooldown = 0
	}
	if sapThreshold <= 0 {
		sapThreshold = DefaultSAPThreshold
	}
	return &triggerSystem{
		hash:            NewSpatialHash(cellSize, 0),
		defaultCooldown: defaultCooldown,
		cooldown:        make(map[uint64]float64),
		lastEnter:       make(map[uint64]float64),
		inside:          make(map[triggerPairKey]struct{}),
		sapThreshold:    sapThreshold,
	}
}

func (s *triggerSystem) setDefaultCooldown(seconds float64) {
	if seconds < 0 {
		seconds = 0
	}
	s.defaultCooldown = seconds
}

func (s *triggerSystem) setCooldown(trigger uint64, seconds float64) {
	if seconds < 0 {
		seconds = 0
	}
	s.cooldown[trigger] = seconds
}

func (s *triggerSystem) cooldownFor(trigger uint64) float64 {
	if cd, ok := s.cooldown[trigger]; ok {
		return cd
	}
	return s.defaultCooldown
}

// dropTrigger forgets a removed trigger volume. Pairs that were inside are
// dropped without an exit edge; the volume no longer exists to be left.
func (s *triggerSystem) dropTrigger(trigger uint64) {
	s.hash.Remove(trigger)
	delete(s.cooldown, trigger)
	delete(s.lastEnter, trigger)
	for k := range s.inside {
		if k.trigger == trigger {
			delete(s.inside, k)
		}
	}
}

// evaluate runs one tick of trigger detection and returns the enter/exit
// edges in deterministic order. triggers must contain every live trigger
// volume; detectors only the actors flagged for trigger detection. Both
// strategies produce the same overlap set, so the emitted sequences are
// identical for a given position history regardless of population size.
func (s *triggerSystem) evaluate(detectors []detectorView, triggers []triggerView, now float64) []TriggerFired {
	var current map[triggerPairKey]triggerView
	if len(detectors) >= s.sapThreshold {
		current = s.overlapsBySweep(detectors, triggers)
	} else {
		current = s.overlapsByQuery(detectors, triggers)
	}

	var events []TriggerFired

	// The cooldown gate admits the first Enter per trigger and suppresses the
	// rest, so the candidates must be visited in a fixed order or the winner
	// would depend on map iteration.
	entering := make([]triggerPairKey, 0, len(current))
	for key := range current {
		if _, was := s.inside[key]; was {
			continue
		}
		entering = append(entering, key)
	}
	sort.Slice(entering, func(i, j int) bool {
		if entering[i].trigger != entering[j].trigger {
			return entering[i].trigger < entering[j].trigger
		}
		return entering[i].detector < entering[j].detector
	})

	for _, key := range entering {
		tv := current[key]
		s.inside[key] = struct{}{}
		cd := s.cooldownFor(key.trigger)
		if last, fired := s.lastEnter[key.trigger]; fired && cd > 0 && now-last < cd {
			// Cooldown suppresses the Enter edge; the pair is still marked
			// inside so leaving produces a normal Exit.
			continue
		}
		s.lastEnter[key.trigger] = now
		events = append(events, TriggerFired{
			TriggerID:  key.trigger,
			DetectorID: key.detector,
			Tag:        tv.tag,
			Phase:      PhaseEnter,
			Position:   tv.box.Center,
		})
	}

	for key := range s.inside {
		if _, still := current[key]; still {
			continue
		}
		delete(s.inside, key)
		pos := Vec2{}
		tag := TagNone
		for _, tv := range triggers {
			if tv.id == key.trigger {
				pos = tv.box.Center
				tag = tv.tag
				break
			}
		}
		events = append(events, TriggerFired{
			TriggerID:  key.trigger,
			DetectorID: key.detector,
			Tag:        tag,
			Phase:      PhaseExit,
			Position:   pos,
		})
	}

	sort.Slice(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if a.TriggerID != b.TriggerID {
			return a.TriggerID < b.TriggerID
		}
		if a.DetectorID != b.DetectorID {
			return a.DetectorID < b.DetectorID
		}
		return a.Phase < b.Phase
	})
	return events
}

// overlapsByQuery is the small-population path: one region query per
// detector against the trigger hash.
func (s *triggerSystem) overlapsByQuery(detectors []detectorView, triggers []triggerView) map[triggerPairKey]triggerView {
	byID := make(map[uint64]triggerView, len(triggers))
	for _, tv := range triggers {
		byID[tv.id] = tv
	}
	current := make(map[triggerPairKey]triggerView)
	for _, det := range detectors {
		s.hash.QueryRegion(det.box, &s.queryBuf)
		for _, tid := range s.queryBuf {
			tv, ok := byID[tid]
			if !ok {
				continue
			}
			if !layersConsent(det.layer, det.mask, tv.layer, tv.mask) {
				continue
			}
			if !det.box.Intersects(tv.box) {
				continue
			}
			current[triggerPairKey{trigger: tid, detector: det.id}] = tv
		}
	}
	return current
}

type sapEndpoint struct {
	value     float64
	index     int // into detectors or triggers
	isTrigger bool
	isMin     bool
}

// overlapsBySweep is the large-population path: sort every interval endpoint
// on X and sweep with a moving active set, testing only pairs whose X
// extents overlap. Amortizes well when a big detector crowd moves through a
// mostly static trigger layout.
func (s *triggerSystem) overlapsBySweep(detectors []detectorView, triggers []triggerView) map[triggerPairKey]triggerView {
	endpoints := make([]sapEndpoint, 0, 2*(len(detectors)+len(triggers)))
	for i, det := range detectors {
		endpoints = append(endpoints,
			sapEndpoint{det.box.Left(), i, false, true},
			sapEndpoint{det.box.Right(), i, false, false})
	}
	for i, tv := range triggers {
		endpoints = append(endpoints,
			sapEndpoint{tv.box.Left(), i, true, true},
			sapEndpoint{tv.box.Right(), i, true, false})
	}
	// Min endpoints sort before max at equal value so touching extents
	// still pair up, matching the inclusive AABB test.
	sort.Slice(endpoints, func(i, j int) bool {
		if endpoints[i].value != endpoints[j].value {
			return endpoints[i].value < endpoints[j].value
		}
		return endpoints[i].isMin && !endpoints[j].isMin
	})

	current := make(map[triggerPairKey]triggerView)
	var activeDet, activeTrig []int

	pair := func(di, ti int) {
		det := detectors[di]
		tv := triggers[ti]
		if !layersConsent(det.layer, det.mask, tv.layer, tv.mask) {
			return
		}
		if !det.box.Intersects(tv.box) {
			return
		}
		current[triggerPairKey{trigger: tv.id, detector: det.id}] = tv
	}

	for _, ep := range endpoints {
		switch {
		case ep.isMin && ep.isTrigger:
			for _, di := range activeDet {
				pair(di, ep.index)
			}
			activeTrig = append(activeTrig, ep.index)
		case ep.isMin:
			for _, ti := range activeTrig {
				pair(ep.index, ti)
			}
			activeDet = append(activeDet, ep.index)
		case ep.isTrigger:
			activeTrig = removeIndex(activeTrig, ep.index)
		default:
			activeDet = removeIndex(activeDet, ep.index)
		}
	}
	return current
}

func removeIndex(list []int, v int) []int {
	for i, x := range list {
		if x == v {
			list[i] = list[len(list)-1]
			return list[:len(list)-1]
		}
	}
	return list
}

// layersConsent applies the symmetric layer/mask rule: both sides must
// accept the other's layer.
func layersConsent(layerA, maskA, layerB, maskB uint32) bool {
	return maskA&layerB != 0 && maskB&layerA != 0
}
