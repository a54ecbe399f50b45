package collision

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTriggerSystem() *triggerSystem {
	return newTriggerSystem(64, 0, 0)
}

func addTrigger(ts *triggerSystem, id uint64, box AABB, tag TriggerTag) triggerView {
	ts.hash.Insert(id, box)
	return triggerView{id: id, box: box, layer: LayerTrigger, mask: MaskAll, tag: tag}
}

func det(id uint64, box AABB) detectorView {
	return detectorView{id: id, box: box, layer: LayerPlayer, mask: MaskAll}
}

func TestTriggerEnterExitSequence(t *testing.T) {
	ts := newTestTriggerSystem()
	tv := addTrigger(ts, 100, NewAABB(0, 0, 30, 30), TagWater)
	triggers := []triggerView{tv}

	inside := []detectorView{det(1, NewAABB(10, 10, 5, 5))}
	outside := []detectorView{det(1, NewAABB(500, 500, 5, 5))}

	events := ts.evaluate(inside, triggers, 0)
	require.Len(t, events, 1)
	assert.Equal(t, PhaseEnter, events[0].Phase)
	assert.Equal(t, uint64(100), events[0].TriggerID)
	assert.Equal(t, uint64(1), events[0].DetectorID)
	assert.Equal(t, TagWater, events[0].Tag)
	assert.Equal(t, Vec2{0, 0}, events[0].Position)

	// Staying inside emits nothing.
	events = ts.evaluate(inside, triggers, 1)
	assert.Empty(t, events)

	events = ts.evaluate(outside, triggers, 2)
	require.Len(t, events, 1)
	assert.Equal(t, PhaseExit, events[0].Phase)

	// Staying outside emits nothing either.
	events = ts.evaluate(outside, triggers, 3)
	assert.Empty(t, events)
}

func TestTriggerCooldown(t *testing.T) {
	ts := newTestTriggerSystem()
	tv := addTrigger(ts, 100, NewAABB(0, 0, 30, 30), TagLava)
	ts.setCooldown(100, 5.0)
	triggers := []triggerView{tv}

	inside := []detectorView{det(1, NewAABB(0, 0, 5, 5))}
	outside := []detectorView{det(1, NewAABB(500, 500, 5, 5))}

	events := ts.evaluate(inside, triggers, 0)
	require.Len(t, events, 1)
	require.Equal(t, PhaseEnter, events[0].Phase)

	ts.evaluate(outside, triggers, 1)

	// Re-entering inside the cooldown window is suppressed.
	events = ts.evaluate(inside, triggers, 3)
	assert.Empty(t, events)

	// But the pair is inside, so leaving still exits.
	events = ts.evaluate(outside, triggers, 4)
	require.Len(t, events, 1)
	assert.Equal(t, PhaseExit, events[0].Phase)

	// Once the window has elapsed the Enter fires again.
	events = ts.evaluate(inside, triggers, 6)
	require.Len(t, events, 1)
	assert.Equal(t, PhaseEnter, events[0].Phase)
}

func TestTriggerCooldownWinnerIsDeterministic(t *testing.T) {
	// Two detectors step onto the same cooldown-gated trigger on one tick.
	// The gate admits exactly one Enter, and it must always be the same one:
	// the lowest detector id.
	for run := 0; run < 50; run++ {
		ts := newTestTriggerSystem()
		tv := addTrigger(ts, 100, NewAABB(0, 0, 30, 30), TagLava)
		ts.setCooldown(100, 5.0)
		triggers := []triggerView{tv}

		dets := []detectorView{
			det(2, NewAABB(5, 5, 5, 5)),
			det(1, NewAABB(0, 0, 5, 5)),
		}
		// Prime the gate so the shared entry is already on cooldown.
		ts.evaluate([]detectorView{det(9, NewAABB(0, 0, 5, 5))}, triggers, 0)
		ts.evaluate([]detectorView{det(9, NewAABB(500, 500, 5, 5))}, triggers, 1)

		events := ts.evaluate(dets, triggers, 8)
		require.Len(t, events, 1, "run %d", run)
		assert.Equal(t, PhaseEnter, events[0].Phase)
		assert.Equal(t, uint64(1), events[0].DetectorID, "run %d: lowest detector id wins the gate", run)

		// Both pairs are inside regardless, so both exits fire.
		events = ts.evaluate([]detectorView{
			det(1, NewAABB(500, 500, 5, 5)),
			det(2, NewAABB(500, 500, 5, 5)),
		}, triggers, 9)
		require.Len(t, events, 2, "run %d", run)
		assert.Equal(t, PhaseExit, events[0].Phase)
		assert.Equal(t, PhaseExit, events[1].Phase)
	}
}

func TestTriggerDefaultCooldownApplies(t *testing.T) {
	ts := newTriggerSystem(64, 10.0, 0)
	tv := addTrigger(ts, 7, NewAABB(0, 0, 20, 20), TagPortal)
	triggers := []triggerView{tv}

	inside := []detectorView{det(1, NewAABB(0, 0, 5, 5))}
	outside := []detectorView{det(1, NewAABB(900, 900, 5, 5))}

	events := ts.evaluate(inside, triggers, 0)
	require.Len(t, events, 1)
	ts.evaluate(outside, triggers, 1)

	events = ts.evaluate(inside, triggers, 5)
	assert.Empty(t, events, "default cooldown gates triggers without overrides")

	// A per-trigger override replaces the default.
	ts.evaluate(outside, triggers, 6)
	ts.setCooldown(7, 0)
	events = ts.evaluate(inside, triggers, 7)
	require.Len(t, events, 1)
	assert.Equal(t, PhaseEnter, events[0].Phase)
}

func TestTriggerLayerConsent(t *testing.T) {
	ts := newTestTriggerSystem()
	box := NewAABB(0, 0, 30, 30)
	ts.hash.Insert(1, box)
	// Trigger only reacts to players.
	triggers := []triggerView{{id: 1, box: box, layer: LayerTrigger, mask: LayerPlayer}}

	enemy := detectorView{id: 2, box: NewAABB(0, 0, 5, 5), layer: LayerEnemy, mask: MaskAll}
	events := ts.evaluate([]detectorView{enemy}, triggers, 0)
	assert.Empty(t, events)

	// Consent must be mutual: a player that masks out triggers stays silent.
	deaf := detectorView{id: 3, box: NewAABB(0, 0, 5, 5), layer: LayerPlayer, mask: LayerEnvironment}
	events = ts.evaluate([]detectorView{deaf}, triggers, 0)
	assert.Empty(t, events)

	player := detectorView{id: 4, box: NewAABB(0, 0, 5, 5), layer: LayerPlayer, mask: MaskAll}
	events = ts.evaluate([]detectorView{player}, triggers, 0)
	assert.Len(t, events, 1)
}

func TestTriggerDropForgetsState(t *testing.T) {
	ts := newTestTriggerSystem()
	tv := addTrigger(ts, 100, NewAABB(0, 0, 30, 30), TagWater)
	triggers := []triggerView{tv}

	inside := []detectorView{det(1, NewAABB(0, 0, 5, 5))}
	events := ts.evaluate(inside, triggers, 0)
	require.Len(t, events, 1)

	ts.dropTrigger(100)

	// No exit edge for a volume that no longer exists.
	events = ts.evaluate(inside, nil, 1)
	assert.Empty(t, events)
	assert.Empty(t, ts.inside)
	assert.False(t, ts.hash.Contains(100))
}

func TestTriggerSweepMatchesQueryPath(t *testing.T) {
	// Two systems with identical state, one forced onto each strategy.
	byQuery := newTriggerSystem(64, 0, 1<<30)
	bySweep := newTriggerSystem(64, 0, 1)

	var triggers []triggerView
	for i := 0; i < 12; i++ {
		id := uint64(1000 + i)
		box := NewAABB(float64(i%4)*90, float64(i/4)*90, 25, 25)
		tag := TagWater
		if i%3 == 0 {
			tag = TagLava
		}
		byQuery.hash.Insert(id, box)
		bySweep.hash.Insert(id, box)
		triggers = append(triggers, triggerView{id: id, box: box, layer: LayerTrigger, mask: MaskAll, tag: tag})
	}

	makeDetectors := func(shift float64) []detectorView {
		out := make([]detectorView, 0, 60)
		for i := 0; i < 60; i++ {
			box := NewAABB(float64(i%10)*35+shift, float64(i/10)*35, 10, 10)
			out = append(out, det(uint64(i+1), box))
		}
		return out
	}

	for tick, shift := range []float64{0, 20, 90, 300} {
		now := float64(tick)
		dets := makeDetectors(shift)
		a := byQuery.evaluate(dets, triggers, now)
		b := bySweep.evaluate(dets, triggers, now)
		require.Equal(t, a, b, fmt.Sprintf("strategies diverged at tick %d", tick))
	}
}

func TestTriggerEventOrdering(t *testing.T) {
	ts := newTestTriggerSystem()
	t1 := addTrigger(ts, 10, NewAABB(0, 0, 50, 50), TagWater)
	t2 := addTrigger(ts, 20, NewAABB(0, 0, 50, 50), TagLava)
	triggers := []triggerView{t2, t1}

	dets := []detectorView{
		det(5, NewAABB(0, 0, 5, 5)),
		det(3, NewAABB(10, 10, 5, 5)),
	}
	events := ts.evaluate(dets, triggers, 0)
	require.Len(t, events, 4)
	for i := 1; i < len(events); i++ {
		prev, cur := events[i-1], events[i]
		ordered := prev.TriggerID < cur.TriggerID ||
			(prev.TriggerID == cur.TriggerID && prev.DetectorID < cur.DetectorID)
		assert.True(t, ordered, "events sorted by trigger then detector")
	}
}
