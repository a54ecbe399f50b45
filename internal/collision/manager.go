package collision

import (
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/riftgate/server/internal/core/event"
	"github.com/riftgate/server/internal/core/task"
)

const (
	// obstacleMargin pads the radius reported in ObstacleChanged events so
	// consumers always get a bound larger than the body itself.
	obstacleMargin = 16.0

	// regionCacheMargin pads the static-candidate cache around each coarse
	// region. Movables wider than the margin could outrun their cached
	// candidate list, so they query the hash directly instead.
	regionCacheMargin = 64.0

	// triggerIDBase keeps manager-assigned trigger ids out of the entity id
	// space.
	triggerIDBase = uint64(1) << 63
)

// Config tunes the collision manager. Zero values are replaced by the
// defaults below, so a partially filled config is safe.
type Config struct {
	ThreadingEnabled   bool
	ThreadCount        int
	ThreadingThreshold int

	DefaultTriggerCooldown float64

	StaticCoarseCell float64
	StaticFineCell   float64
	MovableCell      float64
	TriggerCell      float64

	// MovementThreshold is the minimum center movement before a movable is
	// re-bucketed in its hash.
	MovementThreshold float64
}

func DefaultConfig() Config {
	return Config{
		ThreadingEnabled:   true,
		ThreadCount:        4,
		ThreadingThreshold: 100,
		StaticCoarseCell:   DefaultCoarseCell,
		StaticFineCell:     DefaultFineCell,
		MovableCell:        64,
		TriggerCell:        64,
		MovementThreshold:  0.5,
	}
}

// PerfStats is a snapshot of per-tick timing and volume counters.
type PerfStats struct {
	LastBroadphaseMs  float64
	LastNarrowphaseMs float64
	LastTotalMs       float64
	AvgTotalMs        float64 // exponential moving average, alpha 0.01
	Frames            uint64
	LastPairs         int
	LastCollisions    int
	LastFrameThreaded bool
}

const perfEMAAlpha = 0.01

// KinematicUpdate is one entry of a batched position/velocity write.
type KinematicUpdate struct {
	ID  uint64
	Pos Vec2
	Vel Vec2
}

type regionCacheEntry struct {
	gen     uint64
	indices []int // into the static table
}

type workItem struct {
	index int
	m     Movable
	box   AABB
}

// Manager owns the static geometry, the spatial indices and the per-tick
// collision pipeline. It reads movable actors through a MovableStore and
// writes resolved positions back through the same store. All methods must be
// called from the goroutine that owns the tick loop; the only internal
// concurrency is the partitioned broadphase, which joins before Update
// returns.
type Manager struct {
	store MovableStore
	bus   *event.Bus
	pool  *task.Pool
	log   *zap.Logger
	cfg   Config

	statics     staticTable
	staticHash  *HierSpatialHash // solid statics and Physical triggers
	movableHash *SpatialHash
	triggers    *triggerSystem // all trigger volumes, EventOnly included

	tracked   map[int]uint64 // store index -> id registered in the movable hash
	idToIndex map[uint64]int

	regionCache map[cellCoord]*regionCacheEntry

	pendingKinematic []KinematicUpdate

	callbacks []func(CollisionInfo)

	worldMin, worldMax Vec2

	nextTriggerID uint64
	clock         float64 // accumulated simulated seconds

	stats PerfStats

	items    []workItem
	queryBuf []uint64
}

func NewManager(store MovableStore, bus *event.Bus, pool *task.Pool, cfg Config, log *zap.Logger) *Manager {
	def := DefaultConfig()
	if cfg.ThreadCount < 1 {
		cfg.ThreadCount = def.ThreadCount
	}
	if cfg.ThreadingThreshold < 1 {
		cfg.ThreadingThreshold = def.ThreadingThreshold
	}
	if cfg.DefaultTriggerCooldown < 0 {
		cfg.DefaultTriggerCooldown = 0
	}
	if cfg.StaticCoarseCell <= 0 {
		cfg.StaticCoarseCell = def.StaticCoarseCell
	}
	if cfg.StaticFineCell <= 0 {
		cfg.StaticFineCell = def.StaticFineCell
	}
	if cfg.MovableCell <= 0 {
		cfg.MovableCell = def.MovableCell
	}
	if cfg.TriggerCell <= 0 {
		cfg.TriggerCell = def.TriggerCell
	}
	if cfg.MovementThreshold < 0 {
		cfg.MovementThreshold = 0
	}
	return &Manager{
		store:         store,
		bus:           bus,
		pool:          pool,
		log:           log,
		cfg:           cfg,
		statics:       newStaticTable(),
		staticHash:    NewHierSpatialHash(cfg.StaticCoarseCell, cfg.StaticFineCell),
		movableHash:   NewSpatialHash(cfg.MovableCell, cfg.MovementThreshold),
		triggers:      newTriggerSystem(cfg.TriggerCell, cfg.DefaultTriggerCooldown, DefaultSAPThreshold),
		tracked:       make(map[int]uint64),
		idToIndex:     make(map[uint64]int),
		regionCache:   make(map[cellCoord]*regionCacheEntry),
		nextTriggerID: triggerIDBase,
	}
}

func (mgr *Manager) Init() {
	mgr.log.Info("collision manager initialized",
		zap.Bool("threading", mgr.cfg.ThreadingEnabled),
		zap.Int("threads", mgr.cfg.ThreadCount),
		zap.Int("threshold", mgr.cfg.ThreadingThreshold))
}

// Clean drops all bodies, caches and trigger state. The manager is reusable
// afterward.
func (mgr *Manager) Clean() {
	mgr.statics = newStaticTable()
	mgr.staticHash.Clear()
	mgr.movableHash.Clear()
	mgr.triggers = newTriggerSystem(mgr.cfg.TriggerCell, mgr.triggers.defaultCooldown, mgr.triggers.sapThreshold)
	mgr.tracked = make(map[int]uint64)
	mgr.idToIndex = make(map[uint64]int)
	mgr.regionCache = make(map[cellCoord]*regionCacheEntry)
	mgr.pendingKinematic = mgr.pendingKinematic[:0]
	mgr.clock = 0
	mgr.stats = PerfStats{}
	mgr.log.Info("collision manager cleaned")
}

// AddStaticBody registers immovable geometry. An existing id is replaced.
// Solid bodies and Physical triggers join the static hash and announce an
// obstacle change; EventOnly triggers are detection-only and do neither.
func (mgr *Manager) AddStaticBody(id uint64, center, half Vec2, layer, mask uint32, isTrigger bool, tag TriggerTag, triggerType TriggerType, externalIndex int) {
	if half.X < 0 {
		half.X = 0
	}
	if half.Y < 0 {
		half.Y = 0
	}
	b := StaticBody{
		ID:            id,
		Center:        center,
		Half:          half,
		Layer:         layer,
		Mask:          mask,
		Trigger:       isTrigger,
		Tag:           tag,
		TriggerType:   triggerType,
		ExternalIndex: externalIndex,
	}
	mgr.statics.add(b)
	if mgr.blocksMovement(&b) {
		mgr.staticHash.Insert(id, b.AABB())
		mgr.emitObstacle(ObstacleAdded, &b)
	} else {
		mgr.staticHash.Remove(id) // in case a solid body was replaced by an EventOnly trigger
	}
	if b.Trigger {
		mgr.triggers.hash.Insert(id, b.AABB())
	} else {
		mgr.triggers.dropTrigger(id)
	}
}

// RemoveBody drops a static body. Unknown ids are a no-op.
func (mgr *Manager) RemoveBody(id uint64) {
	b, ok := mgr.statics.remove(id)
	if !ok {
		return
	}
	if mgr.blocksMovement(&b) {
		mgr.staticHash.Remove(id)
		mgr.emitObstacle(ObstacleRemoved, &b)
	}
	if b.Trigger {
		mgr.triggers.dropTrigger(id)
	}
}

// ResizeBody changes a static body's half extent. Unknown ids are a no-op.
func (mgr *Manager) ResizeBody(id uint64, half Vec2) {
	b, ok := mgr.statics.resize(id, half)
	if !ok {
		return
	}
	if mgr.blocksMovement(b) {
		mgr.staticHash.Insert(id, b.AABB())
	}
	if b.Trigger {
		mgr.triggers.hash.Insert(id, b.AABB())
	}
}

// UpdateBodyPosition moves a static body, the moving-platform case. Unknown
// ids are a no-op.
func (mgr *Manager) UpdateBodyPosition(id uint64, center Vec2) {
	b, ok := mgr.statics.reposition(id, center)
	if !ok {
		return
	}
	if mgr.blocksMovement(b) {
		mgr.staticHash.Insert(id, b.AABB())
	}
	if b.Trigger {
		mgr.triggers.hash.Insert(id, b.AABB())
	}
}

// CreateTriggerArea registers a standalone trigger volume and returns its
// manager-assigned id.
func (mgr *Manager) CreateTriggerArea(area AABB, tag TriggerTag, triggerType TriggerType, layer, mask uint32) uint64 {
	id := mgr.nextTriggerID
	mgr.nextTriggerID++
	mgr.AddStaticBody(id, area.Center, area.Half, layer, mask, true, tag, triggerType, NoIndex)
	return id
}

func (mgr *Manager) CreateTriggerAreaAt(x, y, halfW, halfH float64, tag TriggerTag, triggerType TriggerType, layer, mask uint32) uint64 {
	return mgr.CreateTriggerArea(NewAABB(x, y, halfW, halfH), tag, triggerType, layer, mask)
}

func (mgr *Manager) SetDefaultTriggerCooldown(seconds float64) {
	mgr.triggers.setDefaultCooldown(seconds)
}

func (mgr *Manager) SetTriggerCooldown(id uint64, seconds float64) {
	mgr.triggers.setCooldown(id, seconds)
}

func (mgr *Manager) ConfigureThreading(enabled bool, threadCount int) {
	if threadCount < 1 {
		threadCount = 1
	}
	mgr.cfg.ThreadingEnabled = enabled
	mgr.cfg.ThreadCount = threadCount
}

func (mgr *Manager) SetThreadingThreshold(n int) {
	if n < 1 {
		n = 1
	}
	mgr.cfg.ThreadingThreshold = n
}

// SetWorldBounds records advisory world bounds. Bodies outside them are not
// clamped here; movement code owns that.
func (mgr *Manager) SetWorldBounds(minX, minY, maxX, maxY float64) {
	mgr.worldMin = Vec2{X: minX, Y: minY}
	mgr.worldMax = Vec2{X: maxX, Y: maxY}
}

func (mgr *Manager) AddCollisionCallback(fn func(CollisionInfo)) {
	mgr.callbacks = append(mgr.callbacks, fn)
}

// QueryArea returns the distinct ids of every registered body, static,
// movable or trigger, whose hash cells overlap area. Empty world, empty
// result.
func (mgr *Manager) QueryArea(area AABB) []uint64 {
	var out []uint64
	mgr.staticHash.QueryRegion(area, &mgr.queryBuf)
	out = append(out, mgr.queryBuf...)
	mgr.movableHash.QueryRegion(area, &mgr.queryBuf)
	out = append(out, mgr.queryBuf...)
	mgr.triggers.hash.QueryRegion(area, &mgr.queryBuf)
	out = append(out, mgr.queryBuf...)
	if len(out) < 2 {
		return out
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	w := 1
	for i := 1; i < len(out); i++ {
		if out[i] != out[i-1] {
			out[w] = out[i]
			w++
		}
	}
	return out[:w]
}

// GetBodyCenter resolves an id to its current center, checking static
// geometry first and then movables seen in the last tick.
func (mgr *Manager) GetBodyCenter(id uint64) (Vec2, bool) {
	if i, ok := mgr.statics.lookup(id); ok {
		return mgr.statics.at(i).Center, true
	}
	if idx, ok := mgr.idToIndex[id]; ok {
		if m, ok := mgr.store.Movable(idx); ok && m.ID == id {
			return m.Pos, true
		}
	}
	return Vec2{}, false
}

func (mgr *Manager) IsTrigger(id uint64) bool {
	if i, ok := mgr.statics.lookup(id); ok {
		return mgr.statics.at(i).Trigger
	}
	return false
}

func (mgr *Manager) IsKinematic(id uint64) bool {
	return mgr.movableKind(id) == BodyKinematic
}

func (mgr *Manager) IsDynamic(id uint64) bool {
	return mgr.movableKind(id) == BodyDynamic
}

func (mgr *Manager) movableKind(id uint64) BodyType {
	if idx, ok := mgr.idToIndex[id]; ok {
		if m, ok := mgr.store.Movable(idx); ok && m.ID == id {
			return m.Kind
		}
	}
	return BodyStatic
}

// UpdateKinematicBatch queues position/velocity writes that are applied at
// the start of the next Update, before broadphase. Unknown ids are dropped
// silently.
func (mgr *Manager) UpdateKinematicBatch(updates []KinematicUpdate) {
	mgr.pendingKinematic = append(mgr.pendingKinematic, updates...)
}

func (mgr *Manager) PerfStats() PerfStats { return mgr.stats }

func (mgr *Manager) ResetPerfStats() { mgr.stats = PerfStats{} }

// Update runs one collision tick: apply batched kinematic writes, refresh
// movable hash buckets, generate and test candidate pairs (partitioned
// across the task pool above the threshold), resolve physical overlaps,
// invoke callbacks and evaluate triggers. Logically synchronous; any worker
// parallelism joins before return.
func (mgr *Manager) Update(dt float64) {
	start := time.Now()
	mgr.clock += dt

	mgr.applyKinematicBatch()
	mgr.refreshMovables()

	broadStart := time.Now()
	collisions, threaded := mgr.collide()
	broadMs := float64(time.Since(broadStart).Microseconds()) / 1000.0

	narrowStart := time.Now()
	mgr.resolve(collisions)
	for _, ci := range collisions {
		for _, cb := range mgr.callbacks {
			cb(ci)
		}
	}
	mgr.dispatchTriggers()
	narrowMs := float64(time.Since(narrowStart).Microseconds()) / 1000.0

	totalMs := float64(time.Since(start).Microseconds()) / 1000.0
	mgr.stats.LastBroadphaseMs = broadMs
	mgr.stats.LastNarrowphaseMs = narrowMs
	mgr.stats.LastTotalMs = totalMs
	if mgr.stats.Frames == 0 {
		mgr.stats.AvgTotalMs = totalMs
	} else {
		mgr.stats.AvgTotalMs += perfEMAAlpha * (totalMs - mgr.stats.AvgTotalMs)
	}
	mgr.stats.Frames++
	mgr.stats.LastCollisions = len(collisions)
	mgr.stats.LastFrameThreaded = threaded
}

func (mgr *Manager) applyKinematicBatch() {
	for _, u := range mgr.pendingKinematic {
		idx, ok := mgr.idToIndex[u.ID]
		if !ok {
			continue
		}
		m, ok := mgr.store.Movable(idx)
		if !ok || m.ID != u.ID {
			continue
		}
		mgr.store.SetMovable(idx, u.Pos, u.Vel)
	}
	mgr.pendingKinematic = mgr.pendingKinematic[:0]
}

// refreshMovables reconciles the movable hash and the id map with the store.
// Tracked indices whose actor is gone or whose id changed (slot reuse) drop
// their stale registration before the new occupant is inserted.
func (mgr *Manager) refreshMovables() {
	for idx, id := range mgr.tracked {
		m, ok := mgr.store.Movable(idx)
		if !ok || !m.Enabled || m.ID != id {
			mgr.movableHash.Remove(id)
			delete(mgr.tracked, idx)
		}
	}

	mgr.items = mgr.items[:0]
	for _, idx := range mgr.store.ActiveIndices() {
		m, ok := mgr.store.Movable(idx)
		if !ok || !m.Enabled {
			continue
		}
		box := m.AABB()
		mgr.movableHash.Update(m.ID, box)
		mgr.tracked[idx] = m.ID
		mgr.items = append(mgr.items, workItem{index: idx, m: m, box: box})
	}

	for id := range mgr.idToIndex {
		delete(mgr.idToIndex, id)
	}
	for idx, id := range mgr.tracked {
		mgr.idToIndex[id] = idx
	}
}

func (mgr *Manager) blocksMovement(b *StaticBody) bool {
	return !b.Trigger || b.TriggerType == TriggerPhysical
}

func (mgr *Manager) emitObstacle(change ObstacleChange, b *StaticBody) {
	event.Emit(mgr.bus, ObstacleChanged{
		Change:   change,
		Position: b.Center,
		Radius:   maxFloat(b.Half.X, b.Half.Y) + obstacleMargin,
	})
}

// collide runs broadphase plus narrowphase over the current work items and
// returns the merged collision list. Partition results are concatenated in
// partition order, so the set and count match the serial path exactly.
func (mgr *Manager) collide() ([]CollisionInfo, bool) {
	n := len(mgr.items)
	if n == 0 {
		mgr.stats.LastPairs = 0
		return nil, false
	}

	mgr.ensureRegionCaches()

	partitions := 0
	if mgr.cfg.ThreadingEnabled && mgr.pool != nil && n >= mgr.cfg.ThreadingThreshold {
		partitions = mgr.cfg.ThreadCount
		if w := mgr.pool.Workers(); partitions > w {
			partitions = w
		}
		if partitions > n {
			partitions = n
		}
	}

	pairs := 0
	if partitions < 2 {
		out, tested := mgr.collidePartition(mgr.items)
		mgr.stats.LastPairs = tested
		return out, false
	}

	results := make([][]CollisionInfo, partitions)
	tested := make([]int, partitions)
	handles := make([]*task.Handle, partitions)
	chunk := (n + partitions - 1) / partitions
	for p := 0; p < partitions; p++ {
		lo := p * chunk
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		p := p
		slice := mgr.items[lo:hi]
		handles[p] = mgr.pool.Submit(task.PriorityHigh, "collision.broadphase", func() {
			results[p], tested[p] = mgr.collidePartition(slice)
		})
	}
	var merged []CollisionInfo
	for p := 0; p < partitions; p++ {
		handles[p].Wait()
		merged = append(merged, results[p]...)
		pairs += tested[p]
	}
	mgr.stats.LastPairs = pairs
	return merged, true
}

// collidePartition produces the collision list for one contiguous slice of
// work items. Read-only against shared state; safe to run on pool workers.
func (mgr *Manager) collidePartition(items []workItem) ([]CollisionInfo, int) {
	var out []CollisionInfo
	var buf []uint64
	tested := 0

	for _, it := range items {
		m := &it.m

		// Static candidates, through the region cache when the movable is
		// small enough for the cached margin to cover it.
		if maxFloat(m.HalfW, m.HalfH) <= regionCacheMargin {
			key := cellCoord{
				X: toCell(m.Pos.X, mgr.cfg.StaticCoarseCell),
				Y: toCell(m.Pos.Y, mgr.cfg.StaticCoarseCell),
			}
			if entry := mgr.regionCache[key]; entry != nil && entry.gen == mgr.statics.generation() {
				for _, si := range entry.indices {
					tested++
					mgr.testStatic(m, it.index, it.box, mgr.statics.at(si), si, &out)
				}
				mgr.collideMovables(it, &buf, &out, &tested)
				continue
			}
		}

		mgr.staticHash.QueryRegion(it.box, &buf)
		for _, sid := range buf {
			si, ok := mgr.statics.lookup(sid)
			if !ok {
				continue
			}
			tested++
			mgr.testStatic(m, it.index, it.box, mgr.statics.at(si), si, &out)
		}
		mgr.collideMovables(it, &buf, &out, &tested)
	}
	return out, tested
}

func (mgr *Manager) testStatic(m *Movable, movIdx int, movBox AABB, b *StaticBody, staticIdx int, out *[]CollisionInfo) {
	if !layersConsent(m.Layer, m.Mask, b.Layer, b.Mask) {
		return
	}
	normal, pen, ok := overlapManifold(movBox, b.AABB())
	if !ok || pen <= 0 {
		return
	}
	*out = append(*out, CollisionInfo{
		A:                m.ID,
		B:                b.ID,
		IndexA:           movIdx,
		IndexB:           staticIdx,
		Normal:           normal,
		Penetration:      pen,
		Trigger:          b.Trigger,
		MovableVsMovable: false,
	})
}

// collideMovables tests it against other movables with a larger id, so every
// pair is generated exactly once no matter which partition sees it first.
func (mgr *Manager) collideMovables(it workItem, buf *[]uint64, out *[]CollisionInfo, tested *int) {
	mgr.movableHash.QueryRegion(it.box, buf)
	for _, oid := range *buf {
		if oid <= it.m.ID {
			continue
		}
		oidx, ok := mgr.idToIndex[oid]
		if !ok {
			continue
		}
		o, ok := mgr.store.Movable(oidx)
		if !ok || o.ID != oid || !o.Enabled {
			continue
		}
		*tested++
		if !layersConsent(it.m.Layer, it.m.Mask, o.Layer, o.Mask) {
			continue
		}
		normal, pen, ok := overlapManifold(it.box, o.AABB())
		if !ok || pen <= 0 {
			continue
		}
		*out = append(*out, CollisionInfo{
			A:                it.m.ID,
			B:                oid,
			IndexA:           it.index,
			IndexB:           oidx,
			Normal:           normal,
			Penetration:      pen,
			MovableVsMovable: true,
		})
	}
}

// ensureRegionCaches rebuilds any stale per-region static candidate lists the
// current work items will read. Runs on the tick goroutine before partitions
// are submitted, so workers only ever read valid entries.
func (mgr *Manager) ensureRegionCaches() {
	gen := mgr.statics.generation()
	coarse := mgr.cfg.StaticCoarseCell
	for _, it := range mgr.items {
		if maxFloat(it.m.HalfW, it.m.HalfH) > regionCacheMargin {
			continue
		}
		key := cellCoord{X: toCell(it.m.Pos.X, coarse), Y: toCell(it.m.Pos.Y, coarse)}
		entry := mgr.regionCache[key]
		if entry != nil && entry.gen == gen {
			continue
		}
		if entry == nil {
			entry = &regionCacheEntry{}
			mgr.regionCache[key] = entry
		}
		cellMinX := float64(key.X) * coarse
		cellMinY := float64(key.Y) * coarse
		region := AABB{
			Center: Vec2{X: cellMinX + coarse/2, Y: cellMinY + coarse/2},
			Half:   Vec2{X: coarse/2 + regionCacheMargin, Y: coarse/2 + regionCacheMargin},
		}
		mgr.staticHash.QueryRegion(region, &mgr.queryBuf)
		entry.indices = entry.indices[:0]
		for _, sid := range mgr.queryBuf {
			if si, ok := mgr.statics.lookup(sid); ok {
				entry.indices = append(entry.indices, si)
			}
		}
		entry.gen = gen
	}
}

// resolve applies positional correction for the merged collision list, on
// the tick goroutine. Static contacts push the movable the full penetration;
// movable pairs split it. EventOnly triggers never reach this list, and
// Physical triggers block like solid geometry.
func (mgr *Manager) resolve(collisions []CollisionInfo) {
	for _, ci := range collisions {
		if ci.Penetration <= 0 {
			continue
		}
		if ci.MovableVsMovable {
			half := ci.Penetration / 2
			if a, ok := mgr.store.Movable(ci.IndexA); ok && a.ID == ci.A {
				mgr.store.SetMovable(ci.IndexA, a.Pos.Sub(ci.Normal.Scale(half)), a.Vel)
			}
			if b, ok := mgr.store.Movable(ci.IndexB); ok && b.ID == ci.B {
				mgr.store.SetMovable(ci.IndexB, b.Pos.Add(ci.Normal.Scale(half)), b.Vel)
			}
			continue
		}
		if a, ok := mgr.store.Movable(ci.IndexA); ok && a.ID == ci.A {
			mgr.store.SetMovable(ci.IndexA, a.Pos.Sub(ci.Normal.Scale(ci.Penetration)), a.Vel)
		}
	}
}

// dispatchTriggers collects detector-flagged actors and the live trigger
// volumes, runs the enter/exit machine on simulated time and emits the edges
// on the bus.
func (mgr *Manager) dispatchTriggers() {
	var detectors []detectorView
	for _, it := range mgr.items {
		if !it.m.DetectsTriggers {
			continue
		}
		detectors = append(detectors, detectorView{
			id:    it.m.ID,
			box:   it.box,
			layer: it.m.Layer,
			mask:  it.m.Mask,
		})
	}

	var triggers []triggerView
	for i := 0; i < mgr.statics.len(); i++ {
		b := mgr.statics.at(i)
		if !b.Trigger {
			continue
		}
		triggers = append(triggers, triggerView{
			id:    b.ID,
			box:   b.AABB(),
			layer: b.Layer,
			mask:  b.Mask,
			tag:   b.Tag,
		})
	}

	if len(detectors) == 0 && len(mgr.triggers.inside) == 0 {
		return
	}
	for _, ev := range mgr.triggers.evaluate(detectors, triggers, mgr.clock) {
		event.Emit(mgr.bus, ev)
	}
}
