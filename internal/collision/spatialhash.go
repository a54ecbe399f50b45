package collision

import (
	"math"
	"sort"
)

type cellCoord struct {
	X int32
	Y int32
}

func toCell(v, cellSize float64) int32 {
	return int32(math.Floor(v / cellSize))
}

// SpatialHash is a flat uniform grid mapping world space to buckets of body
// ids. A body spanning several cells is registered once per cell; queries
// de-duplicate. Updates smaller than the movement threshold are dropped to
// avoid bucket churn from sub-pixel jitter.
//
// Accessed only from the goroutine that owns it. No locks.
type SpatialHash struct {
	cellSize  float64
	threshold float64 // minimum center movement before an update takes effect
	boxes     map[uint64]AABB
	cells     map[cellCoord][]uint64
}

func NewSpatialHash(cellSize, movementThreshold float64) *SpatialHash {
	if cellSize <= 0 {
		cellSize = 32
	}
	if movementThreshold < 0 {
		movementThreshold = 0
	}
	return &SpatialHash{
		cellSize:  cellSize,
		threshold: movementThreshold,
		boxes:     make(map[uint64]AABB),
		cells:     make(map[cellCoord][]uint64),
	}
}

func (h *SpatialHash) forEachCell(aabb AABB, fn func(cellCoord)) {
	minX := toCell(aabb.Left(), h.cellSize)
	maxX := toCell(aabb.Right(), h.cellSize)
	minY := toCell(aabb.Top(), h.cellSize)
	maxY := toCell(aabb.Bottom(), h.cellSize)
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			fn(cellCoord{x, y})
		}
	}
}

// Insert registers id at aabb. Inserting an id that is already present
// replaces its previous registration.
func (h *SpatialHash) Insert(id uint64, aabb AABB) {
	if _, ok := h.boxes[id]; ok {
		h.Remove(id)
	}
	h.boxes[id] = aabb
	h.forEachCell(aabb, func(c cellCoord) {
		h.cells[c] = append(h.cells[c], id)
	})
}

// Remove drops every bucket membership of id. Unknown ids are a no-op.
func (h *SpatialHash) Remove(id uint64) {
	aabb, ok := h.boxes[id]
	if !ok {
		return
	}
	h.forEachCell(aabb, func(c cellCoord) {
		bucket, ok := h.cells[c]
		if !ok {
			return
		}
		for i, v := range bucket {
			if v == id {
				bucket = append(bucket[:i], bucket[i+1:]...)
				break
			}
		}
		if len(bucket) == 0 {
			delete(h.cells, c)
		} else {
			h.cells[c] = bucket
		}
	})
	delete(h.boxes, id)
}

// Update moves id to a new box, inferring the old registration internally.
// Center movement below the threshold is ignored entirely so the previous
// registration stays authoritative. Unknown ids insert fresh.
func (h *SpatialHash) Update(id uint64, aabb AABB) {
	old, ok := h.boxes[id]
	if !ok {
		h.Insert(id, aabb)
		return
	}
	if aabb.Center.Sub(old.Center).Length() < h.threshold && aabb.Half == old.Half {
		return
	}
	h.Remove(id)
	h.Insert(id, aabb)
}

// QueryRegion appends to out the distinct ids whose registered cells overlap
// area. Results are sorted so callers see a deterministic order.
func (h *SpatialHash) QueryRegion(area AABB, out *[]uint64) {
	*out = (*out)[:0]
	h.forEachCell(area, func(c cellCoord) {
		*out = append(*out, h.cells[c]...)
	})
	if len(*out) < 2 {
		return
	}
	sort.Slice(*out, func(i, j int) bool { return (*out)[i] < (*out)[j] })
	w := 1
	for i := 1; i < len(*out); i++ {
		if (*out)[i] != (*out)[i-1] {
			(*out)[w] = (*out)[i]
			w++
		}
	}
	*out = (*out)[:w]
}

// Contains reports whether id is currently registered.
func (h *SpatialHash) Contains(id uint64) bool {
	_, ok := h.boxes[id]
	return ok
}

func (h *SpatialHash) Len() int { return len(h.boxes) }

func (h *SpatialHash) Clear() {
	h.boxes = make(map[uint64]AABB)
	h.cells = make(map[cellCoord][]uint64)
}
