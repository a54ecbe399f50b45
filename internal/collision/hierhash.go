package collision

import "sort"

// Default grid sizes for the two-tier hash. The coarse tier exists to skip
// whole empty regions before any fine bucket is touched, which is what keeps
// large mostly-empty worlds cheap to query.
const (
	DefaultCoarseCell = 128.0
	DefaultFineCell   = 32.0
)

type hierRegion struct {
	members int
	fine    map[cellCoord][]uint64
}

// HierSpatialHash is a two-tier uniform grid: a coarse grid of regions, each
// subdividing into fine buckets. Updates take both the old and the new box so
// bucket deltas are exact; there is no movement threshold at this level, the
// caller decides when a move is worth reporting.
//
// Accessed only from the goroutine that owns it. No locks.
type HierSpatialHash struct {
	coarseSize float64
	fineSize   float64
	regions    map[cellCoord]*hierRegion
	boxes      map[uint64]AABB
}

func NewHierSpatialHash(coarseCell, fineCell float64) *HierSpatialHash {
	if coarseCell <= 0 {
		coarseCell = DefaultCoarseCell
	}
	if fineCell <= 0 || fineCell > coarseCell {
		fineCell = DefaultFineCell
	}
	return &HierSpatialHash{
		coarseSize: coarseCell,
		fineSize:   fineCell,
		regions:    make(map[cellCoord]*hierRegion),
		boxes:      make(map[uint64]AABB),
	}
}

func (h *HierSpatialHash) Insert(id uint64, aabb AABB) {
	if _, ok := h.boxes[id]; ok {
		h.Remove(id)
	}
	h.boxes[id] = aabb
	h.forEachFineCell(aabb, func(coarse, fine cellCoord) {
		r := h.regions[coarse]
		if r == nil {
			r = &hierRegion{fine: make(map[cellCoord][]uint64)}
			h.regions[coarse] = r
		}
		r.fine[fine] = append(r.fine[fine], id)
		r.members++
	})
}

func (h *HierSpatialHash) Remove(id uint64) {
	aabb, ok := h.boxes[id]
	if !ok {
		return
	}
	h.forEachFineCell(aabb, func(coarse, fine cellCoord) {
		r := h.regions[coarse]
		if r == nil {
			return
		}
		bucket := r.fine[fine]
		for i, v := range bucket {
			if v == id {
				bucket = append(bucket[:i], bucket[i+1:]...)
				r.members--
				break
			}
		}
		if len(bucket) == 0 {
			delete(r.fine, fine)
		} else {
			r.fine[fine] = bucket
		}
		if r.members == 0 {
			delete(h.regions, coarse)
		}
	})
	delete(h.boxes, id)
}

// Update re-buckets id from oldBox to newBox. When both boxes cover the same
// fine cells only the stored box changes, so steady jitter inside one cell
// costs nothing.
func (h *HierSpatialHash) Update(id uint64, oldBox, newBox AABB) {
	if _, ok := h.boxes[id]; !ok {
		h.Insert(id, newBox)
		return
	}
	if h.sameCells(oldBox, newBox) {
		h.boxes[id] = newBox
		return
	}
	h.Remove(id)
	h.Insert(id, newBox)
}

// QueryRegion appends the distinct ids registered in fine cells overlapping
// area. Coarse regions with no members are skipped without touching their
// fine buckets. Results are sorted.
func (h *HierSpatialHash) QueryRegion(area AABB, out *[]uint64) {
	*out = (*out)[:0]
	var seen map[uint64]struct{}

	minCX := toCell(area.Left(), h.coarseSize)
	maxCX := toCell(area.Right(), h.coarseSize)
	minCY := toCell(area.Top(), h.coarseSize)
	maxCY := toCell(area.Bottom(), h.coarseSize)

	minFX := toCell(area.Left(), h.fineSize)
	maxFX := toCell(area.Right(), h.fineSize)
	minFY := toCell(area.Top(), h.fineSize)
	maxFY := toCell(area.Bottom(), h.fineSize)

	ratio := int32(h.coarseSize / h.fineSize)

	for cy := minCY; cy <= maxCY; cy++ {
		for cx := minCX; cx <= maxCX; cx++ {
			r := h.regions[cellCoord{cx, cy}]
			if r == nil || r.members == 0 {
				continue
			}
			// Clamp the fine range to this coarse region's span.
			fx0 := maxInt32(minFX, cx*ratio)
			fx1 := minInt32(maxFX, (cx+1)*ratio-1)
			fy0 := maxInt32(minFY, cy*ratio)
			fy1 := minInt32(maxFY, (cy+1)*ratio-1)
			for fy := fy0; fy <= fy1; fy++ {
				for fx := fx0; fx <= fx1; fx++ {
					for _, id := range r.fine[cellCoord{fx, fy}] {
						if seen == nil {
							seen = make(map[uint64]struct{}, 16)
						}
						if _, dup := seen[id]; dup {
							continue
						}
						seen[id] = struct{}{}
						*out = append(*out, id)
					}
				}
			}
		}
	}
	sort.Slice(*out, func(i, j int) bool { return (*out)[i] < (*out)[j] })
}

func (h *HierSpatialHash) Contains(id uint64) bool {
	_, ok := h.boxes[id]
	return ok
}

func (h *HierSpatialHash) Len() int { return len(h.boxes) }

func (h *HierSpatialHash) RegionCount() int { return len(h.regions) }

func (h *HierSpatialHash) Clear() {
	h.regions = make(map[cellCoord]*hierRegion)
	h.boxes = make(map[uint64]AABB)
}

func (h *HierSpatialHash) sameCells(a, b AABB) bool {
	return toCell(a.Left(), h.fineSize) == toCell(b.Left(), h.fineSize) &&
		toCell(a.Right(), h.fineSize) == toCell(b.Right(), h.fineSize) &&
		toCell(a.Top(), h.fineSize) == toCell(b.Top(), h.fineSize) &&
		toCell(a.Bottom(), h.fineSize) == toCell(b.Bottom(), h.fineSize)
}

func (h *HierSpatialHash) forEachFineCell(aabb AABB, fn func(coarse, fine cellCoord)) {
	minX := toCell(aabb.Left(), h.fineSize)
	maxX := toCell(aabb.Right(), h.fineSize)
	minY := toCell(aabb.Top(), h.fineSize)
	maxY := toCell(aabb.Bottom(), h.fineSize)
	ratio := int32(h.coarseSize / h.fineSize)
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			coarse := cellCoord{floorDiv(x, ratio), floorDiv(y, ratio)}
			fn(coarse, cellCoord{x, y})
		}
	}
}

func floorDiv(a, b int32) int32 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func minInt32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}

func maxInt32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}
