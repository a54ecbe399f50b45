package collision

// AABB is an axis-aligned bounding box stored as center + half extents.
// Zero-size boxes are legal and stay queryable.
type AABB struct {
	Center Vec2
	Half   Vec2
}

func NewAABB(cx, cy, hw, hh float64) AABB {
	return AABB{Center: Vec2{cx, cy}, Half: Vec2{hw, hh}}
}

func (a AABB) Left() float64   { return a.Center.X - a.Half.X }
func (a AABB) Right() float64  { return a.Center.X + a.Half.X }
func (a AABB) Top() float64    { return a.Center.Y - a.Half.Y }
func (a AABB) Bottom() float64 { return a.Center.Y + a.Half.Y }

// Contains reports whether p lies inside the box. Edges count as inside.
func (a AABB) Contains(p Vec2) bool {
	return p.X >= a.Left() && p.X <= a.Right() &&
		p.Y >= a.Top() && p.Y <= a.Bottom()
}

// Intersects reports whether the boxes overlap. Touching edges count as
// an intersection, so degenerate zero-size boxes still register contact.
func (a AABB) Intersects(b AABB) bool {
	if a.Right() < b.Left() || b.Right() < a.Left() {
		return false
	}
	if a.Bottom() < b.Top() || b.Bottom() < a.Top() {
		return false
	}
	return true
}

// ClosestPoint clamps p to the box. A point already inside comes back as-is.
func (a AABB) ClosestPoint(p Vec2) Vec2 {
	x := p.X
	if x < a.Left() {
		x = a.Left()
	}
	if x > a.Right() {
		x = a.Right()
	}
	y := p.Y
	if y < a.Top() {
		y = a.Top()
	}
	if y > a.Bottom() {
		y = a.Bottom()
	}
	return Vec2{x, y}
}
