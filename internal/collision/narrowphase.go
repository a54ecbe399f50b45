package collision

// overlapManifold computes the minimum translation data for two overlapping
// boxes. The normal points from a toward b along the axis of least
// penetration; ok is false when the boxes do not overlap at all. Touching
// edges report a zero-penetration manifold, which resolution treats as
// already separated.
func overlapManifold(a, b AABB) (normal Vec2, penetration float64, ok bool) {
	ox := minFloat(a.Right(), b.Right()) - maxFloat(a.Left(), b.Left())
	oy := minFloat(a.Bottom(), b.Bottom()) - maxFloat(a.Top(), b.Top())
	if ox < 0 || oy < 0 {
		return Vec2{}, 0, false
	}
	if ox < oy {
		if b.Center.X >= a.Center.X {
			normal = Vec2{X: 1}
		} else {
			normal = Vec2{X: -1}
		}
		return normal, ox, true
	}
	if b.Center.Y >= a.Center.Y {
		normal = Vec2{Y: 1}
	} else {
		normal = Vec2{Y: -1}
	}
	return normal, oy, true
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
