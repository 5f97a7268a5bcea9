package mesh

// orient returns a positive value when the point (cx, cy) lies to one side of
// the directed line a->b, negative on the other, and exactly zero when the
// three points are collinear. The sign convention matches inCircle: both are
// evaluated on UV coordinates with y growing downward.
func orient(ax, ay, bx, by, cx, cy float64) float64 {
	return (bx-cx)*(ay-cy) - (by-cy)*(ax-cx)
}

// inCircle reports whether (px, py) lies strictly inside the circumcircle of
// the triangle (a, b, c), via the standard signed 3x3 determinant of the
// lifted coordinates.
func inCircle(ax, ay, bx, by, cx, cy, px, py float64) bool {
	dx := ax - px
	dy := ay - py
	ex := bx - px
	ey := by - py
	fx := cx - px
	fy := cy - py

	ap := dx*dx + dy*dy
	bp := ex*ex + ey*ey
	cp := fx*fx + fy*fy

	return dx*(ey*cp-bp*fy)-
		dy*(ex*cp-bp*fx)+
		ap*(ex*fy-ey*fx) < 0
}
