package rules

// Rect is an axis-aligned footprint on the grid.
type Rect struct {
	X, Y, W, H int
}

// Overlaps reports whether two footprints share at least one cell.
// Touching edges do not overlap.
func Overlaps(a, b Rect) bool {
	return !(a.X+a.W <= b.X || b.X+b.W <= a.X || a.Y+a.H <= b.Y || b.Y+b.H <= a.Y)
}

// FitsWithin reports whether the footprint lies fully inside a W x H grid.
// Far edges are compared by subtraction so huge origins cannot wrap.
func FitsWithin(r Rect, width, height int) bool {
	if r.W <= 0 || r.H <= 0 || r.X < 0 || r.Y < 0 {
		return false
	}
	return r.W <= width && r.X <= width-r.W && r.H <= height && r.Y <= height-r.H
}
