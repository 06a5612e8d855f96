// Package grid defines the habitat floor lattice: which cells are blocked by
// installed modules, and how the crew routes between free cells.
// This package is PURE and must NOT import any infrastructure packages.
package grid

import "github.com/zyedidia/generic/mapset"

// Default dimensions of the reference habitat floor.
const (
	DefaultWidth  = 100
	DefaultHeight = 50
)

// Point is a single cell on the lattice.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// OccupancyGrid tracks cells covered by module footprints.
type OccupancyGrid struct {
	width   int
	height  int
	blocked mapset.Set[Point]
}

// NewOccupancyGrid creates an empty W x H grid.
func NewOccupancyGrid(width, height int) *OccupancyGrid {
	return &OccupancyGrid{
		width:   width,
		height:  height,
		blocked: mapset.New[Point](),
	}
}

// Width returns the number of columns.
func (g *OccupancyGrid) Width() int { return g.width }

// Height returns the number of rows.
func (g *OccupancyGrid) Height() int { return g.height }

// AddObstacle marks every cell of the rectangle as blocked.
// Cells outside the grid are ignored.
func (g *OccupancyGrid) AddObstacle(x, y, w, h int) {
	for dx := 0; dx < w; dx++ {
		for dy := 0; dy < h; dy++ {
			p := Point{X: x + dx, Y: y + dy}
			if g.InBounds(p.X, p.Y) {
				g.blocked.Put(p)
			}
		}
	}
}

// RemoveObstacle unmarks every cell of the rectangle.
func (g *OccupancyGrid) RemoveObstacle(x, y, w, h int) {
	for dx := 0; dx < w; dx++ {
		for dy := 0; dy < h; dy++ {
			g.blocked.Remove(Point{X: x + dx, Y: y + dy})
		}
	}
}

// InBounds reports whether the cell lies on the lattice.
func (g *OccupancyGrid) InBounds(x, y int) bool {
	return x >= 0 && x < g.width && y >= 0 && y < g.height
}

// IsBlocked reports whether a module covers the cell.
func (g *OccupancyGrid) IsBlocked(x, y int) bool {
	return g.blocked.Has(Point{X: x, Y: y})
}

// IsValid returns true iff the cell is in bounds and not blocked.
func (g *OccupancyGrid) IsValid(x, y int) bool {
	return g.InBounds(x, y) && !g.IsBlocked(x, y)
}

// BlockedCount returns the number of blocked cells.
func (g *OccupancyGrid) BlockedCount() int {
	return g.blocked.Size()
}

