package grid

import "github.com/zyedidia/generic/mapset"

// neighbourOffsets fixes the expansion order: +x, -x, +y, -y.
var neighbourOffsets = [4]Point{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

type pathNode struct {
	pos    Point
	g      int
	h      int
	f      int
	parent *pathNode
}

// Manhattan returns the 4-connected distance between two cells.
func Manhattan(a, b Point) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

// FindPath runs A* from start to goal over free cells and returns the route,
// start and goal inclusive. An empty slice means no route exists.
//
// The open set is scanned linearly and ties on f keep the first node found,
// so equal-cost routes are not guaranteed to be the straightest. Closed
// nodes are never reopened.
func (g *OccupancyGrid) FindPath(start, goal Point) []Point {
	open := []*pathNode{{pos: start, h: Manhattan(start, goal)}}
	closed := mapset.New[Point]()

	for len(open) > 0 {
		current := 0
		for i := 1; i < len(open); i++ {
			if open[i].f < open[current].f {
				current = i
			}
		}
		node := open[current]

		if node.pos == goal {
			return reconstruct(node)
		}

		open = append(open[:current], open[current+1:]...)
		closed.Put(node.pos)

		for _, off := range neighbourOffsets {
			next := Point{X: node.pos.X + off.X, Y: node.pos.Y + off.Y}
			if !g.IsValid(next.X, next.Y) || closed.Has(next) {
				continue
			}

			tentative := node.g + 1
			existing := findOpen(open, next)
			if existing == nil {
				h := Manhattan(next, goal)
				open = append(open, &pathNode{
					pos:    next,
					g:      tentative,
					h:      h,
					f:      tentative + h,
					parent: node,
				})
				continue
			}
			if tentative < existing.g {
				existing.g = tentative
				existing.f = tentative + existing.h
				existing.parent = node
			}
		}
	}

	return []Point{}
}

func findOpen(open []*pathNode, p Point) *pathNode {
	for _, n := range open {
		if n.pos == p {
			return n
		}
	}
	return nil
}

func reconstruct(node *pathNode) []Point {
	var path []Point
	for n := node; n != nil; n = n.parent {
		path = append(path, n.pos)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
