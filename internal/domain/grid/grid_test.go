package grid

import "testing"

func TestObstacleMarksExactFootprint(t *testing.T) {
	g := NewOccupancyGrid(DefaultWidth, DefaultHeight)

	g.AddObstacle(10, 5, 5, 3)

	if g.BlockedCount() != 15 {
		t.Fatalf("BlockedCount: expected 15 got %d", g.BlockedCount())
	}
	for x := 10; x < 15; x++ {
		for y := 5; y < 8; y++ {
			if g.IsValid(x, y) {
				t.Errorf("cell (%d,%d) should be blocked", x, y)
			}
		}
	}
	if !g.IsValid(15, 5) || !g.IsValid(10, 8) || !g.IsValid(9, 5) {
		t.Errorf("cells just outside the footprint must stay free")
	}
}

func TestRemoveObstacleFreesCells(t *testing.T) {
	g := NewOccupancyGrid(20, 20)
	g.AddObstacle(0, 0, 4, 4)

	g.RemoveObstacle(0, 0, 4, 4)

	if g.BlockedCount() != 0 {
		t.Fatalf("expected empty grid, got %d blocked", g.BlockedCount())
	}
	if !g.IsValid(2, 2) {
		t.Errorf("(2,2) should be valid after removal")
	}
}

func TestIsValidOutOfBounds(t *testing.T) {
	g := NewOccupancyGrid(10, 10)

	cases := []Point{{-1, 0}, {0, -1}, {10, 0}, {0, 10}}
	for _, c := range cases {
		if g.IsValid(c.X, c.Y) {
			t.Errorf("(%d,%d) is out of bounds but reported valid", c.X, c.Y)
		}
	}
}

func TestFindPathStraightLine(t *testing.T) {
	g := NewOccupancyGrid(DefaultWidth, DefaultHeight)

	path := g.FindPath(Point{0, 0}, Point{3, 0})

	want := []Point{{0, 0}, {1, 0}, {2, 0}, {3, 0}}
	if len(path) != len(want) {
		t.Fatalf("path length: expected %d got %d (%v)", len(want), len(path), path)
	}
	for i := range want {
		if path[i] != want[i] {
			t.Errorf("step %d: expected %v got %v", i, want[i], path[i])
		}
	}
}

func TestFindPathBlockedGoalReturnsEmpty(t *testing.T) {
	g := NewOccupancyGrid(DefaultWidth, DefaultHeight)
	g.AddObstacle(1, 0, 3, 1)

	path := g.FindPath(Point{0, 0}, Point{3, 0})

	if path == nil {
		t.Fatalf("expected empty non-nil slice")
	}
	if len(path) != 0 {
		t.Errorf("expected no path, got %v", path)
	}
}

func TestFindPathRoutesAroundWall(t *testing.T) {
	g := NewOccupancyGrid(10, 10)
	// Vertical wall at x=5 from y=0..8, gap at y=9.
	g.AddObstacle(5, 0, 1, 9)

	path := g.FindPath(Point{0, 0}, Point{9, 0})

	if len(path) == 0 {
		t.Fatalf("expected a route through the gap")
	}
	if path[0] != (Point{0, 0}) || path[len(path)-1] != (Point{9, 0}) {
		t.Errorf("path must start and end at the endpoints, got %v..%v", path[0], path[len(path)-1])
	}
	for i := 1; i < len(path); i++ {
		if Manhattan(path[i-1], path[i]) != 1 {
			t.Fatalf("non-adjacent step %v -> %v", path[i-1], path[i])
		}
		if !g.IsValid(path[i].X, path[i].Y) {
			t.Fatalf("path crosses blocked cell %v", path[i])
		}
	}
	// Shortest detour: 9 down, 9 across, 9 up.
	if len(path) != 28 {
		t.Errorf("path length: expected 28 got %d", len(path))
	}
}

func TestFindPathSameCell(t *testing.T) {
	g := NewOccupancyGrid(5, 5)

	path := g.FindPath(Point{2, 2}, Point{2, 2})

	if len(path) != 1 || path[0] != (Point{2, 2}) {
		t.Errorf("expected single-cell path, got %v", path)
	}
}

func TestFindPathEnclosedStart(t *testing.T) {
	g := NewOccupancyGrid(5, 5)
	g.AddObstacle(1, 0, 1, 1)
	g.AddObstacle(0, 1, 1, 1)

	path := g.FindPath(Point{0, 0}, Point{4, 4})

	if len(path) != 0 {
		t.Errorf("enclosed start should yield no path, got %v", path)
	}
}
