package collage

import "testing"

func TestOccupancyGridCanPlace(t *testing.T) {
	g := NewOccupancyGrid(4, 5)
	g.MarkOccupied(1, 1, 2)

	tests := []struct {
		name     string
		row, col int
		size     int
		want     bool
	}{
		{"free corner", 0, 3, 2, true},
		{"overlaps filled block", 0, 0, 2, false},
		{"single filled cell", 2, 2, 1, false},
		{"right edge overflow", 0, 4, 2, false},
		{"bottom edge overflow", 3, 0, 2, false},
		{"negative row", -1, 0, 1, false},
		{"negative col", 0, -1, 1, false},
		{"zero size", 0, 0, 0, false},
		{"exact fit bottom right", 3, 4, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.CanPlace(tt.row, tt.col, tt.size); got != tt.want {
				t.Errorf("CanPlace(%d, %d, %d) = %v, want %v", tt.row, tt.col, tt.size, got, tt.want)
			}
		})
	}
}

func TestOccupancyGridMarkOccupiedIgnoresOutOfRange(t *testing.T) {
	g := NewOccupancyGrid(3, 3)

	// A 3×3 square declared at (2,2) only covers the bottom-right cell here.
	g.MarkOccupied(2, 2, 3)
	g.MarkOccupied(-1, -1, 2)

	if !g.Occupied(2, 2) {
		t.Error("cell (2,2) should be occupied")
	}
	if !g.Occupied(0, 0) {
		t.Error("cell (0,0) should be occupied by the clipped negative square")
	}
	if got := g.Free(); got != 7 {
		t.Errorf("Free() = %d, want 7", got)
	}
}

func TestOccupancyGridFindFirstFit(t *testing.T) {
	g := NewOccupancyGrid(3, 4)

	pos, ok := g.FindFirstFit(2)
	if !ok || pos != (GridPosition{0, 0}) {
		t.Fatalf("FindFirstFit(2) on empty grid = %v, %v; want (0,0), true", pos, ok)
	}
	g.MarkOccupied(pos.Row, pos.Col, 2)

	pos, ok = g.FindFirstFit(2)
	if !ok || pos != (GridPosition{0, 2}) {
		t.Fatalf("second FindFirstFit(2) = %v, %v; want (0,2), true", pos, ok)
	}
	g.MarkOccupied(pos.Row, pos.Col, 2)

	if _, ok := g.FindFirstFit(2); ok {
		t.Error("no 2×2 square should be left in a 3×4 grid with the top two rows filled")
	}

	pos, ok = g.FindFirstFit(1)
	if !ok || pos != (GridPosition{2, 0}) {
		t.Errorf("FindFirstFit(1) = %v, %v; want (2,0), true", pos, ok)
	}
}

func TestOccupancyGridFindFirstFitDeterministic(t *testing.T) {
	build := func() *OccupancyGrid {
		g := NewOccupancyGrid(5, 5)
		g.MarkOccupied(0, 0, 3)
		g.MarkOccupied(3, 3, 2)
		return g
	}
	a, okA := build().FindFirstFit(2)
	b, okB := build().FindFirstFit(2)
	if a != b || okA != okB {
		t.Errorf("FindFirstFit differs on identical grids: %v/%v vs %v/%v", a, okA, b, okB)
	}
	if a != (GridPosition{0, 3}) {
		t.Errorf("FindFirstFit(2) = %v, want (0,3)", a)
	}
}

func TestOccupancyGridString(t *testing.T) {
	g := NewOccupancyGrid(2, 3)
	g.MarkOccupied(0, 1, 1)
	want := ".#.\n...\n"
	if got := g.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestNewOccupancyGridNegative(t *testing.T) {
	g := NewOccupancyGrid(-2, 3)
	if g.Rows() != 0 || g.Cols() != 3 {
		t.Errorf("dims = %dx%d, want 0x3", g.Rows(), g.Cols())
	}
	if _, ok := g.FindFirstFit(1); ok {
		t.Error("empty grid should have no fit")
	}
}
