package collage

import "strings"

// OccupancyGrid is the rows×cols cell mask of one planning run.
// It is not safe for concurrent use and must not be shared between runs.
type OccupancyGrid struct {
	rows, cols int
	cells      []bool
}

// NewOccupancyGrid returns an empty grid. Negative dimensions are treated as zero.
func NewOccupancyGrid(rows, cols int) *OccupancyGrid {
	rows, cols = max(rows, 0), max(cols, 0)
	return &OccupancyGrid{rows: rows, cols: cols, cells: make([]bool, rows*cols)}
}

// Rows returns the number of grid rows.
func (g *OccupancyGrid) Rows() int { return g.rows }

// Cols returns the number of grid columns.
func (g *OccupancyGrid) Cols() int { return g.cols }

func (g *OccupancyGrid) inside(row, col int) bool {
	return row >= 0 && col >= 0 && row < g.rows && col < g.cols
}

// Occupied reports whether a cell is filled. Cells outside the grid are never filled.
func (g *OccupancyGrid) Occupied(row, col int) bool {
	return g.inside(row, col) && g.cells[row*g.cols+col]
}

// CanPlace reports whether the size×size square at (row, col) lies inside
// the grid and covers only free cells.
func (g *OccupancyGrid) CanPlace(row, col, size int) bool {
	if size < 1 || row < 0 || col < 0 || row+size > g.rows || col+size > g.cols {
		return false
	}
	for r := row; r < row+size; r++ {
		for c := col; c < col+size; c++ {
			if g.cells[r*g.cols+c] {
				return false
			}
		}
	}
	return true
}

// MarkOccupied fills every cell of the size×size square at (row, col).
// Cells outside the grid are ignored, so positions authored for a larger
// grid never panic.
func (g *OccupancyGrid) MarkOccupied(row, col, size int) {
	for r := row; r < row+size; r++ {
		for c := col; c < col+size; c++ {
			if g.inside(r, c) {
				g.cells[r*g.cols+c] = true
			}
		}
	}
}

// FindFirstFit scans rows top to bottom and columns left to right and
// returns the first position where a size×size square fits.
func (g *OccupancyGrid) FindFirstFit(size int) (GridPosition, bool) {
	for row := 0; row <= g.rows-size; row++ {
		for col := 0; col <= g.cols-size; col++ {
			if g.CanPlace(row, col, size) {
				return GridPosition{Row: row, Col: col}, true
			}
		}
	}
	return GridPosition{}, false
}

// Free returns the number of unoccupied cells.
func (g *OccupancyGrid) Free() int {
	n := 0
	for _, filled := range g.cells {
		if !filled {
			n++
		}
	}
	return n
}

// String draws the grid with '#' for filled and '.' for free cells.
func (g *OccupancyGrid) String() string {
	var b strings.Builder
	for r := range g.rows {
		for c := range g.cols {
			if g.cells[r*g.cols+c] {
				b.WriteByte('#')
			} else {
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
