package collage

import (
	"fmt"
	"maps"
	"slices"
)

// catalog maps a grid size to its template. Entries are never mutated;
// [Lookup] hands out deep copies.
var catalog = map[int]CollageLayout{
	4: {
		Cols: 4,
		Rows: 4,
		SizeClasses: []SizeClass{
			{
				Kind:      Medium,
				Count:     2,
				Footprint: 2,
				Positions: Variants(map[string][]GridPosition{
					"1": {{Row: 0, Col: 0}, {Row: 2, Col: 2}},
					"2": {{Row: 0, Col: 2}, {Row: 2, Col: 0}},
				}),
			},
			{Kind: Small, Count: 8, Footprint: 1},
		},
		TotalItemSlots: 10,
	},
	5: {
		Cols: 5,
		Rows: 5,
		SizeClasses: []SizeClass{
			{
				Kind:      Large,
				Count:     1,
				Footprint: 3,
				Positions: Variants(map[string][]GridPosition{
					"1": {{Row: 0, Col: 0}},
					"2": {{Row: 0, Col: 2}},
					"3": {{Row: 2, Col: 0}},
				}),
			},
			{
				Kind:      Medium,
				Count:     2,
				Footprint: 2,
				Positions: Variants(map[string][]GridPosition{
					"1": {{Row: 0, Col: 3}, {Row: 3, Col: 0}},
					"2": {{Row: 0, Col: 0}, {Row: 3, Col: 3}},
					"3": {{Row: 0, Col: 1}, {Row: 3, Col: 3}},
				}),
			},
			{Kind: Small, Count: 8, Footprint: 1},
		},
		TotalItemSlots: 11,
	},
	6: {
		Cols: 6,
		Rows: 6,
		SizeClasses: []SizeClass{
			{
				Kind:      Large,
				Count:     2,
				Footprint: 3,
				Positions: Variants(map[string][]GridPosition{
					"1": {{Row: 0, Col: 0}, {Row: 0, Col: 3}},
					"2": {{Row: 3, Col: 0}, {Row: 3, Col: 3}},
					"3": {{Row: 0, Col: 0}, {Row: 3, Col: 1}},
					"4": {{Row: 0, Col: 3}, {Row: 3, Col: 2}},
				}),
			},
			{
				Kind:      Medium,
				Count:     3,
				Footprint: 2,
				Positions: Variants(map[string][]GridPosition{
					"1": {{Row: 3, Col: 0}, {Row: 3, Col: 2}, {Row: 3, Col: 4}},
					"2": {{Row: 0, Col: 0}, {Row: 0, Col: 2}, {Row: 0, Col: 4}},
					"3": {{Row: 0, Col: 4}, {Row: 2, Col: 4}, {Row: 4, Col: 4}},
					"4": {{Row: 0, Col: 0}, {Row: 2, Col: 0}, {Row: 4, Col: 0}},
				}),
			},
			{Kind: Small, Count: 6, Footprint: 1},
		},
		TotalItemSlots: 11,
	},
}

// Lookup returns the template for a grid size.
func Lookup(gridSize int) (CollageLayout, error) {
	l, ok := catalog[gridSize]
	if !ok {
		return CollageLayout{}, fmt.Errorf("%w: %d (must be one of %v)", ErrUnsupportedGridSize, gridSize, GridSizes())
	}
	return l.Clone(), nil
}

// GridSizes returns the supported grid sizes in ascending order.
func GridSizes() []int {
	return slices.Sorted(maps.Keys(catalog))
}

// Fixed grid bounds, matching what the chart service can return in one page.
const (
	MinFixedDim = 1
	MaxFixedDim = 10
)

// FixedLayout returns a uniform rows×cols layout of 1×1 tiles with no
// declared positions; the planner fills it row-major.
func FixedLayout(rows, cols int) (CollageLayout, error) {
	if rows < MinFixedDim || rows > MaxFixedDim || cols < MinFixedDim || cols > MaxFixedDim {
		return CollageLayout{}, fmt.Errorf("%w: %dx%d (rows and cols must be %d-%d)", ErrInvalidGrid, rows, cols, MinFixedDim, MaxFixedDim)
	}
	return CollageLayout{
		Cols:           cols,
		Rows:           rows,
		SizeClasses:    []SizeClass{{Kind: Small, Count: rows * cols, Footprint: 1}},
		TotalItemSlots: rows * cols,
	}, nil
}
