package collage

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

var (
	// ErrUnsupportedGridSize is returned by [Lookup] for sizes outside the catalog.
	ErrUnsupportedGridSize = errors.New("unsupported grid size")

	// ErrInvalidTemplate is returned by [CollageLayout.Validate] for malformed layouts.
	ErrInvalidTemplate = errors.New("invalid collage template")

	// ErrInvalidGrid is returned by [FixedLayout] for out-of-range dimensions.
	ErrInvalidGrid = errors.New("invalid grid dimensions")
)

// GridPosition is the top-left cell of a placed square, in grid cells.
type GridPosition struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (p GridPosition) String() string { return fmt.Sprintf("(%d,%d)", p.Row, p.Col) }

// SizeKind is the placement tier of a size class.
type SizeKind int

const (
	Small SizeKind = iota
	Medium
	Large
)

var sizeKindNames = map[SizeKind]string{
	Small:  "small",
	Medium: "medium",
	Large:  "large",
}

func (k SizeKind) String() string {
	if s, ok := sizeKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("SizeKind(%d)", int(k))
}

// MarshalText encodes the kind by name.
func (k SizeKind) MarshalText() ([]byte, error) {
	s, ok := sizeKindNames[k]
	if !ok {
		return nil, fmt.Errorf("unknown size kind %d", int(k))
	}
	return []byte(s), nil
}

// UnmarshalText decodes a kind name.
func (k *SizeKind) UnmarshalText(b []byte) error {
	for kind, name := range sizeKindNames {
		if name == string(b) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown size kind %q", b)
}

// Positions declares the slots of a size class. The zero value declares
// nothing and every slot is placed by first-fit search.
type Positions struct {
	flat     []GridPosition
	variants map[string][]GridPosition
}

// Flat declares a single ordered list of slots shared by all variants.
func Flat(ps ...GridPosition) Positions {
	return Positions{flat: slices.Clone(ps)}
}

// Variants declares slot lists keyed by variant id.
func Variants(m map[string][]GridPosition) Positions {
	v := make(map[string][]GridPosition, len(m))
	for k, ps := range m {
		v[k] = slices.Clone(ps)
	}
	return Positions{variants: v}
}

// IsZero reports whether no positions are declared.
func (p Positions) IsZero() bool { return p.flat == nil && p.variants == nil }

// IsVariant reports whether the positions are keyed by variant.
func (p Positions) IsVariant() bool { return p.variants != nil }

// Keys returns the variant ids in sorted order. Flat positions have no keys.
func (p Positions) Keys() []string {
	return slices.Sorted(maps.Keys(p.variants))
}

// For returns the slot list to use under the given active variant.
// Flat positions ignore the variant. A variant map without the key reports false.
func (p Positions) For(variant string) ([]GridPosition, bool) {
	if p.variants == nil {
		return p.flat, p.flat != nil
	}
	ps, ok := p.variants[variant]
	return ps, ok
}

func (p Positions) clone() Positions {
	if p.variants != nil {
		return Variants(p.variants)
	}
	if p.flat != nil {
		return Flat(p.flat...)
	}
	return Positions{}
}

// SizeClass describes Count tiles of Footprint×Footprint cells.
type SizeClass struct {
	Kind      SizeKind
	Count     int
	Footprint int
	Positions Positions
}

// Cells returns the number of grid cells the class occupies when fully used.
func (s SizeClass) Cells() int { return s.Count * s.Footprint * s.Footprint }

// CollageLayout is a grid template: dimensions plus ordered size classes.
type CollageLayout struct {
	Cols           int
	Rows           int
	SizeClasses    []SizeClass
	TotalItemSlots int
}

// Capacity returns the number of cells in the grid.
func (l CollageLayout) Capacity() int { return l.Cols * l.Rows }

// DeclaredCells returns the cells consumed when every class is filled.
func (l CollageLayout) DeclaredCells() int {
	n := 0
	for _, sc := range l.SizeClasses {
		n += sc.Cells()
	}
	return n
}

// Variants returns the variant ids of the first variant-keyed size class,
// which is the class that decides the active variant.
func (l CollageLayout) Variants() []string {
	for _, sc := range l.SizeClasses {
		if sc.Positions.IsVariant() {
			return sc.Positions.Keys()
		}
	}
	return nil
}

// Clone returns a deep copy so catalog entries cannot be mutated by callers.
func (l CollageLayout) Clone() CollageLayout {
	out := l
	out.SizeClasses = make([]SizeClass, len(l.SizeClasses))
	for i, sc := range l.SizeClasses {
		sc.Positions = sc.Positions.clone()
		out.SizeClasses[i] = sc
	}
	return out
}

// Validate checks the structural invariants of a template: positive
// dimensions, sane classes, slot totals, cell budget, and that declared
// positions of each variant stay in bounds without overlapping.
func (l CollageLayout) Validate() error {
	if l.Cols < 1 || l.Rows < 1 {
		return fmt.Errorf("%w: grid %dx%d", ErrInvalidTemplate, l.Rows, l.Cols)
	}
	slots := 0
	for i, sc := range l.SizeClasses {
		if sc.Count < 0 || sc.Footprint < 1 {
			return fmt.Errorf("%w: class %d has count %d footprint %d", ErrInvalidTemplate, i, sc.Count, sc.Footprint)
		}
		slots += sc.Count
	}
	if slots != l.TotalItemSlots {
		return fmt.Errorf("%w: %d slots declared, total is %d", ErrInvalidTemplate, slots, l.TotalItemSlots)
	}
	if cells := l.DeclaredCells(); cells > l.Capacity() {
		return fmt.Errorf("%w: classes need %d cells, grid has %d", ErrInvalidTemplate, cells, l.Capacity())
	}

	keys := l.allVariantKeys()
	for _, key := range keys {
		grid := NewOccupancyGrid(l.Rows, l.Cols)
		for i, sc := range l.SizeClasses {
			ps, ok := sc.Positions.For(key)
			if !ok {
				continue
			}
			if len(ps) > sc.Count {
				return fmt.Errorf("%w: class %d declares %d positions for %d slots", ErrInvalidTemplate, i, len(ps), sc.Count)
			}
			for _, p := range ps {
				if !grid.CanPlace(p.Row, p.Col, sc.Footprint) {
					return fmt.Errorf("%w: variant %q class %d position %s out of bounds or overlapping", ErrInvalidTemplate, key, i, p)
				}
				grid.MarkOccupied(p.Row, p.Col, sc.Footprint)
			}
		}
	}
	return nil
}

// allVariantKeys returns every variant id used by any class, or a single
// empty key when no class is variant-keyed.
func (l CollageLayout) allVariantKeys() []string {
	set := map[string]struct{}{}
	for _, sc := range l.SizeClasses {
		for _, k := range sc.Positions.Keys() {
			set[k] = struct{}{}
		}
	}
	if len(set) == 0 {
		return []string{""}
	}
	return slices.Sorted(maps.Keys(set))
}

// Item is one ranked entry to place: an image locator and a caption.
type Item struct {
	DisplayLink string `json:"link"`
	Label       string `json:"title"`
}

// Placement is an item resolved to a square of the grid.
type Placement struct {
	Item      Item         `json:"item"`
	Footprint int          `json:"footprint"`
	Position  GridPosition `json:"position"`
}

// Overlaps reports whether two placements share any cell.
func (p Placement) Overlaps(o Placement) bool {
	return p.Position.Row < o.Position.Row+o.Footprint &&
		o.Position.Row < p.Position.Row+p.Footprint &&
		p.Position.Col < o.Position.Col+o.Footprint &&
		o.Position.Col < p.Position.Col+p.Footprint
}
