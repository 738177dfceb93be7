package collage

import (
	"math/rand/v2"
)

// Target says how an assignment finds its cell: a [Declared] position or a
// first-fit [Search].
type Target interface {
	isTarget()
}

// Declared reserves a template position without searching.
type Declared struct {
	Position GridPosition
}

// Search places the tile at the first free position in row-major order.
type Search struct{}

func (Declared) isTarget() {}
func (Search) isTarget()   {}

// Assignment binds an item to a footprint and a target before resolution.
type Assignment struct {
	Item      Item
	Kind      SizeKind
	Footprint int
	Target    Target
}

// Plan is the outcome of one planning run.
type Plan struct {
	// Variant is the active variant id, empty when the layout has none.
	Variant string

	// Placements are in phase order: large, then medium, then small.
	// This is also the draw order.
	Placements []Placement

	// Dropped holds items for which no free square was left.
	Dropped []Item
}

// Shortfall returns how many items could not be placed.
func (p Plan) Shortfall() int { return len(p.Dropped) }

// PlannerOption configures a [Planner].
type PlannerOption func(*Planner)

// WithRand sets the randomness source used for variant selection.
func WithRand(r *rand.Rand) PlannerOption {
	return func(p *Planner) {
		if r != nil {
			p.rng = r
		}
	}
}

// WithSeed seeds variant selection for reproducible plans.
func WithSeed(seed uint64) PlannerOption {
	return WithRand(rand.New(rand.NewPCG(seed, seed^0xdeadbeef)))
}

// Planner assigns items to grid cells. Its only state is the randomness
// source, so a Planner is not safe for concurrent use; create one per request.
type Planner struct {
	rng *rand.Rand
}

// NewPlanner returns a planner. Without options variant selection is
// randomly seeded.
func NewPlanner(opts ...PlannerOption) *Planner {
	p := &Planner{}
	for _, opt := range opts {
		opt(p)
	}
	if p.rng == nil {
		p.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return p
}

// ChooseVariant picks one key uniformly from the first variant-keyed size
// class. It returns "" when the layout declares no variants.
func (p *Planner) ChooseVariant(l CollageLayout) string {
	keys := l.Variants()
	if len(keys) == 0 {
		return ""
	}
	return keys[p.rng.IntN(len(keys))]
}

// Plan chooses a variant and places items on a fresh grid.
func (p *Planner) Plan(l CollageLayout, items []Item) Plan {
	return PlanVariant(l, p.ChooseVariant(l), items)
}

// PlanVariant places items using a fixed variant id. Identical inputs always
// produce identical plans.
func PlanVariant(l CollageLayout, variant string, items []Item) Plan {
	assignments := Assign(l, variant, items)
	grid := NewOccupancyGrid(l.Rows, l.Cols)

	plan := Plan{Variant: variant, Placements: make([]Placement, 0, len(assignments))}
	for _, phase := range []SizeKind{Large, Medium, Small} {
		for _, a := range assignments {
			if a.Kind != phase {
				continue
			}
			pos, ok := resolve(grid, a)
			if !ok {
				plan.Dropped = append(plan.Dropped, a.Item)
				continue
			}
			grid.MarkOccupied(pos.Row, pos.Col, a.Footprint)
			plan.Placements = append(plan.Placements, Placement{Item: a.Item, Footprint: a.Footprint, Position: pos})
		}
	}
	return plan
}

// Assign walks the size classes in declared order, giving each class up to
// Count items from the front of the list. Items left over become 1×1 small
// tiles placed by search.
func Assign(l CollageLayout, variant string, items []Item) []Assignment {
	out := make([]Assignment, 0, len(items))
	next := 0
	for _, sc := range l.SizeClasses {
		positions, _ := sc.Positions.For(variant)
		for i := 0; i < sc.Count && next < len(items); i++ {
			var target Target = Search{}
			if i < len(positions) {
				target = Declared{Position: positions[i]}
			}
			out = append(out, Assignment{Item: items[next], Kind: sc.Kind, Footprint: sc.Footprint, Target: target})
			next++
		}
	}
	for ; next < len(items); next++ {
		out = append(out, Assignment{Item: items[next], Kind: Small, Footprint: 1, Target: Search{}})
	}
	return out
}

func resolve(grid *OccupancyGrid, a Assignment) (GridPosition, bool) {
	switch t := a.Target.(type) {
	case Declared:
		return t.Position, true
	default:
		return grid.FindFirstFit(a.Footprint)
	}
}
