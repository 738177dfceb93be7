// Package collage assigns ranked image items to cells of a fixed grid.
//
// # Overview
//
// A collage is a square grid of cells. Each item occupies an N×N square of
// cells (its footprint). The package answers one question: given a grid
// template and an ordered list of items, where does each item go?
//
//   - [Lookup] returns the static [CollageLayout] for a supported grid size
//   - [FixedLayout] builds a uniform rows×cols layout of 1×1 tiles
//   - [OccupancyGrid] tracks which cells are filled during one planning run
//   - [Planner] turns a layout and items into a [Plan] of [Placement] values
//
// # Templates and Variants
//
// A [CollageLayout] lists its size classes in order (large first by
// convention). A class may pin its slots to declared positions. Declared
// positions are either a single list ([Flat]) or keyed by variant
// ([Variants]). The first class with a variant map decides the active
// variant for a run; every other variant-keyed class is read with that same
// key, so related large and medium tiles stay consistent.
//
// # Placement
//
// Items are consumed in order: the first class takes the first Count items,
// the next class the following ones, and any leftover items become 1×1
// tiles. Assignments are then resolved in phase order large, medium, small.
// A declared slot is reserved directly; anything else is placed by a
// row-major first-fit scan. Items that do not fit are dropped and reported
// in [Plan.Dropped].
//
//	layout, err := collage.Lookup(5)
//	if err != nil {
//	    return err
//	}
//	plan := collage.NewPlanner(collage.WithSeed(42)).Plan(layout, items)
//	for _, p := range plan.Placements {
//	    fmt.Println(p.Item.Label, p.Position, p.Footprint)
//	}
//
// Planning is pure and synchronous. An [OccupancyGrid] belongs to exactly one
// planning run and is never shared.
package collage
