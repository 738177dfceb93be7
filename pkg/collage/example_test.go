package collage_test

import (
	"fmt"

	"github.com/matzehuels/collagefm/pkg/collage"
)

func ExamplePlanVariant() {
	layout, err := collage.Lookup(4)
	if err != nil {
		panic(err)
	}

	items := make([]collage.Item, 10)
	for i := range items {
		items[i] = collage.Item{Label: fmt.Sprintf("album %d", i+1)}
	}

	plan := collage.PlanVariant(layout, "1", items)
	for _, p := range plan.Placements[:4] {
		fmt.Println(p.Item.Label, p.Position, p.Footprint)
	}
	fmt.Println("dropped:", plan.Shortfall())
	// Output:
	// album 1 (0,0) 2
	// album 2 (2,2) 2
	// album 3 (0,2) 1
	// album 4 (0,3) 1
	// dropped: 0
}

func ExampleOccupancyGrid() {
	g := collage.NewOccupancyGrid(3, 3)
	g.MarkOccupied(0, 0, 2)
	pos, _ := g.FindFirstFit(1)
	fmt.Println(pos)
	fmt.Print(g)
	// Output:
	// (0,2)
	// ##.
	// ##.
	// ...
}
