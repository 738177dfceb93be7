// Package pkg provides the core libraries for collagefm, a Last.fm collage
// builder.
//
// # Overview
//
// collagefm turns a listener's top albums, artists or tracks into a square-tile
// image grid. Popular items get larger tiles on templated grids; fixed grids
// use uniform 1×1 tiles. The pkg directory is organized into four areas:
//
//  1. [collage] - Domain logic (layout catalog, occupancy grid, planner)
//  2. [render], [arrange] - Pixels (tile drawing, labels, color ordering)
//  3. [lastfm], [discogs], [imageload] - External data (charts, artist art, images)
//  4. [pipeline] - Orchestration (fetch → plan → render)
//
// Supporting packages: [cache] and [store] persist responses and rendered
// collages, [config] reads the TOML config file, [schedule] runs cron jobs,
// [errors] carries coded errors, and [observability] exposes hooks.
//
// # Architecture
//
// The typical data flow:
//
//	Last.fm chart (user.getTop*)
//	         ↓
//	    [lastfm] package (items with display links)
//	         ↓
//	    [collage] package (variant choice + placement plan)
//	         ↓
//	    [render] package (tiles drawn on an RGBA canvas)
//	         ↓
//	    PNG/JPEG output
//
// # Quick Start
//
// Plan a 5×5 templated collage from a list of items:
//
//	import "github.com/matzehuels/collagefm/pkg/collage"
//
//	layout, _ := collage.Lookup(5)
//	plan := collage.NewPlanner(collage.WithSeed(42)).Plan(layout, items)
//	for _, p := range plan.Placements {
//	    fmt.Println(p.Item.Label, p.Position, p.Footprint)
//	}
//
// Or run the whole pipeline:
//
//	runner := pipeline.NewRunner(source, images, cache.NewNullCache(), logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Username: "rj",
//	    GridSize: 5,
//	})
//
// # Design Principles
//
//   - The planner is pure: identical layout, variant and items always yield
//     the identical plan.
//   - Blocking operations take a context.Context.
//   - Errors carry a code from [errors] so CLI and HTTP surfaces can map them.
//
// [collage]: https://pkg.go.dev/github.com/matzehuels/collagefm/pkg/collage
// [render]: https://pkg.go.dev/github.com/matzehuels/collagefm/pkg/render
// [arrange]: https://pkg.go.dev/github.com/matzehuels/collagefm/pkg/arrange
// [lastfm]: https://pkg.go.dev/github.com/matzehuels/collagefm/pkg/lastfm
// [discogs]: https://pkg.go.dev/github.com/matzehuels/collagefm/pkg/discogs
// [imageload]: https://pkg.go.dev/github.com/matzehuels/collagefm/pkg/imageload
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/collagefm/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/collagefm/pkg/cache
// [store]: https://pkg.go.dev/github.com/matzehuels/collagefm/pkg/store
// [config]: https://pkg.go.dev/github.com/matzehuels/collagefm/pkg/config
// [schedule]: https://pkg.go.dev/github.com/matzehuels/collagefm/pkg/schedule
// [errors]: https://pkg.go.dev/github.com/matzehuels/collagefm/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/collagefm/pkg/observability
package pkg
