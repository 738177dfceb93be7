// Package render draws a collage plan onto a raster and encodes it.
//
// # Overview
//
// [Render] takes the placements produced by the planner plus the decoded
// images, and paints each tile at
//
//	(col × CellSize, row × CellSize), footprint × CellSize pixels square
//
// Images are cover-cropped to the square so album art never stretches.
// Placements are drawn in plan order (large, medium, small).
//
// # Labels
//
// With [Options.Labels] set, each tile gets its caption on a semi-opaque
// strip along the bottom edge. The font size shrinks with the label length
// and is capped relative to the tile size.
//
// # Missing images
//
// A placement whose image failed to load is left as background, or drawn
// as a neutral tile when [Options.Placeholder] is set. Either way the rest
// of the collage renders.
//
// # Encoding
//
// [Encode] writes PNG or JPEG.
package render
