// Package io provides JSON import of item lists and export of collage plans.
//
// # Overview
//
// Items normally come from a chart source, but a JSON list lets the planner
// and renderer run offline: for previews, tests, or charts built by other
// tools. A computed plan can be written back out for external renderers.
//
// # Item Format
//
// An item list is an object with an "items" array, in rank order:
//
//	{
//	  "items": [
//	    {"title": "Radiohead – OK Computer", "link": "https://…/ok.png"},
//	    {"title": "Local art", "link": "covers/local.jpg"}
//	  ]
//	}
//
// "link" is an image locator (URL or file path) and may be empty, in which
// case the tile renders as a placeholder. "title" is the caption. An entry
// with neither field is rejected.
//
// # Plan Format
//
// [WritePlan] emits the grid dimensions, the active variant, every placement
// in draw order and the items that did not fit:
//
//	{
//	  "rows": 5,
//	  "cols": 5,
//	  "variant": "2",
//	  "placements": [
//	    {"row": 0, "col": 0, "footprint": 3, "title": "…", "link": "…"}
//	  ],
//	  "dropped": []
//	}
//
// [ReadPlan] decodes the same document, so a plan survives a round trip.
package io
