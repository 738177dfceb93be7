package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/collagefm/pkg/collage"
)

type planDoc struct {
	Rows       int            `json:"rows"`
	Cols       int            `json:"cols"`
	Variant    string         `json:"variant,omitempty"`
	Placements []placement    `json:"placements"`
	Dropped    []collage.Item `json:"dropped"`
}

type placement struct {
	Row       int    `json:"row"`
	Col       int    `json:"col"`
	Footprint int    `json:"footprint"`
	Title     string `json:"title"`
	Link      string `json:"link"`
}

// WritePlan encodes a plan for a rows×cols grid as JSON and writes it to w.
// Placements keep their draw order.
func WritePlan(plan collage.Plan, rows, cols int, w io.Writer) error {
	out := planDoc{
		Rows:       rows,
		Cols:       cols,
		Variant:    plan.Variant,
		Placements: make([]placement, len(plan.Placements)),
		Dropped:    plan.Dropped,
	}
	if out.Dropped == nil {
		out.Dropped = []collage.Item{}
	}
	for i, p := range plan.Placements {
		out.Placements[i] = placement{
			Row:       p.Position.Row,
			Col:       p.Position.Col,
			Footprint: p.Footprint,
			Title:     p.Item.Label,
			Link:      p.Item.DisplayLink,
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportPlan writes a plan to a JSON file at path.
func ExportPlan(plan collage.Plan, rows, cols int, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WritePlan(plan, rows, cols, f)
}

// ReadPlan decodes a plan written by [WritePlan] and returns it with the
// grid dimensions.
func ReadPlan(r io.Reader) (plan collage.Plan, rows, cols int, err error) {
	var data planDoc
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return collage.Plan{}, 0, 0, fmt.Errorf("decode: %w", err)
	}
	plan.Variant = data.Variant
	plan.Placements = make([]collage.Placement, len(data.Placements))
	for i, p := range data.Placements {
		plan.Placements[i] = collage.Placement{
			Item:      collage.Item{DisplayLink: p.Link, Label: p.Title},
			Footprint: p.Footprint,
			Position:  collage.GridPosition{Row: p.Row, Col: p.Col},
		}
	}
	if len(data.Dropped) > 0 {
		plan.Dropped = data.Dropped
	}
	return plan, data.Rows, data.Cols, nil
}
