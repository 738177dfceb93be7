package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/collagefm/pkg/collage"
	errs "github.com/matzehuels/collagefm/pkg/errors"
)

type itemList struct {
	Items []collage.Item `json:"items"`
}

// ReadItems decodes a JSON item list from r.
//
// ReadItems returns an INVALID_INPUT error if the JSON is malformed or an
// entry has neither a title nor a link. It does not close r.
func ReadItems(r io.Reader) ([]collage.Item, error) {
	var data itemList
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "decode item list")
	}
	for i, it := range data.Items {
		if it.Label == "" && it.DisplayLink == "" {
			return nil, errs.New(errs.ErrCodeInvalidInput, "item %d: title or link required", i)
		}
	}
	if data.Items == nil {
		data.Items = []collage.Item{}
	}
	return data.Items, nil
}

// ImportItems reads a JSON item list from the file at path.
func ImportItems(path string) ([]collage.Item, error) {
	if err := errs.ValidatePath(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadItems(f)
}

// WriteItems encodes items as a JSON item list.
func WriteItems(items []collage.Item, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(itemList{Items: items}); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
