package eval

import (
	"encoding/json"
	"fmt"
	"os"
)

// Item pairs one natural-language prompt with one SQL query. Both the
// benchmark file and the generated file are JSON arrays of this shape.
type Item struct {
	NL    string `json:"NL"`
	Query string `json:"Query"`
}

// LoadItems reads a dataset file. A missing or malformed file is fatal for
// the run; it is a configuration problem, not a per-item one.
func LoadItems(path string) ([]Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset %s: %w", path, err)
	}

	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to parse dataset %s: %w", path, err)
	}

	return items, nil
}

// WriteItems saves a dataset file, pretty-printed for review.
func WriteItems(path string, items []Item) error {
	data, err := json.MarshalIndent(items, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode dataset: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write dataset %s: %w", path, err)
	}
	return nil
}
