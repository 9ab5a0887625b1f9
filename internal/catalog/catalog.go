// Package catalog loads the learnable item inventory. The catalog is a flat
// JSON list of items; order matters because the review scheduler uses it to
// break ties.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/osmnmelih/deutsch-delight-sub001/internal/domain"
)

//go:embed data/catalog.json
var embeddedCatalog []byte

// Parse decodes and validates a catalog payload. Duplicate item IDs within
// a domain are rejected.
func Parse(data []byte) ([]domain.Item, error) {
	var items []domain.Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}

	seen := make(map[string]struct{}, len(items))
	for i, item := range items {
		if err := item.Validate(); err != nil {
			return nil, fmt.Errorf("catalog entry %d (%q): %w", i, item.ID, err)
		}
		key := string(item.Domain) + "/" + item.ID
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("catalog entry %d: duplicate item %q in domain %s", i, item.ID, item.Domain)
		}
		seen[key] = struct{}{}
	}
	return items, nil
}

// Load reads a catalog from disk. An empty path falls back to the embedded
// default catalog.
func Load(path string) ([]domain.Item, error) {
	if path == "" {
		return Parse(embeddedCatalog)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}
	items, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog file %s: %w", path, err)
	}
	return items, nil
}

// ByDomain partitions items by their domain, preserving catalog order.
func ByDomain(items []domain.Item) map[domain.ItemDomain][]domain.Item {
	grouped := make(map[domain.ItemDomain][]domain.Item)
	for _, item := range items {
		grouped[item.Domain] = append(grouped[item.Domain], item)
	}
	return grouped
}

// Categories lists the distinct categories for a domain in first-seen order.
func Categories(items []domain.Item, itemDomain domain.ItemDomain) []string {
	var categories []string
	seen := make(map[string]struct{})
	for _, item := range items {
		if item.Domain != itemDomain || item.Category == "" {
			continue
		}
		if _, ok := seen[item.Category]; ok {
			continue
		}
		seen[item.Category] = struct{}{}
		categories = append(categories, item.Category)
	}
	return categories
}
