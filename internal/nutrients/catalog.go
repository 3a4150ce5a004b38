// Package nutrients holds the versioned nutrient allow-list. The validator
// and fallback builders treat it as configuration data so the list can evolve
// without code changes.
package nutrients

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

//go:embed catalog.json
var catalogJSON []byte

// Entry is the metadata for one allow-listed nutrient key.
type Entry struct {
	Key      string `json:"key"`
	FullName string `json:"full_name"`
	Class    string `json:"class"`
	Impact   string `json:"impact"`
	Unit     string `json:"unit"`
}

// Catalog is the fixed allow-list of nutrient keys with their metadata.
type Catalog struct {
	Version string
	entries map[string]Entry
	keys    []string
}

// Load parses the embedded catalog. Called once at startup.
func Load() (*Catalog, error) {
	var raw struct {
		Version   string  `json:"version"`
		Nutrients []Entry `json:"nutrients"`
	}
	if err := json.Unmarshal(catalogJSON, &raw); err != nil {
		return nil, fmt.Errorf("parse nutrient catalog: %w", err)
	}
	if len(raw.Nutrients) == 0 {
		return nil, fmt.Errorf("nutrient catalog is empty")
	}

	c := &Catalog{
		Version: raw.Version,
		entries: make(map[string]Entry, len(raw.Nutrients)),
	}
	for _, e := range raw.Nutrients {
		if e.Key == "" {
			return nil, fmt.Errorf("nutrient catalog entry missing key")
		}
		if _, dup := c.entries[e.Key]; dup {
			return nil, fmt.Errorf("duplicate nutrient key %q in catalog", e.Key)
		}
		c.entries[e.Key] = e
		c.keys = append(c.keys, e.Key)
	}
	return c, nil
}

// Lookup returns the entry for key and whether the key is allow-listed.
func (c *Catalog) Lookup(key string) (Entry, bool) {
	e, ok := c.entries[key]
	return e, ok
}

// Allowed reports whether key is on the allow-list.
func (c *Catalog) Allowed(key string) bool {
	_, ok := c.entries[key]
	return ok
}

// Keys returns all allow-listed nutrient keys in catalog order.
func (c *Catalog) Keys() []string {
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}

// Len returns the number of allow-listed nutrients.
func (c *Catalog) Len() int {
	return len(c.keys)
}
