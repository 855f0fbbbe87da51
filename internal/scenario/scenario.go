// Package scenario defines the catalog of named macroeconomic scenarios
// and the shock sets they apply to the forecasting model's drivers.
package scenario

import (
	"fmt"
	"sort"
	"strings"

	"github.com/oilmacro/scenario-forecast/pkg/driver"
)

// Scenario is a named, immutable bundle of driver shocks representing a
// macro narrative. Shock magnitudes are calibrated against what actually
// happened during comparable historical events.
type Scenario struct {
	Key         string        `yaml:"key"`
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Shocks      driver.Shocks `yaml:"shocks"`
}

// ShockCopy returns an independent copy of the scenario's shock set.
// Callers needing to adjust magnitudes work on the copy; the stored
// shocks are never modified after catalog construction.
func (s Scenario) ShockCopy() driver.Shocks {
	return s.Shocks.Copy()
}

// UnknownScenarioError is returned when a requested key is not in the
// catalog. It carries the valid keys so callers can present them.
type UnknownScenarioError struct {
	Key   string
	Valid []string
}

func (e *UnknownScenarioError) Error() string {
	return fmt.Sprintf("unknown scenario %q, available: %s", e.Key, strings.Join(e.Valid, ", "))
}

// Catalog is a fixed registry of scenarios. It is built once at start-up
// and read-only afterwards, so it is safe to share across concurrent
// requests without locking.
type Catalog struct {
	scenarios map[string]Scenario
	keys      []string
}

// NewCatalog builds a catalog from a scenario list. Keys must be unique
// and non-empty.
func NewCatalog(scenarios []Scenario) (*Catalog, error) {
	c := &Catalog{scenarios: make(map[string]Scenario, len(scenarios))}
	for _, s := range scenarios {
		if s.Key == "" {
			return nil, fmt.Errorf("scenario %q has an empty key", s.Name)
		}
		if _, exists := c.scenarios[s.Key]; exists {
			return nil, fmt.Errorf("duplicate scenario key %q", s.Key)
		}
		// Store a defensive copy so later mutation of the caller's
		// slice cannot reach into the catalog.
		s.Shocks = s.Shocks.Copy()
		c.scenarios[s.Key] = s
		c.keys = append(c.keys, s.Key)
	}
	sort.Strings(c.keys)
	return c, nil
}

// Lookup returns the scenario for a key, or an UnknownScenarioError
// listing the valid keys.
func (c *Catalog) Lookup(key string) (Scenario, error) {
	s, ok := c.scenarios[key]
	if !ok {
		return Scenario{}, &UnknownScenarioError{Key: key, Valid: c.Keys()}
	}
	return s, nil
}

// Keys returns the sorted scenario keys.
func (c *Catalog) Keys() []string {
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}

// All returns the scenarios sorted by key.
func (c *Catalog) All() []Scenario {
	out := make([]Scenario, 0, len(c.keys))
	for _, key := range c.keys {
		out = append(out, c.scenarios[key])
	}
	return out
}

// Len returns the number of scenarios in the catalog.
func (c *Catalog) Len() int {
	return len(c.keys)
}

// Scale returns a new shock set with every magnitude multiplied by the
// modifier. This is the only supported way to adjust scenario severity:
// the input is never mutated and catalog entries are never touched, so
// concurrent requests scaling the same scenario cannot interfere.
func Scale(shocks driver.Shocks, modifier float64) driver.Shocks {
	out := make(driver.Shocks, len(shocks))
	for name, delta := range shocks {
		out[name] = delta * modifier
	}
	return out
}
