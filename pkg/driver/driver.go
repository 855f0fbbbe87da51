// Package driver defines the closed set of exogenous macroeconomic
// variables consumed by the forecasting model.
package driver

// Driver identifies one of the five exogenous variables the model was
// fitted against. The set is fixed; any matrix fed to the model must
// cover exactly these drivers.
type Driver int

const (
	// DollarReturn is the weekly % change in the USD index.
	DollarReturn Driver = iota
	// IndproReturn is the weekly % change in industrial production.
	IndproReturn
	// InventoryPct is the weekly % change in crude inventories.
	InventoryPct
	// FedFundsDiff is the weekly change in the fed funds rate (percentage points).
	FedFundsDiff
	// VixDiff is the weekly change in the VIX index.
	VixDiff

	count
)

// Count is the number of drivers in the fixed schema.
const Count = int(count)

var names = [Count]string{
	DollarReturn: "dollar_return",
	IndproReturn: "indpro_return",
	InventoryPct: "inventory_pct",
	FedFundsDiff: "fed_funds_diff",
	VixDiff:      "vix_diff",
}

// String returns the column name the model was trained with.
func (d Driver) String() string {
	if d < 0 || int(d) >= Count {
		return "unknown"
	}
	return names[d]
}

// All returns the drivers in model column order.
func All() []Driver {
	return []Driver{DollarReturn, IndproReturn, InventoryPct, FedFundsDiff, VixDiff}
}

// Names returns the model column names in order.
func Names() []string {
	out := make([]string, Count)
	copy(out, names[:])
	return out
}

// Parse maps a column name back to its Driver. The second return is
// false for names outside the fixed schema.
func Parse(name string) (Driver, bool) {
	for d, n := range names {
		if n == name {
			return Driver(d), true
		}
	}
	return Driver(-1), false
}

// Vector holds one value per driver. Using a fixed-size array gives
// full-coverage guarantees: there is no way to construct a Vector that
// is missing a driver.
type Vector [Count]float64

// Get returns the value for a driver.
func (v Vector) Get(d Driver) float64 {
	return v[d]
}

// Set assigns the value for a driver.
func (v *Vector) Set(d Driver, value float64) {
	v[d] = value
}

// Shifted returns a copy of the vector with the shock set applied on
// top. Drivers absent from the shock set shift by zero; shock entries
// whose names are outside the fixed schema are silently ignored. That
// permissiveness is deliberate: shock sets come from callers (including
// an LLM parser) and an unrecognized key must not fail a simulation.
func (v Vector) Shifted(shocks Shocks) Vector {
	out := v
	for name, delta := range shocks {
		d, ok := Parse(name)
		if !ok {
			continue
		}
		out[d] += delta
	}
	return out
}

// Shocks maps driver column names to deltas applied on top of the
// baseline. A nil or empty map means no shock.
type Shocks map[string]float64

// Copy returns an independent copy of the shock set.
func (s Shocks) Copy() Shocks {
	out := make(Shocks, len(s))
	for name, delta := range s {
		out[name] = delta
	}
	return out
}
