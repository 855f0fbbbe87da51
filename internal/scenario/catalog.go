package scenario

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// Default returns the built-in catalog of five historically-calibrated
// scenarios. Magnitudes are the calibration points used when the model
// was fitted; they represent a "standard" severity of each narrative and
// are scaled per-request via Scale.
func Default() *Catalog {
	c, err := NewCatalog([]Scenario{
		{
			Key:  "opec_cut",
			Name: "OPEC Production Cut (10%)",
			Description: "OPEC announces a coordinated 10% production cut. " +
				"Supply tightens, inventories draw down, risk sentiment improves.",
			Shocks: map[string]float64{
				"inventory_pct":  -0.05, // 5% weekly inventory drawdown
				"vix_diff":       -2.0,  // cut read as bullish, fear falls
				"dollar_return":  -0.002,
				"indpro_return":  0.0,
				"fed_funds_diff": 0.0,
			},
		},
		{
			Key:  "global_recession",
			Name: "Global Recession",
			Description: "A global recession takes hold. Industrial activity contracts " +
				"sharply, demand for oil collapses, financial markets enter panic mode.",
			Shocks: map[string]float64{
				"indpro_return":  -0.02, // 2% weekly industrial contraction
				"vix_diff":       8.0,   // panic spike
				"dollar_return":  0.005, // safe-haven dollar bid
				"inventory_pct":  0.03,  // demand collapse builds inventories
				"fed_funds_diff": 0.0,
			},
		},
		{
			Key:  "rate_hike",
			Name: "Aggressive Fed Rate Hike (+75bps)",
			Description: "The Federal Reserve raises rates aggressively by 75 basis points. " +
				"Economic growth slows, dollar strengthens, oil demand weakens.",
			Shocks: map[string]float64{
				"dollar_return":  0.008,
				"vix_diff":       3.0,
				"indpro_return":  -0.005,
				"fed_funds_diff": 0.75, // the hike itself
				"inventory_pct":  0.0,
			},
		},
		{
			Key:  "geopolitical_tension",
			Name: "Major Geopolitical Tension (Supply Disruption)",
			Description: "Significant geopolitical conflict disrupts oil supply routes. " +
				"Markets panic, safe havens rally, supply uncertainty drives prices up.",
			Shocks: map[string]float64{
				"inventory_pct":  -0.08, // sharp inventory drop
				"vix_diff":       12.0,  // war-level fear
				"dollar_return":  0.003,
				"indpro_return":  0.0,
				"fed_funds_diff": 0.0,
			},
		},
		{
			Key:  "demand_boom",
			Name: "Global Demand Boom (China Reopening)",
			Description: "A major emerging market (e.g. China) reopens strongly after a " +
				"period of restriction. Industrial demand surges globally.",
			Shocks: map[string]float64{
				"indpro_return":  0.015,
				"inventory_pct":  -0.04,
				"vix_diff":       -3.0,
				"dollar_return":  -0.003,
				"fed_funds_diff": 0.0,
			},
		},
	})
	if err != nil {
		// The built-in definitions are compile-time constants; a failure
		// here is a programming error.
		panic(fmt.Sprintf("invalid built-in scenario catalog: %v", err))
	}
	return c
}

type catalogFile struct {
	Scenarios []Scenario `yaml:"scenarios"`
}

// LoadCatalog reads a YAML catalog override from path. If the path is
// empty or the file does not exist, the built-in catalog is returned
// without error.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read scenario catalog: %w", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse scenario catalog: %w", err)
	}
	if len(file.Scenarios) == 0 {
		return nil, fmt.Errorf("scenario catalog %s defines no scenarios", path)
	}

	return NewCatalog(file.Scenarios)
}
