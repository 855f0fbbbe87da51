// Package baseline loads the most recent observed market conditions,
// which scenario simulations use as the starting point for shocks.
package baseline

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/oilmacro/scenario-forecast/pkg/constants"
	"github.com/oilmacro/scenario-forecast/pkg/driver"
	"go.uber.org/zap"
)

// Snapshot holds the latest observed values from the weekly datasets.
// It is created once at start-up and read-only afterwards; scenario runs
// never modify it, so it is safe to share across concurrent requests.
type Snapshot struct {
	// Date is the observation date of the most recent week.
	Date time.Time

	// BrentPrice is the latest observed Brent price in USD/barrel.
	BrentPrice float64

	// Drivers are the latest transformed values of the five exogenous
	// variables, in model column order.
	Drivers driver.Vector

	// Raw level values, kept for display and explanation context.
	Inventories    float64
	IndustrialProd float64
	DollarIndex    float64
	FedFunds       float64
	Vix            float64
}

// Load reads the raw weekly dataset and the transformed (stationary)
// dataset and extracts the most recent row of each. Both files are
// exported by the offline training pipeline; a missing or malformed
// file is a start-up fatal condition for the caller.
func Load(logger *zap.Logger, weeklyPath, transformedPath string) (*Snapshot, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	weekly, err := lastRow(weeklyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load weekly data: %w", err)
	}
	transformed, err := lastRow(transformedPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load transformed data: %w", err)
	}

	snap := &Snapshot{Date: weekly.date}

	if snap.BrentPrice, err = weekly.value("brent"); err != nil {
		return nil, err
	}
	if snap.Inventories, err = weekly.value("inventories"); err != nil {
		return nil, err
	}
	if snap.IndustrialProd, err = weekly.value("industrial_prod"); err != nil {
		return nil, err
	}
	if snap.DollarIndex, err = weekly.value("dollar_index"); err != nil {
		return nil, err
	}
	if snap.FedFunds, err = weekly.value("fed_funds"); err != nil {
		return nil, err
	}
	if snap.Vix, err = weekly.value("vix"); err != nil {
		return nil, err
	}

	for _, d := range driver.All() {
		v, err := transformed.value(d.String())
		if err != nil {
			return nil, err
		}
		snap.Drivers.Set(d, v)
	}

	logger.Info("baseline snapshot loaded",
		zap.String("op", "baseline.Load"),
		zap.String("date", snap.Date.Format(constants.DateLayout)),
		zap.Float64("brentPrice", snap.BrentPrice),
	)

	return snap, nil
}

// row is the final record of a CSV file with named column access.
type row struct {
	path    string
	date    time.Time
	columns map[string]string
}

func (r *row) value(column string) (float64, error) {
	raw, ok := r.columns[column]
	if !ok {
		return 0, fmt.Errorf("%s is missing column %q", r.path, column)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s column %q: invalid value %q: %w", r.path, column, raw, err)
	}
	return v, nil
}

// lastRow streams through the CSV and keeps only the final record. The
// first column is the date index; remaining columns are looked up by
// header name so column order in the export does not matter.
func lastRow(path string) (*row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read header: %w", path, err)
	}
	if len(header) < 2 {
		return nil, fmt.Errorf("%s: expected a date index plus data columns", path)
	}

	var last []string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: failed to read record: %w", path, err)
		}
		last = record
	}
	if last == nil {
		return nil, fmt.Errorf("%s contains no data rows", path)
	}

	date, err := time.Parse(constants.DateLayout, last[0])
	if err != nil {
		return nil, fmt.Errorf("%s: invalid date %q: %w", path, last[0], err)
	}

	columns := make(map[string]string, len(header)-1)
	for i := 1; i < len(header) && i < len(last); i++ {
		columns[header[i]] = last[i]
	}

	return &row{path: path, date: date, columns: columns}, nil
}
