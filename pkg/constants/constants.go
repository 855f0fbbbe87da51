// Package constants provides shared constants for the scenario-forecast application.
package constants

// DateLayout is the date format used in the weekly data files and in output.
const DateLayout = "2006-01-02"

// Forecast defaults
const (
	// DefaultForecastWeeks is the horizon used when a request does not specify one.
	DefaultForecastWeeks = 12

	// MaxForecastWeeks caps the horizon a single request may ask for.
	MaxForecastWeeks = 104

	// DefaultMagnitudeModifier leaves scenario shocks at their calibrated values.
	DefaultMagnitudeModifier = 1.0
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name.
	DefaultConfigFile = "config.yaml"

	// DefaultWeeklyDataFile is the cleaned weekly dataset exported by the training pipeline.
	DefaultWeeklyDataFile = "data/oil_macro_weekly.csv"

	// DefaultTransformedDataFile is the stationary dataset the model was trained on.
	DefaultTransformedDataFile = "data/oil_macro_transformed.csv"

	// DefaultModelFile is the fitted model artifact exported by the training pipeline.
	DefaultModelFile = "models/sarimax_model.json"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API.
	DefaultServerAddress = ":8080"

	// DefaultReadTimeoutSeconds bounds how long the server waits for a request body.
	DefaultReadTimeoutSeconds = 15
)

// LLM defaults
const (
	// DefaultLLMModel is the Gemini model used for query parsing and explanations.
	DefaultLLMModel = "gemini-2.0-flash"
)
