// Package config defines the data structures related to configuration and
// includes functions for loading and validating the config.
package config

import (
	"fmt"

	"github.com/oilmacro/scenario-forecast/pkg/constants"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for scenario-forecast.
type Configuration struct {
	Data     DataConfig     `yaml:"data"`
	Model    ModelConfig    `yaml:"model"`
	Forecast ForecastConfig `yaml:"forecast,omitempty"`
	Server   ServerConfig   `yaml:"server,omitempty"`
	LLM      LLMConfig      `yaml:"llm,omitempty"`
	Logging  LoggingConfig  `yaml:"logging,omitempty"`
}

// DataConfig points at the weekly datasets exported by the training pipeline.
type DataConfig struct {
	WeeklyPath      string `yaml:"weeklyPath"`
	TransformedPath string `yaml:"transformedPath"`
}

// ModelConfig points at the fitted model artifact.
type ModelConfig struct {
	Path string `yaml:"path"`
}

// ForecastConfig holds forecasting defaults.
type ForecastConfig struct {
	DefaultWeeks int    `yaml:"defaultWeeks,omitempty"`
	CatalogPath  string `yaml:"catalogPath,omitempty"` // optional scenario catalog override
}

// ServerConfig holds HTTP server options.
type ServerConfig struct {
	Address        string   `yaml:"address,omitempty"`
	AllowedOrigins []string `yaml:"allowedOrigins,omitempty"`
}

// LLMConfig holds the Gemini collaborator options. An empty APIKey
// disables natural-language parsing and explanations; the API keeps
// working with deterministic fallbacks.
type LLMConfig struct {
	APIKey string `yaml:"apiKey,omitempty"`
	Model  string `yaml:"model,omitempty"`
}

// LoggingConfig holds logging configuration options.
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// LoadConfiguration takes a file path as input and loads the
// YAML-formatted configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	viper.SetConfigFile(configPath)
	viper.AutomaticEnv()

	viper.SetConfigType("yml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	var configuration Configuration
	err := viper.Unmarshal(&configuration)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	configuration.applyDefaults()
	return &configuration, nil
}

func (conf *Configuration) applyDefaults() {
	if conf.Data.WeeklyPath == "" {
		conf.Data.WeeklyPath = constants.DefaultWeeklyDataFile
	}
	if conf.Data.TransformedPath == "" {
		conf.Data.TransformedPath = constants.DefaultTransformedDataFile
	}
	if conf.Model.Path == "" {
		conf.Model.Path = constants.DefaultModelFile
	}
	if conf.Forecast.DefaultWeeks == 0 {
		conf.Forecast.DefaultWeeks = constants.DefaultForecastWeeks
	}
	if conf.Server.Address == "" {
		conf.Server.Address = constants.DefaultServerAddress
	}
	if conf.LLM.Model == "" {
		conf.LLM.Model = constants.DefaultLLMModel
	}
}

// ValidateConfiguration performs general validation of the configuration
// and returns warnings for suspicious but workable settings.
func (conf *Configuration) ValidateConfiguration() []string {
	var warnings []string

	if conf.Forecast.DefaultWeeks < 1 {
		warnings = append(warnings, fmt.Sprintf(
			"forecast.defaultWeeks is %d; requests without an explicit horizon will be rejected",
			conf.Forecast.DefaultWeeks))
	}
	if conf.Forecast.DefaultWeeks > constants.MaxForecastWeeks {
		warnings = append(warnings, fmt.Sprintf(
			"forecast.defaultWeeks %d exceeds the per-request cap of %d",
			conf.Forecast.DefaultWeeks, constants.MaxForecastWeeks))
	}
	if conf.LLM.APIKey == "" {
		warnings = append(warnings,
			"llm.apiKey is not set; natural-language parsing and explanations are disabled")
	}

	return warnings
}
