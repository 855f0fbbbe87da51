package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/oilmacro/scenario-forecast/internal/baseline"
	"github.com/oilmacro/scenario-forecast/internal/config"
	"github.com/oilmacro/scenario-forecast/internal/forecast"
	"github.com/oilmacro/scenario-forecast/internal/llm"
	"github.com/oilmacro/scenario-forecast/internal/sarimax"
	"github.com/oilmacro/scenario-forecast/internal/scenario"
	"github.com/oilmacro/scenario-forecast/internal/server"
	"github.com/oilmacro/scenario-forecast/pkg/constants"
	"github.com/oilmacro/scenario-forecast/pkg/output"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is set at build time via -ldflags.
var version = "dev"

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	// Determine log level (CLI override takes precedence)
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if level == "" {
		level = "info" // Default to info level
	}

	// Parse log level
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	// Determine output format
	format := loggingConfig.Format
	if format == "" {
		format = "json" // Default to JSON for production
	}

	// Configure encoder
	var zapConfig zap.Config
	switch format {
	case "console":
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	case "json":
		zapConfig = zap.NewProductionConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}

	// Configure output file if specified
	if loggingConfig.OutputFile != "" {
		// Ensure the directory exists
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %v", dir, err)
			}
		}

		// Test if we can create/write to the file
		if file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %v", loggingConfig.OutputFile, err)
		} else {
			_ = file.Close()
		}

		zapConfig.OutputPaths = []string{loggingConfig.OutputFile}
		zapConfig.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return zapConfig.Build()
}

func main() {
	// Process command line flags first to get config location
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	scenarioKey := flag.String("scenario", "", "run a single scenario by key and print the report")
	weeks := flag.Int("weeks", 0, "forecast horizon in weeks (default from config)")
	modifier := flag.Float64("modifier", constants.DefaultMagnitudeModifier, "magnitude modifier applied to the scenario's shocks")
	listScenarios := flag.Bool("list", false, "list available scenarios and exit")
	serve := flag.Bool("serve", false, "start the HTTP API server")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	// Load the config file to get logging configuration
	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	// Initialize logging based on config and CLI override
	logger, err := initializeLogger(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Validate configuration and display any warnings
	warnings := conf.ValidateConfiguration()
	for _, warning := range warnings {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	// Load the scenario catalog (built-in unless overridden).
	catalog, err := scenario.LoadCatalog(conf.Forecast.CatalogPath)
	if err != nil {
		logger.Fatal("failed to load scenario catalog",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	if *listScenarios {
		for _, s := range catalog.All() {
			fmt.Printf("[%s]\n  %s\n  %s\n\n", s.Key, s.Name, s.Description)
		}
		return
	}

	// The baseline snapshot and fitted model must be available before
	// any simulation; their absence is fatal at start-up.
	snapshot, err := baseline.Load(logger, conf.Data.WeeklyPath, conf.Data.TransformedPath)
	if err != nil {
		logger.Fatal("failed to load baseline snapshot",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	model, err := sarimax.Load(logger, conf.Model.Path)
	if err != nil {
		logger.Fatal("failed to load model artifact",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	runner, err := forecast.NewRunner(logger, catalog, snapshot, model)
	if err != nil {
		logger.Fatal("failed to initialize scenario runner",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	if *serve {
		runServer(logger, conf, catalog, runner)
		return
	}

	if *scenarioKey == "" {
		fmt.Println("nothing to do: pass -scenario <key>, -list, or -serve")
		flag.Usage()
		os.Exit(2)
	}

	horizon := *weeks
	if horizon == 0 {
		horizon = conf.Forecast.DefaultWeeks
	}

	result, err := runner.RunScaled(*scenarioKey, horizon, *modifier)
	if err != nil {
		logger.Fatal("scenario run failed",
			zap.String("op", "main"),
			zap.String("scenario", *scenarioKey),
			zap.Error(err),
		)
	}

	fmt.Print(output.Report(result))
	if shocks := output.ShockLines(result.ShocksApplied); shocks != "" {
		fmt.Printf("\nShocks applied:\n%s", shocks)
	}
}

func runServer(logger *zap.Logger, conf *config.Configuration, catalog *scenario.Catalog, runner *forecast.Runner) {
	var nlp llm.Service = llm.Disabled{}
	if conf.LLM.APIKey != "" {
		gemini, err := llm.NewGeminiService(context.Background(), logger, conf.LLM.APIKey, conf.LLM.Model, catalog.Keys())
		if err != nil {
			logger.Fatal("failed to initialize LLM service",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		nlp = gemini
	}

	h, err := server.NewHandler(server.Options{
		Logger:         logger,
		Runner:         runner,
		NLP:            nlp,
		Version:        version,
		DefaultWeeks:   conf.Forecast.DefaultWeeks,
		AllowedOrigins: conf.Server.AllowedOrigins,
	})
	if err != nil {
		logger.Fatal("failed to initialize HTTP handler",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	srv := &http.Server{
		Addr:        conf.Server.Address,
		Handler:     h,
		ReadTimeout: constants.DefaultReadTimeoutSeconds * time.Second,
	}

	logger.Info("starting HTTP server",
		zap.String("op", "main"),
		zap.String("address", conf.Server.Address),
	)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("HTTP server failed",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}
