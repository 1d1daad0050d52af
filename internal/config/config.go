package config

import (
	"os"
	"strconv"

	"aline/domain/causal"
	"aline/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Data     DataConfig
	Analysis AnalysisConfig
	Report   ReportConfig
}

// DataConfig holds input settings
type DataConfig struct {
	CSVPath string
}

// AnalysisConfig holds estimation settings
type AnalysisConfig struct {
	Weights    causal.WeightConfig
	Confidence float64
}

// ReportConfig holds output settings
type ReportConfig struct {
	HTMLFile  string
	ExcelFile string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Data: DataConfig{
			CSVPath: getEnvOrDefault("ALINE_CSV", "full_cohort_data.csv"),
		},
		Analysis: AnalysisConfig{
			Weights: causal.WeightConfig{
				Policy:    causal.PositivityPolicy(getEnvOrDefault("POSITIVITY_POLICY", string(causal.PositivityFail))),
				ClipBound: getEnvFloatOrDefault("CLIP_BOUND", 0.01),
			},
			Confidence: getEnvFloatOrDefault("CONFIDENCE_LEVEL", 0.95),
		},
		Report: ReportConfig{
			HTMLFile:  getEnvOrDefault("REPORT_HTML", ""),
			ExcelFile: getEnvOrDefault("REPORT_XLSX", ""),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func validateConfig(config *Config) error {
	if config.Data.CSVPath == "" {
		return errors.ConfigInvalid("ALINE_CSV is required")
	}
	if err := config.Analysis.Weights.Validate(); err != nil {
		return errors.ConfigInvalid(err.Error())
	}
	if config.Analysis.Confidence <= 0 || config.Analysis.Confidence >= 1 {
		return errors.ConfigInvalid("CONFIDENCE_LEVEL must lie in (0, 1)")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
