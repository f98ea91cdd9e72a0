// =============================================================================
// Resolved Trades Consolidator - Configuration Module
// =============================================================================
//
// This module loads the run configuration: where source files live, where
// they are staged, and where the two output workbooks go.
//
// LOAD ORDER (later wins):
//   1. config.yaml        : optional; a missing file is not an error
//   2. .env               : optional; loaded into the process environment
//   3. RESOLVED_* env vars: e.g. RESOLVED_SOURCE_ROOT, RESOLVED_CSV_DELIMITER
//   4. defaults           : fill whatever is still empty
//
// CLI flags are applied on top by the cmd package.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "RESOLVED"

// DefaultConfigFile is the config path used when none is given.
const DefaultConfigFile = "config.yaml"

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the run configuration.
type MainConfig struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// SourceRoot is the directory tree searched for "*_Resolved" files.
	// Default: "./Resolved_Trades_Attempt"
	SourceRoot string `yaml:"source_root" envconfig:"SOURCE_ROOT"`

	// StagingDir receives a flat copy of every discovered file.
	// Default: "./All_Resolved"
	StagingDir string `yaml:"staging_dir" envconfig:"STAGING_DIR"`

	// MergedOutput is the merged workbook, one sheet per source file.
	// Default: "./All_Resolved/All_Resolved_Merged.xlsx"
	MergedOutput string `yaml:"merged_output" envconfig:"MERGED_OUTPUT"`

	// SummaryOutput is the merged workbook with summary blocks and the
	// aggregate sheet.
	// Default: "./All_Resolved/All_Resolved_Merged_WithSummary.xlsx"
	SummaryOutput string `yaml:"summary_output" envconfig:"SUMMARY_OUTPUT"`

	// RunLogDir receives a text run summary per merge. Empty disables it.
	RunLogDir string `yaml:"run_log_dir" envconfig:"RUN_LOG_DIR"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level" envconfig:"LOG_LEVEL"`

	// LogFormat selects the log handler.
	// Valid values: "text", "json"
	// Default: "text"
	LogFormat string `yaml:"log_format" envconfig:"LOG_FORMAT"`

	// =========================================================================
	// CSV PARSING SETTINGS
	// =========================================================================

	// CSV holds the settings for csv source files.
	CSV CSVSettings `yaml:"csv" envconfig:"CSV"`
}

// CSVSettings defines how csv source files are parsed.
type CSVSettings struct {
	// Delimiter is the field separator, a single character.
	// Default: ","
	Delimiter string `yaml:"delimiter" envconfig:"DELIMITER"`
}

// DelimiterRune returns the delimiter as a rune.
func (c CSVSettings) DelimiterRune() rune {
	r, _ := utf8.DecodeRuneInString(c.Delimiter)
	return r
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// LoadMainConfig loads the configuration from configPath, the environment
// and defaults.
//
// PARAMETERS:
//   - configPath: The YAML file. An empty path or a missing file is skipped.
//
// RETURNS:
//   - A pointer to the MainConfig struct.
//   - An error if the file cannot be parsed or the result is invalid.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	var config MainConfig

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, &config); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	// A .env file is optional.
	_ = godotenv.Load()

	if err := envconfig.Process(EnvPrefix, &config); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	applyMainConfigDefaults(&config)

	if err := validateMainConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// applyMainConfigDefaults sets default values for any unset configuration options.
func applyMainConfigDefaults(config *MainConfig) {
	if config.SourceRoot == "" {
		config.SourceRoot = "./Resolved_Trades_Attempt"
	}
	if config.StagingDir == "" {
		config.StagingDir = "./All_Resolved"
	}
	if config.MergedOutput == "" {
		config.MergedOutput = "./All_Resolved/All_Resolved_Merged.xlsx"
	}
	if config.SummaryOutput == "" {
		config.SummaryOutput = "./All_Resolved/All_Resolved_Merged_WithSummary.xlsx"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.LogFormat == "" {
		config.LogFormat = "text"
	}
	if config.CSV.Delimiter == "" {
		config.CSV.Delimiter = ","
	}
}

// Validate checks a configuration after flags have been applied.
func (c *MainConfig) Validate() error {
	return validateMainConfig(c)
}

// validateMainConfig validates the main configuration.
func validateMainConfig(config *MainConfig) error {
	switch strings.ToLower(config.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown log_level %q", config.LogLevel)
	}

	switch strings.ToLower(config.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log_format %q", config.LogFormat)
	}

	if utf8.RuneCountInString(config.CSV.Delimiter) != 1 {
		return fmt.Errorf("csv delimiter must be a single character, got %q", config.CSV.Delimiter)
	}

	if config.MergedOutput == config.SummaryOutput {
		return errors.New("merged_output and summary_output must differ")
	}

	return nil
}
