package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix is the prefix of every environment variable read by Load.
const EnvPrefix = "REGIONSTATS"

// Config represents the complete application configuration
type Config struct {
	Input     InputConfig     `yaml:"input" envconfig:"INPUT"`
	Output    OutputConfig    `yaml:"output" envconfig:"OUTPUT"`
	Analysis  AnalysisConfig  `yaml:"analysis" envconfig:"ANALYSIS"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// InputConfig names the input directory and the four dataset files in it.
type InputConfig struct {
	Dir            string `yaml:"dir" envconfig:"DIR" validate:"required"`
	AlcoholFile    string `yaml:"alcohol_file" envconfig:"ALCOHOL_FILE" validate:"required"`
	FireFile       string `yaml:"fire_file" envconfig:"FIRE_FILE" validate:"required"`
	AreaFile       string `yaml:"area_file" envconfig:"AREA_FILE" validate:"required"`
	PopulationFile string `yaml:"population_file" envconfig:"POPULATION_FILE" validate:"required"`
	// CSVEncoding is "auto", "utf-8" or "windows-1250".
	CSVEncoding string `yaml:"csv_encoding" envconfig:"CSV_ENCODING" validate:"oneof=auto utf-8 windows-1250"`
}

// OutputConfig controls where results go and which optional artifacts are produced.
type OutputConfig struct {
	Dir         string `yaml:"dir" envconfig:"DIR" validate:"required"`
	WriteMerged bool   `yaml:"write_merged" envconfig:"WRITE_MERGED"`
	XLSXReport  bool   `yaml:"xlsx_report" envconfig:"XLSX_REPORT"`
	SQLitePath  string `yaml:"sqlite_path" envconfig:"SQLITE_PATH"`
	BOMPrefix   bool   `yaml:"bom_prefix" envconfig:"BOM_PREFIX"`
	Quiet       bool   `yaml:"quiet" envconfig:"QUIET"`
}

// AnalysisConfig selects which aggregation levels are computed.
type AnalysisConfig struct {
	Mode string `yaml:"mode" envconfig:"MODE" validate:"oneof=all powiat voivodeship"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required_unless=Output console"`
}

// TelemetryConfig enables span and metric files. Empty paths disable them.
type TelemetryConfig struct {
	TraceFile   string `yaml:"trace_file" envconfig:"TRACE_FILE"`
	MetricsFile string `yaml:"metrics_file" envconfig:"METRICS_FILE"`
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Input: InputConfig{
			AlcoholFile:    "alkohol2024.csv",
			FireFile:       "pozary2024.csv",
			AreaFile:       "powierzchnia_geodezyjna2024.xlsx",
			PopulationFile: "powierzchnia_i_ludnosc2024.xlsx",
			CSVEncoding:    "auto",
		},
		Analysis: AnalysisConfig{
			Mode: "all",
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/regionstats.log",
		},
	}
}

// Load builds the configuration from defaults, the optional YAML file at
// configFile, and REGIONSTATS_* environment variables, in that order of
// increasing precedence. The result is not validated; callers apply their
// own overrides first and then call Validate.
func Load(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// No default tags on the struct: envconfig only touches fields whose
	// variable is set, so file values survive.
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

var validate = validator.New()

// Validate checks field constraints and returns one error listing every violation.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q (value %q)", fe.Namespace(), fe.Tag(), fmt.Sprint(fe.Value())))
	}
	return fmt.Errorf("config validation failed: %s", strings.Join(msgs, "; "))
}
