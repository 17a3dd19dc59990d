// Package config provides configuration loading for the regionstats CLI.
//
// # Sources
//
// Configuration is assembled in increasing order of precedence:
//
//  1. Default(): the fixed file names of the 2024 datasets, mode "all",
//     JSON logging to the console
//  2. an optional YAML file passed with -config
//  3. REGIONSTATS_* environment variables (envconfig), for example
//     REGIONSTATS_INPUT_DIR or REGIONSTATS_ANALYSIS_MODE
//  4. command-line flags, applied by cmd/regionstats
//
// Validate runs go-playground/validator over the result once all sources
// have been applied.
//
// # Paths
//
// NewPaths resolves the configured directory and file names into the full
// input and output paths used by the pipeline:
//
//	paths := config.NewPaths(cfg)
//	paths.FireCSV                 // <input>/pozary2024.csv
//	paths.StatisticsByPowiatCSV   // <output>/statistics_by_powiat.csv
package config
