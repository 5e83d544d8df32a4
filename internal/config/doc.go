// Package config provides centralized configuration management for the
// pricelist extraction toolchain. It handles loading configuration from
// multiple sources, validation, and path resolution relative to the
// executable location.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. Configuration file (config.yaml or configs/config.yaml)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern PLX_* for namespacing:
//
//	PLX_LOGGING_LEVEL=debug
//	PLX_EXTRACTION_MAPPING_FILE=german_market.yaml
//	PLX_EXTRACTION_WORKERS=8
//	PLX_EXPORT_FORMAT=sqlite
//	PLX_EXPORT_OUTPUT_DIR=/srv/pricelists/out
//
// # Path Management
//
// The package provides centralized path management through the Paths type,
// which handles all file system paths relative to the executable location:
//
//	paths, err := config.GetPaths()
//	outPath := paths.GetOutputPath("toyota_2026.json")
//	mapping := paths.ResolveMappingFile("german_market")
//
// # Usage
//
// Load configuration at application startup:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
