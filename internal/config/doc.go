// Package config provides centralized configuration management for the keksindex service.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//  1. Environment variables (highest priority)
//  2. A YAML file named by KEKS_CONFIG_FILE, or config.yaml / configs/config.yaml
//  3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern KEKS_<SECTION>_<FIELD>:
//
//	KEKS_SERVER_PORT=8080
//	KEKS_DATA_SOURCE_PATH=data/prc_hicp_midx_clean.csv
//	KEKS_DATA_RECIPES_FILE=configs/recipes.yaml
//	KEKS_LOGGING_LEVEL=debug
//	KEKS_TELEMETRY_TRACE_EXPORTER=stdout
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatalf("failed to load config: %v", err)
//	}
package config
