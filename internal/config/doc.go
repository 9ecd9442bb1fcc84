// Package config provides centralized configuration management for the inventory
// dashboard. It loads configuration from multiple sources, validates it, and
// exposes a type-safe struct to the rest of the application.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. YAML configuration file
//	3. Default values (lowest priority)
//
// The file is taken from INVENTORY_CONFIG when set, otherwise config.yaml or
// configs/config.yaml in the working directory.
//
// # Environment Variables
//
// All environment variables follow the pattern INVENTORY_<SECTION>_<KEY>:
//
//	INVENTORY_SERVER_PORT=8080
//	INVENTORY_LOGGING_LEVEL=debug
//	INVENTORY_DATASET_HEADER_ROWS=2
//	INVENTORY_DATASET_LEGACY_ENCODING=windows-874
//	INVENTORY_TELEMETRY_ENABLE_TRACING=true
//
// # Example File
//
//	server:
//	  port: 8080
//	  read_timeout: 15s
//	dataset:
//	  header_rows: 1
//	  delimiter: ","
//	  max_upload_bytes: 10485760
//	  load_sample: true
//	telemetry:
//	  enable_metrics: true
//	  trace_exporter: stdout
package config
