// Package config handles configuration loading and merging for tdash.
//
// # Configuration Precedence
//
// Configuration values are resolved in the following order (highest to lowest priority):
//
//  1. CLI flags (--cmd, --no-color, --log-level, --debounce, --width)
//  2. Environment variables (TDASH_NO_COLOR, NO_COLOR, TDASH_LOG_LEVEL)
//  3. YAML config file (.tdash.yaml in the working directory or ~/.config/tdash/.tdash.yaml)
//  4. Hardcoded defaults
//
// # Example
//
//	command: go test -json ./...
//	watch:
//	  - "**/*.go"
//	  - go.mod
//	debounce: 250ms
//	log_level: info
//
// The slow-test threshold is fixed and has no configuration key.
//
// # Environment Variables
//
//   - TDASH_NO_COLOR or NO_COLOR: disable colors
//   - TDASH_LOG_LEVEL: debug, info, warn, error
//   - TDASH_DEBUG: any non-empty value forces debug logging
package config
