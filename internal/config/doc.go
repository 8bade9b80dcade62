// Package config loads, normalizes, and validates the TOML configuration
// for the overlay generator.
package config
