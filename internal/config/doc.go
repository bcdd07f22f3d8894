// Package config loads, validates, and normalizes the TOML configuration for
// the minuteminds client.
package config
