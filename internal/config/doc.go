// Package config holds the TOML configuration file, logger setup and the
// preferences the desktop panel persists between runs.
package config
