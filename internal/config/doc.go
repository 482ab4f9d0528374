// Package config loads application settings from an optional config.yaml and
// APIDIR_ environment variables into a validated Config.
package config
