// Package config loads the link controller configuration.
//
// Values are layered: built-in defaults, then an optional YAML file, then
// RCLINK_* environment overrides. The merged result is validated before use.
package config
