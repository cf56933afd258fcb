// Package config provides configuration management for diacritfix.
//
// Configuration is loaded from defaults, an optional YAML file, and
// environment variable overrides, in that order of precedence.
package config
