// Package config loads, normalizes, and validates goodwatch configuration.
//
// Settings are read from TOML (default ~/.config/goodwatch/config.toml, or
// ./goodwatch.toml), merged onto Default(), normalized (path expansion, env
// fallbacks for API keys), and validated before any component starts.
package config
