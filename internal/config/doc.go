// Package config loads and validates application configuration from
// defaults, an optional YAML file, and CHAINPULSE_* environment variables,
// in that precedence order.
package config
