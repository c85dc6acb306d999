// Package config loads, normalizes, and validates pixbatch configuration data.
//
// It supplies repository defaults (jpeg at quality 85 with aspect ratio kept,
// a 10 MiB upload ceiling, archive bundling above five outputs), expands user
// paths including tilde shortcuts, and reads TOML files. The Config type
// centralizes every knob the CLI and the batch components need so they can be
// discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// expanded paths, canonical log formats, and clear validation errors.
package config
