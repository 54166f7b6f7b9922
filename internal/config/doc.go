// Package config loads, normalizes, and validates vidgen configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the VIDGEN_API_BASE_URL environment
// override. The Config type centralizes every knob the CLI, the preview
// scheduler, and the task orchestrator need: render service location and
// timeouts, debounce windows, polling cadence, and local state paths.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
