// Package config loads, normalizes, and validates Lathe configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the ONSHAPE_ACCESS_KEY and
// ONSHAPE_SECRET_KEY environment fallbacks. The Config type centralizes every
// knob the daemon and CLI need: API credentials, document coordinates, poll
// and frame intervals, and the default viewport geometry.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
