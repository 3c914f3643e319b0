// Package config loads, normalizes, and validates rvuweb configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// BASE_NCCI_F1_URL and APP_PASSWORD. The Config type centralizes every
// knob the server and CLI need: the data directory holding the RVU and
// edit-pair tables, the NCCI license-gate base URL, and the web surface
// settings.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths and clear validation errors. A base URL missing its
// version or quarter token is rejected here, before any network activity.
package config
