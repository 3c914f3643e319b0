// Package updater composes the release resolver, gate fetcher, and
// dataset pipeline into one idempotent resolve-and-sync operation.
//
// A run reads the local version marker (falling back to the configured
// base URL when the marker is missing or unreadable), probes the fixed
// candidate sequence for a newer release, and on acceptance downloads,
// merges, and persists both companion files before advancing the marker.
// When no candidate is served and the combined table already exists the
// run is a no-op beyond the probe round trips.
package updater
