// Package web serves the session-gated scoring surface. A shared password
// guards three pages: the home page scores comma-separated procedure codes
// against the RVU and edit tables, /breakdown returns a per-code JSON
// breakdown, and /update replaces the RVU table from an uploaded CSV.
package web
